package session

import (
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"

	"eatopia/internal/models"
)

// ErrOrderNotFound is returned when a session has no in-progress order.
var ErrOrderNotFound = errors.New("no in-progress order for session")

// ItemNotFoundError names the first requested item missing from an order.
type ItemNotFoundError struct {
	Item string
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("item %q not found in order", e.Item)
}

// Store keeps the in-progress order of every live session.
// Returned orders are copies; mutating them does not affect the store.
type Store interface {
	Get(sessionID string) (models.Order, bool)
	Upsert(sessionID string, partial models.Order) models.Order
	RemoveItems(sessionID string, items []string) (models.Order, error)
	Delete(sessionID string)
}

type shard struct {
	mu     sync.Mutex
	orders map[string]models.Order
}

// MemoryStore is a Store sharded by session id. Each shard has its own lock,
// so every operation is atomic for its session and sessions on different
// shards never contend.
type MemoryStore struct {
	shards []*shard
}

// NewMemoryStore creates a store with n shards (at least one).
func NewMemoryStore(n int) *MemoryStore {
	if n < 1 {
		n = 1
	}
	shards := make([]*shard, n)
	for i := range shards {
		shards[i] = &shard{orders: make(map[string]models.Order)}
	}
	return &MemoryStore{shards: shards}
}

func (s *MemoryStore) shardFor(sessionID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	return s.shards[h.Sum32()%uint32(len(s.shards))]
}

func (s *MemoryStore) Get(sessionID string) (models.Order, bool) {
	sh := s.shardFor(sessionID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	order, ok := sh.orders[sessionID]
	if !ok {
		return models.Order{}, false
	}
	return order.Clone(), true
}

// Upsert merges partial into the session's order, creating it if needed,
// and returns the resulting full order.
func (s *MemoryStore) Upsert(sessionID string, partial models.Order) models.Order {
	sh := s.shardFor(sessionID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	order, ok := sh.orders[sessionID]
	if !ok {
		order = partial.Clone()
	} else {
		order.Merge(partial)
	}
	sh.orders[sessionID] = order
	return order.Clone()
}

// RemoveItems drops every named item or none of them. Names match
// case-insensitively and each may appear once. If the order ends up
// empty the session entry is deleted and an empty order is returned.
func (s *MemoryStore) RemoveItems(sessionID string, items []string) (models.Order, error) {
	sh := s.shardFor(sessionID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	order, ok := sh.orders[sessionID]
	if !ok {
		return models.Order{}, ErrOrderNotFound
	}
	// a name repeated within one request is already gone by its second mention
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		key := strings.ToLower(item)
		if seen[key] || !order.Has(item) {
			return order.Clone(), &ItemNotFoundError{Item: item}
		}
		seen[key] = true
	}

	for _, item := range items {
		order.Remove(item)
	}
	if order.IsEmpty() {
		delete(sh.orders, sessionID)
		return models.Order{}, nil
	}
	sh.orders[sessionID] = order
	return order.Clone(), nil
}

func (s *MemoryStore) Delete(sessionID string) {
	sh := s.shardFor(sessionID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	delete(sh.orders, sessionID)
}

// Len returns the number of sessions with an in-progress order.
func (s *MemoryStore) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		n += len(sh.orders)
		sh.mu.Unlock()
	}
	return n
}
