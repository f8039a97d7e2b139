package models

import (
	"strconv"
	"strings"
)

// OrderStatus is the free-text status stored per order in order_tracking
type OrderStatus string

const (
	StatusInProgress OrderStatus = "in progress"
)

// OrderItem is one line of an in-progress order
type OrderItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// Order is an in-progress order: food item name to quantity, iterated in the
// order items were first added. Names match case-insensitively, as food items
// do in the database; an item keeps the spelling it was first added with and
// updating it keeps its position. The zero value is an empty order ready to use.
type Order struct {
	items []OrderItem
	index map[string]int
}

// NewOrder builds an order from items, later duplicates overwriting earlier ones.
func NewOrder(items ...OrderItem) Order {
	var o Order
	for _, item := range items {
		o.Set(item.Name, item.Quantity)
	}
	return o
}

// Set stores quantity for name, appending name if it is new.
func (o *Order) Set(name string, quantity int) {
	if o.index == nil {
		o.index = make(map[string]int)
	}
	key := itemKey(name)
	if i, ok := o.index[key]; ok {
		o.items[i].Quantity = quantity
		return
	}
	o.index[key] = len(o.items)
	o.items = append(o.items, OrderItem{Name: name, Quantity: quantity})
}

// Get returns the quantity stored for name.
func (o Order) Get(name string) (int, bool) {
	i, ok := o.index[itemKey(name)]
	if !ok {
		return 0, false
	}
	return o.items[i].Quantity, true
}

// Has reports whether name is part of the order.
func (o Order) Has(name string) bool {
	_, ok := o.index[itemKey(name)]
	return ok
}

// Remove deletes name from the order, reporting whether it was present.
func (o *Order) Remove(name string) bool {
	key := itemKey(name)
	i, ok := o.index[key]
	if !ok {
		return false
	}
	o.items = append(o.items[:i], o.items[i+1:]...)
	delete(o.index, key)
	for j := i; j < len(o.items); j++ {
		o.index[itemKey(o.items[j].Name)] = j
	}
	return true
}

func itemKey(name string) string {
	return strings.ToLower(name)
}

// Merge copies every item of other into o, overwriting shared quantities.
func (o *Order) Merge(other Order) {
	for _, item := range other.items {
		o.Set(item.Name, item.Quantity)
	}
}

// Len returns the number of distinct items.
func (o Order) Len() int {
	return len(o.items)
}

// IsEmpty reports whether the order has no items.
func (o Order) IsEmpty() bool {
	return len(o.items) == 0
}

// Items returns a copy of the order lines in iteration order.
func (o Order) Items() []OrderItem {
	out := make([]OrderItem, len(o.items))
	copy(out, o.items)
	return out
}

// Clone returns a deep copy that shares no state with o.
func (o Order) Clone() Order {
	return NewOrder(o.items...)
}

// FormatOrder renders an order as "2 pizza, 1 mango lassi".
func FormatOrder(o Order) string {
	parts := make([]string, 0, o.Len())
	for _, item := range o.items {
		parts = append(parts, strconv.Itoa(item.Quantity)+" "+item.Name)
	}
	return strings.Join(parts, ", ")
}
