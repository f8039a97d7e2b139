package models

import (
	"time"
)

// Routing keys published on the orders exchange
const (
	RoutingKeyOrderPlaced = "order.placed"
)

// OrderPlacedMessage is published after an order has been persisted
type OrderPlacedMessage struct {
	EventID   string      `json:"event_id"`
	OrderID   int         `json:"order_id"`
	SessionID string      `json:"session_id"`
	Items     []OrderItem `json:"items"`
	Total     float64     `json:"total"`
	Status    string      `json:"status"`
	PlacedAt  time.Time   `json:"placed_at"`
}

// CreateOrderPlacedMessage builds the event for a freshly persisted order
func CreateOrderPlacedMessage(eventID string, orderID int, sessionID string, order Order, total float64) *OrderPlacedMessage {
	return &OrderPlacedMessage{
		EventID:   eventID,
		OrderID:   orderID,
		SessionID: sessionID,
		Items:     order.Items(),
		Total:     total,
		Status:    string(StatusInProgress),
		PlacedAt:  time.Now().UTC(),
	}
}
