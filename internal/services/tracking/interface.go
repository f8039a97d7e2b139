package tracking

import (
	"context"
)

// StatusReader looks up the tracked status of an order
type StatusReader interface {
	GetOrderStatus(ctx context.Context, orderID int) (string, bool, error)
}

// StatusGateway is a StatusReader bound to a connection that must be closed
type StatusGateway interface {
	StatusReader
	Close() error
}

// AcquireFunc reserves a StatusGateway for one request
type AcquireFunc func(ctx context.Context) (StatusGateway, error)
