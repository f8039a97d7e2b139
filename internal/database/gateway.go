package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eatopia/internal/logger"
	"eatopia/internal/models"
)

var (
	ErrInsertItem = errors.New("failed to insert order item")
	ErrEmptyOrder = errors.New("order has no items")
)

// querier is satisfied by both *sql.Conn and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Gateway performs order persistence over a single acquired connection.
// It is not safe for concurrent use; each request acquires its own.
type Gateway struct {
	conn    *sql.Conn
	dialect Dialect
	logger  *logger.Logger
}

// Close returns the connection to the pool
func (g *Gateway) Close() error {
	return g.conn.Close()
}

// NextOrderID returns one more than the highest stored order id. It reads
// without reserving anything; SaveOrder allocates ids on its own.
func (g *Gateway) NextOrderID(ctx context.Context) (int, error) {
	return queryOrderID(ctx, g.conn, g.dialect.NextOrderIDSQL)
}

// InsertOrderItem inserts one order line in its own transaction, rolling back on failure
func (g *Gateway) InsertOrderItem(ctx context.Context, foodItem string, quantity, orderID int) error {
	tx, err := g.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if err := g.insertOrderItem(ctx, tx, foodItem, quantity, orderID); err != nil {
		return err
	}
	return tx.Commit()
}

// InsertOrderTracking records the status row of an order
func (g *Gateway) InsertOrderTracking(ctx context.Context, orderID int, status models.OrderStatus) error {
	return insertOrderTracking(ctx, g.conn, g.dialect, orderID, status)
}

// GetTotalOrderPrice sums the line totals of an order
func (g *Gateway) GetTotalOrderPrice(ctx context.Context, orderID int) (float64, error) {
	var total float64
	if err := g.conn.QueryRowContext(ctx, g.dialect.TotalOrderPriceSQL, orderID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to get total order price: %w", err)
	}
	return total, nil
}

// GetOrderStatus returns the tracked status of an order, reporting false when
// no tracking row exists
func (g *Gateway) GetOrderStatus(ctx context.Context, orderID int) (string, bool, error) {
	var status string
	err := g.conn.QueryRowContext(ctx, g.dialect.OrderStatusSQL, orderID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get order status: %w", err)
	}
	return status, true, nil
}

// SaveOrder persists an in-progress order and returns its new id. Items and
// the tracking row are written in one transaction: if any item fails nothing
// is kept.
func (g *Gateway) SaveOrder(ctx context.Context, order models.Order) (int, error) {
	if order.IsEmpty() {
		return 0, ErrEmptyOrder
	}

	tx, err := g.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	orderID, err := queryOrderID(ctx, tx, g.dialect.AllocateOrderIDSQL)
	if err != nil {
		return 0, err
	}

	for _, item := range order.Items() {
		if err := g.insertOrderItem(ctx, tx, item.Name, item.Quantity, orderID); err != nil {
			return 0, err
		}
	}

	if err := insertOrderTracking(ctx, tx, g.dialect, orderID, models.StatusInProgress); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit order %d: %w", orderID, err)
	}
	return orderID, nil
}

func (g *Gateway) insertOrderItem(ctx context.Context, q querier, foodItem string, quantity, orderID int) error {
	if _, err := q.ExecContext(ctx, g.dialect.InsertOrderItemSQL, foodItem, quantity, orderID); err != nil {
		g.logger.Error("order_item_insert_failed", "Error inserting order item", "", err, map[string]interface{}{
			"food_item": foodItem,
			"quantity":  quantity,
			"order_id":  orderID,
		})
		return fmt.Errorf("%w %q: %w", ErrInsertItem, foodItem, err)
	}
	return nil
}

func queryOrderID(ctx context.Context, q querier, query string) (int, error) {
	var id int
	if err := q.QueryRowContext(ctx, query).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to get next order id: %w", err)
	}
	return id, nil
}

func insertOrderTracking(ctx context.Context, q querier, dialect Dialect, orderID int, status models.OrderStatus) error {
	if _, err := q.ExecContext(ctx, dialect.InsertOrderTrackingSQL, orderID, string(status)); err != nil {
		return fmt.Errorf("failed to insert order tracking: %w", err)
	}
	return nil
}
