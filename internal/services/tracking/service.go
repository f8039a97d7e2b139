package tracking

import (
	"context"
	"errors"
	"fmt"

	"eatopia/internal/apperr"
	"eatopia/internal/logger"
	"eatopia/internal/models"
)

const (
	MsgMissingOrderID = "Order ID is missing. Please provide a valid order ID."
	MsgInvalidOrderID = "Invalid Order ID. Please provide a numeric order ID."
)

const paramOrderID = "order_id"

// Service provides tracking functionality
type Service struct {
	logger *logger.Logger
}

// NewService creates a new tracking service
func NewService(logger *logger.Logger) *Service {
	return &Service{
		logger: logger,
	}
}

// TrackOrder answers a status question for the order_id parameter. The
// gateway is only consulted for well-formed ids.
func (s *Service) TrackOrder(ctx context.Context, gw StatusReader, params models.Parameters) (string, error) {
	requestID := logger.RequestIDFrom(ctx)

	orderID, present, err := params.Int(paramOrderID)
	if !present {
		return MsgMissingOrderID, nil
	}
	if err != nil {
		s.logger.Debug("track_rejected", "Order id is not numeric", requestID, map[string]interface{}{
			"order_id": fmt.Sprint(params[paramOrderID]),
		})
		return MsgInvalidOrderID, nil
	}

	status, found, err := s.GetOrderStatus(ctx, gw, orderID)
	if err != nil {
		return "", err
	}
	if !found {
		return fmt.Sprintf("No order found with order ID: %d.", orderID), nil
	}
	return fmt.Sprintf("The order status for order ID %d is: %s.", orderID, status), nil
}

// GetOrderStatus retrieves the current status of an order
func (s *Service) GetOrderStatus(ctx context.Context, gw StatusReader, orderID int) (string, bool, error) {
	requestID := logger.RequestIDFrom(ctx)

	status, found, err := gw.GetOrderStatus(ctx, orderID)
	if err != nil {
		s.logger.Error("db_query_failed", "Failed to query order status", requestID, err, map[string]interface{}{
			"order_id": orderID,
		})
		return "", false, apperr.Wrap(apperr.KindPersistence, "get order status", err)
	}
	// a stored blank status reads as no order, like a missing row
	if status == "" {
		found = false
	}

	s.logger.Debug("order_status_read", "Order status looked up", requestID, map[string]interface{}{
		"order_id": orderID,
		"found":    found,
	})
	return status, found, nil
}

// ErrInvalidOrderID is returned by ParseOrderID for non-numeric ids
var ErrInvalidOrderID = errors.New("invalid order id")

// ParseOrderID converts a path segment to an order id
func ParseOrderID(raw string) (int, error) {
	id, err := models.ToInt(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidOrderID, raw)
	}
	return id, nil
}
