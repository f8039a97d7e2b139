package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"eatopia/internal/apperr"
	"eatopia/internal/logger"
	"eatopia/internal/models"
	"eatopia/internal/services/order/internal/validation"
	"eatopia/internal/session"
)

// Replies sent back to the user
const (
	MsgClarifyAdd    = "Sorry, I didn't understand. Can you please specify food items and quantities?"
	MsgOrderNotFound = "I'm having trouble finding your order. Sorry! Can you place a new order, please?"
	MsgClarifyRemove = "I didn't understand what you want to remove. Please specify the food items."
	MsgOrderEmptied  = "Your order is now empty. You can start a new order if you'd like."
	MsgBackendError  = "Sorry, I couldn't process your order due to a backend error. Please place a new order again."
)

const (
	paramFoodItem = "food-item"
	paramNumber   = "number"
)

// OrderSaver persists a completed order and prices it
type OrderSaver interface {
	SaveOrder(ctx context.Context, order models.Order) (int, error)
	GetTotalOrderPrice(ctx context.Context, orderID int) (float64, error)
}

// EventPublisher announces orders once they are persisted
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, msg *models.OrderPlacedMessage) error
}

// Service implements the add, remove and complete conversation steps on top
// of the session store.
type Service struct {
	sessions        session.Store
	publisher       EventPublisher
	printer         *message.Printer
	retainOnFailure bool
	logger          *logger.Logger
}

type Option func(*Service)

// WithPublisher publishes an OrderPlaced event for every saved order
func WithPublisher(p EventPublisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithRetainOnFailure keeps the session order when saving it fails
func WithRetainOnFailure(retain bool) Option {
	return func(s *Service) {
		s.retainOnFailure = retain
	}
}

// WithLocale formats order totals for the given language tag
func WithLocale(tag language.Tag) Option {
	return func(s *Service) {
		s.printer = message.NewPrinter(tag)
	}
}

func NewService(sessions session.Store, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		sessions: sessions,
		printer:  message.NewPrinter(language.English),
		logger:   log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddToOrder merges the requested items into the session's order, creating
// the order on first use. Later quantities overwrite earlier ones.
func (s *Service) AddToOrder(ctx context.Context, params models.Parameters, sessionID string) (string, error) {
	requestID := logger.RequestIDFrom(ctx)

	items, ok := params.StringList(paramFoodItem)
	if !ok {
		s.logger.Debug("add_rejected", "food-item is not a list of names", requestID, nil)
		return MsgClarifyAdd, nil
	}
	quantities, err := params.IntList(paramNumber)
	if err != nil {
		s.logger.Debug("add_rejected", "Quantities are not whole numbers", requestID, map[string]interface{}{
			"reason": err.Error(),
		})
		return MsgClarifyAdd, nil
	}

	partial, err := validation.ValidateAddRequest(items, quantities)
	if err != nil {
		s.logger.Debug("add_rejected", "Add request failed validation", requestID, map[string]interface{}{
			"reason": err.Error(),
		})
		return MsgClarifyAdd, nil
	}

	order := s.sessions.Upsert(sessionID, partial)
	s.logger.Info("order_updated", "Updated in-progress order", requestID, map[string]interface{}{
		"session_id": sessionID,
		"items":      order.Items(),
	})

	return fmt.Sprintf("So far you have: %s. Do you need anything else?", models.FormatOrder(order)), nil
}

// RemoveFromOrder drops the named items from the session's order. Either all
// of them are removed or, when one is missing, none are.
func (s *Service) RemoveFromOrder(ctx context.Context, params models.Parameters, sessionID string) (string, error) {
	requestID := logger.RequestIDFrom(ctx)

	if _, ok := s.sessions.Get(sessionID); !ok {
		s.logMissingOrder(requestID, sessionID, "remove")
		return MsgOrderNotFound, nil
	}

	items, ok := params.StringList(paramFoodItem)
	if !ok || validation.ValidateRemoveRequest(items) != nil {
		return MsgClarifyRemove, nil
	}

	order, err := s.sessions.RemoveItems(sessionID, items)
	var notFound *session.ItemNotFoundError
	switch {
	case errors.As(err, &notFound):
		return fmt.Sprintf("I couldn't find %s in your order. Please check again.", notFound.Item), nil
	case errors.Is(err, session.ErrOrderNotFound):
		// completed or drained by a concurrent request
		s.logMissingOrder(requestID, sessionID, "remove")
		return MsgOrderNotFound, nil
	case err != nil:
		return "", apperr.Wrap(apperr.KindUnexpected, "remove items", err)
	}

	s.logger.Info("order_items_removed", "Removed items from in-progress order", requestID, map[string]interface{}{
		"session_id": sessionID,
		"removed":    items,
	})

	if order.IsEmpty() {
		return MsgOrderEmptied, nil
	}
	return fmt.Sprintf("Okay, I've removed the specified items. Your updated order is: %s. Do you need anything else?",
		models.FormatOrder(order)), nil
}

// CompleteOrder persists the session's order through gw and reports the new
// order id and total. The session order is dropped once the save has been
// attempted, unless retain-on-failure is set and the save failed.
func (s *Service) CompleteOrder(ctx context.Context, gw OrderSaver, sessionID string) (string, error) {
	requestID := logger.RequestIDFrom(ctx)

	order, ok := s.sessions.Get(sessionID)
	if !ok {
		s.logMissingOrder(requestID, sessionID, "complete")
		return MsgOrderNotFound, nil
	}

	orderID, err := gw.SaveOrder(ctx, order)
	if err != nil {
		s.logger.Error("order_save_failed", "Failed to save order", requestID,
			apperr.Wrap(apperr.KindPersistence, "save order", err), map[string]interface{}{
				"session_id": sessionID,
				"kind":       string(apperr.KindPersistence),
			})
		if !s.retainOnFailure {
			s.sessions.Delete(sessionID)
		}
		return MsgBackendError, nil
	}
	s.sessions.Delete(sessionID)

	total, err := gw.GetTotalOrderPrice(ctx, orderID)
	if err != nil {
		return "", apperr.Wrap(apperr.KindPersistence, "get total order price", err)
	}

	s.logger.Info("order_placed", "Order saved", requestID, map[string]interface{}{
		"session_id": sessionID,
		"order_id":   orderID,
		"total":      total,
	})
	s.publishOrderPlaced(ctx, orderID, sessionID, order, total)

	return fmt.Sprintf("Awesome. We have placed your order. Here is your order ID # %d. "+
		"Your order total is %s, which you can pay at the time of delivery!", orderID, s.FormatPrice(total)), nil
}

// FormatPrice renders an order total with two decimals and the locale's
// decimal mark, without digit grouping
func (s *Service) FormatPrice(total float64) string {
	return s.printer.Sprintf("%v", number.Decimal(total, number.Scale(2), number.NoSeparator()))
}

func (s *Service) logMissingOrder(requestID, sessionID, op string) {
	s.logger.Debug("order_not_found", "No in-progress order for session", requestID, map[string]interface{}{
		"session_id": sessionID,
		"op":         op,
		"kind":       string(apperr.KindState),
	})
}

func (s *Service) publishOrderPlaced(ctx context.Context, orderID int, sessionID string, order models.Order, total float64) {
	if s.publisher == nil {
		return
	}

	msg := models.CreateOrderPlacedMessage(uuid.NewString(), orderID, sessionID, order, total)
	if err := s.publisher.PublishOrderPlaced(ctx, msg); err != nil {
		s.logger.Error("order_publish_failed", "Failed to publish order placed event", logger.RequestIDFrom(ctx), err, map[string]interface{}{
			"order_id": orderID,
		})
	}
}
