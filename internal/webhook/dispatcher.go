package webhook

import (
	"context"
	"errors"
	"fmt"

	"eatopia/internal/apperr"
	"eatopia/internal/database"
	"eatopia/internal/logger"
	"eatopia/internal/services/order"
	"eatopia/internal/services/tracking"
)

const (
	MsgIntentNotRecognized = "Intent not recognized"
	MsgError               = "An error occurred while processing your request."
)

// Gateway is the persistence surface one request needs
type Gateway interface {
	order.OrderSaver
	tracking.StatusReader
	Close() error
}

// Connector hands out one Gateway per request
type Connector interface {
	Acquire(ctx context.Context) (Gateway, error)
}

type ConnectorFunc func(ctx context.Context) (Gateway, error)

func (f ConnectorFunc) Acquire(ctx context.Context) (Gateway, error) {
	return f(ctx)
}

// DBConnector acquires gateways from the database pool
func DBConnector(db *database.DB) Connector {
	return ConnectorFunc(func(ctx context.Context) (Gateway, error) {
		gw, err := db.Acquire(ctx)
		if err != nil {
			return nil, err
		}
		return gw, nil
	})
}

// Dispatcher turns a fulfillment request body into reply text
type Dispatcher struct {
	intents   *IntentTable
	orders    *order.Service
	tracking  *tracking.Service
	connector Connector
	logger    *logger.Logger
}

func NewDispatcher(intents *IntentTable, orders *order.Service, tracker *tracking.Service, connector Connector, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		intents:   intents,
		orders:    orders,
		tracking:  tracker,
		connector: connector,
		logger:    log,
	}
}

// Dispatch parses body, acquires a connection for the request and routes it
// to the intent's handler. Every failure, panics included, becomes MsgError;
// Dispatch itself never fails.
func (d *Dispatcher) Dispatch(ctx context.Context, body []byte) (reply string) {
	requestID := logger.RequestIDFrom(ctx)

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("dispatch_panic", "Recovered from panic while processing request", requestID,
				fmt.Errorf("panic: %v", r), map[string]interface{}{
					"kind": string(apperr.KindUnexpected),
				})
			reply = MsgError
		}
	}()

	req, err := ParseRequest(body)
	if err != nil {
		d.logError(requestID, "payload_invalid", "Failed to parse webhook payload", apperr.Wrap(apperr.KindValidation, "parse request", err))
		return MsgError
	}

	d.logger.Info("payload_received", "Webhook payload received", requestID, map[string]interface{}{
		"intent":     req.Intent,
		"session_id": req.SessionID,
		"parameters": req.Parameters,
	})

	gw, err := d.connector.Acquire(ctx)
	if err != nil {
		d.logError(requestID, "db_acquire_failed", "Failed to acquire database connection", apperr.Wrap(apperr.KindPersistence, "acquire connection", err))
		return MsgError
	}
	defer func() {
		if err := gw.Close(); err != nil {
			d.logger.Error("db_release_failed", "Failed to release database connection", requestID, err, nil)
		}
	}()

	intent := d.intents.Resolve(req.Intent)
	if intent == IntentUnknown {
		d.logger.Info("intent_unrecognized", "Intent not recognized", requestID, map[string]interface{}{
			"intent": req.Intent,
		})
		return MsgIntentNotRecognized
	}

	reply, err = d.route(ctx, intent, gw, req)
	if err != nil {
		d.logError(requestID, "intent_failed", fmt.Sprintf("Failed to handle %s", intent), err)
		return MsgError
	}
	return reply
}

func (d *Dispatcher) route(ctx context.Context, intent Intent, gw Gateway, req Request) (string, error) {
	switch intent {
	case IntentAddToOrder:
		return d.orders.AddToOrder(ctx, req.Parameters, req.SessionID)
	case IntentRemoveFromOrder:
		return d.orders.RemoveFromOrder(ctx, req.Parameters, req.SessionID)
	case IntentCompleteOrder:
		return d.orders.CompleteOrder(ctx, gw, req.SessionID)
	case IntentTrackOrder:
		return d.tracking.TrackOrder(ctx, gw, req.Parameters)
	default:
		return "", apperr.Wrap(apperr.KindUnexpected, "route", errors.New("intent has no handler"))
	}
}

func (d *Dispatcher) logError(requestID, action, message string, err error) {
	d.logger.Error(action, message, requestID, err, map[string]interface{}{
		"kind": string(apperr.KindOf(err)),
	})
}
