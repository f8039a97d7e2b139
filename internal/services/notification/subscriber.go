package notification

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"eatopia/internal/logger"
	"eatopia/internal/messaging"
	"eatopia/internal/models"
)

// Consumer delivers message bodies until its context ends
type Consumer interface {
	StartConsuming(ctx context.Context, handler messaging.MessageHandler) error
	Close() error
}

// Subscriber prints a line for every order placed through the webhook
type Subscriber struct {
	consumer Consumer
	out      io.Writer
	printer  *message.Printer
	logger   *logger.Logger
}

// NewSubscriber creates a new notification subscriber writing to out
func NewSubscriber(consumer Consumer, out io.Writer, tag language.Tag, logger *logger.Logger) *Subscriber {
	return &Subscriber{
		consumer: consumer,
		out:      out,
		printer:  message.NewPrinter(tag),
		logger:   logger,
	}
}

// Start consumes notifications until ctx is canceled
func (s *Subscriber) Start(ctx context.Context) error {
	requestID := logger.GenerateRequestID()
	s.logger.Info("service_started", "Notification subscriber started", requestID, nil)

	err := s.consumer.StartConsuming(ctx, s.handleOrderPlaced)
	if ctx.Err() != nil {
		s.logger.Info("graceful_shutdown", "Notification subscriber stopping", requestID, nil)
		if closeErr := s.consumer.Close(); closeErr != nil {
			s.logger.Error("consumer_close_failed", "Failed to close consumer", requestID, closeErr, nil)
		}
		return nil
	}
	return err
}

// handleOrderPlaced processes one order placed event
func (s *Subscriber) handleOrderPlaced(ctx context.Context, body []byte) error {
	requestID := logger.RequestIDFrom(ctx)

	var placed models.OrderPlacedMessage
	if err := messaging.ParseMessage(body, &placed); err != nil {
		s.logger.Error("message_parsing_failed", "Failed to parse notification message", requestID, err, nil)
		return fmt.Errorf("failed to parse notification: %w", err)
	}

	s.logger.Debug("notification_received", "Received order placed notification", requestID, map[string]interface{}{
		"order_id": placed.OrderID,
		"event_id": placed.EventID,
	})

	if _, err := fmt.Fprintln(s.out, s.formatNotification(&placed)); err != nil {
		return fmt.Errorf("failed to write notification: %w", err)
	}

	s.logger.Info("notification_displayed", "Notification displayed to user", requestID, map[string]interface{}{
		"order_id":   placed.OrderID,
		"session_id": placed.SessionID,
		"total":      placed.Total,
	})
	return nil
}

// formatNotification creates a human-readable notification message
func (s *Subscriber) formatNotification(placed *models.OrderPlacedMessage) string {
	items := make([]string, 0, len(placed.Items))
	for _, item := range placed.Items {
		items = append(items, fmt.Sprintf("%d %s", item.Quantity, item.Name))
	}

	return fmt.Sprintf("[%s] Order %d placed (%s): %s. Total %s.",
		placed.PlacedAt.Format("2006-01-02 15:04:05"),
		placed.OrderID,
		placed.Status,
		strings.Join(items, ", "),
		s.printer.Sprintf("%v", number.Decimal(placed.Total, number.Scale(2), number.NoSeparator())),
	)
}
