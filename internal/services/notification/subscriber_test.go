package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"eatopia/internal/logger"
	"eatopia/internal/messaging"
	"eatopia/internal/models"
)

// fakeConsumer hands its bodies to the handler, then waits for ctx
type fakeConsumer struct {
	bodies  [][]byte
	errs    []error
	handled chan struct{}
	closed  bool
}

func (f *fakeConsumer) StartConsuming(ctx context.Context, handler messaging.MessageHandler) error {
	for _, body := range f.bodies {
		f.errs = append(f.errs, handler(ctx, body))
	}
	close(f.handled)
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakeConsumer) Close() error {
	f.closed = true
	return nil
}

func TestSubscriberPrintsOrderPlaced(t *testing.T) {
	msg := models.OrderPlacedMessage{
		EventID: "evt-1",
		OrderID: 42,
		Items: []models.OrderItem{
			{Name: "Pizza", Quantity: 2},
			{Name: "Mango Lassi", Quantity: 1},
		},
		Total:    21,
		Status:   "in progress",
		PlacedAt: time.Date(2026, 3, 1, 18, 30, 0, 0, time.UTC),
	}
	body, err := json.Marshal(msg)
	require.NoError(t, err)

	consumer := &fakeConsumer{bodies: [][]byte{body, []byte(`not json`)}, handled: make(chan struct{})}
	var out bytes.Buffer
	sub := NewSubscriber(consumer, &out, language.English, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sub.Start(ctx) }()

	<-consumer.handled
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, "[2026-03-01 18:30:00] Order 42 placed (in progress): 2 Pizza, 1 Mango Lassi. Total 21.00.\n", out.String())
	require.Len(t, consumer.errs, 2)
	assert.NoError(t, consumer.errs[0])
	assert.Error(t, consumer.errs[1])
	assert.True(t, consumer.closed)
}
