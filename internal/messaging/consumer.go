package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"eatopia/internal/logger"
)

// MessageHandler processes one delivery body
type MessageHandler func(ctx context.Context, body []byte) error

// Acknowledger is the part of a delivery the consumer settles
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// Consumer handles message consumption from RabbitMQ
type Consumer struct {
	conn        *Connection
	logger      *logger.Logger
	queueName   string
	consumerTag string
	prefetch    int
}

// NewConsumer creates a new message consumer
func NewConsumer(conn *Connection, log *logger.Logger, queueName, consumerTag string, prefetch int) *Consumer {
	return &Consumer{
		conn:        conn,
		logger:      log,
		queueName:   queueName,
		consumerTag: consumerTag,
		prefetch:    prefetch,
	}
}

// StartConsuming consumes until ctx is done, reconnecting when the broker
// closes the delivery channel
func (c *Consumer) StartConsuming(ctx context.Context, handler MessageHandler) error {
	for {
		err := c.consume(ctx, handler)
		if ctx.Err() != nil {
			c.logger.Info("consumer_stopped", "Consumer stopped by context", "", nil)
			return ctx.Err()
		}
		if err != nil {
			return err
		}

		c.logger.Error("consumer_channel_closed", "Message channel closed, attempting to reconnect", "", nil, nil)
		if err := c.conn.Reconnect(ctx); err != nil {
			return fmt.Errorf("failed to reconnect after channel closed: %w", err)
		}
	}
}

// consume returns nil when the delivery channel closes
func (c *Consumer) consume(ctx context.Context, handler MessageHandler) error {
	if c.conn.IsClosed() {
		if err := c.conn.Reconnect(ctx); err != nil {
			return fmt.Errorf("failed to reconnect: %w", err)
		}
	}

	ch := c.conn.Channel()
	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := ch.Consume(
		c.queueName,   // queue
		c.consumerTag, // consumer
		false,         // auto-ack
		false,         // exclusive
		false,         // no-local
		false,         // no-wait
		nil,           // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("consumer_started",
		fmt.Sprintf("Started consuming from queue %s", c.queueName),
		"", map[string]interface{}{
			"queue":    c.queueName,
			"consumer": c.consumerTag,
			"prefetch": c.prefetch,
		})

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			c.processMessage(ctx, d, handler)
		}
	}
}

// processMessage runs handler on one delivery and settles it: ack on
// success, nack with requeue on a first failure, drop on a redelivered one
func (c *Consumer) processMessage(ctx context.Context, d amqp091.Delivery, handler MessageHandler) {
	c.handleDelivery(ctx, deliveryAcker{ack: d.Acknowledger, tag: d.DeliveryTag}, d.Body, d.CorrelationId, d.RoutingKey, d.Redelivered, handler)
}

func (c *Consumer) handleDelivery(ctx context.Context, ack Acknowledger, body []byte, requestID, routingKey string, redelivered bool, handler MessageHandler) {
	startTime := time.Now()

	c.logger.Debug("message_received", "Processing message", requestID, map[string]interface{}{
		"queue":        c.queueName,
		"routing_key":  routingKey,
		"message_size": len(body),
	})

	processingCtx, cancel := context.WithTimeout(logger.WithRequestID(ctx, requestID), 30*time.Second)
	defer cancel()

	err := handler(processingCtx, body)
	duration := time.Since(startTime)

	if err != nil {
		c.logger.Error("message_processing_failed", "Failed to process message", requestID, err, map[string]interface{}{
			"queue":       c.queueName,
			"routing_key": routingKey,
			"duration_ms": duration.Milliseconds(),
			"redelivered": redelivered,
		})

		if nackErr := ack.Nack(false, !redelivered); nackErr != nil {
			c.logger.Error("message_nack_failed", "Failed to nack message", requestID, nackErr, nil)
		}
		return
	}

	c.logger.Debug("message_processed", "Successfully processed message", requestID, map[string]interface{}{
		"queue":       c.queueName,
		"routing_key": routingKey,
		"duration_ms": duration.Milliseconds(),
	})

	if ackErr := ack.Ack(false); ackErr != nil {
		c.logger.Error("message_ack_failed", "Failed to ack message", requestID, ackErr, nil)
	}
}

// deliveryAcker binds an amqp Acknowledger to one delivery tag
type deliveryAcker struct {
	ack amqp091.Acknowledger
	tag uint64
}

func (d deliveryAcker) Ack(multiple bool) error {
	return d.ack.Ack(d.tag, multiple)
}

func (d deliveryAcker) Nack(multiple, requeue bool) error {
	return d.ack.Nack(d.tag, multiple, requeue)
}

// ParseMessage parses a JSON message into the provided struct
func ParseMessage(body []byte, v interface{}) error {
	return json.Unmarshal(body, v)
}

// Close stops consuming messages
func (c *Consumer) Close() error {
	if !c.conn.IsClosed() {
		if err := c.conn.Channel().Cancel(c.consumerTag, false); err != nil {
			c.logger.Error("consumer_cancel_failed", "Failed to cancel consumer", "", err, nil)
		}
		return c.conn.Close()
	}
	return nil
}
