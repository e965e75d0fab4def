package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// RabbitMQPublisher publishes JSON events to durable RabbitMQ queues through
// the default exchange.
type RabbitMQPublisher struct {
	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
	queues  map[string]bool
	logger  *zap.Logger
}

// NewRabbitMQPublisher dials the broker, opens a channel and declares every queue.
func NewRabbitMQPublisher(url string, queues []string, logger *zap.Logger) (*RabbitMQPublisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a RabbitMQ channel: %w", err)
	}

	declared := make(map[string]bool, len(queues))
	for _, name := range queues {
		if _, err := ch.QueueDeclare(
			name,
			true,  // durable
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			nil,
		); err != nil {
			ch.Close()
			conn.Close()
			return nil, fmt.Errorf("failed to declare queue %s: %w", name, err)
		}
		declared[name] = true
	}

	logger.Info("Connected to RabbitMQ", zap.Strings("queues", queues))
	return &RabbitMQPublisher{conn: conn, channel: ch, queues: declared, logger: logger}, nil
}

// Publish encodes payload as JSON and sends it as a persistent message.
// The broker client takes no context, so ctx only short-circuits cancelled requests.
func (p *RabbitMQPublisher) Publish(ctx context.Context, queue string, payload interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !p.queues[queue] {
		return fmt.Errorf("queue %s was not declared", queue)
	}
	msg, err := newPublishing(payload, time.Now().UTC())
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.channel.Publish(
		"",    // default exchange
		queue, // routing key
		false, // mandatory
		false, // immediate
		msg,
	); err != nil {
		return fmt.Errorf("failed to publish to queue %s: %w", queue, err)
	}
	p.logger.Debug("Event published", zap.String("queue", queue), zap.String("messageID", msg.MessageId))
	return nil
}

// Close closes the channel and the connection.
func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close channel: %w", err))
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close connection: %w", err))
		}
	}
	return errors.Join(errs...)
}

func newPublishing(payload interface{}, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to encode event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    now,
		Body:         body,
	}, nil
}
