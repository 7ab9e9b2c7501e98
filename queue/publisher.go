package queue

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
)

type Publisher interface {
	Publish(ctx context.Context, body []byte) error
	PublishJSON(ctx context.Context, v interface{}) error
	Close() error
}

type publisher struct {
	ch     *amqp.Channel
	config PublishConfig
}

func NewPublisher(ch *amqp.Channel, config PublishConfig) Publisher {
	if config.ContentType == "" {
		config.ContentType = ContentTypeJSON
	}
	if config.DeliveryMode == 0 {
		config.DeliveryMode = amqp.Persistent
	}
	return &publisher{ch, config}
}

// NewSessionEventsPublisher publishes onto the queue declared by conn through
// the default exchange.
func NewSessionEventsPublisher(conn *Connection) Publisher {
	return NewPublisher(conn.Ch, PublishConfig{RoutingKey: conn.Queue.Name})
}

// Publish publishes a message to the configured exchange and routing key.
func (p *publisher) Publish(ctx context.Context, body []byte) error {
	message := amqp.Publishing{
		ContentType:  p.config.ContentType,
		Body:         body,
		DeliveryMode: p.config.DeliveryMode,
		Timestamp:    time.Now().UTC(),
	}

	return p.ch.PublishWithContext(
		ctx,
		p.config.Exchange,
		p.config.RoutingKey,
		false, // mandatory
		false, // immediate
		message,
	)
}

func (p *publisher) PublishJSON(ctx context.Context, v interface{}) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.Publish(ctx, body)
}

// Close closes the publisher's channel.
func (p *publisher) Close() error {
	return p.ch.Close()
}
