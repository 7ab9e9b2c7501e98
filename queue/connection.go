package queue

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

type Connection struct {
	Conn  *amqp.Connection
	Ch    *amqp.Channel
	Queue amqp.Queue
}

// NewConnection dials RabbitMQ, opens a channel and declares the configured queue.
func NewConnection(config ConnectionConfig) (*Connection, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	conn, err := amqp.Dial(config.URI)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	queueConfig := config.QueueConfig
	args := amqp.Table{}
	for k, v := range queueConfig.Args {
		args[k] = v
	}
	if queueConfig.Type != "" {
		args["x-queue-type"] = string(queueConfig.Type)
	}

	queue, err := ch.QueueDeclare(
		queueConfig.Name,
		queueConfig.Durable,
		queueConfig.AutoDelete,
		queueConfig.Exclusive,
		queueConfig.NoWait,
		args,
	)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	return &Connection{Conn: conn, Ch: ch, Queue: queue}, nil
}

func (c *Connection) Close() error {
	return c.Conn.Close()
}
