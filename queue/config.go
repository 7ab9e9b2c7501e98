package queue

import "github.com/go-playground/validator/v10"

const DefaultSessionEventsQueue = "caisse.session.events"

type ConnectionConfig struct {
	// URI: The RabbitMQ connection URI, which includes the address, port, and authentication credentials if necessary
	URI string `validate:"required,uri"`
	// QueueConfig: The queue declared on connect
	QueueConfig *Config `validate:"required"`
}

func (cfg *ConnectionConfig) Validate() error {
	return validator.New(validator.WithRequiredStructEnabled()).Struct(cfg)
}

type Config struct {
	// Name: The name of the queue to be declared and used for message exchange.
	Name string `validate:"required"`
	// Type: classic or quorum; empty leaves the server default.
	Type QueueType `validate:"omitempty,oneof=classic quorum stream"`
	// Durable: Indicates whether the queue should be durable (persistent) or not.
	Durable bool
	// AutoDelete: Indicates whether the queue should be automatically deleted when it is no longer in use.
	AutoDelete bool
	// Exclusive: Indicates whether the queue should be exclusive to the connection that declares it.
	Exclusive bool
	// NoWait: Indicates whether the queue declaration should not wait for a response from the server.
	NoWait bool
	// Args: Additional x-arguments for the declaration, e.g. `x-message-ttl`.
	Args map[string]interface{}
}

type PublishConfig struct {
	// Exchange: The name of the exchange to be used for message publishing; empty is the default exchange.
	Exchange string
	// RoutingKey: With the default exchange this is the queue name.
	RoutingKey string `validate:"required"`
	// ContentType: The content type of the message to be published.
	ContentType string
	// DeliveryMode: amqp.Transient (1) or amqp.Persistent (2).
	DeliveryMode uint8
}

// SessionEventsConfig is the durable queue used for session lifecycle events.
func SessionEventsConfig(name string) *Config {
	if name == "" {
		name = DefaultSessionEventsQueue
	}
	return &Config{
		Name:    name,
		Type:    QueueTypeClassic,
		Durable: true,
	}
}
