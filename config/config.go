package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/octabyte/caisse-gommon/db/redis"
	"github.com/octabyte/caisse-gommon/gateway"
	"github.com/octabyte/caisse-gommon/queue"
	"github.com/octabyte/caisse-gommon/storage"
	"github.com/octabyte/caisse-gommon/utils/logger"
)

const (
	StorageFile  = "file"
	StorageRedis = "redis"

	defaultAppEnv    = "development"
	defaultLogLevel  = "info"
	defaultRedisAddr = "localhost:6379"
)

// Config captures the client runtime configuration loaded from environment variables.
type Config struct {
	APIURL      string `validate:"required,url"`
	Storage     string `validate:"required,oneof=file redis"`
	SessionFile string `validate:"required_if=Storage file"`

	RedisAddr     string `validate:"required_if=Storage redis"`
	RedisPassword string
	RedisDB       int `validate:"gte=0"`
	RedisPrefix   string
	SessionTTL    time.Duration `validate:"gte=0"`

	AMQPURI   string `validate:"omitempty,uri"`
	AMQPQueue string

	AppEnv   string
	LogLevel string
}

// Load reads configuration values from the environment and validates them.
func Load() (Config, error) {
	sessionFile, err := storage.DefaultSessionPath()
	if err != nil {
		sessionFile = ""
	}

	cfg := Config{
		APIURL:        getEnv("CAISSE_API_URL", gateway.DefaultBaseURL),
		Storage:       strings.ToLower(getEnv("CAISSE_STORAGE", StorageFile)),
		SessionFile:   getEnv("CAISSE_SESSION_FILE", sessionFile),
		RedisAddr:     getEnv("CAISSE_REDIS_ADDR", defaultRedisAddr),
		RedisPassword: os.Getenv("CAISSE_REDIS_PASSWORD"),
		RedisPrefix:   getEnv("CAISSE_REDIS_PREFIX", storage.DefaultRedisPrefix),
		AMQPURI:       os.Getenv("CAISSE_AMQP_URI"),
		AMQPQueue:     getEnv("CAISSE_AMQP_QUEUE", queue.DefaultSessionEventsQueue),
		AppEnv:        getEnv("APP_ENV", defaultAppEnv),
		LogLevel:      strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
	}

	if v := os.Getenv("CAISSE_REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid CAISSE_REDIS_DB: %w", err)
		}
		cfg.RedisDB = db
	}

	if v := os.Getenv("CAISSE_SESSION_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid CAISSE_SESSION_TTL: %w", err)
		}
		cfg.SessionTTL = ttl
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	return validator.New(validator.WithRequiredStructEnabled()).Struct(c)
}

func (c Config) Gateway() gateway.Config {
	return gateway.Config{BaseURL: c.APIURL}
}

func (c Config) Redis() storage.RedisConfig {
	return storage.RedisConfig{
		Config: redis.Config{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		},
		Prefix: c.RedisPrefix,
		TTL:    c.SessionTTL,
	}
}

// Queue returns the event queue connection settings, or nil when event
// publishing is not configured.
func (c Config) Queue() *queue.ConnectionConfig {
	if c.AMQPURI == "" {
		return nil
	}
	return &queue.ConnectionConfig{
		URI:         c.AMQPURI,
		QueueConfig: queue.SessionEventsConfig(c.AMQPQueue),
	}
}

func (c Config) Logger(serviceName string) *logger.Config {
	return &logger.Config{
		Level:       c.LogLevel,
		Env:         c.AppEnv,
		ServiceName: serviceName,
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
