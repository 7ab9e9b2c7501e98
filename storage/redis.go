package storage

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/octabyte/caisse-gommon/db/redis"
	goredis "github.com/redis/go-redis/v9"
)

const DefaultRedisPrefix = "caisse:"

type RedisConfig struct {
	redis.Config
	// Prefix namespaces the two keys, e.g. per workstation.
	Prefix string
	// TTL of the stored pair; zero keeps it until logout.
	TTL time.Duration `validate:"gte=0"`
}

func (cfg *RedisConfig) Validate() error {
	return validator.New(validator.WithRequiredStructEnabled()).Struct(cfg)
}

// RedisStore keeps the pair under <prefix>token and <prefix>user.
type RedisStore struct {
	client goredis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client goredis.Cmdable, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

// ConnectRedisStore dials Redis and returns the store together with the client
// so the caller can close it.
func ConnectRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, *goredis.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	client, err := redis.NewRedisClient(ctx, cfg.Config)
	if err != nil {
		return nil, nil, err
	}

	return NewRedisStore(client, cfg.Prefix, cfg.TTL), client, nil
}

func (r *RedisStore) key(name string) string {
	return r.prefix + name
}

func (r *RedisStore) Load(ctx context.Context) (*Credentials, error) {
	values, _, err := redis.GetAll(ctx, r.client, r.key(TokenKey), r.key(UserKey))
	if err != nil {
		return nil, err
	}
	return decode(values[0], values[1])
}

func (r *RedisStore) Save(ctx context.Context, creds Credentials) error {
	values, err := encode(creds)
	if err != nil {
		return err
	}

	return redis.SetAll(ctx, r.client, map[string]string{
		r.key(TokenKey): values[TokenKey],
		r.key(UserKey):  values[UserKey],
	}, r.ttl)
}

func (r *RedisStore) Clear(ctx context.Context) error {
	return redis.Del(ctx, r.client, r.key(TokenKey), r.key(UserKey))
}
