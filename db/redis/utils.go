package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// SetAll writes every key-value pair in one MULTI/EXEC transaction, so readers
// never observe some of the keys without the others.
func SetAll(ctx context.Context, client redis.Cmdable, values map[string]string, ttl time.Duration) error {
	_, err := client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for key, value := range values {
			pipe.Set(ctx, key, value, ttl)
		}
		return nil
	})
	return err
}

// GetAll returns the values of keys in order; a missing key yields "" and
// ok=false for that position.
func GetAll(ctx context.Context, client redis.Cmdable, keys ...string) ([]string, []bool, error) {
	raw, err := client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, nil, err
	}

	values := make([]string, len(keys))
	found := make([]bool, len(keys))
	for i, v := range raw {
		if s, ok := v.(string); ok {
			values[i] = s
			found[i] = true
		}
	}

	return values, found, nil
}

// Get retrieves the value of a key; ok is false when the key does not exist.
func Get(ctx context.Context, client redis.Cmdable, key string) (string, bool, error) {
	value, err := client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Del deletes keys from Redis.
func Del(ctx context.Context, client redis.Cmdable, keys ...string) error {
	return client.Del(ctx, keys...).Err()
}

// Exists reports whether every key exists.
func Exists(ctx context.Context, client redis.Cmdable, keys ...string) (bool, error) {
	n, err := client.Exists(ctx, keys...).Result()
	return n == int64(len(keys)), err
}
