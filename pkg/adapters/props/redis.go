package props

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/metro/pkg/core"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the hash that holds the properties when none is configured.
const DefaultRedisKey = "metro:properties"

// Redis is a PropertyStore kept in a single Redis hash. Each property is a
// hash field, so hosts sharing the hash keep their own namespaces.
type Redis struct {
	client *redis.Client
	key    string
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	// Addr is the Redis server address (host:port).
	Addr string

	// Password is the Redis password (empty if no auth).
	Password string

	// DB is the Redis database number.
	DB int

	// Key is the hash holding the properties.
	Key string
}

// DefaultRedisConfig returns default Redis configuration.
func DefaultRedisConfig(addr string) *RedisConfig {
	return &RedisConfig{
		Addr: addr,
		Key:  DefaultRedisKey,
	}
}

// NewRedis creates a Redis-backed store.
func NewRedis(config *RedisConfig) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	return NewRedisFromClient(client, config.Key)
}

// NewRedisFromClient creates a store from an existing client.
func NewRedisFromClient(client *redis.Client, key string) *Redis {
	if key == "" {
		key = DefaultRedisKey
	}
	return &Redis{client: client, key: key}
}

// Key returns the hash key.
func (r *Redis) Key() string {
	return r.key
}

// Ping checks the connection.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the client.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Load implements core.PropertyStore.
func (r *Redis) Load(ctx context.Context) (map[string]string, error) {
	props, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall error: %w", err)
	}
	return props, nil
}

// Save implements core.PropertyStore. Stale fields of the namespace are
// removed and the new ones written in one MULTI/EXEC transaction.
func (r *Redis) Save(ctx context.Context, namespace string, props map[string]string) error {
	stale, err := r.namespaceFields(ctx, namespace, props)
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(stale) > 0 {
			pipe.HDel(ctx, r.key, stale...)
		}
		if len(props) > 0 {
			values := make([]any, 0, 2*len(props))
			for k, v := range props {
				values = append(values, k, v)
			}
			pipe.HSet(ctx, r.key, values...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save error: %w", err)
	}
	return nil
}

// Delete implements core.PropertyStore.
func (r *Redis) Delete(ctx context.Context, namespace string) error {
	fields, err := r.namespaceFields(ctx, namespace, nil)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}
	if err := r.client.HDel(ctx, r.key, fields...).Err(); err != nil {
		return fmt.Errorf("redis hdel error: %w", err)
	}
	return nil
}

// namespaceFields lists the hash fields under namespace that are not in keep.
func (r *Redis) namespaceFields(ctx context.Context, namespace string, keep map[string]string) ([]string, error) {
	fields, err := r.client.HKeys(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hkeys error: %w", err)
	}
	var out []string
	for _, f := range fields {
		if !inNamespace(f, namespace) {
			continue
		}
		if _, ok := keep[f]; ok {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

var _ core.PropertyStore = (*Redis)(nil)
