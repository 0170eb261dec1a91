package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis stores values as plain strings under a key prefix, without expiry.
type Redis struct {
	client *redis.Client
	prefix string
}

type RedisOptions struct {
	Address   string
	Password  string
	DB        int
	KeyPrefix string
}

type RedisOption func(*RedisOptions)

func WithAddress(addr string) RedisOption {
	return func(o *RedisOptions) {
		o.Address = addr
	}
}

func WithPassword(pass string) RedisOption {
	return func(o *RedisOptions) {
		o.Password = pass
	}
}

func WithDB(db int) RedisOption {
	return func(o *RedisOptions) {
		o.DB = db
	}
}

func WithKeyPrefix(prefix string) RedisOption {
	return func(o *RedisOptions) {
		o.KeyPrefix = prefix
	}
}

// NewRedis connects and pings the server.
func NewRedis(ctx context.Context, opts ...RedisOption) (*Redis, error) {
	options := &RedisOptions{
		Address:   "localhost:6379",
		KeyPrefix: "perfeval:",
	}

	for _, opt := range opts {
		opt(options)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     options.Address,
		Password: options.Password,
		DB:       options.DB,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", options.Address, err)
	}

	return &Redis{client: client, prefix: options.KeyPrefix}, nil
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return val, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
