package kv

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Redis stores slots as plain string keys under a fixed prefix.
type Redis struct {
	client *redis.Client
	prefix string
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client, prefix: "cleanscan:"}
}

func (r *Redis) Get(ctx context.Context, slot string) (string, bool, error) {
	value, err := r.client.Get(ctx, r.prefix+slot).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (r *Redis) Set(ctx context.Context, slot, value string) error {
	return r.client.Set(ctx, r.prefix+slot, value, 0).Err()
}

func (r *Redis) Delete(ctx context.Context, slot string) error {
	return r.client.Del(ctx, r.prefix+slot).Err()
}
