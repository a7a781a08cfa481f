package session

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"muniboard-be/models"
)

const keyPrefix = "session:"

// Redis stores each principal as a JSON blob under a fixed per-session key.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Set(ctx context.Context, key string, p models.Principal) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, keyPrefix+key, payload, TTL).Err()
}

func (r *Redis) Get(ctx context.Context, key string) (*models.Principal, error) {
	payload, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	var p models.Principal
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Redis) Clear(ctx context.Context, key string) error {
	return r.client.Del(ctx, keyPrefix+key).Err()
}
