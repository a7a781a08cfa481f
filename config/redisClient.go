package config

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis initializes the Redis client. Returns nil when no address is
// configured; callers fall back to in-process equivalents.
func ConnectRedis(cfg Config) *redis.Client {
	if cfg.RedisAddr == "" {
		log.Println("REDIS_ADDRESS not set, using in-memory sessions")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0, // default DB
	})
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		panic(fmt.Sprintf("Failed to connect to Redis: %v", err))
	}
	log.Println("Connected to Redis")
	return client
}
