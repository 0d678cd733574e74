package cache

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/Tattzy25/real-code-homie/config"
)

func InitRedis(cfg *config.AppConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.Database,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
