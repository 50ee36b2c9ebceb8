package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/productivitybrain/core/internal/infrastructure/config"
	"github.com/productivitybrain/core/internal/infrastructure/logger"
)

const redisConnectAttempts = 5

// NewRedis connects to Redis, retrying with exponential backoff
func NewRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (*redis.Client, error) {
	retryDelay := 2 * time.Second

	for attempt := 1; attempt <= redisConnectAttempts; attempt++ {
		client := redis.NewClient(&redis.Options{
			Addr:         cfg.GetAddr(),
			Password:     cfg.Password,
			DB:           cfg.DB,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     10,
			MinIdleConns: 3,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err == nil {
			log.Infow("Redis connected", "addr", cfg.GetAddr(), "db", cfg.DB)
			return client, nil
		}
		client.Close()

		log.Warnw("Redis connection failed", "attempt", attempt, "max_attempts", redisConnectAttempts, "error", err)
		if attempt == redisConnectAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
		retryDelay *= 2
	}

	return nil, fmt.Errorf("failed to connect to Redis after %d attempts", redisConnectAttempts)
}
