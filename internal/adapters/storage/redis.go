package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/productivitybrain/core/internal/infrastructure/logger"
	"github.com/productivitybrain/core/internal/ports"
)

// Redis keeps each key as a Redis string and announces every write on a
// pub/sub channel so other instances can refresh.
type Redis struct {
	client     *redis.Client
	channel    string
	instanceID string
	logger     *logger.Logger
}

func NewRedis(client *redis.Client, channel string, log *logger.Logger) *Redis {
	return &Redis{
		client:     client,
		channel:    channel,
		instanceID: uuid.NewString(),
		logger:     log.WithComponent("redis-storage"),
	}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ports.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

// Set writes the value and publishes the change in one transaction
func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, value, 0)
	pipe.Publish(ctx, r.channel, r.instanceID+" "+key)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Watch subscribes to the change channel and reports keys written by other
// instances.
func (r *Redis) Watch(ctx context.Context, onChange func(key string)) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", r.channel, err)
	}
	r.logger.Infow("Subscribed to change channel", "channel", r.channel)

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			origin, key, found := strings.Cut(msg.Payload, " ")
			if !found || origin == r.instanceID {
				continue
			}
			onChange(key)
		}
	}
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
