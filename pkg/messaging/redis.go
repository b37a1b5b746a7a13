package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisClient is the pub/sub interface used for cross-service events.
type RedisClient interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan Message, error)
	Close() error
}

// Message is a single pub/sub message.
type Message struct {
	Channel string
	Payload []byte
	Time    time.Time
}

type redisClient struct {
	client *redis.Client
}

// NewRedisClient connects to Redis and verifies connectivity.
func NewRedisClient(addr, password string, db int) (RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &redisClient{client: client}, nil
}

func (r *redisClient) Publish(ctx context.Context, channel string, message interface{}) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	return r.client.Publish(ctx, channel, payload).Err()
}

func (r *redisClient) Subscribe(ctx context.Context, channel string) (<-chan Message, error) {
	sub := r.client.Subscribe(ctx, channel)

	if _, err := sub.Receive(ctx); err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	out := make(chan Message)
	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			out <- Message{
				Channel: msg.Channel,
				Payload: []byte(msg.Payload),
				Time:    time.Now(),
			}
		}
	}()

	return out, nil
}

func (r *redisClient) Close() error {
	return r.client.Close()
}
