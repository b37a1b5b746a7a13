package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/coopvine/coopvine-backend/pkg/messaging"
)

// Notifier publishes fire-and-forget notification events (picked up by
// the email worker). Publish failures are logged, never propagated.
type Notifier interface {
	Notify(ctx context.Context, event string, payload map[string]interface{})
}

type redisNotifier struct {
	client  messaging.RedisClient
	channel string
	logger  *zap.Logger
}

// NewRedisNotifier creates a notifier backed by redis pub/sub.
func NewRedisNotifier(client messaging.RedisClient, channel string, logger *zap.Logger) Notifier {
	return &redisNotifier{
		client:  client,
		channel: channel,
		logger:  logger,
	}
}

func (n *redisNotifier) Notify(ctx context.Context, event string, payload map[string]interface{}) {
	message := map[string]interface{}{
		"event": event,
		"data":  payload,
	}

	if err := n.client.Publish(ctx, n.channel, message); err != nil {
		n.logger.Warn("failed to publish notification event",
			zap.String("event", event),
			zap.Error(err))
	}
}

// nopNotifier is used when redis is not configured.
type nopNotifier struct{}

// NewNopNotifier returns a Notifier that discards all events.
func NewNopNotifier() Notifier {
	return nopNotifier{}
}

func (nopNotifier) Notify(context.Context, string, map[string]interface{}) {}
