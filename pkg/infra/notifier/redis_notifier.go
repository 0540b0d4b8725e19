package notifier

import (
	"context"
	"encoding/json"
	"time"

	"github.com/NeuralTrust/SafeChat/pkg/domain/notification"
	"github.com/NeuralTrust/SafeChat/pkg/infra/cache"
)

const (
	DefaultChannel       = "guardian:notifications"
	GuardianNotification = "guardian_notification"
)

// RedisNotifier publishes guardian notifications for the dashboard to pick up.
type RedisNotifier struct {
	cache   cache.Client
	channel string
}

func NewRedisNotifier(c cache.Client, channel string) *RedisNotifier {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisNotifier{
		cache:   c,
		channel: channel,
	}
}

func (n *RedisNotifier) Notify(ctx context.Context, notification *notification.Notification) error {
	b, err := json.Marshal(notification)
	if err != nil {
		return err
	}
	data, err := json.Marshal(cache.RedisMessage{
		Type:  GuardianNotification,
		Event: b,
	})
	if err != nil {
		return err
	}
	return n.cache.Publish(ctx, n.channel, data)
}

// RedisDeduplicator marks keys with SETNX so the first writer within a window wins.
type RedisDeduplicator struct {
	cache cache.Client
}

func NewRedisDeduplicator(c cache.Client) *RedisDeduplicator {
	return &RedisDeduplicator{cache: c}
}

func (d *RedisDeduplicator) FirstSeen(ctx context.Context, key string, window time.Duration) (bool, error) {
	return d.cache.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), window)
}
