package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisChannel listens on one Pub/Sub channel whose messages look like
// {"event": "order:created", "data": {...}}.
type RedisChannel struct {
	client  *redis.Client
	channel string
	log     *zap.Logger
}

func NewRedisChannel(client *redis.Client, channel string, log *zap.Logger) *RedisChannel {
	return &RedisChannel{client: client, channel: channel, log: log}
}

func (r *RedisChannel) Subscribe(ctx context.Context, names ...string) (*Subscription, error) {
	ps := r.client.Subscribe(ctx, r.channel)
	// Wait for the confirmation so nothing published after Subscribe returns
	// is missed.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("redis subscribe %s: %w", r.channel, err)
	}

	receive := func(ctx context.Context, emit func(Event) bool) {
		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var e Event
				if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil || e.Name == "" {
					r.log.Warn("ignoring malformed realtime message",
						zap.String("channel", msg.Channel), zap.Error(err))
					continue
				}
				if !emit(e) {
					return
				}
			}
		}
	}
	return newSubscription(ctx, names, receive, ps.Close), nil
}
