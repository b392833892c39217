package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// subscriptionBuffer bounds how far a slow consumer may fall behind before
// publishes block (memory feed) or events drop (redis feed).
const subscriptionBuffer = 64

// Subscription is one live attachment to the change feed. Events arrive on C
// in delivery order; C is closed when the subscription ends, either through
// Close or because the underlying transport failed.
type Subscription struct {
	C      <-chan ChangeEvent
	cancel func()
}

// Close tears the subscription down synchronously. No pending-event drain is
// performed. Safe to call more than once.
func (s *Subscription) Close() {
	s.cancel()
}

// Feed is the change-notification channel for the issues table.
type Feed interface {
	Publish(ctx context.Context, event ChangeEvent) error
	Subscribe(ctx context.Context) (*Subscription, error)
}

// RedisFeed delivers change events over a Redis pub/sub channel, fanning out
// to every subscribed process.
type RedisFeed struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

// NewRedisFeed constructs a feed on the given pub/sub channel.
func NewRedisFeed(client *redis.Client, channel string, logger *zap.Logger) *RedisFeed {
	return &RedisFeed{client: client, channel: channel, logger: logger}
}

// Publish marshals the event and publishes it to the channel.
func (f *RedisFeed) Publish(ctx context.Context, event ChangeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return f.client.Publish(ctx, f.channel, payload).Err()
}

// Subscribe attaches to the channel and pumps decoded events until Close is
// called or the connection drops. A dropped connection closes C; no automatic
// resubscription is attempted.
func (f *RedisFeed) Subscribe(ctx context.Context) (*Subscription, error) {
	pubsub := f.client.Subscribe(ctx, f.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	out := make(chan ChangeEvent, subscriptionBuffer)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			var event ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				f.logger.Warn("dropping malformed change event", zap.Error(err))
				continue
			}
			out <- event
		}
	}()

	return &Subscription{
		C:      out,
		cancel: func() { _ = pubsub.Close() },
	}, nil
}
