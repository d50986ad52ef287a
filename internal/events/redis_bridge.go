package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultChannel is the Redis pub/sub channel for identity events
const DefaultChannel = "gateward:identity-events"

// RedisBridge fans identity events out across processes via Redis pub/sub.
// Outbound events are published to the channel; inbound messages are
// delivered to the local notifier's handlers, so a gateway instance reacts
// to events emitted by its peers.
type RedisBridge struct {
	client   redis.UniversalClient
	channel  string
	notifier *Notifier
	logger   *zap.Logger
	pubsub   *redis.PubSub
	closed   chan struct{}
}

// NewRedisBridge creates a bridge over an existing Redis client
func NewRedisBridge(client redis.UniversalClient, channel string, notifier *Notifier, logger *zap.Logger) *RedisBridge {
	if channel == "" {
		channel = DefaultChannel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisBridge{
		client:   client,
		channel:  channel,
		notifier: notifier,
		logger:   logger,
		closed:   make(chan struct{}),
	}
}

// Start subscribes to the channel and forwards incoming events locally
// until Close is called
func (b *RedisBridge) Start() {
	b.pubsub = b.client.Subscribe(context.Background(), b.channel)

	go func() {
		defer close(b.closed)
		for msg := range b.pubsub.Channel() {
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.logger.Warn("Dropping malformed identity event",
					zap.String("channel", b.channel),
					zap.Error(err),
				)
				continue
			}
			b.notifier.PublishSync(event)
		}
	}()
}

// Publish sends an event to every subscribed process, including this one
func (b *RedisBridge) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.channel, payload).Err()
}

// Close stops the subscriber loop
func (b *RedisBridge) Close() {
	if b.pubsub != nil {
		b.pubsub.Close()
		<-b.closed
	}
}
