package resource

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"

	"github.com/streamlift/panel_core/internal/logging"
)

// RedisBus carries invalidation prefixes over a Redis pub/sub channel so
// every gateway replica invalidates together. Prefixes travel in their
// canonical slash-joined form.
type RedisBus struct {
	client  *redis.Client
	channel string
	cache   *Cache
	log     *logging.Logger
	cancel  context.CancelFunc
	done    chan struct{}
}

// RedisBusConfig holds the connection settings for the bus.
type RedisBusConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// NewRedisBus connects to Redis and starts the subscribe loop that
// invalidates the local cache on every received prefix.
func NewRedisBus(ctx context.Context, cfg RedisBusConfig, cache *Cache, log *logging.Logger) (*RedisBus, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	b := &RedisBus{
		client:  client,
		channel: cfg.Channel,
		cache:   cache,
		log:     log,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	sub := client.Subscribe(loopCtx, cfg.Channel)
	go b.receive(loopCtx, sub)
	return b, nil
}

// Publish broadcasts one invalidated key prefix.
func (b *RedisBus) Publish(ctx context.Context, prefix Key) error {
	if err := b.client.Publish(ctx, b.channel, prefix.String()).Err(); err != nil {
		return fmt.Errorf("publish invalidation: %w", err)
	}
	return nil
}

// Close stops the subscribe loop and closes the connection.
func (b *RedisBus) Close() error {
	b.cancel()
	<-b.done
	return b.client.Close()
}

func (b *RedisBus) receive(ctx context.Context, sub *redis.PubSub) {
	defer close(b.done)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			prefix := NewKey(strings.Split(msg.Payload, "/")...)
			b.cache.InvalidatePrefix(prefix)
			b.log.Debug().Str("prefix", msg.Payload).Msg("invalidation received from bus")
		}
	}
}
