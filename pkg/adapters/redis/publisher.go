package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/carepath/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

const defaultChannel = "carepath:snapshots"

// Publisher implements ports.SnapshotPublisher using Redis.
// Every snapshot is PUBLISHed on a channel for live renderers and stored
// under a key so that a renderer joining late can fetch the latest one.
type Publisher struct {
	client  *backend.Client
	channel string
	key     string
	ttl     time.Duration
}

type Option func(*Publisher)

// WithChannel sets the pub/sub channel.
func WithChannel(channel string) Option {
	return func(p *Publisher) {
		p.channel = channel
	}
}

// WithKey sets the key holding the latest snapshot. Defaults to "<channel>:latest".
func WithKey(key string) Option {
	return func(p *Publisher) {
		p.key = key
	}
}

// WithTTL bounds how long the latest snapshot survives after the last publish.
// Zero keeps it until the key is overwritten or deleted.
func WithTTL(ttl time.Duration) Option {
	return func(p *Publisher) {
		p.ttl = ttl
	}
}

// New creates a publisher connected to address.
func New(address, password string, db int, opts ...Option) *Publisher {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a publisher from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Publisher {
	p := &Publisher{
		client:  client,
		channel: defaultChannel,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.key == "" {
		p.key = p.channel + ":latest"
	}
	return p
}

// Channel returns the pub/sub channel name.
func (p *Publisher) Channel() string {
	return p.channel
}

// Publish stores snap as the latest snapshot and broadcasts it.
func (p *Publisher) Publish(ctx context.Context, snap domain.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	pipe := p.client.Pipeline()
	pipe.Set(ctx, p.key, data, p.ttl)
	pipe.Publish(ctx, p.channel, data)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish to redis: %w", err)
	}
	return nil
}

// Latest returns the most recently published snapshot.
// It returns domain.ErrSessionNotFound when nothing was published yet or the key expired.
func (p *Publisher) Latest(ctx context.Context) (domain.Snapshot, error) {
	val, err := p.client.Get(ctx, p.key).Result()
	if err != nil {
		if err == backend.Nil {
			return domain.Snapshot{}, domain.ErrSessionNotFound
		}
		return domain.Snapshot{}, fmt.Errorf("failed to get from redis: %w", err)
	}
	var snap domain.Snapshot
	if err := json.Unmarshal([]byte(val), &snap); err != nil {
		return domain.Snapshot{}, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return snap, nil
}

// Subscribe streams snapshots published on the channel until ctx is done.
// Messages that do not decode are skipped.
func (p *Publisher) Subscribe(ctx context.Context) (<-chan domain.Snapshot, error) {
	sub := p.client.Subscribe(ctx, p.channel)
	// Wait for the confirmation so no publish after Subscribe returns is missed.
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", p.channel, err)
	}

	out := make(chan domain.Snapshot)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var snap domain.Snapshot
				if err := json.Unmarshal([]byte(msg.Payload), &snap); err != nil {
					continue
				}
				select {
				case out <- snap:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Close closes the redis client.
func (p *Publisher) Close() error {
	return p.client.Close()
}
