package sink

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/FraudStream/models"
)

// RedisOptions configures the Redis pub/sub sink
type RedisOptions struct {
	Addrs          []string
	Channel        string
	ConnectTimeout time.Duration
}

// RedisSink publishes every event on a Redis pub/sub channel. A single
// address connects to a standalone server, several to a cluster.
type RedisSink struct {
	client  redis.UniversalClient
	channel string
	logger  zerolog.Logger
}

// NewRedisSink connects and waits for the server to answer a PING
func NewRedisSink(ctx context.Context, opts RedisOptions) (*RedisSink, error) {
	if len(opts.Addrs) == 0 {
		return nil, errors.New("redis sink: no addresses")
	}
	if opts.Channel == "" {
		return nil, errors.New("redis sink: empty channel")
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 30 * time.Second
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:          opts.Addrs,
		RouteByLatency: len(opts.Addrs) > 1,
	})

	logger := log.With().Str("component", "redis_sink").Str("channel", opts.Channel).Logger()

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = opts.ConnectTimeout
	attempt := 0
	ping := func() error {
		attempt++
		err := client.Ping(ctx).Err()
		if err != nil {
			logger.Warn().Err(err).Int("attempt", attempt).Msg("Waiting for Redis")
		}
		return err
	}
	if err := backoff.Retry(ping, backoff.WithContext(b, ctx)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis %v: %w", opts.Addrs, err)
	}

	logger.Info().Strs("addrs", opts.Addrs).Msg("Connected to Redis")
	return &RedisSink{client: client, channel: opts.Channel, logger: logger}, nil
}

// Name implements Publisher
func (s *RedisSink) Name() string {
	return "redis"
}

// Publish sends ev to the channel
func (s *RedisSink) Publish(ctx context.Context, ev models.TransactionEvent) error {
	payload, err := Encode(ev)
	if err != nil {
		return err
	}
	receivers, err := s.client.Publish(ctx, s.channel, payload).Result()
	if err != nil {
		return fmt.Errorf("publishing %s: %w", ev.ID, err)
	}
	s.logger.Debug().Str("id", ev.ID).Int64("receivers", receivers).Msg("Event published")
	return nil
}

// Close releases the connection pool
func (s *RedisSink) Close() error {
	return s.client.Close()
}
