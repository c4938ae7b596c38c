package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// NewClient parses redisURL, connects and pings the server. When
// connectTimeout is positive the ping is retried with exponential backoff
// until it elapses.
func NewClient(ctx context.Context, redisURL string, connectTimeout time.Duration) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	if err := pingWithRetry(ctx, client, connectTimeout); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

func pingWithRetry(ctx context.Context, client *redis.Client, timeout time.Duration) error {
	if timeout <= 0 {
		return client.Ping(ctx).Err()
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = timeout

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := client.Ping(ctx).Err()
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Msg("redis not reachable yet, retrying")
		}
		return err
	}, backoff.WithContext(b, ctx))
}
