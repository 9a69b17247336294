package auth

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/gofiber/storage/redis/v3"
)

const pingTimeout = time.Second

// NewRedisStorage returns a fiber.Storage on redis so replicas share the
// limiter counters. url has the form redis://[:password@]host:port/db.
//
// The gofiber adapter panics when it cannot connect, the url is therefore
// parsed and pinged with a short-lived client first.
func NewRedisStorage(url string) (*redis.Storage, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid limiter redis url: %w", err)
	}

	client := goredis.NewClient(opts)
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err = client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("limiter redis unreachable: %w", err)
	}

	return redis.New(redis.Config{URL: url}), nil
}
