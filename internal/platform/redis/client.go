// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package redis opens the go-redis client behind the mail outbox. Handlers
// push queued mail onto a list and the dispatcher drains it, so an SMTP stall
// never blocks signup or login.
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const pingTimeout = 2 * time.Second

// tune applies the outbox client limits. The pool stays small: one
// connection is parked in BRPOP and the rest serve LPUSH from handlers.
func tune(options *goredis.Options) {
	options.PoolSize = 10
	options.MinIdleConns = 2
	options.DialTimeout = 3 * time.Second
	options.ReadTimeout = 2 * time.Second
	options.WriteTimeout = 2 * time.Second
	options.ContextTimeoutEnabled = true
}

// NewClient opens a client for redisURL (redis:// or rediss://) and pings it
// once. The client is closed again when the ping fails.
func NewClient(ctx context.Context, redisURL string, logger *slog.Logger) (*goredis.Client, error) {
	options, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	tune(options)

	client := goredis.NewClient(options)
	if err := Ping(ctx, client); err != nil {
		return nil, closeOnError(err, client)
	}

	logger.Info("redis_client_connected",
		slog.String("addr", options.Addr),
		slog.Int("db", options.DB),
	)
	return client, nil
}

// Ping reports whether client answers within a short deadline. The readiness
// check calls it on every request.
func Ping(ctx context.Context, client goredis.Cmdable) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: ping: %w", err)
	}
	return nil
}

func closeOnError(err error, client *goredis.Client) error {
	if closeErr := client.Close(); closeErr != nil {
		return fmt.Errorf("%w (close: %v)", err, closeErr)
	}
	return err
}
