// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/authd/internal/platform/constants"
)

const (
	// DefaultPollTimeout bounds each BRPOP so cancellation is noticed promptly.
	DefaultPollTimeout = 5 * time.Second

	popRetryDelay = time.Second
)

// Dispatcher drains the outbox and hands rendered messages to a [Transport].
type Dispatcher struct {
	client      redis.Cmdable
	key         string
	transport   Transport
	logger      *slog.Logger
	pollTimeout time.Duration
}

// NewDispatcher creates a [Dispatcher] reading [constants.RedisKeyMailOutbox].
// A non-positive pollTimeout selects [DefaultPollTimeout].
func NewDispatcher(client redis.Cmdable, transport Transport, logger *slog.Logger, pollTimeout time.Duration) *Dispatcher {
	if pollTimeout <= 0 {
		pollTimeout = DefaultPollTimeout
	}
	return &Dispatcher{
		client:      client,
		key:         constants.RedisKeyMailOutbox,
		transport:   transport,
		logger:      logger,
		pollTimeout: pollTimeout,
	}
}

// Run blocks until ctx is cancelled, delivering jobs as they arrive.
func (dispatcher *Dispatcher) Run(ctx context.Context) error {
	dispatcher.logger.Info("mail_dispatcher_started", slog.String("queue", dispatcher.key))
	defer dispatcher.logger.Info("mail_dispatcher_stopped")

	for ctx.Err() == nil {
		result, err := dispatcher.client.BRPop(ctx, dispatcher.pollTimeout, dispatcher.key).Result()

		switch {
		case errors.Is(err, redis.Nil):
			continue
		case err != nil:
			if ctx.Err() != nil {
				return nil
			}
			dispatcher.logger.Error("mail_outbox_pop_failed", slog.Any("error", err))

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(popRetryDelay):
			}
			continue
		}

		// BRPOP answers [key, value].
		if len(result) == 2 {
			_ = dispatcher.Deliver(ctx, result[1])
		}
	}

	return nil
}

// Deliver decodes, renders and sends a single queued payload. Failures are
// logged and returned; the job is not requeued.
func (dispatcher *Dispatcher) Deliver(ctx context.Context, payload string) error {
	var job Job
	if err := json.Unmarshal([]byte(payload), &job); err != nil {
		dispatcher.logger.Error("mail_job_malformed", slog.Any("error", err))
		return fmt.Errorf("mail: malformed job: %w", err)
	}

	message, err := Render(job)
	if err != nil {
		dispatcher.logger.Error("mail_render_failed", slog.String("kind", string(job.Kind)), slog.Any("error", err))
		return err
	}

	if err := dispatcher.transport.Send(ctx, message); err != nil {
		dispatcher.logger.Error("mail_delivery_failed",
			slog.String("kind", string(job.Kind)),
			slog.String("to", job.To),
			slog.Any("error", err),
		)
		return fmt.Errorf("mail: delivery failed: %w", err)
	}

	dispatcher.logger.Info("mail_delivered",
		slog.String("kind", string(job.Kind)),
		slog.String("to", job.To),
		slog.Duration("queued_for", time.Since(job.QueuedAt)),
	)
	return nil
}
