// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/authd/internal/platform/constants"
)

// Outbox is a [Mailer] that queues jobs on a Redis list.
type Outbox struct {
	client redis.Cmdable
	key    string
	now    func() time.Time
}

// NewOutbox creates an [Outbox] writing to [constants.RedisKeyMailOutbox].
func NewOutbox(client redis.Cmdable) *Outbox {
	return &Outbox{client: client, key: constants.RedisKeyMailOutbox, now: time.Now}
}

// SendVerification queues a verification code for delivery.
func (outbox *Outbox) SendVerification(ctx context.Context, to, name, code string) error {
	return outbox.enqueue(ctx, Job{Kind: KindVerification, To: to, Name: name, Code: code})
}

// SendPasswordReset queues a password-reset code for delivery.
func (outbox *Outbox) SendPasswordReset(ctx context.Context, to, name, code string) error {
	return outbox.enqueue(ctx, Job{Kind: KindPasswordReset, To: to, Name: name, Code: code})
}

func (outbox *Outbox) enqueue(ctx context.Context, job Job) error {
	job.QueuedAt = outbox.now().UTC()

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("mail: failed to encode job: %w", err)
	}

	if err := outbox.client.LPush(ctx, outbox.key, payload).Err(); err != nil {
		return fmt.Errorf("mail: failed to enqueue %s job: %w", job.Kind, err)
	}
	return nil
}
