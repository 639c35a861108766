// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package mail delivers verification and password-reset codes.

The API never talks to an SMTP server on the request path. Handlers hand a
[Job] to the [Outbox], which pushes it onto a Redis list; a [Dispatcher]
running in the background pops jobs, renders them and passes them to a
[Transport].

	handler -> Outbox (LPUSH) -> Redis -> Dispatcher (BRPOP) -> Transport

Delivery is best effort: a job that fails to render or send is logged and
dropped.
*/
package mail

import (
	"context"
	"time"
)

// # Contracts

// Mailer is what the account flows depend on.
type Mailer interface {
	SendVerification(ctx context.Context, to, name, code string) error
	SendPasswordReset(ctx context.Context, to, name, code string) error
}

// Transport sends one rendered message.
type Transport interface {
	Send(ctx context.Context, message Message) error
}

// # Types

// Kind selects the template and subject of a job.
type Kind string

const (
	KindVerification  Kind = "verification"
	KindPasswordReset Kind = "password_reset"
)

// Job is the queued unit of work, stored as JSON in the outbox.
type Job struct {
	Kind     Kind      `json:"kind"`
	To       string    `json:"to"`
	Name     string    `json:"name"`
	Code     string    `json:"code"`
	QueuedAt time.Time `json:"queuedAt"`
}

// Message is a rendered email ready for a [Transport].
type Message struct {
	To      string
	Subject string
	HTML    string
}
