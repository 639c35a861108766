// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxutil carries the per-request values the HTTP chain attaches: the
// correlation id, the request-scoped logger and the authenticated principal.
//
// Keys are an unexported type, so no other package can read or overwrite them
// through [context.Context] directly.
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/taibuivan/authd/internal/platform/sec"
)

type contextKey int

const (
	requestIDKey contextKey = iota
	loggerKey
	principalKey
	authFailureKey
)

// # Request Tracing

// WithRequestID returns a copy of ctx carrying the X-Request-ID value.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID returns the request id, or "" outside a request.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// # Structured Logging

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// WithLogAttrs derives the request logger with extra attributes, so every
// later log line in the request carries them.
func WithLogAttrs(ctx context.Context, attrs ...any) context.Context {
	return WithLogger(ctx, GetLogger(ctx).With(attrs...))
}

// GetLogger returns the request logger, falling back to [slog.Default].
func GetLogger(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

// # Identity

// WithPrincipal returns a copy of ctx carrying the authenticated principal.
func WithPrincipal(ctx context.Context, principal *sec.Principal) context.Context {
	return context.WithValue(ctx, principalKey, principal)
}

// GetPrincipal returns the authenticated principal, or nil for anonymous requests.
func GetPrincipal(ctx context.Context) *sec.Principal {
	principal, _ := ctx.Value(principalKey).(*sec.Principal)
	return principal
}

// WithAuthFailure records why a presented token was rejected. The request
// continues as anonymous; guards that need a principal report err.
func WithAuthFailure(ctx context.Context, err error) context.Context {
	return context.WithValue(ctx, authFailureKey, err)
}

// GetAuthFailure returns the recorded token rejection, or nil.
func GetAuthFailure(ctx context.Context) error {
	err, _ := ctx.Value(authFailureKey).(error)
	return err
}
