// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package constants holds the fixed values shared across authd packages:
// service identity, HTTP server limits, throttling, token transport headers
// and the Redis keys the mail outbox uses.
package constants

import "time"

const (
	AppName    = "authd"
	AppVersion = "0.1.0-dev"
)

// # HTTP Server

const (
	DefaultReadHeaderTimeout = 2 * time.Second
	DefaultReadTimeout       = 5 * time.Second
	DefaultWriteTimeout      = 10 * time.Second
	DefaultIdleTimeout       = 2 * time.Minute

	// GlobalRequestTimeout bounds a whole request. Postgres sessions use the
	// same value as statement_timeout.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is the drain window for in-flight requests on SIGTERM.
	ShutdownTimeout = 30 * time.Second
)

// # Throttling

const (
	// DefaultRateLimitRPS and DefaultRateLimitBurst size the per-IP bucket.
	DefaultRateLimitRPS   = 20.0
	DefaultRateLimitBurst = 40

	// Idle buckets older than RateLimitClientTTL are swept every
	// RateLimitCleanupInterval.
	RateLimitCleanupInterval = time.Minute
	RateLimitClientTTL       = 3 * time.Minute
)

// # Tokens And Codes

const (
	// AuthIssuer is the "iss" claim of every issued token.
	AuthIssuer = "authd"

	BearerPrefix = "Bearer "

	// Tokens are read from Authorization first, then these fallbacks.
	HeaderAuthorization = "Authorization"
	HeaderAccessToken   = "X-Access-Token"
	HeaderToken         = "Token"

	// One-time codes are uniform in [OneTimeCodeMin, OneTimeCodeMax].
	OneTimeCodeMin = 100000
	OneTimeCodeMax = 999999
)

// # Request Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
)

// # Health Payload

const (
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)

// RedisKeyMailOutbox is the Redis list queued mail is pushed onto and popped from.
const RedisKeyMailOutbox = "mail:outbox"
