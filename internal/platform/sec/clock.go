// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package sec provides cryptographic primitives and identity building blocks.

# Architecture

This package isolates security-sensitive code (hashing, token signing, random
identifiers) from the domain logic. Everything here is pure computation or
bounded CPU work; nothing touches storage.

  - Clock: the single source of "now" for token issuance and code windows.
  - Source: session nonces, public ids and 6-digit one-time codes.
  - Hasher: bcrypt behind a bounded worker gate.
  - TokenCodec: HS256 access/refresh tokens.
*/
package sec

import "time"

// # Time

// Clock supplies the current time. Implementations must be safe for concurrent use.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock, normalized to UTC.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// ClockFunc adapts a plain function to the [Clock] interface.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time { return f() }
