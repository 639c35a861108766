// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// # Password Hashing

// Hasher hashes and verifies passwords with bcrypt.
//
// At most `workers` hash operations run at once; further callers wait on the
// gate until a slot frees up or their context ends. Unrelated requests are
// never queued behind a hashing burst.
type Hasher struct {
	cost int
	gate *semaphore.Weighted
}

// NewHasher creates a [Hasher]. A cost outside bcrypt's range falls back to
// [bcrypt.DefaultCost]; workers below 1 is treated as 1.
func NewHasher(cost int, workers int64) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	if workers < 1 {
		workers = 1
	}
	return &Hasher{cost: cost, gate: semaphore.NewWeighted(workers)}
}

// Hash returns the bcrypt hash of password with a per-call salt.
func (hasher *Hasher) Hash(ctx context.Context, password string) (string, error) {
	if err := hasher.gate.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("sec: hash gate: %w", err)
	}
	defer hasher.gate.Release(1)

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), hasher.cost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether password matches hash. A mismatch is (false, nil);
// an error means the hash is malformed or the context ended while waiting.
func (hasher *Hasher) Verify(ctx context.Context, password, hash string) (bool, error) {
	if err := hasher.gate.Acquire(ctx, 1); err != nil {
		return false, fmt.Errorf("sec: hash gate: %w", err)
	}
	defer hasher.gate.Release(1)

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("sec: failed to compare password: %w", err)
	}
}
