// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr classifies pgx and Postgres failures into [apperr.AppError]
// values, so repositories never leak SQL details to handlers.
package dberr

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/authd/internal/platform/apperr"
)

var (
	// ErrNotFound is returned for a lookup that matched no row.
	ErrNotFound = apperr.NotFound("Resource")

	// ErrDuplicate is returned when a write hits a unique index.
	ErrDuplicate = apperr.Conflict("Resource already exists")

	// ErrContention is returned when Postgres aborts a write to keep
	// transactions serializable. Retrying the operation is safe.
	ErrContention = apperr.ConcurrentUpdate("Resource was modified concurrently")
)

// Wrap classifies err. action names the failed step (e.g. "account_create")
// and only reaches server logs, through the INTERNAL_ERROR cause.
func Wrap(err error, action string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return ErrNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", action, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return ErrDuplicate.WithCause(err)
		case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
			return ErrContention.WithCause(err)
		}
	}

	return apperr.Internal(fmt.Errorf("%s: %w", action, err))
}
