// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"

	"github.com/taibuivan/authd/internal/platform/sec"
)

// # Account Data Access

// AccountRepository defines the data access contract for accounts.
//
// Every lookup ignores soft-deleted rows. Writes are guarded by the version
// the caller read; a write against a stale version affects zero rows.
type AccountRepository interface {

	/*
		FindByID returns the account with the given internal ID.

		Parameters:
		  - context: context.Context
		  - id: int64

		Returns:
		  - *Account: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByID(context context.Context, id int64) (*Account, error)

	/*
		FindByEmail returns the account with the given email, compared
		case-insensitively.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *Account: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*Account, error)

	/*
		FindByPublicID returns the account with the given public identifier.

		Parameters:
		  - context: context.Context
		  - publicID: string

		Returns:
		  - *Account: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByPublicID(context context.Context, publicID string) (*Account, error)

	/*
		FindByPublicIDAndRole returns the account only when it also carries role.

		Parameters:
		  - context: context.Context
		  - publicID: string
		  - role: sec.UserRole

		Returns:
		  - *Account: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByPublicIDAndRole(context context.Context, publicID string, role sec.UserRole) (*Account, error)

	/*
		Create persists a brand-new account and fills in its ID, version and
		timestamps.

		Parameters:
		  - context: context.Context
		  - account: *Account

		Returns:
		  - error: apperr.Conflict on a duplicate email, or persistence failures
	*/
	Create(context context.Context, account *Account) error

	/*
		UpdateFields writes patch to the account if its version still equals
		version, and bumps the version.

		Parameters:
		  - context: context.Context
		  - id: int64
		  - version: int64 (The version the caller read)
		  - patch: AccountPatch

		Returns:
		  - int64: Rows affected (0 means the row moved on or was deleted)
		  - error: Persistence failures
	*/
	UpdateFields(context context.Context, id, version int64, patch AccountPatch) (int64, error)

	/*
		SoftDelete marks the account as deleted, sets status DELETED and writes
		nonce as its final session nonce.

		Parameters:
		  - context: context.Context
		  - id: int64
		  - version: int64
		  - nonce: string

		Returns:
		  - int64: Rows affected
		  - error: Persistence failures
	*/
	SoftDelete(context context.Context, id, version int64, nonce string) (int64, error)
}
