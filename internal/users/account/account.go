// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account handles the self-service side of an account: reading the
private profile, renaming and closing it.

# Architecture

  - Entities: Profile (DTO over [auth.Account]).
  - Domain: This package depends on the auth package for the Account entity
    and its repository; it never touches credentials or codes.
  - Security: Closing an account rotates its session nonce, so every token
    minted for it stops verifying at once.
*/
package account

import (
	"context"
	"time"

	"github.com/taibuivan/authd/internal/platform/sec"
	"github.com/taibuivan/authd/internal/users/auth"
)

// # Domain Entities

// Profile is the owner's view of an account. It adds role and timestamps to
// the public [auth.Summary] and still omits every secret.
type Profile struct {
	PublicID        string       `json:"uid"`
	Name            string       `json:"name"`
	Email           string       `json:"email"`
	Role            sec.UserRole `json:"role"`
	Status          auth.Status  `json:"status"`
	EmailVerifiedAt *time.Time   `json:"emailVerifiedAt,omitempty"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

func newProfile(account *auth.Account) *Profile {
	return &Profile{
		PublicID:        account.PublicID,
		Name:            account.Name,
		Email:           account.Email,
		Role:            account.Role,
		Status:          account.Status,
		EmailVerifiedAt: account.EmailVerifiedAt,
		CreatedAt:       account.CreatedAt,
		UpdatedAt:       account.UpdatedAt,
	}
}

// # Repository Contracts

// AccountRepository is the slice of [auth.AccountRepository] this package
// needs. [auth.PostgresAccountRepository] satisfies it.
type AccountRepository interface {
	/*
		FindByID retrieves a live account by its internal id.

		Parameters:
		  - context: context.Context
		  - id: int64

		Returns:
		  - *auth.Account: Loaded account entity
		  - error: NOT_FOUND or storage failures
	*/
	FindByID(context context.Context, id int64) (*auth.Account, error)

	/*
		UpdateFields applies a patch when the stored version still equals version.

		Returns:
		  - int64: Affected rows (0 when another writer got there first)
		  - error: Storage failures
	*/
	UpdateFields(context context.Context, id, version int64, patch auth.AccountPatch) (int64, error)

	/*
		SoftDelete marks the account DELETED and stores nonce in the same write.

		Returns:
		  - int64: Affected rows
		  - error: Storage failures
	*/
	SoftDelete(context context.Context, id, version int64, nonce string) (int64, error)
}
