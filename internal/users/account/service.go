// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/authd/internal/platform/ctxutil"
	"github.com/taibuivan/authd/internal/platform/sec"
	"github.com/taibuivan/authd/internal/users/auth"
)

// # Service Layer

// Service orchestrates self-service changes to an account.
//
// Writes are versioned like the rest of the account lifecycle: a write that
// loses the race surfaces as CONCURRENT_UPDATE and is not retried.
type Service struct {
	accountRepository AccountRepository
	source            sec.Source
}

// NewService constructs a new [Service]. A nil source falls back to the
// operating system CSPRNG.
func NewService(accountRepo AccountRepository, source sec.Source) *Service {
	if source == nil {
		source = sec.NewRandomSource()
	}
	return &Service{accountRepository: accountRepo, source: source}
}

// # Profile Management

/*
GetProfile retrieves the private profile of an account.

Parameters:
  - context: context.Context
  - accountID: int64

Returns:
  - *Profile: The owner's view
  - error: NOT_FOUND or execution failures
*/
func (service *Service) GetProfile(context context.Context, accountID int64) (*Profile, error) {
	account, err := service.accountRepository.FindByID(context, accountID)
	if err != nil {
		return nil, fmt.Errorf("account_service_get_profile_failed: %w", err)
	}
	return newProfile(account), nil
}

/*
UpdateProfile renames an account.

Parameters:
  - context: context.Context
  - accountID: int64
  - name: string (already validated and normalized)

Returns:
  - *Profile: The updated profile
  - error: NOT_FOUND, CONCURRENT_UPDATE or storage failures
*/
func (service *Service) UpdateProfile(context context.Context, accountID int64, name string) (*Profile, error) {
	account, err := service.accountRepository.FindByID(context, accountID)
	if err != nil {
		return nil, fmt.Errorf("account_service_update_lookup_failed: %w", err)
	}

	if account.Name == name {
		return newProfile(account), nil
	}

	patch := auth.AccountPatch{Name: &name}
	affected, err := service.accountRepository.UpdateFields(context, account.ID, account.Version, patch)
	if err != nil {
		return nil, fmt.Errorf("account_service_update_failed: %w", err)
	}
	if affected == 0 {
		return nil, auth.ErrConcurrentUpdate
	}

	patch.Apply(account)
	account.Version++

	ctxutil.GetLogger(context).InfoContext(context, "account_profile_updated", slog.String("public_id", account.PublicID))

	return newProfile(account), nil
}

/*
DeleteAccount soft-deletes an account.

Description: The row keeps its data but is hidden from every lookup. The
session nonce is replaced in the same write, so no outstanding token for the
account verifies afterwards.

Parameters:
  - context: context.Context
  - accountID: int64

Returns:
  - error: NOT_FOUND, CONCURRENT_UPDATE or storage failures
*/
func (service *Service) DeleteAccount(context context.Context, accountID int64) error {
	account, err := service.accountRepository.FindByID(context, accountID)
	if err != nil {
		return fmt.Errorf("account_service_delete_lookup_failed: %w", err)
	}

	nonce, err := service.source.NewNonce()
	if err != nil {
		return fmt.Errorf("account_service_nonce_failed: %w", err)
	}

	affected, err := service.accountRepository.SoftDelete(context, account.ID, account.Version, nonce)
	if err != nil {
		return fmt.Errorf("account_service_delete_failed: %w", err)
	}
	if affected == 0 {
		return auth.ErrConcurrentUpdate
	}

	ctxutil.GetLogger(context).WarnContext(context, "account_deleted", slog.String("public_id", account.PublicID))

	return nil
}
