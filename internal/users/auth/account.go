// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the account identity and session lifecycle.

It owns the account state machine (INACTIVE, ACTIVE, BANNED, DELETED), the
issuance and single-use checking of one-time codes, and the binding of access
and refresh tokens to a per-account session nonce.

# Architecture

  - Account: the persisted aggregate, one row per account.
  - AccountRepository: storage contract, implemented for PostgreSQL.
  - Service: the lifecycle operations (Register, Verify, Login, Refresh...).
  - Handler: the HTTP delivery layer.

A token is only honored while its embedded nonce equals the account's current
session nonce, so rotating the nonce revokes every outstanding token at once.
*/
package auth

import (
	"crypto/subtle"
	"time"

	"github.com/taibuivan/authd/internal/platform/sec"
)

// # Account Status

// Status is the lifecycle state of an account.
type Status string

const (
	StatusInactive Status = "INACTIVE"
	StatusActive   Status = "ACTIVE"
	StatusBanned   Status = "BANNED"
	StatusDeleted  Status = "DELETED"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusInactive, StatusActive, StatusBanned, StatusDeleted:
		return true
	}
	return false
}

// # Domain Entities

// Account is a registered identity.
type Account struct {
	ID              int64
	PublicID        string
	Name            string
	Email           string
	PasswordHash    string
	Role            sec.UserRole
	Status          Status
	EmailVerifiedAt *time.Time

	// VerifyCode is set only while the account is INACTIVE.
	VerifyCode *OneTimeCode

	// SessionNonce is empty until the first successful login or verification.
	SessionNonce string

	ResetCode *OneTimeCode

	// Version increments on every write and guards read-modify-write cycles.
	Version int64

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// Summary returns the public view of the account.
func (account *Account) Summary() Summary {
	return Summary{
		PublicID: account.PublicID,
		Name:     account.Name,
		Email:    account.Email,
		Status:   account.Status,
	}
}

// Summary is the only account shape ever exposed to clients.
type Summary struct {
	PublicID string `json:"uid"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Status   Status `json:"status"`
}

// # One-Time Codes

// OneTimeCode is a 6-digit verification or password-reset code.
type OneTimeCode struct {
	Value       string
	GeneratedAt time.Time
}

// Expired reports whether the code was issued more than window before now.
func (code *OneTimeCode) Expired(now time.Time, window time.Duration) bool {
	return code.GeneratedAt.Add(window).Before(now)
}

// Matches compares candidate against the stored value in constant time.
func (code *OneTimeCode) Matches(candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(code.Value), []byte(candidate)) == 1
}

// # Partial Updates

// AccountPatch lists the columns a single update writes. Nil fields are left
// untouched; the Clear flags write NULL to the matching code columns.
type AccountPatch struct {
	Name            *string
	PasswordHash    *string
	Status          *Status
	EmailVerifiedAt *time.Time
	SessionNonce    *string

	VerifyCode      *OneTimeCode
	ClearVerifyCode bool

	ResetCode      *OneTimeCode
	ClearResetCode bool
}

// Empty reports whether the patch would write nothing.
func (patch AccountPatch) Empty() bool {
	return patch.Name == nil && patch.PasswordHash == nil && patch.Status == nil &&
		patch.EmailVerifiedAt == nil && patch.SessionNonce == nil &&
		patch.VerifyCode == nil && !patch.ClearVerifyCode &&
		patch.ResetCode == nil && !patch.ClearResetCode
}

// Apply copies the patched fields onto account. Version and timestamps are
// owned by the repository.
func (patch AccountPatch) Apply(account *Account) {
	if patch.Name != nil {
		account.Name = *patch.Name
	}
	if patch.PasswordHash != nil {
		account.PasswordHash = *patch.PasswordHash
	}
	if patch.Status != nil {
		account.Status = *patch.Status
	}
	if patch.EmailVerifiedAt != nil {
		verifiedAt := *patch.EmailVerifiedAt
		account.EmailVerifiedAt = &verifiedAt
	}
	if patch.SessionNonce != nil {
		account.SessionNonce = *patch.SessionNonce
	}

	switch {
	case patch.ClearVerifyCode:
		account.VerifyCode = nil
	case patch.VerifyCode != nil:
		code := *patch.VerifyCode
		account.VerifyCode = &code
	}

	switch {
	case patch.ClearResetCode:
		account.ResetCode = nil
	case patch.ResetCode != nil:
		code := *patch.ResetCode
		account.ResetCode = &code
	}
}
