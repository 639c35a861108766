// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"time"

	"github.com/taibuivan/authd/internal/platform/apperr"
)

// # Lifecycle Constraints

const (
	// DefaultCodeWindow is how long a verification or reset code stays valid.
	DefaultCodeWindow = 15 * time.Minute

	// MinPasswordLength and MaxPasswordLength bound new passwords. bcrypt
	// ignores everything past 72 bytes.
	MinPasswordLength = 6
	MaxPasswordLength = 72
)

// # Field Identifiers

// Request field names shared by the validation schemas and handlers.
const (
	FieldName         = "name"
	FieldEmail        = "email"
	FieldPassword     = "password"
	FieldRole         = "role"
	FieldToken        = "token"
	FieldRefreshToken = "refreshToken"
	FieldOldPassword  = "oldPassword"
	FieldNewPassword  = "newPassword"
	FieldUser         = "user"
	FieldStatus       = "status"

	FieldVerificationEmailSent = "verificationEmailSent"
)

// # Domain Errors

var (
	// ErrInvalidCredential is deliberately identical for an unknown email, a
	// role mismatch, a wrong password and a banned or deleted account.
	ErrInvalidCredential = apperr.InvalidCredential("Incorrect Email or Password")

	ErrEmailTaken         = apperr.Conflict("Email already exists")
	ErrInvalidRequest     = apperr.InvalidRequest("Invalid request")
	ErrInvalidState       = apperr.InvalidState("Invalid request")
	ErrAlreadyVerified    = apperr.AlreadyVerified("Email already Verified")
	ErrCodeExpired        = apperr.Expired("Token Expired")
	ErrNotActive          = apperr.NotActive("USER_NOT_ACTIVE")
	ErrVerificationResent = apperr.VerificationResent("VERIFICATION_EMAIL_SENT")
	ErrInvalidToken       = apperr.InvalidToken("Invalid refresh token")
	ErrInvalidSession     = apperr.InvalidToken("Invalid or expired session")
	ErrInvalidResetCode   = apperr.InvalidToken("invalid token")
	ErrInvalidOldPassword = apperr.InvalidCredential("invalid old password")
	ErrAccountNotFound    = apperr.NotFound("User")
	ErrProfileNotFound    = apperr.NotFound("Profile")
	ErrConcurrentUpdate   = apperr.ConcurrentUpdate("Account was modified concurrently, please retry")
)
