// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/taibuivan/authd/internal/platform/apperr"
	"github.com/taibuivan/authd/internal/platform/ctxutil"
	"github.com/taibuivan/authd/internal/platform/sec"
	"github.com/taibuivan/authd/internal/platform/validate"
	"github.com/taibuivan/authd/pkg/pointer"
)

// # Contracts & Types

// TokenIssuer mints and checks the access/refresh token pair.
type TokenIssuer interface {
	MintPair(publicID, nonce string) (sec.TokenPair, error)
	Verify(kind sec.TokenKind, token string) (*sec.TokenClaims, error)
}

// PasswordHasher hashes and compares passwords. Verify returns (false, nil) on
// a plain mismatch.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Verify(ctx context.Context, password, hash string) (bool, error)
}

// Dependencies groups everything [NewService] needs.
type Dependencies struct {
	Accounts AccountRepository
	Tokens   TokenIssuer
	Hasher   PasswordHasher
	Source   sec.Source
	Clock    sec.Clock

	// CodeWindow is how long one-time codes stay valid. Zero means [DefaultCodeWindow].
	CodeWindow time.Duration
}

// Session is the result of a successful verify, login or refresh.
type Session struct {
	Tokens sec.TokenPair `json:"token"`
	User   Summary       `json:"user"`
}

// IssuedCode is a freshly generated one-time code the caller must deliver.
type IssuedCode struct {
	Email string
	Name  string
	Code  string
}

// PendingVerification is returned by [Service.Login] when the account is still
// INACTIVE and its previous code had expired. A new code was issued and must be
// mailed; the error itself matches [ErrVerificationResent].
type PendingVerification struct {
	Issued IssuedCode
}

func (pending *PendingVerification) Error() string { return ErrVerificationResent.Error() }

func (pending *PendingVerification) Unwrap() error { return ErrVerificationResent }

// Service implements the account identity lifecycle.
//
// Every read-modify-write goes through the version the account was read at,
// so two racing requests on one account cannot both win.
type Service struct {
	accounts   AccountRepository
	tokens     TokenIssuer
	hasher     PasswordHasher
	source     sec.Source
	clock      sec.Clock
	codeWindow time.Duration

	// dummyHash is compared against when the account does not exist so that
	// unknown emails cost the same as wrong passwords.
	dummyHash func() (string, error)
}

// NewService constructs a new [Service] from its dependencies.
func NewService(deps Dependencies) *Service {
	if deps.Clock == nil {
		deps.Clock = sec.SystemClock{}
	}
	if deps.Source == nil {
		deps.Source = sec.NewRandomSource()
	}
	if deps.CodeWindow <= 0 {
		deps.CodeWindow = DefaultCodeWindow
	}

	hasher := deps.Hasher
	return &Service{
		accounts:   deps.Accounts,
		tokens:     deps.Tokens,
		hasher:     hasher,
		source:     deps.Source,
		clock:      deps.Clock,
		codeWindow: deps.CodeWindow,
		dummyHash: sync.OnceValues(func() (string, error) {
			return hasher.Hash(context.Background(), "authd-dummy-password")
		}),
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new account.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Role     sec.UserRole
}

/*
Register creates an INACTIVE account with a fresh verification code.

Description: The email must be unused (case-insensitive). The caller is
responsible for mailing account.VerifyCode.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *Account: Created entity
  - error: ErrEmailTaken, ErrInvalidRequest or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*Account, error) {
	if !input.Role.Valid() {
		return nil, ErrInvalidRequest
	}

	email := validate.NormalizeEmail(input.Email)

	_, err := service.accounts.FindByEmail(context, email)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, ErrAccountNotFound) {
		return nil, fmt.Errorf("auth_service_register_lookup_failed: %w", err)
	}

	hashedPassword, err := service.hasher.Hash(context, input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	publicID, err := service.source.NewPublicID()
	if err != nil {
		return nil, fmt.Errorf("auth_service_public_id_failed: %w", err)
	}

	code, err := service.newCode()
	if err != nil {
		return nil, err
	}

	account := &Account{
		PublicID:     publicID,
		Name:         input.Name,
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         input.Role,
		Status:       StatusInactive,
		VerifyCode:   code,
	}

	if err := service.accounts.Create(context, account); err != nil {
		// The partial unique index still catches a racing signup.
		if apperr.HasCode(err, apperr.CodeConflict) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	service.logger(context).InfoContext(context, "account_registered",
		slog.String("public_id", account.PublicID),
		slog.String("role", string(account.Role)),
	)

	return account, nil
}

// # Email Verification

/*
RequestVerification issues a new verification code for an INACTIVE account,
replacing any previous one.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *IssuedCode: The code to mail
  - error: ErrAccountNotFound, ErrInvalidState (banned or deleted),
    ErrAlreadyVerified, or storage errors
*/
func (service *Service) RequestVerification(context context.Context, email string) (*IssuedCode, error) {
	account, err := service.findByEmail(context, email)
	if err != nil {
		return nil, err
	}

	switch account.Status {
	case StatusActive:
		return nil, ErrAlreadyVerified
	case StatusInactive:
		return service.reissueVerification(context, account)
	default:
		return nil, ErrInvalidState
	}
}

/*
Verify activates an INACTIVE account whose verification code matches.

Description: On success the account becomes ACTIVE, the code is cleared, a new
session nonce is written and a token pair bound to it is returned.

Parameters:
  - context: context.Context
  - email: string
  - code: string

Returns:
  - *Session: Token pair and public summary
  - error: ErrInvalidRequest, ErrCodeExpired, ErrConcurrentUpdate or storage errors
*/
func (service *Service) Verify(context context.Context, email, code string) (*Session, error) {
	account, err := service.findByEmail(context, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrInvalidRequest
		}
		return nil, err
	}

	if account.Status != StatusInactive || account.VerifyCode == nil || !account.VerifyCode.Matches(code) {
		return nil, ErrInvalidRequest
	}

	now := service.clock.Now()
	if account.VerifyCode.Expired(now, service.codeWindow) {
		return nil, ErrCodeExpired
	}

	nonce, err := service.newNonce()
	if err != nil {
		return nil, err
	}

	patch := AccountPatch{
		Status:          pointer.To(StatusActive),
		EmailVerifiedAt: &now,
		ClearVerifyCode: true,
		SessionNonce:    &nonce,
	}
	if err := service.update(context, account, patch); err != nil {
		return nil, err
	}

	service.logger(context).InfoContext(context, "account_verified", slog.String("public_id", account.PublicID))

	return service.issueSession(account)
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email    string
	Password string
	Role     sec.UserRole
}

/*
Login validates credentials and opens a new session.

Description: An unknown email, a role mismatch, a wrong password and a banned
or deleted account all produce the same ErrInvalidCredential. An INACTIVE
account yields ErrNotActive, or a *PendingVerification carrying a fresh code
when the previous one had expired. Logging in rotates the session nonce, so
tokens from any earlier session stop working.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *Session: Token pair and public summary
  - error: ErrInvalidCredential, ErrNotActive, *PendingVerification or storage errors
*/
func (service *Service) Login(context context.Context, input LoginInput) (*Session, error) {
	account, err := service.findByEmail(context, input.Email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			service.burnComparison(context, input.Password)
			return nil, ErrInvalidCredential
		}
		return nil, err
	}

	matched, err := service.hasher.Verify(context, input.Password, account.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("auth_service_password_compare_failed: %w", err)
	}

	if !matched || account.Role != input.Role {
		return nil, ErrInvalidCredential
	}

	switch account.Status {
	case StatusActive:
	case StatusInactive:
		if account.VerifyCode != nil && !account.VerifyCode.Expired(service.clock.Now(), service.codeWindow) {
			return nil, ErrNotActive
		}
		issued, err := service.reissueVerification(context, account)
		if err != nil {
			return nil, err
		}
		return nil, &PendingVerification{Issued: *issued}
	default:
		return nil, ErrInvalidCredential
	}

	if err := service.rotateNonce(context, account, AccountPatch{}); err != nil {
		return nil, err
	}

	service.logger(context).InfoContext(context, "account_logged_in", slog.String("public_id", account.PublicID))

	return service.issueSession(account)
}

/*
Refresh exchanges a valid refresh token for a new token pair.

Description: The token must verify as a refresh token, name an existing ACTIVE
account whose email equals email, and carry that account's current nonce.
The nonce is rotated, so the presented token cannot be replayed.

Parameters:
  - context: context.Context
  - email: string
  - refreshToken: string

Returns:
  - *Session: New token pair and public summary
  - error: ErrInvalidToken, ErrConcurrentUpdate or storage errors
*/
func (service *Service) Refresh(context context.Context, email, refreshToken string) (*Session, error) {
	claims, err := service.tokens.Verify(sec.RefreshToken, refreshToken)
	if err != nil {
		return nil, ErrInvalidToken.WithCause(err)
	}

	account, err := service.accounts.FindByPublicID(context, claims.PublicID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("auth_service_refresh_lookup_failed: %w", err)
	}

	if account.Email != validate.NormalizeEmail(email) ||
		account.Status != StatusActive ||
		!sameNonce(account.SessionNonce, claims.Nonce) {
		return nil, ErrInvalidToken
	}

	if err := service.rotateNonce(context, account, AccountPatch{}); err != nil {
		return nil, err
	}

	return service.issueSession(account)
}

/*
Authenticate resolves an access token to the principal it was minted for.

Description: The token must verify as an access token and its nonce must equal
the current nonce of an ACTIVE account.

Parameters:
  - context: context.Context
  - accessToken: string

Returns:
  - *sec.Principal: The authenticated identity
  - error: ErrInvalidSession or storage errors
*/
func (service *Service) Authenticate(context context.Context, accessToken string) (*sec.Principal, error) {
	claims, err := service.tokens.Verify(sec.AccessToken, accessToken)
	if err != nil {
		return nil, ErrInvalidSession.WithCause(err)
	}

	account, err := service.accounts.FindByPublicID(context, claims.PublicID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("auth_service_authenticate_lookup_failed: %w", err)
	}

	if account.Status != StatusActive || !sameNonce(account.SessionNonce, claims.Nonce) {
		return nil, ErrInvalidSession
	}

	return &sec.Principal{
		AccountID: account.ID,
		PublicID:  account.PublicID,
		Role:      account.Role,
	}, nil
}

/*
Logout rotates the session nonce, invalidating every outstanding token.

Parameters:
  - context: context.Context
  - accountID: int64

Returns:
  - error: ErrAccountNotFound, ErrConcurrentUpdate or storage errors
*/
func (service *Service) Logout(context context.Context, accountID int64) error {
	account, err := service.findByID(context, accountID)
	if err != nil {
		return err
	}

	if err := service.rotateNonce(context, account, AccountPatch{}); err != nil {
		return err
	}

	service.logger(context).InfoContext(context, "account_logged_out", slog.String("public_id", account.PublicID))
	return nil
}

// # Password Management

/*
ChangePassword replaces the password after checking the current one.

Description: The session nonce is rotated so every other session ends; the
caller receives a fresh pair for its own.

Parameters:
  - context: context.Context
  - accountID: int64
  - oldPassword: string
  - newPassword: string

Returns:
  - *Session: New token pair and public summary
  - error: ErrInvalidOldPassword, ErrAccountNotFound or storage errors
*/
func (service *Service) ChangePassword(context context.Context, accountID int64, oldPassword, newPassword string) (*Session, error) {
	account, err := service.findByID(context, accountID)
	if err != nil {
		return nil, err
	}

	matched, err := service.hasher.Verify(context, oldPassword, account.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("auth_service_password_compare_failed: %w", err)
	}
	if !matched {
		return nil, ErrInvalidOldPassword
	}

	hashedPassword, err := service.hasher.Hash(context, newPassword)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	if err := service.rotateNonce(context, account, AccountPatch{PasswordHash: &hashedPassword}); err != nil {
		return nil, err
	}

	service.logger(context).InfoContext(context, "account_password_changed", slog.String("public_id", account.PublicID))

	return service.issueSession(account)
}

/*
ForgotPassword issues a password-reset code, replacing any previous one.

Parameters:
  - context: context.Context
  - email: string
  - role: sec.UserRole

Returns:
  - *IssuedCode: The code to mail
  - error: ErrAccountNotFound when no account has this email and role
*/
func (service *Service) ForgotPassword(context context.Context, email string, role sec.UserRole) (*IssuedCode, error) {
	account, err := service.findByEmail(context, email)
	if err != nil {
		return nil, err
	}
	if account.Role != role {
		return nil, ErrAccountNotFound
	}

	code, err := service.newCode()
	if err != nil {
		return nil, err
	}

	if err := service.update(context, account, AccountPatch{ResetCode: code}); err != nil {
		return nil, err
	}

	return &IssuedCode{Email: account.Email, Name: account.Name, Code: code.Value}, nil
}

/*
ResetPassword sets a new password using a reset code.

Description: The code must exist, match, and be within the code window. It is
consumed on success, and the session nonce is rotated.

Parameters:
  - context: context.Context
  - email: string
  - code: string
  - newPassword: string

Returns:
  - error: ErrAccountNotFound, ErrInvalidResetCode or storage errors
*/
func (service *Service) ResetPassword(context context.Context, email, code, newPassword string) error {
	account, err := service.findByEmail(context, email)
	if err != nil {
		return err
	}

	if account.ResetCode == nil ||
		!account.ResetCode.Matches(code) ||
		account.ResetCode.Expired(service.clock.Now(), service.codeWindow) {
		return ErrInvalidResetCode
	}

	hashedPassword, err := service.hasher.Hash(context, newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	patch := AccountPatch{PasswordHash: &hashedPassword, ClearResetCode: true}
	if err := service.rotateNonce(context, account, patch); err != nil {
		return err
	}

	service.logger(context).InfoContext(context, "account_password_reset", slog.String("public_id", account.PublicID))
	return nil
}

// # Profiles & Bootstrap

/*
Profile returns the public summary of an ACTIVE account.

Parameters:
  - context: context.Context
  - publicID: string

Returns:
  - *Summary: Public view
  - error: ErrProfileNotFound or storage errors
*/
func (service *Service) Profile(context context.Context, publicID string) (*Summary, error) {
	account, err := service.accounts.FindByPublicID(context, publicID)
	return activeSummary(account, err)
}

// ProfileInRole is [Service.Profile] restricted to accounts carrying role.
// An account with any other role reads as ErrProfileNotFound.
func (service *Service) ProfileInRole(context context.Context, publicID string, role sec.UserRole) (*Summary, error) {
	account, err := service.accounts.FindByPublicIDAndRole(context, publicID, role)
	return activeSummary(account, err)
}

func activeSummary(account *Account, err error) (*Summary, error) {
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("auth_service_profile_failed: %w", err)
	}

	if account.Status != StatusActive {
		return nil, ErrProfileNotFound
	}

	summary := account.Summary()
	return &summary, nil
}

// SeedInput describes the administrator created by [Service.SeedAdmin].
type SeedInput struct {
	Email    string
	Password string
	Name     string
}

/*
SeedAdmin creates an ACTIVE, already verified ADMIN account unless the email
is already registered.

Parameters:
  - context: context.Context
  - input: SeedInput

Returns:
  - *Account: The created or existing account
  - bool: Whether a new account was created
  - error: VALIDATION_ERROR for malformed input, ErrInvalidRequest when an
    existing account is not an ADMIN, or storage errors
*/
func (service *Service) SeedAdmin(context context.Context, input SeedInput) (*Account, bool, error) {
	v := &validate.Validator{}
	v.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Length(FieldPassword, input.Password, MinPasswordLength, MaxPasswordLength).
		Required(FieldName, input.Name)
	if err := v.Err(); err != nil {
		return nil, false, err
	}

	existing, err := service.findByEmail(context, input.Email)
	if err == nil {
		if existing.Role != sec.RoleAdmin {
			return nil, false, ErrInvalidRequest
		}
		return existing, false, nil
	}
	if !errors.Is(err, ErrAccountNotFound) {
		return nil, false, err
	}

	hashedPassword, err := service.hasher.Hash(context, input.Password)
	if err != nil {
		return nil, false, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	publicID, err := service.source.NewPublicID()
	if err != nil {
		return nil, false, fmt.Errorf("auth_service_public_id_failed: %w", err)
	}

	now := service.clock.Now()
	account := &Account{
		PublicID:        publicID,
		Name:            input.Name,
		Email:           validate.NormalizeEmail(input.Email),
		PasswordHash:    hashedPassword,
		Role:            sec.RoleAdmin,
		Status:          StatusActive,
		EmailVerifiedAt: &now,
	}

	if err := service.accounts.Create(context, account); err != nil {
		return nil, false, fmt.Errorf("auth_service_seed_admin_failed: %w", err)
	}

	return account, true, nil
}

// # Internal Helpers

func (service *Service) findByEmail(context context.Context, email string) (*Account, error) {
	account, err := service.accounts.FindByEmail(context, validate.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("auth_service_find_by_email_failed: %w", err)
	}
	return account, nil
}

func (service *Service) findByID(context context.Context, id int64) (*Account, error) {
	account, err := service.accounts.FindByID(context, id)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("auth_service_find_by_id_failed: %w", err)
	}
	return account, nil
}

// update writes patch under the account's current version and mirrors it in memory.
func (service *Service) update(context context.Context, account *Account, patch AccountPatch) error {
	affected, err := service.accounts.UpdateFields(context, account.ID, account.Version, patch)
	if err != nil {
		return fmt.Errorf("auth_service_update_failed: %w", err)
	}
	if affected == 0 {
		return ErrConcurrentUpdate
	}

	patch.Apply(account)
	account.Version++
	account.UpdatedAt = service.clock.Now()
	return nil
}

// rotateNonce adds a fresh session nonce to patch and writes it.
func (service *Service) rotateNonce(context context.Context, account *Account, patch AccountPatch) error {
	nonce, err := service.newNonce()
	if err != nil {
		return err
	}
	patch.SessionNonce = &nonce
	return service.update(context, account, patch)
}

func (service *Service) reissueVerification(context context.Context, account *Account) (*IssuedCode, error) {
	code, err := service.newCode()
	if err != nil {
		return nil, err
	}

	if err := service.update(context, account, AccountPatch{VerifyCode: code}); err != nil {
		return nil, err
	}

	return &IssuedCode{Email: account.Email, Name: account.Name, Code: code.Value}, nil
}

func (service *Service) issueSession(account *Account) (*Session, error) {
	pair, err := service.tokens.MintPair(account.PublicID, account.SessionNonce)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}
	return &Session{Tokens: pair, User: account.Summary()}, nil
}

func (service *Service) newCode() (*OneTimeCode, error) {
	value, err := service.source.NewCode()
	if err != nil {
		return nil, fmt.Errorf("auth_service_code_failed: %w", err)
	}
	return &OneTimeCode{Value: value, GeneratedAt: service.clock.Now()}, nil
}

func (service *Service) newNonce() (string, error) {
	nonce, err := service.source.NewNonce()
	if err != nil {
		return "", fmt.Errorf("auth_service_nonce_failed: %w", err)
	}
	return nonce, nil
}

// burnComparison spends one hash comparison on a throwaway hash.
func (service *Service) burnComparison(context context.Context, password string) {
	hash, err := service.dummyHash()
	if err != nil {
		return
	}
	_, _ = service.hasher.Verify(context, password, hash)
}

func (service *Service) logger(context context.Context) *slog.Logger {
	return ctxutil.GetLogger(context)
}

// sameNonce compares a stored nonce with a presented one. An account that has
// never opened a session matches nothing.
func sameNonce(stored, presented string) bool {
	if stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1
}
