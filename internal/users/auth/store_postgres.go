// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/authd/internal/platform/database/schema"
	"github.com/taibuivan/authd/internal/platform/dberr"
	"github.com/taibuivan/authd/internal/platform/postgres"
	"github.com/taibuivan/authd/internal/platform/sec"
	"github.com/taibuivan/authd/pkg/pointer"
)

// # Account Repository

// PostgresAccountRepository implements [AccountRepository] using pgx.
type PostgresAccountRepository struct {
	db postgres.Querier
}

// NewAccountRepository creates a new PostgreSQL implementation of the AccountRepository.
func NewAccountRepository(db postgres.Querier) *PostgresAccountRepository {
	return &PostgresAccountRepository{db: db}
}

var (
	accountTable      = schema.UserAccount
	accountColumns    = strings.Join(accountTable.Columns(), ", ")
	accountNotDeleted = accountTable.DeletedAt + " IS NULL"
)

// selectAccount builds a single-row lookup filtered by where.
func selectAccount(where string) string {
	return fmt.Sprintf(`SELECT %s FROM %s WHERE %s AND %s`,
		accountColumns, accountTable.Table, where, accountNotDeleted)
}

/*
FindByID retrieves an account by its internal identifier.

Parameters:
  - context: context.Context
  - id: int64

Returns:
  - *Account: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresAccountRepository) FindByID(context context.Context, id int64) (*Account, error) {
	query := selectAccount(accountTable.ID + " = $1")
	return repository.findOne(context, "account_find_by_id", query, id)
}

/*
FindByEmail retrieves an account by email.

Description: The comparison is case-insensitive and backed by the partial
unique index on lower(email).

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *Account: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresAccountRepository) FindByEmail(context context.Context, email string) (*Account, error) {
	query := selectAccount(fmt.Sprintf("lower(%s) = lower($1)", accountTable.Email))
	return repository.findOne(context, "account_find_by_email", query, email)
}

// FindByPublicID retrieves an account by its public identifier.
func (repository *PostgresAccountRepository) FindByPublicID(context context.Context, publicID string) (*Account, error) {
	query := selectAccount(accountTable.PublicID + " = $1")
	return repository.findOne(context, "account_find_by_public_id", query, publicID)
}

// FindByPublicIDAndRole retrieves an account by public identifier, restricted to role.
func (repository *PostgresAccountRepository) FindByPublicIDAndRole(context context.Context, publicID string, role sec.UserRole) (*Account, error) {
	query := selectAccount(fmt.Sprintf("%s = $1 AND %s = $2", accountTable.PublicID, accountTable.Role))
	return repository.findOne(context, "account_find_by_public_id_and_role", query, publicID, string(role))
}

/*
Create persists a new account into the users.account table.

Description: The database assigns the identity, version and timestamps; they
are written back onto account.

Parameters:
  - context: context.Context
  - account: *Account (Entity to persist)

Returns:
  - error: apperr.Conflict on a duplicate email or public id, or database errors
*/
func (repository *PostgresAccountRepository) Create(context context.Context, account *Account) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s, %s, %s, %s`,
		accountTable.Table,
		accountTable.PublicID, accountTable.Name, accountTable.Email, accountTable.PasswordHash,
		accountTable.Role, accountTable.Status, accountTable.VerifyToken, accountTable.VerifyTokenGeneratedAt,
		accountTable.ID, accountTable.Version, accountTable.CreatedAt, accountTable.UpdatedAt,
	)

	verifyToken, verifyGeneratedAt := codeColumns(account.VerifyCode)

	err := repository.db.QueryRow(context, query,
		account.PublicID,
		account.Name,
		account.Email,
		account.PasswordHash,
		string(account.Role),
		string(account.Status),
		verifyToken,
		verifyGeneratedAt,
	).Scan(&account.ID, &account.Version, &account.CreatedAt, &account.UpdatedAt)

	if err != nil {
		return dberr.Wrap(err, "account_create")
	}

	return nil
}

/*
UpdateFields writes the patched columns when the stored version still matches.

Description: Builds the SET clause from the non-nil patch fields, always bumping
version and updatedat. Soft-deleted rows never match.

Parameters:
  - context: context.Context
  - id: int64
  - version: int64
  - patch: AccountPatch

Returns:
  - int64: Rows affected
  - error: Database errors
*/
func (repository *PostgresAccountRepository) UpdateFields(context context.Context, id, version int64, patch AccountPatch) (int64, error) {
	set := newSetClause()

	if patch.Name != nil {
		set.add(accountTable.Name, *patch.Name)
	}
	if patch.PasswordHash != nil {
		set.add(accountTable.PasswordHash, *patch.PasswordHash)
	}
	if patch.Status != nil {
		set.add(accountTable.Status, string(*patch.Status))
	}
	if patch.EmailVerifiedAt != nil {
		set.add(accountTable.EmailVerifiedAt, *patch.EmailVerifiedAt)
	}
	if patch.SessionNonce != nil {
		set.add(accountTable.SessionNonce, nullable(*patch.SessionNonce))
	}

	switch {
	case patch.ClearVerifyCode:
		set.add(accountTable.VerifyToken, nil)
		set.add(accountTable.VerifyTokenGeneratedAt, nil)
	case patch.VerifyCode != nil:
		set.add(accountTable.VerifyToken, patch.VerifyCode.Value)
		set.add(accountTable.VerifyTokenGeneratedAt, patch.VerifyCode.GeneratedAt)
	}

	switch {
	case patch.ClearResetCode:
		set.add(accountTable.ResetToken, nil)
		set.add(accountTable.ResetTokenGeneratedAt, nil)
	case patch.ResetCode != nil:
		set.add(accountTable.ResetToken, patch.ResetCode.Value)
		set.add(accountTable.ResetTokenGeneratedAt, patch.ResetCode.GeneratedAt)
	}

	return repository.execVersioned(context, "account_update_fields", set, id, version)
}

/*
SoftDelete hides the account from every lookup without removing the row.

Parameters:
  - context: context.Context
  - id: int64
  - version: int64
  - nonce: string (Replaces the session nonce so outstanding tokens die)

Returns:
  - int64: Rows affected
  - error: Database errors
*/
func (repository *PostgresAccountRepository) SoftDelete(context context.Context, id, version int64, nonce string) (int64, error) {
	set := newSetClause()
	set.add(accountTable.Status, string(StatusDeleted))
	set.add(accountTable.SessionNonce, nonce)
	set.raw(accountTable.DeletedAt + " = now()")

	return repository.execVersioned(context, "account_soft_delete", set, id, version)
}

// # Internal Helpers

func (repository *PostgresAccountRepository) execVersioned(context context.Context, action string, set *setClause, id, version int64) (int64, error) {
	set.raw(fmt.Sprintf("%s = %s + 1", accountTable.Version, accountTable.Version))
	set.raw(accountTable.UpdatedAt + " = now()")

	idPos := len(set.args) + 1
	query := fmt.Sprintf(`UPDATE %s SET %s WHERE %s = $%d AND %s = $%d AND %s`,
		accountTable.Table, strings.Join(set.parts, ", "),
		accountTable.ID, idPos, accountTable.Version, idPos+1, accountNotDeleted,
	)

	args := append(set.args, id, version)
	tag, err := repository.db.Exec(context, query, args...)
	if err != nil {
		return 0, dberr.Wrap(err, action)
	}

	return tag.RowsAffected(), nil
}

func (repository *PostgresAccountRepository) findOne(context context.Context, action, query string, args ...any) (*Account, error) {
	account, err := scanAccount(repository.db.QueryRow(context, query, args...))
	if err != nil {
		return nil, dberr.Wrap(err, action)
	}
	return account, nil
}

// scanAccount hydrates an [Account] from a row in [schema.UserAccountTable.Columns] order.
func scanAccount(row pgx.Row) (*Account, error) {
	var (
		account                             Account
		role, status                        string
		verifyToken, nonce, resetToken      *string
		verifyGeneratedAt, resetGeneratedAt *time.Time
	)

	err := row.Scan(
		&account.ID,
		&account.PublicID,
		&account.Name,
		&account.Email,
		&account.PasswordHash,
		&role,
		&status,
		&account.EmailVerifiedAt,
		&verifyToken,
		&verifyGeneratedAt,
		&nonce,
		&resetToken,
		&resetGeneratedAt,
		&account.Version,
		&account.CreatedAt,
		&account.UpdatedAt,
		&account.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	account.Role = sec.UserRole(role)
	account.Status = Status(status)
	account.VerifyCode = codeFromColumns(verifyToken, verifyGeneratedAt)
	account.ResetCode = codeFromColumns(resetToken, resetGeneratedAt)
	account.SessionNonce = pointer.Val(nonce)

	return &account, nil
}

func codeFromColumns(value *string, generatedAt *time.Time) *OneTimeCode {
	if value == nil || generatedAt == nil {
		return nil
	}
	return &OneTimeCode{Value: *value, GeneratedAt: *generatedAt}
}

func codeColumns(code *OneTimeCode) (any, any) {
	if code == nil {
		return nil, nil
	}
	return code.Value, code.GeneratedAt
}

// nullable stores the empty string as NULL.
func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}

// setClause accumulates "column = $n" assignments and their arguments.
type setClause struct {
	parts []string
	args  []any
}

func newSetClause() *setClause {
	return &setClause{}
}

func (clause *setClause) add(column string, value any) {
	clause.args = append(clause.args, value)
	clause.parts = append(clause.parts, fmt.Sprintf("%s = $%d", column, len(clause.args)))
}

func (clause *setClause) raw(expression string) {
	clause.parts = append(clause.parts, expression)
}
