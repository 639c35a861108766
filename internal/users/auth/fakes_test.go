// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/authd/internal/platform/dberr"
	"github.com/taibuivan/authd/internal/platform/sec"
	"github.com/taibuivan/authd/internal/users/auth"
)

// # Clock

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (clock *stepClock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.now
}

func (clock *stepClock) Advance(d time.Duration) {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	clock.now = clock.now.Add(d)
}

// # In-Memory Repository

// memoryRepository mimics the Postgres repository: versioned writes, soft
// deletes hidden from lookups, case-insensitive email uniqueness.
type memoryRepository struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*auth.Account
	clock  sec.Clock
}

func newMemoryRepository(clock sec.Clock) *memoryRepository {
	return &memoryRepository{rows: map[int64]*auth.Account{}, clock: clock}
}

func cloneAccount(account *auth.Account) *auth.Account {
	clone := *account
	if account.VerifyCode != nil {
		code := *account.VerifyCode
		clone.VerifyCode = &code
	}
	if account.ResetCode != nil {
		code := *account.ResetCode
		clone.ResetCode = &code
	}
	if account.EmailVerifiedAt != nil {
		at := *account.EmailVerifiedAt
		clone.EmailVerifiedAt = &at
	}
	if account.DeletedAt != nil {
		at := *account.DeletedAt
		clone.DeletedAt = &at
	}
	return &clone
}

func (repo *memoryRepository) find(match func(*auth.Account) bool) (*auth.Account, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, row := range repo.rows {
		if row.DeletedAt == nil && match(row) {
			return cloneAccount(row), nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (repo *memoryRepository) FindByID(_ context.Context, id int64) (*auth.Account, error) {
	return repo.find(func(a *auth.Account) bool { return a.ID == id })
}

func (repo *memoryRepository) FindByEmail(_ context.Context, email string) (*auth.Account, error) {
	return repo.find(func(a *auth.Account) bool { return strings.EqualFold(a.Email, email) })
}

func (repo *memoryRepository) FindByPublicID(_ context.Context, publicID string) (*auth.Account, error) {
	return repo.find(func(a *auth.Account) bool { return a.PublicID == publicID })
}

func (repo *memoryRepository) FindByPublicIDAndRole(_ context.Context, publicID string, role sec.UserRole) (*auth.Account, error) {
	return repo.find(func(a *auth.Account) bool { return a.PublicID == publicID && a.Role == role })
}

func (repo *memoryRepository) Create(_ context.Context, account *auth.Account) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, row := range repo.rows {
		if row.DeletedAt == nil && strings.EqualFold(row.Email, account.Email) {
			return dberr.ErrDuplicate
		}
	}

	repo.nextID++
	account.ID = repo.nextID
	account.Version = 1
	account.CreatedAt = repo.clock.Now()
	account.UpdatedAt = account.CreatedAt
	repo.rows[account.ID] = cloneAccount(account)
	return nil
}

func (repo *memoryRepository) UpdateFields(_ context.Context, id, version int64, patch auth.AccountPatch) (int64, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	row, ok := repo.rows[id]
	if !ok || row.DeletedAt != nil || row.Version != version {
		return 0, nil
	}

	patch.Apply(row)
	row.Version++
	row.UpdatedAt = repo.clock.Now()
	return 1, nil
}

func (repo *memoryRepository) SoftDelete(_ context.Context, id, version int64, nonce string) (int64, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	row, ok := repo.rows[id]
	if !ok || row.DeletedAt != nil || row.Version != version {
		return 0, nil
	}

	now := repo.clock.Now()
	row.Status = auth.StatusDeleted
	row.SessionNonce = nonce
	row.DeletedAt = &now
	row.Version++
	return 1, nil
}

// stored returns the current row for email, failing the test when absent.
func (repo *memoryRepository) stored(t *testing.T, email string) *auth.Account {
	t.Helper()
	account, err := repo.FindByEmail(context.Background(), email)
	require.NoError(t, err)
	return account
}

// # Harness

type harness struct {
	service *auth.Service
	repo    *memoryRepository
	clock   *stepClock
	codec   *sec.TokenCodec
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	clock := newStepClock()
	codec, err := sec.NewTokenCodec(
		sec.TokenConfig{Secret: "access-secret", Version: 1, TTL: time.Hour},
		sec.TokenConfig{Secret: "refresh-secret", Version: 1, TTL: 5 * 24 * time.Hour},
		clock,
	)
	require.NoError(t, err)

	repo := newMemoryRepository(clock)
	service := auth.NewService(auth.Dependencies{
		Accounts: repo,
		Tokens:   codec,
		Hasher:   sec.NewHasher(bcrypt.MinCost, 4),
		Source:   sec.NewRandomSource(),
		Clock:    clock,
	})

	return &harness{service: service, repo: repo, clock: clock, codec: codec}
}

// register creates an INACTIVE account and returns its verification code.
func (h *harness) register(t *testing.T, email, password string, role sec.UserRole) string {
	t.Helper()
	account, err := h.service.Register(context.Background(), auth.RegisterInput{
		Email:    email,
		Password: password,
		Name:     "Alice",
		Role:     role,
	})
	require.NoError(t, err)
	require.NotNil(t, account.VerifyCode)
	return account.VerifyCode.Value
}

// activate registers and verifies an account, returning the verify session.
func (h *harness) activate(t *testing.T, email, password string) *auth.Session {
	t.Helper()
	code := h.register(t, email, password, sec.RoleUser)
	session, err := h.service.Verify(context.Background(), email, code)
	require.NoError(t, err)
	return session
}
