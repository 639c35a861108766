// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/authd/internal/api"
	"github.com/taibuivan/authd/internal/platform/config"
	"github.com/taibuivan/authd/internal/platform/sec"
	"github.com/taibuivan/authd/internal/platform/validate"
	"github.com/taibuivan/authd/internal/users/account"
	"github.com/taibuivan/authd/internal/users/auth"
)

type nopMailer struct{}

func (nopMailer) SendVerification(context.Context, string, string, string) error  { return nil }
func (nopMailer) SendPasswordReset(context.Context, string, string, string) error { return nil }

// newTestServer wires the full router over a mock pool that expects no
// queries: every request below is answered before storage is reached.
func newTestServer(t *testing.T) (http.Handler, pgxmock.PgxPoolIface) {
	t.Helper()

	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	codec, err := sec.NewTokenCodec(
		sec.TokenConfig{Secret: "access-secret", Version: 1, TTL: time.Hour},
		sec.TokenConfig{Secret: "refresh-secret", Version: 1, TTL: 24 * time.Hour},
		sec.SystemClock{},
	)
	require.NoError(t, err)

	repository := auth.NewAccountRepository(pool)
	authService := auth.NewService(auth.Dependencies{
		Accounts: repository,
		Tokens:   codec,
		Hasher:   sec.NewHasher(bcrypt.MinCost, 1),
	})

	registry := validate.NewRegistry()
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{}, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := &config.Config{ServerPort: "0", Environment: "production", ExtraOrigins: "https://app.example.com"}
	server := api.NewServer(ctx, cfg, discardLogger(), authService, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService, nopMailer{}, registry),
		Account:   account.NewHandler(account.NewService(repository, nil), registry),
	})
	return server.Handler(), pool
}

func TestServer_Routes(t *testing.T) {
	handler, pool := newTestServer(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		token      string
		wantStatus int
	}{
		{"health", http.MethodGet, "/health", "", "", http.StatusOK},
		{"ready", http.MethodGet, "/ready", "", "", http.StatusOK},
		{"me_requires_auth", http.MethodGet, "/api/v1/me", "", "", http.StatusUnauthorized},
		{"session_requires_auth", http.MethodGet, "/api/v1/auth/session", "", "", http.StatusUnauthorized},
		{"forged_token", http.MethodGet, "/api/v1/auth/session", "", "not.a.token", http.StatusUnauthorized},
		{"users_requires_admin", http.MethodGet, "/api/v1/users/0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b", "", "", http.StatusUnauthorized},
		{"signup_validation", http.MethodPost, "/api/v1/auth/signup", `{"email":"nope"}`, "", http.StatusBadRequest},
		{"public_route_ignores_forged_token", http.MethodPost, "/api/v1/auth/signup", `{"email":"nope"}`, "not.a.token", http.StatusBadRequest},
		{"unknown_route", http.MethodGet, "/api/v1/comics", "", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			request.RemoteAddr = "203.0.113.10:5555"
			if tt.token != "" {
				request.Header.Set("Authorization", "Bearer "+tt.token)
			}

			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantStatus, recorder.Code, recorder.Body.String())
			assert.NotEmpty(t, recorder.Header().Get("X-Request-ID"))
		})
	}

	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestServer_CORS(t *testing.T) {
	handler, _ := newTestServer(t)

	preflight := func(origin string) *httptest.ResponseRecorder {
		request := httptest.NewRequest(http.MethodOptions, "/api/v1/auth/login", nil)
		request.Header.Set("Origin", origin)
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		return recorder
	}

	allowed := preflight("https://app.example.com")
	assert.Equal(t, http.StatusNoContent, allowed.Code)
	assert.Equal(t, "https://app.example.com", allowed.Header().Get("Access-Control-Allow-Origin"))

	denied := preflight("https://evil.example.com")
	assert.Empty(t, denied.Header().Get("Access-Control-Allow-Origin"))
}
