// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/authd/internal/platform/apperr"
	"github.com/taibuivan/authd/internal/platform/ctxutil"
	"github.com/taibuivan/authd/internal/platform/middleware"
	"github.com/taibuivan/authd/internal/platform/sec"
)

// stubAuthenticator accepts exactly one token.
type stubAuthenticator struct {
	token     string
	principal *sec.Principal
	err       error
}

func (stub stubAuthenticator) Authenticate(_ context.Context, token string) (*sec.Principal, error) {
	if token != stub.token {
		if stub.err != nil {
			return nil, stub.err
		}
		return nil, apperr.InvalidToken("Invalid token")
	}
	return stub.principal, nil
}

func echoPrincipal() http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if principal := ctxutil.GetPrincipal(request.Context()); principal != nil {
			writer.Header().Set("X-Principal", principal.PublicID)
		}
		writer.WriteHeader(http.StatusOK)
	})
}

/*
TestAuthenticate_HeaderFallbacks verifies every supported way of presenting a token.
*/
func TestAuthenticate_HeaderFallbacks(t *testing.T) {
	stub := stubAuthenticator{token: "good", principal: &sec.Principal{AccountID: 1, PublicID: "pub-1", Role: sec.RoleUser}}
	handler := middleware.Authenticate(stub)(echoPrincipal())

	tests := []struct {
		name      string
		header    string
		value     string
		status    int
		principal string
	}{
		{"anonymous", "", "", http.StatusOK, ""},
		{"authorization_bearer", "Authorization", "Bearer good", http.StatusOK, "pub-1"},
		{"authorization_lowercase_bearer", "Authorization", "bearer good", http.StatusOK, "pub-1"},
		{"authorization_raw", "Authorization", "good", http.StatusOK, "pub-1"},
		{"x_access_token", "X-Access-Token", "good", http.StatusOK, "pub-1"},
		{"token_header", "Token", "Bearer good", http.StatusOK, "pub-1"},
		{"rejected_token_is_anonymous", "Authorization", "Bearer bad", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				request.Header.Set(tt.header, tt.value)
			}
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, request)

			assert.Equal(t, tt.status, recorder.Code)
			assert.Equal(t, tt.principal, recorder.Header().Get("X-Principal"))
		})
	}
}

func TestAuthenticate_WrapsForeignErrors(t *testing.T) {
	stub := stubAuthenticator{token: "good", err: errors.New("database down")}
	handler := middleware.Authenticate(stub)(middleware.RequireAuth(echoPrincipal()))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Authorization", "Bearer other")
	recorder := httptest.NewRecorder()

	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Contains(t, recorder.Body.String(), apperr.CodeInvalidToken)
	assert.NotContains(t, recorder.Body.String(), "database")
}

func TestGuards_ReportRejectedToken(t *testing.T) {
	stub := stubAuthenticator{token: "good", principal: &sec.Principal{AccountID: 1, PublicID: "pub-1", Role: sec.RoleUser}}

	guards := []struct {
		name  string
		guard func(http.Handler) http.Handler
	}{
		{"require_auth", middleware.RequireAuth},
		{"require_role", middleware.RequireRole(sec.RoleUser)},
	}

	for _, g := range guards {
		t.Run(g.name, func(t *testing.T) {
			handler := middleware.Authenticate(stub)(g.guard(echoPrincipal()))

			request := httptest.NewRequest(http.MethodGet, "/", nil)
			request.Header.Set("Authorization", "Bearer expired")
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			assert.Equal(t, http.StatusUnauthorized, recorder.Code)
			assert.Contains(t, recorder.Body.String(), apperr.CodeInvalidToken)

			recorder = httptest.NewRecorder()
			handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, http.StatusUnauthorized, recorder.Code)
			assert.Contains(t, recorder.Body.String(), apperr.CodeUnauthorized)
		})
	}
}

/*
TestRequireRole_ExactMatch checks that roles are flat tags without hierarchy.
*/
func TestRequireRole_ExactMatch(t *testing.T) {
	guarded := middleware.RequireRole(sec.RoleUser)(echoPrincipal())

	tests := []struct {
		name      string
		principal *sec.Principal
		status    int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"user", &sec.Principal{PublicID: "u", Role: sec.RoleUser}, http.StatusOK},
		{"admin_is_not_user", &sec.Principal{PublicID: "a", Role: sec.RoleAdmin}, http.StatusForbidden},
		{"vendor", &sec.Principal{PublicID: "v", Role: sec.RoleVendor}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.principal != nil {
				request = request.WithContext(ctxutil.WithPrincipal(request.Context(), tt.principal))
			}
			recorder := httptest.NewRecorder()

			guarded.ServeHTTP(recorder, request)
			assert.Equal(t, tt.status, recorder.Code)
		})
	}
}

func TestRateLimit_RejectsBurstOverflow(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := middleware.RateLimit(ctx, 1, 2)(echoPrincipal())

	codes := make([]int, 0, 3)
	for range 3 {
		request := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		request.RemoteAddr = "203.0.113.9:5555"
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		codes = append(codes, recorder.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRequestID_PropagatesOrGenerates(t *testing.T) {
	handler := middleware.RequestID()(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("X-Seen", ctxutil.GetRequestID(request.Context()))
	}))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("X-Request-ID", "abc")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, "abc", recorder.Header().Get("X-Seen"))

	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, recorder.Header().Get("X-Request-ID"), 36)
}

func TestPanicRecovery(t *testing.T) {
	handler := middleware.PanicRecovery(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
}
