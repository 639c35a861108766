// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package requestutil_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/authd/internal/platform/apperr"
	"github.com/taibuivan/authd/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/authd/internal/platform/request"
	"github.com/taibuivan/authd/internal/platform/sec"
	"github.com/taibuivan/authd/internal/platform/validate"
)

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func TestBind(t *testing.T) {
	schema := validate.NewRegistry().MustCompile(validate.Rules{
		"email":    "required|email",
		"password": "required",
	}, "email", "password")

	tests := []struct {
		name string
		body string
		code string
	}{
		{"valid", `{"email":"alice@example.com","password":"secret1"}`, ""},
		{"not_json", `{"email":`, apperr.CodeValidation},
		{"array_body", `[1,2]`, apperr.CodeValidation},
		{"empty_body", ``, apperr.CodeValidation},
		{"unknown_field", `{"email":"alice@example.com","password":"x","role":"ADMIN"}`, apperr.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var target loginBody

			err := requestutil.Bind(httptest.NewRecorder(), request, schema, &target)
			if tt.code == "" {
				require.NoError(t, err)
				assert.Equal(t, "alice@example.com", target.Email)
				return
			}
			assert.True(t, apperr.HasCode(err, tt.code))
		})
	}
}

func TestRequiredPrincipal(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)

	_, err := requestutil.RequiredPrincipal(request)
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))

	ctx := ctxutil.WithPrincipal(context.Background(), &sec.Principal{AccountID: 7, Role: sec.RoleUser})
	principal, err := requestutil.RequiredPrincipal(request.WithContext(ctx))
	require.NoError(t, err)
	assert.Equal(t, int64(7), principal.AccountID)
}
