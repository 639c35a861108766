// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/authd/internal/platform/apperr"
)

/*
TestAppError_IsMatchesByCode verifies that sentinels declared with different
messages still match under errors.Is when their codes agree.
*/
func TestAppError_IsMatchesByCode(t *testing.T) {
	sentinel := apperr.InvalidToken("Invalid refresh token")
	returned := fmt.Errorf("refresh: %w", apperr.InvalidToken("Invalid token"))

	assert.ErrorIs(t, returned, sentinel)
	assert.NotErrorIs(t, returned, apperr.Expired("Token expired"))
}

/*
TestAppError_WithCause keeps the original untouched and exposes the cause.
*/
func TestAppError_WithCause(t *testing.T) {
	base := apperr.Conflict("Email already exists")
	cause := errors.New("duplicate key")

	wrapped := base.WithCause(cause)

	assert.Nil(t, base.Cause)
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, http.StatusConflict, wrapped.HTTPStatus)
}

/*
TestHasCode checks code lookup through a wrapped chain.
*/
func TestHasCode(t *testing.T) {
	err := fmt.Errorf("login: %w", apperr.VerificationResent("Verification email sent"))

	assert.True(t, apperr.HasCode(err, apperr.CodeVerificationResent))
	assert.False(t, apperr.HasCode(err, apperr.CodeNotActive))
	assert.False(t, apperr.HasCode(errors.New("plain"), apperr.CodeInternal))

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, http.StatusOK, ae.HTTPStatus)
}
