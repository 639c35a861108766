// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/authd/internal/platform/sec"
)

var (
	accessCfg  = sec.TokenConfig{Secret: "access-secret", Version: 1, TTL: time.Hour}
	refreshCfg = sec.TokenConfig{Secret: "refresh-access-secret", Version: 1, TTL: 5 * 24 * time.Hour}
)

// movableClock returns a clock and a setter for its current time.
func movableClock(start time.Time) (sec.Clock, func(time.Time)) {
	now := start
	return sec.ClockFunc(func() time.Time { return now }), func(t time.Time) { now = t }
}

// # Token Codec

/*
TestTokenCodec_RoundTrip verifies that a freshly minted token returns the
embedded subject and nonce.
*/
func TestTokenCodec_RoundTrip(t *testing.T) {
	clock, _ := movableClock(time.Now())
	codec, err := sec.NewTokenCodec(accessCfg, refreshCfg, clock)
	require.NoError(t, err)

	pair, err := codec.MintPair("pub-1", "nonce-1")
	require.NoError(t, err)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	for kind, token := range map[sec.TokenKind]string{
		sec.AccessToken:  pair.AccessToken,
		sec.RefreshToken: pair.RefreshToken,
	} {
		claims, err := codec.Verify(kind, token)
		require.NoError(t, err, kind)
		assert.Equal(t, "pub-1", claims.PublicID)
		assert.Equal(t, "nonce-1", claims.Nonce)
		assert.Equal(t, 1, claims.Version)
	}
}

/*
TestTokenCodec_Rejections covers every path that must end in ErrInvalidToken.
*/
func TestTokenCodec_Rejections(t *testing.T) {
	start := time.Now()
	clock, setNow := movableClock(start)
	codec, err := sec.NewTokenCodec(accessCfg, refreshCfg, clock)
	require.NoError(t, err)

	pair, err := codec.MintPair("pub-1", "nonce-1")
	require.NoError(t, err)

	t.Run("wrong_kind", func(t *testing.T) {
		_, err := codec.Verify(sec.RefreshToken, pair.AccessToken)
		assert.ErrorIs(t, err, sec.ErrInvalidToken)
	})

	t.Run("tampered", func(t *testing.T) {
		_, err := codec.Verify(sec.AccessToken, pair.AccessToken+"x")
		assert.ErrorIs(t, err, sec.ErrInvalidToken)
	})

	t.Run("stale_version", func(t *testing.T) {
		bumped := accessCfg
		bumped.Version = 2
		newer, err := sec.NewTokenCodec(bumped, refreshCfg, clock)
		require.NoError(t, err)

		_, err = newer.Verify(sec.AccessToken, pair.AccessToken)
		assert.ErrorIs(t, err, sec.ErrInvalidToken)
	})

	t.Run("alg_none", func(t *testing.T) {
		claims := jwt.MapClaims{"uid": "pub-1", "nonce": "n", "ver": 1, "iss": "authd", "exp": start.Add(time.Hour).Unix()}
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = codec.Verify(sec.AccessToken, unsigned)
		assert.ErrorIs(t, err, sec.ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		setNow(start.Add(accessCfg.TTL + time.Second))
		defer setNow(start)

		_, err := codec.Verify(sec.AccessToken, pair.AccessToken)
		assert.ErrorIs(t, err, sec.ErrInvalidToken)

		// The refresh token lives longer and is still good.
		_, err = codec.Verify(sec.RefreshToken, pair.RefreshToken)
		assert.NoError(t, err)
	})
}

func TestNewTokenCodec_RejectsSharedSecret(t *testing.T) {
	_, err := sec.NewTokenCodec(accessCfg, sec.TokenConfig{Secret: accessCfg.Secret, Version: 1, TTL: time.Hour}, nil)
	assert.Error(t, err)
}

// # Hasher

func TestHasher_HashAndVerify(t *testing.T) {
	hasher := sec.NewHasher(bcrypt.MinCost, 2)
	ctx := context.Background()

	hashed, err := hasher.Hash(ctx, "secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hashed)

	again, err := hasher.Hash(ctx, "secret1")
	require.NoError(t, err)
	assert.NotEqual(t, hashed, again, "salt must differ per call")

	ok, err := hasher.Verify(ctx, "secret1", hashed)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = hasher.Verify(ctx, "secret2", hashed)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = hasher.Verify(ctx, "secret1", "not-a-hash")
	assert.Error(t, err)
}

func TestHasher_HonorsCancelledContext(t *testing.T) {
	hasher := sec.NewHasher(bcrypt.MinCost, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := hasher.Hash(ctx, "secret1")
	assert.ErrorIs(t, err, context.Canceled)
}

// # Source

func TestRandomSource(t *testing.T) {
	source := sec.NewRandomSource()

	for range 200 {
		code, err := source.NewCode()
		require.NoError(t, err)
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}

	first, err := source.NewNonce()
	require.NoError(t, err)
	second, err := source.NewNonce()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	id, err := source.NewPublicID()
	require.NoError(t, err)
	assert.Len(t, id, 36)
}

func TestUserRole(t *testing.T) {
	assert.True(t, sec.RoleAdmin.Valid())
	assert.False(t, sec.UserRole("admin").Valid())
	assert.True(t, sec.RoleUser.Is(sec.RoleUser))
	assert.False(t, sec.RoleAdmin.Is(sec.RoleUser))
}
