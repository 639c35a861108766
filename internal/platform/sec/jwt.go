// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taibuivan/authd/internal/platform/constants"
)

// ErrInvalidToken is wrapped by every [TokenCodec.Verify] failure.
var ErrInvalidToken = errors.New("sec: invalid token")

// # Token Kinds

// TokenKind selects the secret, schema version and lifetime used for a token.
type TokenKind string

const (
	AccessToken  TokenKind = "access"
	RefreshToken TokenKind = "refresh"
)

// TokenConfig is the per-kind signing setup.
type TokenConfig struct {
	Secret  string
	Version int
	TTL     time.Duration
}

// TokenClaims is the payload embedded in both token kinds.
//
// The session nonce is what makes revocation work: the account row holds the
// current nonce, and a token minted under any earlier nonce is dead the moment
// the row changes.
type TokenClaims struct {
	jwt.RegisteredClaims

	PublicID  string `json:"uid"`
	Nonce     string `json:"nonce"`
	CreatedAt int64  `json:"createdAt"`
	Version   int    `json:"ver"`
}

// TokenPair is what a successful verify, login or refresh hands back.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// # Codec

// TokenCodec mints and verifies HS256 tokens. It never touches storage;
// matching the nonce against the live account is the caller's job.
type TokenCodec struct {
	access  TokenConfig
	refresh TokenConfig
	clock   Clock
}

// NewTokenCodec creates a [TokenCodec]. The two kinds must use distinct,
// non-empty secrets and positive lifetimes.
func NewTokenCodec(access, refresh TokenConfig, clock Clock) (*TokenCodec, error) {
	if access.Secret == "" || refresh.Secret == "" {
		return nil, errors.New("sec: token secrets must not be empty")
	}
	if access.Secret == refresh.Secret {
		return nil, errors.New("sec: access and refresh secrets must differ")
	}
	if access.TTL <= 0 || refresh.TTL <= 0 {
		return nil, errors.New("sec: token lifetimes must be positive")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &TokenCodec{access: access, refresh: refresh, clock: clock}, nil
}

func (codec *TokenCodec) config(kind TokenKind) (TokenConfig, error) {
	switch kind {
	case AccessToken:
		return codec.access, nil
	case RefreshToken:
		return codec.refresh, nil
	default:
		return TokenConfig{}, fmt.Errorf("sec: unknown token kind %q", kind)
	}
}

// Mint signs a token of the given kind binding publicID to nonce.
func (codec *TokenCodec) Mint(kind TokenKind, publicID, nonce string) (string, error) {
	cfg, err := codec.config(kind)
	if err != nil {
		return "", err
	}

	now := codec.clock.Now()
	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   publicID,
			Issuer:    constants.AuthIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL)),
		},
		PublicID:  publicID,
		Nonce:     nonce,
		CreatedAt: now.UnixMilli(),
		Version:   cfg.Version,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign %s token: %w", kind, err)
	}
	return signed, nil
}

// MintPair signs an access and a refresh token for the same nonce.
func (codec *TokenCodec) MintPair(publicID, nonce string) (TokenPair, error) {
	accessToken, err := codec.Mint(AccessToken, publicID, nonce)
	if err != nil {
		return TokenPair{}, err
	}

	refreshToken, err := codec.Mint(RefreshToken, publicID, nonce)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Verify checks signature, algorithm, expiry and schema version. Every failure
// wraps [ErrInvalidToken].
func (codec *TokenCodec) Verify(kind TokenKind, tokenString string) (*TokenClaims, error) {
	cfg, err := codec.config(kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims := &TokenClaims{}
	_, err = jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return []byte(cfg.Secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(constants.AuthIssuer),
		jwt.WithTimeFunc(codec.clock.Now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if claims.Version != cfg.Version {
		return nil, fmt.Errorf("%w: stale %s token version %d", ErrInvalidToken, kind, claims.Version)
	}
	if claims.PublicID == "" || claims.Nonce == "" {
		return nil, fmt.Errorf("%w: missing subject or nonce", ErrInvalidToken)
	}

	return claims, nil
}
