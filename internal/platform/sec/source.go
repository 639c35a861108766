// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/segmentio/ksuid"

	"github.com/taibuivan/authd/internal/platform/constants"
	"github.com/taibuivan/authd/pkg/uuid"
)

// # Random Identifiers

// Source generates the unguessable values an account carries.
type Source interface {
	// NewNonce returns a fresh session nonce.
	NewNonce() (string, error)

	// NewPublicID returns a fresh externally visible account id.
	NewPublicID() (string, error)

	// NewCode returns a 6-digit numeric one-time code.
	NewCode() (string, error)
}

// RandomSource draws every value from the operating system CSPRNG.
type RandomSource struct{}

// NewRandomSource returns the production [Source].
func NewRandomSource() *RandomSource { return &RandomSource{} }

// NewNonce returns a KSUID. It is 160 bits, 128 of them random.
func (RandomSource) NewNonce() (string, error) {
	id, err := ksuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("sec: failed to generate nonce: %w", err)
	}
	return id.String(), nil
}

// NewPublicID returns a UUIDv7 string.
func (RandomSource) NewPublicID() (string, error) {
	id, err := uuid.New()
	if err != nil {
		return "", fmt.Errorf("sec: failed to generate public id: %w", err)
	}
	return id, nil
}

// NewCode returns a uniformly random integer in [100000, 999999] as a string.
func (RandomSource) NewCode() (string, error) {
	span := big.NewInt(constants.OneTimeCodeMax - constants.OneTimeCodeMin + 1)

	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", fmt.Errorf("sec: failed to generate code: %w", err)
	}

	return fmt.Sprintf("%d", n.Int64()+constants.OneTimeCodeMin), nil
}
