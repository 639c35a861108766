// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uuid provides time-ordered unique identifiers for authd.

It wraps the standard UUID library to specifically generate Version 7 values.
Account public ids are issued from here; they are opaque to clients but sort
by creation time, which keeps the unique index on users.account compact.
*/
package uuid

import "github.com/google/uuid"

// # Generators

// New generates a new UUIDv7 string.
func New() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Must generates a new UUIDv7 or panics.
// Used for request ids, where an entropy failure has no sensible fallback.
func Must() string {
	id, err := New()
	if err != nil {
		panic("uuid: failed to generate UUID: " + err.Error())
	}
	return id
}

// # Validation

// IsValid reports whether s is a canonical UUID string of any version.
func IsValid(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
