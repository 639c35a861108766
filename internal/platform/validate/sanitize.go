// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// # Sanitizers

// SanitizeOp transforms an already validated string.
type SanitizeOp func(string) string

var (
	// Trim removes leading and trailing whitespace.
	Trim SanitizeOp = strings.TrimSpace

	// RTrim removes trailing whitespace only. Passwords use it so a leading
	// space stays part of the secret.
	RTrim SanitizeOp = func(s string) string { return strings.TrimRightFunc(s, unicode.IsSpace) }

	// Lower lowercases with Unicode rules. A Caser holds state, so each call builds its own.
	Lower SanitizeOp = func(s string) string { return cases.Lower(language.Und).String(s) }

	// Upper uppercases with Unicode rules.
	Upper SanitizeOp = func(s string) string { return cases.Upper(language.Und).String(s) }

	// NFC composes combining sequences so visually equal names compare equal.
	NFC SanitizeOp = norm.NFC.String
)

// Sanitize applies ops to value in order.
func Sanitize(value string, ops ...SanitizeOp) string {
	for _, op := range ops {
		value = op(value)
	}
	return value
}

// NormalizeEmail is the single canonical form used for storage and lookup.
func NormalizeEmail(email string) string {
	return cases.Fold().String(strings.TrimSpace(email))
}
