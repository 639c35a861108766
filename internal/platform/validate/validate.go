// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package validate checks request input before it reaches the identity core.
//
// # Architecture
//
//   - [Registry] and [Schema]: named rules ("required|email|max:255") compiled
//     once at startup and run against decoded JSON bodies by the handlers.
//   - [Validator]: the failure collector every [Schema] run fills, also usable
//     directly with its chainable checks for input that never arrives as JSON.
//
// Either way the result is a single VALIDATION_ERROR carrying every
// [apperr.FieldError], with the first failure as its message.
package validate

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/taibuivan/authd/internal/platform/apperr"
)

// ErrInvalidJSON is returned when the request body cannot be decoded.
var ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")

// Validator collects field-level failures.
//
// # Concurrency
//
// Validator is not safe for concurrent use. Create one per operation.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, field+" is required")
	}
	return v
}

// Length fails if the Unicode character count falls outside [min, max].
func (v *Validator) Length(field, value string, min, max int) *Validator {
	switch n := utf8.RuneCountInString(value); {
	case n < min:
		v.add(field, fmt.Sprintf("%s must be at least %d characters", field, min))
	case n > max:
		v.add(field, fmt.Sprintf("%s must be at most %d characters", field, max))
	}
	return v
}

// Email fails if a non-empty value is not a deliverable-looking address.
// Emptiness is left to [Validator.Required].
func (v *Validator) Email(field, value string) *Validator {
	if value != "" && !IsEmail(value) {
		v.add(field, "Invalid email")
	}
	return v
}

// Custom adds a failure with a custom message if the condition is true.
func (v *Validator) Custom(field string, failed bool, message string) *Validator {
	if failed {
		v.add(field, message)
	}
	return v
}

// HasErrors reports whether any check has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// Err returns nil when every check passed, otherwise a VALIDATION_ERROR whose
// message is the first failure.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.ValidationError(v.errs[0].Message, v.errs...)
}

func (v *Validator) add(field, message string) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
}
