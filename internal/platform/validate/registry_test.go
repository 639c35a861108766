// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package validate_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/authd/internal/platform/apperr"
	"github.com/taibuivan/authd/internal/platform/validate"
)

func decode(t *testing.T, body string) map[string]any {
	t.Helper()
	var input map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &input))
	return input
}

/*
TestRegistry_CompileRejectsUnknownRule checks that rule typos surface at
startup rather than on the first request.
*/
func TestRegistry_CompileRejectsUnknownRule(t *testing.T) {
	registry := validate.NewRegistry()

	_, err := registry.Compile(validate.Rules{"email": "required|emial"})
	assert.ErrorContains(t, err, `unknown rule "emial"`)

	_, err = registry.Compile(validate.Rules{"name": "min:abc"})
	assert.Error(t, err)

	_, err = registry.Compile(validate.Rules{"name": "regex:a:b"})
	assert.Error(t, err)

	assert.Panics(t, func() { registry.MustCompile(validate.Rules{"x": "nope"}) })
}

func TestRegistry_Register(t *testing.T) {
	registry := validate.NewRegistry()

	even := func([]string) (validate.Predicate, error) {
		return func(field string, value any) (string, bool) {
			n, _ := value.(float64)
			if int(n)%2 != 0 {
				return field + " must be even", false
			}
			return "", true
		}, nil
	}

	require.NoError(t, registry.Register("even", even))
	assert.Error(t, registry.Register("even", even))
	assert.Contains(t, registry.Names(), "even")

	schema := registry.MustCompile(validate.Rules{"n": "required|even"})
	assert.NoError(t, schema.Validate(decode(t, `{"n": 4}`)))
	assert.ErrorContains(t, schema.Validate(decode(t, `{"n": 3}`)), "n must be even")
}

/*
TestSchema_Signup exercises the rule set the signup endpoint uses.
*/
func TestSchema_Signup(t *testing.T) {
	schema := validate.NewRegistry().MustCompile(validate.Rules{
		"name":     "required|alphabetWithSpace|min:3|max:255",
		"email":    "required|email|min:3|max:255",
		"password": "required|min:6|max:72",
		"role":     "required|anyOne:USER,ADMIN",
	}, "name", "email", "password", "role")

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"valid", `{"name":"Alice Smith","email":"alice@example.com","password":"secret1","role":"USER"}`, ""},
		{"missing_email", `{"name":"Alice","password":"secret1","role":"USER"}`, "email is required"},
		{"bare_host_email", `{"name":"Alice","email":"user@admin","password":"secret1","role":"USER"}`, "Invalid email address"},
		{"short_password", `{"name":"Alice","email":"a@b.co","password":"abc","role":"USER"}`, "password must be at least 6 characters long"},
		{"digits_in_name", `{"name":"Al1ce","email":"a@b.co","password":"secret1","role":"USER"}`, "name can only contain alphabets"},
		{"bad_role", `{"name":"Alice","email":"a@b.co","password":"secret1","role":"VENDOR"}`, "Invalid value for role"},
		{"unknown_field", `{"name":"Alice","email":"a@b.co","password":"secret1","role":"USER","admin":true}`, "Unknown parameter: admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := schema.Validate(decode(t, tt.body))
			if tt.message == "" {
				assert.NoError(t, err)
				return
			}

			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, apperr.CodeValidation, ae.Code)
			assert.Equal(t, tt.message, ae.Message)
		})
	}
}

/*
TestSchema_StopsAtFirstFailingRule makes sure a field reports one message only.
*/
func TestSchema_StopsAtFirstFailingRule(t *testing.T) {
	schema := validate.NewRegistry().MustCompile(validate.Rules{"email": "required|email|min:50"})

	ae := apperr.As(schema.Validate(decode(t, `{"email":"nope"}`)))
	require.NotNil(t, ae)
	require.Len(t, ae.Details, 1)
	assert.Equal(t, "Invalid email address", ae.Details[0].Message)
}

func TestSchema_NumericAndPhoneRules(t *testing.T) {
	schema := validate.NewRegistry().MustCompile(validate.Rules{
		"age":    "number|gt:17|lt:130",
		"mobile": "phone",
	})

	assert.NoError(t, schema.Validate(decode(t, `{"age": 30, "mobile": "9841234567"}`)))
	assert.NoError(t, schema.Validate(decode(t, `{}`)))
	assert.ErrorContains(t, schema.Validate(decode(t, `{"age": 12}`)), "age must be greater than 17")
	assert.ErrorContains(t, schema.Validate(decode(t, `{"age": "old"}`)), "age must be number")
	assert.ErrorContains(t, schema.Validate(decode(t, `{"mobile": "12345"}`)), "Invalid Phone")
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "USER", validate.Sanitize("  user ", validate.Trim, validate.Upper))
	assert.Equal(t, " secret", validate.Sanitize(" secret  \n", validate.RTrim))
	assert.Equal(t, "alice@example.com", validate.NormalizeEmail("  Alice@Example.COM "))
}
