// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/authd/internal/platform/apperr"
	"github.com/taibuivan/authd/internal/platform/ctxutil"
	"github.com/taibuivan/authd/internal/platform/sec"
	"github.com/taibuivan/authd/internal/platform/validate"
)

// MaxBodyBytes caps every JSON request body.
const MaxBodyBytes = 1 << 20

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: any (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target any) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Bind decodes a JSON object body, runs the compiled schema against it, and only
then fills target. Unknown keys and rule failures come back as VALIDATION_ERROR.

Parameters:
  - writer: http.ResponseWriter (used to cap the body size)
  - request: *http.Request
  - schema: *validate.Schema
  - target: any (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON or the schema's validation error
*/
func Bind(writer http.ResponseWriter, request *http.Request, schema *validate.Schema, target any) error {
	body, err := io.ReadAll(http.MaxBytesReader(writer, request.Body, MaxBodyBytes))
	if err != nil {
		return validate.ErrInvalidJSON
	}

	// An empty body validates as an empty object.
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}

	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return validate.ErrInvalidJSON
	}

	if err := schema.Validate(fields); err != nil {
		return err
	}

	if err := json.Unmarshal(body, target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
Principal extracts the authenticated principal from the request context.

Returns nil if the request is not authenticated.
*/
func Principal(request *http.Request) *sec.Principal {
	return ctxutil.GetPrincipal(request.Context())
}

/*
RequiredPrincipal ensures the request is authenticated and returns the principal.

Returns:
  - *sec.Principal: The authenticated identity
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredPrincipal(request *http.Request) (*sec.Principal, error) {
	principal := ctxutil.GetPrincipal(request.Context())
	if principal == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return principal, nil
}
