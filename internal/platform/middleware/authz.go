// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taibuivan/authd/internal/platform/apperr"
	"github.com/taibuivan/authd/internal/platform/constants"
	"github.com/taibuivan/authd/internal/platform/ctxutil"
	"github.com/taibuivan/authd/internal/platform/respond"
	"github.com/taibuivan/authd/internal/platform/sec"
)

// Authenticator resolves a raw bearer token to a live principal.
//
// Defining it here keeps the middleware free of any dependency on the
// identity service; auth.Service satisfies it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*sec.Principal, error)
}

// Authenticate resolves the bearer token, if any, into a [*sec.Principal].
//
// # Flow
//  1. Read the token from Authorization, X-Access-Token or Token.
//  2. If none is present, the request proceeds as anonymous.
//  3. Otherwise resolve it via [Authenticator]. A rejected token is recorded
//     with [ctxutil.WithAuthFailure] and the request proceeds as anonymous,
//     so public routes such as refresh still work with a stale header.
//  4. Inject the principal into the request context for downstream use.
//
// Guards ([RequireAuth], [RequireRole]) turn a recorded rejection into 401.
func Authenticate(authenticator Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			token := BearerToken(request)

			// 1. Anonymous Access
			if token == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// 2. Token + account verification
			principal, err := authenticator.Authenticate(request.Context(), token)
			if err != nil {
				if !apperr.IsAppError(err) {
					err = apperr.InvalidToken("Invalid or expired token").WithCause(err)
				}
				ctx := ctxutil.WithAuthFailure(request.Context(), err)
				ctxutil.GetLogger(ctx).DebugContext(ctx, "bearer_token_rejected", slog.Any("error", err))
				next.ServeHTTP(writer, request.WithContext(ctx))
				return
			}

			// 3. Context Injection
			ctx := ctxutil.WithPrincipal(request.Context(), principal)
			ctx = ctxutil.WithLogAttrs(ctx, slog.String("public_id", principal.PublicID))
			if recorder, ok := writer.(*accessRecorder); ok {
				recorder.publicID = principal.PublicID
			}

			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// unauthenticated is the 401 a guard answers for a request without a
// principal: the recorded token rejection when a token was sent.
func unauthenticated(request *http.Request) error {
	if err := ctxutil.GetAuthFailure(request.Context()); err != nil {
		return err
	}
	return apperr.Unauthorized("Authentication required")
}

// BearerToken returns the raw token carried by the request, or "".
// The "Bearer " prefix is optional and stripped when present.
func BearerToken(request *http.Request) string {
	for _, header := range []string{constants.HeaderAccessToken, constants.HeaderAuthorization, constants.HeaderToken} {
		value := strings.TrimSpace(request.Header.Get(header))
		if value == "" {
			continue
		}
		if len(value) >= len(constants.BearerPrefix) && strings.EqualFold(value[:len(constants.BearerPrefix)], constants.BearerPrefix) {
			value = strings.TrimSpace(value[len(constants.BearerPrefix):])
		}
		return value
	}
	return ""
}

// RequireAuth blocks requests that are not authenticated.
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetPrincipal(request.Context()) == nil {
			respond.Error(writer, request, unauthenticated(request))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireRole blocks requests whose principal does not carry exactly one of
// the given roles. It implies [RequireAuth].
//
// Roles are flat tags: an ADMIN does not pass a USER-only route.
func RequireRole(roles ...sec.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			principal := ctxutil.GetPrincipal(request.Context())

			// 1. Authentication Check
			if principal == nil {
				respond.Error(writer, request, unauthenticated(request))
				return
			}

			// 2. Authorization Check
			for _, role := range roles {
				if principal.Role.Is(role) {
					next.ServeHTTP(writer, request)
					return
				}
			}

			respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
		})
	}
}
