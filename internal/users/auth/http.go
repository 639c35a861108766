// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/authd/internal/platform/apperr"
	"github.com/taibuivan/authd/internal/platform/ctxutil"
	"github.com/taibuivan/authd/internal/platform/mail"
	"github.com/taibuivan/authd/internal/platform/middleware"
	requestutil "github.com/taibuivan/authd/internal/platform/request"
	"github.com/taibuivan/authd/internal/platform/respond"
	"github.com/taibuivan/authd/internal/platform/sec"
	"github.com/taibuivan/authd/internal/platform/validate"
	"github.com/taibuivan/authd/pkg/uuid"
)

// # Definitions & Constructors

// Handler implements the authentication HTTP endpoints.
//
// # Scope
//
// Signup, email verification, login, token refresh, password recovery and
// the session-bound actions (logout, change password). Mail is queued after
// the service call succeeds; a queueing failure is logged, not surfaced.
type Handler struct {
	authService *Service
	mailer      mail.Mailer
	schemas     handlerSchemas
}

type handlerSchemas struct {
	signup, requestVerification, verify, login, refresh *validate.Schema
	forgotPassword, resetPassword, changePassword       *validate.Schema
}

// NewHandler constructs a new [Handler]. Request schemas are compiled here, so
// a rule the registry does not know panics at startup rather than per request.
func NewHandler(service *Service, mailer mail.Mailer, registry *validate.Registry) *Handler {
	roles := "required|anyOne:" + string(sec.RoleAdmin) + "," + string(sec.RoleVendor) + "," + string(sec.RoleUser)
	newPassword := "required|min:6|max:72"

	return &Handler{
		authService: service,
		mailer:      mailer,
		schemas: handlerSchemas{
			signup: registry.MustCompile(validate.Rules{
				FieldName:     "required|alphabetWithSpace|min:3|max:255",
				FieldEmail:    "required|email|min:3|max:255",
				FieldPassword: newPassword,
				FieldRole:     "required|anyOne:" + string(sec.RoleUser) + "," + string(sec.RoleVendor),
			}, FieldName, FieldEmail, FieldPassword, FieldRole),
			requestVerification: registry.MustCompile(validate.Rules{
				FieldEmail: "required|email",
			}, FieldEmail),
			verify: registry.MustCompile(validate.Rules{
				FieldEmail: "required|email|max:255",
				FieldToken: "required",
			}, FieldEmail, FieldToken),
			login: registry.MustCompile(validate.Rules{
				FieldEmail:    "required|email",
				FieldPassword: "required|max:250",
				FieldRole:     roles,
			}, FieldEmail, FieldPassword, FieldRole),
			refresh: registry.MustCompile(validate.Rules{
				FieldEmail:        "required|email",
				FieldRefreshToken: "required",
			}, FieldEmail, FieldRefreshToken),
			forgotPassword: registry.MustCompile(validate.Rules{
				FieldEmail: "required|email",
				FieldRole:  roles,
			}, FieldEmail, FieldRole),
			resetPassword: registry.MustCompile(validate.Rules{
				FieldEmail:    "required|email",
				FieldToken:    "required",
				FieldPassword: newPassword,
			}, FieldEmail, FieldToken, FieldPassword),
			changePassword: registry.MustCompile(validate.Rules{
				FieldOldPassword: "required",
				FieldNewPassword: newPassword,
			}, FieldOldPassword, FieldNewPassword),
		},
	}
}

// Routes returns a [chi.Router] configured with authentication routes.
//
// # Endpoints
//   - POST /signup                : Creates an INACTIVE account and mails its code.
//   - POST /verify-email/request  : Re-issues a verification code.
//   - POST /verify-email          : Activates the account and opens a session.
//   - POST /login                 : Opens a session.
//   - POST /token                 : Exchanges a refresh token for a new pair.
//   - POST /forgot-password       : Mails a reset code.
//   - POST /reset-password        : Sets a new password with a reset code.
//   - GET  /session               : Reports whether the bearer token is live.
//   - POST /change-password       : Replaces the password (auth).
//   - POST /logout                : Ends every session of the account (auth).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/signup", handler.signup)
	router.Post("/verify-email/request", handler.requestVerification)
	router.Post("/verify-email", handler.verifyEmail)
	router.Post("/login", handler.login)
	router.Post("/token", handler.refresh)
	router.Post("/forgot-password", handler.forgotPassword)
	router.Post("/reset-password", handler.resetPassword)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/session", handler.session)
		r.Post("/change-password", handler.changePassword)
		r.Post("/logout", handler.logout)
	})

	return router
}

// UserRoutes exposes public profiles to administrators.
//
// # Endpoints
//   - GET /{uid} : Public summary of an ACTIVE account (ADMIN).
func (handler *Handler) UserRoutes() chi.Router {
	router := chi.NewRouter()
	router.With(middleware.RequireRole(sec.RoleAdmin)).Get("/{uid}", handler.profile)
	return router
}

// # Request Payloads

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type verifyEmailRequest struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type refreshRequest struct {
	Email        string `json:"email"`
	RefreshToken string `json:"refreshToken"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type resetPasswordRequest struct {
	Email    string `json:"email"`
	Token    string `json:"token"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// # Sanitizers

func cleanEmail(email string) string {
	return validate.Sanitize(email, validate.Trim, validate.Lower)
}

func cleanRole(role string) sec.UserRole {
	return sec.UserRole(validate.Sanitize(role, validate.Trim, validate.Upper))
}

func cleanPassword(password string) string {
	return validate.Sanitize(password, validate.RTrim)
}

/*
Signup creates a new account and queues its verification code.

POST /api/v1/auth/signup

Request:
  - Body: signupRequest (name, email, password, role)

Response:
  - 201: Summary: The INACTIVE account
  - 400: VALIDATION_ERROR: Bad input or unknown field
  - 409: CONFLICT: Email already exists
*/
func (handler *Handler) signup(writer http.ResponseWriter, request *http.Request) {
	var input signupRequest
	if err := requestutil.Bind(writer, request, handler.schemas.signup, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.authService.Register(request.Context(), RegisterInput{
		Email:    cleanEmail(input.Email),
		Password: cleanPassword(input.Password),
		Name:     validate.Sanitize(input.Name, validate.Trim, validate.NFC),
		Role:     cleanRole(input.Role),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.queue(request.Context(), mail.KindVerification, account.Email, account.Name, account.VerifyCode.Value)

	respond.Created(writer, map[string]any{FieldUser: account.Summary()})
}

/*
RequestVerification re-issues a verification code.

POST /api/v1/auth/verify-email/request

Response:
  - 200: ok
  - 400: ALREADY_VERIFIED or INVALID_STATE
  - 404: NOT_FOUND
*/
func (handler *Handler) requestVerification(writer http.ResponseWriter, request *http.Request) {
	var input emailRequest
	if err := requestutil.Bind(writer, request, handler.schemas.requestVerification, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	issued, err := handler.authService.RequestVerification(request.Context(), cleanEmail(input.Email))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.queue(request.Context(), mail.KindVerification, issued.Email, issued.Name, issued.Code)
	respond.OK(writer, nil)
}

/*
VerifyEmail activates an account with its verification code.

POST /api/v1/auth/verify-email

Response:
  - 200: Session: Token pair and user summary
  - 400: INVALID_REQUEST or EXPIRED
*/
func (handler *Handler) verifyEmail(writer http.ResponseWriter, request *http.Request) {
	var input verifyEmailRequest
	if err := requestutil.Bind(writer, request, handler.schemas.verify, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Verify(request.Context(), cleanEmail(input.Email), validate.Sanitize(input.Token, validate.Trim))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, session)
}

/*
Login authenticates an account and opens a session.

POST /api/v1/auth/login

Description: An INACTIVE account is not an error for the client: it answers
200 with the user's status, plus verificationEmailSent when a fresh code was
just queued.

Response:
  - 200: Session, or {user: {status: INACTIVE}, verificationEmailSent?}
  - 401: INVALID_CREDENTIAL
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.Bind(writer, request, handler.schemas.login, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), LoginInput{
		Email:    cleanEmail(input.Email),
		Password: cleanPassword(input.Password),
		Role:     cleanRole(input.Role),
	})

	var pending *PendingVerification
	switch {
	case err == nil:
		respond.OK(writer, session)
	case errors.As(err, &pending):
		handler.queue(request.Context(), mail.KindVerification, pending.Issued.Email, pending.Issued.Name, pending.Issued.Code)
		respond.OK(writer, map[string]any{
			FieldUser:                  map[string]Status{FieldStatus: StatusInactive},
			FieldVerificationEmailSent: true,
		})
	case errors.Is(err, ErrNotActive):
		respond.OK(writer, map[string]any{
			FieldUser: map[string]Status{FieldStatus: StatusInactive},
		})
	default:
		respond.Error(writer, request, err)
	}
}

/*
Refresh exchanges a refresh token for a new pair.

POST /api/v1/auth/token

Response:
  - 200: Session
  - 401: INVALID_TOKEN
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	var input refreshRequest
	if err := requestutil.Bind(writer, request, handler.schemas.refresh, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Refresh(request.Context(), cleanEmail(input.Email), validate.Sanitize(input.RefreshToken, validate.Trim))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, session)
}

/*
ForgotPassword queues a password-reset code.

POST /api/v1/auth/forgot-password

Response:
  - 200: ok
  - 404: NOT_FOUND
*/
func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	var input forgotPasswordRequest
	if err := requestutil.Bind(writer, request, handler.schemas.forgotPassword, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	issued, err := handler.authService.ForgotPassword(request.Context(), cleanEmail(input.Email), cleanRole(input.Role))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.queue(request.Context(), mail.KindPasswordReset, issued.Email, issued.Name, issued.Code)
	respond.OK(writer, nil)
}

/*
ResetPassword completes the password recovery flow.

POST /api/v1/auth/reset-password

Response:
  - 200: ok
  - 401: INVALID_TOKEN
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest
	if err := requestutil.Bind(writer, request, handler.schemas.resetPassword, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err := handler.authService.ResetPassword(request.Context(),
		cleanEmail(input.Email),
		validate.Sanitize(input.Token, validate.Trim),
		cleanPassword(input.Password),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, nil)
}

// session answers 200 when the bearer token is live; RequireAuth handles the rest.
func (handler *Handler) session(writer http.ResponseWriter, _ *http.Request) {
	respond.OK(writer, nil)
}

/*
ChangePassword replaces the caller's password.

POST /api/v1/auth/change-password

Response:
  - 200: Session: A fresh pair; every other session has ended
  - 401: INVALID_CREDENTIAL
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changePasswordRequest
	if err := requestutil.Bind(writer, request, handler.schemas.changePassword, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.ChangePassword(request.Context(), principal.AccountID,
		cleanPassword(input.OldPassword),
		cleanPassword(input.NewPassword),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, session)
}

// logout rotates the session nonce of the caller's account.
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.Logout(request.Context(), principal.AccountID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, nil)
}

// profile returns the public summary of an ACTIVE account, optionally
// restricted with ?role=.
func (handler *Handler) profile(writer http.ResponseWriter, request *http.Request) {
	publicID := requestutil.Param(request, "uid")
	if !uuid.IsValid(publicID) {
		respond.Error(writer, request, ErrProfileNotFound)
		return
	}

	var (
		summary *Summary
		err     error
	)
	if role := sec.UserRole(request.URL.Query().Get("role")); role != "" {
		if !role.Valid() {
			respond.Error(writer, request, apperr.ValidationError("Invalid role",
				apperr.FieldError{Field: "role", Message: "Invalid role"}))
			return
		}
		summary, err = handler.authService.ProfileInRole(request.Context(), publicID, role)
	} else {
		summary, err = handler.authService.Profile(request.Context(), publicID)
	}
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, summary)
}

// queue hands a code to the mailer. The account change already happened, so a
// failure here is logged and the client still gets its success response.
func (handler *Handler) queue(ctx context.Context, kind mail.Kind, to, name, code string) {
	var err error
	switch kind {
	case mail.KindPasswordReset:
		err = handler.mailer.SendPasswordReset(ctx, to, name, code)
	default:
		err = handler.mailer.SendVerification(ctx, to, name, code)
	}

	if err != nil {
		ctxutil.GetLogger(ctx).ErrorContext(ctx, "mail_enqueue_failed",
			slog.String("kind", string(kind)),
			slog.Any("error", err),
		)
	}
}
