// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/authd/internal/platform/middleware"
	requestutil "github.com/taibuivan/authd/internal/platform/request"
	"github.com/taibuivan/authd/internal/platform/respond"
	"github.com/taibuivan/authd/internal/platform/validate"
	"github.com/taibuivan/authd/internal/users/auth"
)

// Handler implements the HTTP layer for self-service account management.
//
// # Security
//
// Every route requires an authenticated principal; the account acted on is
// always the caller's own.
type Handler struct {
	accountService *Service
	updateSchema   *validate.Schema
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service, registry *validate.Registry) *Handler {
	return &Handler{
		accountService: service,
		updateSchema: registry.MustCompile(validate.Rules{
			auth.FieldName: "required|alphabetWithSpace|min:3|max:255",
		}, auth.FieldName),
	}
}

// Routes returns a [chi.Router] configured with the account endpoints.
//
// # Endpoints
//   - GET    / : Private profile of the caller.
//   - PATCH  / : Renames the caller's account.
//   - DELETE / : Closes the caller's account.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/", handler.getMe)
	router.Patch("/", handler.updateMe)
	router.Delete("/", handler.deleteMe)

	return router
}

/*
GET /api/v1/me.

Response:
  - 200: Profile
  - 401: UNAUTHORIZED: Authentication required
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.accountService.GetProfile(request.Context(), principal.AccountID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

type updateMeRequest struct {
	Name string `json:"name"`
}

/*
PATCH /api/v1/me.

Request:
  - Body: updateMeRequest (name)

Response:
  - 200: Profile: The updated profile
  - 400: VALIDATION_ERROR
  - 409: CONCURRENT_UPDATE
*/
func (handler *Handler) updateMe(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateMeRequest
	if err := requestutil.Bind(writer, request, handler.updateSchema, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	name := validate.Sanitize(input.Name, validate.Trim, validate.NFC)
	profile, err := handler.accountService.UpdateProfile(request.Context(), principal.AccountID, name)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

/*
DELETE /api/v1/me.

Response:
  - 204: No Content
  - 409: CONCURRENT_UPDATE
*/
func (handler *Handler) deleteMe(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.DeleteAccount(request.Context(), principal.AccountID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
