// Package handler contains the HTTP layer: request parsing, calling the
// services and writing responses. Handlers never touch storage directly.
package handler

import (
	"net/http"

	"painpal/internal/apperror"
	"painpal/internal/auth"
	"painpal/internal/service"
)

type UserHandler struct {
	accounts *service.AccountService
}

func NewUserHandler(accounts *service.AccountService) *UserHandler {
	return &UserHandler{accounts: accounts}
}

type registerRequest struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	ExternalUID string `json:"externalUid"`
}

// Register handles POST /api/users. This is the one endpoint that is not
// behind the auth middleware: the client calls it on every sign-in, before
// it has an account to authenticate as. Registering an external identity
// that already has an account returns the existing account.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.accounts.Register(r.Context(), req.Email, req.Name, req.ExternalUID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// Me handles GET /api/users/me and returns the authenticated user.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}
	writeJSON(w, http.StatusOK, user)
}
