package http

import (
	"net/http"

	"github.com/aussiebroadwan/tokenauth/internal/auth/service"
	"github.com/aussiebroadwan/tokenauth/pkg/authsdk"
	"github.com/aussiebroadwan/tokenauth/pkg/httpx"
)

type RegisterHandler struct {
	Credentials *service.CredentialService
}

// ServeHTTP handles POST /register.
//
//	@Summary		Register a user
//	@Description	Creates an account from an email and password. The email is trimmed and lower-cased before it is stored.
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RegisterRequest				true	"email and password"
//	@Success		201		{object}	authsdk.RegisterResponse			"created user"
//	@Failure		400		{object}	authsdk.ValidationErrorResponse		"invalid body or email already registered"
//	@Failure		429		{object}	authsdk.ErrorResponse				"rate limited"
//	@Failure		500		{object}	authsdk.ErrorResponse				"internal error"
//	@Router			/register [post].
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RegisterRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	u, err := h.Credentials.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, authsdk.RegisterResponse{
		ID:    u.ID,
		Email: u.Email,
	})
}
