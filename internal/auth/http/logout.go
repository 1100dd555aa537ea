package http

import (
	"net/http"

	"github.com/aussiebroadwan/tokenauth/internal/auth/service"
	"github.com/aussiebroadwan/tokenauth/pkg/authsdk"
	"github.com/aussiebroadwan/tokenauth/pkg/httpx"
)

const logoutMessage = "User logged out."

type LogoutHandler struct {
	Sessions *service.SessionManager
}

// ServeHTTP handles POST /logout.
//
//	@Summary		Revoke a refresh token
//	@Description	Marks the refresh token invalid so it can no longer be exchanged. Access tokens already issued stay
//	@Description	valid until they expire. Revoking a token that is already invalid succeeds.
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RefreshRequest			true	"refresh token"
//	@Success		200		{object}	authsdk.LogoutResponse			"logged out"
//	@Failure		400		{object}	authsdk.ErrorResponse			"unknown refresh token or invalid body"
//	@Failure		429		{object}	authsdk.ErrorResponse			"rate limited"
//	@Router			/logout [post].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RefreshRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if err := h.Sessions.Logout(r.Context(), req.RefreshToken); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.LogoutResponse{Success: logoutMessage})
}
