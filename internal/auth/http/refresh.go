package http

import (
	"net/http"

	"github.com/aussiebroadwan/tokenauth/internal/auth/service"
	"github.com/aussiebroadwan/tokenauth/pkg/authsdk"
)

type RefreshHandler struct {
	Sessions *service.SessionManager
}

// ServeHTTP handles POST /refresh.
//
//	@Summary		Rotate a refresh token
//	@Description	Consumes the presented refresh token and returns a new pair. A refresh token can be exchanged once;
//	@Description	replays, expired and revoked tokens are all rejected the same way.
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RefreshRequest			true	"refresh token"
//	@Success		200		{object}	authsdk.TokenResponse			"new token pair"
//	@Failure		400		{object}	authsdk.ValidationErrorResponse	"invalid body"
//	@Failure		401		{object}	authsdk.ErrorResponse			"invalid refresh token"
//	@Failure		429		{object}	authsdk.ErrorResponse			"rate limited"
//	@Router			/refresh [post].
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RefreshRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	pair, err := h.Sessions.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeTokenPair(w, pair)
}
