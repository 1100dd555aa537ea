package http

import (
	"net/http"

	"github.com/aussiebroadwan/tokenauth/internal/auth/domain"
	"github.com/aussiebroadwan/tokenauth/internal/auth/service"
	"github.com/aussiebroadwan/tokenauth/pkg/authsdk"
	"github.com/aussiebroadwan/tokenauth/pkg/httpx"
)

type LoginHandler struct {
	Sessions *service.SessionManager
}

// ServeHTTP handles POST /login.
//
//	@Summary		Password login
//	@Description	Exchanges an email and password for an access token and a single-use refresh token.
//	@Description	Unknown emails and wrong passwords produce the same response.
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest			true	"credentials"
//	@Success		200		{object}	authsdk.TokenResponse			"token pair"
//	@Failure		400		{object}	authsdk.ValidationErrorResponse	"invalid body"
//	@Failure		401		{object}	authsdk.ErrorResponse			"invalid credentials"
//	@Failure		429		{object}	authsdk.ErrorResponse			"rate limited"
//	@Router			/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	pair, err := h.Sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeTokenPair(w, pair)
}

func writeTokenPair(w http.ResponseWriter, pair domain.TokenPair) {
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    int(pair.ExpiresIn.Seconds()),
	})
}
