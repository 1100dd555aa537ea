package http

import (
	"net/http"

	"github.com/aussiebroadwan/tokenauth/internal/auth/domain"
	"github.com/aussiebroadwan/tokenauth/internal/auth/service"
	"github.com/aussiebroadwan/tokenauth/pkg/authsdk"
	"github.com/aussiebroadwan/tokenauth/pkg/httpx"
	"github.com/aussiebroadwan/tokenauth/pkg/slogx"
)

// MeHandler serves the caller's own profile. Both methods sit behind the
// authentication middleware, so the user id is always in the context.
type MeHandler struct {
	Credentials *service.CredentialService
}

// HandleGet handles GET /me.
//
//	@Summary		Current user
//	@Description	Returns the profile of the user the access token was issued to.
//	@Tags			Profile
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	authsdk.UserResponse	"profile"
//	@Failure		401	{object}	authsdk.ErrorResponse	"invalid or expired token"
//	@Failure		403	{object}	authsdk.ErrorResponse	"no credentials presented"
//	@Router			/me [get].
func (h *MeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserIDFromContext(r.Context())
	if !ok {
		slogx.FromContext(r.Context()).Error("me handler reached without an authenticated user")
		authsdk.ErrServerError.WriteError(w)
		return
	}

	u, err := h.Credentials.GetUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeUser(w, u)
}

// HandlePut handles PUT /me.
//
//	@Summary		Update current user
//	@Description	Sets or clears the display name. A missing username leaves it unchanged, null clears it.
//	@Description	The email is read-only and ignored if sent.
//	@Tags			Profile
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		authsdk.UpdateProfileRequest	true	"profile fields"
//	@Success		200		{object}	authsdk.UserResponse			"updated profile"
//	@Failure		400		{object}	authsdk.ValidationErrorResponse	"invalid body"
//	@Failure		401		{object}	authsdk.ErrorResponse			"invalid or expired token"
//	@Failure		403		{object}	authsdk.ErrorResponse			"no credentials presented"
//	@Router			/me [put].
func (h *MeHandler) HandlePut(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserIDFromContext(r.Context())
	if !ok {
		slogx.FromContext(r.Context()).Error("me handler reached without an authenticated user")
		authsdk.ErrServerError.WriteError(w)
		return
	}

	var req authsdk.UpdateProfileRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	var (
		u   domain.User
		err error
	)
	if req.UsernameSet {
		u, err = h.Credentials.UpdateProfile(r.Context(), userID, req.Username)
	} else {
		u, err = h.Credentials.GetUser(r.Context(), userID)
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeUser(w, u)
}

func writeUser(w http.ResponseWriter, u domain.User) {
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
	})
}
