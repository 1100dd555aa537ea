package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/tokenauth/internal/auth/service"
	"github.com/aussiebroadwan/tokenauth/pkg/authsdk"
	"github.com/aussiebroadwan/tokenauth/pkg/httpx"
	"github.com/aussiebroadwan/tokenauth/pkg/slogx"
)

const duplicateEmailMessage = "user with this email already exists."

// validator is implemented by the authsdk request bodies.
type validator interface {
	Validate() map[string]string
}

// decodeRequest reads a JSON body into dst and runs its validation. It writes
// the 400 response itself and reports false when the handler should stop.
func decodeRequest[T validator](w http.ResponseWriter, r *http.Request, dst *T) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		slogx.FromContext(r.Context()).Debug("request body rejected", "error", err)
		authsdk.NewValidationError(map[string]string{
			"non_field_errors": "Request body must be a JSON object.",
		}).WriteError(w)
		return false
	}

	if details := (*dst).Validate(); details != nil {
		authsdk.NewValidationError(details).WriteError(w)
		return false
	}
	return true
}

// writeServiceError maps service errors onto the public error envelope.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	l := slogx.FromContext(r.Context())

	switch {
	case errors.Is(err, service.ErrDuplicateEmail):
		authsdk.NewValidationError(map[string]string{"email": duplicateEmailMessage}).WriteError(w)
	case errors.Is(err, service.ErrValidation):
		authsdk.NewValidationError(nil).WriteError(w)
	case errors.Is(err, service.ErrInvalidCredentials):
		authsdk.ErrInvalidCredentials.WriteError(w)
	case errors.Is(err, service.ErrUnauthorized):
		authsdk.ErrInvalidRefreshToken.WriteError(w)
	case errors.Is(err, service.ErrUnknownToken):
		authsdk.ErrUnknownRefreshToken.WriteError(w)
	case errors.Is(err, service.ErrUserNotFound):
		// The token verified but its subject is gone.
		w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="User not found"`)
		httpx.WriteError(w, http.StatusUnauthorized, authsdk.ErrorCodeInvalidToken, "User not found")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		l.Warn("request aborted", "error", err)
		authsdk.ErrUnavailable.WriteError(w)
	default:
		l.Error("unhandled service error", "error", err)
		authsdk.ErrServerError.WriteError(w)
	}
}
