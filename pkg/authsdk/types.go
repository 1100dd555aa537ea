package authsdk

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/aussiebroadwan/tokenauth/pkg/httpx"
)

// ErrorResponse is the {error, error_description} envelope.
type ErrorResponse struct {
	Error            string `json:"error" example:"invalid_credentials"`
	ErrorDescription string `json:"error_description" example:"Invalid credentials"`
}

// ValidationErrorResponse is returned with 400 when a request body fails
// validation. Details maps field names to messages.
type ValidationErrorResponse struct {
	Code    string            `json:"code" example:"validation_error"`
	Message string            `json:"message" example:"invalid request"`
	Details map[string]string `json:"details,omitempty"`
}

// NewValidationError builds a validation response for the given field errors.
func NewValidationError(details map[string]string) ValidationErrorResponse {
	return ValidationErrorResponse{
		Code:    ErrorCodeValidation,
		Message: "invalid request",
		Details: details,
	}
}

// WriteError writes the validation response with 400.
func (v ValidationErrorResponse) WriteError(w http.ResponseWriter) {
	httpx.WriteJSON(w, http.StatusBadRequest, v)
}

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Email    string `json:"email" example:"a@x.com"`
	Password string `json:"password" example:"p1"`
}

// RegisterResponse echoes the created user. The password is never returned.
type RegisterResponse struct {
	ID    string `json:"id" example:"01J9Z3K5W8Q4T2N6M0X7V1B3C5"`
	Email string `json:"email" example:"a@x.com"`
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email" example:"a@x.com"`
	Password string `json:"password" example:"p1"`
}

// RefreshRequest is the body of POST /refresh and POST /logout.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" example:"6f1c1d2e-8a3b-4c5d-9e0f-1a2b3c4d5e6f"`
}

// TokenResponse is returned by /login and /refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token" example:"6f1c1d2e-8a3b-4c5d-9e0f-1a2b3c4d5e6f"`
	TokenType    string `json:"token_type" example:"Bearer"`
	ExpiresIn    int    `json:"expires_in" example:"300"`
}

// LogoutResponse is returned by /logout.
type LogoutResponse struct {
	Success string `json:"success" example:"User logged out."`
}

// UserResponse is the profile representation served by /me.
type UserResponse struct {
	ID       string  `json:"id" example:"01J9Z3K5W8Q4T2N6M0X7V1B3C5"`
	Username *string `json:"username" example:"alice"`
	Email    string  `json:"email" example:"a@x.com"`
}

// UpdateProfileRequest is the body of PUT /me. A missing username leaves the
// display name unchanged, an explicit null clears it. Email is read-only and
// ignored if sent.
type UpdateProfileRequest struct {
	Username *string `json:"username" example:"alice"`

	// UsernameSet records whether the username key was present at all.
	UsernameSet bool `json:"-"`
}

func (r *UpdateProfileRequest) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}

	raw, ok := fields["username"]
	r.UsernameSet = ok
	r.Username = nil
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return err
	}
	r.Username = &s
	return nil
}

func (r UpdateProfileRequest) MarshalJSON() ([]byte, error) {
	if !r.UsernameSet {
		return []byte("{}"), nil
	}
	return json.Marshal(struct {
		Username *string `json:"username"`
	}{r.Username})
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string            `json:"status" example:"ok"`
	Uptime  string            `json:"uptime" example:"1h2m3s"`
	Version string            `json:"version" example:"0.1.0"`
	Checks  map[string]string `json:"checks,omitempty"`
}
