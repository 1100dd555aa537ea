package authsdk

import (
	"net/mail"
	"strings"

	"github.com/google/uuid"
)

const (
	reasonRequired     = "This field is required."
	reasonInvalidEmail = "Enter a valid email address."
	reasonInvalidUUID  = "Must be a valid UUID."

	maxEmailLength    = 254
	maxPasswordLength = 1024
	maxUsernameLength = 150
)

// Validate returns per-field errors, or nil when the request is acceptable.
func (r RegisterRequest) Validate() map[string]string {
	errs := make(map[string]string)
	validateEmail(errs, r.Email)
	validatePassword(errs, r.Password)
	return nilIfEmpty(errs)
}

// Validate returns per-field errors, or nil when the request is acceptable.
func (r LoginRequest) Validate() map[string]string {
	errs := make(map[string]string)
	validateEmail(errs, r.Email)
	validatePassword(errs, r.Password)
	return nilIfEmpty(errs)
}

// Validate checks the refresh token is present and UUID shaped.
func (r RefreshRequest) Validate() map[string]string {
	errs := make(map[string]string)
	switch tok := strings.TrimSpace(r.RefreshToken); {
	case tok == "":
		errs["refresh_token"] = reasonRequired
	default:
		if _, err := uuid.Parse(tok); err != nil {
			errs["refresh_token"] = reasonInvalidUUID
		}
	}
	return nilIfEmpty(errs)
}

// Validate bounds the display name length.
func (r UpdateProfileRequest) Validate() map[string]string {
	errs := make(map[string]string)
	if r.Username != nil && len([]rune(strings.TrimSpace(*r.Username))) > maxUsernameLength {
		errs["username"] = "Ensure this field has no more than 150 characters."
	}
	return nilIfEmpty(errs)
}

func validateEmail(errs map[string]string, email string) {
	email = strings.TrimSpace(email)
	switch {
	case email == "":
		errs["email"] = reasonRequired
	case len(email) > maxEmailLength:
		errs["email"] = reasonInvalidEmail
	default:
		addr, err := mail.ParseAddress(email)
		if err != nil || addr.Name != "" || addr.Address != email {
			errs["email"] = reasonInvalidEmail
			return
		}
		// net/mail accepts dotless domains such as "a@localhost"
		domain := email[strings.LastIndex(email, "@")+1:]
		if !strings.Contains(domain, ".") {
			errs["email"] = reasonInvalidEmail
		}
	}
}

func validatePassword(errs map[string]string, password string) {
	switch {
	case password == "":
		errs["password"] = reasonRequired
	case len(password) > maxPasswordLength:
		errs["password"] = "Ensure this field has no more than 1024 characters."
	}
}

func nilIfEmpty(errs map[string]string) map[string]string {
	if len(errs) == 0 {
		return nil
	}
	return errs
}
