package service

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrUnknownToken       = errors.New("unknown_token")
	ErrDuplicateEmail     = errors.New("duplicate_email")
	ErrValidation         = errors.New("validation_error")
	ErrUserNotFound       = errors.New("user_not_found")
)

// Ledger outcomes for a refresh token that could not be consumed.
var (
	ErrTokenNotFound = errors.New("refresh token not found")
	ErrTokenExpired  = errors.New("refresh token expired")
	ErrTokenInvalid  = errors.New("refresh token no longer valid")
)
