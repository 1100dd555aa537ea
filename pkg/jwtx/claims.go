package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTL constants. The service overrides both from config.
const (
	// DefaultAccessTokenTTL is the default lifetime for access tokens.
	DefaultAccessTokenTTL = 5 * time.Minute

	// DefaultRefreshTokenTTL is the default lifetime for refresh tokens.
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// TokenTypeBearer is the token_type reported alongside issued access tokens.
const TokenTypeBearer = "Bearer"

// Claims are the access-token claims. Only registered claims are used: sub
// carries the user id, iat/exp bound the lifetime.
type Claims struct {
	jwt.RegisteredClaims
}

// NewAccessClaims builds minimally-correct claims for subject issued at now.
func NewAccessClaims(subject, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateRequired checks the claims every access token must carry.
func (c *Claims) ValidateRequired() error {
	if c.Subject == "" || c.ExpiresAt == nil || c.IssuedAt == nil {
		return ErrMalformed
	}
	return nil
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// ValidateExpiry reports ErrExpired once now reaches exp. A token is already
// expired at the exact exp instant.
func (c *Claims) ValidateExpiry(now time.Time) error {
	if c.ExpiresAt == nil {
		return ErrMalformed
	}
	if !now.Before(c.ExpiresAt.Time) {
		return ErrExpired
	}
	return nil
}

// ValidateIssuedAt rejects tokens minted further in the future than leeway.
func (c *Claims) ValidateIssuedAt(now time.Time, leeway time.Duration) error {
	if c.IssuedAt == nil {
		return ErrMalformed
	}
	if c.IssuedAt.After(now.Add(leeway)) {
		return ErrNotYetValid
	}
	return nil
}
