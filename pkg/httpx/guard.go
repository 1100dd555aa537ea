package httpx

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/tokenauth/pkg/jwtx"
)

var (
	ErrNoCredential    = errors.New("no credential presented")
	ErrMalformedHeader = errors.New("malformed authorization header")
)

// Guard authenticates requests carrying a bearer access token. It only
// verifies tokens and never consults the refresh token ledger.
type Guard struct {
	Verifier jwtx.Verifier
	Now      func() time.Time
}

// NewGuard returns a guard backed by v.
func NewGuard(v jwtx.Verifier) *Guard {
	return &Guard{Verifier: v}
}

// Authenticate returns the claims of the bearer token on r.
//
// A missing or empty Authorization header yields ErrNoCredential. Anything
// other than "Bearer <token>" yields ErrMalformedHeader. Verification errors
// from the codec are returned unchanged.
func (g *Guard) Authenticate(r *http.Request) (jwtx.Claims, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return jwtx.Claims{}, ErrNoCredential
	}

	parts := strings.Split(header, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return jwtx.Claims{}, ErrMalformedHeader
	}

	now := time.Now()
	if g.Now != nil {
		now = g.Now()
	}

	return g.Verifier.Verify(parts[1], now)
}
