package jwtx

import (
	"errors"
	"fmt"
	"time"
)

// Signer turns claims into a compact JWS.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
}

// Verifier validates a JWT at a given instant and returns its claims.
type Verifier interface {
	Verify(token string, now time.Time) (Claims, error)
}

// Issuer mints a token for subject with the codec's configured lifetime.
type Issuer interface {
	Issue(subject string, now time.Time) (token string, expiresAt time.Time, err error)
	TTL() time.Duration
}

// The three public failure kinds are ErrExpired, ErrMalformed and ErrInvalid.
// The remaining errors are finer causes and always wrap ErrInvalid.
var (
	ErrExpired   = errors.New("jwtx: token expired")
	ErrMalformed = errors.New("jwtx: malformed token")
	ErrInvalid   = errors.New("jwtx: invalid token")

	ErrIssuer      = fmt.Errorf("%w: issuer mismatch", ErrInvalid)
	ErrNotYetValid = fmt.Errorf("%w: issued in the future", ErrInvalid)
	ErrWeakSecret  = errors.New("jwtx: signing secret too short")
)
