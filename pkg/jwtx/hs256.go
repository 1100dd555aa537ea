package jwtx

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretBytes is the shortest HS256 secret accepted.
const MinSecretBytes = 32

// issuedAtLeeway tolerates small clock skew between replicas sharing a secret.
const issuedAtLeeway = 30 * time.Second

// HS256Codec issues and verifies access tokens with a shared secret. It holds
// no mutable state after construction and is safe for concurrent use.
type HS256Codec struct {
	secret []byte
	issuer string
	ttl    time.Duration
	parser *jwt.Parser
}

var (
	_ Signer   = (*HS256Codec)(nil)
	_ Verifier = (*HS256Codec)(nil)
	_ Issuer   = (*HS256Codec)(nil)
)

// NewHS256Codec creates a codec. The secret is copied.
func NewHS256Codec(secret []byte, issuer string, ttl time.Duration) (*HS256Codec, error) {
	if len(secret) < MinSecretBytes {
		return nil, fmt.Errorf("%w: need at least %d bytes, got %d", ErrWeakSecret, MinSecretBytes, len(secret))
	}
	if ttl <= 0 {
		ttl = DefaultAccessTokenTTL
	}

	key := make([]byte, len(secret))
	copy(key, secret)

	return &HS256Codec{
		secret: key,
		issuer: issuer,
		ttl:    ttl,
		// Time based checks are done by hand against the caller's clock.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}, nil
}

func (c *HS256Codec) Alg() string { return jwt.SigningMethodHS256.Alg() }

// TTL is the lifetime stamped on every issued token.
func (c *HS256Codec) TTL() time.Duration { return c.ttl }

// Sign signs arbitrary claims. Most callers want Issue.
func (c *HS256Codec) Sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return s, nil
}

// Issue mints an access token for subject with iat=now and exp=now+TTL.
func (c *HS256Codec) Issue(subject string, now time.Time) (string, time.Time, error) {
	claims := NewAccessClaims(subject, c.issuer, c.ttl, now)
	token, err := c.Sign(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, claims.ExpiresAt.Time, nil
}

// Verify checks signature, algorithm and claims against now. Anything that
// fails to parse or authenticate is ErrMalformed, a token at or past exp is
// ErrExpired and any other claim problem wraps ErrInvalid.
func (c *HS256Codec) Verify(tokenStr string, now time.Time) (Claims, error) {
	var claims Claims
	_, err := c.parser.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	if err := claims.ValidateRequired(); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateExpiry(now); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateIssuedAt(now, issuedAtLeeway); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateIssuer(c.issuer); err != nil {
		return Claims{}, err
	}

	return claims, nil
}
