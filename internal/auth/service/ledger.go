package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/tokenauth/internal/auth/domain"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store"
	"github.com/aussiebroadwan/tokenauth/pkg/cryptox"
	"github.com/aussiebroadwan/tokenauth/pkg/idx"
	"github.com/aussiebroadwan/tokenauth/pkg/jwtx"
	"github.com/google/uuid"
)

// TokenLedger records refresh tokens and enforces single use. The opaque
// value handed to clients is never persisted, only its fingerprint.
//
// Every method takes the store to operate on so callers can run several
// ledger steps inside one transaction.
type TokenLedger struct {
	RefreshTTL time.Duration
}

// NewTokenLedger returns a ledger minting tokens valid for ttl.
func NewTokenLedger(ttl time.Duration) *TokenLedger {
	if ttl <= 0 {
		ttl = jwtx.DefaultRefreshTokenTTL
	}
	return &TokenLedger{RefreshTTL: ttl}
}

// Mint creates a new active refresh token for userID.
func (l *TokenLedger) Mint(ctx context.Context, q store.Store, userID string, now time.Time) (string, domain.RefreshToken, error) {
	opaque, err := uuid.NewRandom()
	if err != nil {
		return "", domain.RefreshToken{}, fmt.Errorf("generate refresh token: %w", err)
	}

	rt := domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    userID,
		TokenHash: cryptox.FingerprintToken(opaque.String()),
		Valid:     true,
		ExpiresAt: now.Add(l.RefreshTTL),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := q.RefreshTokens().CreateRefreshToken(ctx, rt); err != nil {
		return "", domain.RefreshToken{}, err
	}

	return opaque.String(), rt, nil
}

// Consume invalidates an active token and returns its owner. Exactly one
// caller can consume a given token; every other attempt fails with
// ErrTokenNotFound, ErrTokenExpired or ErrTokenInvalid.
func (l *TokenLedger) Consume(ctx context.Context, q store.Store, opaque string, now time.Time) (string, error) {
	hash, ok := fingerprint(opaque)
	if !ok {
		return "", ErrTokenNotFound
	}

	flipped, err := q.RefreshTokens().InvalidateActiveRefreshToken(ctx, hash, now)
	if err != nil {
		return "", err
	}

	rt, err := q.RefreshTokens().GetRefreshTokenByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrTokenNotFound
		}
		return "", err
	}

	if flipped {
		return rt.UserID, nil
	}

	// Expiry is reported ahead of validity
	if rt.Expired(now) {
		return "", ErrTokenExpired
	}
	return "", ErrTokenInvalid
}

// Revoke invalidates a token regardless of its state. Revoking an already
// invalid token succeeds.
func (l *TokenLedger) Revoke(ctx context.Context, q store.Store, opaque string, now time.Time) error {
	hash, ok := fingerprint(opaque)
	if !ok {
		return ErrTokenNotFound
	}

	if err := q.RefreshTokens().InvalidateRefreshToken(ctx, hash, now); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrTokenNotFound
		}
		return err
	}
	return nil
}

// fingerprint canonicalises the opaque value before hashing so upper-case or
// braced UUID spellings map to the same record.
func fingerprint(opaque string) (string, bool) {
	id, err := uuid.Parse(opaque)
	if err != nil {
		return "", false
	}
	return cryptox.FingerprintToken(id.String()), true
}
