package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/tokenauth/internal/auth/domain"
	"github.com/aussiebroadwan/tokenauth/internal/auth/metrics"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store"
	"github.com/aussiebroadwan/tokenauth/pkg/jwtx"
	"github.com/aussiebroadwan/tokenauth/pkg/slogx"
)

// SessionManager drives the token lifecycle: login mints a pair, refresh
// rotates the refresh token, logout revokes it. It holds no per-session
// state between calls.
type SessionManager struct {
	Store       store.Store
	Credentials *CredentialService
	Ledger      *TokenLedger
	Codec       jwtx.Issuer
	Metrics     *metrics.Metrics
	Now         func() time.Time
}

// Login checks the credentials and issues a fresh pair. Nothing is written
// to the ledger when the credentials do not match.
func (s *SessionManager) Login(ctx context.Context, email, password string) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	userID, ok, err := s.Credentials.VerifyCredentials(ctx, email, password)
	if err != nil {
		s.Metrics.ObserveSession(metrics.OpLogin, metrics.OutcomeError, "")
		return domain.TokenPair{}, err
	}
	if !ok {
		l.Info("login rejected")
		s.Metrics.ObserveSession(metrics.OpLogin, metrics.OutcomeRejected, ErrInvalidCredentials.Error())
		return domain.TokenPair{}, ErrInvalidCredentials
	}

	now := s.now()
	var pair domain.TokenPair

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		pair, err = s.issue(ctx, tx, userID, now)
		return err
	})
	if err != nil {
		s.Metrics.ObserveSession(metrics.OpLogin, metrics.OutcomeError, "")
		return domain.TokenPair{}, err
	}

	l.Info("login succeeded", slog.String("user_id", userID))
	s.Metrics.ObserveSession(metrics.OpLogin, metrics.OutcomeSuccess, "")
	return pair, nil
}

// Refresh consumes the presented refresh token and mints a replacement.
// Consume, mint and signing happen in one transaction so a failure at any
// step leaves the presented token untouched.
//
// Ledger rejections are returned as ErrUnauthorized wrapping the specific
// ledger error.
func (s *SessionManager) Refresh(ctx context.Context, opaque string) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)
	now := s.now()

	var (
		pair   domain.TokenPair
		userID string
	)

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		userID, err = s.Ledger.Consume(ctx, tx, opaque, now)
		if err != nil {
			return err
		}
		pair, err = s.issue(ctx, tx, userID, now)
		return err
	})
	if err != nil {
		if kind := ledgerKind(err); kind != nil {
			l.Info("refresh rejected", slog.String("reason", kind.Error()))
			s.Metrics.ObserveSession(metrics.OpRefresh, metrics.OutcomeRejected, kind.Error())
			return domain.TokenPair{}, fmt.Errorf("%w: %w", ErrUnauthorized, err)
		}
		s.Metrics.ObserveSession(metrics.OpRefresh, metrics.OutcomeError, "")
		return domain.TokenPair{}, err
	}

	l.Info("refresh token rotated", slog.String("user_id", userID))
	s.Metrics.ObserveSession(metrics.OpRefresh, metrics.OutcomeSuccess, "")
	return pair, nil
}

// Logout revokes the refresh token. Access tokens already issued stay
// valid until they expire.
func (s *SessionManager) Logout(ctx context.Context, opaque string) error {
	err := s.Ledger.Revoke(ctx, s.Store, opaque, s.now())
	switch {
	case err == nil:
		s.Metrics.ObserveSession(metrics.OpLogout, metrics.OutcomeSuccess, "")
		return nil
	case errors.Is(err, ErrTokenNotFound):
		s.Metrics.ObserveSession(metrics.OpLogout, metrics.OutcomeRejected, ErrTokenNotFound.Error())
		return fmt.Errorf("%w: %w", ErrUnknownToken, err)
	default:
		s.Metrics.ObserveSession(metrics.OpLogout, metrics.OutcomeError, "")
		return err
	}
}

func (s *SessionManager) issue(ctx context.Context, q store.Store, userID string, now time.Time) (domain.TokenPair, error) {
	refresh, _, err := s.Ledger.Mint(ctx, q, userID, now)
	if err != nil {
		return domain.TokenPair{}, err
	}

	access, _, err := s.Codec.Issue(userID, now)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    jwtx.TokenTypeBearer,
		ExpiresIn:    s.Codec.TTL(),
	}, nil
}

func (s *SessionManager) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func ledgerKind(err error) error {
	for _, kind := range []error{ErrTokenNotFound, ErrTokenExpired, ErrTokenInvalid} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
