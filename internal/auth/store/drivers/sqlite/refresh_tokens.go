package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/tokenauth/internal/auth/domain"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store/drivers/sqlite/gen"
)

type refreshTokensRepo struct {
	q *gen.Queries
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	err := r.q.CreateRefreshToken(ctx, gen.CreateRefreshTokenParams{
		ID:        t.ID,
		UserID:    t.UserID,
		TokenHash: t.TokenHash,
		ExpiresAt: toMillis(t.ExpiresAt),
		CreatedAt: toMillis(t.CreatedAt),
		UpdatedAt: toMillis(t.UpdatedAt),
	})
	if err != nil {
		return mapConstraint(err)
	}
	return nil
}

func (r *refreshTokensRepo) GetRefreshTokenByHash(
	ctx context.Context,
	hash string,
) (domain.RefreshToken, error) {
	row, err := r.q.GetRefreshTokenByHash(ctx, hash)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	return mapRefreshToken(row), nil
}

func (r *refreshTokensRepo) InvalidateActiveRefreshToken(
	ctx context.Context,
	hash string,
	now time.Time,
) (bool, error) {
	n, err := r.q.InvalidateActiveRefreshToken(ctx, gen.InvalidateActiveRefreshTokenParams{
		UpdatedAt: toMillis(now),
		TokenHash: hash,
		ExpiresAt: toMillis(now),
	})
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *refreshTokensRepo) InvalidateRefreshToken(ctx context.Context, hash string, now time.Time) error {
	n, err := r.q.InvalidateRefreshToken(ctx, gen.InvalidateRefreshTokenParams{
		UpdatedAt: toMillis(now),
		TokenHash: hash,
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *refreshTokensRepo) DeleteExpiredRefreshTokens(ctx context.Context, before time.Time) (int64, error) {
	return r.q.DeleteExpiredRefreshTokens(ctx, toMillis(before))
}
