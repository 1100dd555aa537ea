package postgres

import (
	"context"
	"time"

	"github.com/aussiebroadwan/tokenauth/internal/auth/domain"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store"
)

type refreshTokensRepo struct {
	db dbtx
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO refresh_tokens (id, user_id, token_hash, valid, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, TRUE, $4, $5, $6)
	`, t.ID, t.UserID, t.TokenHash, t.ExpiresAt.UTC(), t.CreatedAt.UTC(), t.UpdatedAt.UTC())
	if err != nil {
		return mapConstraint(err)
	}
	return nil
}

func (r *refreshTokensRepo) GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error) {
	var t domain.RefreshToken
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, token_hash, valid, expires_at, created_at, updated_at
		FROM refresh_tokens
		WHERE token_hash = $1
	`, hash).Scan(
		&t.ID,
		&t.UserID,
		&t.TokenHash,
		&t.Valid,
		&t.ExpiresAt,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	t.ExpiresAt = t.ExpiresAt.UTC()
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}

// InvalidateActiveRefreshToken relies on the row lock taken by UPDATE: a
// concurrent caller blocks until the first commits, then re-evaluates the
// WHERE clause against the flipped row and matches nothing.
func (r *refreshTokensRepo) InvalidateActiveRefreshToken(ctx context.Context, hash string, now time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE refresh_tokens
		SET valid = FALSE, updated_at = $2
		WHERE token_hash = $1 AND valid AND expires_at > $2
	`, hash, now.UTC())
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *refreshTokensRepo) InvalidateRefreshToken(ctx context.Context, hash string, now time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE refresh_tokens
		SET valid = FALSE, updated_at = $2
		WHERE token_hash = $1
	`, hash, now.UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *refreshTokensRepo) DeleteExpiredRefreshTokens(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at < $1`, before.UTC())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
