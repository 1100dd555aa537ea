package postgres_test

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/tokenauth/internal/auth/domain"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store/drivers/postgres"
	"github.com/aussiebroadwan/tokenauth/pkg/idx"
	"github.com/stretchr/testify/require"
)

// Integration tests run when AUTH_DATABASE_URL points at a disposable database.

func newIntegrationStore(t *testing.T) *postgres.Store {
	t.Helper()

	dbURL := os.Getenv("AUTH_DATABASE_URL")
	if dbURL == "" {
		t.Skip("AUTH_DATABASE_URL is not set; skipping Postgres integration test")
	}

	st, err := postgres.NewStore(context.Background(), dbURL)
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())

	t.Cleanup(func() { _ = st.Close() })
	return st
}

func newUser(t *testing.T, st store.Store, now time.Time) domain.User {
	t.Helper()

	id := idx.New().String()
	u := domain.User{
		ID:           id,
		Email:        strings.ToLower(id) + "@example.com",
		PasswordHash: "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, st.Users().CreateUser(context.Background(), u))
	return u
}

func TestPostgresUsers_CreateAndDuplicate(t *testing.T) {
	ctx := context.Background()
	st := newIntegrationStore(t)
	now := time.Now().UTC().Truncate(time.Millisecond)

	u := newUser(t, st, now)

	got, err := st.Users().GetUserByEmail(ctx, u.Email)
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.Nil(t, got.Username)

	dup := u
	dup.ID = idx.New().String()
	require.ErrorIs(t, st.Users().CreateUser(ctx, dup), store.ErrAlreadyExists)

	name := "display"
	require.NoError(t, st.Users().UpdateUsername(ctx, u.ID, &name, now))
	got, err = st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "display", got.DisplayName())
}

func TestPostgresRefreshTokens_ConsumeOnce(t *testing.T) {
	ctx := context.Background()
	st := newIntegrationStore(t)
	now := time.Now().UTC().Truncate(time.Millisecond)
	u := newUser(t, st, now)

	hash := "pg-" + idx.New().String()
	require.NoError(t, st.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    u.ID,
		TokenHash: hash,
		Valid:     true,
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
		UpdatedAt: now,
	}))

	const workers = 6
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var won bool
			err := st.WithTx(ctx, func(tx store.Tx) error {
				var err error
				won, err = tx.RefreshTokens().InvalidateActiveRefreshToken(ctx, hash, now)
				return err
			})
			if err == nil && won {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 1, wins)

	rt, err := st.RefreshTokens().GetRefreshTokenByHash(ctx, hash)
	require.NoError(t, err)
	require.False(t, rt.Valid)

	require.NoError(t, st.RefreshTokens().InvalidateRefreshToken(ctx, hash, now))
	require.ErrorIs(t, st.RefreshTokens().InvalidateRefreshToken(ctx, "pg-missing-"+hash, now), store.ErrNotFound)
}
