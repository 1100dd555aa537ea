package sqlite_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/tokenauth/internal/auth/domain"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store"
	"github.com/aussiebroadwan/tokenauth/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/tokenauth/pkg/idx"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "auth.db")
	st, err := sqlite.NewStore(sqlite.DSN(path))
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())

	t.Cleanup(func() { _ = st.Close() })
	return st
}

func createUser(t *testing.T, st store.Store, email string) domain.User {
	t.Helper()

	u := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		CreatedAt:    t0,
		UpdatedAt:    t0,
	}
	require.NoError(t, st.Users().CreateUser(context.Background(), u))
	return u
}

func createToken(t *testing.T, st store.Store, userID, hash string, expiresAt time.Time) {
	t.Helper()

	require.NoError(t, st.RefreshTokens().CreateRefreshToken(context.Background(), domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    userID,
		TokenHash: hash,
		Valid:     true,
		ExpiresAt: expiresAt,
		CreatedAt: t0,
		UpdatedAt: t0,
	}))
}

func TestApplyMigrations_Idempotent(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.ApplyMigrations())
	require.NoError(t, st.Ping(context.Background()))
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	u := createUser(t, st, "alice@example.com")

	t.Run("get by id and email", func(t *testing.T) {
		byID, err := st.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, "alice@example.com", byID.Email)
		require.Nil(t, byID.Username)
		require.True(t, byID.CreatedAt.Equal(t0))

		byEmail, err := st.Users().GetUserByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		require.Equal(t, u.ID, byEmail.ID)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := st.Users().GetUserByID(ctx, idx.New().String())
		require.ErrorIs(t, err, store.ErrNotFound)

		_, err = st.Users().GetUserByEmail(ctx, "nobody@example.com")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("duplicate email", func(t *testing.T) {
		dup := u
		dup.ID = idx.New().String()
		err := st.Users().CreateUser(ctx, dup)
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("update username", func(t *testing.T) {
		name := "alice"
		require.NoError(t, st.Users().UpdateUsername(ctx, u.ID, &name, t0.Add(time.Minute)))

		got, err := st.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.NotNil(t, got.Username)
		require.Equal(t, "alice", *got.Username)
		require.True(t, got.UpdatedAt.Equal(t0.Add(time.Minute)))

		require.NoError(t, st.Users().UpdateUsername(ctx, u.ID, nil, t0.Add(2*time.Minute)))
		got, err = st.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Nil(t, got.Username)
	})

	t.Run("update unknown user", func(t *testing.T) {
		err := st.Users().UpdateUsername(ctx, idx.New().String(), nil, t0)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestRefreshTokens_InvalidateActive(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u := createUser(t, st, "bob@example.com")

	createToken(t, st, u.ID, "hash-active", t0.Add(time.Hour))
	createToken(t, st, u.ID, "hash-expired", t0)

	t.Run("flips exactly once", func(t *testing.T) {
		flipped, err := st.RefreshTokens().InvalidateActiveRefreshToken(ctx, "hash-active", t0)
		require.NoError(t, err)
		require.True(t, flipped)

		flipped, err = st.RefreshTokens().InvalidateActiveRefreshToken(ctx, "hash-active", t0)
		require.NoError(t, err)
		require.False(t, flipped)

		rt, err := st.RefreshTokens().GetRefreshTokenByHash(ctx, "hash-active")
		require.NoError(t, err)
		require.False(t, rt.Valid)
	})

	t.Run("expiry boundary is exclusive", func(t *testing.T) {
		flipped, err := st.RefreshTokens().InvalidateActiveRefreshToken(ctx, "hash-expired", t0)
		require.NoError(t, err)
		require.False(t, flipped)

		rt, err := st.RefreshTokens().GetRefreshTokenByHash(ctx, "hash-expired")
		require.NoError(t, err)
		require.True(t, rt.Valid, "expiry is evaluated lazily, the row is never written")
	})

	t.Run("unknown hash", func(t *testing.T) {
		flipped, err := st.RefreshTokens().InvalidateActiveRefreshToken(ctx, "nope", t0)
		require.NoError(t, err)
		require.False(t, flipped)

		_, err = st.RefreshTokens().GetRefreshTokenByHash(ctx, "nope")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestRefreshTokens_InvalidateAndDelete(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u := createUser(t, st, "carol@example.com")

	createToken(t, st, u.ID, "hash-1", t0.Add(time.Hour))
	createToken(t, st, u.ID, "hash-old", t0.Add(-48*time.Hour))

	require.NoError(t, st.RefreshTokens().InvalidateRefreshToken(ctx, "hash-1", t0))
	// Already invalid is still a match
	require.NoError(t, st.RefreshTokens().InvalidateRefreshToken(ctx, "hash-1", t0))
	require.ErrorIs(t, st.RefreshTokens().InvalidateRefreshToken(ctx, "missing", t0), store.ErrNotFound)

	n, err := st.RefreshTokens().DeleteExpiredRefreshTokens(ctx, t0.Add(-24*time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	_, err = st.RefreshTokens().GetRefreshTokenByHash(ctx, "hash-old")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestWithTx_RollbackOnError(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u := createUser(t, st, "dave@example.com")
	createToken(t, st, u.ID, "hash-tx", t0.Add(time.Hour))

	err := st.WithTx(ctx, func(tx store.Tx) error {
		flipped, err := tx.RefreshTokens().InvalidateActiveRefreshToken(ctx, "hash-tx", t0)
		require.NoError(t, err)
		require.True(t, flipped)
		return store.ErrNotFound
	})
	require.ErrorIs(t, err, store.ErrNotFound)

	rt, err := st.RefreshTokens().GetRefreshTokenByHash(ctx, "hash-tx")
	require.NoError(t, err)
	require.True(t, rt.Valid, "rolled back transaction must not leave the token consumed")
}

func TestInvalidateActive_ConcurrentSingleWinner(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u := createUser(t, st, "erin@example.com")
	createToken(t, st, u.ID, "hash-race", t0.Add(time.Hour))

	const workers = 8
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
				won, err = tx.RefreshTokens().InvalidateActiveRefreshToken(ctx, "hash-race", t0)
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
}
