package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/tokenauth/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. Sub-repositories are exposed as methods so a Tx-scoped
// Store can hand out the same repos bound to the transaction, and nobody ends
// up nesting transactions by accident.
type Store interface {
	Users() Users
	RefreshTokens() RefreshTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. Prefer this over
	// Tx as it handles commit/rollback for you.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used during login. The email must already be normalised.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID). Returns
	// ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateUsername sets (or clears, when nil) the display name and bumps updated_at.
	UpdateUsername(ctx context.Context, userID string, username *string, now time.Time) error
}

// RefreshTokens is the ledger's persistence capability. Rows are only ever
// flipped from valid to invalid, never back.
type RefreshTokens interface {
	// CreateRefreshToken stores a new refresh token record.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByHash returns the token by its fingerprint regardless of state.
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// InvalidateActiveRefreshToken flips valid to false only if the token is
	// currently valid and not expired at now. It reports whether this call
	// performed the flip, which makes it safe to use as a compare-and-swap.
	InvalidateActiveRefreshToken(ctx context.Context, hash string, now time.Time) (bool, error)

	// InvalidateRefreshToken flips valid to false regardless of state.
	// Returns ErrNotFound if no row carries the hash.
	InvalidateRefreshToken(ctx context.Context, hash string, now time.Time) error

	// DeleteExpiredRefreshTokens removes rows that expired before the cutoff
	// and returns how many were removed.
	DeleteExpiredRefreshTokens(ctx context.Context, before time.Time) (int64, error)
}
