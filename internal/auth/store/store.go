package store

import (
	"context"
	"errors"
	"time"

	"github.com/tasmanlabs/orgauth/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers implement it
// and expose sub-repositories to keep concerns tidy and testable.
type Store interface {
	Users() Users
	Organizations() Organizations
	RefreshRegistry() RefreshRegistry

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST Commit() or Rollback() the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing on nil and
	// rolling back on error. This is the recommended entry point for
	// multi-step operations that must be atomic (refresh rotation,
	// invitation redemption).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. Repositories obtained from it operate inside
// the transaction.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// CreateUser inserts a new user. Returns ErrAlreadyExists if the
	// email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail looks up by the unique lowercase email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// DeleteUser cascades to memberships and registry entries (per schema).
	DeleteUser(ctx context.Context, id string) error
}

type Organizations interface {
	// CreateOrganization inserts the organization and its initial
	// membership set. Returns ErrAlreadyExists on a duplicate name.
	CreateOrganization(ctx context.Context, o domain.Organization) error

	// GetOrganizationByID returns the organization with its membership
	// set loaded in join order.
	GetOrganizationByID(ctx context.Context, id string) (domain.Organization, error)

	// ListOrganizationsForUser returns every organization the user is a
	// member of, newest first.
	ListOrganizationsForUser(ctx context.Context, userID string) ([]domain.Organization, error)

	// UpdateOrganization persists name and description changes.
	UpdateOrganization(ctx context.Context, id, name, description string) error

	DeleteOrganization(ctx context.Context, id string) error

	// AddMember appends userID to the membership set. Set semantics: the
	// insert is idempotent and the bool reports whether a new row was
	// actually added, so concurrent redemptions of one invitation
	// produce exactly one membership.
	AddMember(ctx context.Context, orgID, userID string) (bool, error)

	IsMember(ctx context.Context, orgID, userID string) (bool, error)
}

// RefreshRegistry is the server-side liveness record for refresh tokens,
// keyed by token fingerprint. A signed refresh token is only usable while
// its entry exists here; the entry is the single source of revocation truth.
type RefreshRegistry interface {
	// Put upserts an entry. The expiry must equal the signed claim
	// expiry so neither authority outlives the other.
	Put(ctx context.Context, entry domain.RegistryEntry) error

	// Get returns the owning user id. Expired rows are invisible even if
	// housekeeping has not reclaimed them yet.
	Get(ctx context.Context, tokenHash string) (string, error)

	// Delete removes an entry, reporting whether a live row was removed.
	// Rotation relies on this: the caller whose delete touched zero rows
	// lost the race and must fail.
	Delete(ctx context.Context, tokenHash string) (bool, error)

	// DeleteExpired reclaims rows past their expiry (housekeeping).
	DeleteExpired(ctx context.Context, now time.Time) error
}
