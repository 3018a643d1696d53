package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/tasmanlabs/orgauth/internal/auth/domain"
	"github.com/tasmanlabs/orgauth/internal/auth/store"
	"github.com/tasmanlabs/orgauth/pkg/idx"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func newTestUser(t *testing.T, s *Store, email string) domain.User {
	t.Helper()

	now := time.Now().UTC()
	u := domain.User{
		ID:           idx.New().String(),
		Name:         "Test User",
		Email:        email,
		PasswordHash: "argon2-placeholder",
		AccessLevel:  domain.AccessLevelUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, s.Users().CreateUser(context.Background(), u))
	return u
}

func TestUsersRepo(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser(t, s, "alice@example.com")

	t.Run("get by id", func(t *testing.T) {
		got, err := s.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, u.Email, got.Email)
		require.Equal(t, domain.AccessLevelUser, got.AccessLevel)
	})

	t.Run("get by email", func(t *testing.T) {
		got, err := s.Users().GetUserByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := s.Users().GetUserByEmail(ctx, "nobody@example.com")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("duplicate email", func(t *testing.T) {
		dup := u
		dup.ID = idx.New().String()
		err := s.Users().CreateUser(ctx, dup)
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("delete", func(t *testing.T) {
		victim := newTestUser(t, s, "victim@example.com")
		require.NoError(t, s.Users().DeleteUser(ctx, victim.ID))
		_, err := s.Users().GetUserByID(ctx, victim.ID)
		require.ErrorIs(t, err, store.ErrNotFound)

		require.ErrorIs(t, s.Users().DeleteUser(ctx, victim.ID), store.ErrNotFound)
	})
}

func TestOrganizationsRepo(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	owner := newTestUser(t, s, "owner@example.com")
	member := newTestUser(t, s, "member@example.com")

	now := time.Now().UTC()
	org := domain.Organization{
		ID:          idx.New().String(),
		Name:        "Acme",
		Description: "widgets",
		CreatedBy:   owner.ID,
		MemberIDs:   []string{owner.ID},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, s.Organizations().CreateOrganization(ctx, org))

	t.Run("creator is a member", func(t *testing.T) {
		got, err := s.Organizations().GetOrganizationByID(ctx, org.ID)
		require.NoError(t, err)
		require.Equal(t, []string{owner.ID}, got.MemberIDs)
	})

	t.Run("duplicate name", func(t *testing.T) {
		dup := org
		dup.ID = idx.New().String()
		require.ErrorIs(t, s.Organizations().CreateOrganization(ctx, dup), store.ErrAlreadyExists)
	})

	t.Run("add member is idempotent", func(t *testing.T) {
		added, err := s.Organizations().AddMember(ctx, org.ID, member.ID)
		require.NoError(t, err)
		require.True(t, added)

		added, err = s.Organizations().AddMember(ctx, org.ID, member.ID)
		require.NoError(t, err)
		require.False(t, added)

		got, err := s.Organizations().GetOrganizationByID(ctx, org.ID)
		require.NoError(t, err)
		require.Len(t, got.MemberIDs, 2)
	})

	t.Run("is member", func(t *testing.T) {
		ok, err := s.Organizations().IsMember(ctx, org.ID, owner.ID)
		require.NoError(t, err)
		require.True(t, ok)

		outsider := newTestUser(t, s, "outsider@example.com")
		ok, err = s.Organizations().IsMember(ctx, org.ID, outsider.ID)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("list for user", func(t *testing.T) {
		orgs, err := s.Organizations().ListOrganizationsForUser(ctx, member.ID)
		require.NoError(t, err)
		require.Len(t, orgs, 1)
		require.Equal(t, org.ID, orgs[0].ID)

		orgs, err = s.Organizations().ListOrganizationsForUser(ctx, idx.New().String())
		require.NoError(t, err)
		require.Empty(t, orgs)
	})

	t.Run("update", func(t *testing.T) {
		require.NoError(t, s.Organizations().UpdateOrganization(ctx, org.ID, "Acme Corp", "more widgets"))
		got, err := s.Organizations().GetOrganizationByID(ctx, org.ID)
		require.NoError(t, err)
		require.Equal(t, "Acme Corp", got.Name)
		require.Equal(t, "more widgets", got.Description)

		require.ErrorIs(t, s.Organizations().UpdateOrganization(ctx, idx.New().String(), "x", "y"), store.ErrNotFound)
	})

	t.Run("delete cascades memberships", func(t *testing.T) {
		require.NoError(t, s.Organizations().DeleteOrganization(ctx, org.ID))
		_, err := s.Organizations().GetOrganizationByID(ctx, org.ID)
		require.ErrorIs(t, err, store.ErrNotFound)

		orgs, err := s.Organizations().ListOrganizationsForUser(ctx, member.ID)
		require.NoError(t, err)
		require.Empty(t, orgs)
	})
}

func TestRefreshRegistryRepo(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	u := newTestUser(t, s, "session@example.com")

	t.Run("put and get", func(t *testing.T) {
		entry := domain.RegistryEntry{
			TokenHash: "hash-live",
			UserID:    u.ID,
			ExpiresAt: time.Now().Add(time.Hour),
		}
		require.NoError(t, s.RefreshRegistry().Put(ctx, entry))

		owner, err := s.RefreshRegistry().Get(ctx, "hash-live")
		require.NoError(t, err)
		require.Equal(t, u.ID, owner)
	})

	t.Run("expired rows are invisible", func(t *testing.T) {
		entry := domain.RegistryEntry{
			TokenHash: "hash-expired",
			UserID:    u.ID,
			ExpiresAt: time.Now().Add(-time.Minute),
		}
		require.NoError(t, s.RefreshRegistry().Put(ctx, entry))

		_, err := s.RefreshRegistry().Get(ctx, "hash-expired")
		require.ErrorIs(t, err, store.ErrNotFound)

		removed, err := s.RefreshRegistry().Delete(ctx, "hash-expired")
		require.NoError(t, err)
		require.False(t, removed)
	})

	t.Run("delete reports liveness", func(t *testing.T) {
		removed, err := s.RefreshRegistry().Delete(ctx, "hash-live")
		require.NoError(t, err)
		require.True(t, removed)

		removed, err = s.RefreshRegistry().Delete(ctx, "hash-live")
		require.NoError(t, err)
		require.False(t, removed)
	})

	t.Run("delete expired reclaims rows", func(t *testing.T) {
		require.NoError(t, s.RefreshRegistry().Put(ctx, domain.RegistryEntry{
			TokenHash: "hash-old",
			UserID:    u.ID,
			ExpiresAt: time.Now().Add(-time.Hour),
		}))
		require.NoError(t, s.RefreshRegistry().Put(ctx, domain.RegistryEntry{
			TokenHash: "hash-new",
			UserID:    u.ID,
			ExpiresAt: time.Now().Add(time.Hour),
		}))

		require.NoError(t, s.RefreshRegistry().DeleteExpired(ctx, time.Now()))

		_, err := s.RefreshRegistry().Get(ctx, "hash-new")
		require.NoError(t, err)
	})
}

func TestWithTx(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	t.Run("commit on nil", func(t *testing.T) {
		err := s.WithTx(ctx, func(tx store.Tx) error {
			now := time.Now().UTC()
			return tx.Users().CreateUser(ctx, domain.User{
				ID:           idx.New().String(),
				Name:         "Committed",
				Email:        "committed@example.com",
				PasswordHash: "h",
				AccessLevel:  domain.AccessLevelUser,
				CreatedAt:    now,
				UpdatedAt:    now,
			})
		})
		require.NoError(t, err)

		_, err = s.Users().GetUserByEmail(ctx, "committed@example.com")
		require.NoError(t, err)
	})

	t.Run("rollback on error", func(t *testing.T) {
		boom := store.ErrNotFound
		err := s.WithTx(ctx, func(tx store.Tx) error {
			now := time.Now().UTC()
			if err := tx.Users().CreateUser(ctx, domain.User{
				ID:           idx.New().String(),
				Name:         "Rolled Back",
				Email:        "rolledback@example.com",
				PasswordHash: "h",
				AccessLevel:  domain.AccessLevelUser,
				CreatedAt:    now,
				UpdatedAt:    now,
			}); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		_, err = s.Users().GetUserByEmail(ctx, "rolledback@example.com")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}
