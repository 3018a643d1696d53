package service

import (
	"context"
	"testing"

	"github.com/tasmanlabs/orgauth/internal/auth/domain"
	"github.com/tasmanlabs/orgauth/pkg/jwtx"

	"github.com/stretchr/testify/require"
)

type orgFixture struct {
	sessions *SessionService
	orgs     *OrgService
}

func newOrgFixture(t *testing.T) *orgFixture {
	t.Helper()

	st := newTestStore(t)
	return &orgFixture{
		sessions: &SessionService{
			Store:   st,
			Access:  newTestCodec(t, "access-secret", jwtx.DefaultAccessTokenTTL),
			Refresh: newTestCodec(t, "refresh-secret", jwtx.DefaultRefreshTokenTTL),
		},
		orgs: &OrgService{Store: st},
	}
}

func (f *orgFixture) signup(t *testing.T, name, email string) domain.User {
	t.Helper()

	user, err := f.sessions.Signup(context.Background(), name, email, "pw", domain.AccessLevelUser)
	require.NoError(t, err)
	return user
}

func TestOrgCreate(t *testing.T) {
	t.Parallel()

	f := newOrgFixture(t)
	ctx := context.Background()

	owner := f.signup(t, "Owner", "owner@example.com")

	org, err := f.orgs.Create(ctx, owner.ID, "Acme", "widgets")
	require.NoError(t, err)
	require.Equal(t, owner.ID, org.CreatedBy)
	require.Equal(t, []string{owner.ID}, org.MemberIDs)

	t.Run("duplicate name", func(t *testing.T) {
		_, err := f.orgs.Create(ctx, owner.ID, "Acme", "again")
		require.ErrorIs(t, err, ErrDuplicateOrganization)
	})
}

func TestOrgGet(t *testing.T) {
	t.Parallel()

	f := newOrgFixture(t)
	ctx := context.Background()

	owner := f.signup(t, "Owner", "owner@example.com")
	outsider := f.signup(t, "Outsider", "outsider@example.com")

	org, err := f.orgs.Create(ctx, owner.ID, "Acme", "")
	require.NoError(t, err)

	t.Run("member sees the organization", func(t *testing.T) {
		got, err := f.orgs.Get(ctx, org.ID, owner.ID)
		require.NoError(t, err)
		require.Equal(t, "Acme", got.Name)
	})

	t.Run("non-member sees not found", func(t *testing.T) {
		_, err := f.orgs.Get(ctx, org.ID, outsider.ID)
		require.ErrorIs(t, err, ErrOrganizationNotFound)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := f.orgs.Get(ctx, "nope", owner.ID)
		require.ErrorIs(t, err, ErrOrganizationNotFound)
	})
}

func TestOrgUpdate(t *testing.T) {
	t.Parallel()

	f := newOrgFixture(t)
	ctx := context.Background()

	owner := f.signup(t, "Owner", "owner@example.com")
	outsider := f.signup(t, "Outsider", "outsider@example.com")

	org, err := f.orgs.Create(ctx, owner.ID, "Acme", "widgets")
	require.NoError(t, err)

	t.Run("member updates name", func(t *testing.T) {
		got, err := f.orgs.Update(ctx, org.ID, owner.ID, "Acme Corp", "")
		require.NoError(t, err)
		require.Equal(t, "Acme Corp", got.Name)
		require.Equal(t, "widgets", got.Description, "empty field keeps current value")
	})

	t.Run("member updates description only", func(t *testing.T) {
		got, err := f.orgs.Update(ctx, org.ID, owner.ID, "", "gadgets")
		require.NoError(t, err)
		require.Equal(t, "Acme Corp", got.Name)
		require.Equal(t, "gadgets", got.Description)
	})

	t.Run("non-member cannot update", func(t *testing.T) {
		_, err := f.orgs.Update(ctx, org.ID, outsider.ID, "Hijacked", "")
		require.ErrorIs(t, err, ErrOrganizationNotFound)
	})

	t.Run("rename onto an existing name", func(t *testing.T) {
		_, err := f.orgs.Create(ctx, owner.ID, "Other", "")
		require.NoError(t, err)
		_, err = f.orgs.Update(ctx, org.ID, owner.ID, "Other", "")
		require.ErrorIs(t, err, ErrDuplicateOrganization)
	})
}

func TestOrgDelete(t *testing.T) {
	t.Parallel()

	f := newOrgFixture(t)
	ctx := context.Background()

	owner := f.signup(t, "Owner", "owner@example.com")
	member := f.signup(t, "Member", "member@example.com")

	org, err := f.orgs.Create(ctx, owner.ID, "Acme", "")
	require.NoError(t, err)

	added, err := f.orgs.Store.Organizations().AddMember(ctx, org.ID, member.ID)
	require.NoError(t, err)
	require.True(t, added)

	t.Run("member who is not the creator cannot delete", func(t *testing.T) {
		require.ErrorIs(t, f.orgs.Delete(ctx, org.ID, member.ID), ErrNotOrganizationOwner)
	})

	t.Run("creator deletes", func(t *testing.T) {
		require.NoError(t, f.orgs.Delete(ctx, org.ID, owner.ID))
		_, err := f.orgs.Get(ctx, org.ID, owner.ID)
		require.ErrorIs(t, err, ErrOrganizationNotFound)
	})

	t.Run("delete is not repeatable", func(t *testing.T) {
		require.ErrorIs(t, f.orgs.Delete(ctx, org.ID, owner.ID), ErrOrganizationNotFound)
	})
}
