package service

import (
	"context"
	"testing"
	"time"

	"github.com/tasmanlabs/orgauth/internal/auth/domain"
	"github.com/tasmanlabs/orgauth/internal/auth/store"

	"github.com/stretchr/testify/require"
)

func TestHousekeepingSweep(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	user := domain.User{
		ID: "hk-user", Name: "HK", Email: "hk@example.com",
		PasswordHash: "h", AccessLevel: domain.AccessLevelUser,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, st.Users().CreateUser(ctx, user))

	require.NoError(t, st.RefreshRegistry().Put(ctx, domain.RegistryEntry{
		TokenHash: "stale", UserID: user.ID, ExpiresAt: now.Add(-time.Hour),
	}))
	require.NoError(t, st.RefreshRegistry().Put(ctx, domain.RegistryEntry{
		TokenHash: "fresh", UserID: user.ID, ExpiresAt: now.Add(time.Hour),
	}))

	hk := NewHousekeepingService(st, discardLogger(), time.Hour)
	hk.Start()
	hk.Stop()

	_, err := st.RefreshRegistry().Get(ctx, "fresh")
	require.NoError(t, err)
	_, err = st.RefreshRegistry().Get(ctx, "stale")
	require.ErrorIs(t, err, store.ErrNotFound)
}
