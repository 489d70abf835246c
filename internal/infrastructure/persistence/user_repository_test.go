package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/identity"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUser(t *testing.T, email, name string, role identity.Role, active bool, at time.Time) *identity.User {
	t.Helper()
	u, err := identity.NewUser(identity.UserParams{Email: email, Name: name, Role: role, IsActive: active}, "motdepasse1", at)
	require.NoError(t, err)
	return u
}

func TestGormUserRepository(t *testing.T) {
	db := newSQLiteDB(t, &identity.User{})
	repo := NewGormUserRepository(db)
	ctx := context.Background()
	now := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)

	admin := newTestUser(t, "admin@letatchebois.ma", "Youssef Admin", identity.RoleAdmin, true, now.Add(-72*time.Hour))
	manager := newTestUser(t, "manager@letatchebois.ma", "Hind Manager", identity.RoleManager, true, now.Add(-48*time.Hour))
	former := newTestUser(t, "ancien@letatchebois.ma", "Ancien Admin", identity.RoleAdmin, false, now.Add(-24*time.Hour))
	sales := newTestUser(t, "ventes@letatchebois.ma", "Omar Ventes", identity.RoleCommercial, true, now)
	for _, u := range []*identity.User{admin, manager, former, sales} {
		require.NoError(t, repo.Save(ctx, u))
	}

	t.Run("find by email", func(t *testing.T) {
		got, err := repo.FindByEmail(ctx, "manager@letatchebois.ma")
		require.NoError(t, err)
		assert.Equal(t, manager.ID, got.ID)
		assert.True(t, got.VerifyPassword("motdepasse1"))

		_, err = repo.FindByEmail(ctx, "absent@letatchebois.ma")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("inactive flag survives the round trip", func(t *testing.T) {
		got, err := repo.FindByID(ctx, former.ID)
		require.NoError(t, err)
		assert.False(t, got.IsActive)
	})

	t.Run("filters and search", func(t *testing.T) {
		items, total, err := repo.FindAll(ctx, identity.UserFilter{Filter: shared.DefaultFilter(), Role: identity.RoleAdmin})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, items, 2)

		active := false
		items, _, err = repo.FindAll(ctx, identity.UserFilter{Filter: shared.DefaultFilter(), IsActive: &active})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, former.ID, items[0].ID)

		f := shared.DefaultFilter()
		f.Search = "VENTES"
		items, total, err = repo.FindAll(ctx, identity.UserFilter{Filter: f})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, sales.ID, items[0].ID)
	})

	t.Run("notification recipients", func(t *testing.T) {
		users, err := repo.FindActiveByRoles(ctx, identity.RoleAdmin, identity.RoleManager)
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, admin.ID, users[0].ID)
		assert.Equal(t, manager.ID, users[1].ID)
	})

	t.Run("email uniqueness", func(t *testing.T) {
		taken, err := repo.ExistsByEmail(ctx, "admin@letatchebois.ma", nil)
		require.NoError(t, err)
		assert.True(t, taken)

		taken, err = repo.ExistsByEmail(ctx, "admin@letatchebois.ma", &admin.ID)
		require.NoError(t, err)
		assert.False(t, taken)
	})

	t.Run("count active admins and delete", func(t *testing.T) {
		n, err := repo.CountActiveAdmins(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		require.NoError(t, repo.Delete(ctx, sales.ID))
		assert.ErrorIs(t, repo.Delete(ctx, sales.ID), shared.ErrNotFound)
	})
}
