package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/setting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormSettingRepository(t *testing.T) {
	db := newSQLiteDB(t, &setting.Setting{})
	repo := NewGormSettingRepository(db)
	ctx := context.Background()
	now := time.Date(2025, 5, 2, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Upsert(ctx, setting.Rows(setting.GroupContact, map[string]any{
		"phone":    "+212 522-000000",
		"latitude": 33.6,
	}, nil, now)))
	require.NoError(t, repo.Upsert(ctx, setting.Rows(setting.GroupSocial, map[string]any{"instagram": "tb"}, nil, now)))

	t.Run("upsert overwrites", func(t *testing.T) {
		require.NoError(t, repo.Upsert(ctx, setting.Rows(setting.GroupContact, map[string]any{"phone": "+212 600-000000"}, nil, now.Add(time.Hour))))

		rows, err := repo.FindByGroups(ctx, []string{setting.GroupContact})
		require.NoError(t, err)
		require.Len(t, rows, 2)
		merged := setting.Merge([]string{setting.GroupContact}, rows)
		assert.Equal(t, "+212 600-000000", merged[setting.GroupContact]["phone"])
		assert.Equal(t, 33.6, merged[setting.GroupContact]["latitude"])
	})

	t.Run("all groups", func(t *testing.T) {
		rows, err := repo.FindByGroups(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, rows, 3)
	})

	t.Run("delete group", func(t *testing.T) {
		require.NoError(t, repo.DeleteGroup(ctx, setting.GroupContact))
		rows, err := repo.FindByGroups(ctx, nil)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, setting.GroupSocial, rows[0].Group)
	})
}
