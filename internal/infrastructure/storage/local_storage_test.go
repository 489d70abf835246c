package storage

import (
	"context"
	"testing"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/config"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewLocalStoreFs(fs, "/srv/public", nil)
	ctx := context.Background()

	link, err := store.Put(ctx, "uploads/projects/abc.jpg", "image/jpeg", []byte{0xff, 0xd8})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/projects/abc.jpg", link)

	data, err := afero.ReadFile(fs, "/srv/public/uploads/projects/abc.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xd8}, data)

	ok, err := store.Exists(ctx, "uploads/projects/abc.jpg")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Delete(ctx, "uploads/projects/abc.jpg"))
	ok, err = store.Exists(ctx, "uploads/projects/abc.jpg")
	require.NoError(t, err)
	assert.False(t, ok)

	// deleting twice is fine
	assert.NoError(t, store.Delete(ctx, "uploads/projects/abc.jpg"))
}

func TestLocalStore_RejectsBadKeys(t *testing.T) {
	store := NewLocalStoreFs(afero.NewMemMapFs(), "/srv/public", nil)
	ctx := context.Background()

	_, err := store.Put(ctx, "", "text/plain", nil)
	assert.ErrorIs(t, err, ErrEmptyKey)

	for _, key := range []string{"../etc/passwd", "uploads/../../secret", "/"} {
		_, err := store.Put(ctx, key, "text/plain", []byte("x"))
		assert.Error(t, err, key)
	}
}

func TestNew_DisabledUsesDisk(t *testing.T) {
	store, err := New(context.Background(), &config.StorageConfig{LocalDir: t.TempDir()}, nil)
	require.NoError(t, err)
	_, ok := store.(*LocalStore)
	assert.True(t, ok)
}
