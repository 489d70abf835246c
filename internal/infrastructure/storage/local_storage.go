package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/config"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// LocalStore keeps objects under a directory served as static files.
// Keys map to paths below the root and URLs to "/" + key.
type LocalStore struct {
	fs     afero.Fs
	root   string
	logger *zap.Logger
}

// NewLocalStore creates a store rooted at dir on the OS filesystem
func NewLocalStore(dir string, logger *zap.Logger) *LocalStore {
	return NewLocalStoreFs(afero.NewOsFs(), dir, logger)
}

// NewLocalStoreFs creates a store on any afero filesystem
func NewLocalStoreFs(fs afero.Fs, dir string, logger *zap.Logger) *LocalStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalStore{fs: fs, root: filepath.Clean(dir), logger: logger}
}

// Root returns the directory objects are written to
func (s *LocalStore) Root() string {
	return s.root
}

func (s *LocalStore) pathFor(key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}
	clean := path.Clean("/" + key)
	if clean == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

// Put writes an object and returns its URL relative to the site root
func (s *LocalStore) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	p, err := s.pathFor(key)
	if err != nil {
		return "", err
	}
	if err := s.fs.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := afero.WriteFile(s.fs, p, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write object: %w", err)
	}
	s.logger.Debug("object stored", zap.String("path", p), zap.Int("size", len(data)))
	return s.URL(key), nil
}

// Delete removes an object. Deleting a missing key is not an error.
func (s *LocalStore) Delete(_ context.Context, key string) error {
	p, err := s.pathFor(key)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// Exists reports whether an object is present
func (s *LocalStore) Exists(_ context.Context, key string) (bool, error) {
	p, err := s.pathFor(key)
	if err != nil {
		return false, err
	}
	return afero.Exists(s.fs, p)
}

// URL returns the public address of a key
func (s *LocalStore) URL(key string) string {
	return "/" + strings.TrimLeft(key, "/")
}

// Store is what the rest of the application writes files through
type Store interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

var (
	_ Store = (*S3Store)(nil)
	_ Store = (*LocalStore)(nil)
)

// New picks the bucket when storage is enabled and the local directory otherwise
func New(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled {
		logger.Info("object storage disabled, writing uploads to disk", zap.String("dir", cfg.LocalDir))
		return NewLocalStore(cfg.LocalDir, logger), nil
	}
	s3Store, err := NewS3Store(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := s3Store.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return s3Store, nil
}
