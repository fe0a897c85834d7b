package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"infragraph/internal/codec"
	"infragraph/internal/domain"
	"infragraph/internal/repository"
)

// Repository implements repository.Repository over a single store file
type Repository struct {
	path  string
	codec codec.Codec
}

// New creates a file repository. The codec is chosen from format, or from
// the file extension when format is empty.
func New(path, format string) (*Repository, error) {
	if format == "" {
		format = codec.FormatFromPath(path)
	}
	c, err := codec.ForFormat(format)
	if err != nil {
		return nil, err
	}
	return &Repository{path: path, codec: c}, nil
}

// Location returns the store path
func (r *Repository) Location() string {
	return r.path
}

// Load reads and decodes the store file
func (r *Repository) Load(ctx context.Context) (*domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", repository.ErrStoreNotFound, r.path)
		}
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	defer f.Close()

	snap, err := r.codec.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", repository.ErrMalformedStore, r.path, err)
	}
	return snap, nil
}

// Save encodes the snapshot to a temporary file next to the store and
// renames it over the original, so a failed write never truncates the
// previous store.
func (r *Repository) Save(ctx context.Context, snap *domain.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := r.codec.Export(snap, tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write store: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// Keep the original permissions when replacing an existing store
	if info, err := os.Stat(r.path); err == nil {
		if err := os.Chmod(tmpPath, info.Mode().Perm()); err != nil {
			return fmt.Errorf("failed to set store permissions: %w", err)
		}
	}

	if err := os.Rename(tmpPath, r.path); err != nil {
		return fmt.Errorf("failed to replace store: %w", err)
	}
	return nil
}

// Close is a no-op for file stores
func (r *Repository) Close() error {
	return nil
}
