package repository

import (
	"context"
	"errors"

	"infragraph/internal/domain"
)

var (
	// ErrStoreNotFound is returned when the store does not exist
	ErrStoreNotFound = errors.New("store not found")
	// ErrMalformedStore is returned when the store cannot be decoded
	ErrMalformedStore = errors.New("malformed store")
)

// Repository defines the interface for document store access
type Repository interface {
	// Load reads the complete store. It must not modify the store.
	Load(ctx context.Context) (*domain.Snapshot, error)

	// Save replaces the store contents with snap. Implementations must leave
	// the previous contents intact when the write fails.
	Save(ctx context.Context, snap *domain.Snapshot) error

	// Location describes where the store lives, for logs and reports
	Location() string

	// Close releases resources
	Close() error
}
