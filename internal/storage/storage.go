// Package storage defines the persistence interface for catalog product snapshots.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/souq/internal/models"
)

// ErrNotFound is returned when a product is not in the snapshot.
var ErrNotFound = errors.New("product not found")

// Storage defines product snapshot persistence operations. The snapshot is a local
// copy of catalog pages kept for inspection and lookups; searches always go to the
// live catalog.
type Storage interface {
	// SaveProducts inserts or replaces products and returns how many were written.
	SaveProducts(ctx context.Context, products []*models.Candidate) (int, error)
	GetProduct(ctx context.Context, id string) (*models.Candidate, error)
	ListProducts(ctx context.Context, offset, limit int) ([]*models.Candidate, error)
	DeleteProduct(ctx context.Context, id string) error
	CountProducts(ctx context.Context) (int64, error)

	Close() error
}
