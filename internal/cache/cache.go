// Package cache holds read-through projections of the catalog and the sale ledger.
// The database stays authoritative: nothing here is consulted for a stock check, and every
// successful write invalidates the projection.
package cache

import (
	"context"

	"stockbook/internal/domain"
)

// Snapshot is everything the dashboard folds over.
type Snapshot struct {
	Products    []domain.CatalogItem `json:"products"`
	Accessories []domain.CatalogItem `json:"accessories"`
	Sales       []domain.Sale        `json:"sales"`
	Sellers     int                  `json:"sellers"`
}

// Loader reads a fresh snapshot from the store.
type Loader func(ctx context.Context) (Snapshot, error)

type Store interface {
	// Get returns the cached snapshot or fills it with load.
	Get(ctx context.Context, load Loader) (Snapshot, error)
	Invalidate(ctx context.Context) error
}
