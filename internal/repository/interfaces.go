package repository

import (
	"context"

	"github.com/MAKAMOUL/prophoneplus/internal/model"
)

// Remote defines the interface to the networked backend store. It is
// treated as unreliable: any call may fail mid-flight, and the caller is
// responsible for leaving records dirty so they can be retried.
//
// Upserts are keyed by id with full-record replace semantics. Fetches
// return every remote row, tombstones included, so deletions propagate to
// offline replicas through the normal pull path.
type Remote interface {
	// UpsertProduct inserts or replaces a product row keyed by id.
	UpsertProduct(ctx context.Context, p model.Product) error

	// UpsertCategory inserts or replaces a category row keyed by id.
	UpsertCategory(ctx context.Context, c model.Category) error

	// UpsertSale inserts or replaces a sale row keyed by id.
	UpsertSale(ctx context.Context, s model.Sale) error

	// FetchProducts returns all remote products, tombstones included.
	FetchProducts(ctx context.Context) ([]model.Product, error)

	// FetchCategories returns all remote categories, tombstones included.
	FetchCategories(ctx context.Context) ([]model.Category, error)

	// FetchSales returns all remote sales.
	FetchSales(ctx context.Context) ([]model.Sale, error)

	// Ping checks connectivity.
	Ping(ctx context.Context) error

	// Close closes the underlying connection pool.
	Close() error
}

// StoreError is a typed sentinel error for the storage layer.
type StoreError string

func (e StoreError) Error() string { return string(e) }

const (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound StoreError = "record not found"
)
