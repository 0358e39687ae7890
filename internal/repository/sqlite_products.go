package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MAKAMOUL/prophoneplus/internal/model"
)

const productColumns = `id, ref, name, category, subcategory, quantity, price, min_stock,
	image_url, created_by, created_at, updated_at, synced, deleted`

// PutProduct inserts or replaces a product keyed by id. Both local
// mutations and the sync engine's pull phase go through this single write
// path, so concurrent writes stay idempotent per record.
func (s *Store) PutProduct(ctx context.Context, p model.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			ref = excluded.ref,
			name = excluded.name,
			category = excluded.category,
			subcategory = excluded.subcategory,
			quantity = excluded.quantity,
			price = excluded.price,
			min_stock = excluded.min_stock,
			image_url = excluded.image_url,
			created_by = excluded.created_by,
			updated_at = excluded.updated_at,
			synced = excluded.synced,
			deleted = excluded.deleted`

	_, err := s.db.ExecContext(ctx, query,
		p.ID, p.Ref, p.Name, p.Category, p.Subcategory, p.Quantity, p.Price, p.MinStock,
		p.ImageURL, p.CreatedBy, millis(p.CreatedAt), millis(p.UpdatedAt), p.Synced, p.Deleted,
	)
	if err != nil {
		return fmt.Errorf("putting product %s: %w", p.ID, err)
	}
	return nil
}

// GetProduct returns a product by id, tombstoned or not.
func (s *Store) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ?`, id)

	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting product %s: %w", id, err)
	}
	return p, nil
}

// ListProducts returns all non-deleted products ordered by name.
func (s *Store) ListProducts(ctx context.Context) ([]model.Product, error) {
	return s.queryProducts(ctx,
		`SELECT `+productColumns+` FROM products WHERE deleted = 0 ORDER BY name`)
}

// ListDirtyProducts returns all products not yet confirmed persisted
// remotely, tombstones included so deletions propagate.
func (s *Store) ListDirtyProducts(ctx context.Context) ([]model.Product, error) {
	return s.queryProducts(ctx,
		`SELECT `+productColumns+` FROM products WHERE synced = 0`)
}

// MarkProductSynced flips the synced flag after a confirmed remote write.
func (s *Store) MarkProductSynced(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE products SET synced = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("marking product %s synced: %w", id, err)
	}
	return nil
}

// CountProductsInCategory returns the number of non-deleted products that
// reference the category name. Used by the category delete guard.
func (s *Store) CountProductsInCategory(ctx context.Context, name string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products WHERE category = ? AND deleted = 0`, name,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting products in category %q: %w", name, err)
	}
	return count, nil
}

func (s *Store) queryProducts(ctx context.Context, query string, args ...any) ([]model.Product, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*model.Product, error) {
	var p model.Product
	var createdAt, updatedAt int64
	err := row.Scan(&p.ID, &p.Ref, &p.Name, &p.Category, &p.Subcategory, &p.Quantity,
		&p.Price, &p.MinStock, &p.ImageURL, &p.CreatedBy, &createdAt, &updatedAt,
		&p.Synced, &p.Deleted)
	if err != nil {
		return nil, err
	}
	p.CreatedAt = fromMillis(createdAt)
	p.UpdatedAt = fromMillis(updatedAt)
	return &p, nil
}
