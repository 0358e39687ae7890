package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/MAKAMOUL/prophoneplus/internal/model"
)

// PutCategory inserts or replaces a category keyed by id. Subcategory
// labels are stored as a JSON array to keep their order.
func (s *Store) PutCategory(ctx context.Context, c model.Category) error {
	subs, err := json.Marshal(c.Subcategories)
	if err != nil {
		return fmt.Errorf("encoding subcategories: %w", err)
	}

	query := `
		INSERT INTO categories (id, name, subcategories, created_at, updated_at, synced, deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			subcategories = excluded.subcategories,
			updated_at = excluded.updated_at,
			synced = excluded.synced,
			deleted = excluded.deleted`

	_, err = s.db.ExecContext(ctx, query,
		c.ID, c.Name, string(subs), millis(c.CreatedAt), millis(c.UpdatedAt), c.Synced, c.Deleted,
	)
	if err != nil {
		return fmt.Errorf("putting category %s: %w", c.ID, err)
	}
	return nil
}

// GetCategory returns a category by id, tombstoned or not.
func (s *Store) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, subcategories, created_at, updated_at, synced, deleted
		 FROM categories WHERE id = ?`, id)

	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting category %s: %w", id, err)
	}
	return c, nil
}

// ListCategories returns all non-deleted categories in creation order.
func (s *Store) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.queryCategories(ctx,
		`SELECT id, name, subcategories, created_at, updated_at, synced, deleted
		 FROM categories WHERE deleted = 0 ORDER BY created_at`)
}

// ListDirtyCategories returns all categories not yet confirmed persisted
// remotely, tombstones included.
func (s *Store) ListDirtyCategories(ctx context.Context) ([]model.Category, error) {
	return s.queryCategories(ctx,
		`SELECT id, name, subcategories, created_at, updated_at, synced, deleted
		 FROM categories WHERE synced = 0`)
}

// MarkCategorySynced flips the synced flag after a confirmed remote write.
func (s *Store) MarkCategorySynced(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE categories SET synced = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("marking category %s synced: %w", id, err)
	}
	return nil
}

func (s *Store) queryCategories(ctx context.Context, query string, args ...any) ([]model.Category, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

func scanCategory(row rowScanner) (*model.Category, error) {
	var c model.Category
	var subs string
	var createdAt, updatedAt int64
	err := row.Scan(&c.ID, &c.Name, &subs, &createdAt, &updatedAt, &c.Synced, &c.Deleted)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(subs), &c.Subcategories); err != nil {
		return nil, fmt.Errorf("decoding subcategories for %s: %w", c.ID, err)
	}
	c.CreatedAt = fromMillis(createdAt)
	c.UpdatedAt = fromMillis(updatedAt)
	return &c, nil
}
