package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MAKAMOUL/prophoneplus/internal/model"
)

// PutImage stores product image bytes, replacing any previous image for
// the product. Images live locally only so photos keep working offline.
func (s *Store) PutImage(ctx context.Context, img model.Image) error {
	query := `
		INSERT INTO images (id, data, mime, synced)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			data = excluded.data,
			mime = excluded.mime,
			synced = excluded.synced`

	_, err := s.db.ExecContext(ctx, query, img.ID, img.Data, img.Mime, img.Synced)
	if err != nil {
		return fmt.Errorf("putting image %s: %w", img.ID, err)
	}
	return nil
}

// GetImage returns the stored image for a product id.
func (s *Store) GetImage(ctx context.Context, id string) (*model.Image, error) {
	var img model.Image
	err := s.db.QueryRowContext(ctx,
		`SELECT id, data, mime, synced FROM images WHERE id = ?`, id,
	).Scan(&img.ID, &img.Data, &img.Mime, &img.Synced)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting image %s: %w", id, err)
	}
	return &img, nil
}

// DeleteImage removes a product's image.
func (s *Store) DeleteImage(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM images WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting image %s: %w", id, err)
	}
	return nil
}
