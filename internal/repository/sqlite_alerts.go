package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MAKAMOUL/prophoneplus/internal/model"
)

const alertColumns = `id, product_id, product_name, current_quantity, min_stock, created_at, dismissed`

// InsertAlert stores a new low-stock alert.
func (s *Store) InsertAlert(ctx context.Context, a model.Alert) error {
	query := `
		INSERT INTO alerts (` + alertColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		a.ID, a.ProductID, a.ProductName, a.CurrentQuantity, a.MinStock,
		millis(a.CreatedAt), a.Dismissed,
	)
	if err != nil {
		return fmt.Errorf("inserting alert %s: %w", a.ID, err)
	}
	return nil
}

// GetAlertByProduct returns the alert for a product, dismissed or not.
// The deriver keys deduplication on this lookup.
func (s *Store) GetAlertByProduct(ctx context.Context, productID string) (*model.Alert, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+alertColumns+` FROM alerts WHERE product_id = ? LIMIT 1`, productID)

	a, err := scanAlert(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting alert for product %s: %w", productID, err)
	}
	return a, nil
}

// ReviveAlert refreshes an alert's quantity snapshot and clears its
// dismissed flag. Used when a dismissed product breaches min stock again.
func (s *Store) ReviveAlert(ctx context.Context, id string, currentQuantity, minStock int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE alerts SET current_quantity = ?, min_stock = ?, dismissed = 0 WHERE id = ?`,
		currentQuantity, minStock, id,
	)
	if err != nil {
		return fmt.Errorf("reviving alert %s: %w", id, err)
	}
	return nil
}

// UpdateAlertQuantity refreshes an active alert's quantity snapshot.
func (s *Store) UpdateAlertQuantity(ctx context.Context, id string, currentQuantity int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE alerts SET current_quantity = ? WHERE id = ?`, currentQuantity, id)
	if err != nil {
		return fmt.Errorf("updating alert %s: %w", id, err)
	}
	return nil
}

// DismissAlert marks an alert dismissed. Alerts are never deleted, so the
// breach history stays queryable.
func (s *Store) DismissAlert(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE alerts SET dismissed = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("dismissing alert %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListActiveAlerts returns all non-dismissed alerts, newest first.
func (s *Store) ListActiveAlerts(ctx context.Context) ([]model.Alert, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+alertColumns+` FROM alerts WHERE dismissed = 0 ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing alerts: %w", err)
	}
	defer rows.Close()

	var alerts []model.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning alert: %w", err)
		}
		alerts = append(alerts, *a)
	}
	return alerts, rows.Err()
}

func scanAlert(row rowScanner) (*model.Alert, error) {
	var a model.Alert
	var createdAt int64
	err := row.Scan(&a.ID, &a.ProductID, &a.ProductName, &a.CurrentQuantity,
		&a.MinStock, &createdAt, &a.Dismissed)
	if err != nil {
		return nil, err
	}
	a.CreatedAt = fromMillis(createdAt)
	return &a, nil
}
