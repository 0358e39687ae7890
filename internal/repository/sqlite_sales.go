package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MAKAMOUL/prophoneplus/internal/model"
)

const saleColumns = `id, product_id, product_name, quantity, unit_price, total_price,
	sold_by, sold_by_name, bill_url, created_at, synced`

// InsertSale stores a new sale. The insert is keyed by id and ignores
// duplicates, which makes the pull phase's insert-if-absent semantics and
// retried pushes safe.
func (s *Store) InsertSale(ctx context.Context, sale model.Sale) error {
	query := `
		INSERT INTO sales (` + saleColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`

	_, err := s.db.ExecContext(ctx, query,
		sale.ID, sale.ProductID, sale.ProductName, sale.Quantity, sale.UnitPrice,
		sale.TotalPrice, sale.SoldBy, sale.SoldByName, sale.BillURL,
		millis(sale.CreatedAt), sale.Synced,
	)
	if err != nil {
		return fmt.Errorf("inserting sale %s: %w", sale.ID, err)
	}
	return nil
}

// GetSale returns a sale by id.
func (s *Store) GetSale(ctx context.Context, id string) (*model.Sale, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+saleColumns+` FROM sales WHERE id = ?`, id)

	sale, err := scanSale(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting sale %s: %w", id, err)
	}
	return sale, nil
}

// ListSales returns all sales, newest first.
func (s *Store) ListSales(ctx context.Context) ([]model.Sale, error) {
	return s.querySales(ctx,
		`SELECT `+saleColumns+` FROM sales ORDER BY created_at DESC`)
}

// ListDirtySales returns all sales not yet confirmed persisted remotely.
func (s *Store) ListDirtySales(ctx context.Context) ([]model.Sale, error) {
	return s.querySales(ctx,
		`SELECT `+saleColumns+` FROM sales WHERE synced = 0`)
}

// MarkSaleSynced flips the synced flag after a confirmed remote write.
func (s *Store) MarkSaleSynced(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE sales SET synced = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("marking sale %s synced: %w", id, err)
	}
	return nil
}

// DeleteSale removes a sale record. Sales are the one collection deleted
// hard locally: the caller restores product stock first, and the remote
// copy is left as the immutable transaction history.
func (s *Store) DeleteSale(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sales WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting sale %s: %w", id, err)
	}
	return nil
}

func (s *Store) querySales(ctx context.Context, query string, args ...any) ([]model.Sale, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing sales: %w", err)
	}
	defer rows.Close()

	var sales []model.Sale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning sale: %w", err)
		}
		sales = append(sales, *sale)
	}
	return sales, rows.Err()
}

func scanSale(row rowScanner) (*model.Sale, error) {
	var sale model.Sale
	var createdAt int64
	err := row.Scan(&sale.ID, &sale.ProductID, &sale.ProductName, &sale.Quantity,
		&sale.UnitPrice, &sale.TotalPrice, &sale.SoldBy, &sale.SoldByName,
		&sale.BillURL, &createdAt, &sale.Synced)
	if err != nil {
		return nil, err
	}
	sale.CreatedAt = fromMillis(createdAt)
	return &sale, nil
}
