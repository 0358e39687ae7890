package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/MAKAMOUL/prophoneplus/internal/model"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

// MySQLRemote implements Remote against a MySQL backend, for shops whose
// hosting only offers MySQL. Same table shapes as the Postgres remote.
type MySQLRemote struct {
	db          *sql.DB
	schemaReady atomic.Bool
}

// NewMySQLRemote sets up the remote MySQL connection pool.
// dsn format: "user:password@tcp(host:port)/dbname?parseTime=true"
//
// Construction never requires the remote to be reachable; see
// NewPostgresRemote. Schema setup is retried on every call until it
// succeeds.
func NewMySQLRemote(dsn string) (*MySQLRemote, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	r := &MySQLRemote{db: db}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.ensureSchema(ctx); err != nil {
		log.Printf("[MySQLRemote] Remote unreachable at startup, retrying on next sync cycle: %v", err)
	} else {
		log.Printf("[MySQLRemote] Initialized")
	}
	return r, nil
}

// ensureSchema creates the remote tables once. A failure leaves the flag
// unset so the next call retries.
func (r *MySQLRemote) ensureSchema(ctx context.Context) error {
	if r.schemaReady.Load() {
		return nil
	}
	if err := createMySQLTables(ctx, r.db); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	r.schemaReady.Store(true)
	return nil
}

func createMySQLTables(ctx context.Context, db *sql.DB) error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS products (
			id            VARCHAR(64) PRIMARY KEY,
			ref           VARCHAR(64) NOT NULL DEFAULT '',
			product_name  VARCHAR(255) NOT NULL,
			category      VARCHAR(255) NOT NULL DEFAULT '',
			subcategory   VARCHAR(255),
			quantity      INT NOT NULL DEFAULT 0,
			price         DECIMAL(12,2) NOT NULL DEFAULT 0,
			min_stock     INT NOT NULL DEFAULT 0,
			inserted_by   VARCHAR(64) NOT NULL DEFAULT '',
			created_at    DATETIME(3) NOT NULL,
			updated_at    DATETIME(3) NOT NULL,
			deleted       BOOLEAN NOT NULL DEFAULT FALSE,
			INDEX idx_remote_products_updated (updated_at)
		)`,
		`CREATE TABLE IF NOT EXISTS categories (
			id            VARCHAR(64) PRIMARY KEY,
			name          VARCHAR(255) NOT NULL,
			subcategories TEXT NOT NULL,
			created_at    DATETIME(3) NOT NULL,
			updated_at    DATETIME(3) NOT NULL,
			deleted       BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE TABLE IF NOT EXISTS sales (
			id           VARCHAR(64) PRIMARY KEY,
			product_id   VARCHAR(64) NOT NULL,
			product_name VARCHAR(255) NOT NULL,
			quantity     INT NOT NULL,
			unit_price   DECIMAL(12,2) NOT NULL,
			total_price  DECIMAL(12,2) NOT NULL,
			sold_by      VARCHAR(64) NOT NULL DEFAULT '',
			sold_by_name VARCHAR(255) NOT NULL DEFAULT '',
			bill_url     TEXT,
			created_at   DATETIME(3) NOT NULL,
			INDEX idx_remote_sales_product (product_id)
		)`,
	}
	for _, t := range tables {
		if _, err := db.ExecContext(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

// UpsertProduct inserts or replaces a product row keyed by id.
func (r *MySQLRemote) UpsertProduct(ctx context.Context, p model.Product) error {
	if err := r.ensureSchema(ctx); err != nil {
		return err
	}
	row := productToRow(p)
	query := `
		INSERT INTO products (id, ref, product_name, category, subcategory, quantity,
			price, min_stock, inserted_by, created_at, updated_at, deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			ref = VALUES(ref),
			product_name = VALUES(product_name),
			category = VALUES(category),
			subcategory = VALUES(subcategory),
			quantity = VALUES(quantity),
			price = VALUES(price),
			min_stock = VALUES(min_stock),
			inserted_by = VALUES(inserted_by),
			updated_at = VALUES(updated_at),
			deleted = VALUES(deleted)`

	_, err := r.db.ExecContext(ctx, query,
		row.ID, row.Ref, row.ProductName, row.Category, row.Subcategory, row.Quantity,
		row.Price, row.MinStock, row.InsertedBy, row.CreatedAt, row.UpdatedAt, row.Deleted,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert product %s: %w", p.ID, err)
	}
	return nil
}

// UpsertCategory inserts or replaces a category row keyed by id.
func (r *MySQLRemote) UpsertCategory(ctx context.Context, c model.Category) error {
	if err := r.ensureSchema(ctx); err != nil {
		return err
	}
	row, err := categoryToRow(c)
	if err != nil {
		return fmt.Errorf("failed to encode category %s: %w", c.ID, err)
	}
	query := `
		INSERT INTO categories (id, name, subcategories, created_at, updated_at, deleted)
		VALUES (?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			name = VALUES(name),
			subcategories = VALUES(subcategories),
			updated_at = VALUES(updated_at),
			deleted = VALUES(deleted)`

	_, err = r.db.ExecContext(ctx, query,
		row.ID, row.Name, row.Subcategories, row.CreatedAt, row.UpdatedAt, row.Deleted)
	if err != nil {
		return fmt.Errorf("failed to upsert category %s: %w", c.ID, err)
	}
	return nil
}

// UpsertSale inserts a sale row if absent; sales are immutable remotely.
func (r *MySQLRemote) UpsertSale(ctx context.Context, s model.Sale) error {
	if err := r.ensureSchema(ctx); err != nil {
		return err
	}
	row := saleToRow(s)
	query := `
		INSERT IGNORE INTO sales (id, product_id, product_name, quantity, unit_price,
			total_price, sold_by, sold_by_name, bill_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		row.ID, row.ProductID, row.ProductName, row.Quantity, row.UnitPrice,
		row.TotalPrice, row.SoldBy, row.SoldByName, row.BillURL, row.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert sale %s: %w", s.ID, err)
	}
	return nil
}

// FetchProducts returns all remote products, tombstones included.
func (r *MySQLRemote) FetchProducts(ctx context.Context) ([]model.Product, error) {
	if err := r.ensureSchema(ctx); err != nil {
		return nil, err
	}
	query := `
		SELECT id, ref, product_name, category, subcategory, quantity, price,
			min_stock, inserted_by, created_at, updated_at, deleted
		FROM products ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var row productRow
		if err := rows.Scan(&row.ID, &row.Ref, &row.ProductName, &row.Category,
			&row.Subcategory, &row.Quantity, &row.Price, &row.MinStock,
			&row.InsertedBy, &row.CreatedAt, &row.UpdatedAt, &row.Deleted); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, row.toModel())
	}
	return products, rows.Err()
}

// FetchCategories returns all remote categories, tombstones included.
func (r *MySQLRemote) FetchCategories(ctx context.Context) ([]model.Category, error) {
	if err := r.ensureSchema(ctx); err != nil {
		return nil, err
	}
	query := `
		SELECT id, name, subcategories, created_at, updated_at, deleted
		FROM categories ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var row categoryRow
		if err := rows.Scan(&row.ID, &row.Name, &row.Subcategories,
			&row.CreatedAt, &row.UpdatedAt, &row.Deleted); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		c, err := row.toModel()
		if err != nil {
			return nil, fmt.Errorf("failed to decode category %s: %w", row.ID, err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// FetchSales returns all remote sales.
func (r *MySQLRemote) FetchSales(ctx context.Context) ([]model.Sale, error) {
	if err := r.ensureSchema(ctx); err != nil {
		return nil, err
	}
	query := `
		SELECT id, product_id, product_name, quantity, unit_price, total_price,
			sold_by, sold_by_name, bill_url, created_at
		FROM sales ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sales: %w", err)
	}
	defer rows.Close()

	var sales []model.Sale
	for rows.Next() {
		var row saleRow
		if err := rows.Scan(&row.ID, &row.ProductID, &row.ProductName, &row.Quantity,
			&row.UnitPrice, &row.TotalPrice, &row.SoldBy, &row.SoldByName,
			&row.BillURL, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		sales = append(sales, row.toModel())
	}
	return sales, rows.Err()
}

// Ping checks connectivity.
func (r *MySQLRemote) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection pool.
func (r *MySQLRemote) Close() error {
	return r.db.Close()
}

// Ensure MySQLRemote implements Remote
var _ Remote = (*MySQLRemote)(nil)
