package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/MAKAMOUL/prophoneplus/internal/model"
	"github.com/MAKAMOUL/prophoneplus/pkg/uid"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// Store is the durable local store backing all offline operation. Every
// collection is keyed by id with secondary indexes on the fields used for
// filtering (synced, deleted, foreign keys). Each write is individually
// atomic; callers do their own sequencing across collections.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the local SQLite store at path and applies the
// schema plus any pending migrations. Use ":memory:" for tests.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite only supports 1 writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate local store: %w", err)
	}

	log.Printf("[Store] Initialized local store: %s", path)
	return &Store{db: db}, nil
}

// schema is the full local schema. Timestamps are stored as Unix
// milliseconds so last-writer-wins comparisons are plain integer compares.
const schema = `
CREATE TABLE IF NOT EXISTS products (
	id          TEXT PRIMARY KEY,
	ref         TEXT NOT NULL,
	name        TEXT NOT NULL,
	category    TEXT NOT NULL,
	subcategory TEXT NOT NULL DEFAULT '',
	quantity    INTEGER NOT NULL DEFAULT 0,
	price       REAL NOT NULL DEFAULT 0,
	min_stock   INTEGER NOT NULL DEFAULT 0,
	image_url   TEXT NOT NULL DEFAULT '',
	created_by  TEXT NOT NULL DEFAULT '',
	created_at  INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL,
	synced      INTEGER NOT NULL DEFAULT 0,
	deleted     INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_products_synced ON products(synced);
CREATE INDEX IF NOT EXISTS idx_products_deleted ON products(deleted);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);
CREATE INDEX IF NOT EXISTS idx_products_updated_at ON products(updated_at);

CREATE TABLE IF NOT EXISTS categories (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	subcategories TEXT NOT NULL DEFAULT '[]',
	created_at    INTEGER NOT NULL,
	updated_at    INTEGER NOT NULL,
	synced        INTEGER NOT NULL DEFAULT 0,
	deleted       INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_categories_synced ON categories(synced);
CREATE INDEX IF NOT EXISTS idx_categories_deleted ON categories(deleted);

CREATE TABLE IF NOT EXISTS sales (
	id           TEXT PRIMARY KEY,
	product_id   TEXT NOT NULL,
	product_name TEXT NOT NULL,
	quantity     INTEGER NOT NULL,
	unit_price   REAL NOT NULL,
	total_price  REAL NOT NULL,
	sold_by      TEXT NOT NULL,
	sold_by_name TEXT NOT NULL,
	bill_url     TEXT NOT NULL DEFAULT '',
	created_at   INTEGER NOT NULL,
	synced       INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_sales_product ON sales(product_id);
CREATE INDEX IF NOT EXISTS idx_sales_synced ON sales(synced);
CREATE INDEX IF NOT EXISTS idx_sales_sold_by ON sales(sold_by);

CREATE TABLE IF NOT EXISTS alerts (
	id               TEXT PRIMARY KEY,
	product_id       TEXT NOT NULL,
	product_name     TEXT NOT NULL,
	current_quantity INTEGER NOT NULL,
	min_stock        INTEGER NOT NULL,
	created_at       INTEGER NOT NULL,
	dismissed        INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_alerts_product ON alerts(product_id);
CREATE INDEX IF NOT EXISTS idx_alerts_dismissed ON alerts(dismissed);

CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	email      TEXT NOT NULL UNIQUE,
	role       TEXT NOT NULL DEFAULT 'worker',
	name       TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS images (
	id     TEXT PRIMARY KEY,
	data   BLOB NOT NULL,
	mime   TEXT NOT NULL DEFAULT '',
	synced INTEGER NOT NULL DEFAULT 0
);
`

// migrations are applied in order after schema creation. Each migration
// must be idempotent and additive only, so offline data survives version
// bumps. Append new migrations at the end.
var migrations = []string{
	// Migration 1: subcategory filtering on products.
	`CREATE INDEX IF NOT EXISTS idx_products_subcategory ON products(subcategory)`,
}

func migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}
	return nil
}

// defaultCategories is the catalog seeded into an empty store on first run.
var defaultCategories = []model.Category{
	{Name: "Smartphones", Subcategories: []string{"iPhone", "Samsung", "Xiaomi", "Huawei"}},
	{Name: "Accessories", Subcategories: []string{"Cases", "Chargers", "Headphones", "Screen Protectors"}},
	{Name: "Tablets", Subcategories: []string{"iPad", "Android Tablets", "Windows Tablets"}},
	{Name: "Smartwatches", Subcategories: []string{"Apple Watch", "Samsung Galaxy Watch", "Fitbit"}},
}

// SeedDefaults inserts the default categories when the categories table is
// empty. Seeded rows are marked synced so they are not pushed remotely as
// local edits.
func (s *Store) SeedDefaults(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&count); err != nil {
		return fmt.Errorf("counting categories: %w", err)
	}
	if count > 0 {
		return nil
	}

	now := time.Now()
	for _, c := range defaultCategories {
		c.ID = uid.New()
		c.CreatedAt = now
		c.UpdatedAt = now
		c.Synced = true
		if err := s.PutCategory(ctx, c); err != nil {
			return err
		}
	}
	log.Printf("[Store] Seeded %d default categories", len(defaultCategories))
	return nil
}

// UnsyncedCount returns the number of dirty records across the three
// synced collections. Surfaced in the sync status endpoint.
func (s *Store) UnsyncedCount(ctx context.Context) (int, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM products WHERE synced = 0) +
			(SELECT COUNT(*) FROM categories WHERE synced = 0) +
			(SELECT COUNT(*) FROM sales WHERE synced = 0)`

	var count int
	if err := s.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting unsynced records: %w", err)
	}
	return count, nil
}

// Ping checks the local store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// millis converts a time to the Unix-millisecond representation stored
// locally.
func millis(t time.Time) int64 {
	return t.UnixMilli()
}

// fromMillis converts a stored Unix-millisecond value back to a time.
func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
