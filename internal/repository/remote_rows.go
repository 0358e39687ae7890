package repository

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/MAKAMOUL/prophoneplus/internal/model"
)

// The remote store uses its own column naming convention (product_name,
// min_stock, inserted_by, ...) distinct from the local field names. The
// translation lives here as explicit bidirectional mapping functions so it
// can be tested without any network I/O. Both SQL backends share these.

// productRow is a product in remote column shape.
type productRow struct {
	ID          string
	Ref         string
	ProductName string
	Category    string
	Subcategory sql.NullString
	Quantity    int
	Price       float64
	MinStock    int
	InsertedBy  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Deleted     bool
}

func productToRow(p model.Product) productRow {
	return productRow{
		ID:          p.ID,
		Ref:         p.Ref,
		ProductName: p.Name,
		Category:    p.Category,
		Subcategory: nullString(p.Subcategory),
		Quantity:    p.Quantity,
		Price:       p.Price,
		MinStock:    p.MinStock,
		InsertedBy:  p.CreatedBy,
		CreatedAt:   p.CreatedAt.UTC(),
		UpdatedAt:   p.UpdatedAt.UTC(),
		Deleted:     p.Deleted,
	}
}

// toModel converts a remote row back to the local shape. The synced flag
// is left false; the pull merge decides what to mark synced.
func (r productRow) toModel() model.Product {
	return model.Product{
		ID:          r.ID,
		Ref:         r.Ref,
		Name:        r.ProductName,
		Category:    r.Category,
		Subcategory: r.Subcategory.String,
		Quantity:    r.Quantity,
		Price:       r.Price,
		MinStock:    r.MinStock,
		CreatedBy:   r.InsertedBy,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
		Deleted:     r.Deleted,
	}
}

// categoryRow is a category in remote column shape. Subcategories travel
// as a JSON array string.
type categoryRow struct {
	ID            string
	Name          string
	Subcategories string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Deleted       bool
}

func categoryToRow(c model.Category) (categoryRow, error) {
	subs, err := json.Marshal(c.Subcategories)
	if err != nil {
		return categoryRow{}, err
	}
	return categoryRow{
		ID:            c.ID,
		Name:          c.Name,
		Subcategories: string(subs),
		CreatedAt:     c.CreatedAt.UTC(),
		UpdatedAt:     c.UpdatedAt.UTC(),
		Deleted:       c.Deleted,
	}, nil
}

func (r categoryRow) toModel() (model.Category, error) {
	c := model.Category{
		ID:        r.ID,
		Name:      r.Name,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
		Deleted:   r.Deleted,
	}
	if r.Subcategories != "" {
		if err := json.Unmarshal([]byte(r.Subcategories), &c.Subcategories); err != nil {
			return model.Category{}, err
		}
	}
	return c, nil
}

// saleRow is a sale in remote column shape.
type saleRow struct {
	ID          string
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   float64
	TotalPrice  float64
	SoldBy      string
	SoldByName  string
	BillURL     sql.NullString
	CreatedAt   time.Time
}

func saleToRow(s model.Sale) saleRow {
	return saleRow{
		ID:          s.ID,
		ProductID:   s.ProductID,
		ProductName: s.ProductName,
		Quantity:    s.Quantity,
		UnitPrice:   s.UnitPrice,
		TotalPrice:  s.TotalPrice,
		SoldBy:      s.SoldBy,
		SoldByName:  s.SoldByName,
		BillURL:     nullString(s.BillURL),
		CreatedAt:   s.CreatedAt.UTC(),
	}
}

func (r saleRow) toModel() model.Sale {
	return model.Sale{
		ID:          r.ID,
		ProductID:   r.ProductID,
		ProductName: r.ProductName,
		Quantity:    r.Quantity,
		UnitPrice:   r.UnitPrice,
		TotalPrice:  r.TotalPrice,
		SoldBy:      r.SoldBy,
		SoldByName:  r.SoldByName,
		BillURL:     r.BillURL.String,
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
