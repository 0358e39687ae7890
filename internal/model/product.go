package model

import "time"

// Product represents a stock item in the local catalog.
//
// Quantity is only ever changed through the inventory service (product
// edits, sale creation/deletion) so that stock stays consistent with the
// recorded sales.
type Product struct {
	ID          string    `json:"id"`
	Ref         string    `json:"ref"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Subcategory string    `json:"subcategory,omitempty"`
	Quantity    int       `json:"quantity"`
	Price       float64   `json:"price"`
	MinStock    int       `json:"minStock"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Synced      bool      `json:"synced"`
	Deleted     bool      `json:"deleted"`
}

// IsLowStock reports whether the product is at or below its minimum stock.
func (p *Product) IsLowStock() bool {
	return !p.Deleted && p.Quantity <= p.MinStock
}
