package model

import "time"

// Sale records one point-of-sale transaction. Product and seller names are
// denormalized at creation time so the record stays readable even if the
// referenced product or user disappears later. Sales are immutable once
// created except for the synced flag.
type Sale struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"productId"`
	ProductName string    `json:"productName"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unitPrice"`
	TotalPrice  float64   `json:"totalPrice"`
	SoldBy      string    `json:"soldBy"`
	SoldByName  string    `json:"soldByName"`
	BillURL     string    `json:"billUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	Synced      bool      `json:"synced"`
}
