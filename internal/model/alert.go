package model

import "time"

// Alert is a derived low-stock warning. At most one non-dismissed alert
// exists per product; alerts are never deleted, only dismissed, so the
// history of past breaches is retained.
type Alert struct {
	ID              string    `json:"id"`
	ProductID       string    `json:"productId"`
	ProductName     string    `json:"productName"`
	CurrentQuantity int       `json:"currentQuantity"`
	MinStock        int       `json:"minStock"`
	CreatedAt       time.Time `json:"createdAt"`
	Dismissed       bool      `json:"dismissed"`
}
