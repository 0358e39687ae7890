package model

import "time"

// Category groups products under a name with an ordered list of
// subcategory labels. Categories are soft-deleted so the deletion can
// propagate to the remote store.
type Category struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Subcategories []string  `json:"subcategories"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	Synced        bool      `json:"synced"`
	Deleted       bool      `json:"deleted"`
}
