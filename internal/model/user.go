package model

import "time"

// User roles.
const (
	RoleAdmin  = "admin"
	RoleWorker = "worker"
)

// User is a local account record. Users are referenced as actors from
// products (createdBy) and sales (soldBy) but are never synced remotely.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Session identifies the acting user for a request. It is passed explicitly
// into mutation entry points instead of living in a process-wide singleton.
type Session struct {
	UserID   string
	UserName string
	Role     string
}

// Anonymous is the session used when no actor headers are present.
var Anonymous = Session{UserID: "unknown", UserName: "Unknown", Role: RoleWorker}
