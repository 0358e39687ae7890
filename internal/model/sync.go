package model

// SyncStatus is the aggregate connectivity state reported by the sync
// engine and observed by presentation layers.
type SyncStatus string

const (
	// StatusOnline means the last push/pull cycle completed without error,
	// or no remote store is configured at all (demo mode).
	StatusOnline SyncStatus = "online"

	// StatusOffline means the last cycle hit a remote failure; dirty
	// records stay queued locally until a later cycle succeeds.
	StatusOffline SyncStatus = "offline"

	// StatusSyncing means a push/pull cycle is currently running.
	StatusSyncing SyncStatus = "syncing"
)

// Image stores product image bytes locally so photos keep working offline.
// The id is the owning product's id.
type Image struct {
	ID     string `json:"id"`
	Data   []byte `json:"data"`
	Mime   string `json:"mime"`
	Synced bool   `json:"synced"`
}

// Snapshot is the observable view of all live collections, rebuilt by
// RefreshAllData after every mutation and sync cycle.
type Snapshot struct {
	Products   []Product  `json:"products"`
	Categories []Category `json:"categories"`
	Sales      []Sale     `json:"sales"`
	Alerts     []Alert    `json:"alerts"`
}
