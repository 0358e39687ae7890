package repository

import "testing"

// NewTestStore creates a fresh in-memory local store with the schema and
// migrations applied.
func NewTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening test store: %v", err)
	}

	t.Cleanup(func() { store.Close() })

	return store
}
