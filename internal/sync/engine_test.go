package sync

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MAKAMOUL/prophoneplus/internal/model"
	"github.com/MAKAMOUL/prophoneplus/internal/repository"
)

// fakeRemote is an in-memory Remote for engine tests. Individual record
// ids can be made to fail, the whole remote taken down, or fetches gated
// to hold a cycle open.
type fakeRemote struct {
	products   map[string]model.Product
	categories map[string]model.Category
	sales      map[string]model.Sale

	down       error            // non-nil fails every call
	rejects    map[string]error // per-id upsert failures
	fetchGate  chan struct{}    // when set, FetchProducts blocks on it
	fetchCalls atomic.Int32
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		products:   make(map[string]model.Product),
		categories: make(map[string]model.Category),
		sales:      make(map[string]model.Sale),
		rejects:    make(map[string]error),
	}
}

func (f *fakeRemote) UpsertProduct(ctx context.Context, p model.Product) error {
	if f.down != nil {
		return f.down
	}
	if err := f.rejects[p.ID]; err != nil {
		return err
	}
	f.products[p.ID] = p
	return nil
}

func (f *fakeRemote) UpsertCategory(ctx context.Context, c model.Category) error {
	if f.down != nil {
		return f.down
	}
	if err := f.rejects[c.ID]; err != nil {
		return err
	}
	f.categories[c.ID] = c
	return nil
}

func (f *fakeRemote) UpsertSale(ctx context.Context, s model.Sale) error {
	if f.down != nil {
		return f.down
	}
	if err := f.rejects[s.ID]; err != nil {
		return err
	}
	f.sales[s.ID] = s
	return nil
}

func (f *fakeRemote) FetchProducts(ctx context.Context) ([]model.Product, error) {
	f.fetchCalls.Add(1)
	if f.fetchGate != nil {
		<-f.fetchGate
	}
	if f.down != nil {
		return nil, f.down
	}
	out := make([]model.Product, 0, len(f.products))
	for _, p := range f.products {
		p.Synced = false
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeRemote) FetchCategories(ctx context.Context) ([]model.Category, error) {
	if f.down != nil {
		return nil, f.down
	}
	out := make([]model.Category, 0, len(f.categories))
	for _, c := range f.categories {
		c.Synced = false
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeRemote) FetchSales(ctx context.Context) ([]model.Sale, error) {
	if f.down != nil {
		return nil, f.down
	}
	out := make([]model.Sale, 0, len(f.sales))
	for _, s := range f.sales {
		s.Synced = false
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeRemote) Ping(ctx context.Context) error { return f.down }
func (f *fakeRemote) Close() error                   { return nil }

var _ repository.Remote = (*fakeRemote)(nil)

func newTestEngine(t *testing.T) (*Engine, *repository.Store, *fakeRemote, *Broker) {
	t.Helper()
	store := repository.NewTestStore(t)
	remote := newFakeRemote()
	broker := NewBroker()
	return NewEngine(store, remote, broker), store, remote, broker
}

func dirtyProduct(id string, updatedAt time.Time) model.Product {
	return model.Product{
		ID:        id,
		Name:      "iPhone 13",
		Category:  "Smartphones",
		Quantity:  10,
		Price:     599.99,
		MinStock:  5,
		CreatedBy: "user-1",
		CreatedAt: updatedAt,
		UpdatedAt: updatedAt,
	}
}

func TestCyclePushesDirtyRecords(t *testing.T) {
	engine, store, remote, _ := newTestEngine(t)
	ctx := context.Background()

	now := time.Now().Truncate(time.Millisecond)
	store.PutProduct(ctx, dirtyProduct("p1", now))
	store.PutCategory(ctx, model.Category{ID: "c1", Name: "Tablets", Subcategories: []string{}, CreatedAt: now, UpdatedAt: now})
	store.InsertSale(ctx, model.Sale{ID: "s1", ProductID: "p1", Quantity: 1, CreatedAt: now})

	if err := engine.RunCycle(ctx); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	if _, ok := remote.products["p1"]; !ok {
		t.Error("expected product pushed to remote")
	}
	if _, ok := remote.categories["c1"]; !ok {
		t.Error("expected category pushed to remote")
	}
	if _, ok := remote.sales["s1"]; !ok {
		t.Error("expected sale pushed to remote")
	}

	count, _ := store.UnsyncedCount(ctx)
	if count != 0 {
		t.Errorf("expected no dirty records after cycle, got %d", count)
	}
}

func TestCycleIsIdempotent(t *testing.T) {
	engine, store, remote, _ := newTestEngine(t)
	ctx := context.Background()

	store.PutProduct(ctx, dirtyProduct("p1", time.Now()))
	remote.products["r1"] = dirtyProduct("r1", time.Now())

	if err := engine.RunCycle(ctx); err != nil {
		t.Fatalf("first cycle: %v", err)
	}
	if err := engine.RunCycle(ctx); err != nil {
		t.Fatalf("second cycle: %v", err)
	}

	products, _ := store.ListProducts(ctx)
	if len(products) != 2 {
		t.Errorf("expected 2 products after repeated cycles, got %d", len(products))
	}
	count, _ := store.UnsyncedCount(ctx)
	if count != 0 {
		t.Errorf("expected no dirty records, got %d", count)
	}
}

func TestPullNewerRemoteWins(t *testing.T) {
	engine, store, remote, _ := newTestEngine(t)
	ctx := context.Background()

	base := time.Now().Truncate(time.Millisecond)
	local := dirtyProduct("p1", base)
	local.Synced = true
	local.Quantity = 10
	store.PutProduct(ctx, local)

	newer := dirtyProduct("p1", base.Add(time.Second))
	newer.Quantity = 3
	remote.products["p1"] = newer

	if err := engine.RunCycle(ctx); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	got, _ := store.GetProduct(ctx, "p1")
	if got.Quantity != 3 {
		t.Errorf("expected newer remote copy to win, got quantity %d", got.Quantity)
	}
	if !got.Synced {
		t.Error("expected merged record to be marked synced")
	}
}

func TestPullOlderRemoteLoses(t *testing.T) {
	engine, store, remote, _ := newTestEngine(t)
	ctx := context.Background()

	base := time.Now().Truncate(time.Millisecond)
	local := dirtyProduct("p1", base.Add(time.Second))
	local.Quantity = 10
	store.PutProduct(ctx, local)

	older := dirtyProduct("p1", base)
	older.Quantity = 3
	remote.products["p1"] = older
	// Make the push a no-op for p1 so the pull decision is what's tested.
	store.MarkProductSynced(ctx, "p1")

	if err := engine.RunCycle(ctx); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	got, _ := store.GetProduct(ctx, "p1")
	if got.Quantity != 10 {
		t.Errorf("expected local copy to survive, got quantity %d", got.Quantity)
	}
}

func TestPullEqualTimestampFavorsLocal(t *testing.T) {
	engine, store, remote, _ := newTestEngine(t)
	ctx := context.Background()

	base := time.Now().Truncate(time.Millisecond)
	local := dirtyProduct("p1", base)
	local.Quantity = 10
	store.PutProduct(ctx, local)
	store.MarkProductSynced(ctx, "p1")

	tied := dirtyProduct("p1", base)
	tied.Quantity = 3
	remote.products["p1"] = tied

	if err := engine.RunCycle(ctx); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	got, _ := store.GetProduct(ctx, "p1")
	if got.Quantity != 10 {
		t.Errorf("expected tie to favor local, got quantity %d", got.Quantity)
	}
}

func TestPullPreservesDirtyLocalEdit(t *testing.T) {
	engine, store, remote, _ := newTestEngine(t)
	ctx := context.Background()

	base := time.Now().Truncate(time.Millisecond)
	local := dirtyProduct("p1", base.Add(time.Second))
	local.Quantity = 7
	store.PutProduct(ctx, local)

	older := dirtyProduct("p1", base)
	older.Quantity = 10
	remote.products["p1"] = older

	if err := engine.RunCycle(ctx); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	// The dirty local edit wins the merge and reaches the remote via push.
	got, _ := store.GetProduct(ctx, "p1")
	if got.Quantity != 7 {
		t.Errorf("expected dirty local edit preserved, got quantity %d", got.Quantity)
	}
	if remote.products["p1"].Quantity != 7 {
		t.Errorf("expected local edit pushed, remote has quantity %d", remote.products["p1"].Quantity)
	}
}

func TestPullPreservesLocalImageURL(t *testing.T) {
	engine, store, remote, _ := newTestEngine(t)
	ctx := context.Background()

	base := time.Now().Truncate(time.Millisecond)
	local := dirtyProduct("p1", base)
	local.ImageURL = "local-p1"
	local.Synced = true
	store.PutProduct(ctx, local)

	newer := dirtyProduct("p1", base.Add(time.Second))
	remote.products["p1"] = newer

	if err := engine.RunCycle(ctx); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	got, _ := store.GetProduct(ctx, "p1")
	if got.ImageURL != "local-p1" {
		t.Errorf("expected local image reference preserved, got %q", got.ImageURL)
	}
}

func TestTombstonePropagatesThroughPull(t *testing.T) {
	engine, store, remote, _ := newTestEngine(t)
	ctx := context.Background()

	base := time.Now().Truncate(time.Millisecond)
	local := dirtyProduct("p1", base)
	local.Synced = true
	store.PutProduct(ctx, local)

	dead := dirtyProduct("p1", base.Add(time.Second))
	dead.Deleted = true
	remote.products["p1"] = dead

	if err := engine.RunCycle(ctx); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	products, _ := store.ListProducts(ctx)
	if len(products) != 0 {
		t.Errorf("expected deletion to propagate, still listing %d products", len(products))
	}
}

func TestTombstonePropagatesThroughPush(t *testing.T) {
	engine, store, remote, _ := newTestEngine(t)
	ctx := context.Background()

	dead := dirtyProduct("p1", time.Now())
	dead.Deleted = true
	store.PutProduct(ctx, dead)

	if err := engine.RunCycle(ctx); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	if !remote.products["p1"].Deleted {
		t.Error("expected tombstone pushed to remote")
	}
}

func TestPushRecordFailureIsIsolated(t *testing.T) {
	engine, store, remote, broker := newTestEngine(t)
	ctx := context.Background()

	store.PutProduct(ctx, dirtyProduct("bad", time.Now()))
	store.PutProduct(ctx, dirtyProduct("good", time.Now()))
	remote.rejects["bad"] = errors.New("constraint violation")

	err := engine.RunCycle(ctx)
	if err == nil {
		t.Fatal("expected cycle error when a record fails")
	}

	if _, ok := remote.products["good"]; !ok {
		t.Error("expected failing record not to block the rest of the batch")
	}

	// The failed record stays dirty for the next cycle.
	dirty, _ := store.ListDirtyProducts(ctx)
	if len(dirty) != 1 || dirty[0].ID != "bad" {
		t.Errorf("expected only the failed record dirty, got %+v", dirty)
	}

	if broker.Current() != model.StatusOffline {
		t.Errorf("expected offline after failed cycle, got %s", broker.Current())
	}

	// The next clean cycle retries and recovers.
	delete(remote.rejects, "bad")
	if err := engine.RunCycle(ctx); err != nil {
		t.Fatalf("recovery cycle: %v", err)
	}
	if broker.Current() != model.StatusOnline {
		t.Errorf("expected online after recovery, got %s", broker.Current())
	}
	count, _ := store.UnsyncedCount(ctx)
	if count != 0 {
		t.Errorf("expected all records synced after recovery, got %d dirty", count)
	}
}

func TestCycleStatusTransitions(t *testing.T) {
	engine, _, remote, broker := newTestEngine(t)
	ctx := context.Background()

	ch, cancel := broker.Subscribe()
	defer cancel()

	remote.down = errors.New("connection refused")
	engine.RunCycle(ctx)

	if got := <-ch; got != model.StatusSyncing {
		t.Errorf("expected syncing first, got %s", got)
	}
	if got := <-ch; got != model.StatusOffline {
		t.Errorf("expected offline after failure, got %s", got)
	}

	remote.down = nil
	if err := engine.RunCycle(ctx); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if got := <-ch; got != model.StatusSyncing {
		t.Errorf("expected syncing, got %s", got)
	}
	if got := <-ch; got != model.StatusOnline {
		t.Errorf("expected online after success, got %s", got)
	}
}

func TestCycleSkippedWhileInFlight(t *testing.T) {
	engine, _, remote, broker := newTestEngine(t)
	ctx := context.Background()

	remote.fetchGate = make(chan struct{})

	done := make(chan error, 1)
	go func() { done <- engine.RunCycle(ctx) }()

	// The syncing status means the first cycle holds the in-flight guard.
	deadline := time.After(2 * time.Second)
	for broker.Current() != model.StatusSyncing {
		select {
		case <-deadline:
			t.Fatal("first cycle never started")
		case <-time.After(time.Millisecond):
		}
	}

	// A second call must return immediately instead of stacking.
	if err := engine.RunCycle(ctx); err != nil {
		t.Fatalf("overlapping RunCycle: %v", err)
	}

	close(remote.fetchGate)
	if err := <-done; err != nil {
		t.Fatalf("first cycle: %v", err)
	}
	if got := remote.fetchCalls.Load(); got != 1 {
		t.Errorf("expected exactly 1 fetch, got %d", got)
	}
}

func TestDemoModeReportsOnline(t *testing.T) {
	store := repository.NewTestStore(t)
	broker := NewBroker()
	engine := NewEngine(store, nil, broker)
	ctx := context.Background()

	if engine.Configured() {
		t.Error("expected unconfigured engine")
	}
	if err := engine.RunCycle(ctx); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if broker.Current() != model.StatusOnline {
		t.Errorf("expected online in demo mode, got %s", broker.Current())
	}
}

func TestRemoteUnreachableFromFirstCycle(t *testing.T) {
	engine, store, remote, broker := newTestEngine(t)
	ctx := context.Background()

	// The shop boots without connectivity: the remote is configured but
	// every call fails from the very first cycle.
	remote.down = errors.New("dial tcp: connection refused")
	p := dirtyProduct("p1", time.Now())
	store.PutProduct(ctx, p)

	if engine.RunCycle(ctx) == nil {
		t.Fatal("expected first cycle against an unreachable remote to fail")
	}
	if !engine.Configured() {
		t.Error("expected engine to stay configured while the remote is down")
	}
	if broker.Current() != model.StatusOffline {
		t.Errorf("expected offline status, got %s", broker.Current())
	}
	if dirty, _ := store.ListDirtyProducts(ctx); len(dirty) != 1 {
		t.Errorf("expected record to stay dirty while offline, got %d", len(dirty))
	}

	// Connectivity returns; the next cycle reconciles the backlog.
	remote.down = nil
	if err := engine.RunCycle(ctx); err != nil {
		t.Fatalf("RunCycle after recovery: %v", err)
	}
	if broker.Current() != model.StatusOnline {
		t.Errorf("expected online after recovery, got %s", broker.Current())
	}
	if _, ok := remote.products["p1"]; !ok {
		t.Error("expected queued record to reach remote after recovery")
	}
	if dirty, _ := store.ListDirtyProducts(ctx); len(dirty) != 0 {
		t.Errorf("expected record synced after recovery, got %d dirty", len(dirty))
	}
}

func TestTryPushSkippedWhileOffline(t *testing.T) {
	engine, store, remote, broker := newTestEngine(t)
	ctx := context.Background()

	broker.Publish(model.StatusOffline)

	p := dirtyProduct("p1", time.Now())
	store.PutProduct(ctx, p)
	engine.TryPushProduct(ctx, p)

	if len(remote.products) != 0 {
		t.Error("expected no remote call while offline")
	}
	dirty, _ := store.ListDirtyProducts(ctx)
	if len(dirty) != 1 {
		t.Errorf("expected record to stay dirty, got %d", len(dirty))
	}
}

func TestTryPushLeavesSyncedFlagToCycle(t *testing.T) {
	engine, store, remote, _ := newTestEngine(t)
	ctx := context.Background()

	p := dirtyProduct("p1", time.Now())
	store.PutProduct(ctx, p)
	engine.TryPushProduct(ctx, p)

	if _, ok := remote.products["p1"]; !ok {
		t.Error("expected immediate push to reach remote")
	}
	dirty, _ := store.ListDirtyProducts(ctx)
	if len(dirty) != 1 {
		t.Errorf("expected record to stay dirty until a full cycle confirms it, got %d", len(dirty))
	}

	if err := engine.RunCycle(ctx); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	dirty, _ = store.ListDirtyProducts(ctx)
	if len(dirty) != 0 {
		t.Errorf("expected cycle to mark record synced, got %d dirty", len(dirty))
	}
}

func TestTryPushSwallowsFailure(t *testing.T) {
	engine, store, remote, _ := newTestEngine(t)
	ctx := context.Background()

	remote.rejects["p1"] = errors.New("server error")
	p := dirtyProduct("p1", time.Now())
	store.PutProduct(ctx, p)
	engine.TryPushProduct(ctx, p)

	dirty, _ := store.ListDirtyProducts(ctx)
	if len(dirty) != 1 {
		t.Errorf("expected failed push to leave record dirty, got %d", len(dirty))
	}
}

func TestPullInsertsRemoteSales(t *testing.T) {
	engine, store, remote, _ := newTestEngine(t)
	ctx := context.Background()

	remote.sales["s1"] = model.Sale{ID: "s1", ProductID: "p1", Quantity: 2, CreatedAt: time.Now()}

	if err := engine.RunCycle(ctx); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}

	got, err := store.GetSale(ctx, "s1")
	if err != nil {
		t.Fatalf("GetSale: %v", err)
	}
	if !got.Synced {
		t.Error("expected pulled sale marked synced")
	}
}

func TestRemoteWins(t *testing.T) {
	base := time.Now()
	if !remoteWins(base.Add(time.Millisecond), base) {
		t.Error("strictly newer remote must win")
	}
	if remoteWins(base, base) {
		t.Error("equal timestamps must favor local")
	}
	if remoteWins(base.Add(-time.Millisecond), base) {
		t.Error("older remote must lose")
	}
}
