package sync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"sync/atomic"
	"time"

	"github.com/MAKAMOUL/prophoneplus/internal/model"
	"github.com/MAKAMOUL/prophoneplus/internal/repository"
)

// Engine reconciles the local store with the remote store. A cycle pushes
// locally-dirty records out, then pulls remote records in with a
// last-writer-wins merge, and reports aggregate connectivity through the
// status broker.
//
// Push policy is per-record isolation: one failing record is logged and
// skipped so it cannot block the rest of the batch; any failure still
// marks the whole cycle failed and flips the status to offline. The record
// stays dirty and is retried on the next cycle.
type Engine struct {
	store    *repository.Store
	remote   repository.Remote // nil when no remote endpoint is configured
	broker   *Broker
	inFlight atomic.Bool
}

// NewEngine creates a sync engine. A nil remote means demo mode: the
// engine reports online unconditionally and cycles are no-ops.
func NewEngine(store *repository.Store, remote repository.Remote, broker *Broker) *Engine {
	return &Engine{store: store, remote: remote, broker: broker}
}

// Configured reports whether a remote endpoint is set up.
func (e *Engine) Configured() bool {
	return e.remote != nil
}

// Status returns the current connectivity state.
func (e *Engine) Status() model.SyncStatus {
	return e.broker.Current()
}

// online reports whether an opportunistic push is worth attempting.
func (e *Engine) online() bool {
	return e.remote != nil && e.broker.Current() != model.StatusOffline
}

// RunCycle performs one push-then-pull cycle. Cycles are serialized: if a
// previous cycle is still running the call is skipped, which keeps a slow
// network from stacking concurrent cycles on the 10s interval.
func (e *Engine) RunCycle(ctx context.Context) error {
	if e.remote == nil {
		e.broker.Publish(model.StatusOnline)
		return nil
	}

	if !e.inFlight.CompareAndSwap(false, true) {
		log.Printf("[SyncEngine] Cycle skipped: previous cycle still running")
		return nil
	}
	defer e.inFlight.Store(false)

	e.broker.Publish(model.StatusSyncing)

	pushErr := e.push(ctx)
	pullErr := e.pull(ctx)

	if pushErr != nil || pullErr != nil {
		e.broker.Publish(model.StatusOffline)
		return errors.Join(pushErr, pullErr)
	}

	e.broker.Publish(model.StatusOnline)
	return nil
}

// push upserts every dirty record to the remote store and flips its synced
// flag only after the remote call returns success.
func (e *Engine) push(ctx context.Context) error {
	failed := 0

	products, err := e.store.ListDirtyProducts(ctx)
	if err != nil {
		return fmt.Errorf("listing dirty products: %w", err)
	}
	for _, p := range products {
		if err := e.remote.UpsertProduct(ctx, p); err != nil {
			logRemoteError("product", p.ID, err)
			failed++
			continue
		}
		if err := e.store.MarkProductSynced(ctx, p.ID); err != nil {
			return err
		}
	}

	categories, err := e.store.ListDirtyCategories(ctx)
	if err != nil {
		return fmt.Errorf("listing dirty categories: %w", err)
	}
	for _, c := range categories {
		if err := e.remote.UpsertCategory(ctx, c); err != nil {
			logRemoteError("category", c.ID, err)
			failed++
			continue
		}
		if err := e.store.MarkCategorySynced(ctx, c.ID); err != nil {
			return err
		}
	}

	sales, err := e.store.ListDirtySales(ctx)
	if err != nil {
		return fmt.Errorf("listing dirty sales: %w", err)
	}
	for _, s := range sales {
		if err := e.remote.UpsertSale(ctx, s); err != nil {
			logRemoteError("sale", s.ID, err)
			failed++
			continue
		}
		if err := e.store.MarkSaleSynced(ctx, s.ID); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("push: %d records failed", failed)
	}
	return nil
}

// pull fetches all remote records and merges them into the local store.
// Products and categories merge last-writer-wins by updatedAt; sales are
// append-only, only absent ones are inserted.
func (e *Engine) pull(ctx context.Context) error {
	products, err := e.remote.FetchProducts(ctx)
	if err != nil {
		logRemoteError("products", "fetch", err)
		return fmt.Errorf("fetching products: %w", err)
	}
	for _, remote := range products {
		if err := e.mergeProduct(ctx, remote); err != nil {
			return err
		}
	}

	categories, err := e.remote.FetchCategories(ctx)
	if err != nil {
		logRemoteError("categories", "fetch", err)
		return fmt.Errorf("fetching categories: %w", err)
	}
	for _, remote := range categories {
		if err := e.mergeCategory(ctx, remote); err != nil {
			return err
		}
	}

	sales, err := e.remote.FetchSales(ctx)
	if err != nil {
		logRemoteError("sales", "fetch", err)
		return fmt.Errorf("fetching sales: %w", err)
	}
	for _, remote := range sales {
		if _, err := e.store.GetSale(ctx, remote.ID); err == nil {
			continue
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		remote.Synced = true
		if err := e.store.InsertSale(ctx, remote); err != nil {
			return err
		}
	}

	return nil
}

func (e *Engine) mergeProduct(ctx context.Context, remote model.Product) error {
	local, err := e.store.GetProduct(ctx, remote.ID)
	if errors.Is(err, repository.ErrNotFound) {
		remote.Synced = true
		return e.store.PutProduct(ctx, remote)
	}
	if err != nil {
		return err
	}

	if !remoteWins(remote.UpdatedAt, local.UpdatedAt) {
		// Local copy wins; a still-dirty record keeps its place in the
		// outbox untouched.
		return nil
	}

	merged := remote
	merged.Synced = true
	// Image references are local-only; the remote row doesn't carry them.
	merged.ImageURL = local.ImageURL
	return e.store.PutProduct(ctx, merged)
}

func (e *Engine) mergeCategory(ctx context.Context, remote model.Category) error {
	local, err := e.store.GetCategory(ctx, remote.ID)
	if errors.Is(err, repository.ErrNotFound) {
		remote.Synced = true
		return e.store.PutCategory(ctx, remote)
	}
	if err != nil {
		return err
	}

	if !remoteWins(remote.UpdatedAt, local.UpdatedAt) {
		return nil
	}

	merged := remote
	merged.Synced = true
	return e.store.PutCategory(ctx, merged)
}

// remoteWins is the last-writer-wins comparison: the remote copy wins only
// when its updatedAt is strictly greater. Equal timestamps favor the local
// copy.
func remoteWins(remote, local time.Time) bool {
	return remote.After(local)
}

// TryPushProduct attempts a single immediate upsert after a local
// mutation so edits land remotely without waiting for the next tick. It
// is a pure optimization: failure is logged, never returned, and the
// synced flag is NOT touched here. Only the push phase of a full cycle
// marks records synced, so a racing cycle can never be told a record is
// clean by a push it did not confirm itself.
func (e *Engine) TryPushProduct(ctx context.Context, p model.Product) {
	if !e.online() {
		return
	}
	if err := e.remote.UpsertProduct(ctx, p); err != nil {
		logRemoteError("product", p.ID, err)
	}
}

// TryPushCategory attempts a single immediate upsert after a local
// mutation. See TryPushProduct.
func (e *Engine) TryPushCategory(ctx context.Context, c model.Category) {
	if !e.online() {
		return
	}
	if err := e.remote.UpsertCategory(ctx, c); err != nil {
		logRemoteError("category", c.ID, err)
	}
}

// TryPushSale attempts a single immediate upsert after a local mutation.
// See TryPushProduct.
func (e *Engine) TryPushSale(ctx context.Context, s model.Sale) {
	if !e.online() {
		return
	}
	if err := e.remote.UpsertSale(ctx, s); err != nil {
		logRemoteError("sale", s.ID, err)
	}
}

// logRemoteError distinguishes network-level failures (unreachable) from
// remote rejections (validation, auth, server error). Both leave the
// record dirty for the next cycle.
func logRemoteError(kind, id string, err error) {
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		log.Printf("[SyncEngine] Remote unreachable pushing %s %s: %v", kind, id, err)
		return
	}
	log.Printf("[SyncEngine] Remote rejected %s %s: %v", kind, id, err)
}
