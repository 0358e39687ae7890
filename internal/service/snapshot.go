package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/MAKAMOUL/prophoneplus/internal/cache"
	"github.com/MAKAMOUL/prophoneplus/internal/model"
	"github.com/MAKAMOUL/prophoneplus/internal/repository"
)

const snapshotKey = "snapshot"

// SnapshotService maintains the observable view over the live collections:
// non-deleted products and categories, all sales, non-dismissed alerts.
// The view is rebuilt after every mutation and sync cycle, with the alert
// deriver run as part of the rebuild so alerts stay consistent with
// inventory, and is cached between rebuilds.
type SnapshotService struct {
	store  *repository.Store
	alerts *AlertService
	cache  cache.Cache
	ttl    time.Duration
}

// NewSnapshotService creates a new snapshot service.
func NewSnapshotService(store *repository.Store, alerts *AlertService, c cache.Cache, ttl time.Duration) *SnapshotService {
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &SnapshotService{store: store, alerts: alerts, cache: c, ttl: ttl}
}

// RefreshAllData re-reads the live collections, recomputes low-stock
// alerts, caches the result and returns it.
func (s *SnapshotService) RefreshAllData(ctx context.Context) (*model.Snapshot, error) {
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	sales, err := s.store.ListSales(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.alerts.RefreshAlerts(ctx); err != nil {
		return nil, err
	}
	alerts, err := s.store.ListActiveAlerts(ctx)
	if err != nil {
		return nil, err
	}

	snap := &model.Snapshot{
		Products:   products,
		Categories: categories,
		Sales:      sales,
		Alerts:     alerts,
	}

	if data, err := json.Marshal(snap); err == nil {
		if err := s.cache.Set(ctx, snapshotKey, data, s.ttl); err != nil {
			log.Printf("[SnapshotService] Failed to cache snapshot: %v", err)
		}
	}

	return snap, nil
}

// Snapshot returns the cached view, rebuilding it on a miss.
func (s *SnapshotService) Snapshot(ctx context.Context) (*model.Snapshot, error) {
	data, err := s.cache.Get(ctx, snapshotKey)
	if errors.Is(err, cache.ErrCacheMiss) {
		return s.RefreshAllData(ctx)
	}
	if err != nil {
		log.Printf("[SnapshotService] Cache read failed, rebuilding: %v", err)
		return s.RefreshAllData(ctx)
	}

	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return s.RefreshAllData(ctx)
	}
	return &snap, nil
}

// Invalidate drops the cached view so the next read rebuilds it.
func (s *SnapshotService) Invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, snapshotKey); err != nil {
		log.Printf("[SnapshotService] Failed to invalidate snapshot: %v", err)
	}
}

// LowStockProducts is a pure derived view over the current product
// snapshot; it touches no store state beyond the snapshot read.
func (s *SnapshotService) LowStockProducts(ctx context.Context) ([]model.Product, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	low := make([]model.Product, 0)
	for _, p := range snap.Products {
		if p.IsLowStock() {
			low = append(low, p)
		}
	}
	return low, nil
}
