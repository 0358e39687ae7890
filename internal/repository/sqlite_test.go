package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MAKAMOUL/prophoneplus/internal/model"
)

func testProduct(id string) model.Product {
	now := time.Now().Truncate(time.Millisecond)
	return model.Product{
		ID:        id,
		Ref:       "STK1000AAAA",
		Name:      "iPhone 13",
		Category:  "Smartphones",
		Quantity:  10,
		Price:     599.99,
		MinStock:  5,
		CreatedBy: "user-1",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestPutAndGetProduct(t *testing.T) {
	store := NewTestStore(t)
	ctx := context.Background()

	p := testProduct("p1")
	if err := store.PutProduct(ctx, p); err != nil {
		t.Fatalf("PutProduct: %v", err)
	}

	got, err := store.GetProduct(ctx, "p1")
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if got.Name != "iPhone 13" {
		t.Errorf("expected name 'iPhone 13', got %q", got.Name)
	}
	if got.Synced {
		t.Error("expected new product to be unsynced")
	}
	if !got.UpdatedAt.Equal(p.UpdatedAt) {
		t.Errorf("expected updatedAt %v, got %v", p.UpdatedAt, got.UpdatedAt)
	}
}

func TestGetProductNotFound(t *testing.T) {
	store := NewTestStore(t)

	_, err := store.GetProduct(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPutProductReplacesByID(t *testing.T) {
	store := NewTestStore(t)
	ctx := context.Background()

	p := testProduct("p1")
	store.PutProduct(ctx, p)

	p.Name = "iPhone 13 Pro"
	p.Quantity = 7
	if err := store.PutProduct(ctx, p); err != nil {
		t.Fatalf("PutProduct replace: %v", err)
	}

	got, _ := store.GetProduct(ctx, "p1")
	if got.Name != "iPhone 13 Pro" || got.Quantity != 7 {
		t.Errorf("expected replaced record, got %+v", got)
	}

	all, _ := store.ListProducts(ctx)
	if len(all) != 1 {
		t.Errorf("expected 1 product after replace, got %d", len(all))
	}
}

func TestListProductsExcludesTombstones(t *testing.T) {
	store := NewTestStore(t)
	ctx := context.Background()

	store.PutProduct(ctx, testProduct("p1"))
	dead := testProduct("p2")
	dead.Deleted = true
	store.PutProduct(ctx, dead)

	products, err := store.ListProducts(ctx)
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("expected 1 live product, got %d", len(products))
	}
	if products[0].ID != "p1" {
		t.Errorf("expected p1, got %s", products[0].ID)
	}

	// The tombstone stays fetchable by id so merges can compare it.
	got, err := store.GetProduct(ctx, "p2")
	if err != nil {
		t.Fatalf("GetProduct tombstone: %v", err)
	}
	if !got.Deleted {
		t.Error("expected tombstone flag to survive")
	}
}

func TestDirtyProductsAndMarkSynced(t *testing.T) {
	store := NewTestStore(t)
	ctx := context.Background()

	store.PutProduct(ctx, testProduct("p1"))
	clean := testProduct("p2")
	clean.Synced = true
	store.PutProduct(ctx, clean)
	dead := testProduct("p3")
	dead.Deleted = true
	store.PutProduct(ctx, dead)

	dirty, err := store.ListDirtyProducts(ctx)
	if err != nil {
		t.Fatalf("ListDirtyProducts: %v", err)
	}
	// Tombstones are dirty too, otherwise deletions never propagate.
	if len(dirty) != 2 {
		t.Fatalf("expected 2 dirty products, got %d", len(dirty))
	}

	if err := store.MarkProductSynced(ctx, "p1"); err != nil {
		t.Fatalf("MarkProductSynced: %v", err)
	}
	dirty, _ = store.ListDirtyProducts(ctx)
	if len(dirty) != 1 || dirty[0].ID != "p3" {
		t.Errorf("expected only p3 dirty, got %+v", dirty)
	}
}

func TestCountProductsInCategory(t *testing.T) {
	store := NewTestStore(t)
	ctx := context.Background()

	store.PutProduct(ctx, testProduct("p1"))
	dead := testProduct("p2")
	dead.Deleted = true
	store.PutProduct(ctx, dead)

	count, err := store.CountProductsInCategory(ctx, "Smartphones")
	if err != nil {
		t.Fatalf("CountProductsInCategory: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 live product in category, got %d", count)
	}
}

func TestCategoryRoundTrip(t *testing.T) {
	store := NewTestStore(t)
	ctx := context.Background()

	now := time.Now().Truncate(time.Millisecond)
	c := model.Category{
		ID:            "c1",
		Name:          "Smartphones",
		Subcategories: []string{"iPhone", "Samsung"},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := store.PutCategory(ctx, c); err != nil {
		t.Fatalf("PutCategory: %v", err)
	}

	got, err := store.GetCategory(ctx, "c1")
	if err != nil {
		t.Fatalf("GetCategory: %v", err)
	}
	if len(got.Subcategories) != 2 || got.Subcategories[0] != "iPhone" {
		t.Errorf("expected subcategories to round-trip, got %+v", got.Subcategories)
	}
}

func TestSeedDefaultsOnlyWhenEmpty(t *testing.T) {
	store := NewTestStore(t)
	ctx := context.Background()

	if err := store.SeedDefaults(ctx); err != nil {
		t.Fatalf("SeedDefaults: %v", err)
	}
	first, _ := store.ListCategories(ctx)
	if len(first) == 0 {
		t.Fatal("expected default categories to be seeded")
	}

	// Seeded rows never enter the outbox.
	dirty, _ := store.ListDirtyCategories(ctx)
	if len(dirty) != 0 {
		t.Errorf("expected seeded categories to be synced, got %d dirty", len(dirty))
	}

	if err := store.SeedDefaults(ctx); err != nil {
		t.Fatalf("SeedDefaults second run: %v", err)
	}
	second, _ := store.ListCategories(ctx)
	if len(second) != len(first) {
		t.Errorf("expected seeding to be idempotent, got %d then %d", len(first), len(second))
	}
}

func testSale(id, productID string) model.Sale {
	return model.Sale{
		ID:          id,
		ProductID:   productID,
		ProductName: "iPhone 13",
		Quantity:    2,
		UnitPrice:   599.99,
		TotalPrice:  1199.98,
		SoldBy:      "user-1",
		SoldByName:  "Sam",
		CreatedAt:   time.Now().Truncate(time.Millisecond),
	}
}

func TestInsertSaleIgnoresDuplicates(t *testing.T) {
	store := NewTestStore(t)
	ctx := context.Background()

	store.PutProduct(ctx, testProduct("p1"))
	s := testSale("s1", "p1")
	if err := store.InsertSale(ctx, s); err != nil {
		t.Fatalf("InsertSale: %v", err)
	}

	s.Quantity = 99
	if err := store.InsertSale(ctx, s); err != nil {
		t.Fatalf("InsertSale duplicate: %v", err)
	}

	got, _ := store.GetSale(ctx, "s1")
	if got.Quantity != 2 {
		t.Errorf("expected first insert to win, got quantity %d", got.Quantity)
	}
}

func TestDeleteSale(t *testing.T) {
	store := NewTestStore(t)
	ctx := context.Background()

	store.PutProduct(ctx, testProduct("p1"))
	store.InsertSale(ctx, testSale("s1", "p1"))

	if err := store.DeleteSale(ctx, "s1"); err != nil {
		t.Fatalf("DeleteSale: %v", err)
	}
	if _, err := store.GetSale(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestAlertDismissAndRevive(t *testing.T) {
	store := NewTestStore(t)
	ctx := context.Background()

	a := model.Alert{
		ID:              "a1",
		ProductID:       "p1",
		ProductName:     "iPhone 13",
		CurrentQuantity: 3,
		MinStock:        5,
		CreatedAt:       time.Now(),
	}
	if err := store.InsertAlert(ctx, a); err != nil {
		t.Fatalf("InsertAlert: %v", err)
	}

	active, _ := store.ListActiveAlerts(ctx)
	if len(active) != 1 {
		t.Fatalf("expected 1 active alert, got %d", len(active))
	}

	if err := store.DismissAlert(ctx, "a1"); err != nil {
		t.Fatalf("DismissAlert: %v", err)
	}
	active, _ = store.ListActiveAlerts(ctx)
	if len(active) != 0 {
		t.Errorf("expected no active alerts after dismiss, got %d", len(active))
	}

	// The dismissed alert is still looked up by product for revival.
	got, err := store.GetAlertByProduct(ctx, "p1")
	if err != nil {
		t.Fatalf("GetAlertByProduct: %v", err)
	}
	if !got.Dismissed {
		t.Error("expected alert to be dismissed")
	}

	if err := store.ReviveAlert(ctx, "a1", 1, 5); err != nil {
		t.Fatalf("ReviveAlert: %v", err)
	}
	active, _ = store.ListActiveAlerts(ctx)
	if len(active) != 1 {
		t.Fatalf("expected revived alert to be active, got %d", len(active))
	}
	if active[0].CurrentQuantity != 1 {
		t.Errorf("expected revived quantity 1, got %d", active[0].CurrentQuantity)
	}
}

func TestDismissAlertNotFound(t *testing.T) {
	store := NewTestStore(t)

	err := store.DismissAlert(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUnsyncedCount(t *testing.T) {
	store := NewTestStore(t)
	ctx := context.Background()

	count, err := store.UnsyncedCount(ctx)
	if err != nil {
		t.Fatalf("UnsyncedCount: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 on empty store, got %d", count)
	}

	store.PutProduct(ctx, testProduct("p1"))
	store.InsertSale(ctx, testSale("s1", "p1"))
	store.PutCategory(ctx, model.Category{ID: "c1", Name: "Tablets", Subcategories: []string{}, CreatedAt: time.Now(), UpdatedAt: time.Now()})

	count, _ = store.UnsyncedCount(ctx)
	if count != 3 {
		t.Errorf("expected 3 unsynced records, got %d", count)
	}

	store.MarkSaleSynced(ctx, "s1")
	count, _ = store.UnsyncedCount(ctx)
	if count != 2 {
		t.Errorf("expected 2 after marking sale synced, got %d", count)
	}
}

func TestImageRoundTrip(t *testing.T) {
	store := NewTestStore(t)
	ctx := context.Background()

	img := model.Image{ID: "p1", Data: []byte("fake image data"), Mime: "image/png"}
	if err := store.PutImage(ctx, img); err != nil {
		t.Fatalf("PutImage: %v", err)
	}

	got, err := store.GetImage(ctx, "p1")
	if err != nil {
		t.Fatalf("GetImage: %v", err)
	}
	if string(got.Data) != "fake image data" || got.Mime != "image/png" {
		t.Errorf("unexpected image record: %+v", got)
	}

	if err := store.DeleteImage(ctx, "p1"); err != nil {
		t.Fatalf("DeleteImage: %v", err)
	}
	if _, err := store.GetImage(ctx, "p1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}
