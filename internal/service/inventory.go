package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/MAKAMOUL/prophoneplus/internal/model"
	"github.com/MAKAMOUL/prophoneplus/internal/repository"
	"github.com/MAKAMOUL/prophoneplus/internal/sync"
	"github.com/MAKAMOUL/prophoneplus/pkg/uid"
)

// ServiceError is a typed sentinel error for business-rule violations.
type ServiceError string

func (e ServiceError) Error() string { return string(e) }

const (
	// ErrInvalidQuantity indicates a zero or negative sale quantity.
	ErrInvalidQuantity ServiceError = "quantity must be greater than zero"

	// ErrInsufficientStock indicates a sale would drive stock negative.
	ErrInsufficientStock ServiceError = "not enough stock for sale"

	// ErrCategoryInUse indicates a category still referenced by products.
	ErrCategoryInUse ServiceError = "category is referenced by existing products"

	// ErrNameRequired indicates a missing product or category name.
	ErrNameRequired ServiceError = "name is required"
)

// InventoryService applies product, category and sale mutations to the
// local store. Every mutation is written optimistically with synced=false
// and then pushed remotely best-effort; the periodic sync cycle is the
// authority for retries, so mutations succeed locally whether or not the
// network is up. Only a local storage failure is fatal to the caller.
type InventoryService struct {
	store  *repository.Store
	engine *sync.Engine
}

// NewInventoryService creates a new inventory service.
// Returns nil if store is nil (required dependency).
func NewInventoryService(store *repository.Store, engine *sync.Engine) *InventoryService {
	if store == nil {
		return nil
	}
	return &InventoryService{store: store, engine: engine}
}

// ProductInput carries the caller-supplied fields of a product.
type ProductInput struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	MinStock    int     `json:"minStock"`
	ImageURL    string  `json:"imageUrl"`
}

func (in *ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrNameRequired
	}
	if in.Quantity < 0 || in.Price < 0 || in.MinStock < 0 {
		return ErrInvalidQuantity
	}
	return nil
}

// AddProduct creates a product owned by the acting user, assigns it an id
// and a stock reference code, and returns the stored record.
func (s *InventoryService) AddProduct(ctx context.Context, sess model.Session, in ProductInput) (*model.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	p := model.Product{
		ID:          uid.New(),
		Ref:         uid.Ref(),
		Name:        in.Name,
		Category:    in.Category,
		Subcategory: in.Subcategory,
		Quantity:    in.Quantity,
		Price:       in.Price,
		MinStock:    in.MinStock,
		ImageURL:    in.ImageURL,
		CreatedBy:   sess.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
		Synced:      false,
	}

	if err := s.store.PutProduct(ctx, p); err != nil {
		return nil, err
	}
	s.engine.TryPushProduct(ctx, p)
	return &p, nil
}

// UpdateProduct applies caller-supplied fields to an existing product,
// refreshes updatedAt, marks it dirty and returns the stored record.
func (s *InventoryService) UpdateProduct(ctx context.Context, id string, in ProductInput) (*model.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	p, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Deleted {
		return nil, repository.ErrNotFound
	}

	p.Name = in.Name
	p.Category = in.Category
	p.Subcategory = in.Subcategory
	p.Quantity = in.Quantity
	p.Price = in.Price
	p.MinStock = in.MinStock
	if in.ImageURL != "" {
		p.ImageURL = in.ImageURL
	}
	p.UpdatedAt = time.Now()
	p.Synced = false

	if err := s.store.PutProduct(ctx, *p); err != nil {
		return nil, err
	}
	s.engine.TryPushProduct(ctx, *p)
	return p, nil
}

// DeleteProduct tombstones a product so the deletion propagates through
// the normal push/pull path instead of resurrecting from another client's
// remote copy. The stored image is dropped immediately.
func (s *InventoryService) DeleteProduct(ctx context.Context, id string) error {
	p, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	if p.Deleted {
		return repository.ErrNotFound
	}

	p.Deleted = true
	p.UpdatedAt = time.Now()
	p.Synced = false

	if err := s.store.PutProduct(ctx, *p); err != nil {
		return err
	}
	if err := s.store.DeleteImage(ctx, id); err != nil {
		log.Printf("[InventoryService] Failed to delete image for product %s: %v", id, err)
	}
	s.engine.TryPushProduct(ctx, *p)
	return nil
}

// AddCategory creates a category and returns the stored record.
func (s *InventoryService) AddCategory(ctx context.Context, name string, subcategories []string) (*model.Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrNameRequired
	}
	if subcategories == nil {
		subcategories = []string{}
	}

	now := time.Now()
	c := model.Category{
		ID:            uid.New(),
		Name:          name,
		Subcategories: subcategories,
		CreatedAt:     now,
		UpdatedAt:     now,
		Synced:        false,
	}

	if err := s.store.PutCategory(ctx, c); err != nil {
		return nil, err
	}
	s.engine.TryPushCategory(ctx, c)
	return &c, nil
}

// UpdateCategory renames a category and replaces its subcategory labels.
func (s *InventoryService) UpdateCategory(ctx context.Context, id, name string, subcategories []string) (*model.Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrNameRequired
	}

	c, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Deleted {
		return nil, repository.ErrNotFound
	}

	c.Name = name
	if subcategories != nil {
		c.Subcategories = subcategories
	}
	c.UpdatedAt = time.Now()
	c.Synced = false

	if err := s.store.PutCategory(ctx, *c); err != nil {
		return nil, err
	}
	s.engine.TryPushCategory(ctx, *c)
	return c, nil
}

// DeleteCategory tombstones a category. Deletion is rejected while any
// non-deleted product still references the category's name.
func (s *InventoryService) DeleteCategory(ctx context.Context, id string) error {
	c, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return err
	}
	if c.Deleted {
		return repository.ErrNotFound
	}

	count, err := s.store.CountProductsInCategory(ctx, c.Name)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryInUse
	}

	c.Deleted = true
	c.UpdatedAt = time.Now()
	c.Synced = false

	if err := s.store.PutCategory(ctx, *c); err != nil {
		return err
	}
	s.engine.TryPushCategory(ctx, *c)
	return nil
}

// SaleInput carries the caller-supplied fields of a sale.
type SaleInput struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	BillURL   string  `json:"billUrl"`
}

// AddSale records a sale and decrements the referenced product's stock by
// the sold amount through the same update path as any product edit. The
// total price is computed once at creation and never recomputed. Stock is
// guarded: a sale that would drive quantity negative is rejected.
func (s *InventoryService) AddSale(ctx context.Context, sess model.Session, in SaleInput) (*model.Sale, error) {
	if in.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	p, err := s.store.GetProduct(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if p.Deleted {
		return nil, repository.ErrNotFound
	}
	if in.Quantity > p.Quantity {
		return nil, ErrInsufficientStock
	}

	sale := model.Sale{
		ID:          uid.New(),
		ProductID:   p.ID,
		ProductName: p.Name,
		Quantity:    in.Quantity,
		UnitPrice:   in.UnitPrice,
		TotalPrice:  float64(in.Quantity) * in.UnitPrice,
		SoldBy:      sess.UserID,
		SoldByName:  sess.UserName,
		BillURL:     in.BillURL,
		CreatedAt:   time.Now(),
		Synced:      false,
	}

	if err := s.store.InsertSale(ctx, sale); err != nil {
		return nil, err
	}

	if err := s.adjustStock(ctx, p, -in.Quantity); err != nil {
		return nil, err
	}

	s.engine.TryPushSale(ctx, sale)
	return &sale, nil
}

// DeleteSale removes a sale and restores the referenced product's stock.
// If the product no longer exists the restoration is skipped rather than
// failing the whole operation.
func (s *InventoryService) DeleteSale(ctx context.Context, id string) error {
	sale, err := s.store.GetSale(ctx, id)
	if err != nil {
		return err
	}

	p, err := s.store.GetProduct(ctx, sale.ProductID)
	if errors.Is(err, repository.ErrNotFound) {
		log.Printf("[InventoryService] Sale %s references missing product %s, skipping stock restore", id, sale.ProductID)
	} else if err != nil {
		return err
	} else if err := s.adjustStock(ctx, p, sale.Quantity); err != nil {
		return err
	}

	return s.store.DeleteSale(ctx, id)
}

// adjustStock changes a product's quantity by delta using the normal
// product update path, so the change is marked dirty and pushed like any
// other edit.
func (s *InventoryService) adjustStock(ctx context.Context, p *model.Product, delta int) error {
	p.Quantity += delta
	p.UpdatedAt = time.Now()
	p.Synced = false

	if err := s.store.PutProduct(ctx, *p); err != nil {
		return err
	}
	s.engine.TryPushProduct(ctx, *p)
	return nil
}

// SaveProductImage stores image bytes for a product. Images are kept
// locally only so photos keep working offline.
func (s *InventoryService) SaveProductImage(ctx context.Context, productID string, data []byte, mime string) error {
	if _, err := s.store.GetProduct(ctx, productID); err != nil {
		return err
	}
	return s.store.PutImage(ctx, model.Image{ID: productID, Data: data, Mime: mime})
}

// ProductImage returns the stored image bytes for a product.
func (s *InventoryService) ProductImage(ctx context.Context, productID string) (*model.Image, error) {
	return s.store.GetImage(ctx, productID)
}
