package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/MAKAMOUL/prophoneplus/internal/middleware"
	"github.com/MAKAMOUL/prophoneplus/internal/service"
	"github.com/MAKAMOUL/prophoneplus/pkg/apierror"
	"github.com/MAKAMOUL/prophoneplus/pkg/response"

	"github.com/go-chi/chi/v5"
)

// maxImageBytes caps product photo uploads.
const maxImageBytes = 5 << 20

// ProductHandler handles product-related HTTP requests.
type ProductHandler struct {
	inventory *service.InventoryService
	snapshots *service.SnapshotService
}

// NewProductHandler creates a new product handler.
func NewProductHandler(inventory *service.InventoryService, snapshots *service.SnapshotService) *ProductHandler {
	return &ProductHandler{
		inventory: inventory,
		snapshots: snapshots,
	}
}

// List handles GET /api/v1/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	snap, err := h.snapshots.Snapshot(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.OK(w, snap.Products)
}

// LowStock handles GET /api/v1/products/low-stock
func (h *ProductHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	low, err := h.snapshots.LowStockProducts(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.OK(w, low)
}

// Create handles POST /api/v1/products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}

	sess := middleware.GetSession(r.Context())
	p, err := h.inventory.AddProduct(r.Context(), sess, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.snapshots.Invalidate(r.Context())
	response.Created(w, p)
}

// Update handles PUT /api/v1/products/{id}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.Error(w, apierror.BadRequest("id is required"))
		return
	}

	var in service.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}

	p, err := h.inventory.UpdateProduct(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.snapshots.Invalidate(r.Context())
	response.OK(w, p)
}

// Delete handles DELETE /api/v1/products/{id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.Error(w, apierror.BadRequest("id is required"))
		return
	}

	if err := h.inventory.DeleteProduct(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	h.snapshots.Invalidate(r.Context())
	response.NoContent(w)
}

// GetImage handles GET /api/v1/products/{id}/image
func (h *ProductHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.Error(w, apierror.BadRequest("id is required"))
		return
	}

	img, err := h.inventory.ProductImage(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", img.Mime)
	w.WriteHeader(http.StatusOK)
	w.Write(img.Data)
}

// UploadImage handles POST /api/v1/products/{id}/image
func (h *ProductHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.Error(w, apierror.BadRequest("id is required"))
		return
	}

	mime := r.Header.Get("Content-Type")
	if mime == "" {
		mime = "application/octet-stream"
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxImageBytes+1))
	if err != nil {
		response.Error(w, apierror.BadRequest("failed to read request body"))
		return
	}
	defer r.Body.Close()
	if len(data) > maxImageBytes {
		response.Error(w, apierror.BadRequest("image too large"))
		return
	}

	if err := h.inventory.SaveProductImage(r.Context(), id, data, mime); err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, map[string]interface{}{
		"status": "stored",
		"id":     id,
		"size":   len(data),
	})
}
