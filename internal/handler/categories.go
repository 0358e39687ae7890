package handler

import (
	"encoding/json"
	"net/http"

	"github.com/MAKAMOUL/prophoneplus/internal/service"
	"github.com/MAKAMOUL/prophoneplus/pkg/apierror"
	"github.com/MAKAMOUL/prophoneplus/pkg/response"

	"github.com/go-chi/chi/v5"
)

// CategoryHandler handles category-related HTTP requests.
type CategoryHandler struct {
	inventory *service.InventoryService
	snapshots *service.SnapshotService
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(inventory *service.InventoryService, snapshots *service.SnapshotService) *CategoryHandler {
	return &CategoryHandler{
		inventory: inventory,
		snapshots: snapshots,
	}
}

type categoryRequest struct {
	Name          string   `json:"name"`
	Subcategories []string `json:"subcategories"`
}

// List handles GET /api/v1/categories
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	snap, err := h.snapshots.Snapshot(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.OK(w, snap.Categories)
}

// Create handles POST /api/v1/categories
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}

	c, err := h.inventory.AddCategory(r.Context(), req.Name, req.Subcategories)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.snapshots.Invalidate(r.Context())
	response.Created(w, c)
}

// Update handles PUT /api/v1/categories/{id}
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.Error(w, apierror.BadRequest("id is required"))
		return
	}

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}

	c, err := h.inventory.UpdateCategory(r.Context(), id, req.Name, req.Subcategories)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.snapshots.Invalidate(r.Context())
	response.OK(w, c)
}

// Delete handles DELETE /api/v1/categories/{id}
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.Error(w, apierror.BadRequest("id is required"))
		return
	}

	if err := h.inventory.DeleteCategory(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	h.snapshots.Invalidate(r.Context())
	response.NoContent(w)
}
