package handler

import (
	"encoding/json"
	"net/http"

	"github.com/MAKAMOUL/prophoneplus/internal/middleware"
	"github.com/MAKAMOUL/prophoneplus/internal/service"
	"github.com/MAKAMOUL/prophoneplus/pkg/apierror"
	"github.com/MAKAMOUL/prophoneplus/pkg/response"

	"github.com/go-chi/chi/v5"
)

// SaleHandler handles sale-related HTTP requests.
type SaleHandler struct {
	inventory *service.InventoryService
	snapshots *service.SnapshotService
}

// NewSaleHandler creates a new sale handler.
func NewSaleHandler(inventory *service.InventoryService, snapshots *service.SnapshotService) *SaleHandler {
	return &SaleHandler{
		inventory: inventory,
		snapshots: snapshots,
	}
}

// List handles GET /api/v1/sales
func (h *SaleHandler) List(w http.ResponseWriter, r *http.Request) {
	snap, err := h.snapshots.Snapshot(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.OK(w, snap.Sales)
}

// Create handles POST /api/v1/sales
func (h *SaleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.SaleInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	if in.ProductID == "" {
		response.Error(w, apierror.BadRequest("productId is required"))
		return
	}

	sess := middleware.GetSession(r.Context())
	sale, err := h.inventory.AddSale(r.Context(), sess, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.snapshots.Invalidate(r.Context())
	response.Created(w, sale)
}

// Delete handles DELETE /api/v1/sales/{id}
func (h *SaleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.Error(w, apierror.BadRequest("id is required"))
		return
	}

	if err := h.inventory.DeleteSale(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	h.snapshots.Invalidate(r.Context())
	response.NoContent(w)
}
