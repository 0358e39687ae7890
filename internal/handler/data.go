package handler

import (
	"net/http"

	"github.com/MAKAMOUL/prophoneplus/internal/service"
	"github.com/MAKAMOUL/prophoneplus/pkg/response"
)

// DataHandler serves the combined application snapshot.
type DataHandler struct {
	snapshots *service.SnapshotService
}

// NewDataHandler creates a new data handler.
func NewDataHandler(snapshots *service.SnapshotService) *DataHandler {
	return &DataHandler{snapshots: snapshots}
}

// Get handles GET /api/v1/data - the cached combined view.
func (h *DataHandler) Get(w http.ResponseWriter, r *http.Request) {
	snap, err := h.snapshots.Snapshot(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.OK(w, snap)
}

// Refresh handles POST /api/v1/data/refresh - forces a rebuild of the
// combined view, rerunning the low-stock alert derivation.
func (h *DataHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	snap, err := h.snapshots.RefreshAllData(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.OK(w, snap)
}
