package handler

import (
	"net/http"

	"github.com/MAKAMOUL/prophoneplus/internal/service"
	"github.com/MAKAMOUL/prophoneplus/pkg/apierror"
	"github.com/MAKAMOUL/prophoneplus/pkg/response"

	"github.com/go-chi/chi/v5"
)

// AlertHandler handles low-stock alert HTTP requests.
type AlertHandler struct {
	alerts    *service.AlertService
	snapshots *service.SnapshotService
}

// NewAlertHandler creates a new alert handler.
func NewAlertHandler(alerts *service.AlertService, snapshots *service.SnapshotService) *AlertHandler {
	return &AlertHandler{
		alerts:    alerts,
		snapshots: snapshots,
	}
}

// List handles GET /api/v1/alerts
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	snap, err := h.snapshots.Snapshot(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.OK(w, snap.Alerts)
}

// Dismiss handles POST /api/v1/alerts/{id}/dismiss
func (h *AlertHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.Error(w, apierror.BadRequest("id is required"))
		return
	}

	if err := h.alerts.DismissAlert(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	h.snapshots.Invalidate(r.Context())
	response.NoContent(w)
}
