package handler

import (
	"fmt"
	"log"
	"net/http"

	"github.com/MAKAMOUL/prophoneplus/internal/repository"
	syncpkg "github.com/MAKAMOUL/prophoneplus/internal/sync"
	"github.com/MAKAMOUL/prophoneplus/pkg/apierror"
	"github.com/MAKAMOUL/prophoneplus/pkg/response"
)

// SyncHandler handles synchronization HTTP requests.
type SyncHandler struct {
	engine    *syncpkg.Engine
	scheduler *syncpkg.Scheduler
	broker    *syncpkg.Broker
	store     *repository.Store
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(engine *syncpkg.Engine, scheduler *syncpkg.Scheduler, broker *syncpkg.Broker, store *repository.Store) *SyncHandler {
	return &SyncHandler{
		engine:    engine,
		scheduler: scheduler,
		broker:    broker,
		store:     store,
	}
}

// SyncStatusResponse represents the current synchronization state.
type SyncStatusResponse struct {
	Status     string `json:"status"`
	Configured bool   `json:"configured"`
	Unsynced   int    `json:"unsynced"`
}

// Status handles GET /api/v1/sync/status
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	unsynced, err := h.store.UnsyncedCount(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, SyncStatusResponse{
		Status:     string(h.engine.Status()),
		Configured: h.engine.Configured(),
		Unsynced:   unsynced,
	})
}

// Run handles POST /api/v1/sync/run - triggers an immediate cycle.
// The cycle runs asynchronously; callers watch the outcome through the
// status endpoints.
func (h *SyncHandler) Run(w http.ResponseWriter, r *http.Request) {
	if !h.engine.Configured() {
		response.Error(w, apierror.Conflict("no remote store configured"))
		return
	}

	h.scheduler.RunNow()
	response.JSON(w, http.StatusAccepted, map[string]interface{}{
		"status": "scheduled",
	})
}

// Events handles GET /api/v1/sync/events - streams status transitions as
// server-sent events. The current status is sent first so late joiners
// see the live state immediately.
func (h *SyncHandler) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		response.Error(w, apierror.InternalError("streaming unsupported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	ch, cancel := h.broker.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: status\ndata: %s\n\n", h.broker.Current())
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case status, ok := <-ch:
			if !ok {
				return
			}
			if _, err := fmt.Fprintf(w, "event: status\ndata: %s\n\n", status); err != nil {
				log.Printf("[SyncHandler] Event stream write failed: %v", err)
				return
			}
			flusher.Flush()
		}
	}
}
