package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/street-spirit/shrine-backend/internal/http/respond"
	"github.com/street-spirit/shrine-backend/internal/storage"
)

// ReadingsHandler lists and purifies a visitor's past readings.
type ReadingsHandler struct {
	store storage.ReadingStore
}

// NewReadingsHandler constructs the handler.
func NewReadingsHandler(store storage.ReadingStore) *ReadingsHandler {
	return &ReadingsHandler{store: store}
}

// Register attaches reading routes to the mux.
func (h *ReadingsHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/readings", h.handleList)
	mux.HandleFunc("/api/readings/{id}", h.handleDelete)
}

func (h *ReadingsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	claims, ok := requireUser(w, r)
	if !ok {
		return
	}
	readings, err := h.store.ListReadings(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("list readings for %s: %v", claims.UserID, err)
		respond.Error(w, http.StatusInternalServerError, "failed to fetch readings")
		return
	}
	respond.JSON(w, http.StatusOK, "readings", readings)
}

// handleDelete purifies a reading: the record is permanently discarded.
func (h *ReadingsHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	claims, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteReading(r.Context(), claims.UserID, r.PathValue("id")); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "reading not found")
			return
		}
		log.Printf("delete reading for %s: %v", claims.UserID, err)
		respond.Error(w, http.StatusInternalServerError, "failed to delete reading")
		return
	}
	respond.JSON(w, http.StatusOK, "reading purified", nil)
}
