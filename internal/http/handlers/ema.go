package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/street-spirit/shrine-backend/internal/http/respond"
	"github.com/street-spirit/shrine-backend/internal/models"
	"github.com/street-spirit/shrine-backend/internal/models/dto"
	"github.com/street-spirit/shrine-backend/internal/storage"
)

// emaWallLimit caps how many wishes the public wall returns per poll.
const emaWallLimit = 50

// EmaHandler owns the community wish wall.
type EmaHandler struct {
	store storage.EmaStore
}

// NewEmaHandler constructs the handler.
func NewEmaHandler(store storage.EmaStore) *EmaHandler {
	return &EmaHandler{store: store}
}

// Register attaches ema routes to the mux.
func (h *EmaHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/ema", h.handleEma)
	mux.HandleFunc("/api/ema/{id}/like", h.handleLike)
}

func (h *EmaHandler) handleEma(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleRecent(w, r)
	case http.MethodPost:
		h.handlePost(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleRecent serves the wall. Public, poll-friendly; staleness up to the
// client's poll interval is acceptable.
func (h *EmaHandler) handleRecent(w http.ResponseWriter, r *http.Request) {
	wishes, err := h.store.RecentEma(r.Context(), emaWallLimit)
	if err != nil {
		log.Printf("fetch ema wall: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to fetch wishes")
		return
	}
	respond.JSON(w, http.StatusOK, "wishes", wishes)
}

func (h *EmaHandler) handlePost(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req dto.EmaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		respond.Error(w, http.StatusBadRequest, "content is required")
		return
	}
	if runes := []rune(content); len(runes) > models.EmaMaxRunes {
		content = string(runes[:models.EmaMaxRunes])
	}
	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	wish, err := h.store.PostEma(r.Context(), models.EmaWish{
		UserID:   claims.UserID,
		Content:  content,
		IsPublic: isPublic,
	})
	if err != nil {
		log.Printf("post ema for %s: %v", claims.UserID, err)
		respond.Error(w, http.StatusInternalServerError, "failed to hang the wish")
		return
	}
	respond.JSON(w, http.StatusCreated, "wish hung on the wall", wish)
}

func (h *EmaHandler) handleLike(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireUser(w, r); !ok {
		return
	}
	if err := h.store.LikeEma(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "wish not found")
			return
		}
		log.Printf("like ema %s: %v", r.PathValue("id"), err)
		respond.Error(w, http.StatusInternalServerError, "failed to like the wish")
		return
	}
	respond.JSON(w, http.StatusOK, "wish liked", nil)
}
