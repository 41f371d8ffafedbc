package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/street-spirit/shrine-backend/internal/http/respond"
	"github.com/street-spirit/shrine-backend/internal/models"
	"github.com/street-spirit/shrine-backend/internal/models/dto"
	"github.com/street-spirit/shrine-backend/internal/shrine"
	"github.com/street-spirit/shrine-backend/internal/storage"
)

// ShrineHandler serves the profile, stamp book, meditation log, and
// achievements endpoints.
type ShrineHandler struct {
	store   storage.Store
	service *shrine.Service
}

// NewShrineHandler constructs the handler.
func NewShrineHandler(store storage.Store, service *shrine.Service) *ShrineHandler {
	return &ShrineHandler{store: store, service: service}
}

// Register attaches the routes to the mux.
func (h *ShrineHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/me", h.handleProfile)
	mux.HandleFunc("/api/goshuin", h.handleGoshuin)
	mux.HandleFunc("/api/zazen", h.handleZazen)
	mux.HandleFunc("/api/achievements", h.handleAchievements)
}

func (h *ShrineHandler) handleProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	claims, ok := requireUser(w, r)
	if !ok {
		return
	}
	user, err := h.store.FindUserByID(r.Context(), claims.UserID)
	if err != nil {
		respond.Error(w, http.StatusNotFound, "user not found")
		return
	}
	credits, err := h.store.Balance(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("fetch balance for %s: %v", claims.UserID, err)
		respond.Error(w, http.StatusInternalServerError, "failed to fetch balance")
		return
	}
	respond.JSON(w, http.StatusOK, "profile", dto.ProfileResponse{User: user, Credits: credits})
}

func (h *ShrineHandler) handleGoshuin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	claims, ok := requireUser(w, r)
	if !ok {
		return
	}
	entries, err := h.store.GoshuinHistory(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("fetch goshuin for %s: %v", claims.UserID, err)
		respond.Error(w, http.StatusInternalServerError, "failed to fetch stamp book")
		return
	}
	respond.JSON(w, http.StatusOK, "stamp book", entries)
}

// handleZazen records a meditation timer that ran to natural completion. The
// client never reports early stops.
func (h *ShrineHandler) handleZazen(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	claims, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req dto.ZazenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	minutes, known := models.ZazenCourses[req.CourseID]
	if !known {
		respond.Error(w, http.StatusBadRequest, "unknown course")
		return
	}
	if req.DurationSeconds != minutes*60 {
		respond.Error(w, http.StatusBadRequest, "duration does not match course")
		return
	}

	session, err := h.store.RecordZazen(r.Context(), models.ZazenSession{
		UserID:          claims.UserID,
		CourseID:        req.CourseID,
		DurationSeconds: req.DurationSeconds,
	})
	if err != nil {
		log.Printf("record zazen for %s: %v", claims.UserID, err)
		respond.Error(w, http.StatusInternalServerError, "failed to record session")
		return
	}
	respond.JSON(w, http.StatusCreated, "session recorded", session)
}

func (h *ShrineHandler) handleAchievements(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	claims, ok := requireUser(w, r)
	if !ok {
		return
	}
	unlocked, err := h.service.Achievements(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("achievements for %s: %v", claims.UserID, err)
		respond.Error(w, http.StatusInternalServerError, "failed to compute achievements")
		return
	}
	respond.JSON(w, http.StatusOK, "achievements", unlocked)
}
