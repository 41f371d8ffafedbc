package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/street-spirit/shrine-backend/internal/fortune"
	"github.com/street-spirit/shrine-backend/internal/http/respond"
	"github.com/street-spirit/shrine-backend/internal/models/dto"
	"github.com/street-spirit/shrine-backend/internal/shrine"
	"github.com/street-spirit/shrine-backend/internal/storage"
)

// FortuneHandler runs the reading transaction for an authenticated visitor.
type FortuneHandler struct {
	service     *shrine.Service
	paymentLink string
}

// NewFortuneHandler constructs the handler. paymentLink is surfaced to clients
// rejected for insufficient credit.
func NewFortuneHandler(service *shrine.Service, paymentLink string) *FortuneHandler {
	return &FortuneHandler{service: service, paymentLink: paymentLink}
}

// Register attaches the fortune route to the mux.
func (h *FortuneHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/fortune", h.handleFortune)
}

func (h *FortuneHandler) handleFortune(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	claims, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req dto.FortuneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	worry := strings.TrimSpace(req.Input)
	if worry == "" {
		respond.Error(w, http.StatusBadRequest, "input is required")
		return
	}

	outcome, err := h.service.PerformReading(r.Context(), claims.UserID, worry, req.PaymentConfirmed)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrInsufficientCredit):
			respond.JSON(w, http.StatusPaymentRequired, "insufficient credits", map[string]string{
				"payment_link": h.paymentLink,
			})
		case errors.Is(err, storage.ErrLedgerUnavailable):
			respond.Error(w, http.StatusServiceUnavailable, "the offering box is closed, please try again")
		case errors.Is(err, fortune.ErrParse), errors.Is(err, fortune.ErrUnavailable):
			respond.Error(w, http.StatusBadGateway, "the oracle is silent, please try again later")
		default:
			log.Printf("perform reading for user %s: %v", claims.UserID, err)
			respond.Error(w, http.StatusInternalServerError, "failed to complete the reading")
		}
		return
	}

	respond.JSON(w, http.StatusCreated, "reading complete", dto.FortuneResponse{
		Reading:        outcome.Reading,
		GoshuinAwarded: outcome.GoshuinAwarded,
	})
}
