package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"

	"github.com/street-spirit/shrine-backend/internal/storage"
)

// maxWebhookBody bounds the payload read from Stripe.
const maxWebhookBody = 64 << 10

// WebhookHandler receives Stripe events and grants credits on completed
// checkouts. This is the only path that ever calls Grant.
type WebhookHandler struct {
	credits       storage.CreditStore
	signingSecret string
}

// NewWebhookHandler constructs the handler.
func NewWebhookHandler(credits storage.CreditStore, signingSecret string) *WebhookHandler {
	return &WebhookHandler{credits: credits, signingSecret: signingSecret}
}

// Register attaches the webhook route to the mux.
func (h *WebhookHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/webhooks/stripe", h.handleStripe)
}

func (h *WebhookHandler) handleStripe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.signingSecret == "" {
		log.Printf("stripe webhook called but STRIPE_WEBHOOK_SECRET is not configured")
		http.Error(w, "webhook not configured", http.StatusInternalServerError)
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "read error", http.StatusServiceUnavailable)
		return
	}
	event, err := webhook.ConstructEventWithOptions(payload, r.Header.Get("Stripe-Signature"), h.signingSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		log.Printf("webhook signature verification failed: %v", err)
		http.Error(w, "signature verification failed", http.StatusBadRequest)
		return
	}

	if event.Type == "checkout.session.completed" {
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			log.Printf("webhook: decode checkout session: %v", err)
			http.Error(w, "malformed event", http.StatusBadRequest)
			return
		}
		// The checkout link carries the user through client_reference_id;
		// metadata is the fallback.
		userID := session.ClientReferenceID
		if userID == "" {
			userID = session.Metadata["user_id"]
		}
		if userID == "" {
			log.Printf("webhook: no user reference in session %s", session.ID)
		} else if err := h.credits.Grant(r.Context(), userID, 1); err != nil {
			log.Printf("webhook: failed to grant credit to %s: %v", userID, err)
			http.Error(w, "database error", http.StatusInternalServerError)
			return
		} else {
			log.Printf("webhook: granted 1 credit to %s", userID)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]bool{"received": true}); err != nil {
		log.Printf("webhook: encode ack: %v", err)
	}
}
