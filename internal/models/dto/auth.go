package dto

import "github.com/street-spirit/shrine-backend/internal/models"

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	// PreviousAnonymousID carries the visitor's earlier anonymous identity so the
	// server can reassign its readings to the new account.
	PreviousAnonymousID string `json:"previous_anonymous_id,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}
