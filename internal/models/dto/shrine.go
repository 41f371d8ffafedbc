package dto

import "github.com/street-spirit/shrine-backend/internal/models"

type FortuneRequest struct {
	Input string `json:"input"`
	// PaymentConfirmed is set by the client after returning from a completed
	// checkout redirect with a recovered pending worry. The credit debit is
	// skipped because the payment was settled externally.
	PaymentConfirmed bool `json:"payment_confirmed,omitempty"`
}

type FortuneResponse struct {
	Reading        models.Reading `json:"reading"`
	GoshuinAwarded bool           `json:"goshuin_awarded"`
}

type ProfileResponse struct {
	User    models.User `json:"user"`
	Credits int         `json:"credits"`
}

type EmaRequest struct {
	Content  string `json:"content"`
	IsPublic *bool  `json:"is_public,omitempty"`
}

type ZazenRequest struct {
	CourseID        string `json:"course_id"`
	DurationSeconds int    `json:"duration_seconds"`
}
