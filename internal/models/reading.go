package models

import "time"

// Reading is the immutable record of one fortune event. It is created exactly
// once per successful reading transaction and never updated; the owner may
// permanently delete it ("purify").
type Reading struct {
	ID           string        `json:"id"`
	UserID       string        `json:"user_id"`
	InputText    string        `json:"input_text"`
	FortuneLevel string        `json:"fortune_level"`
	Advice       FortuneResult `json:"advice_json"`
	LuckyItem    string        `json:"lucky_item"`
	GodName      string        `json:"god_name"`
	GodImageURL  *string       `json:"god_image_url,omitempty"`
	IsPaid       bool          `json:"is_paid"`
	CreatedAt    time.Time     `json:"created_at"`
}
