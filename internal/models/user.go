package models

import "time"

// User captures application-facing fields for a shrine visitor, anonymous or registered.
type User struct {
	ID             string    `json:"id"`
	Email          *string   `json:"email,omitempty"`
	IsAnonymous    bool      `json:"is_anonymous"`
	ReadingsCount  int       `json:"readings_count"`
	StreakDays     int       `json:"streak_days"`
	LastActiveDate *string   `json:"last_active_date,omitempty"`
	PasswordHash   string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// DateLayout is the calendar-day format used for streaks and goshuin awards.
const DateLayout = "2006-01-02"
