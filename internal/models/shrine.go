package models

import "time"

// DefaultGoshuinDesign is the stamp design awarded today; future designs rotate here.
const DefaultGoshuinDesign = "default_ver1"

// GoshuinEntry marks one shrine visit. At most one entry exists per user per
// calendar day, awarded the first time a reading completes that day.
type GoshuinEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	AwardedAt time.Time `json:"awarded_at"`
	DesignID  string    `json:"design_id"`
}

// EmaMaxRunes caps a wish plaque's content length.
const EmaMaxRunes = 140

// EmaWish is a short wish note hung on the community wall, append-only.
type EmaWish struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Content    string    `json:"content"`
	IsPublic   bool      `json:"is_public"`
	LikesCount int       `json:"likes_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// Zazen course identifiers and their lengths in minutes.
var ZazenCourses = map[string]int{
	"beginner":     5,
	"intermediate": 15,
	"advanced":     30,
}

// ZazenSession records a meditation timer that ran to natural completion.
// Early stops are never recorded.
type ZazenSession struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	CourseID        string    `json:"course_id"`
	DurationSeconds int       `json:"duration_seconds"`
	CompletedAt     time.Time `json:"completed_at"`
}
