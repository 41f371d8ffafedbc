package storage

import (
	"time"

	"github.com/street-spirit/shrine-backend/internal/models"
)

// NextStreak applies the visit-streak rule to a user's recorded state.
// If the user was already active today the streak is unchanged; if the last
// visit was yesterday it grows by one; anything else starts over at one.
// The second return is today's date in models.DateLayout.
func NextStreak(lastActive *string, streak int, now time.Time) (int, string) {
	today := now.Format(models.DateLayout)
	if lastActive != nil && *lastActive == today {
		return streak, today
	}
	yesterday := now.AddDate(0, 0, -1).Format(models.DateLayout)
	if lastActive != nil && *lastActive == yesterday {
		return streak + 1, today
	}
	return 1, today
}
