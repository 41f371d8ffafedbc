package models

// Achievement condition types.
const (
	CondReadingCount = "reading_count"
	CondZazenMinutes = "zazen_minutes"
	CondGoshuinCount = "goshuin_count"
	CondStreakDays   = "streak_days"
)

// Achievement is a static milestone definition.
type Achievement struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Icon          string `json:"icon"`
	ConditionType string `json:"condition_type"`
	Threshold     int    `json:"threshold"`
}

// UserStats aggregates the counters achievements are judged against.
type UserStats struct {
	ReadingsCount int
	ZazenMinutes  int
	GoshuinCount  int
	StreakDays    int
}

// Achievements is the full milestone catalogue.
var Achievements = []Achievement{
	{ID: "first_light", Title: "First Light", Description: "Receive your first Oracle.", Icon: "Sparkles", ConditionType: CondReadingCount, Threshold: 1},
	{ID: "seeker", Title: "Seeker of Truth", Description: "Receive 10 Oracles.", Icon: "Scroll", ConditionType: CondReadingCount, Threshold: 10},
	{ID: "zen_novice", Title: "Zen Novice", Description: "Complete 10 minutes of mindfulness.", Icon: "Wind", ConditionType: CondZazenMinutes, Threshold: 10},
	{ID: "zen_master", Title: "Zen Master", Description: "Complete 100 minutes of mindfulness.", Icon: "Mountain", ConditionType: CondZazenMinutes, Threshold: 100},
	{ID: "streak_keeper", Title: "Keeping the Flame", Description: "Maintain a 3-day spiritual streak.", Icon: "Flame", ConditionType: CondStreakDays, Threshold: 3},
	{ID: "devoted_soul", Title: "Devoted Soul", Description: "Maintain a 7-day spiritual streak.", Icon: "Sun", ConditionType: CondStreakDays, Threshold: 7},
	{ID: "pilgrim", Title: "The Pilgrim", Description: "Collect 5 Goshuin stamps.", Icon: "Footprints", ConditionType: CondGoshuinCount, Threshold: 5},
}

// Unlocked returns the achievements the given stats satisfy, in catalogue order.
func Unlocked(stats UserStats) []Achievement {
	var out []Achievement
	for _, a := range Achievements {
		var value int
		switch a.ConditionType {
		case CondReadingCount:
			value = stats.ReadingsCount
		case CondZazenMinutes:
			value = stats.ZazenMinutes
		case CondGoshuinCount:
			value = stats.GoshuinCount
		case CondStreakDays:
			value = stats.StreakDays
		}
		if value >= a.Threshold {
			out = append(out, a)
		}
	}
	return out
}
