package fortune

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/street-spirit/shrine-backend/internal/models"
)

// StripCodeFences removes markdown code-fence wrapping some models add around
// JSON answers.
func StripCodeFences(raw string) string {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}

// ParseResult decodes and validates a raw model answer against the fixed
// fortune schema. Any shortfall is ErrParse.
func ParseResult(raw string) (models.FortuneResult, error) {
	cleaned := StripCodeFences(raw)

	var result models.FortuneResult
	dec := json.NewDecoder(strings.NewReader(cleaned))
	if err := dec.Decode(&result); err != nil {
		return models.FortuneResult{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if err := validate(result); err != nil {
		return models.FortuneResult{}, err
	}
	return result, nil
}

func validate(r models.FortuneResult) error {
	if r.Fortune == "" || r.GodName == "" || r.LuckyItem == "" {
		return fmt.Errorf("%w: missing fortune, god_name, or lucky_item", ErrParse)
	}
	if r.Waka.Text == "" || r.Waka.Meaning == "" {
		return fmt.Errorf("%w: missing waka", ErrParse)
	}
	if !knownTier(r.Fortune) {
		return fmt.Errorf("%w: unknown fortune tier %q", ErrParse, r.Fortune)
	}
	a := r.Advice
	for _, field := range []string{a.Wish, a.Love, a.WaitingPerson, a.Business, a.Studies, a.Health, a.Housing, a.Travel, a.Proposal, a.LostItem} {
		if field == "" {
			return fmt.Errorf("%w: incomplete advice", ErrParse)
		}
	}
	return nil
}

func knownTier(fortune string) bool {
	for _, tier := range models.FortuneTiers {
		if strings.EqualFold(fortune, tier) {
			return true
		}
	}
	return false
}
