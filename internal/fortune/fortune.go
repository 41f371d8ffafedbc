// Package fortune turns a visitor's free-text worry into a structured omikuji
// via a single text-generation call.
package fortune

import (
	"context"
	"errors"

	"github.com/street-spirit/shrine-backend/internal/models"
)

// ErrParse indicates the model answered with something that is not the fixed
// fortune schema. Not retried automatically in-flow.
var ErrParse = errors.New("fortune: malformed model output")

// ErrUnavailable indicates an upstream transport or quota failure. Not retried
// automatically in-flow.
var ErrUnavailable = errors.New("fortune: oracle unavailable")

// Generator produces one fortune per worry.
type Generator interface {
	Generate(ctx context.Context, worry string) (models.FortuneResult, error)
}
