package fortune

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/street-spirit/shrine-backend/internal/models"
)

var _ Generator = (*GeminiGenerator)(nil)

// GeminiGenerator calls the Gemini API once per reading, single-turn, no
// streaming, no conversation state.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator builds a generator for the given API key and model name.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("init gemini client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

// Generate produces one fortune for the worry. Transport and quota failures
// surface as ErrUnavailable, malformed answers as ErrParse.
func (g *GeminiGenerator) Generate(ctx context.Context, worry string) (models.FortuneResult, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(BuildPrompt(worry)), nil)
	if err != nil {
		return models.FortuneResult{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	text := resp.Text()
	if text == "" {
		return models.FortuneResult{}, fmt.Errorf("%w: empty response", ErrParse)
	}
	return ParseResult(text)
}
