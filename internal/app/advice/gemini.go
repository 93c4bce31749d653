package advice

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"google.golang.org/genai"

	"github.com/lingvolab/lingvo/internal/domain"
)

// Generator produces tutor text for a prompt. The Gemini client satisfies
// it in production; tests substitute a stub.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiGenerator calls the Gemini API, walking an ordered model fallback
// chain: quota and not-found failures move to the next model, anything
// else fails immediately.
type GeminiGenerator struct {
	client *genai.Client
	models []string
}

// DefaultModels is the fallback chain, best model first.
var DefaultModels = []string{
	"gemini-2.0-flash",
	"gemini-flash-latest",
	"gemini-pro-latest",
}

// NewGeminiGenerator creates the Gemini-backed generator.
func NewGeminiGenerator(ctx context.Context, apiKey string, models []string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	if len(models) == 0 {
		models = DefaultModels
	}
	return &GeminiGenerator{client: client, models: models}, nil
}

// Generate runs the prompt through the fallback chain.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: prompt}},
	}}

	var lastErr error
	for _, model := range g.models {
		result, err := g.client.Models.GenerateContent(ctx, model, contents, nil)
		if err == nil {
			return result.Text(), nil
		}
		if retriableModelError(err) {
			log.Printf("[advice] model %s unavailable, trying next: %v", model, err)
			lastErr = err
			continue
		}
		return "", err
	}
	if lastErr != nil {
		return "", mapQuota(lastErr)
	}
	return "", domain.ErrAdviceDisabled
}

// retriableModelError reports whether the next model in the chain should
// be tried: quota exhaustion or a model the account cannot see.
func retriableModelError(err error) bool {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code == http.StatusNotFound
	}
	return false
}

// mapQuota converts a rate-limit failure into the domain quota sentinel.
func mapQuota(err error) error {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return domain.ErrAdviceQuota
	}
	return err
}
