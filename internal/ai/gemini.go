package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shorlog-studio/internal/config"
	"google.golang.org/genai"
)

// ErrNotConfigured is returned when no API key is available
var ErrNotConfigured = errors.New("ai assistant is not configured")

// Generator produces a text completion for a prompt
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiGenerator calls the Gemini API. On rate limiting it retries the same
// key a few times and then moves on to the next configured key.
type GeminiGenerator struct {
	apiKeys          []string
	model            string
	timeout          time.Duration
	maxRetriesPerKey int
	retryDelay       time.Duration
	log              zerolog.Logger

	mu      sync.Mutex
	clients map[string]*genai.Client
}

// NewGeminiGenerator creates a generator from the AI configuration
func NewGeminiGenerator(cfg config.AIConfig, log zerolog.Logger) *GeminiGenerator {
	return &GeminiGenerator{
		apiKeys:          cfg.APIKeys,
		model:            cfg.Model,
		timeout:          cfg.Timeout,
		maxRetriesPerKey: 3,
		retryDelay:       2 * time.Second,
		log:              log.With().Str("component", "gemini").Logger(),
		clients:          make(map[string]*genai.Client),
	}
}

// Generate sends a single-turn text prompt and returns the concatenated text parts
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if len(g.apiKeys) == 0 {
		return "", ErrNotConfigured
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	contents := []*genai.Content{{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{genai.NewPartFromText(prompt)},
	}}
	genCfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.7),
	}

	result, err := g.generateWithRetry(ctx, contents, genCfg)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	if len(result.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	var sb strings.Builder
	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				sb.WriteString(part.Text)
			}
		}
		if sb.Len() > 0 {
			break
		}
	}

	if sb.Len() == 0 {
		return "", fmt.Errorf("no text in response")
	}
	return strings.TrimSpace(sb.String()), nil
}

func (g *GeminiGenerator) generateWithRetry(
	ctx context.Context,
	contents []*genai.Content,
	genCfg *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	var lastErr error

	for keyIndex, apiKey := range g.apiKeys {
		client, err := g.client(ctx, apiKey)
		if err != nil {
			g.log.Warn().Err(err).Int("key", keyIndex+1).Msg("Failed to create Gemini client")
			lastErr = err
			continue
		}

		for attempt := 1; attempt <= g.maxRetriesPerKey; attempt++ {
			result, err := client.Models.GenerateContent(ctx, g.model, contents, genCfg)
			if err == nil {
				return result, nil
			}
			lastErr = err

			if !isRateLimited(err) {
				return nil, err
			}

			g.log.Warn().
				Int("key", keyIndex+1).
				Int("attempt", attempt).
				Msg("Gemini rate limit hit")

			if attempt < g.maxRetriesPerKey {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(g.retryDelay):
				}
			}
		}
	}

	return nil, fmt.Errorf("all %d API keys exhausted, last error: %w", len(g.apiKeys), lastErr)
}

func (g *GeminiGenerator) client(ctx context.Context, apiKey string) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if c, ok := g.clients[apiKey]; ok {
		return c, nil
	}

	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	g.clients[apiKey] = c
	return c, nil
}

// isRateLimited matches the 429 / quota errors Gemini returns
func isRateLimited(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "resource_exhausted")
}
