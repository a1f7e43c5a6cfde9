package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shorlog-studio/internal/ai"
	"github.com/shorlog-studio/internal/config"
	"github.com/shorlog-studio/internal/models"
	"github.com/shorlog-studio/internal/validation"
)

const keywordLimit = 10

// Cache stores suggestion responses between identical requests
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// suggestionService is the concrete implementation of SuggestionService
type suggestionService struct {
	generator ai.Generator
	cache     Cache
	ttl       time.Duration
	log       zerolog.Logger
}

func newSuggestionService(generator ai.Generator, cache Cache, cfg config.AIConfig, log zerolog.Logger) *suggestionService {
	return &suggestionService{
		generator: generator,
		cache:     cache,
		ttl:       cfg.CacheTTL,
		log:       log.With().Str("service", "suggestion").Logger(),
	}
}

// Suggest answers list modes with Results and text modes with Result. Cache
// failures are logged and never fail the request.
func (s *suggestionService) Suggest(ctx context.Context, req *models.SuggestRequest) (*models.SuggestResponse, error) {
	if errs := validation.ValidateSuggest(req); len(errs) > 0 {
		return nil, errs
	}
	if s.generator == nil {
		return nil, ErrAINotConfigured
	}

	key := cacheKey(req)
	if cached, ok := s.fromCache(ctx, key); ok {
		return cached, nil
	}

	text, err := s.generator.Generate(ctx, ai.BuildPrompt(req))
	if err != nil {
		return nil, fmt.Errorf("failed to generate suggestion: %w", err)
	}

	resp := buildResponse(req.Mode, text)
	s.toCache(ctx, key, resp)

	s.log.Debug().Str("mode", string(req.Mode)).Int("results", len(resp.Results)).Msg("Suggestion generated")
	return resp, nil
}

func buildResponse(mode models.AIMode, text string) *models.SuggestResponse {
	switch mode {
	case models.AIModeHashtag:
		items := ai.ParseList(text, 0)
		tags := make([]string, 0, models.MaxHashtags)
		seen := make(map[string]bool, len(items))
		for _, item := range items {
			tag := ai.CompactHashtag(validation.NormalizeHashtag(item))
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			tags = append(tags, tag)
			if len(tags) == models.MaxHashtags {
				break
			}
		}
		return &models.SuggestResponse{Results: tags}
	case models.AIModeKeyword:
		return &models.SuggestResponse{Results: ai.ParseList(text, keywordLimit)}
	default:
		return &models.SuggestResponse{Result: strings.Trim(strings.TrimSpace(text), "\"")}
	}
}

func (s *suggestionService) fromCache(ctx context.Context, key string) (*models.SuggestResponse, bool) {
	if s.cache == nil {
		return nil, false
	}

	val, found, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Msg("Suggestion cache read failed")
		return nil, false
	}
	if !found {
		return nil, false
	}

	var resp models.SuggestResponse
	if err := json.Unmarshal([]byte(val), &resp); err != nil {
		s.log.Warn().Err(err).Msg("Discarding malformed cached suggestion")
		return nil, false
	}
	return &resp, true
}

func (s *suggestionService) toCache(ctx context.Context, key string, resp *models.SuggestResponse) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(data), s.ttl); err != nil {
		s.log.Warn().Err(err).Msg("Suggestion cache write failed")
	}
}

func cacheKey(req *models.SuggestRequest) string {
	h := sha256.New()
	h.Write([]byte(req.Mode))
	h.Write([]byte{0})
	h.Write([]byte(req.Message))
	h.Write([]byte{0})
	h.Write([]byte(req.Content))
	return "ai:suggest:" + hex.EncodeToString(h.Sum(nil))
}
