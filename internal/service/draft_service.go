package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shorlog-studio/internal/models"
	"github.com/shorlog-studio/internal/repository"
	"github.com/shorlog-studio/internal/validation"
)

// draftService is the concrete implementation of DraftService
type draftService struct {
	draftRepo repository.DraftRepository
	imageRepo repository.ImageRepository
	log       zerolog.Logger
}

func newDraftService(repos *repository.Repositories, log zerolog.Logger) *draftService {
	return &draftService{
		draftRepo: repos.Draft,
		imageRepo: repos.Image,
		log:       log.With().Str("service", "draft").Logger(),
	}
}

// List returns the user's drafts, newest first
func (s *draftService) List(ctx context.Context, userID string) ([]models.Draft, error) {
	drafts, err := s.draftRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}

	out := make([]models.Draft, 0, len(drafts))
	for _, d := range drafts {
		out = append(out, *d)
	}
	return out, nil
}

// Get returns one draft or ErrNotFound
func (s *draftService) Get(ctx context.Context, userID, id string) (*models.Draft, error) {
	draft, err := s.draftRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	if draft == nil {
		return nil, ErrNotFound
	}
	return draft, nil
}

// Create saves a draft. The image references are resolved to their URLs so
// the draft can be rebuilt later without the original files.
func (s *draftService) Create(ctx context.Context, userID string, req *models.DraftRequest) (*models.Draft, error) {
	if errs := validation.ValidateDraft(req); len(errs) > 0 {
		return nil, errs
	}

	images, err := s.imageRepo.GetByIDs(ctx, userID, req.ImageIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve images: %w", err)
	}
	if len(images) != len(req.ImageIDs) {
		return nil, validation.Errors{{Field: "imageIds", Message: "unknown image"}}
	}

	thumbnails := make([]string, len(images))
	for i, img := range images {
		thumbnails[i] = img.ImageURL
	}

	draft := &models.Draft{
		ID:            uuid.New().String(),
		UserID:        userID,
		Content:       req.Content,
		ImageIDs:      req.ImageIDs,
		ThumbnailURLs: thumbnails,
		Hashtags:      normalizeHashtags(req.Hashtags),
		CreatedAt:     time.Now().UTC(),
	}

	created, err := s.draftRepo.CreateWithinLimit(ctx, draft, models.MaxDrafts)
	if err != nil {
		return nil, fmt.Errorf("failed to create draft: %w", err)
	}
	if !created {
		return nil, ErrDraftLimitReached
	}

	s.log.Info().Str("draft_id", draft.ID).Str("user_id", userID).Int("images", len(images)).Msg("Draft saved")
	return draft, nil
}

// Delete removes a draft or returns ErrNotFound
func (s *draftService) Delete(ctx context.Context, userID, id string) error {
	deleted, err := s.draftRepo.Delete(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

func normalizeHashtags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, validation.NormalizeHashtag(t))
	}
	return out
}
