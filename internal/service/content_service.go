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

// contentService is the concrete implementation of ContentService
type contentService struct {
	imageRepo   repository.ImageRepository
	shorlogRepo repository.ShorlogRepository
	blogRepo    repository.BlogRepository
	linkRepo    repository.LinkRepository
	log         zerolog.Logger
}

func newContentService(repos *repository.Repositories, log zerolog.Logger) *contentService {
	return &contentService{
		imageRepo:   repos.Image,
		shorlogRepo: repos.Shorlog,
		blogRepo:    repos.Blog,
		linkRepo:    repos.Link,
		log:         log.With().Str("service", "content").Logger(),
	}
}

// CreateShorlog publishes a shorlog built from images the user uploaded
func (s *contentService) CreateShorlog(ctx context.Context, userID string, req *models.CreateShorlogRequest) (*models.Shorlog, error) {
	if errs := validation.ValidateShorlog(req); len(errs) > 0 {
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

	shorlog := &models.Shorlog{
		ID:            uuid.New().String(),
		UserID:        userID,
		Content:       req.Content,
		ImageIDs:      req.ImageIDs,
		ThumbnailURLs: thumbnails,
		Hashtags:      normalizeHashtags(req.Hashtags),
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.shorlogRepo.Create(ctx, shorlog); err != nil {
		return nil, fmt.Errorf("failed to create shorlog: %w", err)
	}

	s.log.Info().Str("shorlog_id", shorlog.ID).Str("user_id", userID).Int("images", len(images)).Msg("Shorlog published")
	return shorlog, nil
}

// GetShorlog returns a shorlog or ErrNotFound
func (s *contentService) GetShorlog(ctx context.Context, id string) (*models.Shorlog, error) {
	shorlog, err := s.shorlogRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get shorlog: %w", err)
	}
	if shorlog == nil {
		return nil, ErrNotFound
	}
	return shorlog, nil
}

// CreateBlog stores a blog post
func (s *contentService) CreateBlog(ctx context.Context, userID string, req *models.CreateBlogRequest) (*models.Blog, error) {
	if errs := validation.ValidateBlog(req); len(errs) > 0 {
		return nil, errs
	}

	blog := &models.Blog{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     req.Title,
		Content:   req.Content,
		Hashtags:  normalizeHashtags(req.Hashtags),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.blogRepo.Create(ctx, blog); err != nil {
		return nil, fmt.Errorf("failed to create blog: %w", err)
	}
	return blog, nil
}

// RecentCandidates lists the user's newest content of one type. The limit is
// clamped to RecentCandidateLimit.
func (s *contentService) RecentCandidates(ctx context.Context, userID string, contentType models.ContentType, limit int) ([]models.Candidate, error) {
	if limit <= 0 || limit > models.RecentCandidateLimit {
		limit = models.RecentCandidateLimit
	}

	var (
		candidates []models.Candidate
		err        error
	)
	switch contentType {
	case models.ContentShorlog:
		candidates, err = s.shorlogRepo.ListRecent(ctx, userID, limit)
	case models.ContentBlog:
		candidates, err = s.blogRepo.ListRecent(ctx, userID, limit)
	default:
		return nil, validation.Errors{{Field: "type", Message: "invalid content type", Value: contentType}}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list recent %s: %w", contentType, err)
	}
	if candidates == nil {
		candidates = []models.Candidate{}
	}
	return candidates, nil
}

// Link stores a reference between a shorlog and a blog, both owned by userID.
// The request may name either side as the source.
func (s *contentService) Link(ctx context.Context, userID string, req *models.LinkRequest) (*models.Link, error) {
	if errs := validation.ValidateLink(req); len(errs) > 0 {
		return nil, errs
	}

	shorlogID, blogID := req.SourceID, req.TargetID
	if req.SourceType == models.ContentBlog {
		shorlogID, blogID = req.TargetID, req.SourceID
	}

	shorlog, err := s.shorlogRepo.GetByID(ctx, shorlogID)
	if err != nil {
		return nil, fmt.Errorf("failed to get shorlog: %w", err)
	}
	blog, err := s.blogRepo.GetByID(ctx, blogID)
	if err != nil {
		return nil, fmt.Errorf("failed to get blog: %w", err)
	}
	if shorlog == nil || blog == nil || shorlog.UserID != userID || blog.UserID != userID {
		return nil, ErrNotFound
	}

	link := &models.Link{
		ID:        uuid.New().String(),
		ShorlogID: shorlogID,
		BlogID:    blogID,
		CreatedAt: time.Now().UTC(),
	}
	created, err := s.linkRepo.Create(ctx, link)
	if err != nil {
		return nil, fmt.Errorf("failed to create link: %w", err)
	}
	if !created {
		return nil, ErrAlreadyLinked
	}

	s.log.Info().Str("shorlog_id", shorlogID).Str("blog_id", blogID).Msg("Content linked")
	return link, nil
}
