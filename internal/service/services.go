package service

import (
	"context"
	"errors"
	"io"

	"github.com/rs/zerolog"
	"github.com/shorlog-studio/internal/ai"
	"github.com/shorlog-studio/internal/config"
	"github.com/shorlog-studio/internal/models"
	"github.com/shorlog-studio/internal/repository"
	"github.com/shorlog-studio/internal/storage"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDraftLimitReached = errors.New("draft limit reached")
	ErrPayloadTooLarge   = errors.New("batch exceeds the upload size limit")
	ErrAlreadyLinked     = errors.New("content is already linked")
	ErrAINotConfigured   = ai.ErrNotConfigured
)

// BatchFile is one file part of an upload batch
type BatchFile struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// ImageService defines the interface for batch image uploads
type ImageService interface {
	UploadBatch(ctx context.Context, ownerID string, orders []models.OrderDescriptor, files []BatchFile) ([]models.UploadedImage, error)
}

// DraftService defines the interface for draft management
type DraftService interface {
	List(ctx context.Context, userID string) ([]models.Draft, error)
	Get(ctx context.Context, userID, id string) (*models.Draft, error)
	Create(ctx context.Context, userID string, req *models.DraftRequest) (*models.Draft, error)
	Delete(ctx context.Context, userID, id string) error
}

// SuggestionService defines the interface for AI writing assistance
type SuggestionService interface {
	Suggest(ctx context.Context, req *models.SuggestRequest) (*models.SuggestResponse, error)
}

// ContentService defines the interface for shorlogs, blogs and cross-links
type ContentService interface {
	CreateShorlog(ctx context.Context, userID string, req *models.CreateShorlogRequest) (*models.Shorlog, error)
	GetShorlog(ctx context.Context, id string) (*models.Shorlog, error)
	CreateBlog(ctx context.Context, userID string, req *models.CreateBlogRequest) (*models.Blog, error)
	RecentCandidates(ctx context.Context, userID string, contentType models.ContentType, limit int) ([]models.Candidate, error)
	Link(ctx context.Context, userID string, req *models.LinkRequest) (*models.Link, error)
}

// JanitorService defines the interface for orphan image cleanup
type JanitorService interface {
	StartProcessor(ctx context.Context)
	StopProcessor()
	Sweep(ctx context.Context) (int, error)
}

// Services holds all service interfaces
type Services struct {
	Image      ImageService
	Draft      DraftService
	Suggestion SuggestionService
	Content    ContentService
	Janitor    JanitorService
}

// Dependencies bundles what the services are built from. Generator and Cache
// may be nil: suggestions are then unavailable or uncached.
type Dependencies struct {
	Repos     *repository.Repositories
	Store     storage.ImageStore
	Generator ai.Generator
	Cache     Cache
}

// NewServices creates all services
func NewServices(deps Dependencies, cfg *config.Config, log zerolog.Logger) *Services {
	return &Services{
		Image:      newImageService(deps.Repos.Image, deps.Store, cfg.Upload, log),
		Draft:      newDraftService(deps.Repos, log),
		Suggestion: newSuggestionService(deps.Generator, deps.Cache, cfg.AI, log),
		Content:    newContentService(deps.Repos, log),
		Janitor:    newJanitorService(deps.Repos.Image, deps.Store, cfg.Janitor, log),
	}
}
