package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/shorlog-studio/internal/database"
	"github.com/shorlog-studio/internal/models"
)

// ImageRepository defines the interface for stored image records
type ImageRepository interface {
	CreateBatch(ctx context.Context, images []*models.Image) error
	GetByIDs(ctx context.Context, ownerID string, ids []string) ([]*models.Image, error)
	ListOrphans(ctx context.Context, olderThan time.Time, limit int) ([]*models.Image, error)
	Delete(ctx context.Context, id string) error
}

// DraftRepository defines the interface for draft data operations
type DraftRepository interface {
	// CreateWithinLimit inserts the draft only while the user owns fewer than
	// limit drafts. It reports false when the limit was already reached.
	CreateWithinLimit(ctx context.Context, draft *models.Draft, limit int) (bool, error)
	GetByID(ctx context.Context, userID, id string) (*models.Draft, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Draft, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	Delete(ctx context.Context, userID, id string) (bool, error)
}

// ShorlogRepository defines the interface for shorlog data operations
type ShorlogRepository interface {
	// Create inserts the shorlog and marks its images as attached in one transaction.
	Create(ctx context.Context, shorlog *models.Shorlog) error
	GetByID(ctx context.Context, id string) (*models.Shorlog, error)
	ListRecent(ctx context.Context, userID string, limit int) ([]models.Candidate, error)
}

// BlogRepository defines the interface for blog data operations
type BlogRepository interface {
	Create(ctx context.Context, blog *models.Blog) error
	GetByID(ctx context.Context, id string) (*models.Blog, error)
	ListRecent(ctx context.Context, userID string, limit int) ([]models.Candidate, error)
}

// LinkRepository defines the interface for shorlog/blog cross-references
type LinkRepository interface {
	// Create reports false when the pair is already linked.
	Create(ctx context.Context, link *models.Link) (bool, error)
	ListByShorlog(ctx context.Context, shorlogID string) ([]*models.Link, error)
	ListByBlog(ctx context.Context, blogID string) ([]*models.Link, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	Image   ImageRepository
	Draft   DraftRepository
	Shorlog ShorlogRepository
	Blog    BlogRepository
	Link    LinkRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Image:   NewImageRepo(db),
		Draft:   NewDraftRepo(db),
		Shorlog: NewShorlogRepo(db),
		Blog:    NewBlogRepo(db),
		Link:    NewLinkRepo(db),
	}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// snippet shortens content to a single-line title for candidate lists
func snippet(content string, max int) string {
	runes := []rune(content)
	for i, r := range runes {
		if r == '\n' {
			runes = runes[:i]
			break
		}
	}
	if len(runes) <= max {
		return string(runes)
	}
	return string(runes[:max]) + "…"
}
