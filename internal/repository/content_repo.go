package repository

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/shorlog-studio/internal/database"
	"github.com/shorlog-studio/internal/models"
)

const candidateTitleLength = 60

// shorlogRepo is the concrete implementation of ShorlogRepository
type shorlogRepo struct {
	db *database.DB
}

// NewShorlogRepo creates a new shorlog repository
func NewShorlogRepo(db *database.DB) ShorlogRepository {
	return &shorlogRepo{db: db}
}

// Create inserts a shorlog and marks its images attached
func (r *shorlogRepo) Create(ctx context.Context, shorlog *models.Shorlog) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO shorlogs (id, user_id, content, image_ids, hashtags, created_at)
			VALUES ($1, $2, $3, $4::uuid[], $5, $6)
		`
		if _, err := tx.ExecContext(ctx, query,
			shorlog.ID, shorlog.UserID, shorlog.Content,
			pq.Array(shorlog.ImageIDs), pq.Array(shorlog.Hashtags), shorlog.CreatedAt,
		); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx,
			`UPDATE images SET attached = TRUE WHERE id = ANY($1::uuid[])`,
			pq.Array(shorlog.ImageIDs),
		)
		return err
	})
}

// GetByID retrieves a shorlog with its image URLs resolved in image order
func (r *shorlogRepo) GetByID(ctx context.Context, id string) (*models.Shorlog, error) {
	query := `
		SELECT s.id, s.user_id, s.content, s.image_ids, s.hashtags, s.created_at,
			COALESCE(ARRAY(
				SELECT i.image_url FROM unnest(s.image_ids) WITH ORDINALITY AS u(image_id, pos)
				JOIN images i ON i.id = u.image_id
				ORDER BY u.pos
			), '{}')
		FROM shorlogs s WHERE s.id = $1
	`

	var shorlog models.Shorlog
	var imageIDs, hashtags, thumbnails pq.StringArray
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&shorlog.ID, &shorlog.UserID, &shorlog.Content, &imageIDs, &hashtags, &shorlog.CreatedAt, &thumbnails,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	shorlog.ImageIDs = []string(imageIDs)
	shorlog.Hashtags = []string(hashtags)
	shorlog.ThumbnailURLs = []string(thumbnails)
	return &shorlog, nil
}

// ListRecent returns the user's newest shorlogs as link candidates
func (r *shorlogRepo) ListRecent(ctx context.Context, userID string, limit int) ([]models.Candidate, error) {
	query := `
		SELECT s.id, s.content, s.created_at,
			COALESCE((SELECT i.image_url FROM images i WHERE i.id = s.image_ids[1]), '')
		FROM shorlogs s
		WHERE s.user_id = $1
		ORDER BY s.created_at DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []models.Candidate
	for rows.Next() {
		var c models.Candidate
		var content string
		if err := rows.Scan(&c.ID, &content, &c.CreatedAt, &c.ThumbnailURL); err != nil {
			return nil, err
		}
		c.Type = models.ContentShorlog
		c.Title = snippet(content, candidateTitleLength)
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// blogRepo is the concrete implementation of BlogRepository
type blogRepo struct {
	db *database.DB
}

// NewBlogRepo creates a new blog repository
func NewBlogRepo(db *database.DB) BlogRepository {
	return &blogRepo{db: db}
}

// Create inserts a blog
func (r *blogRepo) Create(ctx context.Context, blog *models.Blog) error {
	query := `
		INSERT INTO blogs (id, user_id, title, content, hashtags, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		blog.ID, blog.UserID, blog.Title, blog.Content, pq.Array(blog.Hashtags), blog.CreatedAt,
	)
	return err
}

// GetByID retrieves a blog by ID
func (r *blogRepo) GetByID(ctx context.Context, id string) (*models.Blog, error) {
	query := `SELECT id, user_id, title, content, hashtags, created_at FROM blogs WHERE id = $1`

	var blog models.Blog
	var hashtags pq.StringArray
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&blog.ID, &blog.UserID, &blog.Title, &blog.Content, &hashtags, &blog.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	blog.Hashtags = []string(hashtags)
	return &blog, nil
}

// ListRecent returns the user's newest blogs as link candidates
func (r *blogRepo) ListRecent(ctx context.Context, userID string, limit int) ([]models.Candidate, error) {
	query := `
		SELECT id, title, created_at FROM blogs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []models.Candidate
	for rows.Next() {
		var c models.Candidate
		var title string
		if err := rows.Scan(&c.ID, &title, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Type = models.ContentBlog
		c.Title = snippet(title, candidateTitleLength)
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// linkRepo is the concrete implementation of LinkRepository
type linkRepo struct {
	db *database.DB
}

// NewLinkRepo creates a new link repository
func NewLinkRepo(db *database.DB) LinkRepository {
	return &linkRepo{db: db}
}

// Create stores the pair once; the unique constraint makes repeats a no-op
func (r *linkRepo) Create(ctx context.Context, link *models.Link) (bool, error) {
	query := `
		INSERT INTO links (id, shorlog_id, blog_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (shorlog_id, blog_id) DO NOTHING
	`
	result, err := r.db.ExecContext(ctx, query, link.ID, link.ShorlogID, link.BlogID, link.CreatedAt)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// ListByShorlog returns the blogs a shorlog links to
func (r *linkRepo) ListByShorlog(ctx context.Context, shorlogID string) ([]*models.Link, error) {
	return r.list(ctx, `SELECT id, shorlog_id, blog_id, created_at FROM links WHERE shorlog_id = $1 ORDER BY created_at`, shorlogID)
}

// ListByBlog returns the shorlogs a blog links to
func (r *linkRepo) ListByBlog(ctx context.Context, blogID string) ([]*models.Link, error) {
	return r.list(ctx, `SELECT id, shorlog_id, blog_id, created_at FROM links WHERE blog_id = $1 ORDER BY created_at`, blogID)
}

func (r *linkRepo) list(ctx context.Context, query, id string) ([]*models.Link, error) {
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []*models.Link
	for rows.Next() {
		var l models.Link
		if err := rows.Scan(&l.ID, &l.ShorlogID, &l.BlogID, &l.CreatedAt); err != nil {
			return nil, err
		}
		links = append(links, &l)
	}
	return links, rows.Err()
}
