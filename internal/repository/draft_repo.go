package repository

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/shorlog-studio/internal/database"
	"github.com/shorlog-studio/internal/models"
)

// draftRepo is the concrete implementation of DraftRepository
type draftRepo struct {
	db *database.DB
}

// NewDraftRepo creates a new draft repository
func NewDraftRepo(db *database.DB) DraftRepository {
	return &draftRepo{db: db}
}

// CreateWithinLimit serializes saves per user with a transaction-scoped
// advisory lock, then counts and inserts. Under READ COMMITTED a plain
// INSERT ... WHERE COUNT(*) lets concurrent saves all see the old count.
func (r *draftRepo) CreateWithinLimit(ctx context.Context, draft *models.Draft, limit int) (bool, error) {
	created := false
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, draft.UserID); err != nil {
			return err
		}

		var count int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM drafts WHERE user_id = $1`, draft.UserID).Scan(&count); err != nil {
			return err
		}
		if count >= limit {
			return nil
		}

		query := `
			INSERT INTO drafts (id, user_id, content, image_ids, thumbnail_urls, hashtags, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		if _, err := tx.ExecContext(ctx, query,
			draft.ID, draft.UserID, draft.Content,
			pq.Array(draft.ImageIDs), pq.Array(draft.ThumbnailURLs), pq.Array(draft.Hashtags),
			draft.CreatedAt,
		); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

// GetByID retrieves one of the user's drafts
func (r *draftRepo) GetByID(ctx context.Context, userID, id string) (*models.Draft, error) {
	query := `
		SELECT id, user_id, content, image_ids, thumbnail_urls, hashtags, created_at
		FROM drafts WHERE id = $1 AND user_id = $2
	`
	draft, err := scanDraft(r.db.QueryRowContext(ctx, query, id, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return draft, nil
}

// ListByUser returns the user's drafts, newest first
func (r *draftRepo) ListByUser(ctx context.Context, userID string) ([]*models.Draft, error) {
	query := `
		SELECT id, user_id, content, image_ids, thumbnail_urls, hashtags, created_at
		FROM drafts WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drafts []*models.Draft
	for rows.Next() {
		draft, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, draft)
	}
	return drafts, rows.Err()
}

// CountByUser returns the number of drafts the user holds
func (r *draftRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM drafts WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}

// Delete removes a draft. It reports false when nothing matched.
func (r *draftRepo) Delete(ctx context.Context, userID, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM drafts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func scanDraft(row rowScanner) (*models.Draft, error) {
	var draft models.Draft
	var imageIDs, thumbnails, hashtags pq.StringArray

	if err := row.Scan(
		&draft.ID, &draft.UserID, &draft.Content, &imageIDs, &thumbnails, &hashtags, &draft.CreatedAt,
	); err != nil {
		return nil, err
	}

	draft.ImageIDs = []string(imageIDs)
	draft.ThumbnailURLs = []string(thumbnails)
	draft.Hashtags = []string(hashtags)
	return &draft, nil
}
