package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/shorlog-studio/internal/database"
	"github.com/shorlog-studio/internal/models"
)

// imageRepo is the concrete implementation of ImageRepository
type imageRepo struct {
	db *database.DB
}

// NewImageRepo creates a new image repository
func NewImageRepo(db *database.DB) ImageRepository {
	return &imageRepo{db: db}
}

// CreateBatch inserts a whole upload batch with COPY inside one transaction.
// Either every row lands or none does.
func (r *imageRepo) CreateBatch(ctx context.Context, images []*models.Image) error {
	if len(images) == 0 {
		return nil
	}

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, pq.CopyIn("images",
			"id", "owner_id", "source_type", "image_url", "file_path",
			"original_filename", "file_size", "aspect_ratio", "attached", "created_at",
		))
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, img := range images {
			if _, err := stmt.ExecContext(ctx,
				img.ID, img.OwnerID, string(img.SourceType), img.ImageURL, nullString(img.FilePath),
				img.OriginalFilename, img.FileSize, string(img.AspectRatio), img.Attached, img.CreatedAt,
			); err != nil {
				return err
			}
		}

		_, err = stmt.ExecContext(ctx)
		return err
	})
}

// GetByIDs returns the owner's images in the order of ids. Unknown ids or
// images owned by someone else are skipped.
func (r *imageRepo) GetByIDs(ctx context.Context, ownerID string, ids []string) ([]*models.Image, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, owner_id, source_type, image_url, file_path, original_filename,
			file_size, aspect_ratio, attached, created_at
		FROM images
		WHERE owner_id = $1 AND id = ANY($2::uuid[])
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[string]*models.Image, len(ids))
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		byID[img.ID] = img
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	images := make([]*models.Image, 0, len(ids))
	for _, id := range ids {
		if img, ok := byID[id]; ok {
			images = append(images, img)
		}
	}
	return images, nil
}

// orphanQuery selects stale unattached images. A resumed draft re-stages its
// images by URL, so a row is only an orphan when no attached image and no
// draft still points at its URL either.
const orphanQuery = `
	SELECT i.id, i.owner_id, i.source_type, i.image_url, i.file_path, i.original_filename,
		i.file_size, i.aspect_ratio, i.attached, i.created_at
	FROM images i
	WHERE i.attached = FALSE
		AND i.created_at < $1
		AND NOT EXISTS (SELECT 1 FROM drafts d WHERE i.id = ANY(d.image_ids) OR i.image_url = ANY(d.thumbnail_urls))
		AND NOT EXISTS (SELECT 1 FROM images j WHERE j.image_url = i.image_url AND j.attached)
	ORDER BY i.created_at
	LIMIT $2
`

// ListOrphans returns images created before olderThan that no shorlog or
// draft references.
func (r *imageRepo) ListOrphans(ctx context.Context, olderThan time.Time, limit int) ([]*models.Image, error) {
	rows, err := r.db.QueryContext(ctx, orphanQuery, olderThan, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []*models.Image
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// Delete removes an image record
func (r *imageRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM images WHERE id = $1`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanImage(row rowScanner) (*models.Image, error) {
	var img models.Image
	var sourceType, aspectRatio string
	var filePath sql.NullString

	if err := row.Scan(
		&img.ID, &img.OwnerID, &sourceType, &img.ImageURL, &filePath, &img.OriginalFilename,
		&img.FileSize, &aspectRatio, &img.Attached, &img.CreatedAt,
	); err != nil {
		return nil, err
	}

	img.SourceType = models.SourceType(sourceType)
	img.AspectRatio = models.AspectRatio(aspectRatio)
	img.FilePath = filePath.String
	return &img, nil
}
