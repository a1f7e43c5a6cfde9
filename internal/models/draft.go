package models

import (
	"time"
)

// DraftStaleAfter is the age past which a draft is shown as stale.
const DraftStaleAfter = 7 * 24 * time.Hour

// Draft is a saved, unfinished shorlog.
type Draft struct {
	ID            string    `json:"id" db:"id"`
	UserID        string    `json:"-" db:"user_id"`
	Content       string    `json:"content" db:"content"`
	ImageIDs      []string  `json:"imageIds" db:"image_ids"`
	ThumbnailURLs []string  `json:"thumbnailUrls" db:"thumbnail_urls"`
	Hashtags      []string  `json:"hashtags" db:"hashtags"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

// IsStale reports whether the draft is older than DraftStaleAfter. Stale
// drafts are still loadable and deletable.
func (d *Draft) IsStale(now time.Time) bool {
	return now.Sub(d.CreatedAt) > DraftStaleAfter
}

// DraftRequest is the body of a draft create call
type DraftRequest struct {
	Content  string   `json:"content"`
	ImageIDs []string `json:"imageIds"`
	Hashtags []string `json:"hashtags"`
}

// DraftListResponse wraps the list endpoint payload
type DraftListResponse struct {
	Drafts []Draft `json:"drafts"`
}
