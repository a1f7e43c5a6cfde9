package models

import (
	"time"
)

// ContentType distinguishes the two linkable entity kinds.
type ContentType string

const (
	ContentShorlog ContentType = "shorlog"
	ContentBlog    ContentType = "blog"
)

// ValidContentTypes holds the accepted content types
var ValidContentTypes = map[ContentType]bool{
	ContentShorlog: true,
	ContentBlog:    true,
}

// Complement returns the kind a piece of content can be cross-linked to.
func (t ContentType) Complement() ContentType {
	if t == ContentShorlog {
		return ContentBlog
	}
	return ContentShorlog
}

// Shorlog is a short image-centric post
type Shorlog struct {
	ID            string    `json:"id" db:"id"`
	UserID        string    `json:"userId" db:"user_id"`
	Content       string    `json:"content" db:"content"`
	ImageIDs      []string  `json:"imageIds" db:"image_ids"`
	ThumbnailURLs []string  `json:"thumbnailUrls" db:"thumbnail_urls"`
	Hashtags      []string  `json:"hashtags" db:"hashtags"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

// CreateShorlogRequest is the body of a shorlog create call
type CreateShorlogRequest struct {
	Content  string   `json:"content"`
	ImageIDs []string `json:"imageIds"`
	Hashtags []string `json:"hashtags"`
}

// Blog is a long-form post
type Blog struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"userId" db:"user_id"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	Hashtags  []string  `json:"hashtags" db:"hashtags"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// CreateBlogRequest is the body of a blog create call
type CreateBlogRequest struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Hashtags []string `json:"hashtags"`
}

// Candidate is a recent piece of content offered as a cross-link target.
type Candidate struct {
	ID           string      `json:"id"`
	Type         ContentType `json:"type"`
	Title        string      `json:"title"`
	ThumbnailURL string      `json:"thumbnailUrl,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// CandidateListResponse wraps the recent-content endpoint payload
type CandidateListResponse struct {
	Items []Candidate `json:"items"`
}

// LinkRequest asks for a bidirectional reference between two entities.
type LinkRequest struct {
	SourceType ContentType `json:"sourceType"`
	SourceID   string      `json:"sourceId"`
	TargetType ContentType `json:"targetType"`
	TargetID   string      `json:"targetId"`
}

// Link is a stored cross-reference. A link is stored once and read in both
// directions.
type Link struct {
	ID        string    `json:"id" db:"id"`
	ShorlogID string    `json:"shorlogId" db:"shorlog_id"`
	BlogID    string    `json:"blogId" db:"blog_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
