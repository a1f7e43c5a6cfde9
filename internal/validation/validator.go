package validation

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shorlog-studio/internal/models"
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Errors is a list of validation failures.
type Errors []ValidationError

func (e Errors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return strings.Join(msgs, "; ")
}

// AsError returns nil for an empty list so callers can use the usual err != nil check.
func (e Errors) AsError() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// NormalizeHashtag trims whitespace and strips a single leading '#'.
func NormalizeHashtag(raw string) string {
	tag := strings.TrimSpace(raw)
	tag = strings.TrimPrefix(tag, "#")
	return strings.TrimSpace(tag)
}

// ContentLength counts characters, not bytes.
func ContentLength(content string) int {
	return utf8.RuneCountInString(content)
}

// ValidateContent checks shorlog body text
func ValidateContent(content string) Errors {
	var errors Errors
	if strings.TrimSpace(content) == "" {
		errors = append(errors, ValidationError{Field: "content", Message: "content is required"})
	} else if n := ContentLength(content); n > models.MaxContentLength {
		errors = append(errors, ValidationError{
			Field:   "content",
			Message: fmt.Sprintf("content must be at most %d characters", models.MaxContentLength),
			Value:   n,
		})
	}
	return errors
}

// ValidateHashtags checks the hashtag list of a draft or shorlog. Tags are
// compared case-sensitively.
func ValidateHashtags(tags []string) Errors {
	var errors Errors
	if len(tags) > models.MaxHashtags {
		errors = append(errors, ValidationError{
			Field:   "hashtags",
			Message: fmt.Sprintf("at most %d hashtags allowed", models.MaxHashtags),
			Value:   len(tags),
		})
	}

	seen := make(map[string]bool, len(tags))
	for _, raw := range tags {
		tag := NormalizeHashtag(raw)
		if tag == "" {
			errors = append(errors, ValidationError{Field: "hashtags", Message: "hashtag cannot be empty"})
			continue
		}
		if seen[tag] {
			errors = append(errors, ValidationError{Field: "hashtags", Message: "duplicate hashtag", Value: tag})
		}
		seen[tag] = true
	}
	return errors
}

// ValidateImageIDs checks a list of image references
func ValidateImageIDs(ids []string) Errors {
	var errors Errors
	if len(ids) == 0 {
		errors = append(errors, ValidationError{Field: "imageIds", Message: "at least one image is required"})
	}
	if len(ids) > models.MaxFiles {
		errors = append(errors, ValidationError{
			Field:   "imageIds",
			Message: fmt.Sprintf("at most %d images allowed", models.MaxFiles),
			Value:   len(ids),
		})
	}
	for _, id := range ids {
		if !isValidUUID(id) {
			errors = append(errors, ValidationError{Field: "imageIds", Message: "invalid UUID format", Value: id})
		}
	}
	return errors
}

// ValidateDraft validates a draft create request. Empty content is allowed.
func ValidateDraft(req *models.DraftRequest) Errors {
	var errors Errors
	errors = append(errors, ValidateImageIDs(req.ImageIDs)...)
	if n := ContentLength(req.Content); n > models.MaxContentLength {
		errors = append(errors, ValidationError{
			Field:   "content",
			Message: fmt.Sprintf("content must be at most %d characters", models.MaxContentLength),
			Value:   n,
		})
	}
	errors = append(errors, ValidateHashtags(req.Hashtags)...)
	return errors
}

// ValidateShorlog validates a shorlog create request
func ValidateShorlog(req *models.CreateShorlogRequest) Errors {
	var errors Errors
	errors = append(errors, ValidateContent(req.Content)...)
	errors = append(errors, ValidateImageIDs(req.ImageIDs)...)
	errors = append(errors, ValidateHashtags(req.Hashtags)...)
	return errors
}

// ValidateBlog validates a blog create request
func ValidateBlog(req *models.CreateBlogRequest) Errors {
	var errors Errors
	if strings.TrimSpace(req.Title) == "" {
		errors = append(errors, ValidationError{Field: "title", Message: "title is required"})
	}
	if strings.TrimSpace(req.Content) == "" {
		errors = append(errors, ValidationError{Field: "content", Message: "content is required"})
	}
	errors = append(errors, ValidateHashtags(req.Hashtags)...)
	return errors
}

// ValidateLink validates a cross-link request. Only a shorlog and a blog can be linked.
func ValidateLink(req *models.LinkRequest) Errors {
	var errors Errors
	if !models.ValidContentTypes[req.SourceType] {
		errors = append(errors, ValidationError{Field: "sourceType", Message: "invalid content type", Value: req.SourceType})
	}
	if !models.ValidContentTypes[req.TargetType] {
		errors = append(errors, ValidationError{Field: "targetType", Message: "invalid content type", Value: req.TargetType})
	}
	if req.SourceType == req.TargetType {
		errors = append(errors, ValidationError{Field: "targetType", Message: "a shorlog can only be linked to a blog", Value: req.TargetType})
	}
	if !isValidUUID(req.SourceID) {
		errors = append(errors, ValidationError{Field: "sourceId", Message: "invalid UUID format", Value: req.SourceID})
	}
	if !isValidUUID(req.TargetID) {
		errors = append(errors, ValidationError{Field: "targetId", Message: "invalid UUID format", Value: req.TargetID})
	}
	return errors
}

// ValidateSuggest validates an AI suggestion request
func ValidateSuggest(req *models.SuggestRequest) Errors {
	var errors Errors
	if !models.ValidAIModes[req.Mode] {
		errors = append(errors, ValidationError{Field: "mode", Message: "invalid mode", Value: req.Mode})
	}
	if strings.TrimSpace(req.Content) == "" {
		errors = append(errors, ValidationError{Field: "content", Message: "content is required"})
	}
	return errors
}

// ValidateOrders checks the descriptors of one upload batch against the number
// of file parts that arrived with it. Orders must form 0..n-1 and every file
// part must be referenced exactly once.
func ValidateOrders(orders []models.OrderDescriptor, fileCount int) Errors {
	var errors Errors
	if len(orders) == 0 {
		return Errors{{Field: "orders", Message: "at least one image is required"}}
	}
	if len(orders) > models.MaxFiles {
		errors = append(errors, ValidationError{
			Field:   "orders",
			Message: fmt.Sprintf("at most %d images allowed", models.MaxFiles),
			Value:   len(orders),
		})
	}

	seenOrder := make(map[int]bool, len(orders))
	seenFile := make(map[int]bool, fileCount)
	for i, o := range orders {
		field := fmt.Sprintf("orders[%d]", i)

		if o.Order < 0 || o.Order >= len(orders) || seenOrder[o.Order] {
			errors = append(errors, ValidationError{Field: field + ".order", Message: "order must be a unique index within the batch", Value: o.Order})
		}
		seenOrder[o.Order] = true

		if !o.AspectRatio.Valid() {
			errors = append(errors, ValidationError{Field: field + ".aspectRatio", Message: "invalid aspect ratio", Value: o.AspectRatio})
		}

		switch o.Type {
		case models.SourceFile:
			if o.URL != nil {
				errors = append(errors, ValidationError{Field: field + ".url", Message: "url must be null for file entries"})
			}
			if o.FileIndex == nil {
				errors = append(errors, ValidationError{Field: field + ".fileIndex", Message: "fileIndex is required for file entries"})
				continue
			}
			idx := *o.FileIndex
			if idx < 0 || idx >= fileCount {
				errors = append(errors, ValidationError{Field: field + ".fileIndex", Message: "fileIndex does not match an uploaded file", Value: idx})
			} else if seenFile[idx] {
				errors = append(errors, ValidationError{Field: field + ".fileIndex", Message: "file referenced twice", Value: idx})
			}
			seenFile[idx] = true
		case models.SourceURL:
			if o.FileIndex != nil {
				errors = append(errors, ValidationError{Field: field + ".fileIndex", Message: "fileIndex must be null for url entries"})
			}
			if o.URL == nil || !isHTTPURL(*o.URL) {
				errors = append(errors, ValidationError{Field: field + ".url", Message: "a valid http(s) url is required", Value: o.URL})
			}
		default:
			errors = append(errors, ValidationError{Field: field + ".type", Message: "type must be one of: file, url", Value: o.Type})
		}
	}

	if len(seenFile) != fileCount {
		errors = append(errors, ValidationError{
			Field:   "files",
			Message: "every uploaded file must be referenced by exactly one entry",
			Value:   fileCount,
		})
	}
	return errors
}

// Helper functions

func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
