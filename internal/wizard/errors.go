package wizard

import (
	"errors"
	"fmt"

	"github.com/shorlog-studio/internal/models"
)

// Validation errors are reported inline and never reach the network.
var (
	ErrNoImages           = errors.New("select at least one image")
	ErrImageNotFound      = errors.New("image not found")
	ErrIndexOutOfRange    = errors.New("image index out of range")
	ErrInvalidAspectRatio = errors.New("unsupported aspect ratio")
	ErrPayloadTooLarge    = fmt.Errorf("images exceed the %d MB upload limit", models.MaxBatchBytes>>20)
	ErrEmptyContent       = errors.New("content is required")
	ErrContentTooLong     = fmt.Errorf("content exceeds %d characters", models.MaxContentLength)
	ErrNoUploadedImages   = errors.New("upload images before submitting")
	ErrImagesChanged      = errors.New("images changed since the upload, continue again to upload the current set")
	ErrEmptyHashtag       = errors.New("hashtag is empty")
	ErrDuplicateHashtag   = errors.New("hashtag already added")
	ErrTooManyHashtags    = fmt.Errorf("at most %d hashtags", models.MaxHashtags)
	ErrDraftNeedsImages   = errors.New("upload images before saving a draft")
	ErrDraftLimitReached  = fmt.Errorf("draft limit reached (max %d), delete a draft first", models.MaxDrafts)
	ErrWrongStep          = errors.New("not available at this step")
	ErrNoPendingLink      = errors.New("nothing to link")
	ErrUnknownCandidate   = errors.New("not one of the offered posts")
)

var (
	// ErrBatchMismatch means the server answered a batch with the wrong number of images
	ErrBatchMismatch = errors.New("upload response does not match the batch")
	// ErrClosed is returned when a response arrives after the wizard was closed
	ErrClosed = errors.New("wizard is closed")
)

var validationErrors = []error{
	ErrNoImages, ErrImageNotFound, ErrIndexOutOfRange, ErrInvalidAspectRatio,
	ErrPayloadTooLarge, ErrEmptyContent, ErrContentTooLong, ErrNoUploadedImages,
	ErrImagesChanged, ErrEmptyHashtag, ErrDuplicateHashtag, ErrTooManyHashtags,
	ErrDraftNeedsImages, ErrDraftLimitReached, ErrWrongStep, ErrNoPendingLink,
	ErrUnknownCandidate,
}

// IsValidation reports whether err is a local validation failure
func IsValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
