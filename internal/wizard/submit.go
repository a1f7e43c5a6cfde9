package wizard

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/shorlog-studio/internal/models"
	"github.com/shorlog-studio/internal/notify"
)

// FeedPath is where the wizard goes when the created post has no id
const FeedPath = "/"

func shorlogPath(id string) string {
	return "/shorlog/" + id
}

// Submit publishes the shorlog. On success the cross-link panel opens with
// the user's most recent blogs; if they cannot be fetched the wizard goes
// straight to the new shorlog.
func (w *Wizard) Submit(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.unlock()
		return ErrClosed
	}
	if w.isSubmitting || w.createdID != "" {
		w.unlock()
		return nil
	}

	w.errMsg = ""
	if err := w.checkSubmittableLocked(); err != nil {
		err = w.failLocked(err)
		w.unlock()
		return err
	}

	req := &models.CreateShorlogRequest{
		Content:  w.content,
		ImageIDs: uploadedIDs(w.uploaded),
		Hashtags: w.tags.Tags(),
	}
	w.isSubmitting = true
	w.unlock()

	shorlog, err := w.backend.CreateShorlog(ctx, req)

	w.mu.Lock()
	if w.closed {
		w.isSubmitting = false
		w.unlock()
		return ErrClosed
	}
	if err != nil {
		w.isSubmitting = false
		err = w.failLocked(err)
		w.unlock()
		return err
	}
	w.toastLocked(notify.KindSuccess, "Shorlog published")
	if shorlog.ID == "" {
		w.isSubmitting = false
		w.finishLocked(FeedPath)
		w.unlock()
		return nil
	}
	w.createdID = shorlog.ID
	w.unlock()

	target := models.ContentShorlog.Complement()
	candidates, err := w.backend.RecentCandidates(ctx, target, models.RecentCandidateLimit)

	w.mu.Lock()
	defer w.unlock()

	w.isSubmitting = false
	if w.closed {
		return ErrClosed
	}
	if err != nil {
		w.log.Warn().Err(err).Str("shorlog_id", shorlog.ID).Msg("Could not load link candidates")
		w.finishLocked(shorlogPath(shorlog.ID))
		return nil
	}

	if len(candidates) > models.RecentCandidateLimit {
		candidates = candidates[:models.RecentCandidateLimit]
	}
	w.candidates = candidates
	w.panels.Push(PanelCrossLink)
	return nil
}

func (w *Wizard) checkSubmittableLocked() error {
	if w.step != StepCompose {
		return ErrWrongStep
	}
	if strings.TrimSpace(w.content) == "" {
		return ErrEmptyContent
	}
	if utf8.RuneCountInString(w.content) > models.MaxContentLength {
		return ErrContentTooLong
	}
	if len(w.uploaded) == 0 {
		return ErrNoUploadedImages
	}
	if w.uploadedAt != w.version {
		return ErrImagesChanged
	}
	return nil
}

// LinkTo links the new shorlog to one of the offered posts and leaves the
// wizard. A failed link keeps the panel open so the user can retry or skip.
func (w *Wizard) LinkTo(ctx context.Context, targetID string) error {
	w.mu.Lock()
	if w.closed {
		w.unlock()
		return ErrClosed
	}
	if w.linking {
		w.unlock()
		return nil
	}
	if w.createdID == "" || w.isSubmitting {
		err := w.failLocked(ErrNoPendingLink)
		w.unlock()
		return err
	}

	var target *models.Candidate
	for i := range w.candidates {
		if w.candidates[i].ID == targetID {
			target = &w.candidates[i]
			break
		}
	}
	if target == nil {
		err := w.failLocked(ErrUnknownCandidate)
		w.unlock()
		return err
	}

	w.errMsg = ""
	req := &models.LinkRequest{
		SourceType: models.ContentShorlog,
		SourceID:   w.createdID,
		TargetType: target.Type,
		TargetID:   target.ID,
	}
	w.linking = true
	w.unlock()

	_, err := w.backend.Link(ctx, req)

	w.mu.Lock()
	defer w.unlock()

	w.linking = false
	if w.closed {
		return ErrClosed
	}
	if err != nil {
		return w.failLocked(err)
	}
	w.finishLocked(shorlogPath(req.SourceID))
	return nil
}

// SkipLink leaves the wizard for the new shorlog without linking
func (w *Wizard) SkipLink() error {
	w.mu.Lock()
	defer w.unlock()

	if w.closed {
		return ErrClosed
	}
	if w.createdID == "" || w.isSubmitting || w.linking {
		return w.failLocked(ErrNoPendingLink)
	}
	w.finishLocked(shorlogPath(w.createdID))
	return nil
}
