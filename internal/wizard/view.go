package wizard

import (
	"unicode/utf8"

	"github.com/shorlog-studio/internal/models"
)

// DraftTile is one entry of the draft picker
type DraftTile struct {
	Draft models.Draft
	Stale bool
}

// State is a snapshot of the wizard
type State struct {
	Step         Step
	Images       []LocalImage
	Cursor       int
	Uploaded     []models.UploadedImage
	Content      string
	Hashtags     []string
	Error        string
	IsUploading  bool
	IsSubmitting bool
	IsAiLoading  bool
	IsDrafting   bool
	Linking      bool
	CreatedID    string
	Candidates   []models.Candidate
	Panel        string
	Closed       bool
}

// State returns a copy of the current state
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()

	panel, _ := w.panels.Peek()
	return State{
		Step:         w.step,
		Images:       w.images.Items(),
		Cursor:       w.cursor,
		Uploaded:     append([]models.UploadedImage(nil), w.uploaded...),
		Content:      w.content,
		Hashtags:     w.tags.Tags(),
		Error:        w.errMsg,
		IsUploading:  w.isUploading,
		IsSubmitting: w.isSubmitting,
		IsAiLoading:  w.isAiLoading,
		IsDrafting:   w.isDrafting,
		Linking:      w.linking,
		CreatedID:    w.createdID,
		Candidates:   append([]models.Candidate(nil), w.candidates...),
		Panel:        panel,
		Closed:       w.closed,
	}
}

// StepKind names a step view
type StepKind string

const (
	KindThumbnail StepKind = "thumbnail"
	KindEdit      StepKind = "edit"
	KindCompose   StepKind = "compose"
)

// StepView is what one step needs to render. It is one of ThumbnailView,
// EditView or ComposeView.
type StepView interface {
	Kind() StepKind
}

// ThumbnailView lists the staged images and whether the user may continue
type ThumbnailView struct {
	Images    []LocalImage
	Remaining int
	CanNext   bool
}

// EditView shows the selected image with its ratio controls
type EditView struct {
	Images    []LocalImage
	Cursor    int
	Uploading bool
	// Uploaded is true when the current images were already sent as they are
	Uploaded bool
}

// Selected returns the image under the cursor
func (v EditView) Selected() (LocalImage, bool) {
	if v.Cursor < 0 || v.Cursor >= len(v.Images) {
		return LocalImage{}, false
	}
	return v.Images[v.Cursor], true
}

// ComposeView holds the text, tags and thumbnails of the uploaded images
type ComposeView struct {
	Thumbnails     []string
	Content        string
	CharsRemaining int
	Hashtags       []string
	AILoading      bool
	Submitting     bool
}

func (ThumbnailView) Kind() StepKind { return KindThumbnail }
func (EditView) Kind() StepKind      { return KindEdit }
func (ComposeView) Kind() StepKind   { return KindCompose }

// View returns the view of the current step
func (w *Wizard) View() StepView {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.step {
	case StepEdit:
		return EditView{
			Images:    w.images.Items(),
			Cursor:    w.cursor,
			Uploading: w.isUploading,
			Uploaded:  w.uploadedAt == w.version,
		}
	case StepCompose:
		thumbs := make([]string, len(w.uploaded))
		for i, img := range w.uploaded {
			thumbs[i] = img.ImageURL
		}
		return ComposeView{
			Thumbnails:     thumbs,
			Content:        w.content,
			CharsRemaining: models.MaxContentLength - utf8.RuneCountInString(w.content),
			Hashtags:       w.tags.Tags(),
			AILoading:      w.isAiLoading,
			Submitting:     w.isSubmitting,
		}
	default:
		return ThumbnailView{
			Images:    w.images.Items(),
			Remaining: w.images.Remaining(),
			CanNext:   w.images.Len() > 0,
		}
	}
}
