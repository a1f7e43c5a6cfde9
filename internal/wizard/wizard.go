// Package wizard drives shorlog creation: staging images, uploading them as
// one ordered batch, composing text and hashtags, and publishing with an
// optional cross-link to a blog.
package wizard

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/shorlog-studio/internal/models"
	"github.com/shorlog-studio/internal/notify"
	"github.com/shorlog-studio/internal/overlay"
)

// Step is a wizard stage
type Step int

const (
	StepThumbnail Step = 1
	StepEdit      Step = 2
	StepCompose   Step = 3
)

func (s Step) String() string {
	switch s {
	case StepThumbnail:
		return "thumbnail"
	case StepEdit:
		return "edit"
	case StepCompose:
		return "compose"
	}
	return "unknown"
}

// Panel ids pushed onto the overlay stack
const (
	PanelDraftPicker = "draft-picker"
	PanelCrossLink   = "cross-link"
)

// Suggester is the AI writing assistant
type Suggester interface {
	Suggest(ctx context.Context, req *models.SuggestRequest) (*models.SuggestResponse, error)
}

// Publisher creates shorlogs and links them to other posts
type Publisher interface {
	CreateShorlog(ctx context.Context, req *models.CreateShorlogRequest) (*models.Shorlog, error)
	RecentCandidates(ctx context.Context, contentType models.ContentType, limit int) ([]models.Candidate, error)
	Link(ctx context.Context, req *models.LinkRequest) (*models.Link, error)
}

// Backend is every platform call the wizard makes
type Backend interface {
	Uploader
	DraftStore
	Suggester
	Publisher
}

// Navigator leaves the wizard for another page
type Navigator interface {
	Navigate(path string)
}

// Options configures a Wizard. Backend and Navigator are required.
type Options struct {
	Backend   Backend
	Navigator Navigator
	Notifier  notify.Publisher
	Panels    *overlay.Stack
	Logger    *zerolog.Logger
	Now       func() time.Time
}

// Wizard holds the state of one compose session. It is safe for concurrent
// use; network calls run without holding the lock, and a second call of an
// operation that is already in flight returns immediately.
type Wizard struct {
	backend  Backend
	nav      Navigator
	notifier notify.Publisher
	panels   *overlay.Stack
	drafts   *DraftManager
	log      zerolog.Logger
	now      func() time.Time

	mu         sync.Mutex
	step       Step
	images     ImageSet
	cursor     int
	version    int
	uploaded   []models.UploadedImage
	uploadedAt int // version the uploaded set belongs to, -1 when none
	content    string
	tags       *HashtagSet
	errMsg     string
	closed     bool

	isUploading  bool
	isSubmitting bool
	isAiLoading  bool
	isDrafting   bool
	linking      bool

	createdID  string
	candidates []models.Candidate

	// flushed by unlock
	pending []notify.Event
	navTo   string
}

// New creates a wizard on the thumbnail step
func New(opts Options) *Wizard {
	w := &Wizard{
		backend:    opts.Backend,
		nav:        opts.Navigator,
		notifier:   opts.Notifier,
		panels:     opts.Panels,
		now:        opts.Now,
		step:       StepThumbnail,
		uploadedAt: -1,
		tags:       NewHashtagSet(),
	}
	if w.notifier == nil {
		w.notifier = notify.Default
	}
	if w.panels == nil {
		w.panels = &overlay.Stack{}
	}
	if w.now == nil {
		w.now = time.Now
	}
	if opts.Logger != nil {
		w.log = opts.Logger.With().Str("component", "wizard").Logger()
	} else {
		w.log = zerolog.Nop()
	}
	w.drafts = NewDraftManager(opts.Backend, w.now)
	return w
}

// unlock releases the lock, then delivers queued toasts and navigation so
// subscribers may call back into the wizard.
func (w *Wizard) unlock() {
	events := w.pending
	navTo := w.navTo
	w.pending = nil
	w.navTo = ""
	w.mu.Unlock()

	for _, e := range events {
		w.notifier.Publish(e)
	}
	if navTo != "" {
		w.nav.Navigate(navTo)
	}
}

// failLocked records err inline. Anything that is not a local validation
// failure is also raised as a toast.
func (w *Wizard) failLocked(err error) error {
	w.errMsg = err.Error()
	if !IsValidation(err) {
		w.pending = append(w.pending, notify.Event{Kind: notify.KindError, Message: err.Error(), At: w.now()})
		w.log.Warn().Err(err).Int("step", int(w.step)).Msg("Wizard operation failed")
	}
	return err
}

func (w *Wizard) toastLocked(kind notify.Kind, message string) {
	w.pending = append(w.pending, notify.Event{Kind: kind, Message: message, At: w.now()})
}

// finishLocked ends the session and queues navigation to path
func (w *Wizard) finishLocked(path string) {
	w.closed = true
	w.panels.Pop(PanelCrossLink)
	w.panels.Pop(PanelDraftPicker)
	w.navTo = path
}

// Mount loads the user's drafts and opens the draft picker when there are any
func (w *Wizard) Mount(ctx context.Context) error {
	drafts, err := w.drafts.List(ctx)

	w.mu.Lock()
	defer w.unlock()

	if w.closed {
		return ErrClosed
	}
	if err != nil {
		return w.failLocked(err)
	}
	if len(drafts) > 0 {
		w.panels.Push(PanelDraftPicker)
	}
	return nil
}

// StartFresh closes the draft picker and starts with an empty wizard
func (w *Wizard) StartFresh() {
	w.mu.Lock()
	defer w.unlock()
	w.panels.Pop(PanelDraftPicker)
}

// AddFiles stages files up to the image cap and returns how many were added.
// Files beyond the cap are dropped.
func (w *Wizard) AddFiles(files []models.FilePart) int {
	images := make([]LocalImage, len(files))
	for i, f := range files {
		images[i] = newFileImage(f)
	}
	return w.addImages(images)
}

// AddRemoteURLs stages already hosted images, same rules as AddFiles
func (w *Wizard) AddRemoteURLs(urls []string) int {
	images := make([]LocalImage, len(urls))
	for i, u := range urls {
		images[i] = newURLImage(u)
	}
	return w.addImages(images)
}

func (w *Wizard) addImages(images []LocalImage) int {
	w.mu.Lock()
	defer w.unlock()

	w.errMsg = ""
	before := w.images.Len()
	added := w.images.append(images)
	if added == 0 {
		return 0
	}
	w.version++

	if w.step == StepThumbnail && before == 0 {
		w.step = StepEdit
		w.cursor = 0
	}
	return added
}

// ChangeAspectRatio updates one image's crop ratio
func (w *Wizard) ChangeAspectRatio(id string, ratio models.AspectRatio) error {
	w.mu.Lock()
	defer w.unlock()

	w.errMsg = ""
	changed, err := w.images.setAspectRatio(id, ratio)
	if err != nil {
		return w.failLocked(err)
	}
	if changed {
		w.version++
	}
	return nil
}

// DeleteImage removes an image. The cursor steps back when the removed image
// was at or before it.
func (w *Wizard) DeleteImage(id string) error {
	w.mu.Lock()
	defer w.unlock()

	w.errMsg = ""
	idx, err := w.images.remove(id)
	if err != nil {
		return w.failLocked(err)
	}
	w.version++

	if idx <= w.cursor {
		w.cursor = max(w.cursor-1, 0)
	}
	return nil
}

// ReorderImages moves the image at from to position to and selects it
func (w *Wizard) ReorderImages(from, to int) error {
	w.mu.Lock()
	defer w.unlock()

	w.errMsg = ""
	if from == to && from >= 0 && from < w.images.Len() {
		return nil
	}
	if err := w.images.move(from, to); err != nil {
		return w.failLocked(err)
	}
	w.version++
	w.cursor = to
	return nil
}

// Select moves the cursor
func (w *Wizard) Select(index int) error {
	w.mu.Lock()
	defer w.unlock()

	if index < 0 || index >= w.images.Len() {
		return w.failLocked(ErrIndexOutOfRange)
	}
	w.cursor = index
	return nil
}

// Next moves from the thumbnail step to the edit step
func (w *Wizard) Next() error {
	w.mu.Lock()
	defer w.unlock()

	if w.step != StepThumbnail {
		return nil
	}
	w.errMsg = ""
	if w.images.Len() == 0 {
		return w.failLocked(ErrNoImages)
	}
	w.step = StepEdit
	return nil
}

// Advance uploads the current image set and moves to the compose step. It
// does nothing off the edit step, without images, or while an upload runs.
// An image set that was already uploaded unchanged is not sent again.
func (w *Wizard) Advance(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.unlock()
		return ErrClosed
	}
	if w.step != StepEdit || w.images.Len() == 0 || w.isUploading {
		w.unlock()
		return nil
	}
	w.errMsg = ""
	if w.uploadedAt == w.version {
		w.step = StepCompose
		w.unlock()
		return nil
	}

	images := w.images.Items()
	version := w.version
	w.isUploading = true
	w.unlock()

	start := w.now()
	uploaded, err := UploadBatch(ctx, w.backend, images)

	w.mu.Lock()
	defer w.unlock()

	w.isUploading = false
	if w.closed {
		return ErrClosed
	}
	if err != nil {
		return w.failLocked(err)
	}
	if w.version != version {
		return w.failLocked(ErrImagesChanged)
	}

	w.uploaded = uploaded
	w.uploadedAt = version
	w.log.Info().Int("images", len(uploaded)).Dur("duration", w.now().Sub(start)).Msg("Image batch uploaded")

	if w.step == StepEdit {
		w.step = StepCompose
	}
	return nil
}

// Back returns to the previous step. Uploaded images are kept.
func (w *Wizard) Back() {
	w.mu.Lock()
	defer w.unlock()

	w.errMsg = ""
	switch w.step {
	case StepCompose:
		w.step = StepEdit
	case StepEdit:
		w.step = StepThumbnail
	}
}

// SetContent replaces the compose text. Text over the limit is refused and
// the previous text kept.
func (w *Wizard) SetContent(text string) error {
	w.mu.Lock()
	defer w.unlock()

	w.errMsg = ""
	if utf8.RuneCountInString(text) > models.MaxContentLength {
		return w.failLocked(ErrContentTooLong)
	}
	w.content = text
	return nil
}

// AddHashtag adds one manually entered tag
func (w *Wizard) AddHashtag(raw string) error {
	w.mu.Lock()
	defer w.unlock()

	w.errMsg = ""
	if _, err := w.tags.Add(raw); err != nil {
		return w.failLocked(err)
	}
	return nil
}

// RemoveHashtag removes a tag
func (w *Wizard) RemoveHashtag(tag string) {
	w.mu.Lock()
	defer w.unlock()

	w.errMsg = ""
	w.tags.Remove(tag)
}

// SuggestHashtags asks the assistant for tags based on the current text and
// merges them into the set. It returns how many were added.
func (w *Wizard) SuggestHashtags(ctx context.Context) (int, error) {
	w.mu.Lock()
	if w.closed {
		w.unlock()
		return 0, ErrClosed
	}
	if w.isAiLoading {
		w.unlock()
		return 0, nil
	}
	w.errMsg = ""
	content := w.content
	if strings.TrimSpace(content) == "" {
		err := w.failLocked(ErrEmptyContent)
		w.unlock()
		return 0, err
	}
	w.isAiLoading = true
	w.unlock()

	resp, err := w.backend.Suggest(ctx, &models.SuggestRequest{Mode: models.AIModeHashtag, Content: content})

	w.mu.Lock()
	defer w.unlock()

	w.isAiLoading = false
	if w.closed {
		return 0, ErrClosed
	}
	if err != nil {
		return 0, w.failLocked(err)
	}
	return w.tags.Merge(resp.Results), nil
}

// SaveDraft stores the current text, tags and uploaded images as a draft
func (w *Wizard) SaveDraft(ctx context.Context) (*models.Draft, error) {
	w.mu.Lock()
	if w.closed {
		w.unlock()
		return nil, ErrClosed
	}
	if w.isDrafting {
		w.unlock()
		return nil, nil
	}
	w.errMsg = ""
	if len(w.uploaded) > 0 && w.uploadedAt != w.version {
		err := w.failLocked(ErrImagesChanged)
		w.unlock()
		return nil, err
	}
	imageIDs := uploadedIDs(w.uploaded)
	content := w.content
	tags := w.tags.Tags()
	w.isDrafting = true
	w.unlock()

	draft, err := w.drafts.Save(ctx, content, imageIDs, tags)

	w.mu.Lock()
	defer w.unlock()

	w.isDrafting = false
	if w.closed {
		return nil, ErrClosed
	}
	if err != nil {
		return nil, w.failLocked(err)
	}
	w.toastLocked(notify.KindSuccess, "Draft saved")
	return draft, nil
}

// LoadDraft replaces the wizard state with a saved draft and opens the edit
// step. Draft images come back as hosted URLs.
func (w *Wizard) LoadDraft(ctx context.Context, id string) error {
	w.mu.Lock()
	if w.closed {
		w.unlock()
		return ErrClosed
	}
	if w.isDrafting {
		w.unlock()
		return nil
	}
	w.errMsg = ""
	w.isDrafting = true
	w.unlock()

	draft, err := w.drafts.Load(ctx, id)

	w.mu.Lock()
	defer w.unlock()

	w.isDrafting = false
	if w.closed {
		return ErrClosed
	}
	if err != nil {
		return w.failLocked(err)
	}

	images := make([]LocalImage, 0, len(draft.ThumbnailURLs))
	for _, u := range draft.ThumbnailURLs {
		images = append(images, newURLImage(u))
	}
	w.images = ImageSet{}
	w.images.append(images)
	w.version++
	w.uploaded = nil
	w.uploadedAt = -1
	w.cursor = 0
	w.content = draft.Content
	w.tags = NewHashtagSet(draft.Hashtags...)
	w.step = StepEdit
	w.panels.Pop(PanelDraftPicker)
	return nil
}

// DeleteDraft removes a draft after confirm agrees and reports whether it did
func (w *Wizard) DeleteDraft(ctx context.Context, id string, confirm func() bool) (bool, error) {
	deleted, err := w.drafts.Delete(ctx, id, confirm)

	w.mu.Lock()
	defer w.unlock()

	if w.closed {
		return false, ErrClosed
	}
	if err != nil {
		return false, w.failLocked(err)
	}
	if deleted && len(w.drafts.Drafts()) == 0 {
		w.panels.Pop(PanelDraftPicker)
	}
	return deleted, nil
}

// Dismiss closes the top panel the way Escape does and returns its id. The
// cross-link panel is only shown after publishing, so dismissing it skips
// the link.
func (w *Wizard) Dismiss() string {
	w.mu.Lock()
	defer w.unlock()

	top, ok := w.panels.Peek()
	if !ok {
		return ""
	}
	switch top {
	case PanelCrossLink:
		w.finishLocked(shorlogPath(w.createdID))
	default:
		w.panels.Pop(top)
	}
	return top
}

// Close ends the session without publishing. Responses that arrive later
// are dropped.
func (w *Wizard) Close() {
	w.mu.Lock()
	defer w.unlock()

	w.closed = true
	w.panels.Pop(PanelCrossLink)
	w.panels.Pop(PanelDraftPicker)
}

// Drafts returns the draft picker entries
func (w *Wizard) Drafts() []DraftTile {
	drafts := w.drafts.Drafts()
	tiles := make([]DraftTile, len(drafts))
	for i, d := range drafts {
		tiles[i] = DraftTile{Draft: d, Stale: w.drafts.IsStale(d)}
	}
	return tiles
}

func uploadedIDs(images []models.UploadedImage) []string {
	ids := make([]string, len(images))
	for i, img := range images {
		ids[i] = img.ID
	}
	return ids
}
