package wizard_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shorlog-studio/internal/models"
	"github.com/shorlog-studio/internal/notify"
	"github.com/shorlog-studio/internal/overlay"
	"github.com/shorlog-studio/internal/wizard"
)

// fakeBackend records calls and answers from its fields. A non-nil gate
// blocks the matching call until it is closed; started is signalled first.
type fakeBackend struct {
	mu sync.Mutex

	uploadCalls   int
	lastOrders    []models.OrderDescriptor
	lastFiles     []models.FilePart
	uploadErr     error
	dropLastImage bool
	uploadGate    chan struct{}
	uploadStarted chan struct{}

	drafts           []models.Draft
	listCalls        int
	createDraftCalls int
	deletedDrafts    []string

	suggestions   []string
	suggestCalls  int
	suggestGate   chan struct{}
	suggestStart  chan struct{}
	lastSuggestRq *models.SuggestRequest

	shorlogID       string
	createErr       error
	createCalls     int
	lastShorlogReq  *models.CreateShorlogRequest
	candidates      []models.Candidate
	candidatesErr   error
	lastCandidateTy models.ContentType
	lastLimit       int
	links           []*models.LinkRequest
	linkErr         error
}

var _ wizard.Backend = (*fakeBackend)(nil)

func newFakeBackend() *fakeBackend {
	return &fakeBackend{shorlogID: "shorlog-1"}
}

func (f *fakeBackend) UploadImages(ctx context.Context, orders []models.OrderDescriptor, files []models.FilePart) ([]models.UploadedImage, error) {
	f.mu.Lock()
	f.uploadCalls++
	f.lastOrders = orders
	f.lastFiles = files
	gate, started := f.uploadGate, f.uploadStarted
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}

	out := make([]models.UploadedImage, 0, len(orders))
	for _, o := range orders {
		img := models.UploadedImage{ID: fmt.Sprintf("srv-%d", o.Order)}
		if o.URL != nil {
			img.ImageURL = *o.URL
		} else {
			img.ImageURL = fmt.Sprintf("http://media.test/%d.jpg", *o.FileIndex)
			img.OriginalFilename = files[*o.FileIndex].Name
			img.FileSize = files[*o.FileIndex].Size()
		}
		out = append(out, img)
	}
	if f.dropLastImage && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (f *fakeBackend) ListDrafts(ctx context.Context) ([]models.Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	return append([]models.Draft(nil), f.drafts...), nil
}

func (f *fakeBackend) GetDraft(ctx context.Context, id string) (*models.Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.drafts {
		if d.ID == id {
			d := d
			return &d, nil
		}
	}
	return nil, fmt.Errorf("draft %s not found", id)
}

func (f *fakeBackend) CreateDraft(ctx context.Context, req *models.DraftRequest) (*models.Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createDraftCalls++
	d := models.Draft{
		ID:        fmt.Sprintf("draft-%d", f.createDraftCalls),
		Content:   req.Content,
		ImageIDs:  req.ImageIDs,
		Hashtags:  req.Hashtags,
		CreatedAt: time.Now(),
	}
	f.drafts = append(f.drafts, d)
	return &d, nil
}

func (f *fakeBackend) DeleteDraft(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedDrafts = append(f.deletedDrafts, id)
	for i, d := range f.drafts {
		if d.ID == id {
			f.drafts = append(f.drafts[:i], f.drafts[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeBackend) Suggest(ctx context.Context, req *models.SuggestRequest) (*models.SuggestResponse, error) {
	f.mu.Lock()
	f.suggestCalls++
	f.lastSuggestRq = req
	gate, started := f.suggestGate, f.suggestStart
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return &models.SuggestResponse{Results: f.suggestions}, nil
}

func (f *fakeBackend) CreateShorlog(ctx context.Context, req *models.CreateShorlogRequest) (*models.Shorlog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	f.lastShorlogReq = req
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &models.Shorlog{ID: f.shorlogID, Content: req.Content, ImageIDs: req.ImageIDs, Hashtags: req.Hashtags}, nil
}

func (f *fakeBackend) RecentCandidates(ctx context.Context, contentType models.ContentType, limit int) ([]models.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastCandidateTy = contentType
	f.lastLimit = limit
	if f.candidatesErr != nil {
		return nil, f.candidatesErr
	}
	return f.candidates, nil
}

func (f *fakeBackend) Link(ctx context.Context, req *models.LinkRequest) (*models.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.links = append(f.links, req)
	if f.linkErr != nil {
		return nil, f.linkErr
	}
	return &models.Link{ID: "link-1", ShorlogID: req.SourceID, BlogID: req.TargetID}, nil
}

func (f *fakeBackend) calls() (upload, create int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.uploadCalls, f.createCalls
}

type fakeNavigator struct {
	mu    sync.Mutex
	paths []string
}

func (n *fakeNavigator) Navigate(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, path)
}

func (n *fakeNavigator) visited() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.paths...)
}

type toastLog struct {
	mu     sync.Mutex
	events []notify.Event
}

func (l *toastLog) add(e notify.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *toastLog) kinds() []notify.Kind {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]notify.Kind, len(l.events))
	for i, e := range l.events {
		out[i] = e.Kind
	}
	return out
}

type harness struct {
	w       *wizard.Wizard
	backend *fakeBackend
	nav     *fakeNavigator
	toasts  *toastLog
	panels  *overlay.Stack
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		backend: newFakeBackend(),
		nav:     &fakeNavigator{},
		toasts:  &toastLog{},
		panels:  &overlay.Stack{},
	}
	bus := notify.NewBus()
	unsubscribe := bus.Subscribe(h.toasts.add)
	t.Cleanup(unsubscribe)

	h.w = wizard.New(wizard.Options{
		Backend:   h.backend,
		Navigator: h.nav,
		Notifier:  bus,
		Panels:    h.panels,
	})
	return h
}

func files(names ...string) []models.FilePart {
	out := make([]models.FilePart, len(names))
	for i, n := range names {
		out[i] = models.FilePart{Name: n, Data: []byte("data-" + n)}
	}
	return out
}

func imageIDs(w *wizard.Wizard) []string {
	images := w.State().Images
	ids := make([]string, len(images))
	for i, img := range images {
		ids[i] = img.ID
	}
	return ids
}
