package service_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shorlog-studio/internal/config"
	"github.com/shorlog-studio/internal/mocks"
	"github.com/shorlog-studio/internal/models"
	"github.com/shorlog-studio/internal/repository"
	"github.com/shorlog-studio/internal/service"
	"github.com/shorlog-studio/internal/storage"
	"github.com/shorlog-studio/internal/validation"
)

const (
	testUser  = "user-1"
	otherUser = "user-2"
)

type fakeGenerator struct {
	mu      sync.Mutex
	answer  string
	err     error
	prompts []string
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	return g.answer, g.err
}

func (g *fakeGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

type memoryCache struct {
	mu   sync.Mutex
	data map[string]string
}

func (c *memoryCache) Get(ctx context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memoryCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

type testHarness struct {
	services    *service.Services
	imageRepo   *mocks.MockImageRepository
	draftRepo   *mocks.MockDraftRepository
	shorlogRepo *mocks.MockShorlogRepository
	blogRepo    *mocks.MockBlogRepository
	linkRepo    *mocks.MockLinkRepository
	store       *mocks.MockImageStore
	generator   *fakeGenerator
	cache       *memoryCache
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()
	return newHarnessWithStore(t, nil)
}

// newHarnessWithStore builds services over mocks; a nil store uses the in-memory mock.
func newHarnessWithStore(t *testing.T, store storage.ImageStore) *testHarness {
	t.Helper()

	h := &testHarness{
		imageRepo:   mocks.NewMockImageRepository(),
		draftRepo:   mocks.NewMockDraftRepository(),
		shorlogRepo: mocks.NewMockShorlogRepository(),
		blogRepo:    mocks.NewMockBlogRepository(),
		linkRepo:    mocks.NewMockLinkRepository(),
		store:       mocks.NewMockImageStore(),
		generator:   &fakeGenerator{},
		cache:       &memoryCache{data: make(map[string]string)},
	}
	h.imageRepo.Drafts = h.draftRepo
	h.shorlogRepo.Images = h.imageRepo

	if store == nil {
		store = h.store
	}

	cfg := &config.Config{
		Upload:  config.UploadConfig{MaxBatchBytes: 1024},
		AI:      config.AIConfig{CacheTTL: time.Hour},
		Janitor: config.JanitorConfig{Interval: time.Minute, OrphanTTL: 24 * time.Hour},
	}

	h.services = service.NewServices(service.Dependencies{
		Repos: &repository.Repositories{
			Image:   h.imageRepo,
			Draft:   h.draftRepo,
			Shorlog: h.shorlogRepo,
			Blog:    h.blogRepo,
			Link:    h.linkRepo,
		},
		Store:     store,
		Generator: h.generator,
		Cache:     h.cache,
	}, cfg, zerolog.Nop())

	return h
}

func batchFile(name string, data []byte) service.BatchFile {
	return service.BatchFile{
		Filename: name,
		Size:     int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }

// addImage stores an uploaded image for owner and returns its id
func (h *testHarness) addImage(owner, id string) string {
	h.imageRepo.Add(&models.Image{
		ID:         id,
		OwnerID:    owner,
		SourceType: models.SourceURL,
		ImageURL:   "https://cdn.example.com/" + id + ".jpg",
		CreatedAt:  time.Now(),
	})
	return id
}

var imageIDs = []string{
	"11111111-1111-1111-1111-111111111111",
	"22222222-2222-2222-2222-222222222222",
	"33333333-3333-3333-3333-333333333333",
}

func TestImageService_UploadBatch_FollowsOrderField(t *testing.T) {
	h := newTestHarness(t)

	// Descriptors arrive shuffled; the response must follow order
	orders := []models.OrderDescriptor{
		{Order: 2, Type: models.SourceFile, FileIndex: intPtr(1), AspectRatio: models.AspectSquare},
		{Order: 0, Type: models.SourceFile, FileIndex: intPtr(0), AspectRatio: models.AspectOriginal},
		{Order: 1, Type: models.SourceURL, URL: strPtr("https://cdn.example.com/hosted/b.png"), AspectRatio: models.AspectOriginal},
	}
	files := []service.BatchFile{batchFile("a.png", []byte("aaa")), batchFile("c.png", []byte("ccccc"))}

	uploaded, err := h.services.Image.UploadBatch(context.Background(), testUser, orders, files)
	if err != nil {
		t.Fatalf("UploadBatch failed: %v", err)
	}
	if len(uploaded) != 3 {
		t.Fatalf("Expected 3 images, got %d", len(uploaded))
	}

	if uploaded[0].OriginalFilename != "a.png" || uploaded[0].FileSize != 3 {
		t.Errorf("Unexpected first image: %+v", uploaded[0])
	}
	if uploaded[1].ImageURL != "https://cdn.example.com/hosted/b.png" || uploaded[1].OriginalFilename != "b.png" {
		t.Errorf("Unexpected second image: %+v", uploaded[1])
	}
	if uploaded[2].OriginalFilename != "c.png" || uploaded[2].FileSize != 5 {
		t.Errorf("Unexpected third image: %+v", uploaded[2])
	}
	if !strings.Contains(uploaded[2].ImageURL, string(models.AspectSquare)) {
		t.Errorf("Expected third image stored with 1:1 ratio, got %s", uploaded[2].ImageURL)
	}

	if len(h.imageRepo.Images) != 3 || h.imageRepo.CreateBatchCall != 1 {
		t.Errorf("Expected a single batch insert of 3 rows, got %d rows in %d calls", len(h.imageRepo.Images), h.imageRepo.CreateBatchCall)
	}
}

func TestImageService_UploadBatch_RejectsOversizedBatch(t *testing.T) {
	h := newTestHarness(t)

	orders := []models.OrderDescriptor{
		{Order: 0, Type: models.SourceFile, FileIndex: intPtr(0), AspectRatio: models.AspectOriginal},
		{Order: 1, Type: models.SourceFile, FileIndex: intPtr(1), AspectRatio: models.AspectOriginal},
	}
	files := []service.BatchFile{
		batchFile("a.jpg", make([]byte, 600)),
		batchFile("b.jpg", make([]byte, 600)),
	}

	_, err := h.services.Image.UploadBatch(context.Background(), testUser, orders, files)
	if !errors.Is(err, service.ErrPayloadTooLarge) {
		t.Fatalf("Expected ErrPayloadTooLarge, got %v", err)
	}
	if len(h.store.Files) != 0 || h.imageRepo.CreateBatchCall != 0 {
		t.Error("Nothing should be stored for an oversized batch")
	}
}

func TestImageService_UploadBatch_AllOrNothing(t *testing.T) {
	h := newTestHarness(t)
	h.store.SaveError = errors.New("disk full")
	h.store.FailAfter = 2

	orders := []models.OrderDescriptor{
		{Order: 0, Type: models.SourceFile, FileIndex: intPtr(0), AspectRatio: models.AspectOriginal},
		{Order: 1, Type: models.SourceFile, FileIndex: intPtr(1), AspectRatio: models.AspectOriginal},
	}
	files := []service.BatchFile{batchFile("a.jpg", []byte("a")), batchFile("b.jpg", []byte("b"))}

	_, err := h.services.Image.UploadBatch(context.Background(), testUser, orders, files)
	if err == nil {
		t.Fatal("Expected error when the second file fails")
	}
	if len(h.store.Files) != 0 {
		t.Errorf("Expected the first stored file to be removed, %d remain", len(h.store.Files))
	}
	if len(h.store.Deleted) != 1 {
		t.Errorf("Expected 1 cleanup delete, got %d", len(h.store.Deleted))
	}
	if h.imageRepo.CreateBatchCall != 0 {
		t.Error("No records should be written after a file failure")
	}
}

func TestImageService_UploadBatch_RepositoryFailureCleansUp(t *testing.T) {
	h := newTestHarness(t)
	h.imageRepo.InsertError = errors.New("connection reset")

	orders := []models.OrderDescriptor{
		{Order: 0, Type: models.SourceFile, FileIndex: intPtr(0), AspectRatio: models.AspectOriginal},
	}

	_, err := h.services.Image.UploadBatch(context.Background(), testUser, orders, []service.BatchFile{batchFile("a.jpg", []byte("a"))})
	if err == nil {
		t.Fatal("Expected error")
	}
	if len(h.store.Files) != 0 {
		t.Error("Stored file should be removed when the insert fails")
	}
}

func TestImageService_UploadBatch_InvalidDescriptors(t *testing.T) {
	h := newTestHarness(t)

	orders := []models.OrderDescriptor{
		{Order: 0, Type: models.SourceFile, FileIndex: intPtr(4), AspectRatio: models.AspectOriginal},
	}

	_, err := h.services.Image.UploadBatch(context.Background(), testUser, orders, []service.BatchFile{batchFile("a.jpg", []byte("a"))})
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		t.Fatalf("Expected validation errors, got %v", err)
	}
}

func TestDraftService_CreateAndLimit(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()
	id := h.addImage(testUser, imageIDs[0])

	for i := 0; i < models.MaxDrafts; i++ {
		draft, err := h.services.Draft.Create(ctx, testUser, &models.DraftRequest{
			Content:  "draft",
			ImageIDs: []string{id},
			Hashtags: []string{"#demo"},
		})
		if err != nil {
			t.Fatalf("Create %d failed: %v", i+1, err)
		}
		if draft.Hashtags[0] != "demo" {
			t.Errorf("Expected normalized hashtag, got %q", draft.Hashtags[0])
		}
		if draft.ThumbnailURLs[0] != "https://cdn.example.com/"+id+".jpg" {
			t.Errorf("Expected thumbnail resolved from image, got %v", draft.ThumbnailURLs)
		}
	}

	_, err := h.services.Draft.Create(ctx, testUser, &models.DraftRequest{ImageIDs: []string{id}})
	if !errors.Is(err, service.ErrDraftLimitReached) {
		t.Errorf("Expected ErrDraftLimitReached, got %v", err)
	}

	drafts, err := h.services.Draft.List(ctx, testUser)
	if err != nil {
		t.Fatal(err)
	}
	if len(drafts) != models.MaxDrafts {
		t.Errorf("Expected %d drafts, got %d", models.MaxDrafts, len(drafts))
	}
}

func TestDraftService_CreateRejectsForeignImages(t *testing.T) {
	h := newTestHarness(t)
	id := h.addImage(otherUser, imageIDs[0])

	_, err := h.services.Draft.Create(context.Background(), testUser, &models.DraftRequest{ImageIDs: []string{id}})
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		t.Fatalf("Expected validation error, got %v", err)
	}
	if h.draftRepo.CreateCalls != 0 {
		t.Error("Draft should not be inserted")
	}
}

func TestDraftService_GetAndDelete(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()
	id := h.addImage(testUser, imageIDs[0])

	draft, err := h.services.Draft.Create(ctx, testUser, &models.DraftRequest{ImageIDs: []string{id}})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := h.services.Draft.Get(ctx, otherUser, draft.ID); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for another user, got %v", err)
	}
	if err := h.services.Draft.Delete(ctx, testUser, draft.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := h.services.Draft.Delete(ctx, testUser, draft.ID); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestSuggestionService_HashtagsParsedAndCached(t *testing.T) {
	h := newTestHarness(t)
	h.generator.answer = "1. #travel\n2. #sunset\n3. #travel\n4. golden hour"
	ctx := context.Background()
	req := &models.SuggestRequest{Mode: models.AIModeHashtag, Content: "evening at the beach"}

	resp, err := h.services.Suggestion.Suggest(ctx, req)
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	want := []string{"travel", "sunset", "goldenhour"}
	if len(resp.Results) != len(want) {
		t.Fatalf("Expected %v, got %v", want, resp.Results)
	}
	for i := range want {
		if resp.Results[i] != want[i] {
			t.Errorf("Results[%d] = %q, want %q", i, resp.Results[i], want[i])
		}
	}

	if _, err := h.services.Suggestion.Suggest(ctx, req); err != nil {
		t.Fatal(err)
	}
	if h.generator.calls() != 1 {
		t.Errorf("Expected second identical request to be served from cache, generator called %d times", h.generator.calls())
	}
}

func TestSuggestionService_HashtagCap(t *testing.T) {
	h := newTestHarness(t)
	var lines []string
	for i := 0; i < 15; i++ {
		lines = append(lines, "tag"+string(rune('a'+i)))
	}
	h.generator.answer = strings.Join(lines, "\n")

	resp, err := h.services.Suggestion.Suggest(context.Background(), &models.SuggestRequest{Mode: models.AIModeHashtag, Content: "x"})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != models.MaxHashtags {
		t.Errorf("Expected %d hashtags, got %d", models.MaxHashtags, len(resp.Results))
	}
}

func TestSuggestionService_TitleMode(t *testing.T) {
	h := newTestHarness(t)
	h.generator.answer = "\"Golden Hour at the Pier\"\n"

	resp, err := h.services.Suggestion.Suggest(context.Background(), &models.SuggestRequest{Mode: models.AIModeTitle, Content: "x"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Result != "Golden Hour at the Pier" || resp.Results != nil {
		t.Errorf("Unexpected response: %+v", resp)
	}
}

func TestSuggestionService_GeneratorError(t *testing.T) {
	h := newTestHarness(t)
	h.generator.err = errors.New("upstream unavailable")

	if _, err := h.services.Suggestion.Suggest(context.Background(), &models.SuggestRequest{Mode: models.AIModeTitle, Content: "x"}); err == nil {
		t.Error("Expected error")
	}
	if len(h.cache.data) != 0 {
		t.Error("Failures must not be cached")
	}
}

func TestSuggestionService_NotConfigured(t *testing.T) {
	cfg := &config.Config{}
	svc := service.NewServices(service.Dependencies{Repos: &repository.Repositories{}}, cfg, zerolog.Nop())

	_, err := svc.Suggestion.Suggest(context.Background(), &models.SuggestRequest{Mode: models.AIModeHashtag, Content: "x"})
	if !errors.Is(err, service.ErrAINotConfigured) {
		t.Errorf("Expected ErrAINotConfigured, got %v", err)
	}
}

func TestContentService_CreateShorlogAttachesImages(t *testing.T) {
	h := newTestHarness(t)
	a := h.addImage(testUser, imageIDs[0])
	b := h.addImage(testUser, imageIDs[1])

	shorlog, err := h.services.Content.CreateShorlog(context.Background(), testUser, &models.CreateShorlogRequest{
		Content:  "hello",
		ImageIDs: []string{b, a},
		Hashtags: []string{"demo"},
	})
	if err != nil {
		t.Fatalf("CreateShorlog failed: %v", err)
	}
	if shorlog.ThumbnailURLs[0] != "https://cdn.example.com/"+b+".jpg" {
		t.Errorf("Expected thumbnails in request order, got %v", shorlog.ThumbnailURLs)
	}
	if !h.imageRepo.Images[a].Attached || !h.imageRepo.Images[b].Attached {
		t.Error("Expected images to be marked attached")
	}
}

func TestContentService_CreateShorlogValidation(t *testing.T) {
	h := newTestHarness(t)
	a := h.addImage(testUser, imageIDs[0])

	tests := []struct {
		name string
		req  *models.CreateShorlogRequest
	}{
		{name: "empty content", req: &models.CreateShorlogRequest{Content: " ", ImageIDs: []string{a}}},
		{name: "too long", req: &models.CreateShorlogRequest{Content: strings.Repeat("x", models.MaxContentLength+1), ImageIDs: []string{a}}},
		{name: "no images", req: &models.CreateShorlogRequest{Content: "hello"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.services.Content.CreateShorlog(context.Background(), testUser, tt.req)
			var verrs validation.Errors
			if !errors.As(err, &verrs) {
				t.Errorf("Expected validation error, got %v", err)
			}
		})
	}
	if len(h.shorlogRepo.Shorlogs) != 0 {
		t.Error("No shorlog should be stored")
	}
}

func TestContentService_RecentCandidatesClamped(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()
	for i := 0; i < 9; i++ {
		if _, err := h.services.Content.CreateBlog(ctx, testUser, &models.CreateBlogRequest{Title: "post", Content: "body"}); err != nil {
			t.Fatal(err)
		}
	}

	candidates, err := h.services.Content.RecentCandidates(ctx, testUser, models.ContentBlog, 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(candidates) != models.RecentCandidateLimit {
		t.Errorf("Expected %d candidates, got %d", models.RecentCandidateLimit, len(candidates))
	}

	empty, err := h.services.Content.RecentCandidates(ctx, otherUser, models.ContentShorlog, 0)
	if err != nil {
		t.Fatal(err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("Expected empty non-nil list, got %#v", empty)
	}
}

func TestContentService_Link(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()
	a := h.addImage(testUser, imageIDs[0])

	shorlog, err := h.services.Content.CreateShorlog(ctx, testUser, &models.CreateShorlogRequest{Content: "hello", ImageIDs: []string{a}})
	if err != nil {
		t.Fatal(err)
	}
	blog, err := h.services.Content.CreateBlog(ctx, testUser, &models.CreateBlogRequest{Title: "Trip", Content: "long"})
	if err != nil {
		t.Fatal(err)
	}

	// Blog as source is normalized to the same pair
	link, err := h.services.Content.Link(ctx, testUser, &models.LinkRequest{
		SourceType: models.ContentBlog, SourceID: blog.ID,
		TargetType: models.ContentShorlog, TargetID: shorlog.ID,
	})
	if err != nil {
		t.Fatalf("Link failed: %v", err)
	}
	if link.ShorlogID != shorlog.ID || link.BlogID != blog.ID {
		t.Errorf("Unexpected link: %+v", link)
	}

	_, err = h.services.Content.Link(ctx, testUser, &models.LinkRequest{
		SourceType: models.ContentShorlog, SourceID: shorlog.ID,
		TargetType: models.ContentBlog, TargetID: blog.ID,
	})
	if !errors.Is(err, service.ErrAlreadyLinked) {
		t.Errorf("Expected ErrAlreadyLinked, got %v", err)
	}

	_, err = h.services.Content.Link(ctx, otherUser, &models.LinkRequest{
		SourceType: models.ContentShorlog, SourceID: shorlog.ID,
		TargetType: models.ContentBlog, TargetID: blog.ID,
	})
	if !errors.Is(err, service.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for another user's content, got %v", err)
	}
}

func TestJanitor_SweepRemovesOnlyOrphans(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()
	old := time.Now().Add(-48 * time.Hour)

	h.imageRepo.Add(&models.Image{ID: "orphan", OwnerID: testUser, SourceType: models.SourceFile, FilePath: "/mem/orphan", CreatedAt: old})
	h.imageRepo.Add(&models.Image{ID: "attached", OwnerID: testUser, SourceType: models.SourceFile, Attached: true, CreatedAt: old})
	h.imageRepo.Add(&models.Image{ID: "in-draft", OwnerID: testUser, SourceType: models.SourceURL, CreatedAt: old})
	h.imageRepo.Add(&models.Image{ID: "fresh", OwnerID: testUser, SourceType: models.SourceFile, CreatedAt: time.Now()})
	h.draftRepo.Drafts["d1"] = &models.Draft{ID: "d1", UserID: testUser, ImageIDs: []string{"in-draft"}}
	h.store.Files["/mem/orphan"] = []byte("x")

	removed, err := h.services.Janitor.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("Expected 1 orphan removed, got %d", removed)
	}
	if _, ok := h.imageRepo.Images["orphan"]; ok {
		t.Error("Orphan record should be deleted")
	}
	if _, ok := h.store.Files["/mem/orphan"]; ok {
		t.Error("Orphan file should be deleted")
	}
	for _, id := range []string{"attached", "in-draft", "fresh"} {
		if _, ok := h.imageRepo.Images[id]; !ok {
			t.Errorf("Image %s should be kept", id)
		}
	}
}

func TestJanitor_ResumedDraftKeepsPublishedFile(t *testing.T) {
	h := newTestHarness(t)
	ctx := context.Background()

	first, err := h.services.Image.UploadBatch(ctx, testUser, []models.OrderDescriptor{
		{Order: 0, Type: models.SourceFile, FileIndex: intPtr(0), AspectRatio: models.AspectOriginal},
	}, []service.BatchFile{batchFile("a.jpg", []byte("jpeg"))})
	if err != nil {
		t.Fatalf("UploadBatch failed: %v", err)
	}
	original := first[0]

	draft, err := h.services.Draft.Create(ctx, testUser, &models.DraftRequest{Content: "later", ImageIDs: []string{original.ID}})
	if err != nil {
		t.Fatalf("Draft create failed: %v", err)
	}

	// Resuming re-stages the draft image by its hosted URL
	hostedURL := draft.ThumbnailURLs[0]
	second, err := h.services.Image.UploadBatch(ctx, testUser, []models.OrderDescriptor{
		{Order: 0, Type: models.SourceURL, URL: strPtr(hostedURL), AspectRatio: models.AspectOriginal},
	}, nil)
	if err != nil {
		t.Fatalf("Re-upload failed: %v", err)
	}

	if _, err := h.services.Content.CreateShorlog(ctx, testUser, &models.CreateShorlogRequest{
		Content:  "published",
		ImageIDs: []string{second[0].ID},
	}); err != nil {
		t.Fatalf("CreateShorlog failed: %v", err)
	}
	if err := h.services.Draft.Delete(ctx, testUser, draft.ID); err != nil {
		t.Fatalf("Draft delete failed: %v", err)
	}

	old := time.Now().Add(-48 * time.Hour)
	for _, img := range h.imageRepo.Images {
		img.CreatedAt = old
	}
	filesBefore := len(h.store.Files)

	removed, err := h.services.Janitor.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if removed != 0 {
		t.Errorf("Expected nothing removed, got %d", removed)
	}
	if _, ok := h.imageRepo.Images[original.ID]; !ok {
		t.Error("Original record backs a published shorlog and should be kept")
	}
	if len(h.store.Files) != filesBefore || len(h.store.Deleted) != 0 {
		t.Error("Published file should not be deleted")
	}
}

func TestJanitor_StartStop(t *testing.T) {
	h := newTestHarness(t)

	done := make(chan struct{})
	go func() {
		h.services.Janitor.StartProcessor(context.Background())
		close(done)
	}()

	// StopProcessor is a no-op until the loop registers, so retry until it exits
	deadline := time.After(2 * time.Second)
	for {
		h.services.Janitor.StopProcessor()
		select {
		case <-done:
			return
		case <-deadline:
			t.Fatal("Janitor did not stop")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
