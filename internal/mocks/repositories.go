package mocks

import (
	"context"
	"io"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/shorlog-studio/internal/models"
	"github.com/shorlog-studio/internal/repository"
	"github.com/shorlog-studio/internal/storage"
)

// Verify interface compliance
var (
	_ repository.ImageRepository   = (*MockImageRepository)(nil)
	_ repository.DraftRepository   = (*MockDraftRepository)(nil)
	_ repository.ShorlogRepository = (*MockShorlogRepository)(nil)
	_ repository.BlogRepository    = (*MockBlogRepository)(nil)
	_ repository.LinkRepository    = (*MockLinkRepository)(nil)
	_ storage.ImageStore           = (*MockImageStore)(nil)
)

// MockImageRepository is a mock implementation of ImageRepository
type MockImageRepository struct {
	mu              sync.Mutex
	Images          map[string]*models.Image
	InsertError     error
	CreateBatchCall int
	Deleted         []string
	// Drafts, when set, is consulted by ListOrphans for draft references
	Drafts *MockDraftRepository
}

func NewMockImageRepository() *MockImageRepository {
	return &MockImageRepository{
		Images: make(map[string]*models.Image),
	}
}

func (m *MockImageRepository) CreateBatch(ctx context.Context, images []*models.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateBatchCall++
	if m.InsertError != nil {
		return m.InsertError
	}
	for _, img := range images {
		m.Images[img.ID] = img
	}
	return nil
}

func (m *MockImageRepository) GetByIDs(ctx context.Context, ownerID string, ids []string) ([]*models.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*models.Image
	for _, id := range ids {
		if img, ok := m.Images[id]; ok && img.OwnerID == ownerID {
			out = append(out, img)
		}
	}
	return out, nil
}

func (m *MockImageRepository) ListOrphans(ctx context.Context, olderThan time.Time, limit int) ([]*models.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	referenced := make(map[string]bool)
	sharedURL := make(map[string]bool)
	if m.Drafts != nil {
		for _, d := range m.Drafts.snapshot() {
			for _, id := range d.ImageIDs {
				referenced[id] = true
			}
			for _, u := range d.ThumbnailURLs {
				if u != "" {
					sharedURL[u] = true
				}
			}
		}
	}
	for _, img := range m.Images {
		if img.Attached && img.ImageURL != "" {
			sharedURL[img.ImageURL] = true
		}
	}

	var out []*models.Image
	for _, img := range m.Images {
		if img.Attached || !img.CreatedAt.Before(olderThan) || referenced[img.ID] || sharedURL[img.ImageURL] {
			continue
		}
		out = append(out, img)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockImageRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.Images, id)
	m.Deleted = append(m.Deleted, id)
	return nil
}

// Add stores an image directly, bypassing CreateBatch bookkeeping
func (m *MockImageRepository) Add(img *models.Image) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Images[img.ID] = img
}

// MarkAttached mirrors what the shorlog repository does inside its transaction
func (m *MockImageRepository) MarkAttached(ids []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		if img, ok := m.Images[id]; ok {
			img.Attached = true
		}
	}
}

// MockDraftRepository is a mock implementation of DraftRepository
type MockDraftRepository struct {
	mu          sync.Mutex
	Drafts      map[string]*models.Draft
	InsertError error
	CreateCalls int
}

func NewMockDraftRepository() *MockDraftRepository {
	return &MockDraftRepository{
		Drafts: make(map[string]*models.Draft),
	}
}

func (m *MockDraftRepository) CreateWithinLimit(ctx context.Context, draft *models.Draft, limit int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateCalls++
	if m.InsertError != nil {
		return false, m.InsertError
	}
	if m.countLocked(draft.UserID) >= limit {
		return false, nil
	}
	m.Drafts[draft.ID] = draft
	return true, nil
}

func (m *MockDraftRepository) GetByID(ctx context.Context, userID, id string) (*models.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if d, ok := m.Drafts[id]; ok && d.UserID == userID {
		return d, nil
	}
	return nil, nil
}

func (m *MockDraftRepository) ListByUser(ctx context.Context, userID string) ([]*models.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*models.Draft
	for _, d := range m.Drafts {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MockDraftRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.countLocked(userID), nil
}

func (m *MockDraftRepository) Delete(ctx context.Context, userID, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if d, ok := m.Drafts[id]; ok && d.UserID == userID {
		delete(m.Drafts, id)
		return true, nil
	}
	return false, nil
}

func (m *MockDraftRepository) countLocked(userID string) int {
	count := 0
	for _, d := range m.Drafts {
		if d.UserID == userID {
			count++
		}
	}
	return count
}

func (m *MockDraftRepository) snapshot() []*models.Draft {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Draft, 0, len(m.Drafts))
	for _, d := range m.Drafts {
		out = append(out, d)
	}
	return out
}

// MockShorlogRepository is a mock implementation of ShorlogRepository
type MockShorlogRepository struct {
	mu          sync.Mutex
	Shorlogs    map[string]*models.Shorlog
	InsertError error
	// Images, when set, has the shorlog's images marked attached on Create
	Images *MockImageRepository
}

func NewMockShorlogRepository() *MockShorlogRepository {
	return &MockShorlogRepository{
		Shorlogs: make(map[string]*models.Shorlog),
	}
}

func (m *MockShorlogRepository) Create(ctx context.Context, shorlog *models.Shorlog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.InsertError != nil {
		return m.InsertError
	}
	m.Shorlogs[shorlog.ID] = shorlog
	if m.Images != nil {
		m.Images.MarkAttached(shorlog.ImageIDs)
	}
	return nil
}

func (m *MockShorlogRepository) GetByID(ctx context.Context, id string) (*models.Shorlog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Shorlogs[id], nil
}

func (m *MockShorlogRepository) ListRecent(ctx context.Context, userID string, limit int) ([]models.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Candidate
	for _, s := range m.Shorlogs {
		if s.UserID != userID {
			continue
		}
		c := models.Candidate{ID: s.ID, Type: models.ContentShorlog, Title: s.Content, CreatedAt: s.CreatedAt}
		if len(s.ThumbnailURLs) > 0 {
			c.ThumbnailURL = s.ThumbnailURLs[0]
		}
		out = append(out, c)
	}
	return newestFirst(out, limit), nil
}

// MockBlogRepository is a mock implementation of BlogRepository
type MockBlogRepository struct {
	mu          sync.Mutex
	Blogs       map[string]*models.Blog
	InsertError error
	ListCalls   int
}

func NewMockBlogRepository() *MockBlogRepository {
	return &MockBlogRepository{
		Blogs: make(map[string]*models.Blog),
	}
}

func (m *MockBlogRepository) Create(ctx context.Context, blog *models.Blog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.InsertError != nil {
		return m.InsertError
	}
	m.Blogs[blog.ID] = blog
	return nil
}

func (m *MockBlogRepository) GetByID(ctx context.Context, id string) (*models.Blog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Blogs[id], nil
}

func (m *MockBlogRepository) ListRecent(ctx context.Context, userID string, limit int) ([]models.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ListCalls++
	var out []models.Candidate
	for _, b := range m.Blogs {
		if b.UserID == userID {
			out = append(out, models.Candidate{ID: b.ID, Type: models.ContentBlog, Title: b.Title, CreatedAt: b.CreatedAt})
		}
	}
	return newestFirst(out, limit), nil
}

// MockLinkRepository is a mock implementation of LinkRepository
type MockLinkRepository struct {
	mu    sync.Mutex
	Links []*models.Link
}

func NewMockLinkRepository() *MockLinkRepository {
	return &MockLinkRepository{}
}

func (m *MockLinkRepository) Create(ctx context.Context, link *models.Link) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, l := range m.Links {
		if l.ShorlogID == link.ShorlogID && l.BlogID == link.BlogID {
			return false, nil
		}
	}
	m.Links = append(m.Links, link)
	return true, nil
}

func (m *MockLinkRepository) ListByShorlog(ctx context.Context, shorlogID string) ([]*models.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*models.Link
	for _, l := range m.Links {
		if l.ShorlogID == shorlogID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *MockLinkRepository) ListByBlog(ctx context.Context, blogID string) ([]*models.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*models.Link
	for _, l := range m.Links {
		if l.BlogID == blogID {
			out = append(out, l)
		}
	}
	return out, nil
}

func newestFirst(candidates []models.Candidate, limit int) []models.Candidate {
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].CreatedAt.After(candidates[j].CreatedAt) })
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

// MockImageStore is a mock implementation of ImageStore that keeps files in memory
type MockImageStore struct {
	mu        sync.Mutex
	Files     map[string][]byte
	SaveError error
	// FailAfter makes the n-th Save (1-based) fail when SaveError is set
	FailAfter int
	saves     int
	Deleted   []string
}

func NewMockImageStore() *MockImageStore {
	return &MockImageStore{
		Files: make(map[string][]byte),
	}
}

func (m *MockImageStore) Save(ctx context.Context, ownerID string, src io.Reader, ratio models.AspectRatio) (*storage.StoredImage, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.saves++
	if m.SaveError != nil && (m.FailAfter == 0 || m.saves >= m.FailAfter) {
		return nil, m.SaveError
	}

	path := "/mem/" + ownerID + "/" + string(ratio) + "/" + strconv.Itoa(m.saves)
	m.Files[path] = data
	return &storage.StoredImage{Path: path, URL: "http://media.test" + path}, nil
}

func (m *MockImageStore) Delete(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.Files, path)
	m.Deleted = append(m.Deleted, path)
	return nil
}
