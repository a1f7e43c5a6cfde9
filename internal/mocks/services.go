package mocks

import (
	"context"
	"io"
	"time"

	"github.com/shorlog-studio/internal/models"
	"github.com/shorlog-studio/internal/service"
)

// MockImageService is a mock implementation of ImageService
type MockImageService struct {
	UploadFunc func(ctx context.Context, ownerID string, orders []models.OrderDescriptor, files []service.BatchFile) ([]models.UploadedImage, error)
	// Received holds the file contents of the last batch, in part order
	Received   [][]byte
	LastOrders []models.OrderDescriptor
	LastOwner  string
}

// Verify interface compliance
var _ service.ImageService = (*MockImageService)(nil)

func NewMockImageService() *MockImageService {
	return &MockImageService{}
}

func (m *MockImageService) UploadBatch(ctx context.Context, ownerID string, orders []models.OrderDescriptor, files []service.BatchFile) ([]models.UploadedImage, error) {
	m.LastOwner = ownerID
	m.LastOrders = orders
	m.Received = nil
	for _, f := range files {
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		m.Received = append(m.Received, data)
	}

	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, ownerID, orders, files)
	}

	out := make([]models.UploadedImage, len(orders))
	for _, o := range orders {
		img := models.UploadedImage{ID: "img-" + string(rune('a'+o.Order))}
		if o.URL != nil {
			img.ImageURL = *o.URL
		} else {
			img.ImageURL = "http://media.test/" + img.ID + ".jpg"
			img.OriginalFilename = files[*o.FileIndex].Filename
			img.FileSize = files[*o.FileIndex].Size
		}
		out[o.Order] = img
	}
	return out, nil
}

// MockDraftService is a mock implementation of DraftService
type MockDraftService struct {
	Drafts      map[string]*models.Draft
	CreateFunc  func(ctx context.Context, userID string, req *models.DraftRequest) (*models.Draft, error)
	DeleteError error
}

// Verify interface compliance
var _ service.DraftService = (*MockDraftService)(nil)

func NewMockDraftService() *MockDraftService {
	return &MockDraftService{
		Drafts: make(map[string]*models.Draft),
	}
}

func (m *MockDraftService) List(ctx context.Context, userID string) ([]models.Draft, error) {
	out := make([]models.Draft, 0, len(m.Drafts))
	for _, d := range m.Drafts {
		if d.UserID == userID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *MockDraftService) Get(ctx context.Context, userID, id string) (*models.Draft, error) {
	if d, ok := m.Drafts[id]; ok && d.UserID == userID {
		return d, nil
	}
	return nil, service.ErrNotFound
}

func (m *MockDraftService) Create(ctx context.Context, userID string, req *models.DraftRequest) (*models.Draft, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, userID, req)
	}
	d := &models.Draft{
		ID:        "draft-" + string(rune('a'+len(m.Drafts))),
		UserID:    userID,
		Content:   req.Content,
		ImageIDs:  req.ImageIDs,
		Hashtags:  req.Hashtags,
		CreatedAt: time.Now(),
	}
	m.Drafts[d.ID] = d
	return d, nil
}

func (m *MockDraftService) Delete(ctx context.Context, userID, id string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	if d, ok := m.Drafts[id]; ok && d.UserID == userID {
		delete(m.Drafts, id)
		return nil
	}
	return service.ErrNotFound
}

// MockSuggestionService is a mock implementation of SuggestionService
type MockSuggestionService struct {
	SuggestFunc func(ctx context.Context, req *models.SuggestRequest) (*models.SuggestResponse, error)
	Requests    []*models.SuggestRequest
}

// Verify interface compliance
var _ service.SuggestionService = (*MockSuggestionService)(nil)

func NewMockSuggestionService() *MockSuggestionService {
	return &MockSuggestionService{}
}

func (m *MockSuggestionService) Suggest(ctx context.Context, req *models.SuggestRequest) (*models.SuggestResponse, error) {
	m.Requests = append(m.Requests, req)
	if m.SuggestFunc != nil {
		return m.SuggestFunc(ctx, req)
	}
	if req.Mode.ListResult() {
		return &models.SuggestResponse{Results: []string{"demo"}}, nil
	}
	return &models.SuggestResponse{Result: "demo"}, nil
}

// MockContentService is a mock implementation of ContentService
type MockContentService struct {
	CreateShorlogFunc func(ctx context.Context, userID string, req *models.CreateShorlogRequest) (*models.Shorlog, error)
	LinkFunc          func(ctx context.Context, userID string, req *models.LinkRequest) (*models.Link, error)
	Shorlogs          map[string]*models.Shorlog
	Candidates        map[models.ContentType][]models.Candidate
	LastLimit         int
}

// Verify interface compliance
var _ service.ContentService = (*MockContentService)(nil)

func NewMockContentService() *MockContentService {
	return &MockContentService{
		Shorlogs:   make(map[string]*models.Shorlog),
		Candidates: make(map[models.ContentType][]models.Candidate),
	}
}

func (m *MockContentService) CreateShorlog(ctx context.Context, userID string, req *models.CreateShorlogRequest) (*models.Shorlog, error) {
	if m.CreateShorlogFunc != nil {
		return m.CreateShorlogFunc(ctx, userID, req)
	}
	s := &models.Shorlog{
		ID:        "shorlog-1",
		UserID:    userID,
		Content:   req.Content,
		ImageIDs:  req.ImageIDs,
		Hashtags:  req.Hashtags,
		CreatedAt: time.Now(),
	}
	m.Shorlogs[s.ID] = s
	return s, nil
}

func (m *MockContentService) GetShorlog(ctx context.Context, id string) (*models.Shorlog, error) {
	if s, ok := m.Shorlogs[id]; ok {
		return s, nil
	}
	return nil, service.ErrNotFound
}

func (m *MockContentService) CreateBlog(ctx context.Context, userID string, req *models.CreateBlogRequest) (*models.Blog, error) {
	return &models.Blog{ID: "blog-1", UserID: userID, Title: req.Title, Content: req.Content, CreatedAt: time.Now()}, nil
}

func (m *MockContentService) RecentCandidates(ctx context.Context, userID string, contentType models.ContentType, limit int) ([]models.Candidate, error) {
	m.LastLimit = limit
	items := m.Candidates[contentType]
	if items == nil {
		items = []models.Candidate{}
	}
	return items, nil
}

func (m *MockContentService) Link(ctx context.Context, userID string, req *models.LinkRequest) (*models.Link, error) {
	if m.LinkFunc != nil {
		return m.LinkFunc(ctx, userID, req)
	}
	return &models.Link{ID: "link-1", ShorlogID: req.SourceID, BlogID: req.TargetID, CreatedAt: time.Now()}, nil
}

// MockJanitorService is a mock implementation of JanitorService
type MockJanitorService struct {
	Started bool
	Stopped bool
	Sweeps  int
}

// Verify interface compliance
var _ service.JanitorService = (*MockJanitorService)(nil)

func NewMockJanitorService() *MockJanitorService {
	return &MockJanitorService{}
}

func (m *MockJanitorService) StartProcessor(ctx context.Context) {
	m.Started = true
}

func (m *MockJanitorService) StopProcessor() {
	m.Stopped = true
}

func (m *MockJanitorService) Sweep(ctx context.Context) (int, error) {
	m.Sweeps++
	return 0, nil
}
