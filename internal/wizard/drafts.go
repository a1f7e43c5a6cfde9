package wizard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shorlog-studio/internal/models"
)

// DraftStore is the draft API the manager depends on
type DraftStore interface {
	ListDrafts(ctx context.Context) ([]models.Draft, error)
	GetDraft(ctx context.Context, id string) (*models.Draft, error)
	CreateDraft(ctx context.Context, req *models.DraftRequest) (*models.Draft, error)
	DeleteDraft(ctx context.Context, id string) error
}

// DraftManager keeps the user's draft list and enforces the draft cap before
// anything is sent.
type DraftManager struct {
	store DraftStore
	now   func() time.Time

	mu     sync.Mutex
	drafts []models.Draft
	listed bool
}

// NewDraftManager creates a manager over store
func NewDraftManager(store DraftStore, now func() time.Time) *DraftManager {
	if now == nil {
		now = time.Now
	}
	return &DraftManager{store: store, now: now}
}

// List fetches the drafts and caches them
func (m *DraftManager) List(ctx context.Context) ([]models.Draft, error) {
	drafts, err := m.store.ListDrafts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load drafts: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.drafts = append([]models.Draft(nil), drafts...)
	m.listed = true
	return m.copyLocked(), nil
}

// Drafts returns the cached list
func (m *DraftManager) Drafts() []models.Draft {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.copyLocked()
}

// Save creates a draft. It needs at least one uploaded image and is refused
// locally once MaxDrafts are known to exist. The cap is only checked without
// a round trip after List or Mount; a manager that never listed lists first.
func (m *DraftManager) Save(ctx context.Context, content string, imageIDs, hashtags []string) (*models.Draft, error) {
	if len(imageIDs) == 0 {
		return nil, ErrDraftNeedsImages
	}

	m.mu.Lock()
	listed := m.listed
	m.mu.Unlock()
	if !listed {
		if _, err := m.List(ctx); err != nil {
			return nil, err
		}
	}

	m.mu.Lock()
	full := len(m.drafts) >= models.MaxDrafts
	m.mu.Unlock()
	if full {
		return nil, ErrDraftLimitReached
	}

	draft, err := m.store.CreateDraft(ctx, &models.DraftRequest{
		Content:  content,
		ImageIDs: imageIDs,
		Hashtags: hashtags,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}

	m.mu.Lock()
	m.drafts = append([]models.Draft{*draft}, m.drafts...)
	m.mu.Unlock()
	return draft, nil
}

// Load fetches one draft
func (m *DraftManager) Load(ctx context.Context, id string) (*models.Draft, error) {
	draft, err := m.store.GetDraft(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}
	return draft, nil
}

// Delete removes a draft once confirm agrees. It reports whether the delete
// was issued.
func (m *DraftManager) Delete(ctx context.Context, id string, confirm func() bool) (bool, error) {
	if confirm == nil || !confirm() {
		return false, nil
	}

	if err := m.store.DeleteDraft(ctx, id); err != nil {
		return false, fmt.Errorf("failed to delete draft: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, d := range m.drafts {
		if d.ID == id {
			m.drafts = append(m.drafts[:i], m.drafts[i+1:]...)
			break
		}
	}
	return true, nil
}

// IsStale reports whether d should be shown dimmed
func (m *DraftManager) IsStale(d models.Draft) bool {
	return d.IsStale(m.now())
}

func (m *DraftManager) copyLocked() []models.Draft {
	out := make([]models.Draft, len(m.drafts))
	copy(out, m.drafts)
	return out
}
