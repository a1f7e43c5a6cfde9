package wizard_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shorlog-studio/internal/models"
	"github.com/shorlog-studio/internal/wizard"
)

func TestDraftManager_SaveRefusedAtLimit(t *testing.T) {
	backend := newFakeBackend()
	for i := 0; i < models.MaxDrafts; i++ {
		backend.drafts = append(backend.drafts, models.Draft{ID: fmt.Sprintf("d%d", i)})
	}
	m := wizard.NewDraftManager(backend, nil)

	_, err := m.Save(context.Background(), "text", []string{"img-1"}, nil)
	assert.ErrorIs(t, err, wizard.ErrDraftLimitReached)
	assert.Zero(t, backend.createDraftCalls)
	assert.Equal(t, 1, backend.listCalls, "an unlisted manager loads drafts first")
}

func TestDraftManager_SaveAfterListSkipsNetworkAtLimit(t *testing.T) {
	backend := newFakeBackend()
	for i := 0; i < models.MaxDrafts; i++ {
		backend.drafts = append(backend.drafts, models.Draft{ID: fmt.Sprintf("d%d", i)})
	}
	m := wizard.NewDraftManager(backend, nil)
	ctx := context.Background()

	_, err := m.List(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, backend.listCalls)

	_, err = m.Save(ctx, "sixth", []string{"img-1"}, nil)
	assert.ErrorIs(t, err, wizard.ErrDraftLimitReached)
	assert.Equal(t, 1, backend.listCalls, "a listed manager checks the cap locally")
	assert.Zero(t, backend.createDraftCalls)
}

func TestDraftManager_SaveNeedsImages(t *testing.T) {
	backend := newFakeBackend()
	m := wizard.NewDraftManager(backend, nil)

	_, err := m.Save(context.Background(), "text", nil, nil)
	assert.ErrorIs(t, err, wizard.ErrDraftNeedsImages)
	assert.Zero(t, backend.listCalls)
	assert.Zero(t, backend.createDraftCalls)
}

func TestDraftManager_SavePrepends(t *testing.T) {
	backend := newFakeBackend()
	backend.drafts = []models.Draft{{ID: "old"}}
	m := wizard.NewDraftManager(backend, nil)
	ctx := context.Background()

	_, err := m.List(ctx)
	require.NoError(t, err)

	draft, err := m.Save(ctx, "new text", []string{"img-1"}, []string{"tag"})
	require.NoError(t, err)
	assert.Equal(t, "new text", draft.Content)

	drafts := m.Drafts()
	require.Len(t, drafts, 2)
	assert.Equal(t, draft.ID, drafts[0].ID)
	assert.Equal(t, "old", drafts[1].ID)
	assert.Equal(t, 1, backend.listCalls)
}

func TestDraftManager_DeleteNeedsConfirmation(t *testing.T) {
	backend := newFakeBackend()
	backend.drafts = []models.Draft{{ID: "d1"}, {ID: "d2"}}
	m := wizard.NewDraftManager(backend, nil)
	ctx := context.Background()
	_, err := m.List(ctx)
	require.NoError(t, err)

	deleted, err := m.Delete(ctx, "d1", nil)
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = m.Delete(ctx, "d1", func() bool { return false })
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Empty(t, backend.deletedDrafts)

	deleted, err = m.Delete(ctx, "d1", func() bool { return true })
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, []string{"d1"}, backend.deletedDrafts)
	require.Len(t, m.Drafts(), 1)
	assert.Equal(t, "d2", m.Drafts()[0].ID)
}

func TestDraftManager_IsStale(t *testing.T) {
	now := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)
	m := wizard.NewDraftManager(newFakeBackend(), func() time.Time { return now })

	assert.False(t, m.IsStale(models.Draft{CreatedAt: now.Add(-time.Hour)}))
	assert.False(t, m.IsStale(models.Draft{CreatedAt: now.Add(-models.DraftStaleAfter)}))
	assert.True(t, m.IsStale(models.Draft{CreatedAt: now.Add(-models.DraftStaleAfter - time.Minute)}))
}

func TestWizard_DeleteLastDraftClosesPicker(t *testing.T) {
	h := newHarness(t)
	h.backend.drafts = []models.Draft{{ID: "d1"}}
	ctx := context.Background()
	require.NoError(t, h.w.Mount(ctx))
	require.Equal(t, wizard.PanelDraftPicker, h.w.State().Panel)

	deleted, err := h.w.DeleteDraft(ctx, "d1", func() bool { return true })
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Empty(t, h.w.Drafts())
	assert.Empty(t, h.w.State().Panel)
}

func TestWizard_DraftTilesMarkStale(t *testing.T) {
	h := newHarness(t)
	h.backend.drafts = []models.Draft{
		{ID: "fresh", CreatedAt: time.Now()},
		{ID: "old", CreatedAt: time.Now().Add(-30 * 24 * time.Hour)},
	}
	require.NoError(t, h.w.Mount(context.Background()))

	tiles := h.w.Drafts()
	require.Len(t, tiles, 2)
	assert.False(t, tiles[0].Stale)
	assert.True(t, tiles[1].Stale)
}
