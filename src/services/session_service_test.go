package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/agentportal/backend/src/form"
	"github.com/username/agentportal/backend/src/models"
)

type stubDraftStore struct {
	mu      sync.Mutex
	drafts  map[string]*models.Draft
	loadErr error
}

func newStubDraftStore() *stubDraftStore {
	return &stubDraftStore{drafts: map[string]*models.Draft{}}
}

func (s *stubDraftStore) Save(key string, draft *models.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[key] = draft
	return nil
}

func (s *stubDraftStore) Load(key string) (*models.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.drafts[key], nil
}

func (s *stubDraftStore) Clear(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, key)
	return nil
}

func TestSessionService_GetOrCreate(t *testing.T) {
	svc := NewSessionService(newStubDraftStore(), time.Hour)

	fs := svc.GetOrCreate("sess-1")
	require.NotNil(t, fs)
	assert.Equal(t, "sess-1", fs.ID)

	// Same ID returns the same live session.
	again := svc.GetOrCreate("sess-1")
	assert.Same(t, fs, again)

	other := svc.GetOrCreate("sess-2")
	assert.NotSame(t, fs, other)
}

func TestSessionService_RestoresDraftOnFirstAccess(t *testing.T) {
	store := newStubDraftStore()
	rec := models.NewTransactionRecord()
	rec.AgentData.Name = "Jane Agent"
	store.drafts["sess-1"] = &models.Draft{Data: rec, CurrentStep: 5, Timestamp: time.Now().UnixMilli()}

	svc := NewSessionService(store, time.Hour)
	fs := svc.GetOrCreate("sess-1")

	fs.With(func(w *form.Wizard) {
		assert.Equal(t, "Jane Agent", w.Store().Record().AgentData.Name)
		assert.Equal(t, 5, w.Store().CurrentStep())
		assert.False(t, w.Store().HasTouched())
	})
}

func TestSessionService_DraftLoadFailureStillCreates(t *testing.T) {
	store := newStubDraftStore()
	store.loadErr = errors.New("corrupt draft")

	svc := NewSessionService(store, time.Hour)
	fs := svc.GetOrCreate("sess-1")
	require.NotNil(t, fs)
	fs.With(func(w *form.Wizard) {
		assert.Equal(t, 1, w.Store().CurrentStep())
	})
}

func TestSessionService_Drop(t *testing.T) {
	svc := NewSessionService(newStubDraftStore(), time.Hour)

	fs := svc.GetOrCreate("sess-1")
	fs.With(func(w *form.Wizard) {
		require.NoError(t, w.Store().UpdateField("agentData.name", "Jane Agent"))
	})
	svc.Drop("sess-1")

	// A fresh session comes back empty (no draft was ever saved).
	recreated := svc.GetOrCreate("sess-1")
	recreated.With(func(w *form.Wizard) {
		assert.Empty(t, w.Store().Record().AgentData.Name)
	})
}

func TestSessionService_Snapshotter(t *testing.T) {
	svc := NewSessionService(newStubDraftStore(), time.Hour)

	dirty := svc.GetOrCreate("sess-dirty")
	dirty.With(func(w *form.Wizard) {
		require.NoError(t, w.Store().UpdateField("agentData.name", "Jane Agent"))
	})
	svc.GetOrCreate("sess-clean")

	snapshots := svc.DirtySnapshots()
	require.Len(t, snapshots, 1)
	require.Contains(t, snapshots, "sess-dirty")
	assert.Equal(t, "Jane Agent", snapshots["sess-dirty"].Data.AgentData.Name)

	svc.MarkSaved("sess-dirty")
	assert.Empty(t, svc.DirtySnapshots())
}
