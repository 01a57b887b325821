package services

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/username/agentportal/backend/src/drafts"
	"github.com/username/agentportal/backend/src/form"
	"github.com/username/agentportal/backend/src/logger"
	"github.com/username/agentportal/backend/src/models"
)

// FormSession is one agent's live wizard state. HTTP handlers race where a
// single browser thread did not, so every access goes through With.
type FormSession struct {
	ID     string
	mu     sync.Mutex
	wizard *form.Wizard
}

// With runs fn with exclusive access to the session's wizard.
func (fs *FormSession) With(fn func(w *form.Wizard)) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fn(fs.wizard)
}

// SessionService keeps live wizard sessions in a TTL cache, lazily restoring
// a persisted draft when a session first appears. Expired sessions simply
// fall out of the cache; their last autosaved draft remains restorable until
// the draft itself expires.
type SessionService struct {
	cache      *cache.Cache
	draftStore drafts.Store
	mu         sync.Mutex
}

func NewSessionService(draftStore drafts.Store, ttl time.Duration) *SessionService {
	return &SessionService{
		cache:      cache.New(ttl, 10*time.Minute),
		draftStore: draftStore,
	}
}

// GetOrCreate returns the live session for the ID, creating it (and
// restoring any persisted draft) on first access. Each access refreshes the
// cache TTL.
func (s *SessionService) GetOrCreate(sessionID string) *FormSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, found := s.cache.Get(sessionID); found {
		fs := v.(*FormSession)
		s.cache.SetDefault(sessionID, fs)
		return fs
	}

	fs := &FormSession{
		ID:     sessionID,
		wizard: form.NewWizard(form.NewStore()),
	}
	draft, err := s.draftStore.Load(sessionID)
	if err != nil {
		logger.L.Warn("Could not restore draft for new session", "sessionID", sessionID, "error", err)
	} else if draft != nil {
		fs.wizard.Store().Restore(draft)
		logger.L.Info("Restored draft into session", "sessionID", sessionID, "step", draft.CurrentStep)
	}
	s.cache.SetDefault(sessionID, fs)
	return fs
}

// Drop evicts a session from the cache, e.g. on logout.
func (s *SessionService) Drop(sessionID string) {
	s.cache.Delete(sessionID)
}

// DirtySnapshots returns a draft snapshot for every session with unsaved
// edits. Part of the drafts.Snapshotter contract.
func (s *SessionService) DirtySnapshots() map[string]*models.Draft {
	snapshots := map[string]*models.Draft{}
	for key, item := range s.cache.Items() {
		fs, ok := item.Object.(*FormSession)
		if !ok {
			continue
		}
		fs.With(func(w *form.Wizard) {
			if w.Store().HasTouched() {
				snapshots[key] = w.Store().Snapshot()
			}
		})
	}
	return snapshots
}

// MarkSaved acknowledges a successful draft save for a session.
func (s *SessionService) MarkSaved(key string) {
	if v, found := s.cache.Get(key); found {
		if fs, ok := v.(*FormSession); ok {
			fs.With(func(w *form.Wizard) {
				w.Store().MarkSaved()
			})
		}
	}
}
