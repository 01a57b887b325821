// backend/src/drafts/autosave.go
package drafts

import (
	"context"
	"time"

	"github.com/username/agentportal/backend/src/logger"
	"github.com/username/agentportal/backend/src/models"
)

// DefaultAutosaveInterval matches the portal's 30-second autosave cadence.
const DefaultAutosaveInterval = 30 * time.Second

// Snapshotter exposes the dirty sessions' snapshots to the autosaver and
// acknowledges successful saves. The session layer implements it.
type Snapshotter interface {
	DirtySnapshots() map[string]*models.Draft
	MarkSaved(key string)
}

// Autosaver periodically persists every session that has touched fields
// since its last save. Save failures are logged and skipped; they never
// take the session down.
type Autosaver struct {
	store    Store
	sessions Snapshotter
	interval time.Duration
}

func NewAutosaver(store Store, sessions Snapshotter, interval time.Duration) *Autosaver {
	if interval <= 0 {
		interval = DefaultAutosaveInterval
	}
	return &Autosaver{store: store, sessions: sessions, interval: interval}
}

// Run ticks until the context is cancelled.
func (a *Autosaver) Run(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	logger.L.Info("Draft autosaver started", "interval", a.interval.String())
	for {
		select {
		case <-ctx.Done():
			logger.L.Info("Draft autosaver stopped")
			return
		case <-ticker.C:
			a.saveDirty()
		}
	}
}

func (a *Autosaver) saveDirty() {
	for key, draft := range a.sessions.DirtySnapshots() {
		if err := a.store.Save(key, draft); err != nil {
			logger.L.Warn("Autosave failed", "key", key, "error", err)
			continue
		}
		a.sessions.MarkSaved(key)
		logger.L.Debug("Autosaved draft", "key", key, "step", draft.CurrentStep)
	}
}
