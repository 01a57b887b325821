// backend/src/drafts/store.go
package drafts

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/username/agentportal/backend/src/logger"
	"github.com/username/agentportal/backend/src/models"
)

// Store persists in-progress transaction drafts keyed by session. It is
// swappable so the wizard can be tested without a database.
type Store interface {
	Save(key string, draft *models.Draft) error
	Load(key string) (*models.Draft, error)
	Clear(key string) error
}

// DefaultMaxAge is how long a saved draft stays restorable.
const DefaultMaxAge = 24 * time.Hour

// SQLiteStore keeps one row per draft key in the drafts table.
type SQLiteStore struct {
	db     *sql.DB
	maxAge time.Duration
}

func NewSQLiteStore(db *sql.DB, maxAge time.Duration) *SQLiteStore {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &SQLiteStore{db: db, maxAge: maxAge}
}

// Save upserts the draft payload for the key. The latest in-memory snapshot
// always wins; concurrent writers clobber each other by design.
func (s *SQLiteStore) Save(key string, draft *models.Draft) error {
	if draft == nil || draft.Data == nil {
		return fmt.Errorf("nothing to save for draft %q", key)
	}
	payload, err := json.Marshal(draft.Data)
	if err != nil {
		return fmt.Errorf("encoding draft %q: %w", key, err)
	}
	_, err = s.db.Exec(`
		INSERT INTO drafts (draft_key, payload, current_step, saved_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(draft_key) DO UPDATE SET
			payload = excluded.payload,
			current_step = excluded.current_step,
			saved_at = excluded.saved_at`,
		key, string(payload), draft.CurrentStep, draft.Timestamp)
	if err != nil {
		return fmt.Errorf("saving draft %q: %w", key, err)
	}
	return nil
}

// Load returns the stored draft, or (nil, nil) when there is none or the
// stored one is older than the max age. Stale and corrupt rows are deleted
// on the way out; corruption is reported as an error for the caller to
// surface as a non-fatal notice.
func (s *SQLiteStore) Load(key string) (*models.Draft, error) {
	var payload string
	var step int
	var savedAt int64
	err := s.db.QueryRow(
		`SELECT payload, current_step, saved_at FROM drafts WHERE draft_key = ?`, key).
		Scan(&payload, &step, &savedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading draft %q: %w", key, err)
	}

	age := time.Since(time.UnixMilli(savedAt))
	if age > s.maxAge {
		logger.L.Info("Discarding expired draft", "key", key, "age", age.String())
		if _, delErr := s.db.Exec(`DELETE FROM drafts WHERE draft_key = ?`, key); delErr != nil {
			logger.L.Warn("Failed to delete expired draft", "key", key, "error", delErr)
		}
		return nil, nil
	}

	var rec models.TransactionRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		logger.L.Warn("Discarding corrupt draft payload", "key", key, "error", err)
		if _, delErr := s.db.Exec(`DELETE FROM drafts WHERE draft_key = ?`, key); delErr != nil {
			logger.L.Warn("Failed to delete corrupt draft", "key", key, "error", delErr)
		}
		return nil, fmt.Errorf("draft %q is corrupt: %w", key, err)
	}
	if rec.Clients == nil {
		rec.Clients = []models.Client{}
	}
	return &models.Draft{Data: &rec, CurrentStep: step, Timestamp: savedAt}, nil
}

// Clear removes the draft for the key. Missing rows are not an error.
func (s *SQLiteStore) Clear(key string) error {
	if _, err := s.db.Exec(`DELETE FROM drafts WHERE draft_key = ?`, key); err != nil {
		return fmt.Errorf("clearing draft %q: %w", key, err)
	}
	return nil
}
