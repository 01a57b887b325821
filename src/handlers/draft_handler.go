// backend/src/handlers/draft_handler.go
package handlers

import (
	"net/http"
	"time"

	"github.com/username/agentportal/backend/src/drafts"
	"github.com/username/agentportal/backend/src/form"
	"github.com/username/agentportal/backend/src/logger"
	"github.com/username/agentportal/backend/src/models"
	"github.com/username/agentportal/backend/src/services"
	"github.com/username/agentportal/backend/src/utils"
)

// DraftHandler covers explicit draft operations: manual save, restore check,
// and discard. The 30-second autosaver handles the background saves; these
// endpoints back the "Save draft" button and the restore prompt.
type DraftHandler struct {
	sessions *services.SessionService
	store    drafts.Store
}

func NewDraftHandler(sessions *services.SessionService, store drafts.Store) *DraftHandler {
	return &DraftHandler{
		sessions: sessions,
		store:    store,
	}
}

func (h *DraftHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := GetSessionIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or session ID not found in context", http.StatusUnauthorized)
		return
	}
	fs := h.sessions.GetOrCreate(sessionID)

	var (
		draft   *models.Draft
		saveErr error
	)
	fs.With(func(wz *form.Wizard) {
		draft = wz.Store().Snapshot()
		if saveErr = h.store.Save(sessionID, draft); saveErr == nil {
			wz.Store().MarkSaved()
		}
	})
	if saveErr != nil {
		// Draft persistence failing must never block the agent's work.
		logger.L.Warn("Manual draft save failed", "sessionID", sessionID, "error", saveErr)
		utils.SendJSON(w, map[string]interface{}{
			"saved":  false,
			"notice": "Your draft could not be saved. Your work is still in this session.",
		}, http.StatusOK)
		return
	}
	utils.SendJSON(w, map[string]interface{}{
		"saved":   true,
		"savedAt": draft.Timestamp,
	}, http.StatusOK)
}

// HandleLoad reports whether a restorable draft exists for the session. A
// corrupt or missing draft is not an error to the caller, only an absence.
func (h *DraftHandler) HandleLoad(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := GetSessionIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or session ID not found in context", http.StatusUnauthorized)
		return
	}

	draft, err := h.store.Load(sessionID)
	if err != nil {
		logger.L.Warn("Draft load failed", "sessionID", sessionID, "error", err)
		utils.SendJSON(w, map[string]interface{}{
			"draft":  nil,
			"notice": "A saved draft could not be restored and was discarded.",
		}, http.StatusOK)
		return
	}
	if draft == nil {
		utils.SendJSON(w, map[string]interface{}{"draft": nil}, http.StatusOK)
		return
	}
	utils.SendJSON(w, map[string]interface{}{
		"draft":   draft,
		"savedAt": time.UnixMilli(draft.Timestamp).UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

func (h *DraftHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := GetSessionIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or session ID not found in context", http.StatusUnauthorized)
		return
	}
	if err := h.store.Clear(sessionID); err != nil {
		logger.L.Warn("Draft clear failed", "sessionID", sessionID, "error", err)
		utils.SendJSONError(w, "Could not discard the draft", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, map[string]string{"message": "Draft discarded"}, http.StatusOK)
}
