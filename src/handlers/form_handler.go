// backend/src/handlers/form_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/username/agentportal/backend/src/form"
	"github.com/username/agentportal/backend/src/logger"
	"github.com/username/agentportal/backend/src/models"
	"github.com/username/agentportal/backend/src/services"
	"github.com/username/agentportal/backend/src/utils"
	"github.com/username/agentportal/backend/src/validation"
)

// FormHandler exposes the wizard over HTTP. Every endpoint resolves the
// caller's session, locks it, and operates on its wizard.
type FormHandler struct {
	sessions  *services.SessionService
	export    services.ExportService
	submitter form.Submitter
}

func NewFormHandler(sessions *services.SessionService, export services.ExportService, submitter form.Submitter) *FormHandler {
	return &FormHandler{
		sessions:  sessions,
		export:    export,
		submitter: submitter,
	}
}

func (h *FormHandler) session(w http.ResponseWriter, r *http.Request) (*services.FormSession, bool) {
	sessionID, ok := GetSessionIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or session ID not found in context", http.StatusUnauthorized)
		return nil, false
	}
	return h.sessions.GetOrCreate(sessionID), true
}

type formState struct {
	Record       *models.TransactionRecord `json:"record"`
	CurrentStep  int                       `json:"currentStep"`
	IsSubmitting bool                      `json:"isSubmitting"`
	StepResult   validation.StepResult     `json:"stepResult"`
}

func stateOf(w *form.Wizard) formState {
	st := w.Store()
	return formState{
		Record:       st.Record(),
		CurrentStep:  st.CurrentStep(),
		IsSubmitting: st.IsSubmitting(),
		StepResult:   validation.ValidateStep(st.CurrentStep(), st.Record()),
	}
}

// HandleGetState returns the full wizard state for the session, restoring a
// saved draft transparently on first access. Polling clients get an ETag so
// unchanged state costs a 304 instead of a full payload.
func (h *FormHandler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	fs, ok := h.session(w, r)
	if !ok {
		return
	}
	var state formState
	fs.With(func(wz *form.Wizard) {
		state = stateOf(wz)
	})

	if etag, err := utils.GenerateETag(state); err == nil {
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", etag)
	}
	utils.SendJSON(w, state, http.StatusOK)
}

// HandleUpdateField applies one field edit. Validation feedback rides along:
// commit=false gives the lenient while-typing message, commit=true (blur) the
// strict one. An invalid value is still stored; validation is advisory until
// submission.
func (h *FormHandler) HandleUpdateField(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path   string `json:"path"`
		Value  string `json:"value"`
		Commit bool   `json:"commit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Path == "" {
		utils.SendJSONError(w, "Field path is required", http.StatusBadRequest)
		return
	}

	fs, ok := h.session(w, r)
	if !ok {
		return
	}

	var (
		updateErr  error
		fieldError string
		required   bool
		record     *models.TransactionRecord
	)
	fs.With(func(wz *form.Wizard) {
		st := wz.Store()
		if updateErr = st.UpdateField(req.Path, req.Value); updateErr != nil {
			return
		}
		fieldError = validation.ValidateField(req.Path, req.Value, st.Record(), req.Commit)
		required = validation.IsFieldRequired(req.Path, st.Record())
		record = st.Record()
	})
	if updateErr != nil {
		utils.SendJSONError(w, updateErr.Error(), http.StatusBadRequest)
		return
	}

	utils.SendJSON(w, map[string]interface{}{
		"record":     record,
		"fieldError": fieldError,
		"required":   required,
		"step":       form.StepForField(req.Path),
	}, http.StatusOK)
}

func (h *FormHandler) HandleAddClient(w http.ResponseWriter, r *http.Request) {
	fs, ok := h.session(w, r)
	if !ok {
		return
	}
	var (
		client  models.Client
		clients []models.Client
	)
	fs.With(func(wz *form.Wizard) {
		client = wz.Store().AddClient()
		clients = wz.Store().Record().Clients
	})
	utils.SendJSON(w, map[string]interface{}{
		"client":  client,
		"clients": clients,
	}, http.StatusCreated)
}

func (h *FormHandler) HandleUpdateClient(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		utils.SendJSONError(w, "Invalid client index", http.StatusBadRequest)
		return
	}
	var patch form.ClientPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	fs, ok := h.session(w, r)
	if !ok {
		return
	}
	var (
		updateErr error
		clients   []models.Client
	)
	fs.With(func(wz *form.Wizard) {
		if updateErr = wz.Store().UpdateClient(index, patch); updateErr == nil {
			clients = wz.Store().Record().Clients
		}
	})
	if updateErr != nil {
		utils.SendJSONError(w, updateErr.Error(), http.StatusBadRequest)
		return
	}
	utils.SendJSON(w, map[string]interface{}{"clients": clients}, http.StatusOK)
}

func (h *FormHandler) HandleRemoveClient(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		utils.SendJSONError(w, "Invalid client index", http.StatusBadRequest)
		return
	}

	fs, ok := h.session(w, r)
	if !ok {
		return
	}
	var (
		removeErr error
		clients   []models.Client
	)
	fs.With(func(wz *form.Wizard) {
		if removeErr = wz.Store().RemoveClient(index); removeErr == nil {
			clients = wz.Store().Record().Clients
		}
	})
	if removeErr != nil {
		// Minimum-client refusals are business rules, not malformed requests.
		utils.SendJSONError(w, removeErr.Error(), http.StatusConflict)
		return
	}
	utils.SendJSON(w, map[string]interface{}{"clients": clients}, http.StatusOK)
}

// HandleNextStep validates the current step and advances when it passes. The
// validation result is returned either way so the UI can render errors and
// warnings inline.
func (h *FormHandler) HandleNextStep(w http.ResponseWriter, r *http.Request) {
	fs, ok := h.session(w, r)
	if !ok {
		return
	}
	var (
		result validation.StepResult
		moved  bool
		step   int
	)
	fs.With(func(wz *form.Wizard) {
		result, moved = wz.NextStep()
		step = wz.Store().CurrentStep()
	})
	utils.SendJSON(w, map[string]interface{}{
		"currentStep": step,
		"moved":       moved,
		"result":      result,
	}, http.StatusOK)
}

func (h *FormHandler) HandlePreviousStep(w http.ResponseWriter, r *http.Request) {
	fs, ok := h.session(w, r)
	if !ok {
		return
	}
	var step int
	fs.With(func(wz *form.Wizard) {
		step = wz.PreviousStep()
	})
	utils.SendJSON(w, map[string]interface{}{"currentStep": step}, http.StatusOK)
}

func (h *FormHandler) HandleGoToStep(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Step int `json:"step"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	fs, ok := h.session(w, r)
	if !ok {
		return
	}
	var (
		gotoErr error
		step    int
	)
	fs.With(func(wz *form.Wizard) {
		gotoErr = wz.GoToStep(req.Step)
		step = wz.Store().CurrentStep()
	})
	if gotoErr != nil {
		utils.SendJSONError(w, gotoErr.Error(), http.StatusBadRequest)
		return
	}
	utils.SendJSON(w, map[string]interface{}{"currentStep": step}, http.StatusOK)
}

// HandleValidate runs step validation on demand. With ?step=n it validates
// one step; without, it returns the failing steps across the whole form.
func (h *FormHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	fs, ok := h.session(w, r)
	if !ok {
		return
	}

	stepParam := r.URL.Query().Get("step")
	if stepParam != "" {
		step, err := strconv.Atoi(stepParam)
		if err != nil || step < validation.MinStep || step > validation.MaxStep {
			utils.SendJSONError(w, "Invalid step", http.StatusBadRequest)
			return
		}
		var result validation.StepResult
		fs.With(func(wz *form.Wizard) {
			result = validation.ValidateStep(step, wz.Store().Record())
		})
		utils.SendJSON(w, map[string]interface{}{
			"step":   step,
			"result": result,
		}, http.StatusOK)
		return
	}

	var failed map[int]validation.StepResult
	fs.With(func(wz *form.Wizard) {
		failed = validation.ValidateAll(wz.Store().Record())
	})
	utils.SendJSON(w, map[string]interface{}{
		"failedSteps": failed,
		"valid":       len(failed) == 0,
	}, http.StatusOK)
}

// HandleSubmit re-validates everything and runs the submission side effects.
// Validation failures come back as 422 with the per-step results; a side
// effect failure leaves the form intact for retry.
func (h *FormHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := GetSessionIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or session ID not found in context", http.StatusUnauthorized)
		return
	}
	fs := h.sessions.GetOrCreate(sessionID)

	var (
		failed    map[int]validation.StepResult
		submitErr error
	)
	fs.With(func(wz *form.Wizard) {
		failed, submitErr = wz.Submit(r.Context(), sessionID, h.submitter)
	})

	switch {
	case errors.Is(submitErr, form.ErrSubmissionInProgress):
		utils.SendJSONError(w, submitErr.Error(), http.StatusConflict)
	case errors.Is(submitErr, form.ErrValidationFailed):
		utils.SendJSON(w, map[string]interface{}{
			"error":       "Please fix the highlighted steps before submitting",
			"failedSteps": failed,
		}, http.StatusUnprocessableEntity)
	case submitErr != nil:
		logger.FromContext(r.Context()).Error("Submission failed", "error", submitErr)
		utils.SendJSONError(w, "Submission failed, please try again", http.StatusInternalServerError)
	default:
		utils.SendJSON(w, map[string]string{"message": "Transaction submitted"}, http.StatusOK)
	}
}

func (h *FormHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	fs, ok := h.session(w, r)
	if !ok {
		return
	}
	var state formState
	fs.With(func(wz *form.Wizard) {
		wz.Store().Reset()
		state = stateOf(wz)
	})
	utils.SendJSON(w, state, http.StatusOK)
}

// HandleReview returns the flattened section/field review payload, each field
// carrying the step to jump back to for edits.
func (h *FormHandler) HandleReview(w http.ResponseWriter, r *http.Request) {
	fs, ok := h.session(w, r)
	if !ok {
		return
	}
	var (
		sections []services.SectionReview
		failed   map[int]validation.StepResult
	)
	fs.With(func(wz *form.Wizard) {
		rec := wz.Store().Record()
		sections = h.export.BuildReview(rec)
		failed = validation.ValidateAll(rec)
	})
	utils.SendJSON(w, map[string]interface{}{
		"sections":      sections,
		"failedSteps":   failed,
		"readyToSubmit": len(failed) == 0,
	}, http.StatusOK)
}
