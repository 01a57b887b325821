// backend/src/form/wizard.go
package form

import (
	"context"
	"errors"
	"time"

	"github.com/username/agentportal/backend/src/logger"
	"github.com/username/agentportal/backend/src/models"
	"github.com/username/agentportal/backend/src/validation"
)

// Submitter performs the external submission side effect (persist, export,
// notify). The wizard treats it as opaque: an error leaves the record intact
// for a retry.
type Submitter interface {
	Submit(ctx context.Context, sessionID string, rec *models.TransactionRecord) error
}

// StepListener is notified synchronously after every step transition.
type StepListener func(step int)

// ErrValidationFailed is returned by Submit when any step fails re-validation.
var ErrValidationFailed = errors.New("transaction record failed validation")

// ErrSubmissionInProgress guards against double submits on one session.
var ErrSubmissionInProgress = errors.New("a submission is already in progress")

// Wizard sequences the nine intake steps over a Store. Forward navigation is
// gated on step validation; jumping backwards or directly to a step (for
// "fix this field" links) is always allowed.
type Wizard struct {
	store     *Store
	listeners []StepListener
}

func NewWizard(store *Store) *Wizard {
	return &Wizard{store: store}
}

func (w *Wizard) Store() *Store { return w.store }

// OnStepChange registers a listener for step transitions.
func (w *Wizard) OnStepChange(fn StepListener) {
	w.listeners = append(w.listeners, fn)
}

// NextStep validates the current step and advances when it passes. The
// returned result carries the errors/warnings either way; moved reports
// whether the step actually changed.
func (w *Wizard) NextStep() (res validation.StepResult, moved bool) {
	res = validation.ValidateStep(w.store.CurrentStep(), w.store.Record())
	if !res.CanProceed {
		return res, false
	}
	if w.store.CurrentStep() >= validation.MaxStep {
		return res, false
	}
	w.transitionTo(w.store.CurrentStep() + 1)
	return res, true
}

// PreviousStep moves back one step without validation.
func (w *Wizard) PreviousStep() int {
	if w.store.CurrentStep() > validation.MinStep {
		w.transitionTo(w.store.CurrentStep() - 1)
	}
	return w.store.CurrentStep()
}

// GoToStep jumps directly to a step. Used by review-screen fix links, so no
// forward-only restriction applies.
func (w *Wizard) GoToStep(step int) error {
	if step < validation.MinStep || step > validation.MaxStep {
		return errors.New("step out of range")
	}
	if step != w.store.CurrentStep() {
		w.transitionTo(step)
	}
	return nil
}

// Submit re-validates every step in order. If any fails, the aggregate
// results are returned with ErrValidationFailed and nothing is cleared.
// Otherwise the submitter runs; on success the form resets, on failure the
// record stays populated and the submitting flag drops for a manual retry.
func (w *Wizard) Submit(ctx context.Context, sessionID string, submitter Submitter) (map[int]validation.StepResult, error) {
	if w.store.IsSubmitting() {
		return nil, ErrSubmissionInProgress
	}
	failed := validation.ValidateAll(w.store.Record())
	if len(failed) > 0 {
		logger.L.Warn("Submission blocked by validation", "sessionID", sessionID, "failedSteps", len(failed))
		return failed, ErrValidationFailed
	}

	w.store.setSubmitting(true)
	w.store.Record().SignatureData.DateSubmitted = time.Now().Format("2006-01-02")

	if err := submitter.Submit(ctx, sessionID, w.store.Record()); err != nil {
		w.store.setSubmitting(false)
		logger.L.Error("Submission side effect failed", "sessionID", sessionID, "error", err)
		return nil, err
	}

	w.store.Reset()
	w.notify(w.store.CurrentStep())
	logger.L.Info("Transaction submitted", "sessionID", sessionID)
	return nil, nil
}

func (w *Wizard) transitionTo(step int) {
	w.store.setStep(step)
	w.notify(step)
}

func (w *Wizard) notify(step int) {
	for _, fn := range w.listeners {
		fn(step)
	}
}
