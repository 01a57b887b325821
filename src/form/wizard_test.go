package form

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/agentportal/backend/src/models"
)

type fakeSubmitter struct {
	err      error
	calls    int
	received *models.TransactionRecord
}

func (f *fakeSubmitter) Submit(ctx context.Context, sessionID string, rec *models.TransactionRecord) error {
	f.calls++
	f.received = rec
	return f.err
}

// completeRecord fills the store with a record that passes every step.
func completeRecord(t *testing.T, s *Store) {
	t.Helper()
	fields := map[string]string{
		"agentData.role":                           "LISTING_AGENT",
		"agentData.name":                           "Jane Agent",
		"propertyData.mlsNumber":                   "PM-123456",
		"propertyData.address":                     "123 Main St, Media, PA",
		"propertyData.salePrice":                   "425000",
		"propertyData.closingDate":                 time.Now().AddDate(0, 0, 30).Format("2006-01-02"),
		"propertyData.county":                      "Delaware",
		"propertyData.propertyType":                "RESIDENTIAL",
		"propertyData.accessType":                  "ELECTRONIC_LOCKBOX",
		"commissionData.totalCommissionPercentage": "6",
		"commissionData.listingAgentPercentage":    "3",
		"documents.documentsConfirmed":             "true",
		"signatureData.signature":                  "Jane Agent",
		"signatureData.termsAccepted":              "true",
		"signatureData.infoConfirmed":              "true",
	}
	for path, value := range fields {
		require.NoError(t, s.UpdateField(path, value))
	}
	s.AddClient()
	name := "Sam Seller"
	require.NoError(t, s.UpdateClient(0, ClientPatch{Name: &name}))
}

func TestWizard_NextStepGating(t *testing.T) {
	w := NewWizard(NewStore())

	// Step 1 requires role and name.
	res, moved := w.NextStep()
	assert.False(t, moved)
	assert.False(t, res.CanProceed)
	assert.Equal(t, 1, w.Store().CurrentStep())

	require.NoError(t, w.Store().UpdateField("agentData.role", "BUYERS_AGENT"))
	require.NoError(t, w.Store().UpdateField("agentData.name", "Jane Agent"))
	res, moved = w.NextStep()
	assert.True(t, moved)
	assert.True(t, res.CanProceed)
	assert.Equal(t, 2, w.Store().CurrentStep())
}

func TestWizard_NextStepStopsAtLast(t *testing.T) {
	w := NewWizard(NewStore())
	completeRecord(t, w.Store())
	require.NoError(t, w.GoToStep(9))

	_, moved := w.NextStep()
	assert.False(t, moved)
	assert.Equal(t, 9, w.Store().CurrentStep())
}

func TestWizard_PreviousStep(t *testing.T) {
	w := NewWizard(NewStore())
	require.NoError(t, w.GoToStep(3))

	assert.Equal(t, 2, w.PreviousStep())
	assert.Equal(t, 1, w.PreviousStep())
	// Never below the first step.
	assert.Equal(t, 1, w.PreviousStep())
}

func TestWizard_GoToStep(t *testing.T) {
	w := NewWizard(NewStore())

	// Jumping forward past invalid steps is allowed; only the range is checked.
	require.NoError(t, w.GoToStep(7))
	assert.Equal(t, 7, w.Store().CurrentStep())

	assert.Error(t, w.GoToStep(0))
	assert.Error(t, w.GoToStep(10))
	assert.Equal(t, 7, w.Store().CurrentStep())
}

func TestWizard_StepListeners(t *testing.T) {
	w := NewWizard(NewStore())
	var seen []int
	w.OnStepChange(func(step int) { seen = append(seen, step) })

	require.NoError(t, w.GoToStep(3))
	w.PreviousStep()
	// Jumping to the current step is a no-op, no notification.
	require.NoError(t, w.GoToStep(2))

	assert.Equal(t, []int{3, 2}, seen)
}

func TestWizard_SubmitValidationFailure(t *testing.T) {
	w := NewWizard(NewStore())
	completeRecord(t, w.Store())
	require.NoError(t, w.Store().UpdateField("signatureData.termsAccepted", "false"))

	sub := &fakeSubmitter{}
	failed, err := w.Submit(context.Background(), "sess-1", sub)
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.Contains(t, failed, 9)
	assert.Zero(t, sub.calls)
	// Nothing was cleared.
	assert.Equal(t, "Jane Agent", w.Store().Record().AgentData.Name)
}

func TestWizard_SubmitSuccess(t *testing.T) {
	w := NewWizard(NewStore())
	completeRecord(t, w.Store())

	var steps []int
	w.OnStepChange(func(step int) { steps = append(steps, step) })

	sub := &fakeSubmitter{}
	failed, err := w.Submit(context.Background(), "sess-1", sub)
	require.NoError(t, err)
	assert.Nil(t, failed)
	assert.Equal(t, 1, sub.calls)

	// The submitted record carries the submission date stamp.
	require.NotNil(t, sub.received)
	assert.Equal(t, time.Now().Format("2006-01-02"), sub.received.SignatureData.DateSubmitted)

	// The form reset back to a fresh step 1.
	assert.Empty(t, w.Store().Record().AgentData.Name)
	assert.Equal(t, 1, w.Store().CurrentStep())
	assert.False(t, w.Store().IsSubmitting())
	assert.Equal(t, []int{1}, steps)
}

func TestWizard_SubmitterFailureKeepsRecord(t *testing.T) {
	w := NewWizard(NewStore())
	completeRecord(t, w.Store())

	sub := &fakeSubmitter{err: errors.New("smtp down")}
	_, err := w.Submit(context.Background(), "sess-1", sub)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrValidationFailed)

	// The record survives for a retry and the submitting flag dropped.
	assert.Equal(t, "Jane Agent", w.Store().Record().AgentData.Name)
	assert.False(t, w.Store().IsSubmitting())

	sub.err = nil
	_, err = w.Submit(context.Background(), "sess-1", sub)
	assert.NoError(t, err)
	assert.Equal(t, 2, sub.calls)
}
