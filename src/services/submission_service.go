package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/username/agentportal/backend/src/drafts"
	"github.com/username/agentportal/backend/src/logger"
	"github.com/username/agentportal/backend/src/models"
	"github.com/username/agentportal/backend/src/validation"
)

// SubmissionService performs the full submission side effect: render the
// summary PDF, notify the coordination team, persist the submission row, and
// clear the now-obsolete draft. It satisfies form.Submitter.
type SubmissionService struct {
	db         *sql.DB
	export     ExportService
	email      EmailService
	draftStore drafts.Store
}

func NewSubmissionService(db *sql.DB, export ExportService, email EmailService, draftStore drafts.Store) *SubmissionService {
	return &SubmissionService{
		db:         db,
		export:     export,
		email:      email,
		draftStore: draftStore,
	}
}

func (s *SubmissionService) Submit(ctx context.Context, sessionID string, rec *models.TransactionRecord) error {
	pdfBytes, err := s.export.RenderPDF(rec)
	if err != nil {
		return fmt.Errorf("rendering submission summary: %w", err)
	}

	if err := s.email.SendSubmissionNotice(rec, pdfBytes); err != nil {
		return fmt.Errorf("sending submission notice: %w", err)
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("serializing submission: %w", err)
	}
	// The denormalized columns end up in coordinator spreadsheets, so guard
	// against formula injection.
	sub := models.Submission{
		SessionID:   sessionID,
		AgentName:   validation.SanitizeForFormulaInjection(rec.AgentData.Name),
		AgentRole:   rec.AgentData.Role,
		MLSNumber:   rec.PropertyData.MLSNumber,
		Address:     validation.SanitizeForFormulaInjection(rec.PropertyData.Address),
		ClosingDate: rec.PropertyData.ClosingDate,
		Payload:     string(payload),
		SubmittedAt: time.Now().UTC(),
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO submissions (session_id, agent_name, agent_role, mls_number, address, closing_date, payload, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.SessionID,
		sub.AgentName,
		string(sub.AgentRole),
		sub.MLSNumber,
		sub.Address,
		sub.ClosingDate,
		sub.Payload,
		sub.SubmittedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("persisting submission: %w", err)
	}

	// The draft is stale once the submission landed; a failed delete only
	// means a harmless restore prompt next session.
	if err := s.draftStore.Clear(sessionID); err != nil {
		logger.L.Warn("Could not clear draft after submission", "sessionID", sessionID, "error", err)
	}

	logger.L.Info("Submission stored", "sessionID", sessionID, "mlsNumber", rec.PropertyData.MLSNumber)
	return nil
}
