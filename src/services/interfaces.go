package services

import (
	"github.com/username/agentportal/backend/src/models"
)

// EmailService delivers the completed-intake notification to the
// coordination team.
type EmailService interface {
	SendSubmissionNotice(rec *models.TransactionRecord, summaryPDF []byte) error
}

// ExportService turns a transaction record into its review payload and the
// printable summary document. It is a pure consumer: no validation, no
// mutation.
type ExportService interface {
	BuildReview(rec *models.TransactionRecord) []SectionReview
	RenderPDF(rec *models.TransactionRecord) ([]byte, error)
}
