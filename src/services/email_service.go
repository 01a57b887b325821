// backend/src/services/email_service.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/username/agentportal/backend/src/config"
	"github.com/username/agentportal/backend/src/logger"
	"github.com/username/agentportal/backend/src/models"
)

func NewEmailService() EmailService {
	if config.Cfg == nil {
		slog.Error("Configuration (config.Cfg) is nil. Email service will default to mock.")
		return &MockEmailService{}
	}

	provider := strings.ToLower(config.Cfg.EmailServiceProvider)
	logger.L.Info("Initializing email service", "provider", provider)

	switch provider {
	case "mailgun":
		if config.Cfg.MailgunDomain == "" || config.Cfg.MailgunPrivateAPIKey == "" || config.Cfg.SenderEmail == "" {
			logger.L.Warn("Mailgun configuration incomplete (Domain, API Key, or SenderEmail missing). Falling back to MockEmailService.")
			return &MockEmailService{}
		}
		mg := mailgun.NewMailgun(config.Cfg.MailgunDomain, config.Cfg.MailgunPrivateAPIKey)
		logger.L.Info("Mailgun client initialized", "domain", config.Cfg.MailgunDomain)
		return &MailgunEmailService{
			mg:          mg,
			senderEmail: config.Cfg.SenderEmail,
			senderName:  config.Cfg.SenderName,
			recipient:   config.Cfg.SubmissionRecipient,
		}
	default:
		logger.L.Info("Defaulting to MockEmailService.")
		return &MockEmailService{}
	}
}

type MailgunEmailService struct {
	mg          mailgun.Mailgun
	senderEmail string
	senderName  string
	recipient   string
}

func (s *MailgunEmailService) SendSubmissionNotice(rec *models.TransactionRecord, summaryPDF []byte) error {
	from := fmt.Sprintf("%s <%s>", s.senderName, s.senderEmail)
	subject := fmt.Sprintf("New Transaction Intake: %s", subjectLine(rec))

	plainTextBody := fmt.Sprintf(`A new transaction intake form was submitted.

Agent: %s (%s)
Property: %s
MLS: %s
Closing Date: %s

The full transaction summary is attached as a PDF.`,
		rec.AgentData.Name, rec.AgentData.Email,
		rec.PropertyData.Address,
		rec.PropertyData.MLSNumber,
		rec.PropertyData.ClosingDate)

	message := s.mg.NewMessage(from, subject, plainTextBody, s.recipient)
	message.AddTag("transaction-intake")
	if len(summaryPDF) > 0 {
		message.AddBufferAttachment("transaction-summary.pdf", summaryPDF)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*20)
	defer cancel()
	resp, id, err := s.mg.Send(ctx, message)
	if err != nil {
		logger.L.Error("Failed to send submission notice via Mailgun", "error", err, "to", s.recipient, "mailgunResp", resp, "mailgunId", id)
		return fmt.Errorf("mailgun send failed: %w. Response: %s", err, resp)
	}
	logger.L.Info("Submission notice sent successfully via Mailgun", "to", s.recipient, "id", id, "mailgunResp", resp)
	return nil
}

type MockEmailService struct{}

func (m *MockEmailService) SendSubmissionNotice(rec *models.TransactionRecord, summaryPDF []byte) error {
	logger.L.Info("MockEmailService: Would send submission notice.",
		"agent", rec.AgentData.Name,
		"address", rec.PropertyData.Address,
		"attachmentBytes", len(summaryPDF))
	return nil
}

func subjectLine(rec *models.TransactionRecord) string {
	if rec.PropertyData.Address != "" {
		return rec.PropertyData.Address
	}
	if rec.PropertyData.MLSNumber != "" {
		return "MLS " + rec.PropertyData.MLSNumber
	}
	return rec.AgentData.Name
}
