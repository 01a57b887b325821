// backend/src/handlers/export_handler.go
package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/username/agentportal/backend/src/form"
	"github.com/username/agentportal/backend/src/logger"
	"github.com/username/agentportal/backend/src/services"
	"github.com/username/agentportal/backend/src/utils"
)

// ExportHandler streams the printable transaction summary PDF for the
// session's current record.
type ExportHandler struct {
	sessions *services.SessionService
	export   services.ExportService
}

func NewExportHandler(sessions *services.SessionService, export services.ExportService) *ExportHandler {
	return &ExportHandler{
		sessions: sessions,
		export:   export,
	}
}

func (h *ExportHandler) HandleExportPDF(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := GetSessionIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or session ID not found in context", http.StatusUnauthorized)
		return
	}
	fs := h.sessions.GetOrCreate(sessionID)

	var (
		pdfBytes  []byte
		renderErr error
		mls       string
	)
	fs.With(func(wz *form.Wizard) {
		rec := wz.Store().Record()
		mls = rec.PropertyData.MLSNumber
		pdfBytes, renderErr = h.export.RenderPDF(rec)
	})
	if renderErr != nil {
		logger.L.Error("PDF export failed", "sessionID", sessionID, "error", renderErr)
		utils.SendJSONError(w, "Could not generate the summary PDF", http.StatusInternalServerError)
		return
	}

	filename := exportFilename(mls)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(pdfBytes)))
	if _, err := w.Write(pdfBytes); err != nil {
		logger.L.Warn("PDF export write failed", "sessionID", sessionID, "error", err)
	}
}

func exportFilename(mls string) string {
	if mls = strings.TrimSpace(mls); mls != "" {
		return fmt.Sprintf("transaction-summary-%s.pdf", mls)
	}
	return fmt.Sprintf("transaction-summary-%s.pdf", time.Now().Format("2006-01-02"))
}
