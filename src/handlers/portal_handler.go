// backend/src/handlers/portal_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/username/agentportal/backend/src/config"
	"github.com/username/agentportal/backend/src/database"
	"github.com/username/agentportal/backend/src/logger"
	"github.com/username/agentportal/backend/src/model"
	"github.com/username/agentportal/backend/src/security"
	"github.com/username/agentportal/backend/src/services"
	"github.com/username/agentportal/backend/src/utils"
)

// PortalHandler implements the shared-password gate. It is a convenience
// barrier, not account authentication: everyone enters the same password and
// gets an anonymous session.
type PortalHandler struct {
	authService *security.AuthService
	sessions    *services.SessionService
}

func NewPortalHandler(authService *security.AuthService, sessions *services.SessionService) *PortalHandler {
	return &PortalHandler{
		authService: authService,
		sessions:    sessions,
	}
}

func (h *PortalHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var credentials struct {
		Password   string `json:"password"`
		RememberMe bool   `json:"rememberMe"`
	}
	if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.authService.CheckPortalPassword(credentials.Password); err != nil {
		if errors.Is(err, security.ErrWrongPassword) {
			logger.L.Info("Portal login rejected", "clientIP", r.RemoteAddr)
			utils.SendJSONError(w, "Incorrect password", http.StatusUnauthorized)
			return
		}
		logger.L.Error("Portal password check failed", "error", err)
		utils.SendJSONError(w, "Login unavailable", http.StatusInternalServerError)
		return
	}

	expiry := config.Cfg.SessionExpiry
	if credentials.RememberMe {
		expiry = config.Cfg.RememberMeExpiry
	}

	sessionID := uuid.NewString()
	token, err := h.authService.GenerateToken(sessionID, expiry)
	if err != nil {
		logger.L.Error("Failed to generate session token", "error", err)
		utils.SendJSONError(w, "Failed to generate session token", http.StatusInternalServerError)
		return
	}

	session := &model.PortalSession{
		SessionID:  sessionID,
		Token:      token,
		UserAgent:  r.UserAgent(),
		ClientIP:   r.RemoteAddr,
		RememberMe: credentials.RememberMe,
		ExpiresAt:  time.Now().Add(expiry),
	}
	if err := model.CreatePortalSession(database.DB, session); err != nil {
		logger.L.Error("Failed to create portal session", "error", err)
		utils.SendJSONError(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	logger.L.Info("Portal login", "sessionID", sessionID, "rememberMe", credentials.RememberMe)
	utils.SendJSON(w, map[string]interface{}{
		"access_token": token,
		"session_id":   sessionID,
		"expires_at":   session.ExpiresAt.UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

func (h *PortalHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	if tokenString != "" {
		if err := model.DeletePortalSessionByToken(database.DB, tokenString); err != nil {
			logger.L.Warn("Failed to delete portal session on logout", "error", err)
		}
	}
	if sessionID, ok := GetSessionIDFromContext(r.Context()); ok {
		h.sessions.Drop(sessionID)
	}

	utils.SendJSON(w, map[string]string{"message": "Logged out"}, http.StatusOK)
}
