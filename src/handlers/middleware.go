package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/username/agentportal/backend/src/database"
	"github.com/username/agentportal/backend/src/logger"
	"github.com/username/agentportal/backend/src/model"
	"github.com/username/agentportal/backend/src/utils"
)

// Context keys are a private type so no other package can collide with them.
type contextKey string

const sessionIDContextKey contextKey = "sessionID"

func (h *PortalHandler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			logger.L.Debug("AuthMiddleware: Authorization header missing", "path", r.URL.Path)
			utils.SendJSONError(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		tokenString := ""
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		} else {
			tokenString = authHeader
		}

		if tokenString == "" {
			logger.L.Debug("AuthMiddleware: Token string empty", "path", r.URL.Path)
			utils.SendJSONError(w, "Malformed token", http.StatusUnauthorized)
			return
		}

		sessionID, err := h.authService.ValidateToken(tokenString)
		if err != nil {
			logger.L.Warn("AuthMiddleware: Token validation failed", "path", r.URL.Path, "error", err)
			utils.SendJSONError(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		if _, err := model.GetPortalSessionByToken(database.DB, tokenString); err != nil {
			logger.L.Warn("AuthMiddleware: Session lookup failed", "path", r.URL.Path, "error", err)
			utils.SendJSONError(w, "Invalid or expired session", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), sessionIDContextKey, sessionID)
		ctx = logger.WithContext(ctx, logger.L.With("sessionID", sessionID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSessionIDFromContext extracts the portal session ID set by AuthMiddleware.
func GetSessionIDFromContext(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(sessionIDContextKey).(string)
	return sessionID, ok && sessionID != ""
}
