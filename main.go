package main

import (
	"context"
	"encoding/json"
	stdlog "log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/username/agentportal/backend/src/config"
	"github.com/username/agentportal/backend/src/database"
	"github.com/username/agentportal/backend/src/drafts"
	"github.com/username/agentportal/backend/src/handlers"
	"github.com/username/agentportal/backend/src/logger"
	"github.com/username/agentportal/backend/src/security"
	"github.com/username/agentportal/backend/src/services"
	"golang.org/x/time/rate"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if origin == config.Cfg.AllowedOrigin {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Requested-With, If-None-Match")
			w.Header().Set("Access-Control-Expose-Headers", "ETag, Content-Disposition")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			logger.L.Debug("Handling OPTIONS preflight request", "path", r.URL.Path, "origin", origin)
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func maxBytesMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, config.Cfg.MaxRequestBytes)
		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("Agent Portal backend server starting...")

	if config.Cfg.JWTSecret == "" || len(config.Cfg.JWTSecret) < 32 {
		logger.L.Error("JWT_SECRET configuration invalid. Must be at least 32 bytes.")
		os.Exit(1)
	}

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	logger.L.Info("Database initialized successfully.")

	logger.L.Info("Initializing services and handlers...")
	authService := security.NewAuthService(config.Cfg.JWTSecret)
	emailService := services.NewEmailService()
	exportService := services.NewPDFExportService()

	draftStore := drafts.NewSQLiteStore(database.DB, config.Cfg.DraftMaxAge)
	sessionService := services.NewSessionService(draftStore, config.Cfg.SessionExpiry)
	submissionService := services.NewSubmissionService(database.DB, exportService, emailService, draftStore)

	portalHandler := handlers.NewPortalHandler(authService, sessionService)
	formHandler := handlers.NewFormHandler(sessionService, exportService, submissionService)
	draftHandler := handlers.NewDraftHandler(sessionService, draftStore)
	exportHandler := handlers.NewExportHandler(sessionService, exportService)

	logger.L.Info("Starting draft autosaver...", "interval", config.Cfg.AutosaveInterval.String())
	autosaveCtx, stopAutosave := context.WithCancel(context.Background())
	defer stopAutosave()
	autosaver := drafts.NewAutosaver(draftStore, sessionService, config.Cfg.AutosaveInterval)
	go autosaver.Run(autosaveCtx)

	logger.L.Info("Configuring routes...")
	rootMux := http.NewServeMux()
	apiRouter := http.NewServeMux()

	apiRouter.HandleFunc("POST /api/portal/login", portalHandler.LoginHandler)
	apiRouter.Handle("POST /api/portal/logout", portalHandler.AuthMiddleware(http.HandlerFunc(portalHandler.LogoutHandler)))

	applyAuth := func(handler http.HandlerFunc) http.Handler {
		return portalHandler.AuthMiddleware(handler)
	}

	apiRouter.Handle("GET /api/form", applyAuth(formHandler.HandleGetState))
	apiRouter.Handle("PATCH /api/form/field", applyAuth(formHandler.HandleUpdateField))
	apiRouter.Handle("POST /api/form/clients", applyAuth(formHandler.HandleAddClient))
	apiRouter.Handle("PATCH /api/form/clients/{index}", applyAuth(formHandler.HandleUpdateClient))
	apiRouter.Handle("DELETE /api/form/clients/{index}", applyAuth(formHandler.HandleRemoveClient))
	apiRouter.Handle("POST /api/form/next", applyAuth(formHandler.HandleNextStep))
	apiRouter.Handle("POST /api/form/previous", applyAuth(formHandler.HandlePreviousStep))
	apiRouter.Handle("POST /api/form/goto", applyAuth(formHandler.HandleGoToStep))
	apiRouter.Handle("GET /api/form/validate", applyAuth(formHandler.HandleValidate))
	apiRouter.Handle("POST /api/form/submit", applyAuth(formHandler.HandleSubmit))
	apiRouter.Handle("POST /api/form/reset", applyAuth(formHandler.HandleReset))
	apiRouter.Handle("GET /api/form/review", applyAuth(formHandler.HandleReview))
	apiRouter.Handle("GET /api/form/export", applyAuth(exportHandler.HandleExportPDF))

	apiRouter.Handle("POST /api/draft/save", applyAuth(draftHandler.HandleSave))
	apiRouter.Handle("GET /api/draft", applyAuth(draftHandler.HandleLoad))
	apiRouter.Handle("DELETE /api/draft", applyAuth(draftHandler.HandleClear))

	rootMux.Handle("/api/", apiRouter)

	rootMux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "Agent Portal backend is running"})
		} else {
			if !strings.HasPrefix(r.URL.Path, "/api/") {
				logger.L.Warn("Root level path not found", "method", r.Method, "path", r.URL.Path)
				http.NotFound(w, r)
			}
		}
	})

	logger.L.Info("Applying global middleware...")
	finalHandler := enableCORS(rateLimitMiddleware(maxBytesMiddleware(rootMux)))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	} else if err == http.ErrServerClosed {
		logger.L.Info("Server stopped gracefully.")
	}
}
