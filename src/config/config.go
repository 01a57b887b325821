package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port         string
	DatabasePath string
	LogLevel     string

	JWTSecret string

	// The portal gate is a shared secret checked server-side. It is a UX
	// gate for the agent portal, not an access-control boundary. If
	// PORTAL_PASSWORD_HASH (bcrypt) is set it wins over the plaintext value.
	PortalPassword     string
	PortalPasswordHash string

	SessionExpiry    time.Duration
	RememberMeExpiry time.Duration

	DraftMaxAge      time.Duration
	AutosaveInterval time.Duration

	EmailServiceProvider string

	MailgunDomain        string
	MailgunPrivateAPIKey string

	SenderEmail string
	SenderName  string

	// SubmissionRecipient receives the completed-intake notification with
	// the PDF summary attached.
	SubmissionRecipient string

	AllowedOrigin   string
	MaxRequestBytes int64
}

var Cfg *AppConfig

func LoadConfig() {
	errEnv := godotenv.Load()
	if errEnv != nil {
		log.Println("Info: No .env file found or error loading .env file. Relying on OS environment variables and defaults. Error (if any):", errEnv)
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	jwtSecret := getEnv("JWT_SECRET", "your-very-secure-and-long-jwt-secret-key-for-hs256-minimum-32-bytes")
	if jwtSecret == "your-very-secure-and-long-jwt-secret-key-for-hs256-minimum-32-bytes" {
		log.Println("WARNING: Using default insecure JWT_SECRET. Set JWT_SECRET environment variable for production.")
	}

	portalPassword := getEnv("PORTAL_PASSWORD", "")
	portalPasswordHash := getEnv("PORTAL_PASSWORD_HASH", "")
	if portalPassword == "" && portalPasswordHash == "" {
		portalPassword = "agents2024"
		log.Println("WARNING: Neither PORTAL_PASSWORD nor PORTAL_PASSWORD_HASH set. Using a default portal password; set one for production.")
	}

	maxRequestBytesStr := getEnv("MAX_REQUEST_BYTES", "1048576")
	maxRequestBytes, err := strconv.ParseInt(maxRequestBytesStr, 10, 64)
	if err != nil {
		log.Printf("WARNING: Invalid MAX_REQUEST_BYTES format '%s'. Using default 1MB. Error: %v", maxRequestBytesStr, err)
		maxRequestBytes = 1024 * 1024
	}

	Cfg = &AppConfig{
		Port:         getEnv("PORT", "8080"),
		DatabasePath: getEnv("DATABASE_PATH", "./agentportal.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),

		JWTSecret:          jwtSecret,
		PortalPassword:     portalPassword,
		PortalPasswordHash: portalPasswordHash,

		SessionExpiry:    getEnvAsDuration("SESSION_EXPIRY", 4*time.Hour),
		RememberMeExpiry: getEnvAsDuration("REMEMBER_ME_EXPIRY", 30*24*time.Hour),

		DraftMaxAge:      getEnvAsDuration("DRAFT_MAX_AGE", 24*time.Hour),
		AutosaveInterval: getEnvAsDuration("AUTOSAVE_INTERVAL", 30*time.Second),

		EmailServiceProvider: getEnv("EMAIL_SERVICE_PROVIDER", "mock"),

		MailgunDomain:        getEnv("MAILGUN_DOMAIN", ""),
		MailgunPrivateAPIKey: getEnv("MAILGUN_PRIVATE_API_KEY", ""),

		SenderEmail: getEnv("SENDER_EMAIL", "noreply@example.com"),
		SenderName:  getEnv("SENDER_NAME", "Agent Portal"),

		SubmissionRecipient: getEnv("SUBMISSION_RECIPIENT", ""),

		AllowedOrigin:   getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),
		MaxRequestBytes: maxRequestBytes,
	}

	if Cfg.EmailServiceProvider == "mailgun" {
		if Cfg.MailgunDomain == "" {
			log.Fatalf("FATAL: MAILGUN_DOMAIN is required when EMAIL_SERVICE_PROVIDER is 'mailgun', but it's not set in environment or .env file.")
		}
		if Cfg.MailgunPrivateAPIKey == "" {
			log.Fatalf("FATAL: MAILGUN_PRIVATE_API_KEY is required when EMAIL_SERVICE_PROVIDER is 'mailgun', but it's not set in environment or .env file.")
		}
		if Cfg.SubmissionRecipient == "" {
			log.Fatalf("FATAL: SUBMISSION_RECIPIENT must be configured when EMAIL_SERVICE_PROVIDER is 'mailgun' so completed intakes reach the coordination team.")
		}
		if Cfg.SenderEmail == "noreply@example.com" || Cfg.SenderEmail == "" {
			log.Fatalf("FATAL: SENDER_EMAIL must be configured properly (e.g., your Mailgun sender) when EMAIL_SERVICE_PROVIDER is 'mailgun'.")
		}
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s, EmailProvider=%s",
		Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath, Cfg.EmailServiceProvider)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable %s not set, using default: %s", key, fallback)
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Duration value for %s not set or empty, using default: %s", key, fallback.String())
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}
