package security

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/username/agentportal/backend/src/config"
	"golang.org/x/crypto/bcrypt"
)

// AuthService checks the shared portal password and issues session tokens.
// The gate is a UX convenience for the agent portal, not an access-control
// boundary; anyone the coordination team shares the password with gets in.
type AuthService struct {
	JWTSecret string
}

func NewAuthService(secret string) *AuthService {
	return &AuthService{
		JWTSecret: secret,
	}
}

var ErrWrongPassword = errors.New("incorrect portal password")

// CheckPortalPassword verifies the supplied password against the configured
// bcrypt hash when present, otherwise against the plaintext setting using a
// constant-time compare.
func (a *AuthService) CheckPortalPassword(password string) error {
	if config.Cfg == nil {
		return errors.New("configuration not loaded")
	}
	if config.Cfg.PortalPasswordHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(config.Cfg.PortalPasswordHash), []byte(password)); err != nil {
			return ErrWrongPassword
		}
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(config.Cfg.PortalPassword), []byte(password)) != 1 {
		return ErrWrongPassword
	}
	return nil
}

// GenerateToken mints a JWT whose subject is the portal session ID.
func (a *AuthService) GenerateToken(sessionID string, expiry time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub": sessionID,
		"exp": time.Now().Add(expiry).Unix(),
		"iat": time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(a.JWTSecret))
}

// ValidateToken parses and verifies a token, returning the session ID.
func (a *AuthService) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(a.JWTSecret), nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", errors.New("token missing subject")
	}
	return sub, nil
}
