package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/username/agentportal/backend/src/config"
)

const testSecret = "test-jwt-secret-key-that-is-long-enough"

func TestCheckPortalPassword_Plaintext(t *testing.T) {
	config.Cfg = &config.AppConfig{PortalPassword: "agents2024"}
	a := NewAuthService(testSecret)

	assert.NoError(t, a.CheckPortalPassword("agents2024"))
	assert.ErrorIs(t, a.CheckPortalPassword("wrong"), ErrWrongPassword)
	assert.ErrorIs(t, a.CheckPortalPassword(""), ErrWrongPassword)
}

func TestCheckPortalPassword_BcryptHashWins(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hashed-secret"), bcrypt.MinCost)
	require.NoError(t, err)
	config.Cfg = &config.AppConfig{
		PortalPassword:     "plaintext-should-be-ignored",
		PortalPasswordHash: string(hash),
	}
	a := NewAuthService(testSecret)

	assert.NoError(t, a.CheckPortalPassword("hashed-secret"))
	assert.ErrorIs(t, a.CheckPortalPassword("plaintext-should-be-ignored"), ErrWrongPassword)
}

func TestCheckPortalPassword_NoConfig(t *testing.T) {
	config.Cfg = nil
	a := NewAuthService(testSecret)
	assert.Error(t, a.CheckPortalPassword("anything"))
}

func TestTokenRoundTrip(t *testing.T) {
	a := NewAuthService(testSecret)

	token, err := a.GenerateToken("sess-abc", time.Hour)
	require.NoError(t, err)

	sessionID, err := a.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "sess-abc", sessionID)
}

func TestValidateToken_Expired(t *testing.T) {
	a := NewAuthService(testSecret)

	token, err := a.GenerateToken("sess-abc", -time.Minute)
	require.NoError(t, err)

	_, err = a.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	a := NewAuthService(testSecret)
	token, err := a.GenerateToken("sess-abc", time.Hour)
	require.NoError(t, err)

	other := NewAuthService("a-different-secret-also-long-enough-here")
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_Garbage(t *testing.T) {
	a := NewAuthService(testSecret)
	_, err := a.ValidateToken("not.a.token")
	assert.Error(t, err)
}
