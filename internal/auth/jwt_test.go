package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio-api/internal/config"
)

func testSessionManager(t *testing.T) *SessionManager {
	t.Helper()

	cfg := &config.Config{}
	cfg.Auth.JWTSecret = "test-secret-key"
	cfg.Auth.SessionTTL = time.Hour
	cfg.Auth.CookieName = "folio_session"

	sm, err := NewSessionManager(cfg)
	require.NoError(t, err)
	return sm
}

func TestNewSessionManager_RequiresSecret(t *testing.T) {
	cfg := &config.Config{}
	cfg.Auth.SessionTTL = time.Hour

	_, err := NewSessionManager(cfg)
	assert.Error(t, err)
}

func TestSessionManager_IssueAndValidate(t *testing.T) {
	sm := testSessionManager(t)

	token, expiresAt, err := sm.IssueToken()
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := sm.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "admin", claims.Subject)
}

func TestSessionManager_RejectsTamperedToken(t *testing.T) {
	sm := testSessionManager(t)

	token, _, err := sm.IssueToken()
	require.NoError(t, err)

	_, err = sm.ValidateToken(token + "x")
	assert.Error(t, err)
}

func TestSessionManager_RejectsTokenFromOtherSecret(t *testing.T) {
	sm := testSessionManager(t)

	otherCfg := &config.Config{}
	otherCfg.Auth.JWTSecret = "different-secret"
	otherCfg.Auth.SessionTTL = time.Hour
	other, err := NewSessionManager(otherCfg)
	require.NoError(t, err)

	token, _, err := other.IssueToken()
	require.NoError(t, err)

	_, err = sm.ValidateToken(token)
	assert.Error(t, err)
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("hunter2-but-longer")
	require.NoError(t, err)

	assert.NoError(t, VerifyPassword("hunter2-but-longer", hash))
	assert.Error(t, VerifyPassword("wrong-password", hash))
	assert.Error(t, VerifyPassword("anything", ""))
}

func TestHashKey_DeterministicAndDistinct(t *testing.T) {
	assert.Equal(t, HashKey("folio_abc"), HashKey("folio_abc"))
	assert.NotEqual(t, HashKey("folio_abc"), HashKey("folio_abd"))
	assert.Len(t, HashKey("folio_abc"), 64)
}
