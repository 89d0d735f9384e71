package token

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"parallel-lives-server/internal/config"
	"parallel-lives-server/internal/models"
)

func newManager(t *testing.T, ttl time.Duration) *Manager {
	t.Helper()
	m, err := NewManager(config.JWTConfig{
		Secret:   "test-secret",
		TokenTTL: ttl,
		Issuer:   "parallel-lives",
	}, zap.NewNop())
	require.NoError(t, err)
	return m
}

func TestNewManager_RequiresSecret(t *testing.T) {
	_, err := NewManager(config.JWTConfig{TokenTTL: time.Hour, Issuer: "parallel-lives"}, zap.NewNop())
	assert.Error(t, err)
}

func TestManager_IssueAndVerify(t *testing.T) {
	m := newManager(t, time.Hour)
	userID := uuid.New()

	signed, err := m.Issue(userID, "user@example.com")
	require.NoError(t, err)

	claims, err := m.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, "parallel-lives", claims.Issuer)
	assert.Equal(t, userID.String(), claims.Subject)
}

func TestManager_ExpiredToken(t *testing.T) {
	m := newManager(t, -time.Minute)

	signed, err := m.Issue(uuid.New(), "user@example.com")
	require.NoError(t, err)

	_, err = m.Verify(signed)
	assert.ErrorIs(t, err, models.ErrTokenExpired)
}

func TestManager_WrongSecret(t *testing.T) {
	issuer := newManager(t, time.Hour)
	verifier, err := NewManager(config.JWTConfig{
		Secret:   "a-different-secret",
		TokenTTL: time.Hour,
		Issuer:   "parallel-lives",
	}, zap.NewNop())
	require.NoError(t, err)

	signed, err := issuer.Issue(uuid.New(), "user@example.com")
	require.NoError(t, err)

	_, err = verifier.Verify(signed)
	assert.ErrorIs(t, err, models.ErrTokenInvalid)
}

func TestManager_WrongIssuer(t *testing.T) {
	issuer, err := NewManager(config.JWTConfig{
		Secret:   "test-secret",
		TokenTTL: time.Hour,
		Issuer:   "someone-else",
	}, zap.NewNop())
	require.NoError(t, err)

	verifier := newManager(t, time.Hour)

	signed, err := issuer.Issue(uuid.New(), "user@example.com")
	require.NoError(t, err)

	_, err = verifier.Verify(signed)
	assert.ErrorIs(t, err, models.ErrTokenInvalid)
}

func TestManager_MalformedToken(t *testing.T) {
	m := newManager(t, time.Hour)

	_, err := m.Verify("not.a.token")
	assert.ErrorIs(t, err, models.ErrTokenMalformed)
}
