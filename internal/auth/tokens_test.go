package auth

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdgscriet/studyjam-server/internal/domain"
)

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	key, err := LoadOrGenerateKey(t.TempDir())
	require.NoError(t, err)
	s, err := NewTokenService(key, time.Hour)
	require.NoError(t, err)
	return s
}

func TestTokenService_IssueVerify(t *testing.T) {
	s := newTestTokenService(t)

	token, expires, err := s.Issue(domain.LoginResult{AccessToken: "remote-abc", FirstName: "Priya", IsSuperAdmin: true})
	require.NoError(t, err)
	assert.True(t, len(token) > 10)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	claims, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "Priya", claims.FirstName)
	assert.True(t, claims.IsSuperAdmin)
	assert.Equal(t, "remote-abc", claims.RemoteToken)
	assert.Equal(t, "Priya", claims.Subject)
	assert.NotEmpty(t, claims.TokenID)
}

func TestTokenService_Expired(t *testing.T) {
	s := newTestTokenService(t)

	token, _, err := s.Issue(domain.LoginResult{AccessToken: "x", FirstName: "A"})
	require.NoError(t, err)

	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = s.Verify(token)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestTokenService_RejectsForeignKey(t *testing.T) {
	a := newTestTokenService(t)
	b := newTestTokenService(t)

	token, _, err := a.Issue(domain.LoginResult{AccessToken: "x", FirstName: "A"})
	require.NoError(t, err)

	_, err = b.Verify(token)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrExpired)

	_, err = a.Verify("")
	assert.Error(t, err)
}

func TestNewTokenService_KeyLength(t *testing.T) {
	_, err := NewTokenService(make([]byte, 16), time.Hour)
	assert.Error(t, err)
}

func TestLoadOrGenerateKey_Persists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")

	first, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Len(t, first, keyLength)

	second, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	info, err := os.Stat(filepath.Join(dir, "session.key"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadOrGenerateKey_Invalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "session.key"), []byte("abc"), 0o600))

	_, err := LoadOrGenerateKey(dir)
	assert.Error(t, err)
}
