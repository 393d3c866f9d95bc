package pasetotoken

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T, keys Keys) *Manager {
	t.Helper()
	m, err := New(Config{Mode: keys.Mode, Issuer: "clinicbook", Audience: "clinicbook-api", AccessTTL: time.Minute}, keys)
	require.NoError(t, err)
	return m
}

func TestIssueAndVerify(t *testing.T) {
	for _, keys := range []Keys{NewLocalKeys(), NewPublicKeys()} {
		t.Run(string(keys.Mode), func(t *testing.T) {
			m := newManager(t, keys)
			uid := uuid.New()
			sid := uuid.New()

			tok, err := m.IssueAccess(uid, "staff", &sid)
			require.NoError(t, err)

			claims, err := m.Verify(tok)
			require.NoError(t, err)
			assert.Equal(t, TokenTypeAccess, claims.Type)
			assert.Equal(t, uid, claims.GetUserID())
			assert.Equal(t, "staff", claims.GetRole())
			require.NotNil(t, claims.SessionID)
			assert.Equal(t, sid, *claims.SessionID)
			assert.False(t, claims.IsExpired())
		})
	}
}

func TestVerifyRejectsForeignKey(t *testing.T) {
	tok, err := newManager(t, NewLocalKeys()).IssueAccess(uuid.New(), "customer", nil)
	require.NoError(t, err)

	_, err = newManager(t, NewLocalKeys()).Verify(tok)
	var invalid ErrInvalidToken
	assert.ErrorAs(t, err, &invalid)
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(Config{Mode: ModePublic, Issuer: "i", Audience: "a"}, NewLocalKeys())
	assert.Error(t, err)

	_, err = New(Config{Mode: ModeLocal, Audience: "a"}, NewLocalKeys())
	assert.Error(t, err)
}

func TestLoadKeys(t *testing.T) {
	_, err := LoadKeys(KeyStrings{Mode: ModeLocal})
	assert.Error(t, err)

	_, err = LoadKeys(KeyStrings{Mode: ModePublic})
	assert.Error(t, err)

	_, err = LoadKeys(KeyStrings{Mode: "jwt"})
	assert.Error(t, err)

	k := NewLocalKeys()
	loaded, err := LoadKeys(KeyStrings{Mode: ModeLocal, SymmetricHex: k.Symmetric.ExportHex()})
	require.NoError(t, err)
	assert.Equal(t, ModeLocal, loaded.Mode)
}

func TestVerifyRejectsUnknownRole(t *testing.T) {
	m := newManager(t, NewLocalKeys())
	tok, err := m.IssueAccess(uuid.New(), "therapist", nil)
	require.NoError(t, err)

	_, err = m.Verify(tok)
	assert.ErrorIs(t, err, ErrUnknownRole)
}
