package client

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_SignInPersistsAndRestores(t *testing.T) {
	fake, c := newFakeAPI(t)
	dir := t.TempDir()

	session := NewSession(c, dir)
	user, err := session.SignIn(context.Background(), "ada@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, fake.user.ID, user.ID)
	assert.Equal(t, fake.token, c.Token())

	// The session file lands in the config dir with owner-only permissions.
	path := filepath.Join(dir, SessionFile)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	// A fresh client restores identity from the file alone.
	c2 := New(c.baseURL)
	restored := NewSession(c2, dir)
	user2, err := restored.Restore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fake.user.ID, user2.ID)
	assert.Equal(t, fake.token, c2.Token())
	require.NotNil(t, restored.User())
}

func TestSession_RestoreWithoutFile(t *testing.T) {
	_, c := newFakeAPI(t)
	session := NewSession(c, t.TempDir())

	_, err := session.Restore(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSession_RestoreWithStaleTokenClears(t *testing.T) {
	fake, c := newFakeAPI(t)
	dir := t.TempDir()

	session := NewSession(c, dir)
	_, err := session.SignIn(context.Background(), "ada@example.com", "correct-horse")
	require.NoError(t, err)

	// Invalidate the token server-side, as an expiry would.
	fake.token = "rotated-token"

	c2 := New(c.baseURL)
	restored := NewSession(c2, dir)
	_, err = restored.Restore(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.StatusCode)

	// The stale session file is gone and the token dropped.
	_, statErr := os.Stat(filepath.Join(dir, SessionFile))
	assert.True(t, os.IsNotExist(statErr))
	assert.Empty(t, c2.Token())
	assert.Nil(t, restored.User())
}

func TestSession_Clear(t *testing.T) {
	_, c := newFakeAPI(t)
	dir := t.TempDir()

	session := NewSession(c, dir)
	_, err := session.SignUp(context.Background(), "Ada", "ada@example.com", "correct-horse")
	require.NoError(t, err)

	require.NoError(t, session.Clear())
	assert.Empty(t, c.Token())
	assert.Nil(t, session.User())

	_, statErr := os.Stat(filepath.Join(dir, SessionFile))
	assert.True(t, os.IsNotExist(statErr))

	// Clearing an already-clear session is fine.
	require.NoError(t, session.Clear())
}
