package credstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemory()

	_, ok := store.Get()
	assert.False(t, ok)

	require.NoError(t, store.Set(Credentials{Token: "tok", Email: "ops@acme.test"}))
	creds, ok := store.Get()
	require.True(t, ok)
	assert.Equal(t, "tok", creds.Token)

	require.NoError(t, store.Clear())
	_, ok = store.Get()
	assert.False(t, ok)
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portal", "credentials.json")
	store := NewFile(path)

	_, ok := store.Get()
	assert.False(t, ok)

	require.NoError(t, store.Set(Credentials{Token: "tok", Email: "ops@acme.test"}))

	// A fresh store over the same path sees the persisted pair.
	creds, ok := NewFile(path).Get()
	require.True(t, ok)
	assert.Equal(t, "ops@acme.test", creds.Email)

	require.NoError(t, store.Clear())
	_, ok = store.Get()
	assert.False(t, ok)

	// Clearing an already cleared store is fine.
	require.NoError(t, store.Clear())
}
