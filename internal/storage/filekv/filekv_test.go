package filekv

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func newStore(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "nested", "session.json"))
}

func TestSetAndGet(t *testing.T) {
	s := newStore(t)

	require.NoError(t, s.Set("cs_profile", profile{ID: "p1", Name: "Kids"}, 0))

	var got profile
	found, err := s.Get("cs_profile", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, profile{ID: "p1", Name: "Kids"}, got)

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestGet_MissingFileAndKey(t *testing.T) {
	s := newStore(t)

	var out string
	found, err := s.Get("cs_token", &out)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set("other", "x", 0))
	found, err = s.Get("cs_token", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestPersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	require.NoError(t, New(path).Set("cs_token", "abc", 0))

	var out string
	found, err := New(path).Get("cs_token", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "abc", out)
}

func TestExpiration(t *testing.T) {
	s := newStore(t)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set("key", "value", time.Minute))

	var out string
	found, err := s.Get("key", &out)
	require.NoError(t, err)
	assert.True(t, found)

	now = now.Add(time.Minute)
	found, err = s.Get("key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidate(t *testing.T) {
	s := newStore(t)

	require.NoError(t, s.Set("a", 1, 0))
	require.NoError(t, s.Set("b", 2, 0))
	require.NoError(t, s.Set("c", 3, 0))

	require.NoError(t, s.Invalidate("a", "b", "missing"))

	var out int
	found, err := s.Get("a", &out)
	require.NoError(t, err)
	assert.False(t, found)

	found, err = s.Get("c", &out)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestInvalidate_NoFile(t *testing.T) {
	s := newStore(t)

	require.NoError(t, s.Invalidate("a"))
	_, err := os.Stat(s.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestCorruptedFile(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0o700))
	require.NoError(t, os.WriteFile(s.Path(), []byte("{broken"), 0o600))

	var out string
	_, err := s.Get("cs_token", &out)
	assert.Error(t, err)
}
