package filesync

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManifestRoundTrip(t *testing.T) {
	dir := t.TempDir()

	m, err := LoadManifest(dir)
	require.NoError(t, err)
	assert.Empty(t, m)

	m["syllabus.pdf"] = Entry{Hash: "abc123", FileID: 42}
	require.NoError(t, m.Save(dir))

	loaded, err := LoadManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, m, loaded)
}

func TestManifestChanged(t *testing.T) {
	m := Manifest{"a.pdf": {Hash: "abc"}}

	assert.False(t, m.Changed("a.pdf", "abc"))
	assert.True(t, m.Changed("a.pdf", "def"))
	assert.True(t, m.Changed("new.pdf", "abc"))
}

func TestHashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	hash, err := HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", hash)

	again, err := HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, hash, again)
}

func TestTrack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.pdf")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	changed, err := Track(path)
	require.NoError(t, err)
	assert.True(t, changed)

	names, err := LoadUploadList(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"notes.pdf"}, names)

	// Tracking again is a no-op.
	changed, err = Track(path)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestTrackRejectsDirectories(t *testing.T) {
	_, err := Track(t.TempDir())
	require.Error(t, err)
}
