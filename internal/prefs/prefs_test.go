package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMissingFileYieldsDefaults(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "bestaat-niet.json"))

	assert.True(t, s.Bool("jvgh-shifts-enabled", true))
	assert.False(t, s.Bool("jvgh-shifts-enabled", false))
}

func TestSetBoolRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")

	s := Open(path)
	s.SetBool("jvgh-shifts-enabled", false)

	reopened := Open(path)
	assert.False(t, reopened.Bool("jvgh-shifts-enabled", true))
}

func TestCorruptFileFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	require.NoError(t, os.WriteFile(path, []byte("dit is geen json"), 0o600))

	s := Open(path)
	assert.True(t, s.Bool("jvgh-shifts-enabled", true))

	// Writing through a corrupt store starts over cleanly.
	s.SetBool("jvgh-shifts-enabled", false)
	assert.False(t, Open(path).Bool("jvgh-shifts-enabled", true))
}

func TestMalformedValueUsesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"jvgh-shifts-enabled":"ja"}`), 0o600))

	s := Open(path)
	assert.True(t, s.Bool("jvgh-shifts-enabled", true))
}

func TestFlushCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "dir", "prefs.json")

	s := Open(path)
	s.SetBool("jvgh-shifts-enabled", true)

	_, err := os.Stat(path)
	assert.NoError(t, err)
}
