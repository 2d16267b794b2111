package catalog

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileFallsBackToDefault(t *testing.T) {
	l := NewLoader(filepath.Join(t.TempDir(), "absent.yaml"))

	c, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, Default().Records(), c.Records())
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "catalog.yaml")
	l := NewLoader(path)

	require.NoError(t, l.Save(Default()))
	c, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, Default().Records(), c.Records())
}

func TestLoadBytes(t *testing.T) {
	c, err := LoadBytes([]byte(`
exercises:
  - name: Rowing
    type: cardio
    calories_per_minute: 9
  - name: Deadlift
    type: strength
    calories_per_minute: 6
    calories_fixed: 55
`))
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())

	lift, ok := c.Get("Deadlift")
	require.True(t, ok)
	assert.Equal(t, 55.0, lift.CaloriesFixed)
}

func TestLoadBytesRejectsInvalid(t *testing.T) {
	_, err := LoadBytes([]byte("exercises: []"))
	assert.Error(t, err)

	_, err = LoadBytes([]byte("exercises: [name"))
	assert.Error(t, err)

	_, err = LoadBytes([]byte("exercises:\n  - name: A\n  - name: A\n"))
	assert.Error(t, err)
}

func TestLoaderPathFromEnv(t *testing.T) {
	t.Setenv("CATALOG_PATH", "/tmp/from-env.yaml")
	assert.Equal(t, "/tmp/from-env.yaml", NewLoader("").Path())
	assert.Equal(t, "explicit.yaml", NewLoader("explicit.yaml").Path())
}

func TestLoadDirectoryFails(t *testing.T) {
	_, err := NewLoader(t.TempDir()).Load()
	assert.Error(t, err)
}
