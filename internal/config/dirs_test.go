package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureConfigDirCreatesAndTolerratesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poudriere.d")

	require.NoError(t, EnsureConfigDir(path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	assert.NoError(t, EnsureConfigDir(path))
}

func TestEnsureParentDirCreatesNestedPath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")
	require.NoError(t, EnsureParentDir(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestEnsureParentDirNoOpForEmptyOrDot(t *testing.T) {
	assert.NoError(t, EnsureParentDir(""))
	assert.NoError(t, EnsureParentDir("."))
}
