package filex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDir(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "a", "b")

	got, err := EnsureDir(target)
	require.NoError(t, err)
	assert.Equal(t, target, got)

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// existing directory is fine
	_, err = EnsureDir(target)
	assert.NoError(t, err)
}

func TestEnsureParentDir(t *testing.T) {
	base := t.TempDir()
	file := filepath.Join(base, "data", "cards.db")

	got, err := EnsureParentDir(file)
	require.NoError(t, err)
	assert.Equal(t, file, got)

	info, err := os.Stat(filepath.Dir(file))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
