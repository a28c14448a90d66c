package resolve

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/crcsum/pkg/crcsum/types"
)

func TestDisplay_Local(t *testing.T) {
	r := New(types.Local)

	for _, p := range []string{"./a.txt", "d/sub/b.txt", "does/not/exist", "/abs/path"} {
		got, err := r.Display(p)
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
}

func TestDisplay_Canonical(t *testing.T) {
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	file := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(file, []byte("hello"), 0o644))

	r := New(types.Canonical)

	got, err := r.Display(file)
	require.NoError(t, err)
	assert.Equal(t, file, got)
	assert.True(t, filepath.IsAbs(got))
}

func TestDisplay_CanonicalRelative(t *testing.T) {
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0o644))

	t.Chdir(dir)

	got, err := New(types.Canonical).Display("./a.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a.txt"), got)
}

func TestDisplay_CanonicalResolvesSymlinks(t *testing.T) {
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	target := filepath.Join(dir, "target.txt")
	link := filepath.Join(dir, "link.txt")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))
	require.NoError(t, os.Symlink(target, link))

	got, err := New(types.Canonical).Display(link)
	require.NoError(t, err)
	assert.Equal(t, target, got)
}

func TestDisplay_CanonicalMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone.txt")

	_, err := New(types.Canonical).Display(missing)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "resolve ")
}
