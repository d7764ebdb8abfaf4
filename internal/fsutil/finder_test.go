package fsutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/loxgo/internal/fsutil"
)

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("print 1;"), 0o644))
	return path
}

func TestFindFilesByExtension(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.lox")
	b := writeFile(t, dir, "nested/b.lox")
	writeFile(t, dir, "ignored.txt")

	files, err := fsutil.FindFilesByExtension(dir, fsutil.ScriptExtension)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{a, b}, files)
}

func TestResolveModule(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	inSecond := writeFile(t, second, "math.lox")

	got, err := fsutil.ResolveModule("math", []string{first, second})
	require.NoError(t, err)
	require.Equal(t, inSecond, got)

	// Earlier search paths win.
	inFirst := writeFile(t, first, "math.lox")
	got, err = fsutil.ResolveModule("math", []string{first, second})
	require.NoError(t, err)
	require.Equal(t, inFirst, got)
}

func TestResolveModuleKeepsExplicitExtension(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "util.lox")

	got, err := fsutil.ResolveModule("util.lox", []string{dir})
	require.NoError(t, err)
	require.Equal(t, path, got)
}

func TestResolveModuleNotFound(t *testing.T) {
	_, err := fsutil.ResolveModule("missing", []string{t.TempDir()})
	require.ErrorContains(t, err, `module "missing" not found`)
}
