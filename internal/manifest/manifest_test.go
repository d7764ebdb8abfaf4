package manifest_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/loxgo/internal/compiler"
	"github.com/vk/loxgo/internal/ctxlog"
	"github.com/vk/loxgo/internal/manifest"
)

func testContext() context.Context {
	return ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeManifest(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), manifest.DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadFullManifest(t *testing.T) {
	path := writeManifest(t, `
workspace {
  members = ["lib", "scripts"]
}

lint {
  warnings_as_errors = true
  shadowing          = "deny"
  unused_locals      = "allow"
}

dependencies {
  paths = ["vendor"]
}
`)

	m, err := manifest.Load(testContext(), path)
	require.NoError(t, err)

	require.Equal(t, filepath.Dir(path), m.Root)
	require.Equal(t, []string{"lib", "scripts"}, m.Members)
	require.Equal(t, []string{"vendor"}, m.DependencyPaths)
	require.True(t, m.WarningsAsErrors)
	require.Equal(t, compiler.LevelDeny, m.Lint.Shadowing)
	require.Equal(t, compiler.LevelAllow, m.Lint.UnusedLocals)
}

func TestLoadEmptyManifestUsesDefaults(t *testing.T) {
	path := writeManifest(t, "")

	m, err := manifest.Load(testContext(), path)
	require.NoError(t, err)

	require.Empty(t, m.Members)
	require.Empty(t, m.DependencyPaths)
	require.False(t, m.WarningsAsErrors)
	require.Equal(t, compiler.LevelWarn, m.Lint.Shadowing)
	require.Equal(t, compiler.LevelWarn, m.Lint.UnusedLocals)
}

func TestLoadPartialLintBlock(t *testing.T) {
	path := writeManifest(t, `
lint {
  shadowing = "allow"
}
`)

	m, err := manifest.Load(testContext(), path)
	require.NoError(t, err)

	require.Equal(t, compiler.LevelAllow, m.Lint.Shadowing)
	require.Equal(t, compiler.LevelWarn, m.Lint.UnusedLocals)
}

func TestLoadRejectsUnknownLintLevel(t *testing.T) {
	path := writeManifest(t, `
lint {
  shadowing = "forbid"
}
`)

	_, err := manifest.Load(testContext(), path)
	require.ErrorContains(t, err, "lint.shadowing")
	require.ErrorContains(t, err, `"forbid"`)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := writeManifest(t, `workspace {`)

	_, err := manifest.Load(testContext(), path)
	require.ErrorContains(t, err, "failed to parse manifest")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := manifest.Load(testContext(), filepath.Join(t.TempDir(), manifest.DefaultFileName))
	require.Error(t, err)
}

func TestLocate(t *testing.T) {
	dir := t.TempDir()

	_, ok := manifest.Locate(dir)
	require.False(t, ok)

	want := filepath.Join(dir, manifest.DefaultFileName)
	require.NoError(t, os.WriteFile(want, []byte(""), 0o644))

	got, ok := manifest.Locate(dir)
	require.True(t, ok)
	require.Equal(t, want, got)
}

func TestMemberDirs(t *testing.T) {
	m := manifest.Default()
	m.Root = "/project"
	m.Members = []string{"lib", "/opt/lox"}

	require.Equal(t, []string{filepath.Join("/project", "lib"), "/opt/lox"}, m.MemberDirs())
}

func TestSearchPaths(t *testing.T) {
	m := manifest.Default()
	m.Root = "/project"
	m.Members = []string{"lib", "scripts"}
	m.DependencyPaths = []string{"vendor", "/opt/lox", "lib"}

	got := m.SearchPaths("/project/scripts")
	want := []string{
		"/project/scripts",
		filepath.Join("/project", "lib"),
		filepath.Join("/project", "vendor"),
		"/opt/lox",
	}
	require.Equal(t, want, got)
}
