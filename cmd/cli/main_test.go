package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/loxgo/internal/app"
	"github.com/vk/loxgo/internal/cli"
)

func runMain(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(strings.NewReader(stdin), &stdout, &stderr, args)
	return stdout.String(), stderr.String(), err
}

func TestRun_Script(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "main.lox")
	require.NoError(t, os.WriteFile(path, []byte(`print "from script";`), 0o600))

	stdout, _, err := runMain(t, "", path)
	require.NoError(t, err)
	require.Equal(t, "from script\n", stdout)
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	_, stderr, err := runMain(t, "", "-h")
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, stderr, "Usage:", "Expected help text to be printed")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	_, _, err := runMain(t, "", "--this-is-not-a-valid-flag")
	require.Error(t, err)
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")

	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, cli.ExitUsage, exitErr.Code)
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"usage error", &cli.ExitError{Code: cli.ExitUsage}, cli.ExitUsage},
		{"compile error", app.ErrCompile, cli.ExitCompile},
		{"runtime error", app.ErrRuntime, cli.ExitRuntime},
		{"other error", errors.New("boom"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestRun_CompileErrorCode(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "broken.lox")
	require.NoError(t, os.WriteFile(path, []byte("print 1 +;"), 0o600))

	_, stderr, err := runMain(t, "", path)
	require.ErrorIs(t, err, app.ErrCompile)
	require.Equal(t, cli.ExitCompile, exitCode(err))
	require.Contains(t, stderr, "broken.lox:1")
}
