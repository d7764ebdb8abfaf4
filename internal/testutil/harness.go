// Package testutil provides a standardized harness for interpreter
// integration tests: it materializes a script tree in a temporary directory,
// runs the application against it, and captures the outcome.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/loxgo/internal/app"
)

// SafeBuffer is a thread-safe buffer for capturing output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// Result holds the outcomes of a harness run.
type Result struct {
	Stdout string
	Stderr string
	Err    error
}

// RunScript writes the given files (relative paths mapped to contents) into
// a fresh temporary directory and runs the interpreter on the entry script,
// using a default background context.
func RunScript(t *testing.T, files map[string]string, entry string) *Result {
	t.Helper()
	return RunScriptWithContext(context.Background(), t, files, entry)
}

// RunScriptWithContext is RunScript with a caller-provided context.
func RunScriptWithContext(ctx context.Context, t *testing.T, files map[string]string, entry string) *Result {
	t.Helper()

	tmpDir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	config, err := app.NewConfig(app.Config{
		ScriptPath: filepath.Join(tmpDir, entry),
		LogFormat:  "text",
		LogLevel:   "info",
	})
	require.NoError(t, err)

	stdout := &SafeBuffer{}
	stderr := &SafeBuffer{}
	testApp := app.NewApp(strings.NewReader(""), stdout, stderr, config)
	runErr := testApp.Run(ctx)

	if os.Getenv("LOX_TEST_LOGS") == "true" {
		t.Logf("--- Full output for %s ---\nstdout:\n%s\nstderr:\n%s", t.Name(), stdout.String(), stderr.String())
	}

	return &Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
		Err:    runErr,
	}
}
