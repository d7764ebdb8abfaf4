package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/loxgo/internal/bytecode"
	"github.com/vk/loxgo/internal/compiler"
	"github.com/vk/loxgo/internal/ctxlog"
	"github.com/vk/loxgo/internal/fsutil"
	"github.com/vk/loxgo/internal/manifest"
	"github.com/vk/loxgo/internal/parser"
	"github.com/vk/loxgo/internal/span"
	"github.com/vk/loxgo/internal/vm"
)

// Run executes the main application logic: script mode when a script path is
// configured, interactive REPL otherwise.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	if a.config.ScriptPath != "" {
		ctx = ctxlog.With(ctx, "script", a.config.ScriptPath)
	}
	a.logger.Debug("App.Run method started.")

	m, err := a.loadManifest(ctx)
	if err != nil {
		return err
	}

	if a.config.ScriptPath == "" {
		return a.runREPL(ctx, m)
	}
	return a.runScript(ctx, m)
}

// loadManifest resolves the project manifest: an explicit path wins, then
// lox.hcl next to the script, then built-in defaults.
func (a *App) loadManifest(ctx context.Context) (*manifest.Manifest, error) {
	if a.config.ManifestPath != "" {
		m, err := manifest.Load(ctx, a.config.ManifestPath)
		if err != nil {
			return nil, err
		}
		a.checkWorkspace(m)
		return m, nil
	}

	dir := "."
	if a.config.ScriptPath != "" {
		dir = filepath.Dir(a.config.ScriptPath)
	}
	if path, ok := manifest.Locate(dir); ok {
		m, err := manifest.Load(ctx, path)
		if err != nil {
			return nil, err
		}
		a.checkWorkspace(m)
		return m, nil
	}

	a.logger.Debug("No manifest found, using defaults.", "dir", dir)
	return manifest.Default(), nil
}

// checkWorkspace enumerates the scripts under each workspace member, so a
// misspelled or empty member directory is flagged instead of silently
// contributing nothing to the search path.
func (a *App) checkWorkspace(m *manifest.Manifest) {
	for _, dir := range m.MemberDirs() {
		scripts, err := fsutil.FindFilesByExtension(dir, fsutil.ScriptExtension)
		if err != nil {
			a.logger.Warn("Workspace member is not accessible.", "dir", dir, "error", err)
			continue
		}
		if len(scripts) == 0 {
			a.logger.Warn("Workspace member contains no scripts.", "dir", dir)
			continue
		}
		a.logger.Debug("Workspace member scanned.", "dir", dir, "scripts", len(scripts))
	}
}

func (a *App) runScript(ctx context.Context, m *manifest.Manifest) error {
	source, err := os.ReadFile(a.config.ScriptPath)
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}

	module, err := a.compile(string(source), a.config.ScriptPath, m)
	if err != nil {
		return err
	}

	if a.config.Disassemble {
		bytecode.Disassemble(a.stdout, module)
		return nil
	}

	scriptDir := filepath.Dir(a.config.ScriptPath)
	runtime := vm.New(vm.Config{
		Stdout: a.stdout,
		Loader: newModuleLoader(m.SearchPaths(scriptDir), m, a.logger),
		Logger: a.logger,
	})

	if err := runtime.Interpret(ctx, moduleName(a.config.ScriptPath), module); err != nil {
		// Compile failures inside imported modules keep their category.
		if errors.Is(err, ErrCompile) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrRuntime, err)
	}
	return nil
}

// compile turns source text into a module, reporting diagnostics to the
// error writer with line numbers. Lint warnings become errors when the
// manifest says so.
func (a *App) compile(source, path string, m *manifest.Manifest) (*bytecode.Module, error) {
	lines := span.NewLineOffsets(source)

	program, diagnostics := parser.Parse(source)
	if len(diagnostics) > 0 {
		a.report(path, lines, diagnostics, "error")
		return nil, fmt.Errorf("%w: %d parse error(s)", ErrCompile, len(diagnostics))
	}

	module, warnings, errs := compiler.Compile(program, m.Lint)
	if len(errs) > 0 {
		a.report(path, lines, errs, "error")
		return nil, fmt.Errorf("%w: %d error(s)", ErrCompile, len(errs))
	}
	if len(warnings) > 0 {
		if m.WarningsAsErrors {
			a.report(path, lines, warnings, "error")
			return nil, fmt.Errorf("%w: %d warning(s) treated as error(s)", ErrCompile, len(warnings))
		}
		a.report(path, lines, warnings, "warning")
	}
	return module, nil
}

func (a *App) report(path string, lines *span.LineOffsets, diagnostics []span.Diagnostic, severity string) {
	for _, d := range diagnostics {
		fmt.Fprintf(a.errW, "%s:%d: %s: %s\n", path, lines.Line(d.Span.Start), severity, d.Message)
	}
}

// moduleName strips the directory and script extension from a path.
func moduleName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), fsutil.ScriptExtension)
}
