package app

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/vk/loxgo/internal/bytecode"
	"github.com/vk/loxgo/internal/compiler"
	"github.com/vk/loxgo/internal/fsutil"
	"github.com/vk/loxgo/internal/manifest"
	"github.com/vk/loxgo/internal/parser"
	"github.com/vk/loxgo/internal/span"
	"github.com/vk/loxgo/internal/vm"
)

// moduleLoader implements vm.ModuleLoader by resolving import names against
// the manifest's search paths and compiling the source files they name.
// Imported modules follow the same lint policy as the entry script,
// including warning promotion.
type moduleLoader struct {
	searchPaths      []string
	lint             compiler.Options
	warningsAsErrors bool
	logger           *slog.Logger
}

func newModuleLoader(searchPaths []string, m *manifest.Manifest, logger *slog.Logger) *moduleLoader {
	return &moduleLoader{
		searchPaths:      searchPaths,
		lint:             m.Lint,
		warningsAsErrors: m.WarningsAsErrors,
		logger:           logger,
	}
}

func (l *moduleLoader) Load(name string) (*bytecode.Module, error) {
	path, err := fsutil.ResolveModule(name, l.searchPaths)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", vm.ErrUnknownImport, err)
	}
	l.logger.Debug("Loading imported module.", "name", name, "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read module %s: %w", path, err)
	}
	source := string(data)

	program, diagnostics := parser.Parse(source)
	if len(diagnostics) > 0 {
		return nil, diagnosticError(path, source, diagnostics)
	}

	module, warnings, errs := compiler.Compile(program, l.lint)
	if len(errs) > 0 {
		return nil, diagnosticError(path, source, errs)
	}
	if len(warnings) > 0 {
		if l.warningsAsErrors {
			return nil, diagnosticError(path, source, warnings)
		}
		lines := span.NewLineOffsets(source)
		for _, w := range warnings {
			l.logger.Warn("Lint warning in imported module.",
				"path", path, "line", lines.Line(w.Span.Start), "message", w.Message)
		}
	}
	return module, nil
}

// diagnosticError folds compile diagnostics into a single error value, since
// import failures surface through the running program rather than a reporter.
func diagnosticError(path, source string, diagnostics []span.Diagnostic) error {
	lines := span.NewLineOffsets(source)

	var b strings.Builder
	for i, d := range diagnostics {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s:%d: %s", path, lines.Line(d.Span.Start), d.Message)
	}
	return fmt.Errorf("%w: %s", ErrCompile, b.String())
}
