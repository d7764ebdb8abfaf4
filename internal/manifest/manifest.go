package manifest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/loxgo/internal/compiler"
	"github.com/vk/loxgo/internal/ctxlog"
)

// DefaultFileName is the manifest file looked up next to a script when no
// explicit path is given.
const DefaultFileName = "lox.hcl"

// Manifest is the decoded project configuration.
type Manifest struct {
	// Root is the directory containing the manifest file. Relative member
	// and dependency paths resolve against it.
	Root string

	// Members are workspace directories searched for imported modules.
	Members []string

	// DependencyPaths are additional import search directories.
	DependencyPaths []string

	// WarningsAsErrors promotes lint warnings to compile errors.
	WarningsAsErrors bool

	// Lint configures the compiler's warning levels.
	Lint compiler.Options
}

// fileRoot decodes the top-level blocks of a manifest file.
type fileRoot struct {
	Workspace    *workspaceBlock    `hcl:"workspace,block"`
	Lint         *lintBlock         `hcl:"lint,block"`
	Dependencies *dependenciesBlock `hcl:"dependencies,block"`
}

type workspaceBlock struct {
	Members []string `hcl:"members,optional"`
}

type lintBlock struct {
	WarningsAsErrors *bool          `hcl:"warnings_as_errors,optional"`
	Shadowing        hcl.Expression `hcl:"shadowing,optional"`
	UnusedLocals     hcl.Expression `hcl:"unused_locals,optional"`
}

type dependenciesBlock struct {
	Paths []string `hcl:"paths,optional"`
}

// Default returns the configuration used when no manifest file exists.
func Default() *Manifest {
	return &Manifest{
		Lint: compiler.Options{
			Shadowing:    compiler.LevelWarn,
			UnusedLocals: compiler.LevelWarn,
		},
	}
}

// Locate returns the manifest path next to dir, reporting whether it exists.
func Locate(dir string) (string, bool) {
	path := filepath.Join(dir, DefaultFileName)
	info, err := os.Stat(path)
	return path, err == nil && !info.IsDir()
}

// Load parses and validates the manifest at path.
func Load(ctx context.Context, path string) (*Manifest, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading project manifest.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode manifest %s: %w", path, diags)
	}

	m := Default()
	m.Root = filepath.Dir(path)

	if root.Workspace != nil {
		m.Members = root.Workspace.Members
	}
	if root.Dependencies != nil {
		m.DependencyPaths = root.Dependencies.Paths
	}
	if root.Lint != nil {
		if root.Lint.WarningsAsErrors != nil {
			m.WarningsAsErrors = *root.Lint.WarningsAsErrors
		}
		var err error
		m.Lint.Shadowing, err = levelFromExpr(root.Lint.Shadowing, "shadowing", m.Lint.Shadowing)
		if err != nil {
			return nil, fmt.Errorf("manifest %s: %w", path, err)
		}
		m.Lint.UnusedLocals, err = levelFromExpr(root.Lint.UnusedLocals, "unused_locals", m.Lint.UnusedLocals)
		if err != nil {
			return nil, fmt.Errorf("manifest %s: %w", path, err)
		}
	}

	logger.Debug("Manifest loaded.",
		"members", len(m.Members),
		"dependency_paths", len(m.DependencyPaths),
		"warnings_as_errors", m.WarningsAsErrors,
	)
	return m, nil
}

// SearchPaths returns the ordered import search path for a script living in
// scriptDir: the script's own directory first, then workspace members, then
// dependency paths. Relative manifest entries resolve against the manifest
// root.
func (m *Manifest) SearchPaths(scriptDir string) []string {
	paths := []string{scriptDir}
	seen := map[string]struct{}{scriptDir: {}}

	add := func(entry string) {
		entry = m.resolve(entry)
		if _, ok := seen[entry]; ok {
			return
		}
		seen[entry] = struct{}{}
		paths = append(paths, entry)
	}

	for _, member := range m.Members {
		add(member)
	}
	for _, dep := range m.DependencyPaths {
		add(dep)
	}
	return paths
}

// MemberDirs returns the workspace member directories resolved against the
// manifest root.
func (m *Manifest) MemberDirs() []string {
	dirs := make([]string, 0, len(m.Members))
	for _, member := range m.Members {
		dirs = append(dirs, m.resolve(member))
	}
	return dirs
}

func (m *Manifest) resolve(entry string) string {
	if filepath.IsAbs(entry) {
		return entry
	}
	return filepath.Join(m.Root, entry)
}

// levelFromExpr evaluates a lint-level attribute. The HCL decoder populates
// omitted optional expressions with zero-width placeholders, so presence is
// checked through the source range rather than a nil test.
func levelFromExpr(expr hcl.Expression, attr string, fallback compiler.Level) (compiler.Level, error) {
	if !exprDefined(expr) {
		return fallback, nil
	}

	value, diags := expr.Value(nil)
	if diags.HasErrors() {
		return fallback, fmt.Errorf("lint.%s: %w", attr, diags)
	}
	value, err := convert.Convert(value, cty.String)
	if err != nil {
		return fallback, fmt.Errorf("lint.%s: %w", attr, err)
	}

	switch value.AsString() {
	case "allow":
		return compiler.LevelAllow, nil
	case "warn":
		return compiler.LevelWarn, nil
	case "deny":
		return compiler.LevelDeny, nil
	default:
		return fallback, fmt.Errorf("lint.%s: unknown level %q (want allow, warn or deny)", attr, value.AsString())
	}
}

func exprDefined(expr hcl.Expression) bool {
	if expr == nil {
		return false
	}
	r := expr.Range()
	return r.End.Byte > r.Start.Byte
}
