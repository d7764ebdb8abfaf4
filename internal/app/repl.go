package app

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/vk/loxgo/internal/manifest"
	"github.com/vk/loxgo/internal/vm"
)

const replModuleName = "repl"

// runREPL reads statements line by line and executes them on a shared
// runtime, so globals defined on one line stay visible on the next. Compile
// and runtime errors are reported and the loop continues; only input
// exhaustion or a read error ends the session.
func (a *App) runREPL(ctx context.Context, m *manifest.Manifest) error {
	a.logger.Debug("Starting REPL.")

	runtime := vm.New(vm.Config{
		Stdout: a.stdout,
		Loader: newModuleLoader(m.SearchPaths("."), m, a.logger),
		Logger: a.logger,
	})

	scanner := bufio.NewScanner(a.stdin)
	fmt.Fprint(a.stdout, "> ")
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			fmt.Fprint(a.stdout, "> ")
			continue
		}

		if module, err := a.compile(line, replModuleName, m); err == nil {
			if err := runtime.Interpret(ctx, replModuleName, module); err != nil {
				fmt.Fprintln(a.errW, err)
			}
		}
		fmt.Fprint(a.stdout, "> ")
	}
	fmt.Fprintln(a.stdout)
	return scanner.Err()
}
