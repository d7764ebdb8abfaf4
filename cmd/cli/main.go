package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/loxgo/internal/app"
	"github.com/vk/loxgo/internal/cli"
)

// main is the entrypoint for the lox interpreter.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdin, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(stdin io.Reader, stdout, errW io.Writer, args []string) error {
	config, shouldExit, err := cli.Parse(args, errW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	loxApp := app.NewApp(stdin, stdout, errW, config)
	return loxApp.Run(context.Background())
}

// exitCode maps an error to the process exit code.
func exitCode(err error) int {
	var exitErr *cli.ExitError
	switch {
	case errors.As(err, &exitErr):
		return exitErr.Code
	case errors.Is(err, app.ErrCompile):
		return cli.ExitCompile
	case errors.Is(err, app.ErrRuntime):
		return cli.ExitRuntime
	default:
		return 1
	}
}
