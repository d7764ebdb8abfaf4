package app

import (
	"errors"
	"io"
	"log/slog"
)

// Errors the entrypoint maps to distinct exit codes.
var (
	// ErrCompile marks scan, parse or compile failures.
	ErrCompile = errors.New("compilation failed")
	// ErrRuntime marks failures raised while the program was running.
	ErrRuntime = errors.New("execution failed")
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	stdin  io.Reader
	stdout io.Writer
	errW   io.Writer
	logger *slog.Logger
	config *Config
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger. Program output goes
// to stdout; logs and diagnostics go to errW.
func NewApp(stdin io.Reader, stdout, errW io.Writer, config *Config) *App {
	logger := newLogger(config.LogLevel, config.LogFormat, errW)
	logger.Debug("Logger configured successfully.")

	return &App{
		stdin:  stdin,
		stdout: stdout,
		errW:   errW,
		logger: logger,
		config: config,
	}
}
