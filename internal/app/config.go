package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ScriptPath   string // empty means interactive REPL
	ManifestPath string // empty means discover lox.hcl next to the script

	Disassemble bool
	LogFormat   string
	LogLevel    string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.Disassemble && cfg.ScriptPath == "" {
		return nil, errors.New("disasm requires a script path")
	}

	return &cfg, nil
}
