package cmd

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/mattn/go-isatty"
)

// envConfig holds defaults read from the environment. Flags set on the
// command line take precedence.
type envConfig struct {
	LogLevel string `env:"PLANNER_SIM_LOG" envDefault:"warn"`
	DBPath   string `env:"PLANNER_SIM_DB"`
	NoColor  string `env:"NO_COLOR"` // any non-empty value disables color
}

func loadEnv() (envConfig, error) {
	var cfg envConfig
	if err := env.Parse(&cfg); err != nil {
		return envConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// colorEnabled reports whether styled output should be written to f.
func colorEnabled(f *os.File, noColorFlag bool, cfg envConfig) bool {
	if noColorFlag || cfg.NoColor != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
