package cli

import (
	"log/slog"

	"github.com/aretw0/turtle/internal/config"
	"github.com/aretw0/turtle/internal/logging"
)

// RunOptions carries the flags shared by every command.
// Non-empty fields override the loaded configuration.
type RunOptions struct {
	ConfigPath string
	Store      string // file, memory or redis
	Dir        string
	RedisAddr  string
	Debug      bool
	Headless   bool
	JSON       bool
	Script     string // replayed before the interactive loop
}

// loadConfig reads the configuration file and applies flag overrides.
func loadConfig(opts RunOptions) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	if opts.Store != "" {
		cfg.Store.Driver = opts.Store
	}
	if opts.Dir != "" {
		cfg.Store.Dir = opts.Dir
	}
	if opts.RedisAddr != "" {
		cfg.Store.Redis.Addr = opts.RedisAddr
	}
	if opts.Debug {
		cfg.Log.Level = "debug"
	}
	return cfg, cfg.Validate()
}

// createLogger configures the application logger.
// It writes to Stderr to keep Stdout for the turtle prompt.
func createLogger(cfg config.Config) *slog.Logger {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = slog.LevelWarn
	}
	return logging.New(level)
}
