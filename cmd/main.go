package main

import (
	"context"
	"errors"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/reelist/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	// .env is optional
	_ = godotenv.Load()

	configPath := os.Getenv("REELIST_CONFIG")
	if configPath == "" {
		configPath = "config.toml"
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
		}
	}
	config.ApplyEnv(os.Getenv)
	shared.ApplyLogLevel(logger, config.Log.Level)

	if config.Log.File != "" {
		if fileLogger, err := shared.NewFileLogger(shared.ExpandHome(config.Log.File), config.Log.MaxSizeMB, config.Log.MaxBackups); err == nil {
			shared.ApplyLogLevel(fileLogger, config.Log.Level)
			logger = fileLogger
		} else {
			logger.Warn("failed to open log file, logging to stderr", "error", err)
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Logger:     logger,
	})
	defer runner.Close()

	app := &cli.Command{
		Name:     "reelist",
		Usage:    "Keep lists of movies you love or want to watch",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			return
		}
		runner.Close()
		logger.Fatalf("application error: %v", err)
	}
}
