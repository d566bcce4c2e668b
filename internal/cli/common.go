package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Sunspark/MauroDataCollector/internal/config"
	"github.com/Sunspark/MauroDataCollector/internal/logging"
	"github.com/Sunspark/MauroDataCollector/pkg/mauro"
)

// loadSettings layers defaults, mauro.yaml, .env and the environment, then
// the global logging flags. Command specific flags are applied by the caller.
func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	// A missing .env is normal
	_ = godotenv.Load()

	path := globalFlags.configPath
	if path == "" {
		path = "."
	}
	projectCfg, err := config.Load(path)
	if err != nil {
		switch {
		case errors.Is(err, config.ErrConfigNotFound) && globalFlags.configPath == "":
			projectCfg = nil
		case errors.Is(err, config.ErrConfigNotFound):
			return config.Settings{}, &mauro.ConfigError{Field: "config", Value: globalFlags.configPath, Reason: "file not found"}
		default:
			return config.Settings{}, fmt.Errorf("%v: %w", err, mauro.ErrConfig)
		}
	}

	settings, err := config.Resolve(projectCfg, os.Getenv)
	if err != nil {
		return config.Settings{}, err
	}

	if flagChanged(cmd, "log-level") {
		settings.LogLevel = globalFlags.logLevel
	}
	if flagChanged(cmd, "log-path") {
		settings.LogPath = globalFlags.logPath
	}
	return settings, nil
}

// startLogging opens the run's log file. tool prefixes the file name.
func startLogging(tool string, settings config.Settings) (*logging.Run, error) {
	if _, err := logging.ParseLevel(settings.LogLevel); err != nil {
		return nil, &mauro.ConfigError{Field: "log level", Value: settings.LogLevel, Reason: "want DEBUG, INFO, WARNING, ERROR or CRITICAL"}
	}
	return logging.New(logging.Options{
		Tool:    tool,
		Path:    settings.LogPath,
		Level:   settings.LogLevel,
		Verbose: globalFlags.verbose,
	})
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			printErr("\n[INTERRUPT] Received interrupt signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}
