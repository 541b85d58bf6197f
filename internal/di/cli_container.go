package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/mail-insight/internal/config"
	"github.com/mikey/mail-insight/internal/core"
	"github.com/mikey/mail-insight/internal/credential"
	"github.com/mikey/mail-insight/internal/logging"
)

// BuildCLIContainer creates and configures a dependency injection container for the command line.
// Logs go to the console and no metrics are collected.
func BuildCLIContainer(opts Options) (*dig.Container, error) {
	container := dig.New()

	// Register options
	if err := container.Provide(func() Options { return opts }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(opts Options) (*zap.Logger, error) {
		return logging.InitConsoleLogger(opts.Verbose, opts.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(opts Options, logger *zap.Logger) (*config.Config, error) {
		cfg, err := loadConfig(opts)
		if err != nil {
			return nil, err
		}
		if used := cfg.GetViper().ConfigFileUsed(); used != "" {
			logger.Debug("Loaded configuration from file", zap.String("file", used))
		}
		return cfg, nil
	}); err != nil {
		return nil, err
	}

	// Register metrics
	if err := container.Provide(func() core.Metrics {
		return core.NopMetrics{}
	}); err != nil {
		return nil, err
	}

	// Register credential store
	if err := container.Provide(func(cfg *config.Config) (*credential.Store, error) {
		return credential.Open(cfg.GetSecrets().Service)
	}); err != nil {
		return nil, err
	}

	if err := provideAnalysis(container); err != nil {
		return nil, err
	}

	if err := container.Invoke(loadSecrets); err != nil {
		return nil, err
	}

	return container, nil
}
