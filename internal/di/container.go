package di

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/mail-insight/internal/adapters/httpapi"
	"github.com/mikey/mail-insight/internal/config"
	"github.com/mikey/mail-insight/internal/core"
	"github.com/mikey/mail-insight/internal/credential"
	"github.com/mikey/mail-insight/internal/factory"
	"github.com/mikey/mail-insight/internal/logging"
	"github.com/mikey/mail-insight/internal/metrics"
	"github.com/mikey/mail-insight/internal/ports"
	"github.com/mikey/mail-insight/internal/urgency"
	"github.com/mikey/mail-insight/internal/utils"
)

// Options are the process level settings that select and override configuration
type Options struct {
	ConfigFile string
	Verbose    bool
	JSONLog    bool
}

// BuildContainer creates and configures a dependency injection container for the HTTP API
func BuildContainer(opts Options) (*dig.Container, error) {
	container := dig.New()

	// Register options
	if err := container.Provide(func() Options { return opts }); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(loadConfig); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(opts Options, cfg *config.Config) (*zap.Logger, error) {
		if opts.Verbose {
			cfg.Set("logging.level", "debug")
		}
		if opts.JSONLog {
			cfg.Set("logging.format", "json")
		}
		return logging.InitLogger(cfg)
	}); err != nil {
		return nil, err
	}

	// Register metrics
	if err := container.Provide(newMetrics); err != nil {
		return nil, err
	}

	if err := provideAnalysis(container); err != nil {
		return nil, err
	}

	// Register HTTP API
	if err := container.Provide(func(
		cfg *config.Config,
		runner ports.AnalysisRunner,
		gatherer prometheus.Gatherer,
		logger *zap.Logger,
	) (ports.Server, error) {
		serverCfg, err := cfg.GetServer()
		if err != nil {
			return nil, err
		}
		return httpapi.NewServer(serverCfg, runner, gatherer, logger), nil
	}); err != nil {
		return nil, err
	}

	if err := container.Invoke(loadSecrets); err != nil {
		return nil, err
	}

	return container, nil
}

// provideAnalysis registers everything an analysis run needs
func provideAnalysis(container *dig.Container) error {
	// Register factories
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewSourceFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewNotifierFactory); err != nil {
		return err
	}

	// Register text processor
	if err := container.Provide(utils.NewTextProcessor); err != nil {
		return err
	}

	// Register response cache, nil when disabled
	if err := container.Provide(func(f *factory.CacheFactory) (factory.ResponseCache, error) {
		return f.CreateResponseCache(context.Background())
	}); err != nil {
		return err
	}

	// Register notifiers
	if err := container.Provide(func(f *factory.NotifierFactory) ([]core.Notifier, error) {
		return f.CreateNotifiers()
	}); err != nil {
		return err
	}

	// Register analysis engine
	if err := container.Provide(factory.NewEngine); err != nil {
		return err
	}
	if err := container.Provide(func(e *factory.Engine) ports.AnalysisRunner {
		return e
	}); err != nil {
		return err
	}

	// Register keyword classifier
	if err := container.Provide(func(cfg *config.Config, processor *utils.TextProcessor, logger *zap.Logger) *urgency.Classifier {
		urgencyCfg := cfg.GetUrgency()
		return urgency.NewClassifier(urgencyCfg.Keywords, urgencyCfg.SnippetSize, processor, logger)
	}); err != nil {
		return err
	}

	return nil
}

func loadConfig(opts Options) (*config.Config, error) {
	return config.NewWithFile(opts.ConfigFile)
}

// loadSecrets fills empty secrets from the system keyring when enabled
func loadSecrets(cfg *config.Config, logger *zap.Logger) error {
	secrets := cfg.GetSecrets()
	if !secrets.Keyring {
		return nil
	}
	store, err := credential.Open(secrets.Service)
	if err != nil {
		return err
	}
	return store.Fill(cfg, logger)
}

// newMetrics returns a prometheus backed recorder and its registry, or a no-op recorder when disabled
func newMetrics(cfg *config.Config, logger *zap.Logger) (core.Metrics, prometheus.Gatherer) {
	if !cfg.GetBool("metrics.enabled") {
		logger.Debug("Metrics disabled")
		return core.NopMetrics{}, nil
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return metrics.NewRecorder(reg), reg
}
