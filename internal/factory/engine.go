package factory

import (
	"context"
	"io"
	"time"

	"github.com/mikey/mail-insight/internal/config"
	"github.com/mikey/mail-insight/internal/core"
	"github.com/mikey/mail-insight/internal/ports"
	"github.com/mikey/mail-insight/internal/utils"
	"go.uber.org/zap"
)

// Engine assembles an AnalysisService per run from configuration and request overrides.
// The cache, notifiers and metrics are shared across runs.
type Engine struct {
	cfg       *config.Config
	llm       *LLMFactory
	sources   *SourceFactory
	cache     ResponseCache
	notifiers []core.Notifier
	processor *utils.TextProcessor
	metrics   core.Metrics
	logger    *zap.Logger
}

// NewEngine creates a new analysis engine. cache may be nil.
func NewEngine(
	cfg *config.Config,
	llm *LLMFactory,
	sources *SourceFactory,
	cache ResponseCache,
	notifiers []core.Notifier,
	processor *utils.TextProcessor,
	metrics core.Metrics,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		cfg:       cfg,
		llm:       llm,
		sources:   sources,
		cache:     cache,
		notifiers: notifiers,
		processor: processor,
		metrics:   metrics,
		logger:    logger,
	}
}

// RunAnalysis implements ports.AnalysisRunner
func (e *Engine) RunAnalysis(ctx context.Context, req ports.AnalysisRequest) (*core.Result, error) {
	base, err := e.cfg.Settings()
	if err != nil {
		return nil, err
	}
	settings := base.With(req.Settings)
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	source, err := e.sources.CreateMailSource(req.EmailAddress, req.EmailPassword, req.IMAPServer)
	if err != nil {
		return nil, err
	}

	generator, err := e.llm.CreateGenerator(ctx, req.APIKey)
	if err != nil {
		return nil, err
	}
	if closer, ok := generator.(io.Closer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				e.logger.Warn("Failed to close generator", zap.Error(err))
			}
		}()
	}

	llmConfig, err := e.cfg.GetLLM()
	if err != nil {
		return nil, &core.ConfigError{Problems: []string{err.Error()}}
	}
	cacheTTL, err := e.cacheTTL()
	if err != nil {
		return nil, err
	}

	service := core.NewAnalysisService(
		source,
		withTimeout(generator, llmConfig.Timeout),
		e.cache,
		cacheTTL,
		e.processor,
		e.notifiers,
		e.metrics,
		core.SleepContext,
		e.logger,
	)
	return service.RunFullAnalysis(ctx, settings)
}

func (e *Engine) cacheTTL() (time.Duration, error) {
	cacheCfg, err := e.cfg.GetCache()
	if err != nil {
		return 0, &core.ConfigError{Problems: []string{err.Error()}}
	}
	return cacheCfg.TTL, nil
}

// Close releases the shared cache
func (e *Engine) Close() {
	if e.cache != nil {
		e.cache.Stop()
	}
}

var _ ports.AnalysisRunner = (*Engine)(nil)
