package gemini

import (
	"context"

	"github.com/mikey/mail-insight/internal/config"
	"github.com/mikey/mail-insight/internal/core"
	"go.uber.org/zap"
)

// Factory creates new instances of GeminiClient
type Factory struct {
	cfg    config.GeminiConfig
	logger *zap.Logger
}

// NewFactory creates a new factory for GeminiClient instances
func NewFactory(cfg config.GeminiConfig, logger *zap.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateGenerator creates a new GeminiClient
func (f *Factory) CreateGenerator(ctx context.Context) (*GeminiClient, error) {
	if f.cfg.APIKey == "" {
		return nil, &core.ConfigError{Problems: []string{"gemini.api_key is required for the gemini provider"}}
	}
	return NewGeminiClient(
		ctx,
		f.cfg.APIKey,
		f.cfg.MaxTokens,
		f.cfg.Temperature,
		f.cfg.TopP,
		f.logger,
	)
}
