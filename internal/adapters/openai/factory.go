package openai

import (
	"github.com/mikey/mail-insight/internal/config"
	"github.com/mikey/mail-insight/internal/core"
	"go.uber.org/zap"
)

// Factory creates new instances of OpenAIClient
type Factory struct {
	cfg    config.OpenAIConfig
	logger *zap.Logger
}

// NewFactory creates a new factory for OpenAIClient instances
func NewFactory(cfg config.OpenAIConfig, logger *zap.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateGenerator creates a new OpenAIClient. Self hosted endpoints set a base URL and may omit the key.
func (f *Factory) CreateGenerator() (*OpenAIClient, error) {
	if f.cfg.APIKey == "" && f.cfg.BaseURL == "" {
		return nil, &core.ConfigError{Problems: []string{"openai.api_key is required for the openai provider"}}
	}
	return NewOpenAIClient(
		f.cfg.APIKey,
		f.cfg.BaseURL,
		f.cfg.MaxTokens,
		f.cfg.Temperature,
		f.cfg.TopP,
		f.logger,
	), nil
}
