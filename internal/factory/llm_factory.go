package factory

import (
	"context"

	"github.com/mikey/mail-insight/internal/adapters/bedrock"
	"github.com/mikey/mail-insight/internal/adapters/gemini"
	"github.com/mikey/mail-insight/internal/adapters/openai"
	"github.com/mikey/mail-insight/internal/adapters/vertex"
	"github.com/mikey/mail-insight/internal/config"
	"github.com/mikey/mail-insight/internal/core"
	"go.uber.org/zap"
)

// LLMFactory creates generators for the configured provider
type LLMFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewLLMFactory creates a new LLM factory
func NewLLMFactory(cfg *config.Config, logger *zap.Logger) *LLMFactory {
	return &LLMFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateGenerator creates a generator for llm.provider. A non-empty apiKey replaces the configured key.
// Generators holding connections also implement io.Closer.
func (f *LLMFactory) CreateGenerator(ctx context.Context, apiKey string) (core.Generator, error) {
	llmConfig, err := f.cfg.GetLLM()
	if err != nil {
		return nil, &core.ConfigError{Problems: []string{err.Error()}}
	}

	switch llmConfig.Provider {
	case "gemini", "":
		geminiCfg := f.cfg.GetGemini()
		if apiKey != "" {
			geminiCfg.APIKey = apiKey
		}
		client, err := gemini.NewFactory(geminiCfg, f.logger).CreateGenerator(ctx)
		if err != nil {
			return nil, err
		}
		return client, nil
	case "vertex":
		vertexCfg := f.cfg.GetVertex()
		if apiKey != "" {
			vertexCfg.APIKey = apiKey
		}
		client, err := vertex.NewFactory(vertexCfg, f.logger).CreateGenerator(ctx)
		if err != nil {
			return nil, err
		}
		return client, nil
	case "openai":
		openaiCfg := f.cfg.GetOpenAI()
		if apiKey != "" {
			openaiCfg.APIKey = apiKey
		}
		client, err := openai.NewFactory(openaiCfg, f.logger).CreateGenerator()
		if err != nil {
			return nil, err
		}
		return client, nil
	case "bedrock":
		client, err := bedrock.NewFactory(f.cfg.GetBedrock(), f.logger).CreateGenerator(ctx)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, &core.ConfigError{Problems: []string{"unsupported llm.provider: " + llmConfig.Provider}}
	}
}
