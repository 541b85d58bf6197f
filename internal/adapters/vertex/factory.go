package vertex

import (
	"context"

	"github.com/mikey/mail-insight/internal/config"
	"github.com/mikey/mail-insight/internal/core"
	"go.uber.org/zap"
)

// Factory creates new instances of GenAIClient
type Factory struct {
	cfg    config.VertexConfig
	logger *zap.Logger
}

// NewFactory creates a new factory for GenAIClient instances
func NewFactory(cfg config.VertexConfig, logger *zap.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateGenerator validates the backend settings and creates a new GenAIClient
func (f *Factory) CreateGenerator(ctx context.Context) (*GenAIClient, error) {
	var problems []string
	switch f.cfg.Backend {
	case "vertex":
		if f.cfg.Project == "" {
			problems = append(problems, "vertex.project is required for the vertex backend")
		}
		if f.cfg.Location == "" {
			problems = append(problems, "vertex.location is required for the vertex backend")
		}
	case "gemini", "":
		if f.cfg.APIKey == "" {
			problems = append(problems, "vertex.api_key is required for the gemini backend")
		}
	default:
		problems = append(problems, "unsupported vertex.backend: "+f.cfg.Backend)
	}
	if len(problems) > 0 {
		return nil, &core.ConfigError{Problems: problems}
	}

	return NewGenAIClient(ctx, f.cfg, f.logger)
}
