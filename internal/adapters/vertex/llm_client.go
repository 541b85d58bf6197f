package vertex

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/mikey/mail-insight/internal/config"
	"github.com/mikey/mail-insight/internal/core"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const provider = "vertex"

// GenAIClient is an implementation of the Generator interface using the unified Google GenAI SDK.
// It talks to either the Gemini API or Vertex AI depending on the configured backend.
type GenAIClient struct {
	client *genai.Client
	config *genai.GenerateContentConfig
	logger *zap.Logger
}

// NewGenAIClient creates a new GenAI client
func NewGenAIClient(ctx context.Context, cfg config.VertexConfig, logger *zap.Logger) (*GenAIClient, error) {
	clientConfig := &genai.ClientConfig{}
	switch cfg.Backend {
	case "vertex":
		clientConfig.Backend = genai.BackendVertexAI
		clientConfig.Project = cfg.Project
		clientConfig.Location = cfg.Location
	default:
		clientConfig.Backend = genai.BackendGeminiAPI
		clientConfig.APIKey = cfg.APIKey
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	genConfig := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(cfg.Temperature),
		TopP:             genai.Ptr(cfg.TopP),
		ResponseMIMEType: "application/json",
	}
	if cfg.MaxTokens > 0 {
		genConfig.MaxOutputTokens = int32(cfg.MaxTokens)
	}

	return &GenAIClient{
		client: client,
		config: genConfig,
		logger: logger,
	}, nil
}

// Generate sends prompt to the named model and returns the response text
func (c *GenAIClient) Generate(ctx context.Context, model, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, model, genai.Text(prompt), c.config)
	if err != nil {
		return "", classify(model, err)
	}

	text := resp.Text()
	if text == "" {
		return "", errors.New("empty response from GenAI")
	}

	c.logger.Debug("Received GenAI response",
		zap.String("model", model),
		zap.Int("length", len(text)))

	return text, nil
}

// classify maps SDK errors onto the pipeline error kinds
func classify(model string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	code := StatusCode(err)
	switch {
	case code == 0:
		return fmt.Errorf("failed to generate content with GenAI: %w", err)
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return &core.FatalError{Reason: "genai rejected the credentials", Err: err}
	default:
		return &core.ServiceError{Provider: provider, Model: model, StatusCode: code, Err: err}
	}
}

// StatusCode extracts the HTTP status of a GenAI API error, or 0 when none is present.
// The SDK returns APIError by value, so both forms are checked.
func StatusCode(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code
	}
	return 0
}
