package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/mikey/mail-insight/internal/core"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const provider = "openai"

const systemPrompt = "You analyze batches of emails and respond only with a JSON array."

// OpenAIClient is an implementation of the Generator interface using OpenAI compatible chat completions
type OpenAIClient struct {
	client      *openai.Client
	maxTokens   int
	temperature float32
	topP        float32
	logger      *zap.Logger
}

// NewOpenAIClient creates a new OpenAI client. An empty baseURL selects the OpenAI API.
func NewOpenAIClient(
	apiKey string,
	baseURL string,
	maxTokens int,
	temperature float32,
	topP float32,
	logger *zap.Logger,
) *OpenAIClient {
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}

	return &OpenAIClient{
		client:      openai.NewClientWithConfig(clientConfig),
		maxTokens:   maxTokens,
		temperature: temperature,
		topP:        topP,
		logger:      logger,
	}
}

// Generate sends prompt to the named model and returns the content of the first choice
func (c *OpenAIClient) Generate(ctx context.Context, model, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classify(model, err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("empty response from OpenAI")
	}

	c.logger.Debug("Received OpenAI response",
		zap.String("model", model),
		zap.String("id", resp.ID),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)))

	return resp.Choices[0].Message.Content, nil
}

// classify maps client errors onto the pipeline error kinds
func classify(model string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	code := StatusCode(err)
	switch {
	case code == 0:
		return fmt.Errorf("failed to create chat completion with OpenAI: %w", err)
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return &core.FatalError{Reason: "openai rejected the credentials", Err: err}
	default:
		return &core.ServiceError{Provider: provider, Model: model, StatusCode: code, Err: err}
	}
}

// StatusCode extracts the HTTP status from an OpenAI client error, or 0 when none is present
func StatusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
