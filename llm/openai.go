package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/meghashyamc/askthat/config"
	"github.com/meghashyamc/askthat/logger"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// OpenAIClient talks to any OpenAI-compatible chat completion API.
type OpenAIClient struct {
	client *openai.LLM
	logger logger.Logger
}

// NewClient builds the backend client from configuration. When credentials
// are absent it returns a client whose every call fails with a
// ConfigurationError, so the server can still serve non-LLM routes.
func NewClient(logger logger.Logger, cfg *config.Config) Client {
	apiKey := cfg.GetLLMAPIKey()
	if apiKey == "" {
		logger.Warn("LLM_API_KEY is not set, answer generation will be unavailable")
		return &unconfiguredClient{err: &ConfigurationError{Reason: "LLM_API_KEY is not set"}}
	}

	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithModel(cfg.GetLLMModel()),
	}
	if baseURL := cfg.GetLLMBaseURL(); baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		logger.Error("failed to create llm client", "err", err.Error())
		return &unconfiguredClient{err: &ConfigurationError{Reason: err.Error()}}
	}

	return &OpenAIClient{client: client, logger: logger}
}

func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	content := make([]llms.MessageContent, 0, len(req.Messages))
	for _, message := range req.Messages {
		role := llms.ChatMessageTypeHuman
		if message.Role == RoleSystem {
			role = llms.ChatMessageTypeSystem
		}
		content = append(content, llms.MessageContent{
			Role:  role,
			Parts: []llms.ContentPart{llms.TextPart(message.Content)},
		})
	}

	callOpts := []llms.CallOption{
		llms.WithTemperature(req.Temperature),
	}
	if req.Model != "" {
		callOpts = append(callOpts, llms.WithModel(req.Model))
	}
	if req.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(req.MaxTokens))
	}
	if req.JSONMode {
		callOpts = append(callOpts, llms.WithJSONMode())
	}

	response, err := c.client.GenerateContent(ctx, content, callOpts...)
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
			c.logger.Warn("llm call exceeded its deadline", "model", req.Model)
			return "", &TimeoutError{Operation: "completion"}
		case isRateLimited(err):
			c.logger.Warn("llm backend reported a rate limit", "model", req.Model)
			return "", &RateLimitError{Model: req.Model}
		}
		return "", fmt.Errorf("llm completion failed: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("llm returned no choices")
	}

	return response.Choices[0].Content, nil
}

func isRateLimited(err error) bool {
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "429") || strings.Contains(message, "rate limit")
}

type unconfiguredClient struct {
	err error
}

func (c *unconfiguredClient) Complete(_ context.Context, _ Request) (string, error) {
	return "", c.err
}
