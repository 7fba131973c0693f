package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
	"golang.org/x/time/rate"

	"github.com/clindoc/compkit/internal/models"
)

// ChatConfig represents the configuration for a completion engine.
type ChatConfig struct {
	Model       string
	APIKey      string
	BaseURL     string // OpenAI-compatible endpoint base URL
	MaxTokens   int
	Temperature float64
	RateLimit   float64 // outbound calls per second; 0 means unlimited
}

// Engine issues single chat completions against the external model.
// Identification uses deterministic sampling, so Temperature stays 0
// unless the caller overrides it.
type Engine struct {
	config  ChatConfig
	llm     llms.Model
	limiter *rate.Limiter
}

// NewWithConfig creates a new Engine with the given configuration.
func NewWithConfig(config ChatConfig) (*Engine, error) {
	if config.Model == "" {
		config.Model = "gpt-4o-mini"
	}
	if config.Temperature < 0 || config.Temperature > 1 {
		return nil, fmt.Errorf("temperature must be between 0 and 1")
	}
	if config.MaxTokens < 0 {
		return nil, fmt.Errorf("max tokens cannot be negative")
	} else if config.MaxTokens == 0 {
		config.MaxTokens = 4000
	}

	opts := []openai.Option{openai.WithModel(config.Model)}
	if config.APIKey != "" {
		opts = append(opts, openai.WithToken(config.APIKey))
	}
	if config.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(config.BaseURL))
	}

	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM: %w", err)
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if config.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RateLimit), 1)
	}

	return &Engine{
		config:  config,
		llm:     model,
		limiter: limiter,
	}, nil
}

// Model returns the model name the engine completes against.
func (e *Engine) Model() string {
	return e.config.Model
}

// Complete issues exactly one completion call with the configured
// temperature and token ceiling, returning the completion text and the
// token usage reported by the API.
func (e *Engine) Complete(ctx context.Context, system, user string) (string, models.Usage, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return "", models.Usage{}, fmt.Errorf("rate limit wait: %w", err)
	}

	content := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, system),
		llms.TextParts(schema.ChatMessageTypeHuman, user),
	}

	response, err := e.llm.GenerateContent(ctx, content,
		llms.WithTemperature(e.config.Temperature),
		llms.WithMaxTokens(e.config.MaxTokens),
	)
	if err != nil {
		return "", models.Usage{}, fmt.Errorf("completion error: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", models.Usage{}, fmt.Errorf("no choices in completion response")
	}

	choice := response.Choices[0]
	usage := models.Usage{
		PromptTokens:     generationInfoInt(choice.GenerationInfo, "PromptTokens"),
		CompletionTokens: generationInfoInt(choice.GenerationInfo, "CompletionTokens"),
		TotalTokens:      generationInfoInt(choice.GenerationInfo, "TotalTokens"),
	}
	return choice.Content, usage, nil
}

func generationInfoInt(info map[string]any, key string) int {
	switch v := info[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
