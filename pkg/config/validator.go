package config

import (
	"fmt"
	"net/url"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Validate LLM config
	if c.LLM.APIKey == "" {
		errors = append(errors, ValidationError{
			Field:   "llm.api_key",
			Message: "API key is required (set OPENAI_API_KEY)",
		})
	}

	if c.LLM.MaxTokens < 1 || c.LLM.MaxTokens > 16384 {
		errors = append(errors, ValidationError{
			Field:   "llm.max_tokens",
			Message: "max_tokens must be between 1 and 16384",
		})
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 1 {
		errors = append(errors, ValidationError{
			Field:   "llm.temperature",
			Message: "temperature must be between 0 and 1",
		})
	}

	if c.LLM.RateLimit < 0 {
		errors = append(errors, ValidationError{
			Field:   "llm.rate_limit",
			Message: "rate_limit must be non-negative",
		})
	}

	if c.LLM.BaseURL != "" {
		if _, err := url.Parse(c.LLM.BaseURL); err != nil {
			errors = append(errors, ValidationError{
				Field:   "llm.base_url",
				Message: "invalid base URL",
			})
		}
	}

	// Validate fine-tuning config
	if c.FineTune.Epochs < 0 {
		errors = append(errors, ValidationError{
			Field:   "fine_tune.epochs",
			Message: "epochs must be non-negative",
		})
	}

	if c.FineTune.PollSeconds < 1 {
		errors = append(errors, ValidationError{
			Field:   "fine_tune.poll_seconds",
			Message: "poll_seconds must be positive",
		})
	}

	// Validate preparation config
	if c.Prepare.TrainSplit <= 0 || c.Prepare.TrainSplit >= 1 {
		errors = append(errors, ValidationError{
			Field:   "prepare.train_split",
			Message: "train_split must be between 0 and 1 exclusive",
		})
	}

	return errors
}
