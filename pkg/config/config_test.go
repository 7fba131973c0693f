package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configData := `
llm:
  base_url: "https://api.openai.com/v1"
  model: "gpt-4o-mini"
  max_tokens: 2000
  rate_limit: 2.0

server:
  port: "8080"

fine_tune:
  base_model: "gpt-4o-mini-2024-07-18"
  suffix: "clinical-components"
  epochs: 3
  poll_seconds: 30

prepare:
  output_dir: "out"
  train_split: 0.9
`
	require.NoError(t, os.WriteFile(configPath, []byte(configData), 0o644))

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 2000, cfg.LLM.MaxTokens)
	assert.Equal(t, 2.0, cfg.LLM.RateLimit)
	assert.Equal(t, float64(0), cfg.LLM.Temperature)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 30, cfg.FineTune.PollSeconds)
	assert.Equal(t, 0.9, cfg.Prepare.TrainSplit)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 4000, cfg.LLM.MaxTokens)
	assert.Equal(t, float64(0), cfg.LLM.Temperature, "identification sampling stays deterministic by default")
	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, "gpt-4o-mini-2024-07-18", cfg.FineTune.BaseModel)
	assert.Equal(t, "data/training_data.jsonl", cfg.FineTune.TrainingFile)
	assert.Equal(t, 60, cfg.FineTune.PollSeconds)
	assert.Equal(t, "fine_tuned_model.txt", cfg.FineTune.ModelOutputPath)
	assert.Equal(t, 0.8, cfg.Prepare.TrainSplit)
}

func TestMergeWithEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env-key")
	t.Setenv("FINE_TUNED_MODEL", "ft:gpt-4o-mini:custom")
	t.Setenv("PORT", "9999")

	cfg := &Config{}
	mergeWithEnv(cfg)

	assert.Equal(t, "sk-env-key", cfg.LLM.APIKey)
	assert.Equal(t, "ft:gpt-4o-mini:custom", cfg.LLM.Model)
	assert.Equal(t, "9999", cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.LLM.APIKey = "sk-test"

	assert.Empty(t, cfg.Validate())
}

func TestValidateCatchesBadValues(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.LLM.APIKey = ""
	cfg.LLM.Temperature = 1.5
	cfg.Prepare.TrainSplit = 1.2
	cfg.FineTune.PollSeconds = 0

	errs := cfg.Validate()
	fields := make(map[string]bool)
	for _, e := range errs {
		fields[e.Field] = true
		assert.NotEmpty(t, e.Error())
	}
	assert.True(t, fields["llm.api_key"])
	assert.True(t, fields["llm.temperature"])
	assert.True(t, fields["prepare.train_split"])
	assert.True(t, fields["fine_tune.poll_seconds"])
}
