package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LLM struct {
		BaseURL     string  `yaml:"base_url"`
		Model       string  `yaml:"model"`
		APIKey      string  `yaml:"api_key"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float64 `yaml:"temperature"`
		RateLimit   float64 `yaml:"rate_limit"`
	} `yaml:"llm"`

	Server struct {
		Port    string `yaml:"port"`
		Service string `yaml:"service"`
		Version string `yaml:"version"`
	} `yaml:"server"`

	FineTune struct {
		BaseModel       string `yaml:"base_model"`
		TrainingFile    string `yaml:"training_file"`
		ValidationFile  string `yaml:"validation_file"`
		Suffix          string `yaml:"suffix"`
		Epochs          int    `yaml:"epochs"`
		PollSeconds     int    `yaml:"poll_seconds"`
		ModelOutputPath string `yaml:"model_output_path"`
	} `yaml:"fine_tune"`

	Prepare struct {
		OutputDir  string  `yaml:"output_dir"`
		TrainSplit float64 `yaml:"train_split"`
	} `yaml:"prepare"`
}

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/compkit/config.yaml"),
			"/etc/compkit/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %v", err)
	}

	// Merge with environment variables
	mergeWithEnv(&config)

	// Apply defaults for unset values
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	mergeWithEnv(config)
	applyDefaults(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.LLM.Model == "" {
		config.LLM.Model = "gpt-4o-mini"
	}
	if config.LLM.MaxTokens == 0 {
		config.LLM.MaxTokens = 4000
	}
	// Identification requires deterministic sampling, so temperature
	// defaults to 0 and stays there unless explicitly configured.

	if config.Server.Port == "" {
		config.Server.Port = "5000"
	}
	if config.Server.Service == "" {
		config.Server.Service = "Clinical Component Identifier API"
	}
	if config.Server.Version == "" {
		config.Server.Version = "1.0.0 (Few-Shot)"
	}

	if config.FineTune.BaseModel == "" {
		config.FineTune.BaseModel = "gpt-4o-mini-2024-07-18"
	}
	if config.FineTune.TrainingFile == "" {
		config.FineTune.TrainingFile = "data/training_data.jsonl"
	}
	if config.FineTune.ValidationFile == "" {
		config.FineTune.ValidationFile = "data/validation_data.jsonl"
	}
	if config.FineTune.Suffix == "" {
		config.FineTune.Suffix = "clinical-components"
	}
	if config.FineTune.Epochs == 0 {
		config.FineTune.Epochs = 3
	}
	if config.FineTune.PollSeconds == 0 {
		config.FineTune.PollSeconds = 60
	}
	if config.FineTune.ModelOutputPath == "" {
		config.FineTune.ModelOutputPath = "fine_tuned_model.txt"
	}

	if config.Prepare.OutputDir == "" {
		config.Prepare.OutputDir = "data"
	}
	if config.Prepare.TrainSplit == 0 {
		config.Prepare.TrainSplit = 0.8
	}
}

func mergeWithEnv(config *Config) {
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.LLM.APIKey = apiKey
	}
	if model := os.Getenv("FINE_TUNED_MODEL"); model != "" {
		config.LLM.Model = model
	}
	if port := os.Getenv("PORT"); port != "" {
		config.Server.Port = port
	}
}
