package main

import (
	"flag"
	"log"
	"net/http"

	cfgPkg "github.com/clindoc/compkit/pkg/config"
	"github.com/clindoc/compkit/pkg/llm"
	"github.com/clindoc/compkit/server"
)

func main() {
	var configPath string
	var model string
	var port string

	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.StringVar(&model, "model", "", "Completion model name (overrides config)")
	flag.StringVar(&port, "port", "", "Listen port (overrides config)")
	flag.Parse()

	cfg, err := cfgPkg.LoadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}
	if model != "" {
		cfg.LLM.Model = model
	}
	if port != "" {
		cfg.Server.Port = port
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			log.Printf("config error: %v", e)
		}
		log.Fatal("invalid configuration")
	}

	engine, err := llm.NewWithConfig(llm.ChatConfig{
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		RateLimit:   cfg.LLM.RateLimit,
	})
	if err != nil {
		log.Fatalf("failed to initialize completion engine: %v", err)
	}

	srv := server.New(server.Config{
		Service: cfg.Server.Service,
		Version: cfg.Server.Version,
	}, engine)

	log.Printf("Starting identification server on port %s (model %s)", cfg.Server.Port, cfg.LLM.Model)
	if err := http.ListenAndServe(":"+cfg.Server.Port, srv.Handler()); err != nil {
		log.Fatal(err)
	}
}
