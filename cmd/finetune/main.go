package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	cfgPkg "github.com/clindoc/compkit/pkg/config"
	"github.com/clindoc/compkit/pkg/finetune"
	"github.com/clindoc/compkit/pkg/llm"
)

func main() {
	var configPath string
	var uploadOnly bool
	var statusJobID string
	var listJobs bool
	var listFiles bool
	var testModel string
	var cancelJobID string

	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.BoolVar(&uploadOnly, "upload-only", false, "Only upload files")
	flag.StringVar(&statusJobID, "status", "", "Check status of a job")
	flag.BoolVar(&listJobs, "list", false, "List fine-tuning jobs")
	flag.BoolVar(&listFiles, "files", false, "List uploaded files")
	flag.StringVar(&testModel, "test", "", "Test a fine-tuned model")
	flag.StringVar(&cancelJobID, "cancel", "", "Cancel a fine-tuning job")
	flag.Parse()

	cfg, err := cfgPkg.LoadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}

	if cfg.LLM.APIKey == "" {
		color.Red("Error: OPENAI_API_KEY environment variable not set")
		fmt.Println("\nSet it with:")
		fmt.Println(`  export OPENAI_API_KEY="sk-your-key-here"`)
		os.Exit(1)
	}
	if !strings.HasPrefix(cfg.LLM.APIKey, "sk-") {
		color.Yellow("Warning: API key doesn't start with 'sk-'")
	}

	client, err := finetune.NewClient(finetune.ClientConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
	})
	if err != nil {
		log.Fatal(err)
	}

	driver := finetune.NewDriver(client, finetune.DriverConfig{
		BaseModel:       cfg.FineTune.BaseModel,
		TrainingFile:    cfg.FineTune.TrainingFile,
		ValidationFile:  cfg.FineTune.ValidationFile,
		Suffix:          cfg.FineTune.Suffix,
		Epochs:          cfg.FineTune.Epochs,
		PollInterval:    time.Duration(cfg.FineTune.PollSeconds) * time.Second,
		ModelOutputPath: cfg.FineTune.ModelOutputPath,
	})

	ctx := context.Background()

	switch {
	case listJobs:
		jobs, err := client.ListJobs(ctx, 10)
		if err != nil {
			log.Fatal(err)
		}
		for _, job := range jobs {
			fmt.Printf("%s\n   Model: %s\n   Status: %s\n", job.ID, job.Model, job.Status)
			if job.FineTunedModel != "" {
				fmt.Printf("   Fine-tuned: %s\n", job.FineTunedModel)
			}
			fmt.Println()
		}

	case listFiles:
		files, err := client.ListFiles(ctx, "fine-tune")
		if err != nil {
			log.Fatal(err)
		}
		for _, f := range files {
			fmt.Printf("  %s\n     Filename: %s\n     Size: %d bytes\n\n", f.ID, f.Filename, f.Bytes)
		}

	case statusJobID != "":
		job, err := client.GetJob(ctx, statusJobID)
		if err != nil {
			log.Fatal(err)
		}
		out, _ := json.MarshalIndent(job, "", "  ")
		fmt.Println(string(out))

	case testModel != "":
		if err := smokeTest(ctx, cfg, testModel); err != nil {
			log.Fatal(err)
		}

	case cancelJobID != "":
		if _, err := client.CancelJob(ctx, cancelJobID); err != nil {
			log.Fatal(err)
		}
		color.Yellow("Cancelled job: %s", cancelJobID)

	case uploadOnly:
		report, err := finetune.ValidateTrainingFile(cfg.FineTune.TrainingFile)
		if err != nil {
			log.Fatal(err)
		}
		if !report.Valid {
			for _, e := range report.Errors {
				color.Red("  %s", e)
			}
			log.Fatalf("training file validation failed: %d errors", report.ErrorCount)
		}
		uploaded, err := client.UploadFile(ctx, cfg.FineTune.TrainingFile, "fine-tune")
		if err != nil {
			log.Fatal(err)
		}
		if _, statErr := os.Stat(cfg.FineTune.ValidationFile); statErr == nil {
			if _, err := client.UploadFile(ctx, cfg.FineTune.ValidationFile, "fine-tune"); err != nil {
				log.Fatal(err)
			}
		}
		fmt.Printf("\nTraining file ID: %s\n", uploaded.ID)

	default:
		runWorkflow(ctx, cfg, driver)
	}
}

func runWorkflow(ctx context.Context, cfg *cfgPkg.Config, driver *finetune.Driver) {
	color.Cyan("Clinical Component Identifier - Fine-Tuning Workflow")

	spinner := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(color.CyanString("Training in progress...")),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionClearOnFinish(),
	)
	done := make(chan struct{})
	go spin(spinner, done, 120*time.Millisecond)

	final, err := driver.RunWorkflow(ctx)
	close(done)
	spinner.Finish()
	if err != nil {
		log.Fatal(err)
	}

	if final.Status != finetune.StatusSucceeded {
		os.Exit(1)
	}

	color.Green("\nYour fine-tuned model ID: %s", final.FineTunedModel)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Set environment variable:")
	fmt.Printf("     export FINE_TUNED_MODEL=%q\n", final.FineTunedModel)
	fmt.Printf("  2. Test with: compkit-finetune -test %s\n", final.FineTunedModel)

	if err := smokeTest(ctx, cfg, final.FineTunedModel); err != nil {
		color.Red("Smoke test failed: %v", err)
	}
}

// spin advances the bar on a ticker until done is closed, keeping the
// indeterminate spinner moving while the workflow blocks on polling.
func spin(bar *progressbar.ProgressBar, done <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			bar.Add(1)
		}
	}
}

const defaultTestText = `This study will be conducted in accordance with Good Clinical Practice (GCP) guidelines.
The primary endpoint is overall survival, defined as time from randomization to death.
Inclusion criteria include age >= 18 years and ECOG status 0-1.`

// smokeTest runs one identification call against the given model and
// prints the raw output plus the parsed component count.
func smokeTest(ctx context.Context, cfg *cfgPkg.Config, model string) error {
	engine, err := llm.NewWithConfig(llm.ChatConfig{
		Model:     model,
		APIKey:    cfg.LLM.APIKey,
		BaseURL:   cfg.LLM.BaseURL,
		MaxTokens: 2000,
	})
	if err != nil {
		return err
	}

	color.Cyan("Testing model: %s", model)
	result, usage, err := engine.Complete(ctx, llm.SystemPrompt, llm.UserMessage(defaultTestText))
	if err != nil {
		return err
	}

	fmt.Printf("Model output:\n%s\n", result)
	components := llm.ParseComponents(result)
	color.Green("Parsed %d components (%d total tokens)", len(components), usage.TotalTokens)
	return nil
}
