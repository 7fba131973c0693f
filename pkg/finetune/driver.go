package finetune

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
)

// API is the slice of the external service the driver depends on; tests
// substitute a fake.
type API interface {
	UploadFile(ctx context.Context, path, purpose string) (File, error)
	CreateJob(ctx context.Context, params JobParams) (Job, error)
	GetJob(ctx context.Context, jobID string) (Job, error)
}

// DriverConfig configures one fine-tuning workflow run.
type DriverConfig struct {
	BaseModel       string
	TrainingFile    string
	ValidationFile  string
	Suffix          string
	Epochs          int
	PollInterval    time.Duration
	ModelOutputPath string // single-line file holding the fine-tuned model id
}

// Driver runs the blocking, single-threaded fine-tuning workflow:
// validate, upload, create, poll to a terminal state, persist the model
// id. Nothing is retried; a failed external call is fatal to the run.
type Driver struct {
	api    API
	config DriverConfig
}

func NewDriver(api API, config DriverConfig) *Driver {
	if config.BaseModel == "" {
		config.BaseModel = "gpt-4o-mini-2024-07-18"
	}
	if config.Suffix == "" {
		config.Suffix = "clinical-components"
	}
	if config.PollInterval <= 0 {
		config.PollInterval = time.Minute
	}
	if config.ModelOutputPath == "" {
		config.ModelOutputPath = "fine_tuned_model.txt"
	}
	return &Driver{api: api, config: config}
}

const (
	maxReportedErrors   = 10
	maxReportedWarnings = 5
)

// ValidationReport aggregates structural problems in a JSONL training
// file. Any error blocks upload; warnings do not.
type ValidationReport struct {
	Valid         bool
	TotalExamples int
	Errors        []string
	Warnings      []string
	ErrorCount    int
	WarningCount  int
}

// ValidateTrainingFile checks every line of a JSONL file: valid JSON, a
// messages key with at least two entries, and at least one assistant
// message. Reported errors are capped at 10 and warnings at 5; the
// counts keep the full totals.
func ValidateTrainingFile(path string) (*ValidationReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	report := &ValidationReport{}
	addError := func(msg string) {
		report.ErrorCount++
		if len(report.Errors) < maxReportedErrors {
			report.Errors = append(report.Errors, msg)
		}
	}
	addWarning := func(msg string) {
		report.WarningCount++
		if len(report.Warnings) < maxReportedWarnings {
			report.Warnings = append(report.Warnings, msg)
		}
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		var data struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(scanner.Bytes(), &probe); err != nil {
			addError(fmt.Sprintf("Line %d: Invalid JSON - %v", lineNo, err))
			continue
		}
		report.TotalExamples++

		if _, ok := probe["messages"]; !ok {
			addError(fmt.Sprintf("Line %d: Missing 'messages' key", lineNo))
			continue
		}
		if err := json.Unmarshal(scanner.Bytes(), &data); err != nil {
			addError(fmt.Sprintf("Line %d: Malformed messages - %v", lineNo, err))
			continue
		}

		if len(data.Messages) < 2 {
			addError(fmt.Sprintf("Line %d: Need at least 2 messages (user + assistant)", lineNo))
		}

		hasAssistant := false
		for j, msg := range data.Messages {
			if msg.Role == "assistant" {
				hasAssistant = true
			}
			if msg.Content == "" {
				addWarning(fmt.Sprintf("Line %d, message %d: Empty content", lineNo, j))
			}
		}
		if !hasAssistant {
			addError(fmt.Sprintf("Line %d: Missing assistant message", lineNo))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	report.Valid = report.ErrorCount == 0
	return report, nil
}

// WaitForCompletion polls the job at the configured interval until it
// reaches a terminal state, printing the status at each step. There is
// no timeout: the loop runs until a terminal status or ctx cancellation.
func (d *Driver) WaitForCompletion(ctx context.Context, jobID string) (Job, error) {
	for {
		job, err := d.api.GetJob(ctx, jobID)
		if err != nil {
			return Job{}, err
		}

		fmt.Printf("[%s] Status: %s\n", time.Now().Format("15:04:05"), job.Status)

		if Terminal(job.Status) {
			return job, nil
		}

		select {
		case <-ctx.Done():
			return job, ctx.Err()
		case <-time.After(d.config.PollInterval):
		}
	}
}

// RunWorkflow executes the full lifecycle and returns the terminal job.
// On success the fine-tuned model id is persisted as a single line.
func (d *Driver) RunWorkflow(ctx context.Context) (Job, error) {
	trainReport, err := ValidateTrainingFile(d.config.TrainingFile)
	if err != nil {
		return Job{}, err
	}
	if !trainReport.Valid {
		for _, e := range trainReport.Errors {
			color.Red("  %s", e)
		}
		return Job{}, fmt.Errorf("training file validation failed: %d errors", trainReport.ErrorCount)
	}
	color.Green("Validated %s (%d examples)", d.config.TrainingFile, trainReport.TotalExamples)

	trainingFile, err := d.api.UploadFile(ctx, d.config.TrainingFile, "fine-tune")
	if err != nil {
		return Job{}, err
	}
	color.Green("Uploaded training file: %s (%d bytes)", trainingFile.ID, trainingFile.Bytes)

	validationFileID := ""
	if d.config.ValidationFile != "" {
		if _, statErr := os.Stat(d.config.ValidationFile); statErr == nil {
			valReport, err := ValidateTrainingFile(d.config.ValidationFile)
			if err != nil {
				return Job{}, err
			}
			if valReport.Valid {
				validationFile, err := d.api.UploadFile(ctx, d.config.ValidationFile, "fine-tune")
				if err != nil {
					return Job{}, err
				}
				validationFileID = validationFile.ID
				color.Green("Uploaded validation file: %s", validationFile.ID)
			} else {
				color.Yellow("Skipping invalid validation file (%d errors)", valReport.ErrorCount)
			}
		}
	}

	params := JobParams{
		TrainingFile:   trainingFile.ID,
		Model:          d.config.BaseModel,
		Suffix:         d.config.Suffix,
		ValidationFile: validationFileID,
	}
	if d.config.Epochs > 0 {
		params.Hyperparameters = &Hyperparameters{NEpochs: d.config.Epochs}
	}

	job, err := d.api.CreateJob(ctx, params)
	if err != nil {
		return Job{}, err
	}
	color.Green("Job created: %s (model %s, status %s)", job.ID, job.Model, job.Status)

	final, err := d.WaitForCompletion(ctx, job.ID)
	if err != nil {
		return final, err
	}

	switch final.Status {
	case StatusSucceeded:
		color.Green("Fine-tuning completed: %s (%d trained tokens)", final.FineTunedModel, final.TrainedTokens)
		if err := os.WriteFile(d.config.ModelOutputPath, []byte(final.FineTunedModel+"\n"), 0o644); err != nil {
			return final, fmt.Errorf("saving model id: %w", err)
		}
	case StatusFailed:
		msg := "unknown error"
		if final.Error != nil {
			msg = final.Error.Message
		}
		color.Red("Fine-tuning failed: %s", msg)
	case StatusCancelled:
		color.Yellow("Fine-tuning was cancelled")
	}

	return final, nil
}
