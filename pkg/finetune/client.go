package finetune

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ClientConfig configures the fine-tuning API client.
type ClientConfig struct {
	BaseURL string // e.g. https://api.openai.com/v1
	APIKey  string
	Timeout time.Duration
}

// Client is a thin pass-through to the external files and fine-tuning
// endpoints. It performs no retries: a transport failure propagates to
// the caller and terminates the workflow.
type Client struct {
	config ClientConfig
	hc     *http.Client
}

func NewClient(config ClientConfig) (*Client, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("missing API key")
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://api.openai.com/v1"
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}

	return &Client{
		config: config,
		hc:     &http.Client{Timeout: config.Timeout},
	}, nil
}

// File is the external service's record of an uploaded file.
type File struct {
	ID        string `json:"id"`
	Filename  string `json:"filename"`
	Bytes     int64  `json:"bytes"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"created_at"`
}

// Job is the externally owned fine-tuning job. The driver only observes
// it; FineTunedModel is populated only on success.
type Job struct {
	ID             string    `json:"id"`
	Status         string    `json:"status"`
	Model          string    `json:"model"`
	FineTunedModel string    `json:"fine_tuned_model"`
	TrainedTokens  int64     `json:"trained_tokens"`
	CreatedAt      int64     `json:"created_at"`
	FinishedAt     int64     `json:"finished_at"`
	Error          *JobError `json:"error"`
}

type JobError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Terminal job statuses. Everything else means the job is still moving.
const (
	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// Terminal reports whether a status ends the polling loop.
func Terminal(status string) bool {
	switch status {
	case StatusSucceeded, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Hyperparameters mirrors the external job-creation knobs.
type Hyperparameters struct {
	NEpochs int `json:"n_epochs,omitempty"`
}

// JobParams is the job-creation request.
type JobParams struct {
	TrainingFile    string           `json:"training_file"`
	Model           string           `json:"model"`
	Suffix          string           `json:"suffix,omitempty"`
	ValidationFile  string           `json:"validation_file,omitempty"`
	Hyperparameters *Hyperparameters `json:"hyperparameters,omitempty"`
}

// UploadFile uploads a local file with the given purpose tag and returns
// the external file record.
func (c *Client) UploadFile(ctx context.Context, path, purpose string) (File, error) {
	f, err := os.Open(path)
	if err != nil {
		return File{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("purpose", purpose); err != nil {
		return File{}, fmt.Errorf("building upload: %w", err)
	}
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return File{}, fmt.Errorf("building upload: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return File{}, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := mw.Close(); err != nil {
		return File{}, fmt.Errorf("building upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/files", &body)
	if err != nil {
		return File{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var uploaded File
	if err := c.do(req, &uploaded); err != nil {
		return File{}, fmt.Errorf("uploading %s: %w", path, err)
	}
	return uploaded, nil
}

// CreateJob submits a fine-tuning job.
func (c *Client) CreateJob(ctx context.Context, params JobParams) (Job, error) {
	payload, err := json.Marshal(params)
	if err != nil {
		return Job{}, fmt.Errorf("marshaling job params: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/fine_tuning/jobs", bytes.NewReader(payload))
	if err != nil {
		return Job{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var job Job
	if err := c.do(req, &job); err != nil {
		return Job{}, fmt.Errorf("creating fine-tuning job: %w", err)
	}
	return job, nil
}

// GetJob retrieves the current state of a job.
func (c *Client) GetJob(ctx context.Context, jobID string) (Job, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/fine_tuning/jobs/"+url.PathEscape(jobID), nil)
	if err != nil {
		return Job{}, err
	}

	var job Job
	if err := c.do(req, &job); err != nil {
		return Job{}, fmt.Errorf("retrieving job %s: %w", jobID, err)
	}
	return job, nil
}

// CancelJob requests cancellation; the job still has to reach the
// cancelled status on the external side.
func (c *Client) CancelJob(ctx context.Context, jobID string) (Job, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/fine_tuning/jobs/"+url.PathEscape(jobID)+"/cancel", nil)
	if err != nil {
		return Job{}, err
	}

	var job Job
	if err := c.do(req, &job); err != nil {
		return Job{}, fmt.Errorf("cancelling job %s: %w", jobID, err)
	}
	return job, nil
}

// ListJobs returns the most recent fine-tuning jobs.
func (c *Client) ListJobs(ctx context.Context, limit int) ([]Job, error) {
	if limit <= 0 {
		limit = 10
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/fine_tuning/jobs?limit="+strconv.Itoa(limit), nil)
	if err != nil {
		return nil, err
	}

	var page struct {
		Data []Job `json:"data"`
	}
	if err := c.do(req, &page); err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	return page.Data, nil
}

// ListFiles returns uploaded files with the given purpose.
func (c *Client) ListFiles(ctx context.Context, purpose string) ([]File, error) {
	endpoint := c.config.BaseURL + "/files"
	if purpose != "" {
		endpoint += "?purpose=" + url.QueryEscape(purpose)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var page struct {
		Data []File `json:"data"`
	}
	if err := c.do(req, &page); err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}
	return page.Data, nil
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return fmt.Errorf("API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}
