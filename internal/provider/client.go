package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type TaskStatus string

const (
	TaskQueued     TaskStatus = "QUEUED"
	TaskProcessing TaskStatus = "PROCESSING"
	TaskReady      TaskStatus = "READY"
	TaskError      TaskStatus = "ERROR"
)

// Classified provider failures. Retry policy lives at the call site: the
// pipeline and poller decide what to do with a retryable error, the client
// only labels it.
var (
	ErrProviderAuth        = errors.New("provider rejected credentials")
	ErrRateLimited         = errors.New("provider rate limited")
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrTaskRejected        = errors.New("provider rejected task")
	ErrTaskNotFound        = errors.New("provider task not found")
)

func IsRetryable(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrProviderUnavailable)
}

type TaskResult struct {
	Status      TaskStatus
	DownloadURL string
	FileName    string
	FileSize    int64
	ErrorDetail string
}

type Client interface {
	SubmitTask(ctx context.Context, itemURL string) (string, error)
	PollTask(ctx context.Context, taskID string) (TaskResult, error)
}

type client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) Client {
	return &client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type submitTaskRequest struct {
	URL string `json:"url"`
}

type submitTaskResponse struct {
	TaskID string `json:"task_id"`
}

type taskStatusResponse struct {
	Status      string `json:"status"`
	DownloadURL string `json:"download_url"`
	FileName    string `json:"file_name"`
	FileSize    int64  `json:"file_size"`
	Error       string `json:"error"`
}

func (c *client) SubmitTask(ctx context.Context, itemURL string) (string, error) {
	payload, err := json.Marshal(submitTaskRequest{URL: itemURL})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/task", bytes.NewBuffer(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", ErrProviderUnavailable, err)
	}

	if err := classifyStatus(resp.StatusCode, body); err != nil {
		return "", err
	}

	var result submitTaskResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))
	}
	if result.TaskID == "" {
		return "", fmt.Errorf("%w: task_id missing in response", ErrTaskRejected)
	}
	return result.TaskID, nil
}

func (c *client) PollTask(ctx context.Context, taskID string) (TaskResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/task/"+taskID, nil)
	if err != nil {
		return TaskResult{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return TaskResult{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return TaskResult{}, fmt.Errorf("%w: read body: %v", ErrProviderUnavailable, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return TaskResult{}, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	if err := classifyStatus(resp.StatusCode, body); err != nil {
		return TaskResult{}, err
	}

	var result taskStatusResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return TaskResult{}, fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))
	}

	return TaskResult{
		Status:      mapTaskStatus(result.Status),
		DownloadURL: result.DownloadURL,
		FileName:    result.FileName,
		FileSize:    result.FileSize,
		ErrorDetail: result.Error,
	}, nil
}

func classifyStatus(code int, body []byte) error {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrProviderAuth, code)
	case code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d", ErrRateLimited, code)
	case code >= 500:
		return fmt.Errorf("%w: status %d", ErrProviderUnavailable, code)
	case code >= 400:
		return fmt.Errorf("%w: status %d, body: %s", ErrTaskRejected, code, string(body))
	}
	return nil
}

// Unknown statuses count as still-processing; the poll timeout bounds how
// long that can go on.
func mapTaskStatus(s string) TaskStatus {
	switch strings.ToUpper(s) {
	case "QUEUED":
		return TaskQueued
	case "READY", "COMPLETED":
		return TaskReady
	case "ERROR", "FAILED":
		return TaskError
	default:
		return TaskProcessing
	}
}
