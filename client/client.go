// Package client is a Go consumer of the taskboard HTTP API. It mirrors the
// server's validation rules and keeps a cached copy of the task list that is
// invalidated after every confirmed mutation.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"

	"taskboard/domain"
)

const responseBodyMaxSize = 10 << 20

// Client wraps http.Client with typed calls for the task API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New creates a Client targeting the given API origin, e.g. "http://localhost:8080".
func New(baseURL string) *Client {
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: &http.Client{}}
}

// APIError is a failed API call: a non-2xx status and the server-supplied
// message, or a generic fallback when the error body was unusable.
type APIError struct {
	StatusCode int
	Message    string
	Field      string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// NotFound reports whether the call failed because the task does not exist.
func (e *APIError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// ListTasks fetches every task on the board.
func (c *Client) ListTasks(ctx context.Context) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks", nil, &tasks, http.StatusOK, "failed to fetch tasks"); err != nil {
		return nil, err
	}
	for _, t := range tasks {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("malformed task in server response: %w", err)
		}
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

// GetTask fetches a single task by id.
func (c *Client) GetTask(ctx context.Context, id int) (domain.Task, error) {
	var task domain.Task
	if err := c.do(ctx, http.MethodGet, taskPath(id), nil, &task, http.StatusOK, "failed to fetch task"); err != nil {
		return domain.Task{}, err
	}
	if err := task.Validate(); err != nil {
		return domain.Task{}, fmt.Errorf("malformed task in server response: %w", err)
	}
	return task, nil
}

// CreateTask validates the input locally, then creates the task and returns
// the persisted entity.
func (c *Client) CreateTask(ctx context.Context, in domain.CreateTaskInput) (domain.Task, error) {
	if verr := in.Validate(); verr != nil {
		return domain.Task{}, verr
	}
	var task domain.Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks", in, &task, http.StatusCreated, "failed to create task"); err != nil {
		return domain.Task{}, err
	}
	if err := task.Validate(); err != nil {
		return domain.Task{}, fmt.Errorf("malformed task in server response: %w", err)
	}
	return task, nil
}

// UpdateTask validates the partial input locally, then applies it and returns
// the updated entity.
func (c *Client) UpdateTask(ctx context.Context, id int, in domain.UpdateTaskInput) (domain.Task, error) {
	if verr := in.Validate(); verr != nil {
		return domain.Task{}, verr
	}
	var task domain.Task
	if err := c.do(ctx, http.MethodPut, taskPath(id), in, &task, http.StatusOK, "failed to update task"); err != nil {
		return domain.Task{}, err
	}
	if err := task.Validate(); err != nil {
		return domain.Task{}, fmt.Errorf("malformed task in server response: %w", err)
	}
	return task, nil
}

// DeleteTask removes the task permanently.
func (c *Client) DeleteTask(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, taskPath(id), nil, nil, http.StatusNoContent, "failed to delete task")
}

// Health checks the service health endpoint.
func (c *Client) Health(ctx context.Context) error {
	var status struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/health", nil, &status, http.StatusOK, "health check failed"); err != nil {
		return err
	}
	if status.Status != "ok" {
		return fmt.Errorf("unexpected health status %q", status.Status)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, want int, fallback string) error {
	var reader io.Reader
	if body != nil {
		data, err := sonic.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", fallback, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyMaxSize))
	if err != nil {
		return fmt.Errorf("%s: %w", fallback, err)
	}

	if resp.StatusCode != want {
		return apiErrorFromResponse(resp.StatusCode, data, fallback)
	}
	if out == nil {
		return nil
	}
	if err := sonic.Unmarshal(data, out); err != nil {
		return fmt.Errorf("malformed server response: %w", err)
	}
	return nil
}

// apiErrorFromResponse prefers the server's error message; a missing or
// unparseable body falls back to a generic message.
func apiErrorFromResponse(status int, data []byte, fallback string) *APIError {
	apiErr := &APIError{StatusCode: status, Message: fallback}
	var body struct {
		Message string `json:"message"`
		Field   string `json:"field"`
	}
	if err := sonic.Unmarshal(data, &body); err == nil && body.Message != "" {
		apiErr.Message = body.Message
		apiErr.Field = body.Field
	}
	return apiErr
}

func taskPath(id int) string {
	return "/api/tasks/" + strconv.Itoa(id)
}
