// Package client is a typed client for the tasks HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iammorganparry/clive/apps/tasks/internal/models"
)

// APIError is a non-2xx reply from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 90 * time.Second,
		},
	}
}

func (c *Client) ListTasks(ctx context.Context) ([]models.BoardTask, error) {
	var out []models.BoardTask
	if err := c.do(ctx, http.MethodGet, "/api/tasks", nil, &out); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return out, nil
}

func (c *Client) GetTask(ctx context.Context, id string) (*models.BoardTask, error) {
	var out models.BoardTask
	if err := c.do(ctx, http.MethodGet, "/api/tasks/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return &out, nil
}

func (c *Client) CreateTask(ctx context.Context, in models.TaskFormInput) (*models.Task, error) {
	var out models.Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks", in, &out); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return &out, nil
}

func (c *Client) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	var out models.Task
	if err := c.do(ctx, http.MethodPatch, "/api/tasks/"+url.PathEscape(id), patch, &out); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return &out, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// RequestSuggestions asks the server to generate subtasks for a stored
// task. It returns once the request is dispatched.
func (c *Client) RequestSuggestions(ctx context.Context, id string) (*models.DispatchResponse, error) {
	var out models.DispatchResponse
	if err := c.do(ctx, http.MethodPost, "/api/tasks/"+url.PathEscape(id)+"/suggestions", nil, &out); err != nil {
		return nil, fmt.Errorf("request suggestions: %w", err)
	}
	return &out, nil
}

// Suggest calls the stateless suggestion endpoint.
func (c *Client) Suggest(ctx context.Context, title, description string) ([]string, error) {
	var out models.SuggestResponse
	req := models.SuggestRequest{TaskTitle: title, TaskDescription: description}
	if err := c.do(ctx, http.MethodPost, "/api/suggestions", req, &out); err != nil {
		return nil, fmt.Errorf("suggest subtasks: %w", err)
	}
	return out.Subtasks, nil
}

func (c *Client) Board(ctx context.Context) (*models.BoardSnapshot, error) {
	var out models.BoardSnapshot
	if err := c.do(ctx, http.MethodGet, "/api/board", nil, &out); err != nil {
		return nil, fmt.Errorf("board snapshot: %w", err)
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
		var er models.ErrorResponse
		if json.Unmarshal(respBody, &er) == nil && er.Error != "" {
			apiErr.Message = er.Error
		}
		return apiErr
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
