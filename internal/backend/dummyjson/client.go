// Package dummyjson implements the service.Service interface against a
// DummyJSON-style REST todo API.
package dummyjson

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"doit/internal/config"
	"doit/internal/service"
)

// listFields is the projection requested when listing tasks.
const listFields = "id,todo,completed,userId"

// Client implements service.Service over HTTP.
type Client struct {
	http    *http.Client
	baseURL string
}

var _ service.Service = (*Client)(nil)

// New creates a client authenticated with the token stored in the config dir.
// Requires token.json to exist.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	token, err := LoadToken(cfg.TokenPath())
	if err != nil {
		return nil, err
	}

	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
	httpClient.Timeout = cfg.Remote.Timeout

	return &Client{http: httpClient, baseURL: cfg.Remote.BaseURL}, nil
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{http: httpClient, baseURL: baseURL}
}

type listResponse struct {
	Todos []service.Task `json:"todos"`
	Total int            `json:"total"`
	Skip  int            `json:"skip"`
	Limit int            `json:"limit"`
}

// ListTasks returns up to limit tasks in API order.
func (c *Client) ListTasks(ctx context.Context, limit int) ([]service.Task, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("select", listFields)

	var resp listResponse
	if err := c.do(ctx, http.MethodGet, "/todos?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Todos == nil {
		return []service.Task{}, nil
	}
	return resp.Todos, nil
}

// GetTask returns a single task.
func (c *Client) GetTask(ctx context.Context, id int) (service.Task, error) {
	var t service.Task
	if err := c.do(ctx, http.MethodGet, taskPath(id), nil, &t); err != nil {
		return service.Task{}, err
	}
	return t, nil
}

// CreateTask creates a new task.
func (c *Client) CreateTask(ctx context.Context, nt service.NewTask) (service.Task, error) {
	var t service.Task
	if err := c.do(ctx, http.MethodPost, "/todos/add", nt, &t); err != nil {
		return service.Task{}, err
	}
	return t, nil
}

// UpdateTask applies a partial update.
func (c *Client) UpdateTask(ctx context.Context, id int, patch service.TaskPatch) (service.Task, error) {
	var t service.Task
	if err := c.do(ctx, http.MethodPut, taskPath(id), patch, &t); err != nil {
		return service.Task{}, err
	}
	return t, nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, taskPath(id), nil, nil)
}

func taskPath(id int) string {
	return "/todos/" + strconv.Itoa(id)
}

// do sends a JSON request and decodes a JSON response into out.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	res, err := c.http.Do(req)
	if err != nil {
		return wrapError(err)
	}
	defer res.Body.Close()

	if err := googleapi.CheckResponse(res); err != nil {
		return wrapError(err)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("malformed response from %s %s: %w", method, path, err)
	}
	return nil
}

// wrapError maps transport and HTTP failures onto service errors.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return &service.StatusError{Code: apiErr.Code, Message: errorMessage(apiErr)}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", err)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return fmt.Errorf("request timed out: %w", err)
	}
	return err
}

// errorMessage extracts the "message" field the todo API puts in error bodies.
func errorMessage(apiErr *googleapi.Error) string {
	if apiErr.Message != "" {
		return apiErr.Message
	}
	var body struct {
		Message string `json:"message"`
	}
	if json.Unmarshal([]byte(apiErr.Body), &body) == nil {
		return body.Message
	}
	return ""
}
