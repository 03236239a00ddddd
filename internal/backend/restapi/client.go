// Package restapi implements the service.Service interface over the to-do REST API.
package restapi

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
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"todo/internal/config"
	"todo/internal/service"
)

// DefaultTimeout is the timeout for API calls when none is configured.
const DefaultTimeout = config.DefaultTimeout

// Client implements service.Service using the REST API.
type Client struct {
	base    string
	http    *http.Client
	timeout time.Duration
	logger  *zap.Logger
}

// New creates a new REST client from config.
func New(cfg *config.Config, logger *zap.Logger) (*Client, error) {
	return NewWithHTTPClient(cfg.APIBase, cfg.Timeout, http.DefaultClient, logger)
}

// NewWithHTTPClient creates a client with a custom base URL and HTTP client (for testing).
func NewWithHTTPClient(base string, timeout time.Duration, httpClient *http.Client, logger *zap.Logger) (*Client, error) {
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api base url: %q", base)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		base:    strings.TrimRight(base, "/"),
		http:    httpClient,
		timeout: timeout,
		logger:  logger,
	}, nil
}

// Login exchanges credentials at the token endpoint (form-encoded).
func (c *Client) Login(ctx context.Context, username, password string) (service.Tokens, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/token/"), strings.NewReader(form.Encode()))
	if err != nil {
		return service.Tokens{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var tokens service.Tokens
	if err := c.do(c.http, req, &tokens); err != nil {
		var httpErr *service.HTTPError
		if errors.As(err, &httpErr) {
			// The token endpoint's body is not shown to the user
			return service.Tokens{}, service.ErrInvalidCredentials
		}
		return service.Tokens{}, err
	}
	if tokens.Access == "" {
		return service.Tokens{}, fmt.Errorf("token response missing access credential")
	}
	return tokens, nil
}

// Register creates an account; the backend answers with usable tokens.
func (c *Client) Register(ctx context.Context, reg service.Registration) (service.Tokens, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.newJSONRequest(ctx, http.MethodPost, "/register/", reg)
	if err != nil {
		return service.Tokens{}, err
	}

	var resp struct {
		service.Tokens
		User json.RawMessage `json:"user"`
	}
	if err := c.do(c.http, req, &resp); err != nil {
		return service.Tokens{}, err
	}
	if resp.Access == "" {
		return service.Tokens{}, fmt.Errorf("register response missing access credential")
	}
	return resp.Tokens, nil
}

// ListTasks fetches one page of tasks.
func (c *Client) ListTasks(ctx context.Context, access string, q service.ListQuery) (service.TaskPage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	page := q.Page
	if page < 1 {
		page = 1
	}

	params := url.Values{}
	if v, ok := q.Filter.CompletedParam(); ok {
		params.Set("is_completed", v)
	}
	params.Set("page", strconv.Itoa(page))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("/tasks/")+"?"+params.Encode(), nil)
	if err != nil {
		return service.TaskPage{}, err
	}

	var result service.TaskPage
	if err := c.do(c.authed(ctx, access), req, &result); err != nil {
		return service.TaskPage{}, err
	}
	return result, nil
}

// CreateTask creates a task.
func (c *Client) CreateTask(ctx context.Context, access string, in service.NewTask) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.newJSONRequest(ctx, http.MethodPost, "/tasks/", in)
	if err != nil {
		return service.Task{}, err
	}

	var task service.Task
	if err := c.do(c.authed(ctx, access), req, &task); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

// UpdateTask sends a partial update.
func (c *Client) UpdateTask(ctx context.Context, access string, id int64, patch service.TaskPatch) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.newJSONRequest(ctx, http.MethodPatch, taskPath(id), patch)
	if err != nil {
		return service.Task{}, err
	}

	var task service.Task
	if err := c.do(c.authed(ctx, access), req, &task); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

// DeleteTask deletes a task. The backend answers 204 No Content.
func (c *Client) DeleteTask(ctx context.Context, access string, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.url(taskPath(id)), nil)
	if err != nil {
		return err
	}
	return c.do(c.authed(ctx, access), req, nil)
}

func (c *Client) url(path string) string {
	return c.base + path
}

func taskPath(id int64) string {
	return "/tasks/" + strconv.FormatInt(id, 10) + "/"
}

// authed returns an HTTP client that sends the access credential as a bearer token.
func (c *Client) authed(ctx context.Context, access string) *http.Client {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: access, TokenType: "Bearer"})
	return oauth2.NewClient(ctx, src)
}

func (c *Client) newJSONRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// do sends req and decodes a 2xx JSON body into out (if non-nil).
func (c *Client) do(hc *http.Client, req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")

	res, err := hc.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Error(err))
		return wrapError(err)
	}
	defer googleapi.CloseBody(res)

	c.logger.Debug("response",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.String("query", req.URL.RawQuery),
		zap.Int("status", res.StatusCode))

	if err := googleapi.CheckResponse(res); err != nil {
		return wrapError(err)
	}
	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil && err != io.EOF {
		return fmt.Errorf("invalid response body: %w", err)
	}
	return nil
}

// wrapError converts transport and response errors into service errors.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return &service.HTTPError{StatusCode: apiErr.Code, Body: apiErr.Body}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out")
	}

	return err
}
