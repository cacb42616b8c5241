// Package client provides a Go client for the task API: a typed HTTP
// client, a file-persisted auth session, and an in-memory task cache with
// confirm-then-apply updates and a time-boxed undo for deletes.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTimeout bounds each API request when no custom HTTP client is
// supplied.
const DefaultTimeout = 10 * time.Second

// APIError is an error response from the server, decoded from the standard
// error envelope.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
}

// User is the client's view of an account.
type User struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// Task is the wire representation of a task as returned by the server.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Tags        []string   `json:"tags"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TaskCreate holds the fields accepted by task creation. Zero-value fields
// fall back to server defaults.
type TaskCreate struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
}

// TaskUpdate holds a partial update. Only non-nil fields are sent, so
// absent fields keep their stored values.
type TaskUpdate struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *string    `json:"status,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Tags        *[]string  `json:"tags,omitempty"`
	Completed   *bool      `json:"completed,omitempty"`
}

// ListOptions mirrors the list endpoint's query parameters. Zero values
// are omitted and fall back to server defaults.
type ListOptions struct {
	Search   string
	Status   string
	Priority string
	SortBy   string
	Order    string
	Page     int
	Limit    int
}

// TaskList is one page of a task listing.
type TaskList struct {
	Count int
	Total int
	Page  int
	Pages int
	Tasks []Task
}

// AuthResult is the outcome of a successful registration or login.
type AuthResult struct {
	Token string
	User  User
}

// Client is a typed HTTP client for the task API. It is safe for
// concurrent use; the bearer token may be swapped at any time.
type Client struct {
	baseURL string
	httpc   *http.Client

	mu    sync.RWMutex
	token string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpc = hc }
}

// WithToken sets the initial bearer token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a Client for the API at baseURL (e.g. "http://localhost:8080").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the bearer token used on subsequent requests. An empty
// token means unauthenticated.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// wire envelopes

type authEnvelope struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	User    User   `json:"user"`
}

type meEnvelope struct {
	Success bool `json:"success"`
	User    User `json:"user"`
}

type listEnvelope struct {
	Success bool   `json:"success"`
	Count   int    `json:"count"`
	Total   int    `json:"total"`
	Page    int    `json:"page"`
	Pages   int    `json:"pages"`
	Tasks   []Task `json:"tasks"`
}

type taskEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Task    Task   `json:"task"`
}

type bulkDeleteEnvelope struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	DeletedCount int64  `json:"deletedCount"`
}

type errorEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// do issues a request and decodes the response into out. Non-2xx responses
// are returned as *APIError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, u, &buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: "request failed"}
		var envelope errorEnvelope
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Message != "" {
			apiErr.Message = envelope.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Register creates an account and returns its token and profile.
func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	payload := map[string]string{"name": name, "email": email, "password": password}
	var envelope authEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", nil, payload, &envelope); err != nil {
		return nil, err
	}
	return &AuthResult{Token: envelope.Token, User: envelope.User}, nil
}

// Login authenticates with an email and password.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	payload := map[string]string{"email": email, "password": password}
	var envelope authEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, payload, &envelope); err != nil {
		return nil, err
	}
	return &AuthResult{Token: envelope.Token, User: envelope.User}, nil
}

// Me returns the profile of the authenticated user.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var envelope meEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, nil, &envelope); err != nil {
		return nil, err
	}
	return &envelope.User, nil
}

// ListTasks fetches one page of the caller's tasks.
func (c *Client) ListTasks(ctx context.Context, opts ListOptions) (*TaskList, error) {
	query := url.Values{}
	if opts.Search != "" {
		query.Set("search", opts.Search)
	}
	if opts.Status != "" {
		query.Set("status", opts.Status)
	}
	if opts.Priority != "" {
		query.Set("priority", opts.Priority)
	}
	if opts.SortBy != "" {
		query.Set("sortBy", opts.SortBy)
	}
	if opts.Order != "" {
		query.Set("order", opts.Order)
	}
	if opts.Page > 0 {
		query.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}

	var envelope listEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/tasks", query, nil, &envelope); err != nil {
		return nil, err
	}
	return &TaskList{
		Count: envelope.Count,
		Total: envelope.Total,
		Page:  envelope.Page,
		Pages: envelope.Pages,
		Tasks: envelope.Tasks,
	}, nil
}

// GetTask fetches a single task by ID.
func (c *Client) GetTask(ctx context.Context, id uuid.UUID) (*Task, error) {
	var envelope taskEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/tasks/"+id.String(), nil, nil, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Task, nil
}

// CreateTask creates a task and returns the server's record.
func (c *Client) CreateTask(ctx context.Context, create TaskCreate) (*Task, error) {
	var envelope taskEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/tasks", nil, create, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Task, nil
}

// UpdateTask applies a partial update and returns the server's record.
func (c *Client) UpdateTask(ctx context.Context, id uuid.UUID, update TaskUpdate) (*Task, error) {
	var envelope taskEnvelope
	if err := c.do(ctx, http.MethodPut, "/api/tasks/"+id.String(), nil, update, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Task, nil
}

// DeleteTask removes a task permanently.
func (c *Client) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+id.String(), nil, nil, nil)
}

// DeleteTasks removes several tasks at once and reports how many were
// actually deleted.
func (c *Client) DeleteTasks(ctx context.Context, ids []uuid.UUID) (int64, error) {
	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = id.String()
	}
	payload := map[string][]string{"ids": raw}

	var envelope bulkDeleteEnvelope
	if err := c.do(ctx, http.MethodDelete, "/api/tasks", nil, payload, &envelope); err != nil {
		return 0, err
	}
	return envelope.DeletedCount, nil
}
