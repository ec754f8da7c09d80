// Package client is a typed Go client for the promptkit HTTP API.
package client

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

	"github.com/mesh-intelligence/promptkit/pkg/types"
)

// DefaultTimeout bounds a single API call.
const DefaultTimeout = 30 * time.Second

// defaultTemplateMessage is the server's refusal body for DELETE
// /api/templates on a default template.
const defaultTemplateMessage = "Cannot delete default templates"

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

// Is matches the store sentinels so callers can use errors.Is the same way
// against a local store and a remote one.
func (e *APIError) Is(target error) bool {
	switch target {
	case types.ErrNotFound:
		return e.Status == http.StatusNotFound
	case types.ErrDefaultTemplate:
		return e.Status == http.StatusBadRequest && e.Message == defaultTemplateMessage
	case types.ErrValidation:
		return e.Status == http.StatusBadRequest && e.Message != defaultTemplateMessage
	}
	return false
}

// Client calls the promptkit API at a base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a client for baseURL, e.g. "http://localhost:3000".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State fetches all projects and templates.
func (c *Client) State(ctx context.Context) (*types.State, error) {
	var state types.State
	if err := c.do(ctx, http.MethodGet, "/api/state", nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// Templates fetches all templates.
func (c *Client) Templates(ctx context.Context) ([]types.Template, error) {
	var templates []types.Template
	if err := c.do(ctx, http.MethodGet, "/api/templates", nil, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// Export fetches a snapshot of user content.
func (c *Client) Export(ctx context.Context) (*types.Export, error) {
	var export types.Export
	if err := c.do(ctx, http.MethodGet, "/api/export", nil, &export); err != nil {
		return nil, err
	}
	return &export, nil
}

// Import sends an additive import.
func (c *Client) Import(ctx context.Context, data types.ImportData) (*types.ImportResult, error) {
	var result types.ImportResult
	if err := c.do(ctx, http.MethodPost, "/api/import", data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateProject creates an empty project.
func (c *Client) CreateProject(ctx context.Context, name string) (*types.Project, error) {
	var project types.Project
	req := types.CreateProjectRequest{Name: name}
	if err := c.do(ctx, http.MethodPost, "/api/projects", req, &project); err != nil {
		return nil, err
	}
	if project.Prompts == nil {
		project.Prompts = []types.Prompt{}
	}
	return &project, nil
}

// UpdateProject renames a project.
func (c *Client) UpdateProject(ctx context.Context, id, name string) error {
	return c.do(ctx, http.MethodPut, "/api/projects", types.UpdateProjectRequest{ID: id, Name: name}, nil)
}

// DeleteProject deletes a project and its prompts.
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/projects", types.DeleteProjectRequest{ID: id}, nil)
}

// CreatePrompt creates an empty prompt.
func (c *Client) CreatePrompt(ctx context.Context, projectID, name string) (*types.Prompt, error) {
	var prompt types.Prompt
	req := types.CreatePromptRequest{ProjectID: projectID, Name: name}
	if err := c.do(ctx, http.MethodPost, "/api/prompts", req, &prompt); err != nil {
		return nil, err
	}
	return &prompt, nil
}

// UpdatePrompt writes one prompt field.
func (c *Client) UpdatePrompt(ctx context.Context, id, projectID string, field types.PromptField, value string) error {
	req := types.UpdatePromptRequest{ID: id, ProjectID: projectID, Field: field, Value: value}
	return c.do(ctx, http.MethodPut, "/api/prompts", req, nil)
}

// DeletePrompt deletes a prompt.
func (c *Client) DeletePrompt(ctx context.Context, id, projectID string) error {
	return c.do(ctx, http.MethodDelete, "/api/prompts", types.DeletePromptRequest{ID: id, ProjectID: projectID}, nil)
}

// CreateTemplate creates a user template.
func (c *Client) CreateTemplate(ctx context.Context, name, content string, typ types.TemplateType) (*types.Template, error) {
	var tmpl types.Template
	req := types.CreateTemplateRequest{Name: name, Content: content, Type: typ}
	if err := c.do(ctx, http.MethodPost, "/api/templates", req, &tmpl); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// UpdateTemplate replaces a template's name and content.
func (c *Client) UpdateTemplate(ctx context.Context, id, name, content string) error {
	return c.do(ctx, http.MethodPut, "/api/templates", types.UpdateTemplateRequest{ID: id, Name: name, Content: content}, nil)
}

// DeleteTemplate deletes a user template. Deleting a default template
// returns an error matching types.ErrDefaultTemplate.
func (c *Client) DeleteTemplate(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/templates", types.DeleteTemplateRequest{ID: id}, nil)
}

// do sends body as JSON and decodes a 2xx response into out (if non-nil).
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func newAPIError(status int, body []byte) error {
	var envelope struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != "" {
		msg = envelope.Error
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{Status: status, Message: msg}
}

// IsAPIError reports whether err carries an *APIError and returns it.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
