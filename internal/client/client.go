package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/tasktracker/internal/models"
)

// Token transports understood by the client. They match the server's
// --transport setting.
const (
	TransportHeader = "header"
	TransportCookie = "cookie"
)

const tokenCookieName = "token"

// Config holds common client configuration
type Config struct {
	ServerURL string
	Timeout   time.Duration
	Debug     bool

	// Transport selects how the session token is sent, header or cookie.
	Transport string

	// VerifyAttempts is how many times Verify is tried when the server
	// cannot be reached.
	VerifyAttempts uint
}

// DefaultConfig returns a default client configuration
func DefaultConfig() Config {
	return Config{
		ServerURL:      "http://localhost:8080",
		Timeout:        30 * time.Second,
		Debug:          false,
		Transport:      TransportHeader,
		VerifyAttempts: 3,
	}
}

// APIError is a non 2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// IsUnauthorized reports whether err is a 401 response.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Session is returned by Signup and Login.
type Session struct {
	Message string            `json:"message"`
	User    models.PublicUser `json:"user"`
	Token   string            `json:"token"`
}

// ProjectTasks is a project with its tasks.
type ProjectTasks struct {
	Project models.Project `json:"project"`
	Tasks   []models.Task  `json:"tasks"`
}

// Client calls the tasktracker HTTP API.
type Client struct {
	config  Config
	baseURL *url.URL
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// New creates a client for config.ServerURL.
func New(config Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(config.ServerURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid server url %q", config.ServerURL)
	}

	switch config.Transport {
	case "":
		config.Transport = TransportHeader
	case TransportHeader, TransportCookie:
	default:
		return nil, fmt.Errorf("unknown token transport %q", config.Transport)
	}

	if config.VerifyAttempts == 0 {
		config.VerifyAttempts = 1
	}

	return &Client{
		config:  config,
		baseURL: base,
		http:    &http.Client{Timeout: config.Timeout},
	}, nil
}

// Token returns the current session token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken sets the session token sent with later requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Signup registers a user and keeps the returned session token.
func (c *Client) Signup(ctx context.Context, username, password string) (*Session, error) {
	return c.startSession(ctx, "/auth/signup", username, password)
}

// Login authenticates and keeps the returned session token.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	return c.startSession(ctx, "/auth/login", username, password)
}

func (c *Client) startSession(ctx context.Context, path, username, password string) (*Session, error) {
	var session Session
	resp, err := c.do(ctx, http.MethodPost, path, map[string]string{
		"username": username,
		"password": password,
	}, &session)
	if err != nil {
		return nil, err
	}

	// In cookie mode the token only arrives as a cookie.
	if session.Token == "" {
		for _, cookie := range resp.Cookies() {
			if cookie.Name == tokenCookieName {
				session.Token = cookie.Value
			}
		}
	}
	if session.Token == "" {
		return nil, errors.New("server did not return a session token")
	}

	c.SetToken(session.Token)
	return &session, nil
}

// Verify asks the server whether the current token is valid and returns its user.
// Failures to reach the server are retried with exponential backoff; API
// errors are returned immediately.
func (c *Client) Verify(ctx context.Context) (*models.PublicUser, error) {
	var out struct {
		User models.PublicUser `json:"user"`
	}

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		_, err := c.do(ctx, http.MethodGet, "/auth/verify", nil, &out)
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return struct{}{}, backoff.Permanent(err)
		}
		if err != nil {
			log.Debug().Err(err).Msg("Verify request failed")
		}
		return struct{}{}, err
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(c.config.VerifyAttempts),
	)
	if err != nil {
		return nil, err
	}

	return &out.User, nil
}

// Logout tells the server to end the session and forgets the local token.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
	c.SetToken("")
	return err
}

// ListProjects returns all projects.
func (c *Client) ListProjects(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	if _, err := c.do(ctx, http.MethodGet, "/project", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// CreateProject creates a project.
func (c *Client) CreateProject(ctx context.Context, title, description string) (*models.Project, error) {
	var out struct {
		Project models.Project `json:"project"`
	}
	body := map[string]string{"title": title, "description": description}
	if _, err := c.do(ctx, http.MethodPost, "/project", body, &out); err != nil {
		return nil, err
	}
	return &out.Project, nil
}

// GetProject returns one project.
func (c *Client) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	if _, err := c.do(ctx, http.MethodGet, "/project/"+id.String(), nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// UpdateProject changes the title and/or description of a project.
// Nil fields are left unchanged.
func (c *Client) UpdateProject(ctx context.Context, id uuid.UUID, title, description *string) (*models.Project, error) {
	body := map[string]string{}
	if title != nil {
		body["title"] = *title
	}
	if description != nil {
		body["description"] = *description
	}

	var out struct {
		Project models.Project `json:"project"`
	}
	if _, err := c.do(ctx, http.MethodPut, "/project/"+id.String(), body, &out); err != nil {
		return nil, err
	}
	return &out.Project, nil
}

// DeleteProject deletes a project and its tasks.
func (c *Client) DeleteProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var out struct {
		Project models.Project `json:"project"`
	}
	if _, err := c.do(ctx, http.MethodDelete, "/project/"+id.String(), nil, &out); err != nil {
		return nil, err
	}
	return &out.Project, nil
}

// ListTasks returns a project and its tasks.
func (c *Client) ListTasks(ctx context.Context, projectID uuid.UUID) (*ProjectTasks, error) {
	var out ProjectTasks
	if _, err := c.do(ctx, http.MethodGet, "/task/"+projectID.String(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateTask adds a task to a project. An empty status lets the server default it.
func (c *Client) CreateTask(ctx context.Context, projectID uuid.UUID, title, description string, status models.TaskStatus) (*models.Task, error) {
	body := map[string]string{
		"projectId":   projectID.String(),
		"title":       title,
		"description": description,
	}
	if status != "" {
		body["status"] = string(status)
	}

	var out struct {
		Task models.Task `json:"task"`
	}
	if _, err := c.do(ctx, http.MethodPost, "/task", body, &out); err != nil {
		return nil, err
	}
	return &out.Task, nil
}

// UpdateTaskStatus sets the status of a task.
func (c *Client) UpdateTaskStatus(ctx context.Context, id uuid.UUID, status models.TaskStatus) (*models.Task, error) {
	var out struct {
		Task models.Task `json:"task"`
	}
	body := map[string]string{"status": string(status)}
	if _, err := c.do(ctx, http.MethodPut, "/task/"+id.String(), body, &out); err != nil {
		return nil, err
	}
	return &out.Task, nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var out struct {
		Task models.Task `json:"task"`
	}
	if _, err := c.do(ctx, http.MethodDelete, "/task/"+id.String(), nil, &out); err != nil {
		return nil, err
	}
	return &out.Task, nil
}

// do sends a JSON request and decodes a 2xx JSON response into out.
// Other responses are returned as *APIError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.attachToken(req)

	if c.config.Debug {
		log.Debug().Str("method", method).Str("path", path).Msg("API request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var msg struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&msg); err == nil && msg.Message != "" {
			apiErr.Message = msg.Message
		}
		return resp, apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp, fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return resp, nil
}

func (c *Client) attachToken(req *http.Request) {
	token := c.Token()
	if token == "" {
		return
	}

	switch c.config.Transport {
	case TransportCookie:
		req.AddCookie(&http.Cookie{Name: tokenCookieName, Value: token})
	default:
		req.Header.Set("Authorization", "Bearer "+token)
	}
}
