// Package client is a Go SDK for the LMS instructor API.
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

	"go.uber.org/zap"

	"github.com/noah-isme/lms-instructor-api/internal/models"
)

const defaultTimeout = 30 * time.Second

// APIError is a non-2xx answer decoded from the response envelope.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return e.Message
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *APIError       `json:"error"`
}

// Client performs raw calls against the API. It holds no session state.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New builds a client for baseURL, e.g. "http://localhost:8080/api/v1".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResult, error) {
	var out models.AuthResult
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Signup creates an account and opens a session.
func (c *Client) Signup(ctx context.Context, email, password, name string) (*models.AuthResult, error) {
	var out models.AuthResult
	body := map[string]string{"email": email, "password": password, "name": name}
	if err := c.do(ctx, http.MethodPost, "/auth/signup", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout revokes the session behind token.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", token, nil, nil)
}

// Me returns the account and profile behind token.
func (c *Client) Me(ctx context.Context, token string) (*models.CurrentUser, error) {
	var out models.CurrentUser
	if err := c.do(ctx, http.MethodGet, "/auth/me", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ForgotPassword asks the server to mail a reset link.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/auth/password/forgot", "", map[string]string{"email": email}, nil)
}

// ResetPassword completes recovery with the mailed token.
func (c *Client) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	body := map[string]string{"token": resetToken, "new_password": newPassword}
	return c.do(ctx, http.MethodPost, "/auth/password/reset", "", body, nil)
}

// MyInstructorProfile returns the instructor profile of the caller.
func (c *Client) MyInstructorProfile(ctx context.Context, token string) (*models.InstructorProfile, error) {
	var out models.InstructorProfile
	if err := c.do(ctx, http.MethodGet, "/instructors/me", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Calendar returns the overview of one day. An empty date means today.
func (c *Client) Calendar(ctx context.Context, token, instructorID, date string) (*models.CalendarOverview, error) {
	path := "/instructors/" + url.PathEscape(instructorID) + "/calendar"
	if date != "" {
		path += "?date=" + url.QueryEscape(date)
	}
	var out models.CalendarOverview
	if err := c.do(ctx, http.MethodGet, path, token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Analytics returns session and rating aggregates of an instructor.
func (c *Client) Analytics(ctx context.Context, token, instructorID string) (*models.InstructorAnalytics, error) {
	var out models.InstructorAnalytics
	if err := c.do(ctx, http.MethodGet, "/instructors/"+url.PathEscape(instructorID)+"/analytics", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && err != io.EOF {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := env.Error
		if apiErr == nil {
			apiErr = &APIError{Message: http.StatusText(resp.StatusCode)}
		}
		apiErr.Status = resp.StatusCode
		c.logger.Debug("api call failed", zap.String("method", method), zap.String("path", path), zap.Int("status", resp.StatusCode), zap.String("code", apiErr.Code))
		return apiErr
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s %s data: %w", method, path, err)
	}
	return nil
}
