// Package backend is the HTTP client for the meeting-recording service, plus
// an in-process fake of that service for tests and local development.
//
// The service exposes four endpoints:
//
//	GET  /status       -> {is_recording, is_processing, message, last_transcript}
//	POST /start        -> 2xx, or {detail} on rejection
//	POST /stop         -> 2xx, or {detail} on rejection
//	POST /upload_last  -> {link?, message?}
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// Endpoint paths.
const (
	PathStatus     = "/status"
	PathStart      = "/start"
	PathStop       = "/stop"
	PathUploadLast = "/upload_last"
)

// RequestIDHeader carries a per-request correlation ID.
const RequestIDHeader = "X-Request-ID"

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Code   int
	Detail string // from a {"detail": ...} body, if any
	Body   string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("server returned status %d: %s", e.Code, e.Detail)
	}
	return fmt.Sprintf("server returned status %d: %s", e.Code, e.Body)
}

// DetailOf returns the backend-provided detail carried by err, if any.
func DetailOf(err error) (string, bool) {
	var se *StatusError
	if errors.As(err, &se) && se.Detail != "" {
		return se.Detail, true
	}
	return "", false
}

// Client talks to the recording service over HTTP. It applies no timeout of
// its own; callers bound requests through the context they pass.
type Client struct {
	baseURL    string
	httpClient *http.Client
	authToken  string
	userAgent  string
	requestID  func() string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAuthToken sets a bearer token sent with every request.
func WithAuthToken(token string) ClientOption {
	return func(c *Client) {
		c.authToken = token
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a Client for the service at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{},
		userAgent:  "recpanel",
		requestID:  uuid.NewString,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseURL returns the base URL of the service.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetStatus fetches the current status. The returned value reflects exactly
// the fields present in the response body.
func (c *Client) GetStatus(ctx context.Context) (*RemoteStatus, error) {
	body, err := c.do(ctx, http.MethodGet, PathStatus)
	if err != nil {
		return nil, err
	}

	var status RemoteStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("failed to decode status: %w", err)
	}

	return &status, nil
}

// Start asks the service to begin recording.
func (c *Client) Start(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, PathStart)
	return err
}

// Stop asks the service to stop recording and process the result.
func (c *Client) Stop(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, PathStop)
	return err
}

// UploadLast asks the service to re-export the last report.
func (c *Client) UploadLast(ctx context.Context) (*UploadResult, error) {
	body, err := c.do(ctx, http.MethodPost, PathUploadLast)
	if err != nil {
		return nil, err
	}

	var result UploadResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode upload result: %w", err)
	}

	return &result, nil
}

// do issues a request with an empty body and returns the response body of a
// 2xx answer.
func (c *Client) do(ctx context.Context, method, path string) ([]byte, error) {
	var reqBody io.Reader
	if method == http.MethodPost {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.addHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			Code:   resp.StatusCode,
			Detail: parseDetail(body),
			Body:   strings.TrimSpace(string(body)),
		}
	}

	return body, nil
}

func (c *Client) addHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(RequestIDHeader, c.requestID())
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
}

// parseDetail extracts "detail" from an error body. Non-string details (for
// example validation error lists) are returned as compact JSON.
func parseDetail(body []byte) string {
	var eb struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(eb.Detail, &s); err == nil {
		return s
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, eb.Detail); err != nil {
		return ""
	}
	if buf.String() == "null" {
		return ""
	}
	return buf.String()
}
