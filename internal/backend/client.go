// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/jeranaias/luna-tui/internal/model"
)

// API paths.
const (
	pathStatus    = "/api/model/status"
	pathConfigure = "/api/model/configure"
	pathChat      = "/api/chat"
)

// DefaultBaseURL is the address the server listens on out of the box.
const DefaultBaseURL = "http://localhost:8000"

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the backend client.
type ClientConfig struct {
	// BaseURL is the server base URL (default: http://localhost:8000)
	BaseURL string

	// Timeout bounds each request. Zero means no timeout: a slow model
	// simply keeps the caller waiting.
	Timeout time.Duration

	// UserAgent is sent with every request when non-empty.
	UserAgent string
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL: DefaultBaseURL,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the inference server.
// It performs no retries.
//
// The Client is safe for concurrent use.
type Client struct {
	config *ClientConfig
	http   *resty.Client
}

// NewClient creates a client. A nil config uses DefaultConfig.
func NewClient(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	rc := resty.New().
		SetBaseURL(config.BaseURL).
		SetHeader("Accept", "application/json")
	if config.Timeout > 0 {
		rc.SetTimeout(config.Timeout)
	}
	if config.UserAgent != "" {
		rc.SetHeader("User-Agent", config.UserAgent)
	}

	return &Client{config: config, http: rc}
}

// BaseURL returns the server base URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// =============================================================================
// OPERATIONS
// =============================================================================

// Status fetches the current model status.
func (c *Client) Status(ctx context.Context) (model.StatusReport, error) {
	var out StatusResponse
	if err := c.do(ctx, resty.MethodGet, pathStatus, nil, &out); err != nil {
		return model.StatusReport{}, err
	}
	return out.Report(), nil
}

// Configure points the server at a model file.
func (c *Client) Configure(ctx context.Context, req ConfigureRequest) (*ConfigureResponse, error) {
	var out ConfigureResponse
	if err := c.do(ctx, resty.MethodPost, pathConfigure, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Chat sends one chat request. body is normally produced by a RequestBuilder.
func (c *Client) Chat(ctx context.Context, body any) (*ChatResponse, error) {
	var out ChatResponse
	if err := c.do(ctx, resty.MethodPost, pathChat, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do executes one request and decodes a 2xx JSON body into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	start := time.Now()
	res, err := req.Execute(method, path)
	if err != nil {
		slog.Warn("backend request failed", "method", method, "path", path, "error", err)
		return classifyTransport(err)
	}

	slog.Debug("backend request",
		"method", method,
		"path", path,
		"status_code", res.StatusCode(),
		"elapsed", time.Since(start),
	)

	if !res.IsSuccess() {
		return &ClientError{
			Type:       ErrTypeRejected,
			Message:    "server rejected request",
			StatusCode: res.StatusCode(),
			Detail:     parseDetail(res.Body()),
		}
	}

	if err := json.Unmarshal(res.Body(), out); err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return nil
}

func classifyTransport(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &ClientError{Type: ErrTypeTimeout, Message: "request timed out", Cause: err}
	}
	return &ClientError{Type: ErrTypeConnection, Message: "failed to connect to server", Cause: err}
}
