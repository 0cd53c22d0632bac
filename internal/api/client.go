// Package api wraps the marketplace REST endpoints. It owns the bearer
// header, outbound request IDs, instrumentation, and the one place where a
// server-confirmed 401 is allowed to remove the stored credential.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/abenov/coursehub/internal/domain"
	"github.com/abenov/coursehub/internal/metrics"
	"github.com/abenov/coursehub/internal/requestid"
)

// tokenSource is the subset of token.Store the client needs.
type tokenSource interface {
	Get() (string, error)
	Clear() error
}

type Client struct {
	base   string
	http   *http.Client
	tokens tokenSource
	logger *slog.Logger
}

func NewClient(base string, timeout time.Duration, tokens tokenSource, logger *slog.Logger) *Client {
	return &Client{
		base:   strings.TrimRight(base, "/"),
		http:   &http.Client{Timeout: timeout},
		tokens: tokens,
		logger: logger.With("component", "api_client"),
	}
}

// APIError is a domain error the server reported with a response body.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.Status, e.Message)
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Do performs one JSON request against the API. A stored token, when
// present, is attached as a bearer header. A 401 response clears the token
// store unconditionally, whatever the endpoint. This is the only removal path
// besides an explicit logout.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	id := requestid.FromContext(ctx)
	if id == "" {
		id = requestid.New()
		ctx = requestid.WithRequestID(ctx, id)
	}

	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", id)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok, err := c.tokens.Get(); err == nil && tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(path, "error", start)
		c.logger.WarnContext(ctx, "api request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%w: %s %s", domain.ErrNoResponse, method, path)
	}
	defer func() { _ = resp.Body.Close() }()

	c.observe(path, strconv.Itoa(resp.StatusCode), start)

	if resp.StatusCode == http.StatusUnauthorized {
		// Server-confirmed invalidation. Transient failures never remove
		// the token; a 401 always does.
		if err := c.tokens.Clear(); err != nil {
			c.logger.ErrorContext(ctx, "clear token after 401", "error", err)
		}
		metrics.ForcedLogoutsTotal.Inc()
		return domain.ErrUnauthorized
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var eb errorBody
		_ = json.Unmarshal(raw, &eb)
		msg := eb.Message
		if msg == "" {
			msg = eb.Error
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) observe(endpoint, status string, start time.Time) {
	d := time.Since(start).Seconds()
	metrics.APIRequestDuration.WithLabelValues(endpoint, status).Observe(d)
	metrics.APIRequestsTotal.WithLabelValues(endpoint, status).Inc()
}

// Ping checks that the API base is reachable. Used by the readiness probe.
func (c *Client) Ping(ctx context.Context) error {
	err := c.Do(ctx, http.MethodGet, "/health", nil, nil, nil)
	if err != nil && !errors.Is(err, domain.ErrUnauthorized) {
		var apiErr *APIError
		// Any HTTP response means the server is up.
		if !errors.As(err, &apiErr) {
			return err
		}
	}
	return nil
}
