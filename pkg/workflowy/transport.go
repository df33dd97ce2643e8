package workflowy

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Response is a completed HTTP exchange.
type Response struct {
	StatusCode int
	Reason     string
	Body       string
}

// Successful reports whether the status code is in the 2xx range.
func (r *Response) Successful() bool {
	return r.StatusCode >= 200 && r.StatusCode <= 299
}

// Transport issues authenticated requests against the API. Paths are
// relative to the API root, e.g. "nodes/abc/complete". A non-nil error means
// no response was obtained.
type Transport interface {
	Send(ctx context.Context, method, path string, body []byte) (*Response, error)
}

// HTTPTransport is the net/http implementation of Transport.
type HTTPTransport struct {
	baseURL   string
	apiKey    string
	userAgent string
	client    *http.Client
	logger    hclog.Logger
}

var _ Transport = (*HTTPTransport)(nil)

// NewHTTPTransport creates a transport from cfg. Unset fields take their
// defaults.
func NewHTTPTransport(cfg *Config) (*HTTPTransport, error) {
	c := *cfg
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &HTTPTransport{
		baseURL:   strings.TrimRight(c.BaseURL, "/") + "/",
		apiKey:    c.APIKey,
		userAgent: c.UserAgent,
		client:    c.NewHTTPClient(),
		logger:    c.Logger.Named("transport"),
	}, nil
}

// Send executes a single request. There are no retries.
func (t *HTTPTransport) Send(ctx context.Context, method, path string, body []byte) (*Response, error) {
	endpoint := t.baseURL + strings.TrimLeft(path, "/")

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+t.apiKey)
	req.Header.Set("User-Agent", t.userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		t.logger.Debug("request failed",
			"method", method,
			"path", path,
			"error", err,
		)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	t.logger.Debug("request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	return &Response{
		StatusCode: resp.StatusCode,
		Reason:     reasonPhrase(resp),
		Body:       string(respBody),
	}, nil
}

// reasonPhrase strips the numeric code from resp.Status ("404 Not Found").
func reasonPhrase(resp *http.Response) string {
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if reason == "" {
		reason = http.StatusText(resp.StatusCode)
	}
	return reason
}
