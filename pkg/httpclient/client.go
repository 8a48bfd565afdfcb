package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"email-datagen/pkg/logger"
)

// Config controls per-attempt timeout and retry behavior.
type Config struct {
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration
}

// DefaultConfig mirrors the dashboard's request wrapper: 15s per attempt, two retries, 500ms apart.
func DefaultConfig() Config {
	return Config{
		Timeout:    15 * time.Second,
		Retries:    2,
		RetryDelay: 500 * time.Millisecond,
	}
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Client performs JSON requests with a timeout on every attempt. Transport failures and
// attempt timeouts are retried; any HTTP response, including error statuses, is returned as is.
type Client struct {
	http   *http.Client
	cfg    Config
	logger *logger.Logger
}

// New creates a Client. Zero values in cfg fall back to DefaultConfig.
func New(cfg Config, log *logger.Logger) *Client {
	def := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = def.RetryDelay
	}
	return &Client{http: &http.Client{}, cfg: cfg, logger: log}
}

// DoJSON sends in (if not nil) as a JSON body and returns the read response.
func (c *Client) DoJSON(ctx context.Context, method, url string, in interface{}) (*Response, error) {
	var payload []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		payload = b
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.cfg.RetryDelay):
			}
		}

		resp, err := c.attempt(ctx, method, url, payload)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Warn("Outbound request failed",
			logger.StringField("method", method),
			logger.StringField("url", url),
			logger.IntField("attempt", attempt+1),
			logger.ErrorField(err))
	}
	return nil, fmt.Errorf("request %s %s failed after %d attempts: %w", method, url, c.cfg.Retries+1, lastErr)
}

func (c *Client) attempt(ctx context.Context, method, url string, payload []byte) (*Response, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(attemptCtx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}
