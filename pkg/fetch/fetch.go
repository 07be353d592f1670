package fetch

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
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/pgossip/pgossip/pkg/metrics"
)

const (
	defaultTimeout    = 10 * time.Second
	defaultMaxRetries = 4
	defaultUserAgent  = "pgossip/1.0 (+https://github.com/pgossip/pgossip)"
)

// StatusError is a non-2xx response from an upstream service.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.Code, e.URL)
}

type Config struct {
	Logger     *slog.Logger
	Timeout    time.Duration
	MaxRetries uint64
	UserAgent  string
}

func (cfg *Config) Validate() error {
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	return nil
}

// Client issues outbound HTTP requests with a bounded timeout and a small
// retry budget. Connection errors and 5xx/429 responses are retried with
// exponential backoff; other 4xx responses are returned immediately.
type Client struct {
	log        *slog.Logger
	http       *http.Client
	maxRetries uint64
	userAgent  string
}

func New(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		log:        cfg.Logger,
		http:       &http.Client{Timeout: cfg.Timeout},
		maxRetries: cfg.MaxRetries,
		userAgent:  cfg.UserAgent,
	}, nil
}

// Get fetches rawURL with the given query parameters appended.
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values) ([]byte, error) {
	target := rawURL
	if len(params) > 0 {
		sep := "?"
		if strings.Contains(rawURL, "?") {
			sep = "&"
		}
		target = rawURL + sep + params.Encode()
	}
	return c.do(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	})
}

// PostForm submits form values as an application/x-www-form-urlencoded body.
func (c *Client) PostForm(ctx context.Context, rawURL string, form url.Values) ([]byte, error) {
	encoded := form.Encode()
	return c.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(encoded))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	})
}

// PostJSON submits payload as a JSON body.
func (c *Client) PostJSON(ctx context.Context, rawURL string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	return c.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
		return req, nil
	})
}

func (c *Client) do(ctx context.Context, build func() (*http.Request, error)) ([]byte, error) {
	op := func() ([]byte, error) {
		req, err := build()
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json, text/html;q=0.9, */*;q=0.8")

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(ctx.Err())
			}
			return nil, err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
			return nil, &StatusError{Code: resp.StatusCode, URL: req.URL.String()}
		case resp.StatusCode >= 400:
			return nil, backoff.Permanent(&StatusError{Code: resp.StatusCode, URL: req.URL.String()})
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}
		return body, nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	return backoff.RetryNotifyWithData(op, policy, func(err error, next time.Duration) {
		metrics.HTTPRetries.Inc()
		c.log.Debug("fetch: retrying request", "error", err, "next_attempt_in", next)
	})
}
