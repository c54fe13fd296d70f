// Package httpclient is the HTTP transport shared by the starter registry,
// archive download, wizard and app service lookups.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"

	"github.com/tacogips/ionstart/internal/debug"
)

var log = debug.New("http")

// Config configures a Client.
type Config struct {
	// Timeout bounds non-streaming requests. Zero means no timeout.
	Timeout time.Duration
	// Proxy is an optional proxy URL.
	Proxy string
	// UserAgent is sent with every request.
	UserAgent string
	// MaxTries bounds attempts for retried GET requests. Defaults to 3.
	MaxTries uint
	// RetryInterval is the initial backoff interval. Defaults to 500ms.
	RetryInterval time.Duration
}

// Client performs JSON requests and streaming downloads.
type Client struct {
	cfg       Config
	api       *http.Client
	stream    *http.Client
	requestID string
}

// StatusError is returned for unexpected HTTP status codes.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// RequestOption customizes an outgoing request.
type RequestOption func(*http.Request)

// WithBearer sets an Authorization bearer token.
func WithBearer(token string) RequestOption {
	return func(r *http.Request) {
		if token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
	}
}

// New creates a Client. Every request made by the client carries the same
// X-Request-ID so that one CLI invocation can be traced server side.
func New(cfg Config) (*Client, error) {
	if cfg.MaxTries == 0 {
		cfg.MaxTries = 3
	}
	if cfg.RetryInterval == 0 {
		cfg.RetryInterval = 500 * time.Millisecond
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL %q: %w", cfg.Proxy, err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	return &Client{
		cfg:       cfg,
		api:       &http.Client{Timeout: cfg.Timeout, Transport: transport},
		stream:    &http.Client{Transport: transport},
		requestID: uuid.New().String(),
	}, nil
}

// RequestID returns the identifier sent with every request.
func (c *Client) RequestID() string {
	return c.requestID
}

func (c *Client) newRequest(ctx context.Context, method, rawURL string, body io.Reader, opts []RequestOption) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	req.Header.Set("X-Request-ID", c.requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}
	return req, nil
}

// GetJSON fetches rawURL and decodes a JSON body into v. Transport errors and
// 5xx responses are retried with exponential backoff; other non-200 statuses
// fail immediately with a *StatusError.
func (c *Client) GetJSON(ctx context.Context, rawURL string, v interface{}, opts ...RequestOption) error {
	attempt := 0
	op := func() ([]byte, error) {
		attempt++
		log.Printf("GET %s (attempt %d)", rawURL, attempt)

		req, err := c.newRequest(ctx, http.MethodGet, rawURL, nil, opts)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		resp, err := c.api.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		defer resp.Body.Close()

		statusErr := &StatusError{Method: http.MethodGet, URL: rawURL, StatusCode: resp.StatusCode}
		switch {
		case resp.StatusCode >= 500:
			return nil, statusErr
		case resp.StatusCode != http.StatusOK:
			return nil, backoff.Permanent(statusErr)
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		return data, nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.RetryInterval

	data, err := backoff.Retry(ctx, op, backoff.WithBackOff(b), backoff.WithMaxTries(c.cfg.MaxTries))
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("GET %s: invalid JSON response: %w", rawURL, err)
	}
	return nil
}

// SendJSON sends a single request with an optional JSON body and decodes a
// JSON response into out when out is not nil. Any non-2xx status is a
// *StatusError. No retries are attempted.
func (c *Client) SendJSON(ctx context.Context, method, rawURL string, in, out interface{}, opts ...RequestOption) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s %s: failed to encode request: %w", method, rawURL, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, rawURL, body, opts)
	if err != nil {
		return err
	}

	log.Printf("%s %s", method, rawURL)
	resp, err := c.api.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: method, URL: rawURL, StatusCode: resp.StatusCode}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: invalid JSON response: %w", method, rawURL, err)
	}
	return nil
}

// ProgressFunc receives the number of bytes read so far and the expected
// total, which is -1 when the server did not send a Content-Length.
type ProgressFunc func(loaded, total int64)

// Download streams the body of rawURL into w. It is not retried: a partial
// write cannot be replayed into a streaming sink.
func (c *Client) Download(ctx context.Context, rawURL string, w io.Writer, progress ProgressFunc, opts ...RequestOption) error {
	req, err := c.newRequest(ctx, http.MethodGet, rawURL, nil, opts)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "*/*")

	log.Printf("download %s", rawURL)
	resp, err := c.stream.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Method: http.MethodGet, URL: rawURL, StatusCode: resp.StatusCode}
	}

	var r io.Reader = resp.Body
	if progress != nil {
		r = &progressReader{r: resp.Body, total: resp.ContentLength, fn: progress}
	}

	n, err := io.Copy(w, r)
	if err != nil {
		return fmt.Errorf("download %s: %w", rawURL, err)
	}
	log.Printf("downloaded %d bytes from %s", n, rawURL)
	return nil
}

type progressReader struct {
	r      io.Reader
	loaded int64
	total  int64
	fn     ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.loaded += int64(n)
		p.fn(p.loaded, p.total)
	}
	return n, err
}
