// Package http is the resty-based transport used to reach the WEEX REST API.
// It sends request paths and bodies verbatim, so callers can sign exactly the
// bytes that go on the wire.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"resty.dev/v3"

	"weex/pkg/auth"
	"weex/pkg/core"
)

// Client wraps a resty client with logging and secret-safe debug output.
type Client struct {
	client *resty.Client
	logger zerolog.Logger
	mu     sync.RWMutex
	closed bool
}

// Config controls the transport.
type Config struct {
	BaseURL      string            `validate:"required,url"`
	Timeout      time.Duration     `validate:"min=1ms"`
	MaxRetries   int               `validate:"min=0"`
	RetryWaitMin time.Duration     `validate:"min=0"`
	RetryWaitMax time.Duration     `validate:"min=0"`
	Proxy        string            `validate:"omitempty,url"`
	Headers      map[string]string `validate:"omitempty"`
}

// ConfigFrom derives a transport Config from the client configuration. The
// locale header is added to every request.
func ConfigFrom(cfg *core.Config) *Config {
	headers := map[string]string{"Content-Type": "application/json"}
	if cfg.Locale != "" {
		headers["locale"] = cfg.Locale
	}
	return &Config{
		BaseURL:      cfg.BaseURL,
		Timeout:      cfg.Timeout,
		MaxRetries:   cfg.MaxRetries,
		RetryWaitMin: cfg.RetryWaitMin,
		RetryWaitMax: cfg.RetryWaitMax,
		Proxy:        cfg.Proxy,
		Headers:      headers,
	}
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for request and response tracing.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    map[string]string
}

// NewClient validates config and builds the underlying resty client. Retries
// apply to idempotent methods only, so an order POST is never sent twice.
func NewClient(config *Config, opts ...Option) (*Client, error) {
	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	c := &Client{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}

	client := resty.New()
	client.SetBaseURL(strings.TrimRight(config.BaseURL, "/"))
	client.SetTimeout(config.Timeout)
	client.SetRetryCount(config.MaxRetries)
	client.SetRetryWaitTime(config.RetryWaitMin)
	client.SetRetryMaxWaitTime(config.RetryWaitMax)
	if config.Proxy != "" {
		client.SetProxy(config.Proxy)
	}
	client.AddContentTypeEncoder("application/json", func(w io.Writer, v any) error {
		data, err := core.JSON.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	})
	client.AddContentTypeDecoder("application/json", func(r io.Reader, v any) error {
		data, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		return core.JSON.Unmarshal(data, v)
	})

	for k, v := range config.Headers {
		client.SetHeader(k, v)
	}

	client.AddRequestMiddleware(func(_ *resty.Client, req *resty.Request) error {
		ev := c.logger.Debug().
			Str("method", req.Method).
			Str("url", req.URL).
			Interface("headers", redactHeader(req.Header))
		if body, ok := req.Body.(string); ok && body != "" {
			ev = ev.Str("body", body)
		}
		if config.Proxy != "" {
			ev = ev.Str("proxy", proxyHost(config.Proxy))
		}
		ev.Msg("http request")
		return nil
	})

	client.AddResponseMiddleware(func(_ *resty.Client, resp *resty.Response) error {
		c.logger.Debug().
			Str("method", resp.Request.Method).
			Str("url", resp.Request.URL).
			Int("status", resp.StatusCode()).
			Int("size", len(resp.Bytes())).
			Bytes("body", resp.Bytes()).
			Msg("http response")
		return nil
	})

	c.client = client
	return c, nil
}

// Close releases idle connections. Further calls fail with core.ErrClientClosed.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.client.Close()
}

// Do sends method to requestPath with the given body and per-request headers.
// requestPath may carry an encoded query string; it is sent unchanged, and a
// non-empty body is written byte for byte.
func (c *Client) Do(ctx context.Context, method, requestPath, body string, headers map[string]string) (*Response, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, core.ErrClientClosed
	}

	r := c.client.R().SetContext(ctx).SetHeaders(headers)
	if body != "" {
		r.SetBody(body)
	}

	resp, err := r.Execute(strings.ToUpper(method), requestPath)
	if err != nil {
		c.logger.Error().Err(err).
			Str("method", method).
			Str("path", requestPath).
			Msg("http request failed")
		return nil, core.NewExchangeError("weex", networkErrorType(ctx, err), 0, err.Error())
	}

	out := &Response{
		StatusCode: resp.StatusCode(),
		Body:       resp.Bytes(),
		Headers:    make(map[string]string, len(resp.Header())),
	}
	for k, v := range resp.Header() {
		if len(v) > 0 {
			out.Headers[k] = v[0]
		}
	}
	return out, nil
}

// Get performs a GET on requestPath.
func (c *Client) Get(ctx context.Context, requestPath string, headers map[string]string) (*Response, error) {
	return c.Do(ctx, nethttp.MethodGet, requestPath, "", headers)
}

// Post performs a POST on requestPath with a pre-serialized body.
func (c *Client) Post(ctx context.Context, requestPath, body string, headers map[string]string) (*Response, error) {
	return c.Do(ctx, nethttp.MethodPost, requestPath, body, headers)
}

// IsSuccess returns true if the response status code indicates success (2xx).
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsError returns true if the response status code indicates an error (4xx or 5xx).
func (r *Response) IsError() bool {
	return r.StatusCode >= nethttp.StatusBadRequest
}

// Unmarshal parses the response body into v.
func (r *Response) Unmarshal(v any) error {
	return core.JSON.Unmarshal(r.Body, v)
}

func networkErrorType(ctx context.Context, err error) core.ErrorType {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return core.ErrorTypeTimeout
	}
	return core.ErrorTypeNetwork
}

func redactHeader(h nethttp.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k := range h {
		out[k] = h.Get(k)
	}
	auth.RedactHeaders(out)
	return out
}

// proxyHost drops any userinfo from a proxy URL before it is logged.
func proxyHost(proxy string) string {
	if i := strings.LastIndex(proxy, "@"); i >= 0 {
		return proxy[i+1:]
	}
	return proxy
}
