package weex

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"weex/internal/circuitbreaker"
	httpclient "weex/internal/http"
	"weex/internal/ratelimit"
	"weex/pkg/auth"
	"weex/pkg/core"
	"weex/pkg/precision"
)

// Client talks to the WEEX contract API. It is safe for concurrent use.
type Client struct {
	config     *core.Config
	protocol   *Protocol
	signer     *auth.Signer
	normalizer *precision.Normalizer
	httpClient *httpclient.Client
	limiter    *ratelimit.Limiter
	breaker    *circuitbreaker.Breaker
	logger     zerolog.Logger
	now        func() time.Time
}

// Options holds the optional dependencies of a Client.
type Options struct {
	Logger     zerolog.Logger
	Clock      func() time.Time
	Normalizer *precision.Normalizer
}

// Option configures a Client.
type Option func(*Options)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithClock replaces time.Now as the source of request timestamps and
// generated client order ids.
func WithClock(now func() time.Time) Option {
	return func(o *Options) {
		o.Clock = now
	}
}

// WithNormalizer replaces the normalizer built over precision.DefaultTable.
func WithNormalizer(n *precision.Normalizer) Option {
	return func(o *Options) {
		o.Normalizer = n
	}
}

// New creates a Client from cfg. Credentials are optional; without complete
// credentials only unsigned calls such as GetTicker succeed.
func New(cfg *core.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		cfg = core.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &Options{
		Logger: zerolog.Nop(),
		Clock:  time.Now,
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.Normalizer == nil {
		options.Normalizer = precision.NewNormalizer(nil)
	}

	logger := options.Logger.With().Str("exchange", ExchangeName).Logger()

	// Incomplete credentials surface on the first signed call, so unsigned
	// calls keep working.
	var signer *auth.Signer
	if cfg.RequireCredentials() == nil {
		s, err := auth.NewSigner(cfg.Credentials)
		if err != nil {
			return nil, err
		}
		signer = s
	}

	httpClient, err := httpclient.NewClient(httpclient.ConfigFrom(cfg), httpclient.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("create http client: %w", err)
	}

	global := ratelimit.Limit{Requests: cfg.RateLimitRequests, Period: cfg.RateLimitPeriod}
	limiter, err := ratelimit.New(global,
		ratelimit.WithGroupLimit(BucketTrade, tradeLimit(global)),
	)
	if err != nil {
		return nil, fmt.Errorf("create rate limiter: %w", err)
	}

	breakerCfg := circuitbreaker.ConfigFrom(cfg)
	if !cfg.CircuitBreakerEnabled {
		breakerCfg.FailThreshold = math.MaxInt
	}

	return &Client{
		config:     cfg,
		protocol:   NewProtocol(),
		signer:     signer,
		normalizer: options.Normalizer,
		httpClient: httpClient,
		limiter:    limiter,
		breaker:    circuitbreaker.New(breakerCfg, circuitbreaker.WithClock(options.Clock)),
		logger:     logger,
		now:        options.Clock,
	}, nil
}

// tradeLimit halves the global budget for order and leverage changes.
func tradeLimit(global ratelimit.Limit) ratelimit.Limit {
	n := (global.Requests + 1) / 2
	return ratelimit.Limit{Requests: n, Period: global.Period}
}

// Close releases the underlying transport.
func (c *Client) Close() error {
	return c.httpClient.Close()
}

// Normalizer returns the normalizer used for order placement.
func (c *Client) Normalizer() *precision.Normalizer {
	return c.normalizer
}

// BreakerState reports the state of the circuit breaker.
func (c *Client) BreakerState() circuitbreaker.State {
	return c.breaker.State()
}

func (c *Client) execute(ctx context.Context, op core.Operation, params core.Params) ([]byte, error) {
	req, err := c.protocol.BuildRequest(op, params)
	if err != nil {
		return nil, err
	}
	return c.doRequest(ctx, op, req)
}

// doRequest serializes the body once, signs it with a fresh timestamp and
// sends the same bytes. The request is signed whenever credentials exist and
// refused without them when it requires auth.
func (c *Client) doRequest(ctx context.Context, op core.Operation, req *core.Request) ([]byte, error) {
	if req.RequireAuth && c.signer == nil {
		return nil, c.config.RequireCredentials()
	}

	body := ""
	if req.Body != nil {
		data, err := core.JSON.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode %s body: %w", op, err)
		}
		body = string(data)
	}
	requestPath := req.RequestPath()

	if err := c.limiter.Wait(ctx, req.Bucket); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	if err := c.breaker.Allow(); err != nil {
		return nil, err
	}

	var headers map[string]string
	if c.signer != nil {
		signed, err := c.signer.Sign(req.Method, requestPath, body, auth.Timestamp(c.now()))
		if err != nil {
			return nil, err
		}
		headers = signed.Headers
	}

	resp, err := c.httpClient.Do(ctx, req.Method, requestPath, body, headers)
	if err == nil && resp.IsError() {
		err = c.protocol.ParseError(resp.StatusCode, resp.Body)
	}
	c.breaker.Record(err)
	if err != nil {
		c.logger.Debug().Err(err).Str("op", op.String()).Msg("request failed")
		return nil, err
	}
	return resp.Body, nil
}

// call executes op and decodes the JSON response into a generic value whose
// numbers are json.Number.
func (c *Client) call(ctx context.Context, op core.Operation, params core.Params) (any, error) {
	data, err := c.execute(ctx, op, params)
	if err != nil {
		return nil, err
	}
	return decode(op, data)
}

func decode(op core.Operation, data []byte) (any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var out any
	if err := core.JSON.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", op, err)
	}
	return out, nil
}

// isSkip reports whether err means the call was never attempted.
func isSkip(err error) bool {
	return errors.Is(err, core.ErrCircuitBreakerOpen)
}
