package core

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultBaseURL is the production endpoint of the WEEX contract API.
const DefaultBaseURL = "https://api-contract.weex.com"

// Credentials holds API authentication credentials for the exchange.
type Credentials struct {
	// APIKey is the public API key identifier.
	APIKey string `json:"api_key" yaml:"api_key"`
	// SecretKey is the private key used for signing requests. It is never logged.
	SecretKey string `json:"secret_key" yaml:"secret_key"`
	// Passphrase is the third secret WEEX requires alongside the key pair.
	Passphrase string `json:"passphrase" yaml:"passphrase"`
}

// Validate reports a ConfigError naming the first empty credential field.
func (c *Credentials) Validate() error {
	if c == nil {
		return &ConfigError{Field: "credentials", Reason: "no credentials configured", Err: ErrNoCredentials}
	}
	switch {
	case c.APIKey == "":
		return NewConfigError("api_key", "api key is empty")
	case c.SecretKey == "":
		return NewConfigError("secret_key", "secret key is empty")
	case c.Passphrase == "":
		return NewConfigError("passphrase", "passphrase is empty")
	}
	return nil
}

// Config contains all configuration options for a client.
// It includes authentication, networking, rate limiting and circuit breaker settings.
type Config struct {
	BaseURL     string       `json:"base_url" yaml:"base_url" validate:"required,url"`
	Credentials *Credentials `json:"credentials,omitempty" yaml:"-"`

	// Timeout is the maximum duration for HTTP requests.
	Timeout      time.Duration `json:"timeout" yaml:"timeout" validate:"min=1ms"`
	MaxRetries   int           `json:"max_retries" yaml:"max_retries" validate:"min=0"`
	RetryWaitMin time.Duration `json:"retry_wait_min" yaml:"retry_wait_min" validate:"min=0"`
	RetryWaitMax time.Duration `json:"retry_wait_max" yaml:"retry_wait_max" validate:"min=0"`

	// Proxy is an optional HTTP(S) proxy URL applied to every request.
	Proxy  string `json:"proxy,omitempty" yaml:"proxy" validate:"omitempty,url"`
	Locale string `json:"locale" yaml:"locale"`

	RateLimitRequests int           `json:"rate_limit_requests" yaml:"rate_limit_requests" validate:"min=1"`
	RateLimitPeriod   time.Duration `json:"rate_limit_period" yaml:"rate_limit_period" validate:"min=1ms"`

	CircuitBreakerEnabled          bool          `json:"circuit_breaker_enabled" yaml:"circuit_breaker_enabled"`
	CircuitBreakerFailThreshold    int           `json:"circuit_breaker_fail_threshold" yaml:"circuit_breaker_fail_threshold"`
	CircuitBreakerSuccessThreshold int           `json:"circuit_breaker_success_threshold" yaml:"circuit_breaker_success_threshold"`
	CircuitBreakerTimeout          time.Duration `json:"circuit_breaker_timeout" yaml:"circuit_breaker_timeout"`

	LogLevel string `json:"log_level" yaml:"log_level" validate:"omitempty,oneof=trace debug info warn error disabled"`
	Verbose  bool   `json:"verbose" yaml:"verbose"`
}

// DefaultConfig returns a Config initialized with sensible defaults.
// Default values: production base URL, 10s timeout, 2 retries for idempotent calls,
// 100ms-1s retry wait, 20 req/s rate limit, circuit breaker with 3 failures/1 success/10s timeout.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:      DefaultBaseURL,
		Timeout:      10 * time.Second,
		MaxRetries:   2,
		RetryWaitMin: 100 * time.Millisecond,
		RetryWaitMax: 1 * time.Second,
		Locale:       "en-US",

		RateLimitRequests: 20,
		RateLimitPeriod:   time.Second,

		CircuitBreakerEnabled:          true,
		CircuitBreakerFailThreshold:    3,
		CircuitBreakerSuccessThreshold: 1,
		CircuitBreakerTimeout:          10 * time.Second,

		LogLevel: "info",
	}
}

var validate = validator.New()

// Validate checks struct constraints and circuit breaker consistency.
// Credentials are validated separately, since unsigned commands run without them.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return &ConfigError{Field: "config", Reason: err.Error(), Err: err}
	}
	if c.RetryWaitMax < c.RetryWaitMin {
		return NewConfigError("retry_wait_max", "RetryWaitMax must not be below RetryWaitMin")
	}
	if c.CircuitBreakerEnabled {
		if c.CircuitBreakerFailThreshold <= 0 {
			return NewConfigError("circuit_breaker_fail_threshold", "CircuitBreakerFailThreshold must be positive when enabled")
		}
		if c.CircuitBreakerSuccessThreshold <= 0 {
			return NewConfigError("circuit_breaker_success_threshold", "CircuitBreakerSuccessThreshold must be positive when enabled")
		}
		if c.CircuitBreakerTimeout <= 0 {
			return NewConfigError("circuit_breaker_timeout", "CircuitBreakerTimeout must be positive when enabled")
		}
	}
	return nil
}

// RequireCredentials validates the configured credentials for signed calls.
func (c *Config) RequireCredentials() error {
	return c.Credentials.Validate()
}

// WithCredentials sets the API credentials and returns the config for chaining.
func (c *Config) WithCredentials(creds *Credentials) *Config {
	c.Credentials = creds
	return c
}

// WithBaseURL overrides the API base URL and returns the config for chaining.
func (c *Config) WithBaseURL(url string) *Config {
	c.BaseURL = url
	return c
}

// WithTimeout sets the request timeout and returns the config for chaining.
func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.Timeout = timeout
	return c
}

// WithProxy sets the outbound proxy URL and returns the config for chaining.
func (c *Config) WithProxy(proxy string) *Config {
	c.Proxy = proxy
	return c
}

// WithRateLimit sets the rate limiting parameters and returns the config for chaining.
func (c *Config) WithRateLimit(requests int, period time.Duration) *Config {
	c.RateLimitRequests = requests
	c.RateLimitPeriod = period
	return c
}
