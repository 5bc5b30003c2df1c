package core

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorType represents the category of an exchange error.
type ErrorType int

// Error type constants categorize remote errors for proper handling.
const (
	// ErrorTypeUnknown indicates an unclassified error.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeNetwork indicates a network connectivity issue.
	ErrorTypeNetwork
	// ErrorTypeTimeout indicates the request exceeded its deadline.
	ErrorTypeTimeout
	// ErrorTypeRateLimit indicates rate limit was exceeded.
	ErrorTypeRateLimit
	// ErrorTypeAuthentication indicates invalid credentials, signature or timestamp.
	ErrorTypeAuthentication
	// ErrorTypeBadRequest indicates invalid request parameters.
	ErrorTypeBadRequest
	// ErrorTypeNotFound indicates the requested resource does not exist.
	ErrorTypeNotFound
	// ErrorTypeServerError indicates a server-side error.
	ErrorTypeServerError
	// ErrorTypeInsufficientFunds indicates account lacks required margin.
	ErrorTypeInsufficientFunds
	// ErrorTypeInvalidOrder indicates the order violates exchange rules.
	ErrorTypeInvalidOrder
)

// String returns the string representation of the error type.
func (t ErrorType) String() string {
	return [...]string{
		"UNKNOWN",
		"NETWORK",
		"TIMEOUT",
		"RATE_LIMIT",
		"AUTHENTICATION",
		"BAD_REQUEST",
		"NOT_FOUND",
		"SERVER_ERROR",
		"INSUFFICIENT_FUNDS",
		"INVALID_ORDER",
	}[t]
}

// Sentinel errors for common error conditions.
var (
	// ErrConfiguration matches every ConfigError.
	ErrConfiguration = errors.New("configuration error")
	// ErrUnknownSymbol matches every UnknownSymbolError.
	ErrUnknownSymbol = errors.New("unknown symbol")
	// ErrBelowMinimumSize matches every BelowMinimumSizeError.
	ErrBelowMinimumSize = errors.New("below minimum size")
	// ErrInvalidValue matches every InvalidValueError.
	ErrInvalidValue = errors.New("invalid value")
	// ErrNoCredentials is returned when no API credentials are configured.
	ErrNoCredentials = errors.New("no credentials configured")
	// ErrClientClosed is returned when attempting to use a closed client.
	ErrClientClosed = errors.New("client is closed")
	// ErrCircuitBreakerOpen is returned when the circuit breaker rejects a call.
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open")
)

// ConfigError reports a missing credential or an invalid configuration value.
type ConfigError struct {
	Field  string
	Reason string
	Err    error
}

// NewConfigError creates a ConfigError for the named field.
func NewConfigError(field, reason string) *ConfigError {
	return &ConfigError{Field: field, Reason: reason}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func (e *ConfigError) Is(target error) bool { return target == ErrConfiguration }

// ErrorCode returns ErrCodeInvalidConfig.
func (e *ConfigError) ErrorCode() ErrorCode { return ErrCodeInvalidConfig }

// UnknownSymbolError reports a symbol missing from the pair table.
type UnknownSymbolError struct {
	Symbol string
}

func (e *UnknownSymbolError) Error() string {
	return fmt.Sprintf("unknown symbol %q", e.Symbol)
}

func (e *UnknownSymbolError) Is(target error) bool { return target == ErrUnknownSymbol }

// ErrorCode returns ErrCodeInvalidSymbol.
func (e *UnknownSymbolError) ErrorCode() ErrorCode { return ErrCodeInvalidSymbol }

// BelowMinimumSizeError reports an order size that falls under the pair minimum
// after step rounding.
type BelowMinimumSizeError struct {
	Symbol  string
	Size    string
	Rounded string
	MinSize string
}

func (e *BelowMinimumSizeError) Error() string {
	return fmt.Sprintf("size %s for %s rounds to %s, below minimum size %s",
		e.Size, e.Symbol, e.Rounded, e.MinSize)
}

func (e *BelowMinimumSizeError) Is(target error) bool { return target == ErrBelowMinimumSize }

// ErrorCode returns ErrCodeBelowMinSize.
func (e *BelowMinimumSizeError) ErrorCode() ErrorCode { return ErrCodeBelowMinSize }

// InvalidValueError reports a price or size that is not a positive finite decimal.
type InvalidValueError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *InvalidValueError) Is(target error) bool { return target == ErrInvalidValue }

// ErrorCode returns ErrCodeInvalidValue.
func (e *InvalidValueError) ErrorCode() ErrorCode { return ErrCodeInvalidValue }

// ExchangeError represents a structured error returned from the exchange.
// It provides detailed context for debugging and error handling.
type ExchangeError struct {
	// Type categorizes the error for programmatic handling.
	Type ErrorType `json:"type"`
	// StatusCode is the HTTP status code from the response.
	StatusCode int `json:"status_code"`
	// Code is the exchange-specific error code.
	Code string `json:"code"`
	// Message is the human-readable error description.
	Message string `json:"message"`
	// RawError contains the original error response for debugging.
	RawError any `json:"raw_error,omitempty"`
	// Exchange identifies which exchange returned this error.
	Exchange string `json:"exchange"`
	// Timestamp is when the error occurred.
	Timestamp time.Time `json:"timestamp"`
}

// Error implements the error interface for ExchangeError.
// It returns a formatted string with exchange name, error type, status code, and message.
func (e *ExchangeError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("[%s] %s (%d/%s): %s",
			e.Exchange, e.Type, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s (%d): %s",
		e.Exchange, e.Type, e.StatusCode, e.Message)
}

// WithCode sets the error code and returns the error for chaining.
func (e *ExchangeError) WithCode(code ErrorCode) *ExchangeError {
	e.Code = string(code)
	return e
}

// NewExchangeError creates a new ExchangeError with the specified details.
// The timestamp is automatically set to the current time.
func NewExchangeError(exchange string, errorType ErrorType, statusCode int, message string) *ExchangeError {
	return &ExchangeError{
		Type:       errorType,
		StatusCode: statusCode,
		Message:    message,
		Exchange:   exchange,
		Timestamp:  time.Now(),
	}
}

// NewExchangeErrorWithCode creates a new ExchangeError including an exchange-specific error code.
func NewExchangeErrorWithCode(exchange string, errorType ErrorType, statusCode int, code, message string) *ExchangeError {
	e := NewExchangeError(exchange, errorType, statusCode, message)
	e.Code = code
	return e
}

// ErrorTypeForStatus maps an HTTP status code to an ErrorType.
func ErrorTypeForStatus(statusCode int) ErrorType {
	switch {
	case statusCode >= http.StatusInternalServerError:
		return ErrorTypeServerError
	case statusCode == http.StatusTooManyRequests:
		return ErrorTypeRateLimit
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return ErrorTypeAuthentication
	case statusCode == http.StatusBadRequest:
		return ErrorTypeBadRequest
	case statusCode == http.StatusNotFound:
		return ErrorTypeNotFound
	case statusCode == http.StatusRequestTimeout:
		return ErrorTypeTimeout
	default:
		return ErrorTypeUnknown
	}
}

func exchangeErrorType(err error) (ErrorType, bool) {
	var e *ExchangeError
	if errors.As(err, &e) {
		return e.Type, true
	}
	return ErrorTypeUnknown, false
}

// IsNetworkError returns true if the error is a network connectivity issue.
func IsNetworkError(err error) bool {
	t, ok := exchangeErrorType(err)
	return ok && t == ErrorTypeNetwork
}

// IsRateLimitError returns true if the error is a rate limit violation.
func IsRateLimitError(err error) bool {
	t, ok := exchangeErrorType(err)
	return ok && t == ErrorTypeRateLimit
}

// IsAuthenticationError returns true if the exchange rejected the credentials or signature.
func IsAuthenticationError(err error) bool {
	t, ok := exchangeErrorType(err)
	return ok && t == ErrorTypeAuthentication
}

// IsLocalError reports whether err was detected before any network call:
// configuration, unknown symbol, below-minimum size or invalid value.
func IsLocalError(err error) bool {
	return errors.Is(err, ErrConfiguration) ||
		errors.Is(err, ErrUnknownSymbol) ||
		errors.Is(err, ErrBelowMinimumSize) ||
		errors.Is(err, ErrInvalidValue)
}
