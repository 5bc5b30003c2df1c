package core

import "errors"

// ErrorCode represents a stable, machine-readable error identifier.
type ErrorCode string

// Error code constants.
const (
	ErrCodeNetwork           ErrorCode = "NETWORK_ERROR"
	ErrCodeTimeout           ErrorCode = "TIMEOUT"
	ErrCodeRateLimit         ErrorCode = "RATE_LIMIT"
	ErrCodeAuth              ErrorCode = "AUTH_ERROR"
	ErrCodeBadRequest        ErrorCode = "BAD_REQUEST"
	ErrCodeServerError       ErrorCode = "SERVER_ERROR"
	ErrCodeInsufficientFunds ErrorCode = "INSUFFICIENT_FUNDS"
	ErrCodeInvalidOrder      ErrorCode = "INVALID_ORDER"

	// Local errors, raised before any request leaves the process.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
	ErrCodeInvalidSymbol ErrorCode = "INVALID_SYMBOL"
	ErrCodeBelowMinSize  ErrorCode = "BELOW_MIN_SIZE"
	ErrCodeInvalidValue  ErrorCode = "INVALID_VALUE"

	ErrCodeNoCredentials  ErrorCode = "NO_CREDENTIALS"
	ErrCodeCircuitBreaker ErrorCode = "CIRCUIT_BREAKER_OPEN"
	ErrCodeUnsupported    ErrorCode = "UNSUPPORTED_METHOD"
)

type codedError interface {
	ErrorCode() ErrorCode
}

// IsErrorCode checks if the error carries the specified error code, either as an
// ExchangeError code or as one of the local error types.
func IsErrorCode(err error, code ErrorCode) bool {
	var exErr *ExchangeError
	if errors.As(err, &exErr) {
		return ErrorCode(exErr.Code) == code
	}
	var coded codedError
	if errors.As(err, &coded) {
		return coded.ErrorCode() == code
	}
	return false
}
