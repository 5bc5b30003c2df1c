// Package circuitbreaker stops a sequence of calls after repeated transport
// failures, so a multi-symbol scan against an unreachable API fails fast.
package circuitbreaker

import (
	"errors"
	"sync"
	"time"

	"weex/pkg/core"
)

type State int32

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

type Config struct {
	FailThreshold    int           `json:"fail_threshold"`
	SuccessThreshold int           `json:"success_threshold"`
	Timeout          time.Duration `json:"timeout"`
}

// ConfigFrom extracts the breaker settings of cfg.
func ConfigFrom(cfg *core.Config) Config {
	return Config{
		FailThreshold:    cfg.CircuitBreakerFailThreshold,
		SuccessThreshold: cfg.CircuitBreakerSuccessThreshold,
		Timeout:          cfg.CircuitBreakerTimeout,
	}
}

// Breaker is a consecutive-failure circuit breaker. Only errors accepted by
// its failure filter count; by default those are network and timeout errors
// and 5xx responses, never local validation errors or 4xx rejections.
type Breaker struct {
	mu        sync.Mutex
	cfg       Config
	state     State
	failures  int
	successes int
	openedAt  time.Time

	now       func() time.Time
	isFailure func(error) bool

	rejected int64
	changes  int32
}

// Option configures a Breaker.
type Option func(*Breaker)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(b *Breaker) { b.now = now }
}

// WithFailureFilter decides which errors count against the breaker.
func WithFailureFilter(f func(error) bool) Option {
	return func(b *Breaker) { b.isFailure = f }
}

func New(config Config, opts ...Option) *Breaker {
	if config.FailThreshold <= 0 {
		config.FailThreshold = 1
	}
	if config.SuccessThreshold <= 0 {
		config.SuccessThreshold = 1
	}
	b := &Breaker{
		cfg:       config,
		now:       time.Now,
		isFailure: IsTransportFailure,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// IsTransportFailure reports whether err means the exchange could not be
// reached or failed on its side.
func IsTransportFailure(err error) bool {
	var exErr *core.ExchangeError
	if !errors.As(err, &exErr) {
		return false
	}
	switch exErr.Type {
	case core.ErrorTypeNetwork, core.ErrorTypeTimeout, core.ErrorTypeServerError:
		return true
	}
	return false
}

// Allow returns core.ErrCircuitBreakerOpen while the breaker is open. After
// the timeout it lets calls through in the half-open state.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen {
		if b.now().Sub(b.openedAt) < b.cfg.Timeout {
			b.rejected++
			return core.ErrCircuitBreakerOpen
		}
		b.transitionTo(StateHalfOpen)
	}
	return nil
}

// Record feeds the outcome of one call into the breaker.
func (b *Breaker) Record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	failed := b.isFailure(err)
	switch b.state {
	case StateClosed:
		if !failed {
			b.failures = 0
			return
		}
		b.failures++
		if b.failures >= b.cfg.FailThreshold {
			b.open()
		}
	case StateHalfOpen:
		if failed {
			b.open()
			return
		}
		b.successes++
		if b.successes >= b.cfg.SuccessThreshold {
			b.transitionTo(StateClosed)
		}
	case StateOpen:
		// calls admitted before the breaker opened
		if failed {
			b.openedAt = b.now()
		}
	}
}

// Do runs fn when the breaker allows it and records the result.
func (b *Breaker) Do(fn func() error) error {
	if err := b.Allow(); err != nil {
		return err
	}
	err := fn()
	b.Record(err)
	return err
}

func (b *Breaker) open() {
	b.openedAt = b.now()
	b.transitionTo(StateOpen)
}

func (b *Breaker) transitionTo(s State) {
	if b.state != s {
		b.changes++
	}
	b.state = s
	b.failures = 0
	b.successes = 0
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transitionTo(StateClosed)
}

func (b *Breaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

func (b *Breaker) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Stats{
		Rejected:     b.rejected,
		StateChanges: b.changes,
		CurrentState: b.state.String(),
	}
}

type Stats struct {
	Rejected     int64
	StateChanges int32
	CurrentState string
}
