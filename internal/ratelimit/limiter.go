// Package ratelimit throttles outgoing API calls with token buckets.
//
// Every call is charged against a shared account-wide limit and, optionally,
// against a named endpoint group such as "market" or "trade".
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Limit is a budget of Requests per Period. Bursts up to Requests are allowed.
type Limit struct {
	Requests int
	Period   time.Duration
}

func (l Limit) valid() bool {
	return l.Requests > 0 && l.Period > 0
}

func (l Limit) limiter() *rate.Limiter {
	return rate.NewLimiter(rate.Limit(float64(l.Requests)/l.Period.Seconds()), l.Requests)
}

// Limiter combines a global limit with per-group limits.
type Limiter struct {
	global *rate.Limiter

	mu       sync.Mutex
	groups   map[string]*rate.Limiter
	limits   map[string]Limit
	defaults Limit

	waited  atomic.Int64
	allowed atomic.Int64
	denied  atomic.Int64
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithGroupLimit sets the budget of one endpoint group.
func WithGroupLimit(group string, limit Limit) Option {
	return func(l *Limiter) {
		if limit.valid() {
			l.limits[group] = limit
		}
	}
}

// New creates a Limiter whose global budget is also the default for groups
// without an explicit limit.
func New(global Limit, opts ...Option) (*Limiter, error) {
	if !global.valid() {
		return nil, fmt.Errorf("ratelimit: invalid limit %d per %s", global.Requests, global.Period)
	}
	l := &Limiter{
		global:   global.limiter(),
		groups:   make(map[string]*rate.Limiter),
		limits:   make(map[string]Limit),
		defaults: global,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Wait blocks until both the global budget and the group budget admit one
// call, or ctx is done. An empty group only charges the global budget.
func (l *Limiter) Wait(ctx context.Context, group string) error {
	l.waited.Add(1)
	if err := l.global.Wait(ctx); err != nil {
		l.denied.Add(1)
		return fmt.Errorf("rate limit wait: %w", err)
	}
	if group != "" {
		if err := l.group(group).Wait(ctx); err != nil {
			l.denied.Add(1)
			return fmt.Errorf("rate limit wait %s: %w", group, err)
		}
	}
	l.allowed.Add(1)
	return nil
}

// Allow reports whether a call in group may proceed now without waiting.
// Tokens are only consumed when the call is allowed.
func (l *Limiter) Allow(group string) bool {
	now := time.Now()
	g := l.global.ReserveN(now, 1)
	if !g.OK() || g.DelayFrom(now) > 0 {
		g.CancelAt(now)
		l.denied.Add(1)
		return false
	}
	if group != "" {
		r := l.group(group).ReserveN(now, 1)
		if !r.OK() || r.DelayFrom(now) > 0 {
			r.CancelAt(now)
			g.CancelAt(now)
			l.denied.Add(1)
			return false
		}
	}
	l.allowed.Add(1)
	return true
}

func (l *Limiter) group(name string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if g, ok := l.groups[name]; ok {
		return g
	}
	limit, ok := l.limits[name]
	if !ok {
		limit = l.defaults
	}
	g := limit.limiter()
	l.groups[name] = g
	return g
}

// Stats returns counters since the limiter was created.
func (l *Limiter) Stats() Stats {
	l.mu.Lock()
	groups := len(l.groups)
	l.mu.Unlock()
	return Stats{
		Waits:   l.waited.Load(),
		Allowed: l.allowed.Load(),
		Denied:  l.denied.Load(),
		Groups:  groups,
	}
}

// Stats is a point-in-time capture of limiter counters.
type Stats struct {
	Waits   int64
	Allowed int64
	Denied  int64
	Groups  int
}
