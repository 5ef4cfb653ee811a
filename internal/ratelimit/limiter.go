// Package ratelimit implements a fixed-window request limiter shared across
// named operations, keyed by client identity.
package ratelimit

import (
	"context"
	"time"

	"github.com/smallbiznis/portalauth/internal/clock"
	"go.uber.org/zap"
)

// Policy is the budget for one operation: at most MaxRequests per Window.
// The window is fixed, not sliding: it resets as a whole once it elapses.
type Policy struct {
	MaxRequests int
	Window      time.Duration
}

// Result is the outcome of one Check. Allowed=false is a normal return
// value, not an error; it only becomes a 429 at the HTTP boundary.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Store is the durable counter behind the limiter. Take must be atomic:
// check-and-increment as one storage operation, and a denied request must
// not increment the counter.
type Store interface {
	Take(ctx context.Context, key string, policy Policy, now time.Time) (Result, error)
}

// Limiter decides allow/deny for an (operation, clientIdentity) pair.
//
// FAIL-OPEN: any storage error yields Allowed=true. Rate limiting here is a
// defense-in-depth control, not the authorization mechanism, so we prefer
// availability over strictness. The session service makes the opposite
// choice on purpose. A misconfigured store silently disables limiting,
// which is why every failure is logged at warn level.
type Limiter struct {
	log   *zap.Logger
	clock clock.Clock
	store Store
}

func NewLimiter(log *zap.Logger, clk clock.Clock, store Store) *Limiter {
	return &Limiter{
		log:   log.Named("ratelimit"),
		clock: clk,
		store: store,
	}
}

// Enabled reports whether a backing store is configured.
func (l *Limiter) Enabled() bool {
	return l != nil && l.store != nil
}

// Check records one request for operation by identity and reports whether
// it is within policy. Identity is opaque; extracting it (for example from
// a forwarded-IP header) is the caller's concern.
func (l *Limiter) Check(ctx context.Context, operation, identity string, policy Policy) Result {
	now := l.clock.Now()
	open := Result{
		Allowed:   true,
		Remaining: policy.MaxRequests - 1,
		ResetAt:   now.Add(policy.Window),
	}

	if !l.Enabled() || policy.MaxRequests <= 0 || policy.Window <= 0 {
		return open
	}

	key := operation + ":" + identity
	res, err := l.store.Take(ctx, key, policy, now)
	if err != nil {
		l.log.Warn("rate limit store failed, failing open",
			zap.String("operation", operation),
			zap.String("key", key),
			zap.Error(err),
		)
		return open
	}
	return res
}
