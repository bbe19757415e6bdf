// Package policy centralizes role-based visibility and authorization for
// every resource kind in the portal.
//
// The engine exposes two pure operations. Scope answers "which rows of a kind
// may this principal list" by returning a composable Predicate that the
// storage layer applies to the full table. Authorize answers "may this
// principal perform this action on this row" with an explicit Allow/Deny
// decision carrying a reason code.
//
// Both operations are deterministic given their inputs and perform no I/O.
// The only ambient input, the wall clock used for announcement expiry, is
// injected at construction so tests can pin it. A single Engine is safe for
// concurrent use from any number of request goroutines.
//
// Callers resolve rows from storage first, then consult the engine:
//
//	engine := policy.NewEngine()
//	pred, err := engine.Scope(principal, policy.KindGrade, nil)
//	// storage applies pred
//
//	d := engine.Authorize(principal, policy.ActionUpdate, policy.Target{
//		Kind:   policy.KindModule,
//		Object: module,
//	})
//	if d.Denied() { ... }
package policy

import "time"

type Engine struct {
	now func() time.Time
}

type Option func(*Engine)

// WithClock overrides the wall clock consulted for announcement expiry.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}
