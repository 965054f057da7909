// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package tracing

import (
	"context"
	"sync"
)

type scopeKey struct{}

// Scope is the current-context slot of a single request flow.  Contexts are installed with
// Enter and restored with Exit, in last-in-first-out order.
//
// A Scope belongs to one flow.  It is safe to read Current from other goroutines, but entering
// and exiting should happen on the flow that owns the Scope.
type Scope struct {
	lock    sync.RWMutex
	current context.Context
	depth   int
}

// Token captures the context that was current when Scope.Enter was called.
type Token struct {
	scope    *Scope
	previous context.Context
	depth    int
	exited   *bool
}

// WithScope establishes a new Scope whose root is parent.  The returned context carries the
// Scope, so that ScopeFrom can locate it downstream.
func WithScope(parent context.Context) (context.Context, *Scope) {
	s := new(Scope)
	ctx := context.WithValue(parent, scopeKey{}, s)
	s.current = ctx
	return ctx, s
}

// ScopeFrom returns the Scope carried by ctx, or nil if there is none.
func ScopeFrom(ctx context.Context) *Scope {
	s, _ := ctx.Value(scopeKey{}).(*Scope)
	return s
}

// Current returns the context currently installed in this Scope.
func (s *Scope) Current() context.Context {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.current
}

// Depth returns the number of contexts entered and not yet exited.
func (s *Scope) Depth() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.depth
}

// Enter installs ctx as the current context and returns the Token that restores the
// previous one.
func (s *Scope) Enter(ctx context.Context) Token {
	s.lock.Lock()
	defer s.lock.Unlock()

	t := Token{
		scope:    s,
		previous: s.current,
		depth:    s.depth,
		exited:   new(bool),
	}

	s.current = ctx
	s.depth++
	return t
}

// Exit restores the context captured by t.  Exiting the same token more than once, or a
// token from another Scope, has no effect.
func (s *Scope) Exit(t Token) {
	if t.scope != s || t.exited == nil {
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if *t.exited {
		return
	}

	*t.exited = true
	s.current = t.previous
	s.depth = t.depth
}
