// Package reqscope carries per-request state that must not leak between
// requests, such as "already done" markers for side effects that should fire
// at most once while a page is rendered.
package reqscope

import (
	"context"
	"sync"
)

type Scope struct {
	mu   sync.Mutex
	done map[string]struct{}
}

type ctxKey struct{}

// With attaches a fresh scope to ctx.
func With(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, &Scope{done: map[string]struct{}{}})
}

// From returns the scope bound to ctx, or nil.
func From(ctx context.Context) *Scope {
	s, _ := ctx.Value(ctxKey{}).(*Scope)
	return s
}

// Once reports true the first time key is seen in the request scope.
// Without a scope every call reports true.
func Once(ctx context.Context, key string) bool {
	s := From(ctx)
	if s == nil {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.done[key]; ok {
		return false
	}
	s.done[key] = struct{}{}
	return true
}
