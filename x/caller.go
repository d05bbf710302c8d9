package x

import (
	"context"

	"github.com/iov-one/custody"
)

type contextKey int // local to the x module

const (
	contextKeyCaller contextKey = iota
)

// WithCaller returns a context that carries the identity of the caller.
// Identity must be authenticated by the environment before it is placed on
// the context. Panics if a caller is already set.
func WithCaller(ctx custody.Context, caller custody.Address) custody.Context {
	if _, ok := ctx.Value(contextKeyCaller).(custody.Address); ok {
		panic("caller already set")
	}
	return context.WithValue(ctx, contextKeyCaller, caller.Clone())
}

// CallerAuth authenticates the identity placed on the context by
// WithCaller.
type CallerAuth struct{}

var _ Authenticator = CallerAuth{}

// GetAddresses returns the caller, if any.
func (CallerAuth) GetAddresses(ctx custody.Context) []custody.Address {
	caller, ok := ctx.Value(contextKeyCaller).(custody.Address)
	if !ok || len(caller) == 0 {
		return nil
	}
	return []custody.Address{caller}
}

// HasAddress returns true if the given address is the caller.
func (a CallerAuth) HasAddress(ctx custody.Context, addr custody.Address) bool {
	for _, c := range a.GetAddresses(ctx) {
		if c.Equals(addr) {
			return true
		}
	}
	return false
}
