package custodytest

import (
	"context"
	"fmt"

	"github.com/iov-one/custody"
)

// Auth is a mock implementing x.Authenticator interface.
//
// This structure authenticates any of referenced addresses.
// You can use either Signer or Signers (or both) attributes to reference
// addresses. Signer is always considered first.
type Auth struct {
	// Signer represents an authentication of a single caller.
	Signer custody.Address

	// Signers represents an authentication of multiple callers.
	Signers []custody.Address
}

// GetAddresses returns all declared addresses.
func (a *Auth) GetAddresses(custody.Context) []custody.Address {
	if a.Signer != nil {
		return append([]custody.Address{a.Signer}, a.Signers...)
	}
	return a.Signers
}

// HasAddress returns true if the address was declared.
func (a *Auth) HasAddress(ctx custody.Context, addr custody.Address) bool {
	for _, s := range a.GetAddresses(ctx) {
		if addr.Equals(s) {
			return true
		}
	}
	return false
}

// CtxAuth is a mock implementing x.Authenticator interface.
//
// This implementation is using context to store and retrieve addresses.
type CtxAuth struct {
	// Key used to set and retrieve addresses from the context. For
	// convinience only string type keys are allowed.
	Key string
}

// SetAddresses returns a context authenticating given addresses.
func (a *CtxAuth) SetAddresses(ctx custody.Context, addrs ...custody.Address) custody.Context {
	return context.WithValue(ctx, a.Key, addrs)
}

// GetAddresses returns addresses set on the context.
func (a *CtxAuth) GetAddresses(ctx custody.Context) []custody.Address {
	val := ctx.Value(a.Key)
	if val == nil {
		return nil
	}
	addrs, ok := val.([]custody.Address)
	if !ok {
		panic(fmt.Sprintf("instead of []custody.Address got %T", val))
	}
	return addrs
}

// HasAddress returns true if the address is set on the context.
func (a *CtxAuth) HasAddress(ctx custody.Context, addr custody.Address) bool {
	for _, s := range a.GetAddresses(ctx) {
		if addr.Equals(s) {
			return true
		}
	}
	return false
}
