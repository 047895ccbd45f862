// Package textgen abstracts prompt/response text generation behind an
// ordered list of backends with single-hop failover.
package textgen

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
)

// Backend is one concrete text-generation service. It returns the raw
// model output; response parsing is the caller's responsibility.
type Backend interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
	Name() string
}

// Completer is the narrow contract consumed by analysis code. *Gateway
// satisfies it; tests inject fakes.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// GatewayError reports a completion that failed on every backend.
type GatewayError struct {
	Attempted []string
	Err       error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("text generation failed on %s: %v", strings.Join(e.Attempted, ", "), e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// KeyRing is a fixed API-key pool with a round-robin cursor. The cursor
// advances atomically on every call, not on failure, and is owned by the
// ring instance rather than package state.
type KeyRing struct {
	keys []string
	next atomic.Uint64
}

func NewKeyRing(keys []string) *KeyRing {
	return &KeyRing{keys: keys}
}

func (r *KeyRing) Len() int { return len(r.keys) }

// Next returns the next key in round-robin order.
func (r *KeyRing) Next() string {
	if len(r.keys) == 0 {
		return ""
	}
	i := r.next.Add(1) - 1
	return r.keys[i%uint64(len(r.keys))]
}

// Issued returns how many keys have been handed out so far.
func (r *KeyRing) Issued() uint64 { return r.next.Load() }
