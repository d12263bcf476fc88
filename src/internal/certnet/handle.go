// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package certnet

import (
	"context"
	"sync/atomic"
)

// nextHandleID hands out the identity a caller's Handle is tracked
// under. The reactor never dereferences a Handle directly — a stale
// id simply misses its lookup and the cancellation task becomes a
// no-op, which is what lets a Handle be cancelled from any goroutine
// without synchronizing with the reactor's view of the world.
var nextHandleID atomic.Uint64

func newHandleID() uint64 { return nextHandleID.Add(1) }

// Handle is the caller-owned result of starting a fetch. Exactly one
// of WaitForResult's non-error return paths ever fires; calling
// WaitForResult more than once, or concurrently from multiple
// goroutines, is not supported — a Handle belongs to whichever
// goroutine started the fetch.
//
// Closing a Handle without waiting on it cancels the underlying Job
// attachment (or the whole Job, if it was the last attachment) and is
// the idiomatic replacement for the original implementation's
// "destroying the Request object cancels it" destructor semantics.
type Handle struct {
	id     uint64
	key    Key
	f      *Fetcher
	done   chan struct{}
	kind   ErrorKind
	body   []byte
	closed atomic.Bool
}

// WaitForResult blocks until the fetch completes, the supplied
// context is cancelled, or the Handle is closed from another
// goroutine. It must never be called from the Fetcher's reactor
// goroutine — doing so would deadlock the reactor against itself,
// since the reactor is the only goroutine that can ever deliver a
// result. WaitForResult panics if it is called from the reactor; see
// assertNotOnReactorGoroutine in fetcher_debug.go.
func (h *Handle) WaitForResult(ctx context.Context) (ErrorKind, []byte, error) {
	assertNotOnReactorGoroutine()
	select {
	case <-h.done:
		return h.kind, h.body, nil
	case <-ctx.Done():
		return Aborted, nil, ctx.Err()
	}
}

// Close cancels the fetch this Handle represents. It is safe to call
// from any goroutine, safe to call more than once, and safe to call
// whether or not WaitForResult has returned. Close never blocks.
func (h *Handle) Close() error {
	if !h.closed.CompareAndSwap(false, true) {
		return nil
	}
	h.f.postCancel(h.id, h.key)
	return nil
}

// deliver is invoked exactly once by the reactor goroutine to hand a
// terminal result to the waiting caller.
func (h *Handle) deliver(kind ErrorKind, body []byte) {
	h.kind = kind
	h.body = body
	close(h.done)
}
