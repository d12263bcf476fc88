// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package certnet

import (
	"bytes"
	"runtime"
	"strconv"
	"sync/atomic"
)

// reactorGoroutineID records the id of whichever goroutine is
// currently running a Fetcher's reactorLoop, for the benefit of the
// debug check in Handle.WaitForResult. It is a package-level variable
// rather than a per-Fetcher field because a goroutine id is process-
// global and cheap to compare; multiple Fetchers in the same process
// simply share one slot, which only weakens the check to "some
// reactor, not necessarily this one" — still enough to catch the
// mistake it exists for.
var reactorGoroutineID atomic.Int64

// currentGoroutineID parses the calling goroutine's id out of
// runtime.Stack. This is the same trick net/http/httptest and several
// other stdlib-adjacent packages use when they need a goroutine
// identity and the runtime doesn't expose one directly; it is a
// debug-only aid; cert fetches are low-QPS and high-latency (spec
// §9), so the extra allocation here is not on any hot path.
func currentGoroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	fields := bytes.Fields(buf[:n])
	if len(fields) < 2 {
		return -1
	}
	id, err := strconv.ParseInt(string(fields[1]), 10, 64)
	if err != nil {
		return -1
	}
	return id
}

// assertNotOnReactorGoroutine panics if called from the reactor
// goroutine. WaitForResult calls this because blocking the reactor on
// itself would deadlock every other Handle sharing that Fetcher —
// there would be nothing left to deliver the result it's waiting for.
func assertNotOnReactorGoroutine() {
	if id := reactorGoroutineID.Load(); id != 0 && id == currentGoroutineID() {
		panic("certnet: Handle.WaitForResult called from the Fetcher's own reactor goroutine")
	}
}
