// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package certnet provides a thread-safe front-end for fetching
// certificate-related artifacts (CA issuer certificates, CRLs, OCSP
// responses) identified by URL, on behalf of a certificate verifier
// that may run on a goroutine other than the one driving network I/O.
//
// A single [Fetcher] dispatches every fetch onto one dedicated
// goroutine (the "reactor"), coalesces concurrent fetches that share
// the same [Key], enforces a per-fetch timeout and response-size cap
// independent of the underlying HTTP stack, and hands results back
// through a [Handle] that is safe to wait on from any other goroutine.
//
// # Threading model
//
// Exactly two roles matter: the reactor goroutine, which owns all Job
// and registry state and is the only goroutine that ever mutates it,
// and caller goroutines, which construct the Fetcher, start fetches,
// own the returned Handles, and block on [Handle.WaitForResult]. The
// reactor never performs blocking I/O itself; each in-flight HTTP
// request runs on its own goroutine and reports back to the reactor
// by sending a closure on its task channel, which is the Go analogue
// of "posting a task to the network thread."
package certnet
