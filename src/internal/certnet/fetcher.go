// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package certnet

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/H0llyW00dzZ/certnet-fetcher/src/logger"
)

// nopLogger discards everything; it is the Fetcher's default so
// production code never pays for log formatting it didn't ask for.
type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}
func (nopLogger) Println(...any)        {}
func (nopLogger) SetOutput(w io.Writer) {}

// Fetcher is the thread-safe front-end described by [the package doc].
// A single goroutine (the reactor, started by New) owns every Job and
// the registry; all other methods are safe to call concurrently from
// any number of caller goroutines, because they only ever communicate
// with the reactor by posting closures on its task channel.
type Fetcher struct {
	tasks         chan func()
	stopped       chan struct{}
	exited        chan struct{}
	stopOnce      sync.Once
	client        *http.Client
	defaults      Defaults
	logger        logger.Logger
	taskQueueSize int
	userAgent     string

	registry registry
}

// New starts a Fetcher's reactor goroutine and returns once it is
// running. Callers must eventually call Shutdown.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		defaults: defaultDefaults(),
		logger:   nopLogger{},
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = defaultHTTPClient()
	}
	f.client.CheckRedirect = wrapCheckRedirect(f.client.CheckRedirect)
	if f.userAgent != "" {
		transport := f.client.Transport
		if transport == nil {
			transport = http.DefaultTransport
		}
		f.client.Transport = &userAgentTransport{ua: f.userAgent, next: transport}
	}
	f.tasks = make(chan func(), f.taskQueueSize)
	f.stopped = make(chan struct{})
	f.exited = make(chan struct{})
	f.registry = newRegistry()

	go f.reactorLoop()
	return f
}

// defaultHTTPClient builds a bare *http.Client; New always installs
// its redirect policy afterward via wrapCheckRedirect, regardless of
// whether the client came from here or from WithHTTPClient.
func defaultHTTPClient() *http.Client {
	return &http.Client{}
}

// wrapCheckRedirect returns a CheckRedirect hook that rejects any
// redirect target that is not plain http — matching the original
// implementation's CanFetchUrl re-check on every hop — before
// delegating to inner, the caller-supplied policy (if any).
func wrapCheckRedirect(inner func(req *http.Request, via []*http.Request) error) func(*http.Request, []*http.Request) error {
	return func(req *http.Request, via []*http.Request) error {
		if !isAllowedScheme(req.URL) {
			return errDisallowedScheme
		}
		if inner != nil {
			return inner(req, via)
		}
		if len(via) >= 10 {
			return http.ErrUseLastResponse
		}
		return nil
	}
}

func isAllowedScheme(u *url.URL) bool {
	return u.Scheme == "http"
}

// reactorLoop is the single goroutine that owns every Job and the
// registry. It never performs blocking I/O; it only runs closures
// posted by Fetch* methods, per-job HTTP goroutines, and job timers.
func (f *Fetcher) reactorLoop() {
	reactorGoroutineID.Store(currentGoroutineID())
	defer close(f.exited)
	for {
		select {
		case task := <-f.tasks:
			task()
		case <-f.stopped:
			f.drainAndAbortAll()
			return
		}
	}
}

func (f *Fetcher) drainAndAbortAll() {
	for len(f.tasks) > 0 {
		<-f.tasks
	}
	for _, j := range f.registry {
		handles := j.handles
		j.done = true
		if j.timer != nil {
			j.timer.Stop()
		}
		if j.cancel != nil {
			j.cancel()
		}
		for _, h := range handles {
			h.deliver(Aborted, nil)
		}
	}
	f.registry = newRegistry()
}

// postTask sends a closure to the reactor. It never blocks for longer
// than it takes the reactor to pick up the next task, except during
// Shutdown where posts after the stop signal are silently dropped —
// there is no one left to run them.
func (f *Fetcher) postTask(fn func()) {
	select {
	case f.tasks <- fn:
	case <-f.stopped:
	}
}

func (f *Fetcher) postCancel(id uint64, key Key) {
	f.postTask(func() { f.onCancel(id, key) })
}

func (f *Fetcher) onCancel(id uint64, key Key) {
	j, ok := f.registry.find(key)
	if !ok {
		// Stale cancellation: the job already completed (and removed
		// itself from the registry) or was replaced. Either way,
		// there is nothing left to cancel — exactly the no-op the
		// id-based lookup is designed to produce.
		return
	}
	h, attached := j.handles[id]
	if !attached {
		return
	}
	empty := j.detach(id)
	h.deliver(Aborted, nil)
	if empty {
		j.abort()
	}
}

func (f *Fetcher) onJobTimeout(j *job) {
	if j.done {
		return
	}
	f.logger.Printf("certnet: fetch timed out after %s: %s", j.timeout, j.key.URL)
	j.fanOut(TimedOut, nil)
}

func (f *Fetcher) onJobHTTPDone(j *job, kind ErrorKind, body []byte) {
	if j.done {
		return
	}
	if kind != OK {
		f.logger.Printf("certnet: fetch failed (%s): %s", kind, j.key.URL)
	}
	j.fanOut(kind, body)
}

// FetchCAIssuers fetches an intermediate CA certificate referenced by
// an Authority Information Access extension.
func (f *Fetcher) FetchCAIssuers(rawURL string, p FetchParams) *Handle {
	return f.fetch(CAIssuers, rawURL, p)
}

// FetchCRL fetches a certificate revocation list.
func (f *Fetcher) FetchCRL(rawURL string, p FetchParams) *Handle {
	return f.fetch(CRL, rawURL, p)
}

// FetchOCSP fetches an OCSP response. p.OCSPRequestBody must be the
// DER-encoded OCSP request.
func (f *Fetcher) FetchOCSP(rawURL string, p FetchParams) *Handle {
	return f.fetch(OCSP, rawURL, p)
}

func (f *Fetcher) fetch(m Method, rawURL string, p FetchParams) *Handle {
	maxBytes := p.MaxResponseBytes
	if maxBytes <= 0 {
		maxBytes = f.defaults.maxResponseBytesFor(m)
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = f.defaults.Timeout
	}

	h := &Handle{
		id:   newHandleID(),
		key:  Key{URL: rawURL, Method: m, MaxResponseBytes: maxBytes},
		f:    f,
		done: make(chan struct{}),
	}

	if !isAllowedSchemeString(rawURL) {
		h.kind, h.body = DisallowedURLScheme, nil
		close(h.done)
		return h
	}

	f.postTask(func() { f.onFetch(h, timeout, p.OCSPRequestBody, p.OCSPVerb) })
	return h
}

func isAllowedSchemeString(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return isAllowedScheme(u)
}

// onFetch runs on the reactor: find-or-create the Job for h's key and
// attach h to it. Creating a Job and starting its HTTP round trip
// happen together, so a Job is never left registered without work in
// flight for it.
func (f *Fetcher) onFetch(h *Handle, timeout time.Duration, ocspBody []byte, ocspVerb OCSPVerb) {
	if j, ok := f.registry.find(h.key); ok {
		f.logger.Printf("certnet: coalescing fetch for %s onto in-flight job", h.key.URL)
		j.attach(h)
		return
	}
	f.logger.Printf("certnet: starting fetch %s %s", h.key.Method, h.key.URL)
	j := newJob(f, h.key, timeout, ocspBody, ocspVerb)
	f.registry.insert(j)
	j.attach(h)
	j.start()
}

// Shutdown stops the reactor and aborts every in-flight Job, delivering
// Aborted to every still-waiting Handle. It returns once the reactor
// has exited or ctx is done, whichever comes first.
func (f *Fetcher) Shutdown(ctx context.Context) error {
	f.stopOnce.Do(func() { close(f.stopped) })
	select {
	case <-f.exited:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
