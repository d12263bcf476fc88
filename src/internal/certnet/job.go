// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package certnet

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/H0llyW00dzZ/certnet-fetcher/src/internal/helper/gc"
)

// job is the reactor-private unit of in-flight work. Every field is
// touched only by the reactor goroutine, except for the read-only
// copies (key, timeout, maxBytes, ocspBody, ocspVerb) handed to the
// per-job HTTP goroutine at start() time — those are never mutated
// after start() returns, so sharing them needs no lock. The pooled
// response buffer is acquired and released inside doRequest itself
// rather than stored here, so a job that never reaches the read loop
// (disallowed scheme, a non-200 status, a transport error) never holds
// one.
type job struct {
	key      Key
	f        *Fetcher
	handles  map[uint64]*Handle
	order    []uint64
	done     bool
	timer    *time.Timer
	cancel   context.CancelFunc
	timeout  time.Duration
	maxBytes int
	ocspBody []byte
	ocspVerb OCSPVerb
}

func newJob(f *Fetcher, key Key, timeout time.Duration, ocspBody []byte, ocspVerb OCSPVerb) *job {
	return &job{
		key:      key,
		f:        f,
		handles:  make(map[uint64]*Handle),
		timeout:  timeout,
		maxBytes: key.MaxResponseBytes,
		ocspBody: ocspBody,
		ocspVerb: ocspVerb,
	}
}

// attach registers h as waiting on this job's completion. Invariant
// I3 depends on every attachment happening before the job's eventual
// fanOut() call snapshots the handle set — the reactor guarantees this
// simply by never running attach and fanOut concurrently with each
// other.
func (j *job) attach(h *Handle) {
	j.handles[h.id] = h
	j.order = append(j.order, h.id)
}

// detach removes h from this job and reports whether the job now has
// no remaining waiters. A caller-initiated cancellation of the last
// remaining Handle on a still-running Job should tear the Job down
// entirely; the reactor does that by calling abort() when detach
// returns true on a job that is not yet done.
func (j *job) detach(id uint64) (empty bool) {
	delete(j.handles, id)
	for i, hid := range j.order {
		if hid == id {
			j.order = append(j.order[:i], j.order[i+1:]...)
			break
		}
	}
	return len(j.handles) == 0
}

// start arms the deadline timer and launches the HTTP round trip on
// its own goroutine, since Go's http.Client.Do blocks and the reactor
// must never block. The goroutine reports its outcome back to the
// reactor as a posted closure, preserving the single-writer
// discipline over job/registry state.
func (j *job) start() {
	ctx, cancel := context.WithCancel(context.Background())
	j.cancel = cancel
	j.timer = time.AfterFunc(j.timeout, func() {
		j.f.postTask(func() { j.f.onJobTimeout(j) })
	})
	go j.runHTTP(ctx)
}

func (j *job) runHTTP(ctx context.Context) {
	kind, body, err := j.doRequest(ctx)
	if err != nil && kind == OK {
		kind = HTTPFailed
	}
	j.f.postTask(func() { j.f.onJobHTTPDone(j, kind, body) })
}

func (j *job) doRequest(ctx context.Context) (ErrorKind, []byte, error) {
	req, kind, err := j.buildRequest(ctx)
	if err != nil {
		return kind, nil, err
	}

	resp, err := j.f.client.Do(req)
	if err != nil {
		if errors.Is(err, errDisallowedScheme) {
			return DisallowedURLScheme, nil, err
		}
		return HTTPFailed, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return HTTPFailed, nil, nil
	}

	buf := gc.Default.Get()
	defer func() {
		buf.Reset()
		gc.Default.Put(buf)
	}()

	if _, err := io.CopyN(buf, resp.Body, int64(j.maxBytes)+1); err == nil {
		// A full cap+1 bytes were read without hitting EOF: the body
		// is at least one byte too large.
		return FileTooBig, nil, nil
	} else if !errors.Is(err, io.EOF) {
		return HTTPFailed, nil, err
	}

	out := make([]byte, len(buf.Bytes()))
	copy(out, buf.Bytes())
	return OK, out, nil
}

func (j *job) buildRequest(ctx context.Context) (*http.Request, ErrorKind, error) {
	if j.key.Method == OCSP && j.ocspVerb == OCSPVerbGET {
		u, err := ocspGETURL(j.key.URL, j.ocspBody)
		if err != nil {
			return nil, HTTPFailed, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, HTTPFailed, err
		}
		return req, OK, nil
	}
	if j.key.Method == OCSP {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, j.key.URL, bytes.NewReader(j.ocspBody))
		if err != nil {
			return nil, HTTPFailed, err
		}
		req.Header.Set("Content-Type", "application/ocsp-request")
		req.Header.Set("Accept", "application/ocsp-response")
		return req, OK, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, j.key.URL, nil)
	if err != nil {
		return nil, HTTPFailed, err
	}
	return req, OK, nil
}

// ocspGETURL implements the RFC 6960 Appendix A.1 GET encoding: the
// base64 (standard alphabet, padded) encoding of the DER request is
// URL-escaped and appended as an extra path segment.
func ocspGETURL(base string, der []byte) (string, error) {
	enc := base64.StdEncoding.EncodeToString(der)
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + url.PathEscape(enc), nil
}

// fanOut delivers a terminal result to every attached handle, removes
// the job from the registry, and marks it done so any in-flight
// timer/HTTP completion that arrives afterward becomes a no-op. It
// must run on the reactor goroutine.
func (j *job) fanOut(kind ErrorKind, body []byte) {
	if j.done {
		return
	}
	j.done = true
	if j.timer != nil {
		j.timer.Stop()
	}
	if j.cancel != nil {
		j.cancel()
	}
	j.f.registry.remove(j)
	handles := j.handles
	j.handles = nil
	for _, id := range j.order {
		if h, ok := handles[id]; ok {
			h.deliver(kind, body)
		}
	}
	j.order = nil
}

// abort tears down a job that still has no attached handles, e.g.
// because the sole caller cancelled before completion. It releases
// resources without delivering to anyone, since there is no one left
// to deliver to.
func (j *job) abort() {
	if j.done {
		return
	}
	j.done = true
	if j.timer != nil {
		j.timer.Stop()
	}
	if j.cancel != nil {
		j.cancel()
	}
	j.f.registry.remove(j)
}
