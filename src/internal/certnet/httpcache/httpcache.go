// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package httpcache supplies the HTTP-layer cache collaborator that
// spec.md places outside the CertNetFetcher core ("relies on the HTTP
// layer's cache"). Cache is an http.RoundTripper decorator that
// honors Cache-Control max-age/no-store and Expires, so a Job's
// underlying request can still be answered after the origin server
// has gone away — the scenario a Job's own timeout/size-cap logic has
// no way to help with on its own.
package httpcache

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// entry is a cached response, grounded on the teacher's CRLCacheEntry
// (x509chain's cache.go) but generalized to any cacheable response
// rather than only CRL bytes.
type entry struct {
	status    int
	header    http.Header
	body      []byte
	fetchedAt time.Time
	expiresAt time.Time
	url       string
}

func (e *entry) isFresh(now time.Time) bool { return e.expiresAt.After(now) }

// Metrics tracks cache performance, mirroring CRLCacheMetrics.
type Metrics struct {
	Size      int64
	Hits      int64
	Misses    int64
	Evictions int64
	Cleanups  int64
}

// Config mirrors the teacher's CRLCacheConfig.
type Config struct {
	// MaxSize caps the number of cached responses; 0 means unlimited.
	MaxSize int
	// CleanupInterval is how often expired entries are swept.
	CleanupInterval time.Duration
}

func defaultConfig() Config {
	return Config{MaxSize: 200, CleanupInterval: time.Hour}
}

// Cache is an http.RoundTripper decorator implementing an RFC
// 7234-lite response cache keyed by request URL. Unlike the teacher's
// package-level crlCache, state lives on the instance — a process can
// run more than one Fetcher, each with its own cache, without sharing
// a global map guarded by a package-level mutex.
type Cache struct {
	next http.RoundTripper

	mu      sync.RWMutex
	entries map[string]*entry
	order   []string
	cfg     Config
	metrics Metrics

	stop     chan struct{}
	stopOnce sync.Once
}

// New wraps next (http.DefaultTransport if nil) with a response cache
// and starts its background cleanup goroutine. Call Close to stop
// that goroutine; an unclosed Cache leaks it for the life of the
// process, same as the teacher's init()-started cleanup loop, which
// this type improves on only by making the leak optional.
func New(next http.RoundTripper, cfg Config) *Cache {
	if next == nil {
		next = http.DefaultTransport
	}
	if cfg.MaxSize < 0 {
		cfg.MaxSize = 0
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = defaultConfig().CleanupInterval
	}
	c := &Cache{
		next:    next,
		entries: make(map[string]*entry),
		cfg:     cfg,
		stop:    make(chan struct{}),
	}
	go c.cleanupLoop()
	return c
}

// Close stops the cache's background cleanup goroutine. Safe to call
// more than once.
func (c *Cache) Close() error {
	c.stopOnce.Do(func() { close(c.stop) })
	return nil
}

func (c *Cache) cleanupLoop() {
	t := time.NewTicker(c.cfg.CleanupInterval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			c.cleanupExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *Cache) cleanupExpired() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	var expired []string
	for url, e := range c.entries {
		if e.expiresAt.Before(now) {
			expired = append(expired, url)
		}
	}
	for _, url := range expired {
		delete(c.entries, url)
		c.removeFromOrder(url)
	}
	if len(expired) > 0 {
		atomic.AddInt64(&c.metrics.Cleanups, int64(len(expired)))
	}
}

func (c *Cache) removeFromOrder(url string) {
	for i, u := range c.order {
		if u == url {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

func (c *Cache) touchOrder(url string) {
	c.removeFromOrder(url)
	c.order = append(c.order, url)
}

// RoundTrip serves a fresh cached entry when one exists, and on a
// cache miss (or a non-GET request, which is never cached) delegates
// to the wrapped transport and stores the result if the response's
// cache-control headers allow it.
func (c *Cache) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return c.next.RoundTrip(req)
	}

	key := req.URL.String()
	now := time.Now()

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && e.isFresh(now) {
		c.mu.Lock()
		atomic.AddInt64(&c.metrics.Hits, 1)
		c.touchOrder(key)
		c.mu.Unlock()
		return e.toResponse(req), nil
	}

	c.mu.Lock()
	atomic.AddInt64(&c.metrics.Misses, 1)
	c.mu.Unlock()

	resp, err := c.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	if resp.StatusCode == http.StatusOK {
		if expiresAt, cacheable := cachePolicy(resp.Header, now); cacheable {
			c.store(key, resp, body, now, expiresAt)
		}
	}

	return resp, nil
}

func (c *Cache) store(key string, resp *http.Response, body []byte, now, expiresAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for c.cfg.MaxSize > 0 && len(c.entries) >= c.cfg.MaxSize {
		if len(c.order) == 0 {
			break
		}
		lru := c.order[0]
		delete(c.entries, lru)
		c.order = c.order[1:]
		atomic.AddInt64(&c.metrics.Evictions, 1)
	}

	bodyCopy := make([]byte, len(body))
	copy(bodyCopy, body)
	c.entries[key] = &entry{
		status:    resp.StatusCode,
		header:    resp.Header.Clone(),
		body:      bodyCopy,
		fetchedAt: now,
		expiresAt: expiresAt,
		url:       key,
	}
	c.touchOrder(key)
}

func (e *entry) toResponse(req *http.Request) *http.Response {
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", e.status, http.StatusText(e.status)),
		StatusCode:    e.status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        e.header.Clone(),
		Body:          io.NopCloser(bytes.NewReader(e.body)),
		ContentLength: int64(len(e.body)),
		Request:       req,
	}
}

// cachePolicy implements the RFC 7234-lite subset spec.md's cache
// collaborator needs: Cache-Control: no-store disables caching
// outright, max-age=N takes priority over Expires when both are
// present, and a bare Expires header is honored when Cache-Control is
// absent. Anything else (no header at all) is treated as
// non-cacheable, since this layer exists to serve scenario 7's
// "origin went away" case, not to guess at implicit freshness.
func cachePolicy(h http.Header, now time.Time) (expiresAt time.Time, cacheable bool) {
	cc := h.Get("Cache-Control")
	for _, directive := range strings.Split(cc, ",") {
		directive = strings.TrimSpace(strings.ToLower(directive))
		if directive == "no-store" || directive == "no-cache" {
			return time.Time{}, false
		}
		if strings.HasPrefix(directive, "max-age=") {
			secs, err := strconv.Atoi(strings.TrimPrefix(directive, "max-age="))
			if err == nil && secs >= 0 {
				return now.Add(time.Duration(secs) * time.Second), true
			}
		}
	}

	if exp := h.Get("Expires"); exp != "" {
		if t, err := http.ParseTime(exp); err == nil && t.After(now) {
			return t, true
		}
	}

	return time.Time{}, false
}

// Metrics returns a snapshot of the cache's counters.
func (c *Cache) Metrics() Metrics {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m := c.metrics
	m.Size = int64(len(c.entries))
	return m
}

// Stats returns a formatted summary, grounded on the teacher's
// GetCRLCacheStats.
func (c *Cache) Stats() string {
	m := c.Metrics()
	total := m.Hits + m.Misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(m.Hits) / float64(total) * 100
	}
	return fmt.Sprintf("HTTP cache: %d/%d entries, %.1f%% hit rate (%d hits, %d misses), %d evictions, %d cleanups",
		m.Size, c.cfg.MaxSize, hitRate, m.Hits, m.Misses, m.Evictions, m.Cleanups)
}
