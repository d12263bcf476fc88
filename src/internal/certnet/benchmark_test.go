// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package certnet_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/H0llyW00dzZ/certnet-fetcher/src/internal/certnet"
)

func BenchmarkFetchCAIssuers_UniqueURLs(b *testing.B) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("intermediate cert bytes"))
	}))
	defer srv.Close()

	f := newTestFetcher()
	defer f.Shutdown(context.Background())

	b.ResetTimer()
	for i := 0; b.Loop(); i++ {
		h := f.FetchCAIssuers(fmt.Sprintf("%s/%d", srv.URL, i), certnet.FetchParams{})
		if _, _, err := h.WaitForResult(context.Background()); err != nil {
			b.Fatalf("WaitForResult() error = %v", err)
		}
	}
}

// BenchmarkFetchCAIssuers_Coalesced hits a single key repeatedly from
// one goroutine, so the registry never has more than one live job but
// still pays attach/detach overhead per call.
func BenchmarkFetchCAIssuers_Coalesced(b *testing.B) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("intermediate cert bytes"))
	}))
	defer srv.Close()

	f := newTestFetcher()
	defer f.Shutdown(context.Background())

	b.ResetTimer()
	for b.Loop() {
		h := f.FetchCAIssuers(srv.URL, certnet.FetchParams{})
		if _, _, err := h.WaitForResult(context.Background()); err != nil {
			b.Fatalf("WaitForResult() error = %v", err)
		}
	}
}

// BenchmarkFetchCAIssuers_ConcurrentCoalescing measures registry
// contention when many goroutines race to attach to the same in-flight
// job, the scenario request coalescing exists for.
func BenchmarkFetchCAIssuers_ConcurrentCoalescing(b *testing.B) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("intermediate cert bytes"))
	}))
	defer srv.Close()

	f := newTestFetcher()
	defer f.Shutdown(context.Background())

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			h := f.FetchCAIssuers(srv.URL, certnet.FetchParams{})
			if _, _, err := h.WaitForResult(context.Background()); err != nil {
				b.Fatalf("WaitForResult() error = %v", err)
			}
		}
	})
}

func BenchmarkHandle_CloseIdempotent(b *testing.B) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	f := newTestFetcher()
	defer f.Shutdown(context.Background())

	b.ResetTimer()
	for i := 0; b.Loop(); i++ {
		h := f.FetchCAIssuers(fmt.Sprintf("%s/%d", srv.URL, i), certnet.FetchParams{})
		h.Close()
	}
}
