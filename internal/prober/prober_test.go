// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package prober_test

import (
	"context"
	"crypto/md5"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirrorstash/mirrorstash/internal/prober"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestProbe_LargeBody_IsGenerated(t *testing.T) {
	body := make([]byte, 6000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes 0-0/%d", len(body)))
		w.WriteHeader(http.StatusPartialContent)
		w.Write(body[:1])
	}))
	defer srv.Close()

	p := prober.New(testLogger())
	generated, err := p.Probe(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.True(t, generated)
}

func TestProbe_SmallBody_NotGenerated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "2000")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := prober.New(testLogger())
	generated, err := p.Probe(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.False(t, generated)
}

func TestProbe_1199_DifferentMD5_IsGenerated(t *testing.T) {
	body := make([]byte, prober.PlaceholderSize)
	for i := range body {
		body[i] = byte(i % 251)
	}
	require.NotEqual(t, prober.PlaceholderMD5, fmt.Sprintf("%x", md5.Sum(body)))

	srv := rangeAwareServer(body)
	defer srv.Close()

	p := prober.New(testLogger())
	generated, err := p.Probe(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.True(t, generated)
}

func TestProbe_NonSuccess_NotGenerated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := prober.New(testLogger())
	generated, err := p.Probe(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.False(t, generated)
}

func TestProbeAll_BoundedConcurrency(t *testing.T) {
	var inFlight, maxInFlight int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&inFlight, 1)
		defer atomic.AddInt32(&inFlight, -1)
		for {
			m := atomic.LoadInt32(&maxInFlight)
			if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		w.Header().Set("Content-Length", "6000")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	urls := []string{srv.URL + "/a", srv.URL + "/b", srv.URL + "/c"}
	p := prober.New(testLogger(), prober.WithConcurrency(2))
	out, err := p.ProbeAll(context.Background(), urls)
	require.NoError(t, err)
	assert.Len(t, out, 3)
	for _, u := range urls {
		assert.True(t, out[u])
	}
	assert.LessOrEqual(t, atomic.LoadInt32(&maxInFlight), int32(2))
}

// rangeAwareServer responds to a Range: bytes=0-0 request with the
// placeholder size header, and to a non-range request with the full body —
// mirroring the two-request probe protocol.
func rangeAwareServer(body []byte) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Range") != "" {
			w.Header().Set("Content-Range", fmt.Sprintf("bytes 0-0/%d", len(body)))
			w.WriteHeader(http.StatusPartialContent)
			w.Write(body[:1])
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	}))
}
