// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package prober classifies a clip's preview artifact as "generated" vs
"placeholder" (C8), fanning out over a bounded worker pool.

Protocol :

 1. HTTP GET with Range: bytes=0-0. From Content-Range (206) or
 Content-Length (200), read total size N. Any non-success response means
 not generated.
 2. If N != 1199 (the known placeholder byte-length), decide by N >= 5120.
 3. If N == 1199, fetch the whole body and compare its MD5 against the known
 placeholder digest to avoid false negatives on legitimate 1199-byte
 previews.
*/
package prober

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/time/rate"

	"github.com/mirrorstash/mirrorstash/internal/platform/constants"
)

// PlaceholderSize is the known byte-length of the placeholder preview that
// requires a second, disambiguating MD5 check.
const PlaceholderSize = 1199

// PlaceholderMD5 is the MD5 digest (hex) of the known placeholder preview
// body.
const PlaceholderMD5 = "c4a2e6b6547057dd0ef0c7d7e3c420d4"

// generatedThreshold: sizes at or above this are classified generated
// without a body fetch ( step 2).
const generatedThreshold = 5120

// Prober fans a list of preview URLs out over a bounded worker pool and
// classifies each as generated or placeholder.
type Prober struct {
	httpClient *http.Client
	concurrency int
	limiter *rate.Limiter
	log *slog.Logger
}

// Option configures a Prober.
type Option func(*Prober)

// WithConcurrency overrides the default bounded worker-pool size (10).
func WithConcurrency(n int) Option {
	return func(p *Prober) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithRateLimiter throttles outbound requests to one upstream, reusing the
// teacher's golang.org/x/time/rate middleware dependency instead of
// hand-rolling a token bucket.
func WithRateLimiter(l *rate.Limiter) Option {
	return func(p *Prober) { p.limiter = l }
}

// New constructs a Prober with a 5s-per-request HTTP client .
func New(log *slog.Logger, opts ...Option) *Prober {
	p := &Prober{
		httpClient: &http.Client{Timeout: constants.ProberRequestTimeout},
		concurrency: 10,
		log: log,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result is one URL's classification.
type Result struct {
	URL string
	IsGenerated bool
	Err error
}

// ProbeAll classifies every url in urls concurrently, bounded by the
// configured pool size, returning a url -> isGenerated map. URLs that error
// are omitted from the map but logged.
func (p *Prober) ProbeAll(ctx context.Context, urls []string) (map[string]bool, error) {
	pool, err := ants.NewPool(p.concurrency)
	if err != nil {
		return nil, fmt.Errorf("prober: create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		mu sync.Mutex
		wg sync.WaitGroup
		out = make(map[string]bool, len(urls))
	)

	for _, u := range urls {
		u := u
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if p.limiter != nil {
				if err := p.limiter.Wait(ctx); err != nil {
					return
				}
			}
			generated, err := p.probeOne(ctx, u)
			if err != nil {
				p.log.Warn("prober: probe failed", slog.String("url", redactURL(u)), slog.Any("error", err))
				return
			}
			mu.Lock()
			out[u] = generated
			mu.Unlock()
		})
		if submitErr != nil {
			wg.Done()
			p.log.Warn("prober: submit failed", slog.Any("error", submitErr))
		}
	}
	wg.Wait()
	return out, nil
}

// Probe classifies a single URL.
func (p *Prober) Probe(ctx context.Context, url string) (bool, error) {
	return p.probeOne(ctx, url)
}

func (p *Prober) probeOne(ctx context.Context, url string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.ProberRequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("prober: build request: %w", err)
	}
	req.Header.Set("Range", "bytes=0-0")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("prober: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return false, nil
	}

	size, ok := parseSize(resp)
	if !ok {
		io.Copy(io.Discard, resp.Body)
		return false, fmt.Errorf("prober: response missing size information")
	}

	if size != PlaceholderSize {
		return size >= generatedThreshold, nil
	}

	return p.resolveByMD5(ctx, url)
}

// resolveByMD5 re-fetches the full body (no Range header) and disambiguates
// a 1199-byte response by comparing its MD5 to the known placeholder digest.
func (p *Prober) resolveByMD5(ctx context.Context, url string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("prober: build full-body request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("prober: full-body request: %w", err)
	}
	defer resp.Body.Close()

	h := md5.New()
	if _, err := io.Copy(h, resp.Body); err != nil {
		return false, fmt.Errorf("prober: hash body: %w", err)
	}
	digest := hex.EncodeToString(h.Sum(nil))
	return digest != PlaceholderMD5, nil
}

// parseSize reads the total resource size from either a 206 Content-Range
// header (bytes 0-0/N) or a 200 Content-Length header.
func parseSize(resp *http.Response) (int, bool) {
	if cr := resp.Header.Get("Content-Range"); cr != "" {
		if idx := strings.LastIndex(cr, "/"); idx != -1 && idx+1 < len(cr) {
			if n, err := strconv.Atoi(strings.TrimSpace(cr[idx+1:])); err == nil {
				return n, true
			}
		}
	}
	if cl := resp.Header.Get("Content-Length"); cl != "" {
		if n, err := strconv.Atoi(cl); err == nil {
			return n, true
		}
	}
	return 0, false
}

func redactURL(u string) string {
	if idx := strings.Index(u, "?"); idx != -1 {
		return u[:idx]
	}
	return u
}
