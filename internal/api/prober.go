// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"net/http"
	"strconv"

	"github.com/mirrorstash/mirrorstash/internal/mirror/store"
	"github.com/mirrorstash/mirrorstash/internal/platform/apperr"
	"github.com/mirrorstash/mirrorstash/internal/platform/respond"
	"github.com/mirrorstash/mirrorstash/internal/prober"
	"github.com/mirrorstash/mirrorstash/internal/rewrite"
)

// defaultReprobeBatch bounds how many ungenerated clips a single reprobe
// call classifies, keeping the admin request itself bounded in size even
// though ProbeAll fans its HTTP checks out concurrently.
const defaultReprobeBatch = 500

// ProberHandler serves the admin reprobe route.
type ProberHandler struct {
	store *store.Store
	prober *prober.Prober
}

// NewProberHandler constructs a ProberHandler.
func NewProberHandler(st *store.Store, p *prober.Prober) *ProberHandler {
	return &ProberHandler{store: st, prober: p}
}

type reprobeResult struct {
	Checked int `json:"checked"`
	Generated int `json:"generated_now"`
}

// Reprobe handles POST /v1/prober/reprobe: pulls every clip still marked
// ungenerated, range-checks its preview URL, and persists any newly
// generated verdicts.
func (h *ProberHandler) Reprobe(w http.ResponseWriter, r *http.Request) {
	if err := requireAdmin(r); err != nil {
		respond.Error(w, r, err)
		return
	}

	limit := defaultReprobeBatch
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	clips, err := h.store.ListUngeneratedClips(r.Context(), limit)
	if err != nil {
		respond.Error(w, r, apperr.Internal(err))
		return
	}
	if len(clips) == 0 {
		respond.OK(w, reprobeResult{})
		return
	}

	byURL := make(map[string]store.UngeneratedClip, len(clips))
	urls := make([]string, 0, len(clips))
	for _, c := range clips {
		url := rewrite.String(c.PreviewPath, c.Instance)
		byURL[url] = c
		urls = append(urls, url)
	}

	verdicts, err := h.prober.ProbeAll(r.Context(), urls)
	if err != nil {
		respond.Error(w, r, apperr.Internal(err))
		return
	}

	generated := 0
	for url, isGenerated := range verdicts {
		if !isGenerated {
			continue
		}
		clip, ok := byURL[url]
		if !ok {
			continue
		}
		if err := h.store.UpdateClipGenerated(r.Context(), clip.Instance, clip.ID, true); err != nil {
			continue
		}
		generated++
	}

	respond.OK(w, reprobeResult{Checked: len(clips), Generated: generated})
}
