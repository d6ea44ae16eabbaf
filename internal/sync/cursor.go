// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sync

import "strings"

// normalizeCursor applies the sync engine's cursor policy to a raw upstream
// `updated_at` string: strip any timezone suffix (upstream instances
// are assumed single-timezone per deployment, so the offset carries no
// comparison value and only risks a lexical mismatch against a
// differently-formatted one), then replace any fractional-seconds suffix
// (or append one to a bare-seconds timestamp) with ".999" so a later
// lexical ">" comparison never re-fetches a row already seen within the
// same whole second.
func normalizeCursor(raw string) string {
	if raw == "" {
		return raw
	}
	s := raw
	if idx := strings.IndexAny(s, "Zz"); idx != -1 && idx == len(s)-1 {
		s = s[:idx]
	} else if idx := strings.LastIndexAny(s, "+-"); idx > 10 {
		s = s[:idx]
	}
	if idx := strings.LastIndex(s, "."); idx != -1 {
		s = s[:idx]
	}
	s += ".999"
	return s
}

// cursorTracker accumulates the maximum raw (pre-normalization) cursor
// observed across a page-walk: the next run's cursor is the maximum
// observed value, not simply the last page's, since upstream pages are
// not guaranteed strictly increasing within a page.
type cursorTracker struct {
	maxRaw string
	seen bool
}

func (c *cursorTracker) observe(raw string) {
	if raw == "" {
		return
	}
	if !c.seen || normalizeCursor(raw) > normalizeCursor(c.maxRaw) {
		c.maxRaw = raw
		c.seen = true
	}
}

// next returns the cursor to persist after a run: the max observed value,
// normalized. itemCount is the number of items the run actually processed;
// a zero-item run must never advance the stored cursor (it would
// otherwise skip a window where nothing has changed yet but will).
func (c *cursorTracker) next(itemCount int, previous *string) *string {
	if itemCount == 0 || !c.seen {
		return previous
	}
	v := normalizeCursor(c.maxRaw)
	return &v
}
