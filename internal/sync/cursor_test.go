// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

/*
TestNormalizeCursor covers the timezone-stripping and sub-second-padding
policy: both must apply independently of one another, and any existing
fractional-seconds suffix must be replaced with ".999", not left alone.
*/
func TestNormalizeCursor(t *testing.T) {
	tests := []struct {
		name string
		raw string
		want string
	}{
		{"empty", "", ""},
		{"bare_seconds_gets_padded", "2026-07-31T10:00:00", "2026-07-31T10:00:00.999"},
		{"already_has_fraction", "2026-07-31T10:00:00.123", "2026-07-31T10:00:00.999"},
		{"trailing_z_stripped", "2026-07-31T10:00:00Z", "2026-07-31T10:00:00.999"},
		{"positive_offset_stripped", "2026-07-31T10:00:00+07:00", "2026-07-31T10:00:00.999"},
		{"negative_offset_stripped", "2026-07-31T10:00:00-05:00", "2026-07-31T10:00:00.999"},
		{"fraction_and_z_stripped", "2026-07-31T10:00:00.500Z", "2026-07-31T10:00:00.999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeCursor(tt.raw))
		})
	}
}

/*
TestCursorTracker_MaxObservedWins checks that the tracker keeps the
largest normalized value seen across a page-walk, not simply the last
one observed (upstream pages aren't guaranteed strictly increasing).
*/
func TestCursorTracker_MaxObservedWins(t *testing.T) {
	c := &cursorTracker{}
	c.observe("2026-07-31T10:00:00")
	c.observe("2026-07-31T09:00:00") // lower, observed later
	c.observe("2026-07-31T11:00:00") // higher

	got := c.next(3, nil)
	if assert.NotNil(t, got) {
		assert.Equal(t, "2026-07-31T11:00:00.999", *got)
	}
}

/*
TestCursorTracker_ZeroItemsNeverAdvances checks the invariant that a
zero-item run must not move the stored cursor forward, even if a cursor
value was technically observed.
*/
func TestCursorTracker_ZeroItemsNeverAdvances(t *testing.T) {
	c := &cursorTracker{}
	c.observe("2026-07-31T10:00:00")

	previous := "2026-07-01T00:00:00.000"
	got := c.next(0, &previous)

	if assert.NotNil(t, got) {
		assert.Equal(t, previous, *got)
	}
}

/*
TestCursorTracker_NothingObservedKeepsPrevious checks that an empty page
walk (no cursor values observed at all) also leaves the previous cursor
untouched, independent of itemCount.
*/
func TestCursorTracker_NothingObservedKeepsPrevious(t *testing.T) {
	c := &cursorTracker{}
	previous := "2026-07-01T00:00:00.000"

	got := c.next(5, &previous)

	if assert.NotNil(t, got) {
		assert.Equal(t, previous, *got)
	}
	assert.Nil(t, (&cursorTracker{}).next(5, nil))
}
