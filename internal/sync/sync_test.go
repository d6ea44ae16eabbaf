// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

/*
TestValidID checks the SQL-safety gate every upstream id must pass before
being used in a query or reconstructed junction row.
*/
func TestValidID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"empty", "", false},
		{"simple", "abc123", true},
		{"with_underscore_and_dash", "abc_123-xyz", true},
		{"contains_space", "abc 123", false},
		{"contains_quote", "abc';drop", false},
		{"unicode", "日本語", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validID(tt.id))
		})
	}
}

/*
TestTouchesDerivationScope checks the trigger condition for running the
post-sync derivation sequence after a non-full run: at least one scene,
gallery, or image batch must have been processed.
*/
func TestTouchesDerivationScope(t *testing.T) {
	tests := []struct {
		name    string
		touched map[string]int
		want    bool
	}{
		{"nothing_touched", map[string]int{}, false},
		{"only_performer", map[string]int{"performer": 4}, false},
		{"scene_touched", map[string]int{"scene": 1}, true},
		{"gallery_touched", map[string]int{"gallery": 1}, true},
		{"image_touched", map[string]int{"image": 1}, true},
		{"zero_count_does_not_count", map[string]int{"scene": 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, touchesDerivationScope(tt.touched))
		})
	}
}
