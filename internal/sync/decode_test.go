// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirrorstash/mirrorstash/internal/upstream"
)

/*
TestGetIDs_BothShapes checks that a junction field decodes the same
whether upstream sends bare id strings or nested {"id": ...} objects, and
that an absent or wrongly-typed field decodes to nil rather than erroring
(upstream schema growth must never break the mirror).
*/
func TestGetIDs_BothShapes(t *testing.T) {
	tests := []struct {
		name string
		raw upstream.RawObject
		want []string
	}{
		{"bare_strings", upstream.RawObject{"tag_ids": []any{"t1", "t2"}}, []string{"t1", "t2"}},
		{"nested_refs", upstream.RawObject{"tag_ids": []any{
			map[string]any{"id": "t1"}, map[string]any{"id": "t2"},
		}}, []string{"t1", "t2"}},
		{"mixed_shapes", upstream.RawObject{"tag_ids": []any{
			"t1", map[string]any{"id": "t2"},
		}}, []string{"t1", "t2"}},
		{"absent_field", upstream.RawObject{}, nil},
		{"wrong_type", upstream.RawObject{"tag_ids": "not-a-list"}, nil},
		{"malformed_ref_dropped", upstream.RawObject{"tag_ids": []any{map[string]any{"name": "no id field"}}}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, getIDs(tt.raw, "tag_ids"))
		})
	}
}

/*
TestGetRefID_BothShapes checks single-reference decoding parity with
getIDs: a bare id string or a nested {"id": ...} object.
*/
func TestGetRefID_BothShapes(t *testing.T) {
	tests := []struct {
		name string
		raw upstream.RawObject
		want string
	}{
		{"bare_string", upstream.RawObject{"studio": "s1"}, "s1"},
		{"nested_ref", upstream.RawObject{"studio": map[string]any{"id": "s1"}}, "s1"},
		{"absent", upstream.RawObject{}, ""},
		{"nested_missing_id", upstream.RawObject{"studio": map[string]any{"name": "x"}}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, getRefID(tt.raw, "studio"))
		})
	}
}

/*
TestGetFloat64_AcceptsIntOrFloat checks upstream's loosely-typed numeric
encoding (some fields arrive as JSON numbers decoded to float64, some
constructed in tests as plain int) both decode correctly.
*/
func TestGetFloat64_AcceptsIntOrFloat(t *testing.T) {
	assert.Equal(t, 42.0, getFloat64(upstream.RawObject{"n": 42}, "n"))
	assert.Equal(t, 42.5, getFloat64(upstream.RawObject{"n": 42.5}, "n"))
	assert.Equal(t, 0.0, getFloat64(upstream.RawObject{}, "n"))
}

/*
TestDecodeScene_UsesFirstPhashAndNeverSetsInheritedTags checks two of the
scene decoder's documented invariants: the merge fingerprint is the first
entry of all_phash, and inherited_tag_ids is always seeded empty (it is
computed later by derivation, never trusted from upstream).
*/
func TestDecodeScene_UsesFirstPhashAndNeverSetsInheritedTags(t *testing.T) {
	raw := upstream.RawObject{
		"id": "scene-1",
		"title": "A Scene",
		"all_phash": []any{"hash-a", "hash-b"},
		"studio": map[string]any{"id": "studio-1"},
		"updated_at": "2026-07-31T00:00:00Z",
	}

	d := decodeScene(raw, "inst-1")

	assert.Equal(t, "hash-a", d.Phash)
	assert.Equal(t, "scene-1", d.Row.ID)
	require.GreaterOrEqual(t, len(d.Row.Values), 23)
	// inherited_tag_ids is always seeded []string{}, the third-to-last value.
	assert.Equal(t, []string{}, d.Row.Values[len(d.Row.Values)-3])
}

/*
TestDecodeScene_EmptyStudioRefLeavesInstanceEmpty checks that a scene with
no studio reference never fabricates a studio instance value (a non-empty
instance with an empty id would violate the composite-key invariant).
*/
func TestDecodeScene_EmptyStudioRefLeavesInstanceEmpty(t *testing.T) {
	raw := upstream.RawObject{"id": "scene-1"}

	d := decodeScene(raw, "inst-1")

	studioID := d.Row.Values[5]
	studioInstance := d.Row.Values[6]
	assert.Equal(t, "", studioID)
	assert.Equal(t, "", studioInstance)
}

/*
TestJunctionTableFor_UnknownKindFails checks the default branch returns
ok=false for a JunctionKind with no mapped schema table.
*/
func TestJunctionTableFor_UnknownKindFails(t *testing.T) {
	_, ok := junctionTableFor("not-a-real-junction-kind")
	assert.False(t, ok)
}

/*
TestTableForKind_ClipMapsToTable checks that Clip maps to a table with
columns (sync must replicate it) even though it has no browsable list
endpoint of its own (clips are only reachable via a scene's clips
sub-route).
*/
func TestTableForKind_ClipMapsToTable(t *testing.T) {
	table, columns, ok := tableForKind("clip")
	assert.True(t, ok)
	assert.NotEmpty(t, table)
	assert.NotEmpty(t, columns)
}

/*
TestOwnedJunctions_TagOwnsHierarchyFromChildSide checks the one
documented exception to "owned from the parent side": tag_hierarchy is
maintained keyed by the tag as the child (right-hand) id, since a sync
batch of tags only knows each tag's own parents, not its children.
*/
func TestOwnedJunctions_TagOwnsHierarchyFromChildSide(t *testing.T) {
	got := ownedJunctions("tag")
	require.Len(t, got, 1)
	assert.True(t, got[0].bySide)
}

/*
TestOwnedJunctions_ClipOwnsNone checks that clip, having no junction
table of its own, returns nil rather than an empty-but-non-nil slice.
*/
func TestOwnedJunctions_ClipOwnsNone(t *testing.T) {
	assert.Nil(t, ownedJunctions("clip"))
}
