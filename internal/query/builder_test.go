// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

/*
TestBuildIDSetClause_EmptyEmitsNoClause checks that a filter with no id
values degrades to "no restriction" rather than an always-false IN.
*/
func TestBuildIDSetClause_EmptyEmitsNoClause(t *testing.T) {
	ac := &argCounter{}
	f := Filter{Kind: FilterIDSet, Field: "id", IDSet: &IDSetFilter{Modifier: IDSetIncludes, IDs: nil}}

	c := buildIDSetClause(sceneSpec, "s", f, ac)

	assert.Equal(t, emptyClause(), c)
	assert.Equal(t, 0, ac.n)
}

/*
TestBuildIDSetClause_IncludesAndExcludes checks the ANY/ALL operator
selection and that the id slice is passed through as a single array arg.
*/
func TestBuildIDSetClause_IncludesAndExcludes(t *testing.T) {
	tests := []struct {
		name string
		modifier IDSetModifier
		wantOp string
	}{
		{"includes", IDSetIncludes, "= ANY"},
		{"excludes", IDSetExcludes, "!= ALL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ac := &argCounter{}
			f := Filter{Kind: FilterIDSet, Field: "id", IDSet: &IDSetFilter{Modifier: tt.modifier, IDs: []string{"a", "b"}}}

			c := buildIDSetClause(sceneSpec, "s", f, ac)

			assert.Contains(t, c.sql, tt.wantOp)
			assert.Contains(t, c.sql, "$1")
			assert.Equal(t, []any{[]string{"a", "b"}}, c.args)
		})
	}
}

/*
TestBuildTextClause_UnknownFieldEmitsNoClause checks the same
no-restriction degrade for a field absent from the kind's spec.
*/
func TestBuildTextClause_UnknownFieldEmitsNoClause(t *testing.T) {
	ac := &argCounter{}
	f := Filter{Kind: FilterText, Field: "not_a_real_field", Text: &TextFilter{Modifier: TextEquals, Value: "x"}}

	c := buildTextClause(sceneSpec, "s", f, ac)

	assert.Equal(t, emptyClause(), c)
}

/*
TestBuildJunctionClause_IncludesAll checks that every id gets its own
EXISTS clause, ANDed together rather than a single set-membership check
(so "has performer A and performer B", not "has A or B").
*/
func TestBuildJunctionClause_IncludesAll(t *testing.T) {
	ac := &argCounter{}
	f := Filter{
		Kind: FilterJunction, Field: "performer_ids",
		Junction: &JunctionFilter{Modifier: JunctionIncludesAll, IDs: []string{"p1", "p2"}},
	}

	c := buildJunctionClause(sceneSpec, "s", f, ac)

	assert.Equal(t, 2, len(c.args))
	assert.Equal(t, []any{"p1", "p2"}, c.args)
	assert.Contains(t, c.sql, "EXISTS")
	assert.NotContains(t, c.sql, " OR ")
}

/*
TestBuildJunctionClause_UnknownFieldEmitsNoClause mirrors the text-clause
case for a junction name not present in the kind's spec (e.g. "group_ids"
against a kind with no group junction).
*/
func TestBuildJunctionClause_UnknownFieldEmitsNoClause(t *testing.T) {
	ac := &argCounter{}
	f := Filter{Kind: FilterJunction, Field: "not_a_junction", Junction: &JunctionFilter{Modifier: JunctionIncludes, IDs: []string{"x"}}}

	c := buildJunctionClause(tagSpec, "t", f, ac)

	assert.Equal(t, emptyClause(), c)
}

/*
TestBuildFavoriteClause_AnonymousDegrades checks the documented anonymous
behavior: favorite=true can never match (FALSE), favorite=false always
matches (TRUE), with no overlay reference or user-id arg touched.
*/
func TestBuildFavoriteClause_AnonymousDegrades(t *testing.T) {
	trueVal, falseVal := true, false

	c := buildFavoriteClause(Filter{Kind: FilterFavorite, Favorite: &trueVal}, Options{UserID: ""})
	assert.Equal(t, "FALSE", c.sql)
	assert.Empty(t, c.args)

	c = buildFavoriteClause(Filter{Kind: FilterFavorite, Favorite: &falseVal}, Options{UserID: ""})
	assert.Equal(t, "TRUE", c.sql)
	assert.Empty(t, c.args)
}

/*
TestBuildFavoriteClause_AuthenticatedMapsTrueAndFalse checks spec.md §4.5's
favorite-boolean mapping: true -> overlay.favorite = 1 (here: = TRUE),
false -> overlay.favorite = 0 OR NULL, against the "ov" alias joined by
buildRatingOverlayJoin.
*/
func TestBuildFavoriteClause_AuthenticatedMapsTrueAndFalse(t *testing.T) {
	trueVal, falseVal := true, false

	c := buildFavoriteClause(Filter{Kind: FilterFavorite, Favorite: &trueVal}, Options{UserID: "user-1"})
	assert.Equal(t, "ov.favorite = TRUE", c.sql)
	assert.Empty(t, c.args)

	c = buildFavoriteClause(Filter{Kind: FilterFavorite, Favorite: &falseVal}, Options{UserID: "user-1"})
	assert.Equal(t, "(ov.favorite = FALSE OR ov.favorite IS NULL)", c.sql)
	assert.Empty(t, c.args)
}

/*
TestBuildRatingOverlayJoin_SkipsWhenAnonymous checks that the rating/
favorite overlay join is only emitted for an authenticated caller, and
otherwise carries the user id and entity kind as its join args.
*/
func TestBuildRatingOverlayJoin_SkipsWhenAnonymous(t *testing.T) {
	ac := &argCounter{}
	c := buildRatingOverlayJoin(sceneSpec, "s", Options{UserID: ""}, ac)
	assert.Equal(t, emptyClause(), c)

	ac = &argCounter{}
	c = buildRatingOverlayJoin(sceneSpec, "s", Options{UserID: "user-1"}, ac)
	assert.Contains(t, c.sql, "LEFT JOIN")
	assert.Contains(t, c.sql, " ov ")
	assert.Equal(t, []any{"user-1", string(sceneSpec.exclusionType)}, c.args)
}

/*
TestBuildOrderBy_UnknownKeyFallsBackToDefault checks that an unrecognized
sort key never errors — it silently falls back to the kind's default sort.
*/
func TestBuildOrderBy_UnknownKeyFallsBackToDefault(t *testing.T) {
	want := buildOrderBy(sceneSpec, "s", Sort{Key: sceneSpec.defaultSort})
	got := buildOrderBy(sceneSpec, "s", Sort{Key: "totally_not_a_sort_key"})

	assert.Equal(t, want, got)
}

/*
TestBuildInstanceClause_PrecedenceAndUnscoped checks that a specific
instance id takes precedence over an allowed-instances set, and that
neither being set leaves the query unscoped (no clause at all).
*/
func TestBuildInstanceClause_PrecedenceAndUnscoped(t *testing.T) {
	ac := &argCounter{}
	c := buildInstanceClause(sceneSpec, "s", Options{SpecificInstanceID: "inst-a", AllowedInstanceIDs: []string{"inst-b"}}, ac)
	assert.Contains(t, c.sql, "=")
	assert.Equal(t, []any{"inst-a"}, c.args)

	ac = &argCounter{}
	c = buildInstanceClause(sceneSpec, "s", Options{}, ac)
	assert.Equal(t, emptyClause(), c)
}

/*
TestBuildExclusionJoin_SkipsWhenUnappliedOrAnonymous checks that the
exclusion LEFT JOIN is only emitted when both ApplyExclusions is set and
a concrete user is present.
*/
func TestBuildExclusionJoin_SkipsWhenUnappliedOrAnonymous(t *testing.T) {
	ac := &argCounter{}
	join, where := buildExclusionJoin(sceneSpec, "s", Options{ApplyExclusions: false, UserID: "user-1"}, ac)
	assert.Equal(t, emptyClause(), join)
	assert.Equal(t, emptyClause(), where)

	ac = &argCounter{}
	join, where = buildExclusionJoin(sceneSpec, "s", Options{ApplyExclusions: true, UserID: ""}, ac)
	assert.Equal(t, emptyClause(), join)
	assert.Equal(t, emptyClause(), where)

	ac = &argCounter{}
	join, where = buildExclusionJoin(sceneSpec, "s", Options{ApplyExclusions: true, UserID: "user-1"}, ac)
	assert.Contains(t, join.sql, "LEFT JOIN")
	assert.Contains(t, where.sql, "IS NULL")
}
