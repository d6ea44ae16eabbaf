// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mirrorstash/mirrorstash/internal/mirror/store/schema"
)

// clause is one AND-able WHERE fragment plus its positional args, the unit
// every build* helper below threads through a running $N counter.
type clause struct {
	sql  string
	args []any
}

func emptyClause() clause { return clause{} }

// argCounter hands out successive $N placeholders starting from n.
type argCounter struct{ n int }

func (c *argCounter) next() int {
	c.n++
	return c.n
}

func (c *argCounter) placeholder() string {
	return "$" + strconv.Itoa(c.next())
}

// buildFilterClause renders one Filter against spec's column map. A
// Filter whose Field isn't in spec.fields, or a FilterHierarchy that
// reached here unresolved (callers must expand hierarchy filters to an
// IDSet via hierarchy.go before invoking the builder), is dropped rather
// than erroring — an unrecognized filter degrades to "no restriction",
// matching buildOrderBy below.
func buildFilterClause(spec kindSpec, alias string, f Filter, opts Options, ac *argCounter) clause {
	switch f.Kind {
	case FilterIDSet:
		return buildIDSetClause(spec, alias, f, ac)
	case FilterText:
		return buildTextClause(spec, alias, f, ac)
	case FilterNumeric:
		return buildNumericClause(spec, alias, f, ac)
	case FilterDate:
		return buildDateClause(spec, alias, f, ac)
	case FilterFavorite:
		return buildFavoriteClause(f, opts)
	case FilterJunction:
		return buildJunctionClause(spec, alias, f, ac)
	default:
		return emptyClause()
	}
}

func buildIDSetClause(spec kindSpec, alias string, f Filter, ac *argCounter) clause {
	if f.IDSet == nil || len(f.IDSet.IDs) == 0 {
		return emptyClause()
	}
	ph := ac.placeholder()
	op := "= ANY"
	if f.IDSet.Modifier == IDSetExcludes {
		op = "!= ALL"
	}
	return clause{
		sql:  fmt.Sprintf("%s.%s %s(%s)", alias, spec.idCol, op, ph),
		args: []any{f.IDSet.IDs},
	}
}

func buildTextClause(spec kindSpec, alias string, f Filter, ac *argCounter) clause {
	fs, ok := spec.fields[f.Field]
	if !ok || fs.kind != fieldText || f.Text == nil {
		return emptyClause()
	}
	col := fmt.Sprintf("%s.%s", alias, fs.column)
	switch f.Text.Modifier {
	case TextIsNull:
		return clause{sql: col + " IS NULL"}
	case TextNotNull:
		return clause{sql: col + " IS NOT NULL"}
	case TextIncludes:
		ph := ac.placeholder()
		return clause{sql: fmt.Sprintf("%s ILIKE %s", col, ph), args: []any{"%" + f.Text.Value + "%"}}
	case TextExcludes:
		ph := ac.placeholder()
		return clause{sql: fmt.Sprintf("(%s IS NULL OR %s NOT ILIKE %s)", col, col, ph), args: []any{"%" + f.Text.Value + "%"}}
	case TextEquals:
		ph := ac.placeholder()
		return clause{sql: fmt.Sprintf("%s ILIKE %s", col, ph), args: []any{f.Text.Value}}
	case TextNotEquals:
		ph := ac.placeholder()
		return clause{sql: fmt.Sprintf("(%s IS NULL OR %s NOT ILIKE %s)", col, col, ph), args: []any{f.Text.Value}}
	default:
		return emptyClause()
	}
}

func buildNumericClause(spec kindSpec, alias string, f Filter, ac *argCounter) clause {
	fs, ok := spec.fields[f.Field]
	if !ok || fs.kind != fieldNumeric || f.Numeric == nil {
		return emptyClause()
	}
	col := fmt.Sprintf("%s.%s", alias, fs.column)
	return numericComparison(col, string(f.Numeric.Modifier), f.Numeric.Value, f.Numeric.Value2, ac)
}

func buildDateClause(spec kindSpec, alias string, f Filter, ac *argCounter) clause {
	fs, ok := spec.fields[f.Field]
	if !ok || fs.kind != fieldDate || f.Date == nil {
		return emptyClause()
	}
	col := fmt.Sprintf("%s.%s", alias, fs.column)
	switch DateModifier(f.Date.Modifier) {
	case DateIsNull:
		return clause{sql: col + " IS NULL"}
	case DateNotNull:
		return clause{sql: col + " IS NOT NULL"}
	}
	var v2 float64
	return numericComparisonText(col, string(f.Date.Modifier), f.Date.Value, f.Date.Value2, v2, ac)
}

// numericComparison renders a NumericModifier comparison with float args.
func numericComparison(col, modifier string, v, v2 float64, ac *argCounter) clause {
	switch NumericModifier(modifier) {
	case NumericEquals:
		ph := ac.placeholder()
		return clause{sql: col + " = " + ph, args: []any{v}}
	case NumericNotEquals:
		ph := ac.placeholder()
		return clause{sql: col + " != " + ph, args: []any{v}}
	case NumericGreaterThan:
		ph := ac.placeholder()
		return clause{sql: col + " > " + ph, args: []any{v}}
	case NumericLessThan:
		ph := ac.placeholder()
		return clause{sql: col + " < " + ph, args: []any{v}}
	case NumericBetween:
		ph1, ph2 := ac.placeholder(), ac.placeholder()
		return clause{sql: fmt.Sprintf("%s BETWEEN %s AND %s", col, ph1, ph2), args: []any{v, v2}}
	case NumericNotBetween:
		ph1, ph2 := ac.placeholder(), ac.placeholder()
		return clause{sql: fmt.Sprintf("%s NOT BETWEEN %s AND %s", col, ph1, ph2), args: []any{v, v2}}
	default:
		return emptyClause()
	}
}

// numericComparisonText is numericComparison's string-typed sibling for
// date columns stored as text (the upstream date format, passed through
// unmodified per the sync engine's decode step).
func numericComparisonText(col, modifier, v, v2 string, _ float64, ac *argCounter) clause {
	switch DateModifier(modifier) {
	case DateEquals:
		ph := ac.placeholder()
		return clause{sql: col + " = " + ph, args: []any{v}}
	case DateNotEquals:
		ph := ac.placeholder()
		return clause{sql: col + " != " + ph, args: []any{v}}
	case DateGreaterThan:
		ph := ac.placeholder()
		return clause{sql: col + " > " + ph, args: []any{v}}
	case DateLessThan:
		ph := ac.placeholder()
		return clause{sql: col + " < " + ph, args: []any{v}}
	case DateBetween:
		ph1, ph2 := ac.placeholder(), ac.placeholder()
		return clause{sql: fmt.Sprintf("%s BETWEEN %s AND %s", col, ph1, ph2), args: []any{v, v2}}
	case DateNotBetween:
		ph1, ph2 := ac.placeholder(), ac.placeholder()
		return clause{sql: fmt.Sprintf("%s NOT BETWEEN %s AND %s", col, ph1, ph2), args: []any{v, v2}}
	default:
		return emptyClause()
	}
}

// buildFavoriteClause matches the Favorite boolean filter (spec.md §4.5)
// against the "ov" alias joined by buildRatingOverlayJoin: true maps to
// `overlay.favorite = 1`, false maps to `overlay.favorite = 0 OR NULL` (no
// opinion counts as "not favorited"). Needs no placeholder of its own — the
// overlay join already carries the user/kind scoping. An anonymous caller
// (opts.UserID == "", so no overlay join exists) can never match favorite
// =true and always matches favorite=false, the same degrade the rest of
// the builder uses for user-scoped filters against an unauthenticated
// request.
func buildFavoriteClause(f Filter, opts Options) clause {
	if f.Favorite == nil {
		return emptyClause()
	}
	if opts.UserID == "" {
		if *f.Favorite {
			return clause{sql: "FALSE"}
		}
		return clause{sql: "TRUE"}
	}
	if *f.Favorite {
		return clause{sql: "ov.favorite = TRUE"}
	}
	return clause{sql: "(ov.favorite = FALSE OR ov.favorite IS NULL)"}
}

// buildJunctionClause matches rows by their membership in a many-to-many
// relation named by f.Field in spec.junctions.
func buildJunctionClause(spec kindSpec, alias string, f Filter, ac *argCounter) clause {
	js, ok := spec.junctions[f.Field]
	if !ok || f.Junction == nil || len(f.Junction.IDs) == 0 {
		return emptyClause()
	}
	jt := js.table
	switch f.Junction.Modifier {
	case JunctionIncludes, JunctionExcludes:
		ph := ac.placeholder()
		sub := fmt.Sprintf(
			"SELECT 1 FROM %s j WHERE j.%s = %s.%s AND j.%s = %s.%s AND j.%s = ANY(%s)",
			jt.Table, jt.LeftID, alias, spec.idCol, jt.LeftInstance, alias, spec.instCol, jt.RightID, ph)
		exists := "EXISTS"
		if f.Junction.Modifier == JunctionExcludes {
			exists = "NOT EXISTS"
		}
		return clause{sql: fmt.Sprintf("%s (%s)", exists, sub), args: []any{f.Junction.IDs}}
	case JunctionIncludesAll:
		// every named id must have its own matching junction row.
		var parts []string
		var args []any
		for _, id := range f.Junction.IDs {
			ph := ac.placeholder()
			parts = append(parts, fmt.Sprintf(
				"EXISTS (SELECT 1 FROM %s j WHERE j.%s = %s.%s AND j.%s = %s.%s AND j.%s = %s)",
				jt.Table, jt.LeftID, alias, spec.idCol, jt.LeftInstance, alias, spec.instCol, jt.RightID, ph))
			args = append(args, id)
		}
		return clause{sql: "(" + strings.Join(parts, " AND ") + ")", args: args}
	default:
		return emptyClause()
	}
}

// buildSearchClause ORs an ILIKE across every one of spec's search columns.
func buildSearchClause(spec kindSpec, alias, search string, ac *argCounter) clause {
	if search == "" || len(spec.searchColumns) == 0 {
		return emptyClause()
	}
	parts := make([]string, len(spec.searchColumns))
	args := make([]any, len(spec.searchColumns))
	for i, col := range spec.searchColumns {
		ph := ac.placeholder()
		parts[i] = fmt.Sprintf("%s.%s ILIKE %s", alias, col, ph)
		args[i] = "%" + search + "%"
	}
	return clause{sql: "(" + strings.Join(parts, " OR ") + ")", args: args}
}

// buildInstanceClause restricts to a single instance, a caller-allowed
// set, or no restriction at all (admin/unscoped callers).
func buildInstanceClause(spec kindSpec, alias string, opts Options, ac *argCounter) clause {
	switch {
	case opts.SpecificInstanceID != "":
		ph := ac.placeholder()
		return clause{sql: fmt.Sprintf("%s.%s = %s", alias, spec.instCol, ph), args: []any{opts.SpecificInstanceID}}
	case len(opts.AllowedInstanceIDs) > 0:
		ph := ac.placeholder()
		return clause{sql: fmt.Sprintf("%s.%s = ANY(%s)", alias, spec.instCol, ph), args: []any{opts.AllowedInstanceIDs}}
	default:
		return emptyClause()
	}
}

// buildExclusionJoin appends the LEFT JOIN .. IS NULL pair that hides any
// entity the exclusion engine (C5) has materialized for the requesting
// user. Returns the JOIN fragment and a WHERE clause to pair with it.
func buildExclusionJoin(spec kindSpec, alias string, opts Options, ac *argCounter) (join clause, where clause) {
	if !opts.ApplyExclusions || opts.UserID == "" {
		return emptyClause(), emptyClause()
	}
	ue := schema.UserExcludedEntity
	phUser := ac.placeholder()
	phType := ac.placeholder()
	join = clause{
		sql: fmt.Sprintf(
			"LEFT JOIN %s xex ON xex.%s = %s.%s AND xex.%s = %s.%s AND xex.%s = %s AND xex.%s = %s",
			ue.Table, ue.EntityID, alias, spec.idCol, ue.Instance, alias, spec.instCol, ue.UserID, phUser, ue.EntityType, phType),
		args: []any{opts.UserID, string(spec.exclusionType)},
	}
	where = clause{sql: "xex." + ue.EntityID + " IS NULL"}
	return join, where
}

// buildRatingOverlayJoin appends the LEFT JOIN to the requesting user's
// rating/favorite overlay (spec.md §4.5's "FROM ... left-joined to the
// user's rating/favorite overlay"), under alias "ov". Joined unconditionally
// for an authenticated caller — independent of whether a Favorite filter is
// present — so other overlay columns (e.g. a future rating sort/hydration)
// can reference the same join. An anonymous caller has no overlay rows to
// join, so the join is skipped rather than emitted against an empty user id.
func buildRatingOverlayJoin(spec kindSpec, alias string, opts Options, ac *argCounter) clause {
	if opts.UserID == "" {
		return emptyClause()
	}
	ur := schema.UserRating
	phUser := ac.placeholder()
	phType := ac.placeholder()
	return clause{
		sql: fmt.Sprintf(
			"LEFT JOIN %s ov ON ov.%s = %s.%s AND ov.%s = %s.%s AND ov.%s = %s AND ov.%s = %s",
			ur.Table, ur.EntityID, alias, spec.idCol, ur.Instance, alias, spec.instCol, ur.UserID, phUser, ur.EntityType, phType),
		args: []any{opts.UserID, string(spec.exclusionType)},
	}
}

// buildOrderBy resolves opts.Sort.Key against spec.sorts, falling back to
// the kind's default sort on an unrecognized key.
// The caller is responsible for routing Sort.Key == "random" to random.go
// before reaching here.
func buildOrderBy(spec kindSpec, alias string, sort Sort) string {
	ss, ok := spec.sorts[sort.Key]
	if !ok {
		ss = spec.sorts[spec.defaultSort]
	}
	dir := "ASC"
	if sort.desc() {
		dir = "DESC"
	}
	col := fmt.Sprintf("%s.%s", alias, ss.column)
	if ss.caseInsensitive {
		col = "LOWER(" + col + ")"
	}
	tieBreak := fmt.Sprintf("%s.%s", alias, spec.idCol)
	return fmt.Sprintf("%s %s, %s ASC", col, dir, tieBreak)
}

// buildWhere assembles every active predicate — soft-delete, instance
// scope, search, exclusion, and the caller's own filters — into one
// AND-joined WHERE body plus its positional args, continuing argument
// numbering from ac.
func buildWhere(spec kindSpec, alias string, opts Options, ac *argCounter) (joinSQL string, whereSQL string, args []any) {
	var parts []string
	parts = append(parts, fmt.Sprintf("%s.%s IS NULL", alias, "deleted_at"))

	if c := buildInstanceClause(spec, alias, opts, ac); c.sql != "" {
		parts = append(parts, c.sql)
		args = append(args, c.args...)
	}
	if c := buildSearchClause(spec, alias, opts.Search, ac); c.sql != "" {
		parts = append(parts, c.sql)
		args = append(args, c.args...)
	}
	for _, f := range opts.Filters {
		if c := buildFilterClause(spec, alias, f, opts, ac); c.sql != "" {
			parts = append(parts, c.sql)
			args = append(args, c.args...)
		}
	}

	// Allocated last, so their placeholders number higher than everything
	// above — their args must therefore be appended last, not prepended.
	ratingJoin := buildRatingOverlayJoin(spec, alias, opts, ac)
	join, exclWhere := buildExclusionJoin(spec, alias, opts, ac)
	if exclWhere.sql != "" {
		parts = append(parts, exclWhere.sql)
	}
	args = append(args, ratingJoin.args...)
	args = append(args, join.args...)

	joinSQL = strings.TrimSpace(ratingJoin.sql + " " + join.sql)
	return joinSQL, strings.Join(parts, " AND "), args
}

// BuildList renders the paged SELECT for spec: a COUNT(*) OVER() window
// column lets the caller read the total off the first row without a
// second round trip.
func BuildList(spec kindSpec, columns []string, opts Options) (sql string, args []any) {
	ac := &argCounter{}
	joinSQL, whereSQL, whereArgs := buildWhere(spec, "t", opts, ac)

	orderBy := ""
	if opts.Sort.Key != "random" {
		orderBy = "ORDER BY " + buildOrderBy(spec, "t", opts.Sort)
	}

	selectCols := make([]string, len(columns))
	for i, c := range columns {
		selectCols[i] = "t." + c
	}
	limitPh := ac.placeholder()
	offsetPh := ac.placeholder()

	sql = fmt.Sprintf(
		"SELECT %s, COUNT(*) OVER() AS total_count FROM %s t %s WHERE %s %s LIMIT %s OFFSET %s",
		strings.Join(selectCols, ", "), spec.table, joinSQL, whereSQL, orderBy, limitPh, offsetPh)
	args = append(whereArgs, opts.Page.limit(), opts.Page.offset())
	return sql, args
}

// BuildCount renders a standalone COUNT(*), used by the random-sort path
// (random.go) which cannot reuse BuildList's window column.
func BuildCount(spec kindSpec, opts Options) (sql string, args []any) {
	ac := &argCounter{}
	joinSQL, whereSQL, whereArgs := buildWhere(spec, "t", opts, ac)
	sql = fmt.Sprintf("SELECT COUNT(*) FROM %s t %s WHERE %s", spec.table, joinSQL, whereSQL)
	return sql, whereArgs
}

// BuildIDPage renders the id-only SELECT random.go uses for its first
// phase: every live id matching the filters, unordered, for in-process
// hashing and pagination.
func BuildIDPage(spec kindSpec, opts Options) (sql string, args []any) {
	ac := &argCounter{}
	joinSQL, whereSQL, whereArgs := buildWhere(spec, "t", opts, ac)
	sql = fmt.Sprintf("SELECT t.%s, t.%s FROM %s t %s WHERE %s", spec.idCol, spec.instCol, spec.table, joinSQL, whereSQL)
	return sql, whereArgs
}
