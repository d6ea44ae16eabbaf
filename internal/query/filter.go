// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package query

// FilterKind is the closed set of filter categories a builder can compose.
// Rather than one loosely-typed option bag, this is a tagged union: only
// the field matching Kind is read, and an invalid combination is a caller
// bug rather than a silently-ignored option.
type FilterKind string

const (
	FilterIDSet FilterKind = "id_set"
	FilterText FilterKind = "text"
	FilterNumeric FilterKind = "numeric"
	FilterDate FilterKind = "date"
	FilterFavorite FilterKind = "favorite"
	FilterHierarchy FilterKind = "hierarchy"
	FilterJunction FilterKind = "junction"
)

// IDSetModifier selects how an IDSet filter restricts the result.
type IDSetModifier string

const (
	IDSetIncludes IDSetModifier = "INCLUDES"
	IDSetExcludes IDSetModifier = "EXCLUDES"
)

// TextModifier selects how a Text filter matches its column.
type TextModifier string

const (
	TextIncludes TextModifier = "INCLUDES"
	TextExcludes TextModifier = "EXCLUDES"
	TextEquals TextModifier = "EQUALS"
	TextNotEquals TextModifier = "NOT_EQUALS"
	TextIsNull TextModifier = "IS_NULL"
	TextNotNull TextModifier = "NOT_NULL"
)

// NumericModifier selects how a Numeric filter compares its column.
type NumericModifier string

const (
	NumericEquals NumericModifier = "EQUALS"
	NumericNotEquals NumericModifier = "NOT_EQUALS"
	NumericGreaterThan NumericModifier = "GREATER_THAN"
	NumericLessThan NumericModifier = "LESS_THAN"
	NumericBetween NumericModifier = "BETWEEN"
	NumericNotBetween NumericModifier = "NOT_BETWEEN"
)

// DateModifier extends NumericModifier's comparisons with null checks.
type DateModifier string

const (
	DateEquals DateModifier = "EQUALS"
	DateNotEquals DateModifier = "NOT_EQUALS"
	DateGreaterThan DateModifier = "GREATER_THAN"
	DateLessThan DateModifier = "LESS_THAN"
	DateBetween DateModifier = "BETWEEN"
	DateNotBetween DateModifier = "NOT_BETWEEN"
	DateIsNull DateModifier = "IS_NULL"
	DateNotNull DateModifier = "NOT_NULL"
)

// JunctionModifier selects how a Junction filter matches a many-to-many
// relation.
type JunctionModifier string

const (
	JunctionIncludes JunctionModifier = "INCLUDES"
	JunctionIncludesAll JunctionModifier = "INCLUDES_ALL"
	JunctionExcludes JunctionModifier = "EXCLUDES"
)

// IDSetFilter restricts rows to (or away from) an explicit id list.
type IDSetFilter struct {
	Modifier IDSetModifier
	IDs []string
}

// TextFilter matches a text column, case-insensitively for INCLUDES/EXCLUDES/EQUALS.
type TextFilter struct {
	Modifier TextModifier
	Value string
}

// NumericFilter compares a numeric column.
type NumericFilter struct {
	Modifier NumericModifier
	Value float64
	Value2 float64 // upper bound, BETWEEN/NOT_BETWEEN only
}

// DateFilter compares a date/text-date column.
type DateFilter struct {
	Modifier DateModifier
	Value string
	Value2 string
}

// HierarchyFilter expands a set of tag/studio ids to their descendants
// before the clause is emitted (depth 0 = self only).
type HierarchyFilter struct {
	IDs []string
	Depth int
}

// JunctionFilter matches rows by their membership in a many-to-many
// relation, e.g. a scene's performer_ids.
type JunctionFilter struct {
	Modifier JunctionModifier
	IDs []string
}

// Filter is one typed filter clause. Field names the logical column it
// targets (resolved against the kind's fieldSpec table); exactly one of
// the typed payload fields is populated, selected by Kind.
type Filter struct {
	Kind FilterKind
	Field string

	IDSet *IDSetFilter
	Text *TextFilter
	Numeric *NumericFilter
	Date *DateFilter
	Favorite *bool
	Hierarchy *HierarchyFilter
	Junction *JunctionFilter
}
