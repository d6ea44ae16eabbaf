// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package query is the mirror's query engine (C6): one pure SQL-synthesis
builder per browsable kind, composing filters, sort, and pagination
against the mirror store plus the materialized exclusion index.

Each builder is a function `(Options) (sql string, args []any)` pair (one
for the page, one for the count) produced from a shared kindSpec table
rather than eight independent hand-rolled per-kind SQL builders — the
underlying structure (strings.Join + fmt.Sprintf + incrementing $N
args + a COUNT(*) OVER() window total) is identical across kinds, only
the table/column/junction configuration differs, so that configuration
is factored into spec.go and the synthesis logic lives once in
builder.go.
*/
package query

// Page is the requested slice of a result set.
type Page struct {
	Page    int
	PerPage int
}

func (p Page) limit() int {
	if p.PerPage <= 0 {
		return 20
	}
	return p.PerPage
}

func (p Page) offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.limit()
}

// Sort names a sort key and direction; an unrecognized Key falls back to
// the kind's default.
type Sort struct {
	Key        string
	Direction  string // "asc" | "desc"
	RandomSeed string
}

func (s Sort) desc() bool {
	return s.Direction == "desc"
}

// Options is the per-request option bag every builder accepts: user
// scope, typed filters, sort, pagination, and the exclusion/instance
// overrides each list endpoint needs.
type Options struct {
	UserID string

	Filters []Filter
	Sort    Sort
	Page    Page

	Search string

	AllowedInstanceIDs []string
	SpecificInstanceID string

	// ApplyExclusions defaults to true at the HTTP layer; a caller building
	// Options directly must set it explicitly (it is not a zero-value
	// default).
	ApplyExclusions bool
}

// Result is one page of a list query: scanned rows are the caller's own
// concern (each kind file declares its own row type), Total is read off
// the COUNT(*) OVER() window column of the returned rows; a page with no
// rows leaves Total at 0. The random-sort path takes Total from the size
// of its id scan instead.
type Result struct {
	Total int
}
