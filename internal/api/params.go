// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api is the thin HTTP wiring layer the core's external interfaces
are exposed through: chi routing, JWT-gated admin routes, and one handler
per browsable kind translating query parameters into a [query.Options]
bag.

This is deliberately a wiring layer, not a product surface — no admin UI,
no auth/session system of its own (that lives in [sec]/[middleware]), just
the list/by-id/sync-control/hide contract points the core engines need a
caller for.
*/
package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/mirrorstash/mirrorstash/internal/platform/apperr"
	requestutil "github.com/mirrorstash/mirrorstash/internal/platform/request"
	"github.com/mirrorstash/mirrorstash/internal/query"
)

// csvParam splits a comma-separated query parameter into a trimmed,
// empty-string-filtered slice. An absent or blank parameter yields nil, so
// callers can tell "no filter" apart from "filter on zero ids" — an empty
// filter value list emits no clause, never an empty IN.
func csvParam(r *http.Request, name string) []string {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// commonOptions parses the request parameters every list endpoint shares:
// pagination, sort, search, instance scoping, and exclusion application.
// Kind-specific filters (junctions, hierarchy, typed fields) are appended
// by each kind's own handler.
func commonOptions(r *http.Request, userID string) query.Options {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))

	sortKey := q.Get("sort")
	dir := strings.ToLower(q.Get("dir"))
	if dir != "desc" {
		dir = "asc"
	}

	opts := query.Options{
		UserID: userID,
		Sort: query.Sort{
			Key: sortKey,
			Direction: dir,
			RandomSeed: q.Get("seed"),
		},
		Page: query.Page{Page: page, PerPage: perPage},
		Search: q.Get("q"),

		AllowedInstanceIDs: csvParam(r, "instances"),
		SpecificInstanceID: q.Get("instance"),

		ApplyExclusions: true,
	}
	if q.Get("apply_exclusions") == "false" {
		opts.ApplyExclusions = false
	}

	if ids := csvParam(r, "ids"); len(ids) > 0 {
		opts.Filters = append(opts.Filters, query.Filter{
			Kind: query.FilterIDSet, Field: "id",
			IDSet: &query.IDSetFilter{Modifier: query.IDSetIncludes, IDs: ids},
		})
	}
	if ids := csvParam(r, "exclude_ids"); len(ids) > 0 {
		opts.Filters = append(opts.Filters, query.Filter{
			Kind: query.FilterIDSet, Field: "id",
			IDSet: &query.IDSetFilter{Modifier: query.IDSetExcludes, IDs: ids},
		})
	}
	if v := q.Get("favorite"); v != "" {
		favorite := v == "true"
		opts.Filters = append(opts.Filters, query.Filter{Kind: query.FilterFavorite, Favorite: &favorite})
	}

	return opts
}

// junctionFilter builds a Filter for a many-to-many relation named by
// field (e.g. "performer_ids"), reading its id list from the
// correspondingly-named query parameter and its modifier from an optional
// "_mode" suffix ("includes" default, "includes_all", "excludes").
func junctionFilter(r *http.Request, field string) (query.Filter, bool) {
	ids := csvParam(r, field)
	if len(ids) == 0 {
		return query.Filter{}, false
	}
	mod := query.JunctionIncludes
	switch strings.ToLower(r.URL.Query().Get(field + "_mode")) {
	case "includes_all":
		mod = query.JunctionIncludesAll
	case "excludes":
		mod = query.JunctionExcludes
	}
	return query.Filter{
		Kind: query.FilterJunction, Field: field,
		Junction: &query.JunctionFilter{Modifier: mod, IDs: ids},
	}, true
}

// hierarchyFilter builds a depth-expanding Filter over "parent" for tag/
// studio endpoints, reading its seed ids from idParam and an optional
// "depth" query parameter (default 0: self only).
func hierarchyFilter(r *http.Request, idParam string) (query.Filter, bool) {
	ids := csvParam(r, idParam)
	if len(ids) == 0 {
		return query.Filter{}, false
	}
	depth, _ := strconv.Atoi(r.URL.Query().Get("depth"))
	return query.Filter{
		Kind: query.FilterHierarchy, Field: "parent",
		Hierarchy: &query.HierarchyFilter{IDs: ids, Depth: depth},
	}, true
}

// notFoundErr builds the standard 404 for a missing browsable entity.
func notFoundErr(resource string) error {
	return apperr.NotFound(resource)
}

// requireAdmin extracts the authenticated claims and fails with
// [apperr.Forbidden] unless they carry at least the admin role — the
// common guard every privileged sync/admin handler needs.
func requireAdmin(r *http.Request) error {
	claims, err := requestutil.RequiredClaims(r)
	if err != nil {
		return err
	}
	if !claims.IsAdmin {
		return apperr.Forbidden("admin role required")
	}
	return nil
}
