// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package query

import (
	"context"
	"fmt"

	"github.com/mirrorstash/mirrorstash/internal/mirror/store"
	"github.com/mirrorstash/mirrorstash/internal/mirror/store/schema"
)

// ExpandTagIDs walks mirror.tag_hierarchy breadth-first from seed, up to
// depth levels of children (depth 0 returns seed unchanged), and returns
// the union of seed and every descendant found. Tags form a multi-parent
// DAG, so the walk dedupes by id to stay finite against cycles.
func ExpandTagIDs(ctx context.Context, st *store.Store, instance string, seed []string, depth int) ([]string, error) {
	return expandJunctionDescendants(ctx, st, schema.TagHierarchy, instance, seed, depth)
}

// ExpandStudioIDs walks mirror.studio's parent_studio_id/parent_studio_instance
// self-reference from seed, up to depth levels of children. Studios form a
// single-parent tree, but the walk is still expressed as a generic junction
// walk for symmetry with ExpandTagIDs.
func ExpandStudioIDs(ctx context.Context, st *store.Store, instance string, seed []string, depth int) ([]string, error) {
	s := schema.Studio
	jt := schema.JunctionTable{
		Table: s.Table, LeftID: s.ParentStudioID, LeftInstance: s.ParentStudioInstance,
		RightID: s.ID, RightInstance: s.Instance,
	}
	return expandJunctionDescendants(ctx, st, jt, instance, seed, depth)
}

// expandJunctionDescendants performs the shared breadth-first walk: each
// round asks "who has any of the current frontier as their left-side
// value" and folds the newly discovered right-side ids into the result.
func expandJunctionDescendants(ctx context.Context, st *store.Store, jt schema.JunctionTable, instance string, seed []string, depth int) ([]string, error) {
	seen := make(map[string]bool, len(seed))
	out := make([]string, 0, len(seed))
	frontier := make([]string, 0, len(seed))
	for _, id := range seed {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
		frontier = append(frontier, id)
	}

	for level := 0; level < depth && len(frontier) > 0; level++ {
		sql := fmt.Sprintf(
			"SELECT DISTINCT %s FROM %s WHERE %s = ANY($1) AND %s = $2",
			jt.RightID, jt.Table, jt.LeftID, jt.LeftInstance,
		)
		rows, err := st.Pool.Query(ctx, sql, frontier, instance)
		if err != nil {
			return nil, fmt.Errorf("query: expand hierarchy via %s: %w", jt.Table, err)
		}

		var next []string
		for rows.Next() {
			var childID string
			if err := rows.Scan(&childID); err != nil {
				rows.Close()
				return nil, fmt.Errorf("query: scan hierarchy child (%s): %w", jt.Table, err)
			}
			if !seen[childID] {
				seen[childID] = true
				out = append(out, childID)
				next = append(next, childID)
			}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}
		frontier = next
	}

	return out, nil
}

// resolveHierarchyFilter replaces a FilterHierarchy with the equivalent
// FilterIDSet over the expanded descendant set (depth 0 = self only).
// Kinds without hierarchy support (spec.hierarchy == false) leave the
// filter untouched, which buildFilterClause then drops.
func resolveHierarchyFilter(ctx context.Context, st *store.Store, spec kindSpec, instance string, f Filter) (Filter, error) {
	if f.Kind != FilterHierarchy || f.Hierarchy == nil || !spec.hierarchy {
		return f, nil
	}

	var expanded []string
	var err error
	switch spec.hierarchyField {
	case "parent":
		if spec.table == "mirror.studio" {
			expanded, err = ExpandStudioIDs(ctx, st, instance, f.Hierarchy.IDs, f.Hierarchy.Depth)
		} else {
			expanded, err = ExpandTagIDs(ctx, st, instance, f.Hierarchy.IDs, f.Hierarchy.Depth)
		}
	default:
		return f, nil
	}
	if err != nil {
		return Filter{}, err
	}

	return Filter{
		Kind:  FilterIDSet,
		Field: "id",
		IDSet: &IDSetFilter{Modifier: IDSetIncludes, IDs: expanded},
	}, nil
}

// resolveFilters expands every Hierarchy filter in opts.Filters in place,
// returning a new Options ready for the pure builder.go functions.
func resolveFilters(ctx context.Context, st *store.Store, spec kindSpec, instance string, opts Options) (Options, error) {
	if len(opts.Filters) == 0 {
		return opts, nil
	}
	resolved := make([]Filter, len(opts.Filters))
	for i, f := range opts.Filters {
		rf, err := resolveHierarchyFilter(ctx, st, spec, instance, f)
		if err != nil {
			return opts, err
		}
		resolved[i] = rf
	}
	opts.Filters = resolved
	return opts, nil
}
