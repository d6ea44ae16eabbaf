// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package query

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mirrorstash/mirrorstash/internal/hydrate"
	"github.com/mirrorstash/mirrorstash/internal/mirror/model"
	"github.com/mirrorstash/mirrorstash/internal/mirror/store"
	"github.com/mirrorstash/mirrorstash/internal/mirror/store/schema"
	"github.com/mirrorstash/mirrorstash/internal/rewrite"
)

// GroupRow is one hydrated group.
type GroupRow struct {
	model.Group
	Parent *hydrate.RefDTO  `json:"parent,omitempty"`
	Tags   []hydrate.RefDTO `json:"tags,omitempty"`
}

var groupColumns = schema.Group.Columns()

func scanGroup(row pgx.Rows) (model.Group, int, error) {
	var g model.Group
	var total int
	err := row.Scan(
		&g.ID, &g.Instance, &g.Name, &g.ImagePath, &g.ParentGroupID, &g.ParentGroupInstance,
		&g.SceneCount, &g.UpdatedAt, &g.DeletedAt, &total,
	)
	return g, total, err
}

// ListGroups renders, executes, and hydrates one page of groups.
func ListGroups(ctx context.Context, st *store.Store, hyd *hydrate.Hydrator, opts Options) ([]GroupRow, Result, error) {
	if opts.Sort.Key == "random" {
		return listGroupsRandom(ctx, st, hyd, opts)
	}

	sqlStr, args := BuildList(groupSpec, groupColumns, opts)
	rows, err := st.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, Result{}, fmt.Errorf("query: list groups: %w", err)
	}
	defer rows.Close()

	var result Result
	groups := make([]model.Group, 0, opts.Page.limit())
	for rows.Next() {
		g, total, err := scanGroup(rows)
		if err != nil {
			return nil, Result{}, fmt.Errorf("query: scan group: %w", err)
		}
		result.Total = total
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, Result{}, err
	}

	out, err := hydrateGroups(ctx, hyd, groups)
	return out, result, err
}

func listGroupsRandom(ctx context.Context, st *store.Store, hyd *hydrate.Hydrator, opts Options) ([]GroupRow, Result, error) {
	page, total, err := RandomPage(ctx, st, groupSpec, opts)
	if err != nil {
		return nil, Result{}, err
	}
	if len(page) == 0 {
		return nil, Result{Total: total}, nil
	}

	ids := make([]string, len(page))
	for i, k := range page {
		ids[i] = k.ID
	}
	detailOpts := opts
	detailOpts.Filters = append(append([]Filter{}, opts.Filters...), Filter{
		Kind: FilterIDSet, Field: "id", IDSet: &IDSetFilter{Modifier: IDSetIncludes, IDs: ids},
	})
	detailOpts.Page = Page{Page: 1, PerPage: len(ids)}
	detailOpts.Sort = Sort{Key: groupSpec.defaultSort}

	sqlStr, args := BuildList(groupSpec, groupColumns, detailOpts)
	rows, err := st.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, Result{}, fmt.Errorf("query: random group detail fetch: %w", err)
	}
	defer rows.Close()

	var groups []model.Group
	for rows.Next() {
		g, _, err := scanGroup(rows)
		if err != nil {
			return nil, Result{}, fmt.Errorf("query: scan random group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, Result{}, err
	}

	groups = ReorderByIDKeys(page, groups, func(g model.Group) (string, string) { return g.ID, g.Instance })
	out, err := hydrateGroups(ctx, hyd, groups)
	return out, Result{Total: total}, err
}

func hydrateGroups(ctx context.Context, hyd *hydrate.Hydrator, groups []model.Group) ([]GroupRow, error) {
	parentRefs := make([]model.Ref, 0, len(groups))
	groupRefs := make([]model.Ref, len(groups))
	for i, g := range groups {
		if g.ParentGroupID != "" {
			parentRefs = append(parentRefs, model.Ref{ID: g.ParentGroupID, Instance: g.ParentGroupInstance})
		}
		groupRefs[i] = model.Ref{ID: g.ID, Instance: g.Instance}
	}

	parents, err := hyd.HydrateRefs(ctx, model.KindGroup, parentRefs)
	if err != nil {
		return nil, err
	}
	tags, err := hyd.HydrateJunctionChildren(ctx, schema.GroupTag, groupRefs, model.KindTag)
	if err != nil {
		return nil, err
	}

	out := make([]GroupRow, len(groups))
	for i, g := range groups {
		g.ImagePath = rewrite.String(g.ImagePath, g.Instance)
		row := GroupRow{Group: g}
		if dto, ok := parents[model.Ref{ID: g.ParentGroupID, Instance: g.ParentGroupInstance}]; ok {
			row.Parent = &dto
		}
		row.Tags = tags[model.Ref{ID: g.ID, Instance: g.Instance}]
		out[i] = row
	}
	return out, nil
}

// CountGroups runs the standalone count.
func CountGroups(ctx context.Context, st *store.Store, opts Options) (int, error) {
	sqlStr, args := BuildCount(groupSpec, opts)
	var n int
	if err := st.Pool.QueryRow(ctx, sqlStr, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("query: count groups: %w", err)
	}
	return n, nil
}
