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

// TagRow is one hydrated tag.
type TagRow struct {
	model.Tag
	Parents []hydrate.RefDTO `json:"parents,omitempty"`
}

var tagColumns = schema.Tag.Columns()

func scanTag(row pgx.Rows) (model.Tag, int, error) {
	var t model.Tag
	var total int
	err := row.Scan(&t.ID, &t.Instance, &t.Name, &t.ImagePath, &t.SceneCountViaPerformer, &t.ImageCount, &t.UpdatedAt, &t.DeletedAt, &total)
	return t, total, err
}

// ListTags renders, executes, and hydrates one page of tags. A Hierarchy
// filter is expanded against the tag_hierarchy DAG before the query runs.
func ListTags(ctx context.Context, st *store.Store, hyd *hydrate.Hydrator, opts Options) ([]TagRow, Result, error) {
	resolved, err := resolveFilters(ctx, st, tagSpec, opts.SpecificInstanceID, opts)
	if err != nil {
		return nil, Result{}, err
	}
	opts = resolved

	if opts.Sort.Key == "random" {
		return listTagsRandom(ctx, st, hyd, opts)
	}

	sqlStr, args := BuildList(tagSpec, tagColumns, opts)
	rows, err := st.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, Result{}, fmt.Errorf("query: list tags: %w", err)
	}
	defer rows.Close()

	var result Result
	tags := make([]model.Tag, 0, opts.Page.limit())
	for rows.Next() {
		t, total, err := scanTag(rows)
		if err != nil {
			return nil, Result{}, fmt.Errorf("query: scan tag: %w", err)
		}
		result.Total = total
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, Result{}, err
	}

	out, err := hydrateTags(ctx, hyd, tags)
	return out, result, err
}

func listTagsRandom(ctx context.Context, st *store.Store, hyd *hydrate.Hydrator, opts Options) ([]TagRow, Result, error) {
	page, total, err := RandomPage(ctx, st, tagSpec, opts)
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
	detailOpts.Sort = Sort{Key: tagSpec.defaultSort}

	sqlStr, args := BuildList(tagSpec, tagColumns, detailOpts)
	rows, err := st.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, Result{}, fmt.Errorf("query: random tag detail fetch: %w", err)
	}
	defer rows.Close()

	var tags []model.Tag
	for rows.Next() {
		t, _, err := scanTag(rows)
		if err != nil {
			return nil, Result{}, fmt.Errorf("query: scan random tag: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, Result{}, err
	}

	tags = ReorderByIDKeys(page, tags, func(t model.Tag) (string, string) { return t.ID, t.Instance })
	out, err := hydrateTags(ctx, hyd, tags)
	return out, Result{Total: total}, err
}

func hydrateTags(ctx context.Context, hyd *hydrate.Hydrator, tags []model.Tag) ([]TagRow, error) {
	refs := make([]model.Ref, len(tags))
	for i, t := range tags {
		refs[i] = model.Ref{ID: t.ID, Instance: t.Instance}
	}
	parents, err := hyd.HydrateJunctionParents(ctx, schema.TagHierarchy, refs, model.KindTag)
	if err != nil {
		return nil, err
	}

	out := make([]TagRow, len(tags))
	for i, t := range tags {
		t.ImagePath = rewrite.String(t.ImagePath, t.Instance)
		row := TagRow{Tag: t}
		row.Parents = parents[model.Ref{ID: t.ID, Instance: t.Instance}]
		out[i] = row
	}
	return out, nil
}

// CountTags runs the standalone count.
func CountTags(ctx context.Context, st *store.Store, opts Options) (int, error) {
	sqlStr, args := BuildCount(tagSpec, opts)
	var n int
	if err := st.Pool.QueryRow(ctx, sqlStr, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("query: count tags: %w", err)
	}
	return n, nil
}
