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

// StudioRow is one hydrated studio.
type StudioRow struct {
	model.Studio
	Parent *hydrate.RefDTO  `json:"parent,omitempty"`
	Tags   []hydrate.RefDTO `json:"tags,omitempty"`
}

var studioColumns = schema.Studio.Columns()

func scanStudio(row pgx.Rows) (model.Studio, int, error) {
	var s model.Studio
	var total int
	err := row.Scan(
		&s.ID, &s.Instance, &s.Name, &s.ImagePath, &s.ParentStudioID, &s.ParentStudioInstance,
		&s.SceneCount, &s.ImageCount, &s.UpdatedAt, &s.DeletedAt, &total,
	)
	return s, total, err
}

// ListStudios renders, executes, and hydrates one page of studios. A
// Hierarchy filter is expanded against the parent_studio_id self-reference
// before the query runs.
func ListStudios(ctx context.Context, st *store.Store, hyd *hydrate.Hydrator, opts Options) ([]StudioRow, Result, error) {
	resolved, err := resolveFilters(ctx, st, studioSpec, opts.SpecificInstanceID, opts)
	if err != nil {
		return nil, Result{}, err
	}
	opts = resolved

	if opts.Sort.Key == "random" {
		return listStudiosRandom(ctx, st, hyd, opts)
	}

	sqlStr, args := BuildList(studioSpec, studioColumns, opts)
	rows, err := st.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, Result{}, fmt.Errorf("query: list studios: %w", err)
	}
	defer rows.Close()

	var result Result
	studios := make([]model.Studio, 0, opts.Page.limit())
	for rows.Next() {
		s, total, err := scanStudio(rows)
		if err != nil {
			return nil, Result{}, fmt.Errorf("query: scan studio: %w", err)
		}
		result.Total = total
		studios = append(studios, s)
	}
	if err := rows.Err(); err != nil {
		return nil, Result{}, err
	}

	out, err := hydrateStudios(ctx, hyd, studios)
	return out, result, err
}

func listStudiosRandom(ctx context.Context, st *store.Store, hyd *hydrate.Hydrator, opts Options) ([]StudioRow, Result, error) {
	page, total, err := RandomPage(ctx, st, studioSpec, opts)
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
	detailOpts.Sort = Sort{Key: studioSpec.defaultSort}

	sqlStr, args := BuildList(studioSpec, studioColumns, detailOpts)
	rows, err := st.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, Result{}, fmt.Errorf("query: random studio detail fetch: %w", err)
	}
	defer rows.Close()

	var studios []model.Studio
	for rows.Next() {
		s, _, err := scanStudio(rows)
		if err != nil {
			return nil, Result{}, fmt.Errorf("query: scan random studio: %w", err)
		}
		studios = append(studios, s)
	}
	if err := rows.Err(); err != nil {
		return nil, Result{}, err
	}

	studios = ReorderByIDKeys(page, studios, func(s model.Studio) (string, string) { return s.ID, s.Instance })
	out, err := hydrateStudios(ctx, hyd, studios)
	return out, Result{Total: total}, err
}

func hydrateStudios(ctx context.Context, hyd *hydrate.Hydrator, studios []model.Studio) ([]StudioRow, error) {
	parentRefs := make([]model.Ref, 0, len(studios))
	studioRefs := make([]model.Ref, len(studios))
	for i, s := range studios {
		if s.ParentStudioID != "" {
			parentRefs = append(parentRefs, model.Ref{ID: s.ParentStudioID, Instance: s.ParentStudioInstance})
		}
		studioRefs[i] = model.Ref{ID: s.ID, Instance: s.Instance}
	}

	parents, err := hyd.HydrateRefs(ctx, model.KindStudio, parentRefs)
	if err != nil {
		return nil, err
	}
	tags, err := hyd.HydrateJunctionChildren(ctx, schema.StudioTag, studioRefs, model.KindTag)
	if err != nil {
		return nil, err
	}

	out := make([]StudioRow, len(studios))
	for i, s := range studios {
		s.ImagePath = rewrite.String(s.ImagePath, s.Instance)
		row := StudioRow{Studio: s}
		if dto, ok := parents[model.Ref{ID: s.ParentStudioID, Instance: s.ParentStudioInstance}]; ok {
			row.Parent = &dto
		}
		row.Tags = tags[model.Ref{ID: s.ID, Instance: s.Instance}]
		out[i] = row
	}
	return out, nil
}

// CountStudios runs the standalone count.
func CountStudios(ctx context.Context, st *store.Store, opts Options) (int, error) {
	sqlStr, args := BuildCount(studioSpec, opts)
	var n int
	if err := st.Pool.QueryRow(ctx, sqlStr, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("query: count studios: %w", err)
	}
	return n, nil
}
