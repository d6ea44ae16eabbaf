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

// PerformerRow is one hydrated performer.
type PerformerRow struct {
	model.Performer
	Tags []hydrate.RefDTO `json:"tags,omitempty"`
}

var performerColumns = schema.Performer.Columns()

func scanPerformer(row pgx.Rows) (model.Performer, int, error) {
	var p model.Performer
	var total int
	err := row.Scan(&p.ID, &p.Instance, &p.Name, &p.ImagePath, &p.SceneCount, &p.ImageCount, &p.UpdatedAt, &p.DeletedAt, &total)
	return p, total, err
}

// ListPerformers renders, executes, and hydrates one page of performers.
func ListPerformers(ctx context.Context, st *store.Store, hyd *hydrate.Hydrator, opts Options) ([]PerformerRow, Result, error) {
	if opts.Sort.Key == "random" {
		return listPerformersRandom(ctx, st, hyd, opts)
	}

	sqlStr, args := BuildList(performerSpec, performerColumns, opts)
	rows, err := st.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, Result{}, fmt.Errorf("query: list performers: %w", err)
	}
	defer rows.Close()

	var result Result
	performers := make([]model.Performer, 0, opts.Page.limit())
	for rows.Next() {
		p, total, err := scanPerformer(rows)
		if err != nil {
			return nil, Result{}, fmt.Errorf("query: scan performer: %w", err)
		}
		result.Total = total
		performers = append(performers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, Result{}, err
	}

	out, err := hydratePerformers(ctx, hyd, performers)
	return out, result, err
}

func listPerformersRandom(ctx context.Context, st *store.Store, hyd *hydrate.Hydrator, opts Options) ([]PerformerRow, Result, error) {
	page, total, err := RandomPage(ctx, st, performerSpec, opts)
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
	detailOpts.Sort = Sort{Key: performerSpec.defaultSort}

	sqlStr, args := BuildList(performerSpec, performerColumns, detailOpts)
	rows, err := st.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, Result{}, fmt.Errorf("query: random performer detail fetch: %w", err)
	}
	defer rows.Close()

	var performers []model.Performer
	for rows.Next() {
		p, _, err := scanPerformer(rows)
		if err != nil {
			return nil, Result{}, fmt.Errorf("query: scan random performer: %w", err)
		}
		performers = append(performers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, Result{}, err
	}

	performers = ReorderByIDKeys(page, performers, func(p model.Performer) (string, string) { return p.ID, p.Instance })
	out, err := hydratePerformers(ctx, hyd, performers)
	return out, Result{Total: total}, err
}

func hydratePerformers(ctx context.Context, hyd *hydrate.Hydrator, performers []model.Performer) ([]PerformerRow, error) {
	refs := make([]model.Ref, len(performers))
	for i, p := range performers {
		refs[i] = model.Ref{ID: p.ID, Instance: p.Instance}
	}
	tags, err := hyd.HydrateJunctionChildren(ctx, schema.PerformerTag, refs, model.KindTag)
	if err != nil {
		return nil, err
	}

	out := make([]PerformerRow, len(performers))
	for i, p := range performers {
		p.ImagePath = rewrite.String(p.ImagePath, p.Instance)
		row := PerformerRow{Performer: p}
		row.Tags = tags[model.Ref{ID: p.ID, Instance: p.Instance}]
		out[i] = row
	}
	return out, nil
}

// CountPerformers runs the standalone count.
func CountPerformers(ctx context.Context, st *store.Store, opts Options) (int, error) {
	sqlStr, args := BuildCount(performerSpec, opts)
	var n int
	if err := st.Pool.QueryRow(ctx, sqlStr, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("query: count performers: %w", err)
	}
	return n, nil
}
