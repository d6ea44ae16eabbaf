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

// SceneRow is one hydrated, URL-rewritten scene as returned to an HTTP
// handler: the mirrored row plus its batch-loaded relations.
type SceneRow struct {
	model.Scene

	Studio      *hydrate.RefDTO  `json:"studio,omitempty"`
	Performers  []hydrate.RefDTO `json:"performers,omitempty"`
	Tags        []hydrate.RefDTO `json:"tags,omitempty"`
	Groups      []hydrate.RefDTO `json:"groups,omitempty"`
	Galleries   []hydrate.RefDTO `json:"galleries,omitempty"`
}

var sceneColumns = schema.Scene.Columns()

func scanScene(row pgx.Rows) (model.Scene, int, error) {
	var s model.Scene
	var total int
	err := row.Scan(
		&s.ID, &s.Instance, &s.Title, &s.Code, &s.Date, &s.Details, &s.Director,
		&s.StudioID, &s.StudioInstance, &s.Duration, &s.Path, &s.Codec, &s.Width,
		&s.Height, &s.Bitrate, &s.Size, &s.ScreenshotPath, &s.PreviewPath,
		&s.SpritePath, &s.VTTPath, &s.StreamPath, &s.CaptionsPath, &s.PlayCount,
		&s.OCount, &s.Phash, &s.AllPhash, &s.InheritedTagIDs, &s.UpdatedAt, &s.DeletedAt,
		&total,
	)
	return s, total, err
}

func rewriteScene(s *model.Scene) {
	s.Path = rewrite.String(s.Path, s.Instance)
	s.ScreenshotPath = rewrite.String(s.ScreenshotPath, s.Instance)
	s.PreviewPath = rewrite.String(s.PreviewPath, s.Instance)
	s.SpritePath = rewrite.String(s.SpritePath, s.Instance)
	s.VTTPath = rewrite.String(s.VTTPath, s.Instance)
	s.StreamPath = rewrite.String(s.StreamPath, s.Instance)
	s.CaptionsPath = rewrite.String(s.CaptionsPath, s.Instance)
}

// ListScenes renders, executes, and hydrates one page of scenes.
func ListScenes(ctx context.Context, st *store.Store, hyd *hydrate.Hydrator, opts Options) ([]SceneRow, Result, error) {
	resolvedOpts, err := resolveFilters(ctx, st, sceneSpec, opts.SpecificInstanceID, opts)
	if err != nil {
		return nil, Result{}, err
	}
	opts = resolvedOpts

	if opts.Sort.Key == "random" {
		return listScenesRandom(ctx, st, hyd, opts)
	}

	sqlStr, args := BuildList(sceneSpec, sceneColumns, opts)
	rows, err := st.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, Result{}, fmt.Errorf("query: list scenes: %w", err)
	}
	defer rows.Close()

	var result Result
	scenes := make([]model.Scene, 0, opts.Page.limit())
	for rows.Next() {
		s, total, err := scanScene(rows)
		if err != nil {
			return nil, Result{}, fmt.Errorf("query: scan scene: %w", err)
		}
		result.Total = total
		scenes = append(scenes, s)
	}
	if err := rows.Err(); err != nil {
		return nil, Result{}, err
	}

	out, err := hydrateScenes(ctx, hyd, scenes)
	return out, result, err
}

func listScenesRandom(ctx context.Context, st *store.Store, hyd *hydrate.Hydrator, opts Options) ([]SceneRow, Result, error) {
	page, total, err := RandomPage(ctx, st, sceneSpec, opts)
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
	detailOpts.Sort = Sort{Key: sceneSpec.defaultSort}

	sqlStr, args := BuildList(sceneSpec, sceneColumns, detailOpts)
	rows, err := st.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, Result{}, fmt.Errorf("query: random scene detail fetch: %w", err)
	}
	defer rows.Close()

	var scenes []model.Scene
	for rows.Next() {
		s, _, err := scanScene(rows)
		if err != nil {
			return nil, Result{}, fmt.Errorf("query: scan random scene: %w", err)
		}
		scenes = append(scenes, s)
	}
	if err := rows.Err(); err != nil {
		return nil, Result{}, err
	}

	scenes = ReorderByIDKeys(page, scenes, func(s model.Scene) (string, string) { return s.ID, s.Instance })
	out, err := hydrateScenes(ctx, hyd, scenes)
	return out, Result{Total: total}, err
}

func hydrateScenes(ctx context.Context, hyd *hydrate.Hydrator, scenes []model.Scene) ([]SceneRow, error) {
	studioRefs := make([]model.Ref, 0, len(scenes))
	sceneRefs := make([]model.Ref, 0, len(scenes))
	for _, s := range scenes {
		if s.StudioID != "" {
			studioRefs = append(studioRefs, model.Ref{ID: s.StudioID, Instance: s.StudioInstance})
		}
		sceneRefs = append(sceneRefs, model.Ref{ID: s.ID, Instance: s.Instance})
	}

	studios, err := hyd.HydrateRefs(ctx, model.KindStudio, studioRefs)
	if err != nil {
		return nil, err
	}
	performers, err := hyd.HydrateJunctionChildren(ctx, schema.ScenePerformer, sceneRefs, model.KindPerformer)
	if err != nil {
		return nil, err
	}
	tags, err := hyd.HydrateJunctionChildren(ctx, schema.SceneTag, sceneRefs, model.KindTag)
	if err != nil {
		return nil, err
	}
	groups, err := hyd.HydrateJunctionChildren(ctx, schema.SceneGroup, sceneRefs, model.KindGroup)
	if err != nil {
		return nil, err
	}
	galleries, err := hyd.HydrateJunctionChildren(ctx, schema.SceneGallery, sceneRefs, model.KindGallery)
	if err != nil {
		return nil, err
	}

	out := make([]SceneRow, len(scenes))
	for i, s := range scenes {
		rewriteScene(&s)
		row := SceneRow{Scene: s}
		if dto, ok := studios[model.Ref{ID: s.StudioID, Instance: s.StudioInstance}]; ok {
			row.Studio = &dto
		}
		ref := model.Ref{ID: s.ID, Instance: s.Instance}
		row.Performers = performers[ref]
		row.Tags = tags[ref]
		row.Groups = groups[ref]
		row.Galleries = galleries[ref]
		out[i] = row
	}
	return out, nil
}

// CountScenes runs the standalone count used by list summaries and the
// random-sort path's total.
func CountScenes(ctx context.Context, st *store.Store, opts Options) (int, error) {
	sqlStr, args := BuildCount(sceneSpec, opts)
	var n int
	if err := st.Pool.QueryRow(ctx, sqlStr, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("query: count scenes: %w", err)
	}
	return n, nil
}
