// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/mirrorstash/mirrorstash/internal/hydrate"
	"github.com/mirrorstash/mirrorstash/internal/mirror/model"
	"github.com/mirrorstash/mirrorstash/internal/mirror/store"
	"github.com/mirrorstash/mirrorstash/internal/mirror/store/schema"
	"github.com/mirrorstash/mirrorstash/internal/rewrite"
)

// ClipRow is one hydrated clip (scene marker).
type ClipRow struct {
	model.Clip
	PrimaryTag *hydrate.RefDTO `json:"primary_tag,omitempty"`
}

var clipColumns = schema.Clip.Columns()

func scanClip(row pgx.Rows) (model.Clip, error) {
	var c model.Clip
	err := row.Scan(
		&c.ID, &c.Instance, &c.SceneID, &c.SceneInstance, &c.Start, &c.End,
		&c.PrimaryTagID, &c.PrimaryTagInstance, &c.PreviewPath, &c.ScreenshotPath,
		&c.StreamPath, &c.IsGenerated, &c.UpdatedAt, &c.DeletedAt,
	)
	return c, err
}

// ListClipsForScene lists every live clip belonging to scene, ordered by
// start time ascending. Clips are browsed only in this scene-scoped form
// (spec.md has no top-level clip listing route), so this bypasses
// builder.go's generic filter machinery in favor of a fixed scene_id match.
func ListClipsForScene(ctx context.Context, st *store.Store, hyd *hydrate.Hydrator, scene model.Ref) ([]ClipRow, error) {
	c := schema.Clip
	selectCols := make([]string, len(clipColumns))
	for i, col := range clipColumns {
		selectCols[i] = "t." + col
	}
	sqlStr := fmt.Sprintf(
		"SELECT %s FROM %s t WHERE t.deleted_at IS NULL AND t.%s = $1 AND t.%s = $2 ORDER BY t.%s ASC",
		strings.Join(selectCols, ", "), c.Table, c.SceneID, c.SceneInstance, c.Start,
	)

	rows, err := st.Pool.Query(ctx, sqlStr, scene.ID, scene.Instance)
	if err != nil {
		return nil, fmt.Errorf("query: list clips for scene: %w", err)
	}
	defer rows.Close()

	var clips []model.Clip
	for rows.Next() {
		clip, err := scanClip(rows)
		if err != nil {
			return nil, fmt.Errorf("query: scan clip: %w", err)
		}
		clips = append(clips, clip)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return hydrateClips(ctx, hyd, clips)
}

func hydrateClips(ctx context.Context, hyd *hydrate.Hydrator, clips []model.Clip) ([]ClipRow, error) {
	tagRefs := make([]model.Ref, 0, len(clips))
	for _, cl := range clips {
		if cl.PrimaryTagID != "" {
			tagRefs = append(tagRefs, model.Ref{ID: cl.PrimaryTagID, Instance: cl.PrimaryTagInstance})
		}
	}
	tags, err := hyd.HydrateRefs(ctx, model.KindTag, tagRefs)
	if err != nil {
		return nil, err
	}

	out := make([]ClipRow, len(clips))
	for i, cl := range clips {
		cl.PreviewPath = rewrite.String(cl.PreviewPath, cl.Instance)
		cl.ScreenshotPath = rewrite.String(cl.ScreenshotPath, cl.Instance)
		cl.StreamPath = rewrite.String(cl.StreamPath, cl.Instance)
		row := ClipRow{Clip: cl}
		if dto, ok := tags[model.Ref{ID: cl.PrimaryTagID, Instance: cl.PrimaryTagInstance}]; ok {
			row.PrimaryTag = &dto
		}
		out[i] = row
	}
	return out, nil
}
