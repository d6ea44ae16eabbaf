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

// ImageRow is one hydrated, URL-rewritten image.
type ImageRow struct {
	model.Image

	Studio     *hydrate.RefDTO  `json:"studio,omitempty"`
	Performers []hydrate.RefDTO `json:"performers,omitempty"`
	Tags       []hydrate.RefDTO `json:"tags,omitempty"`
	Galleries  []hydrate.RefDTO `json:"galleries,omitempty"`
}

var imageColumns = schema.Image.Columns()

func scanImage(row pgx.Rows) (model.Image, int, error) {
	var im model.Image
	var total int
	err := row.Scan(
		&im.ID, &im.Instance, &im.Title, &im.Date, &im.StudioID, &im.StudioInstance,
		&im.Photographer, &im.Details, &im.Path, &im.Width, &im.Height, &im.Size,
		&im.OCount, &im.UpdatedAt, &im.DeletedAt,
		&total,
	)
	return im, total, err
}

func rewriteImage(im *model.Image) {
	im.Path = rewrite.String(im.Path, im.Instance)
}

// ListImages renders, executes, and hydrates one page of images.
func ListImages(ctx context.Context, st *store.Store, hyd *hydrate.Hydrator, opts Options) ([]ImageRow, Result, error) {
	if opts.Sort.Key == "random" {
		return listImagesRandom(ctx, st, hyd, opts)
	}

	sqlStr, args := BuildList(imageSpec, imageColumns, opts)
	rows, err := st.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, Result{}, fmt.Errorf("query: list images: %w", err)
	}
	defer rows.Close()

	var result Result
	images := make([]model.Image, 0, opts.Page.limit())
	for rows.Next() {
		im, total, err := scanImage(rows)
		if err != nil {
			return nil, Result{}, fmt.Errorf("query: scan image: %w", err)
		}
		result.Total = total
		images = append(images, im)
	}
	if err := rows.Err(); err != nil {
		return nil, Result{}, err
	}

	out, err := hydrateImages(ctx, hyd, images)
	return out, result, err
}

func listImagesRandom(ctx context.Context, st *store.Store, hyd *hydrate.Hydrator, opts Options) ([]ImageRow, Result, error) {
	page, total, err := RandomPage(ctx, st, imageSpec, opts)
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
	detailOpts.Sort = Sort{Key: imageSpec.defaultSort}

	sqlStr, args := BuildList(imageSpec, imageColumns, detailOpts)
	rows, err := st.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, Result{}, fmt.Errorf("query: random image detail fetch: %w", err)
	}
	defer rows.Close()

	var images []model.Image
	for rows.Next() {
		im, _, err := scanImage(rows)
		if err != nil {
			return nil, Result{}, fmt.Errorf("query: scan random image: %w", err)
		}
		images = append(images, im)
	}
	if err := rows.Err(); err != nil {
		return nil, Result{}, err
	}

	images = ReorderByIDKeys(page, images, func(im model.Image) (string, string) { return im.ID, im.Instance })
	out, err := hydrateImages(ctx, hyd, images)
	return out, Result{Total: total}, err
}

func hydrateImages(ctx context.Context, hyd *hydrate.Hydrator, images []model.Image) ([]ImageRow, error) {
	studioRefs := make([]model.Ref, 0, len(images))
	imageRefs := make([]model.Ref, 0, len(images))
	for _, im := range images {
		if im.StudioID != "" {
			studioRefs = append(studioRefs, model.Ref{ID: im.StudioID, Instance: im.StudioInstance})
		}
		imageRefs = append(imageRefs, model.Ref{ID: im.ID, Instance: im.Instance})
	}

	studios, err := hyd.HydrateRefs(ctx, model.KindStudio, studioRefs)
	if err != nil {
		return nil, err
	}
	performers, err := hyd.HydrateJunctionChildren(ctx, schema.ImagePerformer, imageRefs, model.KindPerformer)
	if err != nil {
		return nil, err
	}
	tags, err := hyd.HydrateJunctionChildren(ctx, schema.ImageTag, imageRefs, model.KindTag)
	if err != nil {
		return nil, err
	}
	galleries, err := hyd.HydrateJunctionChildren(ctx, schema.ImageGallery, imageRefs, model.KindGallery)
	if err != nil {
		return nil, err
	}

	out := make([]ImageRow, len(images))
	for i, im := range images {
		rewriteImage(&im)
		row := ImageRow{Image: im}
		if dto, ok := studios[model.Ref{ID: im.StudioID, Instance: im.StudioInstance}]; ok {
			row.Studio = &dto
		}
		ref := model.Ref{ID: im.ID, Instance: im.Instance}
		row.Performers = performers[ref]
		row.Tags = tags[ref]
		row.Galleries = galleries[ref]
		out[i] = row
	}
	return out, nil
}

// CountImages runs the standalone count.
func CountImages(ctx context.Context, st *store.Store, opts Options) (int, error) {
	sqlStr, args := BuildCount(imageSpec, opts)
	var n int
	if err := st.Pool.QueryRow(ctx, sqlStr, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("query: count images: %w", err)
	}
	return n, nil
}
