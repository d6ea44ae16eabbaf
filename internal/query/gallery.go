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
)

// GalleryRow is one hydrated gallery.
type GalleryRow struct {
	model.Gallery

	Studio     *hydrate.RefDTO  `json:"studio,omitempty"`
	CoverImage *hydrate.RefDTO  `json:"cover_image,omitempty"`
	Performers []hydrate.RefDTO `json:"performers,omitempty"`
	Tags       []hydrate.RefDTO `json:"tags,omitempty"`
}

var galleryColumns = schema.Gallery.Columns()

func scanGallery(row pgx.Rows) (model.Gallery, int, error) {
	var g model.Gallery
	var total int
	err := row.Scan(
		&g.ID, &g.Instance, &g.Title, &g.CoverImageID, &g.CoverImageInstance,
		&g.StudioID, &g.StudioInstance, &g.Date, &g.Photographer, &g.Details,
		&g.UpdatedAt, &g.DeletedAt,
		&total,
	)
	return g, total, err
}

// ListGalleries renders, executes, and hydrates one page of galleries.
func ListGalleries(ctx context.Context, st *store.Store, hyd *hydrate.Hydrator, opts Options) ([]GalleryRow, Result, error) {
	if opts.Sort.Key == "random" {
		return listGalleriesRandom(ctx, st, hyd, opts)
	}

	sqlStr, args := BuildList(gallerySpec, galleryColumns, opts)
	rows, err := st.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, Result{}, fmt.Errorf("query: list galleries: %w", err)
	}
	defer rows.Close()

	var result Result
	galleries := make([]model.Gallery, 0, opts.Page.limit())
	for rows.Next() {
		g, total, err := scanGallery(rows)
		if err != nil {
			return nil, Result{}, fmt.Errorf("query: scan gallery: %w", err)
		}
		result.Total = total
		galleries = append(galleries, g)
	}
	if err := rows.Err(); err != nil {
		return nil, Result{}, err
	}

	out, err := hydrateGalleries(ctx, hyd, galleries)
	return out, result, err
}

func listGalleriesRandom(ctx context.Context, st *store.Store, hyd *hydrate.Hydrator, opts Options) ([]GalleryRow, Result, error) {
	page, total, err := RandomPage(ctx, st, gallerySpec, opts)
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
	detailOpts.Sort = Sort{Key: gallerySpec.defaultSort}

	sqlStr, args := BuildList(gallerySpec, galleryColumns, detailOpts)
	rows, err := st.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, Result{}, fmt.Errorf("query: random gallery detail fetch: %w", err)
	}
	defer rows.Close()

	var galleries []model.Gallery
	for rows.Next() {
		g, _, err := scanGallery(rows)
		if err != nil {
			return nil, Result{}, fmt.Errorf("query: scan random gallery: %w", err)
		}
		galleries = append(galleries, g)
	}
	if err := rows.Err(); err != nil {
		return nil, Result{}, err
	}

	galleries = ReorderByIDKeys(page, galleries, func(g model.Gallery) (string, string) { return g.ID, g.Instance })
	out, err := hydrateGalleries(ctx, hyd, galleries)
	return out, Result{Total: total}, err
}

func hydrateGalleries(ctx context.Context, hyd *hydrate.Hydrator, galleries []model.Gallery) ([]GalleryRow, error) {
	studioRefs := make([]model.Ref, 0, len(galleries))
	coverRefs := make([]model.Ref, 0, len(galleries))
	galleryRefs := make([]model.Ref, 0, len(galleries))
	for _, g := range galleries {
		if g.StudioID != "" {
			studioRefs = append(studioRefs, model.Ref{ID: g.StudioID, Instance: g.StudioInstance})
		}
		if g.CoverImageID != "" {
			coverRefs = append(coverRefs, model.Ref{ID: g.CoverImageID, Instance: g.CoverImageInstance})
		}
		galleryRefs = append(galleryRefs, model.Ref{ID: g.ID, Instance: g.Instance})
	}

	studios, err := hyd.HydrateRefs(ctx, model.KindStudio, studioRefs)
	if err != nil {
		return nil, err
	}
	covers, err := hyd.HydrateRefs(ctx, model.KindImage, coverRefs)
	if err != nil {
		return nil, err
	}
	performers, err := hyd.HydrateJunctionChildren(ctx, schema.GalleryPerformer, galleryRefs, model.KindPerformer)
	if err != nil {
		return nil, err
	}
	tags, err := hyd.HydrateJunctionChildren(ctx, schema.GalleryTag, galleryRefs, model.KindTag)
	if err != nil {
		return nil, err
	}

	out := make([]GalleryRow, len(galleries))
	for i, g := range galleries {
		row := GalleryRow{Gallery: g}
		if dto, ok := studios[model.Ref{ID: g.StudioID, Instance: g.StudioInstance}]; ok {
			row.Studio = &dto
		}
		if dto, ok := covers[model.Ref{ID: g.CoverImageID, Instance: g.CoverImageInstance}]; ok {
			row.CoverImage = &dto
		}
		ref := model.Ref{ID: g.ID, Instance: g.Instance}
		row.Performers = performers[ref]
		row.Tags = tags[ref]
		out[i] = row
	}
	return out, nil
}

// CountGalleries runs the standalone count.
func CountGalleries(ctx context.Context, st *store.Store, opts Options) (int, error) {
	sqlStr, args := BuildCount(gallerySpec, opts)
	var n int
	if err := st.Pool.QueryRow(ctx, sqlStr, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("query: count galleries: %w", err)
	}
	return n, nil
}
