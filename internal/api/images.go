// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"net/http"

	"github.com/mirrorstash/mirrorstash/internal/hydrate"
	"github.com/mirrorstash/mirrorstash/internal/mirror/store"
	requestutil "github.com/mirrorstash/mirrorstash/internal/platform/request"
	"github.com/mirrorstash/mirrorstash/internal/platform/respond"
	"github.com/mirrorstash/mirrorstash/internal/query"
	"github.com/mirrorstash/mirrorstash/pkg/pagination"
)

// ImageHandler serves the image list and by-id routes.
type ImageHandler struct {
	store *store.Store
	hyd   *hydrate.Hydrator
}

// NewImageHandler constructs an ImageHandler.
func NewImageHandler(st *store.Store, hyd *hydrate.Hydrator) *ImageHandler {
	return &ImageHandler{store: st, hyd: hyd}
}

func (h *ImageHandler) optionsFromRequest(r *http.Request) query.Options {
	opts := commonOptions(r, requestOptionalUserID(r))
	for _, field := range []string{"performer_ids", "tag_ids", "gallery_ids"} {
		if f, ok := junctionFilter(r, field); ok {
			opts.Filters = append(opts.Filters, f)
		}
	}
	if title := r.URL.Query().Get("title"); title != "" {
		opts.Filters = append(opts.Filters, query.Filter{
			Kind: query.FilterText, Field: "title",
			Text: &query.TextFilter{Modifier: query.TextEquals, Value: title},
		})
	}
	return opts
}

// List handles GET /v1/images.
func (h *ImageHandler) List(w http.ResponseWriter, r *http.Request) {
	opts := h.optionsFromRequest(r)
	rows, result, err := query.ListImages(r.Context(), h.store, h.hyd, opts)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Paginated(w, rows, pagination.NewMeta(opts.Page.Page, opts.Page.PerPage, result.Total))
}

// ByID handles GET /v1/images/{id}.
func (h *ImageHandler) ByID(w http.ResponseWriter, r *http.Request) {
	id := requestutil.Param(r, "id")
	opts := query.Options{
		UserID:          requestOptionalUserID(r),
		Page:            query.Page{Page: 1, PerPage: 1},
		ApplyExclusions: true,
		SpecificInstanceID: r.URL.Query().Get("instance"),
		Filters: []query.Filter{{
			Kind: query.FilterIDSet, Field: "id",
			IDSet: &query.IDSetFilter{Modifier: query.IDSetIncludes, IDs: []string{id}},
		}},
	}
	rows, _, err := query.ListImages(r.Context(), h.store, h.hyd, opts)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if len(rows) == 0 {
		respond.Error(w, r, notFoundErr("Image"))
		return
	}
	respond.OK(w, rows[0])
}
