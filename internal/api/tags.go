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

// TagHandler serves the tag list and by-id routes.
type TagHandler struct {
	store *store.Store
	hyd   *hydrate.Hydrator
}

// NewTagHandler constructs a TagHandler.
func NewTagHandler(st *store.Store, hyd *hydrate.Hydrator) *TagHandler {
	return &TagHandler{store: st, hyd: hyd}
}

func (h *TagHandler) optionsFromRequest(r *http.Request) query.Options {
	opts := commonOptions(r, requestOptionalUserID(r))
	if f, ok := hierarchyFilter(r, "parent"); ok {
		opts.Filters = append(opts.Filters, f)
	}
	if name := r.URL.Query().Get("name"); name != "" {
		opts.Filters = append(opts.Filters, query.Filter{
			Kind: query.FilterText, Field: "name",
			Text: &query.TextFilter{Modifier: query.TextEquals, Value: name},
		})
	}
	return opts
}

// List handles GET /v1/tags.
func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	opts := h.optionsFromRequest(r)
	rows, result, err := query.ListTags(r.Context(), h.store, h.hyd, opts)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Paginated(w, rows, pagination.NewMeta(opts.Page.Page, opts.Page.PerPage, result.Total))
}

// ByID handles GET /v1/tags/{id}.
func (h *TagHandler) ByID(w http.ResponseWriter, r *http.Request) {
	id := requestutil.Param(r, "id")
	opts := query.Options{
		UserID:             requestOptionalUserID(r),
		Page:               query.Page{Page: 1, PerPage: 1},
		ApplyExclusions:    true,
		SpecificInstanceID: r.URL.Query().Get("instance"),
		Filters: []query.Filter{{
			Kind: query.FilterIDSet, Field: "id",
			IDSet: &query.IDSetFilter{Modifier: query.IDSetIncludes, IDs: []string{id}},
		}},
	}
	rows, _, err := query.ListTags(r.Context(), h.store, h.hyd, opts)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if len(rows) == 0 {
		respond.Error(w, r, notFoundErr("Tag"))
		return
	}
	respond.OK(w, rows[0])
}
