// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"net/http"

	"github.com/mirrorstash/mirrorstash/internal/hydrate"
	"github.com/mirrorstash/mirrorstash/internal/mirror/model"
	"github.com/mirrorstash/mirrorstash/internal/mirror/store"
	requestutil "github.com/mirrorstash/mirrorstash/internal/platform/request"
	"github.com/mirrorstash/mirrorstash/internal/platform/respond"
	"github.com/mirrorstash/mirrorstash/internal/query"
	"github.com/mirrorstash/mirrorstash/pkg/pagination"
)

// SceneHandler serves the scene list and by-id routes.
type SceneHandler struct {
	store *store.Store
	hyd *hydrate.Hydrator
}

// NewSceneHandler constructs a SceneHandler.
func NewSceneHandler(st *store.Store, hyd *hydrate.Hydrator) *SceneHandler {
	return &SceneHandler{store: st, hyd: hyd}
}

func sceneOptionsFromRequest(r *http.Request, userID string) query.Options {
	opts := commonOptions(r, userID)
	for _, field := range []string{"performer_ids", "tag_ids", "group_ids", "gallery_ids"} {
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

// List handles GET /v1/scenes.
func (h *SceneHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := requestOptionalUserID(r)
	opts := sceneOptionsFromRequest(r, userID)

	rows, result, err := query.ListScenes(r.Context(), h.store, h.hyd, opts)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Paginated(w, rows, pagination.NewMeta(opts.Page.Page, opts.Page.PerPage, result.Total))
}

// ByID handles GET /v1/scenes/{id}.
func (h *SceneHandler) ByID(w http.ResponseWriter, r *http.Request) {
	id := requestutil.Param(r, "id")
	opts := query.Options{
		UserID: requestOptionalUserID(r),
		Page: query.Page{Page: 1, PerPage: 1},
		ApplyExclusions: true,
		Filters: []query.Filter{{
			Kind: query.FilterIDSet, Field: "id",
			IDSet: &query.IDSetFilter{Modifier: query.IDSetIncludes, IDs: []string{id}},
		}},
	}
	if inst := r.URL.Query().Get("instance"); inst != "" {
		opts.SpecificInstanceID = inst
	}

	rows, _, err := query.ListScenes(r.Context(), h.store, h.hyd, opts)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if len(rows) == 0 {
		respond.Error(w, r, sceneNotFound())
		return
	}
	respond.OK(w, rows[0])
}

// Clips handles GET /v1/scenes/{id}/clips.
func (h *SceneHandler) Clips(w http.ResponseWriter, r *http.Request) {
	id := requestutil.Param(r, "id")
	instance := r.URL.Query().Get("instance")

	rows, err := query.ListClipsForScene(r.Context(), h.store, h.hyd, model.Ref{ID: id, Instance: instance})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, rows)
}

func sceneNotFound() error { return notFoundErr("Scene") }

// requestOptionalUserID returns the caller's user id if authenticated, or
// "" for anonymous browsing (applyExclusions still runs, but an
// anonymous caller never matches a user-scoped exclusion row).
func requestOptionalUserID(r *http.Request) string {
	if claims := requestutil.Claims(r); claims != nil {
		return claims.UserID
	}
	return ""
}
