// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"net/http"

	"github.com/mirrorstash/mirrorstash/internal/exclusion"
	"github.com/mirrorstash/mirrorstash/internal/mirror/model"
	"github.com/mirrorstash/mirrorstash/internal/platform/apperr"
	requestutil "github.com/mirrorstash/mirrorstash/internal/platform/request"
	"github.com/mirrorstash/mirrorstash/internal/platform/respond"
)

// HiddenHandler serves the authenticated user's per-entity hide/unhide
// routes: a hide goes through the incremental path on [exclusion.Engine],
// an unhide deletes the hide and starts a background full recompute.
type HiddenHandler struct {
	exclusion *exclusion.Engine
}

// NewHiddenHandler constructs a HiddenHandler.
func NewHiddenHandler(excl *exclusion.Engine) *HiddenHandler {
	return &HiddenHandler{exclusion: excl}
}

func (h *HiddenHandler) kindAndID(r *http.Request) (model.Kind, string, error) {
	kind, ok := model.KindFromPlural(requestutil.Param(r, "kind"))
	if !ok {
		return "", "", apperr.ValidationError("unknown entity kind")
	}
	id := requestutil.Param(r, "id")
	if id == "" {
		return "", "", apperr.ValidationError("id is required")
	}
	return kind, id, nil
}

// Hide handles POST /v1/me/hidden/{kind}/{id}.
func (h *HiddenHandler) Hide(w http.ResponseWriter, r *http.Request) {
	userID, err := requestutil.RequiredUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	kind, id, err := h.kindAndID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	instance := r.URL.Query().Get("instance")

	if err := h.exclusion.AddHiddenEntity(r.Context(), userID, kind, id, instance); err != nil {
		respond.Error(w, r, apperr.Internal(err))
		return
	}
	respond.Created(w, map[string]string{"kind": string(kind), "id": id, "status": "hidden"})
}

// Unhide handles DELETE /v1/me/hidden/{kind}/{id}.
func (h *HiddenHandler) Unhide(w http.ResponseWriter, r *http.Request) {
	userID, err := requestutil.RequiredUserID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	kind, id, err := h.kindAndID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	instance := r.URL.Query().Get("instance")

	if err := h.exclusion.RemoveHiddenEntity(r.Context(), userID, kind, id, instance); err != nil {
		respond.Error(w, r, apperr.Internal(err))
		return
	}
	respond.NoContent(w)
}
