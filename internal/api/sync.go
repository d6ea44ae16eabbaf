// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/mirrorstash/mirrorstash/internal/mirror/store"
	"github.com/mirrorstash/mirrorstash/internal/platform/apperr"
	requestutil "github.com/mirrorstash/mirrorstash/internal/platform/request"
	"github.com/mirrorstash/mirrorstash/internal/platform/respond"
	"github.com/mirrorstash/mirrorstash/internal/scheduler"
	"github.com/mirrorstash/mirrorstash/internal/sync"
	"github.com/mirrorstash/mirrorstash/internal/upstream"
)

// clearInstanceTimeout bounds the admin hard-delete op ("at most 120s").
const clearInstanceTimeout = 120 * time.Second

// SyncHandler serves the sync status and trigger routes and the
// admin instance-clear route. Every method here is mounted behind
// [middleware.RequireRole] for the admin role.
type SyncHandler struct {
	store *store.Store
	engine *sync.Engine
	scheduler *scheduler.Scheduler
	registry *upstream.Registry
}

// NewSyncHandler constructs a SyncHandler.
func NewSyncHandler(st *store.Store, engine *sync.Engine, sched *scheduler.Scheduler, registry *upstream.Registry) *SyncHandler {
	return &SyncHandler{store: st, engine: engine, scheduler: sched, registry: registry}
}

type syncStatusResponse struct {
	Instances []sync.Status `json:"instances"`
}

// Status handles GET /v1/sync/status, returning the per-kind sync state
// and syncing flag for every configured instance, or a single instance
// when ?instance= is given.
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	if err := requireAdmin(r); err != nil {
		respond.Error(w, r, err)
		return
	}

	instanceID := r.URL.Query().Get("instance")
	ids := h.registry.Instances()
	if instanceID != "" {
		ids = []string{instanceID}
	}

	statuses := make([]sync.Status, 0, len(ids))
	for _, id := range ids {
		st, err := h.engine.Status(r.Context(), id)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		statuses = append(statuses, st)
	}
	respond.OK(w, syncStatusResponse{Instances: statuses})
}

type instanceTriggerRequest struct {
	Instance string `json:"instance"`
}

func (h *SyncHandler) triggerInstance(r *http.Request) (string, error) {
	instanceID := r.URL.Query().Get("instance")
	if instanceID == "" {
		var body instanceTriggerRequest
		if err := requestutil.DecodeJSON(r, &body); err == nil {
			instanceID = body.Instance
		}
	}
	if instanceID == "" {
		return "", apperr.ValidationError("instance is required")
	}
	if _, ok := h.registry.Config(instanceID); !ok {
		return "", apperr.NotFound("Instance")
	}
	return instanceID, nil
}

// Full handles POST /v1/sync/full.
func (h *SyncHandler) Full(w http.ResponseWriter, r *http.Request) {
	if err := requireAdmin(r); err != nil {
		respond.Error(w, r, err)
		return
	}
	instanceID, err := h.triggerInstance(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if err := h.scheduler.TriggerFull(r.Context(), instanceID); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Created(w, map[string]string{"instance": instanceID, "mode": "full"})
}

// Incremental handles POST /v1/sync/incremental.
func (h *SyncHandler) Incremental(w http.ResponseWriter, r *http.Request) {
	if err := requireAdmin(r); err != nil {
		respond.Error(w, r, err)
		return
	}
	instanceID, err := h.triggerInstance(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if err := h.scheduler.TriggerIncremental(r.Context(), instanceID); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.Created(w, map[string]string{"instance": instanceID, "mode": "incremental"})
}

// Abort handles POST /v1/sync/abort.
func (h *SyncHandler) Abort(w http.ResponseWriter, r *http.Request) {
	if err := requireAdmin(r); err != nil {
		respond.Error(w, r, err)
		return
	}
	instanceID, err := h.triggerInstance(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	h.scheduler.TriggerAbort(instanceID)
	respond.OK(w, map[string]string{"instance": instanceID, "status": "aborting"})
}

// ClearInstance handles POST /v1/admin/instances/{id}/clear: hard-deletes
// every mirrored row, junction edge, sync state, and overlay row scoped to
// the instance. Destructive and irreversible, hence admin-gated and run
// under its own bounded timeout rather than the request's.
func (h *SyncHandler) ClearInstance(w http.ResponseWriter, r *http.Request) {
	if err := requireAdmin(r); err != nil {
		respond.Error(w, r, err)
		return
	}
	instanceID := requestutil.Param(r, "id")
	if instanceID == "" {
		respond.Error(w, r, apperr.ValidationError("instance id is required"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), clearInstanceTimeout)
	defer cancel()

	if err := h.store.HardDeleteInstance(ctx, instanceID); err != nil {
		respond.Error(w, r, apperr.Internal(err))
		return
	}
	respond.OK(w, map[string]string{"instance": instanceID, "status": "cleared"})
}
