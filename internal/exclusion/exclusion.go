// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package exclusion materializes, per user, the set of mirrored entities the
user must not see (C5).

It combines administrator restrictions, explicit hides, cascades along the
mirror graph, and an "empty organizational entity" pass into one
[model.UserExcludedEntity] row set, via a long-read / short-write split:
[Compute] is a pure read-only function, [store.Store.CommitExclusions] performs the
atomic swap. A [golang.org/x/sync/singleflight] group deduplicates
concurrent recomputes for the same user — the textbook use of that
library for a per-user in-flight map.
*/
package exclusion

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/mirrorstash/mirrorstash/internal/mirror/model"
	"github.com/mirrorstash/mirrorstash/internal/mirror/store"
	"github.com/mirrorstash/mirrorstash/pkg/uuidv7"
)

// organizationalKinds is every kind the "empty" pass (reason 4) considers.
var organizationalKinds = []model.Kind{
	model.KindGallery, model.KindPerformer, model.KindStudio, model.KindGroup, model.KindTag,
}

// cascadeCapableKinds is every kind that produces cascade edges when hidden
// or restricted; leaf content kinds (scene, image, clip) never cascade
// further (reason 3 enumerates exactly these five source kinds).
var cascadeCapableKinds = []model.Kind{
	model.KindPerformer, model.KindStudio, model.KindTag, model.KindGroup, model.KindGallery,
}

// Engine is the exclusion engine: per-user singleflight dedup around
// [Compute]/[store.Store.CommitExclusions].
type Engine struct {
	store *store.Store
	log   *slog.Logger
	group singleflight.Group
}

// New constructs an Engine over the mirror store.
func New(st *store.Store, log *slog.Logger) *Engine {
	return &Engine{store: st, log: log}
}

// RecomputeForUser runs a full recompute for one user, joining an
// in-flight recompute for the same user if one is already running rather
// than starting a second (per-user in-flight map).
func (e *Engine) RecomputeForUser(ctx context.Context, userID string) error {
	_, err, _ := e.group.Do(userID, func() (any, error) {
		runID := uuidv7.New()
		log := e.log.With(slog.String("run_id", runID), slog.String("user_id", userID))
		log.Info("exclusion: recompute starting")

		rows, stats, err := Compute(ctx, e.store, userID)
		if err != nil {
			return nil, fmt.Errorf("exclusion: compute for %s: %w", userID, err)
		}
		if err := e.store.CommitExclusions(ctx, userID, rows, stats); err != nil {
			return nil, fmt.Errorf("exclusion: commit for %s: %w", userID, err)
		}
		log.Info("exclusion: recompute finished", slog.Int("excluded", len(rows)))
		return nil, nil
	})
	return err
}

// RecomputeAllResult summarizes an "all users" recompute pass.
type RecomputeAllResult struct {
	Succeeded int
	Failed    int
	Errors    map[string]error
}

// RecomputeAll runs a full recompute for every user with any hides or
// restrictions on record, serially, never aborting the batch on one user's
// failure ("all users" mode never aborts on a single-user error).
func (e *Engine) RecomputeAll(ctx context.Context, userIDs []string) RecomputeAllResult {
	res := RecomputeAllResult{Errors: map[string]error{}}
	for _, u := range userIDs {
		if err := e.RecomputeForUser(ctx, u); err != nil {
			res.Failed++
			res.Errors[u] = err
			e.log.Error("exclusion: recompute failed", slog.String("user_id", u), slog.Any("error", err))
			continue
		}
		res.Succeeded++
	}
	return res
}

// AddHiddenEntity records an explicit hide and, rather than triggering a
// full recompute, incrementally upserts the direct "hidden" row plus this
// single entity's cascade edges in one write transaction (the incremental
// path).
func (e *Engine) AddHiddenEntity(ctx context.Context, userID string, kind model.Kind, entityID, instance string) error {
	h := model.UserHiddenEntity{UserID: userID, EntityType: kind, EntityID: entityID, Instance: instance}
	if err := e.store.UpsertUserHiddenEntity(ctx, h); err != nil {
		return fmt.Errorf("exclusion: add hidden entity: %w", err)
	}

	rows := []store.ExcludedRow{{EntityType: kind, EntityID: entityID, Instance: instance, Reason: model.ExclusionHidden}}

	targets, err := cascadeEdges(ctx, e.store, kind, []string{entityID}, instance)
	if err != nil {
		return fmt.Errorf("exclusion: add hidden entity cascade: %w", err)
	}
	for _, t := range targets {
		rows = append(rows, store.ExcludedRow{EntityType: t.Kind, EntityID: t.ID, Instance: t.Instance, Reason: model.ExclusionCascade})
	}

	if err := e.store.AddExcludedRowsIfAbsent(ctx, userID, rows); err != nil {
		return fmt.Errorf("exclusion: add hidden entity commit: %w", err)
	}
	return nil
}

// RemoveHiddenEntity removes an explicit hide. This cannot be handled
// incrementally — another still-hidden entity may cascade to the same
// targets — so it deletes the hide and enqueues a fire-and-forget full
// recompute. Callers therefore have a read-your-write gap until the
// recompute completes; this mirrors the source system's existing,
// accepted behavior rather than a defect to fix here.
func (e *Engine) RemoveHiddenEntity(ctx context.Context, userID string, kind model.Kind, entityID, instance string) error {
	if err := e.store.DeleteUserHiddenEntity(ctx, userID, kind, entityID, instance); err != nil {
		return fmt.Errorf("exclusion: remove hidden entity: %w", err)
	}
	go func() {
		bgCtx := context.Background()
		if err := e.RecomputeForUser(bgCtx, userID); err != nil {
			e.log.Error("exclusion: async recompute after unhide failed", slog.String("user_id", userID), slog.Any("error", err))
		}
	}()
	return nil
}
