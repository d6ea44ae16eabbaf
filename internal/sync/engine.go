// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sync

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/mirrorstash/mirrorstash/internal/exclusion"
	"github.com/mirrorstash/mirrorstash/internal/mirror/model"
	"github.com/mirrorstash/mirrorstash/internal/mirror/store"
	"github.com/mirrorstash/mirrorstash/internal/platform/constants"
	"github.com/mirrorstash/mirrorstash/internal/upstream"
	"github.com/mirrorstash/mirrorstash/pkg/uuidv7"
)

// Engine drives full, smart-incremental, and single-entity sync runs for
// every configured upstream instance, enforcing the one-sync-at-a-time
// rule process-wide, across all instances.
//
// The process-local running map is the engine's real isSyncing gate (it
// is exact and instant within one process); the Redis key mirrors it with
// a TTL purely so a second process sharing the same Redis would also
// observe a run in progress. Since this system only ever ships as a
// single process today, the Redis side is currently vestigial — kept for
// the day a second replica is introduced rather than deleted now.
type Engine struct {
	registry  *upstream.Registry
	store     *store.Store
	exclusion *exclusion.Engine
	redis     *redis.Client
	log       *slog.Logger

	mu      sync.Mutex
	running map[string]context.CancelFunc
}

// New constructs a sync Engine.
func New(registry *upstream.Registry, st *store.Store, excl *exclusion.Engine, redisClient *redis.Client, log *slog.Logger) *Engine {
	return &Engine{
		registry:  registry,
		store:     st,
		exclusion: excl,
		redis:     redisClient,
		log:       log,
		running:   map[string]context.CancelFunc{},
	}
}

// IsSyncing reports whether instanceID currently has a run in progress in
// this process.
func (e *Engine) IsSyncing(instanceID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.running[instanceID]
	return ok
}

// Abort cancels instanceID's in-progress run, if any. It is not an error to
// abort an instance with nothing running.
func (e *Engine) Abort(instanceID string) {
	e.mu.Lock()
	cancel, ok := e.running[instanceID]
	e.mu.Unlock()
	if ok {
		cancel()
	}
}

// claim registers instanceID as running and returns a context carrying the
// abort signal plus a release function the caller must defer. It fails
// with [ErrAlreadySyncing] if any run, for any instance, is already in
// progress.
func (e *Engine) claim(ctx context.Context, instanceID string) (context.Context, func(), error) {
	e.mu.Lock()
	if len(e.running) > 0 {
		e.mu.Unlock()
		return nil, nil, ErrAlreadySyncing
	}
	runCtx, cancel := context.WithCancel(ctx)
	e.running[instanceID] = cancel
	e.mu.Unlock()

	if e.redis != nil {
		key := constants.RedisPrefixSyncing + instanceID
		if err := e.redis.Set(ctx, key, "1", constants.SyncLockTTL).Err(); err != nil {
			e.log.Warn("sync: failed to set distributed isSyncing key", slog.String("instance", instanceID), slog.Any("error", err))
		}
	}

	release := func() {
		cancel()
		e.mu.Lock()
		delete(e.running, instanceID)
		e.mu.Unlock()
		if e.redis != nil {
			e.redis.Del(context.Background(), constants.RedisPrefixSyncing+instanceID)
		}
	}
	return runCtx, release, nil
}

// Status returns every persisted per-kind sync state for instanceID plus
// whether a run is currently in progress.
type Status struct {
	Instance string
	Syncing  bool
	PerKind  []model.SyncState
}

func (e *Engine) Status(ctx context.Context, instanceID string) (Status, error) {
	states, err := e.store.ListSyncStates(ctx, instanceID)
	if err != nil {
		return Status{}, fmt.Errorf("sync: status: %w", err)
	}
	return Status{Instance: instanceID, Syncing: e.IsSyncing(instanceID), PerKind: states}, nil
}

// FullSync replicates every kind of instanceID from scratch (ignoring the
// last incremental cursor), runs the cleanup-deleted pass per kind, then
// unconditionally runs the post-sync derivation sequence at the end
// regardless of what it touched ("always at the end of a full sync").
func (e *Engine) FullSync(ctx context.Context, instanceID string) error {
	runCtx, release, err := e.claim(ctx, instanceID)
	if err != nil {
		return err
	}
	defer release()

	runID := uuidv7.New()
	log := e.log.With(slog.String("run_id", runID), slog.String("instance", instanceID), slog.String("mode", "full"))
	log.Info("sync: run starting")

	client, err := e.registry.Client(instanceID)
	if err != nil {
		return err
	}

	touched := map[string]int{}
	for _, kind := range model.SyncOrder {
		start := nowFunc()
		count, cursor, err := e.fetchAndProcess(runCtx, client, kind, instanceID, upstream.Filter{}, touched)
		runErr := err
		if err == nil {
			runErr = e.cleanupKind(runCtx, client, kind, instanceID)
		}
		e.persistState(runCtx, instanceID, kind, cursor, count, start, runErr, true)
		if err := firstNonNil(err, runErr); err != nil {
			return err
		}
	}

	if err := runDerivation(runCtx, e.store, e.exclusion, instanceID); err != nil {
		return fmt.Errorf("sync: full sync derivation: %w", err)
	}
	log.Info("sync: run finished")
	return nil
}

// SmartIncrementalSync fetches only entities updated since each kind's last
// cursor. A cheap upstream count check per kind runs concurrently
// (run under an errgroup) so a kind with zero pending changes costs one
// round trip instead of a full page fetch; the post-sync derivation
// sequence only runs if at least one scene, gallery, or image batch was
// processed.
func (e *Engine) SmartIncrementalSync(ctx context.Context, instanceID string) error {
	runCtx, release, err := e.claim(ctx, instanceID)
	if err != nil {
		return err
	}
	defer release()

	runID := uuidv7.New()
	log := e.log.With(slog.String("run_id", runID), slog.String("instance", instanceID), slog.String("mode", "incremental"))
	log.Info("sync: run starting")

	client, err := e.registry.Client(instanceID)
	if err != nil {
		return err
	}

	pending := make(map[model.Kind]bool, len(model.SyncOrder))
	cursors := make(map[model.Kind]*string, len(model.SyncOrder))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(runCtx)
	for _, kind := range model.SyncOrder {
		kind := kind
		g.Go(func() error {
			st, err := e.store.GetSyncState(gctx, instanceID, kind)
			if err != nil {
				return fmt.Errorf("sync: load state for %s: %w", kind, err)
			}
			cursor := st.LastIncrementalCursor
			if cursor == nil {
				cursor = st.LastFullCursor
			}
			filter := upstream.Filter{}
			if cursor != nil {
				filter.UpdatedAfter = *cursor
			}
			n, err := client.Count(gctx, upstream.Queries[kind], filter)
			if err != nil {
				return fmt.Errorf("sync: count %s: %w", kind, err)
			}
			mu.Lock()
			pending[kind] = n > 0
			cursors[kind] = cursor
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("sync: incremental count check: %w", err)
	}

	touched := map[string]int{}
	for _, kind := range model.SyncOrder {
		if !pending[kind] {
			continue
		}
		start := nowFunc()
		filter := upstream.Filter{}
		if c := cursors[kind]; c != nil {
			filter.UpdatedAfter = *c
		}
		count, cursor, err := e.fetchAndProcess(runCtx, client, kind, instanceID, filter, touched)
		e.persistState(runCtx, instanceID, kind, cursor, count, start, err, false)
		if err != nil {
			return err
		}
	}

	if touchesDerivationScope(touched) {
		if err := runDerivation(runCtx, e.store, e.exclusion, instanceID); err != nil {
			return fmt.Errorf("sync: incremental sync derivation: %w", err)
		}
	}
	log.Info("sync: run finished", slog.Any("touched", touched))
	return nil
}

// SingleEntitySync fetches and upserts exactly one entity by id (a
// webhook-driven update), then runs the derivation sequence if the kind is
// in its scope.
func (e *Engine) SingleEntitySync(ctx context.Context, instanceID string, kind model.Kind, id string) error {
	if !validID(id) {
		return fmt.Errorf("sync: single entity sync: invalid id %q", id)
	}
	client, err := e.registry.Client(instanceID)
	if err != nil {
		return err
	}
	kq, ok := upstream.Queries[kind]
	if !ok {
		return fmt.Errorf("sync: single entity sync: unknown kind %q", kind)
	}
	obj, err := client.FindOne(ctx, kq, id)
	if err != nil {
		return fmt.Errorf("sync: fetch single %s %s: %w", kind, id, err)
	}
	if obj == nil {
		return nil
	}
	if _, err := processBatch(ctx, e.store, e.log, kind, instanceID, []upstream.RawObject{obj}); err != nil {
		return err
	}
	if kind == model.KindScene || kind == model.KindGallery || kind == model.KindImage {
		if err := runDerivation(ctx, e.store, e.exclusion, instanceID); err != nil {
			return fmt.Errorf("sync: single entity derivation: %w", err)
		}
	}
	return nil
}

// fetchAndProcess pages through kind's find query under filter, committing
// each page via [processBatch] and tracking the cursor policy across the
// whole run.
func (e *Engine) fetchAndProcess(ctx context.Context, client *upstream.Client, kind model.Kind, instanceID string, filter upstream.Filter, touched map[string]int) (int, *string, error) {
	kq, ok := upstream.Queries[kind]
	if !ok {
		return 0, nil, fmt.Errorf("sync: unknown kind %q", kind)
	}

	var previous *string
	if filter.UpdatedAfter != "" {
		previous = &filter.UpdatedAfter
	}

	tracker := &cursorTracker{}
	total := 0
	page := 1
	for {
		if err := ctx.Err(); err != nil {
			return total, tracker.next(total, previous), ErrAborted
		}

		res, err := client.Find(ctx, kq, filter, upstream.Page{Page: page, PerPage: constants.SyncEntityPageSize})
		if err != nil {
			return total, nil, fmt.Errorf("sync: fetch %s page %d: %w", kind, page, err)
		}
		for _, obj := range res.Items {
			tracker.observe(getString(obj, "updated_at"))
		}

		br, err := processBatch(ctx, e.store, e.log, kind, instanceID, res.Items)
		if err != nil {
			return total, nil, err
		}
		total += br.Processed
		touched[string(kind)] += br.Processed

		if len(res.Items) == 0 || page*constants.SyncEntityPageSize >= res.TotalCount {
			break
		}
		page++
	}
	return total, tracker.next(total, previous), nil
}

// cleanupKind scans kind's full upstream id space via the lighter findIds
// query and soft-deletes every mirrored id not present in it, reconciling
// scenes through perceptual-hash merge detection first.
func (e *Engine) cleanupKind(ctx context.Context, client *upstream.Client, kind model.Kind, instanceID string) error {
	kq, ok := upstream.Queries[kind]
	if !ok {
		return fmt.Errorf("sync: cleanup: unknown kind %q", kind)
	}
	table, _, ok := tableForKind(kind)
	if !ok {
		return fmt.Errorf("sync: cleanup: no table for kind %q", kind)
	}

	pass, err := e.store.BeginCleanupPass(ctx, table, instanceID)
	if err != nil {
		return fmt.Errorf("sync: begin cleanup pass (%s): %w", kind, err)
	}
	defer pass.Release()

	page := 1
	for {
		if err := ctx.Err(); err != nil {
			return ErrAborted
		}
		res, err := client.FindIDs(ctx, kq, upstream.Page{Page: page, PerPage: constants.SyncCleanupPageSize})
		if err != nil {
			return fmt.Errorf("sync: cleanup fetch ids (%s) page %d: %w", kind, page, err)
		}
		if err := pass.StageLiveIDs(ctx, res.IDs); err != nil {
			return fmt.Errorf("sync: stage live ids (%s): %w", kind, err)
		}
		if len(res.IDs) == 0 || page*constants.SyncCleanupPageSize >= res.TotalCount {
			break
		}
		page++
	}

	for {
		missing, err := pass.MissingIDs(ctx, instanceID, constants.SyncSoftDeleteBatchSize)
		if err != nil {
			return fmt.Errorf("sync: missing ids (%s): %w", kind, err)
		}
		if len(missing) == 0 {
			break
		}
		if kind == model.KindScene {
			if err := reconcileMissingScenes(ctx, e.store, e.log, instanceID, missing); err != nil {
				return err
			}
		}
		if err := pass.SoftDeleteMissing(ctx, instanceID, missing); err != nil {
			return fmt.Errorf("sync: soft delete missing (%s): %w", kind, err)
		}
	}
	return nil
}

func (e *Engine) persistState(ctx context.Context, instanceID string, kind model.Kind, cursor *string, count int, start time.Time, runErr error, isFull bool) {
	st, err := e.store.GetSyncState(ctx, instanceID, kind)
	if err != nil {
		e.log.Error("sync: load state before persist failed", slog.String("kind", string(kind)), slog.Any("error", err))
		st = model.SyncState{Instance: instanceID, EntityType: kind}
	}
	if isFull {
		st.LastFullCursor = cursor
	} else {
		st.LastIncrementalCursor = cursor
	}
	st.LastRunCount = int64(count)
	now := nowFunc()
	st.LastRunAt = &now
	if runErr != nil && runErr != ErrAborted {
		msg := runErr.Error()
		st.LastError = &msg
	} else {
		st.LastError = nil
	}
	if err := e.store.PutSyncState(ctx, st, nowFunc().Sub(start)); err != nil {
		e.log.Error("sync: persist state failed", slog.String("kind", string(kind)), slog.Any("error", err))
	}
}

func firstNonNil(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// nowFunc is indirected so tests can freeze time; production always calls
// the real clock.
var nowFunc = time.Now
