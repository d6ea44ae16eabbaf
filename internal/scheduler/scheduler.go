// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package scheduler is the cron-driven sync trigger (C10): it runs one
smart-incremental sync per enabled upstream instance on a fixed interval,
kicks off a one-time full sync for any instance that has never completed
one, and exposes the same manual-trigger funnel the HTTP admin surface
uses — so a cron firing and an admin-triggered run for the same instance
always go through sync.Engine's single claim map and never race each
other.
*/
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/mirrorstash/mirrorstash/internal/mirror/model"
	"github.com/mirrorstash/mirrorstash/internal/mirror/store"
	"github.com/mirrorstash/mirrorstash/internal/sync"
)

// Scheduler owns the cron instance and the engine it drives.
type Scheduler struct {
	engine          *sync.Engine
	store           *store.Store
	log             *slog.Logger
	intervalMinutes int

	cron *cron.Cron
}

// New constructs a Scheduler. Call Start to register per-instance jobs and
// begin running; call Stop to drain in-flight jobs on shutdown.
func New(engine *sync.Engine, st *store.Store, log *slog.Logger, intervalMinutes int) *Scheduler {
	if intervalMinutes <= 0 {
		intervalMinutes = 30
	}
	return &Scheduler{
		engine:          engine,
		store:           st,
		log:             log,
		intervalMinutes: intervalMinutes,
		cron:            cron.New(),
	}
}

// Start loads the instance registry, schedules one recurring incremental
// sync job per enabled instance, kicks off a full sync for any instance
// that has never completed one, and starts the cron runner.
func (s *Scheduler) Start(ctx context.Context) error {
	instances, err := s.store.ListInstances(ctx)
	if err != nil {
		return fmt.Errorf("scheduler: list instances: %w", err)
	}

	spec := fmt.Sprintf("@every %dm", s.intervalMinutes)
	for _, inst := range instances {
		if !inst.Enabled {
			continue
		}
		instanceID := inst.ID
		_, err := s.cron.AddFunc(spec, func() { s.runIncremental(instanceID) })
		if err != nil {
			return fmt.Errorf("scheduler: schedule instance %s: %w", instanceID, err)
		}

		neverSynced, err := s.neverSynced(ctx, instanceID)
		if err != nil {
			s.log.Warn("scheduler: startup sync-state check failed", slog.String("instance", instanceID), slog.Any("error", err))
			continue
		}
		if neverSynced {
			go s.runFull(instanceID)
		}
	}

	s.cron.Start()
	return nil
}

// Stop halts the cron runner and waits for any running job to return; it
// does not abort in-flight sync.Engine runs, which is TriggerAbort's job.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// neverSynced reports whether instanceID has no recorded run for any kind
// in model.SyncOrder — a fresh instance is always worth a full sync before
// its first scheduled incremental.
func (s *Scheduler) neverSynced(ctx context.Context, instanceID string) (bool, error) {
	states, err := s.store.ListSyncStates(ctx, instanceID)
	if err != nil {
		return false, err
	}
	seen := make(map[model.Kind]bool, len(states))
	for _, st := range states {
		if st.LastRunAt != nil {
			seen[st.EntityType] = true
		}
	}
	for _, kind := range model.SyncOrder {
		if !seen[kind] {
			return true, nil
		}
	}
	return false, nil
}

func (s *Scheduler) runIncremental(instanceID string) {
	if s.engine.IsSyncing(instanceID) {
		s.log.Info("scheduler: skip cron run, already syncing", slog.String("instance", instanceID))
		return
	}
	s.log.Info("scheduler: starting incremental sync", slog.String("instance", instanceID))
	if err := s.engine.SmartIncrementalSync(context.Background(), instanceID); err != nil && err != sync.ErrAlreadySyncing {
		s.log.Error("scheduler: incremental sync failed", slog.String("instance", instanceID), slog.Any("error", err))
	}
}

func (s *Scheduler) runFull(instanceID string) {
	s.log.Info("scheduler: starting initial full sync", slog.String("instance", instanceID))
	if err := s.engine.FullSync(context.Background(), instanceID); err != nil && err != sync.ErrAlreadySyncing {
		s.log.Error("scheduler: initial full sync failed", slog.String("instance", instanceID), slog.Any("error", err))
	}
}

// TriggerFull runs an immediate full sync for instanceID, funneled through
// the same Engine every cron job uses.
func (s *Scheduler) TriggerFull(ctx context.Context, instanceID string) error {
	return s.engine.FullSync(ctx, instanceID)
}

// TriggerIncremental runs an immediate smart-incremental sync for instanceID.
func (s *Scheduler) TriggerIncremental(ctx context.Context, instanceID string) error {
	return s.engine.SmartIncrementalSync(ctx, instanceID)
}

// TriggerAbort cancels instanceID's in-progress run, if any.
func (s *Scheduler) TriggerAbort(instanceID string) {
	s.engine.Abort(instanceID)
}
