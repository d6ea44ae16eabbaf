// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mirrorstash/mirrorstash/internal/mirror/model"
	"github.com/mirrorstash/mirrorstash/internal/mirror/store/schema"
)

// GetSyncState returns the persisted sync state for (instance, kind), or a
// zero-value state (no cursor yet) if none exists.
func (s *Store) GetSyncState(ctx context.Context, instance string, kind model.Kind) (model.SyncState, error) {
	sql := fmt.Sprintf(
		"SELECT %s, %s, %s, %s, %s, %s FROM %s WHERE %s = $1 AND %s = $2",
		schema.SyncState.LastFullCursor, schema.SyncState.LastIncrementalCursor,
		schema.SyncState.LastRunAt, schema.SyncState.LastRunDuration,
		schema.SyncState.LastRunCount, schema.SyncState.LastError,
		schema.SyncState.Table, schema.SyncState.Instance, schema.SyncState.EntityType)

	row := s.Pool.QueryRow(ctx, sql, instance, string(kind))
	st := model.SyncState{Instance: instance, EntityType: kind}
	err := row.Scan(&st.LastFullCursor, &st.LastIncrementalCursor, &st.LastRunAt, &st.LastRunDuration, &st.LastRunCount, &st.LastError)
	if err == pgx.ErrNoRows {
		return st, nil
	}
	if err != nil {
		return model.SyncState{}, fmt.Errorf("store: get sync state: %w", err)
	}
	return st, nil
}

// ListSyncStates returns every persisted sync state row for an instance
// (used by the "sync status" external interface).
func (s *Store) ListSyncStates(ctx context.Context, instance string) ([]model.SyncState, error) {
	sql := fmt.Sprintf(
		"SELECT %s, %s, %s, %s, %s, %s FROM %s WHERE %s = $1",
		schema.SyncState.EntityType, schema.SyncState.LastFullCursor, schema.SyncState.LastIncrementalCursor,
		schema.SyncState.LastRunAt, schema.SyncState.LastRunCount, schema.SyncState.LastError,
		schema.SyncState.Table, schema.SyncState.Instance)

	rows, err := s.Pool.Query(ctx, sql, instance)
	if err != nil {
		return nil, fmt.Errorf("store: list sync states: %w", err)
	}
	defer rows.Close()

	var out []model.SyncState
	for rows.Next() {
		st := model.SyncState{Instance: instance}
		if err := rows.Scan(&st.EntityType, &st.LastFullCursor, &st.LastIncrementalCursor, &st.LastRunAt, &st.LastRunCount, &st.LastError); err != nil {
			return nil, fmt.Errorf("store: scan sync state: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// PutSyncState upserts the sync state row for (instance, kind) after a
// run completes — persisted per-kind so a crash mid-run loses at most one
// kind's progress.
func (s *Store) PutSyncState(ctx context.Context, st model.SyncState, runDuration time.Duration) error {
	sql := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, now(), $5, $6, $7)
		ON CONFLICT (%s, %s) DO UPDATE SET
			%s = EXCLUDED.%s, %s = EXCLUDED.%s,
			%s = EXCLUDED.%s, %s = EXCLUDED.%s,
			%s = EXCLUDED.%s, %s = EXCLUDED.%s
	`,
		schema.SyncState.Table,
		schema.SyncState.Instance, schema.SyncState.EntityType,
		schema.SyncState.LastFullCursor, schema.SyncState.LastIncrementalCursor,
		schema.SyncState.LastRunAt, schema.SyncState.LastRunDuration,
		schema.SyncState.LastRunCount, schema.SyncState.LastError,
		schema.SyncState.Instance, schema.SyncState.EntityType,
		schema.SyncState.LastFullCursor, schema.SyncState.LastFullCursor,
		schema.SyncState.LastIncrementalCursor, schema.SyncState.LastIncrementalCursor,
		schema.SyncState.LastRunAt, schema.SyncState.LastRunAt,
		schema.SyncState.LastRunDuration, schema.SyncState.LastRunDuration,
		schema.SyncState.LastRunCount, schema.SyncState.LastRunCount,
		schema.SyncState.LastError, schema.SyncState.LastError)

	durationMs := runDuration.Milliseconds()
	_, err := s.Pool.Exec(ctx, sql, st.Instance, string(st.EntityType), st.LastFullCursor, st.LastIncrementalCursor, durationMs, st.LastRunCount, st.LastError)
	if err != nil {
		return fmt.Errorf("store: put sync state: %w", err)
	}
	return nil
}
