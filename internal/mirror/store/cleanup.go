// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mirrorstash/mirrorstash/internal/platform/constants"
)

// CleanupPass pins one connection for the lifetime of a kind's
// cleanup-deleted scan: the upstream's current id set is staged into a temp
// table in constants.SyncCleanupPageSize batches, then every mirrored id
// absent from it is soft-deleted in constants.SyncSoftDeleteBatchSize
// batches .
type CleanupPass struct {
	conn *pgxpool.Conn
	table string
}

// BeginCleanupPass acquires a dedicated connection and stages an empty temp
// table of currently-live upstream ids for table/instance.
func (s *Store) BeginCleanupPass(ctx context.Context, table, instance string) (*CleanupPass, error) {
	conn, err := s.Pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: acquire cleanup connection: %w", err)
	}
	if _, err := conn.Exec(ctx, "DROP TABLE IF EXISTS pg_temp.live_ids"); err != nil {
		conn.Release()
		return nil, fmt.Errorf("store: drop stale live_ids: %w", err)
	}
	if _, err := conn.Exec(ctx, "CREATE TEMP TABLE live_ids (id text PRIMARY KEY)"); err != nil {
		conn.Release()
		return nil, fmt.Errorf("store: create live_ids: %w", err)
	}
	return &CleanupPass{conn: conn, table: table}, nil
}

// Release returns the pinned connection to the pool.
func (c *CleanupPass) Release() {
	c.conn.Release()
}

// StageLiveIDs appends one page of upstream-reported ids to the live set.
// The caller chunks upstream pages into at most
// constants.SyncCleanupPageSize ids per call.
func (c *CleanupPass) StageLiveIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := c.conn.Exec(ctx, "INSERT INTO live_ids (id) SELECT unnest($1::text[]) ON CONFLICT DO NOTHING", ids); err != nil {
		return fmt.Errorf("store: stage live ids: %w", err)
	}
	return nil
}

// MissingIDs returns up to limit mirrored ids for instance that are not in
// the staged live set and are not already soft-deleted — the survivors
// to soft-delete, paged so a huge deletion doesn't hold one giant result set.
func (c *CleanupPass) MissingIDs(ctx context.Context, instance string, limit int) ([]string, error) {
	sql := fmt.Sprintf(
		"SELECT t.id FROM %s t WHERE t.instance = $1 AND t.deleted_at IS NULL AND NOT EXISTS (SELECT 1 FROM live_ids l WHERE l.id = t.id) LIMIT $2",
		c.table)
	rows, err := c.conn.Query(ctx, sql, instance, limit)
	if err != nil {
		return nil, fmt.Errorf("store: missing ids: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("store: scan missing id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// SoftDeleteMissing marks ids as deleted on the pinned connection, in
// batches no larger than constants.SyncSoftDeleteBatchSize.
func (c *CleanupPass) SoftDeleteMissing(ctx context.Context, instance string, ids []string) error {
	for start := 0; start < len(ids); start += constants.SyncSoftDeleteBatchSize {
		end := start + constants.SyncSoftDeleteBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[start:end]
		sql := fmt.Sprintf("UPDATE %s SET deleted_at = now() WHERE id = ANY($1) AND instance = $2 AND deleted_at IS NULL", c.table)
		if _, err := c.conn.Exec(ctx, sql, batch, instance); err != nil {
			return fmt.Errorf("store: soft delete missing batch: %w", err)
		}
	}
	return nil
}
