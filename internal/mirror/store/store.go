// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package store is the mirror's relational data-access layer.

It wraps a [pgxpool.Pool] and exposes the primitives the sync, exclusion,
and query engines compose: parameterized raw SQL, multi-row upserts,
junction maintenance, and the single-connection affinity required for C5's
temporary tables.

Architecture:

 - One physical table per entity kind plus one per junction kind, named in
 internal/mirror/store/schema, a Table-struct-of-column-name-strings
 idiom.
 - Entity rows are addressed generically by (table, columns, values)
 rather than one hand-written repository per kind, because every
 mirrored kind shares the exact same upsert/soft-delete/junction shape;
 only the column list differs.
 - ACID transactions via pgx.Tx; callers decide transaction boundaries,
 the store never opens one implicitly outside its own helper methods.

This package is the only place raw SQL against the mirror schema is
written; every other package reaches it through typed operations.
*/
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mirrorstash/mirrorstash/internal/mirror/store/schema"
)

// Store is the pgxpool-backed mirror store.
type Store struct {
	Pool *pgxpool.Pool
}

// New constructs a Store over an existing connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{Pool: pool}
}

// Ping verifies the underlying pool is reachable (used by the readiness probe).
func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

// # Transactions

// WithTx runs fn inside a single transaction with the given timeout,
// committing on success and rolling back on any error (including a panic,
// which is re-raised after rollback).
func (s *Store) WithTx(ctx context.Context, timeout time.Duration, fn func(ctx context.Context, tx pgx.Tx) error) (err error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("store: tx failed (%w) and rollback failed: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("store: commit tx: %w", err)
	}
	return nil
}

// # Entity Upsert

// EntityRow is one entity's worth of columns, in the same order as the
// Columns slice passed to UpsertEntities. The first two columns are always
// assumed to be (id, instance) — the conflict target every mirrored table
// shares.
type EntityRow struct {
	ID string
	Instance string
	Values []any // remaining columns, in Columns[2:] order
}

// UpsertEntities performs a single multi-row
// `INSERT ... ON CONFLICT (id, instance) DO UPDATE` against table,
// clearing deleted_at on conflict (a reappearing id is no longer deleted).
// columns must start with the id/instance columns and end with
// updated_at, deleted_at — exactly the shape every schema.*Table exposes.
func UpsertEntities(ctx context.Context, q querier, table string, columns []string, rows []EntityRow) error {
	if len(rows) == 0 {
		return nil
	}

	var b strings.Builder
	args := make([]any, 0, len(rows)*len(columns))
	argID := 1

	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", table, strings.Join(columns, ", "))
	for i, row := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for j := range columns {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", argID)
			argID++
		}
		b.WriteString(")")

		args = append(args, row.ID, row.Instance)
		args = append(args, row.Values...)
	}

	idCol, instCol := columns[0], columns[1]
	updateCols := columns[2:]
	setClauses := make([]string, 0, len(updateCols)+1)
	for _, c := range updateCols {
		setClauses = append(setClauses, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
	}
	setClauses = append(setClauses, "deleted_at = NULL")

	fmt.Fprintf(&b, " ON CONFLICT (%s, %s) DO UPDATE SET %s", idCol, instCol, strings.Join(setClauses, ", "))

	_, err := q.Exec(ctx, b.String(), args...)
	if err != nil {
		return fmt.Errorf("store: upsert %s: %w", table, err)
	}
	return nil
}

// # Junction Maintenance

// DeleteJunctionsForParents deletes every junction row owned by the given
// batch of parent ids within parentInstance — the first half of the
// "delete-junctions → upsert → reinsert-junctions" sync batch sequence.
func DeleteJunctionsForParents(ctx context.Context, q querier, jt schema.JunctionTable, parentIDs []string, parentInstance string) error {
	if len(parentIDs) == 0 {
		return nil
	}
	sql := fmt.Sprintf("DELETE FROM %s WHERE %s = ANY($1) AND %s = $2", jt.Table, jt.LeftID, jt.LeftInstance)
	if _, err := q.Exec(ctx, sql, parentIDs, parentInstance); err != nil {
		return fmt.Errorf("store: delete junctions %s: %w", jt.Table, err)
	}
	return nil
}

// DeleteJunctionsForChildren deletes every junction row owned by the given
// batch of child-side ids within childInstance. tag_hierarchy is the only
// junction a sync batch maintains from its child side (a tag's own parent
// list), since [JunctionTable.LeftID] there names the parent, not the tag
// being synced.
func DeleteJunctionsForChildren(ctx context.Context, q querier, jt schema.JunctionTable, childIDs []string, childInstance string) error {
	if len(childIDs) == 0 {
		return nil
	}
	sql := fmt.Sprintf("DELETE FROM %s WHERE %s = ANY($1) AND %s = $2", jt.Table, jt.RightID, jt.RightInstance)
	if _, err := q.Exec(ctx, sql, childIDs, childInstance); err != nil {
		return fmt.Errorf("store: delete junctions (by child) %s: %w", jt.Table, err)
	}
	return nil
}

// InsertJunctions bulk `INSERT ... ON CONFLICT DO NOTHING`s junction rows
// reconstructed from the fetched objects — orphans (validated elsewhere)
// are expected to be pre-filtered by the caller.
func InsertJunctions(ctx context.Context, q querier, jt schema.JunctionTable, rows [][4]string) error {
	if len(rows) == 0 {
		return nil
	}

	var b strings.Builder
	args := make([]any, 0, len(rows)*4)
	argID := 1
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", jt.Table, strings.Join(jt.Columns(), ", "))
	for i, row := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "($%d, $%d, $%d, $%d)", argID, argID+1, argID+2, argID+3)
		argID += 4
		args = append(args, row[0], row[1], row[2], row[3])
	}
	b.WriteString(" ON CONFLICT DO NOTHING")

	if _, err := q.Exec(ctx, b.String(), args...); err != nil {
		return fmt.Errorf("store: insert junctions %s: %w", jt.Table, err)
	}
	return nil
}

// # Soft Delete

// SoftDeleteBatch marks the given ids within instance as deleted, in
// batches no larger than constants.SyncSoftDeleteBatchSize (the caller is
// expected to chunk; this issues one statement per call).
func SoftDeleteBatch(ctx context.Context, q querier, table string, ids []string, instance string) error {
	if len(ids) == 0 {
		return nil
	}
	sql := fmt.Sprintf("UPDATE %s SET deleted_at = now() WHERE id = ANY($1) AND instance = $2 AND deleted_at IS NULL", table)
	if _, err := q.Exec(ctx, sql, ids, instance); err != nil {
		return fmt.Errorf("store: soft delete %s: %w", table, err)
	}
	return nil
}

// HardDeleteInstance physically removes every row belonging to instance
// across every mirrored table and user-overlay table that carries an
// instance column. This is the only hard-delete path in the system — the
// admin "clear instance data" operation.
func (s *Store) HardDeleteInstance(ctx context.Context, instance string) error {
	return s.WithTx(ctx, 120*time.Second, func(ctx context.Context, tx pgx.Tx) error {
		entityTables := []string{schema.Scene.Table, schema.Clip.Table, schema.Image.Table, schema.Gallery.Table,
			schema.Performer.Table, schema.Studio.Table, schema.Tag.Table, schema.Group.Table}
		for _, t := range entityTables {
			if _, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE instance = $1", t), instance); err != nil {
				return fmt.Errorf("store: clear instance %s: %w", t, err)
			}
		}
		junctionTables := []schema.JunctionTable{
			schema.ScenePerformer, schema.SceneTag, schema.SceneGroup, schema.SceneGallery,
			schema.ImagePerformer, schema.ImageTag, schema.ImageGallery,
			schema.GalleryPerformer, schema.GalleryTag,
			schema.PerformerTag, schema.StudioTag, schema.GroupTag, schema.TagHierarchy,
		}
		for _, jt := range junctionTables {
			sql := fmt.Sprintf("DELETE FROM %s WHERE %s = $1 OR %s = $1", jt.Table, jt.LeftInstance, jt.RightInstance)
			if _, err := tx.Exec(ctx, sql, instance); err != nil {
				return fmt.Errorf("store: clear instance junctions %s: %w", jt.Table, err)
			}
		}
		if _, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s = $1", schema.SyncState.Table, schema.SyncState.Instance), instance); err != nil {
			return fmt.Errorf("store: clear instance sync state: %w", err)
		}
		overlayTables := []string{schema.UserHiddenEntity.Table, schema.UserExcludedEntity.Table, schema.UserEntityStats.Table}
		for _, t := range overlayTables {
			if _, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE instance = $1", t), instance); err != nil {
				return fmt.Errorf("store: clear instance overlay %s: %w", t, err)
			}
		}
		return nil
	})
}

// # Shared querier abstraction

// querier is implemented by both *pgxpool.Pool and pgx.Tx, letting the
// free functions above run either standalone or inside a caller-managed
// transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
