// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mirrorstash/mirrorstash/internal/mirror/model"
	"github.com/mirrorstash/mirrorstash/internal/mirror/store/schema"
)

// # User overlay reads (exclusion engine inputs)

// ListUserHiddenEntities returns every explicit hide a user has recorded.
func (s *Store) ListUserHiddenEntities(ctx context.Context, userID string) ([]model.UserHiddenEntity, error) {
	t := schema.UserHiddenEntity
	sql := fmt.Sprintf("SELECT %s, %s, %s FROM %s WHERE %s = $1", t.EntityType, t.EntityID, t.Instance, t.Table, t.UserID)
	rows, err := s.Pool.Query(ctx, sql, userID)
	if err != nil {
		return nil, fmt.Errorf("store: list user hidden entities: %w", err)
	}
	defer rows.Close()

	var out []model.UserHiddenEntity
	for rows.Next() {
		h := model.UserHiddenEntity{UserID: userID}
		if err := rows.Scan(&h.EntityType, &h.EntityID, &h.Instance); err != nil {
			return nil, fmt.Errorf("store: scan user hidden entity: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// ListUserContentRestrictions returns every administrator restriction on a user.
func (s *Store) ListUserContentRestrictions(ctx context.Context, userID string) ([]model.UserContentRestriction, error) {
	t := schema.UserContentRestriction
	sql := fmt.Sprintf("SELECT %s, %s, %s, %s FROM %s WHERE %s = $1", t.EntityType, t.Mode, t.EntityIDs, t.RestrictEmpty, t.Table, t.UserID)
	rows, err := s.Pool.Query(ctx, sql, userID)
	if err != nil {
		return nil, fmt.Errorf("store: list user content restrictions: %w", err)
	}
	defer rows.Close()

	var out []model.UserContentRestriction
	for rows.Next() {
		r := model.UserContentRestriction{UserID: userID}
		if err := rows.Scan(&r.EntityType, &r.Mode, &r.EntityIDs, &r.RestrictEmpty); err != nil {
			return nil, fmt.Errorf("store: scan user content restriction: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListAllRefs enumerates every non-deleted (id, instance) of kind across the
// whole mirror, used by the exclusion engine's INCLUDE-mode restriction
// handling (reason 1: "every id in the mirror's id set not in ids").
func (s *Store) ListAllRefs(ctx context.Context, kind model.Kind) ([]model.Ref, error) {
	table, idCol, instCol, ok := tableForKind(kind)
	if !ok {
		return nil, fmt.Errorf("store: list all refs: unknown kind %q", kind)
	}
	sql := fmt.Sprintf("SELECT %s, %s FROM %s WHERE deleted_at IS NULL", idCol, instCol, table)
	rows, err := s.Pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("store: list all refs (%s): %w", kind, err)
	}
	defer rows.Close()

	var out []model.Ref
	for rows.Next() {
		var r model.Ref
		if err := rows.Scan(&r.ID, &r.Instance); err != nil {
			return nil, fmt.Errorf("store: scan ref (%s): %w", kind, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func tableForKind(kind model.Kind) (table, idCol, instCol string, ok bool) {
	switch kind {
	case model.KindScene:
		return schema.Scene.Table, schema.Scene.ID, schema.Scene.Instance, true
	case model.KindImage:
		return schema.Image.Table, schema.Image.ID, schema.Image.Instance, true
	case model.KindGallery:
		return schema.Gallery.Table, schema.Gallery.ID, schema.Gallery.Instance, true
	case model.KindPerformer:
		return schema.Performer.Table, schema.Performer.ID, schema.Performer.Instance, true
	case model.KindStudio:
		return schema.Studio.Table, schema.Studio.ID, schema.Studio.Instance, true
	case model.KindTag:
		return schema.Tag.Table, schema.Tag.ID, schema.Tag.Instance, true
	case model.KindGroup:
		return schema.Group.Table, schema.Group.ID, schema.Group.Instance, true
	case model.KindClip:
		return schema.Clip.Table, schema.Clip.ID, schema.Clip.Instance, true
	default:
		return "", "", "", false
	}
}

// ListUsersWithOverlay returns every distinct user id with at least one
// hide or restriction on record — the population the post-sync derivation
// sequence's exclusion-recompute step runs over ("all users").
func (s *Store) ListUsersWithOverlay(ctx context.Context) ([]string, error) {
	sql := fmt.Sprintf(
		"SELECT %s FROM %s UNION SELECT %s FROM %s",
		schema.UserHiddenEntity.UserID, schema.UserHiddenEntity.Table,
		schema.UserContentRestriction.UserID, schema.UserContentRestriction.Table)
	rows, err := s.Pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("store: list users with overlay: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("store: scan user with overlay: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// # Incremental hide path (addHiddenEntity / removeHiddenEntity)

// UpsertUserHiddenEntity idempotently records an explicit hide ("user
// asks to hide a non-existent entity" is not an error).
func (s *Store) UpsertUserHiddenEntity(ctx context.Context, h model.UserHiddenEntity) error {
	t := schema.UserHiddenEntity
	sql := fmt.Sprintf(
		"INSERT INTO %s (%s, %s, %s, %s) VALUES ($1, $2, $3, $4) ON CONFLICT (%s, %s, %s, %s) DO NOTHING",
		t.Table, t.UserID, t.EntityType, t.EntityID, t.Instance,
		t.UserID, t.EntityType, t.EntityID, t.Instance)
	_, err := s.Pool.Exec(ctx, sql, h.UserID, string(h.EntityType), h.EntityID, h.Instance)
	if err != nil {
		return fmt.Errorf("store: upsert user hidden entity: %w", err)
	}
	return nil
}

// DeleteUserHiddenEntity removes one explicit hide; it is the caller's
// responsibility to follow up with a full exclusion recompute — removal
// cannot be handled incrementally.
func (s *Store) DeleteUserHiddenEntity(ctx context.Context, userID string, kind model.Kind, entityID, instance string) error {
	t := schema.UserHiddenEntity
	sql := fmt.Sprintf("DELETE FROM %s WHERE %s = $1 AND %s = $2 AND %s = $3 AND %s = $4", t.Table, t.UserID, t.EntityType, t.EntityID, t.Instance)
	_, err := s.Pool.Exec(ctx, sql, userID, string(kind), entityID, instance)
	if err != nil {
		return fmt.Errorf("store: delete user hidden entity: %w", err)
	}
	return nil
}

// AddExcludedRowsIfAbsent inserts new exclusion rows, preserving any
// existing row for the same (user, kind, id, instance) — the incremental
// add-hide path never overwrites a reason already on record (first reason
// wins; a prior "restricted"/"hidden" row must not be demoted to
// "cascade" by a later hide of an unrelated entity).
func (s *Store) AddExcludedRowsIfAbsent(ctx context.Context, userID string, rows []ExcludedRow) error {
	if len(rows) == 0 {
		return nil
	}
	return s.WithTx(ctx, 30*time.Second, func(ctx context.Context, tx pgx.Tx) error {
		ue := schema.UserExcludedEntity
		sql := fmt.Sprintf(
			"INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5) ON CONFLICT (%s, %s, %s, %s) DO NOTHING",
			ue.Table, strings.Join(ue.Columns(), ", "),
			ue.UserID, ue.EntityType, ue.EntityID, ue.Instance)
		for _, r := range rows {
			if _, err := tx.Exec(ctx, sql, userID, string(r.EntityType), r.EntityID, r.Instance, string(r.Reason)); err != nil {
				return fmt.Errorf("insert excluded row if absent: %w", err)
			}
		}
		return nil
	})
}
