// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mirrorstash/mirrorstash/internal/mirror/store/schema"
)

// GetScenePhash returns a scene's phash (nil if unset or the scene is
// unknown), the merge-detection trigger condition for a scene that is
// about to be soft-deleted by a cleanup pass.
func (s *Store) GetScenePhash(ctx context.Context, instance, id string) (*string, error) {
	t := schema.Scene
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1 AND %s = $2", t.Phash, t.Table, t.ID, t.Instance)
	var phash *string
	err := s.Pool.QueryRow(ctx, sql, id, instance).Scan(&phash)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get scene phash: %w", err)
	}
	return phash, nil
}

// FindOtherScenesByPhash returns the ids of other, non-deleted scenes in
// instance sharing phash — candidates for merge detection during
// scene cleanup. excludeID is the scene being considered for deletion.
func (s *Store) FindOtherScenesByPhash(ctx context.Context, instance, phash, excludeID string) ([]string, error) {
	t := schema.Scene
	sql := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s = $1 AND %s = $2 AND %s != $3 AND deleted_at IS NULL ORDER BY %s ASC",
		t.ID, t.Table, t.Instance, t.Phash, t.ID, t.ID)
	rows, err := s.Pool.Query(ctx, sql, instance, phash, excludeID)
	if err != nil {
		return nil, fmt.Errorf("store: find scenes by phash: %w", err)
	}
	defer rows.Close()
	return scanStrings(rows)
}

// ReassignSceneOverlay moves every user-overlay row (hidden entity,
// materialized exclusion, rating/favorite) keyed on oldID within instance
// onto newID, skipping a row the target id already has. Used when a
// merge-detected scene is about to be soft-deleted in favor of a surviving
// sibling (spec.md §8 scenario 3: "first reconciles any UserRating(A, u)
// into UserRating(B, u), if not already present").
func (s *Store) ReassignSceneOverlay(ctx context.Context, instance, oldID, newID string) error {
	return s.WithTx(ctx, 30*time.Second, func(ctx context.Context, tx pgx.Tx) error {
		he := schema.UserHiddenEntity
		if _, err := tx.Exec(ctx, fmt.Sprintf(
			"UPDATE %s SET %s = $1 WHERE %s = $2 AND %s = 'scene' AND %s = $3 AND NOT EXISTS (SELECT 1 FROM %s x WHERE x.%s = %s.%s AND x.%s = 'scene' AND x.%s = $1 AND x.%s = $3)",
			he.Table, he.EntityID, he.EntityID, he.EntityType, he.Instance,
			he.Table, he.UserID, he.Table, he.UserID, he.EntityType, he.EntityID, he.Instance), newID, oldID, instance); err != nil {
			return fmt.Errorf("reassign hidden entity: %w", err)
		}
		if _, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s = $1 AND %s = 'scene' AND %s = $2", he.Table, he.EntityID, he.EntityType, he.Instance), oldID, instance); err != nil {
			return fmt.Errorf("drop stale hidden entity duplicates: %w", err)
		}

		ue := schema.UserExcludedEntity
		if _, err := tx.Exec(ctx, fmt.Sprintf(
			"UPDATE %s SET %s = $1 WHERE %s = $2 AND %s = 'scene' AND %s = $3 AND NOT EXISTS (SELECT 1 FROM %s x WHERE x.%s = %s.%s AND x.%s = 'scene' AND x.%s = $1 AND x.%s = $3)",
			ue.Table, ue.EntityID, ue.EntityID, ue.EntityType, ue.Instance,
			ue.Table, ue.UserID, ue.Table, ue.UserID, ue.EntityType, ue.EntityID, ue.Instance), newID, oldID, instance); err != nil {
			return fmt.Errorf("reassign excluded entity: %w", err)
		}
		if _, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s = $1 AND %s = 'scene' AND %s = $2", ue.Table, ue.EntityID, ue.EntityType, ue.Instance), oldID, instance); err != nil {
			return fmt.Errorf("drop stale excluded entity duplicates: %w", err)
		}

		ur := schema.UserRating
		if _, err := tx.Exec(ctx, fmt.Sprintf(
			"UPDATE %s SET %s = $1 WHERE %s = $2 AND %s = 'scene' AND %s = $3 AND NOT EXISTS (SELECT 1 FROM %s x WHERE x.%s = %s.%s AND x.%s = 'scene' AND x.%s = $1 AND x.%s = $3)",
			ur.Table, ur.EntityID, ur.EntityID, ur.EntityType, ur.Instance,
			ur.Table, ur.UserID, ur.Table, ur.UserID, ur.EntityType, ur.EntityID, ur.Instance), newID, oldID, instance); err != nil {
			return fmt.Errorf("reassign user rating: %w", err)
		}
		if _, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s = $1 AND %s = 'scene' AND %s = $2", ur.Table, ur.EntityID, ur.EntityType, ur.Instance), oldID, instance); err != nil {
			return fmt.Errorf("drop stale user rating duplicates: %w", err)
		}
		return nil
	})
}
