// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mirrorstash/mirrorstash/internal/mirror/model"
	"github.com/mirrorstash/mirrorstash/internal/mirror/store/schema"
)

// # Mirror graph edges (cascade reason)

// Edge is one directed (parent -> child) relation read from a junction or
// direct FK column, used by the exclusion engine to walk the cascade graph
// in-memory. Soft-deleted source rows are never returned.
type Edge struct {
	ParentID string
	ChildID string
	Instance string
	ChildKind model.Kind
}

// ScenesByPerformer returns (performer -> scene) edges for the given
// performer refs, scoped to instance when non-empty (empty = all instances).
func (s *Store) ScenesByPerformer(ctx context.Context, performerIDs []string, instance string) ([]Edge, error) {
	return s.junctionEdges(ctx, schema.ScenePerformer, true, performerIDs, instance, model.KindScene)
}

// ScenesByStudio returns (studio -> scene) edges via the scene's direct
// studio_id column (not a junction, rule 2).
func (s *Store) ScenesByStudio(ctx context.Context, studioIDs []string, instance string) ([]Edge, error) {
	t := schema.Scene
	sql := fmt.Sprintf(
		"SELECT %s, %s, %s FROM %s WHERE %s = ANY($1) AND deleted_at IS NULL",
		t.StudioID, t.ID, t.Instance, t.Table, t.StudioID)
	args := []any{studioIDs}
	if instance != "" {
		sql += fmt.Sprintf(" AND %s = $2", t.Instance)
		args = append(args, instance)
	}
	rows, err := s.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("store: scenes by studio: %w", err)
	}
	defer rows.Close()

	var out []Edge
	for rows.Next() {
		var e Edge
		if err := rows.Scan(&e.ParentID, &e.ChildID, &e.Instance); err != nil {
			return nil, fmt.Errorf("store: scan scenes by studio: %w", err)
		}
		e.ChildKind = model.KindScene
		out = append(out, e)
	}
	return out, rows.Err()
}

// ScenesByGroup returns (group -> scene) edges.
func (s *Store) ScenesByGroup(ctx context.Context, groupIDs []string, instance string) ([]Edge, error) {
	return s.junctionEdges(ctx, schema.SceneGroup, true, groupIDs, instance, model.KindScene)
}

// ScenesByGallery returns (gallery -> scene) edges.
func (s *Store) ScenesByGallery(ctx context.Context, galleryIDs []string, instance string) ([]Edge, error) {
	return s.junctionEdges(ctx, schema.SceneGallery, true, galleryIDs, instance, model.KindScene)
}

// ImagesByGallery returns (gallery -> image) edges.
func (s *Store) ImagesByGallery(ctx context.Context, galleryIDs []string, instance string) ([]Edge, error) {
	return s.junctionEdges(ctx, schema.ImageGallery, true, galleryIDs, instance, model.KindImage)
}

// ScenesByTagDirect returns (tag -> scene) edges via direct tagging only.
func (s *Store) ScenesByTagDirect(ctx context.Context, tagIDs []string, instance string) ([]Edge, error) {
	return s.junctionEdges(ctx, schema.SceneTag, true, tagIDs, instance, model.KindScene)
}

// ScenesByTagInherited returns (tag -> scene) edges via the scene's
// denormalized inherited_tag_ids column (tag DAG inheritance, rule 3).
func (s *Store) ScenesByTagInherited(ctx context.Context, tagIDs []string, instance string) ([]Edge, error) {
	t := schema.Scene
	sql := fmt.Sprintf(
		"SELECT tag.tid, %s, %s FROM %s, UNNEST($1::text[]) AS tag(tid) WHERE tag.tid = ANY(%s) AND deleted_at IS NULL",
		t.ID, t.Instance, t.Table, t.InheritedTagIDs)
	args := []any{tagIDs}
	if instance != "" {
		sql += fmt.Sprintf(" AND %s = $2", t.Instance)
		args = append(args, instance)
	}
	rows, err := s.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("store: scenes by inherited tag: %w", err)
	}
	defer rows.Close()

	var out []Edge
	for rows.Next() {
		var e Edge
		if err := rows.Scan(&e.ParentID, &e.ChildID, &e.Instance); err != nil {
			return nil, fmt.Errorf("store: scan scenes by inherited tag: %w", err)
		}
		e.ChildKind = model.KindScene
		out = append(out, e)
	}
	return out, rows.Err()
}

// PerformersByTag, StudiosByTag, GroupsByTag return (tag -> entity) edges
// for the organizational kinds directly taggable rule 3.
func (s *Store) PerformersByTag(ctx context.Context, tagIDs []string, instance string) ([]Edge, error) {
	return s.junctionEdges(ctx, schema.PerformerTag, true, tagIDs, instance, model.KindPerformer)
}

func (s *Store) StudiosByTag(ctx context.Context, tagIDs []string, instance string) ([]Edge, error) {
	return s.junctionEdges(ctx, schema.StudioTag, true, tagIDs, instance, model.KindStudio)
}

func (s *Store) GroupsByTag(ctx context.Context, tagIDs []string, instance string) ([]Edge, error) {
	return s.junctionEdges(ctx, schema.GroupTag, true, tagIDs, instance, model.KindGroup)
}

// junctionEdges reads junction rows keyed by the left or right side matching
// parentIDs, returning the other side as the edge's child.
func (s *Store) junctionEdges(ctx context.Context, jt schema.JunctionTable, parentIsRight bool, parentIDs []string, instance string, childKind model.Kind) ([]Edge, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	parentIDCol, parentInstCol, childIDCol, childInstCol := jt.LeftID, jt.LeftInstance, jt.RightID, jt.RightInstance
	if parentIsRight {
		parentIDCol, parentInstCol, childIDCol, childInstCol = jt.RightID, jt.RightInstance, jt.LeftID, jt.LeftInstance
	}

	sql := fmt.Sprintf("SELECT %s, %s, %s FROM %s WHERE %s = ANY($1)", parentIDCol, childIDCol, childInstCol, jt.Table, parentIDCol)
	args := []any{parentIDs}
	if instance != "" {
		sql += fmt.Sprintf(" AND %s = $2", parentInstCol)
		args = append(args, instance)
	}

	rows, err := s.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("store: junction edges %s: %w", jt.Table, err)
	}
	defer rows.Close()

	var out []Edge
	for rows.Next() {
		var e Edge
		if err := rows.Scan(&e.ParentID, &e.ChildID, &e.Instance); err != nil {
			return nil, fmt.Errorf("store: scan junction edges %s: %w", jt.Table, err)
		}
		e.ChildKind = childKind
		out = append(out, e)
	}
	return out, rows.Err()
}

// # Empty-entity detection (reason 4)

// EmptyConn pins a single pgxpool.Conn for the lifetime of the empty-entity
// pass: the caller creates a TEMP TABLE on it holding the current exclusion
// set (reasons 1-3) and every subsequent NOT-EXISTS query against that temp
// table must run on the same physical connection.
type EmptyConn struct {
	conn *pgxpool.Conn
}

// AcquireEmptyConn checks out a dedicated connection for the empty-entity
// pass. The caller must call Release when done.
func (s *Store) AcquireEmptyConn(ctx context.Context) (*EmptyConn, error) {
	conn, err := s.Pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: acquire empty-pass connection: %w", err)
	}
	return &EmptyConn{conn: conn}, nil
}

// Release returns the pinned connection to the pool.
func (e *EmptyConn) Release() {
	e.conn.Release()
}

// ExcludedRow is one row of the exclusion set staged for the empty-entity
// NOT-EXISTS queries or the final commit.
type ExcludedRow struct {
	EntityType model.Kind
	EntityID string
	Instance string
	Reason model.ExclusionReason
}

// StageExclusionSet creates an unlogged TEMP TABLE on the pinned connection
// (replacing one an earlier pass left on that session) holding the
// reason-1-3 exclusion rows computed so far, so the empty-entity
// queries below can treat "is it excluded" as a join rather than re-running
// the whole cascade per candidate.
func (e *EmptyConn) StageExclusionSet(ctx context.Context, rows []ExcludedRow) error {
	if _, err := e.conn.Exec(ctx, "DROP TABLE IF EXISTS pg_temp.excl_staging"); err != nil {
		return fmt.Errorf("store: drop stale excl_staging: %w", err)
	}
	_, err := e.conn.Exec(ctx, `
		CREATE TEMP TABLE excl_staging (
			entity_type text NOT NULL,
			entity_id text NOT NULL,
			instance text NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("store: create excl_staging: %w", err)
	}

	const chunkSize = 5000
	for start := 0; start < len(rows); start += chunkSize {
		end := start + chunkSize
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]
		if len(chunk) == 0 {
			continue
		}
		args := make([]any, 0, len(chunk)*3)
		values := make([]string, 0, len(chunk))
		argID := 1
		for _, r := range chunk {
			values = append(values, fmt.Sprintf("($%d, $%d, $%d)", argID, argID+1, argID+2))
			argID += 3
			args = append(args, string(r.EntityType), r.EntityID, r.Instance)
		}
		sql := "INSERT INTO excl_staging (entity_type, entity_id, instance) VALUES " + strings.Join(values, ", ")
		if _, err := e.conn.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("store: stage excl_staging chunk: %w", err)
		}
	}
	return nil
}

// EmptyTags returns the ids of tags (among candidateIDs) with zero visible
// content: no scene directly or inherited-tagged with it (excluding scenes
// already in excl_staging) and no live child tag in tag_hierarchy (a tag
// with children is always kept).
func (e *EmptyConn) EmptyTags(ctx context.Context, candidateIDs []string, instance string) ([]string, error) {
	if len(candidateIDs) == 0 {
		return nil, nil
	}
	sql := fmt.Sprintf(`
		SELECT t.%s
		FROM %s t
		WHERE t.%s = ANY($1)
		 AND t.deleted_at IS NULL
		 AND NOT EXISTS (
		 SELECT 1 FROM %s s
		 WHERE t.%s = ANY(s.%s)
		 AND s.deleted_at IS NULL
		 AND NOT EXISTS (
		 SELECT 1 FROM excl_staging x
		 WHERE x.entity_type = 'scene' AND x.entity_id = s.%s
		 AND (x.instance = s.%s OR x.instance = '')
		 )
		 )
		 AND NOT EXISTS (
		 SELECT 1 FROM %s st JOIN %s s ON s.%s = st.%s AND s.%s = st.%s
		 WHERE st.%s = t.%s AND s.deleted_at IS NULL
		 AND NOT EXISTS (
		 SELECT 1 FROM excl_staging x
		 WHERE x.entity_type = 'scene' AND x.entity_id = s.%s
		 AND (x.instance = s.%s OR x.instance = '')
		 )
		 )
		 AND NOT EXISTS (
		 SELECT 1 FROM %s th
		 JOIN %s ct ON ct.%s = th.%s AND ct.deleted_at IS NULL
		 WHERE th.%s = t.%s
		 )
	`,
		schema.Tag.ID,
		schema.Tag.Table, schema.Tag.ID,
		schema.Scene.Table, schema.Tag.ID, schema.Scene.InheritedTagIDs,
		schema.Scene.ID, schema.Scene.Instance,
		schema.SceneTag.Table, schema.Scene.Table, schema.Scene.ID, schema.SceneTag.LeftID, schema.Scene.Instance, schema.SceneTag.LeftInstance,
		schema.SceneTag.RightID, schema.Tag.ID,
		schema.Scene.ID, schema.Scene.Instance,
		schema.TagHierarchy.Table,
		schema.Tag.Table, schema.Tag.ID, schema.TagHierarchy.RightID,
		schema.TagHierarchy.LeftID, schema.Tag.ID)
	_ = instance // tags are global organizational entities; instance scoping handled by caller pre-filtering candidateIDs
	rows, err := e.conn.Query(ctx, sql, candidateIDs)
	if err != nil {
		return nil, fmt.Errorf("store: empty tags: %w", err)
	}
	defer rows.Close()
	return scanStrings(rows)
}

// EmptyStudios returns studio ids with zero visible scenes AND zero
// visible images (spec.md §4.4 reason 4: "studio: no surviving scene and
// no surviving image").
func (e *EmptyConn) EmptyStudios(ctx context.Context, candidateIDs []string) ([]string, error) {
	if len(candidateIDs) == 0 {
		return nil, nil
	}
	sql := fmt.Sprintf(`
		SELECT p.%s FROM %s p
		WHERE p.%s = ANY($1) AND p.deleted_at IS NULL
		 AND NOT EXISTS (
		 SELECT 1 FROM %s c WHERE c.%s = p.%s AND c.deleted_at IS NULL
		 AND NOT EXISTS (SELECT 1 FROM excl_staging x WHERE x.entity_type = 'scene' AND x.entity_id = c.id)
		 )
		 AND NOT EXISTS (
		 SELECT 1 FROM %s c WHERE c.%s = p.%s AND c.deleted_at IS NULL
		 AND NOT EXISTS (SELECT 1 FROM excl_staging x WHERE x.entity_type = 'image' AND x.entity_id = c.id)
		 )
	`, schema.Studio.ID, schema.Studio.Table, schema.Studio.ID,
		schema.Scene.Table, schema.Scene.StudioID, schema.Studio.ID,
		schema.Image.Table, schema.Image.StudioID, schema.Studio.ID)
	rows, err := e.conn.Query(ctx, sql, candidateIDs)
	if err != nil {
		return nil, fmt.Errorf("store: empty studios: %w", err)
	}
	defer rows.Close()
	return scanStrings(rows)
}

// EmptyPerformers returns performer ids with zero visible scenes AND zero
// visible images (spec.md §4.4 reason 4: "performer: no surviving scene
// and no surviving image").
func (e *EmptyConn) EmptyPerformers(ctx context.Context, candidateIDs []string) ([]string, error) {
	if len(candidateIDs) == 0 {
		return nil, nil
	}
	sp, ip := schema.ScenePerformer, schema.ImagePerformer
	sql := fmt.Sprintf(`
		SELECT p.%s FROM %s p
		WHERE p.%s = ANY($1) AND p.deleted_at IS NULL
		 AND NOT EXISTS (
		 SELECT 1 FROM %s j JOIN %s c ON c.id = j.%s
		 WHERE j.%s = p.%s AND c.deleted_at IS NULL
		 AND NOT EXISTS (SELECT 1 FROM excl_staging x WHERE x.entity_type = 'scene' AND x.entity_id = c.id)
		 )
		 AND NOT EXISTS (
		 SELECT 1 FROM %s j JOIN %s c ON c.id = j.%s
		 WHERE j.%s = p.%s AND c.deleted_at IS NULL
		 AND NOT EXISTS (SELECT 1 FROM excl_staging x WHERE x.entity_type = 'image' AND x.entity_id = c.id)
		 )
	`, schema.Performer.ID, schema.Performer.Table, schema.Performer.ID,
		sp.Table, schema.Scene.Table, sp.LeftID, sp.RightID, schema.Performer.ID,
		ip.Table, schema.Image.Table, ip.LeftID, ip.RightID, schema.Performer.ID)
	rows, err := e.conn.Query(ctx, sql, candidateIDs)
	if err != nil {
		return nil, fmt.Errorf("store: empty performers: %w", err)
	}
	defer rows.Close()
	return scanStrings(rows)
}

// EmptyGroups returns group ids with zero visible scenes.
func (e *EmptyConn) EmptyGroups(ctx context.Context, candidateIDs []string) ([]string, error) {
	return e.emptyByJunction(ctx, candidateIDs, schema.Group.Table, schema.Group.ID, schema.SceneGroup, true, schema.Scene.Table)
}

// EmptyGalleries returns gallery ids with zero visible images. Per
// spec.md §4.4 reason 4, gallery emptiness is defined solely by "no image
// that survives" — a gallery with a surviving linked scene but zero
// images is still pruned.
func (e *EmptyConn) EmptyGalleries(ctx context.Context, candidateIDs []string) ([]string, error) {
	if len(candidateIDs) == 0 {
		return nil, nil
	}
	sql := fmt.Sprintf(`
		SELECT g.%s FROM %s g
		WHERE g.%s = ANY($1) AND g.deleted_at IS NULL
		 AND NOT EXISTS (
		 SELECT 1 FROM %s ig JOIN %s im ON im.%s = ig.%s AND im.%s = ig.%s
		 WHERE ig.%s = g.%s AND im.deleted_at IS NULL
		 AND NOT EXISTS (SELECT 1 FROM excl_staging x WHERE x.entity_type = 'image' AND x.entity_id = im.%s)
		 )
	`,
		schema.Gallery.ID, schema.Gallery.Table, schema.Gallery.ID,
		schema.ImageGallery.Table, schema.Image.Table, schema.Image.ID, schema.ImageGallery.LeftID, schema.Image.Instance, schema.ImageGallery.LeftInstance,
		schema.ImageGallery.RightID, schema.Gallery.ID,
		schema.Image.ID)
	rows, err := e.conn.Query(ctx, sql, candidateIDs)
	if err != nil {
		return nil, fmt.Errorf("store: empty galleries: %w", err)
	}
	defer rows.Close()
	return scanStrings(rows)
}

func (e *EmptyConn) emptyByJunction(ctx context.Context, candidateIDs []string, parentTable, parentIDCol string, jt schema.JunctionTable, parentIsRight bool, childTable string) ([]string, error) {
	if len(candidateIDs) == 0 {
		return nil, nil
	}
	parentJCol, childJCol := jt.LeftID, jt.RightID
	if parentIsRight {
		parentJCol, childJCol = jt.RightID, jt.LeftID
	}
	sql := fmt.Sprintf(`
		SELECT p.%s FROM %s p
		WHERE p.%s = ANY($1) AND p.deleted_at IS NULL
		 AND NOT EXISTS (
		 SELECT 1 FROM %s j JOIN %s c ON c.id = j.%s
		 WHERE j.%s = p.%s AND c.deleted_at IS NULL
		 AND NOT EXISTS (SELECT 1 FROM excl_staging x WHERE x.entity_type = 'scene' AND x.entity_id = c.id)
		 )
	`, parentIDCol, parentTable, parentIDCol, jt.Table, childTable, childJCol, parentJCol, parentIDCol)
	rows, err := e.conn.Query(ctx, sql, candidateIDs)
	if err != nil {
		return nil, fmt.Errorf("store: empty by junction (%s): %w", jt.Table, err)
	}
	defer rows.Close()
	return scanStrings(rows)
}

// # Commit

// CommitExclusions atomically replaces userID's materialized exclusion set
// and refreshes UserEntityStats inside one short transaction; the
// computation that produced rows runs outside that transaction to avoid
// long write locks.
func (s *Store) CommitExclusions(ctx context.Context, userID string, rows []ExcludedRow, statsByKind map[model.Kind]int64) error {
	return s.WithTx(ctx, 30*time.Second, func(ctx context.Context, tx pgx.Tx) error {
		ue := schema.UserExcludedEntity
		if _, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s = $1", ue.Table, ue.UserID), userID); err != nil {
			return fmt.Errorf("delete prior exclusions: %w", err)
		}

		const chunkSize = 2000
		for start := 0; start < len(rows); start += chunkSize {
			end := start + chunkSize
			if end > len(rows) {
				end = len(rows)
			}
			chunk := rows[start:end]
			if len(chunk) == 0 {
				continue
			}
			var values []string
			args := make([]any, 0, len(chunk)*5)
			argID := 1
			for _, r := range chunk {
				values = append(values, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)", argID, argID+1, argID+2, argID+3, argID+4))
				argID += 5
				args = append(args, userID, string(r.EntityType), r.EntityID, r.Instance, string(r.Reason))
			}
			sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", ue.Table, strings.Join(ue.Columns(), ", "), strings.Join(values, ", "))
			if _, err := tx.Exec(ctx, sql, args...); err != nil {
				return fmt.Errorf("insert exclusions chunk: %w", err)
			}
		}

		stats := schema.UserEntityStats
		for kind, count := range statsByKind {
			sql := fmt.Sprintf(
				"INSERT INTO %s (%s, %s, %s, %s) VALUES ($1, $2, '', $3) ON CONFLICT (%s, %s, %s) DO UPDATE SET %s = EXCLUDED.%s",
				stats.Table, stats.UserID, stats.EntityType, stats.Instance, stats.VisibleCount,
				stats.UserID, stats.EntityType, stats.Instance, stats.VisibleCount, stats.VisibleCount)
			if _, err := tx.Exec(ctx, sql, userID, string(kind), count); err != nil {
				return fmt.Errorf("refresh stats for %s: %w", kind, err)
			}
		}
		return nil
	})
}

func scanStrings(rows pgx.Rows) ([]string, error) {
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

