// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package store

import (
	"context"
	"fmt"

	"github.com/mirrorstash/mirrorstash/internal/mirror/store/schema"
)

// DeriveSceneTagInheritance recomputes inherited_tag_ids for every scene in
// instance: the union of its performers'/studio's/groups' tags, minus its
// own direct scene_tag attachments ( C4.1), written via a single bulk
// `UPDATE ... FROM` rather than one statement per scene.
func (s *Store) DeriveSceneTagInheritance(ctx context.Context, instance string) error {
	sql := fmt.Sprintf(`
		WITH via_performer AS (
			SELECT sp.%s AS scene_id, sp.%s AS scene_instance, pt.%s AS tag_id
			FROM %s sp JOIN %s pt ON pt.%s = sp.%s AND pt.%s = sp.%s
		),
		via_studio AS (
			SELECT sc.%s AS scene_id, sc.%s AS scene_instance, st.%s AS tag_id
			FROM %s sc JOIN %s st ON st.%s = sc.%s AND st.%s = sc.%s
			WHERE sc.%s IS NOT NULL AND sc.%s != ''
		),
		via_group AS (
			SELECT sg.%s AS scene_id, sg.%s AS scene_instance, gt.%s AS tag_id
			FROM %s sg JOIN %s gt ON gt.%s = sg.%s AND gt.%s = sg.%s
		),
		direct AS (
			SELECT %s AS scene_id, %s AS scene_instance, %s AS tag_id FROM %s
		),
		inherited AS (
			SELECT scene_id, scene_instance, array_agg(DISTINCT tag_id) AS tag_ids
			FROM (
				SELECT * FROM via_performer
				UNION
				SELECT * FROM via_studio
				UNION
				SELECT * FROM via_group
			) u
			WHERE NOT EXISTS (
				SELECT 1 FROM direct d WHERE d.scene_id = u.scene_id AND d.scene_instance = u.scene_instance AND d.tag_id = u.tag_id
			)
			GROUP BY scene_id, scene_instance
		)
		UPDATE %s sc
		SET %s = COALESCE((SELECT i.tag_ids FROM inherited i WHERE i.scene_id = sc.%s AND i.scene_instance = sc.%s), '{}')
		WHERE sc.%s = $1
	`,
		schema.ScenePerformer.LeftID, schema.ScenePerformer.LeftInstance, schema.PerformerTag.RightID,
		schema.ScenePerformer.Table, schema.PerformerTag.Table, schema.PerformerTag.LeftID, schema.ScenePerformer.RightID, schema.PerformerTag.LeftInstance, schema.ScenePerformer.RightInstance,

		schema.Scene.ID, schema.Scene.Instance, schema.StudioTag.RightID,
		schema.Scene.Table, schema.StudioTag.Table, schema.StudioTag.LeftID, schema.Scene.StudioID, schema.StudioTag.LeftInstance, schema.Scene.StudioInstance,
		schema.Scene.StudioID, schema.Scene.StudioID,

		schema.SceneGroup.LeftID, schema.SceneGroup.LeftInstance, schema.GroupTag.RightID,
		schema.SceneGroup.Table, schema.GroupTag.Table, schema.GroupTag.LeftID, schema.SceneGroup.RightID, schema.GroupTag.LeftInstance, schema.SceneGroup.RightInstance,

		schema.SceneTag.LeftID, schema.SceneTag.LeftInstance, schema.SceneTag.RightID, schema.SceneTag.Table,

		schema.Scene.Table, schema.Scene.InheritedTagIDs,
		schema.Scene.ID, schema.Scene.Instance, schema.Scene.Instance)
	if _, err := s.Pool.Exec(ctx, sql, instance); err != nil {
		return fmt.Errorf("store: derive scene tag inheritance: %w", err)
	}
	return nil
}

// DeriveGalleryImageInheritance null-fills each gallery-linked image's
// scalar fields (studio, date, photographer, details) from its gallery when
// the image's own field is null, and copies the gallery's performer/tag
// junctions onto images that have none of that kind yet ( C4.2 — never
// overwrites an image's own junctions).
func (s *Store) DeriveGalleryImageInheritance(ctx context.Context, instance string) error {
	img, gal, ig := schema.Image, schema.Gallery, schema.ImageGallery

	scalarSQL := fmt.Sprintf(`
		UPDATE %s i SET
			%s = COALESCE(i.%s, g.%s),
			%s = COALESCE(NULLIF(i.%s, ''), g.%s),
			%s = COALESCE(NULLIF(i.%s, ''), g.%s),
			%s = COALESCE(NULLIF(i.%s, ''), g.%s),
			%s = COALESCE(NULLIF(i.%s, ''), g.%s)
		FROM %s ig, %s g
		WHERE ig.%s = i.%s AND ig.%s = i.%s
		 AND g.%s = ig.%s AND g.%s = ig.%s
		 AND i.%s = $1
	`,
		img.Table,
		img.StudioID, img.StudioID, gal.StudioID,
		img.StudioInstance, img.StudioInstance, gal.StudioInstance,
		img.Date, img.Date, gal.Date,
		img.Photographer, img.Photographer, gal.Photographer,
		img.Details, img.Details, gal.Details,
		ig.Table, gal.Table,
		ig.LeftID, img.ID, ig.LeftInstance, img.Instance,
		gal.ID, ig.RightID, gal.Instance, ig.RightInstance,
		img.Instance)
	if _, err := s.Pool.Exec(ctx, scalarSQL, instance); err != nil {
		return fmt.Errorf("store: derive gallery->image scalar inheritance: %w", err)
	}

	for _, jt := range []schema.JunctionTable{schema.GalleryPerformer, schema.GalleryTag} {
		var imageJunction schema.JunctionTable
		if jt.Table == schema.GalleryPerformer.Table {
			imageJunction = schema.ImagePerformer
		} else {
			imageJunction = schema.ImageTag
		}
		sql := fmt.Sprintf(`
			INSERT INTO %s (%s, %s, %s, %s)
			SELECT i.%s, i.%s, gj.%s, gj.%s
			FROM %s ig
			JOIN %s i ON i.%s = ig.%s AND i.%s = ig.%s
			JOIN %s gj ON gj.%s = ig.%s AND gj.%s = ig.%s
			WHERE i.%s = $1
			 AND NOT EXISTS (SELECT 1 FROM %s existing WHERE existing.%s = i.%s AND existing.%s = i.%s)
			ON CONFLICT DO NOTHING
		`,
			imageJunction.Table, imageJunction.Columns()[0], imageJunction.Columns()[1], imageJunction.Columns()[2], imageJunction.Columns()[3],
			img.ID, img.Instance, jt.RightID, jt.RightInstance,
			ig.Table,
			img.Table, img.ID, ig.LeftID, img.Instance, ig.LeftInstance,
			jt.Table, jt.LeftID, ig.RightID, jt.LeftInstance, ig.RightInstance,
			img.Instance,
			imageJunction.Table, imageJunction.LeftID, img.ID, imageJunction.LeftInstance, img.Instance)
		if _, err := s.Pool.Exec(ctx, sql, instance); err != nil {
			return fmt.Errorf("store: derive gallery->image junction inheritance (%s): %w", jt.Table, err)
		}
	}
	return nil
}

// DeriveInheritedImageCounts recomputes each performer/studio/tag's
// image_count as the number of distinct images that either reference it
// directly or belong to a gallery that does ( C4.3, UNION aggregation).
func (s *Store) DeriveInheritedImageCounts(ctx context.Context, instance string) error {
	if err := s.deriveImageCount(ctx, schema.Performer.Table, schema.Performer.ImageCount, schema.ImagePerformer, schema.GalleryPerformer, instance); err != nil {
		return err
	}
	if err := s.deriveImageCount(ctx, schema.Studio.Table, schema.Studio.ImageCount, schema.JunctionTable{}, schema.JunctionTable{}, instance); err != nil {
		return err
	}
	return s.deriveImageCount(ctx, schema.Tag.Table, schema.Tag.ImageCount, schema.ImageTag, schema.GalleryTag, instance)
}

func (s *Store) deriveImageCount(ctx context.Context, table, countCol string, imgJunction, galJunction schema.JunctionTable, instance string) error {
	if table == schema.Studio.Table {
		sql := fmt.Sprintf(`
			UPDATE %s p SET %s = sub.cnt
			FROM (
				SELECT studio_id, studio_instance, COUNT(DISTINCT id) AS cnt FROM (
					SELECT %s AS studio_id, %s AS studio_instance, %s AS id FROM %s WHERE %s = $1
					UNION
					SELECT g.%s, g.%s, i.%s FROM %s i JOIN %s ig ON ig.%s = i.%s AND ig.%s = i.%s
					JOIN %s g ON g.%s = ig.%s AND g.%s = ig.%s
					WHERE i.%s = $1 AND g.%s IS NOT NULL AND g.%s != ''
				) x GROUP BY studio_id, studio_instance
			) sub
			WHERE p.%s = sub.studio_id AND p.%s = sub.studio_instance AND p.%s = $1
		`,
			table, countCol,
			schema.Image.StudioID, schema.Image.StudioInstance, schema.Image.ID, schema.Image.Table, schema.Image.Instance,
			schema.Gallery.StudioID, schema.Gallery.StudioInstance, schema.Image.ID, schema.Image.Table, schema.ImageGallery.Table, schema.ImageGallery.LeftID, schema.Image.ID, schema.ImageGallery.LeftInstance, schema.Image.Instance,
			schema.Gallery.Table, schema.Gallery.ID, schema.ImageGallery.RightID, schema.Gallery.Instance, schema.ImageGallery.RightInstance,
			schema.Image.Instance, schema.Gallery.StudioID, schema.Gallery.StudioID,
			schema.Studio.ID, schema.Studio.Instance, schema.Studio.Instance)
		if _, err := s.Pool.Exec(ctx, sql, instance); err != nil {
			return fmt.Errorf("store: derive image count (studio): %w", err)
		}
		return nil
	}

	// performer/tag: a distinct-image count via direct junction UNIONed
	// with images reachable through a gallery the entity is tagged/linked on.
	idCol, instCol := schema.Performer.ID, schema.Performer.Instance
	if table == schema.Tag.Table {
		idCol, instCol = schema.Tag.ID, schema.Tag.Instance
	}
	sql := fmt.Sprintf(`
		UPDATE %s p SET %s = sub.cnt
		FROM (
			SELECT entity_id, entity_instance, COUNT(DISTINCT img_id) AS cnt FROM (
				SELECT %s AS entity_id, %s AS entity_instance, %s AS img_id FROM %s
				UNION
				SELECT gj.%s, gj.%s, ig.%s FROM %s gj
				JOIN %s ig ON ig.%s = gj.%s AND ig.%s = gj.%s
			) x GROUP BY entity_id, entity_instance
		) sub
		WHERE p.%s = sub.entity_id AND p.%s = sub.entity_instance AND p.%s = $1
	`,
		table, countCol,
		imgJunction.RightID, imgJunction.RightInstance, imgJunction.LeftID, imgJunction.Table,
		galJunction.RightID, galJunction.RightInstance, schema.ImageGallery.LeftID, galJunction.Table,
		schema.ImageGallery.Table, schema.ImageGallery.RightID, galJunction.LeftID, schema.ImageGallery.RightInstance, galJunction.LeftInstance,
		idCol, instCol, instCol)
	if _, err := s.Pool.Exec(ctx, sql, instance); err != nil {
		return fmt.Errorf("store: derive image count (%s): %w", table, err)
	}
	return nil
}

// DeriveTagSceneCountViaPerformer recomputes each tag's
// scene_count_via_performer: the count of distinct scenes whose performers
// carry that tag ( C4.4).
func (s *Store) DeriveTagSceneCountViaPerformer(ctx context.Context, instance string) error {
	t, pt, sp := schema.Tag, schema.PerformerTag, schema.ScenePerformer
	sql := fmt.Sprintf(`
		UPDATE %s tag SET %s = sub.cnt
		FROM (
			SELECT pt.%s AS tag_id, pt.%s AS tag_instance, COUNT(DISTINCT sp.%s) AS cnt
			FROM %s pt
			JOIN %s sp ON sp.%s = pt.%s AND sp.%s = pt.%s
			GROUP BY pt.%s, pt.%s
		) sub
		WHERE tag.%s = sub.tag_id AND tag.%s = sub.tag_instance AND tag.%s = $1
	`,
		t.Table, t.SceneCountViaPerformer,
		pt.RightID, pt.RightInstance, sp.LeftID,
		pt.Table,
		sp.Table, sp.RightID, pt.LeftID, sp.RightInstance, pt.LeftInstance,
		pt.RightID, pt.RightInstance,
		t.ID, t.Instance, t.Instance)
	if _, err := s.Pool.Exec(ctx, sql, instance); err != nil {
		return fmt.Errorf("store: derive tag scene count via performer: %w", err)
	}
	return nil
}
