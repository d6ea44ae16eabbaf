// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sync

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/mirrorstash/mirrorstash/internal/mirror/model"
	"github.com/mirrorstash/mirrorstash/internal/mirror/store"
	"github.com/mirrorstash/mirrorstash/internal/platform/constants"
	"github.com/mirrorstash/mirrorstash/internal/upstream"
)

// ownedJunction is one junction kind a batch of a given entity kind
// maintains, and which side of that junction the batch's own ids sit on.
type ownedJunction struct {
	kind model.JunctionKind
	bySide bool // true = delete/match by child (right) side, false = parent (left) side
}

// ownedJunctions returns the junction kinds a sync batch of kind must
// delete-and-reinsert as part of upserting its entities. Tag is the one
// kind owned from its child side: tag_hierarchy records a tag's parents,
// keyed by the tag as the right-hand (child) id.
func ownedJunctions(kind model.Kind) []ownedJunction {
	switch kind {
	case model.KindScene:
		return []ownedJunction{{model.JunctionScenePerformer, false}, {model.JunctionSceneTag, false}, {model.JunctionSceneGroup, false}, {model.JunctionSceneGallery, false}}
	case model.KindImage:
		return []ownedJunction{{model.JunctionImagePerformer, false}, {model.JunctionImageTag, false}, {model.JunctionImageGallery, false}}
	case model.KindGallery:
		return []ownedJunction{{model.JunctionGalleryPerformer, false}, {model.JunctionGalleryTag, false}}
	case model.KindPerformer:
		return []ownedJunction{{model.JunctionPerformerTag, false}}
	case model.KindStudio:
		return []ownedJunction{{model.JunctionStudioTag, false}}
	case model.KindGroup:
		return []ownedJunction{{model.JunctionGroupTag, false}}
	case model.KindTag:
		return []ownedJunction{{model.JunctionTagHierarchy, true}}
	default:
		return nil
	}
}

// batchResult summarizes one processed batch, used to decide whether the
// post-sync derivation sequence needs to run ("any sync that touched
// at least one scene, gallery, or image").
type batchResult struct {
	Processed int
	Dropped int // ids/junction refs rejected by the id-safety check
}

// processBatch decodes one page of upstream objects for kind, validates
// every id (and every related id a junction row would carry) against the
// sync-wide id pattern, and commits the entity upsert plus full junction
// rebuild for the batch in a single transaction (delete junctions, upsert,
// reinsert junctions).
func processBatch(ctx context.Context, st *store.Store, log *slog.Logger, kind model.Kind, instance string, raw []upstream.RawObject) (batchResult, error) {
	res := batchResult{}
	if len(raw) == 0 {
		return res, nil
	}

	table, columns, ok := tableForKind(kind)
	if !ok {
		return res, fmt.Errorf("sync: process batch: unknown kind %q", kind)
	}

	var rows []store.EntityRow
	junctionRows := map[model.JunctionKind][][4]string{}
	parentIDs := make([]string, 0, len(raw))

	for _, obj := range raw {
		d, err := decodeEntity(kind, obj, instance)
		if err != nil {
			return res, fmt.Errorf("sync: decode %s: %w", kind, err)
		}
		if !validID(d.Row.ID) {
			res.Dropped++
			log.Warn("sync: dropping entity with invalid id", slog.String("kind", string(kind)), slog.String("id", d.Row.ID))
			continue
		}

		rows = append(rows, d.Row)
		parentIDs = append(parentIDs, d.Row.ID)

		for jk, childIDs := range d.Junctions {
			for _, cid := range childIDs {
				if !validID(cid) {
					res.Dropped++
					continue
				}
				junctionRows[jk] = append(junctionRows[jk], [4]string{d.Row.ID, instance, cid, instance})
			}
		}
		if kind == model.KindTag {
			for _, parentID := range d.ParentTagIDs {
				if !validID(parentID) {
					res.Dropped++
					continue
				}
				junctionRows[model.JunctionTagHierarchy] = append(junctionRows[model.JunctionTagHierarchy], [4]string{parentID, instance, d.Row.ID, instance})
			}
		}
	}

	if len(rows) == 0 {
		return res, nil
	}

	err := st.WithTx(ctx, constants.JunctionDeleteTimeout, func(ctx context.Context, tx pgx.Tx) error {
		for _, oj := range ownedJunctions(kind) {
			jt, ok := junctionTableFor(oj.kind)
			if !ok {
				continue
			}
			var err error
			if oj.bySide {
				err = store.DeleteJunctionsForChildren(ctx, tx, jt, parentIDs, instance)
			} else {
				err = store.DeleteJunctionsForParents(ctx, tx, jt, parentIDs, instance)
			}
			if err != nil {
				return err
			}
		}

		if err := store.UpsertEntities(ctx, tx, table, columns, rows); err != nil {
			return err
		}

		for _, oj := range ownedJunctions(kind) {
			jt, ok := junctionTableFor(oj.kind)
			if !ok {
				continue
			}
			if err := store.InsertJunctions(ctx, tx, jt, junctionRows[oj.kind]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return res, fmt.Errorf("sync: commit batch (%s): %w", kind, err)
	}

	res.Processed = len(rows)
	return res, nil
}
