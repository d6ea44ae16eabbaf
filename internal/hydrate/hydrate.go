// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package hydrate is the relation hydrator (C7): given a page of primary
entities already fetched by internal/query, it batch-loads the lightweight
related entities a listing needs to render (a scene's studio, a tag's
related performers, a gallery's cover image) without N+1 round trips.

Strategy: collect composite keys (model.Ref) from the page's own scalar
foreign keys or junction rows, issue one OR-composed batched query per
related kind, build an (id:instance) -> RefDTO map, then let the caller
stitch results onto its own page. A junction row whose target has
disappeared (orphan) is silently skipped rather than surfaced as an
error — consistent with how the sync engine already treats malformed
upstream references.
*/
package hydrate

import (
	"context"
	"fmt"
	"strings"

	"github.com/mirrorstash/mirrorstash/internal/mirror/model"
	"github.com/mirrorstash/mirrorstash/internal/mirror/store"
	"github.com/mirrorstash/mirrorstash/internal/mirror/store/schema"
)

// RefDTO is the lightweight display projection of a related entity: just
// enough to render a chip/link without a second fetch.
type RefDTO struct {
	ID       string `json:"id"`
	Instance string `json:"instance,omitempty"`
	Name     string `json:"name"`
	ImagePath string `json:"image_path,omitempty"`
}

// Hydrator batch-loads related entities over a shared store connection.
type Hydrator struct {
	store *store.Store
}

// New constructs a Hydrator over st.
func New(st *store.Store) *Hydrator {
	return &Hydrator{store: st}
}

// lookupTable returns the physical table plus id/instance/name/image
// columns for kind, the shape every display hydration reads.
func lookupTable(kind model.Kind) (table, idCol, instCol, nameCol, imageCol string, ok bool) {
	switch kind {
	case model.KindScene:
		return schema.Scene.Table, schema.Scene.ID, schema.Scene.Instance, schema.Scene.Title, "", true
	case model.KindImage:
		return schema.Image.Table, schema.Image.ID, schema.Image.Instance, schema.Image.Title, "", true
	case model.KindGallery:
		return schema.Gallery.Table, schema.Gallery.ID, schema.Gallery.Instance, schema.Gallery.Title, "", true
	case model.KindPerformer:
		return schema.Performer.Table, schema.Performer.ID, schema.Performer.Instance, schema.Performer.Name, schema.Performer.ImagePath, true
	case model.KindStudio:
		return schema.Studio.Table, schema.Studio.ID, schema.Studio.Instance, schema.Studio.Name, schema.Studio.ImagePath, true
	case model.KindTag:
		return schema.Tag.Table, schema.Tag.ID, schema.Tag.Instance, schema.Tag.Name, schema.Tag.ImagePath, true
	case model.KindGroup:
		return schema.Group.Table, schema.Group.ID, schema.Group.Instance, schema.Group.Name, schema.Group.ImagePath, true
	default:
		return "", "", "", "", "", false
	}
}

// dedupeRefs removes duplicate (id, instance) pairs and empty ids, the
// shape every batched lookup below expects as input.
func dedupeRefs(refs []model.Ref) []model.Ref {
	seen := make(map[model.Ref]bool, len(refs))
	out := make([]model.Ref, 0, len(refs))
	for _, r := range refs {
		if r.ID == "" || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}

// orCompositeClause builds an OR-composed set of (col1 = $n AND col2 = $n+1)
// clauses, one per ref, starting numbering at argStart. Used instead of a
// `(a, b) IN ((..),(..))` row-constructor so the statement reads the same
// way the rest of this codebase's dynamic SQL does.
func orCompositeClause(col1, col2 string, refs []model.Ref, argStart int) (string, []any) {
	clauses := make([]string, 0, len(refs))
	args := make([]any, 0, len(refs)*2)
	argID := argStart
	for _, r := range refs {
		clauses = append(clauses, fmt.Sprintf("(%s = $%d AND %s = $%d)", col1, argID, col2, argID+1))
		args = append(args, r.ID, r.Instance)
		argID += 2
	}
	return strings.Join(clauses, " OR "), args
}

// HydrateRefs batch-loads the display projection for a set of direct
// foreign-key references of a single kind (e.g. every scene's studio_id).
// Refs with an empty id are skipped (no FK set); a ref whose target has
// been soft-deleted or never existed is simply absent from the result map.
func (h *Hydrator) HydrateRefs(ctx context.Context, kind model.Kind, refs []model.Ref) (map[model.Ref]RefDTO, error) {
	out := map[model.Ref]RefDTO{}
	refs = dedupeRefs(refs)
	if len(refs) == 0 {
		return out, nil
	}

	table, idCol, instCol, nameCol, imageCol, ok := lookupTable(kind)
	if !ok {
		return nil, fmt.Errorf("hydrate: unsupported kind %q", kind)
	}

	whereClause, args := orCompositeClause(idCol, instCol, refs, 1)
	imageSelect := "''"
	if imageCol != "" {
		imageSelect = imageCol
	}
	sql := fmt.Sprintf(
		"SELECT %s, %s, %s, %s FROM %s WHERE deleted_at IS NULL AND (%s)",
		idCol, instCol, nameCol, imageSelect, table, whereClause,
	)

	rows, err := h.store.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("hydrate: refs (%s): %w", kind, err)
	}
	defer rows.Close()

	for rows.Next() {
		var dto RefDTO
		if err := rows.Scan(&dto.ID, &dto.Instance, &dto.Name, &dto.ImagePath); err != nil {
			return nil, fmt.Errorf("hydrate: scan ref (%s): %w", kind, err)
		}
		out[model.Ref{ID: dto.ID, Instance: dto.Instance}] = dto
	}
	return out, rows.Err()
}

// HydrateJunctionChildren batch-loads, for a set of parent refs, every
// related childKind entity reachable through jt — a scene's performers,
// a gallery's tags, and so on. The returned map is keyed by the *parent*
// ref so callers can stitch directly onto their own page.
func (h *Hydrator) HydrateJunctionChildren(ctx context.Context, jt schema.JunctionTable, parents []model.Ref, childKind model.Kind) (map[model.Ref][]RefDTO, error) {
	out := map[model.Ref][]RefDTO{}
	parents = dedupeRefs(parents)
	if len(parents) == 0 {
		return out, nil
	}

	childTable, childIDCol, childInstCol, childNameCol, childImageCol, ok := lookupTable(childKind)
	if !ok {
		return nil, fmt.Errorf("hydrate: unsupported child kind %q", childKind)
	}

	whereClause, args := orCompositeClause(jt.LeftID, jt.LeftInstance, parents, 1)
	imageSelect := "''"
	if childImageCol != "" {
		imageSelect = "c." + childImageCol
	}
	sql := fmt.Sprintf(
		"SELECT j.%s, j.%s, c.%s, c.%s, c.%s, %s FROM %s j JOIN %s c ON c.%s = j.%s AND c.%s = j.%s WHERE c.deleted_at IS NULL AND (%s)",
		jt.LeftID, jt.LeftInstance, childIDCol, childInstCol, childNameCol, imageSelect,
		jt.Table, childTable, childIDCol, jt.RightID, childInstCol, jt.RightInstance,
		whereClause,
	)

	rows, err := h.store.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("hydrate: junction children (%s via %s): %w", childKind, jt.Table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var parentID, parentInstance string
		var dto RefDTO
		if err := rows.Scan(&parentID, &parentInstance, &dto.ID, &dto.Instance, &dto.Name, &dto.ImagePath); err != nil {
			return nil, fmt.Errorf("hydrate: scan junction child (%s): %w", childKind, err)
		}
		parent := model.Ref{ID: parentID, Instance: parentInstance}
		out[parent] = append(out[parent], dto)
	}
	return out, rows.Err()
}

// HydrateJunctionParents is the mirror image of HydrateJunctionChildren,
// walking a junction from its right side back to the left-side entities —
// used by e.g. a tag page listing every performer tagged with it.
func (h *Hydrator) HydrateJunctionParents(ctx context.Context, jt schema.JunctionTable, children []model.Ref, parentKind model.Kind) (map[model.Ref][]RefDTO, error) {
	out := map[model.Ref][]RefDTO{}
	children = dedupeRefs(children)
	if len(children) == 0 {
		return out, nil
	}

	parentTable, parentIDCol, parentInstCol, parentNameCol, parentImageCol, ok := lookupTable(parentKind)
	if !ok {
		return nil, fmt.Errorf("hydrate: unsupported parent kind %q", parentKind)
	}

	whereClause, args := orCompositeClause(jt.RightID, jt.RightInstance, children, 1)
	imageSelect := "''"
	if parentImageCol != "" {
		imageSelect = "p." + parentImageCol
	}
	sql := fmt.Sprintf(
		"SELECT j.%s, j.%s, p.%s, p.%s, p.%s, %s FROM %s j JOIN %s p ON p.%s = j.%s AND p.%s = j.%s WHERE p.deleted_at IS NULL AND (%s)",
		jt.RightID, jt.RightInstance, parentIDCol, parentInstCol, parentNameCol, imageSelect,
		jt.Table, parentTable, parentIDCol, jt.LeftID, parentInstCol, jt.LeftInstance,
		whereClause,
	)

	rows, err := h.store.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("hydrate: junction parents (%s via %s): %w", parentKind, jt.Table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var childID, childInstance string
		var dto RefDTO
		if err := rows.Scan(&childID, &childInstance, &dto.ID, &dto.Instance, &dto.Name, &dto.ImagePath); err != nil {
			return nil, fmt.Errorf("hydrate: scan junction parent (%s): %w", parentKind, err)
		}
		child := model.Ref{ID: childID, Instance: childInstance}
		out[child] = append(out[child], dto)
	}
	return out, rows.Err()
}
