// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package exclusion

import (
	"context"
	"fmt"

	"github.com/mirrorstash/mirrorstash/internal/mirror/model"
	"github.com/mirrorstash/mirrorstash/internal/mirror/store"
)

// rowKey identifies one (kind, id, instance) triple for dedup.
type rowKey struct {
	kind model.Kind
	id string
	instance string
}

// Compute derives one user's full exclusion set, in priority order
// (restricted, hidden, cascade, empty), deduplicating so the first
// reason an entity qualifies under wins. It is a pure read path: nothing is
// written until the caller passes the result to [store.Store.CommitExclusions].
func Compute(ctx context.Context, st *store.Store, userID string) ([]store.ExcludedRow, map[model.Kind]int64, error) {
	set := map[rowKey]store.ExcludedRow{}
	add := func(row store.ExcludedRow) {
		k := rowKey{row.EntityType, row.EntityID, row.Instance}
		if _, exists := set[k]; !exists {
			set[k] = row
		}
	}

	restrictions, err := st.ListUserContentRestrictions(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("exclusion: load restrictions: %w", err)
	}
	if err := computeRestricted(ctx, st, restrictions, add); err != nil {
		return nil, nil, err
	}

	hidden, err := st.ListUserHiddenEntities(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("exclusion: load hidden entities: %w", err)
	}
	for _, h := range hidden {
		add(store.ExcludedRow{EntityType: h.EntityType, EntityID: h.EntityID, Instance: h.Instance, Reason: model.ExclusionHidden})
	}

	if err := computeCascade(ctx, st, set, add); err != nil {
		return nil, nil, err
	}

	if err := computeEmpty(ctx, st, set, add); err != nil {
		return nil, nil, err
	}

	rows := make([]store.ExcludedRow, 0, len(set))
	for _, r := range set {
		rows = append(rows, r)
	}

	stats, err := computeStats(ctx, st, set)
	if err != nil {
		return nil, nil, err
	}
	return rows, stats, nil
}

// computeRestricted applies reason 1: EXCLUDE rules add their listed ids
// directly (global scope — the rule carries bare ids, no instance); INCLUDE
// rules resolve to everything in the mirror NOT in the allow-list, matched
// by bare id against the mirror's real (id, instance) rows.
func computeRestricted(ctx context.Context, st *store.Store, restrictions []model.UserContentRestriction, add func(store.ExcludedRow)) error {
	for _, r := range restrictions {
		kind, ok := model.KindFromPlural(r.EntityType)
		if !ok {
			return fmt.Errorf("exclusion: unknown restriction entity type %q", r.EntityType)
		}

		switch r.Mode {
		case model.RestrictionExclude:
			for _, id := range r.EntityIDs {
				add(store.ExcludedRow{EntityType: kind, EntityID: id, Instance: "", Reason: model.ExclusionRestricted})
			}
		case model.RestrictionInclude:
			allow := make(map[string]bool, len(r.EntityIDs))
			for _, id := range r.EntityIDs {
				allow[id] = true
			}
			refs, err := st.ListAllRefs(ctx, kind)
			if err != nil {
				return fmt.Errorf("exclusion: list all refs for INCLUDE restriction (%s): %w", kind, err)
			}
			for _, ref := range refs {
				if !allow[ref.ID] {
					add(store.ExcludedRow{EntityType: kind, EntityID: ref.ID, Instance: ref.Instance, Reason: model.ExclusionRestricted})
				}
			}
		default:
			return fmt.Errorf("exclusion: unknown restriction mode %q", r.Mode)
		}
	}
	return nil
}

// computeCascade applies reason 3: every restricted/hidden row of a
// cascade-capable kind pulls in its one-level cascade targets. It groups
// source ids by instance so a mix of global (instance="") and per-instance
// hides in the same recompute each cascade query correctly.
func computeCascade(ctx context.Context, st *store.Store, set map[rowKey]store.ExcludedRow, add func(store.ExcludedRow)) error {
	bySourceKindInstance := map[model.Kind]map[string][]string{}
	for k := range set {
		capable := false
		for _, ck := range cascadeCapableKinds {
			if ck == k.kind {
				capable = true
				break
			}
		}
		if !capable {
			continue
		}
		if bySourceKindInstance[k.kind] == nil {
			bySourceKindInstance[k.kind] = map[string][]string{}
		}
		bySourceKindInstance[k.kind][k.instance] = append(bySourceKindInstance[k.kind][k.instance], k.id)
	}

	for kind, byInstance := range bySourceKindInstance {
		for instance, ids := range byInstance {
			targets, err := cascadeEdges(ctx, st, kind, ids, instance)
			if err != nil {
				return fmt.Errorf("exclusion: cascade from %s: %w", kind, err)
			}
			for _, t := range targets {
				add(store.ExcludedRow{EntityType: t.Kind, EntityID: t.ID, Instance: t.Instance, Reason: model.ExclusionCascade})
			}
		}
	}
	return nil
}

// computeEmpty applies reason 4: an organizational entity with zero
// surviving content, checked against every candidate of that kind not
// already excluded, via a single pinned connection holding the reasons-1-3
// set as a temp table. It runs unconditionally on every recompute;
// RestrictEmpty on a restriction row is not read here; it exists on the
// model for schema completeness only.
func computeEmpty(ctx context.Context, st *store.Store, set map[rowKey]store.ExcludedRow, add func(store.ExcludedRow)) error {
	staged := make([]store.ExcludedRow, 0, len(set))
	for _, r := range set {
		staged = append(staged, r)
	}

	conn, err := st.AcquireEmptyConn(ctx)
	if err != nil {
		return fmt.Errorf("exclusion: acquire empty-pass connection: %w", err)
	}
	defer conn.Release()

	if err := conn.StageExclusionSet(ctx, staged); err != nil {
		return fmt.Errorf("exclusion: stage exclusion set: %w", err)
	}

	for _, kind := range organizationalKinds {
		refs, err := st.ListAllRefs(ctx, kind)
		if err != nil {
			return fmt.Errorf("exclusion: list all refs for empty pass (%s): %w", kind, err)
		}
		candidates := make([]string, 0, len(refs))
		instanceByID := map[string]string{}
		for _, ref := range refs {
			k := rowKey{kind, ref.ID, ref.Instance}
			kGlobal := rowKey{kind, ref.ID, ""}
			if _, excluded := set[k]; excluded {
				continue
			}
			if _, excluded := set[kGlobal]; excluded {
				continue
			}
			candidates = append(candidates, ref.ID)
			instanceByID[ref.ID] = ref.Instance
		}
		if len(candidates) == 0 {
			continue
		}

		var emptyIDs []string
		switch kind {
		case model.KindTag:
			emptyIDs, err = conn.EmptyTags(ctx, candidates, "")
		case model.KindStudio:
			emptyIDs, err = conn.EmptyStudios(ctx, candidates)
		case model.KindPerformer:
			emptyIDs, err = conn.EmptyPerformers(ctx, candidates)
		case model.KindGroup:
			emptyIDs, err = conn.EmptyGroups(ctx, candidates)
		case model.KindGallery:
			emptyIDs, err = conn.EmptyGalleries(ctx, candidates)
		}
		if err != nil {
			return fmt.Errorf("exclusion: empty pass (%s): %w", kind, err)
		}
		for _, id := range emptyIDs {
			add(store.ExcludedRow{EntityType: kind, EntityID: id, Instance: instanceByID[id], Reason: model.ExclusionEmpty})
		}
	}
	return nil
}

// computeStats derives the visible-count per kind used to refresh
// UserEntityStats alongside the exclusion swap.
func computeStats(ctx context.Context, st *store.Store, set map[rowKey]store.ExcludedRow) (map[model.Kind]int64, error) {
	excludedCount := map[model.Kind]int64{}
	for k := range set {
		excludedCount[k.kind]++
	}

	stats := map[model.Kind]int64{}
	for _, kind := range model.SyncOrder {
		refs, err := st.ListAllRefs(ctx, kind)
		if err != nil {
			return nil, fmt.Errorf("exclusion: compute stats for %s: %w", kind, err)
		}
		visible := int64(len(refs)) - excludedCount[kind]
		if visible < 0 {
			visible = 0
		}
		stats[kind] = visible
	}
	return stats, nil
}
