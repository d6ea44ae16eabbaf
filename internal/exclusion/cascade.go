// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package exclusion

import (
	"context"
	"fmt"

	"github.com/mirrorstash/mirrorstash/internal/mirror/model"
	"github.com/mirrorstash/mirrorstash/internal/mirror/store"
)

// target is one cascade-reached entity.
type target struct {
	Kind model.Kind
	ID string
	Instance string
}

// cascadeEdges walks the one-level cascade graph for a single source kind:
// performer/studio/group/gallery each cascade to their scenes (and, for
// galleries, images); tags additionally cascade to every directly-tagged
// performer, studio and group, plus tagged-or-inherited scenes.
func cascadeEdges(ctx context.Context, st *store.Store, kind model.Kind, ids []string, instance string) ([]target, error) {
	var out []target
	add := func(edges []store.Edge, err error) error {
		if err != nil {
			return err
		}
		for _, e := range edges {
			out = append(out, target{Kind: e.ChildKind, ID: e.ChildID, Instance: e.Instance})
		}
		return nil
	}

	switch kind {
	case model.KindPerformer:
		if err := add(st.ScenesByPerformer(ctx, ids, instance)); err != nil {
			return nil, fmt.Errorf("cascade performer->scene: %w", err)
		}
	case model.KindStudio:
		if err := add(st.ScenesByStudio(ctx, ids, instance)); err != nil {
			return nil, fmt.Errorf("cascade studio->scene: %w", err)
		}
	case model.KindGroup:
		if err := add(st.ScenesByGroup(ctx, ids, instance)); err != nil {
			return nil, fmt.Errorf("cascade group->scene: %w", err)
		}
	case model.KindGallery:
		if err := add(st.ScenesByGallery(ctx, ids, instance)); err != nil {
			return nil, fmt.Errorf("cascade gallery->scene: %w", err)
		}
		if err := add(st.ImagesByGallery(ctx, ids, instance)); err != nil {
			return nil, fmt.Errorf("cascade gallery->image: %w", err)
		}
	case model.KindTag:
		if err := add(st.ScenesByTagDirect(ctx, ids, instance)); err != nil {
			return nil, fmt.Errorf("cascade tag->scene (direct): %w", err)
		}
		if err := add(st.ScenesByTagInherited(ctx, ids, instance)); err != nil {
			return nil, fmt.Errorf("cascade tag->scene (inherited): %w", err)
		}
		if err := add(st.PerformersByTag(ctx, ids, instance)); err != nil {
			return nil, fmt.Errorf("cascade tag->performer: %w", err)
		}
		if err := add(st.StudiosByTag(ctx, ids, instance)); err != nil {
			return nil, fmt.Errorf("cascade tag->studio: %w", err)
		}
		if err := add(st.GroupsByTag(ctx, ids, instance)); err != nil {
			return nil, fmt.Errorf("cascade tag->group: %w", err)
		}
	}
	return out, nil
}
