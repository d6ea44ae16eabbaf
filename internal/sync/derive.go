// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sync

import (
	"context"
	"fmt"

	"github.com/mirrorstash/mirrorstash/internal/exclusion"
	"github.com/mirrorstash/mirrorstash/internal/mirror/store"
)

// runDerivation executes the fixed six-step post-sync sequence:
// scene tag inheritance, gallery->image inheritance, inherited image
// counts, tag scene-count-via-performer, then a user-visible-count refresh
// and a full exclusion recompute for every user with overlay state. The
// stats refresh has no step of its own: [store.Store.CommitExclusions]
// writes UserEntityStats as part of the same swap the recompute performs,
// so step five is folded into step six rather than run separately.
func runDerivation(ctx context.Context, st *store.Store, excl *exclusion.Engine, instance string) error {
	if err := st.DeriveSceneTagInheritance(ctx, instance); err != nil {
		return fmt.Errorf("sync: derive scene tag inheritance: %w", err)
	}
	if err := st.DeriveGalleryImageInheritance(ctx, instance); err != nil {
		return fmt.Errorf("sync: derive gallery image inheritance: %w", err)
	}
	if err := st.DeriveInheritedImageCounts(ctx, instance); err != nil {
		return fmt.Errorf("sync: derive inherited image counts: %w", err)
	}
	if err := st.DeriveTagSceneCountViaPerformer(ctx, instance); err != nil {
		return fmt.Errorf("sync: derive tag scene count via performer: %w", err)
	}

	users, err := st.ListUsersWithOverlay(ctx)
	if err != nil {
		return fmt.Errorf("sync: list users for post-sync recompute: %w", err)
	}
	excl.RecomputeAll(ctx, users)
	return nil
}

// touchesDerivationScope reports whether a sync run processed at least one
// scene, gallery, or image batch — the trigger condition for running
// [runDerivation] after anything but a full sync (full sync always
// runs it at the end regardless).
func touchesDerivationScope(touched map[string]int) bool {
	return touched["scene"] > 0 || touched["gallery"] > 0 || touched["image"] > 0
}
