// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sync

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mirrorstash/mirrorstash/internal/mirror/store"
)

// reconcileMissingScenes runs the merge-detection check over one cleanup
// pass's batch of scene ids that have disappeared from upstream: a scene
// with a non-null phash sharing that fingerprint with another surviving
// mirror scene is treated as a re-encode/re-import rather than a deletion —
// its user-overlay rows move to the surviving scene before it is soft-
// deleted. A scene without a phash, or without a match, is simply
// soft-deleted.
//
// It returns the full id list still to soft-delete (all of them — a
// reconciled scene is soft-deleted too, it just no longer carries orphaned
// overlay state).
func reconcileMissingScenes(ctx context.Context, st *store.Store, log *slog.Logger, instance string, missingIDs []string) error {
	for _, oldID := range missingIDs {
		phash, err := st.GetScenePhash(ctx, instance, oldID)
		if err != nil {
			return fmt.Errorf("sync: merge check phash for %s: %w", oldID, err)
		}
		if phash == nil || *phash == "" {
			continue
		}

		survivors, err := st.FindOtherScenesByPhash(ctx, instance, *phash, oldID)
		if err != nil {
			return fmt.Errorf("sync: merge find scenes by phash for %s: %w", oldID, err)
		}
		if len(survivors) == 0 {
			continue
		}

		newID := survivors[0]
		if err := st.ReassignSceneOverlay(ctx, instance, oldID, newID); err != nil {
			return fmt.Errorf("sync: merge reassign overlay %s -> %s: %w", oldID, newID, err)
		}
		log.Info("sync: merged disappearing scene into surviving sibling",
			slog.String("instance", instance), slog.String("old_id", oldID), slog.String("new_id", newID), slog.String("phash", *phash))
	}
	return nil
}
