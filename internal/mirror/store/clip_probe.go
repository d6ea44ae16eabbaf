// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package store

import (
	"context"
	"fmt"

	"github.com/mirrorstash/mirrorstash/internal/mirror/store/schema"
)

// UngeneratedClip is one candidate for re-probing (C8): its preview URL and
// the composite key needed to persist the verdict.
type UngeneratedClip struct {
	ID string
	Instance string
	PreviewPath string
}

// ListUngeneratedClips returns every live clip not yet marked generated and
// carrying a non-empty preview_path, across all instances. The admin
// reprobe path (-FULL POST /v1/prober/reprobe) runs this once, classifies
// the batch through [prober.Prober], and persists verdicts individually via
// UpdateClipGenerated.
func (s *Store) ListUngeneratedClips(ctx context.Context, limit int) ([]UngeneratedClip, error) {
	t := schema.Clip
	sqlStr := fmt.Sprintf(
		"SELECT %s, %s, %s FROM %s WHERE deleted_at IS NULL AND %s = FALSE AND %s != '' ORDER BY %s ASC LIMIT $1",
		t.ID, t.Instance, t.PreviewPath, t.Table, t.IsGenerated, t.PreviewPath, t.UpdatedAt)
	rows, err := s.Pool.Query(ctx, sqlStr, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list ungenerated clips: %w", err)
	}
	defer rows.Close()

	var out []UngeneratedClip
	for rows.Next() {
		var c UngeneratedClip
		if err := rows.Scan(&c.ID, &c.Instance, &c.PreviewPath); err != nil {
			return nil, fmt.Errorf("store: scan ungenerated clip: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateClipGenerated persists one clip's prober verdict.
func (s *Store) UpdateClipGenerated(ctx context.Context, instance, id string, generated bool) error {
	t := schema.Clip
	sqlStr := fmt.Sprintf("UPDATE %s SET %s = $1 WHERE %s = $2 AND %s = $3", t.Table, t.IsGenerated, t.ID, t.Instance)
	_, err := s.Pool.Exec(ctx, sqlStr, generated, id, instance)
	if err != nil {
		return fmt.Errorf("store: update clip generated: %w", err)
	}
	return nil
}
