// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package query

import (
	"context"
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/mirrorstash/mirrorstash/internal/mirror/store"
)

// idKey is the id/instance pair random sort carries through its phases.
type idKey struct {
	ID       string
	Instance string
	hash     uint64
}

// RandomPage runs a deterministic random sort: a Go-side hash of (id,
// seed), not a SQL expression, determines order, so the result is stable
// for a given seed across pages but reshuffles when the seed changes.
// Three phases: id-only scan under the filters,
// an in-process hash+sort+slice, then a detail fetch restricted to that
// page's ids (reordered in Go to match, since the detail query itself
// uses an unrelated SQL ORDER BY for plan stability).
func RandomPage(ctx context.Context, st *store.Store, spec kindSpec, opts Options) (ids []idKey, total int, err error) {
	idSQL, idArgs := BuildIDPage(spec, opts)
	rows, err := st.Pool.Query(ctx, idSQL, idArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("query: random id scan (%s): %w", spec.table, err)
	}

	var all []idKey
	for rows.Next() {
		var k idKey
		if err := rows.Scan(&k.ID, &k.Instance); err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("query: scan random id (%s): %w", spec.table, err)
		}
		all = append(all, k)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	seed := opts.Sort.RandomSeed
	for i := range all {
		all[i].hash = xxhash.Sum64String(all[i].ID + seed)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].hash != all[j].hash {
			return all[i].hash < all[j].hash
		}
		return all[i].ID < all[j].ID // tie-break keeps the order deterministic
	})

	total = len(all)
	start := opts.Page.offset()
	if start > total {
		start = total
	}
	end := start + opts.Page.limit()
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

// ReorderByIDKeys sorts rows (any slice whose id the caller can read via
// keyOf) to match the order of page, the permutation RandomPage computed.
// Detail queries run with their own ORDER BY for index-friendliness, so the
// random permutation has to be reapplied in-process after the detail fetch.
func ReorderByIDKeys[T any](page []idKey, rows []T, keyOf func(T) (id, instance string)) []T {
	pos := make(map[idKey]int, len(page))
	for i, k := range page {
		pos[idKey{ID: k.ID, Instance: k.Instance}] = i
	}
	out := make([]T, len(rows))
	copy(out, rows)
	sort.Slice(out, func(i, j int) bool {
		idI, instI := keyOf(out[i])
		idJ, instJ := keyOf(out[j])
		return pos[idKey{ID: idI, Instance: instI}] < pos[idKey{ID: idJ, Instance: instJ}]
	})
	return out
}
