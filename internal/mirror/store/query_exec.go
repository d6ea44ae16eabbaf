// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// QueryPage runs a builder-produced (sql, args) pair and scans each result
// row with scan, expecting the final projected column to be a window
// `COUNT(*) OVER` total — the shape every internal/query builder emits
// . scan is responsible for capturing that total into a variable it
// owns; QueryPage itself is agnostic to the projected shape.
func (s *Store) QueryPage(ctx context.Context, sql string, args []any, scan func(rows pgx.Rows) error) error {
	rows, err := s.Pool.Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("store: query page: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("store: scan page row: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("store: query page: %w", err)
	}
	return nil
}

// QueryRow runs sql expecting at most one result row.
func (s *Store) QueryRow(ctx context.Context, sql string, args []any, scan func(row pgx.Row) error) error {
	row := s.Pool.QueryRow(ctx, sql, args...)
	if err := scan(row); err != nil {
		if err == pgx.ErrNoRows {
			return err
		}
		return fmt.Errorf("store: query row: %w", err)
	}
	return nil
}
