// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package store

import (
	"context"
	"fmt"

	"github.com/mirrorstash/mirrorstash/internal/mirror/model"
	"github.com/mirrorstash/mirrorstash/internal/mirror/store/schema"
)

// ListInstances returns every configured upstream instance (enabled or
// not), ordered by descending priority then id — loaded once at startup
// into [upstream.Registry] and reloaded by the admin "reload instances" path.
func (s *Store) ListInstances(ctx context.Context) ([]model.InstanceConfig, error) {
	t := schema.InstanceRegistry
	sql := fmt.Sprintf("SELECT %s, %s, %s, %s, %s, %s FROM %s ORDER BY %s DESC, %s ASC",
		t.ID, t.DisplayName, t.BaseURL, t.APIKey, t.Enabled, t.Priority, t.Table, t.Priority, t.ID)

	rows, err := s.Pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("store: list instances: %w", err)
	}
	defer rows.Close()

	var out []model.InstanceConfig
	for rows.Next() {
		var c model.InstanceConfig
		if err := rows.Scan(&c.ID, &c.DisplayName, &c.BaseURL, &c.APIKey, &c.Enabled, &c.Priority); err != nil {
			return nil, fmt.Errorf("store: scan instance: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SeedInstance inserts instance if the registry table is currently empty
// for that id (used to bootstrap from config.InstanceSeedJSON on first
// boot); once a row exists it is authoritative and this is a no-op.
func (s *Store) SeedInstance(ctx context.Context, c model.InstanceConfig) error {
	t := schema.InstanceRegistry
	sql := fmt.Sprintf(
		"INSERT INTO %s (%s, %s, %s, %s, %s, %s) VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (%s) DO NOTHING",
		t.Table, t.ID, t.DisplayName, t.BaseURL, t.APIKey, t.Enabled, t.Priority, t.ID,
	)
	_, err := s.Pool.Exec(ctx, sql, c.ID, c.DisplayName, c.BaseURL, c.APIKey, c.Enabled, c.Priority)
	if err != nil {
		return fmt.Errorf("store: seed instance %s: %w", c.ID, err)
	}
	return nil
}

// SetInstanceEnabled toggles an instance's enabled flag (admin operation).
func (s *Store) SetInstanceEnabled(ctx context.Context, instanceID string, enabled bool) error {
	t := schema.InstanceRegistry
	sql := fmt.Sprintf("UPDATE %s SET %s = $1 WHERE %s = $2", t.Table, t.Enabled, t.ID)
	_, err := s.Pool.Exec(ctx, sql, enabled, instanceID)
	if err != nil {
		return fmt.Errorf("store: set instance enabled: %w", err)
	}
	return nil
}
