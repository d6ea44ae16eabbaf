// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package model

import "time"

// SyncState tracks per-(instance, entityType) sync progress. Cursors are
// opaque RFC3339-ish strings from the upstream, with timezone stripped and
// ".999" subsecond padding applied before storage (see internal/sync's
// cursor policy) so a later ">" comparison never re-fetches an already
// processed second.
type SyncState struct {
	Instance   string `json:"instance"`
	EntityType Kind   `json:"entity_type"`

	LastFullCursor        *string    `json:"last_full_cursor,omitempty"`
	LastIncrementalCursor *string    `json:"last_incremental_cursor,omitempty"`
	LastRunAt             *time.Time `json:"last_run_at,omitempty"`
	LastRunDuration        *int64    `json:"last_run_duration_ms,omitempty"`
	LastRunCount           int64     `json:"last_run_count"`
	LastError              *string   `json:"last_error,omitempty"`
}

const (
	SyncStateFieldInstance              = "instance"
	SyncStateFieldEntityType            = "entity_type"
	SyncStateFieldLastFullCursor        = "last_full_cursor"
	SyncStateFieldLastIncrementalCursor = "last_incremental_cursor"
	SyncStateFieldLastRunAt             = "last_run_at"
	SyncStateFieldLastRunDuration        = "last_run_duration_ms"
	SyncStateFieldLastRunCount           = "last_run_count"
	SyncStateFieldLastError              = "last_error"
)

// InstanceConfig is a configured upstream server: identity, connection
// details, and scheduling priority. Persisted in the mirror store (the
// InstanceRegistry table) and loaded once at startup into the in-process
// registry (internal/upstream.Registry) keyed by Instance id.
type InstanceConfig struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	BaseURL     string `json:"base_url"`
	APIKey      string `json:"-"` // never serialized to clients
	Enabled     bool   `json:"enabled"`
	Priority    int    `json:"priority"`
}

const (
	InstanceConfigFieldID          = "id"
	InstanceConfigFieldDisplayName = "display_name"
	InstanceConfigFieldBaseURL     = "base_url"
	InstanceConfigFieldAPIKey      = "api_key"
	InstanceConfigFieldEnabled     = "enabled"
	InstanceConfigFieldPriority    = "priority"
)
