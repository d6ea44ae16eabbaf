package schema

// SyncStateTable represents the 'mirror.sync_state' table.
type SyncStateTable struct {
	Table string

	Instance string
	EntityType string
	LastFullCursor string
	LastIncrementalCursor string
	LastRunAt string
	LastRunDuration string
	LastRunCount string
	LastError string
}

// SyncState is the schema definition for mirror.sync_state.
var SyncState = SyncStateTable{
	Table: "mirror.sync_state",
	Instance: "instance",
	EntityType: "entity_type",
	LastFullCursor: "last_full_cursor",
	LastIncrementalCursor: "last_incremental_cursor",
	LastRunAt: "last_run_at",
	LastRunDuration: "last_run_duration_ms",
	LastRunCount: "last_run_count",
	LastError: "last_error",
}

func (t SyncStateTable) Columns() []string {
	return []string{
		t.Instance, t.EntityType, t.LastFullCursor, t.LastIncrementalCursor,
		t.LastRunAt, t.LastRunDuration, t.LastRunCount, t.LastError,
	}
}

// InstanceRegistryTable represents the 'mirror.instance_registry' table.
//
// Promoted to a first-class table (spec's supplement) instead of a
// config-only in-memory map, so instances survive restarts and are
// editable without a redeploy.
type InstanceRegistryTable struct {
	Table string

	ID string
	DisplayName string
	BaseURL string
	APIKey string
	Enabled string
	Priority string
}

// InstanceRegistry is the schema definition for mirror.instance_registry.
var InstanceRegistry = InstanceRegistryTable{
	Table: "mirror.instance_registry",
	ID: "id",
	DisplayName: "display_name",
	BaseURL: "base_url",
	APIKey: "api_key",
	Enabled: "enabled",
	Priority: "priority",
}

func (t InstanceRegistryTable) Columns() []string {
	return []string{t.ID, t.DisplayName, t.BaseURL, t.APIKey, t.Enabled, t.Priority}
}
