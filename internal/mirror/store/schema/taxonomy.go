package schema

// PerformerTable represents the 'mirror.performer' table.
type PerformerTable struct {
	Table string

	ID         string
	Instance   string
	Name       string
	ImagePath  string
	SceneCount string
	ImageCount string
	UpdatedAt  string
	DeletedAt  string
}

// Performer is the schema definition for mirror.performer.
var Performer = PerformerTable{
	Table:      "mirror.performer",
	ID:         "id",
	Instance:   "instance",
	Name:       "name",
	ImagePath:  "image_path",
	SceneCount: "scene_count",
	ImageCount: "image_count",
	UpdatedAt:  "updated_at",
	DeletedAt:  "deleted_at",
}

func (t PerformerTable) Columns() []string {
	return []string{t.ID, t.Instance, t.Name, t.ImagePath, t.SceneCount, t.ImageCount, t.UpdatedAt, t.DeletedAt}
}

// StudioTable represents the 'mirror.studio' table.
type StudioTable struct {
	Table string

	ID                   string
	Instance             string
	Name                 string
	ImagePath            string
	ParentStudioID       string
	ParentStudioInstance string
	SceneCount           string
	ImageCount           string
	UpdatedAt            string
	DeletedAt            string
}

// Studio is the schema definition for mirror.studio.
var Studio = StudioTable{
	Table:                "mirror.studio",
	ID:                   "id",
	Instance:             "instance",
	Name:                 "name",
	ImagePath:            "image_path",
	ParentStudioID:       "parent_studio_id",
	ParentStudioInstance: "parent_studio_instance",
	SceneCount:           "scene_count",
	ImageCount:           "image_count",
	UpdatedAt:            "updated_at",
	DeletedAt:            "deleted_at",
}

func (t StudioTable) Columns() []string {
	return []string{
		t.ID, t.Instance, t.Name, t.ImagePath, t.ParentStudioID,
		t.ParentStudioInstance, t.SceneCount, t.ImageCount, t.UpdatedAt, t.DeletedAt,
	}
}

// TagTable represents the 'mirror.tag' table.
type TagTable struct {
	Table string

	ID                     string
	Instance               string
	Name                   string
	ImagePath              string
	SceneCountViaPerformer string
	ImageCount             string
	UpdatedAt              string
	DeletedAt              string
}

// Tag is the schema definition for mirror.tag.
var Tag = TagTable{
	Table:                  "mirror.tag",
	ID:                     "id",
	Instance:               "instance",
	Name:                   "name",
	ImagePath:              "image_path",
	SceneCountViaPerformer: "scene_count_via_performer",
	ImageCount:             "image_count",
	UpdatedAt:              "updated_at",
	DeletedAt:              "deleted_at",
}

func (t TagTable) Columns() []string {
	return []string{t.ID, t.Instance, t.Name, t.ImagePath, t.SceneCountViaPerformer, t.ImageCount, t.UpdatedAt, t.DeletedAt}
}

// GroupTable represents the 'mirror.group_entity' table. Named group_entity
// rather than group since the latter is a reserved word the query builders'
// unquoted identifiers can't carry through a FROM clause.
type GroupTable struct {
	Table string

	ID                  string
	Instance            string
	Name                string
	ImagePath           string
	ParentGroupID       string
	ParentGroupInstance string
	SceneCount          string
	UpdatedAt           string
	DeletedAt           string
}

// Group is the schema definition for mirror.group_entity.
var Group = GroupTable{
	Table:               "mirror.group_entity",
	ID:                  "id",
	Instance:            "instance",
	Name:                "name",
	ImagePath:           "image_path",
	ParentGroupID:       "parent_group_id",
	ParentGroupInstance: "parent_group_instance",
	SceneCount:          "scene_count",
	UpdatedAt:           "updated_at",
	DeletedAt:           "deleted_at",
}

func (t GroupTable) Columns() []string {
	return []string{
		t.ID, t.Instance, t.Name, t.ImagePath, t.ParentGroupID,
		t.ParentGroupInstance, t.SceneCount, t.UpdatedAt, t.DeletedAt,
	}
}
