package schema

// UserHiddenEntityTable represents the 'overlay.user_hidden_entity' table.
type UserHiddenEntityTable struct {
	Table string

	UserID     string
	EntityType string
	EntityID   string
	Instance   string
}

// UserHiddenEntity is the schema definition for overlay.user_hidden_entity.
var UserHiddenEntity = UserHiddenEntityTable{
	Table:      "overlay.user_hidden_entity",
	UserID:     "user_id",
	EntityType: "entity_type",
	EntityID:   "entity_id",
	Instance:   "instance",
}

func (t UserHiddenEntityTable) Columns() []string {
	return []string{t.UserID, t.EntityType, t.EntityID, t.Instance}
}

// UserContentRestrictionTable represents the 'overlay.user_content_restriction' table.
type UserContentRestrictionTable struct {
	Table string

	UserID        string
	EntityType    string
	Mode          string
	EntityIDs     string
	RestrictEmpty string
}

// UserContentRestriction is the schema definition for overlay.user_content_restriction.
var UserContentRestriction = UserContentRestrictionTable{
	Table:         "overlay.user_content_restriction",
	UserID:        "user_id",
	EntityType:    "entity_type",
	Mode:          "mode",
	EntityIDs:     "entity_ids",
	RestrictEmpty: "restrict_empty",
}

func (t UserContentRestrictionTable) Columns() []string {
	return []string{t.UserID, t.EntityType, t.Mode, t.EntityIDs, t.RestrictEmpty}
}

// UserExcludedEntityTable represents the 'overlay.user_excluded_entity' table.
type UserExcludedEntityTable struct {
	Table string

	UserID     string
	EntityType string
	EntityID   string
	Instance   string
	Reason     string
}

// UserExcludedEntity is the schema definition for overlay.user_excluded_entity.
var UserExcludedEntity = UserExcludedEntityTable{
	Table:      "overlay.user_excluded_entity",
	UserID:     "user_id",
	EntityType: "entity_type",
	EntityID:   "entity_id",
	Instance:   "instance",
	Reason:     "reason",
}

func (t UserExcludedEntityTable) Columns() []string {
	return []string{t.UserID, t.EntityType, t.EntityID, t.Instance, t.Reason}
}

// UserRatingTable represents the 'overlay.user_rating' table: the per-user
// rating/favorite overlay joined into every browsable kind's query (spec's
// "FROM ... left-joined to the user's rating/favorite overlay").
type UserRatingTable struct {
	Table string

	UserID     string
	EntityType string
	EntityID   string
	Instance   string
	Rating     string
	Favorite   string
	UpdatedAt  string
}

// UserRating is the schema definition for overlay.user_rating.
var UserRating = UserRatingTable{
	Table:      "overlay.user_rating",
	UserID:     "user_id",
	EntityType: "entity_type",
	EntityID:   "entity_id",
	Instance:   "instance",
	Rating:     "rating",
	Favorite:   "favorite",
	UpdatedAt:  "updated_at",
}

func (t UserRatingTable) Columns() []string {
	return []string{t.UserID, t.EntityType, t.EntityID, t.Instance, t.Rating, t.Favorite, t.UpdatedAt}
}

// UserEntityStatsTable represents the 'overlay.user_entity_stats' table.
type UserEntityStatsTable struct {
	Table string

	UserID       string
	EntityType   string
	Instance     string
	VisibleCount string
}

// UserEntityStats is the schema definition for overlay.user_entity_stats.
var UserEntityStats = UserEntityStatsTable{
	Table:        "overlay.user_entity_stats",
	UserID:       "user_id",
	EntityType:   "entity_type",
	Instance:     "instance",
	VisibleCount: "visible_count",
}

func (t UserEntityStatsTable) Columns() []string {
	return []string{t.UserID, t.EntityType, t.Instance, t.VisibleCount}
}
