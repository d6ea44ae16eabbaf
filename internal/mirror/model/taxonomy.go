// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package model

// Performer, Studio, Tag, and Group are the organizational entity kinds:
// hierarchy pointers vary by kind (tags: multi-parent DAG via parent-id
// list; studios/groups: single-parent via a reference). Each carries
// image-count/scene-count columns that the derivation passes (C4.3, C4.4)
// denormalize for fast listing.
type Performer struct {
	Ref

	Name      string `json:"name"`
	ImagePath string `json:"image_path,omitempty"`

	SceneCount int64 `json:"scene_count"`
	ImageCount int64 `json:"image_count"` // C4.3: direct + via-gallery

	Stamp
}

const (
	PerformerFieldID         = "id"
	PerformerFieldInstance   = "instance"
	PerformerFieldName       = "name"
	PerformerFieldImagePath  = "image_path"
	PerformerFieldSceneCount = "scene_count"
	PerformerFieldImageCount = "image_count"
	PerformerFieldUpdatedAt  = "updated_at"
	PerformerFieldDeletedAt  = "deleted_at"
)

// Studio is a single-parent organizational entity (a production company);
// ParentStudioID is empty for a root studio.
type Studio struct {
	Ref

	Name      string `json:"name"`
	ImagePath string `json:"image_path,omitempty"`

	ParentStudioID       string `json:"parent_studio_id,omitempty"`
	ParentStudioInstance string `json:"parent_studio_instance,omitempty"`

	SceneCount int64 `json:"scene_count"`
	ImageCount int64 `json:"image_count"`

	Stamp
}

const (
	StudioFieldID                   = "id"
	StudioFieldInstance             = "instance"
	StudioFieldName                 = "name"
	StudioFieldImagePath            = "image_path"
	StudioFieldParentStudioID       = "parent_studio_id"
	StudioFieldParentStudioInstance = "parent_studio_instance"
	StudioFieldSceneCount           = "scene_count"
	StudioFieldImageCount           = "image_count"
	StudioFieldUpdatedAt            = "updated_at"
	StudioFieldDeletedAt            = "deleted_at"
)

// Tag is a multi-parent DAG node (ParentTagIDs, loaded from the
// tag_hierarchy junction). SceneCountViaPerformer is the C4.4 denormalized
// rollup; it is distinct from direct scene-tag attachment counts.
type Tag struct {
	Ref

	Name      string `json:"name"`
	ImagePath string `json:"image_path,omitempty"`

	ParentTagIDs       []string `json:"parent_tag_ids,omitempty"`
	ParentTagInstances []string `json:"-"` // parallel to ParentTagIDs

	SceneCountViaPerformer int64 `json:"scene_count_via_performer"`
	ImageCount             int64 `json:"image_count"`

	Stamp
}

const (
	TagFieldID        = "id"
	TagFieldInstance  = "instance"
	TagFieldName      = "name"
	TagFieldImagePath = "image_path"
	TagFieldUpdatedAt = "updated_at"
	TagFieldDeletedAt = "deleted_at"
)

// Group is a single-parent organizational entity representing a series or
// collection of scenes (sub-groups form a tree via ParentGroupID).
type Group struct {
	Ref

	Name      string `json:"name"`
	ImagePath string `json:"image_path,omitempty"`

	ParentGroupID       string `json:"parent_group_id,omitempty"`
	ParentGroupInstance string `json:"parent_group_instance,omitempty"`

	SceneCount int64 `json:"scene_count"`

	Stamp
}

const (
	GroupFieldID                  = "id"
	GroupFieldInstance            = "instance"
	GroupFieldName                = "name"
	GroupFieldImagePath           = "image_path"
	GroupFieldParentGroupID       = "parent_group_id"
	GroupFieldParentGroupInstance = "parent_group_instance"
	GroupFieldSceneCount          = "scene_count"
	GroupFieldUpdatedAt           = "updated_at"
	GroupFieldDeletedAt           = "deleted_at"
)
