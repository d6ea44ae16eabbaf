// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package model

// JunctionKind identifies one of the many-to-many association tables
// between {Scene, Image, Gallery, Clip, Performer, Studio, Group} ×
// {Performer, Tag, Group, Gallery}.
type JunctionKind string

const (
	JunctionScenePerformer  JunctionKind = "scene_performer"
	JunctionSceneTag        JunctionKind = "scene_tag"
	JunctionSceneGroup      JunctionKind = "scene_group"
	JunctionSceneGallery    JunctionKind = "scene_gallery"
	JunctionImagePerformer  JunctionKind = "image_performer"
	JunctionImageTag        JunctionKind = "image_tag"
	JunctionImageGallery    JunctionKind = "image_gallery"
	JunctionGalleryPerformer JunctionKind = "gallery_performer"
	JunctionGalleryTag      JunctionKind = "gallery_tag"
	JunctionPerformerTag    JunctionKind = "performer_tag"
	JunctionStudioTag       JunctionKind = "studio_tag"
	JunctionGroupTag        JunctionKind = "group_tag"
	JunctionTagHierarchy    JunctionKind = "tag_hierarchy" // parent_id -> child_id, DAG
)

// Junction is a many-to-many association row; every row carries the
// composite key of both sides. Soft-deleted parents make the row inert to
// readers without requiring it to be deleted itself (it is reconstructed
// wholesale on the owning entity's next sync batch regardless).
type Junction struct {
	Kind JunctionKind

	LeftID       string
	LeftInstance string

	RightID       string
	RightInstance string
}

const (
	JunctionFieldLeftID        = "left_id"
	JunctionFieldLeftInstance  = "left_instance"
	JunctionFieldRightID       = "right_id"
	JunctionFieldRightInstance = "right_instance"
)
