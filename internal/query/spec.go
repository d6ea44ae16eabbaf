// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package query

import (
	"github.com/mirrorstash/mirrorstash/internal/mirror/model"
	"github.com/mirrorstash/mirrorstash/internal/mirror/store/schema"
)

// fieldKind narrows which Filter.Kind a fieldSpec may be used with — a
// defensive check against wiring e.g. a Numeric filter at a text column.
type fieldKind int

const (
	fieldText fieldKind = iota
	fieldNumeric
	fieldDate
)

type fieldSpec struct {
	column string
	kind   fieldKind
}

// sortSpec maps one external sort key to a column (or "random", handled
// specially by builder.go/random.go).
type sortSpec struct {
	column       string
	caseInsensitive bool
}

// junctionSpec names one many-to-many relation the kind being queried
// participates in as the left-hand side.
type junctionSpec struct {
	table schema.JunctionTable
}

// kindSpec is the per-kind configuration the shared builder closes over.
// All browsable kinds share the same table shape (id, instance,
// deleted_at, plus kind-specific columns), so this is the only place that
// shape is named per kind.
type kindSpec struct {
	table    string
	idCol    string
	instCol  string
	nameCol  string // the kind's primary display field; the builder does not read it (the sort tie-break uses idCol)

	exclusionType model.Kind // value stored in overlay.user_excluded_entity.entity_type for this kind

	searchColumns []string
	fields        map[string]fieldSpec
	junctions     map[string]junctionSpec
	sorts         map[string]sortSpec
	defaultSort   string

	hierarchy bool // tag/studio: supports a Hierarchy filter over `hierarchyField`
	hierarchyField string
}

var sceneSpec = kindSpec{
	table: schema.Scene.Table, idCol: schema.Scene.ID, instCol: schema.Scene.Instance, nameCol: schema.Scene.Title,
	exclusionType: model.KindScene,
	searchColumns: []string{schema.Scene.Title, schema.Scene.Details, schema.Scene.Code, schema.Scene.Director},
	fields: map[string]fieldSpec{
		"title": {schema.Scene.Title, fieldText}, "code": {schema.Scene.Code, fieldText},
		"details": {schema.Scene.Details, fieldText}, "director": {schema.Scene.Director, fieldText},
		"date": {schema.Scene.Date, fieldDate},
		"duration": {schema.Scene.Duration, fieldNumeric}, "width": {schema.Scene.Width, fieldNumeric},
		"height": {schema.Scene.Height, fieldNumeric}, "bitrate": {schema.Scene.Bitrate, fieldNumeric},
		"size": {schema.Scene.Size, fieldNumeric}, "play_count": {schema.Scene.PlayCount, fieldNumeric},
		"o_count": {schema.Scene.OCount, fieldNumeric},
	},
	junctions: map[string]junctionSpec{
		"performer_ids": {schema.ScenePerformer}, "tag_ids": {schema.SceneTag},
		"group_ids": {schema.SceneGroup}, "gallery_ids": {schema.SceneGallery},
	},
	sorts: map[string]sortSpec{
		"title": {schema.Scene.Title, true}, "date": {schema.Scene.Date, false},
		"duration": {schema.Scene.Duration, false}, "play_count": {schema.Scene.PlayCount, false},
		"o_count": {schema.Scene.OCount, false}, "size": {schema.Scene.Size, false},
		"updated_at": {schema.Scene.UpdatedAt, false},
	},
	defaultSort: "title",
}

var imageSpec = kindSpec{
	table: schema.Image.Table, idCol: schema.Image.ID, instCol: schema.Image.Instance, nameCol: schema.Image.Title,
	exclusionType: model.KindImage,
	searchColumns: []string{schema.Image.Title, schema.Image.Details, schema.Image.Photographer},
	fields: map[string]fieldSpec{
		"title": {schema.Image.Title, fieldText}, "details": {schema.Image.Details, fieldText},
		"photographer": {schema.Image.Photographer, fieldText}, "date": {schema.Image.Date, fieldDate},
		"width": {schema.Image.Width, fieldNumeric}, "height": {schema.Image.Height, fieldNumeric},
		"size": {schema.Image.Size, fieldNumeric}, "o_count": {schema.Image.OCount, fieldNumeric},
	},
	junctions: map[string]junctionSpec{
		"performer_ids": {schema.ImagePerformer}, "tag_ids": {schema.ImageTag}, "gallery_ids": {schema.ImageGallery},
	},
	sorts: map[string]sortSpec{
		"title": {schema.Image.Title, true}, "date": {schema.Image.Date, false},
		"size": {schema.Image.Size, false}, "o_count": {schema.Image.OCount, false},
		"updated_at": {schema.Image.UpdatedAt, false},
	},
	defaultSort: "title",
}

var gallerySpec = kindSpec{
	table: schema.Gallery.Table, idCol: schema.Gallery.ID, instCol: schema.Gallery.Instance, nameCol: schema.Gallery.Title,
	exclusionType: model.KindGallery,
	searchColumns: []string{schema.Gallery.Title, schema.Gallery.Details, schema.Gallery.Photographer},
	fields: map[string]fieldSpec{
		"title": {schema.Gallery.Title, fieldText}, "details": {schema.Gallery.Details, fieldText},
		"photographer": {schema.Gallery.Photographer, fieldText}, "date": {schema.Gallery.Date, fieldDate},
	},
	junctions: map[string]junctionSpec{
		"performer_ids": {schema.GalleryPerformer}, "tag_ids": {schema.GalleryTag},
	},
	sorts: map[string]sortSpec{
		"title": {schema.Gallery.Title, true}, "date": {schema.Gallery.Date, false},
		"updated_at": {schema.Gallery.UpdatedAt, false},
	},
	defaultSort: "title",
}

var performerSpec = kindSpec{
	table: schema.Performer.Table, idCol: schema.Performer.ID, instCol: schema.Performer.Instance, nameCol: schema.Performer.Name,
	exclusionType: model.KindPerformer,
	searchColumns: []string{schema.Performer.Name},
	fields: map[string]fieldSpec{
		"name": {schema.Performer.Name, fieldText},
		"scene_count": {schema.Performer.SceneCount, fieldNumeric}, "image_count": {schema.Performer.ImageCount, fieldNumeric},
	},
	junctions: map[string]junctionSpec{"tag_ids": {schema.PerformerTag}},
	sorts: map[string]sortSpec{
		"name": {schema.Performer.Name, true}, "scene_count": {schema.Performer.SceneCount, false},
		"image_count": {schema.Performer.ImageCount, false}, "updated_at": {schema.Performer.UpdatedAt, false},
	},
	defaultSort: "name",
}

var studioSpec = kindSpec{
	table: schema.Studio.Table, idCol: schema.Studio.ID, instCol: schema.Studio.Instance, nameCol: schema.Studio.Name,
	exclusionType: model.KindStudio,
	searchColumns: []string{schema.Studio.Name},
	fields: map[string]fieldSpec{
		"name": {schema.Studio.Name, fieldText},
		"scene_count": {schema.Studio.SceneCount, fieldNumeric}, "image_count": {schema.Studio.ImageCount, fieldNumeric},
	},
	junctions: map[string]junctionSpec{"tag_ids": {schema.StudioTag}},
	sorts: map[string]sortSpec{
		"name": {schema.Studio.Name, true}, "scene_count": {schema.Studio.SceneCount, false},
		"image_count": {schema.Studio.ImageCount, false}, "updated_at": {schema.Studio.UpdatedAt, false},
	},
	defaultSort: "name",
	hierarchy: true, hierarchyField: "parent",
}

var tagSpec = kindSpec{
	table: schema.Tag.Table, idCol: schema.Tag.ID, instCol: schema.Tag.Instance, nameCol: schema.Tag.Name,
	exclusionType: model.KindTag,
	searchColumns: []string{schema.Tag.Name},
	fields: map[string]fieldSpec{
		"name": {schema.Tag.Name, fieldText},
		"scene_count_via_performer": {schema.Tag.SceneCountViaPerformer, fieldNumeric},
		"image_count": {schema.Tag.ImageCount, fieldNumeric},
	},
	sorts: map[string]sortSpec{
		"name": {schema.Tag.Name, true}, "scene_count_via_performer": {schema.Tag.SceneCountViaPerformer, false},
		"image_count": {schema.Tag.ImageCount, false}, "updated_at": {schema.Tag.UpdatedAt, false},
	},
	defaultSort: "name",
	hierarchy: true, hierarchyField: "parent",
}

var groupSpec = kindSpec{
	table: schema.Group.Table, idCol: schema.Group.ID, instCol: schema.Group.Instance, nameCol: schema.Group.Name,
	exclusionType: model.KindGroup,
	searchColumns: []string{schema.Group.Name},
	fields: map[string]fieldSpec{
		"name": {schema.Group.Name, fieldText},
		"scene_count": {schema.Group.SceneCount, fieldNumeric},
	},
	junctions: map[string]junctionSpec{"tag_ids": {schema.GroupTag}},
	sorts: map[string]sortSpec{
		"name": {schema.Group.Name, true}, "scene_count": {schema.Group.SceneCount, false},
		"updated_at": {schema.Group.UpdatedAt, false},
	},
	defaultSort: "name",
}

var clipSpec = kindSpec{
	table: schema.Clip.Table, idCol: schema.Clip.ID, instCol: schema.Clip.Instance, nameCol: schema.Clip.ID,
	exclusionType: model.KindClip,
	fields: map[string]fieldSpec{
		"start": {schema.Clip.Start, fieldNumeric}, "end": {schema.Clip.End, fieldNumeric},
		"is_generated": {schema.Clip.IsGenerated, fieldNumeric},
	},
	sorts: map[string]sortSpec{
		"start": {schema.Clip.Start, false}, "updated_at": {schema.Clip.UpdatedAt, false},
	},
	defaultSort: "start",
}
