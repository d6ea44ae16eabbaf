// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sync

import (
	"fmt"

	"github.com/mirrorstash/mirrorstash/internal/mirror/model"
	"github.com/mirrorstash/mirrorstash/internal/mirror/store"
	"github.com/mirrorstash/mirrorstash/internal/mirror/store/schema"
	"github.com/mirrorstash/mirrorstash/internal/upstream"
)

// decoded is one upstream object translated into mirror-schema shape: the
// entity row plus every junction/child-id list it carries. Every id in
// Junctions/ParentTagIDs is assumed to share the source row's own instance
// — upstream references never cross instances.
type decoded struct {
	Row store.EntityRow
	Junctions map[model.JunctionKind][]string
	ParentTagIDs []string // tag kind only: tag_hierarchy parents
	Phash string // scene kind only: merge-detection fingerprint
}

// # RawObject field access helpers
//
// Unrecognized or absent fields decode to the zero value rather than an
// error (upstream schema growth must never break the mirror).

func getString(m upstream.RawObject, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func getStringPtr(m upstream.RawObject, key string) *string {
	if v, ok := m[key].(string); ok && v != "" {
		return &v
	}
	return nil
}

func getBool(m upstream.RawObject, key string) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return false
}

func getFloat64(m upstream.RawObject, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

func getInt(m upstream.RawObject, key string) int {
	return int(getFloat64(m, key))
}

func getInt64(m upstream.RawObject, key string) int64 {
	return int64(getFloat64(m, key))
}

// getIDs reads a field holding either a bare list of id strings or a list
// of {"id": ...} reference objects — upstream uses both shapes depending on
// the relation.
func getIDs(m upstream.RawObject, key string) []string {
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		switch v := item.(type) {
		case string:
			out = append(out, v)
		case map[string]any:
			if id, ok := v["id"].(string); ok {
				out = append(out, id)
			}
		}
	}
	return out
}

// getRefID reads a single nested {"id": ...} reference field, or a bare id
// string field.
func getRefID(m upstream.RawObject, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case map[string]any:
		if id, ok := v["id"].(string); ok {
			return id
		}
	}
	return ""
}

// decodeEntity translates one upstream RawObject of kind into its mirror
// row and junction lists. It does not validate ids; the sync batch
// processor checks the decoded id and every junction id after decode.
func decodeEntity(kind model.Kind, raw upstream.RawObject, instance string) (decoded, error) {
	switch kind {
	case model.KindScene:
		return decodeScene(raw, instance), nil
	case model.KindClip:
		return decodeClip(raw, instance), nil
	case model.KindImage:
		return decodeImage(raw, instance), nil
	case model.KindGallery:
		return decodeGallery(raw, instance), nil
	case model.KindPerformer:
		return decodePerformer(raw, instance), nil
	case model.KindStudio:
		return decodeStudio(raw, instance), nil
	case model.KindTag:
		return decodeTag(raw, instance), nil
	case model.KindGroup:
		return decodeGroup(raw, instance), nil
	default:
		return decoded{}, fmt.Errorf("sync: decode: unknown kind %q", kind)
	}
}

func decodeScene(raw upstream.RawObject, instance string) decoded {
	id := getRefID(raw, "id")
	if id == "" {
		id = getString(raw, "id")
	}
	phash := ""
	allPhash := getIDs(raw, "all_phash")
	if len(allPhash) > 0 {
		phash = allPhash[0]
	}
	studioID := getRefID(raw, "studio")
	studioInstance := ""
	if studioID != "" {
		studioInstance = instance
	}

	values := []any{
		getString(raw, "title"), getString(raw, "code"), getStringPtr(raw, "date"),
		getString(raw, "details"), getString(raw, "director"),
		studioID, studioInstance,
		getInt(raw, "duration"),
		getString(raw, "path"), getString(raw, "codec"), getInt(raw, "width"), getInt(raw, "height"),
		getInt64(raw, "bitrate"), getInt64(raw, "size"),
		getString(raw, "screenshot_path"), getString(raw, "preview_path"), getString(raw, "sprite_path"),
		getString(raw, "vtt_path"), getString(raw, "stream_path"), getString(raw, "captions_path"),
		getInt64(raw, "play_count"), getInt64(raw, "o_count"),
		getStringPtr(raw, "phash"), allPhash,
		[]string{}, // inherited_tag_ids: computed by DeriveSceneTagInheritance, never set from upstream
		getString(raw, "updated_at"), nil,
	}
	return decoded{
		Row: store.EntityRow{ID: id, Instance: instance, Values: values},
		Junctions: map[model.JunctionKind][]string{
			model.JunctionScenePerformer: getIDs(raw, "performer_ids"),
			model.JunctionSceneTag: getIDs(raw, "tag_ids"),
			model.JunctionSceneGroup: getIDs(raw, "group_ids"),
			model.JunctionSceneGallery: getIDs(raw, "gallery_ids"),
		},
		Phash: phash,
	}
}

func decodeClip(raw upstream.RawObject, instance string) decoded {
	sceneID := getRefID(raw, "scene")
	sceneInstance := ""
	if sceneID != "" {
		sceneInstance = instance
	}
	tagID := getRefID(raw, "primary_tag")
	tagInstance := ""
	if tagID != "" {
		tagInstance = instance
	}
	values := []any{
		sceneID, sceneInstance,
		getFloat64(raw, "start"), getFloat64(raw, "end"),
		tagID, tagInstance,
		getString(raw, "preview_path"), getString(raw, "screenshot_path"), getString(raw, "stream_path"),
		false, // is_generated: set by the preview prober (C8), never from upstream
		getString(raw, "updated_at"), nil,
	}
	return decoded{Row: store.EntityRow{ID: getString(raw, "id"), Instance: instance, Values: values}}
}

func decodeImage(raw upstream.RawObject, instance string) decoded {
	studioID := getRefID(raw, "studio")
	studioInstance := ""
	if studioID != "" {
		studioInstance = instance
	}
	values := []any{
		getString(raw, "title"), getStringPtr(raw, "date"),
		studioID, studioInstance,
		getString(raw, "photographer"), getString(raw, "details"),
		getString(raw, "path"), getInt(raw, "width"), getInt(raw, "height"), getInt64(raw, "size"),
		getInt64(raw, "o_count"),
		getString(raw, "updated_at"), nil,
	}
	return decoded{
		Row: store.EntityRow{ID: getString(raw, "id"), Instance: instance, Values: values},
		Junctions: map[model.JunctionKind][]string{
			model.JunctionImagePerformer: getIDs(raw, "performer_ids"),
			model.JunctionImageTag: getIDs(raw, "tag_ids"),
			model.JunctionImageGallery: getIDs(raw, "gallery_ids"),
		},
	}
}

func decodeGallery(raw upstream.RawObject, instance string) decoded {
	studioID := getRefID(raw, "studio")
	studioInstance := ""
	if studioID != "" {
		studioInstance = instance
	}
	coverID := getRefID(raw, "cover_image")
	coverInstance := ""
	if coverID != "" {
		coverInstance = instance
	}
	title := getString(raw, "title")
	if title == "" {
		title = getString(raw, "folder_path")
	}
	values := []any{
		title, coverID, coverInstance,
		studioID, studioInstance,
		getStringPtr(raw, "date"), getString(raw, "photographer"), getString(raw, "details"),
		getString(raw, "updated_at"), nil,
	}
	return decoded{
		Row: store.EntityRow{ID: getString(raw, "id"), Instance: instance, Values: values},
		Junctions: map[model.JunctionKind][]string{
			model.JunctionGalleryPerformer: getIDs(raw, "performer_ids"),
			model.JunctionGalleryTag: getIDs(raw, "tag_ids"),
		},
	}
}

func decodePerformer(raw upstream.RawObject, instance string) decoded {
	values := []any{
		getString(raw, "name"), getString(raw, "image_path"),
		int64(0), int64(0), // scene_count/image_count: derived, never set from upstream
		getString(raw, "updated_at"), nil,
	}
	return decoded{Row: store.EntityRow{ID: getString(raw, "id"), Instance: instance, Values: values}}
}

func decodeStudio(raw upstream.RawObject, instance string) decoded {
	parentID := getRefID(raw, "parent_studio")
	parentInstance := ""
	if parentID != "" {
		parentInstance = instance
	}
	values := []any{
		getString(raw, "name"), getString(raw, "image_path"),
		parentID, parentInstance,
		int64(0), int64(0),
		getString(raw, "updated_at"), nil,
	}
	return decoded{Row: store.EntityRow{ID: getString(raw, "id"), Instance: instance, Values: values}}
}

func decodeTag(raw upstream.RawObject, instance string) decoded {
	values := []any{
		getString(raw, "name"), getString(raw, "image_path"),
		int64(0), int64(0),
		getString(raw, "updated_at"), nil,
	}
	return decoded{
		Row: store.EntityRow{ID: getString(raw, "id"), Instance: instance, Values: values},
		ParentTagIDs: getIDs(raw, "parent_ids"),
	}
}

func decodeGroup(raw upstream.RawObject, instance string) decoded {
	parentID := getRefID(raw, "parent_group")
	parentInstance := ""
	if parentID != "" {
		parentInstance = instance
	}
	values := []any{
		getString(raw, "name"), getString(raw, "image_path"),
		parentID, parentInstance,
		int64(0),
		getString(raw, "updated_at"), nil,
	}
	return decoded{Row: store.EntityRow{ID: getString(raw, "id"), Instance: instance, Values: values}}
}

// junctionTableFor maps a JunctionKind to its schema.JunctionTable.
func junctionTableFor(jk model.JunctionKind) (schema.JunctionTable, bool) {
	switch jk {
	case model.JunctionScenePerformer:
		return schema.ScenePerformer, true
	case model.JunctionSceneTag:
		return schema.SceneTag, true
	case model.JunctionSceneGroup:
		return schema.SceneGroup, true
	case model.JunctionSceneGallery:
		return schema.SceneGallery, true
	case model.JunctionImagePerformer:
		return schema.ImagePerformer, true
	case model.JunctionImageTag:
		return schema.ImageTag, true
	case model.JunctionImageGallery:
		return schema.ImageGallery, true
	case model.JunctionGalleryPerformer:
		return schema.GalleryPerformer, true
	case model.JunctionGalleryTag:
		return schema.GalleryTag, true
	case model.JunctionPerformerTag:
		return schema.PerformerTag, true
	case model.JunctionStudioTag:
		return schema.StudioTag, true
	case model.JunctionGroupTag:
		return schema.GroupTag, true
	case model.JunctionTagHierarchy:
		return schema.TagHierarchy, true
	default:
		return schema.JunctionTable{}, false
	}
}

// tableForKind maps a Kind to its schema table + column list, used to build
// the upsert statement for a batch.
func tableForKind(kind model.Kind) (table string, columns []string, ok bool) {
	switch kind {
	case model.KindScene:
		return schema.Scene.Table, schema.Scene.Columns(), true
	case model.KindClip:
		return schema.Clip.Table, schema.Clip.Columns(), true
	case model.KindImage:
		return schema.Image.Table, schema.Image.Columns(), true
	case model.KindGallery:
		return schema.Gallery.Table, schema.Gallery.Columns(), true
	case model.KindPerformer:
		return schema.Performer.Table, schema.Performer.Columns(), true
	case model.KindStudio:
		return schema.Studio.Table, schema.Studio.Columns(), true
	case model.KindTag:
		return schema.Tag.Table, schema.Tag.Columns(), true
	case model.KindGroup:
		return schema.Group.Table, schema.Group.Columns(), true
	default:
		return "", nil, false
	}
}
