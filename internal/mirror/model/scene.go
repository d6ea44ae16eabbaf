// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package model

// Scene is a mirrored video entry: identifier, descriptive metadata, file
// metadata, derived media paths, play counters, perceptual-hash
// fingerprints, and the denormalized inherited-tag set propagated from its
// performers/studio/groups by the derivation passes.
type Scene struct {
	Ref

	Title    string  `json:"title"`
	Code     string  `json:"code"`
	Date     *string `json:"date,omitempty"`
	Details  string  `json:"details"`
	Director string  `json:"director"`

	StudioID       string `json:"studio_id,omitempty"`
	StudioInstance string `json:"studio_instance,omitempty"`

	Duration int `json:"duration"` // seconds

	// # File metadata
	Path    string `json:"path"`
	Codec   string `json:"codec"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Bitrate int64  `json:"bitrate"`
	Size    int64  `json:"size"`

	// # Derived media paths (raw upstream form; C9 rewrites before serving)
	ScreenshotPath string `json:"screenshot_path,omitempty"`
	PreviewPath    string `json:"preview_path,omitempty"`
	SpritePath     string `json:"sprite_path,omitempty"`
	VTTPath        string `json:"vtt_path,omitempty"`
	StreamPath     string `json:"stream_path,omitempty"`
	CaptionsPath   string `json:"captions_path,omitempty"`

	// # Counters
	PlayCount int64 `json:"play_count"`
	OCount    int64 `json:"o_count"`

	// # Perceptual hash fingerprints (merge detection, C3)
	Phash     *string  `json:"phash,omitempty"` // first/primary fingerprint
	AllPhash  []string `json:"all_phash,omitempty"`

	// # Derived tag set (C4.1, scene tag inheritance)
	DirectTagIDs    []string `json:"-"`
	InheritedTagIDs []string `json:"inherited_tag_ids,omitempty"`

	Stamp
}

// # Field Identifiers

// Field names for the scenes table and dynamic query mapping.
const (
	SceneFieldID              = "id"
	SceneFieldInstance        = "instance"
	SceneFieldTitle           = "title"
	SceneFieldCode            = "code"
	SceneFieldDate            = "date"
	SceneFieldDetails         = "details"
	SceneFieldDirector        = "director"
	SceneFieldStudioID        = "studio_id"
	SceneFieldStudioInstance  = "studio_instance"
	SceneFieldDuration        = "duration"
	SceneFieldPath            = "path"
	SceneFieldCodec           = "codec"
	SceneFieldWidth           = "width"
	SceneFieldHeight          = "height"
	SceneFieldBitrate         = "bitrate"
	SceneFieldSize            = "size"
	SceneFieldScreenshotPath  = "screenshot_path"
	SceneFieldPreviewPath     = "preview_path"
	SceneFieldSpritePath      = "sprite_path"
	SceneFieldVTTPath         = "vtt_path"
	SceneFieldStreamPath      = "stream_path"
	SceneFieldCaptionsPath    = "captions_path"
	SceneFieldPlayCount       = "play_count"
	SceneFieldOCount          = "o_count"
	SceneFieldPhash           = "phash"
	SceneFieldAllPhash        = "all_phash"
	SceneFieldInheritedTagIDs = "inherited_tag_ids"
	SceneFieldUpdatedAt       = "updated_at"
	SceneFieldDeletedAt       = "deleted_at"
)

// Clip is a scene marker: a labeled time range within a parent scene, with
// a preview generated by the preview prober (C8).
type Clip struct {
	Ref

	SceneID       string `json:"scene_id"`
	SceneInstance string `json:"scene_instance"`

	Start float64 `json:"start"` // seconds
	End   float64 `json:"end,omitempty"`

	PrimaryTagID       string `json:"primary_tag_id,omitempty"`
	PrimaryTagInstance string `json:"primary_tag_instance,omitempty"`

	PreviewPath    string `json:"preview_path,omitempty"`
	ScreenshotPath string `json:"screenshot_path,omitempty"`
	StreamPath     string `json:"stream_path,omitempty"`

	// IsGenerated is produced by C8: true once the preview artifact is a
	// real generated clip rather than an upstream placeholder.
	IsGenerated bool `json:"is_generated"`

	Stamp
}

const (
	ClipFieldID                 = "id"
	ClipFieldInstance           = "instance"
	ClipFieldSceneID            = "scene_id"
	ClipFieldSceneInstance      = "scene_instance"
	ClipFieldStart              = "start"
	ClipFieldEnd                = "end"
	ClipFieldPrimaryTagID       = "primary_tag_id"
	ClipFieldPrimaryTagInstance = "primary_tag_instance"
	ClipFieldPreviewPath        = "preview_path"
	ClipFieldScreenshotPath     = "screenshot_path"
	ClipFieldStreamPath         = "stream_path"
	ClipFieldIsGenerated        = "is_generated"
	ClipFieldUpdatedAt          = "updated_at"
	ClipFieldDeletedAt          = "deleted_at"
)
