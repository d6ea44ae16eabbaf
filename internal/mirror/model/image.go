// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package model

// Image is a mirrored still entry. Its scalar inheritable fields (studio,
// date, photographer, details) may be null-filled from a containing
// gallery by the derivation passes (C4.2); once filled they are
// indistinguishable from directly-set values to readers.
type Image struct {
	Ref

	Title string  `json:"title"`
	Date  *string `json:"date,omitempty"`

	StudioID       string `json:"studio_id,omitempty"`
	StudioInstance string `json:"studio_instance,omitempty"`

	Photographer string `json:"photographer,omitempty"`
	Details      string `json:"details,omitempty"`

	Path    string `json:"path"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Size    int64  `json:"size"`

	OCount int64 `json:"o_count"`

	Stamp
}

const (
	ImageFieldID             = "id"
	ImageFieldInstance       = "instance"
	ImageFieldTitle          = "title"
	ImageFieldDate           = "date"
	ImageFieldStudioID       = "studio_id"
	ImageFieldStudioInstance = "studio_instance"
	ImageFieldPhotographer   = "photographer"
	ImageFieldDetails        = "details"
	ImageFieldPath           = "path"
	ImageFieldWidth          = "width"
	ImageFieldHeight         = "height"
	ImageFieldSize           = "size"
	ImageFieldOCount         = "o_count"
	ImageFieldUpdatedAt      = "updated_at"
	ImageFieldDeletedAt      = "deleted_at"
)

// Gallery is a mirrored collection of images. Title falls back to the
// folder/file basename when upstream has no explicit title; inheritable
// fields are propagated during C4.2 to member images whose own value is empty.
type Gallery struct {
	Ref

	Title        string  `json:"title"`
	TitleIsFallback bool `json:"-"` // true when Title came from folder/basename

	CoverImageID       string `json:"cover_image_id,omitempty"`
	CoverImageInstance string `json:"cover_image_instance,omitempty"`

	StudioID       string  `json:"studio_id,omitempty"`
	StudioInstance string  `json:"studio_instance,omitempty"`
	Date           *string `json:"date,omitempty"`
	Photographer   string  `json:"photographer,omitempty"`
	Details        string  `json:"details,omitempty"`

	Stamp
}

const (
	GalleryFieldID                 = "id"
	GalleryFieldInstance           = "instance"
	GalleryFieldTitle              = "title"
	GalleryFieldCoverImageID       = "cover_image_id"
	GalleryFieldCoverImageInstance = "cover_image_instance"
	GalleryFieldStudioID           = "studio_id"
	GalleryFieldStudioInstance     = "studio_instance"
	GalleryFieldDate               = "date"
	GalleryFieldPhotographer       = "photographer"
	GalleryFieldDetails            = "details"
	GalleryFieldUpdatedAt          = "updated_at"
	GalleryFieldDeletedAt          = "deleted_at"
)
