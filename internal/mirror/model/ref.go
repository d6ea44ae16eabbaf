// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package model defines the core domain entities mirrored from upstream
media-catalog instances.

It manages the lifecycle of replicated entities (Scene, Image, Gallery,
Performer, Studio, Tag, Group, Clip) including their composite keys,
junction relationships, and denormalized derived fields.

Core Responsibility:

  - Identity: Every mirrored row is addressed by a composite (id, instance)
    key so that entities sharing the same upstream id across different
    upstream instances never collide.
  - Hierarchy: Tags form a multi-parent DAG; studios and groups form
    single-parent trees.
  - Derivation: Scenes and images carry denormalized fields (inherited tag
    ids, inherited scalar fields) computed by the derivation passes, never
    hand-edited.

This package acts as the source of truth for all mirrored content models.
*/
package model

import "time"

// # Composite Keys

// Ref is the composite primary key shared by every mirrored entity: the
// upstream's own id plus the instance it was fetched from.
//
// An empty Instance means "legacy / single-instance mode" on a mirror row
// (member of every instance filter) or "applies to all instances" on a user
// overlay row (UserHiddenEntity, UserContentRestriction, UserExcludedEntity).
type Ref struct {
	ID       string `json:"id"`
	Instance string `json:"instance"`
}

// Global reports whether this Ref carries no instance, i.e. it applies
// across every upstream instance rather than one specific instance.
func (r Ref) Global() bool {
	return r.Instance == ""
}

// # Entity Kinds

// Kind identifies one of the browsable/mirrored entity families.
type Kind string

const (
	KindScene     Kind = "scene"
	KindImage     Kind = "image"
	KindGallery   Kind = "gallery"
	KindPerformer Kind = "performer"
	KindStudio    Kind = "studio"
	KindTag       Kind = "tag"
	KindGroup     Kind = "group"
	KindClip      Kind = "clip"
)

// Plural returns the plural form used by UserContentRestriction.EntityType.
func (k Kind) Plural() string {
	switch k {
	case KindScene:
		return "scenes"
	case KindImage:
		return "images"
	case KindGallery:
		return "galleries"
	case KindPerformer:
		return "performers"
	case KindStudio:
		return "studios"
	case KindTag:
		return "tags"
	case KindGroup:
		return "groups"
	case KindClip:
		return "clips"
	default:
		return string(k) + "s"
	}
}

// KindFromPlural reverses [Kind.Plural]; the exclusion engine reads plural
// entity types off UserContentRestriction rows and must recover the
// singular Kind to address mirror tables.
func KindFromPlural(plural string) (Kind, bool) {
	switch plural {
	case "scenes":
		return KindScene, true
	case "images":
		return KindImage, true
	case "galleries":
		return KindGallery, true
	case "performers":
		return KindPerformer, true
	case "studios":
		return KindStudio, true
	case "tags":
		return KindTag, true
	case "groups":
		return KindGroup, true
	case "clips":
		return KindClip, true
	default:
		return "", false
	}
}

// SyncOrder is the dependency order full sync walks entity kinds in:
// tag → studio → performer → group → gallery → scene → clip → image.
var SyncOrder = []Kind{
	KindTag,
	KindStudio,
	KindPerformer,
	KindGroup,
	KindGallery,
	KindScene,
	KindClip,
	KindImage,
}

// # Common Embedded Shape

// Stamp carries the fields every mirrored row shares: soft-delete marker
// and the instance's own last-modified timestamp (preserved verbatim from
// upstream, never timezone-normalized — see internal/sync for cursor
// policy).
type Stamp struct {
	UpdatedAt string     `json:"updated_at"` // verbatim upstream string
	DeletedAt *time.Time `json:"-"`          // nil = active; non-nil = soft-deleted
}
