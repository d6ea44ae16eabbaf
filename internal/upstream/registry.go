// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package upstream

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/mirrorstash/mirrorstash/internal/mirror/model"
)

// # Per-kind query descriptors

// Queries maps each mirrored [model.Kind] to the GraphQL operation names
// the upstream server exposes for it. Every instance is assumed to expose
// the same schema shape; per-instance deviation is out of scope.
var Queries = map[Kind]KindQuery{
	model.KindTag: {
		Kind: model.KindTag, FindQueryName: "findTags", FindIDsQueryName: "findTagIds",
		FindOneQueryName: "findTag", CountQueryName: "tagCount",
	},
	model.KindStudio: {
		Kind: model.KindStudio, FindQueryName: "findStudios", FindIDsQueryName: "findStudioIds",
		FindOneQueryName: "findStudio", CountQueryName: "studioCount",
	},
	model.KindPerformer: {
		Kind: model.KindPerformer, FindQueryName: "findPerformers", FindIDsQueryName: "findPerformerIds",
		FindOneQueryName: "findPerformer", CountQueryName: "performerCount",
	},
	model.KindGroup: {
		Kind: model.KindGroup, FindQueryName: "findGroups", FindIDsQueryName: "findGroupIds",
		FindOneQueryName: "findGroup", CountQueryName: "groupCount",
	},
	model.KindGallery: {
		Kind: model.KindGallery, FindQueryName: "findGalleries", FindIDsQueryName: "findGalleryIds",
		FindOneQueryName: "findGallery", CountQueryName: "galleryCount",
	},
	model.KindScene: {
		Kind: model.KindScene, FindQueryName: "findScenes", FindIDsQueryName: "findSceneIds",
		FindOneQueryName: "findScene", CountQueryName: "sceneCount",
	},
	model.KindClip: {
		Kind: model.KindClip, FindQueryName: "findClips", FindIDsQueryName: "findClipIds",
		FindOneQueryName: "findClip", CountQueryName: "clipCount",
	},
	model.KindImage: {
		Kind: model.KindImage, FindQueryName: "findImages", FindIDsQueryName: "findImageIds",
		FindOneQueryName: "findImage", CountQueryName: "imageCount",
	},
}

// # Instance Registry

// Registry holds one Client per configured, enabled upstream instance,
// keyed by instance id. It is loaded once at startup from the mirror
// store's instance_registry table and never mutated except by the admin
// reload path.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*Client
	configs map[string]model.InstanceConfig
}

// NewRegistry builds a Registry from the given instance configs, skipping
// disabled ones.
func NewRegistry(instances []model.InstanceConfig) *Registry {
	r := &Registry{
		clients: make(map[string]*Client, len(instances)),
		configs: make(map[string]model.InstanceConfig, len(instances)),
	}
	httpClient := &http.Client{Timeout: 30 * time.Second}
	for _, inst := range instances {
		r.configs[inst.ID] = inst
		if inst.Enabled {
			r.clients[inst.ID] = NewClient(inst, httpClient)
		}
	}
	return r
}

// Client returns the client for instanceID, or an error if the instance is
// unknown or disabled.
func (r *Registry) Client(instanceID string) (*Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[instanceID]
	if !ok {
		return nil, fmt.Errorf("upstream: instance %q is unknown or disabled", instanceID)
	}
	return c, nil
}

// Instances returns the ids of every enabled instance, ordered by
// descending priority (ties broken by id for determinism).
func (r *Registry) Instances() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.clients))
	for id := range r.clients {
		ids = append(ids, id)
	}
	// insertion-sort by (priority desc, id asc); instance counts are small.
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0; j-- {
			a, b := r.configs[ids[j-1]], r.configs[ids[j]]
			if a.Priority < b.Priority || (a.Priority == b.Priority && a.ID > b.ID) {
				ids[j-1], ids[j] = ids[j], ids[j-1]
			} else {
				break
			}
		}
	}
	return ids
}

// Config returns the stored configuration for instanceID.
func (r *Registry) Config(instanceID string) (model.InstanceConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.configs[instanceID]
	return cfg, ok
}

// Reload replaces the registry's contents, used by the admin "reload
// instances" path after an instance_registry row is edited.
func (r *Registry) Reload(instances []model.InstanceConfig) {
	next := NewRegistry(instances)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients = next.clients
	r.configs = next.configs
}
