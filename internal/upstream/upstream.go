// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package upstream provides the GraphQL client fronting upstream media-catalog
instances.

It exposes a small, kind-parameterized contract (find, findIds, findOne,
count) built on [github.com/hasura/go-graphql-client], opaque to the sync
engine beyond those four operations.

Core Responsibility:

  - Identity: Preserves upstream ids as strings verbatim; never
    timezone-normalizes `updated_at` (the sync engine's cursor policy owns
    that transform).
  - Pagination: Surfaces the upstream's own total count so paging can stop
    correctly — a missing count is a fatal, typed error.
  - Registry: Holds one client per configured upstream instance, keyed by
    instance id, loaded once at startup.

This package acts as the sole network boundary between the mirror and the
outside world.
*/
package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	graphql "github.com/hasura/go-graphql-client"

	"github.com/mirrorstash/mirrorstash/internal/mirror/model"
)

// # Sentinel Errors

// ErrMissingCount is returned when the upstream response omits the total
// result count. It is fatal for the sync it occurs in: without a count,
// paged fetch cannot know when to stop and would loop forever.
var ErrMissingCount = errors.New("upstream: response missing total count")

// # Entity Kind Descriptor

// KindQuery describes how to query one entity kind: the GraphQL query/field
// names and the shape of the raw object the upstream returns. Implemented
// once, generically, over this descriptor rather than eight near-identical
// client types, since every kind follows the same find/findIds/findOne/
// count shape.
type KindQuery struct {
	Kind Kind

	// FindQueryName is the upstream GraphQL query returning a page + count.
	FindQueryName string
	// FindIDsQueryName is the upstream GraphQL query returning only ids + count
	// (used by the cleanup pass's lighter id-only scan).
	FindIDsQueryName string
	// FindOneQueryName is the upstream GraphQL query for a single object by id.
	FindOneQueryName string
	// CountQueryName is the upstream GraphQL query returning only a count.
	CountQueryName string
}

// Kind is an alias for [model.Kind], so upstream and the mirror model
// share one kind type.
type Kind = model.Kind

// # Filter & Page

// Filter is the upstream query filter. At minimum it supports an
// updated-since cursor; additional fields are reserved for future
// upstream-side filtering the core does not currently use.
type Filter struct {
	UpdatedAfter string // cursor string, already cursor-policy-adjusted by the caller
}

// Page requests one page of results.
type Page struct {
	Page    int
	PerPage int
}

// RawObject is the untyped upstream object returned by find/findOne: a
// string-keyed map mirroring the GraphQL response's JSON shape. The sync
// engine's per-kind processor decodes the fields it needs; fields it does
// not recognize are ignored rather than rejected, so upstream schema
// growth never breaks the mirror.
type RawObject map[string]any

// FindResult is the result of a paged find.
type FindResult struct {
	Items      []RawObject
	TotalCount int
}

// FindIDsResult is the result of an id-only paged find.
type FindIDsResult struct {
	IDs        []string
	TotalCount int
}

// # Client

// Client is the per-instance GraphQL client.
type Client struct {
	instance string
	gql      *graphql.Client
}

// NewClient builds a Client for one configured upstream instance. The
// caller supplies the *http.Client (tests inject one with a fake
// RoundTripper; production wires one with the per-upstream timeout).
func NewClient(instance model.InstanceConfig, httpClient *http.Client) *Client {
	gql := graphql.NewClient(instance.BaseURL+"/graphql", httpClient)
	if instance.APIKey != "" {
		gql = gql.WithRequestModifier(func(r *http.Request) {
			r.Header.Set("ApiKey", instance.APIKey)
		})
	}
	return &Client{instance: instance.ID, gql: gql}
}

// Find fetches one page of entities of kind matching filter.
//
// It returns [ErrMissingCount] if the upstream response has no total count
// field — a fatal condition for the caller's current sync run.
func (c *Client) Find(ctx context.Context, kq KindQuery, filter Filter, page Page) (FindResult, error) {
	raw, total, err := c.rawPagedQuery(ctx, kq.FindQueryName, filter, page)
	if err != nil {
		return FindResult{}, err
	}
	if total == nil {
		return FindResult{}, fmt.Errorf("upstream[%s].%s: %w", c.instance, kq.FindQueryName, ErrMissingCount)
	}
	return FindResult{Items: raw, TotalCount: *total}, nil
}

// FindIDs fetches one page of bare ids (the cleanup pass's lighter scan).
func (c *Client) FindIDs(ctx context.Context, kq KindQuery, page Page) (FindIDsResult, error) {
	raw, total, err := c.rawPagedQuery(ctx, kq.FindIDsQueryName, Filter{}, page)
	if err != nil {
		return FindIDsResult{}, err
	}
	if total == nil {
		return FindIDsResult{}, fmt.Errorf("upstream[%s].%s: %w", c.instance, kq.FindIDsQueryName, ErrMissingCount)
	}
	ids := make([]string, 0, len(raw))
	for _, obj := range raw {
		if id, ok := obj["id"].(string); ok {
			ids = append(ids, id)
		}
	}
	return FindIDsResult{IDs: ids, TotalCount: *total}, nil
}

// FindOne fetches a single entity by id (used by single-entity/webhook sync).
func (c *Client) FindOne(ctx context.Context, kq KindQuery, id string) (RawObject, error) {
	var resp struct {
		Result map[string]any `graphql:"result"`
	}
	if err := c.gql.Query(ctx, &resp, map[string]any{"id": graphql.ID(id)}); err != nil {
		return nil, fmt.Errorf("upstream[%s].%s(%s): %w", c.instance, kq.FindOneQueryName, id, err)
	}
	if resp.Result == nil {
		return nil, nil
	}
	return RawObject(resp.Result), nil
}

// Count returns the number of entities matching filter, used by smart
// incremental sync to decide whether a kind needs any work at all.
func (c *Client) Count(ctx context.Context, kq KindQuery, filter Filter) (int, error) {
	var resp struct {
		Count *int `graphql:"count"`
	}
	vars := map[string]any{}
	if filter.UpdatedAfter != "" {
		vars["updatedAfter"] = graphql.String(filter.UpdatedAfter)
	}
	if err := c.gql.Query(ctx, &resp, vars); err != nil {
		return 0, fmt.Errorf("upstream[%s].%s: %w", c.instance, kq.CountQueryName, err)
	}
	if resp.Count == nil {
		return 0, fmt.Errorf("upstream[%s].%s: %w", c.instance, kq.CountQueryName, ErrMissingCount)
	}
	return *resp.Count, nil
}

// rawPagedQuery executes a paged find/findIds query and returns raw
// objects plus an optional total count (nil when absent from the response).
func (c *Client) rawPagedQuery(ctx context.Context, queryName string, filter Filter, page Page) ([]RawObject, *int, error) {
	var resp struct {
		Items []map[string]any `graphql:"items"`
		Count *int             `graphql:"count"`
	}

	vars := map[string]any{
		"page":    graphql.Int(page.Page),
		"perPage": graphql.Int(page.PerPage),
	}
	if filter.UpdatedAfter != "" {
		vars["updatedAfter"] = graphql.String(filter.UpdatedAfter)
	}

	if err := c.gql.Query(ctx, &resp, vars); err != nil {
		return nil, nil, fmt.Errorf("upstream[%s].%s: %w", c.instance, queryName, err)
	}

	items := make([]RawObject, 0, len(resp.Items))
	for _, raw := range resp.Items {
		items = append(items, RawObject(raw))
	}
	return items, resp.Count, nil
}
