// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package rewrite canonicalizes upstream media URLs into a local proxy form
so that raw upstream URLs never leave the process.

It is a pure function package: no I/O, no dependencies beyond net/url,
idempotent by construction (rewrite(rewrite(x)) == rewrite(x)).
*/
package rewrite

import (
	"net/url"
	"strings"
)

// ProxyPrefix is the local proxy path every rewritten URL carries.
const ProxyPrefix = "/api/proxy/stash"

// URL rewrites a raw upstream URL or path, possibly nil, into the local
// proxy form. instance, when non-empty, is appended as an instanceId query
// parameter so the media proxy (an external collaborator, out-of-scope)
// knows which upstream to fetch from.
//
// - nil input -> nil output.
// - already proxy-prefixed -> unchanged (idempotence).
// - absolute URL -> path+query percent-encoded into a `path` parameter.
// - relative path -> likewise.
func URL(raw *string, instance string) *string {
	if raw == nil {
		return nil
	}
	out := rewriteOne(*raw, instance)
	return &out
}

// String is the non-pointer convenience form for callers that already know
// the input is never absent (e.g. a required field).
func String(raw string, instance string) string {
	return rewriteOne(raw, instance)
}

func rewriteOne(raw string, instance string) string {
	if raw == "" {
		return raw
	}
	if strings.HasPrefix(raw, ProxyPrefix) {
		return raw
	}

	pathAndQuery := raw
	if u, err := url.Parse(raw); err == nil && u.IsAbs() {
		pathAndQuery = u.Path
		if u.RawQuery != "" {
			pathAndQuery += "?" + u.RawQuery
		}
	}

	v := url.Values{}
	v.Set("path", pathAndQuery)
	if instance != "" {
		v.Set("instanceId", instance)
	}
	return ProxyPrefix + "?" + v.Encode()
}
