// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package rewrite_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirrorstash/mirrorstash/internal/rewrite"
)

func TestURL_Nil(t *testing.T) {
	assert.Nil(t, rewrite.URL(nil, ""))
}

func TestURL_AlreadyProxied(t *testing.T) {
	in := "/api/proxy/stash?path=%2Fscene%2Fscreenshot&instanceId=a"
	out := rewrite.URL(&in, "a")
	require.NotNil(t, out)
	assert.Equal(t, in, *out)
}

func TestString_AbsoluteURL(t *testing.T) {
	out := rewrite.String("https://upstream.example.com/scene/123/screenshot?t=5", "inst-a")
	assert.Contains(t, out, rewrite.ProxyPrefix)
	assert.Contains(t, out, "path=")
	assert.Contains(t, out, "instanceId=inst-a")
	assert.NotContains(t, out, "upstream.example.com")
}

func TestString_RelativePath(t *testing.T) {
	out := rewrite.String("/scene/123/screenshot", "")
	assert.Contains(t, out, rewrite.ProxyPrefix)
	assert.NotContains(t, out, "instanceId")
}

func TestString_EmptyString(t *testing.T) {
	assert.Equal(t, "", rewrite.String("", "inst-a"))
}

// Idempotence: rewrite(rewrite(x)) == rewrite(x), the round-trip property.
func TestString_Idempotent(t *testing.T) {
	once := rewrite.String("https://upstream.example.com/preview.mp4", "inst-a")
	twice := rewrite.String(once, "inst-a")
	assert.Equal(t, once, twice)
}
