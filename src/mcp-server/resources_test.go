// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/certnet-fetcher/src/internal/certnet/httpcache"
)

func TestCacheStatsHandler(t *testing.T) {
	cache := httpcache.New(nil, httpcache.Config{})
	defer cache.Close()

	handler := cacheStatsHandler(cache)
	contents, err := handler(context.Background(), mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{URI: "certnet://cache/stats"},
	})
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	require.Equal(t, "certnet://cache/stats", text.URI)
	require.Equal(t, "application/json", text.MIMEType)

	var metrics httpcache.Metrics
	require.NoError(t, json.Unmarshal([]byte(text.Text), &metrics))
	require.GreaterOrEqual(t, metrics.Size, int64(0))
	require.GreaterOrEqual(t, metrics.Hits, int64(0))
	require.GreaterOrEqual(t, metrics.Misses, int64(0))
}

func TestCacheStatsHandler_ReflectsActivity(t *testing.T) {
	cache := httpcache.New(nil, httpcache.Config{})
	defer cache.Close()

	before := cache.Metrics()

	handler := cacheStatsHandler(cache)
	contents, err := handler(context.Background(), mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{URI: "certnet://cache/stats"},
	})
	require.NoError(t, err)

	var after httpcache.Metrics
	require.NoError(t, json.Unmarshal([]byte(contents[0].(mcp.TextResourceContents).Text), &after))
	require.Equal(t, before.Hits, after.Hits)
	require.Equal(t, before.Misses, after.Misses)
}
