// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/H0llyW00dzZ/certnet-fetcher/src/internal/certnet/httpcache"
)

// registerResources exposes the fetcher's HTTP-layer cache metrics as
// a static MCP resource, grounded on the teacher's handleStatusResource
// (resource_handlers.go) but reporting httpcache.Cache stats instead of
// process-wide resource usage.
func registerResources(s *server.MCPServer, cache *httpcache.Cache) {
	resource := mcp.NewResource(
		"certnet://cache/stats",
		"Fetch cache statistics",
		mcp.WithResourceDescription("Current entry count, hit/miss/eviction counters for the fetcher's HTTP-layer response cache"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(resource, cacheStatsHandler(cache))
}

// cacheStatsHandler reports cache.Metrics() as the resource's JSON
// body. Split out from registerResources so it can be exercised
// directly in tests without a full JSON-RPC round trip.
func cacheStatsHandler(cache *httpcache.Cache) func(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		metrics := cache.Metrics()

		data, err := json.MarshalIndent(metrics, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal cache metrics: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "certnet://cache/stats",
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	}
}
