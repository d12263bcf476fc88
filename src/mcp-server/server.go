// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package mcpserver exposes the CA-issuer, CRL, and OCSP fetcher over
// the Model Context Protocol, backed by the same certnet.Fetcher the
// cli package uses. It is a deliberately small surface: three fetch
// tools plus a cache-stats resource, in contrast to the teacher's much
// larger AI-analysis and batch-processing tool set, which had no
// SPEC_FULL counterpart to carry forward.
package mcpserver

import (
	"context"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/H0llyW00dzZ/certnet-fetcher/src/internal/certnet"
	"github.com/H0llyW00dzZ/certnet-fetcher/src/internal/certnet/config"
	"github.com/H0llyW00dzZ/certnet-fetcher/src/internal/certnet/httpcache"
	x509chain "github.com/H0llyW00dzZ/certnet-fetcher/src/internal/x509/chain"
	"github.com/H0llyW00dzZ/certnet-fetcher/src/logger"
	"github.com/H0llyW00dzZ/certnet-fetcher/src/mcp-server/templates"
)

// Run starts the MCP server over stdio and blocks until ctx is
// canceled or the transport reports an error. log receives fetcher
// diagnostics; it should be silent by default (see logger.MCPLogger)
// since stdout is the MCP transport itself.
func Run(ctx context.Context, version string, log logger.Logger, configPath string) error {
	defaults, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("mcpserver: load config: %w", err)
	}

	cache := httpcache.New(nil, httpcache.Config{})
	defer cache.Close()

	fetcher := certnet.New(
		certnet.WithUserAgent(x509chain.UserAgentFor(version)),
		certnet.WithDefaults(defaults),
		certnet.WithLogger(log),
		certnet.WithTransport(cache),
	)
	defer fetcher.Shutdown(context.Background())

	instructions, err := templates.MagicEmbed.ReadFile("X509_instructions.md")
	if err != nil {
		return fmt.Errorf("mcpserver: load instructions: %w", err)
	}

	s := server.NewMCPServer(
		"certnet-fetcher",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithInstructions(string(instructions)),
	)

	registerTools(s, fetcher)
	registerResources(s, cache)

	stdioServer := server.NewStdioServer(s)

	errCh := make(chan error, 1)
	go func() { errCh <- stdioServer.Listen(ctx, os.Stdin, os.Stdout) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
