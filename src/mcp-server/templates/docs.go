// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package templates provides embedded filesystem access for MCP server template files.
// It offers a reusable abstraction for accessing the embedded markdown instructions
// served to MCP clients that connect to the fetcher.
//
// The package provides thread-safe access to embedded files through the [EmbedFS] interface,
// with [MagicEmbed] serving as the default implementation for convenient template access.
//
// Example usage:
//
//	import "github.com/H0llyW00dzZ/certnet-fetcher/src/mcp-server/templates"
//
//	// Read the server instructions template
//	content, err := templates.MagicEmbed.ReadFile("X509_instructions.md")
//	if err != nil {
//		return fmt.Errorf("failed to read instructions: %w", err)
//	}
package templates
