// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package cli provides the command-line interface for certnet-fetcher.
// It implements a Cobra-based CLI with three subcommands: fetch (a
// one-shot CA-issuer/CRL/OCSP fetch through a fresh Fetcher), resolve
// (walk a leaf certificate's AIA chain to a root, as the teacher's
// original CLI did), and serve-mcp (run the fetcher as a Model Context
// Protocol server over stdio). The package handles file I/O, context
// cancellation, and integrates with the logger package for structured
// output and error reporting.
package cli
