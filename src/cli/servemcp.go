// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"github.com/spf13/cobra"

	mcpserver "github.com/H0llyW00dzZ/certnet-fetcher/src/mcp-server"
	"github.com/H0llyW00dzZ/certnet-fetcher/src/logger"
)

// newServeMCPCmd builds the serve-mcp subcommand, which runs the
// fetcher's Model Context Protocol server over stdio until ctx is
// canceled.
func newServeMCPCmd(version string, log logger.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve-mcp",
		Short: "Run the fetcher as a Model Context Protocol server over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			OperationPerformed = true
			if err := mcpserver.Run(cmd.Context(), version, logger.NewMCPLogger(nil, true), configPath); err != nil {
				return err
			}
			OperationPerformedSuccessfully = true
			return nil
		},
	}
}
