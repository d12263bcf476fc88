// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/certnet-fetcher/src/internal/helper/posix"
	"github.com/H0llyW00dzZ/certnet-fetcher/src/logger"
)

// ErrInputFileRequired is returned by the resolve subcommand when no
// input certificate file is given.
var ErrInputFileRequired = errors.New("cli: input file is required")

// OperationPerformed and OperationPerformedSuccessfully record whether
// Execute started a subcommand's work and whether that work finished
// without error. cmd/ reads them after Execute returns successfully to
// decide whether to log its completion messages; its signal path does
// not consult them.
var (
	OperationPerformed            bool
	OperationPerformedSuccessfully bool
)

// configPath is the shared --config flag consumed by internal/certnet/config.
var configPath string

// Execute builds and runs the root command for ctx, returning any error
// from the selected subcommand. version is reported by --version and
// used to build the fetcher's User-Agent; log receives reactor and
// fetch diagnostics for the fetch and resolve subcommands.
func Execute(ctx context.Context, version string, log logger.Logger) error {
	rootCmd := &cobra.Command{
		Use:           posix.GetExecutableName(),
		Short:         "CA-issuer, CRL, and OCSP fetcher for X.509 certificate chains",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a JSON or YAML fetcher config file (default: $CERTNET_CONFIG_FILE)")

	rootCmd.AddCommand(
		newResolveCmd(version, log),
		newFetchCmd(version, log),
		newServeMCPCmd(version, log),
	)

	rootCmd.SetContext(ctx)
	return rootCmd.Execute()
}
