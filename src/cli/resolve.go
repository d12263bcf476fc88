// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/certnet-fetcher/src/internal/certnet"
	"github.com/H0llyW00dzZ/certnet-fetcher/src/internal/certnet/config"
	x509certs "github.com/H0llyW00dzZ/certnet-fetcher/src/internal/x509/certs"
	x509chain "github.com/H0llyW00dzZ/certnet-fetcher/src/internal/x509/chain"
	"github.com/H0llyW00dzZ/certnet-fetcher/src/logger"
)

// newResolveCmd builds the resolve subcommand: decode a leaf certificate,
// walk its AIA chain to a root, optionally add the system root, and
// encode the result as PEM or DER. This is the teacher's original
// behavior, now backed by a certnet.Fetcher instead of a raw http.Client.
func newResolveCmd(version string, log logger.Logger) *cobra.Command {
	var (
		outputFile       string
		intermediateOnly bool
		derFormat        bool
		includeSystem    bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <input-file>",
		Short: "Resolve a certificate's full chain via its AIA extension",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return ErrInputFileRequired
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			OperationPerformed = true

			certData, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading input file: %w", err)
			}

			decoder := x509certs.New()
			cert, err := decoder.Decode(certData)
			if err != nil {
				return fmt.Errorf("decoding certificate: %w", err)
			}

			defaults, err := config.Load(configPath)
			if err != nil {
				return err
			}

			fetcher := certnet.New(
				certnet.WithUserAgent(x509chain.UserAgentFor(version)),
				certnet.WithDefaults(defaults),
				certnet.WithLogger(log),
			)
			defer fetcher.Shutdown(cmd.Context())

			chain := x509chain.New(cert, fetcher)
			if err := chain.FetchCertificate(cmd.Context()); err != nil {
				return fmt.Errorf("fetching certificate chain: %w", err)
			}

			if includeSystem {
				if err := chain.AddRootCA(); err != nil {
					return fmt.Errorf("adding root CA: %w", err)
				}
			}

			certsToOutput := chain.Certs
			if intermediateOnly {
				certsToOutput = chain.FilterIntermediates()
			}

			var outputData []byte
			if derFormat {
				outputData = chain.EncodeMultipleDER(certsToOutput)
			} else {
				outputData = chain.EncodeMultiplePEM(certsToOutput)
			}

			if outputFile != "" {
				if err := os.WriteFile(outputFile, outputData, 0644); err != nil {
					return fmt.Errorf("writing to output file: %w", err)
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), string(outputData))
			}

			OperationPerformedSuccessfully = true
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "output to OUTPUT_FILE (default: stdout)")
	cmd.Flags().BoolVarP(&intermediateOnly, "intermediate-only", "i", false, "output intermediate certificates only")
	cmd.Flags().BoolVarP(&derFormat, "der", "d", false, "output DER format")
	cmd.Flags().BoolVarP(&includeSystem, "include-system", "s", false, "include root CA from system in output")

	return cmd
}
