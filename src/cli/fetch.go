// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"crypto/x509"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/ocsp"

	"github.com/H0llyW00dzZ/certnet-fetcher/src/internal/certnet"
	"github.com/H0llyW00dzZ/certnet-fetcher/src/internal/certnet/config"
	x509certs "github.com/H0llyW00dzZ/certnet-fetcher/src/internal/x509/certs"
	x509chain "github.com/H0llyW00dzZ/certnet-fetcher/src/internal/x509/chain"
	"github.com/H0llyW00dzZ/certnet-fetcher/src/logger"
)

// newFetchCmd builds the one-shot fetch subcommand, which starts a
// fresh Fetcher, performs exactly one fetch, and prints a decoded
// summary of the result (or writes raw bytes with -o/--der).
func newFetchCmd(version string, log logger.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch a single CA-issuer certificate, CRL, or OCSP response",
	}
	cmd.AddCommand(
		newFetchCAIssuersCmd(version, log),
		newFetchCRLCmd(version, log),
		newFetchOCSPCmd(version, log),
	)
	return cmd
}

func newFetcher(version string, log logger.Logger) (*certnet.Fetcher, error) {
	defaults, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return certnet.New(
		certnet.WithUserAgent(x509chain.UserAgentFor(version)),
		certnet.WithDefaults(defaults),
		certnet.WithLogger(log),
	), nil
}

func writeFetchOutput(cmd *cobra.Command, outputFile string, data []byte) error {
	if outputFile != "" {
		return os.WriteFile(outputFile, data, 0644)
	}
	_, err := cmd.OutOrStdout().Write(data)
	return err
}

func newFetchCAIssuersCmd(version string, log logger.Logger) *cobra.Command {
	var outputFile string
	var derFormat bool

	cmd := &cobra.Command{
		Use:   "ca-issuers <url>",
		Short: "Fetch an intermediate certificate referenced by an AIA caIssuers URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			OperationPerformed = true

			fetcher, err := newFetcher(version, log)
			if err != nil {
				return err
			}
			defer fetcher.Shutdown(cmd.Context())

			h := fetcher.FetchCAIssuers(args[0], certnet.FetchParams{})
			kind, body, err := h.WaitForResult(cmd.Context())
			if err != nil {
				return err
			}
			if err := certnet.AsError(kind, args[0]); err != nil {
				return err
			}

			decoder := x509certs.New()
			cert, err := decoder.Decode(body)
			if err != nil {
				return fmt.Errorf("decoding fetched certificate: %w", err)
			}

			if derFormat || outputFile != "" {
				out := decoder.EncodeDER(cert)
				if !derFormat {
					out = decoder.EncodePEM(cert)
				}
				if err := writeFetchOutput(cmd, outputFile, out); err != nil {
					return err
				}
				OperationPerformedSuccessfully = true
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Subject: %s\nIssuer: %s\nNot Before: %s\nNot After: %s\n",
				cert.Subject, cert.Issuer, cert.NotBefore, cert.NotAfter)

			OperationPerformedSuccessfully = true
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "write raw certificate to OUTPUT_FILE instead of printing a summary")
	cmd.Flags().BoolVarP(&derFormat, "der", "d", false, "write DER instead of PEM when --output is set")

	return cmd
}

func newFetchCRLCmd(version string, log logger.Logger) *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "crl <url>",
		Short: "Fetch and summarize a certificate revocation list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			OperationPerformed = true

			fetcher, err := newFetcher(version, log)
			if err != nil {
				return err
			}
			defer fetcher.Shutdown(cmd.Context())

			h := fetcher.FetchCRL(args[0], certnet.FetchParams{})
			kind, body, err := h.WaitForResult(cmd.Context())
			if err != nil {
				return err
			}
			if err := certnet.AsError(kind, args[0]); err != nil {
				return err
			}

			if outputFile != "" {
				if err := writeFetchOutput(cmd, outputFile, body); err != nil {
					return err
				}
				OperationPerformedSuccessfully = true
				return nil
			}

			crl, err := x509.ParseRevocationList(body)
			if err != nil {
				return fmt.Errorf("parsing CRL: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Issuer: %s\nThis Update: %s\nNext Update: %s\nRevoked Entries: %d\n",
				crl.Issuer, crl.ThisUpdate, crl.NextUpdate, len(crl.RevokedCertificateEntries))

			OperationPerformedSuccessfully = true
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "write raw CRL to OUTPUT_FILE instead of printing a summary")

	return cmd
}

func newFetchOCSPCmd(version string, log logger.Logger) *cobra.Command {
	var (
		outputFile string
		certPath   string
		issuerPath string
		useGET     bool
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "ocsp <url>",
		Short: "Send an OCSP request for --cert/--issuer and report the response status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			OperationPerformed = true

			if certPath == "" || issuerPath == "" {
				return fmt.Errorf("--cert and --issuer are required")
			}

			decoder := x509certs.New()

			certData, err := os.ReadFile(certPath)
			if err != nil {
				return fmt.Errorf("reading --cert: %w", err)
			}
			cert, err := decoder.Decode(certData)
			if err != nil {
				return fmt.Errorf("decoding --cert: %w", err)
			}

			issuerData, err := os.ReadFile(issuerPath)
			if err != nil {
				return fmt.Errorf("reading --issuer: %w", err)
			}
			issuer, err := decoder.Decode(issuerData)
			if err != nil {
				return fmt.Errorf("decoding --issuer: %w", err)
			}

			reqData, err := ocsp.CreateRequest(cert, issuer, nil)
			if err != nil {
				return fmt.Errorf("building OCSP request: %w", err)
			}

			fetcher, err := newFetcher(version, log)
			if err != nil {
				return err
			}
			defer fetcher.Shutdown(cmd.Context())

			verb := certnet.OCSPVerbPOST
			if useGET {
				verb = certnet.OCSPVerbGET
			}

			h := fetcher.FetchOCSP(args[0], certnet.FetchParams{
				Timeout:         timeout,
				OCSPRequestBody: reqData,
				OCSPVerb:        verb,
			})
			kind, body, err := h.WaitForResult(cmd.Context())
			if err != nil {
				return err
			}
			if err := certnet.AsError(kind, args[0]); err != nil {
				return err
			}

			if outputFile != "" {
				if err := writeFetchOutput(cmd, outputFile, body); err != nil {
					return err
				}
				OperationPerformedSuccessfully = true
				return nil
			}

			resp, err := ocsp.ParseResponseForCert(body, cert, issuer)
			if err != nil {
				return fmt.Errorf("parsing OCSP response: %w", err)
			}

			status := "Unknown"
			switch resp.Status {
			case ocsp.Good:
				status = "Good"
			case ocsp.Revoked:
				status = "Revoked"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Status: %s\nProduced At: %s\nThis Update: %s\nNext Update: %s\n",
				status, resp.ProducedAt, resp.ThisUpdate, resp.NextUpdate)

			OperationPerformedSuccessfully = true
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "write raw OCSP response to OUTPUT_FILE instead of printing a summary")
	cmd.Flags().StringVar(&certPath, "cert", "", "subject certificate to query revocation status for (PEM or DER)")
	cmd.Flags().StringVar(&issuerPath, "issuer", "", "issuer certificate of --cert (PEM or DER)")
	cmd.Flags().BoolVar(&useGET, "ocsp-get", false, "use RFC 6960 Appendix A.1 GET encoding instead of POST")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "per-request timeout override (default: fetcher default)")

	return cmd
}
