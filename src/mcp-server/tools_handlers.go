// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"crypto/x509"
	"encoding/base64"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/crypto/ocsp"

	"github.com/H0llyW00dzZ/certnet-fetcher/src/internal/certnet"
	x509certs "github.com/H0llyW00dzZ/certnet-fetcher/src/internal/x509/certs"
)

// decodeCertParam decodes a certificate tool argument, accepting
// either PEM text or base64-encoded DER, matching the two input shapes
// the teacher's resolve_cert_chain tool accepted for its "certificate"
// parameter (minus the file-path form, which has no meaning across
// an MCP transport).
func decodeCertParam(decoder *x509certs.Certificate, raw string) (*x509.Certificate, error) {
	if decoder.IsPEM([]byte(raw)) {
		return decoder.Decode([]byte(raw))
	}
	der, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("not valid PEM or base64 DER: %w", err)
	}
	return decoder.Decode(der)
}

func newFetchCAIssuersHandler(fetcher *certnet.Fetcher) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		asDER := request.GetBool("der", false)

		h := fetcher.FetchCAIssuers(url, certnet.FetchParams{})
		kind, body, err := h.WaitForResult(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := certnet.AsError(kind, url); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		decoder := x509certs.New()
		cert, err := decoder.Decode(body)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("decoding fetched certificate: %v", err)), nil
		}

		if asDER {
			return mcp.NewToolResultText(base64.StdEncoding.EncodeToString(decoder.EncodeDER(cert))), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf(
			"Subject: %s\nIssuer: %s\nSerial: %s\nNot Before: %s\nNot After: %s",
			cert.Subject, cert.Issuer, cert.SerialNumber, cert.NotBefore, cert.NotAfter,
		)), nil
	}
}

func newFetchCRLHandler(fetcher *certnet.Fetcher) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		h := fetcher.FetchCRL(url, certnet.FetchParams{})
		kind, body, err := h.WaitForResult(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := certnet.AsError(kind, url); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		crl, err := x509.ParseRevocationList(body)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("parsing CRL: %v", err)), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf(
			"Issuer: %s\nThis Update: %s\nNext Update: %s\nRevoked Entries: %d",
			crl.Issuer, crl.ThisUpdate, crl.NextUpdate, len(crl.RevokedCertificateEntries),
		)), nil
	}
}

func newFetchOCSPHandler(fetcher *certnet.Fetcher) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		certParam, err := request.RequireString("certificate")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		issuerParam, err := request.RequireString("issuer")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		useGET := request.GetBool("use_get", false)

		decoder := x509certs.New()
		cert, err := decodeCertParam(decoder, certParam)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("decoding certificate: %v", err)), nil
		}
		issuer, err := decodeCertParam(decoder, issuerParam)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("decoding issuer: %v", err)), nil
		}

		reqData, err := ocsp.CreateRequest(cert, issuer, nil)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("building OCSP request: %v", err)), nil
		}

		verb := certnet.OCSPVerbPOST
		if useGET {
			verb = certnet.OCSPVerbGET
		}

		h := fetcher.FetchOCSP(url, certnet.FetchParams{
			OCSPRequestBody: reqData,
			OCSPVerb:        verb,
		})
		kind, body, err := h.WaitForResult(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := certnet.AsError(kind, url); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		resp, err := ocsp.ParseResponseForCert(body, cert, issuer)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("parsing OCSP response: %v", err)), nil
		}

		status := "Unknown"
		switch resp.Status {
		case ocsp.Good:
			status = "Good"
		case ocsp.Revoked:
			status = "Revoked"
		}

		return mcp.NewToolResultText(fmt.Sprintf(
			"Status: %s\nProduced At: %s\nThis Update: %s\nNext Update: %s",
			status, resp.ProducedAt, resp.ThisUpdate, resp.NextUpdate,
		)), nil
	}
}
