// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"bytes"
	"context"
	"crypto/x509"
	"fmt"
	"strings"

	"golang.org/x/crypto/ocsp"

	"github.com/H0llyW00dzZ/certnet-fetcher/src/internal/certnet"
)

// RevocationStatus represents revocation status of a certificate
type RevocationStatus struct {
	OCSPStatus   string
	CRLEnabled   bool
	CRLStatus    string
	SerialNumber string
}

// ocspStatusString renders an x/crypto/ocsp response status as the
// three-state vocabulary RevocationStatus reports.
func ocspStatusString(status int) string {
	switch status {
	case ocsp.Good:
		return "Good"
	case ocsp.Revoked:
		return "Revoked"
	default:
		return "Unknown"
	}
}

// checkOCSPStatus performs a full OCSP check for revocation status. The
// request is built with x/crypto/ocsp and sent through ch.Fetcher, so it
// shares coalescing, the OCSP response-size cap, and the fetcher's
// timeout with every other in-flight fetch referencing the same
// responder URL.
func (ch *Chain) checkOCSPStatus(ctx context.Context, cert *x509.Certificate) (*RevocationStatus, error) {
	if len(cert.OCSPServer) == 0 {
		return &RevocationStatus{OCSPStatus: "Not Available"}, nil
	}

	ocspURL := cert.OCSPServer[0]

	var issuer *x509.Certificate
	for _, c := range ch.Certs {
		if bytes.Equal(c.RawSubject, cert.RawIssuer) {
			issuer = c
			break
		}
	}
	if issuer == nil {
		return &RevocationStatus{OCSPStatus: "Unknown"}, fmt.Errorf("issuer certificate not found in chain")
	}

	reqData, err := ocsp.CreateRequest(cert, issuer, nil)
	if err != nil {
		return &RevocationStatus{OCSPStatus: "Unknown"}, fmt.Errorf("failed to create OCSP request: %w", err)
	}

	h := ch.Fetcher.FetchOCSP(ocspURL, certnet.FetchParams{
		OCSPRequestBody: reqData,
		OCSPVerb:        certnet.OCSPVerbPOST,
	})
	kind, respData, err := h.WaitForResult(ctx)
	if err != nil {
		return &RevocationStatus{OCSPStatus: "Unknown"}, fmt.Errorf("OCSP request failed: %w", err)
	}
	if err := certnet.AsError(kind, ocspURL); err != nil {
		return &RevocationStatus{OCSPStatus: "Unknown"}, fmt.Errorf("OCSP request failed: %w", err)
	}

	resp, err := ocsp.ParseResponseForCert(respData, cert, issuer)
	if err != nil {
		return &RevocationStatus{OCSPStatus: "Unknown"}, fmt.Errorf("failed to parse OCSP response: %w", err)
	}

	return &RevocationStatus{
		OCSPStatus:   ocspStatusString(resp.Status),
		SerialNumber: cert.SerialNumber.String(),
	}, nil
}

// checkCRLStatus fetches the certificate's CRL distribution point through
// ch.Fetcher and checks cert's serial number against the parsed
// revocation list.
func (ch *Chain) checkCRLStatus(ctx context.Context, cert *x509.Certificate) (*RevocationStatus, error) {
	if len(cert.CRLDistributionPoints) == 0 {
		return &RevocationStatus{CRLStatus: "Not Available"}, nil
	}

	crlURL := cert.CRLDistributionPoints[0]

	h := ch.Fetcher.FetchCRL(crlURL, certnet.FetchParams{})
	kind, crlData, err := h.WaitForResult(ctx)
	if err != nil {
		return nil, fmt.Errorf("CRL request failed: %w", err)
	}
	if err := certnet.AsError(kind, crlURL); err != nil {
		return nil, fmt.Errorf("CRL request failed: %w", err)
	}

	crl, err := x509.ParseRevocationList(crlData)
	if err != nil {
		return nil, fmt.Errorf("failed to parse CRL: %w", err)
	}

	status := "Good"
	for _, entry := range crl.RevokedCertificateEntries {
		if entry.SerialNumber.Cmp(cert.SerialNumber) == 0 {
			status = "Revoked"
			break
		}
	}

	return &RevocationStatus{
		CRLStatus:    status,
		SerialNumber: cert.SerialNumber.String(),
	}, nil
}

// CheckRevocationStatus performs OCSP/CRL checks for the certificate chain
func (ch *Chain) CheckRevocationStatus(ctx context.Context) (string, error) {
	var result strings.Builder
	result.WriteString("Revocation Status Check:\n\n")

	for i, cert := range ch.Certs {
		// Skip ultimate trust anchor; roots aren't revoked via OCSP/CRL
		if i == len(ch.Certs)-1 {
			continue
		}

		result.WriteString(fmt.Sprintf("Certificate %d: %s\n", i+1, cert.Subject.CommonName))

		// Check OCSP
		ocspStatus, ocspErr := ch.checkOCSPStatus(ctx, cert)
		if ocspErr != nil {
			result.WriteString(fmt.Sprintf("  OCSP Error: %v\n", ocspErr))
		} else {
			result.WriteString(fmt.Sprintf("  OCSP Status: %s\n", ocspStatus.OCSPStatus))
		}

		// Check CRL
		crlStatus, crlErr := ch.checkCRLStatus(ctx, cert)
		if crlErr != nil {
			result.WriteString(fmt.Sprintf("  CRL Error: %v\n", crlErr))
		} else {
			result.WriteString(fmt.Sprintf("  CRL Status: %s\n", crlStatus.CRLStatus))
		}

		result.WriteString("\n")
	}

	return result.String(), nil
}
