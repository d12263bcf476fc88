// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"context"
	"crypto/x509"
	"fmt"
	"sync"

	"github.com/H0llyW00dzZ/certnet-fetcher/src/internal/certnet"
	x509certs "github.com/H0llyW00dzZ/certnet-fetcher/src/internal/x509/certs"
)

// UserAgentFor builds the default User-Agent string this package's
// certificate fetches identify themselves with, for passing to
// certnet.WithUserAgent when constructing the shared Fetcher.
func UserAgentFor(version string) string {
	return fmt.Sprintf("X.509-Certificate-Chain-Resolver/%s (+https://github.com/H0llyW00dzZ/certnet-fetcher)", version)
}

// Chain manages [X.509] certificates.
//
// [X.509]: https://grokipedia.com/page/X.509
type Chain struct {
	mu    sync.RWMutex
	Certs []*x509.Certificate
	*x509certs.Certificate
	Roots         *x509.CertPool
	Intermediates *x509.CertPool
	Fetcher       *certnet.Fetcher // shared AIA fetcher; coalesces across concurrent chain walks
}

// New creates a new Chain.
//
// It initializes a new certificate chain manager with the starting
// certificate. fetcher is the shared certnet.Fetcher used to walk the
// Authority Information Access extension; construct it once (with
// certnet.WithUserAgent(UserAgentFor(version)) if desired) and share it
// across every Chain, so concurrent resolutions coalesce their AIA
// fetches.
//
// Parameters:
//   - cert: Starting certificate (leaf)
//   - fetcher: Shared fetcher used for AIA certificate retrieval
//
// Returns:
//   - *Chain: New Chain instance
func New(cert *x509.Certificate, fetcher *certnet.Fetcher) *Chain {
	roots := x509.NewCertPool()
	intermediates := x509.NewCertPool()
	return &Chain{
		Certs:         []*x509.Certificate{cert},
		Certificate:   x509certs.New(),
		Roots:         roots,
		Intermediates: intermediates,
		Fetcher:       fetcher,
	}
}

// FetchCertificate retrieves the certificate chain starting from the given certificate.
//
// It iteratively fetches the issuing certificate using the AIA (Authority Information Access)
// extension URL until a root certificate is reached or no further issuer can be found.
// Each hop runs through ch.Fetcher, so concurrent chain walks that reference
// the same issuer URL coalesce onto a single in-flight request, share its
// response-size cap, and are bounded by the fetcher's per-request timeout
// instead of this method's own deadline management.
//
// Parameters:
//   - ctx: Context for cancellation and timeouts
//
// Returns:
//   - error: Error if fetching fails or chain verification fails
//
// Thread Safety: Safe for concurrent use.
func (ch *Chain) FetchCertificate(ctx context.Context) error {
	for {
		ch.mu.RLock()
		last := ch.Certs[len(ch.Certs)-1]
		if last.IssuingCertificateURL == nil {
			ch.mu.RUnlock()
			break
		}
		parentURL := last.IssuingCertificateURL[0]
		ch.mu.RUnlock()

		h := ch.Fetcher.FetchCAIssuers(parentURL, certnet.FetchParams{})
		kind, data, err := h.WaitForResult(ctx)
		if err != nil {
			return err
		}
		if err := certnet.AsError(kind, parentURL); err != nil {
			return err
		}

		cert, err := ch.Certificate.Decode(data)
		if err != nil {
			return err
		}

		ch.mu.Lock()
		current := ch.Certs[len(ch.Certs)-1]
		if current != last {
			ch.mu.Unlock()
			continue
		}
		ch.Certs = append(ch.Certs, cert)
		isRoot := ch.IsRootNode(cert)
		ch.mu.Unlock()

		if isRoot {
			break
		}
	}

	return ch.VerifyChain()
}

// AddRootCA adds a root CA to the certificate chain if necessary.
//
// It attempts to verify the last certificate in the chain against system roots.
// If successful, it appends the root certificate found to the chain.
//
// Returns:
//   - error: Error if verification fails (excluding UnknownAuthorityError)
//
// Thread Safety: Safe for concurrent use.
func (ch *Chain) AddRootCA() error {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	lastCert := ch.Certs[len(ch.Certs)-1]

	chains, err := lastCert.Verify(x509.VerifyOptions{})
	if err != nil {
		if _, ok := err.(x509.UnknownAuthorityError); ok {
			return nil
		}
		return err
	}

	for _, cert := range chains[0] {
		if lastCert.Equal(cert) {
			continue
		}
		ch.Certs = append(ch.Certs, cert)
	}

	return nil
}

// IsSelfSigned checks if a certificate is self-signed.
//
// It verifies the certificate's signature against itself.
//
// Parameters:
//   - cert: Certificate to check
//
// Returns:
//   - bool: true if self-signed, false otherwise
func (ch *Chain) IsSelfSigned(cert *x509.Certificate) bool {
	return cert.CheckSignatureFrom(cert) == nil
}

// IsRootNode determines if a certificate is a root node in the chain.
//
// Parameters:
//   - cert: Certificate to check
//
// Returns:
//   - bool: true if it's a root certificate (currently checks if self-signed)
func (ch *Chain) IsRootNode(cert *x509.Certificate) bool {
	return ch.IsSelfSigned(cert)
}

// FilterIntermediates filters out the root and leaf certificates, returning only intermediates.
//
// It returns a slice containing all certificates in the chain except the first
// (leaf) and last (root).
//
// Returns:
//   - []*x509.Certificate: Slice of intermediate certificates, or nil if none
//
// Thread Safety: Safe for concurrent use.
func (ch *Chain) FilterIntermediates() []*x509.Certificate {
	ch.mu.RLock()
	defer ch.mu.RUnlock()

	if len(ch.Certs) <= 2 {
		return nil // No intermediates if 2 or fewer certs
	}
	return ch.Certs[1 : len(ch.Certs)-1] // Skip the first (leaf) and last (root)
}

// VerifyChain checks that each certificate in the chain is validly signed by its predecessor.
//
// It builds separate pools for roots and intermediates from the chain itself
// and attempts to verify the leaf certificate.
//
// Returns:
//   - error: Error if verification fails
func (ch *Chain) VerifyChain() error {
	for i, cert := range ch.Certs {
		if i == len(ch.Certs)-1 {
			ch.Roots.AddCert(cert)
		} else {
			ch.Intermediates.AddCert(cert)
		}
	}

	leaf := ch.Certs[0]
	opts := x509.VerifyOptions{
		Roots:         ch.Roots,
		Intermediates: ch.Intermediates,
	}

	if _, err := leaf.Verify(opts); err != nil {
		// Return the original error from the verification process to preserve
		// detailed diagnostic information (e.g., expiration, unknown authority).
		return err
	}

	return nil
}

// findIssuerForCertificate finds the certificate that issued the given cert in the chain.
//
// It iterates backwards through the chain to find a certificate that has signed
// the provided certificate.
//
// Parameters:
//   - cert: Certificate to find issuer for
//
// Returns:
//   - *x509.Certificate: Issuer certificate, or nil if not found
//
// Thread Safety: Safe for concurrent use.
func (ch *Chain) findIssuerForCertificate(cert *x509.Certificate) *x509.Certificate {
	ch.mu.RLock()
	defer ch.mu.RUnlock()

	// For each certificate in the chain (starting from intermediates up)
	for i := len(ch.Certs) - 1; i >= 0; i-- {
		potentialIssuer := ch.Certs[i]
		// Skip self
		if potentialIssuer == cert {
			continue
		}
		// Check if this cert could have issued our cert
		if err := cert.CheckSignatureFrom(potentialIssuer); err == nil {
			return potentialIssuer
		}
	}
	return nil
}
