// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
// Use of this source code is governed by a BSD 3-Clause
// license that can be found in the LICENSE file.

// tls-cert-chain-resolver is a command-line tool for resolving TLS
// certificate chains and for fetching the CA-issuer certificates,
// CRLs, and OCSP responses a chain depends on.
//
// # Installation
//
// Install with Go 1.25.5 or later:
//
//	go install github.com/H0llyW00dzZ/certnet-fetcher/cmd/tls-cert-chain-resolver@latest
//
// # Usage
//
//	tls-cert-chain-resolver resolve <input-file> [FLAGS]
//	tls-cert-chain-resolver fetch ca-issuers <url> [FLAGS]
//	tls-cert-chain-resolver fetch crl <url> [FLAGS]
//	tls-cert-chain-resolver fetch ocsp <url> --cert FILE --issuer FILE [FLAGS]
//	tls-cert-chain-resolver serve-mcp
//
// # Global Flags
//
//	--config  Path to a JSON or YAML fetcher config file (default: $CERTNET_CONFIG_FILE)
//
// # resolve Flags
//
//	-o, --output            Destination file (default: stdout)
//	-i, --intermediate-only Emit only intermediate certificates
//	-d, --der               Output bundle in DER format
//	-s, --include-system    Append system trust root (where available)
//
// # fetch Flags
//
//	-o, --output    Destination file (default: a decoded summary on stdout)
//	-d, --der       Output raw DER/bytes instead of a decoded summary (ca-issuers only)
//	--timeout       Per-request timeout (fetch ocsp)
//	--cert, --issuer  Subject/issuer certificate files (fetch ocsp)
//	--ocsp-get      Use RFC 6960 Appendix A.1 GET encoding instead of POST
//
// # serve-mcp
//
// Runs the fetcher as a Model Context Protocol server over stdio,
// exposing fetch_ca_issuer, fetch_crl, and fetch_ocsp as tools plus a
// certnet://cache/stats resource.
//
// # Examples
//
// Resolve a leaf certificate into a PEM bundle:
//
//	tls-cert-chain-resolver resolve cert.pem -o chain.pem
//
// Fetch and decode an AIA caIssuers certificate directly:
//
//	tls-cert-chain-resolver fetch ca-issuers http://example.com/ca.crt
//
// Check a certificate's OCSP status:
//
//	tls-cert-chain-resolver fetch ocsp http://ocsp.example.com --cert leaf.pem --issuer issuer.pem
//
// Verify a resolved chain with OpenSSL:
//
//	openssl verify -CAfile /etc/ssl/certs/ca-certificates.crt \
//	  -untrusted chain.pem chain.pem
package main
