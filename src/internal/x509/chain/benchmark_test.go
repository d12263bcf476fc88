// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"context"
	"crypto/x509"
	"encoding/pem"
	"strings"
	"testing"
	"time"

	"github.com/H0llyW00dzZ/certnet-fetcher/src/internal/certnet"
)

// Test certificate from www.google.com, duplicated from chain_test.go
// since that file lives in the external x509chain_test package and
// these benchmarks need package-internal access to run against a real
// AIA chain.
const testCertPEM = `
-----BEGIN CERTIFICATE-----
MIIEVzCCAz+gAwIBAgIQXEsKucZT6MwJr/NcaQmnozANBgkqhkiG9w0BAQsFADA7
MQswCQYDVQQGEwJVUzEeMBwGA1UEChMVR29vZ2xlIFRydXN0IFNlcnZpY2VzMQww
CgYDVQQDEwNXUjIwHhcNMjUwOTIyMDg0MjQwWhcNMjUxMjE1MDg0MjM5WjAZMRcw
FQYDVQQDEw53d3cuZ29vZ2xlLmNvbTBZMBMGByqGSM49AgEGCCqGSM49AwEHA0IA
BM3QmmV89za/vDWm/Ctodj6J5s0RLy5fo5QsoGRdMlzItH3jBRpmdWEMysalvQtm
aLGUUvJv5ASJHKfixPD3LWijggJCMIICPjAOBgNVHQ8BAf8EBAMCB4AwEwYDVR0l
BAwwCgYIKwYBBQUHAwEwDAYDVR0TAQH/BAIwADAdBgNVHQ4EFgQUUYk76ccIt4qc
kyjMh0xUc5iMmTIwHwYDVR0jBBgwFoAU3hse7XkV1D43JMMhu+w0OW1CsjAwWAYI
KwYBBQUHAQEETDBKMCEGCCsGAQUFBzABhhVodHRwOi8vby5wa2kuZ29vZy93cjIw
JQYIKwYBBQUHMAKGGWh0dHA6Ly9pLnBraS5nb29nL3dyMi5jcnQwGQYDVR0RBBIw
EIIOd3d3Lmdvb2dsZS5jb20wEwYDVR0gBAwwCjAIBgZngQwBAgEwNgYDVR0fBC8w
LTAroCmgJ4YlaHR0cDovL2MucGtpLmdvb2cvd3IyL0dTeVQxTjRQQnJnLmNybDCC
AQUGCisGAQQB1nkCBAIEgfYEgfMA8QB2AN3cyjSV1+EWBeeVMvrHn/g9HFDf2wA6
FBJ2Ciysu8gqAAABmXDN1WkAAAQDAEcwRQIgdH62Tub0woIi1sa+gQHvdMpNlfa6
WQgVn2Ov2CM0ktkCIQDyivdzECaAyaCq8GG+EtKWge4nLJ8FM++Q5WVQD9kCUgB3
AMz7D2qFcQll/pWbU87psnwi6YVcDZeNtql+VMD+TA2wAAABmXDN1WgAAAQDAEgw
RgIhAPNnKBAUSFiPjBYsu9A+UlI8ykhnoaZiFMhaDvrHGMKvAiEA02wfQcWu2753
HW54J/Iyeak0ni5z8jqayf1Rd5518Q0wDQYJKoZIhvcNAQELBQADggEBAAqYHEc6
CiVjrSPb0E4QSHYZIbqpHSYnOs8OQ7T54QM8yoMWOb4tWaMZGwdZayaL6ehyYKzS
8lhyxL4OPN9E51//mScXtemV4EbgrDm0fk3uH0gAX3oP+0DZH4X7t7L9aO8nalSl
KGJvEoHrphu2HbkAJY9OUqUo804OjXHeiY3FLUkoER7hb89w1qcaWxjRrVfflJ/Q
0pJCjtltJFSBTZbM6t0Y0uir9/XNPHcec4nMSyp3W/UEmcAoKc3kDJrT6CE2l2lI
Dd4Zns+bUA5A9z1Qy5c9MKX6I3rsHmUNUhGRz/lCyJDdc6UNoGKPmilI98JSRZYY
tXHHbX1dudpKfHM=
-----END CERTIFICATE-----
`

const version = "1.3.3.7-testing"

func BenchmarkFetchCertificateChain(b *testing.B) {
	block, _ := pem.Decode([]byte(testCertPEM))
	if block == nil {
		b.Fatal("failed to parse certificate PEM")
	}

	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		b.Fatalf("failed to parse certificate: %v", err)
	}

	fetcher := certnet.New(certnet.WithUserAgent(UserAgentFor(version)))
	defer fetcher.Shutdown(context.Background())

	for b.Loop() {
		manager := New(cert, fetcher)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)

		if err := manager.FetchCertificate(ctx); err != nil {
			b.Fatalf("FetchCertificate() error = %v", err)
		}
		cancel()
	}
}

func BenchmarkCheckRevocationStatus(b *testing.B) {
	block, _ := pem.Decode([]byte(testCertPEM))
	if block == nil {
		b.Fatal("failed to parse certificate PEM")
	}

	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		b.Fatalf("failed to parse certificate: %v", err)
	}

	fetcher := certnet.New(certnet.WithUserAgent(UserAgentFor(version)))
	defer fetcher.Shutdown(context.Background())

	manager := New(cert, fetcher)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := manager.FetchCertificate(ctx); err != nil {
		b.Fatalf("FetchCertificate() setup error = %v", err)
	}

	for b.Loop() {
		revocationCtx, revocationCancel := context.WithTimeout(context.Background(), 5*time.Second)
		_, err := manager.CheckRevocationStatus(revocationCtx)
		revocationCancel()
		if err != nil {
			b.Fatalf("CheckRevocationStatus() error = %v", err)
		}
	}
}

func BenchmarkVerifyChain(b *testing.B) {
	block, _ := pem.Decode([]byte(testCertPEM))
	if block == nil {
		b.Fatal("failed to parse certificate PEM")
	}

	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		b.Fatalf("failed to parse certificate: %v", err)
	}

	fetcher := certnet.New(certnet.WithUserAgent(UserAgentFor(version)))
	defer fetcher.Shutdown(context.Background())

	manager := New(cert, fetcher)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := manager.FetchCertificate(ctx); err != nil {
		b.Fatalf("FetchCertificate() setup error = %v", err)
	}

	for b.Loop() {
		if err := manager.VerifyChain(); err != nil && !strings.Contains(err.Error(), "issuer name does not match") {
			b.Fatalf("VerifyChain() error = %v", err)
		}
	}
}

func BenchmarkConcurrentRevocationChecks(b *testing.B) {
	block, _ := pem.Decode([]byte(testCertPEM))
	if block == nil {
		b.Fatal("failed to parse certificate PEM")
	}

	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		b.Fatalf("failed to parse certificate: %v", err)
	}

	fetcher := certnet.New(certnet.WithUserAgent(UserAgentFor(version)))
	defer fetcher.Shutdown(context.Background())

	manager := New(cert, fetcher)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := manager.FetchCertificate(ctx); err != nil {
		b.Fatalf("FetchCertificate() setup error = %v", err)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			revocationCtx, revocationCancel := context.WithTimeout(context.Background(), 5*time.Second)
			_, err := manager.CheckRevocationStatus(revocationCtx)
			revocationCancel()
			if err != nil {
				b.Fatalf("CheckRevocationStatus() error = %v", err)
			}
		}
	})
}
