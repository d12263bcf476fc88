// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/H0llyW00dzZ/certnet-fetcher/src/internal/certnet"
)

// registerTools wires the fetcher's three fetch operations up as MCP
// tools, grounded on the teacher's createTools/mcp.NewTool shape but
// trimmed to the operations SPEC_FULL scopes the server to.
func registerTools(s *server.MCPServer, fetcher *certnet.Fetcher) {
	s.AddTool(
		mcp.NewTool("fetch_ca_issuer",
			mcp.WithDescription("Follow an AIA caIssuers URL and return the decoded intermediate certificate"),
			mcp.WithString("url",
				mcp.Required(),
				mcp.Description("The http caIssuers URL to fetch"),
			),
			mcp.WithBoolean("der",
				mcp.Description("Return raw DER instead of a decoded summary (default: false)"),
				mcp.DefaultBool(false),
			),
		),
		newFetchCAIssuersHandler(fetcher),
	)

	s.AddTool(
		mcp.NewTool("fetch_crl",
			mcp.WithDescription("Download a CRL distribution point and return the parsed revocation list"),
			mcp.WithString("url",
				mcp.Required(),
				mcp.Description("The http CRL distribution point URL to fetch"),
			),
		),
		newFetchCRLHandler(fetcher),
	)

	s.AddTool(
		mcp.NewTool("fetch_ocsp",
			mcp.WithDescription("Send an OCSP request for a certificate/issuer pair and return the response status"),
			mcp.WithString("url",
				mcp.Required(),
				mcp.Description("The http OCSP responder URL to fetch"),
			),
			mcp.WithString("certificate",
				mcp.Required(),
				mcp.Description("Subject certificate, PEM or base64-encoded DER"),
			),
			mcp.WithString("issuer",
				mcp.Required(),
				mcp.Description("Issuer certificate of the subject certificate, PEM or base64-encoded DER"),
			),
			mcp.WithBoolean("use_get",
				mcp.Description("Use RFC 6960 Appendix A.1 GET encoding instead of POST (default: false)"),
				mcp.DefaultBool(false),
			),
		),
		newFetchOCSPHandler(fetcher),
	)
}
