// Package oauth implements OAuth 2.1 authorization for the letterrip MCP server.
//
// The Handler acts as both an OAuth 2.1 Authorization Server (proxying the
// authorization flow to Google) and a Resource Server (validating Bearer
// tokens on MCP requests). It supports Dynamic Client Registration (RFC 7591),
// PKCE (RFC 7636), refresh token rotation, per-IP and per-user rate limiting,
// token encryption at rest, and security audit logging.
//
// Silent authentication helpers (prompt=none flows for upstream aggregators)
// are built on github.com/giantswarm/mcp-oauth; see silent_auth.go.
package oauth
