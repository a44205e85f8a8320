// Package google provides OAuth2 authentication and token management for Google APIs.
//
// Tokens are stored per account under the user cache directory (for STDIO
// transport) or come from an OAuth store (for HTTP transport with OAuth
// authentication). The TokenProvider interface lets either source be plugged
// into the service clients.
package google
