package oauth

import "time"

// AuthorizationServerMetadata represents OAuth 2.0 Authorization Server Metadata (RFC 8414)
type AuthorizationServerMetadata struct {
	// Issuer is the authorization server's issuer identifier
	Issuer string `json:"issuer"`

	// AuthorizationEndpoint is the URL of the authorization endpoint
	AuthorizationEndpoint string `json:"authorization_endpoint"`

	// TokenEndpoint is the URL of the token endpoint
	TokenEndpoint string `json:"token_endpoint"`

	// RegistrationEndpoint is the URL of the dynamic client registration endpoint (RFC 7591)
	RegistrationEndpoint string `json:"registration_endpoint,omitempty"`

	// ScopesSupported lists the scopes this server supports
	ScopesSupported []string `json:"scopes_supported,omitempty"`

	// ResponseTypesSupported lists the supported response_type values
	ResponseTypesSupported []string `json:"response_types_supported"`

	// GrantTypesSupported lists the supported grant types
	GrantTypesSupported []string `json:"grant_types_supported,omitempty"`

	// TokenEndpointAuthMethodsSupported lists supported client authentication methods
	TokenEndpointAuthMethodsSupported []string `json:"token_endpoint_auth_methods_supported,omitempty"`

	// CodeChallengeMethodsSupported lists supported PKCE challenge methods (RFC 7636)
	CodeChallengeMethodsSupported []string `json:"code_challenge_methods_supported,omitempty"`
}

// ClientRegistrationRequest represents a Dynamic Client Registration request (RFC 7591)
type ClientRegistrationRequest struct {
	// RedirectURIs are the redirect URIs the client will use
	RedirectURIs []string `json:"redirect_uris"`

	// TokenEndpointAuthMethod is how the client authenticates at the token endpoint
	TokenEndpointAuthMethod string `json:"token_endpoint_auth_method,omitempty"`

	// GrantTypes are the grant types the client will use
	GrantTypes []string `json:"grant_types,omitempty"`

	// ResponseTypes are the response types the client will use
	ResponseTypes []string `json:"response_types,omitempty"`

	// ClientName is a human-readable name for the client
	ClientName string `json:"client_name,omitempty"`

	// ClientType is "public" or "confidential" (OAuth 2.1)
	// Defaults based on the token endpoint auth method when omitted
	ClientType string `json:"client_type,omitempty"`

	// Scope is a space-separated list of scopes the client will request
	Scope string `json:"scope,omitempty"`
}

// ClientRegistrationResponse represents a Dynamic Client Registration response (RFC 7591)
type ClientRegistrationResponse struct {
	// ClientID is the issued client identifier
	ClientID string `json:"client_id"`

	// ClientSecret is the issued client secret (only returned once, empty for public clients)
	ClientSecret string `json:"client_secret,omitempty"`

	// ClientIDIssuedAt is when the client ID was issued (unix seconds)
	ClientIDIssuedAt int64 `json:"client_id_issued_at"`

	// ClientSecretExpiresAt is when the secret expires (0 = never)
	ClientSecretExpiresAt int64 `json:"client_secret_expires_at"`

	// RedirectURIs echoes the registered redirect URIs
	RedirectURIs []string `json:"redirect_uris"`

	// TokenEndpointAuthMethod echoes the client authentication method
	TokenEndpointAuthMethod string `json:"token_endpoint_auth_method"`

	// GrantTypes echoes the registered grant types
	GrantTypes []string `json:"grant_types"`

	// ResponseTypes echoes the registered response types
	ResponseTypes []string `json:"response_types"`

	// ClientName echoes the client name
	ClientName string `json:"client_name,omitempty"`

	// ClientType echoes the resolved client type
	ClientType string `json:"client_type,omitempty"`

	// Scope echoes the registered scope
	Scope string `json:"scope,omitempty"`
}

// RegisteredClient is a dynamically registered OAuth client as stored on the server
type RegisteredClient struct {
	ClientID                string
	ClientSecret            string // Never populated after registration; secrets are stored hashed
	ClientSecretHash        string // bcrypt hash of the client secret (empty for public clients)
	ClientIDIssuedAt        int64
	ClientSecretExpiresAt   int64
	RedirectURIs            []string
	TokenEndpointAuthMethod string
	GrantTypes              []string
	ResponseTypes           []string
	ClientName              string
	ClientType              string // "public" or "confidential"
	Scope                   string
}

// AuthorizationState tracks an in-flight authorization request while the
// user authenticates with Google. Keyed by the Google-side state parameter.
type AuthorizationState struct {
	State               string // Client-provided state parameter
	ClientID            string
	RedirectURI         string
	Scope               string
	CodeChallenge       string
	CodeChallengeMethod string
	GoogleState         string // State parameter used for the Google leg of the flow
	CreatedAt           int64  // Unix seconds
	ExpiresAt           int64  // Unix seconds
	Nonce               string
}

// AuthorizationCode is an issued authorization code awaiting exchange at the
// token endpoint. Single use; Used is set on first successful exchange.
type AuthorizationCode struct {
	Code                string
	ClientID            string
	RedirectURI         string
	Scope               string
	CodeChallenge       string
	CodeChallengeMethod string
	GoogleAccessToken   string
	GoogleRefreshToken  string
	GoogleTokenExpiry   int64 // Unix seconds
	UserEmail           string
	CreatedAt           int64 // Unix seconds
	ExpiresAt           int64 // Unix seconds
	Used                bool
}

// IsExpired reports whether the authorization code is past its expiry.
func (c *AuthorizationCode) IsExpired() bool {
	return time.Now().Unix() > c.ExpiresAt
}

// TokenResponse represents a successful token endpoint response (RFC 6749 section 5.1)
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
}
