package oauth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestNewHandler(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name: "valid https resource",
			config: &Config{
				Resource: "https://mcp.example.com",
			},
			wantErr: false,
		},
		{
			name: "http localhost allowed",
			config: &Config{
				Resource: "http://localhost:8080",
			},
			wantErr: false,
		},
		{
			name: "http loopback allowed",
			config: &Config{
				Resource: "http://127.0.0.1:8080",
			},
			wantErr: false,
		},
		{
			name:    "missing resource",
			config:  &Config{},
			wantErr: true,
		},
		{
			name: "http non-localhost rejected",
			config: &Config{
				Resource: "http://mcp.example.com",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, err := NewHandler(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewHandler() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && handler == nil {
				t.Error("NewHandler() returned nil handler")
			}
			if handler != nil {
				handler.Stop()
			}
		})
	}
}

// registerTestClient registers a client directly in the handler's client store
// and returns the registration response (including the one-time secret).
func registerTestClient(t *testing.T, handler *Handler, clientType, authMethod string) *ClientRegistrationResponse {
	t.Helper()

	resp, err := handler.clientStore.RegisterClient(&ClientRegistrationRequest{
		ClientName:              "Test MCP Client",
		ClientType:              clientType,
		TokenEndpointAuthMethod: authMethod,
		RedirectURIs:            []string{"https://client.example.com/callback"},
	}, "192.0.2.1")
	if err != nil {
		t.Fatalf("RegisterClient() error = %v", err)
	}
	return resp
}

// seedAuthCode stores an authorization code carrying a fresh Google token.
func seedAuthCode(t *testing.T, handler *Handler, clientID, challenge, method string) string {
	t.Helper()

	code, err := GenerateAuthorizationCode()
	if err != nil {
		t.Fatalf("GenerateAuthorizationCode() error = %v", err)
	}

	now := time.Now().Unix()
	authCode := &AuthorizationCode{
		Code:                code,
		ClientID:            clientID,
		RedirectURI:         "https://client.example.com/callback",
		Scope:               "https://www.googleapis.com/auth/gmail.modify",
		CodeChallenge:       challenge,
		CodeChallengeMethod: method,
		GoogleAccessToken:   "google-access-token",
		GoogleRefreshToken:  "google-refresh-token",
		GoogleTokenExpiry:   now + 3600,
		UserEmail:           "user@example.com",
		CreatedAt:           now,
		ExpiresAt:           now + int64(DefaultAuthorizationCodeTTL.Seconds()),
	}
	if err := handler.flowStore.SaveAuthorizationCode(authCode); err != nil {
		t.Fatalf("SaveAuthorizationCode() error = %v", err)
	}
	return code
}

func postToken(handler *Handler, params url.Values, basicAuth ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/oauth/token", strings.NewReader(params.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if len(basicAuth) == 2 {
		req.SetBasicAuth(basicAuth[0], basicAuth[1])
	}
	w := httptest.NewRecorder()
	handler.ServeToken(w, req)
	return w
}

func TestHandler_ServeToken_AuthorizationCode(t *testing.T) {
	handler, err := NewHandler(&Config{Resource: "http://localhost:8080"})
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	defer handler.Stop()

	client := registerTestClient(t, handler, "public", "none")

	verifier, _ := GenerateCodeVerifier()
	challenge := GenerateCodeChallenge(verifier)
	code := seedAuthCode(t, handler, client.ClientID, challenge, "S256")

	params := url.Values{}
	params.Set("grant_type", "authorization_code")
	params.Set("code", code)
	params.Set("redirect_uri", "https://client.example.com/callback")
	params.Set("client_id", client.ClientID)
	params.Set("code_verifier", verifier)

	w := postToken(handler, params)

	if w.Code != http.StatusOK {
		t.Fatalf("ServeToken() status = %d, want %d, body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var token TokenResponse
	if err := json.NewDecoder(w.Body).Decode(&token); err != nil {
		t.Fatalf("Failed to decode token: %v", err)
	}

	if token.AccessToken == "" {
		t.Error("AccessToken should not be empty")
	}
	if token.RefreshToken == "" {
		t.Error("RefreshToken should not be empty")
	}
	if token.TokenType != "Bearer" {
		t.Errorf("TokenType = %s, want Bearer", token.TokenType)
	}

	// The issued access token must map to the user's Google token
	googleToken, err := handler.store.GetGoogleToken(token.AccessToken)
	if err != nil {
		t.Fatalf("GetGoogleToken(accessToken) error = %v", err)
	}
	if googleToken.AccessToken != "google-access-token" {
		t.Errorf("Mapped Google token = %s, want google-access-token", googleToken.AccessToken)
	}
}

func TestHandler_ServeToken_CodeReplay(t *testing.T) {
	handler, _ := NewHandler(&Config{Resource: "http://localhost:8080"})
	defer handler.Stop()

	client := registerTestClient(t, handler, "public", "none")

	verifier, _ := GenerateCodeVerifier()
	challenge := GenerateCodeChallenge(verifier)
	code := seedAuthCode(t, handler, client.ClientID, challenge, "S256")

	params := url.Values{}
	params.Set("grant_type", "authorization_code")
	params.Set("code", code)
	params.Set("redirect_uri", "https://client.example.com/callback")
	params.Set("client_id", client.ClientID)
	params.Set("code_verifier", verifier)

	if w := postToken(handler, params); w.Code != http.StatusOK {
		t.Fatalf("First exchange status = %d, want %d", w.Code, http.StatusOK)
	}

	// Authorization codes are single use
	w := postToken(handler, params)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Replayed exchange status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestHandler_ServeToken_InvalidCode(t *testing.T) {
	handler, _ := NewHandler(&Config{Resource: "http://localhost:8080"})
	defer handler.Stop()

	params := url.Values{}
	params.Set("grant_type", "authorization_code")
	params.Set("code", "invalid-code")
	params.Set("redirect_uri", "https://client.example.com/callback")
	params.Set("client_id", "test-client")

	w := postToken(handler, params)
	if w.Code != http.StatusBadRequest {
		t.Errorf("ServeToken() status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestHandler_ServeToken_MissingCode(t *testing.T) {
	handler, _ := NewHandler(&Config{Resource: "http://localhost:8080"})
	defer handler.Stop()

	params := url.Values{}
	params.Set("grant_type", "authorization_code")
	params.Set("redirect_uri", "https://client.example.com/callback")

	w := postToken(handler, params)
	if w.Code != http.StatusBadRequest {
		t.Errorf("ServeToken() status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	var errorResp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&errorResp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if errorResp.Error != "invalid_request" {
		t.Errorf("Error = %s, want invalid_request", errorResp.Error)
	}
}

func TestHandler_ServeToken_WrongClientID(t *testing.T) {
	handler, _ := NewHandler(&Config{Resource: "http://localhost:8080"})
	defer handler.Stop()

	client := registerTestClient(t, handler, "public", "none")

	verifier, _ := GenerateCodeVerifier()
	challenge := GenerateCodeChallenge(verifier)
	code := seedAuthCode(t, handler, client.ClientID, challenge, "S256")

	params := url.Values{}
	params.Set("grant_type", "authorization_code")
	params.Set("code", code)
	params.Set("redirect_uri", "https://client.example.com/callback")
	params.Set("client_id", "some-other-client")
	params.Set("code_verifier", verifier)

	w := postToken(handler, params)
	if w.Code != http.StatusBadRequest {
		t.Errorf("ServeToken() status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestHandler_ServeToken_RedirectURIMismatch(t *testing.T) {
	handler, _ := NewHandler(&Config{Resource: "http://localhost:8080"})
	defer handler.Stop()

	client := registerTestClient(t, handler, "public", "none")

	verifier, _ := GenerateCodeVerifier()
	challenge := GenerateCodeChallenge(verifier)
	code := seedAuthCode(t, handler, client.ClientID, challenge, "S256")

	params := url.Values{}
	params.Set("grant_type", "authorization_code")
	params.Set("code", code)
	params.Set("redirect_uri", "https://evil.example.com/callback")
	params.Set("client_id", client.ClientID)
	params.Set("code_verifier", verifier)

	w := postToken(handler, params)
	if w.Code != http.StatusBadRequest {
		t.Errorf("ServeToken() status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestHandler_ServeToken_InvalidPKCE(t *testing.T) {
	handler, _ := NewHandler(&Config{Resource: "http://localhost:8080"})
	defer handler.Stop()

	client := registerTestClient(t, handler, "public", "none")

	verifier, _ := GenerateCodeVerifier()
	challenge := GenerateCodeChallenge(verifier)
	code := seedAuthCode(t, handler, client.ClientID, challenge, "S256")

	// A different, valid-length verifier that doesn't match the challenge
	wrongVerifier, _ := GenerateCodeVerifier()

	params := url.Values{}
	params.Set("grant_type", "authorization_code")
	params.Set("code", code)
	params.Set("redirect_uri", "https://client.example.com/callback")
	params.Set("client_id", client.ClientID)
	params.Set("code_verifier", wrongVerifier)

	w := postToken(handler, params)
	if w.Code != http.StatusBadRequest {
		t.Errorf("ServeToken() status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	var errorResp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&errorResp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if errorResp.Error != "invalid_grant" {
		t.Errorf("Error = %s, want invalid_grant", errorResp.Error)
	}
}

func TestHandler_ServeToken_MissingCodeVerifier(t *testing.T) {
	handler, _ := NewHandler(&Config{Resource: "http://localhost:8080"})
	defer handler.Stop()

	client := registerTestClient(t, handler, "public", "none")

	verifier, _ := GenerateCodeVerifier()
	challenge := GenerateCodeChallenge(verifier)
	code := seedAuthCode(t, handler, client.ClientID, challenge, "S256")

	params := url.Values{}
	params.Set("grant_type", "authorization_code")
	params.Set("code", code)
	params.Set("redirect_uri", "https://client.example.com/callback")
	params.Set("client_id", client.ClientID)

	w := postToken(handler, params)
	if w.Code != http.StatusBadRequest {
		t.Errorf("ServeToken() status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestHandler_ServeToken_ExpiredGoogleTokenNoRefresh(t *testing.T) {
	// Without Google credentials the handler cannot refresh expired tokens
	handler, _ := NewHandler(&Config{Resource: "http://localhost:8080"})
	defer handler.Stop()

	client := registerTestClient(t, handler, "public", "none")

	verifier, _ := GenerateCodeVerifier()
	challenge := GenerateCodeChallenge(verifier)

	code, err := GenerateAuthorizationCode()
	if err != nil {
		t.Fatalf("GenerateAuthorizationCode() error = %v", err)
	}
	now := time.Now().Unix()
	authCode := &AuthorizationCode{
		Code:                code,
		ClientID:            client.ClientID,
		RedirectURI:         "https://client.example.com/callback",
		CodeChallenge:       challenge,
		CodeChallengeMethod: "S256",
		GoogleAccessToken:   "stale-google-token",
		GoogleRefreshToken:  "google-refresh-token",
		GoogleTokenExpiry:   now - 60, // Already expired
		UserEmail:           "user@example.com",
		CreatedAt:           now,
		ExpiresAt:           now + int64(DefaultAuthorizationCodeTTL.Seconds()),
	}
	if err := handler.flowStore.SaveAuthorizationCode(authCode); err != nil {
		t.Fatalf("SaveAuthorizationCode() error = %v", err)
	}

	params := url.Values{}
	params.Set("grant_type", "authorization_code")
	params.Set("code", code)
	params.Set("redirect_uri", "https://client.example.com/callback")
	params.Set("client_id", client.ClientID)
	params.Set("code_verifier", verifier)

	w := postToken(handler, params)
	if w.Code != http.StatusBadRequest {
		t.Errorf("ServeToken() status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestHandler_ServeToken_ConfidentialClientBasicAuth(t *testing.T) {
	handler, _ := NewHandler(&Config{Resource: "http://localhost:8080"})
	defer handler.Stop()

	client := registerTestClient(t, handler, "confidential", "client_secret_basic")
	if client.ClientSecret == "" {
		t.Fatal("Confidential client should have a secret")
	}

	verifier, _ := GenerateCodeVerifier()
	challenge := GenerateCodeChallenge(verifier)
	code := seedAuthCode(t, handler, client.ClientID, challenge, "S256")

	params := url.Values{}
	params.Set("grant_type", "authorization_code")
	params.Set("code", code)
	params.Set("redirect_uri", "https://client.example.com/callback")
	params.Set("client_id", client.ClientID)
	params.Set("code_verifier", verifier)

	w := postToken(handler, params, client.ClientID, client.ClientSecret)
	if w.Code != http.StatusOK {
		t.Errorf("ServeToken() status = %d, want %d, body: %s", w.Code, http.StatusOK, w.Body.String())
	}
}

func TestHandler_ServeToken_ConfidentialClientNoSecret(t *testing.T) {
	handler, _ := NewHandler(&Config{Resource: "http://localhost:8080"})
	defer handler.Stop()

	client := registerTestClient(t, handler, "confidential", "client_secret_basic")

	verifier, _ := GenerateCodeVerifier()
	challenge := GenerateCodeChallenge(verifier)
	code := seedAuthCode(t, handler, client.ClientID, challenge, "S256")

	params := url.Values{}
	params.Set("grant_type", "authorization_code")
	params.Set("code", code)
	params.Set("redirect_uri", "https://client.example.com/callback")
	params.Set("client_id", client.ClientID)
	params.Set("code_verifier", verifier)

	w := postToken(handler, params)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("ServeToken() status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestHandler_ServeToken_RefreshTokenGrant(t *testing.T) {
	handler, _ := NewHandler(&Config{Resource: "http://localhost:8080"})
	defer handler.Stop()

	email := "user@example.com"
	googleToken := &oauth2.Token{
		AccessToken: "google-access-token",
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(time.Hour),
	}
	if err := handler.store.SaveGoogleToken(email, googleToken); err != nil {
		t.Fatalf("SaveGoogleToken() error = %v", err)
	}
	expiresAt := time.Now().Add(time.Hour).Unix()
	if err := handler.store.SaveRefreshToken("refresh-abc", email, expiresAt); err != nil {
		t.Fatalf("SaveRefreshToken() error = %v", err)
	}

	params := url.Values{}
	params.Set("grant_type", "refresh_token")
	params.Set("refresh_token", "refresh-abc")

	w := postToken(handler, params)
	if w.Code != http.StatusOK {
		t.Fatalf("ServeToken() status = %d, want %d, body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var token TokenResponse
	if err := json.NewDecoder(w.Body).Decode(&token); err != nil {
		t.Fatalf("Failed to decode token: %v", err)
	}

	if token.AccessToken == "" {
		t.Error("AccessToken should not be empty")
	}

	// Refresh token rotation is on by default
	if token.RefreshToken == "" || token.RefreshToken == "refresh-abc" {
		t.Errorf("RefreshToken = %s, want a rotated token", token.RefreshToken)
	}

	// The old refresh token must be invalidated
	if _, err := handler.store.GetRefreshToken("refresh-abc"); err == nil {
		t.Error("Old refresh token should be invalidated after rotation")
	}
}

func TestHandler_ServeToken_RefreshToken_Missing(t *testing.T) {
	handler, _ := NewHandler(&Config{Resource: "http://localhost:8080"})
	defer handler.Stop()

	params := url.Values{}
	params.Set("grant_type", "refresh_token")

	w := postToken(handler, params)
	if w.Code != http.StatusBadRequest {
		t.Errorf("ServeToken() status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestHandler_ServeToken_RefreshToken_Unknown(t *testing.T) {
	handler, _ := NewHandler(&Config{Resource: "http://localhost:8080"})
	defer handler.Stop()

	params := url.Values{}
	params.Set("grant_type", "refresh_token")
	params.Set("refresh_token", "never-issued")

	w := postToken(handler, params)
	if w.Code != http.StatusBadRequest {
		t.Errorf("ServeToken() status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestHandler_GetStore(t *testing.T) {
	handler, _ := NewHandler(&Config{Resource: "http://localhost:8080"})
	defer handler.Stop()

	if handler.GetStore() == nil {
		t.Error("GetStore() should not return nil")
	}
}

func TestValidateRedirectURI(t *testing.T) {
	tests := []struct {
		name               string
		uri                string
		serverResource     string
		allowCustomSchemes bool
		wantErr            bool
	}{
		{
			name:           "https uri valid",
			uri:            "https://client.example.com/callback",
			serverResource: "https://mcp.example.com",
			wantErr:        false,
		},
		{
			name:           "loopback http valid in production",
			uri:            "http://localhost:8080/callback",
			serverResource: "https://mcp.example.com",
			wantErr:        false,
		},
		{
			name:           "http non-localhost rejected in production",
			uri:            "http://client.example.com/callback",
			serverResource: "https://mcp.example.com",
			wantErr:        true,
		},
		{
			name:           "fragment rejected",
			uri:            "https://client.example.com/callback#frag",
			serverResource: "https://mcp.example.com",
			wantErr:        true,
		},
		{
			name:           "missing scheme rejected",
			uri:            "client.example.com/callback",
			serverResource: "https://mcp.example.com",
			wantErr:        true,
		},
		{
			name:               "custom scheme allowed when enabled",
			uri:                "myapp://callback",
			serverResource:     "https://mcp.example.com",
			allowCustomSchemes: true,
			wantErr:            false,
		},
		{
			name:           "custom scheme rejected when disabled",
			uri:            "myapp://callback",
			serverResource: "https://mcp.example.com",
			wantErr:        true,
		},
		{
			name:               "javascript scheme always rejected",
			uri:                "javascript://alert",
			serverResource:     "https://mcp.example.com",
			allowCustomSchemes: true,
			wantErr:            true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRedirectURI(tt.uri, tt.serverResource, tt.allowCustomSchemes, DefaultRFC3986SchemePattern)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateRedirectURI(%s) error = %v, wantErr %v", tt.uri, err, tt.wantErr)
			}
		})
	}
}
