package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const appDirName = "letterrip"

// HasTokenForAccount checks if a stored OAuth token exists for the account
func HasTokenForAccount(account string) bool {
	_, err := os.Stat(tokenFile(account))
	return err == nil
}

// GetAuthURLForAccount returns the OAuth URL the user must visit to
// authorize access for the given account
func GetAuthURLForAccount(account string) string {
	conf := GetOAuthConfig()
	return conf.AuthCodeURL(account, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// SaveTokenForAccount exchanges an authorization code for tokens and stores
// them under the account's token file
func SaveTokenForAccount(ctx context.Context, account, authCode string) error {
	conf := GetOAuthConfig()

	t, err := conf.Exchange(ctx, authCode)
	if err != nil {
		return fmt.Errorf("failed to exchange auth code: %w", err)
	}

	return writeToken(account, t)
}

// GetOAuthConfig returns the OAuth2 configuration for all Google services.
// Client credentials come from the environment so no secret is baked into
// the binary.
func GetOAuthConfig() *oauth2.Config {
	const oob = "urn:ietf:wg:oauth:2.0:oob"

	redirectURL := os.Getenv("GOOGLE_REDIRECT_URL")
	if redirectURL == "" {
		redirectURL = oob
	}

	return &oauth2.Config{
		ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		Endpoint:     google.Endpoint,
		RedirectURL:  redirectURL,
		Scopes:       DefaultOAuthScopes,
	}
}

// GetTokenSourceForAccount returns a refreshing token source backed by the
// account's stored token
func GetTokenSourceForAccount(ctx context.Context, account string) (oauth2.TokenSource, error) {
	conf := GetOAuthConfig()

	t, err := readToken(account)
	if err != nil {
		return nil, fmt.Errorf("no Google OAuth token for account %q: %w", account, err)
	}

	return conf.TokenSource(ctx, t), nil
}

// GetHTTPClientForAccount returns an authenticated HTTP client for the
// account. The client is pinned to HTTP/1.1 to avoid HTTP/2 protocol errors
// some Google endpoints trigger.
func GetHTTPClientForAccount(ctx context.Context, account string) (*http.Client, error) {
	ts, err := GetTokenSourceForAccount(ctx, account)
	if err != nil {
		return nil, err
	}
	return httpClientForTokenSource(ctx, ts), nil
}

// GetHTTPClientForToken returns an authenticated HTTP client for an already
// resolved token, used when tokens come from an OAuth store rather than disk
func GetHTTPClientForToken(ctx context.Context, token *oauth2.Token) *http.Client {
	return httpClientForTokenSource(ctx, oauth2.StaticTokenSource(token))
}

func httpClientForTokenSource(ctx context.Context, ts oauth2.TokenSource) *http.Client {
	client := oauth2.NewClient(ctx, ts)

	// Force HTTP/1.1 by disabling HTTP/2
	if transport, ok := client.Transport.(*oauth2.Transport); ok {
		transport.Base = &http.Transport{
			ForceAttemptHTTP2: false,
		}
	}

	return client
}

func tokenFile(account string) string {
	name := "google.token"
	if account != "" && account != "default" {
		name = "google-" + account + ".token"
	}
	return filepath.Join(cacheDir(), name)
}

func writeToken(account string, t *oauth2.Token) error {
	dir := cacheDir()
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	if err := os.WriteFile(tokenFile(account), data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

func readToken(account string) (*oauth2.Token, error) {
	data, err := os.ReadFile(tokenFile(account))
	if err != nil {
		return nil, err
	}

	var t oauth2.Token
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("invalid token file: %w", err)
	}
	return &t, nil
}

func cacheDir() string {
	if base, err := os.UserCacheDir(); err == nil {
		return filepath.Join(base, appDirName)
	}
	return filepath.Join(os.Getenv("HOME"), "."+appDirName)
}
