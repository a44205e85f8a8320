package slides_tools

import (
	"context"
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/letterrip/letterrip/internal/google"
	"github.com/letterrip/letterrip/internal/server"
	"github.com/letterrip/letterrip/internal/slides"
)

// getSlidesClient retrieves or creates a Slides client for the specified account
func getSlidesClient(ctx context.Context, account string, sc *server.ServerContext) (*slides.Client, error) {
	client := sc.SlidesClientForAccount(account)
	if client == nil {
		// Check if token exists before trying to create client
		if !google.HasTokenForAccount(account) {
			authURL := google.GetAuthURLForAccount(account)
			return nil, fmt.Errorf(`Google OAuth token not found for account "%s". To authorize access:

1. Visit this URL in your browser:
   %s

2. Sign in with your Google account
3. Grant access to Google services (Gmail, Calendar, Sheets, Slides, Forms)
4. Copy the authorization code

5. Provide the authorization code to your AI agent
   The agent will use the google_save_auth_code tool with account="%s" to complete authentication.

Note: You only need to authorize once. The tokens will be automatically refreshed.`, account, authURL, account)
		}

		var err error
		client, err = slides.NewClientForAccount(ctx, account)
		if err != nil {
			return nil, fmt.Errorf("failed to create Slides client for account %s: %w", account, err)
		}
		sc.SetSlidesClientForAccount(account, client)
	}
	return client, nil
}

// RegisterSlidesTools registers all Slides-related tools with the MCP server
func RegisterSlidesTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if err := RegisterReadTools(s, sc); err != nil {
		return fmt.Errorf("failed to register presentation read tools: %w", err)
	}

	if err := RegisterCreateTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register presentation create tools: %w", err)
	}

	return nil
}
