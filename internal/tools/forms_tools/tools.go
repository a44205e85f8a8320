package forms_tools

import (
	"context"
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/letterrip/letterrip/internal/forms"
	"github.com/letterrip/letterrip/internal/google"
	"github.com/letterrip/letterrip/internal/server"
)

// getFormsClient retrieves or creates a Forms client for the specified account
func getFormsClient(ctx context.Context, account string, sc *server.ServerContext) (*forms.Client, error) {
	client := sc.FormsClientForAccount(account)
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
		client, err = forms.NewClientForAccount(ctx, account)
		if err != nil {
			return nil, fmt.Errorf("failed to create Forms client for account %s: %w", account, err)
		}
		sc.SetFormsClientForAccount(account, client)
	}
	return client, nil
}

// RegisterFormsTools registers all Forms-related tools with the MCP server
func RegisterFormsTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if err := RegisterFormTools(s, sc); err != nil {
		return fmt.Errorf("failed to register form tools: %w", err)
	}

	if err := RegisterResponseTools(s, sc); err != nil {
		return fmt.Errorf("failed to register response tools: %w", err)
	}

	return nil
}
