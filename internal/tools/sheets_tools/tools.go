package sheets_tools

import (
	"context"
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/letterrip/letterrip/internal/google"
	"github.com/letterrip/letterrip/internal/server"
	"github.com/letterrip/letterrip/internal/sheets"
)

// getSheetsClient retrieves or creates a Sheets client for the specified account
func getSheetsClient(ctx context.Context, account string, sc *server.ServerContext) (*sheets.Client, error) {
	client := sc.SheetsClientForAccount(account)
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
		client, err = sheets.NewClientForAccount(ctx, account)
		if err != nil {
			return nil, fmt.Errorf("failed to create Sheets client for account %s: %w", account, err)
		}
		sc.SetSheetsClientForAccount(account, client)
	}
	return client, nil
}

// RegisterSheetsTools registers all Sheets-related tools with the MCP server
func RegisterSheetsTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if err := RegisterSpreadsheetTools(s, sc); err != nil {
		return fmt.Errorf("failed to register spreadsheet tools: %w", err)
	}

	if err := RegisterRowTools(s, sc); err != nil {
		return fmt.Errorf("failed to register row tools: %w", err)
	}

	return nil
}
