package gmail_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/letterrip/letterrip/internal/server"
	"github.com/letterrip/letterrip/internal/tools/common"
)

// RegisterDraftTools registers draft creation and listing tools with the
// MCP server
func RegisterDraftTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	// List drafts tool
	listDraftsTool := mcp.NewTool("gmail_list_drafts",
		mcp.WithDescription("List draft emails with recipient, subject and snippet"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of drafts to return (default: 20)"),
		),
	)

	s.AddTool(listDraftsTool, common.InstrumentedToolHandlerWithService(
		"gmail_list_drafts", "gmail", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListDrafts(ctx, request, sc)
		}))

	// Create draft tool (write operation)
	if !readOnly {
		createDraftTool := mcp.NewTool("gmail_create_draft",
			mcp.WithDescription("Create a draft reply in an existing email thread. The draft is saved for the user to review and send; nothing is sent automatically."),
			mcp.WithString("account",
				mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
			),
			mcp.WithString("threadId",
				mcp.Required(),
				mcp.Description("The ID of the thread to reply in"),
			),
			mcp.WithString("to",
				mcp.Required(),
				mcp.Description("Recipient email address"),
			),
			mcp.WithString("subject",
				mcp.Description("Email subject (default: 'Re: ')"),
			),
			mcp.WithString("body",
				mcp.Required(),
				mcp.Description("Draft body content"),
			),
		)

		s.AddTool(createDraftTool, common.InstrumentedToolHandlerWithService(
			"gmail_create_draft", "gmail", "write", sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleCreateDraft(ctx, request, sc)
			}))
	}

	return nil
}

func handleListDrafts(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	maxResults := int64(0)
	if maxResultsVal, ok := args["maxResults"].(float64); ok {
		maxResults = int64(maxResultsVal)
	}

	client, err := getGmailClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	drafts, err := client.ListDrafts(ctx, maxResults)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list drafts: %v", err)), nil
	}

	if len(drafts) == 0 {
		return mcp.NewToolResultText("No drafts found."), nil
	}

	result := fmt.Sprintf("Found %d draft(s):\n\n", len(drafts))
	for i, draft := range drafts {
		result += fmt.Sprintf("%d. %s\n", i+1, draft.Subject)
		result += fmt.Sprintf("   ID: %s\n", draft.ID)
		if draft.To != "" {
			result += fmt.Sprintf("   To: %s\n", draft.To)
		}
		if draft.Snippet != "" {
			result += fmt.Sprintf("   Snippet: %s\n", draft.Snippet)
		}
		result += "\n"
	}

	return mcp.NewToolResultText(result), nil
}

func handleCreateDraft(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	threadID, ok := args["threadId"].(string)
	if !ok || threadID == "" {
		return mcp.NewToolResultError("threadId is required"), nil
	}

	to, ok := args["to"].(string)
	if !ok || to == "" {
		return mcp.NewToolResultError("to is required"), nil
	}

	body, ok := args["body"].(string)
	if !ok || body == "" {
		return mcp.NewToolResultError("body is required"), nil
	}

	subject := ""
	if subjectVal, ok := args["subject"].(string); ok {
		subject = subjectVal
	}

	client, err := getGmailClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	draftID, err := client.CreateDraftReply(ctx, threadID, to, subject, body)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create draft: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Draft created successfully!\nDraft ID: %s\nThread ID: %s\nTo: %s", draftID, threadID, to)), nil
}
