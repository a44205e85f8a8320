package gmail_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/letterrip/letterrip/internal/gmail"
	"github.com/letterrip/letterrip/internal/server"
	"github.com/letterrip/letterrip/internal/tools/common"
)

// RegisterMessageTools registers message listing, reading and sending tools
// with the MCP server
func RegisterMessageTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	// List emails tool
	listEmailsTool := mcp.NewTool("gmail_list_emails",
		mcp.WithDescription("List recent emails from the Gmail inbox with sender, subject, snippet and current labels"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of emails to return (default: 50)"),
		),
		mcp.WithNumber("newerThanDays",
			mcp.Description("Only include emails from the last N days"),
		),
		mcp.WithBoolean("untriagedOnly",
			mcp.Description("Only include emails that do not carry a triage label yet (default: false)"),
		),
	)

	s.AddTool(listEmailsTool, common.InstrumentedToolHandlerWithService(
		"gmail_list_emails", "gmail", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListEmails(ctx, request, sc)
		}))

	// Get email tool
	getEmailTool := mcp.NewTool("gmail_get_email",
		mcp.WithDescription("Get the full content of an email including its body and labels"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("messageId",
			mcp.Required(),
			mcp.Description("The ID of the message to fetch"),
		),
	)

	s.AddTool(getEmailTool, common.InstrumentedToolHandlerWithService(
		"gmail_get_email", "gmail", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetEmail(ctx, request, sc)
		}))

	// List sent emails tool
	listSentTool := mcp.NewTool("gmail_list_sent_emails",
		mcp.WithDescription("List sent emails addressed to a recipient, useful for sampling the user's writing style"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("to",
			mcp.Required(),
			mcp.Description("Recipient email address to filter sent mail by"),
		),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of emails to return (default: 5)"),
		),
	)

	s.AddTool(listSentTool, common.InstrumentedToolHandlerWithService(
		"gmail_list_sent_emails", "gmail", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListSentEmails(ctx, request, sc)
		}))

	// Send email tool (write operation)
	if !readOnly {
		sendEmailTool := mcp.NewTool("gmail_send_email",
			mcp.WithDescription("Send an email through Gmail"),
			mcp.WithString("account",
				mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
			),
			mcp.WithString("to",
				mcp.Required(),
				mcp.Description("Recipient email address(es), comma-separated for multiple recipients"),
			),
			mcp.WithString("subject",
				mcp.Required(),
				mcp.Description("Email subject"),
			),
			mcp.WithString("body",
				mcp.Required(),
				mcp.Description("Email body content"),
			),
			mcp.WithString("cc",
				mcp.Description("CC email address(es), comma-separated for multiple recipients"),
			),
			mcp.WithString("bcc",
				mcp.Description("BCC email address(es), comma-separated for multiple recipients"),
			),
			mcp.WithBoolean("isHTML",
				mcp.Description("Whether the body is HTML (default: false for plain text)"),
			),
		)

		s.AddTool(sendEmailTool, common.InstrumentedToolHandlerWithService(
			"gmail_send_email", "gmail", "write", sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleSendEmail(ctx, request, sc)
			}))
	}

	return nil
}

func handleListEmails(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	opts := gmail.ListOptions{}
	if maxResultsVal, ok := args["maxResults"].(float64); ok {
		opts.MaxResults = int64(maxResultsVal)
	}
	if daysVal, ok := args["newerThanDays"].(float64); ok {
		opts.NewerThanDays = int(daysVal)
	}
	if untriagedVal, ok := args["untriagedOnly"].(bool); ok {
		opts.UntriagedOnly = untriagedVal
	}

	client, err := getGmailClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	messages, err := client.ListMessages(ctx, opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list emails: %v", err)), nil
	}

	return mcp.NewToolResultText(formatMessageList(messages)), nil
}

func handleGetEmail(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	messageID, ok := args["messageId"].(string)
	if !ok || messageID == "" {
		return mcp.NewToolResultError("messageId is required"), nil
	}

	client, err := getGmailClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	msg, err := client.GetMessage(ctx, messageID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get email: %v", err)), nil
	}

	return mcp.NewToolResultText(formatMessage(msg)), nil
}

func handleListSentEmails(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	to, ok := args["to"].(string)
	if !ok || to == "" {
		return mcp.NewToolResultError("to is required"), nil
	}

	maxResults := int64(0)
	if maxResultsVal, ok := args["maxResults"].(float64); ok {
		maxResults = int64(maxResultsVal)
	}

	client, err := getGmailClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	messages, err := client.ListSent(ctx, to, maxResults)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list sent emails: %v", err)), nil
	}

	return mcp.NewToolResultText(formatMessageList(messages)), nil
}

func handleSendEmail(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	toStr, ok := args["to"].(string)
	if !ok || toStr == "" {
		return mcp.NewToolResultError("'to' field is required"), nil
	}

	subject, ok := args["subject"].(string)
	if !ok || subject == "" {
		return mcp.NewToolResultError("'subject' field is required"), nil
	}

	body, ok := args["body"].(string)
	if !ok || body == "" {
		return mcp.NewToolResultError("'body' field is required"), nil
	}

	ccStr := ""
	if ccVal, ok := args["cc"].(string); ok {
		ccStr = ccVal
	}

	bccStr := ""
	if bccVal, ok := args["bcc"].(string); ok {
		bccStr = bccVal
	}

	isHTML := false
	if isHTMLVal, ok := args["isHTML"].(bool); ok {
		isHTML = isHTMLVal
	}

	to := splitEmailAddresses(toStr)
	cc := splitEmailAddresses(ccStr)
	bcc := splitEmailAddresses(bccStr)

	client, err := getGmailClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	msg := &gmail.EmailMessage{
		To:      to,
		Cc:      cc,
		Bcc:     bcc,
		Subject: subject,
		Body:    body,
		IsHTML:  isHTML,
	}

	messageID, err := client.SendEmail(ctx, msg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to send email: %v", err)), nil
	}

	result := fmt.Sprintf("Email sent successfully!\nMessage ID: %s\nTo: %s\nSubject: %s",
		messageID, strings.Join(to, ", "), subject)

	if len(cc) > 0 {
		result += fmt.Sprintf("\nCC: %s", strings.Join(cc, ", "))
	}
	if len(bcc) > 0 {
		result += fmt.Sprintf("\nBCC: %s", strings.Join(bcc, ", "))
	}

	return mcp.NewToolResultText(result), nil
}

// formatMessageList renders a numbered summary of messages
func formatMessageList(messages []*gmail.Message) string {
	if len(messages) == 0 {
		return "No emails found."
	}

	result := fmt.Sprintf("Found %d email(s):\n\n", len(messages))
	for i, msg := range messages {
		result += fmt.Sprintf("%d. %s\n", i+1, msg.Subject)
		result += fmt.Sprintf("   ID: %s\n", msg.ID)
		result += fmt.Sprintf("   From: %s\n", msg.From)
		if msg.Date != "" {
			result += fmt.Sprintf("   Date: %s\n", msg.Date)
		}
		if len(msg.LabelIDs) > 0 {
			result += fmt.Sprintf("   Labels: %s\n", strings.Join(msg.LabelIDs, ", "))
		}
		if msg.Snippet != "" {
			result += fmt.Sprintf("   Snippet: %s\n", msg.Snippet)
		}
		result += "\n"
	}
	return result
}

// formatMessage renders a full message including its body
func formatMessage(msg *gmail.Message) string {
	result := fmt.Sprintf("Subject: %s\n", msg.Subject)
	result += fmt.Sprintf("From: %s\n", msg.From)
	if msg.To != "" {
		result += fmt.Sprintf("To: %s\n", msg.To)
	}
	if msg.Date != "" {
		result += fmt.Sprintf("Date: %s\n", msg.Date)
	}
	result += fmt.Sprintf("Message ID: %s\n", msg.ID)
	result += fmt.Sprintf("Thread ID: %s\n", msg.ThreadID)
	if len(msg.LabelIDs) > 0 {
		result += fmt.Sprintf("Labels: %s\n", strings.Join(msg.LabelIDs, ", "))
	}
	result += "\n" + msg.Body
	return result
}

// splitEmailAddresses splits a comma-separated string of email addresses
func splitEmailAddresses(addresses string) []string {
	if addresses == "" {
		return nil
	}

	parts := strings.Split(addresses, ",")
	result := make([]string, 0, len(parts))
	for _, addr := range parts {
		trimmed := strings.TrimSpace(addr)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
