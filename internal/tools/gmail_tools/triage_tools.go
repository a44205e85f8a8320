package gmail_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/letterrip/letterrip/internal/server"
	"github.com/letterrip/letterrip/internal/tools/batch"
	"github.com/letterrip/letterrip/internal/tools/common"
	"github.com/letterrip/letterrip/internal/triage"
)

// categoryDescriptions is what each labeling tool tells the model about the
// triage state it applies.
var categoryDescriptions = map[triage.Category]string{
	triage.CategoryFYI:         "informational, no action needed",
	triage.CategoryRespond:     "needs a reply from the user",
	triage.CategoryDraft:       "a reply should be drafted for review",
	triage.CategoryArchive:     "can be archived",
	triage.CategoryNeedsReview: "the user must look at it before it can be triaged",
}

// RegisterTriageTools registers the triage labeling tools with the MCP server
func RegisterTriageTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	// List labels tool (read-only, always available)
	listLabelsTool := mcp.NewTool("gmail_list_labels",
		mcp.WithDescription("List all Gmail labels with their IDs, including the triage labels"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
	)

	s.AddTool(listLabelsTool, common.InstrumentedToolHandlerWithService(
		"gmail_list_labels", "gmail", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListLabels(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	// One labeling tool per triage category. Categorizing replaces any other
	// triage label on the message in the same mutation.
	for _, category := range triage.Categories() {
		category := category
		toolName := "gmail_label_as_" + string(category)

		tool := mcp.NewTool(toolName,
			mcp.WithDescription(fmt.Sprintf(
				"Mark one or more emails as %q (%s). Applies the %s label and removes any other triage label in a single operation.",
				category, categoryDescriptions[category], category.LabelName())),
			mcp.WithString("account",
				mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
			),
			mcp.WithString("messageIds",
				mcp.Required(),
				mcp.Description("Message ID (string) or array of message IDs to label"),
			),
		)

		s.AddTool(tool, common.InstrumentedToolHandlerWithService(
			toolName, "gmail", "write", sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleLabelAsCategory(ctx, request, sc, category)
			}))
	}

	// Apply label tool
	applyLabelTool := mcp.NewTool("gmail_apply_label",
		mcp.WithDescription("Apply an existing Gmail label to one or more emails without touching other labels. The label must already exist; labels are never created."),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("messageIds",
			mcp.Required(),
			mcp.Description("Message ID (string) or array of message IDs to label"),
		),
		mcp.WithString("label",
			mcp.Required(),
			mcp.Description("Label name to apply (matched case-insensitively)"),
		),
	)

	s.AddTool(applyLabelTool, common.InstrumentedToolHandlerWithService(
		"gmail_apply_label", "gmail", "write", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleApplyLabel(ctx, request, sc)
		}))

	// Remove label tool
	removeLabelTool := mcp.NewTool("gmail_remove_label",
		mcp.WithDescription("Remove a Gmail label from one or more emails. Removing a label that is not attached succeeds without changing anything."),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("messageIds",
			mcp.Required(),
			mcp.Description("Message ID (string) or array of message IDs to unlabel"),
		),
		mcp.WithString("label",
			mcp.Required(),
			mcp.Description("Label name to remove (matched case-insensitively)"),
		),
	)

	s.AddTool(removeLabelTool, common.InstrumentedToolHandlerWithService(
		"gmail_remove_label", "gmail", "write", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleRemoveLabel(ctx, request, sc)
		}))

	return nil
}

func handleListLabels(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	client, err := getGmailClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	labels, err := triage.NewManager(client).ListLabels(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list labels: %v", err)), nil
	}

	return mcp.NewToolResultText(formatLabelCatalog(labels)), nil
}

func handleLabelAsCategory(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext, category triage.Category) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	messageIDs, err := batch.ParseStringOrArray(args["messageIds"], "messageIds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getGmailClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	manager := triage.NewManager(client)
	results := batch.ProcessBatch(messageIDs, func(messageID string) (string, error) {
		labels, err := manager.ApplyCategory(ctx, messageID, category)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("labeled as %s; labels now: %s", category, joinLabelNames(labels)), nil
	})

	return mcp.NewToolResultText(batch.FormatResults(results)), nil
}

func handleApplyLabel(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	messageIDs, err := batch.ParseStringOrArray(args["messageIds"], "messageIds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	labelName, ok := args["label"].(string)
	if !ok || labelName == "" {
		return mcp.NewToolResultError("label is required"), nil
	}

	client, err := getGmailClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	manager := triage.NewManager(client)
	results := batch.ProcessBatch(messageIDs, func(messageID string) (string, error) {
		labels, err := manager.ApplyLabel(ctx, messageID, labelName)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("label %q applied; labels now: %s", labelName, joinLabelNames(labels)), nil
	})

	return mcp.NewToolResultText(batch.FormatResults(results)), nil
}

func handleRemoveLabel(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	messageIDs, err := batch.ParseStringOrArray(args["messageIds"], "messageIds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	labelName, ok := args["label"].(string)
	if !ok || labelName == "" {
		return mcp.NewToolResultError("label is required"), nil
	}

	client, err := getGmailClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	manager := triage.NewManager(client)
	results := batch.ProcessBatch(messageIDs, func(messageID string) (string, error) {
		labels, err := manager.RemoveLabel(ctx, messageID, labelName)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("label %q removed; labels now: %s", labelName, joinLabelNames(labels)), nil
	})

	return mcp.NewToolResultText(batch.FormatResults(results)), nil
}

// formatLabelCatalog renders the label catalog, listing triage labels first
func formatLabelCatalog(labels []triage.Label) string {
	if len(labels) == 0 {
		return "No labels found."
	}

	triageNames := make(map[string]bool, len(triage.LabelNames()))
	for _, name := range triage.LabelNames() {
		triageNames[name] = true
	}

	var triageLabels, otherLabels []triage.Label
	for _, l := range labels {
		if triageNames[l.Name] {
			triageLabels = append(triageLabels, l)
		} else {
			otherLabels = append(otherLabels, l)
		}
	}

	result := fmt.Sprintf("Found %d label(s):\n", len(labels))
	if len(triageLabels) > 0 {
		result += "\nTriage labels:\n"
		for _, l := range triageLabels {
			result += fmt.Sprintf("  %s (ID: %s)\n", l.Name, l.ID)
		}
	}
	if len(otherLabels) > 0 {
		result += "\nOther labels:\n"
		for _, l := range otherLabels {
			result += fmt.Sprintf("  %s (ID: %s)\n", l.Name, l.ID)
		}
	}
	return result
}

func joinLabelNames(labels []triage.Label) string {
	if len(labels) == 0 {
		return "(none)"
	}
	names := make([]string, 0, len(labels))
	for _, l := range labels {
		names = append(names, l.Name)
	}
	return strings.Join(names, ", ")
}
