package forms_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/letterrip/letterrip/internal/forms"
	"github.com/letterrip/letterrip/internal/server"
	"github.com/letterrip/letterrip/internal/tools/common"
)

// RegisterFormTools registers form and question inspection tools with the
// MCP server
func RegisterFormTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// Get form tool
	getFormTool := mcp.NewTool("forms_get_form",
		mcp.WithDescription("Get form metadata: title, description, responder URL and its questions"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("formId",
			mcp.Required(),
			mcp.Description("The ID of the form (from its URL)"),
		),
	)

	s.AddTool(getFormTool, common.InstrumentedToolHandlerWithService(
		"forms_get_form", "forms", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetForm(ctx, request, sc)
		}))

	// List questions tool
	listQuestionsTool := mcp.NewTool("forms_list_questions",
		mcp.WithDescription("List the questions of a form with type, options and whether they are required"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("formId",
			mcp.Required(),
			mcp.Description("The ID of the form"),
		),
	)

	s.AddTool(listQuestionsTool, common.InstrumentedToolHandlerWithService(
		"forms_list_questions", "forms", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListQuestions(ctx, request, sc)
		}))

	return nil
}

func handleGetForm(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	formID, ok := args["formId"].(string)
	if !ok || formID == "" {
		return mcp.NewToolResultError("formId is required"), nil
	}

	client, err := getFormsClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	form, err := client.GetForm(ctx, formID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get form: %v", err)), nil
	}

	result := fmt.Sprintf("Form: %s\n", form.Title)
	result += fmt.Sprintf("ID: %s\n", form.FormID)
	if form.DocumentTitle != "" && form.DocumentTitle != form.Title {
		result += fmt.Sprintf("Document Title: %s\n", form.DocumentTitle)
	}
	if form.Description != "" {
		result += fmt.Sprintf("Description: %s\n", form.Description)
	}
	if form.ResponderURI != "" {
		result += fmt.Sprintf("Responder URL: %s\n", form.ResponderURI)
	}
	result += fmt.Sprintf("Questions: %d\n", len(form.Questions))

	return mcp.NewToolResultText(result), nil
}

func handleListQuestions(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	formID, ok := args["formId"].(string)
	if !ok || formID == "" {
		return mcp.NewToolResultError("formId is required"), nil
	}

	client, err := getFormsClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	form, err := client.GetForm(ctx, formID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list questions: %v", err)), nil
	}

	return mcp.NewToolResultText(formatQuestions(form.Questions)), nil
}

// formatQuestions renders the question list with type and option details
func formatQuestions(questions []forms.Question) string {
	if len(questions) == 0 {
		return "Form has no questions."
	}

	result := fmt.Sprintf("Found %d question(s):\n\n", len(questions))
	for i, q := range questions {
		result += fmt.Sprintf("%d. %s\n", i+1, q.Title)
		result += fmt.Sprintf("   ID: %s\n", q.QuestionID)
		result += fmt.Sprintf("   Type: %s\n", q.Type)
		if q.Required {
			result += "   Required: yes\n"
		}
		if q.Description != "" {
			result += fmt.Sprintf("   Description: %s\n", q.Description)
		}
		if len(q.Options) > 0 {
			result += fmt.Sprintf("   Options: %s\n", strings.Join(q.Options, ", "))
		}
		result += "\n"
	}
	return result
}
