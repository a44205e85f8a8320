package forms_tools

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/letterrip/letterrip/internal/forms"
	"github.com/letterrip/letterrip/internal/server"
	"github.com/letterrip/letterrip/internal/tools/common"
)

// RegisterResponseTools registers response retrieval and aggregation tools
// with the MCP server
func RegisterResponseTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// Get responses tool
	getResponsesTool := mcp.NewTool("forms_get_responses",
		mcp.WithDescription("List submitted form responses with their raw answers"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("formId",
			mcp.Required(),
			mcp.Description("The ID of the form"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of responses to return (default: all)"),
		),
	)

	s.AddTool(getResponsesTool, common.InstrumentedToolHandlerWithService(
		"forms_get_responses", "forms", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetResponses(ctx, request, sc)
		}))

	// Get single response tool
	getResponseTool := mcp.NewTool("forms_get_response",
		mcp.WithDescription("Get a single form response by its ID"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("formId",
			mcp.Required(),
			mcp.Description("The ID of the form"),
		),
		mcp.WithString("responseId",
			mcp.Required(),
			mcp.Description("The ID of the response"),
		),
	)

	s.AddTool(getResponseTool, common.InstrumentedToolHandlerWithService(
		"forms_get_response", "forms", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetResponse(ctx, request, sc)
		}))

	// Get responses table tool
	getResponsesTableTool := mcp.NewTool("forms_get_responses_table",
		mcp.WithDescription("Get form responses pivoted into rows keyed by question title, one row per response"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("formId",
			mcp.Required(),
			mcp.Description("The ID of the form"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of responses to include (default: all)"),
		),
	)

	s.AddTool(getResponsesTableTool, common.InstrumentedToolHandlerWithService(
		"forms_get_responses_table", "forms", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetResponsesTable(ctx, request, sc)
		}))

	// Get response summary tool
	getSummaryTool := mcp.NewTool("forms_get_response_summary",
		mcp.WithDescription("Summarize form responses: counts, submission time range and per-question statistics with answer distributions for choice questions"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("formId",
			mcp.Required(),
			mcp.Description("The ID of the form"),
		),
	)

	s.AddTool(getSummaryTool, common.InstrumentedToolHandlerWithService(
		"forms_get_response_summary", "forms", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetResponseSummary(ctx, request, sc)
		}))

	return nil
}

// formIDAndLimit extracts the common formId/limit arguments
func formIDAndLimit(args map[string]interface{}) (string, int, *mcp.CallToolResult) {
	formID, ok := args["formId"].(string)
	if !ok || formID == "" {
		return "", 0, mcp.NewToolResultError("formId is required")
	}

	limit := 0
	if limitVal, ok := args["limit"].(float64); ok && limitVal > 0 {
		limit = int(limitVal)
	}
	return formID, limit, nil
}

func handleGetResponses(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	formID, limit, errResult := formIDAndLimit(args)
	if errResult != nil {
		return errResult, nil
	}

	client, err := getFormsClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responses, err := client.ListResponses(ctx, formID, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get responses: %v", err)), nil
	}

	if len(responses) == 0 {
		return mcp.NewToolResultText("No responses found."), nil
	}

	result := fmt.Sprintf("Found %d response(s):\n\n", len(responses))
	for i, r := range responses {
		result += fmt.Sprintf("%d. %s", i+1, formatResponse(&r))
		result += "\n"
	}

	return mcp.NewToolResultText(result), nil
}

func handleGetResponse(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	formID, ok := args["formId"].(string)
	if !ok || formID == "" {
		return mcp.NewToolResultError("formId is required"), nil
	}

	responseID, ok := args["responseId"].(string)
	if !ok || responseID == "" {
		return mcp.NewToolResultError("responseId is required"), nil
	}

	client, err := getFormsClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response, err := client.GetResponse(ctx, formID, responseID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get response: %v", err)), nil
	}

	return mcp.NewToolResultText(formatResponse(response)), nil
}

func handleGetResponsesTable(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	formID, limit, errResult := formIDAndLimit(args)
	if errResult != nil {
		return errResult, nil
	}

	client, err := getFormsClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rows, err := client.GetResponsesTable(ctx, formID, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get responses table: %v", err)), nil
	}

	if len(rows) == 0 {
		return mcp.NewToolResultText("No responses found."), nil
	}

	result := fmt.Sprintf("Found %d response row(s):\n\n", len(rows))
	for i, row := range rows {
		result += fmt.Sprintf("Row %d:\n", i+1)
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			result += fmt.Sprintf("  %s: %s\n", k, row[k])
		}
		result += "\n"
	}

	return mcp.NewToolResultText(result), nil
}

func handleGetResponseSummary(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
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

	summary, err := client.GetResponseSummary(ctx, formID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get response summary: %v", err)), nil
	}

	return mcp.NewToolResultText(formatSummary(summary)), nil
}

// formatResponse renders one response with its answers
func formatResponse(r *forms.Response) string {
	result := fmt.Sprintf("Response ID: %s\n", r.ResponseID)
	if !r.LastSubmittedTime.IsZero() {
		result += fmt.Sprintf("Submitted: %s\n", r.LastSubmittedTime.Format(time.RFC3339))
	}
	if r.RespondentEmail != "" {
		result += fmt.Sprintf("Respondent: %s\n", r.RespondentEmail)
	}

	if len(r.Answers) == 0 {
		result += "No answers.\n"
		return result
	}

	questionIDs := make([]string, 0, len(r.Answers))
	for id := range r.Answers {
		questionIDs = append(questionIDs, id)
	}
	sort.Strings(questionIDs)

	result += "Answers:\n"
	for _, id := range questionIDs {
		a := r.Answers[id]
		values := append([]string{}, a.TextAnswers...)
		values = append(values, a.FileAnswers...)
		result += fmt.Sprintf("  %s: %s\n", id, strings.Join(values, "; "))
	}
	return result
}

// formatSummary renders the aggregated response statistics
func formatSummary(s *forms.Summary) string {
	result := fmt.Sprintf("Form: %s\n", s.FormID)
	result += fmt.Sprintf("Total responses: %d\n", s.TotalResponses)
	if s.TotalResponses == 0 {
		return result
	}

	result += fmt.Sprintf("First response: %s\n", s.FirstResponse.Format(time.RFC3339))
	result += fmt.Sprintf("Last response: %s\n", s.LastResponse.Format(time.RFC3339))

	titles := make([]string, 0, len(s.QuestionStats))
	for title := range s.QuestionStats {
		titles = append(titles, title)
	}
	sort.Strings(titles)

	result += "\nPer-question statistics:\n"
	for _, title := range titles {
		stats := s.QuestionStats[title]
		result += fmt.Sprintf("  %s [%s]: %d answer(s)\n", title, stats.Type, stats.TotalAnswers)
		if len(stats.Distribution) > 0 {
			values := make([]string, 0, len(stats.Distribution))
			for v := range stats.Distribution {
				values = append(values, v)
			}
			sort.Strings(values)
			for _, v := range values {
				result += fmt.Sprintf("    %s: %d\n", v, stats.Distribution[v])
			}
		}
	}
	return result
}
