package sheets_tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/letterrip/letterrip/internal/server"
	"github.com/letterrip/letterrip/internal/sheets"
	"github.com/letterrip/letterrip/internal/tools/common"
)

// RegisterSpreadsheetTools registers spreadsheet metadata tools with the
// MCP server
func RegisterSpreadsheetTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// Get spreadsheet info tool
	getInfoTool := mcp.NewTool("sheets_get_spreadsheet_info",
		mcp.WithDescription("Get spreadsheet metadata: title, locale, time zone and its sheets with their dimensions"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The ID of the spreadsheet (from its URL)"),
		),
	)

	s.AddTool(getInfoTool, common.InstrumentedToolHandlerWithService(
		"sheets_get_spreadsheet_info", "sheets", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetSpreadsheetInfo(ctx, request, sc)
		}))

	// List sheets tool
	listSheetsTool := mcp.NewTool("sheets_list_sheets",
		mcp.WithDescription("List the sheet (tab) names of a spreadsheet"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The ID of the spreadsheet"),
		),
	)

	s.AddTool(listSheetsTool, common.InstrumentedToolHandlerWithService(
		"sheets_list_sheets", "sheets", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListSheets(ctx, request, sc)
		}))

	// Get headers tool
	getHeadersTool := mcp.NewTool("sheets_get_headers",
		mcp.WithDescription("Get the column headers (first row) of a sheet"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The ID of the spreadsheet"),
		),
		mcp.WithString("sheetName",
			mcp.Required(),
			mcp.Description("Name of the sheet (tab) to read headers from"),
		),
	)

	s.AddTool(getHeadersTool, common.InstrumentedToolHandlerWithService(
		"sheets_get_headers", "sheets", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetHeaders(ctx, request, sc)
		}))

	return nil
}

func handleGetSpreadsheetInfo(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	spreadsheetID, ok := args["spreadsheetId"].(string)
	if !ok || spreadsheetID == "" {
		return mcp.NewToolResultError("spreadsheetId is required"), nil
	}

	client, err := getSheetsClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	info, err := client.GetSpreadsheetInfo(ctx, spreadsheetID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get spreadsheet info: %v", err)), nil
	}

	result := fmt.Sprintf("Spreadsheet: %s\n", info.Title)
	result += fmt.Sprintf("ID: %s\n", info.SpreadsheetID)
	if info.Locale != "" {
		result += fmt.Sprintf("Locale: %s\n", info.Locale)
	}
	if info.TimeZone != "" {
		result += fmt.Sprintf("Time Zone: %s\n", info.TimeZone)
	}
	result += fmt.Sprintf("\nSheets (%d):\n", len(info.Sheets))
	for i, sheet := range info.Sheets {
		result += fmt.Sprintf("%d. %s (%d rows x %d columns)\n", i+1, sheet.Title, sheet.RowCount, sheet.ColumnCount)
	}

	return mcp.NewToolResultText(result), nil
}

func handleListSheets(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	spreadsheetID, ok := args["spreadsheetId"].(string)
	if !ok || spreadsheetID == "" {
		return mcp.NewToolResultError("spreadsheetId is required"), nil
	}

	client, err := getSheetsClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	info, err := client.GetSpreadsheetInfo(ctx, spreadsheetID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list sheets: %v", err)), nil
	}

	if len(info.Sheets) == 0 {
		return mcp.NewToolResultText("No sheets found."), nil
	}

	names := make([]string, 0, len(info.Sheets))
	for _, sheet := range info.Sheets {
		names = append(names, sheet.Title)
	}

	return mcp.NewToolResultText(fmt.Sprintf("Found %d sheet(s):\n%s", len(names), strings.Join(names, "\n"))), nil
}

func handleGetHeaders(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	spreadsheetID, ok := args["spreadsheetId"].(string)
	if !ok || spreadsheetID == "" {
		return mcp.NewToolResultError("spreadsheetId is required"), nil
	}

	sheetName, ok := args["sheetName"].(string)
	if !ok || sheetName == "" {
		return mcp.NewToolResultError("sheetName is required"), nil
	}

	client, err := getSheetsClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	headers, err := client.GetHeaders(ctx, spreadsheetID, sheetName)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get headers: %v", err)), nil
	}

	if len(headers) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("Sheet %q has no header row.", sheetName)), nil
	}

	result := fmt.Sprintf("Headers of %q (%d column(s)):\n", sheetName, len(headers))
	for i, h := range headers {
		result += fmt.Sprintf("%d. %s\n", i+1, h)
	}

	return mcp.NewToolResultText(result), nil
}

// formatRows renders header-keyed rows for tool output, preserving the
// header order when known
func formatRows(rows []sheets.Row, headers []string) string {
	if len(rows) == 0 {
		return "No rows found."
	}

	result := fmt.Sprintf("Found %d row(s):\n\n", len(rows))
	for i, row := range rows {
		result += fmt.Sprintf("Row %d:\n", i+1)
		if len(headers) > 0 {
			for _, h := range headers {
				if v, ok := row[h]; ok {
					result += fmt.Sprintf("  %s: %s\n", h, v)
				}
			}
		} else {
			keys := make([]string, 0, len(row))
			for k := range row {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				result += fmt.Sprintf("  %s: %s\n", k, row[k])
			}
		}
		result += "\n"
	}
	return result
}
