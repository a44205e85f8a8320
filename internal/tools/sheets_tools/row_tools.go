package sheets_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/letterrip/letterrip/internal/server"
	"github.com/letterrip/letterrip/internal/tools/common"
)

// RegisterRowTools registers sheet reading and row lookup tools with the
// MCP server
func RegisterRowTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// Read sheet tool
	readSheetTool := mcp.NewTool("sheets_read_sheet",
		mcp.WithDescription("Read rows from a sheet, keyed by column header. Reads the whole sheet unless a range is given."),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The ID of the spreadsheet"),
		),
		mcp.WithString("sheetName",
			mcp.Required(),
			mcp.Description("Name of the sheet (tab) to read"),
		),
		mcp.WithString("range",
			mcp.Description("Optional A1 range within the sheet (e.g., 'A1:D20')"),
		),
		mcp.WithBoolean("includeHeaders",
			mcp.Description("Treat the first row as headers (default: true)"),
		),
	)

	s.AddTool(readSheetTool, common.InstrumentedToolHandlerWithService(
		"sheets_read_sheet", "sheets", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleReadSheet(ctx, request, sc)
		}))

	// Find rows tool
	findRowsTool := mcp.NewTool("sheets_find_rows",
		mcp.WithDescription("Find rows where a column matches a value. Exact match compares equality; otherwise a case-insensitive substring match is used."),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("spreadsheetId",
			mcp.Required(),
			mcp.Description("The ID of the spreadsheet"),
		),
		mcp.WithString("sheetName",
			mcp.Required(),
			mcp.Description("Name of the sheet (tab) to search"),
		),
		mcp.WithString("column",
			mcp.Required(),
			mcp.Description("Column header to match against"),
		),
		mcp.WithString("value",
			mcp.Required(),
			mcp.Description("Value to search for"),
		),
		mcp.WithBoolean("exactMatch",
			mcp.Description("Require exact equality instead of substring match (default: false)"),
		),
	)

	s.AddTool(findRowsTool, common.InstrumentedToolHandlerWithService(
		"sheets_find_rows", "sheets", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleFindRows(ctx, request, sc)
		}))

	return nil
}

func handleReadSheet(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
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

	rangeNotation := ""
	if rangeVal, ok := args["range"].(string); ok {
		rangeNotation = rangeVal
	}

	includeHeaders := true
	if includeHeadersVal, ok := args["includeHeaders"].(bool); ok {
		includeHeaders = includeHeadersVal
	}

	client, err := getSheetsClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rows, err := client.ReadSheet(ctx, spreadsheetID, sheetName, rangeNotation, includeHeaders)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to read sheet: %v", err)), nil
	}

	var headers []string
	if includeHeaders {
		headers, _ = client.GetHeaders(ctx, spreadsheetID, sheetName)
	}

	return mcp.NewToolResultText(formatRows(rows, headers)), nil
}

func handleFindRows(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
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

	column, ok := args["column"].(string)
	if !ok || column == "" {
		return mcp.NewToolResultError("column is required"), nil
	}

	value, ok := args["value"].(string)
	if !ok || value == "" {
		return mcp.NewToolResultError("value is required"), nil
	}

	exactMatch := false
	if exactMatchVal, ok := args["exactMatch"].(bool); ok {
		exactMatch = exactMatchVal
	}

	client, err := getSheetsClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rows, err := client.FindRows(ctx, spreadsheetID, sheetName, column, value, exactMatch)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to find rows: %v", err)), nil
	}

	if len(rows) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No rows found where %q matches %q.", column, value)), nil
	}

	headers, _ := client.GetHeaders(ctx, spreadsheetID, sheetName)
	return mcp.NewToolResultText(formatRows(rows, headers)), nil
}
