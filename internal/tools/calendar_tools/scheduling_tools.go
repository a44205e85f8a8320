package calendar_tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/letterrip/letterrip/internal/calendar"
	"github.com/letterrip/letterrip/internal/server"
	"github.com/letterrip/letterrip/internal/tools/common"
)

// RegisterSchedulingTools registers scheduling and availability tools with the MCP server
func RegisterSchedulingTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// Query free/busy tool
	queryFreeBusyTool := mcp.NewTool("calendar_query_freebusy",
		mcp.WithDescription("Check availability for one or more calendars/attendees in a time range"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("timeMin",
			mcp.Required(),
			mcp.Description("Start time for the range (RFC3339 format, e.g., '2026-01-01T00:00:00Z')"),
		),
		mcp.WithString("timeMax",
			mcp.Required(),
			mcp.Description("End time for the range (RFC3339 format, e.g., '2026-01-31T23:59:59Z')"),
		),
		mcp.WithString("calendars",
			mcp.Required(),
			mcp.Description("Comma-separated list of calendar IDs or email addresses to check"),
		),
	)

	s.AddTool(queryFreeBusyTool, common.InstrumentedToolHandlerWithService(
		"calendar_query_freebusy", "calendar", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleQueryFreeBusy(ctx, request, sc)
		}))

	// Find free slots tool
	findFreeSlotsTool := mcp.NewTool("calendar_find_free_slots",
		mcp.WithDescription("Find time slots during working hours where all given calendars are free, for suggesting meeting times"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("calendars",
			mcp.Description("Comma-separated list of calendar IDs or attendee email addresses (default: 'primary')"),
		),
		mcp.WithNumber("durationMinutes",
			mcp.Required(),
			mcp.Description("Minimum slot duration in minutes"),
		),
		mcp.WithString("timeMin",
			mcp.Required(),
			mcp.Description("Start of the search range (RFC3339 format)"),
		),
		mcp.WithString("timeMax",
			mcp.Required(),
			mcp.Description("End of the search range (RFC3339 format)"),
		),
		mcp.WithNumber("startHour",
			mcp.Description("Working hours start, 0-23 (default: 9)"),
		),
		mcp.WithNumber("endHour",
			mcp.Description("Working hours end, 0-23 (default: 17)"),
		),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of slots to return (default: 10)"),
		),
	)

	s.AddTool(findFreeSlotsTool, common.InstrumentedToolHandlerWithService(
		"calendar_find_free_slots", "calendar", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleFindFreeSlots(ctx, request, sc)
		}))

	return nil
}

func handleQueryFreeBusy(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	timeMin, timeMax, errResult := parseTimeRange(args)
	if errResult != nil {
		return errResult, nil
	}

	calendarsStr, ok := args["calendars"].(string)
	if !ok || calendarsStr == "" {
		return mcp.NewToolResultError("calendars is required"), nil
	}
	calendars := splitCommaList(calendarsStr)

	client, err := getCalendarClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	freeBusyInfos, err := client.QueryFreeBusy(ctx, timeMin, timeMax, calendars)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to query free/busy: %v", err)), nil
	}

	result := fmt.Sprintf("Free/Busy information for %d calendar(s):\n\n", len(freeBusyInfos))
	for _, info := range freeBusyInfos {
		result += fmt.Sprintf("Calendar: %s\n", info.Calendar)

		if len(info.Errors) > 0 {
			result += fmt.Sprintf("  Errors: %s\n", strings.Join(info.Errors, ", "))
		}

		if len(info.Busy) == 0 {
			result += "  Status: FREE for entire range\n"
		} else {
			result += fmt.Sprintf("  Busy periods: %d\n", len(info.Busy))
			for i, busy := range info.Busy {
				result += fmt.Sprintf("  %d. %s to %s\n",
					i+1,
					busy.Start.Format("2006-01-02 15:04"),
					busy.End.Format("2006-01-02 15:04"))
			}
		}
		result += "\n"
	}

	return mcp.NewToolResultText(result), nil
}

func handleFindFreeSlots(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	calendars := []string{"primary"}
	if calendarsStr, ok := args["calendars"].(string); ok && calendarsStr != "" {
		calendars = splitCommaList(calendarsStr)
	}

	durationMinutes, ok := args["durationMinutes"].(float64)
	if !ok || durationMinutes <= 0 {
		return mcp.NewToolResultError("durationMinutes is required and must be positive"), nil
	}
	duration := time.Duration(durationMinutes) * time.Minute

	timeMin, timeMax, errResult := parseTimeRange(args)
	if errResult != nil {
		return errResult, nil
	}

	hours := calendar.DefaultWorkingHours
	if startHour, ok := args["startHour"].(float64); ok {
		hours.StartHour = int(startHour)
	}
	if endHour, ok := args["endHour"].(float64); ok {
		hours.EndHour = int(endHour)
	}

	maxResults := 10
	if maxResultsVal, ok := args["maxResults"].(float64); ok && maxResultsVal > 0 {
		maxResults = int(maxResultsVal)
	}

	client, err := getCalendarClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	slots, err := client.FindFreeSlots(ctx, calendars, timeMin, timeMax, duration, hours)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to find free slots: %v", err)), nil
	}

	if len(slots) == 0 {
		return mcp.NewToolResultText("No free slots found for the specified criteria"), nil
	}

	if len(slots) > maxResults {
		slots = slots[:maxResults]
	}

	result := fmt.Sprintf("Found %d free slot(s) of at least %d minutes:\n\n", len(slots), int(durationMinutes))
	for i, slot := range slots {
		result += fmt.Sprintf("%d. %s to %s (%d minutes free)\n",
			i+1,
			slot.Start.Format("Mon, Jan 2 15:04"),
			slot.End.Format("15:04"),
			int(slot.Duration.Minutes()))
	}

	return mcp.NewToolResultText(result), nil
}

// splitCommaList splits a comma-separated argument into trimmed entries
func splitCommaList(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
