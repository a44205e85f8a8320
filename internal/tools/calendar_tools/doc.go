// Package calendar_tools implements the Google Calendar MCP tools: calendar
// and event listing plus free-slot search for scheduling suggestions.
//
// The tools are read-only toward Calendar; they support multi-account
// authentication like the rest of the suite.
package calendar_tools
