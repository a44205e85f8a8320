// Package sheets_tools implements the Google Sheets MCP tools: spreadsheet
// metadata, header discovery, range reads and row lookup.
//
// All tools are read-only toward Sheets. Rows are returned keyed by column
// header so the model can reference cells by name instead of coordinates.
package sheets_tools
