// Package sheets provides read-only Google Sheets API integration.
//
// The client exposes spreadsheet metadata, header rows, and row-oriented
// reads: sheet values are returned as maps keyed by the header row (or
// generated column names), so callers work with records instead of raw
// cell grids.
package sheets
