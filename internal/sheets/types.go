package sheets

// SheetInfo describes one sheet (tab) of a spreadsheet
type SheetInfo struct {
	SheetID     int64  `json:"sheet_id"`
	Title       string `json:"title"`
	RowCount    int64  `json:"row_count"`
	ColumnCount int64  `json:"column_count"`
}

// SpreadsheetInfo describes a spreadsheet and its sheets
type SpreadsheetInfo struct {
	SpreadsheetID string      `json:"spreadsheet_id"`
	Title         string      `json:"title"`
	Locale        string      `json:"locale,omitempty"`
	TimeZone      string      `json:"time_zone,omitempty"`
	Sheets        []SheetInfo `json:"sheets"`
}

// Row is one sheet row keyed by column header
type Row map[string]string
