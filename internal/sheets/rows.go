package sheets

import (
	"fmt"
	"strings"
)

// RowsFromValues turns a raw value grid into header-keyed rows. Rows
// shorter than the header row are padded with empty strings; extra cells
// beyond the headers are dropped.
func RowsFromValues(values [][]interface{}, includeHeaders bool) []Row {
	if len(values) == 0 {
		return nil
	}

	var headers []string
	var dataRows [][]interface{}
	if includeHeaders {
		headers = cellStrings(values[0])
		dataRows = values[1:]
	} else {
		maxCols := 0
		for _, row := range values {
			if len(row) > maxCols {
				maxCols = len(row)
			}
		}
		headers = make([]string, maxCols)
		for i := range headers {
			headers[i] = fmt.Sprintf("column_%d", i)
		}
		dataRows = values
	}

	rows := make([]Row, 0, len(dataRows))
	for _, raw := range dataRows {
		row := make(Row, len(headers))
		for i, header := range headers {
			if i < len(raw) {
				row[header] = cellString(raw[i])
			} else {
				row[header] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// MatchRows filters rows on a column value
func MatchRows(rows []Row, column, value string, exactMatch bool) []Row {
	var matching []Row
	for _, row := range rows {
		cell := row[column]
		if exactMatch {
			if cell == value {
				matching = append(matching, row)
			}
		} else if strings.Contains(strings.ToLower(cell), strings.ToLower(value)) {
			matching = append(matching, row)
		}
	}
	return matching
}

func cellStrings(cells []interface{}) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = cellString(c)
	}
	return out
}

func cellString(cell interface{}) string {
	if cell == nil {
		return ""
	}
	if s, ok := cell.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", cell)
}
