package slides

import (
	"strings"

	slides "google.golang.org/api/slides/v1"
)

// ShapeText extracts the plain text of a shape
func ShapeText(shape *slides.Shape) string {
	if shape == nil {
		return ""
	}
	return textContent(shape.Text)
}

// TableText extracts the text of a table, cells joined with " | " and rows
// with newlines
func TableText(table *slides.Table) string {
	if table == nil {
		return ""
	}

	var rows []string
	for _, row := range table.TableRows {
		var cells []string
		for _, cell := range row.TableCells {
			cells = append(cells, strings.TrimSpace(textContent(cell.Text)))
		}
		rows = append(rows, strings.Join(cells, " | "))
	}
	return strings.TrimSpace(strings.Join(rows, "\n"))
}

func textContent(text *slides.TextContent) string {
	if text == nil {
		return ""
	}

	var b strings.Builder
	for _, el := range text.TextElements {
		if el.TextRun != nil {
			b.WriteString(el.TextRun.Content)
		}
	}
	return strings.TrimSpace(b.String())
}

func joinElementText(elements []Element) string {
	var parts []string
	for _, el := range elements {
		if el.Text != "" {
			parts = append(parts, el.Text)
		}
	}
	return strings.Join(parts, "\n")
}
