package sheets_tools

import (
	"strings"
	"testing"

	"github.com/letterrip/letterrip/internal/sheets"
)

func TestFormatRows(t *testing.T) {
	rows := []sheets.Row{
		{"Name": "Alice", "Email": "alice@example.com"},
		{"Name": "Bob", "Email": "bob@example.com"},
	}
	headers := []string{"Name", "Email"}

	result := formatRows(rows, headers)

	if !strings.Contains(result, "Found 2 row(s)") {
		t.Errorf("expected count header, got:\n%s", result)
	}
	for _, want := range []string{"Name: Alice", "Email: alice@example.com", "Name: Bob"} {
		if !strings.Contains(result, want) {
			t.Errorf("expected result to contain %q, got:\n%s", want, result)
		}
	}

	// Header order must be preserved
	nameIdx := strings.Index(result, "Name: Alice")
	emailIdx := strings.Index(result, "Email: alice@example.com")
	if nameIdx > emailIdx {
		t.Errorf("expected Name before Email, got:\n%s", result)
	}
}

func TestFormatRows_NoHeaders(t *testing.T) {
	rows := []sheets.Row{
		{"column_1": "b", "column_0": "a"},
	}

	result := formatRows(rows, nil)

	// Without headers keys are emitted sorted for stable output
	idx0 := strings.Index(result, "column_0: a")
	idx1 := strings.Index(result, "column_1: b")
	if idx0 == -1 || idx1 == -1 {
		t.Fatalf("expected both columns in output, got:\n%s", result)
	}
	if idx0 > idx1 {
		t.Errorf("expected sorted keys, got:\n%s", result)
	}
}

func TestFormatRows_Empty(t *testing.T) {
	if got := formatRows(nil, nil); got != "No rows found." {
		t.Errorf("expected empty message, got %q", got)
	}
}
