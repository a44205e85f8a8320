package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowsFromValues(t *testing.T) {
	tests := []struct {
		name           string
		values         [][]interface{}
		includeHeaders bool
		want           []Row
	}{
		{
			name:   "empty grid",
			values: nil,
			want:   nil,
		},
		{
			name: "headers only no data",
			values: [][]interface{}{
				{"name", "email"},
			},
			includeHeaders: true,
			want:           []Row{},
		},
		{
			name: "headers with rows",
			values: [][]interface{}{
				{"name", "email"},
				{"Alice", "alice@example.com"},
				{"Bob", "bob@example.com"},
			},
			includeHeaders: true,
			want: []Row{
				{"name": "Alice", "email": "alice@example.com"},
				{"name": "Bob", "email": "bob@example.com"},
			},
		},
		{
			name: "short row padded",
			values: [][]interface{}{
				{"name", "email", "city"},
				{"Alice", "alice@example.com"},
			},
			includeHeaders: true,
			want: []Row{
				{"name": "Alice", "email": "alice@example.com", "city": ""},
			},
		},
		{
			name: "generated column names",
			values: [][]interface{}{
				{"a", "b"},
				{"c", "d", "e"},
			},
			includeHeaders: false,
			want: []Row{
				{"column_0": "a", "column_1": "b", "column_2": ""},
				{"column_0": "c", "column_1": "d", "column_2": "e"},
			},
		},
		{
			name: "numeric cells stringified",
			values: [][]interface{}{
				{"id", "count"},
				{"x", 42},
			},
			includeHeaders: true,
			want: []Row{
				{"id": "x", "count": "42"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RowsFromValues(tt.values, tt.includeHeaders)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.Equal(t, tt.want[i], got[i])
			}
		})
	}
}

func TestMatchRows(t *testing.T) {
	rows := []Row{
		{"name": "Alice Smith", "dept": "Engineering"},
		{"name": "Bob Jones", "dept": "Sales"},
		{"name": "carol smith", "dept": "Engineering"},
	}

	tests := []struct {
		name       string
		column     string
		value      string
		exactMatch bool
		wantNames  []string
	}{
		{
			name:       "exact match",
			column:     "dept",
			value:      "Sales",
			exactMatch: true,
			wantNames:  []string{"Bob Jones"},
		},
		{
			name:       "exact is case sensitive",
			column:     "name",
			value:      "alice smith",
			exactMatch: true,
			wantNames:  nil,
		},
		{
			name:      "contains is case insensitive",
			column:    "name",
			value:     "SMITH",
			wantNames: []string{"Alice Smith", "carol smith"},
		},
		{
			name:       "missing column matches nothing",
			column:     "salary",
			value:      "x",
			exactMatch: true,
			wantNames:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchRows(rows, tt.column, tt.value, tt.exactMatch)
			var names []string
			for _, r := range got {
				names = append(names, r["name"])
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}
