package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTable_ColumnWidths(t *testing.T) {
	table := &Table{
		Headers: []string{"ID", "Name", "Value"},
		Rows: [][]string{
			{"abc123", "Dishes", "$600.00"},
			{"def456", "Vacuum the whole house", "$2,400.00"},
		},
	}

	widths := table.ColumnWidths()

	assert.Equal(t, 6, widths[0])
	assert.Equal(t, 22, widths[1])
	assert.Equal(t, 9, widths[2])
}

func TestTable_ColumnWidths_MaxWidth(t *testing.T) {
	table := &Table{
		Headers:  []string{"ID", "Name"},
		Rows:     [][]string{{"a", "This is a very long chore name that should be truncated"}},
		MaxWidth: 20,
	}

	widths := table.ColumnWidths()

	assert.Equal(t, 2, widths[0])
	assert.Equal(t, 20, widths[1])
}

func TestTable_ColumnWidths_CountsCells(t *testing.T) {
	table := &Table{
		Headers: []string{"Name"},
		Rows:    [][]string{{"Café"}, {"📷"}},
	}

	// "Café" is 4 cells even though it is 5 bytes.
	assert.Equal(t, 4, table.ColumnWidths()[0])
}

func TestTable_Render(t *testing.T) {
	table := &Table{
		Headers: []string{"Name", "Value"},
		Rows: [][]string{
			{"Dishes", "$600.00"},
			{"Trash", "$50.00"},
		},
		Align: []Align{AlignLeft, AlignRight},
	}

	output := table.Render()

	assert.Contains(t, output, "Name")
	assert.Contains(t, output, "Dishes")
	assert.Contains(t, output, "Trash")
	assert.Contains(t, output, "─")
	assert.Contains(t, output, " $50.00", "right aligned values are left padded")
}

func TestTable_Render_Empty(t *testing.T) {
	table := &Table{}
	assert.Empty(t, table.Render())
}

func TestTable_Render_Truncation(t *testing.T) {
	table := &Table{
		Headers:  []string{"Text"},
		Rows:     [][]string{{"This is way too long"}},
		MaxWidth: 10,
	}

	assert.Contains(t, table.Render(), "…")
}

func TestFit(t *testing.T) {
	assert.Equal(t, "short", fit("short", 10))
	assert.Equal(t, "hello…", fit("hello world", 6))
	assert.Equal(t, "…", fit("hello", 1))
}

func TestPad(t *testing.T) {
	tests := []struct {
		input    string
		width    int
		align    Align
		expected string
	}{
		{"abc", 5, AlignLeft, "abc  "},
		{"abc", 5, AlignRight, "  abc"},
		{"hello", 5, AlignLeft, "hello"},
		{"longer", 3, AlignLeft, "longer"},
		{"", 3, AlignLeft, "   "},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.expected, pad(tc.input, tc.width, tc.align))
	}
}

func TestTable_Render_RowsHaveFewerColumns(t *testing.T) {
	table := &Table{
		Headers: []string{"ID", "Name", "Status"},
		Rows: [][]string{
			{"1", "Alice"}, // Missing Status column
		},
	}

	output := table.Render()

	assert.Contains(t, output, "ID")
	assert.Contains(t, output, "Alice")
	lines := strings.Split(strings.TrimSpace(output), "\n")
	assert.Equal(t, 3, len(lines))
}
