package listing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	type row struct {
		Name  string
		Price string
	}
	columns := []Column[row]{
		{Header: "Name", Value: func(r row) string { return r.Name }},
		{Header: "Price", Value: func(r row) string { return r.Price }},
	}
	rows := []row{
		{Name: "Gold Ring", Price: "120.00"},
		{Name: "Silver, Necklace", Price: "45.50"},
	}

	var buf strings.Builder
	require.NoError(t, WriteCSV(&buf, columns, rows))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "Name,Price", lines[0])
	require.Equal(t, "Gold Ring,120.00", lines[1])
	require.Equal(t, `"Silver, Necklace",45.50`, lines[2])
}

func TestWriteCSVEmptyRows(t *testing.T) {
	columns := []Column[string]{{Header: "Value", Value: func(s string) string { return s }}}

	var buf strings.Builder
	require.NoError(t, WriteCSV(&buf, columns, nil))
	require.Equal(t, "Value", strings.TrimSpace(buf.String()))
}
