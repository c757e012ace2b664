package listing

import (
	"encoding/csv"
	"io"
)

// Column describes one CSV column for an export.
type Column[T any] struct {
	Header string
	Value  func(T) string
}

// WriteCSV serialises the rows of the currently loaded page. Export is
// deliberately scoped to the loaded page only; widening it to the full
// result set needs product sign-off first.
func WriteCSV[T any](w io.Writer, columns []Column[T], rows []T) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = col.Header
	}
	if err := writer.Write(headers); err != nil {
		return err
	}

	record := make([]string, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			record[i] = col.Value(row)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
