package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ReadCSV parses a comma separated table whose first row is the header and whose
// first column is the row index. The first header cell names the index.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("csv is empty")
		}
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	if len(header) == 0 {
		return nil, errors.New("csv header has no columns")
	}

	t := New(strings.TrimPrefix(header[0], "\ufeff"), header[1:])
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row %d: %w", t.Len()+1, err)
		}
		if err := t.AppendRow(record[0], record[1:]); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// WriteCSV writes the table including its index as the first column.
func (t *Table) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)

	header := make([]string, 0, len(t.columns)+1)
	header = append(header, t.IndexName)
	header = append(header, t.columns...)
	if err := writer.Write(header); err != nil {
		return err
	}

	record := make([]string, len(t.columns)+1)
	for i, row := range t.cells {
		record[0] = t.index[i]
		copy(record[1:], row)
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
