package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Sentinel parse errors
var (
	ErrEmptyFile     = fmt.Errorf("file is empty")
	ErrMissingHeader = fmt.Errorf("file has no header row")
	ErrNoDataRows    = fmt.Errorf("file contains no data rows")
)

// Row is one data row of the tabular file. Line is 1-based and counts data
// rows only; the header row is excluded so diagnostics match what users see
// after removing the header in their spreadsheet tool.
type Row struct {
	Line   int
	Values map[string]string
	Fields []string
}

// Get returns the raw value for a header token, or "" if absent
func (r *Row) Get(header string) string {
	return r.Values[header]
}

// IsEmpty returns true if the row has no non-empty values
func (r *Row) IsEmpty() bool {
	for _, v := range r.Values {
		if v != "" {
			return false
		}
	}
	return true
}

// Table is a fully parsed tabular file: header tokens plus data rows.
// MalformedLines lists data line numbers the CSV reader could not parse;
// those rows are dropped rather than aborting the file.
type Table struct {
	Headers        []string
	Rows           []*Row
	MalformedLines []int
}

// HasHeader checks whether a header token is present
func (t *Table) HasHeader(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// ParseTable parses decoded CSV text into a header row and data rows.
// Fields may be quoted and contain the delimiter; rows with fewer fields
// than headers are padded with empty strings; fully empty rows are skipped.
func ParseTable(text string) (*Table, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyFile
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	table := &Table{Headers: make([]string, len(header))}
	for i, h := range header {
		table.Headers[i] = strings.TrimSpace(h)
	}

	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// a malformed row is recoverable; record its line number so
			// the caller can report a row-level error
			line++
			table.MalformedLines = append(table.MalformedLines, line)
			continue
		}

		line++
		row := &Row{
			Line:   line,
			Values: make(map[string]string, len(table.Headers)),
			Fields: record,
		}
		for i, h := range table.Headers {
			if i < len(record) {
				row.Values[h] = strings.TrimSpace(record[i])
			} else {
				row.Values[h] = ""
			}
		}
		if row.IsEmpty() {
			line--
			continue
		}
		table.Rows = append(table.Rows, row)
	}

	if len(table.Rows) == 0 {
		return table, ErrNoDataRows
	}
	return table, nil
}
