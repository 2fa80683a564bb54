package io

import (
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/paveg/scrub/internal/table"
)

const utf8BOM = "\uFEFF"

// Read reads CSV data and returns a table. Empty fields become nulls.
func (r *CSVReader) Read() (*table.Table, error) {
	csvReader := csv.NewReader(r.reader)
	csvReader.Comma = r.options.Delimiter
	csvReader.Comment = r.options.Comment
	csvReader.TrimLeadingSpace = r.options.SkipInitialSpace
	csvReader.LazyQuotes = r.options.LazyQuotes
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}

	if len(records) == 0 {
		return table.New()
	}

	var headers []string
	var dataRows [][]string

	if r.options.Header {
		headers = stripHeaderBOM(records[0])
		dataRows = records[1:]
	} else {
		numCols := len(records[0])
		headers = make([]string, numCols)
		for i := range numCols {
			headers[i] = fmt.Sprintf("column_%d", i)
		}
		dataRows = records
	}

	t, err := table.FromRows(headers, dataRows)
	if err != nil {
		return nil, fmt.Errorf("building table: %w", err)
	}
	return t, nil
}

// Write writes the table to CSV format. Null cells are written as empty fields.
func (w *CSVWriter) Write(t *table.Table) error {
	csvWriter := csv.NewWriter(w.writer)
	csvWriter.Comma = w.options.Delimiter

	if w.options.Header {
		if err := csvWriter.Write(t.Columns()); err != nil {
			return fmt.Errorf("writing headers: %w", err)
		}
	}

	for i := range t.Len() {
		if err := csvWriter.Write(t.Row(i)); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("flushing CSV: %w", err)
	}
	return nil
}

func stripHeaderBOM(headers []string) []string {
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], utf8BOM)
	}
	return headers
}
