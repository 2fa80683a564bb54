// Package io provides readers and writers that move tables between files and memory.
//
// Key components:
//   - DataReader/DataWriter interfaces for pluggable formats
//   - CSVReader/CSVWriter for delimited text, with transparent gzip, zstd and lz4 handling
//   - ParquetReader/ParquetWriter backed by Apache Arrow
//   - ReadFile/WriteFile helpers that pick a format from the path and apply the
//     output-directory fallback
package io

import (
	"io"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/scrub/internal/table"
)

const (
	// DefaultBatchSize is the default batch size for Parquet I/O operations
	DefaultBatchSize = 1000
)

// DataReader defines the interface for reading tables from various sources
type DataReader interface {
	// Read reads data from the source and returns a table
	Read() (*table.Table, error)
}

// DataWriter defines the interface for writing tables to various destinations
type DataWriter interface {
	// Write writes the table to the destination
	Write(t *table.Table) error
}

// CSVOptions contains configuration options for CSV operations
type CSVOptions struct {
	// Delimiter is the field delimiter (default: comma)
	Delimiter rune
	// Comment is the comment character (default: 0 = disabled)
	Comment rune
	// Header indicates whether the first row contains headers
	Header bool
	// SkipInitialSpace indicates whether to skip initial whitespace
	SkipInitialSpace bool
	// LazyQuotes tolerates stray quotes inside unquoted fields
	LazyQuotes bool
}

// DefaultCSVOptions returns default CSV options
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{
		Delimiter:        ',',
		Comment:          0,
		Header:           true,
		SkipInitialSpace: false,
		LazyQuotes:       true,
	}
}

// CSVReader reads delimited data into tables
type CSVReader struct {
	reader  io.Reader
	options CSVOptions
}

// NewCSVReader creates a new CSV reader with the specified options
func NewCSVReader(reader io.Reader, options CSVOptions) *CSVReader {
	return &CSVReader{
		reader:  reader,
		options: options,
	}
}

// CSVWriter writes tables to CSV format
type CSVWriter struct {
	writer  io.Writer
	options CSVOptions
}

// NewCSVWriter creates a new CSV writer with the specified options
func NewCSVWriter(writer io.Writer, options CSVOptions) *CSVWriter {
	return &CSVWriter{
		writer:  writer,
		options: options,
	}
}

// ColumnType is the physical type a text column is stored as in Parquet.
type ColumnType int

const (
	// StringType stores cells as UTF-8 strings
	StringType ColumnType = iota
	// Int64Type parses cells as integers; unparseable cells become nulls
	Int64Type
	// Float64Type parses cells as floats; unparseable cells become nulls
	Float64Type
	// BoolType parses cells as booleans; unparseable cells become nulls
	BoolType
)

// ParquetOptions contains configuration options for Parquet operations
type ParquetOptions struct {
	// Compression type for Parquet files
	Compression string
	// BatchSize for reading/writing operations
	BatchSize int
	// ColumnTypes overrides the stored type per column; others are strings
	ColumnTypes map[string]ColumnType
}

// DefaultParquetOptions returns default Parquet options
func DefaultParquetOptions() ParquetOptions {
	return ParquetOptions{
		Compression: "snappy",
		BatchSize:   DefaultBatchSize,
	}
}

// ParquetReader reads Parquet data and converts it to tables
type ParquetReader struct {
	reader  io.Reader
	options ParquetOptions
	mem     memory.Allocator
}

// NewParquetReader creates a new Parquet reader with the specified options
func NewParquetReader(reader io.Reader, options ParquetOptions, mem memory.Allocator) *ParquetReader {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	return &ParquetReader{
		reader:  reader,
		options: options,
		mem:     mem,
	}
}

// ParquetWriter writes tables to Parquet format
type ParquetWriter struct {
	writer  io.Writer
	options ParquetOptions
	mem     memory.Allocator
}

// NewParquetWriter creates a new Parquet writer with the specified options
func NewParquetWriter(writer io.Writer, options ParquetOptions) *ParquetWriter {
	return &ParquetWriter{
		writer:  writer,
		options: options,
		mem:     memory.NewGoAllocator(),
	}
}
