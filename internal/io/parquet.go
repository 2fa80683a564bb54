package io

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/paveg/scrub/internal/table"
)

// Read reads Parquet data and returns a table with every cell rendered as text.
func (r *ParquetReader) Read() (*table.Table, error) {
	data, err := io.ReadAll(r.reader)
	if err != nil {
		return nil, fmt.Errorf("reading data: %w", err)
	}

	pqReader, err := file.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating parquet file reader: %w", err)
	}
	defer pqReader.Close()

	arrowReader, err := pqarrow.NewFileReader(pqReader, pqarrow.ArrowReadProperties{}, r.mem)
	if err != nil {
		return nil, fmt.Errorf("creating arrow file reader: %w", err)
	}

	tbl, err := arrowReader.ReadTable(context.Background())
	if err != nil {
		return nil, fmt.Errorf("reading table: %w", err)
	}
	defer tbl.Release()

	return arrowTableToTable(tbl)
}

// Write writes the table to Parquet format.
func (w *ParquetWriter) Write(t *table.Table) error {
	tbl, err := w.tableToArrowTable(t)
	if err != nil {
		return fmt.Errorf("converting table to Arrow: %w", err)
	}
	defer tbl.Release()

	props := parquet.NewWriterProperties(
		parquet.WithCompression(compressionCodec(w.options.Compression)),
		parquet.WithBatchSize(int64(w.options.BatchSize)),
	)
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithAllocator(w.mem))

	writer, err := pqarrow.NewFileWriter(tbl.Schema(), w.writer, props, arrowProps)
	if err != nil {
		return fmt.Errorf("creating file writer: %w", err)
	}

	chunk := int64(w.options.BatchSize)
	if chunk <= 0 {
		chunk = DefaultBatchSize
	}
	if err := writer.WriteTable(tbl, chunk); err != nil {
		_ = writer.Close()
		return fmt.Errorf("writing table: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing parquet writer: %w", err)
	}
	return nil
}

func compressionCodec(name string) compress.Compression {
	switch name {
	case "gzip":
		return compress.Codecs.Gzip
	case "lz4":
		return compress.Codecs.Lz4Raw
	case "zstd":
		return compress.Codecs.Zstd
	case "uncompressed":
		return compress.Codecs.Uncompressed
	default:
		return compress.Codecs.Snappy
	}
}

// tableToArrowTable converts a table to an Arrow table using the configured column types.
func (w *ParquetWriter) tableToArrowTable(t *table.Table) (arrow.Table, error) {
	fields := make([]arrow.Field, 0, t.Width())
	columns := make([]arrow.Column, 0, t.Width())

	for _, name := range t.Columns() {
		col, _ := t.Column(name)
		arr := w.columnToArrowArray(col, w.options.ColumnTypes[name])

		field := arrow.Field{Name: name, Type: arr.DataType(), Nullable: true}
		fields = append(fields, field)

		chunked := arrow.NewChunked(arr.DataType(), []arrow.Array{arr})
		arr.Release()
		column := arrow.NewColumn(field, chunked)
		chunked.Release()
		columns = append(columns, *column)
	}

	schema := arrow.NewSchema(fields, nil)
	return array.NewTable(schema, columns, int64(t.Len())), nil
}

// columnToArrowArray converts a text column to an Arrow array of the requested type.
func (w *ParquetWriter) columnToArrowArray(col *table.Column, typ ColumnType) arrow.Array {
	switch typ {
	case Int64Type:
		b := array.NewInt64Builder(w.mem)
		defer b.Release()
		for i := range col.Len() {
			v, err := strconv.ParseInt(col.Value(i), 10, 64)
			if col.IsNull(i) || err != nil {
				b.AppendNull()
				continue
			}
			b.Append(v)
		}
		return b.NewArray()
	case Float64Type:
		b := array.NewFloat64Builder(w.mem)
		defer b.Release()
		for i := range col.Len() {
			v, err := strconv.ParseFloat(col.Value(i), 64)
			if col.IsNull(i) || err != nil {
				b.AppendNull()
				continue
			}
			b.Append(v)
		}
		return b.NewArray()
	case BoolType:
		b := array.NewBooleanBuilder(w.mem)
		defer b.Release()
		for i := range col.Len() {
			v, err := strconv.ParseBool(col.Value(i))
			if col.IsNull(i) || err != nil {
				b.AppendNull()
				continue
			}
			b.Append(v)
		}
		return b.NewArray()
	default:
		b := array.NewStringBuilder(w.mem)
		defer b.Release()
		for i := range col.Len() {
			if col.IsNull(i) {
				b.AppendNull()
				continue
			}
			b.Append(col.Value(i))
		}
		return b.NewArray()
	}
}

// arrowTableToTable converts an Arrow table to a text table.
func arrowTableToTable(tbl arrow.Table) (*table.Table, error) {
	schema := tbl.Schema()
	cols := make([]*table.Column, 0, tbl.NumCols())

	for i := range int(tbl.NumCols()) {
		field := schema.Field(i)
		values := make([]string, 0, tbl.NumRows())
		valid := make([]bool, 0, tbl.NumRows())

		for _, chunk := range tbl.Column(i).Data().Chunks() {
			for j := range chunk.Len() {
				if chunk.IsNull(j) {
					values = append(values, "")
					valid = append(valid, false)
					continue
				}
				text, err := arrowValueAsString(chunk, j)
				if err != nil {
					return nil, fmt.Errorf("converting column %s: %w", field.Name, err)
				}
				values = append(values, text)
				valid = append(valid, true)
			}
		}
		cols = append(cols, table.NewNullableColumn(field.Name, values, valid))
	}

	return table.New(cols...)
}

// arrowValueAsString extracts a value from an Arrow array at the given index as a string
func arrowValueAsString(arr arrow.Array, index int) (string, error) {
	switch typed := arr.(type) {
	case *array.String:
		return typed.Value(index), nil
	case *array.LargeString:
		return typed.Value(index), nil
	case *array.Int64:
		return strconv.FormatInt(typed.Value(index), 10), nil
	case *array.Int32:
		return strconv.FormatInt(int64(typed.Value(index)), 10), nil
	case *array.Float64:
		return strconv.FormatFloat(typed.Value(index), 'g', -1, 64), nil
	case *array.Float32:
		return strconv.FormatFloat(float64(typed.Value(index)), 'g', -1, 32), nil
	case *array.Boolean:
		return strconv.FormatBool(typed.Value(index)), nil
	default:
		return "", fmt.Errorf("unsupported Arrow type: %s", arr.DataType())
	}
}
