package io

import (
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/paveg/scrub/internal/errors"
	"github.com/paveg/scrub/internal/table"
)

// Format names a table file format.
type Format string

const (
	// FormatCSV is delimited text
	FormatCSV Format = "csv"
	// FormatParquet is Apache Parquet
	FormatParquet Format = "parquet"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatCSV, FormatParquet:
		return f, nil
	case "":
		return FormatCSV, nil
	default:
		return "", errors.NewInvalidInputError("ParseFormat", fmt.Sprintf("unsupported format %q", name))
	}
}

// FormatFromPath infers the format from the file extension, ignoring a
// trailing compression suffix.
func FormatFromPath(path string) Format {
	base := strings.ToLower(path)
	for _, ext := range []string{".gz", ".zst", ".lz4"} {
		base = strings.TrimSuffix(base, ext)
	}
	if filepath.Ext(base) == ".parquet" {
		return FormatParquet
	}
	return FormatCSV
}

// ReadOptions configures ReadFile.
type ReadOptions struct {
	CSV     CSVOptions
	Parquet ParquetOptions
}

// DefaultReadOptions returns default read options
func DefaultReadOptions() ReadOptions {
	return ReadOptions{CSV: DefaultCSVOptions(), Parquet: DefaultParquetOptions()}
}

// WriteOptions configures WriteFile.
type WriteOptions struct {
	Format  Format
	CSV     CSVOptions
	Parquet ParquetOptions
}

// DefaultWriteOptions returns default write options
func DefaultWriteOptions() WriteOptions {
	return WriteOptions{Format: FormatCSV, CSV: DefaultCSVOptions(), Parquet: DefaultParquetOptions()}
}

// ReadFile loads a table from path. A missing file yields an input-not-found
// error. Files ending in .gz, .zst or .lz4 are decompressed on the fly.
func ReadFile(path string, opts ReadOptions) (*table.Table, error) {
	info, err := os.Stat(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.NewInputNotFoundError("Load", path, err)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, errors.NewInvalidInputError("Load", fmt.Sprintf("%s is a directory", path))
	}

	rc, err := openDecompressed(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var reader DataReader
	if FormatFromPath(path) == FormatParquet {
		reader = NewParquetReader(rc, opts.Parquet, nil)
	} else {
		reader = NewCSVReader(rc, opts.CSV)
	}

	t, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return t, nil
}

// ResolveOutputPath returns the path a file should be written to. When the
// directory of path does not exist, the file name is kept and the current
// working directory is used instead; fellBack reports that substitution.
func ResolveOutputPath(path string) (resolved string, fellBack bool) {
	dir := filepath.Dir(path)
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return path, false
	}
	return filepath.Base(path), true
}

// WriteFile writes t to path (after ResolveOutputPath) and returns the path
// actually written. A failed write removes the partial file.
func WriteFile(path string, t *table.Table, opts WriteOptions) (string, error) {
	resolved, _ := ResolveOutputPath(path)

	f, err := os.Create(resolved) //nolint:gosec // output path comes from the operator
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", resolved, err)
	}

	if err := writeTo(f, resolved, t, opts); err != nil {
		_ = f.Close()
		_ = os.Remove(resolved)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(resolved)
		return "", fmt.Errorf("closing %s: %w", resolved, err)
	}
	return resolved, nil
}

func writeTo(f *os.File, path string, t *table.Table, opts WriteOptions) error {
	wc, err := wrapCompressed(f, path)
	if err != nil {
		return err
	}

	var writer DataWriter
	format := opts.Format
	if format == "" {
		format = FormatFromPath(path)
	}
	if format == FormatParquet {
		writer = NewParquetWriter(wc, opts.Parquet)
	} else {
		writer = NewCSVWriter(wc, opts.CSV)
	}

	if err := writer.Write(t); err != nil {
		_ = wc.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("finishing %s: %w", path, err)
	}
	return nil
}

func openDecompressed(path string) (io.ReadCloser, error) {
	f, err := os.Open(path) //nolint:gosec // input path comes from the operator
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		zr, err := gzip.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("opening gzip stream %s: %w", path, err)
		}
		return stackedCloser{Reader: zr, closers: []io.Closer{zr, f}}, nil
	case ".zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("opening zstd stream %s: %w", path, err)
		}
		rc := zr.IOReadCloser()
		return stackedCloser{Reader: rc, closers: []io.Closer{rc, f}}, nil
	case ".lz4":
		return stackedCloser{Reader: lz4.NewReader(f), closers: []io.Closer{f}}, nil
	default:
		return f, nil
	}
}

func wrapCompressed(w io.Writer, path string) (io.WriteCloser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		return gzip.NewWriter(w), nil
	case ".zst":
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("creating zstd writer: %w", err)
		}
		return zw, nil
	case ".lz4":
		return lz4.NewWriter(w), nil
	default:
		return nopWriteCloser{w}, nil
	}
}

type stackedCloser struct {
	io.Reader
	closers []io.Closer
}

func (s stackedCloser) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
