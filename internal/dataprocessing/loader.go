package dataprocessing

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"mfbench/internal/activeweight"
)

// Format identifies a tabular source format.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
)

var (
	// ErrNoHeader is returned when a source holds no non-blank row after the
	// skipped rows.
	ErrNoHeader = errors.New("no header row found")
	// ErrUnsupportedFormat is returned for unknown formats and extensions.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrUnsupportedEncoding is returned for unknown text encodings.
	ErrUnsupportedEncoding = errors.New("unsupported encoding")
	// ErrSheetNotFound is returned when a named sheet does not exist.
	ErrSheetNotFound = errors.New("sheet not found")
)

// LoadOptions controls how an upload becomes a RawTable.
type LoadOptions struct {
	// Format overrides detection from the file name.
	Format Format
	// SkipRows is the number of leading rows before the header row.
	SkipRows int
	// Encoding names the text encoding of CSV input.
	Encoding string
	// Sheet selects a workbook sheet by name; empty selects the first sheet.
	Sheet string
}

// ParseFormat converts a format name or file extension into a Format.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "."))
	switch f {
	case FormatCSV, FormatXLSX, FormatXLS:
		return f, nil
	case "xlsm":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// DetectFormat returns the format implied by a file name's extension.
func DetectFormat(name string) (Format, error) {
	ext := filepath.Ext(name)
	if ext == "" {
		return "", fmt.Errorf("%w: %q has no extension", ErrUnsupportedFormat, name)
	}
	return ParseFormat(ext)
}

// Parse reads r as the format in opts, or the one implied by name.
func Parse(name string, r io.Reader, opts LoadOptions) (activeweight.RawTable, error) {
	format := opts.Format
	if format == "" {
		var err error
		if format, err = DetectFormat(name); err != nil {
			return activeweight.RawTable{}, err
		}
	}

	switch format {
	case FormatCSV:
		return ParseCSV(r, opts)
	case FormatXLSX:
		return ParseXLSX(r, opts)
	case FormatXLS:
		rs, ok := r.(io.ReadSeeker)
		if !ok {
			data, err := io.ReadAll(r)
			if err != nil {
				return activeweight.RawTable{}, fmt.Errorf("read xls: %w", err)
			}
			rs = bytes.NewReader(data)
		}
		return ParseXLS(rs, opts)
	}
	return activeweight.RawTable{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// ParseFile opens path and parses it.
func ParseFile(path string, opts LoadOptions) (activeweight.RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return activeweight.RawTable{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return Parse(filepath.Base(path), f, opts)
}
