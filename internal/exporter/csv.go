package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"mfbench/internal/activeweight"
)

// utf8BOM helps Excel recognize UTF-8 CSV files.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger.With(slog.String("component", "csv_writer"))}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
	// Places fixes the number of decimals of weight cells; zero keeps the
	// shortest exact form.
	Places int32
}

// Write writes the section's header and rows to w.
func (c *CSVWriter) Write(w io.Writer, section activeweight.Section, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)

	if len(section.Headers) > 0 {
		if err := writer.Write(section.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	record := make([]string, len(section.Headers))
	for i, row := range section.Rows {
		record = record[:0]
		for _, cell := range row {
			record = append(record, c.format(cell, options))
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteFile writes the section to filePath, creating parent directories.
func (c *CSVWriter) WriteFile(filePath string, section activeweight.Section, options WriteOptions) error {
	c.logger.Info("Writing CSV file",
		slog.String("file_path", filePath),
		slog.String("section", section.Name),
		slog.Int("record_count", len(section.Rows)))

	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := c.Write(file, section, options); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func (c *CSVWriter) format(cell any, options WriteOptions) string {
	if d, ok := cell.(decimal.Decimal); ok && options.Places > 0 {
		return FormatWeightFixed(d, options.Places)
	}
	return formatCell(cell)
}
