package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"mfbench/internal/activeweight"
)

// maxSheetName is the sheet name length limit of the XLSX format.
const maxSheetName = 31

// WorkbookWriter writes report sections as the sheets of one workbook.
type WorkbookWriter struct {
	logger *slog.Logger
}

// NewWorkbookWriter creates a new workbook writer
func NewWorkbookWriter(logger *slog.Logger) *WorkbookWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookWriter{logger: logger.With(slog.String("component", "workbook_writer"))}
}

// Write writes one sheet per section, in order, to w. A workbook needs at
// least one sheet, so an empty section list is rejected.
func (ww *WorkbookWriter) Write(w io.Writer, sections []activeweight.Section) error {
	if len(sections) == 0 {
		return fmt.Errorf("workbook needs at least one section")
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	used := make(map[string]bool, len(sections))
	for i, section := range sections {
		name := uniqueSheetName(section.Name, used)
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return fmt.Errorf("failed to name sheet %q: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to add sheet %q: %w", name, err)
		}

		if err := ww.writeSection(f, name, section, headerStyle); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)

	ww.logger.Debug("Workbook written", slog.Int("sheets", len(sections)))

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (ww *WorkbookWriter) writeSection(f *excelize.File, sheet string, section activeweight.Section, headerStyle int) error {
	widths := make([]int, len(section.Headers))
	for i, h := range section.Headers {
		widths[i] = len(h)
	}

	header := make([]any, len(section.Headers))
	for i, h := range section.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header of %q: %w", sheet, err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("failed to style header of %q: %w", sheet, err)
	}

	for r, row := range section.Rows {
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = workbookCell(v)
			if i < len(widths) {
				if n := len(formatCell(v)); n > widths[i] {
					widths[i] = n
				}
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("failed to write row %d of %q: %w", r, sheet, err)
		}
	}

	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, float64(min(w+2, 60))); err != nil {
			return fmt.Errorf("failed to size column %s of %q: %w", col, sheet, err)
		}
	}
	return nil
}

// uniqueSheetName makes name a valid, unused sheet name.
func uniqueSheetName(name string, used map[string]bool) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" {
		name = "Sheet"
	}
	name = truncate(name, maxSheetName)

	candidate := name
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		candidate = truncate(name, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
