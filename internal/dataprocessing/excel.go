package dataprocessing

import (
	"fmt"
	"io"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"mfbench/internal/activeweight"
)

// ParseXLSX reads an Office Open XML workbook. Cells are read as their raw
// values so that number formats do not leak into weights.
func ParseXLSX(r io.Reader, opts LoadOptions) (activeweight.RawTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return activeweight.RawTable{}, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	sheet, err := pickSheet(sheets, opts.Sheet)
	if err != nil {
		return activeweight.RawTable{}, err
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return activeweight.RawTable{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	return buildTable(rows, opts.SkipRows)
}

// ParseXLS reads a legacy BIFF workbook.
func ParseXLS(r io.ReadSeeker, opts LoadOptions) (table activeweight.RawTable, err error) {
	// The decoder panics on some malformed records.
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("read xls: malformed workbook: %v", rec)
		}
	}()

	wb, err := xls.OpenReader(r, "utf-8")
	if err != nil {
		return activeweight.RawTable{}, fmt.Errorf("open xls: %w", err)
	}

	names := make([]string, 0, wb.NumSheets())
	for i := 0; i < wb.NumSheets(); i++ {
		if s := wb.GetSheet(i); s != nil {
			names = append(names, s.Name)
		} else {
			names = append(names, "")
		}
	}
	sheet, err := pickSheet(names, opts.Sheet)
	if err != nil {
		return activeweight.RawTable{}, err
	}

	var ws *xls.WorkSheet
	for i, name := range names {
		if name == sheet {
			ws = wb.GetSheet(i)
			break
		}
	}
	if ws == nil {
		return activeweight.RawTable{}, fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}

	rows := make([][]string, 0, int(ws.MaxRow)+1)
	for i := 0; i <= int(ws.MaxRow); i++ {
		rows = append(rows, xlsRow(ws, i))
	}

	return buildTable(rows, opts.SkipRows)
}

// xlsRow returns the cells of row i, or nil for a row the sheet does not
// store.
func xlsRow(ws *xls.WorkSheet, i int) (cells []string) {
	defer func() {
		if recover() != nil {
			cells = nil
		}
	}()

	row := ws.Row(i)
	if row == nil {
		return nil
	}
	last := row.LastCol()
	cells = make([]string, 0, last)
	for c := 0; c < last; c++ {
		cells = append(cells, row.Col(c))
	}
	return cells
}

// pickSheet returns the requested sheet, matched case-insensitively, or the
// first sheet when none is requested.
func pickSheet(sheets []string, want string) (string, error) {
	if len(sheets) == 0 {
		return "", fmt.Errorf("%w: workbook has no sheets", ErrSheetNotFound)
	}
	want = strings.TrimSpace(want)
	if want == "" {
		return sheets[0], nil
	}
	for _, s := range sheets {
		if strings.EqualFold(strings.TrimSpace(s), want) {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q (available: %s)", ErrSheetNotFound, want, strings.Join(sheets, ", "))
}
