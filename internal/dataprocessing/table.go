package dataprocessing

import (
	"fmt"
	"strings"

	"mfbench/internal/activeweight"
)

// buildTable turns raw cell rows into a RawTable. The header is the first
// non-blank row after skipRows.
func buildTable(rows [][]string, skipRows int) (activeweight.RawTable, error) {
	if skipRows < 0 {
		skipRows = 0
	}
	if skipRows >= len(rows) {
		return activeweight.RawTable{}, ErrNoHeader
	}
	rows = rows[skipRows:]

	headerIdx := -1
	for i, row := range rows {
		if !isBlank(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return activeweight.RawTable{}, ErrNoHeader
	}

	data := rows[headerIdx+1:]
	width := len(rows[headerIdx])
	for _, row := range data {
		if n := trimmedLen(row); n > width {
			width = n
		}
	}

	header := make([]string, width)
	copy(header, rows[headerIdx])
	columns := headerNames(header)

	table := activeweight.RawTable{Columns: columns}
	for _, row := range data {
		if isBlank(row) {
			continue
		}
		rec := make(activeweight.Record, len(columns))
		for i, col := range columns {
			if i < len(row) {
				rec[col] = row[i]
			} else {
				rec[col] = ""
			}
		}
		table.Rows = append(table.Rows, rec)
	}
	return table, nil
}

// headerNames trims header cells, names blank ones "Unnamed: i" and suffixes
// repeated names with ".1", ".2" and so on.
func headerNames(cells []string) []string {
	names := make([]string, len(cells))
	seen := make(map[string]int, len(cells))
	taken := make(map[string]bool, len(cells))
	for i, c := range cells {
		name := strings.TrimSpace(c)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		taken[name] = true
		names[i] = name
	}

	out := make([]string, len(names))
	for i, name := range names {
		n := seen[name]
		seen[name] = n + 1
		if n == 0 {
			out[i] = name
			continue
		}
		candidate := fmt.Sprintf("%s.%d", name, n)
		for taken[candidate] {
			n++
			candidate = fmt.Sprintf("%s.%d", name, n)
		}
		seen[name] = n + 1
		taken[candidate] = true
		out[i] = candidate
	}
	return out
}

func isBlank(row []string) bool {
	return trimmedLen(row) == 0
}

// trimmedLen returns the length of row without trailing blank cells.
func trimmedLen(row []string) int {
	n := len(row)
	for n > 0 && strings.TrimSpace(row[n-1]) == "" {
		n--
	}
	return n
}
