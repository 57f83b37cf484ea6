package dataprocessing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"mfbench/internal/activeweight"
)

// ParseCSV reads delimited text. Records may have differing field counts and
// quotes are parsed leniently, as exported vendor files are rarely strict.
func ParseCSV(r io.Reader, opts LoadOptions) (activeweight.RawTable, error) {
	decoded, err := decodeReader(r, opts.Encoding)
	if err != nil {
		return activeweight.RawTable{}, err
	}

	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return activeweight.RawTable{}, fmt.Errorf("read csv: %w", err)
		}
		rows = append(rows, rec)
	}

	return buildTable(rows, opts.SkipRows)
}
