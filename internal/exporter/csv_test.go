package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mfbench/internal/activeweight"
)

func sampleHoldings() []activeweight.ReconciledHolding {
	return []activeweight.ReconciledHolding{
		{
			Stock:           "HDFC BANK LTD",
			Industry:        "Banks",
			SchemeWeight:    decimal.RequireFromString("9.25"),
			BenchmarkWeight: decimal.RequireFromString("11.00"),
			ActiveWeight:    decimal.RequireFromString("-1.75"),
		},
		{
			Stock:           "TATA, MOTORS",
			Industry:        "Automobiles",
			SchemeWeight:    decimal.RequireFromString("3"),
			BenchmarkWeight: decimal.Zero,
			ActiveWeight:    decimal.RequireFromString("3"),
		},
	}
}

func TestCSVWriter_Write(t *testing.T) {
	section := activeweight.HoldingsSection(activeweight.SectionActiveWeights, sampleHoldings())

	tests := []struct {
		name     string
		options  WriteOptions
		wantBOM  bool
		wantRows [][]string
	}{
		{
			name:    "shortest form without BOM",
			options: WriteOptions{},
			wantRows: [][]string{
				activeweight.HoldingHeaders(),
				{"HDFC BANK LTD", "9.25", "11", "-1.75"},
				{"TATA, MOTORS", "3", "0", "3"},
			},
		},
		{
			name:    "fixed places with BOM",
			options: WriteOptions{BOMPrefix: true, Places: 2},
			wantBOM: true,
			wantRows: [][]string{
				activeweight.HoldingHeaders(),
				{"HDFC BANK LTD", "9.25", "11.00", "-1.75"},
				{"TATA, MOTORS", "3.00", "0.00", "3.00"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewCSVWriter(nil).Write(&buf, section, tt.options))

			data := buf.Bytes()
			assert.Equal(t, tt.wantBOM, bytes.HasPrefix(data, utf8BOM))
			data = bytes.TrimPrefix(data, utf8BOM)

			records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
			require.NoError(t, err)
			assert.Equal(t, tt.wantRows, records)
		})
	}
}

func TestCSVWriter_WriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "scheme_vs_benchmark_comparison.csv")
	section := activeweight.HoldingsSection(activeweight.SectionActiveWeights, sampleHoldings())

	require.NoError(t, NewCSVWriter(nil).WriteFile(path, section, WriteOptions{BOMPrefix: true}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, utf8BOM))
	assert.Contains(t, string(data), `"TATA, MOTORS"`)
}

func TestCSVWriter_EmptySection(t *testing.T) {
	var buf bytes.Buffer
	section := activeweight.HoldingsSection(activeweight.SectionTopOverweight, nil)

	require.NoError(t, NewCSVWriter(nil).Write(&buf, section, WriteOptions{}))
	assert.Equal(t, "Stock,Scheme_Weight,Benchmark_Weight,Active_Weight\n", buf.String())
}
