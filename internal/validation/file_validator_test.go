package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mfbench/internal/dataprocessing"
	"mfbench/internal/shared/testutil"
)

func TestFileValidator_ValidateSourceFile(t *testing.T) {
	tests := []struct {
		name        string
		setupFunc   func(t *testing.T) string
		wantFormat  dataprocessing.Format
		wantErr     error
		errContains string
	}{
		{
			name: "csv file",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "holdings.csv")
				require.NoError(t, os.WriteFile(path, []byte(testutil.SchemesCSV), 0644))
				return path
			},
			wantFormat: dataprocessing.FormatCSV,
		},
		{
			name: "upper case xlsx extension",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "Holdings.XLSX")
				require.NoError(t, os.WriteFile(path, []byte("PK"), 0644))
				return path
			},
			wantFormat: dataprocessing.FormatXLSX,
		},
		{
			name: "missing file",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing.csv")
			},
			errContains: "does not exist",
		},
		{
			name: "directory",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "dir.csv")
				require.NoError(t, os.Mkdir(path, 0755))
				return path
			},
			wantErr: ErrNotFile,
		},
		{
			name: "empty file",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "empty.csv")
				require.NoError(t, os.WriteFile(path, nil, 0644))
				return path
			},
			wantErr: ErrEmptyFile,
		},
		{
			name: "excel lock file",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "~$holdings.xlsx")
				require.NoError(t, os.WriteFile(path, []byte("lock"), 0644))
				return path
			},
			wantErr: ErrTemporaryFile,
		},
		{
			name: "unsupported extension",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "holdings.pdf")
				require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0644))
				return path
			},
			wantErr: dataprocessing.ErrUnsupportedFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			v := NewFileValidator(logger)

			format, err := v.ValidateSourceFile(tt.setupFunc(t))
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errContains != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantFormat, format)
			}
		})
	}
}

func TestFileValidator_ValidateOutputFile(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	v := NewFileValidator(logger)
	dir := t.TempDir()

	t.Run("creates missing directories", func(t *testing.T) {
		path := filepath.Join(dir, "reports", "2024", "alpha.xlsx")
		require.NoError(t, v.ValidateOutputFile(path, dataprocessing.FormatXLSX))

		info, err := os.Stat(filepath.Dir(path))
		require.NoError(t, err)
		assert.True(t, info.IsDir())

		entries, err := os.ReadDir(filepath.Dir(path))
		require.NoError(t, err)
		assert.Empty(t, entries, "probe file must be removed")
	})

	t.Run("wrong extension", func(t *testing.T) {
		err := v.ValidateOutputFile(filepath.Join(dir, "alpha.csv"), dataprocessing.FormatXLSX)
		require.Error(t, err)
		assert.Contains(t, err.Error(), ".xlsx")
	})

	t.Run("directory target", func(t *testing.T) {
		path := filepath.Join(dir, "taken.csv")
		require.NoError(t, os.Mkdir(path, 0755))
		assert.ErrorIs(t, v.ValidateOutputFile(path, dataprocessing.FormatCSV), ErrNotFile)
	})
}
