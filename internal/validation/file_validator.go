package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"mfbench/internal/dataprocessing"
)

var (
	// ErrNotFile is returned for directories and other non-regular paths.
	ErrNotFile = errors.New("not a regular file")
	// ErrEmptyFile is returned for zero-length source files.
	ErrEmptyFile = errors.New("file is empty")
	// ErrTemporaryFile is returned for Excel lock files such as ~$book.xlsx.
	ErrTemporaryFile = errors.New("temporary Excel file")
)

// FileValidator checks source and report paths before any parsing or writing
// starts.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateSourceFile checks that path is a readable, non-empty file in a
// supported tabular format and returns that format.
func (v *FileValidator) ValidateSourceFile(path string) (dataprocessing.Format, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return "", fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%s: %w", path, ErrNotFile)
	}
	if info.Size() == 0 {
		return "", fmt.Errorf("%s: %w", path, ErrEmptyFile)
	}

	if strings.HasPrefix(filepath.Base(path), "~$") {
		v.logger.Warn("Skipping temporary Excel file",
			slog.String("file", path))
		return "", fmt.Errorf("%s: %w", path, ErrTemporaryFile)
	}

	format, err := dataprocessing.DetectFormat(path)
	if err != nil {
		return "", err
	}

	// Check if file is readable by opening it
	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("Source file validated",
		slog.String("file", path),
		slog.String("format", string(format)),
		slog.Int64("size", info.Size()))
	return format, nil
}

// ValidateOutputFile ensures the directory of path exists and is writable,
// and that path carries the extension of want.
func (v *FileValidator) ValidateOutputFile(path string, want dataprocessing.Format) error {
	if format, err := dataprocessing.DetectFormat(path); err != nil || format != want {
		return fmt.Errorf("report file %s must have a .%s extension", path, want)
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("%s: %w", path, ErrNotFile)
	}
	return v.ValidateOutputDirectory(filepath.Dir(path))
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	// Try to create directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	// Verify it's writable by creating a probe file
	probe, err := os.CreateTemp(dir, ".write_test")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	probe.Close()
	os.Remove(probe.Name())

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}
