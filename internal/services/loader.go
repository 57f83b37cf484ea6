package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"mfbench/internal/activeweight"
	"mfbench/internal/dataprocessing"
	apierrors "mfbench/internal/errors"
)

// Upload is one tabular source waiting to be decoded.
type Upload struct {
	// Table labels the upload in errors and logs, e.g. "schemes".
	Table    string
	Filename string
	Reader   io.Reader
	Options  dataprocessing.LoadOptions
}

// LoadTables decodes uploads concurrently. Tables are returned in the order of
// uploads; the first failure cancels the rest.
func LoadTables(ctx context.Context, logger *slog.Logger, uploads ...Upload) ([]activeweight.RawTable, error) {
	if logger == nil {
		logger = slog.Default()
	}

	tables := make([]activeweight.RawTable, len(uploads))
	g, ctx := errgroup.WithContext(ctx)
	for i, u := range uploads {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if u.Reader == nil {
				return fmt.Errorf("%w: %s", ErrMissingUpload, u.Table)
			}
			table, err := dataprocessing.Parse(u.Filename, u.Reader, u.Options)
			if err != nil {
				logger.WarnContext(ctx, "failed to decode upload",
					slog.String("table", u.Table),
					slog.String("filename", u.Filename),
					slog.String("error", err.Error()))
				return apierrors.NewParsingError(fmt.Sprintf("%s upload %q", u.Table, u.Filename), err).
					WithContext("table", u.Table)
			}
			logger.DebugContext(ctx, "upload decoded",
				slog.String("table", u.Table),
				slog.String("filename", u.Filename),
				slog.Int("columns", len(table.Columns)),
				slog.Int("rows", table.Len()))
			tables[i] = table
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}
