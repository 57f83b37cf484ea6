package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/subcommands"

	"mfbench/internal/activeweight"
	"mfbench/internal/config"
	"mfbench/internal/dataprocessing"
	"mfbench/internal/exporter"
	"mfbench/internal/services"
	"mfbench/internal/validation"
)

func commands(cfg *config.Config, logger *slog.Logger, out io.Writer) []subcommands.Command {
	return []subcommands.Command{
		&schemesCmd{cfg: cfg, logger: logger, out: out},
		&analyzeCmd{cfg: cfg, logger: logger, out: out},
	}
}

// tableFlags locates one source file.
type tableFlags struct {
	name     string
	path     string
	skipRows int
	sheet    string
}

func (t *tableFlags) register(f *flag.FlagSet, skipDefault int) {
	f.StringVar(&t.path, t.name, "", fmt.Sprintf("path of the %s file (csv, xlsx or xls)", t.name))
	f.IntVar(&t.skipRows, t.name+"-skip", skipDefault, fmt.Sprintf("rows before the header row of the %s file", t.name))
	f.StringVar(&t.sheet, t.name+"-sheet", "", fmt.Sprintf("workbook sheet of the %s file (default first sheet)", t.name))
}

// loadFiles validates, opens and decodes every table concurrently.
func loadFiles(ctx context.Context, logger *slog.Logger, encoding string, tables ...tableFlags) ([]activeweight.RawTable, error) {
	validator := validation.NewFileValidator(logger)
	uploads := make([]services.Upload, 0, len(tables))
	for _, t := range tables {
		format, err := validator.ValidateSourceFile(t.path)
		if err != nil {
			return nil, fmt.Errorf("invalid %s file: %w", t.name, err)
		}

		f, err := os.Open(t.path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s file: %w", t.name, err)
		}
		defer f.Close()

		uploads = append(uploads, services.Upload{
			Table:    t.name,
			Filename: filepath.Base(t.path),
			Reader:   f,
			Options: dataprocessing.LoadOptions{
				Format:   format,
				SkipRows: t.skipRows,
				Encoding: encoding,
				Sheet:    t.sheet,
			},
		})
	}
	return services.LoadTables(ctx, logger, uploads...)
}

type schemesCmd struct {
	cfg    *config.Config
	logger *slog.Logger
	out    io.Writer

	schemes  tableFlags
	encoding string
}

func (*schemesCmd) Name() string     { return "schemes" }
func (*schemesCmd) Synopsis() string { return "list the scheme names of a holdings file" }
func (*schemesCmd) Usage() string {
	return `mfbench schemes -schemes <file> [-schemes-skip n] [-schemes-sheet name] [-encoding name]

  Prints the distinct scheme names found in a scheme holdings file, one per line.
`
}

func (c *schemesCmd) SetFlags(f *flag.FlagSet) {
	c.schemes.name = services.TableSchemes
	c.schemes.register(f, c.cfg.Analysis.SchemesSkipRows)
	f.StringVar(&c.encoding, "encoding", c.cfg.Analysis.Encoding, "text encoding of csv files")
}

func (c *schemesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.schemes.path == "" {
		fmt.Fprintln(os.Stderr, "Error: -schemes is required")
		return subcommands.ExitUsageError
	}

	svc, err := services.NewAnalysisService(c.cfg.Analysis, c.cfg.Columns, c.logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	tables, err := loadFiles(ctx, c.logger, c.encoding, c.schemes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	names, err := svc.ListSchemes(ctx, tables[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	for _, name := range names {
		fmt.Fprintln(c.out, name)
	}
	return subcommands.ExitSuccess
}

type analyzeCmd struct {
	cfg    *config.Config
	logger *slog.Logger
	out    io.Writer

	schemes      tableFlags
	benchmarks   tableFlags
	encoding     string
	scheme       string
	benchmark    string
	topN         int
	industryTopN int
	xlsxPath     string
	csvPath      string
	plain        bool
}

func (*analyzeCmd) Name() string     { return "analyze" }
func (*analyzeCmd) Synopsis() string { return "compare a scheme's holdings with its benchmark" }
func (*analyzeCmd) Usage() string {
	return `mfbench analyze -schemes <file> [-benchmarks <file>] [-scheme name] [-benchmark name]
               [-top n] [-industry-top n] [-xlsx file] [-csv file] [-plain]

  Computes stock and industry active weights of a scheme and prints a markdown
  report. Without -benchmarks the benchmark and active weight columns of the
  holdings file are used.
`
}

func (c *analyzeCmd) SetFlags(f *flag.FlagSet) {
	c.schemes.name = services.TableSchemes
	c.schemes.register(f, c.cfg.Analysis.SchemesSkipRows)
	c.benchmarks.name = services.TableBenchmarks
	c.benchmarks.register(f, c.cfg.Analysis.BenchmarksSkipRows)

	f.StringVar(&c.encoding, "encoding", c.cfg.Analysis.Encoding, "text encoding of csv files")
	f.StringVar(&c.scheme, "scheme", "", "scheme name to analyze (default all rows)")
	f.StringVar(&c.benchmark, "benchmark", "", "benchmark index name (default from the scheme or configuration)")
	f.IntVar(&c.topN, "top", c.cfg.Analysis.StockTopN, "number of over and underweight stocks")
	f.IntVar(&c.industryTopN, "industry-top", c.cfg.Analysis.IndustryTopN, "number of over and underweight industries")
	f.StringVar(&c.xlsxPath, "xlsx", "", "write the workbook report to this file")
	f.StringVar(&c.csvPath, "csv", "", "write the stock comparison to this csv file")
	f.BoolVar(&c.plain, "plain", false, "print raw markdown instead of rendering it")
}

func (c *analyzeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.schemes.path == "" {
		fmt.Fprintln(os.Stderr, "Error: -schemes is required")
		return subcommands.ExitUsageError
	}

	svc, err := services.NewAnalysisService(c.cfg.Analysis, c.cfg.Columns, c.logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := c.validateOutputs(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	files := []tableFlags{c.schemes}
	if c.benchmarks.path != "" {
		files = append(files, c.benchmarks)
	}
	tables, err := loadFiles(ctx, c.logger, c.encoding, files...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	var benchmarks *activeweight.RawTable
	if len(tables) > 1 {
		benchmarks = &tables[1]
	}
	req := svc.NewRequest(tables[0], benchmarks)
	req.Scheme = c.scheme
	req.Benchmark = c.benchmark
	req.TopN = c.topN
	req.IndustryTopN = c.industryTopN

	res, err := svc.Analyze(ctx, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := c.writeReports(res); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := printMarkdown(c.out, renderMarkdown(res), c.plain); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// validateOutputs checks report paths before any work is done.
func (c *analyzeCmd) validateOutputs() error {
	validator := validation.NewFileValidator(c.logger)
	if c.xlsxPath != "" {
		if err := validator.ValidateOutputFile(c.xlsxPath, dataprocessing.FormatXLSX); err != nil {
			return err
		}
	}
	if c.csvPath != "" {
		if err := validator.ValidateOutputFile(c.csvPath, dataprocessing.FormatCSV); err != nil {
			return err
		}
	}
	return nil
}

func (c *analyzeCmd) writeReports(res *services.Result) error {
	if c.xlsxPath != "" {
		f, err := os.Create(c.xlsxPath)
		if err != nil {
			return fmt.Errorf("failed to create workbook: %w", err)
		}
		if err := exporter.NewWorkbookWriter(c.logger).Write(f, res.Sections()); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to close workbook: %w", err)
		}
	}

	if c.csvPath != "" {
		opts := exporter.WriteOptions{BOMPrefix: true}
		if err := exporter.NewCSVWriter(c.logger).WriteFile(c.csvPath, res.ComparisonSection(), opts); err != nil {
			return err
		}
	}
	return nil
}
