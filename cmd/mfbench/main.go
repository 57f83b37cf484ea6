// Command mfbench compares mutual fund scheme holdings with their benchmark
// index from the command line.
//
//	mfbench schemes -schemes holdings.csv
//	mfbench analyze -schemes holdings.xlsx -benchmarks index.csv -scheme "Alpha Equity Fund" -xlsx report.xlsx
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/google/subcommands"

	"mfbench/internal/config"
	"mfbench/internal/infrastructure"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(int(subcommands.ExitFailure))
	}

	// Reports go to stdout, so logs always go to stderr.
	logger := infrastructure.NewLogger(cfg.Logging, os.Stderr)

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	for _, c := range commands(cfg, logger, os.Stdout) {
		commander.Register(c, "analysis")
	}

	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	status := commander.Execute(ctx)
	stop()
	os.Exit(int(status))
}
