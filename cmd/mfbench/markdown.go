package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"mfbench/internal/activeweight"
	"mfbench/internal/exporter"
	"mfbench/internal/services"
)

// renderMarkdown formats an analysis result as a markdown document.
func renderMarkdown(res *services.Result) string {
	var b strings.Builder

	scheme := res.Scheme
	if scheme == "" {
		scheme = "All schemes"
	}
	fmt.Fprintf(&b, "# %s\n\n", escape(scheme))

	benchmark := res.Benchmark
	if benchmark == "" {
		benchmark = "none"
	}
	if res.BenchmarkSource != "" {
		benchmark = fmt.Sprintf("%s (%s)", benchmark, res.BenchmarkSource)
	}

	b.WriteString("| | |\n|:---|---:|\n")
	fmt.Fprintf(&b, "| Benchmark | %s |\n", escape(benchmark))
	fmt.Fprintf(&b, "| Mode | %s |\n", res.Mode)
	fmt.Fprintf(&b, "| Holdings | %d |\n", len(res.Holdings))
	fmt.Fprintf(&b, "| Scheme weight | %s |\n", exporter.FormatWeight(res.Totals.Scheme))
	fmt.Fprintf(&b, "| Benchmark weight | %s |\n", exporter.FormatWeight(res.Totals.Benchmark))
	fmt.Fprintf(&b, "| Active weight | %s |\n", exporter.FormatWeight(res.Totals.Active))
	fmt.Fprintf(&b, "| Active share | %s |\n", exporter.FormatWeight(res.ActiveShare))
	b.WriteString("\n")

	if len(res.Warnings) > 0 {
		for _, w := range res.Warnings {
			fmt.Fprintf(&b, "> **Warning:** %s\n", escape(w))
		}
		b.WriteString("\n")
	}

	if res.Empty() {
		return b.String()
	}

	holdingsTable(&b, "Top overweight stocks", res.Ranking.Overweight)
	holdingsTable(&b, "Top underweight stocks", res.Ranking.Underweight)
	industryTable(&b, "Industries", res.Industries)

	return b.String()
}

func holdingsTable(b *strings.Builder, title string, rows []activeweight.ReconciledHolding) {
	if len(rows) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", title)
	b.WriteString("| Stock | Industry | Scheme | Benchmark | Active |\n")
	b.WriteString("|:---|:---|---:|---:|---:|\n")
	for _, r := range rows {
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s |\n",
			escape(r.Stock),
			escape(r.Industry),
			exporter.FormatWeight(r.SchemeWeight),
			exporter.FormatWeight(r.BenchmarkWeight),
			exporter.FormatWeight(r.ActiveWeight))
	}
	b.WriteString("\n")
}

func industryTable(b *strings.Builder, title string, rows []activeweight.IndustrySummary) {
	if len(rows) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", title)
	b.WriteString("| Industry | Fund | Benchmark | Active |\n")
	b.WriteString("|:---|---:|---:|---:|\n")
	for _, s := range rows {
		fmt.Fprintf(b, "| %s | %s | %s | %s |\n",
			escape(s.Industry),
			exporter.FormatWeight(s.FundWeight),
			exporter.FormatWeight(s.BenchmarkWeight),
			exporter.FormatWeight(s.ActiveWeight))
	}
	b.WriteString("\n")
}

// escape keeps names from breaking table cells.
func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// printMarkdown renders md for the terminal unless plain is set.
func printMarkdown(w io.Writer, md string, plain bool) error {
	if plain {
		_, err := io.WriteString(w, md)
		return err
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}
