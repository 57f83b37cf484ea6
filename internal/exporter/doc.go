// Package exporter writes analysis report sections as downloadable files.
//
// This package contains two main components:
//
// CSVWriter: Writes one section as CSV, with an optional UTF-8 BOM for Excel
// compatibility, to any io.Writer or to a file.
//
// WorkbookWriter: Writes every section as its own sheet of an XLSX workbook
// using excelize, with a bold header row and numeric weight cells.
//
// Example usage:
//
//	sections := activeweight.BuildReport(industries, ranking)
//
//	// Multi-sheet workbook
//	err := exporter.NewWorkbookWriter(logger).Write(w, sections)
//
//	// Single table CSV
//	err = exporter.NewCSVWriter(logger).Write(w, activeweight.HoldingsSection(
//	    activeweight.SectionActiveWeights, reconciled), exporter.WriteOptions{BOMPrefix: true})
package exporter
