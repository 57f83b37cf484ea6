// Package dataprocessing loads holdings and benchmark uploads into
// activeweight.RawTable values.
//
// # Architecture
//
// The package is organized into three small components:
//
// 1. Loader: Detects the upload format and applies LoadOptions
// 2. Readers: CSV (with text decoding), XLSX via excelize and legacy XLS via extrame/xls
// 3. Table builder: Header row detection, header naming and row padding
//
// # Usage
//
// Parsing an upload whose format is taken from its file name:
//
//	table, err := dataprocessing.Parse("schemes.csv", r, dataprocessing.LoadOptions{
//	    SkipRows: 1,
//	    Encoding: "iso-8859-1",
//	})
//	if err != nil {
//	    return err
//	}
//
// # Header Handling
//
// The header is the first non-blank row after SkipRows. Header cells are
// trimmed. A blank header at position i is named "Unnamed: i" and repeated
// names get a ".1", ".2" suffix, so that downstream column resolution sees
// the same names a spreadsheet user would expect. Short rows are padded with
// empty cells and fully blank rows are skipped.
//
// # Error Handling
//
// Decoding failures are returned wrapped with the format being read. A
// source without any header row yields ErrNoHeader.
package dataprocessing
