// Package files discovers and reads tabular ad-performance exports.
//
// Discovery scans an input directory for CSV and XLSX files in a stable
// order. ReadTable turns one file into a dataprocessing.RawTable, handling
// the usual export quirks (UTF-8 BOMs, ragged CSV rows, XLSX cover sheets).
// Loader reads a discovered batch concurrently while preserving discovery
// order, since concatenation order is part of the pipeline contract.
package files
