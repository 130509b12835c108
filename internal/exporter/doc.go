// Package exporter writes pipeline output to files.
//
// CSVWriter exports the consolidated metric table and group summaries as
// CSV, with an optional UTF-8 BOM for Excel compatibility. The snake_case
// column names are the wire format shared with collaborators and must not
// vary between exports.
//
// ReportWriter renders the plain-text statistics report: per-platform
// volume-weighted aggregates, cross-campaign distributions, insights, and
// data-quality findings.
package exporter
