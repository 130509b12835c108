package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"adpulse/internal/dataprocessing"
)

// CSVWriter writes pipeline output as CSV files under a base directory.
type CSVWriter struct {
	basePath string
	logger   *slog.Logger
}

// NewCSVWriter creates a CSV writer rooted at basePath. A nil logger falls
// back to slog.Default().
func NewCSVWriter(basePath string, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{
		basePath: basePath,
		logger:   logger.With(slog.String("component", "csv_writer")),
	}
}

// WriteOptions configures CSV writing behavior.
type WriteOptions struct {
	Headers []string
	Records [][]string
	// BOMPrefix adds a UTF-8 BOM so Excel recognizes the encoding.
	BOMPrefix bool
}

// WriteCSV writes one CSV file with the given options, creating parent
// directories as needed.
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	fullPath := w.resolvePath(filePath)

	w.logger.Info("writing CSV file",
		slog.String("path", fullPath),
		slog.Int("records", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if options.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	return writer.Error()
}

// MetricTableHeaders returns the consolidated export header row: canonical
// fields, derived metrics, then pass-through extras. These snake_case names
// are the wire format collaborators round-trip on, so they never vary.
func MetricTableHeaders(t *dataprocessing.MetricTable) []string {
	headers := []string{"source", "platform", "campaign", "date",
		"impressions", "clicks", "spend", "conversions", "revenue",
		"ctr", "cpc", "cpm", "cpa", "conversion_rate", "roas"}
	return append(headers, t.ExtraColumns...)
}

// WriteMetricTable exports the consolidated dataset with its derived
// metrics. Null values become empty cells, never zeros.
func (w *CSVWriter) WriteMetricTable(filePath string, t *dataprocessing.MetricTable) error {
	records := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		record := []string{
			row.Source, row.Platform, row.Campaign, row.Date,
			row.Impressions.String(), row.Clicks.String(), row.Spend.String(),
			row.Conversions.String(), row.Revenue.String(),
			formatMetric(row.CTR), formatMetric(row.CPC), formatMetric(row.CPM),
			formatMetric(row.CPA), formatMetric(row.ConversionRate), formatMetric(row.ROAS),
		}
		for _, col := range t.ExtraColumns {
			record = append(record, row.Extra[col])
		}
		records = append(records, record)
	}
	return w.WriteCSV(filePath, WriteOptions{
		Headers:   MetricTableHeaders(t),
		Records:   records,
		BOMPrefix: true,
	})
}

// WriteGroupSummaries exports one row per group with summed counts and
// volume-weighted aggregate KPIs.
func (w *CSVWriter) WriteGroupSummaries(filePath string, groups []dataprocessing.GroupSummary) error {
	headers := []string{"platform", "campaign", "row_count",
		"impressions", "clicks", "spend", "conversions", "revenue",
		"ctr", "cpc", "cpm", "cpa", "conversion_rate", "roas"}

	records := make([][]string, 0, len(groups))
	for _, g := range groups {
		records = append(records, []string{
			g.Platform, g.Campaign, strconv.Itoa(g.RowCount),
			g.Impressions.String(), g.Clicks.String(), g.Spend.String(),
			g.Conversions.String(), g.Revenue.String(),
			formatMetric(g.CTR), formatMetric(g.CPC), formatMetric(g.CPM),
			formatMetric(g.CPA), formatMetric(g.ConversionRate), formatMetric(g.ROAS),
		})
	}
	return w.WriteCSV(filePath, WriteOptions{Headers: headers, Records: records, BOMPrefix: true})
}

// formatMetric renders a derived metric with two decimal places, matching
// the precision reports and insights present. Null stays an empty cell.
func formatMetric(n dataprocessing.Number) string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatFloat(n.Float64, 'f', 2, 64)
}

func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) {
		return filePath
	}
	return filepath.Join(w.basePath, filePath)
}
