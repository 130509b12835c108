package exporter

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"adpulse/internal/dataprocessing"
)

// ReportWriter renders the statistics report as plain text.
type ReportWriter struct {
	basePath string
}

// NewReportWriter creates a report writer rooted at basePath.
func NewReportWriter(basePath string) *ReportWriter {
	return &ReportWriter{basePath: basePath}
}

// WriteReport renders the analysis to filePath. The report shows both the
// volume-weighted aggregates (budget decisions) and the cross-campaign
// distributions (optimization decisions), because the two answer different
// questions and averaging one into the other hides variability.
func (w *ReportWriter) WriteReport(filePath string, analysis *dataprocessing.Analysis, quality *dataprocessing.QualityReport, warnings []dataprocessing.Warning) error {
	fullPath := filePath
	if !filepath.IsAbs(filePath) {
		fullPath = filepath.Join(w.basePath, filePath)
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	content := RenderReport(analysis, quality, warnings)
	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// RenderReport builds the report text.
func RenderReport(analysis *dataprocessing.Analysis, quality *dataprocessing.QualityReport, warnings []dataprocessing.Warning) string {
	var b strings.Builder
	rule := strings.Repeat("=", 70)

	b.WriteString(rule + "\n")
	b.WriteString("MARKETING PERFORMANCE REPORT\n")
	b.WriteString(rule + "\n\n")
	b.WriteString("Note: aggregate metrics are volume-weighted (budget allocation);\n")
	b.WriteString("campaign statistics show performance variability (optimization).\n")

	for _, p := range analysis.Platforms {
		b.WriteString("\n" + rule + "\n")
		fmt.Fprintf(&b, "PLATFORM: %s\n", p.Platform)
		b.WriteString(rule + "\n")

		b.WriteString("\nVolume totals:\n")
		fmt.Fprintf(&b, "  impressions:  %s\n", countCell(p.Impressions))
		fmt.Fprintf(&b, "  clicks:       %s\n", countCell(p.Clicks))
		fmt.Fprintf(&b, "  spend:        %s\n", moneyCell(p.Spend))
		fmt.Fprintf(&b, "  conversions:  %s\n", countCell(p.Conversions))

		b.WriteString("\nAggregate KPIs (volume-weighted):\n")
		fmt.Fprintf(&b, "  ctr:              %s\n", pctCell(p.CTR))
		fmt.Fprintf(&b, "  cpc:              %s\n", moneyCell(p.CPC))
		fmt.Fprintf(&b, "  cpm:              %s\n", moneyCell(p.CPM))
		fmt.Fprintf(&b, "  cpa:              %s\n", moneyCell(p.CPA))
		fmt.Fprintf(&b, "  conversion_rate:  %s\n", pctCell(p.ConversionRate))
		if p.ROAS.Valid {
			fmt.Fprintf(&b, "  roas:             %.2f\n", p.ROAS.Float64)
		}

		wroteHeader := false
		for _, d := range analysis.Distributions {
			if d.Platform != p.Platform {
				continue
			}
			if !wroteHeader {
				b.WriteString("\nCampaign distributions:\n")
				wroteHeader = true
			}
			fmt.Fprintf(&b, "  %s across %d campaigns: mean %.2f, median %.2f, std dev %s, range %.2f (%s) - %.2f (%s)\n",
				d.Metric, d.Campaigns, d.Mean.Float64, d.Median.Float64,
				stdCell(d.StdDev), d.Min.Float64, d.MinCampaign, d.Max.Float64, d.MaxCampaign)
			if d.HighVariability {
				fmt.Fprintf(&b, "    ! high variability - review individual campaigns\n")
			}
		}
	}

	if len(analysis.Insights) > 0 {
		b.WriteString("\n" + rule + "\n")
		b.WriteString("INSIGHTS\n")
		b.WriteString(rule + "\n")
		for _, in := range analysis.Insights {
			fmt.Fprintf(&b, "  - %s\n", in.Message)
		}
	}

	if quality != nil && quality.HasIssues {
		b.WriteString("\n" + rule + "\n")
		b.WriteString("DATA QUALITY\n")
		b.WriteString(rule + "\n")
		for _, col := range quality.EmptyColumns {
			fmt.Fprintf(&b, "  - column %q is entirely empty\n", col)
		}
		if quality.DuplicateRows > 0 {
			fmt.Fprintf(&b, "  - %d duplicate rows\n", quality.DuplicateRows)
		}
		cols := make([]string, 0, len(quality.MissingValues))
		for col := range quality.MissingValues {
			cols = append(cols, col)
		}
		sort.Strings(cols)
		for _, col := range cols {
			if stat := quality.MissingValues[col]; stat.Percent > 5 {
				fmt.Fprintf(&b, "  - column %q missing %d values (%.1f%%)\n", col, stat.Count, stat.Percent)
			}
		}
		for _, issue := range quality.Inconsistencies {
			fmt.Fprintf(&b, "  - %s\n", issue)
		}
	}

	if len(warnings) > 0 {
		b.WriteString("\n" + rule + "\n")
		b.WriteString("RESOLUTION WARNINGS\n")
		b.WriteString(rule + "\n")
		for _, w := range warnings {
			fmt.Fprintf(&b, "  - [%s] %s\n", w.Code, w.Message)
		}
	}

	return b.String()
}

func countCell(n dataprocessing.Number) string {
	if !n.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%.0f", n.Float64)
}

func moneyCell(n dataprocessing.Number) string {
	if !n.Valid {
		return "n/a"
	}
	return fmt.Sprintf("$%.2f", n.Float64)
}

func pctCell(n dataprocessing.Number) string {
	if !n.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", n.Float64)
}

func stdCell(n dataprocessing.Number) string {
	if !n.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", n.Float64)
}
