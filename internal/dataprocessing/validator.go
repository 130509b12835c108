package dataprocessing

import (
	"fmt"
	"sort"
	"strings"
)

// MissingStat counts absent values in one column.
type MissingStat struct {
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// QualityReport lists data-quality findings over the unified dataset. The
// validator only observes; it never drops or rewrites rows — callers decide
// what to do with flagged issues.
type QualityReport struct {
	EmptyColumns    []string               `json:"empty_columns,omitempty"`
	DuplicateRows   int                    `json:"duplicate_rows"`
	MissingValues   map[string]MissingStat `json:"missing_values,omitempty"`
	Inconsistencies []string               `json:"inconsistencies,omitempty"`
	HasIssues       bool                   `json:"has_issues"`
}

// missingFlagThreshold is the missing-value percentage above which a column
// counts as a quality issue rather than incidental sparsity.
const missingFlagThreshold = 5.0

// ValidateQuality inspects the unified table for the usual failure modes of
// hand-exported marketing data: columns that are entirely empty, duplicated
// rows, sparse columns, negative counts, and conversions booked against
// zero spend.
func ValidateQuality(t *UnifiedTable) *QualityReport {
	report := &QualityReport{MissingValues: make(map[string]MissingStat)}
	if t == nil || len(t.Rows) == 0 {
		return report
	}
	n := len(t.Rows)

	numericCols := []struct {
		name string
		get  func(UnifiedRow) Number
	}{
		{string(FieldImpressions), func(r UnifiedRow) Number { return r.Impressions }},
		{string(FieldClicks), func(r UnifiedRow) Number { return r.Clicks }},
		{string(FieldSpend), func(r UnifiedRow) Number { return r.Spend }},
		{string(FieldConversions), func(r UnifiedRow) Number { return r.Conversions }},
		{string(FieldRevenue), func(r UnifiedRow) Number { return r.Revenue }},
	}

	for _, col := range numericCols {
		missing, negatives := 0, 0
		for _, row := range t.Rows {
			v := col.get(row)
			if !v.Valid {
				missing++
			} else if v.Float64 < 0 && col.name != string(FieldRevenue) {
				negatives++
			}
		}
		if missing == n {
			report.EmptyColumns = append(report.EmptyColumns, col.name)
			report.HasIssues = true
			continue
		}
		if missing > 0 {
			pct := float64(missing) / float64(n) * 100
			report.MissingValues[col.name] = MissingStat{Count: missing, Percent: pct}
			if pct > missingFlagThreshold {
				report.HasIssues = true
			}
		}
		if negatives > 0 {
			report.Inconsistencies = append(report.Inconsistencies,
				fmt.Sprintf("%s has %d negative values", col.name, negatives))
			report.HasIssues = true
		}
	}

	seen := make(map[string]bool, n)
	for _, row := range t.Rows {
		key := rowFingerprint(row)
		if seen[key] {
			report.DuplicateRows++
		}
		seen[key] = true
	}
	if report.DuplicateRows > 0 {
		report.HasIssues = true
	}

	zeroSpendConv := 0
	for _, row := range t.Rows {
		if row.Spend.Valid && row.Spend.Float64 == 0 && row.Conversions.Valid && row.Conversions.Float64 > 0 {
			zeroSpendConv++
		}
	}
	if zeroSpendConv > 0 {
		report.Inconsistencies = append(report.Inconsistencies,
			fmt.Sprintf("%d rows have conversions but zero spend", zeroSpendConv))
		report.HasIssues = true
	}

	return report
}

// rowFingerprint serializes the canonical fields of a row for duplicate
// detection. Extra columns participate too: two rows are duplicates only
// when every cell agrees.
func rowFingerprint(r UnifiedRow) string {
	parts := []string{
		r.Source, r.Platform, r.Campaign, r.Date,
		r.Impressions.String(), r.Clicks.String(), r.Spend.String(),
		r.Conversions.String(), r.Revenue.String(),
	}
	for k, v := range r.Extra {
		parts = append(parts, k+"="+v)
	}
	if len(r.Extra) > 1 {
		// map order is random; normalize the extras section
		sort.Strings(parts[9:])
	}
	return strings.Join(parts, "\x1f")
}
