package dataprocessing

import "fmt"

// Insight is one ranked, human-readable finding. Insights carry no identity
// beyond their position: the generation rules run in a fixed order so the
// same input always yields the same list.
type Insight struct {
	Metric  string  `json:"metric"`
	Subject string  `json:"subject"`
	Value   float64 `json:"value"`
	Message string  `json:"message"`
}

// generateInsights scans platform summaries and campaign distributions and
// emits findings in fixed rule order: lowest CPC platform, best conversion
// rate platform, highest and lowest CTR platform, per-platform spend share,
// best campaigns from the cross-platform distribution extremes, then high
// variability warnings. Cross-platform comparisons need at least two
// platforms; with fewer they are skipped, not emitted with degenerate
// values. A KPI that is null everywhere contributes nothing.
func generateInsights(platforms []GroupSummary, dists []DistributionSummary) []Insight {
	var out []Insight

	if len(platforms) >= 2 {
		if best, ok := extremePlatform(platforms, MetricCPC, false); ok {
			out = append(out, Insight{
				Metric:  MetricCPC,
				Subject: best.Platform,
				Value:   best.CPC.Float64,
				Message: fmt.Sprintf("%s has the lowest CPC ($%.2f)", best.Platform, best.CPC.Float64),
			})
		}
		if best, ok := extremePlatform(platforms, MetricConversionRate, true); ok {
			out = append(out, Insight{
				Metric:  MetricConversionRate,
				Subject: best.Platform,
				Value:   best.ConversionRate.Float64,
				Message: fmt.Sprintf("%s has the best conversion rate (%.2f%%)", best.Platform, best.ConversionRate.Float64),
			})
		}
		if best, ok := extremePlatform(platforms, MetricCTR, true); ok {
			out = append(out, Insight{
				Metric:  MetricCTR,
				Subject: best.Platform,
				Value:   best.CTR.Float64,
				Message: fmt.Sprintf("%s has the highest CTR (%.2f%%)", best.Platform, best.CTR.Float64),
			})
		}
		if worst, ok := extremePlatform(platforms, MetricCTR, false); ok {
			out = append(out, Insight{
				Metric:  MetricCTR,
				Subject: worst.Platform,
				Value:   worst.CTR.Float64,
				Message: fmt.Sprintf("%s has the lowest CTR (%.2f%%)", worst.Platform, worst.CTR.Float64),
			})
		}
		out = append(out, spendShares(platforms)...)
	}

	out = append(out, campaignHighlights(dists)...)
	out = append(out, variabilityWarnings(dists)...)
	return out
}

// extremePlatform finds the platform with the highest (or lowest) value of
// one aggregate KPI. Platforms where the KPI is null never win — a platform
// with zero clicks has no CPC, it does not have the best one. Ties keep the
// first platform in grouping order.
func extremePlatform(platforms []GroupSummary, metric string, highest bool) (GroupSummary, bool) {
	var best GroupSummary
	found := false
	for _, p := range platforms {
		v := p.metricValue(metric)
		if !v.Valid {
			continue
		}
		if !found ||
			(highest && v.Float64 > best.metricValue(metric).Float64) ||
			(!highest && v.Float64 < best.metricValue(metric).Float64) {
			best = p
			found = true
		}
	}
	return best, found
}

// spendShares reports each platform's share of total spend, in grouping
// order. Nothing is emitted when no platform recorded spend.
func spendShares(platforms []GroupSummary) []Insight {
	total := 0.0
	any := false
	for _, p := range platforms {
		if p.Spend.Valid {
			total += p.Spend.Float64
			any = true
		}
	}
	if !any || total == 0 {
		return nil
	}
	var out []Insight
	for _, p := range platforms {
		if !p.Spend.Valid {
			continue
		}
		share := p.Spend.Float64 / total * 100
		out = append(out, Insight{
			Metric:  "spend_share",
			Subject: p.Platform,
			Value:   share,
			Message: fmt.Sprintf("%s represents %.1f%% of total ad spend", p.Platform, share),
		})
	}
	return out
}

// campaignHighlights reports the standout campaigns from the all-platform
// distribution extremes: best CTR, lowest CPC, best conversion rate.
func campaignHighlights(dists []DistributionSummary) []Insight {
	var out []Insight
	for _, d := range dists {
		if d.Platform != "" {
			continue
		}
		switch d.Metric {
		case MetricCTR:
			out = append(out, Insight{
				Metric:  MetricCTR,
				Subject: d.MaxCampaign,
				Value:   d.Max.Float64,
				Message: fmt.Sprintf("campaign %q has the best CTR (%.2f%%)", d.MaxCampaign, d.Max.Float64),
			})
		case MetricCPC:
			out = append(out, Insight{
				Metric:  MetricCPC,
				Subject: d.MinCampaign,
				Value:   d.Min.Float64,
				Message: fmt.Sprintf("campaign %q has the lowest CPC ($%.2f)", d.MinCampaign, d.Min.Float64),
			})
		case MetricConversionRate:
			out = append(out, Insight{
				Metric:  MetricConversionRate,
				Subject: d.MaxCampaign,
				Value:   d.Max.Float64,
				Message: fmt.Sprintf("campaign %q has the best conversion rate (%.2f%%)", d.MaxCampaign, d.Max.Float64),
			})
		}
	}
	return out
}

// variabilityWarnings emits one warning per platform-scoped KPI flagged for
// high variability, in distribution order.
func variabilityWarnings(dists []DistributionSummary) []Insight {
	var out []Insight
	for _, d := range dists {
		if d.Platform == "" || !d.HighVariability {
			continue
		}
		out = append(out, Insight{
			Metric:  d.Metric,
			Subject: d.Platform,
			Value:   d.StdDev.Float64,
			Message: fmt.Sprintf("%s shows high %s variability across campaigns (std dev %.2f vs mean %.2f) - review individual campaigns",
				d.Platform, d.Metric, d.StdDev.Float64, d.Mean.Float64),
		})
	}
	return out
}
