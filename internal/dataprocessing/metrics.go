package dataprocessing

// Metric names the derived KPI columns in their fixed output order. These
// snake_case names are the wire format shared with exported reports.
const (
	MetricCTR            = "ctr"
	MetricCPC            = "cpc"
	MetricCPM            = "cpm"
	MetricCPA            = "cpa"
	MetricConversionRate = "conversion_rate"
	MetricROAS           = "roas"
)

// metricOrder fixes traversal order wherever KPIs are enumerated.
var metricOrder = []string{MetricCTR, MetricCPC, MetricCPM, MetricCPA, MetricConversionRate, MetricROAS}

// safeRatio divides num by den and applies scale. A null or zero denominator
// (or null numerator) yields the null Number: division never produces Inf,
// never panics, and never fabricates a zero.
func safeRatio(num, den Number, scale float64) Number {
	if !num.Valid || !den.Valid || den.Float64 == 0 {
		return Number{}
	}
	return N(num.Float64 / den.Float64 * scale)
}

// kpis derives the full metric set from one set of counts. Used unchanged
// for per-row metrics and for group aggregates computed over summed counts,
// so the two can never drift apart. ROAS is only meaningful when a revenue
// column existed somewhere in the input; withRevenue gates it.
func kpis(impressions, clicks, spend, conversions, revenue Number, withRevenue bool) (ctr, cpc, cpm, cpa, convRate, roas Number) {
	ctr = safeRatio(clicks, impressions, 100)
	cpc = safeRatio(spend, clicks, 1)
	cpm = safeRatio(spend, impressions, 1000)
	cpa = safeRatio(spend, conversions, 1)
	convRate = safeRatio(conversions, clicks, 100)
	if withRevenue {
		roas = safeRatio(revenue, spend, 1)
	}
	return
}

// computeMetrics extends every unified row with its derived KPI columns.
// Rows are independent; the input table is not mutated. Negative inputs pass
// through uncorrected — the engine guarantees arithmetic safety, not
// business plausibility (that is the quality validator's job).
func computeMetrics(t *UnifiedTable) *MetricTable {
	out := &MetricTable{
		Rows:         make([]MetricRow, 0, len(t.Rows)),
		ExtraColumns: t.ExtraColumns,
		HasRevenue:   t.HasRevenue,
		HasCampaign:  t.HasCampaign,
		HasDate:      t.HasDate,
	}
	for _, row := range t.Rows {
		m := MetricRow{UnifiedRow: row}
		m.CTR, m.CPC, m.CPM, m.CPA, m.ConversionRate, m.ROAS =
			kpis(row.Impressions, row.Clicks, row.Spend, row.Conversions, row.Revenue, t.HasRevenue)
		out.Rows = append(out.Rows, m)
	}
	return out
}

// metricValue selects one KPI column from a metric row by wire name.
func (m MetricRow) metricValue(name string) Number {
	switch name {
	case MetricCTR:
		return m.CTR
	case MetricCPC:
		return m.CPC
	case MetricCPM:
		return m.CPM
	case MetricCPA:
		return m.CPA
	case MetricConversionRate:
		return m.ConversionRate
	case MetricROAS:
		return m.ROAS
	}
	return Number{}
}
