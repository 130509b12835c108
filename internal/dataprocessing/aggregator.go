package dataprocessing

import (
	"math"
	"sort"
)

// GroupSummary holds summed raw counts for one group plus aggregate KPIs
// recomputed from those sums. The aggregates are volume-weighted by
// construction: averaging per-row ratios instead would bias every KPI
// toward small-volume rows.
type GroupSummary struct {
	Platform string `json:"platform"`
	Campaign string `json:"campaign,omitempty"`
	RowCount int    `json:"row_count"`

	Impressions Number `json:"impressions"`
	Clicks      Number `json:"clicks"`
	Spend       Number `json:"spend"`
	Conversions Number `json:"conversions"`
	Revenue     Number `json:"revenue"`

	CTR            Number `json:"ctr"`
	CPC            Number `json:"cpc"`
	CPM            Number `json:"cpm"`
	CPA            Number `json:"cpa"`
	ConversionRate Number `json:"conversion_rate"`
	ROAS           Number `json:"roas"`
}

// metricValue selects one aggregate KPI by wire name.
func (g GroupSummary) metricValue(name string) Number {
	switch name {
	case MetricCTR:
		return g.CTR
	case MetricCPC:
		return g.CPC
	case MetricCPM:
		return g.CPM
	case MetricCPA:
		return g.CPA
	case MetricConversionRate:
		return g.ConversionRate
	case MetricROAS:
		return g.ROAS
	}
	return Number{}
}

// accumulator collects raw counts for one group. Null cells are skipped, so
// a count that was never observed stays null rather than becoming zero.
type accumulator struct {
	platform, campaign                               string
	rows                                             int
	impressions, clicks, spend, conversions, revenue Number
}

func addNumber(sum Number, v Number) Number {
	if !v.Valid {
		return sum
	}
	if !sum.Valid {
		return v
	}
	return N(sum.Float64 + v.Float64)
}

func (a *accumulator) add(r MetricRow) {
	a.rows++
	a.impressions = addNumber(a.impressions, r.Impressions)
	a.clicks = addNumber(a.clicks, r.Clicks)
	a.spend = addNumber(a.spend, r.Spend)
	a.conversions = addNumber(a.conversions, r.Conversions)
	a.revenue = addNumber(a.revenue, r.Revenue)
}

func (a *accumulator) summary(withRevenue bool) GroupSummary {
	g := GroupSummary{
		Platform:    a.platform,
		Campaign:    a.campaign,
		RowCount:    a.rows,
		Impressions: a.impressions,
		Clicks:      a.clicks,
		Spend:       a.spend,
		Conversions: a.conversions,
		Revenue:     a.revenue,
	}
	g.CTR, g.CPC, g.CPM, g.CPA, g.ConversionRate, g.ROAS =
		kpis(a.impressions, a.clicks, a.spend, a.conversions, a.revenue, withRevenue)
	return g
}

// aggregate groups the metric table by platform, or by platform and
// campaign when byCampaign is set. Groups appear in first-encounter order,
// which keeps insight tie-breaking reproducible for identical input.
func aggregate(t *MetricTable, byCampaign bool) []GroupSummary {
	type key struct{ platform, campaign string }
	index := make(map[key]int)
	var accs []*accumulator

	for _, row := range t.Rows {
		k := key{platform: row.Platform}
		if byCampaign {
			k.campaign = row.Campaign
		}
		i, ok := index[k]
		if !ok {
			i = len(accs)
			index[k] = i
			accs = append(accs, &accumulator{platform: k.platform, campaign: k.campaign})
		}
		accs[i].add(row)
	}

	out := make([]GroupSummary, 0, len(accs))
	for _, a := range accs {
		out = append(out, a.summary(t.HasRevenue))
	}
	return out
}

// DistributionSummary describes the spread of one KPI across campaigns:
// mean, median, sample standard deviation, min and max, plus which campaign
// attained each extreme. This is the unweighted cross-campaign statistic and
// is deliberately distinct from GroupSummary's volume-weighted aggregate.
// An empty Platform means the distribution spans all platforms.
type DistributionSummary struct {
	Platform  string `json:"platform,omitempty"`
	Metric    string `json:"metric"`
	Campaigns int    `json:"campaigns"`

	Mean   Number `json:"mean"`
	Median Number `json:"median"`
	// StdDev is the sample standard deviation (n-1 denominator, matching
	// pandas' default); null when fewer than two campaigns contribute.
	StdDev Number `json:"std_dev"`
	Min    Number `json:"min"`
	Max    Number `json:"max"`

	MinCampaign string `json:"min_campaign,omitempty"`
	MaxCampaign string `json:"max_campaign,omitempty"`

	// HighVariability marks a KPI whose standard deviation exceeds the
	// configured fraction of its mean — inconsistent performance worth a
	// closer look at individual campaigns.
	HighVariability bool `json:"high_variability"`
}

// distributions computes cross-campaign statistics per KPI, first across all
// platforms and then per platform, in grouping order. Each campaign
// contributes one volume-weighted value (its own aggregate across its rows),
// never one value per raw row. Campaign-less datasets yield no
// distributions: there is nothing to spread over.
func distributions(t *MetricTable, varianceThreshold float64) []DistributionSummary {
	if !t.HasCampaign {
		return nil
	}
	campaigns := aggregate(t, true)

	var out []DistributionSummary
	out = append(out, distributionsFor("", campaigns, varianceThreshold)...)

	var platformOrder []string
	seen := make(map[string]bool)
	for _, c := range campaigns {
		if !seen[c.Platform] {
			seen[c.Platform] = true
			platformOrder = append(platformOrder, c.Platform)
		}
	}
	for _, p := range platformOrder {
		var subset []GroupSummary
		for _, c := range campaigns {
			if c.Platform == p {
				subset = append(subset, c)
			}
		}
		out = append(out, distributionsFor(p, subset, varianceThreshold)...)
	}
	return out
}

// distributionsFor builds one summary per KPI over the given campaign
// aggregates. KPIs that are null for every campaign are omitted entirely
// rather than reported as zero.
func distributionsFor(platform string, campaigns []GroupSummary, varianceThreshold float64) []DistributionSummary {
	var out []DistributionSummary
	for _, metric := range metricOrder {
		var values []float64
		var names []string
		for _, c := range campaigns {
			if v := c.metricValue(metric); v.Valid {
				values = append(values, v.Float64)
				names = append(names, c.Campaign)
			}
		}
		if len(values) == 0 {
			continue
		}

		d := DistributionSummary{
			Platform:  platform,
			Metric:    metric,
			Campaigns: len(values),
			Mean:      N(mean(values)),
			Median:    N(median(values)),
		}
		minIdx, maxIdx := 0, 0
		for i, v := range values {
			if v < values[minIdx] {
				minIdx = i
			}
			if v > values[maxIdx] {
				maxIdx = i
			}
		}
		d.Min, d.MinCampaign = N(values[minIdx]), names[minIdx]
		d.Max, d.MaxCampaign = N(values[maxIdx]), names[maxIdx]

		if len(values) >= 2 {
			d.StdDev = N(sampleStdDev(values, d.Mean.Float64))
			if d.Mean.Float64 > 0 && d.StdDev.Float64 > d.Mean.Float64*varianceThreshold {
				d.HighVariability = true
			}
		}
		out = append(out, d)
	}
	return out
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func sampleStdDev(values []float64, mean float64) float64 {
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)-1))
}
