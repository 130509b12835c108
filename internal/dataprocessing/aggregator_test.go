package dataprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func metricTableFromRows(rows []UnifiedRow, hasRevenue, hasCampaign bool) *MetricTable {
	return computeMetrics(&UnifiedTable{Rows: rows, HasRevenue: hasRevenue, HasCampaign: hasCampaign})
}

// TestAggregateVolumeWeighted pins the aggregation semantics with
// intentionally skewed volumes: the platform CTR must equal the KPI formula
// applied to the summed counts, which differs from the arithmetic mean of
// the per-row CTRs whenever volumes differ.
func TestAggregateVolumeWeighted(t *testing.T) {
	rows := []UnifiedRow{
		// tiny campaign, great CTR: 10 clicks / 100 impressions = 10%
		{Platform: "Facebook", Campaign: "small", Impressions: N(100), Clicks: N(10), Spend: N(1), Conversions: N(1)},
		// huge campaign, poor CTR: 100 clicks / 100000 impressions = 0.1%
		{Platform: "Facebook", Campaign: "large", Impressions: N(100000), Clicks: N(100), Spend: N(50), Conversions: N(2)},
	}

	groups := aggregate(metricTableFromRows(rows, false, true), false)
	require.Len(t, groups, 1)
	g := groups[0]

	weighted := 110.0 / 100100.0 * 100 // ≈0.11%
	arithmeticMean := (10.0 + 0.1) / 2 // 5.05%

	assert.InDelta(t, weighted, g.CTR.Float64, 1e-9)
	assert.Greater(t, math.Abs(arithmeticMean-g.CTR.Float64), 1.0,
		"aggregate CTR must not be the unweighted mean of per-row CTRs")
	assert.InDelta(t, 100100, g.Impressions.Float64, 1e-9)
	assert.InDelta(t, 110, g.Clicks.Float64, 1e-9)
	assert.Equal(t, 2, g.RowCount)
}

func TestAggregateGroupOrderAndKeys(t *testing.T) {
	rows := []UnifiedRow{
		{Platform: "Google", Campaign: "g1", Impressions: N(10), Clicks: N(1), Spend: N(1), Conversions: N(0)},
		{Platform: "Facebook", Campaign: "f1", Impressions: N(10), Clicks: N(1), Spend: N(1), Conversions: N(0)},
		{Platform: "Google", Campaign: "g2", Impressions: N(10), Clicks: N(1), Spend: N(1), Conversions: N(0)},
	}
	mt := metricTableFromRows(rows, false, true)

	platforms := aggregate(mt, false)
	require.Len(t, platforms, 2)
	assert.Equal(t, "Google", platforms[0].Platform, "groups keep first-encounter order")
	assert.Equal(t, "Facebook", platforms[1].Platform)
	assert.Equal(t, 2, platforms[0].RowCount)

	campaigns := aggregate(mt, true)
	require.Len(t, campaigns, 3)
	assert.Equal(t, "g1", campaigns[0].Campaign)
	assert.Equal(t, "f1", campaigns[1].Campaign)
	assert.Equal(t, "g2", campaigns[2].Campaign)
}

func TestAggregateNullCellsExcludedFromSums(t *testing.T) {
	rows := []UnifiedRow{
		{Platform: "A", Impressions: N(100), Clicks: N(10), Spend: Number{}, Conversions: N(1)},
		{Platform: "A", Impressions: N(200), Clicks: Number{}, Spend: N(5), Conversions: N(1)},
		{Platform: "B", Impressions: Number{}, Clicks: Number{}, Spend: Number{}, Conversions: Number{}},
	}

	groups := aggregate(metricTableFromRows(rows, false, false), false)
	require.Len(t, groups, 2)

	a := groups[0]
	assert.InDelta(t, 300, a.Impressions.Float64, 1e-9)
	assert.InDelta(t, 10, a.Clicks.Float64, 1e-9, "null clicks cell contributes nothing, not zero")
	assert.InDelta(t, 5, a.Spend.Float64, 1e-9)

	b := groups[1]
	assert.False(t, b.Impressions.Valid, "a group with no observed values keeps a null sum")
	assert.False(t, b.CTR.Valid)
	assert.False(t, b.CPC.Valid)
}

func TestDistributionsSingleCampaignStdDevIsNull(t *testing.T) {
	rows := []UnifiedRow{
		{Platform: "A", Campaign: "only", Impressions: N(1000), Clicks: N(10), Spend: N(5), Conversions: N(1)},
		{Platform: "A", Campaign: "only", Impressions: N(2000), Clicks: N(30), Spend: N(9), Conversions: N(2)},
	}

	dists := distributions(metricTableFromRows(rows, false, true), 0.5)
	require.NotEmpty(t, dists)
	for _, d := range dists {
		assert.Equal(t, 1, d.Campaigns)
		assert.False(t, d.StdDev.Valid, "%s: single campaign must yield null std dev, not 0", d.Metric)
		assert.False(t, d.HighVariability)
		assert.True(t, d.Mean.Valid)
	}
}

func TestDistributionsCampaignStatistics(t *testing.T) {
	// three campaigns on one platform with CTRs 1%, 2%, 6%
	rows := []UnifiedRow{
		{Platform: "A", Campaign: "c1", Impressions: N(10000), Clicks: N(100), Spend: N(10), Conversions: N(1)},
		{Platform: "A", Campaign: "c2", Impressions: N(10000), Clicks: N(200), Spend: N(20), Conversions: N(2)},
		{Platform: "A", Campaign: "c3", Impressions: N(10000), Clicks: N(600), Spend: N(60), Conversions: N(6)},
	}

	dists := distributions(metricTableFromRows(rows, false, true), 0.5)

	var ctr *DistributionSummary
	for i := range dists {
		if dists[i].Platform == "A" && dists[i].Metric == MetricCTR {
			ctr = &dists[i]
			break
		}
	}
	require.NotNil(t, ctr)

	assert.Equal(t, 3, ctr.Campaigns)
	assert.InDelta(t, 3.0, ctr.Mean.Float64, 1e-9)
	assert.InDelta(t, 2.0, ctr.Median.Float64, 1e-9)
	// sample std dev of {1,2,6} = sqrt(((1-3)^2+(2-3)^2+(6-3)^2)/2) = sqrt(7)
	assert.InDelta(t, 2.6457513, ctr.StdDev.Float64, 1e-6)
	assert.InDelta(t, 1.0, ctr.Min.Float64, 1e-9)
	assert.Equal(t, "c1", ctr.MinCampaign)
	assert.InDelta(t, 6.0, ctr.Max.Float64, 1e-9)
	assert.Equal(t, "c3", ctr.MaxCampaign)

	// std/mean = 0.88 > 0.5
	assert.True(t, ctr.HighVariability)
}

func TestDistributionsUseWeightedCampaignValues(t *testing.T) {
	// campaign "mixed" spans two rows with very different volumes; its single
	// distribution value must be the weighted aggregate, not the row mean.
	rows := []UnifiedRow{
		{Platform: "A", Campaign: "mixed", Impressions: N(100), Clicks: N(10), Spend: N(1), Conversions: N(1)},
		{Platform: "A", Campaign: "mixed", Impressions: N(99900), Clicks: N(90), Spend: N(50), Conversions: N(1)},
		{Platform: "A", Campaign: "other", Impressions: N(1000), Clicks: N(10), Spend: N(2), Conversions: N(1)},
	}

	dists := distributions(metricTableFromRows(rows, false, true), 0.5)

	for _, d := range dists {
		if d.Platform == "A" && d.Metric == MetricCTR {
			// weighted CTR of "mixed" = 100/100000*100 = 0.1
			assert.InDelta(t, 0.1, d.Min.Float64, 1e-9)
			assert.Equal(t, "mixed", d.MinCampaign)
			return
		}
	}
	t.Fatal("platform CTR distribution not found")
}

func TestDistributionsWithoutCampaignColumn(t *testing.T) {
	rows := []UnifiedRow{
		{Platform: "A", Impressions: N(100), Clicks: N(10), Spend: N(1), Conversions: N(1)},
	}
	assert.Nil(t, distributions(metricTableFromRows(rows, false, false), 0.5))
}

func TestDistributionsEntirelyNullMetricOmitted(t *testing.T) {
	// no revenue column anywhere: roas must not appear at all
	rows := []UnifiedRow{
		{Platform: "A", Campaign: "c1", Impressions: N(100), Clicks: N(10), Spend: N(1), Conversions: N(1)},
		{Platform: "A", Campaign: "c2", Impressions: N(200), Clicks: N(20), Spend: N(2), Conversions: N(2)},
	}

	dists := distributions(metricTableFromRows(rows, false, true), 0.5)
	require.NotEmpty(t, dists)
	for _, d := range dists {
		assert.NotEqual(t, MetricROAS, d.Metric)
	}
}

func TestMedian(t *testing.T) {
	assert.InDelta(t, 2.0, median([]float64{3, 1, 2}), 1e-9)
	assert.InDelta(t, 2.5, median([]float64{4, 1, 2, 3}), 1e-9)
	assert.InDelta(t, 7.0, median([]float64{7}), 1e-9)
}
