package dataprocessing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline(nil, Config{})

	assert.NotNil(t, p.logger)
	assert.Equal(t, DefaultAliases(), p.cfg.Aliases)
	assert.InDelta(t, 0.5, p.cfg.VarianceThreshold, 1e-9)
}

func TestPipelineEndToEnd(t *testing.T) {
	ctx := context.Background()
	p := NewPipeline(nil, DefaultConfig())

	tables := []RawTable{
		{
			Source:  "Facebook",
			Headers: []string{"Campaign Name", "Impressions", "Link Clicks", "Amount Spent (USD)", "Results"},
			Rows: [][]string{
				{"fb-brand", "154600", "1546", "625", "35"},
				{"fb-retarget", "100000", "1000", "400", "25"},
			},
		},
		{
			Source:  "Google",
			Headers: []string{"campaign", "impressions", "clicks", "cost", "conversions"},
			Rows: [][]string{
				{"g-search", "161600", "4250", "1605", "111"},
			},
		},
		{
			Source:  "LinkedIn",
			Headers: []string{"Campaign", "Impressions", "Clicks", "Spend", "Conversions"},
			Rows: [][]string{
				{"li-b2b", "60000", "904", "756", "42"},
			},
		},
	}

	unified, warnings, err := p.ResolveAndMerge(ctx, tables)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, unified.Rows, 4)
	assert.True(t, unified.HasCampaign)
	assert.False(t, unified.HasRevenue)

	analysis, err := p.ComputeMetricsAndInsights(ctx, unified)
	require.NoError(t, err)
	require.Len(t, analysis.Platforms, 3)

	facebook, google, linkedin := analysis.Platforms[0], analysis.Platforms[1], analysis.Platforms[2]
	assert.Equal(t, "Facebook", facebook.Platform)
	assert.InDelta(t, 1.0, facebook.CTR.Float64, 0.005)
	assert.InDelta(t, 2.63, google.CTR.Float64, 0.005)
	assert.InDelta(t, 4.65, linkedin.ConversionRate.Float64, 0.005)

	require.NotEmpty(t, analysis.Insights)
	assert.Equal(t, "Google has the lowest CPC ($0.38)", analysis.Insights[0].Message)

	// campaign grouping is enabled by default and a campaign column exists
	require.Len(t, analysis.Campaigns, 4)
	assert.Equal(t, "fb-brand", analysis.Campaigns[0].Campaign)
	require.NotEmpty(t, analysis.Distributions)

	// no revenue anywhere: roas stays null in every row
	for _, row := range analysis.Metrics.Rows {
		assert.False(t, row.ROAS.Valid)
	}
}

func TestPipelineEmptyInput(t *testing.T) {
	ctx := context.Background()
	p := NewPipeline(nil, DefaultConfig())

	_, _, err := p.ResolveAndMerge(ctx, nil)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = p.ComputeMetricsAndInsights(ctx, nil)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = p.ComputeMetricsAndInsights(ctx, &UnifiedTable{})
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestPipelineCustomAliases(t *testing.T) {
	ctx := context.Background()
	p := NewPipeline(nil, Config{
		Aliases: map[Field][]string{
			FieldImpressions: {"eyeballs"},
			FieldClicks:      {"taps"},
			FieldSpend:       {"burn"},
			FieldConversions: {"wins"},
		},
	})

	unified, warnings, err := p.ResolveAndMerge(ctx, []RawTable{{
		Source:  "weird.csv",
		Headers: []string{"eyeballs", "taps", "burn", "wins"},
		Rows:    [][]string{{"1000", "10", "5", "1"}},
	}})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.True(t, unified.Rows[0].Impressions.Valid)
	assert.InDelta(t, 1000, unified.Rows[0].Impressions.Float64, 1e-9)
}
