package dataprocessing

import (
	"context"
	"log/slog"
)

// Config is the explicit per-pipeline configuration. There is no
// process-wide state: alias lists, grouping behavior and the variance
// threshold all travel with the Pipeline, so repeated invocations are
// isolated and reproducible.
type Config struct {
	// Aliases maps each canonical field to its priority-ordered recognized
	// names. Empty means DefaultAliases.
	Aliases map[Field][]string
	// VarianceThreshold is the std-dev/mean fraction above which a KPI is
	// flagged as highly variable. Zero means the 0.5 default.
	VarianceThreshold float64
	// GroupByCampaign additionally produces platform-and-campaign group
	// summaries alongside the per-platform ones.
	GroupByCampaign bool
}

// DefaultConfig returns the built-in alias table and a 50% variance
// threshold, with campaign grouping enabled.
func DefaultConfig() Config {
	return Config{
		Aliases:           DefaultAliases(),
		VarianceThreshold: 0.5,
		GroupByCampaign:   true,
	}
}

// Analysis bundles everything the second pipeline stage produces.
type Analysis struct {
	Metrics *MetricTable `json:"metrics"`
	// Platforms holds one volume-weighted summary per platform, in
	// first-encounter order.
	Platforms []GroupSummary `json:"platforms"`
	// Campaigns holds platform-and-campaign summaries when campaign grouping
	// is enabled and a campaign column exists.
	Campaigns     []GroupSummary        `json:"campaigns,omitempty"`
	Distributions []DistributionSummary `json:"distributions,omitempty"`
	Insights      []Insight             `json:"insights"`
}

// Pipeline is the core transformation sequence: resolve, merge, derive,
// aggregate, explain. Every stage returns a new structure; inputs are never
// mutated, and the whole run is synchronous.
type Pipeline struct {
	logger *slog.Logger
	cfg    Config
}

// NewPipeline creates a pipeline with the given configuration. A nil logger
// falls back to slog.Default(); zero config fields fall back to defaults.
func NewPipeline(logger *slog.Logger, cfg Config) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Aliases == nil {
		cfg.Aliases = DefaultAliases()
	}
	if cfg.VarianceThreshold <= 0 {
		cfg.VarianceThreshold = 0.5
	}
	return &Pipeline{
		logger: logger.With(slog.String("component", "pipeline")),
		cfg:    cfg,
	}
}

// ResolveAndMerge rewrites each table onto the canonical schema and
// concatenates them into one unified dataset. Recoverable data-quality
// conditions come back as warnings; the only error is an empty input set.
func (p *Pipeline) ResolveAndMerge(ctx context.Context, tables []RawTable) (*UnifiedTable, []Warning, error) {
	unified, warnings, err := merge(tables, p.cfg.Aliases)
	if err != nil {
		return nil, nil, err
	}
	p.logger.InfoContext(ctx, "tables resolved and merged",
		slog.Int("tables", len(tables)),
		slog.Int("rows", len(unified.Rows)),
		slog.Int("warnings", len(warnings)))
	return unified, warnings, nil
}

// ComputeMetricsAndInsights derives per-row KPIs, aggregates them by
// platform (and campaign when configured), computes cross-campaign
// distributions, and generates the ordered insight list.
func (p *Pipeline) ComputeMetricsAndInsights(ctx context.Context, t *UnifiedTable) (*Analysis, error) {
	if t == nil || len(t.Rows) == 0 {
		return nil, ErrEmptyInput
	}

	metrics := computeMetrics(t)
	analysis := &Analysis{
		Metrics:       metrics,
		Platforms:     aggregate(metrics, false),
		Distributions: distributions(metrics, p.cfg.VarianceThreshold),
	}
	if p.cfg.GroupByCampaign && metrics.HasCampaign {
		analysis.Campaigns = aggregate(metrics, true)
	}
	analysis.Insights = generateInsights(analysis.Platforms, analysis.Distributions)

	p.logger.InfoContext(ctx, "metrics and insights computed",
		slog.Int("rows", len(metrics.Rows)),
		slog.Int("platforms", len(analysis.Platforms)),
		slog.Int("insights", len(analysis.Insights)))
	return analysis, nil
}
