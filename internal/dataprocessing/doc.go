// Package dataprocessing implements the ad-performance consolidation
// pipeline: column resolution, table merging, KPI derivation, aggregation,
// and insight generation.
//
// The pipeline is a chain of pure transformations over in-memory tables:
//
//	RawTable -> resolver -> merger -> UnifiedTable
//	UnifiedTable -> KPI engine -> MetricTable
//	MetricTable -> aggregator -> GroupSummary / DistributionSummary
//	summaries -> insight generator -> []Insight
//
// Each stage returns a new structure and never mutates its input. Recoverable
// data-quality conditions (unmappable required columns, ambiguous headers,
// malformed numeric cells) surface as Warnings alongside the result; the only
// fatal condition is an empty input set.
//
// Two statistics are deliberately kept apart: GroupSummary KPIs are
// volume-weighted (recomputed from summed counts), while DistributionSummary
// describes the unweighted spread of per-campaign values. Averaging per-row
// ratios instead would bias aggregates toward small-volume rows.
//
// Example usage:
//
//	pipeline := dataprocessing.NewPipeline(logger, dataprocessing.DefaultConfig())
//
//	unified, warnings, err := pipeline.ResolveAndMerge(ctx, tables)
//	if err != nil {
//	    return err
//	}
//
//	analysis, err := pipeline.ComputeMetricsAndInsights(ctx, unified)
package dataprocessing
