package services

import (
	"context"
	"log/slog"
	"time"

	"adpulse/internal/dataprocessing"
)

// AnalysisResult is the complete output of one consolidation run.
type AnalysisResult struct {
	Analysis *dataprocessing.Analysis      `json:"analysis"`
	Quality  *dataprocessing.QualityReport `json:"quality"`
	Warnings []dataprocessing.Warning      `json:"warnings"`
}

// AnalysisService runs the consolidation pipeline and records metrics
// about each run. It is safe for concurrent use.
type AnalysisService struct {
	pipeline *dataprocessing.Pipeline
	metrics  *Metrics
	logger   *slog.Logger
}

// NewAnalysisService creates an analysis service. A nil metrics disables
// instrumentation; a nil logger falls back to slog.Default().
func NewAnalysisService(pipeline *dataprocessing.Pipeline, metrics *Metrics, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{
		pipeline: pipeline,
		metrics:  metrics,
		logger:   logger.With(slog.String("component", "analysis_service")),
	}
}

// Analyze consolidates the given raw tables and derives metrics, summaries
// and insights. The only fatal condition is an empty input set; all data
// irregularities come back as warnings inside the result.
func (s *AnalysisService) Analyze(ctx context.Context, tables []dataprocessing.RawTable) (*AnalysisResult, error) {
	start := time.Now()

	unified, warnings, err := s.pipeline.ResolveAndMerge(ctx, tables)
	if err != nil {
		s.recordFailure()
		return nil, err
	}

	analysis, err := s.pipeline.ComputeMetricsAndInsights(ctx, unified)
	if err != nil {
		s.recordFailure()
		return nil, err
	}

	quality := dataprocessing.ValidateQuality(unified)

	s.recordSuccess(len(unified.Rows), warnings, time.Since(start))
	s.logger.InfoContext(ctx, "analysis complete",
		slog.Int("tables", len(tables)),
		slog.Int("rows", len(unified.Rows)),
		slog.Int("warnings", len(warnings)),
		slog.Int("insights", len(analysis.Insights)),
		slog.Duration("duration", time.Since(start)),
	)

	return &AnalysisResult{
		Analysis: analysis,
		Quality:  quality,
		Warnings: warnings,
	}, nil
}

func (s *AnalysisService) recordSuccess(rows int, warnings []dataprocessing.Warning, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.AnalysesTotal.Inc()
	s.metrics.RowsConsolidated.Add(float64(rows))
	s.metrics.AnalysisDuration.Observe(elapsed.Seconds())
	for _, w := range warnings {
		s.metrics.WarningsTotal.WithLabelValues(string(w.Code)).Inc()
	}
}

func (s *AnalysisService) recordFailure() {
	if s.metrics == nil {
		return
	}
	s.metrics.AnalysisFailures.Inc()
}
