package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"adpulse/internal/config"
	"adpulse/internal/dataprocessing"
	"adpulse/internal/exporter"
	"adpulse/internal/files"
	"adpulse/internal/infrastructure"
)

func main() {
	in := flag.String("in", "", "directory containing platform report exports (defaults to configured input dir)")
	out := flag.String("out", "", "output directory for consolidated files (defaults to configured output dir)")
	configPath := flag.String("config", "", "path to YAML configuration file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := infrastructure.InitializeLogger(cfg.Logging)

	if *in == "" {
		*in = cfg.Paths.InputDir
	}
	if *out == "" {
		*out = cfg.Paths.OutputDir
	}

	if err := run(context.Background(), cfg, logger, *in, *out); err != nil {
		logger.Error("consolidation failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, inputDir, outputDir string) error {
	start := time.Now()

	discovery := files.NewDiscovery(inputDir)
	infos, err := discovery.FindReportFiles("")
	if err != nil {
		return fmt.Errorf("discover report files: %w", err)
	}
	logger.InfoContext(ctx, "discovered report files",
		slog.Int("count", len(infos)),
		slog.String("dir", inputDir))

	loader := files.NewLoader(logger, cfg.Pipeline.LoaderConcurrency)
	tables, err := loader.LoadAll(ctx, infos)
	if err != nil {
		return fmt.Errorf("load report files: %w", err)
	}

	pipeline := dataprocessing.NewPipeline(logger, cfg.PipelineSettings())

	unified, warnings, err := pipeline.ResolveAndMerge(ctx, tables)
	if err != nil {
		return err
	}
	analysis, err := pipeline.ComputeMetricsAndInsights(ctx, unified)
	if err != nil {
		return err
	}
	quality := dataprocessing.ValidateQuality(unified)

	csvWriter := exporter.NewCSVWriter(outputDir, logger)
	if err := csvWriter.WriteMetricTable("consolidated_metrics.csv", analysis.Metrics); err != nil {
		return fmt.Errorf("write metric table: %w", err)
	}
	if err := csvWriter.WriteGroupSummaries("platform_summary.csv", analysis.Platforms); err != nil {
		return fmt.Errorf("write platform summary: %w", err)
	}
	if len(analysis.Campaigns) > 0 {
		if err := csvWriter.WriteGroupSummaries("campaign_summary.csv", analysis.Campaigns); err != nil {
			return fmt.Errorf("write campaign summary: %w", err)
		}
	}

	reportWriter := exporter.NewReportWriter(outputDir)
	if err := reportWriter.WriteReport("report.txt", analysis, quality, warnings); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	logger.InfoContext(ctx, "consolidation complete",
		slog.Int("tables", len(tables)),
		slog.Int("rows", len(unified.Rows)),
		slog.Int("warnings", len(warnings)),
		slog.Int("insights", len(analysis.Insights)),
		slog.String("output_dir", outputDir),
		slog.Duration("duration", time.Since(start)))

	fmt.Println(exporter.RenderReport(analysis, quality, warnings))
	return nil
}
