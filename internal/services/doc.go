// Package services contains the application service layer sitting between
// the HTTP transport and the consolidation pipeline. AnalysisService runs
// the pipeline and records Prometheus metrics about each run; HealthService
// answers liveness and version queries.
package services
