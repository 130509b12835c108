// Package app wires the HTTP server together: configuration, logging,
// the Prometheus registry, the analysis service and the chi router with
// its middleware chain.
package app
