// Package http contains the HTTP transport layer: chi handlers that accept
// raw report tables, hand them to the analysis service and render the
// consolidated result as JSON. Errors follow the structured APIError shape
// from internal/errors.
package http
