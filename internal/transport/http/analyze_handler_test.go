package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adpulse/internal/dataprocessing"
	"adpulse/internal/services"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestHandler(t *testing.T) *AnalyzeHandler {
	t.Helper()
	pipeline := dataprocessing.NewPipeline(testLogger(), dataprocessing.DefaultConfig())
	svc := services.NewAnalysisService(pipeline, nil, testLogger())
	return NewAnalyzeHandler(svc, testLogger())
}

func postAnalyze(t *testing.T, h *AnalyzeHandler, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))

	r := httptest.NewRequest(http.MethodPost, "/", &buf)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, r)
	return w
}

func TestAnalyzeHandler_Success(t *testing.T) {
	h := newTestHandler(t)

	w := postAnalyze(t, h, AnalyzeRequest{
		Tables: []TableInput{
			{
				Source:  "facebook.csv",
				Headers: []string{"Campaign", "Impressions", "Clicks", "Spend", "Conversions"},
				Rows: [][]string{
					{"Spring Sale", "254600", "2546", "1025", "60"},
				},
			},
			{
				Source:  "google.csv",
				Headers: []string{"Campaign", "Impressions", "Link Clicks", "Cost", "Conversions"},
				Rows: [][]string{
					{"Brand", "161600", "4250", "1605", "111"},
				},
			},
		},
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Result  struct {
			Analysis struct {
				Platforms []map[string]any `json:"platforms"`
				Insights  []map[string]any `json:"insights"`
			} `json:"analysis"`
			Warnings []map[string]any `json:"warnings"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.Len(t, resp.Result.Analysis.Platforms, 2)
	assert.NotEmpty(t, resp.Result.Analysis.Insights)
	assert.Empty(t, resp.Result.Warnings)
}

func TestAnalyzeHandler_WarningsSurfaceInResponse(t *testing.T) {
	h := newTestHandler(t)

	w := postAnalyze(t, h, AnalyzeRequest{
		Tables: []TableInput{
			{
				Source:  "broken.csv",
				Headers: []string{"Impressions", "Clicks", "Spend"},
				Rows:    [][]string{{"1000", "ten", "5.00"}},
			},
		},
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Result struct {
			Warnings []struct {
				Code string `json:"code"`
			} `json:"warnings"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	codes := make([]string, 0, len(resp.Result.Warnings))
	for _, wrn := range resp.Result.Warnings {
		codes = append(codes, wrn.Code)
	}
	assert.Contains(t, codes, "MISSING_REQUIRED_FIELD")
	assert.Contains(t, codes, "MALFORMED_VALUE")
}

func TestAnalyzeHandler_EmptyTables(t *testing.T) {
	h := newTestHandler(t)

	w := postAnalyze(t, h, AnalyzeRequest{Tables: []TableInput{}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_FAILED")
}

func TestAnalyzeHandler_MissingSource(t *testing.T) {
	h := newTestHandler(t)

	w := postAnalyze(t, h, AnalyzeRequest{
		Tables: []TableInput{
			{Headers: []string{"Impressions"}},
		},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_FAILED")
}

func TestAnalyzeHandler_MalformedJSON(t *testing.T) {
	h := newTestHandler(t)

	r := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("{not json"))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_REQUEST")
}

func TestMetricsHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := services.NewMetrics(reg)

	pipeline := dataprocessing.NewPipeline(testLogger(), dataprocessing.DefaultConfig())
	svc := services.NewAnalysisService(pipeline, metrics, testLogger())
	h := NewAnalyzeHandler(svc, testLogger())

	postAnalyze(t, h, AnalyzeRequest{
		Tables: []TableInput{
			{
				Source:  "facebook.csv",
				Headers: []string{"Impressions", "Clicks", "Spend", "Conversions"},
				Rows:    [][]string{{"1000", "10", "5.00", "1"}},
			},
		},
	})

	w := httptest.NewRecorder()
	MetricsHandler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "adpulse_analyses_total 1")
	assert.Contains(t, body, "adpulse_rows_consolidated_total 1")
}
