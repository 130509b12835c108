package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApplication(t *testing.T) *Application {
	t.Helper()
	t.Setenv("ADPULSE_SERVER_RATE_LIMIT_ENABLED", "false")

	a, err := NewApplication("")
	require.NoError(t, err)
	return a
}

func TestApplication_HealthEndpoint(t *testing.T) {
	a := newTestApplication(t)

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestApplication_VersionEndpoint(t *testing.T) {
	a := newTestApplication(t)

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/version", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), VERSION)
}

func TestApplication_AnalyzeEndToEnd(t *testing.T) {
	a := newTestApplication(t)

	payload := map[string]any{
		"tables": []map[string]any{
			{
				"source":  "facebook.csv",
				"headers": []string{"Campaign", "Impressions", "Clicks", "Spend", "Conversions"},
				"rows": [][]string{
					{"Spring Sale", "254600", "2546", "1025", "60"},
				},
			},
			{
				"source":  "google.csv",
				"headers": []string{"Campaign", "Impressions", "Link Clicks", "Cost", "Conversions"},
				"rows": [][]string{
					{"Brand", "161600", "4250", "1605", "111"},
				},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(payload))

	r := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", &buf)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Result  struct {
			Analysis struct {
				Insights []struct {
					Message string `json:"message"`
				} `json:"insights"`
			} `json:"analysis"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Result.Analysis.Insights)
}

func TestApplication_MetricsEndpoint(t *testing.T) {
	a := newTestApplication(t)

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "adpulse_analyses_total")
}

func TestApplication_RequestIDHeader(t *testing.T) {
	a := newTestApplication(t)

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
