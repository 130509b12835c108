package exporter

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adpulse/internal/dataprocessing"
)

func metricFixture() *dataprocessing.MetricTable {
	n := dataprocessing.N
	return &dataprocessing.MetricTable{
		ExtraColumns: []string{"notes"},
		Rows: []dataprocessing.MetricRow{
			{
				UnifiedRow: dataprocessing.UnifiedRow{
					Source:      "facebook.csv",
					Platform:    "Facebook",
					Campaign:    "fb-1",
					Impressions: n(1000),
					Clicks:      n(10),
					Spend:       n(5),
					Conversions: n(1),
					Extra:       map[string]string{"notes": "ok"},
				},
				CTR: n(1.0),
				CPC: n(0.5),
				CPM: n(5.0),
				CPA: n(5.0),
			},
			{
				UnifiedRow: dataprocessing.UnifiedRow{
					Source:   "broken.csv",
					Platform: "broken.csv",
				},
			},
		},
	}
}

func readCSVFile(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := strings.TrimPrefix(string(data), "\xef\xbb\xbf")
	records, err := csv.NewReader(strings.NewReader(content)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriteMetricTable(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir, nil)

	require.NoError(t, w.WriteMetricTable("out/consolidated.csv", metricFixture()))

	records := readCSVFile(t, filepath.Join(dir, "out", "consolidated.csv"))
	require.Len(t, records, 3)

	header := records[0]
	assert.Equal(t, "source", header[0])
	assert.Equal(t, "ctr", header[9])
	assert.Equal(t, "notes", header[len(header)-1], "extra columns come after canonical ones")

	assert.Equal(t, "Facebook", records[1][1])
	assert.Equal(t, "1.00", records[1][9])
	assert.Equal(t, "ok", records[1][len(header)-1])

	// null metrics export as empty cells, never zeros
	assert.Equal(t, "", records[2][4], "null impressions cell")
	assert.Equal(t, "", records[2][9], "null ctr cell")
}

func TestWriteMetricTableBOM(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir, nil)
	require.NoError(t, w.WriteMetricTable("consolidated.csv", metricFixture()))

	data, err := os.ReadFile(filepath.Join(dir, "consolidated.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "\xef\xbb\xbf"), "export carries a UTF-8 BOM for Excel")
}

func TestWriteGroupSummaries(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir, nil)
	n := dataprocessing.N

	groups := []dataprocessing.GroupSummary{
		{Platform: "Facebook", RowCount: 2, Impressions: n(254600), Clicks: n(2546), Spend: n(1025), Conversions: n(60), CTR: n(1.0), CPC: n(0.402592)},
	}
	require.NoError(t, w.WriteGroupSummaries("summary.csv", groups))

	records := readCSVFile(t, filepath.Join(dir, "summary.csv"))
	require.Len(t, records, 2)
	assert.Equal(t, "Facebook", records[1][0])
	assert.Equal(t, "2", records[1][2])
	assert.Equal(t, "0.40", records[1][9], "metrics are formatted with two decimals")
}
