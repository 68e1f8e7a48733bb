package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/fortify-index/mfi/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleComparison() schema.ComparisonResult {
	return schema.ComparisonResult{
		Details: []schema.ComparisonDetail{
			{
				EntityKey: "1", EntityName: "Golden Oil", CompanyName: "Acme Foods",
				BeforeScore: 60, AfterScore: 72.5, Delta: 12.5, BeforeRank: 3, AfterRank: 1, RankDelta: 2,
				BeforeBand: schema.PartlyFortified, AfterBand: schema.AdequatelyFortified, Status: schema.ActiveStatus,
			},
			{
				EntityKey: "9", EntityName: "Fresh Salt", CompanyName: "Sea Co",
				AfterScore: 40, Delta: 40, AfterRank: 2, AfterBand: schema.NoDataBand, Status: schema.NewStatus,
			},
			{
				EntityKey: "4", EntityName: "Old Rice", CompanyName: "Paddy Ltd",
				BeforeScore: 25, Delta: -25, BeforeRank: 5, BeforeBand: schema.NotFortified, Status: schema.InactiveStatus,
			},
		},
		Summary: schema.ComparisonSummary{
			BaseCycle: "2023", TargetCycle: "2024", NetScoreDelta: 27.5,
			TotalNewEntities: 1, TotalInactive: 1, TotalActiveEntities: 1, TotalBandChanges: 1,
		},
	}
}

func TestWriteComparisonResults_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteComparisonResults(&buf, sampleComparison(), testConfig(schema.TextOut), time.Second))

	out := buf.String()
	for _, want := range []string{
		"Golden Oil", "+12.5 ▲", "-25.0 ▼", "+2", "new #2", "was #5",
		"Partly Fortified → Adequately Fortified",
		"Showing 3 changes from 2023 to 2024",
		"Net score delta: 27.5, Band changes: 1",
		"New entities: 1, Inactive entities: 1, Active entities: 1",
	} {
		assert.Contains(t, out, want)
	}
}

func TestWriteComparisonResults_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteComparisonResults(&buf, sampleComparison(), testConfig(schema.CSVOut), time.Second))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, comparisonHeader, rows[0])
	assert.Equal(t, []string{"1", "1", "Golden Oil", "Acme Foods", "60.0", "72.5", "12.5", "3", "1", "2",
		"Partly Fortified", "Adequately Fortified", "active"}, rows[1])
	assert.Equal(t, "new", rows[2][12])
}

func TestWriteComparisonResults_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteComparisonResults(&buf, sampleComparison(), testConfig(schema.JSONOut), time.Second))

	var decoded schema.ComparisonResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, sampleComparison(), decoded)
}

func TestWriteComparisonResults_Parquet(t *testing.T) {
	var buf bytes.Buffer
	err := WriteComparisonResults(&buf, sampleComparison(), testConfig(schema.ParquetOut), time.Second)
	assert.Error(t, err)
}

func TestFormatBandChange(t *testing.T) {
	same := schema.ComparisonDetail{BeforeBand: schema.NotFortified, AfterBand: schema.NotFortified, Status: schema.ActiveStatus}
	assert.Equal(t, "Not Fortified", formatBandChange(same))

	unset := schema.ComparisonDetail{Status: schema.ActiveStatus}
	assert.Equal(t, "No Data", formatBandChange(unset))
}

func TestFormatRankDelta(t *testing.T) {
	assert.Equal(t, "-3", formatRankDelta(schema.ComparisonDetail{RankDelta: -3, Status: schema.ActiveStatus}))
	assert.Equal(t, "0", formatRankDelta(schema.ComparisonDetail{Status: schema.ActiveStatus}))
}

func TestWriteBandResult(t *testing.T) {
	result := schema.BandResult{Compliance: []float64{85, 70}, Strategy: schema.AnyStrategy, Band: schema.AdequatelyFortified}

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteBandResult(&buf, result, testConfig(schema.TextOut)))
		assert.Equal(t, "Adequately Fortified (compliance: 85.0;70.0, strategy: any)\n", buf.String())
	})

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteBandResult(&buf, result, testConfig(schema.CSVOut)))
		assert.Equal(t, "compliance,strategy,band\n85.0;70.0,any,Adequately Fortified\n", buf.String())
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteBandResult(&buf, result, testConfig(schema.JSONOut)))
		var decoded schema.BandResult
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, result, decoded)
	})

	t.Run("xlsx", func(t *testing.T) {
		var buf bytes.Buffer
		assert.Error(t, WriteBandResult(&buf, result, testConfig(schema.XLSXOut)))
	})
}

func TestWriteBandCountResults(t *testing.T) {
	counts := []schema.BandCount{
		{Band: schema.FullyFortified, Count: 1},
		{Band: schema.NotFortified, Count: 3},
	}

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteBandCountResults(&buf, "2024", counts, testConfig(schema.TextOut)))
		out := buf.String()
		assert.Contains(t, out, "Fully Fortified")
		assert.Contains(t, out, "75.0")
		assert.Contains(t, out, "4 entities in 2024 cycle")
	})

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteBandCountResults(&buf, "2024", counts, testConfig(schema.CSVOut)))
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		assert.Equal(t, []string{"band,count,share", "Fully Fortified,1,25.0", "Not Fortified,3,75.0"}, lines)
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteBandCountResults(&buf, "2024", counts, testConfig(schema.JSONOut)))
		assert.Contains(t, buf.String(), `"total": 4`)
	})

	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteBandCountResults(&buf, "", nil, testConfig(schema.CSVOut)))
		assert.Equal(t, "band,count,share\n", buf.String())
	})
}
