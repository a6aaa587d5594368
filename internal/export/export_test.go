package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketLens/internal/model"
)

func sampleAnalysis() *model.Analysis {
	d0 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	d1 := d0.AddDate(0, 0, 1)
	return &model.Analysis{
		Series: &model.PriceSeries{
			Symbol: "^GSPC",
			Bars: []model.OHLCV{
				{Time: d0, Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 1000},
				{Time: d1, Open: 10.5, High: 12, Low: 10, Close: 11.5, Volume: 2000},
			},
		},
		Indicators: model.IndicatorSeries{
			{Time: d0, Close: 10.5, EMA: 10.5},
			{Time: d1, Close: 11.5, SMA: null.FloatFrom(11), EMA: 10.75, RSI: null.FloatFrom(100)},
		},
	}
}

func TestNewSeriesExporter(t *testing.T) {
	for _, f := range []string{"csv", " CSV ", "json", "parquet"} {
		e, err := NewSeriesExporter(f)
		require.NoError(t, err, f)
		assert.Equal(t, strings.ToLower(strings.TrimSpace(f)), e.Extension())
	}
	_, err := NewSeriesExporter("xlsx")
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestRows(t *testing.T) {
	rows := Rows(sampleAnalysis())
	require.Len(t, rows, 2)
	assert.Equal(t, "2024-01-02", rows[0].Date)
	assert.Nil(t, rows[0].SMA)
	assert.Nil(t, rows[0].RSI)
	require.NotNil(t, rows[1].SMA)
	assert.Equal(t, 11.0, *rows[1].SMA)
	assert.Nil(t, Rows(nil))
}

func TestWriteRowsCSV_EmptyCellsForUndefined(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRowsCSV(&buf, Rows(sampleAnalysis())))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "date,open,high,low,close,volume,sma,ema,rsi", lines[0])
	assert.Equal(t, "2024-01-02,10,11,9,10.5,1000,,10.5,", lines[1])
	assert.Equal(t, "2024-01-03,10.5,12,10,11.5,2000,11,10.75,100", lines[2])
}

func TestWriteAnalysis_JSON(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	path, err := WriteAnalysis(dir, sampleAnalysis(), JSONExporter{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "_GSPC_20240102_20240103.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got []map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 2)
	assert.Nil(t, got[0]["sma"])
	assert.Equal(t, 100.0, got[1]["rsi"])
}

func TestWriteAnalysis_Parquet(t *testing.T) {
	path, err := WriteAnalysis(t.TempDir(), sampleAnalysis(), ParquetExporter{})
	require.NoError(t, err)

	rows, err := parquet.ReadFile[Row](path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Nil(t, rows[0].SMA)
	require.NotNil(t, rows[1].RSI)
	assert.Equal(t, 100.0, *rows[1].RSI)
	assert.Equal(t, 11.5, rows[1].Close)
}

func TestWriteAnalysis_Empty(t *testing.T) {
	_, err := WriteAnalysis(t.TempDir(), &model.Analysis{}, CSVExporter{})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestWriteRecommendationsCSV(t *testing.T) {
	var buf bytes.Buffer
	recs := []model.Recommendation{
		{Item: model.Item{ID: 5, Name: "Sandals", Category: "Shoes"}, Score: 0.61234},
		{Item: model.Item{ID: 6, Name: "Boots, Winter", Category: "Shoes"}, Score: 0.5},
	}
	require.NoError(t, WriteRecommendationsCSV(&buf, recs))
	assert.Equal(t,
		"rank,id,name,category,score\n1,5,Sandals,Shoes,0.6123\n2,6,\"Boots, Winter\",Shoes,0.5000\n",
		buf.String())
}
