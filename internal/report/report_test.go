package report

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devicefailure/internal/data"
	"devicefailure/internal/evaluation"
)

func smallDataset() *data.Dataset {
	jan := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	feb := jan.AddDate(0, 1, 0)
	return data.NewDataset([]data.Record{
		{Date: jan, Device: "A", Attributes: [data.NumAttributes]float64{1, 0}},
		{Date: jan, Device: "B", Attributes: [data.NumAttributes]float64{2, 0}},
		{Date: jan.AddDate(0, 0, 1), Device: "A", Failure: 1, Attributes: [data.NumAttributes]float64{3, 10}},
		{Date: feb, Device: "C", Attributes: [data.NumAttributes]float64{4, 0}},
	})
}

func TestSummarize(t *testing.T) {
	rows, err := Summarize(smallDataset())
	require.NoError(t, err)
	require.Len(t, rows, data.NumAttributes)

	a1 := rows[0]
	assert.Equal(t, "attribute_1", a1.Name)
	assert.Equal(t, 4, a1.Count)
	assert.InDelta(t, 2.5, a1.Mean, 1e-12)
	assert.InDelta(t, 2.5, a1.Median, 1e-12)
	assert.Equal(t, 1.0, a1.Min)
	assert.Equal(t, 4.0, a1.Max)
	assert.InDelta(t, 3.0, a1.MeanFailure, 1e-12)
	assert.InDelta(t, 7.0/3.0, a1.MeanHealthy, 1e-12)

	a2 := rows[1]
	assert.InDelta(t, 0.75, a2.ZeroShare, 1e-12)
	assert.InDelta(t, 10.0, a2.MeanFailure, 1e-12)

	_, err = Summarize(data.NewDataset(nil))
	assert.Error(t, err)
}

func TestMonthlyAndBalance(t *testing.T) {
	ds := smallDataset()
	months := Monthly(ds)
	require.Len(t, months, 2)
	assert.Equal(t, MonthStat{Month: 1, Records: 3, Devices: 2, Failures: 1, Ratio: 1.0 / 3.0}, months[0])
	assert.Equal(t, MonthStat{Month: 2, Records: 1, Devices: 1, Failures: 0, Ratio: 0}, months[1])

	b := ClassBalance(ds)
	assert.Equal(t, Balance{Records: 4, Devices: 3, Failures: 1, Ratio: 0.25}, b)
}

func TestWriteCSVs(t *testing.T) {
	dir := t.TempDir()
	ds := smallDataset()
	rows, err := Summarize(ds)
	require.NoError(t, err)

	path := filepath.Join(dir, "out", "summary.csv")
	require.NoError(t, WriteSummaryCSV(path, rows))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	recs, err := csv.NewReader(bytes.NewReader(b)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, recs, data.NumAttributes+1)
	assert.Equal(t, "attribute", recs[0][0])

	mpath := filepath.Join(dir, "monthly.csv")
	require.NoError(t, WriteMonthlyCSV(mpath, Monthly(ds)))
	b, err = os.ReadFile(mpath)
	require.NoError(t, err)
	assert.Contains(t, string(b), "1,3,2,1,0.333333")
}

func TestPlots(t *testing.T) {
	cfg := data.DefaultGenerateConfig()
	cfg.Rows = 300
	var buf bytes.Buffer
	require.NoError(t, data.GenerateTelemetry(cfg, &buf))
	ds, err := data.ReadCSV(&buf)
	require.NoError(t, err)
	dir := t.TempDir()

	paths, err := PlotAttributeHistograms(ds, dir, 20)
	require.NoError(t, err)
	assert.Len(t, paths, data.NumAttributes)

	require.NoError(t, PlotMonthlyFailureRatio(Monthly(ds), filepath.Join(dir, "monthly.png")))
	curve := []evaluation.ROCPoint{{Threshold: 1}, {Threshold: 0.5, TPR: 0.8, FPR: 0.2}, {Threshold: 0, TPR: 1, FPR: 1}}
	require.NoError(t, PlotROC(curve, 0.8, filepath.Join(dir, "roc.png")))
	ranked := []evaluation.Importance{{Feature: "attribute_2", Score: 0.3}, {Feature: "attribute_4", Score: 0.1}}
	require.NoError(t, PlotImportance(ranked, filepath.Join(dir, "imp.png")))

	for _, name := range []string{"monthly.png", "roc.png", "imp.png"} {
		fi, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Greater(t, fi.Size(), int64(0))
	}

	assert.Error(t, PlotROC(nil, 0, filepath.Join(dir, "x.png")))
}
