// Package report produces the descriptive tables and charts of the
// exploratory pass. Nothing here feeds back into training.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/montanaflynn/stats"

	"devicefailure/internal/data"
)

type AttributeSummary struct {
	Name        string  `json:"name"`
	Count       int     `json:"count"`
	Mean        float64 `json:"mean"`
	StdDev      float64 `json:"std_dev"`
	Min         float64 `json:"min"`
	Q1          float64 `json:"q1"`
	Median      float64 `json:"median"`
	Q3          float64 `json:"q3"`
	Max         float64 `json:"max"`
	ZeroShare   float64 `json:"zero_share"`
	MeanFailure float64 `json:"mean_failure"`
	MeanHealthy float64 `json:"mean_healthy"`
}

type MonthStat struct {
	Month    int     `json:"month"`
	Records  int     `json:"records"`
	Devices  int     `json:"devices"`
	Failures int     `json:"failures"`
	Ratio    float64 `json:"ratio"`
}

type Balance struct {
	Records  int     `json:"records"`
	Devices  int     `json:"devices"`
	Failures int     `json:"failures"`
	Ratio    float64 `json:"ratio"`
}

// Column returns attribute j of every record.
func Column(ds *data.Dataset, j int) []float64 {
	out := make([]float64, ds.Len())
	for i, r := range ds.Records {
		out[i] = r.Attributes[j]
	}
	return out
}

func Summarize(ds *data.Dataset) ([]AttributeSummary, error) {
	if ds.Len() == 0 {
		return nil, fmt.Errorf("report: empty dataset")
	}
	out := make([]AttributeSummary, 0, data.NumAttributes)
	for j, name := range ds.Attributes {
		col := Column(ds, j)
		s := AttributeSummary{Name: name, Count: len(col)}
		var err error
		if s.Mean, err = stats.Mean(col); err != nil {
			return nil, fmt.Errorf("report: %s mean: %w", name, err)
		}
		if s.StdDev, err = stats.StandardDeviationSample(col); err != nil {
			return nil, fmt.Errorf("report: %s sd: %w", name, err)
		}
		if s.Min, err = stats.Min(col); err != nil {
			return nil, err
		}
		if s.Max, err = stats.Max(col); err != nil {
			return nil, err
		}
		if s.Median, err = stats.Median(col); err != nil {
			return nil, err
		}
		if s.Q1, err = stats.PercentileNearestRank(col, 25); err != nil {
			return nil, err
		}
		if s.Q3, err = stats.PercentileNearestRank(col, 75); err != nil {
			return nil, err
		}

		var fail, healthy []float64
		zeros := 0
		for i, r := range ds.Records {
			if col[i] == 0 {
				zeros++
			}
			if r.Failure == 1 {
				fail = append(fail, col[i])
			} else {
				healthy = append(healthy, col[i])
			}
		}
		s.ZeroShare = float64(zeros) / float64(len(col))
		s.MeanFailure, _ = stats.Mean(fail)
		s.MeanHealthy, _ = stats.Mean(healthy)
		out = append(out, s)
	}
	return out, nil
}

func Monthly(ds *data.Dataset) []MonthStat {
	type acc struct {
		records, failures int
		devices           map[string]struct{}
	}
	by := map[int]*acc{}
	for _, r := range ds.Records {
		a, ok := by[r.Month]
		if !ok {
			a = &acc{devices: map[string]struct{}{}}
			by[r.Month] = a
		}
		a.records++
		a.failures += r.Failure
		a.devices[r.Device] = struct{}{}
	}
	out := make([]MonthStat, 0, len(by))
	for m, a := range by {
		out = append(out, MonthStat{
			Month:    m,
			Records:  a.records,
			Devices:  len(a.devices),
			Failures: a.failures,
			Ratio:    float64(a.failures) / float64(a.records),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

func ClassBalance(ds *data.Dataset) Balance {
	devices := map[string]struct{}{}
	b := Balance{Records: ds.Len()}
	for _, r := range ds.Records {
		devices[r.Device] = struct{}{}
		b.Failures += r.Failure
	}
	b.Devices = len(devices)
	if b.Records > 0 {
		b.Ratio = float64(b.Failures) / float64(b.Records)
	}
	return b
}

func f6(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }

func WriteSummaryCSV(path string, rows []AttributeSummary) error {
	recs := [][]string{{"attribute", "count", "mean", "sd", "min", "q1", "median", "q3", "max", "zero_share", "mean_failure", "mean_healthy"}}
	for _, s := range rows {
		recs = append(recs, []string{s.Name, strconv.Itoa(s.Count), f6(s.Mean), f6(s.StdDev), f6(s.Min), f6(s.Q1),
			f6(s.Median), f6(s.Q3), f6(s.Max), f6(s.ZeroShare), f6(s.MeanFailure), f6(s.MeanHealthy)})
	}
	return writeCSV(path, recs)
}

func WriteMonthlyCSV(path string, rows []MonthStat) error {
	recs := [][]string{{"month", "records", "devices", "failures", "ratio"}}
	for _, m := range rows {
		recs = append(recs, []string{strconv.Itoa(m.Month), strconv.Itoa(m.Records), strconv.Itoa(m.Devices),
			strconv.Itoa(m.Failures), f6(m.Ratio)})
	}
	return writeCSV(path, recs)
}

func writeCSV(path string, recs [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.WriteAll(recs); err != nil {
		return err
	}
	return f.Close()
}
