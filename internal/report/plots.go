package report

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"devicefailure/internal/data"
	"devicefailure/internal/evaluation"
)

func save(p *plot.Plot, w, h vg.Length, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return p.Save(w, h, path)
}

// PlotAttributeHistograms writes one histogram per attribute on a log1p
// scale, since most attributes are zero-heavy with long tails.
func PlotAttributeHistograms(ds *data.Dataset, dir string, bins int) ([]string, error) {
	if bins <= 0 {
		bins = 40
	}
	paths := make([]string, 0, len(ds.Attributes))
	for j, name := range ds.Attributes {
		col := Column(ds, j)
		vals := make(plotter.Values, len(col))
		for i, v := range col {
			vals[i] = math.Log1p(math.Max(v, 0))
		}
		h, err := plotter.NewHist(vals, bins)
		if err != nil {
			return paths, fmt.Errorf("report: histogram %s: %w", name, err)
		}
		p := plot.New()
		p.Title.Text = name
		p.X.Label.Text = "log(1 + value)"
		p.Y.Label.Text = "records"
		p.Add(h)
		path := filepath.Join(dir, "hist_"+name+".png")
		if err := save(p, 6*vg.Inch, 4*vg.Inch, path); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func PlotMonthlyFailureRatio(rows []MonthStat, path string) error {
	if len(rows) == 0 {
		return fmt.Errorf("report: no months to plot")
	}
	vals := make(plotter.Values, len(rows))
	names := make([]string, len(rows))
	for i, m := range rows {
		vals[i] = m.Ratio * 100
		names[i] = strconv.Itoa(m.Month)
	}
	bars, err := plotter.NewBarChart(vals, vg.Points(18))
	if err != nil {
		return err
	}
	bars.Color = plotutil.Color(1)
	p := plot.New()
	p.Title.Text = "Failure ratio per month"
	p.X.Label.Text = "month"
	p.Y.Label.Text = "failures per 100 records"
	p.Add(bars)
	p.NominalX(names...)
	return save(p, 8*vg.Inch, 4*vg.Inch, path)
}

func PlotROC(curve []evaluation.ROCPoint, auc float64, path string) error {
	if len(curve) == 0 {
		return fmt.Errorf("report: empty roc curve")
	}
	pts := make(plotter.XYs, len(curve))
	for i, c := range curve {
		pts[i].X = c.FPR
		pts[i].Y = c.TPR
	}
	p := plot.New()
	p.Title.Text = fmt.Sprintf("ROC (AUC %.3f)", auc)
	p.X.Label.Text = "false positive rate"
	p.Y.Label.Text = "true positive rate"
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1
	if err := plotutil.AddLines(p, "model", pts, "chance", plotter.XYs{{X: 0, Y: 0}, {X: 1, Y: 1}}); err != nil {
		return err
	}
	return save(p, 5*vg.Inch, 5*vg.Inch, path)
}

func PlotImportance(ranked []evaluation.Importance, path string) error {
	if len(ranked) == 0 {
		return fmt.Errorf("report: no importances to plot")
	}
	vals := make(plotter.Values, len(ranked))
	names := make([]string, len(ranked))
	for i, r := range ranked {
		vals[i] = r.Score
		names[i] = r.Feature
	}
	bars, err := plotter.NewBarChart(vals, vg.Points(16))
	if err != nil {
		return err
	}
	bars.Color = plotutil.Color(0)
	p := plot.New()
	p.Title.Text = "Feature importance (mean decrease Gini)"
	p.Add(bars)
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	return save(p, 8*vg.Inch, 4*vg.Inch, path)
}
