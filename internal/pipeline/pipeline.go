// Package pipeline runs the forward analysis flow: load, validate, describe,
// split by month, tune, evaluate on the later window, refit on everything.
package pipeline

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"devicefailure/internal/config"
	"devicefailure/internal/data"
	"devicefailure/internal/evaluation"
	"devicefailure/internal/features"
	"devicefailure/internal/models"
	"devicefailure/internal/persistence"
	"devicefailure/internal/report"
	"devicefailure/internal/split"
	"devicefailure/internal/training"
	"devicefailure/internal/tuning"
)

type Outcome struct {
	RunID      uuid.UUID
	Windows    *split.Windows
	Tuning     *tuning.Result
	Holdout    *evaluation.Report
	Importance []evaluation.Importance
	Final      *training.TrainedModel
	ModelPath  string
}

type Runner struct {
	Config config.Config
	Logger *zap.Logger
	// Loader overrides the loader built from Config, e.g. for tests.
	Loader interface{ Load() (*data.Dataset, error) }
	// Plots toggles chart rendering; tables are always written when ReportDir is set.
	Plots bool
}

// Run executes the flow with charts enabled.
func Run(cfg config.Config, logger *zap.Logger) (*Outcome, error) {
	return (&Runner{Config: cfg, Logger: logger, Plots: true}).Run()
}

func (r *Runner) log() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

func (r *Runner) loader() (interface{ Load() (*data.Dataset, error) }, error) {
	if r.Loader != nil {
		return r.Loader, nil
	}
	policy, err := r.Config.Policy()
	if err != nil {
		return nil, err
	}
	return data.NewLoader(r.Config.DataURL, r.Config.CachePath, policy), nil
}

// LoadDataset loads and validates the dataset.
func (r *Runner) LoadDataset() (*data.Dataset, error) {
	log := r.log()
	l, err := r.loader()
	if err != nil {
		return nil, err
	}
	if dl, ok := l.(*data.Loader); ok {
		log.Info("Loading dataset",
			zap.String("cache", dl.CachePath),
			zap.String("policy", dl.Policy.String()),
			zap.Bool("fetch", dl.Fetched()),
		)
	}
	ds, err := l.Load()
	if err != nil {
		return nil, err
	}
	if err := data.Validate(ds); err != nil {
		return nil, err
	}
	b := report.ClassBalance(ds)
	log.Info("Dataset loaded",
		zap.Int("records", b.Records),
		zap.Int("devices", b.Devices),
		zap.Int("failures", b.Failures),
		zap.Int("months", ds.Months()),
	)
	return ds, nil
}

// Describe writes the exploratory tables and, when enabled, the charts.
func (r *Runner) Describe(ds *data.Dataset) error {
	dir := r.Config.ReportDir
	if dir == "" {
		return nil
	}
	log := r.log()
	summary, err := report.Summarize(ds)
	if err != nil {
		return err
	}
	monthly := report.Monthly(ds)
	if err := report.WriteSummaryCSV(filepath.Join(dir, "summary.csv"), summary); err != nil {
		return fmt.Errorf("pipeline: write summary: %w", err)
	}
	if err := report.WriteMonthlyCSV(filepath.Join(dir, "monthly.csv"), monthly); err != nil {
		return fmt.Errorf("pipeline: write monthly: %w", err)
	}
	for _, m := range monthly {
		log.Debug("Month", zap.Int("month", m.Month), zap.Int("records", m.Records), zap.Int("failures", m.Failures))
	}
	if !r.Plots {
		return nil
	}
	if _, err := report.PlotAttributeHistograms(ds, filepath.Join(dir, "histograms"), 40); err != nil {
		log.Warn("Histogram rendering failed", zap.Error(err))
	}
	if err := report.PlotMonthlyFailureRatio(monthly, filepath.Join(dir, "monthly_failure_ratio.png")); err != nil {
		log.Warn("Monthly chart rendering failed", zap.Error(err))
	}
	log.Info("Exploratory report written", zap.String("dir", dir))
	return nil
}

// Run executes the whole flow. The holdout model is discarded after
// evaluation; the model refit on the full dataset is returned and saved.
func (r *Runner) Run() (*Outcome, error) {
	cfg := r.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	out := &Outcome{RunID: uuid.New()}
	log := r.log().With(zap.String("run_id", out.RunID.String()))

	learner, err := models.LookupLearner(cfg.Learner)
	if err != nil {
		return nil, err
	}
	grid, err := cfg.TuningGrid()
	if err != nil {
		return nil, err
	}

	ds, err := r.LoadDataset()
	if err != nil {
		return nil, err
	}
	if err := r.Describe(ds); err != nil {
		return nil, err
	}

	w, err := split.Temporal(ds, cfg.TrainingMonths, cfg.ValidationMonths, cfg.TotalMonths)
	if err != nil {
		return nil, err
	}
	if err := w.Check(); err != nil {
		return nil, err
	}
	out.Windows = w
	log.Info("Temporal split",
		zap.Int("train", len(w.Train)),
		zap.Int("fit", len(w.Train)-len(w.Validation)),
		zap.Int("validation", len(w.Validation)),
		zap.Int("test", len(w.Test)),
	)

	fitTask, err := features.Build(ds, w.Fit(), cfg.Positive)
	if err != nil {
		return nil, fmt.Errorf("pipeline: fit window: %w", err)
	}
	validTask, err := features.Build(ds, w.Validation, cfg.Positive)
	if err != nil {
		return nil, fmt.Errorf("pipeline: validation window: %w", err)
	}
	ctrl := &tuning.Controller{Learner: learner, Grid: grid, Seed: cfg.Seed, Logger: log}
	res, err := ctrl.Search(fitTask, validTask)
	if err != nil {
		return nil, err
	}
	out.Tuning = res
	log.Info("Tuning done",
		zap.Int("evaluated", len(res.Trials)),
		zap.String("best", res.Best.Params.String()),
		zap.Float64("auc", res.Best.AUC),
		zap.Float64("mmce", res.Best.MMCE),
	)

	trainTask, err := features.Build(ds, w.Train, cfg.Positive)
	if err != nil {
		return nil, fmt.Errorf("pipeline: training window: %w", err)
	}
	testTask, err := features.Build(ds, w.Test, cfg.Positive)
	if err != nil {
		return nil, fmt.Errorf("pipeline: test window: %w", err)
	}
	holdout, err := training.Fit(learner, res.Best.Params, trainTask, cfg.Seed)
	if err != nil {
		return nil, err
	}
	rep, err := evaluation.Evaluate(holdout.Model, testTask, cfg.ROCResolution)
	if err != nil {
		return nil, fmt.Errorf("pipeline: holdout evaluation: %w", err)
	}
	out.Holdout = rep
	log.Info("Holdout metrics",
		zap.String("model", rep.Model),
		zap.Int("rows", rep.Rows),
		zap.Int("positives", rep.Positives),
		zap.Float64("auc", rep.AUC),
		zap.Float64("mmce", rep.MMCE),
	)
	if imp, err := evaluation.FeatureImportance(holdout.Model, trainTask.Features); err == nil {
		out.Importance = imp
		for i, v := range imp {
			log.Info("Feature importance", zap.Int("rank", i+1), zap.String("feature", v.Feature), zap.Float64("score", v.Score))
		}
	} else {
		log.Warn("Feature importance unavailable", zap.Error(err))
	}
	r.plotEvaluation(log, rep, out.Importance)

	all, err := features.All(ds, cfg.Positive)
	if err != nil {
		return nil, err
	}
	final, err := training.Fit(learner, res.Best.Params, all, cfg.Seed)
	if err != nil {
		return nil, err
	}
	out.Final = final
	log.Info("Final model trained", zap.Int("rows", final.Rows), zap.String("params", final.Params.String()))

	if cfg.ModelPath != "" {
		metrics := map[string]float64{
			"holdout_auc":    rep.AUC,
			"holdout_mmce":   rep.MMCE,
			"validation_auc": res.Best.AUC,
		}
		if err := persistence.NewBundle(out.RunID, final, metrics).Save(cfg.ModelPath); err != nil {
			return nil, err
		}
		out.ModelPath = cfg.ModelPath
		log.Info("Model saved", zap.String("path", cfg.ModelPath))
	}
	return out, nil
}

func (r *Runner) plotEvaluation(log *zap.Logger, rep *evaluation.Report, imp []evaluation.Importance) {
	if !r.Plots || r.Config.ReportDir == "" {
		return
	}
	if len(rep.Curve) > 0 {
		if err := report.PlotROC(rep.Curve, rep.AUC, filepath.Join(r.Config.ReportDir, "roc.png")); err != nil {
			log.Warn("ROC rendering failed", zap.Error(err))
		}
	}
	if len(imp) > 0 {
		if err := report.PlotImportance(imp, filepath.Join(r.Config.ReportDir, "importance.png")); err != nil {
			log.Warn("Importance rendering failed", zap.Error(err))
		}
	}
}
