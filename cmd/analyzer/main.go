package main

import (
	"flag"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"devicefailure/internal/config"
	"devicefailure/internal/evaluation"
	"devicefailure/internal/features"
	"devicefailure/internal/persistence"
	"devicefailure/internal/pipeline"
	"devicefailure/internal/report"
	"devicefailure/internal/split"
	"devicefailure/pkg/utils"
)

func main() {
	logger := utils.Logger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	url := flag.String("url", cfg.DataURL, "Source URL of the telemetry CSV")
	cache := flag.String("cache", cfg.CachePath, "Local cache file")
	policy := flag.String("policy", cfg.CachePolicy, "Cache policy: reuse|refresh|offline")
	reportDir := flag.String("report_dir", cfg.ReportDir, "Output directory")
	bins := flag.Int("bins", 40, "Histogram bins")
	modelPath := flag.String("model", "", "Saved model to score on the test window")
	trainMonths := flag.Int("train_months", cfg.TrainingMonths, "Months 1..t considered seen by the model")
	flag.Parse()

	cfg.DataURL = *url
	cfg.CachePath = *cache
	cfg.CachePolicy = *policy
	cfg.ReportDir = *reportDir
	cfg.TrainingMonths = *trainMonths
	if cfg.ReportDir == "" {
		logger.Fatal("report_dir must be set")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	r := &pipeline.Runner{Config: cfg, Logger: logger}
	ds, err := r.LoadDataset()
	if err != nil {
		logger.Fatal("Failed to load dataset", zap.Error(err))
	}
	if err := r.Describe(ds); err != nil {
		logger.Fatal("Failed to write tables", zap.Error(err))
	}
	paths, err := report.PlotAttributeHistograms(ds, filepath.Join(cfg.ReportDir, "histograms"), *bins)
	if err != nil {
		logger.Fatal("Failed to plot histograms", zap.Error(err))
	}
	monthly := report.Monthly(ds)
	if err := report.PlotMonthlyFailureRatio(monthly, filepath.Join(cfg.ReportDir, "monthly_failure_ratio.png")); err != nil {
		logger.Fatal("Failed to plot monthly ratio", zap.Error(err))
	}
	b := report.ClassBalance(ds)
	fmt.Printf("records %d  devices %d  failures %d  ratio %.5f\n", b.Records, b.Devices, b.Failures, b.Ratio)
	for _, m := range monthly {
		fmt.Printf("month %2d  records %6d  failures %3d  ratio %.5f\n", m.Month, m.Records, m.Failures, m.Ratio)
	}
	logger.Info("Histograms written", zap.Int("count", len(paths)))

	if *modelPath == "" {
		return
	}
	bundle, err := persistence.Load(*modelPath)
	if err != nil {
		logger.Fatal("Failed to load model", zap.Error(err))
	}
	test := split.MonthRange(ds, cfg.TrainingMonths+1, ds.Months())
	task, err := features.Build(ds, test, cfg.Positive)
	if err != nil {
		logger.Fatal("Failed to build test window", zap.Error(err))
	}
	rep, err := evaluation.Evaluate(bundle.Model, task, cfg.ROCResolution)
	if err != nil {
		logger.Fatal("Failed to evaluate model", zap.Error(err))
	}
	logger.Info("Saved model scored",
		zap.String("run_id", bundle.RunID.String()),
		zap.String("params", bundle.Params.String()),
		zap.Int("rows", rep.Rows),
		zap.Float64("auc", rep.AUC),
		zap.Float64("mmce", rep.MMCE),
	)
	if err := report.PlotROC(rep.Curve, rep.AUC, filepath.Join(cfg.ReportDir, "roc_saved_model.png")); err != nil {
		logger.Warn("ROC rendering failed", zap.Error(err))
	}
	fmt.Printf("saved model %s  AUC %.4f  MMCE %.4f\n", bundle.RunID, rep.AUC, rep.MMCE)
}
