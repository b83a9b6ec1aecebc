package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"devicefailure/internal/config"
	"devicefailure/internal/data"
	"devicefailure/internal/pipeline"
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
	trainMonths := flag.Int("train_months", cfg.TrainingMonths, "Months 1..t used for training")
	validMonths := flag.Int("valid_months", cfg.ValidationMonths, "Trailing training months used for validation")
	totalMonths := flag.Int("total_months", cfg.TotalMonths, "Months covered by the dataset")
	seed := flag.Int64("seed", cfg.Seed, "Seed for tuning and training")
	learner := flag.String("learner", cfg.Learner, "Learner: rf|bagging|gb")
	gridFile := flag.String("grid_file", "", "YAML file with a grid: section")
	modelPath := flag.String("model", cfg.ModelPath, "Where to save the final model (empty to skip)")
	reportDir := flag.String("report_dir", cfg.ReportDir, "Directory for tables and charts (empty to skip)")
	rocRes := flag.Int("roc_resolution", cfg.ROCResolution, "Threshold steps in the ROC sweep")
	plots := flag.Bool("plots", true, "Render PNG charts")
	positive := flag.Int("positive", cfg.Positive, "Failure label treated as the positive class: 0|1")
	synthetic := flag.Int("synthetic", 0, "Train on N synthetic rows instead of the cached dataset")
	syntheticOut := flag.String("synthetic_out", "", "Where to write the synthetic rows (default: a temp file)")
	flag.Parse()

	cfg.DataURL = *url
	cfg.CachePath = *cache
	cfg.CachePolicy = *policy
	cfg.TrainingMonths = *trainMonths
	cfg.ValidationMonths = *validMonths
	cfg.TotalMonths = *totalMonths
	cfg.Seed = *seed
	cfg.Learner = *learner
	cfg.ModelPath = *modelPath
	cfg.ReportDir = *reportDir
	cfg.ROCResolution = *rocRes
	cfg.Positive = *positive
	if *gridFile != "" {
		if err := cfg.MergeGridFile(*gridFile); err != nil {
			logger.Fatal("Invalid grid file", zap.String("path", *gridFile), zap.Error(err))
		}
	}

	if *synthetic > 0 {
		gen := data.DefaultGenerateConfig()
		gen.Rows = *synthetic
		gen.Months = cfg.TotalMonths
		gen.Seed = uint64(cfg.Seed)
		path, err := writeSynthetic(gen, *syntheticOut, cfg.CachePath)
		if err != nil {
			logger.Fatal("Failed to generate dataset", zap.Error(err))
		}
		logger.Info("Generated synthetic telemetry", zap.Int("rows", gen.Rows), zap.String("out", path))
		cfg.CachePath = path
		cfg.CachePolicy = data.CacheOffline.String()
	}

	logger.Info("Starting run",
		zap.String("learner", cfg.Learner),
		zap.Int("train_months", cfg.TrainingMonths),
		zap.Int("valid_months", cfg.ValidationMonths),
		zap.Int("total_months", cfg.TotalMonths),
		zap.Int64("seed", cfg.Seed),
	)
	r := &pipeline.Runner{Config: cfg, Logger: logger, Plots: *plots}
	out, err := r.Run()
	if err != nil {
		logger.Fatal("Run failed", zap.Error(err))
	}

	fmt.Printf("run %s\n", out.RunID)
	fmt.Printf("best %s (validation AUC %.4f)\n", out.Tuning.Best.Params, out.Tuning.Best.AUC)
	fmt.Printf("test AUC %.4f  MMCE %.4f  rows %d  failures %d\n",
		out.Holdout.AUC, out.Holdout.MMCE, out.Holdout.Rows, out.Holdout.Positives)
	for i, imp := range out.Importance {
		fmt.Printf("%2d. %-12s %.5f\n", i+1, imp.Feature, imp.Score)
	}
	if out.ModelPath != "" {
		fmt.Println("model:", out.ModelPath)
	}
}

// writeSynthetic writes generated rows to out, or to a fresh temp file when
// out is empty, and returns the path. It never writes over the dataset cache.
func writeSynthetic(gen data.GenerateConfig, out, cache string) (string, error) {
	var f *os.File
	var err error
	if out == "" {
		f, err = os.CreateTemp("", "device_failure_synthetic_*.csv")
	} else {
		if samePath(out, cache) {
			return "", fmt.Errorf("synthetic output %s is the dataset cache", out)
		}
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return "", err
		}
		f, err = os.Create(out)
	}
	if err != nil {
		return "", err
	}
	if err := data.GenerateTelemetry(gen, f); err != nil {
		f.Close()
		return "", err
	}
	return f.Name(), f.Close()
}

func samePath(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	aa, errA := filepath.Abs(a)
	bb, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return aa == bb
}
