package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devicefailure/internal/data"
	"devicefailure/internal/errs"
	"devicefailure/internal/tuning"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	g, err := cfg.TuningGrid()
	require.NoError(t, err)
	assert.Equal(t, 6, g.Size())
	p, err := cfg.Policy()
	require.NoError(t, err)
	assert.Equal(t, data.CacheReuse, p)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"FAILURE_DATA_URL":     "http://example.invalid/data.csv",
		"FAILURE_CACHE_POLICY": "offline",
		"FAILURE_TRAIN_MONTHS": " 6 ",
		"FAILURE_SEED":         "7",
	}))
	require.NoError(t, err)
	assert.Equal(t, "http://example.invalid/data.csv", cfg.DataURL)
	p, err := cfg.Policy()
	require.NoError(t, err)
	assert.Equal(t, data.CacheOffline, p)
	assert.Equal(t, 6, cfg.TrainingMonths)
	assert.Equal(t, int64(7), cfg.Seed)
}

func TestApplyEnv_BadNumbers(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"FAILURE_TOTAL_MONTHS": "eleven",
		"FAILURE_SEED":         "x",
	}))
	var cfgErr *errs.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "FAILURE_TOTAL_MONTHS")
	assert.Contains(t, err.Error(), "FAILURE_SEED")
	assert.Equal(t, 11, cfg.TotalMonths)
}

func TestMergeFile_GridOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
grid:
  - name: mtry
    values: [2, 4]
  - name: nodesize
    values: [1, 5, 10]
`), 0o644))
	cfg := Default()
	require.NoError(t, cfg.MergeFile(path))
	assert.Equal(t, []tuning.Param{
		{Name: "mtry", Values: []float64{2, 4}},
		{Name: "nodesize", Values: []float64{1, 5, 10}},
	}, cfg.Grid)
	assert.Equal(t, 7, cfg.TrainingMonths)
	require.NoError(t, cfg.Validate())
}

func TestMergeFile_Errors(t *testing.T) {
	cfg := Default()
	var cfgErr *errs.ConfigError
	assert.ErrorAs(t, cfg.MergeFile(filepath.Join(t.TempDir(), "none.yaml")), &cfgErr)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("grid: [oops"), 0o644))
	assert.ErrorAs(t, cfg.MergeFile(path), &cfgErr)
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.CachePolicy = "never"
	cfg.ValidationMonths = 7
	cfg.Grid = []tuning.Param{{Name: "learning_rate", Values: []float64{0.1}}}
	err := cfg.Validate()
	var cfgErr *errs.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "cache_policy")
	assert.Contains(t, err.Error(), "validation_months")
	assert.Contains(t, err.Error(), "learning_rate")

	cfg = Default()
	cfg.Grid = nil
	assert.Error(t, cfg.Validate())
}

func TestPolicy_RejectsUnknownName(t *testing.T) {
	cfg := Default()
	cfg.CachePolicy = "offlin"
	_, err := cfg.Policy()
	var cfgErr *errs.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestMergeFile_KeepsExplicitZeros(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("positive: 0\nseed: 0\n"), 0o644))
	cfg := Default()
	require.NoError(t, cfg.MergeFile(path))
	assert.Equal(t, 0, cfg.Positive)
	assert.Equal(t, int64(0), cfg.Seed)
	assert.Equal(t, Default().Grid, cfg.Grid)
	assert.Equal(t, 7, cfg.TrainingMonths)
	require.NoError(t, cfg.Validate())
}

func TestApplyEnv_Positive(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(envMap(map[string]string{"FAILURE_POSITIVE": "0"})))
	assert.Equal(t, 0, cfg.Positive)
}

func TestApplyEnv_ZeroPaddedIsDecimal(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(envMap(map[string]string{
		"FAILURE_TOTAL_MONTHS": "010",
		"FAILURE_TRAIN_MONTHS": "08",
		"FAILURE_SEED":         "-007",
	})))
	assert.Equal(t, 10, cfg.TotalMonths)
	assert.Equal(t, 8, cfg.TrainingMonths)
	assert.Equal(t, int64(-7), cfg.Seed)

	err := cfg.ApplyEnv(envMap(map[string]string{"FAILURE_VALID_MONTHS": "0x2"}))
	var cfgErr *errs.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, 2, cfg.ValidationMonths)
}

func TestLoadDotenv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, loadDotenv(filepath.Join(dir, "missing.env")))

	bad := filepath.Join(dir, "bad.env")
	require.NoError(t, os.WriteFile(bad, []byte("FAILURE-SEED=7\n"), 0o644))
	var cfgErr *errs.ConfigError
	assert.ErrorAs(t, loadDotenv(bad), &cfgErr)
}

func TestMergeGridFile_IgnoresOtherSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
training_months: 3
seed: 9
grid:
  - name: ntree
    values: [50]
`), 0o644))
	cfg := Default()
	cfg.TrainingMonths = 6
	require.NoError(t, cfg.MergeGridFile(path))
	assert.Equal(t, []tuning.Param{{Name: "ntree", Values: []float64{50}}}, cfg.Grid)
	assert.Equal(t, 6, cfg.TrainingMonths)
	assert.Equal(t, int64(42), cfg.Seed)

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("seed: 1\n"), 0o644))
	var cfgErr *errs.ConfigError
	assert.ErrorAs(t, cfg.MergeGridFile(empty), &cfgErr)
}
