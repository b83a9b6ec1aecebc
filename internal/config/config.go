package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"devicefailure/internal/data"
	"devicefailure/internal/errs"
	"devicefailure/internal/models"
	"devicefailure/internal/split"
	"devicefailure/internal/tuning"
)

// DefaultCachePath is relative to the working directory. There is no default
// source URL; it must come from FAILURE_DATA_URL, a config file or -url.
const DefaultCachePath = "device_failure.csv"

// Config drives one analysis run.
type Config struct {
	DataURL          string         `yaml:"data_url"`
	CachePath        string         `yaml:"cache_path"`
	CachePolicy      string         `yaml:"cache_policy"`
	TrainingMonths   int            `yaml:"training_months"`
	ValidationMonths int            `yaml:"validation_months"`
	TotalMonths      int            `yaml:"total_months"`
	Seed             int64          `yaml:"seed"`
	Learner          string         `yaml:"learner"`
	Grid             []tuning.Param `yaml:"grid"`
	ROCResolution    int            `yaml:"roc_resolution"`
	ModelPath        string         `yaml:"model_path"`
	ReportDir        string         `yaml:"report_dir"`
	Positive         int            `yaml:"positive"`
}

func Default() Config {
	return Config{
		CachePath:        DefaultCachePath,
		CachePolicy:      "reuse",
		TrainingMonths:   7,
		ValidationMonths: 2,
		TotalMonths:      11,
		Seed:             42,
		Learner:          "rf",
		Grid: []tuning.Param{
			{Name: "mtry", Values: []float64{2, 3, 5}},
			{Name: "ntree", Values: []float64{300, 500}},
		},
		ROCResolution: 100,
		ModelPath:     "models/rf_model.gob",
		ReportDir:     "reports",
		Positive:      1,
	}
}

// Load layers defaults, an optional .env file, FAILURE_* environment
// variables, an optional YAML file (FAILURE_CONFIG_FILE) and an optional
// grid file (FAILURE_GRID_FILE).
func Load() (Config, error) {
	cfg := Default()
	if err := loadDotenv(".env"); err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return cfg, err
	}
	if path := os.Getenv("FAILURE_CONFIG_FILE"); path != "" {
		if err := cfg.MergeFile(path); err != nil {
			return cfg, err
		}
	}
	if path := os.Getenv("FAILURE_GRID_FILE"); path != "" {
		if err := cfg.MergeGridFile(path); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// loadDotenv reads path into the environment. A missing file is fine, a
// malformed one is not.
func loadDotenv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return errs.Config("dotenv", "%s: %v", path, err)
}

// ApplyEnv overrides fields from FAILURE_* variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	var errList error
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v := getenv(key); v != "" {
			n, err := cast.ToIntE(decimal(v))
			if err != nil {
				errList = multierr.Append(errList, errs.Config(key, "%q is not an integer", v))
				return
			}
			*dst = n
		}
	}
	str("FAILURE_DATA_URL", &c.DataURL)
	str("FAILURE_CACHE_PATH", &c.CachePath)
	str("FAILURE_CACHE_POLICY", &c.CachePolicy)
	str("FAILURE_LEARNER", &c.Learner)
	str("FAILURE_MODEL_PATH", &c.ModelPath)
	str("FAILURE_REPORT_DIR", &c.ReportDir)
	num("FAILURE_TRAIN_MONTHS", &c.TrainingMonths)
	num("FAILURE_VALID_MONTHS", &c.ValidationMonths)
	num("FAILURE_TOTAL_MONTHS", &c.TotalMonths)
	num("FAILURE_ROC_RESOLUTION", &c.ROCResolution)
	num("FAILURE_POSITIVE", &c.Positive)
	if v := getenv("FAILURE_SEED"); v != "" {
		n, err := cast.ToInt64E(decimal(v))
		if err != nil {
			errList = multierr.Append(errList, errs.Config("FAILURE_SEED", "%q is not an integer", v))
		} else {
			c.Seed = n
		}
	}
	return errList
}

// decimal strips spaces and leading zeros so "010" reads as ten. Input that is
// not an optionally signed run of digits is prefixed so the conversion fails.
func decimal(v string) string {
	v = strings.TrimSpace(v)
	sign := ""
	if strings.HasPrefix(v, "-") || strings.HasPrefix(v, "+") {
		sign, v = v[:1], v[1:]
	}
	if v == "" || strings.TrimLeft(v, "0123456789") != "" {
		return "invalid:" + sign + v
	}
	v = strings.TrimLeft(v, "0")
	if v == "" {
		v = "0"
	}
	return sign + v
}

// MergeFile overlays the fields a YAML file mentions, zero values included.
// A file that only lists `grid:` replaces the grid and leaves everything else
// alone.
func (c *Config) MergeFile(path string) error {
	b, err := readConfigFile(path)
	if err != nil {
		return err
	}
	f := *c
	if err := yaml.Unmarshal(b, &f); err != nil {
		return errs.Config("config_file", "%s: %v", path, err)
	}
	*c = f
	return nil
}

// MergeGridFile takes only the grid section of a YAML file.
func (c *Config) MergeGridFile(path string) error {
	b, err := readConfigFile(path)
	if err != nil {
		return err
	}
	var f struct {
		Grid []tuning.Param `yaml:"grid"`
	}
	if err := yaml.Unmarshal(b, &f); err != nil {
		return errs.Config("grid_file", "%s: %v", path, err)
	}
	if len(f.Grid) == 0 {
		return errs.Config("grid_file", "%s has no grid section", path)
	}
	c.Grid = f.Grid
	return nil
}

func readConfigFile(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errs.Config("config_file", "%s does not exist", path)
	}
	if err != nil {
		return nil, &errs.IOError{Op: "read config", Path: path, Err: err}
	}
	return b, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errList error
	if c.CachePath == "" {
		errList = multierr.Append(errList, errs.Config("cache_path", "must be set"))
	}
	if _, err := data.ParseCachePolicy(c.CachePolicy); err != nil {
		errList = multierr.Append(errList, err)
	}
	if err := split.CheckBoundaries(c.TrainingMonths, c.ValidationMonths, c.TotalMonths); err != nil {
		errList = multierr.Append(errList, err)
	}
	if c.Positive != 0 && c.Positive != 1 {
		errList = multierr.Append(errList, errs.Config("positive", "%d not in {0,1}", c.Positive))
	}
	if c.ROCResolution < 0 {
		errList = multierr.Append(errList, errs.Config("roc_resolution", "%d is negative", c.ROCResolution))
	}
	if _, err := c.TuningGrid(); err != nil {
		errList = multierr.Append(errList, err)
	}
	l, err := models.LookupLearner(c.Learner)
	if err != nil {
		errList = multierr.Append(errList, err)
	} else {
		for _, p := range c.Grid {
			if !contains(l.Params(), p.Name) {
				errList = multierr.Append(errList, errs.Config("grid", "learner %s has no parameter %q", l.Name(), p.Name))
			}
		}
	}
	return errList
}

func (c Config) TuningGrid() (*tuning.Grid, error) {
	return tuning.NewGrid(c.Grid...)
}

func (c Config) Policy() (data.CachePolicy, error) {
	return data.ParseCachePolicy(c.CachePolicy)
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}
