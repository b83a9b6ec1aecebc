package persistence

import (
	"encoding/gob"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"devicefailure/internal/errs"
	"devicefailure/internal/models"
	"devicefailure/internal/training"
)

func init() {
	gob.Register(&models.RandomForest{})
	gob.Register(&models.Bagging{})
	gob.Register(&models.GradientBoosting{})
	gob.Register(&models.DecisionTree{})
}

// Bundle is the deployable model with the hyperparameters and seed that
// produced it and the holdout metrics measured before the final refit.
type Bundle struct {
	RunID     uuid.UUID
	Learner   string
	Params    models.Params
	Seed      int64
	Features  []string
	Rows      int
	Metrics   map[string]float64
	CreatedAt time.Time
	Model     models.Model
}

func NewBundle(runID uuid.UUID, tm *training.TrainedModel, metrics map[string]float64) *Bundle {
	return &Bundle{
		RunID:     runID,
		Learner:   tm.Learner,
		Params:    tm.Params,
		Seed:      tm.Seed,
		Features:  tm.Features,
		Rows:      tm.Rows,
		Metrics:   metrics,
		CreatedAt: time.Now().UTC(),
		Model:     tm.Model,
	}
}

func (b *Bundle) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &errs.IOError{Op: "create model dir", Path: path, Err: err}
	}
	f, err := os.Create(path)
	if err != nil {
		return &errs.IOError{Op: "create model", Path: path, Err: err}
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(b); err != nil {
		return &errs.IOError{Op: "encode model", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &errs.IOError{Op: "close model", Path: path, Err: err}
	}
	return nil
}

func Load(path string) (*Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &errs.IOError{Op: "open model", Path: path, Err: err}
	}
	defer f.Close()
	var b Bundle
	if err := gob.NewDecoder(f).Decode(&b); err != nil {
		return nil, &errs.IOError{Op: "decode model", Path: path, Err: err}
	}
	return &b, nil
}
