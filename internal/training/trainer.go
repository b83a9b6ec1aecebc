package training

import (
	"fmt"
	"time"

	"devicefailure/internal/features"
	"devicefailure/internal/models"
)

// TrainedModel is a fitted model together with everything needed to
// reproduce it. It is not modified after Fit returns.
type TrainedModel struct {
	Model     models.Model
	Learner   string
	Params    models.Params
	Seed      int64
	Features  []string
	Rows      int
	TrainedAt time.Time
}

// Fit builds a model from the learner and params and fits it on the task.
// Identical inputs and seed give identical predictions.
func Fit(learner models.Learner, params models.Params, task *features.Task, seed int64) (*TrainedModel, error) {
	if task == nil || task.Len() == 0 {
		return nil, fmt.Errorf("training: empty task")
	}
	m, err := learner.New(params, seed)
	if err != nil {
		return nil, err
	}
	if err := m.Fit(task.X, task.Y); err != nil {
		return nil, fmt.Errorf("training: fit %s [%s]: %w", learner.Name(), params, err)
	}
	return &TrainedModel{
		Model:     m,
		Learner:   learner.Name(),
		Params:    append(models.Params(nil), params...),
		Seed:      seed,
		Features:  append([]string(nil), task.Features...),
		Rows:      task.Len(),
		TrainedAt: time.Now().UTC(),
	}, nil
}

func (tm *TrainedModel) PredictProba(X [][]float64) []float64 {
	return tm.Model.PredictProba(X)
}
