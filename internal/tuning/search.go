package tuning

import (
	"fmt"

	"go.uber.org/zap"

	"devicefailure/internal/errs"
	"devicefailure/internal/evaluation"
	"devicefailure/internal/features"
	"devicefailure/internal/models"
)

type Trial struct {
	Index  int           `json:"index"`
	Params models.Params `json:"params"`
	AUC    float64       `json:"auc"`
	MMCE   float64       `json:"mmce"`
}

type Result struct {
	Best   Trial
	Trials []Trial
}

// Better reports whether a beats b: higher AUC, then lower
// misclassification rate, then earlier grid position.
func Better(a, b Trial) bool {
	if a.AUC != b.AUC {
		return a.AUC > b.AUC
	}
	if a.MMCE != b.MMCE {
		return a.MMCE < b.MMCE
	}
	return a.Index < b.Index
}

// SelectBest returns the winning trial; the first optimum found wins ties.
func SelectBest(trials []Trial) (Trial, error) {
	if len(trials) == 0 {
		return Trial{}, errs.Config("grid", "no trials to select from")
	}
	best := trials[0]
	for _, t := range trials[1:] {
		if Better(t, best) {
			best = t
		}
	}
	return best, nil
}

type Controller struct {
	Learner models.Learner
	Grid    *Grid
	Seed    int64
	Logger  *zap.Logger
}

// Search fits one model per grid point on train and scores it on valid.
// Every point is evaluated; there is no early stopping.
func (c *Controller) Search(train, valid *features.Task) (*Result, error) {
	if c.Grid == nil || len(c.Grid.params) == 0 {
		return nil, errs.Config("grid", "empty grid")
	}
	if c.Learner == nil {
		return nil, errs.Config("learner", "no learner")
	}
	log := c.Logger
	if log == nil {
		log = zap.NewNop()
	}
	points := c.Grid.Points()
	trials := make([]Trial, 0, len(points))
	for i, p := range points {
		m, err := c.Learner.New(p, c.Seed)
		if err != nil {
			return nil, err
		}
		if err := m.Fit(train.X, train.Y); err != nil {
			return nil, fmt.Errorf("tuning: fit %s [%s]: %w", c.Learner.Name(), p, err)
		}
		ps := m.PredictProba(valid.X)
		auc, err := evaluation.AUC(valid.Y, ps)
		if err != nil {
			return nil, fmt.Errorf("tuning: score [%s]: %w", p, err)
		}
		mmce, err := evaluation.MisclassificationRate(valid.Y, ps, evaluation.DefaultThreshold)
		if err != nil {
			return nil, err
		}
		trial := Trial{Index: i, Params: p, AUC: auc, MMCE: mmce}
		trials = append(trials, trial)
		log.Info("Grid point evaluated",
			zap.Int("index", i),
			zap.Int("of", len(points)),
			zap.String("params", p.String()),
			zap.Float64("auc", auc),
			zap.Float64("mmce", mmce),
		)
	}
	best, err := SelectBest(trials)
	if err != nil {
		return nil, err
	}
	return &Result{Best: best, Trials: trials}, nil
}

// Search is the one-call form of Controller.Search.
func Search(learner models.Learner, grid *Grid, train, valid *features.Task, seed int64) (*Result, error) {
	c := &Controller{Learner: learner, Grid: grid, Seed: seed}
	return c.Search(train, valid)
}
