package models

import (
	"math"
	"sort"
	"strings"

	"devicefailure/internal/errs"
)

// Learner builds an unfitted model from hyperparameters and a seed.
type Learner interface {
	Name() string
	Params() []string
	New(p Params, seed int64) (Model, error)
}

type learner struct {
	name   string
	params []string
	build  func(p Params, seed int64) (Model, error)
}

func (l learner) Name() string     { return l.name }
func (l learner) Params() []string { return append([]string(nil), l.params...) }

func (l learner) New(p Params, seed int64) (Model, error) {
	for _, s := range p {
		if !contains(l.params, s.Name) {
			return nil, errs.Config("grid", "learner %s has no parameter %q (known: %s)", l.name, s.Name, strings.Join(l.params, ", "))
		}
	}
	return l.build(p, seed)
}

var learners = map[string]learner{
	"rf": {
		name:   "rf",
		params: []string{"mtry", "ntree", "maxdepth", "nodesize"},
		build: func(p Params, seed int64) (Model, error) {
			rf := NewRandomForest()
			rf.Seed = seed
			var err error
			if rf.MaxFeatures, err = intParam(p, "mtry", rf.MaxFeatures, 1); err != nil {
				return nil, err
			}
			if rf.NEstimators, err = intParam(p, "ntree", rf.NEstimators, 1); err != nil {
				return nil, err
			}
			if rf.MaxDepth, err = intParam(p, "maxdepth", rf.MaxDepth, 1); err != nil {
				return nil, err
			}
			if rf.MinSamples, err = intParam(p, "nodesize", rf.MinSamples, 1); err != nil {
				return nil, err
			}
			return rf, nil
		},
	},
	"bagging": {
		name:   "bagging",
		params: []string{"ntree", "maxdepth", "nodesize"},
		build: func(p Params, seed int64) (Model, error) {
			bg := NewBagging()
			bg.Seed = seed
			var err error
			if bg.NEstimators, err = intParam(p, "ntree", bg.NEstimators, 1); err != nil {
				return nil, err
			}
			if bg.MaxDepth, err = intParam(p, "maxdepth", bg.MaxDepth, 1); err != nil {
				return nil, err
			}
			if bg.MinSamples, err = intParam(p, "nodesize", bg.MinSamples, 1); err != nil {
				return nil, err
			}
			return bg, nil
		},
	},
	"gb": {
		name:   "gb",
		params: []string{"ntree", "learning_rate", "nodesize"},
		build: func(p Params, _ int64) (Model, error) {
			gb := NewGradientBoosting()
			var err error
			if gb.NEstimators, err = intParam(p, "ntree", gb.NEstimators, 1); err != nil {
				return nil, err
			}
			if gb.MinSamples, err = intParam(p, "nodesize", gb.MinSamples, 1); err != nil {
				return nil, err
			}
			if v, ok := p.Get("learning_rate"); ok {
				if v <= 0 || v > 1 {
					return nil, errs.Config("learning_rate", "%g outside (0,1]", v)
				}
				gb.LearningRate = v
			}
			return gb, nil
		},
	},
}

// LookupLearner returns the learner registered under name (rf, bagging, gb).
func LookupLearner(name string) (Learner, error) {
	l, ok := learners[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, errs.Config("learner", "unknown learner %q (known: %s)", name, strings.Join(LearnerNames(), ", "))
	}
	return l, nil
}

func LearnerNames() []string {
	names := make([]string, 0, len(learners))
	for n := range learners {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func intParam(p Params, name string, def, min int) (int, error) {
	v, ok := p.Get(name)
	if !ok {
		return def, nil
	}
	if v != math.Trunc(v) || v < float64(min) {
		return 0, errs.Config(name, "%g must be an integer >= %d", v, min)
	}
	return int(v), nil
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}
