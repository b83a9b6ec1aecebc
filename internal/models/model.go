package models

import (
	"fmt"
	"strconv"
	"strings"
)

type Model interface {
	Fit(X [][]float64, y []int) error
	Predict(X [][]float64) []int
	PredictProba(X [][]float64) []float64
	Name() string
}

// Importancer is implemented by tree ensembles that track how much each
// feature reduced node impurity during fitting.
type Importancer interface {
	FeatureImportance() []float64
}

type Setting struct {
	Name  string
	Value float64
}

// Params is an ordered set of hyperparameter values.
type Params []Setting

func (p Params) Get(name string) (float64, bool) {
	for _, s := range p {
		if s.Name == name {
			return s.Value, true
		}
	}
	return 0, false
}

func (p Params) String() string {
	parts := make([]string, len(p))
	for i, s := range p {
		parts[i] = s.Name + "=" + strconv.FormatFloat(s.Value, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

func (p Params) Map() map[string]float64 {
	out := make(map[string]float64, len(p))
	for _, s := range p {
		out[s.Name] = s.Value
	}
	return out
}

func validateFit(X [][]float64, y []int) error {
	if len(X) == 0 {
		return fmt.Errorf("fit: no training rows")
	}
	if len(X) != len(y) {
		return fmt.Errorf("fit: %d rows but %d labels", len(X), len(y))
	}
	if len(X[0]) == 0 {
		return fmt.Errorf("fit: rows have no features")
	}
	return nil
}

func threshold(ps []float64) []int {
	out := make([]int, len(ps))
	for i := range ps {
		if ps[i] >= 0.5 {
			out[i] = 1
		}
	}
	return out
}
