// Package tuning runs an exhaustive hyperparameter search on a fixed
// train/validation split.
package tuning

import (
	"devicefailure/internal/errs"
	"devicefailure/internal/models"
)

type Param struct {
	Name   string    `yaml:"name" json:"name"`
	Values []float64 `yaml:"values" json:"values"`
}

// Grid is the Cartesian product of its parameters' value sets.
type Grid struct {
	params []Param
}

// NewGrid copies params so later edits by the caller cannot change the grid.
func NewGrid(params ...Param) (*Grid, error) {
	if len(params) == 0 {
		return nil, errs.Config("grid", "no parameters")
	}
	seen := make(map[string]bool, len(params))
	g := &Grid{params: make([]Param, len(params))}
	for i, p := range params {
		if p.Name == "" {
			return nil, errs.Config("grid", "parameter %d has no name", i)
		}
		if seen[p.Name] {
			return nil, errs.Config("grid", "parameter %q listed twice", p.Name)
		}
		if len(p.Values) == 0 {
			return nil, errs.Config("grid", "parameter %q has no values", p.Name)
		}
		seen[p.Name] = true
		g.params[i] = Param{Name: p.Name, Values: append([]float64(nil), p.Values...)}
	}
	return g, nil
}

func (g *Grid) Size() int {
	n := 1
	for _, p := range g.params {
		n *= len(p.Values)
	}
	return n
}

func (g *Grid) Params() []Param {
	out := make([]Param, len(g.params))
	for i, p := range g.params {
		out[i] = Param{Name: p.Name, Values: append([]float64(nil), p.Values...)}
	}
	return out
}

// Points enumerates the grid with the first parameter varying fastest.
func (g *Grid) Points() []models.Params {
	out := make([]models.Params, 0, g.Size())
	counters := make([]int, len(g.params))
	for {
		point := make(models.Params, len(g.params))
		for i, p := range g.params {
			point[i] = models.Setting{Name: p.Name, Value: p.Values[counters[i]]}
		}
		out = append(out, point)

		i := 0
		for ; i < len(counters); i++ {
			counters[i]++
			if counters[i] < len(g.params[i].Values) {
				break
			}
			counters[i] = 0
		}
		if i == len(counters) {
			return out
		}
	}
}
