package features

import (
	"fmt"

	"devicefailure/internal/data"
)

// Task is a feature matrix with its label column, ready for a learner.
type Task struct {
	X        [][]float64
	Y        []int
	Features []string
	Positive int
}

func (t *Task) Len() int { return len(t.Y) }

// Positives counts rows labelled with the positive class.
func (t *Task) Positives() int {
	n := 0
	for _, v := range t.Y {
		if v == t.Positive {
			n++
		}
	}
	return n
}

// Vectorize maps a record to its attribute vector. Date and device are
// identifiers, not predictors.
func Vectorize(r data.Record) ([]float64, []string) {
	vec := make([]float64, data.NumAttributes)
	copy(vec, r.Attributes[:])
	return vec, data.AttributeNames()
}

// Build assembles a task over the given record indices. Labels are mapped so
// that the positive class is 1.
func Build(ds *data.Dataset, idx []int, positive int) (*Task, error) {
	if len(idx) == 0 {
		return nil, fmt.Errorf("features: empty index set")
	}
	t := &Task{
		X:        make([][]float64, len(idx)),
		Y:        make([]int, len(idx)),
		Features: append([]string(nil), ds.Attributes...),
		Positive: 1,
	}
	for k, i := range idx {
		if i < 0 || i >= ds.Len() {
			return nil, fmt.Errorf("features: index %d out of range", i)
		}
		r := ds.Records[i]
		t.X[k], _ = Vectorize(r)
		if r.Failure == positive {
			t.Y[k] = 1
		}
	}
	return t, nil
}

// All builds a task over every record of the dataset.
func All(ds *data.Dataset, positive int) (*Task, error) {
	idx := make([]int, ds.Len())
	for i := range idx {
		idx[i] = i
	}
	return Build(ds, idx, positive)
}
