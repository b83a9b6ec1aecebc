// Package split partitions a dataset by month index rather than at random,
// so evaluation always looks forward in time.
package split

import (
	"fmt"

	"devicefailure/internal/data"
	"devicefailure/internal/errs"
)

// Windows holds record indices. Validation is nested inside Train; Test
// follows Train.
type Windows struct {
	Train      []int
	Validation []int
	Test       []int

	TrainingMonths   int
	ValidationMonths int
	TotalMonths      int
}

// CheckBoundaries rejects boundaries that would leave a degenerate window.
func CheckBoundaries(trainingMonths, validationMonths, totalMonths int) error {
	if validationMonths >= trainingMonths {
		return errs.Config("validation_months", "%d must be below training_months %d", validationMonths, trainingMonths)
	}
	if validationMonths < 1 {
		return errs.Config("validation_months", "%d leaves an empty validation window", validationMonths)
	}
	if trainingMonths >= totalMonths {
		return errs.Config("training_months", "%d must be below total_months %d", trainingMonths, totalMonths)
	}
	return nil
}

// MonthRange returns the indices of records whose month lies in [lo, hi].
func MonthRange(ds *data.Dataset, lo, hi int) []int {
	out := make([]int, 0)
	for i, r := range ds.Records {
		if r.Month >= lo && r.Month <= hi {
			out = append(out, i)
		}
	}
	return out
}

// Temporal builds the training window (months 1..training), the validation
// window (its last validationMonths months) and the test window
// (training+1..total).
func Temporal(ds *data.Dataset, trainingMonths, validationMonths, totalMonths int) (*Windows, error) {
	if err := CheckBoundaries(trainingMonths, validationMonths, totalMonths); err != nil {
		return nil, err
	}
	w := &Windows{
		Train:            upTo(ds, trainingMonths),
		Validation:       MonthRange(ds, trainingMonths-validationMonths+1, trainingMonths),
		Test:             MonthRange(ds, trainingMonths+1, totalMonths),
		TrainingMonths:   trainingMonths,
		ValidationMonths: validationMonths,
		TotalMonths:      totalMonths,
	}
	return w, nil
}

// upTo keeps every record at or below the boundary, including month values
// under 1; callers own boundary validation of the data itself.
func upTo(ds *data.Dataset, hi int) []int {
	out := make([]int, 0)
	for i, r := range ds.Records {
		if r.Month <= hi {
			out = append(out, i)
		}
	}
	return out
}

// Check verifies Validation ⊆ Train and Train ∩ Test = ∅.
func (w *Windows) Check() error {
	train := make(map[int]struct{}, len(w.Train))
	for _, i := range w.Train {
		train[i] = struct{}{}
	}
	for _, i := range w.Validation {
		if _, ok := train[i]; !ok {
			return fmt.Errorf("validation record %d outside training window", i)
		}
	}
	for _, i := range w.Test {
		if _, ok := train[i]; ok {
			return fmt.Errorf("test record %d overlaps training window", i)
		}
	}
	return nil
}

// Fit returns the indices the tuning step fits on: the training window
// without its validation months.
func (w *Windows) Fit() []int {
	valid := make(map[int]struct{}, len(w.Validation))
	for _, i := range w.Validation {
		valid[i] = struct{}{}
	}
	out := make([]int, 0, len(w.Train)-len(w.Validation))
	for _, i := range w.Train {
		if _, ok := valid[i]; !ok {
			out = append(out, i)
		}
	}
	return out
}
