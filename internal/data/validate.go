package data

import (
	"fmt"
	"math"

	"go.uber.org/multierr"

	"devicefailure/internal/errs"
)

// maxIssues bounds how many findings one pass reports.
const maxIssues = 50

// Validate checks every record for missing or out-of-domain values and
// returns all findings as a single DataQualityError.
func Validate(ds *Dataset) error {
	if ds == nil || ds.Len() == 0 {
		return errs.DataQuality("dataset is empty")
	}
	var issues error
	n := 0
	add := func(err error) {
		n++
		if n <= maxIssues {
			issues = multierr.Append(issues, err)
		}
	}
	for i, r := range ds.Records {
		if r.Date.IsZero() {
			add(fmt.Errorf("record %d: date is missing", i))
		}
		if r.Device == "" {
			add(fmt.Errorf("record %d: device is missing", i))
		}
		if r.Failure != 0 && r.Failure != 1 {
			add(fmt.Errorf("record %d: failure label %d not in {0,1}", i, r.Failure))
		}
		if r.Month < 1 {
			add(fmt.Errorf("record %d: month index %d below 1", i, r.Month))
		}
		for j, v := range r.Attributes {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				add(fmt.Errorf("record %d: attribute_%d is not finite", i, j+1))
			}
		}
	}
	if n > maxIssues {
		issues = multierr.Append(issues, fmt.Errorf("%d further issues suppressed", n-maxIssues))
	}
	if issues != nil {
		return &errs.DataQualityError{Issues: issues}
	}
	return nil
}
