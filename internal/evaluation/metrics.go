package evaluation

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrUndefinedAUC is returned when the labels hold only one class.
var ErrUndefinedAUC = errors.New("auc undefined: labels contain a single class")

type ROCPoint struct {
	Threshold float64 `json:"threshold"`
	TPR       float64 `json:"tpr"`
	FPR       float64 `json:"fpr"`
}

type Confusion struct {
	TP int `json:"tp"`
	FP int `json:"fp"`
	TN int `json:"tn"`
	FN int `json:"fn"`
}

func checkLengths(y []int, ps []float64) error {
	if len(y) != len(ps) {
		return fmt.Errorf("evaluation: %d labels but %d scores", len(y), len(ps))
	}
	if len(y) == 0 {
		return fmt.Errorf("evaluation: no rows")
	}
	return nil
}

// AUC is the trapezoidal area under the ROC curve; tied scores are handled
// as one step, which equals the Mann-Whitney statistic with ties counted half.
func AUC(y []int, ps []float64) (float64, error) {
	if err := checkLengths(y, ps); err != nil {
		return 0, err
	}
	type pair struct {
		s float64
		y int
	}
	n := len(y)
	pairs := make([]pair, n)
	for i := 0; i < n; i++ {
		pairs[i] = pair{ps[i], y[i]}
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].s > pairs[j].s })
	var pos, neg int
	for _, p := range pairs {
		if p.y == 1 {
			pos++
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return 0, ErrUndefinedAUC
	}
	tp, fp := 0, 0
	prevS := math.Inf(1)
	var auc float64
	prevTPR, prevFPR := 0.0, 0.0
	for i := 0; i < n; i++ {
		if pairs[i].s != prevS {
			tpr := float64(tp) / float64(pos)
			fpr := float64(fp) / float64(neg)
			auc += (fpr - prevFPR) * (tpr + prevTPR) / 2.0
			prevTPR, prevFPR = tpr, fpr
			prevS = pairs[i].s
		}
		if pairs[i].y == 1 {
			tp++
		} else {
			fp++
		}
	}
	auc += (1 - prevFPR) * (1 + prevTPR) / 2.0
	return auc, nil
}

func ConfusionAt(y []int, ps []float64, thr float64) Confusion {
	var c Confusion
	for i := range y {
		pred := ps[i] >= thr
		switch {
		case pred && y[i] == 1:
			c.TP++
		case pred:
			c.FP++
		case y[i] == 1:
			c.FN++
		default:
			c.TN++
		}
	}
	return c
}

// MisclassificationRate is the share of rows whose thresholded score
// disagrees with the label.
func MisclassificationRate(y []int, ps []float64, thr float64) (float64, error) {
	if err := checkLengths(y, ps); err != nil {
		return 0, err
	}
	c := ConfusionAt(y, ps, thr)
	return float64(c.FP+c.FN) / float64(len(y)), nil
}

// ROCCurve sweeps resolution+1 evenly spaced thresholds from 1 down to 0.
func ROCCurve(y []int, ps []float64, resolution int) ([]ROCPoint, error) {
	if err := checkLengths(y, ps); err != nil {
		return nil, err
	}
	if resolution < 1 {
		return nil, fmt.Errorf("evaluation: roc resolution %d must be positive", resolution)
	}
	c := ConfusionAt(y, ps, math.Inf(1))
	pos, neg := c.FN, c.TN
	if pos == 0 || neg == 0 {
		return nil, ErrUndefinedAUC
	}
	out := make([]ROCPoint, 0, resolution+1)
	for i := resolution; i >= 0; i-- {
		thr := float64(i) / float64(resolution)
		c := ConfusionAt(y, ps, thr)
		out = append(out, ROCPoint{
			Threshold: thr,
			TPR:       float64(c.TP) / float64(pos),
			FPR:       float64(c.FP) / float64(neg),
		})
	}
	return out, nil
}
