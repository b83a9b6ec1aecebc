package models

import (
	"math"
	"sort"
)

type Stump struct {
	Feature   int
	Threshold float64
	LeftVal   float64
	RightVal  float64
}

// GradientBoosting fits depth-one stumps to log-loss residuals. It has no
// random component.
type GradientBoosting struct {
	NEstimators        int
	LearningRate       float64
	MinSamples         int
	MaxThresholdsPerFe int
	Init               float64
	Stumps             []Stump
	Importance         []float64
}

func NewGradientBoosting() *GradientBoosting {
	return &GradientBoosting{NEstimators: 100, LearningRate: 0.1, MinSamples: 1, MaxThresholdsPerFe: 32}
}

func (gb *GradientBoosting) Name() string { return "GradientBoosting" }

func sigmoid(z float64) float64 { return 1.0 / (1.0 + math.Exp(-z)) }

func (gb *GradientBoosting) Fit(X [][]float64, y []int) error {
	if err := validateFit(X, y); err != nil {
		return err
	}
	n := len(X)
	nFeats := len(X[0])
	pos := 0
	for i := 0; i < n; i++ {
		if y[i] == 1 {
			pos++
		}
	}
	base := float64(pos) / float64(n)
	base = math.Min(math.Max(base, 1e-3), 1-1e-3)
	gb.Init = math.Log(base / (1.0 - base))
	gb.Stumps = gb.Stumps[:0]
	gb.Importance = make([]float64, nFeats)

	cands := make([][]float64, nFeats)
	for j := 0; j < nFeats; j++ {
		cands[j] = gbCandidateThresholds(X, j, gb.MaxThresholdsPerFe)
	}

	F := make([]float64, n)
	for i := range F {
		F[i] = gb.Init
	}
	r := make([]float64, n)
	for m := 0; m < gb.NEstimators; m++ {
		total := 0.0
		mean := 0.0
		for i := 0; i < n; i++ {
			r[i] = float64(y[i]) - sigmoid(F[i])
			mean += r[i]
		}
		mean /= float64(n)
		for i := 0; i < n; i++ {
			d := r[i] - mean
			total += d * d
		}

		best := Stump{Feature: -1}
		bestSSE := math.MaxFloat64
		for j := 0; j < nFeats; j++ {
			for _, thr := range cands[j] {
				s, sse, ok := fitStump(X, r, j, thr, gb.MinSamples)
				if ok && sse < bestSSE {
					bestSSE = sse
					best = s
				}
			}
		}
		if best.Feature == -1 {
			break
		}
		gb.Stumps = append(gb.Stumps, best)
		if gain := total - bestSSE; gain > 0 {
			gb.Importance[best.Feature] += gain
		}
		for i := 0; i < n; i++ {
			F[i] += gb.LearningRate * best.value(X[i])
		}
	}
	return nil
}

func fitStump(X [][]float64, r []float64, j int, thr float64, minSamples int) (Stump, float64, bool) {
	var leftSum, rightSum, leftCount, rightCount float64
	for i := range X {
		if X[i][j] <= thr {
			leftSum += r[i]
			leftCount++
		} else {
			rightSum += r[i]
			rightCount++
		}
	}
	if leftCount == 0 || rightCount == 0 || int(leftCount) < minSamples || int(rightCount) < minSamples {
		return Stump{}, 0, false
	}
	s := Stump{Feature: j, Threshold: thr, LeftVal: leftSum / leftCount, RightVal: rightSum / rightCount}
	sse := 0.0
	for i := range X {
		d := r[i] - s.value(X[i])
		sse += d * d
	}
	return s, sse, true
}

func (s Stump) value(x []float64) float64 {
	if x[s.Feature] > s.Threshold {
		return s.RightVal
	}
	return s.LeftVal
}

func (gb *GradientBoosting) PredictProba(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i := range X {
		f := gb.Init
		for _, s := range gb.Stumps {
			f += gb.LearningRate * s.value(X[i])
		}
		out[i] = sigmoid(f)
	}
	return out
}

func (gb *GradientBoosting) Predict(X [][]float64) []int {
	return threshold(gb.PredictProba(X))
}

// FeatureImportance is the squared-error reduction each feature contributed,
// summed over stumps.
func (gb *GradientBoosting) FeatureImportance() []float64 {
	return append([]float64(nil), gb.Importance...)
}

func gbCandidateThresholds(X [][]float64, j int, nCand int) []float64 {
	if nCand <= 0 {
		nCand = 16
	}
	n := len(X)
	vals := make([]float64, n)
	for i := 0; i < n; i++ {
		vals[i] = X[i][j]
	}
	sort.Float64s(vals)
	out := make([]float64, 0, nCand)
	for k := 1; k < nCand; k++ {
		idx := int(math.Round(float64(k) / float64(nCand) * float64(n-1)))
		if idx < 0 || idx >= n {
			continue
		}
		thr := vals[idx]
		if len(out) == 0 || thr != out[len(out)-1] {
			out = append(out, thr)
		}
	}
	if len(out) == 0 {
		out = append(out, vals[n/2])
	}
	return out
}
