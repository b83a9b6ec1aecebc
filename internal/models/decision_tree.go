package models

import (
	"math"
	"math/rand"
)

type DTNode struct {
	Feature   int
	Threshold float64
	Left      *DTNode
	Right     *DTNode
	IsLeaf    bool
	ProbaLeaf float64
}

// DecisionTree is a binary CART classifier on Gini impurity. Thresholds are
// sampled from the node's values and, when MaxFeatures is set, only a random
// subset of features is tried at each node. All randomness comes from Seed.
type DecisionTree struct {
	MaxDepth           int
	MinSamplesSplit    int
	MaxThresholdsPerFe int
	MaxFeatures        int
	Seed               int64
	Root               *DTNode
	Importance         []float64

	rng   *rand.Rand
	total float64
}

func NewDecisionTree() *DecisionTree {
	return &DecisionTree{MaxDepth: 12, MinSamplesSplit: 2, MaxThresholdsPerFe: 32}
}

func (dt *DecisionTree) Name() string { return "DecisionTree" }

func (dt *DecisionTree) Fit(X [][]float64, y []int) error {
	if err := validateFit(X, y); err != nil {
		return err
	}
	dt.rng = rand.New(rand.NewSource(dt.Seed))
	dt.Importance = make([]float64, len(X[0]))
	dt.total = float64(len(X))
	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = i
	}
	dt.Root = dt.build(X, y, idx, 0)
	dt.rng = nil
	return nil
}

func (dt *DecisionTree) Predict(X [][]float64) []int {
	return threshold(dt.PredictProba(X))
}

func (dt *DecisionTree) PredictProba(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i := range X {
		out[i] = dt.predictProbaOne(X[i])
	}
	return out
}

func (dt *DecisionTree) FeatureImportance() []float64 {
	return append([]float64(nil), dt.Importance...)
}

func (dt *DecisionTree) predictProbaOne(x []float64) float64 {
	n := dt.Root
	if n == nil {
		return 0.5
	}
	for !n.IsLeaf {
		if x[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
		if n == nil {
			return 0.5
		}
	}
	return n.ProbaLeaf
}

func (dt *DecisionTree) build(X [][]float64, y []int, idx []int, depth int) *DTNode {
	node := &DTNode{}
	p := classProba(y, idx)
	if len(idx) < dt.MinSamplesSplit || (dt.MaxDepth > 0 && depth >= dt.MaxDepth) || p == 0 || p == 1 {
		node.IsLeaf = true
		node.ProbaLeaf = p
		return node
	}

	parent := gini(p)
	bestFeature := -1
	bestThr := 0.0
	bestImp := parent
	var leftIdxBest, rightIdxBest []int

	feats := dt.pickFeatures(len(X[0]))
	for _, f := range feats {
		for _, thr := range dt.candidateThresholds(X, idx, f) {
			lIdx, rIdx := splitIdx(X, idx, f, thr)
			if len(lIdx) == 0 || len(rIdx) == 0 {
				continue
			}
			imp := weightedGini(y, lIdx, rIdx)
			if imp < bestImp {
				bestImp = imp
				bestFeature = f
				bestThr = thr
				leftIdxBest = lIdx
				rightIdxBest = rIdx
			}
		}
	}

	if bestFeature == -1 {
		node.IsLeaf = true
		node.ProbaLeaf = p
		return node
	}
	dt.Importance[bestFeature] += float64(len(idx)) / dt.total * (parent - bestImp)
	node.Feature = bestFeature
	node.Threshold = bestThr
	node.Left = dt.build(X, y, leftIdxBest, depth+1)
	node.Right = dt.build(X, y, rightIdxBest, depth+1)
	return node
}

func classProba(y []int, idx []int) float64 {
	if len(idx) == 0 {
		return 0.5
	}
	sum := 0
	for _, i := range idx {
		sum += y[i]
	}
	return float64(sum) / float64(len(idx))
}

func gini(p float64) float64 { return 2 * p * (1 - p) }

func splitIdx(X [][]float64, idx []int, f int, thr float64) ([]int, []int) {
	l := make([]int, 0, len(idx))
	r := make([]int, 0, len(idx))
	for _, i := range idx {
		if X[i][f] <= thr {
			l = append(l, i)
		} else {
			r = append(r, i)
		}
	}
	return l, r
}

func weightedGini(y []int, lIdx, rIdx []int) float64 {
	wl := float64(len(lIdx))
	wr := float64(len(rIdx))
	n := wl + wr
	return (wl/n)*gini(classProba(y, lIdx)) + (wr/n)*gini(classProba(y, rIdx))
}

func (dt *DecisionTree) candidateThresholds(X [][]float64, idx []int, f int) []float64 {
	values := make([]float64, len(idx))
	for j, i := range idx {
		values[j] = X[i][f]
	}
	m := len(values)
	if dt.MaxThresholdsPerFe > 0 && dt.MaxThresholdsPerFe < m {
		m = dt.MaxThresholdsPerFe
	}
	// partial Fisher-Yates: the first m entries become the sample
	for i := 0; i < m; i++ {
		j := i + dt.rng.Intn(len(values)-i)
		values[i], values[j] = values[j], values[i]
	}
	return dedupe(values[:m])
}

func dedupe(vs []float64) []float64 {
	seen := make(map[float64]struct{}, len(vs))
	out := vs[:0]
	for _, v := range vs {
		if _, ok := seen[v]; ok || math.IsNaN(v) {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func (dt *DecisionTree) pickFeatures(nFeats int) []int {
	if dt.MaxFeatures <= 0 || dt.MaxFeatures >= nFeats {
		out := make([]int, nFeats)
		for i := range out {
			out[i] = i
		}
		return out
	}
	return dt.rng.Perm(nFeats)[:dt.MaxFeatures]
}
