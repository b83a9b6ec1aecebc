package models

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// RandomForest bags decision trees on bootstrap samples and tries MaxFeatures
// (mtry) random features per split. Zero MaxFeatures means floor(sqrt(p)).
type RandomForest struct {
	NEstimators        int
	MaxDepth           int
	MinSamples         int
	MaxThresholdsPerFe int
	MaxFeatures        int
	Seed               int64
	Trees              []*DecisionTree
}

func NewRandomForest() *RandomForest {
	return &RandomForest{NEstimators: 100, MaxDepth: 12, MinSamples: 2, MaxThresholdsPerFe: 32, Trees: []*DecisionTree{}}
}

func (rf *RandomForest) Name() string { return "RandomForest" }

func (rf *RandomForest) Fit(X [][]float64, y []int) error {
	if err := validateFit(X, y); err != nil {
		return err
	}
	mtry := rf.MaxFeatures
	if mtry <= 0 {
		mtry = int(math.Max(1, math.Floor(math.Sqrt(float64(len(X[0]))))))
	}
	trees, err := growTrees(X, y, rf.NEstimators, rf.Seed, func() *DecisionTree {
		dt := NewDecisionTree()
		dt.MaxDepth = rf.MaxDepth
		dt.MinSamplesSplit = rf.MinSamples
		dt.MaxThresholdsPerFe = rf.MaxThresholdsPerFe
		dt.MaxFeatures = mtry
		return dt
	})
	if err != nil {
		return err
	}
	rf.Trees = trees
	return nil
}

func (rf *RandomForest) Predict(X [][]float64) []int {
	return threshold(rf.PredictProba(X))
}

func (rf *RandomForest) PredictProba(X [][]float64) []float64 {
	return averageProba(rf.Trees, X)
}

// FeatureImportance is the mean decrease in Gini impurity per feature,
// averaged over trees.
func (rf *RandomForest) FeatureImportance() []float64 {
	return meanImportance(rf.Trees)
}

// growTrees fits n trees, each on a bootstrap sample drawn from a generator
// seeded once, with every tree getting its own derived seed.
func growTrees(X [][]float64, y []int, n int, seed int64, newTree func() *DecisionTree) ([]*DecisionTree, error) {
	if n <= 0 {
		n = 100
	}
	rng := rand.New(rand.NewSource(seed))
	rows := len(X)
	trees := make([]*DecisionTree, 0, n)
	for k := 0; k < n; k++ {
		Xb := make([][]float64, rows)
		yb := make([]int, rows)
		for i := 0; i < rows; i++ {
			j := rng.Intn(rows)
			Xb[i] = X[j]
			yb[i] = y[j]
		}
		dt := newTree()
		dt.Seed = rng.Int63()
		if err := dt.Fit(Xb, yb); err != nil {
			return nil, err
		}
		trees = append(trees, dt)
	}
	return trees, nil
}

func averageProba(trees []*DecisionTree, X [][]float64) []float64 {
	out := make([]float64, len(X))
	if len(trees) == 0 {
		for i := range out {
			out[i] = 0.5
		}
		return out
	}
	for _, dt := range trees {
		floats.Add(out, dt.PredictProba(X))
	}
	floats.Scale(1/float64(len(trees)), out)
	return out
}

func meanImportance(trees []*DecisionTree) []float64 {
	if len(trees) == 0 {
		return nil
	}
	out := make([]float64, len(trees[0].Importance))
	for _, dt := range trees {
		floats.Add(out, dt.Importance)
	}
	floats.Scale(1/float64(len(trees)), out)
	return out
}
