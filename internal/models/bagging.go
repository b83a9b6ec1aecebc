package models

// Bagging is a random forest that considers every feature at each split.
type Bagging struct {
	NEstimators        int
	MaxDepth           int
	MinSamples         int
	MaxThresholdsPerFe int
	Seed               int64
	Trees              []*DecisionTree
}

func NewBagging() *Bagging {
	return &Bagging{NEstimators: 100, MaxDepth: 12, MinSamples: 2, MaxThresholdsPerFe: 32, Trees: []*DecisionTree{}}
}

func (bg *Bagging) Name() string { return "Bagging" }

func (bg *Bagging) Fit(X [][]float64, y []int) error {
	if err := validateFit(X, y); err != nil {
		return err
	}
	trees, err := growTrees(X, y, bg.NEstimators, bg.Seed, func() *DecisionTree {
		dt := NewDecisionTree()
		dt.MaxDepth = bg.MaxDepth
		dt.MinSamplesSplit = bg.MinSamples
		dt.MaxThresholdsPerFe = bg.MaxThresholdsPerFe
		return dt
	})
	if err != nil {
		return err
	}
	bg.Trees = trees
	return nil
}

func (bg *Bagging) Predict(X [][]float64) []int {
	return threshold(bg.PredictProba(X))
}

func (bg *Bagging) PredictProba(X [][]float64) []float64 {
	return averageProba(bg.Trees, X)
}

func (bg *Bagging) FeatureImportance() []float64 {
	return meanImportance(bg.Trees)
}
