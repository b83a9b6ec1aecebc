package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devicefailure/internal/features"
	"devicefailure/internal/models"
)

func TestAUC_KnownValues(t *testing.T) {
	auc, err := AUC([]int{0, 0, 1, 1}, []float64{0.1, 0.4, 0.35, 0.8})
	require.NoError(t, err)
	assert.InDelta(t, 0.75, auc, 1e-12)

	auc, err = AUC([]int{0, 1}, []float64{0.2, 0.9})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, auc, 1e-12)

	auc, err = AUC([]int{1, 0}, []float64{0.2, 0.9})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, auc, 1e-12)
}

func TestAUC_TiesCountHalf(t *testing.T) {
	auc, err := AUC([]int{0, 1, 0, 1}, []float64{0.5, 0.5, 0.5, 0.5})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, auc, 1e-12)
}

func TestAUC_SingleClassIsUndefined(t *testing.T) {
	_, err := AUC([]int{0, 0, 0}, []float64{0.1, 0.2, 0.3})
	assert.ErrorIs(t, err, ErrUndefinedAUC)
	_, err = ROCCurve([]int{1, 1}, []float64{0.1, 0.2}, 10)
	assert.ErrorIs(t, err, ErrUndefinedAUC)
}

func TestAUC_LengthMismatch(t *testing.T) {
	_, err := AUC([]int{0, 1}, []float64{0.3})
	assert.Error(t, err)
}

func TestMisclassificationRate(t *testing.T) {
	mmce, err := MisclassificationRate([]int{0, 1, 1, 0}, []float64{0.2, 0.7, 0.4, 0.6}, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, mmce, 1e-12)
	assert.Equal(t, Confusion{TP: 1, FP: 1, TN: 1, FN: 1}, ConfusionAt([]int{0, 1, 1, 0}, []float64{0.2, 0.7, 0.4, 0.6}, 0.5))
}

func TestROCCurve_Endpoints(t *testing.T) {
	curve, err := ROCCurve([]int{0, 0, 1, 1}, []float64{0.1, 0.4, 0.35, 0.8}, 20)
	require.NoError(t, err)
	require.Len(t, curve, 21)
	assert.Equal(t, ROCPoint{Threshold: 1, TPR: 0, FPR: 0}, curve[0])
	assert.Equal(t, ROCPoint{Threshold: 0, TPR: 1, FPR: 1}, curve[20])
	for i := 1; i < len(curve); i++ {
		assert.GreaterOrEqual(t, curve[i].TPR, curve[i-1].TPR)
		assert.GreaterOrEqual(t, curve[i].FPR, curve[i-1].FPR)
	}
}

type fixedModel struct {
	ps  []float64
	imp []float64
}

func (m *fixedModel) Fit([][]float64, []int) error         { return nil }
func (m *fixedModel) Predict(X [][]float64) []int          { return nil }
func (m *fixedModel) PredictProba(X [][]float64) []float64 { return m.ps }
func (m *fixedModel) Name() string                         { return "fixed" }
func (m *fixedModel) FeatureImportance() []float64         { return m.imp }

type opaqueModel struct{}

func (opaqueModel) Fit([][]float64, []int) error         { return nil }
func (opaqueModel) Predict(X [][]float64) []int          { return nil }
func (opaqueModel) PredictProba(X [][]float64) []float64 { return nil }
func (opaqueModel) Name() string                         { return "opaque" }

func TestEvaluate(t *testing.T) {
	task := &features.Task{X: make([][]float64, 4), Y: []int{0, 0, 1, 1}, Positive: 1}
	rep, err := Evaluate(&fixedModel{ps: []float64{0.1, 0.4, 0.35, 0.8}}, task, 10)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, rep.AUC, 1e-12)
	assert.InDelta(t, 0.25, rep.MMCE, 1e-12)
	assert.Equal(t, 2, rep.Positives)
	assert.Len(t, rep.Curve, 11)

	rep, err = Evaluate(&fixedModel{ps: []float64{0.1, 0.4, 0.35, 0.8}}, task, 0)
	require.NoError(t, err)
	assert.Nil(t, rep.Curve)

	noPos := &features.Task{X: make([][]float64, 2), Y: []int{0, 0}, Positive: 1}
	_, err = Evaluate(&fixedModel{ps: []float64{0.1, 0.2}}, noPos, 10)
	assert.ErrorIs(t, err, ErrUndefinedAUC)
}

func TestFeatureImportance_SortedDescending(t *testing.T) {
	m := &fixedModel{imp: []float64{0.1, 0.5, 0.0, 0.4}}
	ranked, err := FeatureImportance(m, []string{"a", "b", "c", "d"})
	require.NoError(t, err)
	names := make([]string, len(ranked))
	for i, r := range ranked {
		names[i] = r.Feature
	}
	assert.Equal(t, []string{"b", "d", "a", "c"}, names)
	assert.InDelta(t, 0.5, ranked[0].Share, 1e-12)

	_, err = FeatureImportance(m, []string{"a"})
	assert.Error(t, err)
	_, err = FeatureImportance(opaqueModel{}, []string{"a"})
	assert.Error(t, err)
}

func TestFeatureImportance_RealForest(t *testing.T) {
	rf := models.NewRandomForest()
	rf.NEstimators, rf.Seed = 25, 3
	X := [][]float64{{0, 1}, {0, 2}, {1, 1}, {1, 2}, {0, 3}, {1, 3}}
	y := []int{0, 0, 1, 1, 0, 1}
	require.NoError(t, rf.Fit(X, y))
	ranked, err := FeatureImportance(rf, []string{"signal", "noise"})
	require.NoError(t, err)
	assert.Equal(t, "signal", ranked[0].Feature)
}
