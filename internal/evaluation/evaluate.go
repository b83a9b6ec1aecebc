package evaluation

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"

	"devicefailure/internal/features"
	"devicefailure/internal/models"
)

const DefaultThreshold = 0.5

type Report struct {
	Model         string     `json:"model"`
	Rows          int        `json:"rows"`
	Positives     int        `json:"positives"`
	AUC           float64    `json:"auc"`
	MMCE          float64    `json:"mmce"`
	Threshold     float64    `json:"threshold"`
	Confusion     Confusion  `json:"confusion"`
	Probabilities []float64  `json:"-"`
	Curve         []ROCPoint `json:"curve,omitempty"`
}

// Evaluate scores a held-out task. A positive resolution also returns the
// threshold sweep for ROC rendering.
func Evaluate(m models.Model, task *features.Task, resolution int) (*Report, error) {
	ps := m.PredictProba(task.X)
	auc, err := AUC(task.Y, ps)
	if err != nil {
		return nil, err
	}
	mmce, err := MisclassificationRate(task.Y, ps, DefaultThreshold)
	if err != nil {
		return nil, err
	}
	rep := &Report{
		Model:         m.Name(),
		Rows:          task.Len(),
		Positives:     task.Positives(),
		AUC:           auc,
		MMCE:          mmce,
		Threshold:     DefaultThreshold,
		Confusion:     ConfusionAt(task.Y, ps, DefaultThreshold),
		Probabilities: ps,
	}
	if resolution > 0 {
		if rep.Curve, err = ROCCurve(task.Y, ps, resolution); err != nil {
			return nil, err
		}
	}
	return rep, nil
}

type Importance struct {
	Feature string  `json:"feature"`
	Score   float64 `json:"score"`
	Share   float64 `json:"share"`
}

// FeatureImportance ranks features of a tree ensemble by impurity decrease,
// highest first; equal scores keep feature order.
func FeatureImportance(m models.Model, names []string) ([]Importance, error) {
	imp, ok := m.(models.Importancer)
	if !ok {
		return nil, fmt.Errorf("evaluation: %s does not expose feature importance", m.Name())
	}
	scores := imp.FeatureImportance()
	if len(scores) != len(names) {
		return nil, fmt.Errorf("evaluation: %d importance scores for %d features", len(scores), len(names))
	}
	total := floats.Sum(scores)
	out := make([]Importance, len(scores))
	for i, s := range scores {
		out[i] = Importance{Feature: names[i], Score: s}
		if total > 0 {
			out[i].Share = s / total
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}
