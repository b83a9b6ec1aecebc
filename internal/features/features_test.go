package features

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devicefailure/internal/data"
)

func TestBuild_SelectsRowsAndLabels(t *testing.T) {
	day := time.Date(2015, 2, 1, 0, 0, 0, 0, time.UTC)
	ds := data.NewDataset([]data.Record{
		{Date: day, Device: "A", Failure: 0, Attributes: [data.NumAttributes]float64{1, 2}},
		{Date: day, Device: "B", Failure: 1, Attributes: [data.NumAttributes]float64{3, 4}},
		{Date: day, Device: "C", Failure: 0, Attributes: [data.NumAttributes]float64{5, 6}},
	})

	task, err := Build(ds, []int{2, 1}, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, task.Y)
	assert.Equal(t, 5.0, task.X[0][0])
	assert.Len(t, task.X[0], data.NumAttributes)
	assert.Equal(t, "attribute_9", task.Features[8])
	assert.Equal(t, 1, task.Positives())

	inverted, err := Build(ds, []int{2, 1}, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, inverted.Y)
}

func TestBuild_RejectsBadIndices(t *testing.T) {
	ds := data.NewDataset([]data.Record{{Date: time.Now(), Device: "A"}})
	_, err := Build(ds, nil, 1)
	assert.Error(t, err)
	_, err = Build(ds, []int{3}, 1)
	assert.Error(t, err)
}
