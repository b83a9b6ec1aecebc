package split

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devicefailure/internal/data"
	"devicefailure/internal/errs"
)

func monthlyDataset(months, perMonth int) *data.Dataset {
	start := time.Date(2015, time.January, 1, 0, 0, 0, 0, time.UTC)
	recs := make([]data.Record, 0, months*perMonth)
	for m := 0; m < months; m++ {
		for k := 0; k < perMonth; k++ {
			recs = append(recs, data.Record{Date: start.AddDate(0, m, k), Device: "D"})
		}
	}
	return data.NewDataset(recs)
}

func months(ds *data.Dataset, idx []int) map[int]bool {
	out := map[int]bool{}
	for _, i := range idx {
		out[ds.Records[i].Month] = true
	}
	return out
}

func TestTemporal_ReferenceBoundaries(t *testing.T) {
	ds := monthlyDataset(11, 3)
	w, err := Temporal(ds, 7, 2, 11)
	require.NoError(t, err)

	assert.Len(t, w.Train, 21)
	assert.Len(t, w.Validation, 6)
	assert.Len(t, w.Test, 12)
	assert.Equal(t, map[int]bool{6: true, 7: true}, months(ds, w.Validation))
	assert.Equal(t, map[int]bool{8: true, 9: true, 10: true, 11: true}, months(ds, w.Test))
	assert.Len(t, w.Fit(), 15)
	assert.False(t, months(ds, w.Fit())[6])
	require.NoError(t, w.Check())
}

func TestTemporal_PartitionProperty(t *testing.T) {
	ds := monthlyDataset(12, 2)
	for total := 3; total <= 12; total++ {
		for training := 2; training < total; training++ {
			for validation := 1; validation < training; validation++ {
				w, err := Temporal(ds, training, validation, total)
				require.NoError(t, err)
				require.NoError(t, w.Check(), "t=%d v=%d n=%d", training, validation, total)

				for _, i := range w.Train {
					assert.LessOrEqual(t, ds.Records[i].Month, training)
				}
				for _, i := range w.Test {
					m := ds.Records[i].Month
					assert.True(t, m > training && m <= total)
				}
				assert.Equal(t, 2*validation, len(w.Validation))
				assert.Equal(t, 2*total, len(w.Train)+len(w.Test))
			}
		}
	}
}

func TestTemporal_InclusiveLowerSplit(t *testing.T) {
	ds := monthlyDataset(4, 1)
	w, err := Temporal(ds, 2, 1, 4)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, w.Train)
	assert.Equal(t, []int{1}, w.Validation)
	assert.Equal(t, []int{2, 3}, w.Test)
}

func TestTemporal_RejectsDegenerateBoundaries(t *testing.T) {
	ds := monthlyDataset(6, 1)
	cases := []struct{ training, validation, total int }{
		{3, 3, 6},
		{3, 4, 6},
		{3, 0, 6},
		{6, 2, 6},
	}
	for _, c := range cases {
		_, err := Temporal(ds, c.training, c.validation, c.total)
		var cfgErr *errs.ConfigError
		assert.ErrorAs(t, err, &cfgErr, "%+v", c)
	}
}

func TestMonthRange_Inclusive(t *testing.T) {
	ds := monthlyDataset(5, 2)
	assert.Equal(t, []int{2, 3, 4, 5}, MonthRange(ds, 2, 3))
	assert.Empty(t, MonthRange(ds, 7, 9))
}
