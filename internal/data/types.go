package data

import (
	"strconv"
	"time"
)

const NumAttributes = 9

const DateLayout = "2006-01-02"

// Record is one daily telemetry observation of a device.
type Record struct {
	Date       time.Time              `json:"date"`
	Device     string                 `json:"device"`
	Failure    int                    `json:"failure"`
	Attributes [NumAttributes]float64 `json:"attributes"`
	Month      int                    `json:"month"`
}

// Dataset is read-only once loaded; later stages address it through index slices.
type Dataset struct {
	Records    []Record
	Attributes []string
}

func AttributeNames() []string {
	names := make([]string, NumAttributes)
	for i := range names {
		names[i] = "attribute_" + strconv.Itoa(i+1)
	}
	return names
}

func NewDataset(records []Record) *Dataset {
	ds := &Dataset{Records: records, Attributes: AttributeNames()}
	ds.assignMonths()
	return ds
}

func (ds *Dataset) Len() int { return len(ds.Records) }

// assignMonths numbers months from 1 at the calendar month of the earliest record.
func (ds *Dataset) assignMonths() {
	if len(ds.Records) == 0 {
		return
	}
	first := ds.Records[0].Date
	for _, r := range ds.Records[1:] {
		if r.Date.Before(first) {
			first = r.Date
		}
	}
	base := first.Year()*12 + int(first.Month())
	for i := range ds.Records {
		d := ds.Records[i].Date
		ds.Records[i].Month = d.Year()*12 + int(d.Month()) - base + 1
	}
}

// Months returns the highest month index present.
func (ds *Dataset) Months() int {
	max := 0
	for _, r := range ds.Records {
		if r.Month > max {
			max = r.Month
		}
	}
	return max
}
