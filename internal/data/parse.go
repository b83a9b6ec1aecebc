package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"devicefailure/internal/errs"
)

var dateLayouts = []string{DateLayout, time.RFC3339, "2006-01-02 15:04:05"}

type columns struct {
	date, device, failure int
	attrs                 [NumAttributes]int
}

// ReadCSV parses the telemetry CSV. Columns are located by header name, so
// both attribute_1 and attribute1 spellings are accepted.
func ReadCSV(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errs.DataQuality("empty csv: missing header")
	}
	if err != nil {
		return nil, &errs.IOError{Op: "read csv header", Err: err}
	}
	cols, err := locateColumns(header)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, 1024)
	line := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, errs.DataQuality("line %d: %v", line, pe.Err)
			}
			return nil, &errs.IOError{Op: "read csv", Err: err}
		}
		rec, err := parseRow(row, cols, line)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return NewDataset(records), nil
}

func locateColumns(header []string) (columns, error) {
	c := columns{date: -1, device: -1, failure: -1}
	for i := range c.attrs {
		c.attrs[i] = -1
	}
	for i, h := range header {
		key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(h), "_", ""))
		switch key {
		case "date":
			c.date = i
		case "device":
			c.device = i
		case "failure":
			c.failure = i
		default:
			if !strings.HasPrefix(key, "attribute") {
				continue
			}
			n, err := strconv.Atoi(strings.TrimPrefix(key, "attribute"))
			if err == nil && n >= 1 && n <= NumAttributes {
				c.attrs[n-1] = i
			}
		}
	}
	var missing []string
	if c.date < 0 {
		missing = append(missing, "date")
	}
	if c.device < 0 {
		missing = append(missing, "device")
	}
	if c.failure < 0 {
		missing = append(missing, "failure")
	}
	for i, idx := range c.attrs {
		if idx < 0 {
			missing = append(missing, "attribute_"+strconv.Itoa(i+1))
		}
	}
	if len(missing) > 0 {
		return c, errs.DataQuality("missing columns: %s", strings.Join(missing, ", "))
	}
	return c, nil
}

func parseRow(row []string, c columns, line int) (Record, error) {
	var rec Record
	field := func(idx int) string {
		if idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	raw := field(c.date)
	d, err := parseDate(raw)
	if err != nil {
		return rec, errs.DataQuality("line %d: date %q is not a date", line, raw)
	}
	rec.Date = d

	rec.Device = field(c.device)
	if rec.Device == "" {
		return rec, errs.DataQuality("line %d: device is missing", line)
	}

	switch lbl := field(c.failure); lbl {
	case "0":
		rec.Failure = 0
	case "1":
		rec.Failure = 1
	default:
		return rec, errs.DataQuality("line %d: failure label %q not in {0,1}", line, lbl)
	}

	for i, idx := range c.attrs {
		v := field(idx)
		if v == "" {
			return rec, errs.DataQuality("line %d: attribute_%d is missing", line, i+1)
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return rec, errs.DataQuality("line %d: attribute_%d %q is not numeric", line, i+1, v)
		}
		rec.Attributes[i] = f
	}
	return rec, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}
