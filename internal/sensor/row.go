package sensor

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Row is one reading as it came off the input, after field coercion.
// A row whose value could not be parsed never reaches the aggregator.
type Row struct {
	Time      time.Time
	TimeValid bool

	Site   string
	Device string
	Metric string
	Unit   string

	Value      float64
	ValueValid bool
}

// Accepted timestamp layouts, first match wins.
// "2025-01-01 00:00:00 +0000 UTC" is what most exporters emit (it is
// time.Time's default String format); the zone-less layouts are taken as UTC.
var timeLayouts = []string{
	"2006-01-02 15:04:05 -0700 MST",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime parses s against the accepted layouts.
// ok is false if no layout matches.
func ParseTime(s string) (t time.Time, ok bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseValue parses s as a finite float64.
// Empty, non-numeric and NaN/Inf inputs all come back with ok=false.
func ParseValue(s string) (v float64, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Layout maps the six required columns to their positions in the input,
// resolved from the CSV header so column order in the file doesn't matter.
type Layout struct {
	Time   int
	Site   int
	Device int
	Metric int
	Unit   int
	Value  int

	// NumFields is the header width; shorter records are rejected.
	NumFields int
}

// ResolveLayout builds a Layout from a header record.
func ResolveLayout(header []string) (Layout, error) {
	l := Layout{Time: -1, Site: -1, Device: -1, Metric: -1, Unit: -1, Value: -1, NumFields: len(header)}
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case "time":
			l.Time = i
		case "site":
			l.Site = i
		case "device":
			l.Device = i
		case "metric":
			l.Metric = i
		case "unit":
			l.Unit = i
		case "value":
			l.Value = i
		}
	}
	for _, col := range []struct {
		name string
		pos  int
	}{
		{"time", l.Time}, {"site", l.Site}, {"device", l.Device},
		{"metric", l.Metric}, {"unit", l.Unit}, {"value", l.Value},
	} {
		if col.pos == -1 {
			return Layout{}, fmt.Errorf("header is missing column %q", col.name)
		}
	}
	return l, nil
}

// RowFromRecord coerces one CSV record into a Row using the resolved layout.
func (l Layout) RowFromRecord(record []string) (Row, error) {
	if len(record) < l.NumFields {
		return Row{}, fmt.Errorf("record has %d fields, want %d", len(record), l.NumFields)
	}
	r := Row{
		Site:   record[l.Site],
		Device: record[l.Device],
		Metric: record[l.Metric],
		Unit:   record[l.Unit],
	}
	r.Time, r.TimeValid = ParseTime(record[l.Time])
	r.Value, r.ValueValid = ParseValue(record[l.Value])
	return r, nil
}
