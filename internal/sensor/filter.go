package sensor

import "time"

// Filter is the resolved row filter configuration. Empty string constraints
// are unset; the time bounds are only applied when their Has flag is set.
//
// Match is a pure function of (row, filter). A filter with Start after End is
// legal and matches nothing.
type Filter struct {
	Site   string
	Device string
	Metric string

	Start    time.Time
	HasStart bool
	End      time.Time
	HasEnd   bool
}

// Match reports whether row passes every configured constraint.
// When a time bound is set, rows with an unparseable timestamp fail; with no
// time bound they pass through untouched.
func (f Filter) Match(row Row) bool {
	if f.Site != "" && row.Site != f.Site {
		return false
	}
	if f.Device != "" && row.Device != f.Device {
		return false
	}
	if f.Metric != "" && row.Metric != f.Metric {
		return false
	}

	if f.HasStart || f.HasEnd {
		if !row.TimeValid {
			return false
		}
		if f.HasStart && row.Time.Before(f.Start) {
			return false
		}
		if f.HasEnd && row.Time.After(f.End) {
			return false
		}
	}

	return true
}
