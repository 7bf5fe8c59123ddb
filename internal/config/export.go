package config

import (
	"time"

	"github.com/rotisserie/eris"
)

const dateLayout = "2006-01-02"

// Location resolves Timezone, falling back to time.Local when it is empty or
// unknown.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Term returns the [start, end) date range exported events recur within,
// resolved against the current date.
func (e ExportConfig) Term(loc *time.Location) (time.Time, time.Time, error) {
	return e.TermAt(loc, time.Now())
}

// TermAt is Term with an explicit "now". A missing TermStart means the start
// of now's day; a missing TermEnd means HorizonWeeks after the start. The
// returned end is exclusive (midnight after TermEnd).
func (e ExportConfig) TermAt(loc *time.Location, now time.Time) (time.Time, time.Time, error) {
	if loc == nil {
		loc = time.Local
	}

	var start time.Time
	if e.TermStart == "" {
		n := now.In(loc)
		start = time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, loc)
	} else {
		t, err := time.ParseInLocation(dateLayout, e.TermStart, loc)
		if err != nil {
			return time.Time{}, time.Time{}, eris.Wrapf(err, "config: parse term_start %q", e.TermStart)
		}
		start = t
	}

	var end time.Time
	if e.TermEnd == "" {
		weeks := e.HorizonWeeks
		if weeks <= 0 {
			weeks = defaultHorizonWeeks
		}
		end = start.AddDate(0, 0, 7*weeks)
	} else {
		t, err := time.ParseInLocation(dateLayout, e.TermEnd, loc)
		if err != nil {
			return time.Time{}, time.Time{}, eris.Wrapf(err, "config: parse term_end %q", e.TermEnd)
		}
		end = t.AddDate(0, 0, 1)
	}

	if !end.After(start) {
		return time.Time{}, time.Time{}, eris.Errorf("config: term_end %s is before term_start %s",
			end.AddDate(0, 0, -1).Format(dateLayout), start.Format(dateLayout))
	}
	return start, end, nil
}
