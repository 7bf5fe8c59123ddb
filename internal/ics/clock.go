package ics

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"schedscan/internal/extract"
)

// Clock is a wall-clock time of day.
type Clock struct {
	Hour   int
	Minute int
}

// Minutes returns the number of minutes since midnight.
func (c Clock) Minutes() int { return c.Hour*60 + c.Minute }

// On returns the time c on the calendar day of d in loc.
func (c Clock) On(d time.Time, loc *time.Location) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, c.Hour, c.Minute, 0, 0, loc)
}

// ParseClock parses an extracted clock string such as "9:30", "9:30AM" or
// "2:15 pm". Without a meridiem the value is read as a 24-hour clock.
func ParseClock(s string) (Clock, error) {
	v := strings.ToUpper(strings.Join(strings.Fields(s), ""))
	meridiem := ""
	if strings.HasSuffix(v, "AM") || strings.HasSuffix(v, "PM") {
		meridiem = v[len(v)-2:]
		v = v[:len(v)-2]
	}

	hs, ms, ok := strings.Cut(v, ":")
	if !ok {
		return Clock{}, eris.Errorf("ics: invalid clock %q", s)
	}
	h, err := strconv.Atoi(hs)
	if err != nil {
		return Clock{}, eris.Errorf("ics: invalid hour in %q", s)
	}
	m, err := strconv.Atoi(ms)
	if err != nil || len(ms) != 2 || m > 59 {
		return Clock{}, eris.Errorf("ics: invalid minute in %q", s)
	}

	switch meridiem {
	case "":
		if h < 0 || h > 23 {
			return Clock{}, eris.Errorf("ics: hour out of range in %q", s)
		}
	default:
		if h < 1 || h > 12 {
			return Clock{}, eris.Errorf("ics: hour out of range in %q", s)
		}
		h %= 12
		if meridiem == "PM" {
			h += 12
		}
	}
	return Clock{Hour: h, Minute: m}, nil
}

var weekdayByCode = map[string]time.Weekday{
	"mo": time.Monday,
	"tu": time.Tuesday,
	"we": time.Wednesday,
	"th": time.Thursday,
	"fr": time.Friday,
	"sa": time.Saturday,
	"su": time.Sunday,
}

// dayNamePattern matches whole weekday names and their usual abbreviations.
var dayNamePattern = regexp.MustCompile(`(?i)\b(mon(?:day)?|tue(?:s(?:day)?)?|wed(?:nesday)?|thu(?:r(?:s(?:day)?)?)?|fri(?:day)?|sat(?:urday)?|sun(?:day)?)\b`)

// ParseDays returns the weekdays named in s, in order of first appearance.
// Whole names such as "Saturday" or "Tues" take precedence; only when none
// are present is s read as packed two-letter codes ("MoWe"). It errors when
// s names no weekday at all.
func ParseDays(s string) ([]time.Weekday, error) {
	codes := dayNamePattern.FindAllString(s, -1)
	if len(codes) == 0 {
		codes = extract.WeekdayCodes(s)
	}

	out := make([]time.Weekday, 0, len(codes))
	seen := make(map[time.Weekday]bool, len(codes))
	for _, c := range codes {
		d := weekdayByCode[strings.ToLower(c[:2])]
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	if len(out) == 0 {
		return nil, eris.Errorf("ics: no weekday in %q", s)
	}
	return out, nil
}
