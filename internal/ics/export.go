// Package ics turns extracted event candidates into calendar data: an
// iCalendar feed with one weekly recurring VEVENT per candidate, or the
// concrete occurrences of those series inside a date range.
package ics

import (
	"io"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/rotisserie/eris"

	appLog "schedscan/internal/log"
	"schedscan/internal/model"
)

const (
	defaultProdID = "-//schedscan//schedule export//EN"
	localLayout   = "20060102T150405"
)

// ExportOptions controls calendar generation.
type ExportOptions struct {
	Term

	// ProdID overrides the calendar PRODID.
	ProdID string
	// Name is published as X-WR-CALNAME when set.
	Name string
	// Stamp is written as DTSTAMP. Zero means now.
	Stamp time.Time
}

// Export builds a calendar holding one weekly recurring event per
// interpretable candidate. Candidates that cannot be interpreted are
// returned in skipped and never abort the export.
func Export(events []model.EventCandidate, opts ExportOptions) (*ical.Calendar, []Skipped, error) {
	term, err := opts.Term.normalize()
	if err != nil {
		return nil, nil, err
	}
	if opts.ProdID == "" {
		opts.ProdID = defaultProdID
	}
	if opts.Stamp.IsZero() {
		opts.Stamp = time.Now()
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(opts.ProdID)
	if opts.Name != "" {
		cal.SetXWRCalName(opts.Name)
	}
	tzid, ok := tzidFor(term.Location)
	if ok {
		cal.SetXWRTimezone(tzid)
	}

	all, skipped := buildSeries(events, term)
	for _, s := range all {
		ev := cal.AddEvent(s.uid)
		ev.SetDtStampTime(opts.Stamp)
		ev.SetSummary(s.event.Title)
		if s.event.Location != "" {
			ev.SetLocation(s.event.Location)
		}
		end := s.first.Add(s.duration)
		if ok {
			tz := &ical.KeyValues{Key: string(ical.ParameterTzid), Value: []string{tzid}}
			ev.SetProperty(ical.ComponentPropertyDtStart, s.first.Format(localLayout), tz)
			ev.SetProperty(ical.ComponentPropertyDtEnd, end.Format(localLayout), tz)
		} else {
			ev.SetStartAt(s.first)
			ev.SetEndAt(end)
		}
		ev.AddProperty(ical.ComponentPropertyRrule, s.rule.OrigOptions.RRuleString())
	}

	for _, sk := range skipped {
		appLog.Debug("ics export skipped event", "title", sk.Event.Title, "reason", sk.Reason)
	}
	appLog.Info("ics export completed", "events", len(all), "skipped", len(skipped))

	return cal, skipped, nil
}

// Write serializes cal to w.
func Write(w io.Writer, cal *ical.Calendar) error {
	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return eris.Wrap(err, "ics: write calendar")
	}
	return nil
}

// tzidFor returns the IANA name of loc. Locations without one are written
// in UTC instead.
func tzidFor(loc *time.Location) (string, bool) {
	switch name := loc.String(); name {
	case "", "Local", "UTC":
		return "", false
	default:
		return name, true
	}
}
