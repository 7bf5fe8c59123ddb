package ics

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/teambition/rrule-go"

	"schedscan/internal/model"
)

// uidNamespace scopes the name-based UUIDs of exported events.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:schedscan:event"))

var rruleWeekday = map[time.Weekday]rrule.Weekday{
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
	time.Sunday:    rrule.SU,
}

// Term is the half-open date range [Start, End) weekly meetings repeat in.
type Term struct {
	Start time.Time
	End   time.Time
	// Location interprets extracted clock times. Nil means time.Local.
	Location *time.Location
}

func (t Term) normalize() (Term, error) {
	if t.Location == nil {
		t.Location = time.Local
	}
	if t.Start.IsZero() || t.End.IsZero() {
		return t, eris.New("ics: term start and end are required")
	}
	if !t.End.After(t.Start) {
		return t, eris.Errorf("ics: term end %s is not after start %s",
			t.End.Format(time.DateOnly), t.Start.Format(time.DateOnly))
	}
	return t, nil
}

// Skipped records a candidate that could not be turned into a calendar
// series.
type Skipped struct {
	Event  model.EventCandidate `json:"event"`
	Reason string               `json:"reason"`
}

// series is one candidate resolved to concrete times.
type series struct {
	uid      string
	event    model.EventCandidate
	first    time.Time
	duration time.Duration
	rule     *rrule.RRule
}

// UID returns the stable identifier for ev. Identical candidates share a UID.
func UID(ev model.EventCandidate) string {
	key := strings.Join([]string{ev.Title, ev.Days, ev.Start, ev.End, ev.Location}, "\x1f")
	return uuid.NewSHA1(uidNamespace, []byte(key)).String() + "@schedscan"
}

// buildSeries resolves every candidate against term, skipping the ones whose
// days or clock times cannot be interpreted and exact duplicates.
func buildSeries(events []model.EventCandidate, term Term) ([]series, []Skipped) {
	out := make([]series, 0, len(events))
	skipped := make([]Skipped, 0)
	seen := make(map[string]bool, len(events))

	for _, ev := range events {
		s, err := newSeries(ev, term)
		if err != nil {
			skipped = append(skipped, Skipped{Event: ev, Reason: err.Error()})
			continue
		}
		if seen[s.uid] {
			skipped = append(skipped, Skipped{Event: ev, Reason: "duplicate event"})
			continue
		}
		seen[s.uid] = true
		out = append(out, s)
	}
	return out, skipped
}

func newSeries(ev model.EventCandidate, term Term) (series, error) {
	if !ev.Complete() {
		return series{}, eris.New("incomplete event")
	}
	days, err := ParseDays(ev.Days)
	if err != nil {
		return series{}, err
	}
	start, err := ParseClock(ev.Start)
	if err != nil {
		return series{}, err
	}
	end, err := ParseClock(ev.End)
	if err != nil {
		return series{}, err
	}
	if end.Minutes() <= start.Minutes() {
		return series{}, eris.Errorf("ics: end %s is not after start %s", ev.End, ev.Start)
	}

	first, ok := firstMeeting(days, start, term)
	if !ok {
		return series{}, eris.New("ics: no meeting falls within the term")
	}

	byday := make([]rrule.Weekday, 0, len(days))
	for _, d := range days {
		byday = append(byday, rruleWeekday[d])
	}
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Dtstart:   first,
		Byweekday: byday,
		Until:     term.End.Add(-time.Second),
	})
	if err != nil {
		return series{}, eris.Wrap(err, "ics: build rrule")
	}

	return series{
		uid:      UID(ev),
		event:    ev,
		first:    first,
		duration: time.Duration(end.Minutes()-start.Minutes()) * time.Minute,
		rule:     rule,
	}, nil
}

// firstMeeting finds the earliest meeting on or after the term start.
func firstMeeting(days []time.Weekday, clock Clock, term Term) (time.Time, bool) {
	meets := make(map[time.Weekday]bool, len(days))
	for _, d := range days {
		meets[d] = true
	}
	day := term.Start.In(term.Location)
	// Two weeks covers a meeting on the term's first weekday that starts
	// before term.Start.
	for i := 0; i < 14; i++ {
		d := day.AddDate(0, 0, i)
		if !meets[d.Weekday()] {
			continue
		}
		t := clock.On(d, term.Location)
		if t.Before(term.Start) {
			continue
		}
		return t, t.Before(term.End)
	}
	return time.Time{}, false
}
