package ics

import (
	"sort"
	"time"

	"github.com/rotisserie/eris"

	appLog "schedscan/internal/log"
	"schedscan/internal/model"
)

const defaultMaxOccurrencesPerEvent = 500

// ExpandOptions controls how weekly series are expanded.
type ExpandOptions struct {
	Term

	// RangeStart / RangeEnd define the inclusive window for occurrences.
	// Zero values fall back to the term bounds.
	RangeStart time.Time
	RangeEnd   time.Time

	// DisplayLocation is the timezone occurrences are converted to. If nil,
	// the term location is used.
	DisplayLocation *time.Location

	// MaxOccurrencesPerEvent caps each series. If zero,
	// defaultMaxOccurrencesPerEvent is used.
	MaxOccurrencesPerEvent int
}

// ExpandResult wraps the expanded occurrences.
type ExpandResult struct {
	Occurrences []model.Occurrence
	Skipped     []Skipped
	// TruncatedEvents records UIDs that hit the MaxOccurrencesPerEvent cap.
	TruncatedEvents []string
}

// Expand resolves each candidate to its weekly series within the term and
// returns the concrete meetings in the requested range, sorted by start.
func Expand(events []model.EventCandidate, opts ExpandOptions) (ExpandResult, error) {
	var result ExpandResult

	term, err := opts.Term.normalize()
	if err != nil {
		return result, err
	}
	if opts.RangeStart.IsZero() {
		opts.RangeStart = term.Start
	}
	if opts.RangeEnd.IsZero() {
		opts.RangeEnd = term.End
	}
	if opts.RangeEnd.Before(opts.RangeStart) {
		return result, eris.New("ics: RangeEnd is before RangeStart")
	}
	if opts.DisplayLocation == nil {
		opts.DisplayLocation = term.Location
	}
	if opts.MaxOccurrencesPerEvent <= 0 {
		opts.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}

	all, skipped := buildSeries(events, term)
	result.Skipped = skipped
	result.Occurrences = make([]model.Occurrence, 0)

	for _, s := range all {
		times := s.rule.Between(opts.RangeStart, opts.RangeEnd, true)
		if len(times) > opts.MaxOccurrencesPerEvent {
			times = times[:opts.MaxOccurrencesPerEvent]
			result.TruncatedEvents = append(result.TruncatedEvents, s.uid)
			appLog.Error("ics expand: truncated occurrences due to cap",
				eris.New("max occurrences reached"),
				"uid", s.uid,
				"cap", opts.MaxOccurrencesPerEvent,
			)
		}
		for _, start := range times {
			result.Occurrences = append(result.Occurrences, makeOccurrence(s, start, opts.DisplayLocation))
		}
	}

	sort.SliceStable(result.Occurrences, func(i, j int) bool {
		a, b := result.Occurrences[i], result.Occurrences[j]
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		return a.Summary < b.Summary
	})

	return result, nil
}

func makeOccurrence(s series, start time.Time, displayLoc *time.Location) model.Occurrence {
	startLocal := start.In(displayLoc)
	return model.Occurrence{
		UID:         s.uid,
		InstanceKey: s.uid + "/" + startLocal.Format(time.RFC3339),
		Summary:     s.event.Title,
		Location:    s.event.Location,
		Start:       startLocal,
		End:         start.Add(s.duration).In(displayLoc),
	}
}
