package model

import "time"

// EventCandidate is one calendar meeting recovered from a schedule document.
// Fields hold the text exactly as captured from the source; nothing is
// normalised here. Location is empty when the source did not provide one.
type EventCandidate struct {
	Title string `json:"title"`

	// Days is the raw weekday token(s), e.g. "MoWeFr".
	Days string `json:"days"`

	// Start / End are clock strings with an optional meridiem, e.g. "9:30AM".
	Start string `json:"start"`
	End   string `json:"end"`

	Location string `json:"location,omitempty"`
}

// Complete reports whether the required fields (everything but Location)
// are non-empty.
func (e EventCandidate) Complete() bool {
	return e.Title != "" && e.Days != "" && e.Start != "" && e.End != ""
}

// ExtractionResult is what every strategy and the arbitrator return.
// Confidence applies to the result as a whole and lies in [0, 1].
type ExtractionResult struct {
	Events     []EventCandidate `json:"events"`
	Confidence float64          `json:"confidence"`
}

// Empty returns the zero-confidence result used for "nothing found".
func Empty() ExtractionResult {
	return ExtractionResult{Events: []EventCandidate{}, Confidence: 0.0}
}

// Occurrence represents a single concrete meeting of an extracted event
// after weekly recurrence expansion.
type Occurrence struct {
	// UID is the stable identifier shared by all occurrences of one event.
	UID string `json:"uid"`

	// InstanceKey uniquely identifies one occurrence, derived from the
	// local start time.
	InstanceKey string `json:"instance_key"`

	Summary  string `json:"summary"`
	Location string `json:"location,omitempty"`

	// Start / End are in the configured display timezone.
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
