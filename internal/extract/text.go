package extract

import (
	"strings"

	"schedscan/internal/model"
)

// FromText extracts events from unstructured text with a sliding window of
// three consecutive non-empty lines.
//
// In each window the first line is the title, and the first lines matching
// a time range, a weekday code and a location keyword fill the remaining
// fields; one line may fill several of them. The window advances one line at
// a time, so the last two lines never start a window and one event can be
// reported once per window that covers it.
func FromText(text string) model.ExtractionResult {
	lines := splitLines(text)

	events := make([]model.EventCandidate, 0)
	for i := 0; i < len(lines)-(textWindow-1); i++ {
		if ev, ok := parseWindow(lines[i : i+textWindow]); ok {
			events = append(events, ev)
		}
	}

	if len(events) == 0 {
		return model.Empty()
	}
	return model.ExtractionResult{Events: events, Confidence: TextConfidence}
}

func parseWindow(window []string) (model.EventCandidate, bool) {
	var (
		timeRange TimeRange
		haveTime  bool
		dayLine   string
		location  string
	)
	for _, line := range window {
		if !haveTime {
			timeRange, haveTime = MatchTimeRange(line)
		}
		if dayLine == "" && HasWeekday(line) {
			dayLine = line
		}
		if location == "" && HasLocation(line) {
			location = line
		}
	}

	if window[0] == "" || !haveTime || dayLine == "" {
		return model.EventCandidate{}, false
	}
	return model.EventCandidate{
		Title:    window[0],
		Days:     dayLine,
		Start:    timeRange.Start(),
		End:      timeRange.End(),
		Location: location,
	}, true
}

func splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
