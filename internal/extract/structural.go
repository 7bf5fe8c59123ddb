package extract

import (
	"schedscan/internal/dom"
	"schedscan/internal/model"
)

// FromStructure extracts events from card-like containers: div or li
// elements with at least three child elements, one fact per child.
//
// The first child's text is always the title. Each child's text, the first
// one included, is then classified once, in order of precedence:
// time range, weekday code, location keyword. A child that matched an
// earlier class is not tested against later ones, and each field keeps the
// first value assigned to it.
func FromStructure(root dom.Element) model.ExtractionResult {
	if root == nil {
		return model.Empty()
	}

	events := make([]model.EventCandidate, 0)
	for _, card := range root.FindAll(containerTags...) {
		children := card.Children()
		if len(children) < minCardChildren {
			continue
		}
		if ev, ok := parseCard(children); ok {
			events = append(events, ev)
		}
	}

	if len(events) == 0 {
		return model.Empty()
	}
	return model.ExtractionResult{Events: events, Confidence: StructuralConfidence}
}

func parseCard(children []dom.Element) (model.EventCandidate, bool) {
	texts := make([]string, len(children))
	for i, c := range children {
		texts[i] = c.Text()
	}

	ev := model.EventCandidate{Title: texts[0]}
	for _, t := range texts {
		if tr, ok := MatchTimeRange(t); ok {
			if ev.Start == "" && ev.End == "" {
				ev.Start = tr.Start()
				ev.End = tr.End()
			}
		} else if HasWeekday(t) {
			if ev.Days == "" {
				ev.Days = t
			}
		} else if HasLocation(t) {
			if ev.Location == "" {
				ev.Location = t
			}
		}
	}

	return ev, ev.Complete()
}
