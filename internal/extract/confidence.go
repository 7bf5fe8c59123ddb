package extract

import "schedscan/internal/model"

// Field names one EventCandidate field for Completeness.
type Field string

const (
	FieldTitle    Field = "title"
	FieldDays     Field = "days"
	FieldStart    Field = "start"
	FieldEnd      Field = "end"
	FieldLocation Field = "location"
)

// AllFields is the default field set for Completeness.
var AllFields = []Field{FieldTitle, FieldDays, FieldStart, FieldEnd, FieldLocation}

// Completeness returns the fraction of events whose given fields are all
// non-empty. With no fields, AllFields is used. An empty event list scores 0.
//
// None of the strategies use this; they report fixed confidences.
func Completeness(events []model.EventCandidate, fields ...Field) float64 {
	if len(events) == 0 {
		return 0
	}
	if len(fields) == 0 {
		fields = AllFields
	}

	valid := 0
	for _, ev := range events {
		if hasFields(ev, fields) {
			valid++
		}
	}
	return float64(valid) / float64(len(events))
}

func hasFields(ev model.EventCandidate, fields []Field) bool {
	for _, f := range fields {
		if fieldValue(ev, f) == "" {
			return false
		}
	}
	return true
}

func fieldValue(ev model.EventCandidate, f Field) string {
	switch f {
	case FieldTitle:
		return ev.Title
	case FieldDays:
		return ev.Days
	case FieldStart:
		return ev.Start
	case FieldEnd:
		return ev.End
	case FieldLocation:
		return ev.Location
	default:
		return ""
	}
}
