package extract

import (
	"strings"

	"schedscan/internal/dom"
	"schedscan/internal/model"
)

// FromTable extracts events from the first table whose header cells mention
// every required column (class, days, start, end, location).
//
// Body rows are mapped by position, not by header name:
//
//	cell 0 -> title, 1 -> days, 2 -> start, 3 -> end, 4 -> location
//
// Rows missing title, days, start or end are dropped. Once a qualifying
// table is found its result is returned with TableConfidence, even if every
// row was dropped; later tables are not considered.
func FromTable(root dom.Element) model.ExtractionResult {
	if root == nil {
		return model.Empty()
	}

	for _, table := range root.FindAll("table") {
		if !hasScheduleHeaders(table) {
			continue
		}

		events := make([]model.EventCandidate, 0)
		for _, row := range bodyRows(table) {
			cells := row.FindAll("td")
			ev := model.EventCandidate{
				Title:    cellText(cells, 0),
				Days:     cellText(cells, 1),
				Start:    cellText(cells, 2),
				End:      cellText(cells, 3),
				Location: cellText(cells, 4),
			}
			if ev.Complete() {
				events = append(events, ev)
			}
		}
		return model.ExtractionResult{Events: events, Confidence: TableConfidence}
	}

	return model.Empty()
}

func hasScheduleHeaders(table dom.Element) bool {
	headers := table.FindAll("th")
	lowered := make([]string, 0, len(headers))
	for _, h := range headers {
		lowered = append(lowered, strings.ToLower(h.Text()))
	}

	for _, req := range requiredHeaders {
		found := false
		for _, h := range lowered {
			if strings.Contains(h, req) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// bodyRows returns the <tr> children of every <tbody> in the table.
func bodyRows(table dom.Element) []dom.Element {
	var rows []dom.Element
	for _, body := range table.FindAll("tbody") {
		for _, c := range body.Children() {
			if c.Tag() == "tr" {
				rows = append(rows, c)
			}
		}
	}
	return rows
}

func cellText(cells []dom.Element, i int) string {
	if i >= len(cells) {
		return ""
	}
	return cells[i].Text()
}
