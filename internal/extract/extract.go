// Package extract recovers calendar events from schedule documents of
// unknown shape. Three independent strategies (table, card structure, free
// text) are tried in a fixed order and the first whose confidence clears its
// threshold wins.
//
// Everything here is a pure function of a dom.Snapshot: no I/O, no shared
// state, safe for concurrent use on different snapshots.
package extract

import (
	"schedscan/internal/dom"
	appLog "schedscan/internal/log"
	"schedscan/internal/model"
)

// Strategy identifies which extraction strategy produced a result.
type Strategy int

const (
	StrategyNone Strategy = iota
	StrategyTable
	StrategyStructural
	StrategyText
)

func (s Strategy) String() string {
	switch s {
	case StrategyTable:
		return "table"
	case StrategyStructural:
		return "structural"
	case StrategyText:
		return "text"
	default:
		return "none"
	}
}

type stage struct {
	strategy  Strategy
	threshold float64
	run       func(dom.Snapshot) model.ExtractionResult
}

// stages run in priority order.
var stages = []stage{
	{StrategyTable, TableThreshold, func(s dom.Snapshot) model.ExtractionResult { return FromTable(s.Root) }},
	{StrategyStructural, StructuralThreshold, func(s dom.Snapshot) model.ExtractionResult { return FromStructure(s.Root) }},
	{StrategyText, TextThreshold, func(s dom.Snapshot) model.ExtractionResult { return FromText(s.Text) }},
}

// Extract runs the strategies in priority order and returns the first result
// that clears its threshold, or an empty zero-confidence result.
func Extract(snap dom.Snapshot) model.ExtractionResult {
	_, res := Select(snap)
	return res
}

// Select is Extract that also reports which strategy was accepted
// (StrategyNone for the empty result).
func Select(snap dom.Snapshot) (Strategy, model.ExtractionResult) {
	for _, st := range stages {
		res := st.run(snap)
		if res.Confidence >= st.threshold {
			appLog.Debug("extract: strategy accepted",
				"strategy", st.strategy.String(),
				"confidence", res.Confidence,
				"event_count", len(res.Events),
			)
			return st.strategy, res
		}
		appLog.Debug("extract: strategy below threshold",
			"strategy", st.strategy.String(),
			"confidence", res.Confidence,
			"threshold", st.threshold,
		)
	}
	return StrategyNone, model.Empty()
}
