package extract

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schedscan/internal/dom"
	"schedscan/internal/model"
)

const cardMarkup = `<div class="card">
  <div>CS 101</div>
  <div>9:00AM - 10:15AM</div>
  <div>MoWeFr</div>
  <div>Olsson Hall 120</div>
</div>`

func TestExtract_TableWinsOverCards(t *testing.T) {
	snap := mustParse(t, scheduleTable+cardMarkup)
	require.Equal(t, StructuralConfidence, FromStructure(snap.Root).Confidence)

	strategy, res := Select(snap)

	assert.Equal(t, StrategyTable, strategy)
	assert.Equal(t, FromTable(snap.Root), res)
	assert.Equal(t, TableConfidence, res.Confidence)
}

func TestExtract_FallsBackToStructure(t *testing.T) {
	snap := mustParse(t, `<table><tr><th>Name</th></tr></table>`+cardMarkup)

	strategy, res := Select(snap)

	assert.Equal(t, StrategyStructural, strategy)
	assertWellFormed(t, res)
	assert.Equal(t, StructuralConfidence, res.Confidence)
	require.Len(t, res.Events, 1)
	assert.Equal(t, "CS 101", res.Events[0].Title)
}

func TestExtract_TextOnlyDocumentYieldsEmptyResult(t *testing.T) {
	// The text strategy succeeds on this input but reports 0.7, which is
	// below its 0.8 threshold, so the arbitrator returns the empty result.
	snap := mustParse(t, `<p>CS 101</p><p>9:00AM - 10:15AM</p><p>MoWeFr</p><p>Olsson Hall 120</p>`)
	require.Equal(t, model.Empty(), FromTable(snap.Root))
	require.Equal(t, model.Empty(), FromStructure(snap.Root))

	text := FromText(snap.Text)
	require.NotEmpty(t, text.Events)
	require.Equal(t, TextConfidence, text.Confidence)

	strategy, res := Select(snap)

	assert.Equal(t, StrategyNone, strategy)
	assert.Equal(t, model.Empty(), res)
	assert.Less(t, TextConfidence, TextThreshold)
}

func TestExtract_PlainTextSnapshot(t *testing.T) {
	res := Extract(dom.FromText("CS 101\n9:00AM - 10:15AM\nMoWeFr"))

	assert.Equal(t, model.Empty(), res)
}

func TestExtract_QualifyingTableWithoutRows(t *testing.T) {
	snap := mustParse(t, `<table>
<thead><tr><th>Class</th><th>Days</th><th>Start</th><th>End</th><th>Location</th></tr></thead>
</table>`+cardMarkup)

	strategy, res := Select(snap)

	assert.Equal(t, StrategyTable, strategy)
	assert.Equal(t, TableConfidence, res.Confidence)
	assert.Empty(t, res.Events)
}

func TestExtract_EmptyInputs(t *testing.T) {
	assert.Equal(t, model.Empty(), Extract(dom.Snapshot{}))
	assert.Equal(t, model.Empty(), Extract(mustParse(t, "")))
}

func TestExtract_Idempotent(t *testing.T) {
	for _, html := range []string{scheduleTable, cardMarkup, "<p>nothing here</p>"} {
		snap := mustParse(t, html)
		assert.Equal(t, Extract(snap), Extract(snap))
	}
}

func TestExtract_ConcurrentCallsAgree(t *testing.T) {
	snap := mustParse(t, scheduleTable+cardMarkup)
	want := Extract(snap)

	var wg sync.WaitGroup
	results := make([]model.ExtractionResult, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Extract(snap)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestExtract_ResultsAreWellFormed(t *testing.T) {
	inputs := []string{
		scheduleTable,
		cardMarkup,
		`<div><p>x</p><p>y</p><p>z</p></div>`,
		`<table><tr><th>Class Days Start End Location</th></tr><tr><td>a</td></tr></table>`,
	}
	for _, html := range inputs {
		snap := mustParse(t, html)
		assertWellFormed(t, Extract(snap))
		assertWellFormed(t, FromTable(snap.Root))
		assertWellFormed(t, FromStructure(snap.Root))
		assertWellFormed(t, FromText(snap.Text))
	}
}

func TestStrategy_String(t *testing.T) {
	assert.Equal(t, "table", StrategyTable.String())
	assert.Equal(t, "structural", StrategyStructural.String())
	assert.Equal(t, "text", StrategyText.String())
	assert.Equal(t, "none", StrategyNone.String())
}
