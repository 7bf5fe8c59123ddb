package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schedscan/internal/dom"
	"schedscan/internal/model"
)

func mustParse(t *testing.T, html string) dom.Snapshot {
	t.Helper()
	snap, err := dom.ParseString(html)
	require.NoError(t, err)
	return snap
}

// assertWellFormed checks the properties every result must hold.
func assertWellFormed(t *testing.T, res model.ExtractionResult) {
	t.Helper()
	assert.GreaterOrEqual(t, res.Confidence, 0.0)
	assert.LessOrEqual(t, res.Confidence, 1.0)
	assert.NotNil(t, res.Events)
	for i, ev := range res.Events {
		assert.True(t, ev.Complete(), "event %d incomplete: %+v", i, ev)
	}
}
