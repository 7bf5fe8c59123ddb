package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventCandidate_Complete(t *testing.T) {
	full := EventCandidate{Title: "CS 101", Days: "MoWe", Start: "9:00", End: "10:15"}
	assert.True(t, full.Complete())

	withLoc := full
	withLoc.Location = "Olsson Hall"
	assert.True(t, withLoc.Complete())

	noDays := full
	noDays.Days = ""
	assert.False(t, noDays.Complete())

	assert.False(t, EventCandidate{}.Complete())
}

func TestEmpty_EncodesEventsAsArray(t *testing.T) {
	r := Empty()
	assert.Zero(t, r.Confidence)

	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"events":[],"confidence":0}`, string(b))
}

func TestEventCandidate_LocationOmittedWhenAbsent(t *testing.T) {
	b, err := json.Marshal(EventCandidate{Title: "A", Days: "Mo", Start: "1:00", End: "2:00"})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "location")
}
