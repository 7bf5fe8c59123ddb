package capture

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions_WithDefaults(t *testing.T) {
	opts, err := Options{URL: "https://sis.example.edu"}.withDefaults()
	require.NoError(t, err)

	assert.Equal(t, DefaultWaitSelector, opts.WaitSelector)
	assert.Equal(t, DefaultWidth, opts.Width)
	assert.Equal(t, DefaultHeight, opts.Height)
	assert.Equal(t, 30*time.Second, opts.Timeout)
}

func TestOptions_WithDefaultsKeepsExplicitValues(t *testing.T) {
	opts, err := Options{
		URL:          "https://sis.example.edu",
		WaitSelector: "#schedule",
		Width:        800,
		Height:       600,
		Timeout:      time.Second,
	}.withDefaults()
	require.NoError(t, err)

	assert.Equal(t, "#schedule", opts.WaitSelector)
	assert.Equal(t, 800, opts.Width)
	assert.Equal(t, 600, opts.Height)
	assert.Equal(t, time.Second, opts.Timeout)
}

func TestRender_RequiresURL(t *testing.T) {
	_, err := Render(context.Background(), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "URL is required")
}

func TestPage_Snapshot(t *testing.T) {
	page := Page{
		HTML: `<html><body><div><span>CS 101</span><span>9:00 - 9:50</span><span>MoWe</span></div></body></html>`,
		Text: "CS 101\n9:00 - 9:50\nMoWe",
	}

	snap, err := page.Snapshot()
	require.NoError(t, err)

	assert.Equal(t, page.Text, snap.Text)
	require.Len(t, snap.Root.FindAll("div"), 1)
	assert.Len(t, snap.Root.FindAll("div")[0].Children(), 3)
}
