package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schedscan/internal/model"
)

const tablePage = `<html><body><table>
<thead><tr><th>Class</th><th>Days</th><th>Start</th><th>End</th><th>Location</th></tr></thead>
<tbody>
<tr><td>CS 101</td><td>MoWe</td><td>9:00AM</td><td>9:50AM</td><td>Hall 1</td></tr>
<tr><td>MATH 200</td><td>TuTh</td><td>10:00</td><td>11:15</td><td>Room 4</td></tr>
</tbody>
</table></body></html>`

func writeFixture(t *testing.T) (dir, page string) {
	t.Helper()
	dir = t.TempDir()
	page = filepath.Join(dir, "schedule.html")
	require.NoError(t, os.WriteFile(page, []byte(tablePage), 0o600))
	return dir, page
}

func TestTargetSource(t *testing.T) {
	src := targetSource("https://sis.example.edu/s", true)
	assert.Equal(t, "https://sis.example.edu/s", src.URL)
	assert.True(t, src.Render)
	assert.Empty(t, src.Path)

	src = targetSource("./schedule.html", true)
	assert.Equal(t, "./schedule.html", src.Path)
	assert.Empty(t, src.URL)
	assert.False(t, src.Render)
}

func TestExtractCommand(t *testing.T) {
	dir, page := writeFixture(t)
	out := filepath.Join(dir, "out.json")

	rootCmd.SetArgs([]string{
		"extract", page,
		"-o", out,
		"--config", filepath.Join(dir, "schedscan.yaml"),
	})
	require.NoError(t, rootCmd.Execute())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var res model.ExtractionResult
	require.NoError(t, json.Unmarshal(data, &res))

	assert.Equal(t, 0.95, res.Confidence)
	require.Len(t, res.Events, 2)
	assert.Equal(t, "MATH 200", res.Events[1].Title)

	// First run with an explicit config path writes the defaults.
	assert.FileExists(t, filepath.Join(dir, "schedscan.yaml"))
}

func TestExportCommand(t *testing.T) {
	dir, page := writeFixture(t)
	out := filepath.Join(dir, "fall.ics")

	rootCmd.SetArgs([]string{
		"export", page,
		"-o", out,
		"--term-start", "2025-09-01",
		"--term-end", "2025-12-12",
		"--name", "Fall",
		"--config", filepath.Join(dir, "schedscan.yaml"),
	})
	require.NoError(t, rootCmd.Execute())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	body := string(data)

	assert.Equal(t, 2, strings.Count(body, "BEGIN:VEVENT"))
	assert.Contains(t, body, "SUMMARY:CS 101")
	assert.Contains(t, body, "LOCATION:Room 4")
	assert.Contains(t, body, "X-WR-CALNAME:Fall")
}

func TestExportCommand_InvalidTerm(t *testing.T) {
	dir, page := writeFixture(t)

	rootCmd.SetArgs([]string{
		"export", page,
		"-o", filepath.Join(dir, "x.ics"),
		"--term-start", "2025-12-12",
		"--term-end", "2025-09-01",
		"--config", filepath.Join(dir, "schedscan.yaml"),
	})
	assert.Error(t, rootCmd.Execute())
}
