package dom

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const schedulePage = `<!DOCTYPE html>
<html>
<head><title>Schedule</title><style>.x{color:red}</style></head>
<body>
  <h1>Fall Schedule</h1>
  <table id="t">
    <thead><tr><th>Class</th><th>Days</th></tr></thead>
    <tbody>
      <tr><td> CS 101 </td><td>MoWe</td></tr>
      <tr><td>MATH 200</td><td>TuTh</td></tr>
    </tbody>
  </table>
  <div class="card">
    <span>CS 101</span>
    <span>9:00AM -
      10:15AM</span>
    <span>MoWeFr</span>
  </div>
  <script>var hidden = "MoTuWe 1:00-2:00";</script>
</body>
</html>`

func TestParse_RootAndTags(t *testing.T) {
	snap, err := ParseString(schedulePage)
	require.NoError(t, err)
	require.NotNil(t, snap.Root)

	assert.Equal(t, "html", snap.Root.Tag())
	assert.Len(t, snap.Root.FindAll("table"), 1)
	assert.Len(t, snap.Root.FindAll("TH"), 2)
	assert.Len(t, snap.Root.FindAll("td"), 4)
}

func TestElement_FindAll_DocumentOrder(t *testing.T) {
	snap, err := ParseString(schedulePage)
	require.NoError(t, err)

	cells := snap.Root.FindAll("td")
	require.Len(t, cells, 4)
	texts := make([]string, 0, len(cells))
	for _, c := range cells {
		texts = append(texts, c.Text())
	}
	assert.Equal(t, []string{"CS 101", "MoWe", "MATH 200", "TuTh"}, texts)
}

func TestElement_FindAll_MultipleTagsAndExcludesSelf(t *testing.T) {
	snap, err := ParseString(`<div id="a"><div id="b"><li>x</li></div></div>`)
	require.NoError(t, err)

	outer := snap.Root.FindAll("div")
	require.Len(t, outer, 2)

	inner := outer[0].FindAll("div", "li")
	require.Len(t, inner, 2)
	assert.Equal(t, "div", inner[0].Tag())
	assert.Equal(t, "li", inner[1].Tag())
}

func TestElement_ChildrenAreElementsOnly(t *testing.T) {
	snap, err := ParseString(schedulePage)
	require.NoError(t, err)

	divs := snap.Root.FindAll("div")
	require.Len(t, divs, 1)

	kids := divs[0].Children()
	require.Len(t, kids, 3)
	assert.Equal(t, "CS 101", kids[0].Text())
	assert.Equal(t, "9:00AM -\n      10:15AM", kids[1].Text())
	assert.Equal(t, "MoWeFr", kids[2].Text())
}

func TestParse_InnerTextSkipsHiddenAndBreaksBlocks(t *testing.T) {
	snap, err := ParseString(schedulePage)
	require.NoError(t, err)

	assert.NotContains(t, snap.Text, "hidden")
	assert.NotContains(t, snap.Text, "color:red")
	assert.NotContains(t, snap.Text, "Schedule\nFall")

	assert.Contains(t, snap.Text, "Fall Schedule\n")
	assert.Contains(t, snap.Text, "MATH 200\tTuTh")
	assert.Contains(t, snap.Text, "9:00AM - 10:15AM")
}

func TestInnerText_Br(t *testing.T) {
	snap, err := ParseString(`<p>CS 101<br>9:00 - 10:00<br/>MoWe</p>`)
	require.NoError(t, err)
	assert.Equal(t, "CS 101\n9:00 - 10:00\nMoWe", snap.Text)
}

func TestParseWithText_KeepsGivenText(t *testing.T) {
	snap, err := ParseWithText(strings.NewReader(`<div><p>a</p></div>`), "rendered text")
	require.NoError(t, err)
	assert.Equal(t, "rendered text", snap.Text)
	assert.Len(t, snap.Root.FindAll("p"), 1)
}

func TestFromText(t *testing.T) {
	snap := FromText("line one\nline two")
	assert.Nil(t, snap.Root)
	assert.Equal(t, "line one\nline two", snap.Text)
}
