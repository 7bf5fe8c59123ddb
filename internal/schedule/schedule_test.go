package schedule

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schedscan/internal/dom"
	"schedscan/internal/metrics"
	"schedscan/internal/source"
)

const tablePage = `<html><body><table>
<thead><tr><th>Class</th><th>Days</th><th>Start</th><th>End</th><th>Location</th></tr></thead>
<tbody><tr><td>CS 101</td><td>MoWe</td><td>9:00AM</td><td>9:50AM</td><td>Hall 1</td></tr></tbody>
</table></body></html>`

type fakeLoader struct {
	mu    sync.Mutex
	pages map[string]string
	errs  map[string]error
	calls atomic.Int32
}

func (f *fakeLoader) Load(ctx context.Context, src source.Source) (dom.Snapshot, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[src.ID]; err != nil {
		return dom.Snapshot{}, err
	}
	return dom.ParseString(f.pages[src.ID])
}

func (f *fakeLoader) fail(id string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[id] = err
}

func newFixture() (*fakeLoader, *Store, *Refresher) {
	l := &fakeLoader{
		pages: map[string]string{
			"fall":  tablePage,
			"blank": "<html><body><p>nothing here</p></body></html>",
		},
		errs: map[string]error{},
	}
	st := NewStore()
	r := NewRefresher(l, st, metrics.New(), []source.Source{
		{ID: "fall", URL: "https://sis.example.edu/fall"},
		{ID: "blank", Path: "blank.html"},
	})
	return l, st, r
}

func TestStore_PutGetList(t *testing.T) {
	st := NewStore()
	st.Put(Entry{Source: source.Source{ID: "b"}})
	st.Put(Entry{Source: source.Source{ID: "a"}})

	e, ok := st.Get("a")
	require.True(t, ok)
	assert.Equal(t, "a", e.Source.ID)

	_, ok = st.Get("missing")
	assert.False(t, ok)

	list := st.List()
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Source.ID)
	assert.Equal(t, "b", list[1].Source.ID)
}

func TestRefreshAll_StoresResults(t *testing.T) {
	l, st, r := newFixture()

	require.NoError(t, r.RefreshAll(context.Background()))
	assert.Equal(t, int32(2), l.calls.Load())

	fall, ok := st.Get("fall")
	require.True(t, ok)
	assert.Equal(t, "table", fall.Strategy)
	assert.Equal(t, 0.95, fall.Result.Confidence)
	require.Len(t, fall.Result.Events, 1)
	assert.Equal(t, "CS 101", fall.Result.Events[0].Title)
	assert.Empty(t, fall.Err)
	assert.False(t, fall.UpdatedAt.IsZero())

	blank, ok := st.Get("blank")
	require.True(t, ok)
	assert.Equal(t, "none", blank.Strategy)
	assert.Equal(t, 0.0, blank.Result.Confidence)
	assert.NotNil(t, blank.Result.Events)
}

func TestRefresh_FailureKeepsPreviousResult(t *testing.T) {
	l, st, r := newFixture()
	require.NoError(t, r.RefreshAll(context.Background()))
	before, _ := st.Get("fall")

	l.fail("fall", errors.New("connection refused"))
	e, err := r.RefreshOne(context.Background(), "fall")
	require.NoError(t, err)

	assert.Equal(t, "connection refused", e.Err)
	assert.Equal(t, before.Result, e.Result)
	assert.Equal(t, before.UpdatedAt, e.UpdatedAt)
	assert.True(t, e.CheckedAt.After(before.CheckedAt) || e.CheckedAt.Equal(before.CheckedAt))
}

func TestRefresh_FirstFailureStoresEmptyResult(t *testing.T) {
	l, st, r := newFixture()
	l.fail("fall", errors.New("boom"))

	require.NoError(t, r.RefreshAll(context.Background()))

	e, ok := st.Get("fall")
	require.True(t, ok)
	assert.Equal(t, "boom", e.Err)
	assert.Equal(t, "none", e.Strategy)
	assert.NotNil(t, e.Result.Events)
	assert.True(t, e.UpdatedAt.IsZero())
}

func TestRefreshAll_SkipsWhileRunning(t *testing.T) {
	l, _, r := newFixture()
	r.running.Lock()
	err := r.RefreshAll(context.Background())
	r.running.Unlock()

	assert.ErrorIs(t, err, ErrRefreshInProgress)
	assert.Equal(t, int32(0), l.calls.Load())
	require.NoError(t, r.RefreshAll(context.Background()))
}

func TestRefreshOne_UnknownSource(t *testing.T) {
	_, _, r := newFixture()
	_, err := r.RefreshOne(context.Background(), "nope")
	assert.Error(t, err)
}

func TestStart_InvalidSpec(t *testing.T) {
	_, _, r := newFixture()
	assert.Error(t, r.Start("not a cron spec"))
}

func TestStartStop(t *testing.T) {
	_, _, r := newFixture()
	require.NoError(t, r.Start("0 */6 * * *"))
	assert.Error(t, r.Start("0 */6 * * *"))
	r.Stop()
	r.Stop()
}

func TestExtract_NilMetrics(t *testing.T) {
	snap, err := dom.ParseString(tablePage)
	require.NoError(t, err)

	strategy, res := Extract(snap, nil)
	assert.Equal(t, "table", strategy.String())
	assert.Len(t, res.Events, 1)
}
