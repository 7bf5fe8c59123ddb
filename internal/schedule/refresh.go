package schedule

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"schedscan/internal/dom"
	"schedscan/internal/extract"
	appLog "schedscan/internal/log"
	"schedscan/internal/metrics"
	"schedscan/internal/model"
	"schedscan/internal/source"
)

const (
	maxConcurrentRefresh = 4
	cronRunTimeout       = 5 * time.Minute
)

// ErrRefreshInProgress is returned by RefreshAll when another run holds the
// refresh lock.
var ErrRefreshInProgress = eris.New("schedule: refresh already in progress")

// Loader produces a snapshot for a source. *source.Loader satisfies it.
type Loader interface {
	Load(ctx context.Context, src source.Source) (dom.Snapshot, error)
}

// Extract runs the extraction arbitrator on snap and records the outcome.
func Extract(snap dom.Snapshot, m *metrics.Metrics) (extract.Strategy, model.ExtractionResult) {
	strategy, res := extract.Select(snap)
	m.ObserveExtraction(strategy.String(), res.Confidence, len(res.Events))
	return strategy, res
}

// Refresher re-extracts every configured source into a Store.
type Refresher struct {
	loader  Loader
	store   *Store
	metrics *metrics.Metrics
	sources []source.Source

	running sync.Mutex
	cron    *cron.Cron
}

// NewRefresher creates a Refresher. m may be nil.
func NewRefresher(loader Loader, store *Store, m *metrics.Metrics, sources []source.Source) *Refresher {
	return &Refresher{
		loader:  loader,
		store:   store,
		metrics: m,
		sources: sources,
	}
}

// Sources returns the configured sources.
func (r *Refresher) Sources() []source.Source { return r.sources }

// RefreshAll refreshes every source concurrently. Per-source failures are
// recorded in the store, not returned. A run that starts while another is in
// progress does nothing and returns ErrRefreshInProgress.
func (r *Refresher) RefreshAll(ctx context.Context) error {
	if !r.running.TryLock() {
		appLog.Info("refresh already running; skipping")
		return ErrRefreshInProgress
	}
	defer r.running.Unlock()

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentRefresh)

	for _, src := range r.sources {
		g.Go(func() error {
			r.refresh(gctx, src)
			return gctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "schedule: refresh all")
	}
	appLog.Info("refresh completed", "sources", len(r.sources), "elapsed", time.Since(start).String())
	return nil
}

// RefreshOne refreshes the source with the given id.
func (r *Refresher) RefreshOne(ctx context.Context, id string) (Entry, error) {
	for _, src := range r.sources {
		if src.ID == id {
			return r.refresh(ctx, src), nil
		}
	}
	return Entry{}, eris.Errorf("schedule: unknown source %q", id)
}

func (r *Refresher) refresh(ctx context.Context, src source.Source) Entry {
	now := time.Now()
	snap, err := r.loader.Load(ctx, src)
	r.metrics.ObserveRefresh(src.ID, err)

	if err != nil {
		appLog.Error("source refresh failed", err, "id", src.ID)
		return r.store.update(src.ID, func(e Entry) Entry {
			e.Source = src
			e.CheckedAt = now
			e.Err = err.Error()
			if e.Result.Events == nil {
				e.Result = model.Empty()
				e.Strategy = extract.StrategyNone.String()
			}
			return e
		})
	}

	strategy, res := Extract(snap, r.metrics)
	appLog.Info("source refreshed",
		"id", src.ID,
		"strategy", strategy.String(),
		"confidence", res.Confidence,
		"event_count", len(res.Events),
	)
	e := Entry{
		Source:    src,
		Strategy:  strategy.String(),
		Result:    res,
		UpdatedAt: now,
		CheckedAt: now,
	}
	r.store.Put(e)
	return e
}

// Start schedules RefreshAll with a standard five-field cron spec.
func (r *Refresher) Start(spec string) error {
	if r.cron != nil {
		return eris.New("schedule: already started")
	}
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cronRunTimeout)
		defer cancel()
		if err := r.RefreshAll(ctx); err != nil && !errors.Is(err, ErrRefreshInProgress) {
			appLog.Error("scheduled refresh failed", err)
		}
	}); err != nil {
		return eris.Wrapf(err, "schedule: invalid cron spec %q", spec)
	}
	r.cron = c
	c.Start()
	appLog.Info("refresh scheduler started", "spec", spec)
	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (r *Refresher) Stop() {
	if r.cron == nil {
		return
	}
	<-r.cron.Stop().Done()
	r.cron = nil
}
