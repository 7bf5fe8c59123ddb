// Package source turns a configured schedule source into a dom.Snapshot,
// reading a local file, fetching a page over HTTP, or rendering it in
// headless Chromium.
package source

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"schedscan/internal/capture"
	"schedscan/internal/config"
	"schedscan/internal/dom"
	"schedscan/internal/fetch"
	appLog "schedscan/internal/log"
)

// Source identifies one schedule document.
type Source struct {
	ID     string
	Name   string
	URL    string
	Path   string
	Render bool
}

// FromConfig converts configured sources.
func FromConfig(cs []config.SourceConfig) []Source {
	out := make([]Source, 0, len(cs))
	for _, c := range cs {
		out = append(out, Source{
			ID:     c.ID,
			Name:   c.Name,
			URL:    c.URL,
			Path:   c.Path,
			Render: c.Render,
		})
	}
	return out
}

// Validate checks that exactly one of URL or Path is set.
func (s Source) Validate() error {
	if (s.URL == "") == (s.Path == "") {
		return eris.Errorf("source: %q must set exactly one of url or path", s.ID)
	}
	if s.Render && s.URL == "" {
		return eris.Errorf("source: %q sets render without url", s.ID)
	}
	return nil
}

// Renderer renders a URL in a browser. capture.Snapshot satisfies it.
type Renderer func(ctx context.Context, opts capture.Options) (dom.Snapshot, error)

// Loader loads snapshots for sources.
type Loader struct {
	fetcher *fetch.Fetcher
	render  Renderer
	capture capture.Options
}

// NewLoader builds a Loader. captureOpts supplies viewport, wait selector and
// timeout for rendered sources; its URL is ignored.
func NewLoader(fetcher *fetch.Fetcher, captureOpts capture.Options) *Loader {
	return &Loader{
		fetcher: fetcher,
		render:  capture.Snapshot,
		capture: captureOpts,
	}
}

// NewLoaderFromConfig builds a Loader from the application config.
func NewLoaderFromConfig(cfg *config.Config) *Loader {
	return NewLoader(fetch.NewFetcher(cfg.CacheDir), capture.Options{
		WaitSelector: cfg.Capture.WaitSelector,
		Width:        cfg.Capture.Width,
		Height:       cfg.Capture.Height,
		Timeout:      time.Duration(cfg.Capture.TimeoutSec) * time.Second,
	})
}

// WithRenderer replaces the browser renderer.
func (l *Loader) WithRenderer(r Renderer) *Loader {
	l.render = r
	return l
}

// Load produces the snapshot for src.
func (l *Loader) Load(ctx context.Context, src Source) (dom.Snapshot, error) {
	if err := src.Validate(); err != nil {
		return dom.Snapshot{}, err
	}

	switch {
	case src.Path != "":
		return loadFile(src.Path)

	case src.Render:
		opts := l.capture
		opts.URL = src.URL
		appLog.Info("source render start", "id", src.ID, "url", fetch.RedactURL(src.URL))
		snap, err := l.render(ctx, opts)
		if err != nil {
			return dom.Snapshot{}, eris.Wrapf(err, "source: render %q", src.ID)
		}
		return snap, nil

	default:
		res, err := l.fetcher.FetchOne(ctx, fetch.Target{ID: src.ID, URL: src.URL})
		if err != nil {
			return dom.Snapshot{}, eris.Wrapf(err, "source: fetch %q", src.ID)
		}
		return parseBody(res.Body, isPlainText(res.ContentType, ""))
	}
}

func loadFile(path string) (dom.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return dom.Snapshot{}, eris.Wrapf(err, "source: read %s", path)
	}
	return parseBody(data, isPlainText("", path))
}

func parseBody(body []byte, plain bool) (dom.Snapshot, error) {
	if plain {
		return dom.FromText(string(body)), nil
	}
	snap, err := dom.Parse(bytes.NewReader(body))
	if err != nil {
		return dom.Snapshot{}, eris.Wrap(err, "source: parse html")
	}
	return snap, nil
}

// isPlainText decides whether a body is text rather than HTML, from its
// content type or, for files, its extension.
func isPlainText(contentType, path string) bool {
	if contentType != "" {
		return strings.HasPrefix(strings.ToLower(contentType), "text/plain")
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".text":
		return true
	}
	return false
}
