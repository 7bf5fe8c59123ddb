package main

import (
	"context"
	"os"
	"strings"
	"time"

	"schedscan/internal/dom"
	"schedscan/internal/ics"
	"schedscan/internal/source"
)

// targetSource turns a command-line argument into a source: http(s) URLs
// are fetched (or rendered), anything else is read as a local file.
func targetSource(arg string, render bool) source.Source {
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		return source.Source{ID: "cli", URL: arg, Render: render}
	}
	return source.Source{ID: "cli", Path: arg}
}

// loadTarget loads the snapshot named by arg using the configured fetch
// cache and capture settings.
func loadTarget(ctx context.Context, arg string, render bool) (dom.Snapshot, error) {
	src := targetSource(arg, render)
	return source.NewLoaderFromConfig(cfg).Load(ctx, src)
}

// exportTerm resolves the configured term with optional YYYY-MM-DD
// overrides.
func exportTerm(start, end string) (ics.Term, error) {
	c := *cfg
	if start != "" {
		c.Export.TermStart = start
	}
	if end != "" {
		c.Export.TermEnd = end
	}
	return ics.TermFromConfig(&c)
}

// openOutput returns stdout for "" or "-", else creates path.
func openOutput(path string) (*os.File, func() error, error) {
	if path == "" || path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

const commandTimeout = 2 * time.Minute
