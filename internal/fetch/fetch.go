// Package fetch downloads schedule pages over HTTP, revalidating against a
// disk copy of the last good response and falling back to it when the
// origin is unreachable.
package fetch

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	appLog "schedscan/internal/log"
)

const (
	// maxBodyBytes caps how much of a page is read.
	maxBodyBytes = 4 << 20

	requestTimeout = 15 * time.Second
	userAgent      = "schedscan/0.1 (+schedule extractor)"
)

// Target is a single page to fetch.
type Target struct {
	// ID identifies the page in logs.
	ID  string
	URL string
}

// Result is a fetched (or cached) page.
type Result struct {
	Target      Target
	Body        []byte
	ContentType string
	// FromCache is set when Body is the stored copy rather than a fresh
	// download.
	FromCache bool
}

// Fetcher fetches pages with conditional requests against a disk cache.
type Fetcher struct {
	client *http.Client
	cache  pageCache
}

// NewFetcher creates a Fetcher caching under cacheDir.
func NewFetcher(cacheDir string) *Fetcher {
	if cacheDir == "" {
		cacheDir = "./var/page-cache"
	}
	return &Fetcher{
		client: &http.Client{Timeout: requestTimeout},
		cache:  pageCache{root: cacheDir},
	}
}

// FetchOne fetches a single page, sending the cached ETag and Last-Modified
// validators when present.
func (f *Fetcher) FetchOne(ctx context.Context, t Target) (Result, error) {
	if t.URL == "" {
		return Result{}, eris.New("fetch: target URL is empty")
	}
	log := []any{"id", t.ID, "url", RedactURL(t.URL)}

	cached := f.cache.load(t.URL)
	fromCache := Result{
		Target:      t,
		Body:        cached.body,
		ContentType: cached.meta.ContentType,
		FromCache:   true,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.URL, nil)
	if err != nil {
		return Result{}, eris.Wrap(err, "fetch: create request")
	}
	req.Header.Set("User-Agent", userAgent)
	if cached.meta.ETag != "" {
		req.Header.Set("If-None-Match", cached.meta.ETag)
	}
	if cached.meta.LastModified != "" {
		req.Header.Set("If-Modified-Since", cached.meta.LastModified)
	}

	appLog.Info("page fetch start", log...)
	resp, err := f.client.Do(req)
	if err != nil {
		if cached.ok() {
			appLog.Error("page fetch network error, using cached body", err, log...)
			return fromCache, nil
		}
		return Result{}, eris.Wrap(err, "fetch: request")
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
		if err != nil {
			return Result{}, eris.Wrap(err, "fetch: read body")
		}
		if len(body) > maxBodyBytes {
			return Result{}, eris.Errorf("fetch: page exceeds %d bytes", maxBodyBytes)
		}
		page := cachedPage{
			meta: cacheMeta{
				URL:          t.URL,
				ETag:         resp.Header.Get("ETag"),
				LastModified: resp.Header.Get("Last-Modified"),
				ContentType:  resp.Header.Get("Content-Type"),
			},
			body: body,
		}
		if err := f.cache.store(page); err != nil {
			appLog.Error("page cache save failed", err, log...)
		}
		appLog.Info("page fetch success", append(log, "bytes", len(body))...)
		return Result{Target: t, Body: body, ContentType: page.meta.ContentType}, nil

	case resp.StatusCode == http.StatusNotModified:
		if !cached.ok() {
			return Result{}, eris.New("fetch: received 304 Not Modified but no cached body available")
		}
		appLog.Info("page not modified; using cache", log...)
		return fromCache, nil

	case cached.ok():
		appLog.Error("page fetch non-OK, using cached body", eris.New(resp.Status), append(log, "status", resp.StatusCode)...)
		return fromCache, nil

	default:
		return Result{}, eris.Errorf("fetch: unexpected status %s", resp.Status)
	}
}

// RedactURL keeps only the scheme and host of u for logging.
//
//	https://sis.example.edu/student/schedule?token=abcd
//	-> https://sis.example.edu/...(redacted)
func RedactURL(u string) string {
	const redactedSuffix = "/...(redacted)"

	scheme, rest, ok := strings.Cut(u, "://")
	if !ok {
		return "url://...(redacted)"
	}
	if j := strings.IndexAny(rest, "/?#"); j >= 0 {
		rest = rest[:j]
	}
	return scheme + "://" + rest + redactedSuffix
}
