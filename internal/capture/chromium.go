package capture

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"

	"schedscan/internal/dom"
)

// Default capture parameters.
const (
	DefaultWidth        = 1280
	DefaultHeight       = 2000
	DefaultTimeoutSec   = 30
	DefaultWaitSelector = "body"

	// settleDelay lets late client-side rendering finish after the wait
	// selector becomes visible.
	settleDelay = 500 * time.Millisecond
)

// Options defines parameters for a Chromium-based page render.
type Options struct {
	// URL to render, e.g. a student information system schedule page.
	URL string

	// WaitSelector must be visible before the page is read. If empty,
	// DefaultWaitSelector is used.
	WaitSelector string

	// Width and Height are the viewport dimensions in pixels. If zero,
	// DefaultWidth / DefaultHeight are used.
	Width  int
	Height int

	// Timeout bounds the entire capture operation. If zero, a sane default
	// (DefaultTimeoutSec) is used.
	Timeout time.Duration

	// ScreenshotPath, if set, also writes a full-page PNG for debugging
	// extraction failures.
	ScreenshotPath string
}

// Page is the rendered state of a document.
type Page struct {
	// HTML is the serialized document element after scripts ran.
	HTML string
	// Text is the browser's innerText of <body>.
	Text string
}

func (o Options) withDefaults() (Options, error) {
	if o.URL == "" {
		return o, eris.New("capture: URL is required")
	}
	if o.WaitSelector == "" {
		o.WaitSelector = DefaultWaitSelector
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Timeout <= 0 {
		o.Timeout = time.Duration(DefaultTimeoutSec) * time.Second
	}
	return o, nil
}

// Render launches a headless Chromium instance via chromedp, navigates to
// opts.URL, waits until opts.WaitSelector is visible, and reads the rendered
// HTML and visible text.
func Render(parentCtx context.Context, opts Options) (Page, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return Page{}, err
	}

	// Create a new chromedp context.
	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()

	// Apply timeout to the entire capture sequence.
	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	var (
		page Page
		png  []byte
	)
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
		chromedp.Navigate(opts.URL),
		chromedp.WaitVisible(opts.WaitSelector, chromedp.ByQuery),
		chromedp.Sleep(settleDelay),
		chromedp.OuterHTML("html", &page.HTML, chromedp.ByQuery),
		chromedp.Evaluate(`document.body ? document.body.innerText : ""`, &page.Text),
	}
	if opts.ScreenshotPath != "" {
		tasks = append(tasks, chromedp.FullScreenshot(&png, 90))
	}

	if err := chromedp.Run(ctx, tasks); err != nil {
		return Page{}, eris.Wrap(err, "capture: chromedp run failed")
	}

	if opts.ScreenshotPath != "" {
		if err := os.WriteFile(opts.ScreenshotPath, png, 0o644); err != nil {
			return Page{}, eris.Wrap(err, "capture: failed to write PNG")
		}
	}

	return page, nil
}

// Snapshot renders opts.URL and turns the result into an extraction input:
// the element tree from the rendered HTML, the text from the browser.
func Snapshot(ctx context.Context, opts Options) (dom.Snapshot, error) {
	page, err := Render(ctx, opts)
	if err != nil {
		return dom.Snapshot{}, err
	}
	return page.Snapshot()
}

// Snapshot converts a rendered page into a dom.Snapshot.
func (p Page) Snapshot() (dom.Snapshot, error) {
	snap, err := dom.ParseWithText(strings.NewReader(p.HTML), p.Text)
	if err != nil {
		return dom.Snapshot{}, eris.Wrap(err, "capture: parse rendered html")
	}
	return snap, nil
}
