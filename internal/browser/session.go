// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package browser drives a headless browser and hands rendered pages to the
// extraction pipeline as parsed documents. It is the only package that talks
// to a real browser; everything downstream works on goquery selections.
package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
)

// Session is a sequentially reused browsing session. One page is active at a
// time; Navigate replaces it.
type Session interface {
	// Navigate loads url in the session's page and waits for the document
	// body to be ready.
	Navigate(ctx context.Context, url string) error

	// WaitNotPresent blocks until no element matches selector, or ctx ends.
	WaitNotPresent(ctx context.Context, selector string) error

	// Document snapshots the rendered DOM of the current page.
	Document(ctx context.Context) (*goquery.Document, error)

	// Close releases the browser.
	Close()
}

// Options configures a Chrome session.
type Options struct {
	// Headless hides the browser window.
	Headless bool

	// NavigationTimeout bounds a single Navigate or WaitNotPresent call.
	// Zero means no per-call deadline beyond the caller's context.
	NavigationTimeout time.Duration
}

// ChromeSession implements Session on chromedp.
type ChromeSession struct {
	ctx     context.Context
	cancels []context.CancelFunc
	timeout time.Duration
}

// NewChromeSession launches a browser and opens its single page.
func NewChromeSession(parent context.Context, opts Options) (*ChromeSession, error) {
	allocOpts := chromedp.DefaultExecAllocatorOptions[:]
	if !opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	s := &ChromeSession{
		ctx:     browserCtx,
		cancels: []context.CancelFunc{cancelBrowser, cancelAlloc},
		timeout: opts.NavigationTimeout,
	}

	// Start the browser eagerly so launch failures surface here rather than
	// on the first navigation.
	if err := chromedp.Run(browserCtx); err != nil {
		s.Close()
		return nil, fmt.Errorf("launching browser: %w", err)
	}
	return s, nil
}

// Navigate implements Session.
func (s *ChromeSession) Navigate(ctx context.Context, url string) error {
	runCtx, cancel := s.bound(ctx)
	defer cancel()

	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	return nil
}

// WaitNotPresent implements Session.
func (s *ChromeSession) WaitNotPresent(ctx context.Context, selector string) error {
	runCtx, cancel := s.bound(ctx)
	defer cancel()

	if err := chromedp.Run(runCtx, chromedp.WaitNotPresent(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("waiting for %q to disappear: %w", selector, err)
	}
	return nil
}

// Document implements Session.
func (s *ChromeSession) Document(ctx context.Context) (*goquery.Document, error) {
	runCtx, cancel := s.bound(ctx)
	defer cancel()

	var html string
	if err := chromedp.Run(runCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("capturing page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}
	return doc, nil
}

// Close implements Session.
func (s *ChromeSession) Close() {
	for _, cancel := range s.cancels {
		cancel()
	}
}

// bound derives the run context for one browser call. chromedp calls must run
// on the session's browser context, so the caller's ctx cannot be passed
// through directly; instead its cancellation is forwarded.
func (s *ChromeSession) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	var runCtx context.Context
	var cancel context.CancelFunc
	if s.timeout > 0 {
		runCtx, cancel = context.WithTimeout(s.ctx, s.timeout)
	} else {
		runCtx, cancel = context.WithCancel(s.ctx)
	}
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}
