// Package browser owns the headless-browser resource used for pages that
// only render client-side. A Pool bounds how many tabs exist at once and
// has an explicit start/shutdown lifecycle; individual pages are only
// reachable through scoped acquisition, so the tab is released on every
// exit path regardless of what the caller's function does.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

const (
	// DefaultPoolSize bounds cross-request parallelism.
	DefaultPoolSize = 4

	idleNavTimeout = 45 * time.Second
	loadNavTimeout = 30 * time.Second
	subNavTimeout  = 15 * time.Second
	settleDelay    = 3 * time.Second
	subSettleDelay = 1 * time.Second

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// ErrPoolClosed is returned when a page is requested after Shutdown.
var ErrPoolClosed = errors.New("browser pool is closed")

// Pool manages a bounded set of headless-browser tabs backed by one shared
// allocator process.
type Pool struct {
	slots    chan struct{}
	allocCtx context.Context
	cancel   context.CancelFunc
	closed   chan struct{}
}

// NewPool creates a pool with the given tab limit. Start must be called
// before use.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = DefaultPoolSize
	}
	return &Pool{
		slots:  make(chan struct{}, size),
		closed: make(chan struct{}),
	}
}

// Start launches the underlying browser allocator.
func (p *Pool) Start(ctx context.Context) error {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(userAgent),
	)
	p.allocCtx, p.cancel = chromedp.NewExecAllocator(ctx, opts...)
	return nil
}

// Shutdown closes the browser process and rejects further acquisitions.
func (p *Pool) Shutdown() {
	select {
	case <-p.closed:
		return
	default:
	}
	close(p.closed)
	if p.cancel != nil {
		p.cancel()
	}
}

// WithPage acquires a tab, runs fn against it, and releases the tab no
// matter how fn exits. Acquisition blocks until a slot frees up or the
// context is cancelled.
func (p *Pool) WithPage(ctx context.Context, fn func(*Page) error) error {
	select {
	case <-p.closed:
		return ErrPoolClosed
	default:
	}
	if p.allocCtx == nil {
		return errors.New("browser pool not started")
	}

	select {
	case p.slots <- struct{}{}:
	case <-p.closed:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-p.slots }()

	tabCtx, cancel := chromedp.NewContext(p.allocCtx)
	defer cancel()

	return fn(&Page{ctx: tabCtx})
}

// Page is a live browser tab. It never leaks DOM handles: queries go
// through a rendered-HTML snapshot parsed into a goquery document.
type Page struct {
	ctx context.Context
}

// Navigate loads a URL using the retry-relaxed policy: wait for the
// network to go quiet first, and on timeout retry once settling for the
// load event with a shorter deadline. A settle delay follows either
// success so client-rendered content can populate.
func (pg *Page) Navigate(ctx context.Context, url string) error {
	if err := pg.navigateIdle(ctx, url, idleNavTimeout); err != nil {
		if err := pg.navigateLoad(ctx, url, loadNavTimeout); err != nil {
			return fmt.Errorf("navigation failed for %s: %w", url, err)
		}
	}
	return pg.settle(ctx, settleDelay)
}

// NavigateQuick is the sub-crawl variant: load-event wait only, shorter
// timeout, shorter settle.
func (pg *Page) NavigateQuick(ctx context.Context, url string) error {
	if err := pg.navigateLoad(ctx, url, subNavTimeout); err != nil {
		return fmt.Errorf("navigation failed for %s: %w", url, err)
	}
	return pg.settle(ctx, subSettleDelay)
}

// navigateIdle navigates and blocks until the page reports a networkIdle
// lifecycle event or the timeout expires.
func (pg *Page) navigateIdle(ctx context.Context, url string, timeout time.Duration) error {
	navCtx, cancel := mergeTimeout(pg.ctx, ctx, timeout)
	defer cancel()

	idle := make(chan struct{}, 1)
	chromedp.ListenTarget(navCtx, func(ev any) {
		if e, ok := ev.(*page.EventLifecycleEvent); ok && e.Name == "networkIdle" {
			select {
			case idle <- struct{}{}:
			default:
			}
		}
	})

	if err := chromedp.Run(navCtx,
		page.SetLifecycleEventsEnabled(true),
		chromedp.Navigate(url),
	); err != nil {
		return err
	}

	select {
	case <-idle:
		return nil
	case <-navCtx.Done():
		return navCtx.Err()
	}
}

// navigateLoad navigates and returns once the load event fires.
func (pg *Page) navigateLoad(ctx context.Context, url string, timeout time.Duration) error {
	navCtx, cancel := mergeTimeout(pg.ctx, ctx, timeout)
	defer cancel()
	return chromedp.Run(navCtx, chromedp.Navigate(url))
}

func (pg *Page) settle(ctx context.Context, d time.Duration) error {
	settleCtx, cancel := mergeTimeout(pg.ctx, ctx, d+time.Second)
	defer cancel()
	// Context errors during the settle are surfaced; the page itself is
	// already loaded.
	return chromedp.Run(settleCtx, chromedp.Sleep(d))
}

// Document snapshots the live DOM, including script-injected content, and
// parses it into a goquery document.
func (pg *Page) Document(ctx context.Context) (*goquery.Document, error) {
	snapCtx, cancel := mergeTimeout(pg.ctx, ctx, 10*time.Second)
	defer cancel()

	var html string
	if err := chromedp.Run(snapCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("failed to snapshot DOM: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse DOM snapshot: %w", err)
	}
	return doc, nil
}

// mergeTimeout derives a timeout context from the tab's context that is
// also cancelled when the caller's request context is.
func mergeTimeout(tabCtx, reqCtx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	merged, cancelCause := context.WithTimeout(tabCtx, timeout)
	stop := context.AfterFunc(reqCtx, cancelCause)
	return merged, func() {
		stop()
		cancelCause()
	}
}
