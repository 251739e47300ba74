package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// ErrClosed is returned when Load is called after Close.
var ErrClosed = errors.New("renderer is closed")

// Renderer loads a URL in a JavaScript-capable session and returns the
// rendered HTML. Implementations are scoped resources: acquire once per
// run, Close on every exit path.
type Renderer interface {
	// Load navigates to the URL and returns the rendered outer HTML.
	Load(ctx context.Context, url string) (string, error)

	// Close releases the browser session.
	Close() error
}

// Options configures a ChromeRenderer.
type Options struct {
	// Timeout bounds a single Load call. Defaults to 30s.
	Timeout time.Duration

	// UserAgent overrides the browser user agent when non-empty.
	UserAgent string

	// DisableHeadless runs a visible browser, useful when debugging
	// selector issues.
	DisableHeadless bool

	// ConcurrentSessions bounds parallel Load calls. Defaults to 1;
	// pagination is sequential anyway.
	ConcurrentSessions int

	// ConsentCookie is a "name=value" cookie seeded before the first
	// navigation so cookie walls never appear in rendered markup.
	ConsentCookie string

	// CookieDomain is the domain the consent cookie is set for
	// (e.g. ".example.se"). Required when ConsentCookie is set.
	CookieDomain string

	// BannerText identifies leftover cookie banners: any div, p, or span
	// whose text contains it is removed from the DOM before capture.
	BannerText string

	// Logger records render activity. Defaults to slog.Default().
	Logger *slog.Logger
}

// ChromeRenderer drives a headless Chrome instance via chromedp.
// The browser is allocated on first Load and reused across calls until
// Close.
type ChromeRenderer struct {
	opts Options

	// allocCancel and browserCancel tear down the exec allocator and the
	// browser context.
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	// semaphore bounds concurrent sessions.
	semaphore chan struct{}

	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

// NewChromeRenderer creates a renderer with its own browser allocator.
// The browser process itself starts lazily on the first Load.
func NewChromeRenderer(opts Options) *ChromeRenderer {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.ConcurrentSessions <= 0 {
		opts.ConcurrentSessions = 1
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	execOpts := []chromedp.ExecAllocatorOption{
		chromedp.Flag("headless", !opts.DisableHeadless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
	}
	if ua := strings.TrimSpace(opts.UserAgent); ua != "" {
		execOpts = append(execOpts, chromedp.UserAgent(ua))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), execOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	return &ChromeRenderer{
		opts:          opts,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		semaphore:     make(chan struct{}, opts.ConcurrentSessions),
		logger:        logger,
	}
}

// Load navigates to the URL in a fresh tab and returns the rendered HTML.
func (r *ChromeRenderer) Load(ctx context.Context, url string) (string, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return "", ErrClosed
	}
	r.mu.Unlock()

	select {
	case r.semaphore <- struct{}{}:
		defer func() { <-r.semaphore }()
	case <-ctx.Done():
		return "", ctx.Err()
	}

	tabCtx, tabCancel := chromedp.NewContext(r.browserCtx)
	defer tabCancel()

	tabCtx, timeoutCancel := context.WithTimeout(tabCtx, r.opts.Timeout)
	defer timeoutCancel()

	// chromedp contexts derive from the browser, not from the caller.
	// Watch the caller's context so cancellation tears down the tab.
	//
	// Design decision: We bridge contexts with a goroutine because:
	//  1. The tab must descend from the browser context to share the session
	//  2. The caller's deadline still has to cut a hung navigation short
	//  3. The goroutine exits as soon as Load returns
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			tabCancel()
		case <-done:
		}
	}()

	actions := make([]chromedp.Action, 0, 6)

	if r.opts.ConsentCookie != "" {
		name, value, ok := splitCookie(r.opts.ConsentCookie)
		if ok {
			domain := r.opts.CookieDomain
			actions = append(actions, chromedp.ActionFunc(func(ctx context.Context) error {
				cookie := network.SetCookie(name, value).WithPath("/")
				if domain != "" {
					cookie = cookie.WithDomain(domain)
				}
				return cookie.Do(ctx)
			}))
		}
	}

	var html string
	actions = append(actions,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if r.opts.BannerText != "" {
		actions = append(actions, chromedp.Evaluate(bannerRemovalScript(r.opts.BannerText), nil))
	}
	actions = append(actions,
		chromedp.Sleep(250*time.Millisecond),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)

	start := time.Now()
	if err := chromedp.Run(tabCtx, actions...); err != nil {
		// Report the caller's cancellation rather than the derived
		// context error chromedp saw.
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("render %s: %w", url, err)
	}

	r.logger.Debug("rendered page",
		slog.String("url", url),
		slog.Int("html_bytes", len(html)),
		slog.Duration("elapsed", time.Since(start)))

	return html, nil
}

// Close shuts down the browser and allocator. Safe to call multiple times.
func (r *ChromeRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true

	r.browserCancel()
	r.allocCancel()
	return nil
}

// splitCookie splits a "name=value" cookie string.
func splitCookie(cookie string) (name, value string, ok bool) {
	name, value, ok = strings.Cut(cookie, "=")
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", false
	}
	return name, value, ok
}

// bannerRemovalScript returns JavaScript that removes any div, p, or span
// whose text contains the given needle. Mirrors what a site visitor does by
// clicking the consent button, without depending on button selectors.
func bannerRemovalScript(needle string) string {
	return fmt.Sprintf(`(() => {
	const needle = %s;
	['div', 'p', 'span'].forEach((selector) => {
		document.querySelectorAll(selector).forEach((el) => {
			if (el.innerText && el.innerText.includes(needle)) {
				el.remove();
			}
		});
	});
})()`, strconv.Quote(needle))
}
