package listing

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/pubcrawl/pubcrawl/internal/model"
	"github.com/pubcrawl/pubcrawl/internal/render"
)

// Paginator drives a rendered browser session through successive pages of
// a report listing until it detects the last page.
//
// Termination is heuristic, in this order per page: the validity marker is
// missing from every h1-h3 (past the last page), the content is shorter
// than the minimum length (soft failure), or the page yields zero entries.
type Paginator struct {
	// renderer loads each listing page.
	renderer render.Renderer

	// listingURL is the bare first-page URL.
	listingURL string

	// pageParamTemplate is appended for pages 2 and up; it must contain a
	// single %d verb for the page index.
	pageParamTemplate string

	// validityMarker is the phrase an h1-h3 must contain for the page to
	// count as a listing page.
	validityMarker string

	// minContentLength is the smallest rendered size still treated as a
	// real page.
	minContentLength int

	// maxPages caps the pagination as a safety net against a marker that
	// never disappears. 0 means no cap.
	maxPages int

	// delay paces successive page loads.
	delay time.Duration

	// extract holds the per-page entry extraction settings.
	extract ExtractOptions

	// logger records page transitions and termination reasons.
	logger *slog.Logger
}

// Option configures a Paginator.
type Option func(*Paginator)

// WithPageParamTemplate sets the query suffix template for pages 2 and up.
func WithPageParamTemplate(template string) Option {
	return func(p *Paginator) {
		p.pageParamTemplate = template
	}
}

// WithValidityMarker sets the phrase that identifies a real listing page.
func WithValidityMarker(marker string) Option {
	return func(p *Paginator) {
		p.validityMarker = marker
	}
}

// WithMinContentLength sets the minimum rendered page size.
func WithMinContentLength(n int) Option {
	return func(p *Paginator) {
		p.minContentLength = n
	}
}

// WithMaxPages caps the number of pages fetched. 0 disables the cap.
func WithMaxPages(n int) Option {
	return func(p *Paginator) {
		p.maxPages = n
	}
}

// WithDelay sets the pause between page loads.
func WithDelay(d time.Duration) Option {
	return func(p *Paginator) {
		p.delay = d
	}
}

// WithExtractOptions sets how entries are located within each page.
func WithExtractOptions(opts ExtractOptions) Option {
	return func(p *Paginator) {
		p.extract = opts
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Paginator) {
		p.logger = logger
	}
}

// NewPaginator creates a Paginator over the given renderer and listing URL.
func NewPaginator(renderer render.Renderer, listingURL string, opts ...Option) *Paginator {
	p := &Paginator{
		renderer:         renderer,
		listingURL:       listingURL,
		validityMarker:   "Publikationer",
		minContentLength: 1000,
		maxPages:         50,
		delay:            500 * time.Millisecond,
		logger:           slog.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	// Derive the base for resolving relative report hrefs from the listing
	// URL unless the caller provided one.
	if p.extract.BaseURL == nil {
		if u, err := url.Parse(listingURL); err == nil && u.Host != "" {
			p.extract.BaseURL = &url.URL{Scheme: u.Scheme, Host: u.Host}
		}
	}

	return p
}

// Result is the outcome of one pagination run.
type Result struct {
	// Entries is the order-preserving concatenation of all pages' entries.
	// Duplicates across pages are NOT suppressed here; persistence layers
	// deduplicate by URL.
	Entries []model.ListingEntry

	// PagesFetched is the number of listing pages that passed validation.
	PagesFetched int

	// Failures records pages abandoned due to render errors.
	Failures []model.Failure
}

// Run pages through the listing until a termination heuristic fires.
// A render failure terminates pagination (later pages would leave a gap)
// and is recorded rather than returned; only context cancellation is an
// error.
func (p *Paginator) Run(ctx context.Context) (*Result, error) {
	result := &Result{
		Entries:  make([]model.ListingEntry, 0),
		Failures: make([]model.Failure, 0),
	}

	for pageIndex := 1; ; pageIndex++ {
		if p.maxPages > 0 && pageIndex > p.maxPages {
			p.logger.Warn("listing page cap reached", slog.Int("max_pages", p.maxPages))
			break
		}

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		pageURL := p.pageURL(pageIndex)
		p.logger.Debug("fetching listing page",
			slog.Int("page", pageIndex),
			slog.String("url", pageURL))

		content, err := p.renderer.Load(ctx, pageURL)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			p.logger.Warn("listing page load failed",
				slog.Int("page", pageIndex),
				slog.String("error", err.Error()))
			result.Failures = append(result.Failures, model.Failure{
				Stage:   "listing",
				URL:     pageURL,
				Message: err.Error(),
			})
			break
		}

		if !IsValidListingPage(content, p.validityMarker) {
			p.logger.Debug("validity marker missing, assuming last page",
				slog.Int("page", pageIndex))
			break
		}

		if len(content) < p.minContentLength {
			p.logger.Debug("content below minimum length, assuming no more pages",
				slog.Int("page", pageIndex),
				slog.Int("length", len(content)))
			break
		}

		entries := ExtractEntries(content, p.extract)
		result.PagesFetched++

		if len(entries) == 0 {
			p.logger.Debug("no entries extracted, assuming last page",
				slog.Int("page", pageIndex))
			break
		}
		result.Entries = append(result.Entries, entries...)

		if p.delay > 0 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(p.delay):
			}
		}
	}

	return result, nil
}

// pageURL constructs the URL for a page index. Page 1 is the bare listing
// URL; later pages append the page parameter.
func (p *Paginator) pageURL(pageIndex int) string {
	if pageIndex == 1 || p.pageParamTemplate == "" {
		return p.listingURL
	}
	return p.listingURL + fmt.Sprintf(p.pageParamTemplate, pageIndex)
}
