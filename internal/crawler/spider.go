package crawler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/html"

	"github.com/pubcrawl/pubcrawl/internal/fetch"
	"github.com/pubcrawl/pubcrawl/internal/model"
)

// Spider walks a site breadth-first looking for target documents.
// It owns the frontier and the visited set for one run.
//
// Design decision: We call it "Spider" rather than "Crawler" because:
//  1. "Spider" is the traditional term for web crawlers
//  2. Distinguishes the component from the package name
//  3. Clearer in code: crawler.NewSpider() vs crawler.NewCrawler()
type Spider struct {
	// fetcher retrieves pages.
	fetcher *fetch.Fetcher

	// filter classifies discovered URLs.
	filter *Filter

	// maxDepth limits how deep to crawl from the starting URL.
	// 0 means only the starting page, 1 means one level of links, etc.
	maxDepth int

	// maxPages limits the total number of pages fetched.
	// 0 means no limit; the depth bound still terminates the crawl.
	maxPages int

	// delay is the time to wait between requests.
	// This is a politeness setting to avoid overwhelming servers.
	delay time.Duration

	// logger records skipped URLs and fetch failures.
	logger *slog.Logger

	// visited tracks URLs already dequeued to avoid duplicates.
	visited map[string]bool

	// seenDocs tracks document URLs already collected so the same document
	// linked from several pages is recorded once.
	seenDocs map[string]bool

	// mutex protects visited and seenDocs.
	mutex sync.Mutex

	// pageCount tracks pages fetched in the current run.
	pageCount int
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithMaxDepth sets the maximum crawl depth.
// 0 = only the starting page, 1 = starting page plus linked pages, etc.
func WithMaxDepth(depth int) SpiderOption {
	return func(s *Spider) {
		s.maxDepth = depth
	}
}

// WithMaxPages sets the maximum number of pages to fetch. 0 disables the cap.
func WithMaxPages(maxPages int) SpiderOption {
	return func(s *Spider) {
		s.maxPages = maxPages
	}
}

// WithDelay sets the politeness delay between requests.
func WithDelay(d time.Duration) SpiderOption {
	return func(s *Spider) {
		s.delay = d
	}
}

// WithFilter sets the URL filter.
func WithFilter(f *Filter) SpiderOption {
	return func(s *Spider) {
		s.filter = f
	}
}

// WithLogger sets the logger for skip and failure messages.
func WithLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		s.logger = logger
	}
}

// NewSpider creates a new Spider using the given fetcher.
//
// Design decision: We require an external fetcher because:
//  1. User-agent rotation and cookie seeding are the fetch package's concern
//  2. The same fetcher instance is shared with the download stage
//  3. Allows for different configurations in tests
func NewSpider(fetcher *fetch.Fetcher, opts ...SpiderOption) *Spider {
	defaultFilter, _ := NewFilter("", []string{".pdf"}) //nolint:errcheck // empty pattern cannot fail

	s := &Spider{
		fetcher:  fetcher,
		filter:   defaultFilter,
		maxDepth: 3,
		delay:    500 * time.Millisecond,
		logger:   slog.Default(),
		visited:  make(map[string]bool),
		seenDocs: make(map[string]bool),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Result is the outcome of one crawl run.
type Result struct {
	// Documents are the target documents discovered, in discovery order,
	// deduplicated by URL across the whole run.
	Documents []model.DocumentLink

	// PagesVisited is the number of pages fetched.
	PagesVisited int

	// Failures records every URL that was abandoned and why.
	Failures []model.Failure
}

// Crawl walks the site breadth-first from startURL and returns the
// documents found. Fetch failures are recorded and skipped; only a
// malformed start URL is an error.
func (s *Spider) Crawl(ctx context.Context, startURL string) (*Result, error) {
	start, err := url.Parse(startURL)
	if err != nil {
		return nil, fmt.Errorf("invalid start URL: %w", err)
	}
	if start.Scheme != "http" && start.Scheme != "https" {
		start.Scheme = "https"
	}
	if start.Host == "" {
		return nil, fmt.Errorf("invalid start URL: %q has no host", startURL)
	}

	result := &Result{
		Documents: make([]model.DocumentLink, 0),
		Failures:  make([]model.Failure, 0),
	}

	queue := []queueItem{{url: start.String(), depth: 0}}

	for len(queue) > 0 {
		if s.maxPages > 0 && s.pageCount >= s.maxPages {
			break
		}

		select {
		case <-ctx.Done():
			result.PagesVisited = s.pageCount
			return result, ctx.Err()
		default:
		}

		item := queue[0]
		queue = queue[1:]

		if s.isVisited(item.url) {
			continue
		}
		s.markVisited(item.url)

		page, err := s.fetcher.Fetch(ctx, item.url)
		if err != nil {
			// Non-fatal: this URL is abandoned, not re-queued.
			attempts := 0
			var failure *fetch.Failure
			if errors.As(err, &failure) {
				attempts = failure.Attempts
			}
			s.logger.Warn("fetch failed",
				slog.String("url", item.url),
				slog.Int("attempts", attempts),
				slog.String("error", err.Error()))
			result.Failures = append(result.Failures, model.Failure{
				Stage:    "crawl",
				URL:      item.url,
				Message:  err.Error(),
				Attempts: attempts,
			})
			continue
		}
		s.pageCount++

		if !page.IsHTML() {
			s.logger.Debug("skipping non-HTML content",
				slog.String("url", page.FinalURL),
				slog.String("content_type", page.ContentType))
			continue
		}

		doc, err := html.Parse(bytes.NewReader(page.Body))
		if err != nil {
			result.Failures = append(result.Failures, model.Failure{
				Stage:   "crawl",
				URL:     item.url,
				Message: fmt.Sprintf("parse: %v", err),
			})
			continue
		}

		// Resolve links against the final URL so redirected pages keep
		// their relative links intact.
		base, err := url.Parse(page.FinalURL)
		if err != nil {
			base = start
		}

		for _, link := range ExtractLinks(doc, base) {
			if !s.filter.SameHost(start.Host, link.URL) {
				continue
			}
			// Junk filtering runs before the document branch: junk URLs
			// dominate crawled output and would waste fetch budget.
			if s.filter.IsJunkPage(link.URL) {
				continue
			}
			if s.filter.IsTargetDocument(link.URL) {
				s.collectDocument(result, link)
				continue
			}
			if item.depth < s.maxDepth && !s.isVisited(link.URL) {
				queue = append(queue, queueItem{url: link.URL, depth: item.depth + 1})
			}
		}

		// Politeness delay
		if s.delay > 0 && len(queue) > 0 {
			select {
			case <-ctx.Done():
				result.PagesVisited = s.pageCount
				return result, ctx.Err()
			case <-time.After(s.delay):
			}
		}
	}

	result.PagesVisited = s.pageCount
	return result, nil
}

// queueItem represents an item in the crawl frontier.
type queueItem struct {
	url   string
	depth int
}

// collectDocument derives the document's DOM context and appends it to the
// result unless the URL was already collected this run. Context must be
// derived now: the anchor node dies with the page's parse tree.
func (s *Spider) collectDocument(result *Result, link Link) {
	s.mutex.Lock()
	if s.seenDocs[link.URL] {
		s.mutex.Unlock()
		return
	}
	s.seenDocs[link.URL] = true
	s.mutex.Unlock()

	group := NearestHeading(link.Anchor)
	if group == "" {
		// No heading anywhere above the anchor. Not an error, just a page
		// with unusual structure.
		group = "General"
	}

	name := AnchorText(link.Anchor)
	if name == "" {
		name = urlStem(link.URL)
	}

	result.Documents = append(result.Documents, model.DocumentLink{
		URL:   link.URL,
		Group: group,
		Name:  name,
	})
}

// urlStem returns the last path segment of a URL without its extension,
// used as a display name for anchors with no text.
func urlStem(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	base := path.Base(u.Path)
	if ext := path.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	if base == "." || base == "/" {
		return u.Host
	}
	return base
}

// isVisited checks if a URL has been visited.
func (s *Spider) isVisited(pageURL string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.visited[s.normalizeURL(pageURL)]
}

// markVisited marks a URL as visited.
func (s *Spider) markVisited(pageURL string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.visited[s.normalizeURL(pageURL)] = true
}

// normalizeURL normalizes a URL for deduplication.
//
// Design decision: We normalize URLs because:
//  1. Same page can have different URL representations
//  2. Fragment (#anchor) doesn't change content
//  3. Empty path and "/" are the same page
func (s *Spider) normalizeURL(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return pageURL
	}

	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String()
}

// Reset clears the spider's state, allowing it to be reused for another run.
func (s *Spider) Reset() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.visited = make(map[string]bool)
	s.seenDocs = make(map[string]bool)
	s.pageCount = 0
}
