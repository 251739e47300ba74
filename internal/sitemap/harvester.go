package sitemap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/pubcrawl/pubcrawl/internal/download"
	"github.com/pubcrawl/pubcrawl/internal/fetch"
	"github.com/pubcrawl/pubcrawl/internal/model"
)

// Date provenance values recorded on harvested documents.
const (
	dateSourceFile    = "file"
	dateSourceSitemap = "sitemap"
)

// Harvester discovers documents through the site's sitemap and extracts
// their publication dates.
type Harvester struct {
	// fetcher retrieves sitemaps and documents.
	fetcher *fetch.Fetcher

	// baseDir is where documents are stored. Empty disables downloads
	// and limits dates to what the sitemap itself carries.
	baseDir string

	// delay is the pause between consecutive document downloads.
	delay time.Duration

	// logger is used for harvest logging.
	logger *slog.Logger
}

// HarvesterOption configures a Harvester.
type HarvesterOption func(*Harvester)

// WithBaseDir enables document downloads under dir.
func WithBaseDir(dir string) HarvesterOption {
	return func(h *Harvester) {
		h.baseDir = dir
	}
}

// WithDelay sets the pause between consecutive document downloads.
func WithDelay(delay time.Duration) HarvesterOption {
	return func(h *Harvester) {
		h.delay = delay
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) HarvesterOption {
	return func(h *Harvester) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewHarvester creates a Harvester that fetches through the given
// fetcher. Without WithBaseDir the harvest collects metadata only.
func NewHarvester(fetcher *fetch.Fetcher, opts ...HarvesterOption) *Harvester {
	h := &Harvester{
		fetcher: fetcher,
		delay:   500 * time.Millisecond,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Result summarizes one sitemap harvest.
type Result struct {
	// Documents lists the harvested documents in sitemap order.
	Documents []model.SitemapDocument

	// Failures records child sitemaps and documents that could not be
	// processed.
	Failures []model.Failure
}

// Harvest reads the sitemap at sitemapURL and processes every document
// entry. A sitemap index is followed one level deep into its child
// sitemaps. Only URLs ending in a recognized document extension are kept.
//
// When downloads are enabled each document is saved under
// <base>/<kind>/<year>/, with the year taken from the document's
// publication date. The date prefers metadata embedded in the file itself
// over the sitemap's lastmod, and the provenance is recorded on the
// document.
func (h *Harvester) Harvest(ctx context.Context, sitemapURL string) (*Result, error) {
	result := &Result{
		Documents: make([]model.SitemapDocument, 0),
		Failures:  make([]model.Failure, 0),
	}

	entries, err := h.collectEntries(ctx, sitemapURL, result)
	if err != nil {
		return nil, err
	}

	downloads := 0
	for _, entry := range entries {
		kind, ok := classify(entry.Loc)
		if !ok {
			continue
		}

		if h.baseDir != "" && downloads > 0 && h.delay > 0 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(h.delay):
			}
		}
		downloads++

		doc, failure := h.processEntry(ctx, entry, kind)
		if failure != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			h.logger.Warn("sitemap document failed",
				slog.String("url", failure.URL),
				slog.String("error", failure.Message))
			result.Failures = append(result.Failures, *failure)
		}
		result.Documents = append(result.Documents, doc)
	}

	h.logger.Info("sitemap harvest complete",
		slog.String("sitemap", sitemapURL),
		slog.Int("documents", len(result.Documents)),
		slog.Int("failures", len(result.Failures)))
	return result, nil
}

// collectEntries fetches the root sitemap and flattens it into URL
// entries, following an index one level into its children. A child that
// cannot be fetched or parsed is recorded and skipped.
func (h *Harvester) collectEntries(ctx context.Context, sitemapURL string, result *Result) ([]Entry, error) {
	page, err := h.fetcher.Fetch(ctx, sitemapURL)
	if err != nil {
		return nil, fmt.Errorf("fetch sitemap: %w", err)
	}

	entries, parseErr := ParseSitemap(page.Body)
	if parseErr == nil {
		return entries, nil
	}

	children, err := ParseSitemapIndex(page.Body)
	if err != nil {
		// Neither format matched; report the urlset attempt.
		return nil, fmt.Errorf("parse sitemap %s: %w", sitemapURL, parseErr)
	}

	entries = make([]Entry, 0)
	for _, child := range children {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		page, err := h.fetcher.Fetch(ctx, child)
		if err != nil {
			result.Failures = append(result.Failures, model.Failure{
				Stage:    "sitemap",
				URL:      child,
				Message:  err.Error(),
				Attempts: failureAttempts(err),
			})
			continue
		}

		childEntries, err := ParseSitemap(page.Body)
		if err != nil {
			// Children of an index must be plain sitemaps; deeper
			// nesting is not followed.
			result.Failures = append(result.Failures, model.Failure{
				Stage:   "sitemap",
				URL:     child,
				Message: err.Error(),
			})
			continue
		}
		entries = append(entries, childEntries...)
	}

	return entries, nil
}

// processEntry turns one sitemap entry into a document, downloading it
// and extracting its embedded date when downloads are enabled.
func (h *Harvester) processEntry(ctx context.Context, entry Entry, kind model.DocumentKind) (model.SitemapDocument, *model.Failure) {
	doc := model.SitemapDocument{
		URL:  entry.Loc,
		Kind: kind,
	}

	var data []byte
	var failure *model.Failure

	if h.baseDir != "" {
		var buf bytes.Buffer
		if _, err := h.fetcher.Download(ctx, entry.Loc, &buf); err != nil {
			failure = &model.Failure{
				Stage:    "sitemap",
				URL:      entry.Loc,
				Message:  err.Error(),
				Attempts: failureAttempts(err),
			}
		} else {
			data = buf.Bytes()
		}
	}

	if len(data) > 0 {
		var published string
		switch kind {
		case model.KindPDF:
			published = pdfCreationDate(data)
		case model.KindXLSX:
			published = xlsxCreatedDate(data)
		}
		if published != "" {
			doc.Published = published
			doc.DateSource = dateSourceFile
		}
	}

	if doc.Published == "" && entry.LastMod != nil {
		doc.Published = entry.LastMod.Format(dateOnlyFormat)
		doc.DateSource = dateSourceSitemap
	}

	if len(data) > 0 {
		localPath, err := h.writeDocument(doc, data)
		if err != nil {
			failure = &model.Failure{
				Stage:   "sitemap",
				URL:     entry.Loc,
				Message: err.Error(),
			}
		} else {
			doc.LocalPath = localPath
		}
	}

	return doc, failure
}

// writeDocument stores the document bytes under kind and year
// directories and returns the path.
func (h *Harvester) writeDocument(doc model.SitemapDocument, data []byte) (string, error) {
	year := "unknown"
	if len(doc.Published) >= 4 {
		year = doc.Published[:4]
	}

	dir := filepath.Join(h.baseDir, string(doc.Kind), year)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("create document directory: %w", err)
	}

	dest := filepath.Join(dir, download.Sanitize(documentBaseName(doc.URL)))
	if err := os.WriteFile(dest, data, 0600); err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}
	return dest, nil
}

// documentBaseName returns the last path segment of the URL, decoded.
func documentBaseName(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		return path.Base(u.Path)
	}
	return path.Base(rawURL)
}

// classify maps a URL to a document kind by its extension.
func classify(rawURL string) (model.DocumentKind, bool) {
	lower := strings.ToLower(rawURL)
	switch {
	case strings.HasSuffix(lower, ".pdf"):
		return model.KindPDF, true
	case strings.HasSuffix(lower, ".xlsx"):
		return model.KindXLSX, true
	default:
		return "", false
	}
}

// failureAttempts extracts the attempt count from a fetch failure.
func failureAttempts(err error) int {
	var failure *fetch.Failure
	if errors.As(err, &failure) {
		return failure.Attempts
	}
	return 0
}
