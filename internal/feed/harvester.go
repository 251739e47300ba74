package feed

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/pubcrawl/pubcrawl/internal/download"
	"github.com/pubcrawl/pubcrawl/internal/fetch"
	"github.com/pubcrawl/pubcrawl/internal/model"
)

// httpPrefix is the scheme prefix used to decide whether a GUID can stand
// in for a missing link.
const httpPrefix = "http"

// Harvester reads the publications RSS feed and turns its entries into
// feed documents, optionally archiving each linked page as HTML.
type Harvester struct {
	// fetcher retrieves the feed and the linked pages.
	fetcher *fetch.Fetcher

	// baseDir is where linked pages are archived. Empty disables
	// archiving and the harvest stays metadata-only.
	baseDir string

	// delay is the pause between consecutive page downloads.
	delay time.Duration

	// logger is used for harvest logging.
	logger *slog.Logger
}

// HarvesterOption configures a Harvester.
type HarvesterOption func(*Harvester)

// WithBaseDir enables page archiving under dir.
func WithBaseDir(dir string) HarvesterOption {
	return func(h *Harvester) {
		h.baseDir = dir
	}
}

// WithDelay sets the pause between consecutive page downloads.
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

// Result summarizes one feed harvest.
type Result struct {
	// Documents lists the harvested feed entries in feed order.
	Documents []model.FeedDocument

	// Failures records pages that could not be archived.
	Failures []model.Failure
}

// Harvest fetches and parses the feed at feedURL. Entries without a
// usable link are skipped. When archiving is enabled, each entry's page
// is saved under <base>/<year>/<title>.html; a failed page download is
// recorded and the entry keeps an empty LocalPath.
//
// Only an unreachable or unparseable feed is an error. Everything after
// that is per-entry and non-fatal.
func (h *Harvester) Harvest(ctx context.Context, feedURL string) (*Result, error) {
	page, err := h.fetcher.Fetch(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}

	parsed, err := gofeed.NewParser().ParseString(string(page.Body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	result := &Result{
		Documents: make([]model.FeedDocument, 0, len(parsed.Items)),
		Failures:  make([]model.Failure, 0),
	}

	for i, entry := range parsed.Items {
		link := extractLink(entry)
		if link == "" {
			h.logger.Debug("skipping feed entry without link",
				slog.String("title", entry.Title))
			continue
		}

		doc := model.FeedDocument{
			Title:     entry.Title,
			Published: formatPublished(entry.PublishedParsed),
			URL:       link,
		}

		if h.baseDir != "" {
			if i > 0 && h.delay > 0 {
				select {
				case <-ctx.Done():
					return result, ctx.Err()
				case <-time.After(h.delay):
				}
			}

			localPath, err := h.archivePage(ctx, doc)
			if err != nil {
				if ctx.Err() != nil {
					return result, ctx.Err()
				}
				h.logger.Warn("failed to archive feed page",
					slog.String("url", link),
					slog.String("error", err.Error()))
				result.Failures = append(result.Failures, model.Failure{
					Stage:   "feed",
					URL:     link,
					Message: err.Error(),
				})
			} else {
				doc.LocalPath = localPath
			}
		}

		result.Documents = append(result.Documents, doc)
	}

	h.logger.Info("feed harvest complete",
		slog.String("feed", feedURL),
		slog.Int("documents", len(result.Documents)),
		slog.Int("failures", len(result.Failures)))
	return result, nil
}

// archivePage saves the entry's page under a year directory derived from
// its publication date, or "unknown" when the entry is undated.
func (h *Harvester) archivePage(ctx context.Context, doc model.FeedDocument) (string, error) {
	year := "unknown"
	if len(doc.Published) >= 4 {
		year = doc.Published[:4]
	}

	dir := filepath.Join(h.baseDir, year)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("create archive directory: %w", err)
	}

	dest := filepath.Join(dir, download.Sanitize(doc.Title)+".html")

	f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return "", fmt.Errorf("create archive file: %w", err)
	}

	_, err = h.fetcher.Download(ctx, doc.URL, f)
	if closeErr := f.Close(); closeErr != nil && err == nil {
		err = fmt.Errorf("close archive file: %w", closeErr)
	}
	if err != nil {
		_ = os.Remove(dest)
		return "", err
	}

	return dest, nil
}

// extractLink returns the best available URL from a feed entry.
// It prefers the explicit link, falling back to the GUID when it looks
// like an HTTP URL.
func extractLink(entry *gofeed.Item) string {
	if entry.Link != "" {
		return entry.Link
	}

	if strings.HasPrefix(entry.GUID, httpPrefix) {
		return entry.GUID
	}

	return ""
}

// formatPublished normalizes a parsed feed time to YYYY-MM-DD.
// Returns an empty string when the entry carried no parseable date.
func formatPublished(t *time.Time) string {
	if t == nil {
		return ""
	}

	return t.Format("2006-01-02")
}
