package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/pubcrawl/pubcrawl/internal/fetch"
	"github.com/pubcrawl/pubcrawl/internal/model"
)

// timestampLayout names one harvest generation. Every document stored by
// one Sink lands under the same generation directory.
const timestampLayout = "2006-01-02_15-04-05"

// unsafeChars matches everything that may not appear in a path segment.
var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// Sink stores crawled documents in a directory tree grouped by the
// document's page context:
//
//	<base>/<group>/<timestamp>/<name>/<file>
//
// Group is the nearest heading above the link that discovered the
// document, name is the link's anchor text, and both are sanitized for
// filesystem use. The timestamp is fixed when the Sink is created, so one
// crawl produces one generation directory per group.
type Sink struct {
	// baseDir is the root of the download tree.
	baseDir string

	// stamp is the generation directory name.
	stamp string

	// ext is appended to stored filenames that do not already carry it.
	ext string

	// delay is the pause between consecutive downloads.
	delay time.Duration

	// fetcher performs the streaming downloads.
	fetcher *fetch.Fetcher

	// logger is used for download logging.
	logger *slog.Logger
}

// SinkOption configures a Sink.
type SinkOption func(*Sink)

// WithDelay sets the pause between consecutive downloads.
func WithDelay(delay time.Duration) SinkOption {
	return func(s *Sink) {
		s.delay = delay
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) SinkOption {
	return func(s *Sink) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTimestamp pins the generation timestamp. Without it the Sink uses
// the construction time.
func WithTimestamp(t time.Time) SinkOption {
	return func(s *Sink) {
		s.stamp = t.Format(timestampLayout)
	}
}

// WithExtension sets the extension ensured on stored filenames.
func WithExtension(ext string) SinkOption {
	return func(s *Sink) {
		s.ext = ext
	}
}

// NewSink creates a Sink rooted at baseDir that downloads through the
// given fetcher.
//
// Design decision: We require an external fetcher because:
//  1. The crawl and download stages must present the same client identity
//  2. Retry and timeout policy is configured once, on the fetcher
//  3. Allows for different configurations in tests
func NewSink(baseDir string, fetcher *fetch.Fetcher, opts ...SinkOption) *Sink {
	s := &Sink{
		baseDir: baseDir,
		stamp:   time.Now().Format(timestampLayout),
		ext:     ".pdf",
		delay:   500 * time.Millisecond,
		fetcher: fetcher,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Result summarizes one StoreAll pass.
type Result struct {
	// Stored lists the paths of successfully written files.
	Stored []string

	// Failures records every document that was abandoned and why.
	Failures []model.Failure
}

// StoreAll downloads every document, pacing consecutive downloads with the
// configured delay. A failed download is recorded and skipped; only
// context cancellation ends the pass early.
func (s *Sink) StoreAll(ctx context.Context, docs []model.DocumentLink) (*Result, error) {
	result := &Result{
		Stored:   make([]string, 0, len(docs)),
		Failures: make([]model.Failure, 0),
	}

	for i, doc := range docs {
		if i > 0 && s.delay > 0 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(s.delay):
			}
		}

		dest, err := s.Store(ctx, doc)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			attempts := 0
			var failure *fetch.Failure
			if errors.As(err, &failure) {
				attempts = failure.Attempts
			}
			s.logger.Warn("download failed",
				slog.String("url", doc.URL),
				slog.Int("attempts", attempts),
				slog.String("error", err.Error()))
			result.Failures = append(result.Failures, model.Failure{
				Stage:    "download",
				URL:      doc.URL,
				Message:  err.Error(),
				Attempts: attempts,
			})
			continue
		}
		result.Stored = append(result.Stored, dest)
	}

	return result, nil
}

// Store downloads a single document and returns the path it was written
// to. A failed or interrupted download leaves no file behind.
func (s *Sink) Store(ctx context.Context, doc model.DocumentLink) (string, error) {
	dir := filepath.Join(s.baseDir, Sanitize(doc.Group), s.stamp, Sanitize(doc.Name))
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("create download directory: %w", err)
	}

	dest := filepath.Join(dir, s.fileName(doc.URL))

	f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return "", fmt.Errorf("create download file: %w", err)
	}

	n, err := s.fetcher.Download(ctx, doc.URL, f)
	if closeErr := f.Close(); closeErr != nil && err == nil {
		err = fmt.Errorf("close download file: %w", closeErr)
	}
	if err != nil {
		// A partial file would be mistaken for a complete document on the
		// next inspection of the tree.
		_ = os.Remove(dest)
		return "", err
	}

	s.logger.Debug("stored document",
		slog.String("url", doc.URL),
		slog.String("path", dest),
		slog.Int64("bytes", n))
	return dest, nil
}

// fileName derives the stored filename from the document URL's last path
// segment, sanitized and carrying the configured extension.
func (s *Sink) fileName(rawURL string) string {
	base := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		base = u.Path
	}

	name := Sanitize(path.Base(base))
	if !strings.HasSuffix(strings.ToLower(name), s.ext) {
		name += s.ext
	}
	return name
}

// Sanitize makes a string safe for use as a single path segment: trim,
// fold accented letters to their base form, collapse whitespace runs to a
// hyphen, and drop everything outside [A-Za-z0-9._-]. A string with
// nothing left keeps its place in the layout as "unnamed" rather than
// collapsing a directory level.
func Sanitize(name string) string {
	s := removeAccents(strings.TrimSpace(name))
	s = strings.Join(strings.Fields(s), "-")
	s = unsafeChars.ReplaceAllString(s, "")
	if s == "" || strings.Trim(s, ".") == "" {
		return "unnamed"
	}
	return s
}

// removeAccents strips diacritical marks so Swedish letters fold to their
// base form (å to a, ö to o) instead of being dropped by the safe-set
// filter.
func removeAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}
