package model

import (
	"strings"
	"time"
)

// Page represents one fetched or rendered web page.
// It carries the response data the extraction layers operate on.
//
// Design decision: We keep both the requested and the final URL because:
// 1. Link resolution must happen against the post-redirect URL
// 2. The visited set tracks the requested URL to avoid re-fetching aliases
// 3. Diagnostics need to show where a request actually landed
type Page struct {
	// URL is the URL that was requested.
	URL string `json:"url"`

	// FinalURL is the URL after following redirects.
	// Equal to URL when no redirect occurred.
	FinalURL string `json:"final_url"`

	// StatusCode is the HTTP response status code.
	// Zero for rendered pages, where no status is observable.
	StatusCode int `json:"status_code,omitempty"`

	// ContentType is the MIME type of the response.
	// Extracted from the Content-Type header for convenience.
	ContentType string `json:"content_type,omitempty"`

	// Body contains the response body bytes.
	// Limited to MaxBodySize bytes.
	Body []byte `json:"-"` // Excluded from JSON to reduce report size

	// FetchedAt is the timestamp when the page was retrieved.
	FetchedAt time.Time `json:"fetched_at"`

	// Rendered is true if the page was produced by the JavaScript
	// renderer rather than a plain HTTP fetch.
	Rendered bool `json:"rendered,omitempty"`
}

// MaxBodySize is the maximum size of page content to keep in memory.
// Larger responses are truncated to this size.
const MaxBodySize = 5 * 1024 * 1024 // 5 MB

// IsHTML returns true if the page content type indicates HTML.
func (p *Page) IsHTML() bool {
	return p.ContentType == "text/html" ||
		p.ContentType == "application/xhtml+xml" ||
		// Handle content types with charset suffix
		strings.HasPrefix(p.ContentType, "text/html")
}

// TruncateBody ensures the body doesn't exceed MaxBodySize.
// Call this after setting Body to enforce the size limit.
func (p *Page) TruncateBody() {
	if len(p.Body) > MaxBodySize {
		p.Body = p.Body[:MaxBodySize]
	}
}
