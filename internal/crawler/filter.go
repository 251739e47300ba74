package crawler

import (
	"net/url"
	"regexp"
	"strings"
)

// Filter decides which discovered URLs are worth anything.
// It rejects junk pages, separates target documents from crawlable pages,
// and keeps the crawl on the seed host.
//
// Design decision: Filter is a standalone type rather than spider methods
// because:
//  1. The predicates are pure functions over URLs, easy to test in isolation
//  2. The listing extractor reuses the same classification
//  3. The junk pattern is site configuration, not crawl state
type Filter struct {
	// junkPattern matches URL paths of auto-generated pages that tend to 404.
	junkPattern *regexp.Regexp

	// documentMarkers are lowercase substrings that mark a URL as a target
	// document (e.g. ".pdf").
	documentMarkers []string
}

// NewFilter creates a Filter from a junk-path pattern and document markers.
// An empty pattern disables junk filtering.
func NewFilter(junkPattern string, documentMarkers []string) (*Filter, error) {
	f := &Filter{}

	if junkPattern != "" {
		re, err := regexp.Compile(junkPattern)
		if err != nil {
			return nil, err
		}
		f.junkPattern = re
	}

	markers := make([]string, 0, len(documentMarkers))
	for _, m := range documentMarkers {
		if m != "" {
			markers = append(markers, strings.ToLower(m))
		}
	}
	f.documentMarkers = markers

	return f, nil
}

// SameHost reports whether the candidate URL's host matches the base host
// exactly. Any mismatch (subdomains included) is off-domain.
func (f *Filter) SameHost(baseHost, candidate string) bool {
	u, err := url.Parse(candidate)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, baseHost)
}

// IsJunkPage reports whether the URL's path matches the junk-page pattern.
// The default pattern catches single-segment numeric paths with an optional
// hex suffix ending in .html, which on the target sites are auto-generated
// pages that 404.
func (f *Filter) IsJunkPage(candidate string) bool {
	if f.junkPattern == nil {
		return false
	}
	u, err := url.Parse(candidate)
	if err != nil {
		return false
	}
	return f.junkPattern.MatchString(u.Path)
}

// IsTargetDocument reports whether the URL refers to a target document.
// The marker may appear anywhere in the URL, not just as a suffix, so
// query-string-suffixed document links still match.
func (f *Filter) IsTargetDocument(candidate string) bool {
	lower := strings.ToLower(candidate)
	for _, marker := range f.documentMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
