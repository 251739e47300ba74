package sitemap

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"
)

// dateOnlyFormat is the date-only layout for sitemap lastmod values
// (e.g. "2024-01-15").
const dateOnlyFormat = "2006-01-02"

// Entry represents a single URL entry extracted from a sitemap.
type Entry struct {
	// Loc is the entry's URL.
	Loc string

	// LastMod is the entry's last-modified time, nil when the sitemap
	// omitted it or it was unparseable.
	LastMod *time.Time
}

// xmlURLSet is the root element of a standard sitemap XML file.
type xmlURLSet struct {
	XMLName xml.Name `xml:"urlset"`
	URLs    []xmlURL `xml:"url"`
}

// xmlURL is a single <url> entry inside a <urlset>.
type xmlURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod"`
}

// xmlSitemapIndex is the root element of a sitemap index XML file.
type xmlSitemapIndex struct {
	XMLName  xml.Name     `xml:"sitemapindex"`
	Sitemaps []xmlSitemap `xml:"sitemap"`
}

// xmlSitemap is a single <sitemap> entry inside a <sitemapindex>.
type xmlSitemap struct {
	Loc string `xml:"loc"`
}

// ParseSitemap parses standard sitemap XML and returns the contained URLs
// with their lastmod values.
func ParseSitemap(body []byte) ([]Entry, error) {
	var urlset xmlURLSet
	if err := xml.Unmarshal(body, &urlset); err != nil {
		return nil, fmt.Errorf("parse sitemap: %w", err)
	}

	entries := make([]Entry, 0, len(urlset.URLs))
	for _, u := range urlset.URLs {
		entry := Entry{Loc: strings.TrimSpace(u.Loc)}
		if u.LastMod != "" {
			if t, err := parseLastMod(u.LastMod); err == nil {
				entry.LastMod = &t
			}
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// ParseSitemapIndex parses a sitemap index XML file and returns the URLs
// of all child sitemaps listed within it.
func ParseSitemapIndex(body []byte) ([]string, error) {
	var index xmlSitemapIndex
	if err := xml.Unmarshal(body, &index); err != nil {
		return nil, fmt.Errorf("parse sitemap index: %w", err)
	}

	urls := make([]string, 0, len(index.Sitemaps))
	for _, s := range index.Sitemaps {
		urls = append(urls, strings.TrimSpace(s.Loc))
	}

	return urls, nil
}

// parseLastMod attempts to parse a sitemap lastmod value. It tries
// RFC 3339 first (e.g. "2024-01-15T10:30:00Z"), then falls back to the
// date-only format (e.g. "2024-01-15").
func parseLastMod(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)

	t, err := time.Parse(time.RFC3339, trimmed)
	if err == nil {
		return t, nil
	}

	return time.Parse(dateOnlyFormat, trimmed)
}
