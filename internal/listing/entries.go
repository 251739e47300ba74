package listing

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/pubcrawl/pubcrawl/internal/model"
)

// IsValidListingPage reports whether the rendered HTML looks like a real
// listing page: some h1-h3 heading must contain the marker phrase. Pages
// past the last index render without it.
func IsValidListingPage(content, marker string) bool {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return false
	}

	found := false
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found {
			return
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "h1", "h2", "h3":
				if strings.Contains(nodeText(n), marker) {
					found = true
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return found
}

// ExtractOptions controls how entries are located within one listing page.
type ExtractOptions struct {
	// BaseURL provides scheme and host for resolving relative report hrefs.
	BaseURL *url.URL

	// DateMarkerClass is the class of the <time> elements that carry each
	// entry's published date.
	DateMarkerClass string

	// ReportPathPrefix is the path prefix report hrefs must start with.
	ReportPathPrefix string

	// Categories is the allow-list for the path segment after the prefix.
	// Empty allows every category.
	Categories []string
}

// ExtractEntries pulls report entries from one rendered listing page.
//
// For every date-marker element, the extraction walks backward through the
// document to the nearest preceding anchor whose href starts with the
// report path prefix. In pre-order, an enclosing anchor precedes its own
// date element, so "preceding" covers both layouts the site uses. Entries
// whose category segment is not allow-listed are dropped, and an entry URL
// appearing twice within the same page is kept once.
func ExtractEntries(content string, opts ExtractOptions) []model.ListingEntry {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil
	}

	entries := make([]model.ListingEntry, 0)
	seen := make(map[string]bool)

	// lastAnchor tracks the most recent report anchor in document order.
	var lastAnchor *html.Node

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if n.Data == "a" {
				if href := getAttr(n, "href"); strings.HasPrefix(href, opts.ReportPathPrefix) {
					lastAnchor = n
				}
			}
			if n.Data == "time" && hasClass(n, opts.DateMarkerClass) && lastAnchor != nil {
				href := getAttr(lastAnchor, "href")
				if categoryAllowed(href, opts.ReportPathPrefix, opts.Categories) {
					entryURL := absoluteURL(href, opts.BaseURL)
					if entryURL != "" && !seen[entryURL] {
						seen[entryURL] = true
						entries = append(entries, model.ListingEntry{
							URL:      entryURL,
							DateText: nodeText(n),
						})
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return entries
}

// categoryAllowed checks the path segment following the prefix against the
// allow-list. "/publikationer/rapport/2024/x" with prefix "/publikationer/"
// has category "rapport".
func categoryAllowed(href, prefix string, categories []string) bool {
	if len(categories) == 0 {
		return true
	}

	rest := strings.TrimPrefix(href, prefix)
	category, _, _ := strings.Cut(rest, "/")
	category = strings.ToLower(category)
	// A query string can follow the category directly.
	category, _, _ = strings.Cut(category, "?")

	for _, allowed := range categories {
		if category == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}

// absoluteURL turns a report href into an absolute URL against the base.
func absoluteURL(href string, base *url.URL) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	if base == nil {
		return href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}

// hasClass reports whether the node's class attribute contains the class.
func hasClass(n *html.Node, class string) bool {
	if class == "" {
		return false
	}
	for _, field := range strings.Fields(getAttr(n, "class")) {
		if field == class {
			return true
		}
	}
	return false
}

// nodeText returns the subtree's text with whitespace runs collapsed.
func nodeText(n *html.Node) string {
	var sb strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	return strings.Join(strings.Fields(sb.String()), " ")
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
