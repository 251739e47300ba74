package crawler

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Link is a resolved anchor discovered on a page.
// The Anchor node stays valid only while the page's parse tree is alive;
// derive any context (heading, text) before moving to the next page.
type Link struct {
	// URL is the absolute URL after resolution against the page base.
	URL string

	// Anchor is the originating <a> element.
	Anchor *html.Node
}

// ExtractLinks walks the parsed document in order and returns every anchor
// with a resolvable href as an absolute URL. Malformed and non-navigational
// hrefs (javascript:, mailto:, bare fragments) are skipped silently. The
// result is not deduplicated; that belongs to the traversal layer.
//
// Design decision: We use golang.org/x/net/html rather than regex because:
//  1. It correctly handles malformed HTML common on the web
//  2. It keeps the anchor node available for DOM context lookups
//  3. More maintainable than complex regex patterns
func ExtractLinks(doc *html.Node, base *url.URL) []Link {
	links := make([]Link, 0)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href := getAttr(n, "href"); href != "" {
				if resolved := resolveURL(base, href); resolved != "" {
					links = append(links, Link{URL: resolved, Anchor: n})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return links
}

// resolveURL resolves an href against the base URL.
// Returns "" for hrefs that do not navigate anywhere useful.
func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" ||
		strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") ||
		href == "#" {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}

	return base.ResolveReference(u).String()
}

// NearestHeading returns the text of the heading closest to the anchor.
// It walks up the ancestor chain and, at each level, searches that subtree
// in document order for the first h1-h6 with non-empty text. Returns ""
// when no ancestor subtree contains a heading; callers substitute their
// own fallback label.
func NearestHeading(anchor *html.Node) string {
	for parent := anchor.Parent; parent != nil; parent = parent.Parent {
		if heading := findHeading(parent); heading != "" {
			return heading
		}
	}
	return ""
}

// findHeading searches a subtree in document order for the first heading
// element with non-empty stripped text.
func findHeading(n *html.Node) string {
	if n.Type == html.ElementNode && isHeading(n.Data) {
		if text := NodeText(n); text != "" {
			return text
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if text := findHeading(c); text != "" {
			return text
		}
	}
	return ""
}

// isHeading reports whether the element name is h1 through h6.
func isHeading(name string) bool {
	switch name {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return true
	}
	return false
}

// AnchorText returns the anchor's visible text, whitespace-collapsed.
// Returns "" for image-only or empty anchors.
func AnchorText(anchor *html.Node) string {
	return NodeText(anchor)
}

// NodeText returns the concatenated text content of a subtree with runs of
// whitespace collapsed to single spaces and the ends trimmed.
func NodeText(n *html.Node) string {
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
