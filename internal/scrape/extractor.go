package scrape

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/pubcrawl/pubcrawl/internal/model"
)

// Extractor pulls structured report fields out of rendered report pages.
type Extractor struct {
	// seriesLabel and caseLabel are the field labels scanned for.
	seriesLabel string
	caseLabel   string

	// descriptionClass is the class of the dedicated description block.
	descriptionClass string

	// articleClass is the class of the article body used as the first
	// description fallback.
	articleClass string
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithSeriesLabel sets the label for the series number field.
func WithSeriesLabel(label string) Option {
	return func(e *Extractor) {
		e.seriesLabel = label
	}
}

// WithCaseLabel sets the label for the case number field.
func WithCaseLabel(label string) Option {
	return func(e *Extractor) {
		e.caseLabel = label
	}
}

// WithDescriptionClass sets the class of the description block.
func WithDescriptionClass(class string) Option {
	return func(e *Extractor) {
		e.descriptionClass = class
	}
}

// WithArticleClass sets the class of the article body block.
func WithArticleClass(class string) Option {
	return func(e *Extractor) {
		e.articleClass = class
	}
}

// NewExtractor creates an Extractor with the default site labels and
// classes.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		seriesLabel:      "Serienummer",
		caseLabel:        "Diarienummer",
		descriptionClass: "rapport-description",
		articleClass:     "rapport-article-content",
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// ParseReport extracts the structured fields from one report page.
// Title is the first h1, the series and case numbers come from the label
// scanner, and the description falls back from the dedicated block to the
// article paragraphs to every paragraph on the page. Absent fields stay
// empty; nothing here is fatal. Date and URL belong to the listing entry
// and are left for the caller to fill in.
func (e *Extractor) ParseReport(content string) model.ReportRecord {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return model.ReportRecord{}
	}

	tokens := Tokenize(doc)

	record := model.ReportRecord{
		Title:       firstHeadingText(doc),
		Description: e.description(doc),
	}
	if v, ok := FindLabelValue(tokens, e.seriesLabel); ok {
		record.SeriesNumber = v
	}
	if v, ok := FindLabelValue(tokens, e.caseLabel); ok {
		record.CaseNumber = v
	}

	return record
}

// description returns the report description with three fallbacks:
// the dedicated description block, the article body's paragraphs, then
// every paragraph on the page. Paragraph texts are joined with single
// spaces.
func (e *Extractor) description(doc *html.Node) string {
	if block := findDivByClass(doc, e.descriptionClass); block != nil {
		return nodeText(block)
	}

	scope := doc
	if article := findDivByClass(doc, e.articleClass); article != nil {
		scope = article
	}

	parts := make([]string, 0)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "p" {
			if t := nodeText(n); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(scope)

	return strings.Join(parts, " ")
}

// firstHeadingText returns the text of the document's first h1.
func firstHeadingText(doc *html.Node) string {
	var found *html.Node

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == "h1" {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if found == nil {
		return ""
	}
	return nodeText(found)
}

// findDivByClass returns the first div carrying the class, or nil.
func findDivByClass(doc *html.Node, class string) *html.Node {
	if class == "" {
		return nil
	}

	var found *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == "div" && hasClass(n, class) {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return found
}

// hasClass reports whether the node's class attribute contains the class.
func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key == "class" {
			for _, field := range strings.Fields(attr.Val) {
				if field == class {
					return true
				}
			}
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
