package scrape

import (
	"strings"

	"golang.org/x/net/html"
)

// Tokenize returns the document's visible text as a sequence of stripped
// tokens in document order, one per text node, with empty tokens dropped.
// Script and style contents are not visible and are excluded.
//
// The token sequence is the input to FindLabelValue; it is ephemeral and
// carries no reference back into the parse tree.
func Tokenize(doc *html.Node) []string {
	tokens := make([]string, 0)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				tokens = append(tokens, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return tokens
}

// FindLabelValue scans tokens for a label and returns the value that
// follows it. Two layouts are tolerated, because the source markup
// inconsistently splits "Label:", ":" and the value across text nodes:
//
//   - a token exactly equal to the label (case-insensitive): skip any
//     following tokens that are a bare colon and return the next
//     non-colon, non-blank token
//   - a token starting with "label:" (case-insensitive): if text remains
//     after the colon on the same token, return it; otherwise apply the
//     same forward skip
//
// The first match wins; later occurrences are not considered. The second
// return is false when the label is absent or nothing follows it.
func FindLabelValue(tokens []string, label string) (string, bool) {
	lower := strings.ToLower(label)

	for i, token := range tokens {
		t := strings.TrimSpace(token)
		tl := strings.ToLower(t)

		// Case A: bare label, value in a later token.
		if tl == lower {
			return nextValue(tokens, i+1)
		}

		// Case B: label and colon share a token, value may follow on the
		// same token or a later one.
		if strings.HasPrefix(tl, lower+":") {
			// The label itself contains no colon, so the first colon in
			// the token terminates it.
			_, after, _ := strings.Cut(t, ":")
			after = strings.TrimSpace(after)
			if after != "" && after != ":" {
				return after, true
			}
			return nextValue(tokens, i+1)
		}
	}

	return "", false
}

// nextValue returns the first token at or after index that is neither a
// bare colon nor blank.
func nextValue(tokens []string, index int) (string, bool) {
	for j := index; j < len(tokens); j++ {
		t := strings.TrimSpace(tokens[j])
		if t == ":" || t == "" {
			continue
		}
		return t, true
	}
	return "", false
}
