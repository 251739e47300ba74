package model

import (
	"testing"
)

// TestPageIsHTML tests the IsHTML method.
func TestPageIsHTML(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		contentType string
		expected    bool
	}{
		{"text/html", true},
		{"text/html; charset=utf-8", true},
		{"application/xhtml+xml", true},
		{"application/json", false},
		{"application/pdf", false},
		{"text/plain", false},
		{"", false},
	}

	for _, tc := range testCases {
		t.Run(tc.contentType, func(t *testing.T) {
			t.Parallel()

			page := &Page{ContentType: tc.contentType}
			if page.IsHTML() != tc.expected {
				t.Errorf("IsHTML() for %q = %v, expected %v", tc.contentType, page.IsHTML(), tc.expected)
			}
		})
	}
}

// TestPageTruncateBody tests the TruncateBody method.
func TestPageTruncateBody(t *testing.T) {
	t.Parallel()

	t.Run("does not truncate small content", func(t *testing.T) {
		t.Parallel()

		content := []byte("Small content")
		page := &Page{Body: content}
		page.TruncateBody()

		if len(page.Body) != len(content) {
			t.Errorf("body was modified")
		}
	})

	t.Run("truncates large content to MaxBodySize", func(t *testing.T) {
		t.Parallel()

		// Create content larger than MaxBodySize
		content := make([]byte, MaxBodySize+1000)
		page := &Page{Body: content}
		page.TruncateBody()

		if len(page.Body) != MaxBodySize {
			t.Errorf("got length %d, expected %d", len(page.Body), MaxBodySize)
		}
	})
}
