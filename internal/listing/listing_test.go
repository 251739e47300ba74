package listing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"testing"
)

// stubRenderer returns canned HTML per URL and records load order.
type stubRenderer struct {
	mu    sync.Mutex
	pages map[string]string
	err   error
	loads []string
}

func (s *stubRenderer) Load(_ context.Context, pageURL string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads = append(s.loads, pageURL)
	if s.err != nil {
		return "", s.err
	}
	content, ok := s.pages[pageURL]
	if !ok {
		// Pages past the configured set render without the marker.
		return "<html><body><h1>Sidan kan inte visas</h1></body></html>", nil
	}
	return content, nil
}

func (s *stubRenderer) Close() error { return nil }

func (s *stubRenderer) loaded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.loads...)
}

// pad inflates a page body past the minimum content length.
func pad() string {
	return strings.Repeat("<!-- filler content to exceed the minimum length -->", 30)
}

// listingPage builds a valid listing page with the given entry items.
func listingPage(items ...string) string {
	return fmt.Sprintf(
		"<html><body><h2>Publikationer</h2><ul>%s</ul>%s</body></html>",
		strings.Join(items, ""), pad())
}

// entryItem builds one listing entry: anchor followed by its date element.
func entryItem(href, date string) string {
	return fmt.Sprintf(
		`<li><a href="%s">Report</a><time class="lp-filterable-list-item-date">%s</time></li>`,
		href, date)
}

// testExtractOptions returns extraction settings matching the default site.
func testExtractOptions(t *testing.T) ExtractOptions {
	t.Helper()
	base, err := url.Parse("https://www.example.se/")
	if err != nil {
		t.Fatalf("failed to parse base URL: %v", err)
	}
	return ExtractOptions{
		BaseURL:          base,
		DateMarkerClass:  "lp-filterable-list-item-date",
		ReportPathPrefix: "/publikationer/",
		Categories:       []string{"rapport", "pm", "statistik", "wp"},
	}
}

// TestIsValidListingPage tests the validity marker heuristic.
func TestIsValidListingPage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{
			name:    "marker in h1",
			content: `<html><body><h1>Publikationer</h1></body></html>`,
			want:    true,
		},
		{
			name:    "marker in h2 with surrounding text",
			content: `<html><body><h2>Alla Publikationer 2024</h2></body></html>`,
			want:    true,
		},
		{
			name:    "marker in h3",
			content: `<html><body><h3>Publikationer</h3></body></html>`,
			want:    true,
		},
		{
			name:    "marker only in h4 does not count",
			content: `<html><body><h4>Publikationer</h4></body></html>`,
			want:    false,
		},
		{
			name:    "marker only in paragraph does not count",
			content: `<html><body><p>Publikationer</p></body></html>`,
			want:    false,
		},
		{
			name:    "marker absent",
			content: `<html><body><h1>Sidan kan inte visas</h1></body></html>`,
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := IsValidListingPage(tt.content, "Publikationer"); got != tt.want {
				t.Errorf("IsValidListingPage = %v, expected %v", got, tt.want)
			}
		})
	}
}

// TestExtractEntries tests per-page entry extraction.
func TestExtractEntries(t *testing.T) {
	t.Parallel()

	t.Run("pairs each date with the nearest preceding anchor", func(t *testing.T) {
		t.Parallel()

		content := listingPage(
			entryItem("/publikationer/rapport/2024/first/", "26 februari 2025"),
			entryItem("/publikationer/pm/2024/second/", "3 mars 2025"),
		)

		entries := ExtractEntries(content, testExtractOptions(t))
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d: %+v", len(entries), entries)
		}
		if entries[0].URL != "https://www.example.se/publikationer/rapport/2024/first/" {
			t.Errorf("unexpected first URL: %q", entries[0].URL)
		}
		if entries[0].DateText != "26 februari 2025" {
			t.Errorf("unexpected first date: %q", entries[0].DateText)
		}
		if entries[1].DateText != "3 mars 2025" {
			t.Errorf("unexpected second date: %q", entries[1].DateText)
		}
	})

	t.Run("date element inside the anchor", func(t *testing.T) {
		t.Parallel()

		content := fmt.Sprintf(`<html><body><h2>Publikationer</h2>
			<a href="/publikationer/rapport/2024/nested/">
				Report title
				<time class="lp-filterable-list-item-date">1 januari 2025</time>
			</a>%s</body></html>`, pad())

		entries := ExtractEntries(content, testExtractOptions(t))
		if len(entries) != 1 {
			t.Fatalf("expected 1 entry, got %d", len(entries))
		}
		if entries[0].URL != "https://www.example.se/publikationer/rapport/2024/nested/" {
			t.Errorf("unexpected URL: %q", entries[0].URL)
		}
	})

	t.Run("drops categories outside the allow-list", func(t *testing.T) {
		t.Parallel()

		content := listingPage(
			entryItem("/publikationer/nyheter/2024/news/", "2 april 2025"),
			entryItem("/publikationer/statistik/2024/stats/", "5 maj 2025"),
		)

		entries := ExtractEntries(content, testExtractOptions(t))
		if len(entries) != 1 {
			t.Fatalf("expected 1 entry, got %d: %+v", len(entries), entries)
		}
		if !strings.Contains(entries[0].URL, "/statistik/") {
			t.Errorf("expected the statistik entry, got %q", entries[0].URL)
		}
	})

	t.Run("date without preceding report anchor is skipped", func(t *testing.T) {
		t.Parallel()

		content := fmt.Sprintf(`<html><body><h2>Publikationer</h2>
			<a href="/om-oss/">Not a report</a>
			<time class="lp-filterable-list-item-date">7 juni 2025</time>
			%s</body></html>`, pad())

		entries := ExtractEntries(content, testExtractOptions(t))
		if len(entries) != 0 {
			t.Errorf("expected no entries, got %+v", entries)
		}
	})

	t.Run("duplicate URLs within one page kept once", func(t *testing.T) {
		t.Parallel()

		content := listingPage(
			entryItem("/publikationer/rapport/2024/same/", "1 juli 2025"),
			entryItem("/publikationer/rapport/2024/same/", "1 juli 2025"),
		)

		entries := ExtractEntries(content, testExtractOptions(t))
		if len(entries) != 1 {
			t.Errorf("expected 1 entry after within-page dedup, got %d", len(entries))
		}
	})

	t.Run("absolute hrefs pass through unchanged", func(t *testing.T) {
		t.Parallel()

		// Anchors holding absolute URLs do not carry the path prefix, so
		// they are not treated as report anchors.
		content := listingPage(
			entryItem("https://www.example.se/publikationer/rapport/2024/abs/", "9 augusti 2025"),
		)

		entries := ExtractEntries(content, testExtractOptions(t))
		if len(entries) != 0 {
			t.Errorf("expected absolute hrefs to be ignored by the prefix match, got %+v", entries)
		}
	})

	t.Run("other time elements are ignored", func(t *testing.T) {
		t.Parallel()

		content := fmt.Sprintf(`<html><body><h2>Publikationer</h2>
			<a href="/publikationer/rapport/2024/r/">Report</a>
			<time class="event-date">11 september 2025</time>
			%s</body></html>`, pad())

		entries := ExtractEntries(content, testExtractOptions(t))
		if len(entries) != 0 {
			t.Errorf("expected no entries for unrelated time elements, got %+v", entries)
		}
	})

	t.Run("unparseable content returns nil", func(t *testing.T) {
		t.Parallel()

		// html.Parse is extremely forgiving; this exercises the path
		// rather than expecting a parse failure.
		entries := ExtractEntries("", testExtractOptions(t))
		if len(entries) != 0 {
			t.Errorf("expected no entries from empty content, got %+v", entries)
		}
	})
}

// testPaginator builds a Paginator over a stub with fast settings.
func testPaginator(t *testing.T, stub *stubRenderer, opts ...Option) *Paginator {
	t.Helper()

	defaults := []Option{
		WithPageParamTemplate("&page=%d"),
		WithDelay(0),
		WithExtractOptions(testExtractOptions(t)),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	return NewPaginator(stub, "https://www.example.se/publikationer/?from=2000-01-01", append(defaults, opts...)...)
}

// TestPaginatorRun tests the pagination state machine.
func TestPaginatorRun(t *testing.T) {
	t.Parallel()

	const baseURL = "https://www.example.se/publikationer/?from=2000-01-01"

	t.Run("stops when the validity marker disappears", func(t *testing.T) {
		t.Parallel()

		stub := &stubRenderer{pages: map[string]string{
			baseURL: listingPage(
				entryItem("/publikationer/rapport/2024/one/", "1 januari 2025"),
			),
			baseURL + "&page=2": listingPage(
				entryItem("/publikationer/rapport/2024/two/", "2 januari 2025"),
			),
			// page 3 is absent from the map: the stub serves it without the marker
		}}

		p := testPaginator(t, stub)
		result, err := p.Run(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.PagesFetched != 2 {
			t.Errorf("expected 2 pages fetched, got %d", result.PagesFetched)
		}
		if len(result.Entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(result.Entries))
		}
		if !strings.HasSuffix(result.Entries[0].URL, "/one/") || !strings.HasSuffix(result.Entries[1].URL, "/two/") {
			t.Errorf("expected entries in page order, got %+v", result.Entries)
		}

		loads := stub.loaded()
		if len(loads) != 3 {
			t.Fatalf("expected 3 page loads, got %d: %v", len(loads), loads)
		}
		if loads[0] != baseURL {
			t.Errorf("expected bare URL for page 1, got %q", loads[0])
		}
		if loads[1] != baseURL+"&page=2" {
			t.Errorf("expected page parameter for page 2, got %q", loads[1])
		}
	})

	t.Run("stops on short content", func(t *testing.T) {
		t.Parallel()

		stub := &stubRenderer{pages: map[string]string{
			// Valid marker but far below the minimum length.
			baseURL: `<html><body><h2>Publikationer</h2></body></html>`,
		}}

		p := testPaginator(t, stub)
		result, err := p.Run(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.PagesFetched != 0 {
			t.Errorf("expected 0 pages fetched, got %d", result.PagesFetched)
		}
		if len(stub.loaded()) != 1 {
			t.Errorf("expected pagination to stop after page 1, got %v", stub.loaded())
		}
	})

	t.Run("stops when a page yields zero entries", func(t *testing.T) {
		t.Parallel()

		stub := &stubRenderer{pages: map[string]string{
			baseURL: listingPage(
				entryItem("/publikationer/rapport/2024/only/", "1 januari 2025"),
			),
			baseURL + "&page=2": listingPage(), // valid and long, no entries
			baseURL + "&page=3": listingPage(
				entryItem("/publikationer/rapport/2024/never/", "9 januari 2025"),
			),
		}}

		p := testPaginator(t, stub)
		result, err := p.Run(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(result.Entries) != 1 {
			t.Errorf("expected 1 entry, got %d", len(result.Entries))
		}
		if len(stub.loaded()) != 2 {
			t.Errorf("expected page 3 never loaded, got %v", stub.loaded())
		}
	})

	t.Run("cross-page duplicates are preserved", func(t *testing.T) {
		t.Parallel()

		stub := &stubRenderer{pages: map[string]string{
			baseURL: listingPage(
				entryItem("/publikationer/rapport/2024/dup/", "1 januari 2025"),
			),
			baseURL + "&page=2": listingPage(
				entryItem("/publikationer/rapport/2024/dup/", "1 januari 2025"),
			),
		}}

		p := testPaginator(t, stub)
		result, err := p.Run(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Entries) != 2 {
			t.Errorf("expected cross-page duplicate preserved, got %d entries", len(result.Entries))
		}
	})

	t.Run("render failure terminates and is recorded", func(t *testing.T) {
		t.Parallel()

		stub := &stubRenderer{err: errors.New("browser crashed")}

		p := testPaginator(t, stub)
		result, err := p.Run(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Failures) != 1 {
			t.Fatalf("expected 1 failure, got %d", len(result.Failures))
		}
		if result.Failures[0].Stage != "listing" {
			t.Errorf("expected stage 'listing', got %q", result.Failures[0].Stage)
		}
	})

	t.Run("page cap stops a runaway listing", func(t *testing.T) {
		t.Parallel()

		// Every page is valid with an entry; only the cap stops the loop.
		stub := &stubRenderer{pages: map[string]string{}}
		content := listingPage(entryItem("/publikationer/rapport/2024/loop/", "1 januari 2025"))
		stub.pages[baseURL] = content
		for i := 2; i <= 10; i++ {
			stub.pages[fmt.Sprintf("%s&page=%d", baseURL, i)] = content
		}

		p := testPaginator(t, stub, WithMaxPages(3))
		result, err := p.Run(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.PagesFetched != 3 {
			t.Errorf("expected 3 pages fetched at the cap, got %d", result.PagesFetched)
		}
	})

	t.Run("context cancellation aborts", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		stub := &stubRenderer{pages: map[string]string{}}
		p := testPaginator(t, stub)

		if _, err := p.Run(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}
