package sitemap

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/pubcrawl/pubcrawl/internal/fetch"
	"github.com/pubcrawl/pubcrawl/internal/model"
)

func TestParseSitemap(t *testing.T) {
	t.Parallel()

	t.Run("parses urlset with lastmod variants", func(t *testing.T) {
		t.Parallel()

		body := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://example.se/media/rapport.pdf</loc><lastmod>2024-01-15T10:30:00Z</lastmod></url>
  <url><loc>https://example.se/media/tabell.xlsx</loc><lastmod>2022-11-01</lastmod></url>
  <url><loc>https://example.se/om-oss</loc></url>
</urlset>`

		entries, err := ParseSitemap([]byte(body))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(entries) != 3 {
			t.Fatalf("expected 3 entries, got %d", len(entries))
		}

		if entries[0].Loc != "https://example.se/media/rapport.pdf" {
			t.Errorf("unexpected first loc %q", entries[0].Loc)
		}
		if entries[0].LastMod == nil || entries[0].LastMod.Format("2006-01-02") != "2024-01-15" {
			t.Errorf("expected first lastmod 2024-01-15, got %v", entries[0].LastMod)
		}
		if entries[1].LastMod == nil || entries[1].LastMod.Format("2006-01-02") != "2022-11-01" {
			t.Errorf("expected second lastmod 2022-11-01, got %v", entries[1].LastMod)
		}
		if entries[2].LastMod != nil {
			t.Errorf("expected nil lastmod for third entry, got %v", entries[2].LastMod)
		}
	})

	t.Run("rejects sitemap index input", func(t *testing.T) {
		t.Parallel()

		body := `<sitemapindex><sitemap><loc>https://example.se/sitemap-1.xml</loc></sitemap></sitemapindex>`
		if _, err := ParseSitemap([]byte(body)); err == nil {
			t.Fatal("expected error, got nil")
		}
	})

	t.Run("rejects non-xml input", func(t *testing.T) {
		t.Parallel()

		if _, err := ParseSitemap([]byte("inte xml")); err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}

func TestParseSitemapIndex(t *testing.T) {
	t.Parallel()

	body := `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>https://example.se/sitemap-1.xml</loc></sitemap>
  <sitemap><loc>https://example.se/sitemap-2.xml</loc></sitemap>
</sitemapindex>`

	children, err := ParseSitemapIndex([]byte(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(children))
	}
	if children[0] != "https://example.se/sitemap-1.xml" {
		t.Errorf("unexpected first child %q", children[0])
	}
}

func TestParsePDFDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "full pdf date with timezone", raw: "D:20230424161144+02'00'", want: "2023-04-24"},
		{name: "date only", raw: "D:20230424", want: "2023-04-24"},
		{name: "missing prefix", raw: "20230424161144", want: "2023-04-24"},
		{name: "too short", raw: "D:2023", want: ""},
		{name: "invalid month", raw: "D:20231324", want: ""},
		{name: "empty", raw: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := parsePDFDate(tt.raw); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestPDFCreationDate(t *testing.T) {
	t.Parallel()

	t.Run("literal string form", func(t *testing.T) {
		t.Parallel()

		data := []byte("%PDF-1.4\n1 0 obj\n<< /CreationDate (D:20230424161144+02'00') /Producer (Test) >>\nendobj")
		if got := pdfCreationDate(data); got != "2023-04-24" {
			t.Errorf("expected %q, got %q", "2023-04-24", got)
		}
	})

	t.Run("no creation date", func(t *testing.T) {
		t.Parallel()

		data := []byte("%PDF-1.4\n1 0 obj\n<< /Producer (Test) >>\nendobj")
		if got := pdfCreationDate(data); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})
}

func TestXlsxCreatedDate(t *testing.T) {
	t.Parallel()

	t.Run("reads created property", func(t *testing.T) {
		t.Parallel()

		f := excelize.NewFile()
		if err := f.SetDocProps(&excelize.DocProperties{Created: "2015-06-05T18:17:20Z"}); err != nil {
			t.Fatalf("failed to set doc props: %v", err)
		}
		buf, err := f.WriteToBuffer()
		if err != nil {
			t.Fatalf("failed to build workbook: %v", err)
		}

		if got := xlsxCreatedDate(buf.Bytes()); got != "2015-06-05" {
			t.Errorf("expected %q, got %q", "2015-06-05", got)
		}
	})

	t.Run("not a workbook", func(t *testing.T) {
		t.Parallel()

		if got := xlsxCreatedDate([]byte("inte en arbetsbok")); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})
}

func newSitemapServer(t *testing.T) (*httptest.Server, *http.ServeMux) {
	t.Helper()

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, mux
}

func newSitemapFetcher() *fetch.Fetcher {
	return fetch.NewFetcher(fetch.WithRetry(1, time.Millisecond))
}

func TestHarvesterHarvest(t *testing.T) {
	t.Parallel()

	t.Run("collects document metadata from a plain sitemap", func(t *testing.T) {
		t.Parallel()

		server, mux := newSitemapServer(t)
		body := fmt.Sprintf(`<urlset>
  <url><loc>%s/media/rapport.pdf</loc><lastmod>2024-01-15</lastmod></url>
  <url><loc>%s/om-oss</loc></url>
  <url><loc>%s/media/tabell.xlsx</loc></url>
</urlset>`, server.URL, server.URL, server.URL)
		mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(body))
		})

		harvester := NewHarvester(newSitemapFetcher())
		result, err := harvester.Harvest(context.Background(), server.URL+"/sitemap.xml")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(result.Documents) != 2 {
			t.Fatalf("expected 2 documents, got %d", len(result.Documents))
		}

		pdf := result.Documents[0]
		if pdf.Kind != model.KindPDF {
			t.Errorf("expected kind %q, got %q", model.KindPDF, pdf.Kind)
		}
		if pdf.Published != "2024-01-15" {
			t.Errorf("expected published %q, got %q", "2024-01-15", pdf.Published)
		}
		if pdf.DateSource != "sitemap" {
			t.Errorf("expected date source %q, got %q", "sitemap", pdf.DateSource)
		}
		if pdf.LocalPath != "" {
			t.Errorf("expected no local path without downloads, got %q", pdf.LocalPath)
		}

		xlsx := result.Documents[1]
		if xlsx.Kind != model.KindXLSX {
			t.Errorf("expected kind %q, got %q", model.KindXLSX, xlsx.Kind)
		}
		if xlsx.Published != "" || xlsx.DateSource != "" {
			t.Errorf("expected undated document, got %q from %q", xlsx.Published, xlsx.DateSource)
		}
	})

	t.Run("follows a sitemap index one level", func(t *testing.T) {
		t.Parallel()

		server, mux := newSitemapServer(t)
		index := fmt.Sprintf(`<sitemapindex>
  <sitemap><loc>%s/sitemap-1.xml</loc></sitemap>
  <sitemap><loc>%s/sitemap-borta.xml</loc></sitemap>
</sitemapindex>`, server.URL, server.URL)
		child := fmt.Sprintf(`<urlset>
  <url><loc>%s/media/rapport.pdf</loc><lastmod>2024-01-15</lastmod></url>
</urlset>`, server.URL)
		mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(index))
		})
		mux.HandleFunc("/sitemap-1.xml", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(child))
		})

		harvester := NewHarvester(newSitemapFetcher())
		result, err := harvester.Harvest(context.Background(), server.URL+"/sitemap.xml")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(result.Documents) != 1 {
			t.Fatalf("expected 1 document, got %d", len(result.Documents))
		}
		if len(result.Failures) != 1 {
			t.Fatalf("expected 1 failure for the missing child, got %d", len(result.Failures))
		}
		if result.Failures[0].Stage != "sitemap" {
			t.Errorf("expected failure stage %q, got %q", "sitemap", result.Failures[0].Stage)
		}
	})

	t.Run("downloads documents and prefers embedded dates", func(t *testing.T) {
		t.Parallel()

		server, mux := newSitemapServer(t)
		body := fmt.Sprintf(`<urlset>
  <url><loc>%s/media/rapport.pdf</loc><lastmod>2024-01-15</lastmod></url>
</urlset>`, server.URL)
		pdfData := "%PDF-1.4\n<< /CreationDate (D:20230424161144+02'00') >>"
		mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(body))
		})
		mux.HandleFunc("/media/rapport.pdf", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(pdfData))
		})

		baseDir := t.TempDir()
		harvester := NewHarvester(newSitemapFetcher(), WithBaseDir(baseDir), WithDelay(0))
		result, err := harvester.Harvest(context.Background(), server.URL+"/sitemap.xml")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Failures) != 0 {
			t.Fatalf("expected no failures, got %v", result.Failures)
		}
		if len(result.Documents) != 1 {
			t.Fatalf("expected 1 document, got %d", len(result.Documents))
		}

		doc := result.Documents[0]
		if doc.Published != "2023-04-24" {
			t.Errorf("expected embedded date %q, got %q", "2023-04-24", doc.Published)
		}
		if doc.DateSource != "file" {
			t.Errorf("expected date source %q, got %q", "file", doc.DateSource)
		}

		want := filepath.Join(baseDir, "pdf", "2023", "rapport.pdf")
		if doc.LocalPath != want {
			t.Errorf("expected local path %q, got %q", want, doc.LocalPath)
		}
		data, err := os.ReadFile(want)
		if err != nil {
			t.Fatalf("failed to read stored document: %v", err)
		}
		if string(data) != pdfData {
			t.Errorf("stored document content mismatch")
		}
	})

	t.Run("falls back to the sitemap date when the file carries none", func(t *testing.T) {
		t.Parallel()

		server, mux := newSitemapServer(t)
		body := fmt.Sprintf(`<urlset>
  <url><loc>%s/media/rapport.pdf</loc><lastmod>2024-01-15</lastmod></url>
</urlset>`, server.URL)
		mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(body))
		})
		mux.HandleFunc("/media/rapport.pdf", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("%PDF-1.4 utan datum"))
		})

		baseDir := t.TempDir()
		harvester := NewHarvester(newSitemapFetcher(), WithBaseDir(baseDir), WithDelay(0))
		result, err := harvester.Harvest(context.Background(), server.URL+"/sitemap.xml")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		doc := result.Documents[0]
		if doc.Published != "2024-01-15" {
			t.Errorf("expected sitemap date %q, got %q", "2024-01-15", doc.Published)
		}
		if doc.DateSource != "sitemap" {
			t.Errorf("expected date source %q, got %q", "sitemap", doc.DateSource)
		}
		want := filepath.Join(baseDir, "pdf", "2024", "rapport.pdf")
		if doc.LocalPath != want {
			t.Errorf("expected local path %q, got %q", want, doc.LocalPath)
		}
	})

	t.Run("records failed downloads and keeps the document", func(t *testing.T) {
		t.Parallel()

		server, mux := newSitemapServer(t)
		body := fmt.Sprintf(`<urlset>
  <url><loc>%s/media/borta.pdf</loc><lastmod>2024-01-15</lastmod></url>
</urlset>`, server.URL)
		mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(body))
		})

		harvester := NewHarvester(newSitemapFetcher(), WithBaseDir(t.TempDir()), WithDelay(0))
		result, err := harvester.Harvest(context.Background(), server.URL+"/sitemap.xml")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(result.Documents) != 1 {
			t.Fatalf("expected 1 document, got %d", len(result.Documents))
		}
		doc := result.Documents[0]
		if doc.LocalPath != "" {
			t.Errorf("expected no local path, got %q", doc.LocalPath)
		}
		if doc.Published != "2024-01-15" || doc.DateSource != "sitemap" {
			t.Errorf("expected sitemap date fallback, got %q from %q", doc.Published, doc.DateSource)
		}
		if len(result.Failures) != 1 {
			t.Fatalf("expected 1 failure, got %d", len(result.Failures))
		}
	})

	t.Run("unreachable sitemap is an error", func(t *testing.T) {
		t.Parallel()

		server, _ := newSitemapServer(t)

		harvester := NewHarvester(newSitemapFetcher())
		if _, err := harvester.Harvest(context.Background(), server.URL+"/sitemap.xml"); err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}
