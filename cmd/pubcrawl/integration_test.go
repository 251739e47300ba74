package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pubcrawl/pubcrawl/internal/config"
	"github.com/pubcrawl/pubcrawl/internal/database"
	"github.com/pubcrawl/pubcrawl/internal/log"
)

// skipIfShort skips the test when -short is set. The integration tests
// start a local HTTP server and run full harvests against it.
func skipIfShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
}

// startTestSite serves a small publication site: two linked PDF reports,
// an RSS feed with two news items, and a sitemap listing the PDFs.
// Handlers build absolute URLs from the request host, so the fixtures
// work on whatever port the listener picks.
func startTestSite(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<!DOCTYPE html>
<html>
<head><title>Myndigheten</title></head>
<body>
<h1>Publikationer</h1>
<a href="/om.html">Om oss</a>
<a href="/12345.abc123.html">Genererad sida</a>
<a href="/publikationer/rapport-2024-07.pdf">Rapport 2024:07 Effekter av stöd</a>
</body>
</html>`)
	})

	mux.HandleFunc("/om.html", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<!DOCTYPE html>
<html>
<head><title>Om oss</title></head>
<body>
<h1>Om myndigheten</h1>
<a href="/publikationer/pm-2024-02.pdf">PM 2024:02 Regional tillväxt</a>
<a href="/">Start</a>
</body>
</html>`)
	})

	servePDF := func(creationDate string) http.HandlerFunc {
		return func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/pdf")
			if creationDate != "" {
				fmt.Fprintf(w, "%%PDF-1.4\n1 0 obj\n<< /CreationDate (%s) /Producer (Fixture) >>\nendobj\n%%%%EOF\n", creationDate)
				return
			}
			fmt.Fprintf(w, "%%PDF-1.4\n1 0 obj\n<< /Producer (Fixture) >>\nendobj\n%%%%EOF\n")
		}
	}
	mux.HandleFunc("/publikationer/rapport-2024-07.pdf", servePDF("D:20240618091500+02'00'"))
	mux.HandleFunc("/publikationer/pm-2024-02.pdf", servePDF(""))

	mux.HandleFunc("/rss.xml", func(w http.ResponseWriter, r *http.Request) {
		base := "http://" + r.Host
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Nyheter</title>
    <link>%s</link>
    <item>
      <title>Ny rapport om regional tillväxt</title>
      <link>%s/nyheter/nyhet-1.html</link>
      <pubDate>Tue, 18 Jun 2024 08:00:00 +0000</pubDate>
      <description>Rapporten undersöker effekterna av regionala stöd.</description>
    </item>
    <item>
      <title>PM om stödens effekter</title>
      <link>%s/nyheter/nyhet-2.html</link>
      <pubDate>Mon, 03 Feb 2025 09:30:00 +0000</pubDate>
    </item>
  </channel>
</rss>`, base, base, base)
	})

	newsPage := func(title string) http.HandlerFunc {
		return func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprintf(w, "<!DOCTYPE html>\n<html><head><title>%s</title></head><body><h1>%s</h1></body></html>\n", title, title)
		}
	}
	mux.HandleFunc("/nyheter/nyhet-1.html", newsPage("Ny rapport om regional tillväxt"))
	mux.HandleFunc("/nyheter/nyhet-2.html", newsPage("PM om stödens effekter"))

	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		base := "http://" + r.Host
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>%s/publikationer/rapport-2024-07.pdf</loc><lastmod>2024-06-18</lastmod></url>
  <url><loc>%s/publikationer/pm-2024-02.pdf</loc><lastmod>2024-02-05</lastmod></url>
  <url><loc>%s/om.html</loc><lastmod>2024-01-10</lastmod></url>
</urlset>`, base, base, base)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// harvestReport mirrors the JSON run summary envelope for assertions.
type harvestReport struct {
	Version string `json:"version"`
	Report  struct {
		Target       string `json:"target"`
		PagesVisited int    `json:"pages_visited"`
		Downloaded   int    `json:"downloaded"`
		Documents    []struct {
			URL   string `json:"url"`
			Group string `json:"group"`
			Name  string `json:"name"`
		} `json:"documents"`
		FeedDocuments []struct {
			Title     string `json:"title"`
			Published string `json:"published"`
			URL       string `json:"url"`
			LocalPath string `json:"local_path"`
		} `json:"feed_documents"`
		SitemapDocuments []struct {
			URL        string `json:"url"`
			Kind       string `json:"kind"`
			Published  string `json:"published"`
			DateSource string `json:"date_source"`
			LocalPath  string `json:"local_path"`
		} `json:"sitemap_documents"`
		PerformedSteps []string `json:"performed_steps"`
		Failures       []struct {
			Stage   string `json:"stage"`
			URL     string `json:"url"`
			Message string `json:"message"`
		} `json:"failures"`
	} `json:"report"`
}

// readHarvestReport decodes the JSON run summary written by a harvest.
func readHarvestReport(t *testing.T, path string) harvestReport {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read report %s: %v", path, err)
	}

	var report harvestReport
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("failed to decode report: %v", err)
	}
	return report
}

// countFiles counts files under dir whose name ends with suffix.
func countFiles(t *testing.T, dir, suffix string) int {
	t.Helper()

	count := 0
	err := filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), suffix) {
			count++
		}
		return nil
	})
	if err != nil {
		t.Fatalf("failed to walk %s: %v", dir, err)
	}
	return count
}

// TestIntegrationRunHarvest runs the full pipeline against the test site
// with the feed and sitemap stages configured. The scrape stage skips
// itself because no listing URL is set, so no browser is started.
func TestIntegrationRunHarvest(t *testing.T) {
	skipIfShort(t)

	server := startTestSite(t)
	downloadDir := t.TempDir()
	reportPath := filepath.Join(t.TempDir(), "report.json")

	cfg := config.NewConfig()
	cfg.Targets = []string{server.URL}
	cfg.SaveToDB = true
	cfg.DBDir = t.TempDir()
	cfg.DownloadDir = downloadDir
	cfg.CrawlDepth = 2
	cfg.CrawlDelay = time.Millisecond
	cfg.FeedURL = server.URL + "/rss.xml"
	cfg.SitemapURL = server.URL + "/sitemap.xml"
	cfg.JSONReport = true
	cfg.ReportFile = reportPath

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected config error: %v", err)
	}

	logger := log.NewLogger(io.Discard, false)
	if err := runHarvest(context.Background(), cfg, logger); err != nil {
		t.Fatalf("expected harvest to succeed, got %v", err)
	}

	report := readHarvestReport(t, reportPath)

	if report.Version == "" {
		t.Error("expected report version to be set")
	}
	if report.Report.Target != server.URL {
		t.Errorf("expected target %s, got %s", server.URL, report.Report.Target)
	}
	if report.Report.PagesVisited != 2 {
		t.Errorf("expected 2 pages visited, got %d", report.Report.PagesVisited)
	}
	if report.Report.Downloaded != 2 {
		t.Errorf("expected 2 downloaded documents, got %d", report.Report.Downloaded)
	}
	if len(report.Report.Documents) != 2 {
		t.Errorf("expected 2 discovered documents, got %d", len(report.Report.Documents))
	}
	if len(report.Report.FeedDocuments) != 2 {
		t.Errorf("expected 2 feed documents, got %d", len(report.Report.FeedDocuments))
	}
	if len(report.Report.SitemapDocuments) != 2 {
		t.Errorf("expected 2 sitemap documents, got %d", len(report.Report.SitemapDocuments))
	}
	if len(report.Report.Failures) != 0 {
		t.Errorf("expected no failures, got %v", report.Report.Failures)
	}

	for _, step := range []string{"feed", "sitemap", "crawl"} {
		found := false
		for _, name := range report.Report.PerformedSteps {
			if name == step {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected performed steps to include %s, got %v", step, report.Report.PerformedSteps)
		}
	}

	// Two PDFs from the crawl plus the same two stored by the sitemap
	// stage under its own tree.
	if got := countFiles(t, downloadDir, ".pdf"); got != 4 {
		t.Errorf("expected 4 stored PDFs, got %d", got)
	}
	if _, err := os.Stat(filepath.Join(downloadDir, "feed.csv")); err != nil {
		t.Errorf("expected feed.csv to be written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(downloadDir, "sitemap.csv")); err != nil {
		t.Errorf("expected sitemap.csv to be written: %v", err)
	}
	if got := countFiles(t, filepath.Join(downloadDir, "feed"), ".html"); got != 2 {
		t.Errorf("expected 2 archived feed pages, got %d", got)
	}

	// Saving was enabled, so the database file must exist even though
	// the skipped scrape stage stored no records.
	if _, err := os.Stat(filepath.Join(cfg.DBDir, "pubcrawl.db")); err != nil {
		t.Fatalf("expected database file to be created: %v", err)
	}
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to reopen database: %v", err)
	}
	defer db.Close()

	count, err := db.CountReports(context.Background())
	if err != nil {
		t.Fatalf("failed to count records: %v", err)
	}
	if count != 0 {
		t.Errorf("expected no stored records without a listing URL, got %d", count)
	}
}

// TestIntegrationCrawlCommand runs the crawl command end to end and
// checks the run summary against the files on disk.
func TestIntegrationCrawlCommand(t *testing.T) {
	skipIfShort(t)

	server := startTestSite(t)
	downloadDir := t.TempDir()
	reportPath := filepath.Join(t.TempDir(), "report.json")

	root := NewRootCmd()
	root.SetArgs([]string{
		"crawl", server.URL,
		"-d", "2",
		"-D", downloadDir,
		"--delay", "1ms",
		"--json",
		"-o", reportPath,
	})

	if err := root.Execute(); err != nil {
		t.Fatalf("expected crawl to succeed, got %v", err)
	}

	report := readHarvestReport(t, reportPath)

	if report.Report.PagesVisited != 2 {
		t.Errorf("expected 2 pages visited, got %d", report.Report.PagesVisited)
	}
	if report.Report.Downloaded != 2 {
		t.Errorf("expected 2 downloaded documents, got %d", report.Report.Downloaded)
	}
	if len(report.Report.Documents) != 2 {
		t.Fatalf("expected 2 discovered documents, got %d", len(report.Report.Documents))
	}
	for _, doc := range report.Report.Documents {
		if !strings.HasSuffix(doc.URL, ".pdf") {
			t.Errorf("expected a PDF document URL, got %s", doc.URL)
		}
		if doc.Group == "" {
			t.Errorf("expected a group for %s", doc.URL)
		}
	}

	if got := countFiles(t, downloadDir, ".pdf"); got != 2 {
		t.Errorf("expected 2 downloaded files, got %d", got)
	}
}

// TestIntegrationFeedCommand runs the feed command end to end: the CSV
// and the archived pages must land under the download directory.
func TestIntegrationFeedCommand(t *testing.T) {
	skipIfShort(t)

	server := startTestSite(t)
	downloadDir := t.TempDir()
	reportPath := filepath.Join(t.TempDir(), "report.json")

	root := NewRootCmd()
	root.SetArgs([]string{
		"feed", server.URL,
		"--feed-url", server.URL + "/rss.xml",
		"-D", downloadDir,
		"--delay", "1ms",
		"--json",
		"-o", reportPath,
	})

	if err := root.Execute(); err != nil {
		t.Fatalf("expected feed harvest to succeed, got %v", err)
	}

	report := readHarvestReport(t, reportPath)

	if len(report.Report.FeedDocuments) != 2 {
		t.Fatalf("expected 2 feed documents, got %d", len(report.Report.FeedDocuments))
	}
	first := report.Report.FeedDocuments[0]
	if first.Title != "Ny rapport om regional tillväxt" {
		t.Errorf("expected first item title from the feed, got %s", first.Title)
	}
	if first.Published != "2024-06-18" {
		t.Errorf("expected published 2024-06-18, got %s", first.Published)
	}
	if first.LocalPath == "" {
		t.Error("expected the first item page to be archived")
	}

	if _, err := os.Stat(filepath.Join(downloadDir, "feed.csv")); err != nil {
		t.Errorf("expected feed.csv to be written: %v", err)
	}
	if got := countFiles(t, filepath.Join(downloadDir, "feed"), ".html"); got != 2 {
		t.Errorf("expected 2 archived pages, got %d", got)
	}
	// Archives are grouped by publication year.
	if _, err := os.Stat(filepath.Join(downloadDir, "feed", "2024", "Ny-rapport-om-regional-tillvaxt.html")); err != nil {
		t.Errorf("expected archive under the 2024 directory: %v", err)
	}
}

// TestIntegrationSitemapCommand runs the sitemap command end to end.
// The first fixture PDF carries an embedded creation date and the
// second falls back to the sitemap lastmod, so both date sources are
// exercised.
func TestIntegrationSitemapCommand(t *testing.T) {
	skipIfShort(t)

	server := startTestSite(t)
	downloadDir := t.TempDir()
	reportPath := filepath.Join(t.TempDir(), "report.json")

	root := NewRootCmd()
	root.SetArgs([]string{
		"sitemap", server.URL,
		"--sitemap-url", server.URL + "/sitemap.xml",
		"-D", downloadDir,
		"--delay", "1ms",
		"--json",
		"-o", reportPath,
	})

	if err := root.Execute(); err != nil {
		t.Fatalf("expected sitemap harvest to succeed, got %v", err)
	}

	report := readHarvestReport(t, reportPath)

	if len(report.Report.SitemapDocuments) != 2 {
		t.Fatalf("expected 2 sitemap documents, got %d", len(report.Report.SitemapDocuments))
	}

	rapport := report.Report.SitemapDocuments[0]
	if rapport.Kind != "pdf" {
		t.Errorf("expected kind pdf, got %s", rapport.Kind)
	}
	if rapport.Published != "2024-06-18" {
		t.Errorf("expected published 2024-06-18, got %s", rapport.Published)
	}
	if rapport.DateSource != "file" {
		t.Errorf("expected date source file, got %s", rapport.DateSource)
	}

	pm := report.Report.SitemapDocuments[1]
	if pm.Published != "2024-02-05" {
		t.Errorf("expected published 2024-02-05, got %s", pm.Published)
	}
	if pm.DateSource != "sitemap" {
		t.Errorf("expected date source sitemap, got %s", pm.DateSource)
	}

	if _, err := os.Stat(filepath.Join(downloadDir, "sitemap.csv")); err != nil {
		t.Errorf("expected sitemap.csv to be written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(downloadDir, "sitemap", "pdf", "2024", "rapport-2024-07.pdf")); err != nil {
		t.Errorf("expected the report PDF under its year directory: %v", err)
	}
	if _, err := os.Stat(filepath.Join(downloadDir, "sitemap", "pdf", "2024", "pm-2024-02.pdf")); err != nil {
		t.Errorf("expected the PM PDF under its year directory: %v", err)
	}
}

// TestIntegrationBatchHarvest harvests two seeds concurrently. The
// second seed is a leaf page without document links, so only the first
// produces downloads.
func TestIntegrationBatchHarvest(t *testing.T) {
	skipIfShort(t)

	server := startTestSite(t)
	downloadDir := t.TempDir()

	cfg := config.NewConfig()
	cfg.Targets = []string{server.URL, server.URL + "/nyheter/nyhet-1.html"}
	cfg.BatchSize = 2
	cfg.SaveToDB = false
	cfg.DownloadDir = downloadDir
	cfg.CrawlDepth = 1
	cfg.CrawlDelay = time.Millisecond

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected config error: %v", err)
	}

	logger := log.NewLogger(io.Discard, false)
	if err := runHarvest(context.Background(), cfg, logger); err != nil {
		t.Fatalf("expected batch harvest to succeed, got %v", err)
	}

	if got := countFiles(t, downloadDir, ".pdf"); got != 2 {
		t.Errorf("expected 2 downloaded files, got %d", got)
	}
}

// Example_integrationTest shows how to run only the integration tests.
func Example_integrationTest() {
	fmt.Println("go test -v ./cmd/pubcrawl/ -run TestIntegration")
	// Output: go test -v ./cmd/pubcrawl/ -run TestIntegration
}
