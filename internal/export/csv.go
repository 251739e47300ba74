package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pubcrawl/pubcrawl/internal/model"
)

// WriteFeedCSV writes feed harvest metadata to a CSV file, one row per
// feed document, overwriting any previous file.
func WriteFeedCSV(path string, docs []model.FeedDocument) error {
	header := []string{"title", "published", "url", "local_path"}

	rows := make([][]string, 0, len(docs))
	for _, d := range docs {
		rows = append(rows, []string{d.Title, d.Published, d.URL, d.LocalPath})
	}

	return writeCSV(path, header, rows)
}

// WriteSitemapCSV writes sitemap harvest metadata to a CSV file, one row
// per document, overwriting any previous file.
func WriteSitemapCSV(path string, docs []model.SitemapDocument) error {
	header := []string{"url", "kind", "published", "date_source", "local_path"}

	rows := make([][]string, 0, len(docs))
	for _, d := range docs {
		rows = append(rows, []string{d.URL, string(d.Kind), d.Published, d.DateSource, d.LocalPath})
	}

	return writeCSV(path, header, rows)
}

// writeCSV writes a header row followed by the data rows.
func writeCSV(path string, header []string, rows [][]string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create csv directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			_ = f.Close()
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to flush csv: %w", err)
	}

	return f.Close()
}
