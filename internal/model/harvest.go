package model

// DocumentKind classifies a harvested document by file type.
type DocumentKind string

// Document kinds recognized by the sitemap harvester.
const (
	// KindPDF marks a PDF document.
	KindPDF DocumentKind = "pdf"

	// KindXLSX marks an Excel workbook.
	KindXLSX DocumentKind = "xlsx"
)

// FeedDocument is one entry harvested from the publications RSS feed.
type FeedDocument struct {
	// Title is the feed item title.
	Title string `json:"title"`

	// Published is the publication date normalized to YYYY-MM-DD,
	// or empty when the feed item carried no parseable date.
	Published string `json:"published,omitempty"`

	// URL is the item link.
	URL string `json:"url"`

	// LocalPath is where the linked page was saved, empty if the
	// download failed or was skipped.
	LocalPath string `json:"local_path,omitempty"`
}

// SitemapDocument is one document discovered through the sitemap.
//
// Design decision: We record where the publication date came from because:
// 1. File-embedded dates (PDF Info dictionary, XLSX core properties) are
//    authoritative but often missing
// 2. The sitemap lastmod is always present but reflects upload, not
//    publication
// 3. Downstream consumers filter on provenance
type SitemapDocument struct {
	// URL is the document URL from the sitemap.
	URL string `json:"url"`

	// Kind is the document file type.
	Kind DocumentKind `json:"kind"`

	// Published is the best-known publication date (YYYY-MM-DD).
	Published string `json:"published,omitempty"`

	// DateSource is "file" when Published came from embedded metadata,
	// "sitemap" when it fell back to the lastmod value, empty when
	// neither was available.
	DateSource string `json:"date_source,omitempty"`

	// LocalPath is where the document was saved, empty if the download
	// failed or was skipped.
	LocalPath string `json:"local_path,omitempty"`
}
