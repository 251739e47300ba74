package model

// DocumentLink is a document discovered during traversal, annotated with
// context derived from its originating DOM anchor.
//
// Design decision: We resolve the DOM context (heading, anchor text) into
// plain strings at discovery time because:
// 1. The parse tree is discarded once a page has been processed
// 2. Download happens later, when the anchor node no longer exists
// 3. Plain strings serialize cleanly into run reports
type DocumentLink struct {
	// URL is the absolute URL of the document.
	URL string `json:"url"`

	// Group is the nearest ancestor or preceding heading text,
	// used as the top-level folder when downloading.
	// "General" when no heading was found.
	Group string `json:"group"`

	// Name is the anchor's visible text, or the URL filename stem
	// when the anchor had no text. Used as the sub-folder name.
	Name string `json:"name"`
}

// ListingEntry is one report reference harvested from a paginated listing
// page: the report URL and the publication date shown next to it.
// Duplicate URLs may occur across pages; callers deduplicate as needed.
type ListingEntry struct {
	// URL is the absolute URL of the report page.
	URL string `json:"url"`

	// DateText is the publication date as displayed in the listing,
	// kept verbatim (typically YYYY-MM-DD).
	DateText string `json:"date_text"`
}

// ReportRecord holds the structured metadata extracted from one report page.
// All fields except URL may be empty when the source markup lacks them.
// Records are immutable once built; URL is the uniqueness key enforced by
// the persistence sinks, not by the extractor.
type ReportRecord struct {
	// Title is the report name, taken from the first top-level heading.
	Title string `json:"report_name"`

	// CaseNumber is the "Diarienummer" field value.
	CaseNumber string `json:"diarienummer"`

	// SeriesNumber is the "Serienummer" field value.
	SeriesNumber string `json:"serienummer"`

	// Description is the report summary text.
	Description string `json:"description"`

	// Date is the publication date carried over from the listing entry.
	Date string `json:"date"`

	// URL is the absolute URL of the report page.
	URL string `json:"url"`
}

// ReportColumns is the column order shared by every record sink
// (spreadsheet, CSV, SQLite). Row values follow the same order.
var ReportColumns = []string{
	"report_name",
	"diarienummer",
	"serienummer",
	"description",
	"date",
	"url",
}

// Row returns the record's values in ReportColumns order.
func (r ReportRecord) Row() []string {
	return []string{
		r.Title,
		r.CaseNumber,
		r.SeriesNumber,
		r.Description,
		r.Date,
		r.URL,
	}
}
