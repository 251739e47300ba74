package sitemap

import (
	"bytes"
	"regexp"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// pdfCreationDatePattern finds the CreationDate field of the PDF Info
// dictionary, in either literal string or hex string form.
var pdfCreationDatePattern = regexp.MustCompile(`/CreationDate\s*\(([^)]+)\)|/CreationDate\s*<([^>]+)>`)

// pdfCreationDate extracts the embedded creation date of a PDF document,
// normalized to YYYY-MM-DD. It scans the raw bytes for the Info
// dictionary rather than walking the object graph, which is enough for
// the date field and tolerates damaged files. Returns an empty string
// when the document carries no parseable date.
func pdfCreationDate(data []byte) string {
	matches := pdfCreationDatePattern.FindSubmatch(data)
	if len(matches) < 2 {
		return ""
	}

	for _, m := range matches[1:] {
		if len(m) > 0 {
			return parsePDFDate(string(m))
		}
	}
	return ""
}

// parsePDFDate normalizes a PDF date string like "D:20230424161144+02'00'"
// to YYYY-MM-DD. The time and timezone parts are optional and ignored.
func parsePDFDate(raw string) string {
	s := strings.TrimPrefix(strings.TrimSpace(raw), "D:")
	if len(s) < 8 {
		return ""
	}

	t, err := time.Parse("20060102", s[:8])
	if err != nil {
		return ""
	}
	return t.Format(dateOnlyFormat)
}

// xlsxCreatedDate extracts the created date from a workbook's document
// properties, normalized to YYYY-MM-DD. Returns an empty string when the
// workbook cannot be opened or carries no parseable date.
func xlsxCreatedDate(data []byte) string {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return ""
	}
	defer func() {
		_ = f.Close()
	}()

	props, err := f.GetDocProps()
	if err != nil || props == nil || props.Created == "" {
		return ""
	}

	t, err := time.Parse(time.RFC3339, props.Created)
	if err != nil {
		return ""
	}
	return t.Format(dateOnlyFormat)
}
