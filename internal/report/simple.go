package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pubcrawl/pubcrawl/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting and per-stage failure listings.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no content are shown.
	showEmpty bool

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the run report in human-readable format.
func (w *SimpleWriter) Write(report *model.RunReport) (int, error) {
	var sb strings.Builder

	// Header
	w.writeHeader(&sb, report)

	// Summary counters
	w.writeSummary(&sb, report)

	// Performed steps
	w.writeSteps(&sb, report)

	// Extracted records
	w.writeRecords(&sb, report)

	// Failures by stage
	w.writeFailures(&sb, report)

	// Footer
	w.writeFooter(&sb)

	// Write to output
	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.RunReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                           HARVEST REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Target:    %s\n", report.Target))
	sb.WriteString(fmt.Sprintf("Started:   %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Duration:  %s\n", report.Duration().Round(time.Millisecond)))

	if report.Cancelled {
		sb.WriteString("Status:    CANCELLED (partial results)\n")
	} else if report.ErrorMessage != "" {
		sb.WriteString(fmt.Sprintf("Status:    ERROR - %s\n", report.ErrorMessage))
	} else {
		sb.WriteString("Status:    Complete\n")
	}

	sb.WriteString("\n")
}

// writeSummary writes the harvest counter section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.RunReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("HARVEST SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Pages visited:      %d\n", report.PagesVisited))
	sb.WriteString(fmt.Sprintf("  Documents found:    %d\n", len(report.Documents)))
	sb.WriteString(fmt.Sprintf("  Files downloaded:   %d\n", report.Downloaded))
	sb.WriteString(fmt.Sprintf("  Listing pages:      %d\n", report.ListingPages))
	sb.WriteString(fmt.Sprintf("  Records extracted:  %d\n", len(report.Records)))
	sb.WriteString(fmt.Sprintf("  Records inserted:   %d\n", report.RecordsInserted))
	sb.WriteString(fmt.Sprintf("  Records skipped:    %d\n", report.RecordsSkipped))
	sb.WriteString(fmt.Sprintf("  Feed documents:     %d\n", len(report.FeedDocuments)))
	sb.WriteString(fmt.Sprintf("  Sitemap documents:  %d\n", len(report.SitemapDocuments)))
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("  TOTAL:              %d items harvested\n", report.TotalHarvested()))
	sb.WriteString("\n")
}

// writeSteps writes the performed pipeline steps section.
func (w *SimpleWriter) writeSteps(sb *strings.Builder, report *model.RunReport) {
	if len(report.PerformedSteps) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("PERFORMED STEPS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(report.PerformedSteps) == 0 {
		sb.WriteString("  No steps performed\n")
	} else {
		for _, step := range report.PerformedSteps {
			sb.WriteString(fmt.Sprintf("  [+] %s\n", step))
		}
	}
	sb.WriteString("\n")
}

// writeRecords writes the extracted report records.
func (w *SimpleWriter) writeRecords(sb *strings.Builder, report *model.RunReport) {
	if len(report.Records) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("EXTRACTED RECORDS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(report.Records) == 0 {
		sb.WriteString("  No records extracted\n")
	} else {
		for _, rec := range report.Records {
			sb.WriteString(fmt.Sprintf("  * %s\n", rec.Title))
			if rec.SeriesNumber != "" {
				sb.WriteString(fmt.Sprintf("    Series: %s\n", rec.SeriesNumber))
			}
			if rec.Date != "" {
				sb.WriteString(fmt.Sprintf("    Date: %s\n", rec.Date))
			}
			sb.WriteString(fmt.Sprintf("    URL: %s\n", rec.URL))
			if w.verbose && rec.Description != "" {
				sb.WriteString(fmt.Sprintf("    Description: %s\n", rec.Description))
			}
		}
	}
	sb.WriteString("\n")
}

// writeFailures writes all recorded failures grouped by stage.
func (w *SimpleWriter) writeFailures(sb *strings.Builder, report *model.RunReport) {
	if len(report.Failures) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("FAILURES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(report.Failures) == 0 {
		sb.WriteString("  No failures recorded\n")
		sb.WriteString("\n")
		return
	}

	for _, stage := range failureStages {
		failures := report.FailuresForStage(stage)
		if len(failures) == 0 {
			continue
		}

		sb.WriteString(fmt.Sprintf("[!] %s (%d)\n", strings.ToUpper(stage), len(failures)))
		for _, f := range failures {
			sb.WriteString(fmt.Sprintf("  * %s\n", f.URL))
			sb.WriteString(fmt.Sprintf("    %s\n", f.Message))
			if w.verbose && f.Attempts > 0 {
				sb.WriteString(fmt.Sprintf("    Attempts: %d\n", f.Attempts))
			}
		}
		sb.WriteString("\n")
	}
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by pubcrawl\n")
	sb.WriteString("https://github.com/pubcrawl/pubcrawl\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
