package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/pubcrawl/pubcrawl/internal/model"
)

// MarkdownWriter outputs run reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the run report in Markdown format.
func (w *MarkdownWriter) Write(report *model.RunReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	// Header
	w.writeHeader(md, report)

	// Summary counters
	w.writeSummary(md, report)

	// Performed steps
	w.writeSteps(md, report)

	// Extracted records
	w.writeRecords(md, report)

	// Harvested document lists
	w.writeDocuments(md, report)

	// Failures by stage
	w.writeFailures(md, report)

	// Footer
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.RunReport) {
	md.H1("Harvest Report")
	md.PlainText("")

	// Basic info table
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Target", "`" + report.Target + "`"},
			{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", report.Duration().Round(time.Millisecond).String()},
			{"Status", w.getStatusText(report)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.RunReport) string {
	if report.Cancelled {
		return "⚠️ Cancelled (partial results)"
	}
	if report.ErrorMessage != "" {
		return "❌ Error - " + report.ErrorMessage
	}
	return "✅ Complete"
}

// writeSummary writes the harvest counter section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Harvest Summary")
	md.PlainText("")

	// Counter table
	md.Table(markdown.TableSet{
		Header: []string{"Counter", "Count"},
		Rows: [][]string{
			{"Pages visited", strconv.Itoa(report.PagesVisited)},
			{"Documents discovered", strconv.Itoa(len(report.Documents))},
			{"Files downloaded", strconv.Itoa(report.Downloaded)},
			{"Listing pages", strconv.Itoa(report.ListingPages)},
			{"Records extracted", strconv.Itoa(len(report.Records))},
			{"Records inserted", strconv.Itoa(report.RecordsInserted)},
			{"Records skipped", strconv.Itoa(report.RecordsSkipped)},
			{"Feed documents", strconv.Itoa(len(report.FeedDocuments))},
			{"Sitemap documents", strconv.Itoa(len(report.SitemapDocuments))},
			{"**Total harvested**", "**" + strconv.Itoa(report.TotalHarvested()) + "**"},
		},
	})
	md.PlainText("")

	// Add pie chart if anything was harvested
	if report.TotalHarvested() > 0 {
		w.writePieChart(md, report)
	}

	// Add alert based on run state
	w.writeAlert(md, report)
}

// writePieChart writes a mermaid pie chart of harvested items per stage.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.RunReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Harvested Items by Stage"),
		piechart.WithShowData(true),
	)

	if n := len(report.Documents); n > 0 {
		chart.LabelAndIntValue("Crawl", uint64(n))
	}
	if n := len(report.Records); n > 0 {
		chart.LabelAndIntValue("Listing", uint64(n))
	}
	if n := len(report.FeedDocuments); n > 0 {
		chart.LabelAndIntValue("Feed", uint64(n))
	}
	if n := len(report.SitemapDocuments); n > 0 {
		chart.LabelAndIntValue("Sitemap", uint64(n))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on run state.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.RunReport) {
	switch {
	case report.ErrorMessage != "":
		md.Cautionf(
			"The run aborted with an error: %s",
			report.ErrorMessage,
		)
	case report.Cancelled:
		md.Warningf(
			"The run was cancelled before all stages completed. Counts cover the work done so far.",
		)
	case len(report.Failures) > 0:
		md.Importantf(
			"%d item(s) could not be harvested. See the failures section for details.",
			len(report.Failures),
		)
	case report.TotalHarvested() == 0:
		md.Note("Nothing was harvested. Check the target URL and stage configuration.")
	default:
		md.Tip("All stages completed without failures.")
	}
	md.PlainText("")
}

// writeSteps writes the pipeline steps that ran.
func (w *MarkdownWriter) writeSteps(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Performed Steps")
	md.PlainText("")

	if len(report.PerformedSteps) == 0 {
		md.PlainText("No steps were performed.")
		md.PlainText("")
		return
	}

	md.BulletList(report.PerformedSteps...)
	md.PlainText("")
}

// writeRecords writes the extracted report records as a table.
func (w *MarkdownWriter) writeRecords(md *markdown.Markdown, report *model.RunReport) {
	if len(report.Records) == 0 {
		return
	}

	md.H2("Extracted Records")
	md.PlainText("")

	rows := make([][]string, len(report.Records))
	for i, rec := range report.Records {
		series := rec.SeriesNumber
		if series == "" {
			series = "-"
		}
		date := rec.Date
		if date == "" {
			date = "-"
		}

		rows[i] = []string{
			truncateString(rec.Title, 50),
			series,
			date,
			truncateString(rec.URL, 60),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Title", "Series", "Date", "URL"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeDocuments writes collapsible URL lists for each harvest stage.
func (w *MarkdownWriter) writeDocuments(md *markdown.Markdown, report *model.RunReport) {
	if len(report.Documents) == 0 && len(report.FeedDocuments) == 0 && len(report.SitemapDocuments) == 0 {
		return
	}

	md.H2("Harvested Documents")
	md.PlainText("")

	if n := len(report.Documents); n > 0 {
		urls := make([]string, n)
		for i, doc := range report.Documents {
			urls[i] = doc.URL
		}
		md.Details(fmt.Sprintf("Crawled documents (%d)", n), documentList(urls))
	}

	if n := len(report.FeedDocuments); n > 0 {
		urls := make([]string, n)
		for i, doc := range report.FeedDocuments {
			urls[i] = doc.URL
		}
		md.Details(fmt.Sprintf("Feed documents (%d)", n), documentList(urls))
	}

	if n := len(report.SitemapDocuments); n > 0 {
		urls := make([]string, n)
		for i, doc := range report.SitemapDocuments {
			urls[i] = doc.URL
		}
		md.Details(fmt.Sprintf("Sitemap documents (%d)", n), documentList(urls))
	}
	md.PlainText("")
}

// documentList renders URLs as markdown list lines for a Details block.
func documentList(urls []string) string {
	lines := make([]string, len(urls))
	for i, u := range urls {
		lines[i] = "- " + u
	}
	return strings.Join(lines, "\n")
}

// writeFailures writes all recorded failures grouped by stage.
func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Failures")
	md.PlainText("")

	if len(report.Failures) == 0 {
		md.PlainText("No failures were recorded.")
		md.PlainText("")
		return
	}

	for _, stage := range failureStages {
		failures := report.FailuresForStage(stage)
		if len(failures) == 0 {
			continue
		}

		md.PlainText("### " + capitalize(stage))
		md.PlainText("")
		w.writeFailureTable(md, failures)
	}
}

// writeFailureTable writes a table of failures with details.
func (w *MarkdownWriter) writeFailureTable(md *markdown.Markdown, failures []model.Failure) {
	rows := make([][]string, len(failures))
	for i, f := range failures {
		attempts := "-"
		if f.Attempts > 0 {
			attempts = strconv.Itoa(f.Attempts)
		}

		rows[i] = []string{
			truncateString(f.URL, 60),
			attempts,
			truncateString(f.Message, 70),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Attempts", "Message"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [pubcrawl](https://github.com/pubcrawl/pubcrawl)*")
}
