package model

import (
	"time"
)

// RunReport is the aggregate result of one harvesting run.
// Pipeline steps append their results here; report writers render it.
//
// Design decision: We use a single accumulating struct rather than per-step
// result types because:
// 1. Steps run in sequence and enrich the same run
// 2. Serialization and report writing see one coherent object
// 3. Mirrors how counters are shown to the operator at the end of a run
type RunReport struct {
	// Target is the seed URL or site the run operated on.
	Target string `json:"target"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the run completed. Zero while in progress.
	FinishedAt time.Time `json:"finished_at,omitzero"`

	// === Crawl results ===

	// PagesVisited counts pages fetched during traversal.
	PagesVisited int `json:"pages_visited"`

	// Documents are the document links discovered by traversal.
	Documents []DocumentLink `json:"documents,omitempty"`

	// Downloaded counts documents written to disk.
	Downloaded int `json:"downloaded"`

	// === Listing results ===

	// ListingPages counts listing pages processed by the paginator.
	ListingPages int `json:"listing_pages"`

	// Entries are the listing entries harvested across all pages.
	Entries []ListingEntry `json:"entries,omitempty"`

	// Records are the report records extracted from report pages.
	Records []ReportRecord `json:"records,omitempty"`

	// RecordsInserted counts records newly persisted by the sinks.
	RecordsInserted int `json:"records_inserted"`

	// RecordsSkipped counts records skipped as duplicates by the sinks.
	RecordsSkipped int `json:"records_skipped"`

	// === Harvest results ===

	// FeedDocuments are the entries harvested from the RSS feed.
	FeedDocuments []FeedDocument `json:"feed_documents,omitempty"`

	// SitemapDocuments are the documents discovered via the sitemap.
	SitemapDocuments []SitemapDocument `json:"sitemap_documents,omitempty"`

	// === Run state ===

	// PerformedSteps lists the pipeline steps that ran, in order.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Failures lists the per-item failures that were logged and skipped.
	Failures []Failure `json:"failures,omitempty"`

	// Cancelled is set when the run was interrupted before completion.
	Cancelled bool `json:"cancelled,omitempty"`

	// Error contains a step error that aborted the run, if any.
	Error error `json:"-"` // Excluded from JSON

	// ErrorMessage is the string representation of Error for serialization.
	ErrorMessage string `json:"error,omitempty"`
}

// Failure records one skipped item for the run summary.
// Per-item failures never abort a run; they are collected here so the
// summary can show what was missed and why.
type Failure struct {
	// Stage names the phase that failed (crawl, listing, scrape,
	// download, feed, sitemap).
	Stage string `json:"stage"`

	// URL is the item that failed.
	URL string `json:"url"`

	// Message describes the failure.
	Message string `json:"message"`

	// Attempts is how many tries were made before giving up.
	// Zero when the operation is not retried.
	Attempts int `json:"attempts,omitempty"`
}

// NewRunReport creates a report for a run against the given target.
func NewRunReport(target string) *RunReport {
	return &RunReport{
		Target:    target,
		StartedAt: time.Now(),
	}
}

// Finish stamps the completion time.
func (r *RunReport) Finish() {
	r.FinishedAt = time.Now()
}

// Duration returns how long the run took, or the elapsed time so far
// when the run has not finished.
func (r *RunReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// TotalHarvested returns the number of items collected across all stages.
func (r *RunReport) TotalHarvested() int {
	return len(r.Documents) + len(r.Records) + len(r.FeedDocuments) + len(r.SitemapDocuments)
}

// FailuresForStage returns the failures recorded for the given stage.
func (r *RunReport) FailuresForStage(stage string) []Failure {
	var failures []Failure
	for _, f := range r.Failures {
		if f.Stage == stage {
			failures = append(failures, f)
		}
	}
	return failures
}

// AddFailure records a skipped item.
func (r *RunReport) AddFailure(stage, url, message string, attempts int) {
	r.Failures = append(r.Failures, Failure{
		Stage:    stage,
		URL:      url,
		Message:  message,
		Attempts: attempts,
	})
}

// AddRecord appends an extracted report record.
func (r *RunReport) AddRecord(rec ReportRecord) {
	r.Records = append(r.Records, rec)
}
