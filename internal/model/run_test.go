package model

import (
	"testing"
	"time"
)

// TestNewRunReport tests run report initialization.
func TestNewRunReport(t *testing.T) {
	t.Parallel()

	report := NewRunReport("https://example.org")

	if report.Target != "https://example.org" {
		t.Errorf("got target %q, expected 'https://example.org'", report.Target)
	}
	if report.StartedAt.IsZero() {
		t.Error("expected StartedAt to be set")
	}
	if !report.FinishedAt.IsZero() {
		t.Error("expected FinishedAt to be zero before Finish")
	}
}

// TestRunReportFinish tests completion stamping and duration.
func TestRunReportFinish(t *testing.T) {
	t.Parallel()

	report := NewRunReport("https://example.org")
	report.StartedAt = time.Now().Add(-time.Second)
	report.Finish()

	if report.FinishedAt.IsZero() {
		t.Fatal("expected FinishedAt to be set after Finish")
	}
	if report.Duration() < time.Second {
		t.Errorf("got duration %v, expected at least 1s", report.Duration())
	}
}

// TestRunReportAddFailure tests failure collection.
func TestRunReportAddFailure(t *testing.T) {
	t.Parallel()

	report := NewRunReport("https://example.org")
	report.AddFailure("fetch", "https://example.org/broken", "status 503", 3)
	report.AddFailure("parse", "https://example.org/odd", "no heading", 0)

	if len(report.Failures) != 2 {
		t.Fatalf("got %d failures, expected 2", len(report.Failures))
	}

	first := report.Failures[0]
	if first.Stage != "fetch" {
		t.Errorf("got stage %q, expected 'fetch'", first.Stage)
	}
	if first.Attempts != 3 {
		t.Errorf("got %d attempts, expected 3", first.Attempts)
	}
}

// TestRunReportAddRecord tests record accumulation.
func TestRunReportAddRecord(t *testing.T) {
	t.Parallel()

	report := NewRunReport("https://example.org")
	report.AddRecord(ReportRecord{URL: "https://example.org/publikationer/rapport/a"})
	report.AddRecord(ReportRecord{URL: "https://example.org/publikationer/pm/b"})

	if len(report.Records) != 2 {
		t.Fatalf("got %d records, expected 2", len(report.Records))
	}
}
