// Package database provides SQLite-backed persistence for extracted
// report records.
//
// The store enforces the record contract at the storage layer: one row
// per report, URL unique, duplicates skipped rather than updated so the
// first extraction of a report wins. Bulk inserts run in one transaction
// and report how many records were new, which is what the run summary
// surfaces as inserted versus skipped counts.
package database
