// Package export writes harvest results to spreadsheet and CSV files.
//
// The Excel writer is cumulative: an existing workbook is extended with
// rows whose URL has not been seen before, so the workbook grows into a
// long-lived catalog across runs. The CSV writers are snapshots, one
// file per harvest, overwritten each time.
package export
