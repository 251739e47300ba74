// Package model defines the core data structures used throughout pubcrawl.
//
// This package contains the following main types:
//   - Page: Represents a fetched or rendered web page
//   - DocumentLink: A discovered document with its DOM-derived context
//   - ListingEntry: One entry harvested from a paginated report listing
//   - ReportRecord: Structured metadata extracted from a report page
//   - RunReport: The aggregate result of one harvesting run
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (crawler, listing, scrape, database, export,
// report) need to use these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
