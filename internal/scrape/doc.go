// Package scrape extracts structured report fields from rendered report
// pages.
//
// The page markup never labels its fields in a machine-friendly way:
// series and case numbers appear as "Serienummer"/"Diarienummer" text
// fragments that are split across elements differently from page to page.
// The extractor therefore flattens the document into a token stream
// (Tokenize) and scans it for label/value layouts (FindLabelValue) rather
// than relying on element structure. Title and description still use the
// DOM, with the description falling back from a dedicated block to the
// article body to every paragraph on the page.
//
// Every field is optional; a page missing all of them still yields an
// empty record rather than an error. Scheduling, rendering, and record
// persistence live elsewhere.
package scrape
