// Package listing pages through the rendered report index and extracts
// report entries.
//
// The Paginator is a small state machine: load page N through the
// renderer, check the validity marker and minimum content length, extract
// entries, and stop on the first heuristic that signals the last page.
// Entry extraction pairs each date-marker element with the nearest
// preceding report anchor and filters by category allow-list. All site
// specifics (marker phrase, page parameter, CSS class, categories) arrive
// through options so other listing layouts can reuse the machinery.
package listing
