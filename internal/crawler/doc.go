// Package crawler implements breadth-first site traversal for document
// discovery.
//
// The Spider owns the frontier and the visited set for one run, fetches
// pages through the fetch package, and applies a Filter that drops
// off-domain links, junk pages, and separates target documents from
// crawlable pages. Documents are collected with their DOM context (nearest
// heading as a grouping label, anchor text as a display name) because the
// parse tree is discarded as soon as the page is processed.
//
// Traversal is a sequential loop: no concurrent fetches within a run, so
// the visited set needs no coordination beyond reuse across Reset calls.
package crawler
