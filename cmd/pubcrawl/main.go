// Package main provides the entry point for the pubcrawl CLI.
//
// Pubcrawl harvests publication documents and report metadata from
// public agency websites. It crawls a site for linked documents,
// paginates rendered listing pages, extracts structured report records,
// and archives feed and sitemap snapshots.
//
// Usage:
//
//	pubcrawl run <url>
//	pubcrawl crawl <url>
//	pubcrawl records
//
// See --help for all available options.
package main

// main is the entry point for pubcrawl.
func main() {
	Execute()
}
