// Package log provides logging utilities for pubcrawl.
//
// The package wraps log/slog with a CompactHandler that masks sensitive
// attribute values (cookies, authorization headers) and truncates oversized
// values before they reach the underlying handler. Crawl runs log the URLs
// they visit together with extracted text, and without truncation a single
// malformed page could flood the log with markup.
//
// Use NewLogger for human-readable text output or NewJSONLogger for
// structured aggregation. Both honor a verbose flag that lowers the level
// from Warn to Debug.
package log
