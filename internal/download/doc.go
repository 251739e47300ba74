// Package download stores discovered documents on the local filesystem.
//
// The Sink lays files out by the context the crawler captured at
// discovery time: the nearest heading above the link becomes a group
// directory, the anchor text a subdirectory, with a per-run generation
// timestamp between them. Path segments are sanitized with accent
// folding so Swedish headings stay recognizable as ASCII directory
// names. Downloads stream to disk through the shared fetcher, and a
// failed download never leaves a partial file behind.
package download
