// Package feed harvests the publications RSS feed.
//
// Each feed entry becomes a FeedDocument with its publication date
// normalized to YYYY-MM-DD; entries the feed leaves undated stay undated
// rather than being guessed. With archiving enabled the harvester also
// saves every entry's page as HTML under a year directory, so the feed
// doubles as an incremental archive of announcement pages.
package feed
