package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pubcrawl/pubcrawl/internal/config"
	"github.com/pubcrawl/pubcrawl/internal/fetch"
	"github.com/pubcrawl/pubcrawl/internal/log"
	"github.com/pubcrawl/pubcrawl/internal/pipeline"
	"github.com/spf13/cobra"
)

// NewFeedCmd creates the feed command.
func NewFeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feed [url]",
		Short: "Harvest a site's RSS feed",
		Long: `Feed fetches a site's RSS feed, archives the HTML page behind every
entry, and writes the entry metadata to a CSV file.

Archived pages are stored under <download-dir>/feed/<year>/, named after
the entry title. The feed URL comes from --feed-url or the site's
profile in the configuration file.

Examples:
  # Harvest using the feed URL from the site profile
  pubcrawl feed https://www.tillvaxtanalys.se

  # Harvest an explicit feed URL
  pubcrawl feed --feed-url https://www.tillvaxtanalys.se/rss.xml https://www.tillvaxtanalys.se`,
		Args: cobra.ArbitraryArgs,
		RunE: runFeedCmd,
	}

	addHarvestFlags(cmd)

	cmd.Flags().String("feed-url", "",
		"RSS feed URL to harvest")

	return cmd
}

// runFeedCmd executes the feed command.
func runFeedCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	cfg.FeedURL, err = cmd.Flags().GetString("feed-url")
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	verbose := getVerboseFlag(cmd)
	logger := log.NewLogger(os.Stderr, verbose)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return forEachTarget(ctx, cfg, logger, func(target string, profile config.SiteProfile, fetcher *fetch.Fetcher) (*pipeline.Pipeline, func(), error) {
		feedURL := flagOrProfile(cfg.FeedURL, profile.FeedURL)
		if feedURL == "" {
			return nil, nil, fmt.Errorf("no feed URL configured for %s (use --feed-url or a site profile)", target)
		}

		p := pipeline.New(pipeline.WithLogger(logger))
		p.AddStep(pipeline.NewFeedStep(fetcher, feedURL,
			pipeline.WithFeedArchiveDir(filepath.Join(cfg.DownloadDir, "feed")),
			pipeline.WithFeedCSVPath(filepath.Join(cfg.DownloadDir, "feed.csv")),
			pipeline.WithFeedDelay(cfg.CrawlDelay),
			pipeline.WithFeedLogger(logger),
		))
		return p, nil, nil
	})
}
