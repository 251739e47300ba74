package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pubcrawl/pubcrawl/internal/config"
	"github.com/pubcrawl/pubcrawl/internal/fetch"
	"github.com/pubcrawl/pubcrawl/internal/log"
	"github.com/pubcrawl/pubcrawl/internal/pipeline"
	"github.com/spf13/cobra"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [url]",
		Short: "Crawl a site for linked documents",
		Long: `Crawl performs a breadth-first traversal of a website, collecting
links to documents (PDFs by default) and downloading them.

The traversal stays on the seed's host, skips generated junk pages, and
stops at the configured recursion depth. Downloaded files are grouped
into subdirectories named after each document's parent page.

Examples:
  # Crawl a site with default depth
  pubcrawl crawl https://www.tillvaxtanalys.se

  # Crawl deeper and store files in a specific directory
  pubcrawl crawl -d 5 -D ./downloads https://www.tillvaxtanalys.se

  # Output a JSON run summary
  pubcrawl crawl --json https://www.tillvaxtanalys.se`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	addHarvestFlags(cmd)

	cmd.Flags().IntP("depth", "d", config.DefaultCrawlDepth,
		"Maximum crawl recursion depth")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	cfg.CrawlDepth, err = cmd.Flags().GetInt("depth")
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

	return forEachTarget(ctx, cfg, logger, func(_ string, profile config.SiteProfile, fetcher *fetch.Fetcher) (*pipeline.Pipeline, func(), error) {
		return createCrawlPipeline(fetcher, logger, cfg, profile), nil, nil
	})
}

// createCrawlPipeline creates a pipeline running only the crawl stage.
func createCrawlPipeline(fetcher *fetch.Fetcher, logger *slog.Logger, cfg *config.Config, profile config.SiteProfile) *pipeline.Pipeline {
	opts := []pipeline.CrawlStepOption{
		pipeline.WithCrawlMaxDepth(effectiveDepth(cfg, profile)),
		pipeline.WithCrawlDelay(cfg.CrawlDelay),
		pipeline.WithCrawlDownloadDir(cfg.DownloadDir),
		pipeline.WithCrawlLogger(logger),
	}

	if filter := newCrawlFilter(cfg, profile, logger); filter != nil {
		opts = append(opts, pipeline.WithCrawlFilter(filter))
	}

	p := pipeline.New(pipeline.WithLogger(logger))
	p.AddStep(pipeline.NewCrawlStep(fetcher, opts...))
	return p
}
