package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pubcrawl/pubcrawl/internal/config"
	"github.com/pubcrawl/pubcrawl/internal/database"
	"github.com/pubcrawl/pubcrawl/internal/fetch"
	"github.com/pubcrawl/pubcrawl/internal/log"
	"github.com/pubcrawl/pubcrawl/internal/pipeline"
	"github.com/spf13/cobra"
)

// NewScrapeCmd creates the scrape command.
func NewScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape [url]",
		Short: "Scrape report records from a site's publication listing",
		Long: `Scrape pages through a site's rendered report listing, extracts a
structured record from every report page, and persists the records.

The listing is built by JavaScript, so pages are loaded in a
headless browser. Pagination stops at the first page that no longer
looks like a listing. Extracted records go to the SQLite database in
the XDG data directory; records whose URL is already stored are
skipped.

The listing URL comes from --listing-url or the site's profile in the
configuration file.

Examples:
  # Scrape using the listing URL from the site profile
  pubcrawl scrape https://www.tillvaxtanalys.se

  # Scrape an explicit listing URL
  pubcrawl scrape https://www.tillvaxtanalys.se \
    --listing-url "https://www.tillvaxtanalys.se/publikationer.html?query=&from=2010-01-01&to=2030-12-31"

  # Also append records to an Excel workbook
  pubcrawl scrape --excel reports.xlsx https://www.tillvaxtanalys.se`,
		Args: cobra.ArbitraryArgs,
		RunE: runScrapeCmd,
	}

	addHarvestFlags(cmd)

	cmd.Flags().String("listing-url", "",
		"Paginated report listing URL including its fixed query parameters")
	cmd.Flags().String("excel", "",
		"Append extracted records to this xlsx workbook")

	return cmd
}

// runScrapeCmd executes the scrape command.
func runScrapeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	cfg.ListingURL, err = cmd.Flags().GetString("listing-url")
	if err != nil {
		return err
	}

	cfg.ExcelPath, err = cmd.Flags().GetString("excel")
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Validate listing URLs before opening the database. This keeps a
	// misconfigured invocation from leaving an empty database behind.
	for _, target := range cfg.Targets {
		profile := targetProfile(cfg, target)
		if flagOrProfile(cfg.ListingURL, profile.ListingURL) == "" {
			return fmt.Errorf("no listing URL configured for %s (use --listing-url or a site profile)", target)
		}
	}

	verbose := getVerboseFlag(cmd)
	logger := log.NewLogger(os.Stderr, verbose)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	return forEachTarget(ctx, cfg, logger, func(target string, profile config.SiteProfile, fetcher *fetch.Fetcher) (*pipeline.Pipeline, func(), error) {
		listingURL := flagOrProfile(cfg.ListingURL, profile.ListingURL)

		chrome := newRenderer(cfg, profile, target, logger)
		cleanup := func() {
			if err := chrome.Close(); err != nil {
				logger.Error("failed to close renderer", "error", err)
			}
		}

		p := pipeline.New(pipeline.WithLogger(logger))
		p.AddStep(pipeline.NewScrapeStep(chrome, fetcher, listingURL,
			pipeline.WithScrapeDelay(cfg.CrawlDelay),
			pipeline.WithScrapeDatabase(db),
			pipeline.WithScrapeExcelPath(cfg.ExcelPath),
			pipeline.WithScrapePaginatorOptions(paginatorOptions(cfg, profile)...),
			pipeline.WithScrapeExtractorOptions(extractorOptions(cfg, profile)...),
			pipeline.WithScrapeLogger(logger),
		))
		return p, cleanup, nil
	})
}
