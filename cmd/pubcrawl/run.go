package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/pubcrawl/pubcrawl/internal/config"
	"github.com/pubcrawl/pubcrawl/internal/crawler"
	"github.com/pubcrawl/pubcrawl/internal/database"
	"github.com/pubcrawl/pubcrawl/internal/fetch"
	"github.com/pubcrawl/pubcrawl/internal/listing"
	"github.com/pubcrawl/pubcrawl/internal/log"
	"github.com/pubcrawl/pubcrawl/internal/model"
	"github.com/pubcrawl/pubcrawl/internal/pipeline"
	"github.com/pubcrawl/pubcrawl/internal/render"
	"github.com/pubcrawl/pubcrawl/internal/report"
	"github.com/pubcrawl/pubcrawl/internal/scrape"
	"github.com/spf13/cobra"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [url]",
		Short: "Run the full harvest against one or more sites",
		Long: `Run performs a full harvest of a public agency website.

It runs every configured stage in sequence:
- feed: harvest the RSS feed and archive linked pages
- sitemap: harvest documents listed in the sitemap
- crawl: breadth-first traversal collecting linked documents
- scrape: paginate the rendered report listing and extract records

Stages without a configured URL skip themselves. Extracted records are
always persisted to the SQLite database in the XDG data directory.

Examples:
  # Full harvest of a single site
  pubcrawl run https://www.tillvaxtanalys.se

  # Harvest multiple sites concurrently
  pubcrawl run https://site1.se https://site2.se --batch 2

  # Harvest every site listed in a file
  pubcrawl run --list sites.txt

  # Harvest with an explicit listing URL and Excel export
  pubcrawl run https://www.tillvaxtanalys.se \
    --listing-url "https://www.tillvaxtanalys.se/publikationer.html?query=&from=2010-01-01&to=2030-12-31" \
    --excel reports.xlsx

  # Output JSON run summary to a file
  pubcrawl run --json -o summary.json https://www.tillvaxtanalys.se

  # Use a custom configuration file
  pubcrawl run -c myconfig.yaml https://www.tillvaxtanalys.se

Configuration file (.pubcrawl) example:
  sites:
    www.tillvaxtanalys.se:
      listingUrl: "https://www.tillvaxtanalys.se/publikationer.html?query=&from=2010-01-01&to=2030-12-31"
      feedUrl: "https://www.tillvaxtanalys.se/rss.xml"
      depth: 3`,
		Args: cobra.ArbitraryArgs,
		RunE: runRunCmd,
	}

	addHarvestFlags(cmd)

	// Crawl behavior flags
	cmd.Flags().IntP("depth", "d", config.DefaultCrawlDepth,
		"Maximum crawl recursion depth")

	// Batch harvesting flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent harvests")

	// Stage URL flags (override site profiles)
	cmd.Flags().String("listing-url", "",
		"Paginated report listing URL including its fixed query parameters")
	cmd.Flags().String("feed-url", "",
		"RSS feed URL to harvest")
	cmd.Flags().String("sitemap-url", "",
		"Sitemap URL to harvest")

	// Record sink flags
	cmd.Flags().String("excel", "",
		"Append extracted records to this xlsx workbook")

	return cmd
}

// addHarvestFlags registers the flags shared by every harvest command.
func addHarvestFlags(cmd *cobra.Command) {
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connection timeout for each request")
	cmd.Flags().Duration("delay", config.DefaultCrawlDelay,
		"Pause between consecutive requests")
	cmd.Flags().IntP("retry", "r", config.DefaultRetryCount,
		"Number of attempts per fetch before the URL is abandoned")
	cmd.Flags().StringP("download-dir", "D", "",
		"Base directory for harvested files (default: XDG data directory)")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .pubcrawl in current or home directory)")
	cmd.Flags().StringP("list", "l", "",
		"File containing seed URLs, one per line (# starts a comment)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON run summary (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown run summary (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write run summary to specified file path (creates directories if needed)")
}

// runRunCmd executes the run command.
func runRunCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildRunConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	verbose := getVerboseFlag(cmd)
	logger := log.NewLogger(os.Stderr, verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := signalContext(logger)
	defer cancel()

	return runHarvest(ctx, cfg, logger)
}

// signalContext returns a context cancelled by SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from the flags shared by harvest commands.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	// Get flag values
	var err error

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.CrawlDelay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	cfg.RetryCount, err = cmd.Flags().GetInt("retry")
	if err != nil {
		return nil, err
	}

	cfg.DownloadDir, err = cmd.Flags().GetString("download-dir")
	if err != nil {
		return nil, err
	}
	if cfg.DownloadDir == "" {
		cfg.DownloadDir = config.XDGDataDir()
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load site profiles from the config file.
	// If the user explicitly specified a config file path, error if not
	// found. If no path specified, silently use an empty profile set.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteProfiles, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		// Use empty profiles if no file found and user didn't explicitly specify one
		cfg.SiteProfiles = &config.File{
			Sites: make(map[string]config.SiteProfile),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	// Always persist extracted records using the XDG data directory
	cfg.SaveToDB = true
	cfg.DBDir = config.XDGDataDir()

	// Targets are the positional site URLs plus any listed in --list.
	cfg.Targets = args

	listFile, err := cmd.Flags().GetString("list")
	if err != nil {
		return nil, err
	}
	if listFile != "" {
		targets, err := readTargetList(listFile)
		if err != nil {
			return nil, err
		}
		cfg.Targets = append(cfg.Targets, targets...)
	}

	return cfg, nil
}

// buildRunConfig creates a Config from the run command flags.
func buildRunConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return nil, err
	}

	cfg.CrawlDepth, err = cmd.Flags().GetInt("depth")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.ListingURL, err = cmd.Flags().GetString("listing-url")
	if err != nil {
		return nil, err
	}

	cfg.FeedURL, err = cmd.Flags().GetString("feed-url")
	if err != nil {
		return nil, err
	}

	cfg.SitemapURL, err = cmd.Flags().GetString("sitemap-url")
	if err != nil {
		return nil, err
	}

	cfg.ExcelPath, err = cmd.Flags().GetString("excel")
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// readTargetList reads seed URLs from a file, one per line. Blank lines
// and lines starting with # are skipped.
func readTargetList(path string) ([]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from a user flag
	if err != nil {
		return nil, fmt.Errorf("failed to read target list %s: %w", path, err)
	}

	var targets []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		targets = append(targets, line)
	}
	return targets, nil
}

// runHarvest executes the harvest.
func runHarvest(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if len(cfg.Targets) == 0 {
		return errors.New("no targets provided (specify site URLs as arguments or use --list)")
	}

	logger.Info("starting harvest",
		"targets", cfg.Targets,
		"depth", cfg.CrawlDepth,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	// Open database connection if saving is enabled
	var db *database.ReportDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	// Use batch processor for concurrent harvesting if multiple targets
	if len(cfg.Targets) > 1 && cfg.BatchSize > 1 {
		return runBatchHarvest(ctx, cfg, db, logger)
	}

	// Single target or sequential harvesting
	return runSequentialHarvest(ctx, cfg, db, logger)
}

// runSequentialHarvest harvests targets one at a time with the full
// pipeline, creating a renderer only for targets with a listing URL.
func runSequentialHarvest(ctx context.Context, cfg *config.Config, db *database.ReportDB, logger *slog.Logger) error {
	return forEachTarget(ctx, cfg, logger, func(target string, profile config.SiteProfile, fetcher *fetch.Fetcher) (*pipeline.Pipeline, func(), error) {
		// The browser starts lazily, so the renderer is only created when
		// the listing stage has a URL to walk. The consent cookie domain
		// is derived from the target, which is why the renderer cannot be
		// shared across sites.
		var renderer render.Renderer
		var cleanup func()
		if flagOrProfile(cfg.ListingURL, profile.ListingURL) != "" {
			chrome := newRenderer(cfg, profile, target, logger)
			renderer = chrome
			cleanup = func() {
				if err := chrome.Close(); err != nil {
					logger.Error("failed to close renderer", "error", err)
				}
			}
		}

		return createPipelineForTarget(fetcher, renderer, logger, cfg, profile, db), cleanup, nil
	})
}

// forEachTarget runs one pipeline per target in sequence, printing
// progress and emitting the run summary for each. A failed target is
// logged and the next target still runs.
func forEachTarget(ctx context.Context, cfg *config.Config, logger *slog.Logger, newPipeline func(target string, profile config.SiteProfile, fetcher *fetch.Fetcher) (*pipeline.Pipeline, func(), error)) error {
	for _, target := range cfg.Targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Get site-specific profile
		profile := targetProfile(cfg, target)

		fetcher := newFetcher(cfg, profile)

		p, cleanup, err := newPipeline(target, profile, fetcher)
		if err != nil {
			return err
		}

		runReport := model.NewRunReport(target)

		fmt.Printf("Harvesting %s...\n", target)
		startTime := time.Now()

		// Execute the pipeline
		execErr := p.Execute(ctx, runReport)
		runReport.Finish()

		if cleanup != nil {
			cleanup()
		}

		if execErr != nil {
			logger.Error("harvest failed", "target", target, "error", execErr)
			fmt.Fprintf(os.Stderr, "Harvest error for %s: %v\n", target, execErr)
			continue
		}

		elapsed := time.Since(startTime)
		fmt.Printf("Harvest completed in %s\n\n", elapsed.Round(time.Millisecond))

		// Generate and output run summary
		if err := outputReport(cfg, runReport); err != nil {
			logger.Error("report failed", "target", target, "error", err)
		}
	}

	return nil
}

// runBatchHarvest harvests multiple targets concurrently using BatchProcessor.
func runBatchHarvest(ctx context.Context, cfg *config.Config, db *database.ReportDB, logger *slog.Logger) error {
	fmt.Printf("Starting batch harvest of %d targets (concurrency: %d)...\n\n",
		len(cfg.Targets), cfg.BatchSize)

	startTime := time.Now()

	// Warn user about batch processing limitations
	if cfg.SiteProfiles != nil && len(cfg.SiteProfiles.Sites) > 0 {
		logger.Warn("batch processing uses the default site profile only; site-specific profiles (cookies, listing URLs, depth) are ignored",
			"siteCount", len(cfg.SiteProfiles.Sites))
		fmt.Fprintf(os.Stderr, "Warning: Site-specific profiles are ignored in batch mode. Use sequential mode (--batch 1) to apply per-site settings.\n\n")
	}

	var profile config.SiteProfile
	if cfg.SiteProfiles != nil {
		profile = cfg.SiteProfiles.Defaults
	}

	// One fetcher serves every target; it holds no per-run state. The
	// rendered listing stage needs a per-target consent cookie domain,
	// so batch mode runs without a renderer and the scrape stage skips
	// itself.
	fetcher := newFetcher(cfg, profile)

	// Create batch processor with pipeline factory
	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return createPipelineForTarget(fetcher, nil, logger, cfg, profile, db)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	// Process with callback for streaming output
	var mu sync.Mutex
	err := bp.ProcessBatchWithCallback(ctx, cfg.Targets, func(runReport *model.RunReport, index int) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Printf("[%d/%d] Harvest completed: %s\n", index+1, len(cfg.Targets), runReport.Target)

		// Generate and output run summary
		if err := outputReport(cfg, runReport); err != nil {
			logger.Error("report failed", "target", runReport.Target, "error", err)
		}
	})

	elapsed := time.Since(startTime)
	fmt.Printf("\nBatch harvest completed in %s\n", elapsed.Round(time.Millisecond))

	return err
}

// targetProfile returns the merged site profile for a target URL.
// Falls back to the defaults when no site-specific profile exists.
func targetProfile(cfg *config.Config, target string) config.SiteProfile {
	if cfg.SiteProfiles == nil {
		return config.SiteProfile{}
	}

	host := target
	if u, err := url.Parse(target); err == nil && u.Host != "" {
		host = u.Hostname()
	} else {
		for _, prefix := range []string{"http://", "https://"} {
			host = strings.TrimPrefix(host, prefix)
		}
	}

	return cfg.SiteProfiles.GetSiteProfile(host)
}

// flagOrProfile returns the flag value when set, otherwise the profile value.
func flagOrProfile(flagValue, profileValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return profileValue
}

// newFetcher builds the HTTP fetcher for a target from its site profile.
func newFetcher(cfg *config.Config, profile config.SiteProfile) *fetch.Fetcher {
	opts := []fetch.Option{
		fetch.WithTimeout(cfg.Timeout),
		fetch.WithUserAgents(cfg.UserAgents),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
		fetch.WithRetry(cfg.RetryCount, cfg.RetryDelay),
	}

	cookie := cfg.ConsentCookie
	if profile.Cookie != "" {
		cookie = profile.Cookie
	}
	if cookie != "" {
		opts = append(opts, fetch.WithCookie(cookie))
	}

	if len(profile.Headers) > 0 {
		opts = append(opts, fetch.WithHeaders(profile.Headers))
	}

	return fetch.NewFetcher(opts...)
}

// newRenderer builds the headless browser renderer for a target.
// The consent cookie is seeded for the target's domain so cookie walls
// never appear in rendered listing markup.
func newRenderer(cfg *config.Config, profile config.SiteProfile, target string, logger *slog.Logger) *render.ChromeRenderer {
	bannerText := cfg.CookieBannerText
	if profile.CookieBannerText != "" {
		bannerText = profile.CookieBannerText
	}

	var userAgent string
	if len(cfg.UserAgents) > 0 {
		userAgent = cfg.UserAgents[0]
	}

	return render.NewChromeRenderer(render.Options{
		Timeout:       cfg.RenderTimeout,
		UserAgent:     userAgent,
		ConsentCookie: cfg.ConsentCookie,
		CookieDomain:  cookieDomain(target),
		BannerText:    bannerText,
		Logger:        logger,
	})
}

// cookieDomain derives the consent cookie scope from a target URL:
// "https://www.example.se/x" becomes ".example.se".
func cookieDomain(target string) string {
	u, err := url.Parse(target)
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	return "." + host
}

// effectiveDepth returns the crawl depth with the profile override applied.
func effectiveDepth(cfg *config.Config, profile config.SiteProfile) int {
	if profile.Depth > 0 {
		return profile.Depth
	}
	return cfg.CrawlDepth
}

// newCrawlFilter builds the URL filter for a target. Returns nil when the
// profile carries a pattern that does not compile; crawling then runs
// unfiltered rather than failing the whole harvest.
func newCrawlFilter(cfg *config.Config, profile config.SiteProfile, logger *slog.Logger) *crawler.Filter {
	junkPattern := cfg.JunkPagePattern
	if profile.JunkPagePattern != "" {
		junkPattern = profile.JunkPagePattern
	}

	filter, err := crawler.NewFilter(junkPattern, cfg.DocumentMarkers)
	if err != nil {
		logger.Warn("invalid junk page pattern, crawling without filter",
			"pattern", junkPattern,
			"error", err,
		)
		return nil
	}
	return filter
}

// createPipelineForTarget creates a full pipeline with the given configuration.
func createPipelineForTarget(fetcher *fetch.Fetcher, renderer render.Renderer, logger *slog.Logger, cfg *config.Config, profile config.SiteProfile, db *database.ReportDB) *pipeline.Pipeline {
	pipelineOpts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithContinueOnError(true),
	}

	configOpts := []pipeline.DefaultPipelineOption{
		pipeline.WithPipelineCrawlDepth(effectiveDepth(cfg, profile)),
		pipeline.WithPipelineCrawlDelay(cfg.CrawlDelay),
		pipeline.WithPipelineDownloadDir(cfg.DownloadDir),
		pipeline.WithPipelineListingURL(flagOrProfile(cfg.ListingURL, profile.ListingURL)),
		pipeline.WithPipelineFeedURL(flagOrProfile(cfg.FeedURL, profile.FeedURL)),
		pipeline.WithPipelineSitemapURL(flagOrProfile(cfg.SitemapURL, profile.SitemapURL)),
		pipeline.WithPipelineDatabase(db),
		pipeline.WithPipelineExcelPath(cfg.ExcelPath),
		pipeline.WithPipelineFeedArchiveDir(filepath.Join(cfg.DownloadDir, "feed")),
		pipeline.WithPipelineFeedCSVPath(filepath.Join(cfg.DownloadDir, "feed.csv")),
		pipeline.WithPipelineSitemapDir(filepath.Join(cfg.DownloadDir, "sitemap")),
		pipeline.WithPipelineSitemapCSVPath(filepath.Join(cfg.DownloadDir, "sitemap.csv")),
		pipeline.WithPipelinePaginatorOptions(paginatorOptions(cfg, profile)...),
		pipeline.WithPipelineExtractorOptions(extractorOptions(cfg, profile)...),
	}

	if filter := newCrawlFilter(cfg, profile, logger); filter != nil {
		configOpts = append(configOpts, pipeline.WithPipelineFilter(filter))
	}

	return pipeline.DefaultPipeline(fetcher, renderer, pipelineOpts, configOpts...)
}

// paginatorOptions assembles the listing pagination options for a target,
// applying profile overrides to the global settings.
func paginatorOptions(cfg *config.Config, profile config.SiteProfile) []listing.Option {
	pageParam := cfg.PageParamTemplate
	if profile.PageParamTemplate != "" {
		pageParam = profile.PageParamTemplate
	}

	validityMarker := cfg.ValidityMarker
	if profile.ValidityMarker != "" {
		validityMarker = profile.ValidityMarker
	}

	dateMarkerClass := cfg.DateMarkerClass
	if profile.DateMarkerClass != "" {
		dateMarkerClass = profile.DateMarkerClass
	}

	pathPrefix := cfg.ReportPathPrefix
	if profile.ReportPathPrefix != "" {
		pathPrefix = profile.ReportPathPrefix
	}

	categories := cfg.Categories
	if len(profile.Categories) > 0 {
		categories = profile.Categories
	}

	return []listing.Option{
		listing.WithPageParamTemplate(pageParam),
		listing.WithValidityMarker(validityMarker),
		listing.WithMinContentLength(cfg.MinContentLength),
		listing.WithMaxPages(cfg.MaxListingPages),
		listing.WithExtractOptions(listing.ExtractOptions{
			DateMarkerClass:  dateMarkerClass,
			ReportPathPrefix: pathPrefix,
			Categories:       categories,
		}),
	}
}

// extractorOptions assembles the record extraction options for a target,
// applying profile overrides to the global settings.
func extractorOptions(cfg *config.Config, profile config.SiteProfile) []scrape.Option {
	descriptionClass := cfg.DescriptionClass
	if profile.DescriptionClass != "" {
		descriptionClass = profile.DescriptionClass
	}

	articleClass := cfg.ArticleClass
	if profile.ArticleClass != "" {
		articleClass = profile.ArticleClass
	}

	return []scrape.Option{
		scrape.WithDescriptionClass(descriptionClass),
		scrape.WithArticleClass(articleClass),
	}
}

// outputReport outputs the run summary in the requested format.
func outputReport(cfg *config.Config, runReport *model.RunReport) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Create/overwrite the output file with owner-only permissions (0600)
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	// JSON output (versioned, full report)
	if cfg.JSONReport {
		writer := report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
		_, err := writer.Write(runReport)
		return err
	}

	// Markdown output
	if cfg.MarkdownReport {
		writer := report.NewMarkdownWriter(output)
		_, err := writer.Write(runReport)
		return err
	}

	// Human-readable report (default)
	writer := report.NewSimpleWriter(output)
	_, err := writer.Write(runReport)
	return err
}
