package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pubcrawl/pubcrawl/internal/config"
	"github.com/pubcrawl/pubcrawl/internal/crawler"
	"github.com/pubcrawl/pubcrawl/internal/database"
	"github.com/pubcrawl/pubcrawl/internal/download"
	"github.com/pubcrawl/pubcrawl/internal/export"
	"github.com/pubcrawl/pubcrawl/internal/feed"
	"github.com/pubcrawl/pubcrawl/internal/fetch"
	"github.com/pubcrawl/pubcrawl/internal/listing"
	"github.com/pubcrawl/pubcrawl/internal/model"
	"github.com/pubcrawl/pubcrawl/internal/render"
	"github.com/pubcrawl/pubcrawl/internal/scrape"
	"github.com/pubcrawl/pubcrawl/internal/sitemap"
)

// CrawlStep traverses the target site and downloads the documents it finds.
//
// Design decision: Traversal and downloading share one step because:
// 1. Downloads consume the traversal's output directly
// 2. They share the fetcher, so politeness settings stay consistent
// 3. A run with no download directory still yields the discovered links
type CrawlStep struct {
	// fetcher performs the HTTP requests, shared with the download sink.
	fetcher *fetch.Fetcher

	// maxDepth limits crawl recursion.
	maxDepth int

	// delay between requests for politeness.
	delay time.Duration

	// filter decides which links are followed and which are documents.
	// Nil means the spider's built-in defaults.
	filter *crawler.Filter

	// downloadDir is the base directory for downloaded documents.
	// Empty disables downloading; discovery alone still runs.
	downloadDir string

	// logger for structured logging.
	logger *slog.Logger
}

// CrawlStepOption configures a CrawlStep.
type CrawlStepOption func(*CrawlStep)

// WithCrawlMaxDepth sets the maximum crawl depth.
func WithCrawlMaxDepth(depth int) CrawlStepOption {
	return func(s *CrawlStep) {
		s.maxDepth = depth
	}
}

// WithCrawlDelay sets the delay between requests.
func WithCrawlDelay(d time.Duration) CrawlStepOption {
	return func(s *CrawlStep) {
		s.delay = d
	}
}

// WithCrawlFilter sets the link filter used during traversal.
func WithCrawlFilter(f *crawler.Filter) CrawlStepOption {
	return func(s *CrawlStep) {
		s.filter = f
	}
}

// WithCrawlDownloadDir sets the base directory for downloaded documents.
// An empty directory disables downloading.
func WithCrawlDownloadDir(dir string) CrawlStepOption {
	return func(s *CrawlStep) {
		s.downloadDir = dir
	}
}

// WithCrawlLogger sets a custom logger for the crawl step.
func WithCrawlLogger(logger *slog.Logger) CrawlStepOption {
	return func(s *CrawlStep) {
		s.logger = logger
	}
}

// NewCrawlStep creates a new crawling step.
//
// Default politeness settings are conservative to be respectful of public
// agency servers:
//   - delay: 500ms between requests (config.DefaultCrawlDelay)
//   - maxDepth: 3 levels from the seed (config.DefaultCrawlDepth)
func NewCrawlStep(fetcher *fetch.Fetcher, opts ...CrawlStepOption) *CrawlStep {
	s := &CrawlStep{
		fetcher:  fetcher,
		maxDepth: config.DefaultCrawlDepth,
		delay:    config.DefaultCrawlDelay,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do executes the crawl step against report.Target.
func (s *CrawlStep) Do(ctx context.Context, report *model.RunReport) error {
	spiderOpts := []crawler.SpiderOption{
		crawler.WithMaxDepth(s.maxDepth),
		crawler.WithDelay(s.delay),
		crawler.WithLogger(s.logger),
	}
	if s.filter != nil {
		spiderOpts = append(spiderOpts, crawler.WithFilter(s.filter))
	}

	spider := crawler.NewSpider(s.fetcher, spiderOpts...)

	result, err := spider.Crawl(ctx, report.Target)
	if result != nil {
		report.PagesVisited = result.PagesVisited
		report.Documents = result.Documents
		report.Failures = append(report.Failures, result.Failures...)
	}
	if err != nil {
		return err
	}

	s.logger.Info("crawl completed",
		"pages_visited", result.PagesVisited,
		"documents", len(result.Documents),
	)

	if s.downloadDir == "" || len(result.Documents) == 0 {
		return nil
	}

	// The same fetcher instance carries over so the download stage keeps
	// the crawl's timeout, retry, and user-agent behavior.
	sink := download.NewSink(s.downloadDir, s.fetcher,
		download.WithDelay(s.delay),
		download.WithLogger(s.logger),
	)

	stored, err := sink.StoreAll(ctx, result.Documents)
	if stored != nil {
		report.Downloaded = len(stored.Stored)
		report.Failures = append(report.Failures, stored.Failures...)
	}
	return err
}

// ScrapeStep pages through the rendered report listing, extracts a record
// from every report page, and persists the records.
//
// Design decision: Extraction and persistence share one step because:
// 1. Records only exist to be persisted; splitting them would leave a
//    step with no observable output
// 2. The dedup-by-url contract spans both halves
// 3. The original harvester runs them as one unit
type ScrapeStep struct {
	// renderer loads the JavaScript-built listing pages.
	renderer render.Renderer

	// fetcher performs the plain HTTP fetches of individual report pages.
	fetcher *fetch.Fetcher

	// listingURL is the paginated listing to walk. Empty skips the step.
	listingURL string

	// delay between report page fetches.
	delay time.Duration

	// paginatorOpts are forwarded to the listing paginator.
	paginatorOpts []listing.Option

	// extractorOpts are forwarded to the record extractor.
	extractorOpts []scrape.Option

	// db receives the extracted records. Nil disables the database sink.
	db *database.ReportDB

	// excelPath is the workbook to append records to. Empty disables it.
	excelPath string

	// logger for structured logging.
	logger *slog.Logger
}

// ScrapeStepOption configures a ScrapeStep.
type ScrapeStepOption func(*ScrapeStep)

// WithScrapeDelay sets the delay between report page fetches.
func WithScrapeDelay(d time.Duration) ScrapeStepOption {
	return func(s *ScrapeStep) {
		s.delay = d
	}
}

// WithScrapePaginatorOptions forwards options to the listing paginator.
func WithScrapePaginatorOptions(opts ...listing.Option) ScrapeStepOption {
	return func(s *ScrapeStep) {
		s.paginatorOpts = append(s.paginatorOpts, opts...)
	}
}

// WithScrapeExtractorOptions forwards options to the record extractor.
func WithScrapeExtractorOptions(opts ...scrape.Option) ScrapeStepOption {
	return func(s *ScrapeStep) {
		s.extractorOpts = append(s.extractorOpts, opts...)
	}
}

// WithScrapeDatabase sets the database the records are inserted into.
func WithScrapeDatabase(db *database.ReportDB) ScrapeStepOption {
	return func(s *ScrapeStep) {
		s.db = db
	}
}

// WithScrapeExcelPath sets the workbook records are appended to.
func WithScrapeExcelPath(path string) ScrapeStepOption {
	return func(s *ScrapeStep) {
		s.excelPath = path
	}
}

// WithScrapeLogger sets a custom logger for the scrape step.
func WithScrapeLogger(logger *slog.Logger) ScrapeStepOption {
	return func(s *ScrapeStep) {
		s.logger = logger
	}
}

// NewScrapeStep creates a new scraping step over the given listing URL.
// An empty listingURL makes the step a no-op.
func NewScrapeStep(renderer render.Renderer, fetcher *fetch.Fetcher, listingURL string, opts ...ScrapeStepOption) *ScrapeStep {
	s := &ScrapeStep{
		renderer:   renderer,
		fetcher:    fetcher,
		listingURL: listingURL,
		delay:      config.DefaultCrawlDelay,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *ScrapeStep) Name() string {
	return "scrape"
}

// Do executes the scrape step.
func (s *ScrapeStep) Do(ctx context.Context, report *model.RunReport) error {
	if s.listingURL == "" {
		s.logger.Debug("skipping scrape, no listing URL configured")
		return nil
	}
	if s.renderer == nil {
		s.logger.Debug("skipping scrape, no renderer available")
		return nil
	}

	paginatorOpts := append([]listing.Option{
		listing.WithDelay(s.delay),
		listing.WithLogger(s.logger),
	}, s.paginatorOpts...)

	paginator := listing.NewPaginator(s.renderer, s.listingURL, paginatorOpts...)

	listed, err := paginator.Run(ctx)
	if listed != nil {
		report.ListingPages = listed.PagesFetched
		report.Entries = listed.Entries
		report.Failures = append(report.Failures, listed.Failures...)
	}
	if err != nil {
		return err
	}

	// Pagination may surface the same report on consecutive pages; each
	// report page is visited once.
	entries := uniqueEntries(listed.Entries)
	extractor := scrape.NewExtractor(s.extractorOpts...)

	for i, entry := range entries {
		if i > 0 && s.delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.delay):
			}
		}

		page, err := s.fetcher.Fetch(ctx, entry.URL)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			attempts := 0
			var failure *fetch.Failure
			if errors.As(err, &failure) {
				attempts = failure.Attempts
			}
			s.logger.Warn("report page fetch failed",
				"url", entry.URL,
				"attempts", attempts,
				"error", err,
			)
			report.AddFailure("scrape", entry.URL, err.Error(), attempts)
			continue
		}

		record := extractor.ParseReport(string(page.Body))
		record.Date = entry.DateText
		record.URL = entry.URL
		report.AddRecord(record)
	}

	if s.db != nil && len(report.Records) > 0 {
		stats, err := s.db.InsertReports(ctx, report.Records)
		if err != nil {
			return fmt.Errorf("persist records: %w", err)
		}
		report.RecordsInserted = stats.Inserted
		report.RecordsSkipped = stats.Skipped
	}

	if s.excelPath != "" && len(report.Records) > 0 {
		if _, err := export.NewExcelWriter(s.excelPath).Append(report.Records); err != nil {
			return fmt.Errorf("append workbook: %w", err)
		}
	}

	s.logger.Info("scrape completed",
		"listing_pages", report.ListingPages,
		"entries", len(listed.Entries),
		"records", len(report.Records),
		"inserted", report.RecordsInserted,
		"skipped", report.RecordsSkipped,
	)

	return nil
}

// uniqueEntries keeps the first occurrence of each URL, preserving order.
func uniqueEntries(entries []model.ListingEntry) []model.ListingEntry {
	seen := make(map[string]struct{}, len(entries))
	unique := make([]model.ListingEntry, 0, len(entries))
	for _, entry := range entries {
		if _, ok := seen[entry.URL]; ok {
			continue
		}
		seen[entry.URL] = struct{}{}
		unique = append(unique, entry)
	}
	return unique
}

// FeedStep harvests the publications RSS feed.
type FeedStep struct {
	// fetcher performs the HTTP requests.
	fetcher *fetch.Fetcher

	// feedURL is the feed to harvest. Empty skips the step.
	feedURL string

	// archiveDir is where entry pages are saved. Empty disables archiving.
	archiveDir string

	// csvPath is the metadata snapshot file. Empty disables it.
	csvPath string

	// delay between page downloads.
	delay time.Duration

	// logger for structured logging.
	logger *slog.Logger
}

// FeedStepOption configures a FeedStep.
type FeedStepOption func(*FeedStep)

// WithFeedArchiveDir sets the directory entry pages are archived into.
func WithFeedArchiveDir(dir string) FeedStepOption {
	return func(s *FeedStep) {
		s.archiveDir = dir
	}
}

// WithFeedCSVPath sets the CSV file the feed metadata is written to.
func WithFeedCSVPath(path string) FeedStepOption {
	return func(s *FeedStep) {
		s.csvPath = path
	}
}

// WithFeedDelay sets the delay between page downloads.
func WithFeedDelay(d time.Duration) FeedStepOption {
	return func(s *FeedStep) {
		s.delay = d
	}
}

// WithFeedLogger sets a custom logger for the feed step.
func WithFeedLogger(logger *slog.Logger) FeedStepOption {
	return func(s *FeedStep) {
		s.logger = logger
	}
}

// NewFeedStep creates a new feed harvesting step.
// An empty feedURL makes the step a no-op.
func NewFeedStep(fetcher *fetch.Fetcher, feedURL string, opts ...FeedStepOption) *FeedStep {
	s := &FeedStep{
		fetcher: fetcher,
		feedURL: feedURL,
		delay:   config.DefaultCrawlDelay,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *FeedStep) Name() string {
	return "feed"
}

// Do executes the feed step.
func (s *FeedStep) Do(ctx context.Context, report *model.RunReport) error {
	if s.feedURL == "" {
		s.logger.Debug("skipping feed, no feed URL configured")
		return nil
	}

	harvesterOpts := []feed.HarvesterOption{
		feed.WithDelay(s.delay),
		feed.WithLogger(s.logger),
	}
	if s.archiveDir != "" {
		harvesterOpts = append(harvesterOpts, feed.WithBaseDir(s.archiveDir))
	}

	harvester := feed.NewHarvester(s.fetcher, harvesterOpts...)

	result, err := harvester.Harvest(ctx, s.feedURL)
	if err != nil {
		return err
	}

	report.FeedDocuments = result.Documents
	report.Failures = append(report.Failures, result.Failures...)

	if s.csvPath != "" && len(result.Documents) > 0 {
		if err := export.WriteFeedCSV(s.csvPath, result.Documents); err != nil {
			return fmt.Errorf("write feed csv: %w", err)
		}
	}

	return nil
}

// SitemapStep harvests documents listed in the site's XML sitemap.
type SitemapStep struct {
	// fetcher performs the HTTP requests.
	fetcher *fetch.Fetcher

	// sitemapURL is the sitemap to harvest. Empty skips the step.
	sitemapURL string

	// baseDir is where documents are saved. Empty disables downloading.
	baseDir string

	// csvPath is the metadata snapshot file. Empty disables it.
	csvPath string

	// delay between document downloads.
	delay time.Duration

	// logger for structured logging.
	logger *slog.Logger
}

// SitemapStepOption configures a SitemapStep.
type SitemapStepOption func(*SitemapStep)

// WithSitemapBaseDir sets the directory documents are saved into.
func WithSitemapBaseDir(dir string) SitemapStepOption {
	return func(s *SitemapStep) {
		s.baseDir = dir
	}
}

// WithSitemapCSVPath sets the CSV file the sitemap metadata is written to.
func WithSitemapCSVPath(path string) SitemapStepOption {
	return func(s *SitemapStep) {
		s.csvPath = path
	}
}

// WithSitemapDelay sets the delay between document downloads.
func WithSitemapDelay(d time.Duration) SitemapStepOption {
	return func(s *SitemapStep) {
		s.delay = d
	}
}

// WithSitemapLogger sets a custom logger for the sitemap step.
func WithSitemapLogger(logger *slog.Logger) SitemapStepOption {
	return func(s *SitemapStep) {
		s.logger = logger
	}
}

// NewSitemapStep creates a new sitemap harvesting step.
// An empty sitemapURL makes the step a no-op.
func NewSitemapStep(fetcher *fetch.Fetcher, sitemapURL string, opts ...SitemapStepOption) *SitemapStep {
	s := &SitemapStep{
		fetcher:    fetcher,
		sitemapURL: sitemapURL,
		delay:      config.DefaultCrawlDelay,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *SitemapStep) Name() string {
	return "sitemap"
}

// Do executes the sitemap step.
func (s *SitemapStep) Do(ctx context.Context, report *model.RunReport) error {
	if s.sitemapURL == "" {
		s.logger.Debug("skipping sitemap, no sitemap URL configured")
		return nil
	}

	harvesterOpts := []sitemap.HarvesterOption{
		sitemap.WithDelay(s.delay),
		sitemap.WithLogger(s.logger),
	}
	if s.baseDir != "" {
		harvesterOpts = append(harvesterOpts, sitemap.WithBaseDir(s.baseDir))
	}

	harvester := sitemap.NewHarvester(s.fetcher, harvesterOpts...)

	result, err := harvester.Harvest(ctx, s.sitemapURL)
	if err != nil {
		return err
	}

	report.SitemapDocuments = result.Documents
	report.Failures = append(report.Failures, result.Failures...)

	if s.csvPath != "" && len(result.Documents) > 0 {
		if err := export.WriteSitemapCSV(s.csvPath, result.Documents); err != nil {
			return fmt.Errorf("write sitemap csv: %w", err)
		}
	}

	return nil
}

// DefaultPipelineConfig holds configuration for the default pipeline.
type DefaultPipelineConfig struct {
	// CrawlDepth is the maximum depth for site traversal.
	CrawlDepth int

	// CrawlDelay is the delay between requests in every stage.
	// This is a "politeness" setting to avoid overwhelming the origin.
	CrawlDelay time.Duration

	// Filter decides which links are followed during traversal.
	Filter *crawler.Filter

	// DownloadDir is the base directory for crawled documents.
	DownloadDir string

	// ListingURL is the paginated report listing to scrape.
	ListingURL string

	// FeedURL is the RSS feed to harvest.
	FeedURL string

	// SitemapURL is the sitemap to harvest.
	SitemapURL string

	// Database receives extracted records. Nil disables the sink.
	Database *database.ReportDB

	// ExcelPath is the workbook records are appended to.
	ExcelPath string

	// FeedArchiveDir is where feed entry pages are saved.
	FeedArchiveDir string

	// FeedCSVPath is the feed metadata snapshot file.
	FeedCSVPath string

	// SitemapDir is where sitemap documents are saved.
	SitemapDir string

	// SitemapCSVPath is the sitemap metadata snapshot file.
	SitemapCSVPath string

	// PaginatorOptions are forwarded to the listing paginator.
	PaginatorOptions []listing.Option

	// ExtractorOptions are forwarded to the record extractor.
	ExtractorOptions []scrape.Option
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineCrawlDepth sets the crawl depth for the pipeline.
func WithPipelineCrawlDepth(depth int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.CrawlDepth = depth
	}
}

// WithPipelineCrawlDelay sets the delay between requests in every stage.
// This is a "politeness" setting to avoid overwhelming the origin.
func WithPipelineCrawlDelay(delay time.Duration) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.CrawlDelay = delay
	}
}

// WithPipelineFilter sets the traversal link filter.
func WithPipelineFilter(f *crawler.Filter) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Filter = f
	}
}

// WithPipelineDownloadDir sets the base directory for crawled documents.
func WithPipelineDownloadDir(dir string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.DownloadDir = dir
	}
}

// WithPipelineListingURL sets the paginated report listing to scrape.
func WithPipelineListingURL(rawURL string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.ListingURL = rawURL
	}
}

// WithPipelineFeedURL sets the RSS feed to harvest.
func WithPipelineFeedURL(rawURL string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.FeedURL = rawURL
	}
}

// WithPipelineSitemapURL sets the sitemap to harvest.
func WithPipelineSitemapURL(rawURL string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.SitemapURL = rawURL
	}
}

// WithPipelineDatabase sets the database records are inserted into.
func WithPipelineDatabase(db *database.ReportDB) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Database = db
	}
}

// WithPipelineExcelPath sets the workbook records are appended to.
func WithPipelineExcelPath(path string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.ExcelPath = path
	}
}

// WithPipelineFeedArchiveDir sets where feed entry pages are saved.
func WithPipelineFeedArchiveDir(dir string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.FeedArchiveDir = dir
	}
}

// WithPipelineFeedCSVPath sets the feed metadata snapshot file.
func WithPipelineFeedCSVPath(path string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.FeedCSVPath = path
	}
}

// WithPipelineSitemapDir sets where sitemap documents are saved.
func WithPipelineSitemapDir(dir string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.SitemapDir = dir
	}
}

// WithPipelineSitemapCSVPath sets the sitemap metadata snapshot file.
func WithPipelineSitemapCSVPath(path string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.SitemapCSVPath = path
	}
}

// WithPipelinePaginatorOptions forwards options to the listing paginator.
func WithPipelinePaginatorOptions(opts ...listing.Option) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.PaginatorOptions = append(c.PaginatorOptions, opts...)
	}
}

// WithPipelineExtractorOptions forwards options to the record extractor.
func WithPipelineExtractorOptions(opts ...scrape.Option) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.ExtractorOptions = append(c.ExtractorOptions, opts...)
	}
}

// DefaultPipeline creates a pipeline with all harvest steps configured.
// This is the standard pipeline for a full run against one target.
//
// Design decision: We provide a default pipeline because:
// 1. Most runs want every configured stage
// 2. Reduces boilerplate in CLI
// 3. Ensures consistent ordering
//
// Steps run feed, sitemap, crawl, scrape; stages without a configured URL
// skip themselves. The renderer may be nil when the listing stage is
// disabled.
//
// The first variadic parameter accepts pipeline options (WithLogger, etc).
// The second accepts pipeline config options (WithPipelineCrawlDepth, etc).
func DefaultPipeline(fetcher *fetch.Fetcher, renderer render.Renderer, pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	// Apply default config with conservative politeness settings
	cfg := &DefaultPipelineConfig{
		CrawlDepth: config.DefaultCrawlDepth,
		CrawlDelay: config.DefaultCrawlDelay,
	}
	for _, opt := range configOpts {
		opt(cfg)
	}

	crawlOpts := []CrawlStepOption{
		WithCrawlMaxDepth(cfg.CrawlDepth),
		WithCrawlDelay(cfg.CrawlDelay),
		WithCrawlDownloadDir(cfg.DownloadDir),
	}
	if cfg.Filter != nil {
		crawlOpts = append(crawlOpts, WithCrawlFilter(cfg.Filter))
	}

	scrapeOpts := []ScrapeStepOption{
		WithScrapeDelay(cfg.CrawlDelay),
		WithScrapeDatabase(cfg.Database),
		WithScrapeExcelPath(cfg.ExcelPath),
	}
	if len(cfg.PaginatorOptions) > 0 {
		scrapeOpts = append(scrapeOpts, WithScrapePaginatorOptions(cfg.PaginatorOptions...))
	}
	if len(cfg.ExtractorOptions) > 0 {
		scrapeOpts = append(scrapeOpts, WithScrapeExtractorOptions(cfg.ExtractorOptions...))
	}

	// Add steps in logical order
	p.AddSteps(
		NewFeedStep(fetcher, cfg.FeedURL,
			WithFeedArchiveDir(cfg.FeedArchiveDir),
			WithFeedCSVPath(cfg.FeedCSVPath),
			WithFeedDelay(cfg.CrawlDelay),
		),
		NewSitemapStep(fetcher, cfg.SitemapURL,
			WithSitemapBaseDir(cfg.SitemapDir),
			WithSitemapCSVPath(cfg.SitemapCSVPath),
			WithSitemapDelay(cfg.CrawlDelay),
		),
		NewCrawlStep(fetcher, crawlOpts...),
		NewScrapeStep(renderer, fetcher, cfg.ListingURL, scrapeOpts...),
	)

	return p
}
