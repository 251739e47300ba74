package config

import (
	"net/url"
	"path/filepath"
	"regexp"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values mirror the behavior of the production harvester runs against
// Swedish agency publication sites and are chosen for polite, low-volume
// crawling of public servers.
const (
	// DefaultTimeout is the per-request timeout for plain HTTP fetches.
	// Public agency sites respond quickly; 10 seconds is generous while
	// still bounding worst-case per-call latency during traversal.
	DefaultTimeout = 10 * time.Second

	// DefaultRenderTimeout is the per-page timeout for rendered loads.
	// JavaScript-executing loads are much slower than plain fetches
	// because the listing pages build their content client-side.
	DefaultRenderTimeout = 30 * time.Second

	// DefaultCrawlDepth of 3 reaches the documents linked from section
	// pages without wandering into deep archive paths. Depth 0 means
	// only the seed page is fetched.
	DefaultCrawlDepth = 3

	// DefaultRetryCount is how many times a single fetch is attempted
	// before the URL is abandoned. Retries never happen at the
	// traversal or pagination level, only per fetch.
	DefaultRetryCount = 3

	// DefaultRetryDelay is the fixed pause between fetch attempts.
	DefaultRetryDelay = 1 * time.Second

	// DefaultCrawlDelay is the pause between consecutive requests during
	// traversal, pagination, and document downloads. This is a politeness
	// setting to avoid overwhelming the origin.
	DefaultCrawlDelay = 500 * time.Millisecond

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 5MB is sufficient for HTML pages and typical report PDFs while
	// preventing memory exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultMinContentLength is the minimum rendered-page length, in
	// bytes, below which a listing page is treated as a soft failure and
	// pagination stops. Real listing pages are far larger than this.
	DefaultMinContentLength = 1000

	// DefaultMaxListingPages caps pagination as a guard against a
	// listing that never stops producing pages. The termination
	// heuristics normally stop much earlier.
	DefaultMaxListingPages = 50

	// DefaultBatchSize is the number of concurrent runs when processing
	// multiple targets. Runs are independent; within a run all requests
	// remain sequential. Kept small out of politeness.
	DefaultBatchSize = 4

	// AppName is the application name used for XDG directory paths.
	AppName = "pubcrawl"

	// DefaultValidityMarker is the heading phrase that identifies a real
	// listing page. A page without it is treated as past the last page.
	DefaultValidityMarker = "Publikationer"

	// DefaultJunkPagePattern matches auto-generated page URLs: a single
	// path segment of digits, optionally a dot and hex suffix, ending in
	// .html. Such URLs are disproportionately present in crawled output
	// and waste fetch budget.
	DefaultJunkPagePattern = `^/\d+(\.[\da-f]+)?\.html$`

	// DefaultReportPathPrefix is the path prefix report links start with
	// on the listing pages.
	DefaultReportPathPrefix = "/publikationer/"

	// DefaultPageParamTemplate is appended to the listing URL for pages
	// beyond the first. The %d verb receives the page index. The opaque
	// component identifier is how the site's listing widget names its
	// AJAX page parameter.
	DefaultPageParamTemplate = "&svAjaxReqParam=ajax&page12_706c70df1932999ea346c0a=%d"

	// DefaultDateMarkerClass is the CSS class of the <time> elements that
	// mark report entries in a listing page.
	DefaultDateMarkerClass = "lp-filterable-list-item-date"

	// DefaultDescriptionClass is the CSS class of the report description
	// container on a report page.
	DefaultDescriptionClass = "rapport-description"

	// DefaultArticleClass is the CSS class of the report article body,
	// used as the description fallback.
	DefaultArticleClass = "rapport-article-content"

	// DefaultConsentCookie is seeded before any navigation to suppress
	// the cookie-consent interstitial.
	DefaultConsentCookie = "CONSENT=YES+"

	// DefaultCookieBannerText identifies the consent overlay element the
	// renderer removes when the cookie alone does not suppress it.
	DefaultCookieBannerText = "Vi använder kakor"
)

// DefaultUserAgents is the pool of User-Agent strings rotated across
// requests. Rotating common browser identities reduces trivial blocking
// of repeated requests from one client.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
}

// DefaultDocumentMarkers are the file-type markers that classify a URL as
// a target document during traversal. Matching is case-insensitive and
// looks anywhere in the URL, so query-suffixed links still match.
var DefaultDocumentMarkers = []string{".pdf"}

// DefaultCategories is the allow-list of report path categories. The
// second path segment of a report link must match one of these.
var DefaultCategories = []string{"rapport", "pm", "statistik", "wp"}

// Config holds all configuration options for pubcrawl.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CrawlConfig, ListingConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
// If the configuration grows significantly, consider refactoring into sub-structs.
type Config struct {
	// Targets is the list of seed URLs to run against.
	// Must contain at least one absolute http(s) URL.
	Targets []string

	// Timeout is the per-request timeout for plain HTTP fetches.
	Timeout time.Duration

	// RenderTimeout is the per-page timeout for rendered loads.
	RenderTimeout time.Duration

	// CrawlDepth is the maximum recursion depth for traversal.
	// Depth 0 means only fetch the seed page.
	CrawlDepth int

	// RetryCount is the number of attempts per fetch before the URL is
	// abandoned.
	RetryCount int

	// RetryDelay is the fixed pause between fetch attempts.
	RetryDelay time.Duration

	// CrawlDelay is the pause between consecutive requests.
	CrawlDelay time.Duration

	// MaxBodySize is the maximum response body size in bytes to read.
	// Responses larger than this are truncated. Zero means the default.
	MaxBodySize int64

	// MinContentLength is the minimum rendered listing page length;
	// shorter pages terminate pagination.
	MinContentLength int

	// MaxListingPages caps the pagination loop.
	MaxListingPages int

	// BatchSize is the number of concurrent runs for multiple targets.
	BatchSize int

	// UserAgents is the pool used for per-request identity rotation.
	UserAgents []string

	// DocumentMarkers classify URLs as target documents.
	DocumentMarkers []string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only info and above are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .pubcrawl in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// SiteProfiles holds site-specific settings loaded from the config
	// file. Populated by LoadConfigFile and consulted per target host.
	SiteProfiles *File

	// JSONReport enables JSON run-summary output instead of the
	// human-readable format. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown run-summary output.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the run summary.
	// When set, the summary is written there instead of stdout.
	ReportFile string

	// DownloadDir is the base directory for downloaded documents.
	// Defaults to the XDG data directory when empty.
	DownloadDir string

	// SaveToDB enables persisting extracted records to SQLite.
	SaveToDB bool

	// DBDir is the directory holding the SQLite database for extracted
	// records. Defaults to the XDG data directory when empty.
	DBDir string

	// ExcelPath is the spreadsheet file for extracted records.
	// When empty, records are not written to a spreadsheet.
	ExcelPath string

	// ListingURL is the full paginated-listing URL including the fixed
	// date-range query parameters. Empty disables the scrape stage.
	ListingURL string

	// FeedURL is the RSS feed to harvest. Empty disables the feed stage.
	FeedURL string

	// SitemapURL is the sitemap to harvest. Empty disables the sitemap
	// stage.
	SitemapURL string

	// JunkPagePattern is the regular expression for junk page paths.
	JunkPagePattern string

	// ReportPathPrefix is the path prefix of report links in listings.
	ReportPathPrefix string

	// PageParamTemplate is the pagination query-parameter template with
	// a %d verb for the page index.
	PageParamTemplate string

	// ValidityMarker is the heading phrase identifying a real listing
	// page.
	ValidityMarker string

	// Categories is the allow-list of report path categories.
	Categories []string

	// DateMarkerClass is the CSS class of listing date elements.
	DateMarkerClass string

	// DescriptionClass is the CSS class of the report description
	// container.
	DescriptionClass string

	// ArticleClass is the CSS class of the report article body.
	ArticleClass string

	// ConsentCookie is the cookie seeded before navigation, in
	// "name=value" form. Empty disables seeding.
	ConsentCookie string

	// CookieBannerText identifies the consent overlay to remove in the
	// renderer.
	CookieBannerText string
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, depth).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Timeout:           DefaultTimeout,
		RenderTimeout:     DefaultRenderTimeout,
		CrawlDepth:        DefaultCrawlDepth,
		RetryCount:        DefaultRetryCount,
		RetryDelay:        DefaultRetryDelay,
		CrawlDelay:        DefaultCrawlDelay,
		MaxBodySize:       DefaultMaxBodySize,
		MinContentLength:  DefaultMinContentLength,
		MaxListingPages:   DefaultMaxListingPages,
		BatchSize:         DefaultBatchSize,
		UserAgents:        DefaultUserAgents,
		DocumentMarkers:   DefaultDocumentMarkers,
		JunkPagePattern:   DefaultJunkPagePattern,
		ReportPathPrefix:  DefaultReportPathPrefix,
		PageParamTemplate: DefaultPageParamTemplate,
		ValidityMarker:    DefaultValidityMarker,
		Categories:        DefaultCategories,
		DateMarkerClass:   DefaultDateMarkerClass,
		DescriptionClass:  DefaultDescriptionClass,
		ArticleClass:      DefaultArticleClass,
		ConsentCookie:     DefaultConsentCookie,
		CookieBannerText:  DefaultCookieBannerText,
	}
}

// XDGDataDir returns the XDG data directory for pubcrawl.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/pubcrawl
// On macOS: ~/Library/Application Support/pubcrawl
// On Windows: %LOCALAPPDATA%\pubcrawl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for pubcrawl.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/pubcrawl
// On macOS: ~/Library/Application Support/pubcrawl
// On Windows: %APPDATA%\pubcrawl
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for pubcrawl.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.cache/pubcrawl
// On macOS: ~/Library/Caches/pubcrawl
// On Windows: %LOCALAPPDATA%\pubcrawl\cache
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any run begins; a
// malformed configuration is the only fatal error class in the system.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// We must have at least one target to run against
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}

	// Every target must parse as an absolute http(s) URL
	for _, target := range c.Targets {
		u, err := url.Parse(target)
		if err != nil || !u.IsAbs() || u.Host == "" {
			return ErrInvalidTarget
		}
	}

	// Timeout must be positive; zero timeout would cause immediate failures
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	// Depth must be non-negative; 0 means seed page only
	if c.CrawlDepth < 0 {
		return ErrInvalidDepth
	}

	// RetryCount must be positive; zero would mean no fetch at all
	if c.RetryCount <= 0 {
		return ErrInvalidRetryCount
	}

	// BatchSize must be positive; zero would mean no runs
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	// CrawlDelay must be non-negative
	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}

	// MaxBodySize must be non-negative; 0 means use the default
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	// The junk pattern must compile; it is applied to every link
	if c.JunkPagePattern != "" {
		if _, err := regexp.Compile(c.JunkPagePattern); err != nil {
			return ErrInvalidJunkPattern
		}
	}

	// The UA pool must not be empty; rotation needs at least one entry
	if len(c.UserAgents) == 0 {
		return ErrEmptyUserAgentPool
	}

	return nil
}
