package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than fmt.Errorf()
// because we don't need to include dynamic values in these messages.
var (
	// ErrNoTarget is returned when no target URL or list file is specified.
	// This error occurs when neither --list nor a positional argument provides a target.
	ErrNoTarget = errors.New("no target specified: provide a seed URL or use --list")

	// ErrInvalidTarget is returned when a target does not parse as an
	// absolute http(s) URL. An unparseable seed is fatal at startup.
	ErrInvalidTarget = errors.New("invalid target: must be an absolute URL with a host")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	// A timeout of zero or negative would cause immediate request failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidDepth is returned when the crawl depth is negative.
	// Depth 0 is valid and means only the seed page is fetched.
	ErrInvalidDepth = errors.New("invalid crawl depth: must be non-negative")

	// ErrInvalidRetryCount is returned when the retry count is not positive.
	// At least one attempt is required per fetch.
	ErrInvalidRetryCount = errors.New("invalid retry count: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	// A batch size of zero would mean no concurrent runs, effectively stopping
	// all processing.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidCrawlDelay is returned when the crawl delay is negative.
	// A negative delay is invalid; use 0 for no delay between requests.
	ErrInvalidCrawlDelay = errors.New("invalid crawl delay: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// A negative body size is invalid; use 0 to use the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidJunkPattern is returned when the junk page pattern does
	// not compile as a regular expression.
	ErrInvalidJunkPattern = errors.New("invalid junk page pattern: must be a valid regular expression")

	// ErrEmptyUserAgentPool is returned when no User-Agent strings are
	// configured. Identity rotation needs at least one entry.
	ErrEmptyUserAgentPool = errors.New("empty user agent pool: at least one User-Agent is required")
)
