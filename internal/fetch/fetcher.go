package fetch

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/pubcrawl/pubcrawl/internal/model"
)

// maxRedirects limits redirect chains to prevent loops while allowing
// normal redirects.
const maxRedirects = 10

// Fetcher retrieves single URLs over plain HTTP.
// It rotates user agents, retries transient failures, follows redirects,
// and caps response bodies at a configured size.
type Fetcher struct {
	// client performs the HTTP requests.
	client *http.Client

	// userAgents is the pool to pick a User-Agent from per request.
	userAgents []string

	// maxBodySize limits the size of page bodies read into memory.
	maxBodySize int64

	// retryCount is the number of attempts per URL.
	retryCount int

	// retryDelay is the pause between attempts.
	retryDelay time.Duration

	// cookie is a raw cookie string injected into every request.
	cookie string

	// headers are extra headers injected into every request.
	headers map[string]string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.client.Timeout = d
	}
}

// WithUserAgents sets the user agent pool to rotate through.
// An empty pool leaves the default pool in place.
func WithUserAgents(agents []string) Option {
	return func(f *Fetcher) {
		if len(agents) > 0 {
			f.userAgents = agents
		}
	}
}

// WithMaxBodySize sets the maximum page body size in bytes.
func WithMaxBodySize(size int64) Option {
	return func(f *Fetcher) {
		f.maxBodySize = size
	}
}

// WithRetry sets the attempt count and the delay between attempts.
func WithRetry(count int, delay time.Duration) Option {
	return func(f *Fetcher) {
		if count > 0 {
			f.retryCount = count
		}
		f.retryDelay = delay
	}
}

// WithCookie sets a raw cookie string (e.g. "CONSENT=YES+") injected into
// every request, including redirects. This is how the consent cookie is
// seeded so cookie walls stay out of fetched markup.
func WithCookie(cookie string) Option {
	return func(f *Fetcher) {
		f.cookie = cookie
	}
}

// WithHeaders sets extra headers injected into every request.
func WithHeaders(headers map[string]string) Option {
	return func(f *Fetcher) {
		f.headers = headers
	}
}

// WithHTTPClient replaces the underlying HTTP client.
// Mainly useful for tests that need custom transports.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// NewFetcher creates a Fetcher with sensible defaults.
//
// Design decision: The fetcher owns its HTTP client rather than accepting
// one because:
//  1. Cookie and header injection must survive redirects, which needs a
//     wrapping transport set up here
//  2. Redirect and timeout policy belong to fetching, not to callers
//  3. Tests can still swap the client via WithHTTPClient
func NewFetcher(opts ...Option) *Fetcher {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	f := &Fetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   10 * time.Second,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		userAgents:  []string{"Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/115.0"},
		maxBodySize: model.MaxBodySize,
		retryCount:  1,
		retryDelay:  time.Second,
	}

	for _, opt := range opts {
		opt(f)
	}

	// Wrap the transport once all options are applied so WithHTTPClient
	// clients get injection too.
	if f.cookie != "" || len(f.headers) > 0 {
		base := f.client.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		f.client.Transport = &injectingTransport{
			base:    base,
			cookie:  f.cookie,
			headers: f.headers,
		}
	}

	return f
}

// Fetch retrieves a single URL and returns the page.
// Transient failures are retried up to the configured attempt count; a nil
// page always comes with a *Failure describing why the URL was abandoned.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*model.Page, error) {
	if rawURL == "" {
		return nil, NewFailure(KindUnreachable, rawURL, ErrEmptyURL)
	}

	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return nil, NewFailure(KindUnreachable, rawURL, ErrInvalidURL)
	}

	var lastErr error
	var lastStatus int
	attempts := 0

	for attempt := 1; attempt <= f.retryCount; attempt++ {
		attempts = attempt
		page, status, err := f.fetchOnce(ctx, rawURL)
		if err == nil {
			return page, nil
		}
		lastErr = err
		lastStatus = status

		// Deterministic client errors will not improve on retry.
		if status >= 400 && status < 500 && status != http.StatusRequestTimeout && status != http.StatusTooManyRequests {
			break
		}

		if attempt < f.retryCount && f.retryDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, &Failure{Kind: KindUnreachable, URL: rawURL, Attempts: attempt, Cause: ctx.Err()}
			case <-time.After(f.retryDelay):
			}
		}
	}

	return nil, &Failure{
		Kind:       KindUnreachable,
		URL:        rawURL,
		StatusCode: lastStatus,
		Attempts:   attempts,
		Cause:      lastErr,
	}
}

// fetchOnce performs a single GET attempt.
// It returns the HTTP status alongside the error so the retry loop can
// distinguish deterministic failures from transient ones.
func (f *Fetcher) fetchOnce(ctx context.Context, rawURL string) (*model.Page, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("User-Agent", f.pickUserAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "sv-SE,sv;q=0.9,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, resp.StatusCode, fmt.Errorf("%w: %d %s", ErrStatusNotOK, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	// Read at most maxBodySize bytes. Oversized pages are truncated rather
	// than rejected: link extraction on a truncated page still yields most
	// of its links, and the crawl moves on.
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &model.Page{
		URL:         rawURL,
		FinalURL:    finalURL,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
		FetchedAt:   time.Now(),
	}, resp.StatusCode, nil
}

// Download streams the body of a URL into w and returns the bytes written.
// Unlike Fetch it does not cap the body size, since documents are written
// to disk rather than held in memory. It retries like Fetch does.
func (f *Fetcher) Download(ctx context.Context, rawURL string, w io.Writer) (int64, error) {
	if rawURL == "" {
		return 0, NewFailure(KindUnreachable, rawURL, ErrEmptyURL)
	}

	var lastErr error
	var lastStatus int
	attempts := 0

	for attempt := 1; attempt <= f.retryCount; attempt++ {
		attempts = attempt
		n, status, err := f.downloadOnce(ctx, rawURL, w)
		if err == nil {
			return n, nil
		}
		lastErr = err
		lastStatus = status

		// w cannot be rewound, so once body bytes have streamed a retry
		// would append to partial output.
		if n > 0 {
			break
		}

		if status >= 400 && status < 500 && status != http.StatusRequestTimeout && status != http.StatusTooManyRequests {
			break
		}

		if attempt < f.retryCount && f.retryDelay > 0 {
			select {
			case <-ctx.Done():
				return 0, &Failure{Kind: KindUnreachable, URL: rawURL, Attempts: attempt, Cause: ctx.Err()}
			case <-time.After(f.retryDelay):
			}
		}
	}

	return 0, &Failure{
		Kind:       KindUnreachable,
		URL:        rawURL,
		StatusCode: lastStatus,
		Attempts:   attempts,
		Cause:      lastErr,
	}
}

// downloadOnce performs a single streaming GET attempt.
func (f *Fetcher) downloadOnce(ctx context.Context, rawURL string, w io.Writer) (int64, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("User-Agent", f.pickUserAgent())

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return 0, resp.StatusCode, fmt.Errorf("%w: %d %s", ErrStatusNotOK, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, resp.StatusCode, fmt.Errorf("copy body: %w", err)
	}

	return n, resp.StatusCode, nil
}

// pickUserAgent returns a pseudo-random user agent from the pool.
func (f *Fetcher) pickUserAgent() string {
	if len(f.userAgents) == 1 {
		return f.userAgents[0]
	}
	return f.userAgents[rand.Intn(len(f.userAgents))] //nolint:gosec // rotation, not cryptography
}

// Client returns the underlying HTTP client for reuse by collaborators
// that manage their own requests (e.g. feed parsing).
func (f *Fetcher) Client() *http.Client {
	return f.client
}

// injectingTransport wraps an http.RoundTripper to inject a cookie string
// and custom headers into every request, including redirects.
type injectingTransport struct {
	base    http.RoundTripper
	cookie  string
	headers map[string]string
}

// RoundTrip implements http.RoundTripper.
func (t *injectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the original
	clone := req.Clone(req.Context())

	if t.cookie != "" {
		// Append to existing Cookie header or set new one
		if existing := clone.Header.Get("Cookie"); existing != "" {
			clone.Header.Set("Cookie", existing+"; "+t.cookie)
		} else {
			clone.Header.Set("Cookie", t.cookie)
		}
	}

	for key, value := range t.headers {
		clone.Header.Set(key, value)
	}

	return t.base.RoundTrip(clone)
}
